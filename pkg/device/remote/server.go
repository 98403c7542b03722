package remote

import (
	"context"
	"net/http"
	"net/rpc"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"tdprint/pkg/device/td2000"
	"tdprint/pkg/proto"
)

const callTimeout = 5 * time.Minute

// Proxy serves dev over net/rpc on srv for the lifetime of the application.
func Proxy(dev proto.Control, srv *http.Server, logger *zap.Logger, lifecycle fx.Lifecycle) error {
	handler, err := NewHandler(dev, logger)
	if err != nil {
		return err
	}
	srv.Handler = handler

	lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != http.ErrServerClosed {
					logger.With(zap.Error(err)).Fatal("serve")
				}
			}()
			logger.With(zap.String("addr", srv.Addr)).Info("listening")
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})

	return nil
}

// NewHandler returns an HTTP handler speaking net/rpc to a Service for dev.
func NewHandler(dev proto.Control, logger *zap.Logger) (http.Handler, error) {
	server := rpc.NewServer()
	if err := server.Register(&Service{dev: dev, logger: logger}); err != nil {
		return nil, err
	}
	return server, nil
}

type Service struct {
	dev    proto.Control
	logger *zap.Logger
}

func (s *Service) Print(req *PrintRequest, _ *EmptyResponse) error {
	job, err := td2000.NewJob(req.Lines, td2000.WithSpec(req.Spec))
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
	defer cancel()

	if err := s.dev.Print(ctx, job); err != nil {
		s.logger.With(zap.String("job", job.ID()), zap.Error(err)).Warn("print failed")
		return err
	}
	return nil
}

func (s *Service) Status(_ *EmptyResponse, resp *StatusResponse) error {
	ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
	defer cancel()

	st, err := s.dev.Status(ctx)
	if err != nil {
		return errors.Wrap(err, "status")
	}

	raw := st.Raw()
	resp.Raw = raw[:]
	return nil
}

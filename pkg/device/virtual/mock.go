package virtual

import (
	"context"

	"go.uber.org/zap"

	"tdprint/pkg/device/td2000"
	"tdprint/pkg/proto"
)

// Mock is a printer that only logs what it is asked to do.
func Mock(logger *zap.Logger) proto.Control {
	return &Mocker{logger}
}

type Mocker struct {
	l *zap.Logger
}

func (m *Mocker) Print(_ context.Context, job *td2000.Job) error {
	spec := job.Spec()
	m.l.With(
		zap.String("job", job.ID()),
		zap.Int("lines", job.Len()),
		zap.Int("width", job.LineWidth()),
		zap.Stringer("media", spec.Media),
		zap.Stringer("compression", spec.Compression),
	).Info("print")
	return nil
}

func (m *Mocker) Status(_ context.Context) (*td2000.Status, error) {
	m.l.Info("status")
	return td2000.DecodeStatus(SampleStatus[:])
}

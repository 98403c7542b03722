package td2000

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/inhies/go-bytesize"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// New drives a TD-2000 family printer over ch. The printer owns ch for the
// length of each call; concurrent calls are serialized.
func New(ch io.ReadWriter, logger *zap.Logger, opts ...Option) *Printer {
	opts = append([]Option{WithLogger(logger)}, opts...)
	o := newOptions(opts)
	return &Printer{
		ch:     ch,
		logger: o.logger,
		opts:   opts,
		check:  o.statusCheck,
	}
}

type Printer struct {
	mu     sync.Mutex
	ch     io.ReadWriter
	logger *zap.Logger
	opts   []Option
	check  bool
}

type statusQuery interface {
	Status(ctx context.Context) (*Status, error)
}

func checkStatus(ctx context.Context, q statusQuery) error {
	st, err := q.Status(ctx)
	if err != nil {
		return err
	}
	return st.Err()
}

// Print runs one job through a fresh session.
func (p *Printer) Print(ctx context.Context, job *Job) error {
	return p.PrintPages(ctx, job)
}

// PrintPages prints jobs as pages of one session. Every page but the last
// ends with Print; the last ends as its job asks.
func (p *Printer) PrintPages(ctx context.Context, jobs ...*Job) error {
	if len(jobs) == 0 {
		return ErrEmptyJob
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	log := p.logger.With(zap.String("job", jobs[0].ID()))
	size := 0
	lines := 0
	for _, job := range jobs {
		size += job.Size()
		lines += job.Len()
	}
	log.With(
		zap.Int("pages", len(jobs)),
		zap.Int("lines", lines),
		zap.String("size", bytesize.New(float64(size)).String()),
	).Info("print")

	start := time.Now()
	idle := NewSession(p.ch, append(append([]Option(nil), p.opts...), WithLogger(log))...)

	inv, err := idle.Invalidate()
	if err != nil {
		return errors.Wrap(err, "invalidate")
	}
	ini, err := inv.Initialize()
	if err != nil {
		return errors.Wrap(err, "initialize")
	}
	set, err := ini.SwitchMode(ModeRaster)
	if err != nil {
		return errors.Wrap(err, "switch mode")
	}

	if p.check {
		if err := checkStatus(ctx, set); err != nil {
			return errors.Wrap(err, "status before print")
		}
	}

	var done *Printed
	for i, job := range jobs {
		var conf *Configured
		if done == nil {
			conf, err = set.Configure(job)
		} else {
			conf, err = done.Configure(job)
		}
		if err != nil {
			return errors.Wrapf(err, "configure page %d", i+1)
		}

		tr, err := conf.Transfer(ctx)
		if err != nil {
			return errors.Wrapf(err, "transfer page %d", i+1)
		}

		if i == len(jobs)-1 && job.spec.Feed {
			done, err = tr.PrintWithFeeding()
		} else {
			done, err = tr.Print()
		}
		if err != nil {
			return errors.Wrapf(err, "print page %d", i+1)
		}
	}

	if p.check {
		if err := checkStatus(ctx, done); err != nil {
			return errors.Wrap(err, "status after print")
		}
	}

	log.With(zap.String("cost", time.Since(start).String())).Info("printed")
	return nil
}

// Status invalidates, initializes and queries the printer.
func (p *Printer) Status(ctx context.Context) (*Status, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	inv, err := NewSession(p.ch, p.opts...).Invalidate()
	if err != nil {
		return nil, errors.Wrap(err, "invalidate")
	}
	ini, err := inv.Initialize()
	if err != nil {
		return nil, errors.Wrap(err, "initialize")
	}
	return ini.Status(ctx)
}

// Close closes the channel if it can be closed.
func (p *Printer) Close() error {
	if c, ok := p.ch.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

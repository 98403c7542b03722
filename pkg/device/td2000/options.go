package td2000

import (
	"time"

	"go.uber.org/zap"
)

const (
	DefaultHeadBytes     = 56
	DefaultStatusTimeout = 2 * time.Second
)

type Option func(o *options)

type options struct {
	logger        *zap.Logger
	headBytes     int
	statusTimeout time.Duration
	statusDelay   time.Duration
	statusCheck   bool
	progress      func(sent, total int)
}

func newOptions(opts []Option) *options {
	o := &options{
		logger:        zap.NewNop(),
		headBytes:     DefaultHeadBytes,
		statusTimeout: DefaultStatusTimeout,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithModel sizes raster lines for the model's print head.
func WithModel(m Model) Option {
	return func(o *options) {
		o.headBytes = m.HeadBytes
	}
}

func WithHeadBytes(n int) Option {
	return func(o *options) {
		o.headBytes = n
	}
}

// WithStatusTimeout bounds the wait for a full status frame.
func WithStatusTimeout(d time.Duration) Option {
	return func(o *options) {
		o.statusTimeout = d
	}
}

// WithStatusDelay waits before reading a status reply.
func WithStatusDelay(d time.Duration) Option {
	return func(o *options) {
		o.statusDelay = d
	}
}

// WithStatusCheck makes Printer.Print query status before the job and after
// printing, failing on any reported device error.
func WithStatusCheck() Option {
	return func(o *options) {
		o.statusCheck = true
	}
}

// WithProgress is called after every raster frame.
func WithProgress(fn func(sent, total int)) Option {
	return func(o *options) {
		o.progress = fn
	}
}

package virtual

import (
	"bytes"
	"fmt"
	"io"
	"sync"

	"go.uber.org/zap"

	"tdprint/pkg/device/td2000"
)

// SampleStatus is the reply of an idle TD-2120N on AC power with 58 mm tape.
var SampleStatus = [td2000.StatusLength]byte{
	0x80, 0x20, 0x42, 0x30, 0x35, 0x30, 0x04, 0x00,
	0x00, 0x00, 0x3A, 0x4A, 0x00, 0x00, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
}

type ChannelOption func(c *Channel)

// WithReply sets the bytes queued after every status request.
func WithReply(reply []byte) ChannelOption {
	return func(c *Channel) {
		c.reply = append([]byte(nil), reply...)
	}
}

// WithoutReply leaves status requests unanswered.
func WithoutReply() ChannelOption {
	return func(c *Channel) {
		c.reply = nil
	}
}

// WithShortWriteAt makes the n-th write (from 1) accept only half its bytes.
func WithShortWriteAt(n int) ChannelOption {
	return func(c *Channel) {
		c.shortAt = n
	}
}

// WithClosedAt makes the n-th write (from 1) fail as if the channel were closed.
func WithClosedAt(n int) ChannelOption {
	return func(c *Channel) {
		c.closedAt = n
	}
}

// NewChannel returns an in-memory channel that records every write and
// answers status requests.
func NewChannel(logger *zap.Logger, opts ...ChannelOption) *Channel {
	c := &Channel{
		l:     logger,
		reply: SampleStatus[:],
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type Channel struct {
	l *zap.Logger

	mu       sync.Mutex
	writes   [][]byte
	pending  bytes.Buffer
	reply    []byte
	shortAt  int
	closedAt int
	closed   bool
}

func (c *Channel) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return 0, io.ErrClosedPipe
	}

	nth := len(c.writes) + 1
	if nth == c.closedAt {
		c.closed = true
		return 0, io.ErrClosedPipe
	}

	n := len(p)
	if nth == c.shortAt {
		n /= 2
	}
	c.writes = append(c.writes, append([]byte(nil), p[:n]...))

	if bytes.Equal(p, td2000.StatusRequest()) && c.reply != nil {
		c.pending.Write(c.reply)
	}

	ext := ""
	if n <= 16 {
		ext = fmt.Sprintf("%x", p[:n])
	}
	c.l.With(zap.Int("n", nth), zap.Int("size", n), zap.String("data", ext)).Debug("write")

	return n, nil
}

// Read returns queued reply bytes, or nothing when none are queued, like a
// serial port whose read timed out.
func (c *Channel) Read(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return 0, io.ErrClosedPipe
	}
	if c.pending.Len() == 0 {
		return 0, nil
	}
	return c.pending.Read(p)
}

func (c *Channel) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

// Writes returns a copy of every recorded write.
func (c *Channel) Writes() [][]byte {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([][]byte, len(c.writes))
	for i, w := range c.writes {
		out[i] = append([]byte(nil), w...)
	}
	return out
}

// Bytes returns the whole written stream.
func (c *Channel) Bytes() []byte {
	return bytes.Join(c.Writes(), nil)
}

// Reset forgets recorded writes and pending replies.
func (c *Channel) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.writes = nil
	c.pending.Reset()
	c.closed = false
}

package td2000

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"tdprint/pkg/packbits"
)

type SessionState int32

const (
	StateIdle SessionState = iota
	StateInvalidated
	StateInitialized
	StateModeSet
	StateConfigured
	StateTransferring
	StatePrinted
	// StateAwaitingStatus is reported while a status read blocks, on top of
	// whichever state the session is in.
	StateAwaitingStatus
	StateFailed
)

func (s SessionState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateInvalidated:
		return "invalidated"
	case StateInitialized:
		return "initialized"
	case StateModeSet:
		return "mode-set"
	case StateConfigured:
		return "configured"
	case StateTransferring:
		return "transferring"
	case StatePrinted:
		return "printed"
	case StateAwaitingStatus:
		return "awaiting-status"
	case StateFailed:
		return "failed"
	}
	return fmt.Sprintf("SessionState(%d)", int32(s))
}

const statusPollInterval = 10 * time.Millisecond

// Session owns a channel for one print sequence. It is driven through the
// stage values returned by NewSession and each transition; a stage is valid
// until the next transition.
type Session struct {
	ch     io.ReadWriter
	opts   *options
	logger *zap.Logger

	state    atomic.Int32
	awaiting atomic.Bool
	gen      uint64
	err      error

	job    *Job
	frames [][]byte
	sent   int
	fed    bool
}

func NewSession(ch io.ReadWriter, opts ...Option) *Idle {
	s := &Session{ch: ch, opts: newOptions(opts)}
	s.logger = s.opts.logger
	return &Idle{statusStage{stage{s: s, at: StateIdle}}}
}

func (s *Session) State() SessionState {
	if s.awaiting.Load() {
		return StateAwaitingStatus
	}
	return SessionState(s.state.Load())
}

// Err returns the failure that ended the session, if any.
func (s *Session) Err() error {
	return s.err
}

func (s *Session) advance(to SessionState) stage {
	s.gen++
	s.state.Store(int32(to))
	return stage{s: s, at: to, gen: s.gen}
}

func (s *Session) fail(err error) error {
	s.err = err
	s.state.Store(int32(StateFailed))
	return err
}

func (s *Session) write(name string, frame []byte) error {
	start := time.Now()
	n, err := s.ch.Write(frame)
	if err != nil {
		return s.fail(channelError(err, name))
	}
	if n != len(frame) {
		return s.fail(errors.Wrapf(ErrShortWrite, "%s: wrote %d of %d bytes", name, n, len(frame)))
	}

	ext := ""
	if len(frame) <= 16 {
		ext = fmt.Sprintf("%x", frame)
	}

	s.logger.With(
		zap.String("frame", name),
		zap.Int("sent", n),
		zap.String("cost", time.Since(start).String()),
		zap.String("data", ext),
	).Debug("transfer")

	return nil
}

func channelError(err error, op string) error {
	if errors.Is(err, io.ErrClosedPipe) || errors.Is(err, os.ErrClosed) || errors.Is(err, net.ErrClosed) {
		return errors.Wrapf(ErrChannelClosed, "%s: %v", op, err)
	}
	return errors.Wrap(err, op)
}

func (s *Session) status(ctx context.Context) (*Status, error) {
	s.awaiting.Store(true)
	defer s.awaiting.Store(false)

	if err := s.write("status-request", StatusRequest()); err != nil {
		return nil, err
	}

	if s.opts.statusDelay > 0 {
		select {
		case <-ctx.Done():
			return nil, s.fail(errors.Wrap(ctx.Err(), "await status"))
		case <-time.After(s.opts.statusDelay):
		}
	}

	raw, err := s.readStatus(ctx)
	if err != nil {
		return nil, s.fail(err)
	}

	st, err := DecodeStatus(raw)
	if err != nil {
		return nil, err
	}

	s.logger.With(
		zap.Stringer("model", st.Model),
		zap.Stringer("type", st.Type),
		zap.Stringer("phase", st.Phase),
		zap.Uint8("error1", byte(st.Error1)),
		zap.Uint8("error2", byte(st.Error2)),
	).Debug("status")

	return st, nil
}

// readStatus collects one frame until it is complete, the channel reports
// EOF, or the status timeout passes. A channel whose Read blocks forever
// cannot be bounded here; serial and USB channels carry their own timeout.
func (s *Session) readStatus(ctx context.Context) ([]byte, error) {
	buf := make([]byte, StatusLength)
	deadline := time.Now().Add(s.opts.statusTimeout)

	n := 0
	for n < StatusLength {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrap(err, "read status")
		}

		m, err := s.ch.Read(buf[n:])
		n += m
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, channelError(err, "read status")
		}

		if n < StatusLength && time.Now().After(deadline) {
			break
		}
		if m == 0 {
			select {
			case <-ctx.Done():
			case <-time.After(statusPollInterval):
			}
		}
	}

	if n < StatusLength {
		return nil, errors.Wrapf(ErrShortRead, "status: got %d of %d bytes", n, StatusLength)
	}
	return buf, nil
}

type namedFrame struct {
	name string
	data []byte
}

func (s *Session) configure(job *Job, page PageType) error {
	if job == nil {
		return ErrEmptyJob
	}
	if job.LineWidth() != s.opts.headBytes {
		return errors.Wrapf(ErrLineLength, "line is %d bytes, head is %d", job.LineWidth(), s.opts.headBytes)
	}

	frames, err := rasterFrames(job)
	if err != nil {
		return err
	}

	seq := []namedFrame{
		{"print-information", PrintInformation(job.printInfo(page))},
		{"various-mode", VariousModeSettings(job.spec.Settings)},
	}
	if job.spec.Margin != nil {
		seq = append(seq, namedFrame{"margin", SpecifyMargin(*job.spec.Margin)})
	}
	if job.spec.MediaInfo != nil {
		info, err := AdditionalMediaInfo(job.spec.MediaInfo)
		if err != nil {
			return err
		}
		seq = append(seq, namedFrame{"media-information", info})
	}
	seq = append(seq, namedFrame{"compression", SelectCompression(job.spec.Compression)})

	for _, f := range seq {
		if err := s.write(f.name, f.data); err != nil {
			return err
		}
	}

	s.job, s.frames, s.sent, s.fed = job, frames, 0, false
	return nil
}

// rasterFrames builds every transfer frame up front so that no line can fail
// validation halfway through a transfer.
func rasterFrames(job *Job) ([][]byte, error) {
	frames := make([][]byte, 0, len(job.lines))
	for i, line := range job.lines {
		if job.spec.ZeroLines && job.spec.Compression == CompressionNone && bytes.Count(line, []byte{0}) == len(line) {
			frames = append(frames, ZeroRaster())
			continue
		}

		data := line
		if job.spec.Compression == CompressionTIFF {
			data = packbits.Compress(line)
		}

		f, err := RasterTransfer(data)
		if err != nil {
			return nil, errors.Wrapf(err, "line %d", i)
		}
		frames = append(frames, f)
	}
	return frames, nil
}

func (s *Session) sendLine() error {
	if err := s.write("raster", s.frames[s.sent]); err != nil {
		return err
	}
	s.sent++
	if s.opts.progress != nil {
		s.opts.progress(s.sent, len(s.frames))
	}
	return nil
}

type stage struct {
	s   *Session
	at  SessionState
	gen uint64
}

func (st stage) enter() error {
	if st.s.err != nil {
		return st.s.err
	}
	if st.gen != st.s.gen {
		return errors.Wrapf(ErrOutOfOrder, "%s stage reused, session is %s", st.at, st.s.State())
	}
	return nil
}

func (st stage) Session() *Session {
	return st.s
}

func (st stage) State() SessionState {
	return st.s.State()
}

type statusStage struct {
	stage
}

// Status sends a status request and waits for the 32 byte reply. The session
// stays in its current state.
func (st statusStage) Status(ctx context.Context) (*Status, error) {
	if err := st.enter(); err != nil {
		return nil, err
	}
	return st.s.status(ctx)
}

type Idle struct {
	statusStage
}

func (i *Idle) Invalidate() (*Invalidated, error) {
	if err := i.enter(); err != nil {
		return nil, err
	}
	if err := i.s.write("invalidate", Invalidate()); err != nil {
		return nil, err
	}
	return &Invalidated{statusStage{i.s.advance(StateInvalidated)}}, nil
}

type Invalidated struct {
	statusStage
}

func (i *Invalidated) Initialize() (*Initialized, error) {
	if err := i.enter(); err != nil {
		return nil, err
	}
	if err := i.s.write("initialize", Initialize()); err != nil {
		return nil, err
	}
	return &Initialized{statusStage{i.s.advance(StateInitialized)}}, nil
}

type Initialized struct {
	statusStage
}

func (i *Initialized) SwitchMode(mode CommandMode) (*ModeSet, error) {
	if err := i.enter(); err != nil {
		return nil, err
	}
	if err := i.s.write("switch-mode", SwitchMode(mode)); err != nil {
		return nil, err
	}
	return &ModeSet{statusStage{i.s.advance(StateModeSet)}}, nil
}

type ModeSet struct {
	statusStage
}

// Configure validates job against the head width and sends print
// information, mode settings, the optional margin, media information and the
// compression mode. A job that fails validation writes nothing and leaves
// the stage usable.
func (m *ModeSet) Configure(job *Job) (*Configured, error) {
	if err := m.enter(); err != nil {
		return nil, err
	}
	if job == nil {
		return nil, ErrEmptyJob
	}
	if err := m.s.configure(job, job.spec.Page); err != nil {
		return nil, err
	}
	return &Configured{statusStage{m.s.advance(StateConfigured)}}, nil
}

type Configured struct {
	statusStage
}

// Begin enters the transfer without sending anything, for line by line use.
func (c *Configured) Begin() (*Transferring, error) {
	if err := c.enter(); err != nil {
		return nil, err
	}
	return &Transferring{c.s.advance(StateTransferring)}, nil
}

// Transfer sends every raster line of the configured job.
func (c *Configured) Transfer(ctx context.Context) (*Transferring, error) {
	t, err := c.Begin()
	if err != nil {
		return nil, err
	}
	if err := t.SendAll(ctx); err != nil {
		return nil, err
	}
	return t, nil
}

// Transferring has no Status: a status request between raster frames would
// be read by the firmware as line data.
type Transferring struct {
	stage
}

func (t *Transferring) Remaining() int {
	return len(t.s.frames) - t.s.sent
}

func (t *Transferring) SendLine() error {
	if err := t.enter(); err != nil {
		return err
	}
	if t.Remaining() == 0 {
		return errors.Wrap(ErrOutOfOrder, "all lines sent")
	}
	return t.s.sendLine()
}

// SendAll sends the remaining lines. Cancellation is checked between frames
// and ends the session.
func (t *Transferring) SendAll(ctx context.Context) error {
	if err := t.enter(); err != nil {
		return err
	}
	for t.Remaining() > 0 {
		if err := ctx.Err(); err != nil {
			return t.s.fail(errors.Wrapf(err, "transfer stopped after %d of %d lines", t.s.sent, len(t.s.frames)))
		}
		if err := t.s.sendLine(); err != nil {
			return err
		}
	}
	return nil
}

func (t *Transferring) PrintWithFeeding() (*Printed, error) {
	return t.finish("print-with-feeding", PrintWithFeeding(), true)
}

// Print prints without feeding, so the next page can follow via Printed.Configure.
func (t *Transferring) Print() (*Printed, error) {
	return t.finish("print", Print(), false)
}

func (t *Transferring) finish(name string, frame []byte, feed bool) (*Printed, error) {
	if err := t.enter(); err != nil {
		return nil, err
	}
	if n := t.Remaining(); n > 0 {
		return nil, errors.Wrapf(ErrOutOfOrder, "%d lines not sent", n)
	}
	if err := t.s.write(name, frame); err != nil {
		return nil, err
	}
	t.s.fed = feed
	return &Printed{statusStage{t.s.advance(StatePrinted)}}, nil
}

type Printed struct {
	statusStage
}

// Configure starts another page on a session that ended with Print. The
// page is declared as PageOther.
func (p *Printed) Configure(job *Job) (*Configured, error) {
	if err := p.enter(); err != nil {
		return nil, err
	}
	if p.s.fed {
		return nil, errors.Wrap(ErrOutOfOrder, "job ended with feed")
	}
	if err := p.s.configure(job, PageOther); err != nil {
		return nil, err
	}
	return &Configured{statusStage{p.s.advance(StateConfigured)}}, nil
}

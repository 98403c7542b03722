package td2000

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// Channel failures. Any of them ends the session: the printer may hold a
// partial command and cannot be resumed without invalidating again.
var (
	ErrShortWrite    = errors.New("td2000: short write")
	ErrShortRead     = errors.New("td2000: short read")
	ErrChannelClosed = errors.New("td2000: channel closed")
)

// Validation failures, reported before any byte is written.
var (
	ErrMediaInfoLength = errors.New("td2000: additional media information must be 127 bytes")
	ErrLineLength      = errors.New("td2000: raster line does not match head width")
	ErrLineTooLong     = errors.New("td2000: raster line does not fit a transfer frame")
	ErrEmptyJob        = errors.New("td2000: job has no lines")
)

var (
	ErrOutOfOrder   = errors.New("td2000: command out of order")
	ErrUnknownCode  = errors.New("td2000: unknown code")
	ErrUnknownMedia = errors.New("td2000: unknown media")
)

// DeviceError is raised when a status frame reports error flags.
type DeviceError struct {
	Info1 ErrorInfo1
	Info2 ErrorInfo2
}

func (e *DeviceError) Error() string {
	flags := append(e.Info1.Flags(), e.Info2.Flags()...)
	return fmt.Sprintf("printer reported error: %s (0x%02X 0x%02X)",
		strings.Join(flags, ", "), byte(e.Info1), byte(e.Info2))
}

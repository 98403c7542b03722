package td2000

import (
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// Status frame offsets.
const (
	offPrintHeadMark = 0
	offSize          = 1
	offSeriesCode    = 3
	offModel         = 4
	offBattery       = 6
	offErrorInfo1    = 8
	offErrorInfo2    = 9
	offMediaWidth    = 10
	offMediaType     = 11
	offMode          = 16
	offMediaLength   = 18
	offStatusType    = 19
	offPhase         = 20
	offPhaseNumber   = 21
	offNotification  = 23
)

// ErrorInfo1 is status byte 8.
type ErrorInfo1 byte

const (
	ErrNoMedia      ErrorInfo1 = 0x01
	ErrEndOfMedia   ErrorInfo1 = 0x02
	ErrPrinterInUse ErrorInfo1 = 0x10
)

func (e ErrorInfo1) NoMedia() bool      { return e&ErrNoMedia != 0 }
func (e ErrorInfo1) EndOfMedia() bool   { return e&ErrEndOfMedia != 0 }
func (e ErrorInfo1) PrinterInUse() bool { return e&ErrPrinterInUse != 0 }

func (e ErrorInfo1) Flags() []string {
	var out []string
	if e.NoMedia() {
		out = append(out, "no media")
	}
	if e.EndOfMedia() {
		out = append(out, "end of media")
	}
	if e.PrinterInUse() {
		out = append(out, "printer in use")
	}
	if rest := e &^ (ErrNoMedia | ErrEndOfMedia | ErrPrinterInUse); rest != 0 {
		out = append(out, fmt.Sprintf("reserved 0x%02X", byte(rest)))
	}
	return out
}

// ErrorInfo2 is status byte 9.
type ErrorInfo2 byte

const (
	ErrReplacingMedia  ErrorInfo2 = 0x01
	ErrCommunication   ErrorInfo2 = 0x04
	ErrCoverOpen       ErrorInfo2 = 0x10
	ErrMediaCannotFeed ErrorInfo2 = 0x40
	ErrSystem          ErrorInfo2 = 0x80
	errorInfo2Reserved ErrorInfo2 = 0x2A
)

func (e ErrorInfo2) ReplacingMedia() bool     { return e&ErrReplacingMedia != 0 }
func (e ErrorInfo2) CommunicationError() bool { return e&ErrCommunication != 0 }
func (e ErrorInfo2) CoverOpen() bool          { return e&ErrCoverOpen != 0 }
func (e ErrorInfo2) MediaCannotBeFed() bool   { return e&ErrMediaCannotFeed != 0 }
func (e ErrorInfo2) SystemError() bool        { return e&ErrSystem != 0 }

func (e ErrorInfo2) Flags() []string {
	var out []string
	if e.ReplacingMedia() {
		out = append(out, "replacing media")
	}
	if e.CommunicationError() {
		out = append(out, "communication error")
	}
	if e.CoverOpen() {
		out = append(out, "cover open")
	}
	if e.MediaCannotBeFed() {
		out = append(out, "media cannot be fed")
	}
	if e.SystemError() {
		out = append(out, "system error")
	}
	if rest := e & errorInfo2Reserved; rest != 0 {
		out = append(out, fmt.Sprintf("reserved 0x%02X", byte(rest)))
	}
	return out
}

// Status is a decoded 32 byte status frame.
type Status struct {
	raw [StatusLength]byte

	PrintHeadMark byte
	Size          byte
	SeriesCode    byte
	Model         ModelCode
	Battery       BatteryLevel
	Error1        ErrorInfo1
	Error2        ErrorInfo2
	MediaWidthMM  byte
	MediaType     MediaType
	Mode          byte
	MediaLengthMM byte
	Type          StatusType
	Phase         Phase
	PhaseNumber   uint16
	Notification  Notification
}

// DecodeStatus parses a status frame. Enumerated fields outside their known
// sets fail with ErrUnknownCode.
func DecodeStatus(b []byte) (*Status, error) {
	if len(b) < StatusLength {
		return nil, errors.Wrapf(ErrShortRead, "status frame of %d bytes", len(b))
	}

	s := &Status{}
	copy(s.raw[:], b)

	s.PrintHeadMark = s.raw[offPrintHeadMark]
	s.Size = s.raw[offSize]
	s.SeriesCode = s.raw[offSeriesCode]
	s.Error1 = ErrorInfo1(s.raw[offErrorInfo1])
	s.Error2 = ErrorInfo2(s.raw[offErrorInfo2])
	s.MediaWidthMM = s.raw[offMediaWidth]
	s.Mode = s.raw[offMode]
	s.MediaLengthMM = s.raw[offMediaLength]
	s.PhaseNumber = binary.LittleEndian.Uint16(s.raw[offPhaseNumber : offPhaseNumber+2])

	var err error
	if s.Model, err = ParseModelCode(s.raw[offModel]); err != nil {
		return nil, err
	}
	if s.Battery, err = ParseBatteryLevel(s.raw[offBattery]); err != nil {
		return nil, err
	}
	if s.MediaType, err = ParseMediaType(s.raw[offMediaType]); err != nil {
		return nil, err
	}
	if s.Type, err = ParseStatusType(s.raw[offStatusType]); err != nil {
		return nil, err
	}
	if s.Phase, err = ParsePhase(s.raw[offPhase]); err != nil {
		return nil, err
	}
	if s.Notification, err = ParseNotification(s.raw[offNotification]); err != nil {
		return nil, err
	}

	return s, nil
}

// Raw returns the undecoded frame.
func (s *Status) Raw() [StatusLength]byte {
	return s.raw
}

// FieldAt returns the bits of mask at offset, for fields not decoded above.
func (s *Status) FieldAt(offset int, mask byte) byte {
	if offset < 0 || offset >= StatusLength {
		return 0
	}
	return s.raw[offset] & mask
}

// Err returns a *DeviceError when the printer reports any error flag.
func (s *Status) Err() error {
	if s.Error1 == 0 && s.Error2 == 0 {
		return nil
	}
	return &DeviceError{Info1: s.Error1, Info2: s.Error2}
}

func (s *Status) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "model: %s\n", s.Model)
	fmt.Fprintf(&b, "battery: %s\n", s.Battery)
	fmt.Fprintf(&b, "media: %s %dmm", s.MediaType, s.MediaWidthMM)
	if s.MediaLengthMM > 0 {
		fmt.Fprintf(&b, " x %dmm", s.MediaLengthMM)
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "status: %s, phase: %s #%d\n", s.Type, s.Phase, s.PhaseNumber)
	if s.Notification != NotificationNone {
		fmt.Fprintf(&b, "notification: %s\n", s.Notification)
	}
	if err := s.Err(); err != nil {
		fmt.Fprintf(&b, "error: %s\n", err)
	}
	return b.String()
}

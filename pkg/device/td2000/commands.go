package td2000

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

const (
	InvalidateLength = 200
	MediaInfoLength  = 127
	PrintInfoLength  = 10
	StatusLength     = 32

	// MaxTransferLength is the largest line a raster transfer frame can announce.
	MaxTransferLength = 0xFF

	// DefaultMargin is the feed margin in dots used when margins are enabled.
	DefaultMargin = 24
)

// Command prefixes.
var (
	cmdInitialize          = []byte{0x1B, 0x40}
	cmdStatusRequest       = []byte{0x1B, 0x69, 0x53}
	cmdSwitchMode          = []byte{0x1B, 0x69, 0x61}
	cmdAdditionalMediaInfo = []byte{0x1B, 0x69, 0x55, 0x77, 0x01}
	cmdPrintInformation    = []byte{0x1B, 0x69, 0x7A}
	cmdVariousMode         = []byte{0x1B, 0x69, 0x4D}
	cmdMargin              = []byte{0x1B, 0x69, 0x64}
	cmdCompression         = []byte{0x4D}
	cmdRasterTransfer      = []byte{0x67}
	cmdZeroRaster          = []byte{0x5A}
	cmdPrint               = []byte{0x0C}
	cmdPrintWithFeeding    = []byte{0x1A}
)

func frame(prefix []byte, payload ...byte) []byte {
	out := make([]byte, 0, len(prefix)+len(payload))
	out = append(out, prefix...)
	return append(out, payload...)
}

// Invalidate clears whatever the printer has buffered: 200 zero bytes.
func Invalidate() []byte {
	return make([]byte, InvalidateLength)
}

func Initialize() []byte {
	return frame(cmdInitialize)
}

func StatusRequest() []byte {
	return frame(cmdStatusRequest)
}

func SwitchMode(mode CommandMode) []byte {
	return frame(cmdSwitchMode, byte(mode))
}

// AdditionalMediaInfo wraps a media information block. The block must be
// exactly MediaInfoLength bytes.
//
//	[1B 69 55 77 01][INFO(127)]
func AdditionalMediaInfo(info []byte) ([]byte, error) {
	if len(info) != MediaInfoLength {
		return nil, errors.Wrapf(ErrMediaInfoLength, "got %d bytes", len(info))
	}
	return frame(cmdAdditionalMediaInfo, info...), nil
}

// PrintInfo is the 10 byte print information structure.
//
//	[FLAGS][MEDIA_TYPE][WIDTH_MM][LENGTH_MM][RASTER_COUNT(4, LE)][PAGE][0x00]
type PrintInfo struct {
	Fields      PrintInfoFlag
	MediaType   MediaType
	WidthMM     byte
	LengthMM    byte
	RasterCount uint32
	Page        PageType
}

func (p PrintInfo) Bytes() [PrintInfoLength]byte {
	var b [PrintInfoLength]byte
	b[0] = byte(p.Fields)
	b[1] = byte(p.MediaType)
	b[2] = p.WidthMM
	b[3] = p.LengthMM
	binary.LittleEndian.PutUint32(b[4:8], p.RasterCount)
	b[8] = byte(p.Page)
	return b
}

// ParsePrintInfo is the inverse of PrintInfo.Bytes.
func ParsePrintInfo(b []byte) (PrintInfo, error) {
	if len(b) != PrintInfoLength {
		return PrintInfo{}, errors.Errorf("print information must be %d bytes, got %d", PrintInfoLength, len(b))
	}
	return PrintInfo{
		Fields:      PrintInfoFlag(b[0]),
		MediaType:   MediaType(b[1]),
		WidthMM:     b[2],
		LengthMM:    b[3],
		RasterCount: binary.LittleEndian.Uint32(b[4:8]),
		Page:        PageType(b[8]),
	}, nil
}

// PrintInformation sends the structure twice, as the firmware expects.
//
//	[1B 69 7A][INFO(10)][INFO(10)]
func PrintInformation(info PrintInfo) []byte {
	raw := info.Bytes()
	return frame(cmdPrintInformation, append(raw[:], raw[:]...)...)
}

func VariousModeSettings(settings ModeSettings) []byte {
	return frame(cmdVariousMode, byte(settings))
}

// SpecifyMargin sets the feed margin in dots, little-endian.
func SpecifyMargin(margin uint16) []byte {
	return frame(cmdMargin, byte(margin), byte(margin>>8))
}

func SelectCompression(mode CompressionMode) []byte {
	return frame(cmdCompression, byte(mode))
}

// RasterTransfer wraps one line, raw or compressed.
//
//	[67][00][LEN][LINE(LEN)]
func RasterTransfer(line []byte) ([]byte, error) {
	if len(line) == 0 || len(line) > MaxTransferLength {
		return nil, errors.Wrapf(ErrLineTooLong, "line of %d bytes", len(line))
	}
	return frame(cmdRasterTransfer, append([]byte{0x00, byte(len(line))}, line...)...), nil
}

// ZeroRaster prints one blank line.
func ZeroRaster() []byte {
	return frame(cmdZeroRaster)
}

func Print() []byte {
	return frame(cmdPrint)
}

func PrintWithFeeding() []byte {
	return frame(cmdPrintWithFeeding)
}

package bitmap

import (
	"github.com/pkg/errors"
	"github.com/samber/lo"
)

// RowTerminator is appended after every converted row. The head expects it
// even though its purpose is undocumented; keep it until verified on hardware.
const RowTerminator byte = 0x00

var ErrLineWidth = errors.New("bitmap: line width must be positive")

// ReverseBits mirrors the bit order of b (bit 0 becomes bit 7).
func ReverseBits(b byte) byte {
	return (b&0x01)<<7 | (b&0x02)<<5 |
		(b&0x04)<<3 | (b&0x08)<<1 |
		(b&0x10)>>1 | (b&0x20)>>3 |
		(b&0x40)>>5 | (b&0x80)>>7
}

// PaddedLength returns the length n is padded to. It always pads: an already
// aligned length grows by a full line.
func PaddedLength(n, lineWidth int) int {
	return n + lineWidth - n%lineWidth
}

type lineConfig struct {
	mirror bool
}

type LineOption func(c *lineConfig)

// WithMirror also reverses the byte order of every row, flipping the print horizontally.
func WithMirror() LineOption {
	return func(c *lineConfig) {
		c.mirror = true
	}
}

// Flatten converts every row into head order and appends the row terminator.
func Flatten(b *Bitmap, opts ...LineOption) []byte {
	var cfg lineConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	out := make([]byte, 0, (b.stride+1)*b.height)
	for y := 0; y < b.height; y++ {
		row := b.Row(y)
		for i := range row {
			src := row[i]
			if cfg.mirror {
				src = row[len(row)-1-i]
			}
			out = append(out, ReverseBits(src))
		}
		out = append(out, RowTerminator)
	}
	return out
}

// Pad zero-fills data up to PaddedLength.
func Pad(data []byte, lineWidth int) []byte {
	return append(data, make([]byte, PaddedLength(len(data), lineWidth)-len(data))...)
}

// ToDeviceLines converts the bitmap into consecutive head lines of exactly lineWidth bytes.
func ToDeviceLines(b *Bitmap, lineWidth int, opts ...LineOption) ([][]byte, error) {
	if lineWidth <= 0 {
		return nil, errors.Wrapf(ErrLineWidth, "got %d", lineWidth)
	}

	return lo.Chunk(Pad(Flatten(b, opts...), lineWidth), lineWidth), nil
}

package bitmap

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strconv"

	"github.com/pkg/errors"
)

// Magic is the binary portable bitmap signature.
const Magic = "P4"

// maxDimension bounds width and height.
const maxDimension = 1 << 16

var (
	ErrBadMagic         = errors.New("bitmap: bad magic")
	ErrBadHeader        = errors.New("bitmap: bad header")
	ErrUnsupportedWidth = errors.New("bitmap: width is not a multiple of 8")
	ErrTruncated        = errors.New("bitmap: truncated pixel data")
)

// Bitmap is a monochrome image with byte aligned rows, MSB-first, 1 = set pixel.
type Bitmap struct {
	data   []byte
	width  int
	height int
	stride int
}

// New wraps packed row data. Width must be a positive multiple of 8.
func New(width, height int, data []byte) (*Bitmap, error) {
	if width <= 0 || width%8 != 0 {
		return nil, errors.Wrapf(ErrUnsupportedWidth, "width %d", width)
	}
	if height <= 0 {
		return nil, errors.Wrapf(ErrBadHeader, "height %d", height)
	}

	stride := width / 8
	if len(data) < stride*height {
		return nil, errors.Wrapf(ErrTruncated, "got %d bytes, want %d", len(data), stride*height)
	}

	return &Bitmap{
		data:   data[:stride*height],
		width:  width,
		height: height,
		stride: stride,
	}, nil
}

func (b *Bitmap) Width() int {
	return b.width
}

func (b *Bitmap) Height() int {
	return b.height
}

// Stride is the number of bytes per row.
func (b *Bitmap) Stride() int {
	return b.stride
}

// Row returns the packed bytes of row y.
func (b *Bitmap) Row(y int) []byte {
	return b.data[y*b.stride : (y+1)*b.stride]
}

// Pixel reports whether the pixel at (x, y) is set.
func (b *Bitmap) Pixel(x, y int) bool {
	return b.data[y*b.stride+x/8]&(0x80>>(x%8)) != 0
}

func (b *Bitmap) String() string {
	return fmt.Sprintf("Bitmap(%dx%d)", b.width, b.height)
}

// Load parses a binary PBM stream.
func Load(r io.Reader) (*Bitmap, error) {
	br := bufio.NewReader(r)

	magic := make([]byte, len(Magic))
	if _, err := io.ReadFull(br, magic); err != nil || string(magic) != Magic {
		return nil, errors.Wrapf(ErrBadMagic, "got %q", magic)
	}

	if c, err := br.ReadByte(); err != nil || !isSpace(c) {
		return nil, errors.Wrap(ErrBadHeader, "no separator after magic")
	}

	width, err := readDimension(br, "width")
	if err != nil {
		return nil, err
	}
	height, err := readDimension(br, "height")
	if err != nil {
		return nil, err
	}

	if width%8 != 0 {
		return nil, errors.Wrapf(ErrUnsupportedWidth, "width %d", width)
	}

	// the buffer grows with the input, not with the header
	var data bytes.Buffer
	want := int64(width/8) * int64(height)
	if n, err := io.CopyN(&data, br, want); err != nil {
		return nil, errors.Wrapf(ErrTruncated, "read %d of %d bytes", n, want)
	}

	return New(width, height, data.Bytes())
}

// readDimension reads one decimal token and consumes exactly one trailing separator.
func readDimension(br *bufio.Reader, name string) (int, error) {
	if err := skipSpaceAndComments(br); err != nil {
		return 0, errors.Wrapf(ErrBadHeader, "missing %s", name)
	}

	var digits []byte
	for {
		c, err := br.ReadByte()
		if err != nil {
			return 0, errors.Wrapf(ErrBadHeader, "unterminated %s", name)
		}
		if isSpace(c) {
			break
		}
		if c < '0' || c > '9' {
			return 0, errors.Wrapf(ErrBadHeader, "invalid %s character %q", name, c)
		}
		digits = append(digits, c)
	}

	v, err := strconv.Atoi(string(digits))
	if err != nil || v <= 0 || v > maxDimension {
		return 0, errors.Wrapf(ErrBadHeader, "invalid %s %q", name, digits)
	}
	return v, nil
}

func skipSpaceAndComments(br *bufio.Reader) error {
	for {
		c, err := br.ReadByte()
		if err != nil {
			return err
		}
		switch {
		case isSpace(c):
		case c == '#':
			if _, err := br.ReadBytes('\n'); err != nil {
				return err
			}
		default:
			return br.UnreadByte()
		}
	}
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	}
	return false
}

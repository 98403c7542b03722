package td2000

import (
	"io"
	"strings"

	"github.com/pkg/errors"
	"github.com/samber/lo"
)

// MediaInfo58mm is the additional media information block for 58 mm continuous tape.
var MediaInfo58mm = [MediaInfoLength]byte{
	0x3F, 0x04, 0x3A, 0x00, 0x00, 0x3A, 0x04, 0x00, 0xB8, 0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x00, 0x00, 0xAA, 0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x52, 0x44, 0x20,
	0x35, 0x38, 0x6D, 0x6D, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x32, 0x2E, 0x32,
	0x38, 0x22, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x18, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x18, 0x00, 0x00, 0x00, 0x00,
}

// Media is a tape or label roll the printer can be loaded with.
type Media struct {
	Name     string
	Type     MediaType
	WidthMM  byte
	LengthMM byte
	info     []byte
}

var mediaSizes = []Media{
	{Name: "57mm", Type: MediaContinuous, WidthMM: 57},
	{Name: "58mm", Type: MediaContinuous, WidthMM: 58, info: MediaInfo58mm[:]},
	{Name: "51x26mm", Type: MediaDieCut, WidthMM: 51, LengthMM: 26},
	{Name: "30x30mm", Type: MediaDieCut, WidthMM: 30, LengthMM: 30},
	{Name: "40x40mm", Type: MediaDieCut, WidthMM: 40, LengthMM: 40},
	{Name: "40x50mm", Type: MediaDieCut, WidthMM: 40, LengthMM: 50},
	{Name: "40x60mm", Type: MediaDieCut, WidthMM: 40, LengthMM: 60},
	{Name: "50x30mm", Type: MediaDieCut, WidthMM: 50, LengthMM: 30},
	{Name: "60x60mm", Type: MediaDieCut, WidthMM: 60, LengthMM: 60},
}

// LookupMedia finds a media size by name, e.g. "58mm" or "40x60mm".
func LookupMedia(name string) (Media, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if !strings.HasSuffix(name, "mm") {
		name += "mm"
	}

	m, ok := lo.Find(mediaSizes, func(m Media) bool { return m.Name == name })
	if !ok {
		return Media{}, errors.Wrapf(ErrUnknownMedia, "%q", name)
	}
	return m, nil
}

// AdditionalInfo returns a copy of the 127 byte media block for m.
func (m Media) AdditionalInfo() ([]byte, error) {
	if len(m.info) == 0 {
		return nil, errors.Wrapf(ErrUnknownMedia, "no media information block for %s", m.Name)
	}
	return append([]byte(nil), m.info...), nil
}

// ReadMediaInfo reads a custom media information block, which must be exactly 127 bytes.
func ReadMediaInfo(r io.Reader) ([]byte, error) {
	bs, err := io.ReadAll(io.LimitReader(r, MediaInfoLength+1))
	if err != nil {
		return nil, errors.Wrap(err, "read media information")
	}
	if len(bs) != MediaInfoLength {
		return nil, errors.Wrapf(ErrMediaInfoLength, "got %d bytes", len(bs))
	}
	return bs, nil
}

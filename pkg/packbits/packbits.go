// Package packbits implements the PackBits run-length encoding used for
// compressed raster transfer ("TIFF" compression mode).
//
// Each chunk starts with a control byte n:
//
//	0..127   copy the next n+1 bytes literally
//	129..255 repeat the next byte 257-n times
//	128      no-op
package packbits

import (
	"github.com/pkg/errors"
	"github.com/samber/lo"
)

// MaxRun is the longest literal or repeat run a single chunk can describe.
const MaxRun = 128

var ErrCorrupt = errors.New("packbits: truncated chunk")

// Compress encodes data. Runs of two or more identical bytes are always
// emitted as repeat chunks; a literal run stops before the next pair of equal bytes.
func Compress(data []byte) []byte {
	out := make([]byte, 0, len(data)+len(data)/MaxRun+1)

	for i := 0; i < len(data); {
		run := 1
		for i+run < len(data) && run < MaxRun && data[i+run] == data[i] {
			run++
		}

		if run >= 2 {
			out = append(out, byte(257-run), data[i])
			i += run
			continue
		}

		literal := 1
		for i+literal < len(data) && literal < MaxRun {
			if i+literal+1 < len(data) && data[i+literal] == data[i+literal+1] {
				break
			}
			literal++
		}

		out = append(out, byte(literal-1))
		out = append(out, data[i:i+literal]...)
		i += literal
	}

	return out
}

// CompressLines compresses each line independently.
func CompressLines(lines [][]byte) [][]byte {
	return lo.Map(lines, func(line []byte, _ int) []byte {
		return Compress(line)
	})
}

// Decode expands PackBits data.
func Decode(data []byte) ([]byte, error) {
	var out []byte

	for i := 0; i < len(data); {
		n := data[i]
		i++

		switch {
		case n < 128:
			count := int(n) + 1
			if i+count > len(data) {
				return nil, errors.Wrapf(ErrCorrupt, "literal of %d bytes at offset %d", count, i-1)
			}
			out = append(out, data[i:i+count]...)
			i += count
		case n > 128:
			if i >= len(data) {
				return nil, errors.Wrapf(ErrCorrupt, "repeat without value at offset %d", i-1)
			}
			for j := 0; j < 257-int(n); j++ {
				out = append(out, data[i])
			}
			i++
		}
	}

	return out, nil
}

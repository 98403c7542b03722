package packbits

import (
	"bytes"
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompress(t *testing.T) {
	tests := []struct {
		name string
		in   []byte
		want []byte
	}{
		{"empty", nil, []byte{}},
		{"single byte", []byte{0x42}, []byte{0x00, 0x42}},
		{"run of two", []byte{0xAA, 0xAA}, []byte{0xFF, 0xAA}},
		{"run of three", []byte{7, 7, 7}, []byte{0xFE, 7}},
		{"literal then trailing byte", []byte{1, 2, 3}, []byte{0x02, 1, 2, 3}},
		{"literal stops before pair", []byte{1, 2, 3, 3}, []byte{0x01, 1, 2, 0xFF, 3}},
		{"pair then single", []byte{5, 5, 6}, []byte{0xFF, 5, 0x00, 6}},
		{
			"mixed sample",
			[]byte{0x00, 0x00, 0x00, 0x22, 0x22, 0x23, 0xBA, 0xBF, 0xA2, 0x22, 0x2B},
			[]byte{0xFE, 0x00, 0xFF, 0x22, 0x05, 0x23, 0xBA, 0xBF, 0xA2, 0x22, 0x2B},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Compress(tt.in))
		})
	}
}

func TestCompressRunBoundaries(t *testing.T) {
	assert.Equal(t, []byte{0xFF, 0x11}, Compress(bytes.Repeat([]byte{0x11}, 2)))
	assert.Equal(t, []byte{129, 0x11}, Compress(bytes.Repeat([]byte{0x11}, 128)))
	assert.Equal(t, []byte{129, 0x11, 0x00, 0x11}, Compress(bytes.Repeat([]byte{0x11}, 129)))
	assert.Equal(t, []byte{129, 0x11, 0xFF, 0x11}, Compress(bytes.Repeat([]byte{0x11}, 130)))
}

func TestCompressLiteralCap(t *testing.T) {
	in := make([]byte, 130)
	for i := range in {
		in[i] = byte(i)
	}

	out := Compress(in)
	require.Len(t, out, 1+128+1+2)
	assert.Equal(t, byte(127), out[0])
	assert.Equal(t, in[:128], out[1:129])
	assert.Equal(t, byte(1), out[129])
	assert.Equal(t, in[128:], out[130:])
}

func TestDecode(t *testing.T) {
	out, err := Decode([]byte{0x02, 1, 2, 3, 0xFD, 9, 0x80, 0x00, 4})
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3, 9, 9, 9, 9, 4}, out)
}

func TestDecodeCorrupt(t *testing.T) {
	_, err := Decode([]byte{0x03, 1, 2})
	assert.ErrorIs(t, err, ErrCorrupt)

	_, err = Decode([]byte{0xFE})
	assert.ErrorIs(t, err, ErrCorrupt)
}

func randomLine(n int, alphabet int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte(rand.IntN(alphabet))
	}
	return b
}

func TestRoundTrip(t *testing.T) {
	for i := 0; i < 200; i++ {
		// a small alphabet produces plenty of runs, a large one plenty of literals
		alphabet := []int{2, 4, 256}[i%3]
		in := randomLine(rand.IntN(600), alphabet)

		t.Run(fmt.Sprintf("case %d len %d", i, len(in)), func(t *testing.T) {
			out, err := Decode(Compress(in))
			require.NoError(t, err)
			assert.Equal(t, len(in), len(out))
			assert.True(t, bytes.Equal(in, out))
		})
	}
}

func TestCompressLines(t *testing.T) {
	lines := [][]byte{bytes.Repeat([]byte{0}, 56), {1, 2}}
	out := CompressLines(lines)
	require.Len(t, out, 2)
	assert.Equal(t, []byte{0xC9, 0x00}, out[0])
	assert.Equal(t, []byte{0x01, 1, 2}, out[1])
}

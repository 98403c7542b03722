package bitmap

import (
	"bytes"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReverseBits(t *testing.T) {
	assert.Equal(t, byte(0x80), ReverseBits(0x01))
	assert.Equal(t, byte(0x01), ReverseBits(0x80))
	assert.Equal(t, byte(0x0F), ReverseBits(0xF0))
	assert.Equal(t, byte(0xFF), ReverseBits(0xFF))
	assert.Equal(t, byte(0x00), ReverseBits(0x00))
	assert.Equal(t, byte(0xB3), ReverseBits(0xCD))
}

func TestReverseBitsInvolution(t *testing.T) {
	seen := make(map[byte]bool, 256)
	for i := 0; i < 256; i++ {
		b := byte(i)
		assert.Equal(t, b, ReverseBits(ReverseBits(b)), "byte 0x%02X", b)
		seen[ReverseBits(b)] = true
	}
	assert.Len(t, seen, 256, "ReverseBits must be a bijection")
}

func TestPaddedLength(t *testing.T) {
	for _, lineWidth := range []int{1, 7, 56, 84} {
		for n := 0; n < 4*lineWidth; n++ {
			padded := PaddedLength(n, lineWidth)
			assert.Zero(t, padded%lineWidth, "n=%d L=%d", n, lineWidth)
			assert.GreaterOrEqual(t, padded-n, 1, "n=%d L=%d", n, lineWidth)
			assert.LessOrEqual(t, padded-n, lineWidth, "n=%d L=%d", n, lineWidth)
		}
	}

	// aligned input still gains a full line
	assert.Equal(t, 112, PaddedLength(56, 56))
	assert.Equal(t, 56, PaddedLength(0, 56))
}

func TestToDeviceLines(t *testing.T) {
	row0 := []byte{0xFF, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}
	row1 := make([]byte, 8)
	b, err := Load(pbm("P4\n64 2\n", append(row0, row1...)...))
	require.NoError(t, err)

	lines, err := ToDeviceLines(b, 56)
	require.NoError(t, err)

	// two rows of 8 bytes plus terminator each = 18 bytes, padded to 56
	require.Len(t, lines, 1)
	require.Len(t, lines[0], 56)
	assert.Equal(t, []byte{0xFF, 0, 0, 0, 0, 0, 0, 0, 0x00}, lines[0][:9])
	assert.Equal(t, make([]byte, 47), lines[0][9:])
}

func TestToDeviceLinesReversesBitsAndTerminatesRows(t *testing.T) {
	b, err := New(16, 2, []byte{0x01, 0x80, 0xF0, 0x0C})
	require.NoError(t, err)

	lines, err := ToDeviceLines(b, 4)
	require.NoError(t, err)

	// 6 bytes pad to 8
	require.Len(t, lines, 2)
	assert.Equal(t, []byte{0x80, 0x01, 0x00, 0x0F}, lines[0])
	assert.Equal(t, []byte{0x30, 0x00, 0x00, 0x00}, lines[1])
}

func TestToDeviceLinesAlignedInputGetsExtraLine(t *testing.T) {
	// 3 rows of 1 byte + terminator = 6 bytes, line width 3 -> 9 bytes
	b, err := New(8, 3, []byte{1, 2, 3})
	require.NoError(t, err)

	lines, err := ToDeviceLines(b, 3)
	require.NoError(t, err)
	require.Len(t, lines, 3)
	assert.Equal(t, []byte{0, 0, 0}, lines[2])
}

func TestToDeviceLinesMirror(t *testing.T) {
	b, err := New(16, 1, []byte{0x01, 0x80})
	require.NoError(t, err)

	lines, err := ToDeviceLines(b, 3, WithMirror())
	require.NoError(t, err)
	assert.Equal(t, []byte{0x01, 0x80, 0x00}, lines[0])
}

func TestToDeviceLinesBadWidth(t *testing.T) {
	b, err := New(8, 1, []byte{0})
	require.NoError(t, err)

	_, err = ToDeviceLines(b, 0)
	assert.ErrorIs(t, err, ErrLineWidth)
}

func TestToDeviceLinesRandom(t *testing.T) {
	for i := 0; i < 30; i++ {
		width := 8 * (1 + rand.IntN(60))
		height := 1 + rand.IntN(200)
		lineWidth := 1 + rand.IntN(100)

		data := make([]byte, width/8*height)
		for j := range data {
			data[j] = byte(rand.IntN(256))
		}
		b, err := New(width, height, data)
		require.NoError(t, err)

		lines, err := ToDeviceLines(b, lineWidth)
		require.NoError(t, err)

		flat := bytes.Join(lines, nil)
		n := (width/8 + 1) * height
		assert.Equal(t, PaddedLength(n, lineWidth), len(flat))
		for _, line := range lines {
			assert.Len(t, line, lineWidth)
		}

		// undo the conversion row by row
		for y := 0; y < height; y++ {
			got := flat[y*(width/8+1) : (y+1)*(width/8+1)]
			for x, v := range got[:width/8] {
				assert.Equal(t, b.Row(y)[x], ReverseBits(v))
			}
			assert.Equal(t, RowTerminator, got[width/8])
		}
	}
}

func TestChessboard(t *testing.T) {
	lines := Chessboard(56, 20, 8)
	require.Len(t, lines, 20)
	for i, line := range lines {
		want := byte(0xF0)
		if (i/8)%2 == 1 {
			want = 0x0F
		}
		assert.Len(t, line, 56)
		assert.Equal(t, bytes.Repeat([]byte{want}, 56), line, "line %d", i)
	}
}

func TestRender(t *testing.T) {
	img := Render([][]byte{{0x01, 0x80}, {0x00, 0x00}})
	assert.Equal(t, 16, img.Bounds().Dx())
	assert.Equal(t, 2, img.Bounds().Dy())
	assert.Equal(t, uint8(0), img.GrayAt(0, 0).Y)
	assert.Equal(t, uint8(0xFF), img.GrayAt(1, 0).Y)
	assert.Equal(t, uint8(0), img.GrayAt(15, 0).Y)
	assert.Equal(t, uint8(0xFF), img.GrayAt(0, 1).Y)
}

package td2000

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lines(n, width int) [][]byte {
	out := make([][]byte, n)
	for i := range out {
		out[i] = make([]byte, width)
	}
	return out
}

func TestNewJobDefaults(t *testing.T) {
	job, err := NewJob(lines(3, 56))
	require.NoError(t, err)

	spec := job.Spec()
	assert.Equal(t, MediaContinuous, spec.Media)
	assert.Equal(t, byte(58), spec.WidthMM)
	assert.Equal(t, MediaInfo58mm[:], spec.MediaInfo)
	assert.Equal(t, CompressionNone, spec.Compression)
	assert.True(t, spec.Feed)
	assert.Nil(t, spec.Margin)
	assert.Equal(t, 3, job.Len())
	assert.Equal(t, 56, job.LineWidth())
	assert.Equal(t, 168, job.Size())
	assert.NotEmpty(t, job.ID())

	info := job.printInfo(PageStarting)
	assert.Equal(t, PrintInfoKind|PrintInfoWidth|PrintInfoRecovery, info.Fields)
	assert.Equal(t, uint32(3), info.RasterCount)
}

func TestNewJobCopiesLines(t *testing.T) {
	src := lines(2, 4)
	job, err := NewJob(src)
	require.NoError(t, err)

	src[0][0] = 0xFF
	assert.Equal(t, byte(0), job.Lines()[0][0])

	out := job.Lines()
	out[1][1] = 0xFF
	assert.Equal(t, byte(0), job.Lines()[1][1])
}

func TestNewJobOptions(t *testing.T) {
	media, err := LookupMedia("40x60")
	require.NoError(t, err)

	job, err := NewJob(lines(1, 56),
		WithMedia(media),
		WithCompression(CompressionTIFF),
		WithMargin(DefaultMargin),
		WithModeSettings(ModeAutoCut),
		WithoutFeed(),
		WithZeroLines(),
		WithQuality(),
		WithPage(PageOther),
	)
	require.NoError(t, err)

	spec := job.Spec()
	assert.Equal(t, MediaDieCut, spec.Media)
	assert.Nil(t, spec.MediaInfo)
	require.NotNil(t, spec.Margin)
	assert.Equal(t, uint16(24), *spec.Margin)
	assert.False(t, spec.Feed)
	assert.True(t, spec.ZeroLines)

	info := job.printInfo(spec.Page)
	assert.Equal(t, PrintInfoKind|PrintInfoWidth|PrintInfoMediaLength|PrintInfoQuality|PrintInfoRecovery, info.Fields)
	assert.Equal(t, byte(60), info.LengthMM)
	assert.Equal(t, PageOther, info.Page)

	again, err := NewJob(lines(1, 56), WithSpec(spec))
	require.NoError(t, err)
	assert.Equal(t, spec, again.Spec())
	assert.NotEqual(t, job.ID(), again.ID())
}

func TestNewJobValidation(t *testing.T) {
	_, err := NewJob(nil)
	assert.True(t, errors.Is(err, ErrEmptyJob))

	_, err = NewJob([][]byte{make([]byte, 56), make([]byte, 55)})
	assert.True(t, errors.Is(err, ErrLineLength))

	_, err = NewJob(lines(1, 56), WithMediaInfo(make([]byte, 12)))
	assert.True(t, errors.Is(err, ErrMediaInfoLength))
}

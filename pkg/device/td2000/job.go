package td2000

import (
	"github.com/pkg/errors"
	"github.com/rs/xid"
	"github.com/samber/lo"
)

// JobSpec is the print metadata sent ahead of the raster lines.
type JobSpec struct {
	Media       MediaType
	WidthMM     byte
	LengthMM    byte
	MediaInfo   []byte
	Compression CompressionMode
	Settings    ModeSettings
	// Margin is sent with Specify-Margin-Amount when set.
	Margin    *uint16
	Quality   bool
	Feed      bool
	ZeroLines bool
	Page      PageType
}

type JobOption func(s *JobSpec)

// WithMedia declares the loaded media. Media without a known information
// block clears MediaInfo; set one with WithMediaInfo.
func WithMedia(m Media) JobOption {
	return func(s *JobSpec) {
		s.Media = m.Type
		s.WidthMM = m.WidthMM
		s.LengthMM = m.LengthMM
		s.MediaInfo, _ = m.AdditionalInfo()
	}
}

func WithMediaInfo(info []byte) JobOption {
	return func(s *JobSpec) {
		s.MediaInfo = append([]byte(nil), info...)
	}
}

func WithCompression(mode CompressionMode) JobOption {
	return func(s *JobSpec) {
		s.Compression = mode
	}
}

func WithMargin(dots uint16) JobOption {
	return func(s *JobSpec) {
		s.Margin = &dots
	}
}

func WithModeSettings(settings ModeSettings) JobOption {
	return func(s *JobSpec) {
		s.Settings = settings
	}
}

// WithoutFeed ends the job with Print instead of Print-With-Feeding, leaving
// the session open for another page.
func WithoutFeed() JobOption {
	return func(s *JobSpec) {
		s.Feed = false
	}
}

// WithZeroLines sends blank lines as a one byte Zero-Raster-Graphics frame
// when the job is not compressed.
func WithZeroLines() JobOption {
	return func(s *JobSpec) {
		s.ZeroLines = true
	}
}

func WithQuality() JobOption {
	return func(s *JobSpec) {
		s.Quality = true
	}
}

func WithPage(page PageType) JobOption {
	return func(s *JobSpec) {
		s.Page = page
	}
}

// WithSpec replaces the whole spec, e.g. one received over the wire.
func WithSpec(spec JobSpec) JobOption {
	return func(s *JobSpec) {
		*s = spec
	}
}

func DefaultJobSpec() JobSpec {
	return JobSpec{
		Media:     MediaContinuous,
		WidthMM:   58,
		MediaInfo: MediaInfo58mm[:],
		Feed:      true,
	}
}

// Job is an immutable set of device lines plus its metadata.
type Job struct {
	id    xid.ID
	lines [][]byte
	spec  JobSpec
}

// NewJob copies lines, which must be non-empty and of equal length.
func NewJob(lines [][]byte, opts ...JobOption) (*Job, error) {
	if len(lines) == 0 {
		return nil, ErrEmptyJob
	}

	width := len(lines[0])
	if bad, ok := lo.Find(lines, func(l []byte) bool { return len(l) != width }); ok {
		return nil, errors.Wrapf(ErrLineLength, "mixed line widths %d and %d", width, len(bad))
	}

	spec := DefaultJobSpec()
	for _, opt := range opts {
		opt(&spec)
	}
	if spec.MediaInfo != nil && len(spec.MediaInfo) != MediaInfoLength {
		return nil, errors.Wrapf(ErrMediaInfoLength, "got %d bytes", len(spec.MediaInfo))
	}
	spec.MediaInfo = append([]byte(nil), spec.MediaInfo...)

	return &Job{
		id: xid.New(),
		lines: lo.Map(lines, func(l []byte, _ int) []byte {
			return append([]byte(nil), l...)
		}),
		spec: spec,
	}, nil
}

func (j *Job) ID() string {
	return j.id.String()
}

func (j *Job) Len() int {
	return len(j.lines)
}

// LineWidth is the byte width shared by every line.
func (j *Job) LineWidth() int {
	return len(j.lines[0])
}

// Size is the raster payload in bytes, before compression.
func (j *Job) Size() int {
	return j.Len() * j.LineWidth()
}

func (j *Job) Lines() [][]byte {
	return lo.Map(j.lines, func(l []byte, _ int) []byte {
		return append([]byte(nil), l...)
	})
}

func (j *Job) Spec() JobSpec {
	spec := j.spec
	spec.MediaInfo = append([]byte(nil), j.spec.MediaInfo...)
	return spec
}

func (j *Job) printInfo(page PageType) PrintInfo {
	fields := PrintInfoKind | PrintInfoWidth | PrintInfoRecovery
	if j.spec.LengthMM > 0 {
		fields |= PrintInfoMediaLength
	}
	if j.spec.Quality {
		fields |= PrintInfoQuality
	}

	return PrintInfo{
		Fields:      fields,
		MediaType:   j.spec.Media,
		WidthMM:     j.spec.WidthMM,
		LengthMM:    j.spec.LengthMM,
		RasterCount: uint32(len(j.lines)),
		Page:        page,
	}
}

package bitmap

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
	"github.com/makeworld-the-better-one/dither/v2"
	"github.com/pkg/errors"
)

// FromImage dithers img to black and white and packs it into a bitmap
// exactly width pixels wide. Wider images are scaled down; narrower ones
// are padded with white on the right.
func FromImage(img image.Image, width int) (*Bitmap, error) {
	if width <= 0 || width%8 != 0 {
		return nil, errors.Wrapf(ErrUnsupportedWidth, "width %d", width)
	}
	if img.Bounds().Empty() {
		return nil, errors.Wrap(ErrBadHeader, "empty image")
	}

	src := img
	if img.Bounds().Dx() > width {
		src = imaging.Resize(img, width, 0, imaging.Lanczos)
	}

	d := dither.NewDitherer([]color.Color{color.Black, color.White})
	d.Matrix = dither.FloydSteinberg
	d.Serpentine = true
	pal := d.DitherPaletted(imaging.Grayscale(src))

	bounds := pal.Bounds()
	stride := width / 8
	data := make([]byte, stride*bounds.Dy())
	for y := 0; y < bounds.Dy(); y++ {
		for x := 0; x < bounds.Dx(); x++ {
			if pal.ColorIndexAt(bounds.Min.X+x, bounds.Min.Y+y) == 0 {
				data[y*stride+x/8] |= 0x80 >> (x % 8)
			}
		}
	}

	return New(width, bounds.Dy(), data)
}

package bitmap

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// Render draws head lines as the printer lays them down: one pixel row per
// line, least significant bit of each byte first.
func Render(lines [][]byte) *image.Gray {
	width := 0
	for _, line := range lines {
		if len(line)*8 > width {
			width = len(line) * 8
		}
	}

	dst := image.NewGray(image.Rect(0, 0, width, len(lines)))
	for i := range dst.Pix {
		dst.Pix[i] = 0xFF
	}

	for y, line := range lines {
		for x := 0; x < len(line)*8; x++ {
			if line[x/8]&(1<<(x%8)) != 0 {
				dst.SetGray(x, y, color.Gray{})
			}
		}
	}

	return dst
}

// SavePreview writes a rendered preview to path, the format follows the file extension.
func SavePreview(path string, lines [][]byte, scale int) error {
	img := image.Image(Render(lines))
	if scale > 1 {
		b := img.Bounds()
		img = imaging.Resize(img, b.Dx()*scale, b.Dy()*scale, imaging.NearestNeighbor)
	}
	return imaging.Save(img, path)
}

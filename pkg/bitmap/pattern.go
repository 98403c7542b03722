package bitmap

// Chessboard builds head lines for the alignment test pattern: bands of band
// lines alternating 0xF0 and 0x0F across the whole head.
func Chessboard(lineWidth, lines, band int) [][]byte {
	if band <= 0 {
		band = 8
	}

	out := make([][]byte, lines)
	flip := false
	for i := range out {
		if i%band == 0 {
			flip = !flip
		}

		fill := byte(0x0F)
		if flip {
			fill = 0xF0
		}

		line := make([]byte, lineWidth)
		for j := range line {
			line[j] = fill
		}
		out[i] = line
	}
	return out
}

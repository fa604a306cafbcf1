package domain

// CheckWin reports whether the piece at c completes ToWin in a row.
// Only lines passing through c are scanned since a new five must include
// the cell that was just played.
func CheckWin(b *Board, c Coord) bool {
	piece := b.At(c)
	if piece == Empty {
		return false
	}

	directions := [][2]int{
		{0, 1},  // horizontal
		{1, 0},  // vertical
		{1, 1},  // diagonal \
		{1, -1}, // diagonal /
	}

	for _, dir := range directions {
		total := 1 +
			b.CountInDirection(c, dir[0], dir[1], piece) +
			b.CountInDirection(c, -dir[0], -dir[1], piece)
		if total >= ToWin {
			return true
		}
	}
	return false
}

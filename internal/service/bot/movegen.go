package bot

import "github.com/iamasit07/five-in-a-row/backend/internal/domain"

// neighbor offsets in emission order: N, NW, NE, S, SW, SE, W, E
var neighborOffsets = [8][2]int{
	{-1, 0}, {-1, -1}, {-1, 1},
	{1, 0}, {1, -1}, {1, 1},
	{0, -1}, {0, 1},
}

// candidateMoves lists every empty cell touching an occupied one, walking
// occupied cells in play order. A cell next to several occupied cells is
// listed once per neighbor; duplicates are kept so that move order, and with
// it the tie-break between equal scores, stays stable.
func candidateMoves(p *Position) []domain.Coord {
	moves := make([]domain.Coord, 0, len(p.occupied)*len(neighborOffsets))
	for _, c := range p.occupied {
		for _, off := range neighborOffsets {
			row, col := c.Row+off[0], c.Col+off[1]
			if row < 0 || row >= p.dimension || col < 0 || col >= p.dimension {
				continue
			}
			if p.isEmpty(row, col) {
				moves = append(moves, domain.Coord{Row: row, Col: col})
			}
		}
	}
	return moves
}

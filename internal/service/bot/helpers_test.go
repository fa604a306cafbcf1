package bot

import (
	"testing"

	"github.com/iamasit07/five-in-a-row/backend/internal/domain"
)

// testBoard places xs then os on a fresh board and leaves lastMover as the
// side that moved most recently.
func testBoard(t *testing.T, dim int, human, lastMover domain.Piece, xs, os []domain.Coord) *domain.Board {
	t.Helper()
	b := domain.NewBoard(dim, human)
	for _, c := range xs {
		if err := b.Place(c, domain.PieceX); err != nil {
			t.Fatalf("place x %v: %v", c, err)
		}
	}
	for _, c := range os {
		if err := b.Place(c, domain.PieceO); err != nil {
			t.Fatalf("place o %v: %v", c, err)
		}
	}
	b.LastMover = lastMover
	return b
}

func testPosition(t *testing.T, b *domain.Board) *Position {
	t.Helper()
	p, err := positionFromBoard(b)
	if err != nil {
		t.Fatalf("positionFromBoard: %v", err)
	}
	return p
}

func row(r int, cols ...int) []domain.Coord {
	out := make([]domain.Coord, 0, len(cols))
	for _, c := range cols {
		out = append(out, domain.Coord{Row: r, Col: c})
	}
	return out
}

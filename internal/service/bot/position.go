package bot

import (
	"fmt"

	"github.com/iamasit07/five-in-a-row/backend/internal/domain"
)

// Position is a search node: a full board snapshot plus whose turn is next.
// Positions are never mutated once created; withMove derives a new one.
type Position struct {
	dimension  int
	grid       []domain.Piece // row-major, dimension*dimension
	occupied   []domain.Coord // in play order
	turnToMove domain.Piece
	lastPlayed domain.Piece
	lastMove   domain.Coord
}

// positionFromBoard copies the live board into a fresh root position.
func positionFromBoard(board *domain.Board) (*Position, error) {
	if err := board.Validate(); err != nil {
		return nil, fmt.Errorf("building root position: %w", err)
	}

	dim := board.Dimension
	grid := make([]domain.Piece, dim*dim)
	for row := 0; row < dim; row++ {
		copy(grid[row*dim:(row+1)*dim], board.Cells[row])
	}

	occupied := make([]domain.Coord, len(board.Moves))
	copy(occupied, board.Moves)

	lastPlayed := board.LastMover
	var lastMove domain.Coord
	if len(occupied) > 0 {
		lastMove = occupied[len(occupied)-1]
		if lastPlayed == domain.Empty {
			lastPlayed = board.At(lastMove)
		}
	}
	if lastPlayed == domain.Empty {
		// nobody has moved yet, X opens
		lastPlayed = domain.PieceO
	}

	return &Position{
		dimension:  dim,
		grid:       grid,
		occupied:   occupied,
		turnToMove: lastPlayed.Opponent(),
		lastPlayed: lastPlayed,
		lastMove:   lastMove,
	}, nil
}

func (p *Position) at(row, col int) domain.Piece {
	return p.grid[row*p.dimension+col]
}

func (p *Position) isEmpty(row, col int) bool {
	return p.at(row, col) == domain.Empty
}

// withMove returns a copy of p with piece placed on c. Placing on an occupied
// cell is a programming error: candidate moves are always empty.
func (p *Position) withMove(c domain.Coord, piece domain.Piece) *Position {
	idx := c.Row*p.dimension + c.Col
	if p.grid[idx] != domain.Empty {
		panic(fmt.Sprintf("bot: move (%d,%d) on occupied cell", c.Row, c.Col))
	}

	grid := make([]domain.Piece, len(p.grid))
	copy(grid, p.grid)
	grid[idx] = piece

	occupied := make([]domain.Coord, len(p.occupied), len(p.occupied)+1)
	copy(occupied, p.occupied)
	occupied = append(occupied, c)

	return &Position{
		dimension:  p.dimension,
		grid:       grid,
		occupied:   occupied,
		turnToMove: piece.Opponent(),
		lastPlayed: piece,
		lastMove:   c,
	}
}

func (p *Position) center() domain.Coord {
	mid := p.dimension / 2
	return domain.Coord{Row: mid, Col: mid}
}

package domain

// Board is the live game board owned by a game. The AI never mutates it;
// it builds its own search positions from a Board snapshot.
type Board struct {
	Dimension  int       `json:"dimension"`
	Cells      [][]Piece `json:"cells"`
	Moves      []Coord   `json:"moves"`
	HumanPiece Piece     `json:"humanPiece"`
	LastMover  Piece     `json:"lastMover"`
}

func NewBoard(dimension int, humanPiece Piece) *Board {
	cells := make([][]Piece, dimension)
	for i := range cells {
		cells[i] = make([]Piece, dimension)
	}
	return &Board{
		Dimension:  dimension,
		Cells:      cells,
		Moves:      []Coord{},
		HumanPiece: humanPiece,
		LastMover:  Empty,
	}
}

// AIPiece is the piece the AI plays with on this board.
func (b *Board) AIPiece() Piece {
	return b.HumanPiece.Opponent()
}

// NextPiece is the piece that moves next. X always opens.
func (b *Board) NextPiece() Piece {
	if b.LastMover == Empty {
		return PieceX
	}
	return b.LastMover.Opponent()
}

func (b *Board) InBounds(c Coord) bool {
	return c.Row >= 0 && c.Row < b.Dimension && c.Col >= 0 && c.Col < b.Dimension
}

func (b *Board) At(c Coord) Piece {
	return b.Cells[c.Row][c.Col]
}

// Place puts piece on an empty cell and records it as the latest move.
func (b *Board) Place(c Coord, piece Piece) error {
	if !b.InBounds(c) {
		return ErrOutOfBounds
	}
	if b.Cells[c.Row][c.Col] != Empty {
		return ErrCellOccupied
	}
	b.Cells[c.Row][c.Col] = piece
	b.Moves = append(b.Moves, c)
	b.LastMover = piece
	return nil
}

func (b *Board) IsFull() bool {
	return len(b.Moves) >= b.Dimension*b.Dimension
}

// Validate checks that the board is square and that Moves agrees with Cells.
func (b *Board) Validate() error {
	if b.Dimension <= 0 || len(b.Cells) != b.Dimension {
		return ErrMalformedBoard
	}
	if b.HumanPiece != PieceX && b.HumanPiece != PieceO {
		return ErrMalformedBoard
	}
	occupied := 0
	for _, row := range b.Cells {
		if len(row) != b.Dimension {
			return ErrMalformedBoard
		}
		for _, p := range row {
			if p != Empty {
				occupied++
			}
		}
	}
	if occupied != len(b.Moves) {
		return ErrMalformedBoard
	}
	for _, m := range b.Moves {
		if !b.InBounds(m) || b.At(m) == Empty {
			return ErrMalformedBoard
		}
	}
	return nil
}

// this creates a deep copy of the board
func (b *Board) Clone() *Board {
	cells := make([][]Piece, len(b.Cells))
	for i := range b.Cells {
		cells[i] = make([]Piece, len(b.Cells[i]))
		copy(cells[i], b.Cells[i])
	}
	moves := make([]Coord, len(b.Moves))
	copy(moves, b.Moves)
	return &Board{
		Dimension:  b.Dimension,
		Cells:      cells,
		Moves:      moves,
		HumanPiece: b.HumanPiece,
		LastMover:  b.LastMover,
	}
}

// Ints flattens the board into plain ints for storage and the wire.
func (b *Board) Ints() [][]int {
	out := make([][]int, len(b.Cells))
	for i := range b.Cells {
		out[i] = make([]int, len(b.Cells[i]))
		for j := range b.Cells[i] {
			out[i][j] = int(b.Cells[i][j])
		}
	}
	return out
}

// CountInDirection counts consecutive pieces starting one step away from c.
func (b *Board) CountInDirection(c Coord, deltaRow, deltaCol int, piece Piece) int {
	count := 0
	r, col := c.Row+deltaRow, c.Col+deltaCol
	for r >= 0 && r < b.Dimension && col >= 0 && col < b.Dimension && b.Cells[r][col] == piece {
		count++
		r += deltaRow
		col += deltaCol
	}
	return count
}

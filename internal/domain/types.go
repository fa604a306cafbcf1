package domain

// Piece is the content of a single cell.
type Piece int

const (
	Empty  Piece = 0
	PieceX Piece = 1
	PieceO Piece = 2
)

// Opponent returns the other non-empty piece. Empty maps to Empty.
func (p Piece) Opponent() Piece {
	switch p {
	case PieceX:
		return PieceO
	case PieceO:
		return PieceX
	}
	return Empty
}

func (p Piece) String() string {
	switch p {
	case PieceX:
		return "x"
	case PieceO:
		return "o"
	}
	return "_"
}

const (
	BoardSize = 15
	ToWin     = 5
)

// Coord addresses a cell by row and column, both zero based.
type Coord struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// to represent the game status
type GameStatus string

const (
	StatusActive GameStatus = "active"
	StatusWon    GameStatus = "won"
	StatusDraw   GameStatus = "draw"
)

// basic error that can occur
type Error string

func (e Error) Error() string {
	return string(e)
}

const (
	ErrInvalidMove    Error = "invalid move"
	ErrOutOfBounds    Error = "cell is outside the board"
	ErrCellOccupied   Error = "cell is already occupied"
	ErrNotYourTurn    Error = "not your turn"
	ErrGameFinished   Error = "game is already finished"
	ErrBoardFull      Error = "board is full"
	ErrMalformedBoard Error = "malformed board"
	ErrGameNotFound   Error = "game not found"
	ErrInvalidToken   Error = "invalid player token"
)

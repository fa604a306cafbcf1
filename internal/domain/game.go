package domain

type Game struct {
	Board     *Board
	Status    GameStatus
	Winner    Piece
	MoveCount int
}

// NewGame starts an empty board. When humanFirst is false the AI holds X
// and is expected to open.
func NewGame(humanFirst bool) *Game {
	human := PieceX
	if !humanFirst {
		human = PieceO
	}
	return &Game{
		Board:  NewBoard(BoardSize, human),
		Status: StatusActive,
		Winner: Empty,
	}
}

func (g *Game) CurrentPiece() Piece {
	return g.Board.NextPiece()
}

func (g *Game) HumanPiece() Piece {
	return g.Board.HumanPiece
}

func (g *Game) AIPiece() Piece {
	return g.Board.AIPiece()
}

func (g *Game) IsAITurn() bool {
	return !g.IsFinished() && g.CurrentPiece() == g.AIPiece()
}

func (g *Game) MakeMove(piece Piece, c Coord) error {
	if g.Status != StatusActive {
		return ErrGameFinished
	}
	if piece != g.CurrentPiece() {
		return ErrNotYourTurn
	}
	if err := g.Board.Place(c, piece); err != nil {
		return err
	}

	g.MoveCount++

	if CheckWin(g.Board, c) {
		g.Status = StatusWon
		g.Winner = piece
		return nil
	}

	if g.Board.IsFull() {
		g.Status = StatusDraw
	}
	return nil
}

func (g *Game) IsFinished() bool {
	return g.Status == StatusWon || g.Status == StatusDraw
}

package game

import (
	"time"

	"github.com/iamasit07/five-in-a-row/backend/internal/domain"
)

// GameView is the client-facing state of a game, also used as the cached
// snapshot format.
type GameView struct {
	GameID     string         `json:"gameId"`
	Board      [][]int        `json:"board"`
	Moves      []domain.Coord `json:"moves"`
	HumanPiece int            `json:"humanPiece"`
	AIPiece    int            `json:"aiPiece"`
	NextTurn   int            `json:"nextTurn"`
	Status     string         `json:"status"`
	Winner     string         `json:"winner,omitempty"`
	Reason     string         `json:"reason,omitempty"`
	Difficulty string         `json:"difficulty,omitempty"`
	Depth      int            `json:"depth"`
	AIThinking bool           `json:"aiThinking"`
	CreatedAt  time.Time      `json:"createdAt"`
}

// view builds the GameView. Caller must hold gs.mu.
func (gs *GameSession) view() GameView {
	board := gs.Game.Board
	moves := make([]domain.Coord, len(board.Moves))
	copy(moves, board.Moves)

	nextTurn := 0
	if !gs.Game.IsFinished() {
		nextTurn = int(gs.Game.CurrentPiece())
	}

	return GameView{
		GameID:     gs.GameID,
		Board:      board.Ints(),
		Moves:      moves,
		HumanPiece: int(gs.Game.HumanPiece()),
		AIPiece:    int(gs.Game.AIPiece()),
		NextTurn:   nextTurn,
		Status:     string(gs.Game.Status),
		Winner:     gs.winnerLabel(),
		Reason:     gs.Reason,
		Difficulty: gs.Difficulty,
		Depth:      gs.Depth,
		AIThinking: gs.aiThinking,
		CreatedAt:  gs.CreatedAt,
	}
}

func (gs *GameSession) stateMessage(kind string) domain.ServerMessage {
	nextTurn := 0
	if !gs.Game.IsFinished() {
		nextTurn = int(gs.Game.CurrentPiece())
	}
	return domain.ServerMessage{
		Type:       kind,
		GameID:     gs.GameID,
		HumanPiece: int(gs.Game.HumanPiece()),
		NextTurn:   nextTurn,
		Board:      gs.Game.Board.Ints(),
		Status:     string(gs.Game.Status),
		Winner:     gs.winnerLabel(),
		Reason:     gs.Reason,
	}
}

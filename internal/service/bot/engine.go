package bot

import (
	"fmt"

	"github.com/iamasit07/five-in-a-row/backend/internal/domain"
)

// DepthForDifficulty maps a difficulty name to a search depth. Unknown or
// empty names fall back to the configured default.
func DepthForDifficulty(difficulty string, fallback int) int {
	switch difficulty {
	case "easy":
		return 1
	case "medium":
		return 2
	case "hard":
		return 3
	default:
		return clampDepth(fallback)
	}
}

// NextMove picks the AI's reply on the live board. The board is only read.
// On an empty board the center is returned without searching.
func NextMove(board *domain.Board, depth int) (domain.Coord, error) {
	result, err := Search(board, depth)
	if err != nil {
		return domain.Coord{}, err
	}
	return result.Move, nil
}

// Search is NextMove with the search statistics attached.
func Search(board *domain.Board, depth int) (SearchResult, error) {
	root, err := positionFromBoard(board)
	if err != nil {
		return SearchResult{}, err
	}

	result, err := chooseMove(root, board.AIPiece(), depth)
	if err != nil {
		return SearchResult{}, fmt.Errorf("choosing move: %w", err)
	}
	return result, nil
}

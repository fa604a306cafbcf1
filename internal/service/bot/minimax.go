package bot

import (
	"math"

	"github.com/iamasit07/five-in-a-row/backend/internal/domain"
)

const (
	MinSearchDepth = 1
	MaxSearchDepth = 4
)

// SearchResult is what one root search produced.
type SearchResult struct {
	Move   domain.Coord
	Score  float64
	Leaves int
}

// searcher holds the per-search context so that concurrent searches never
// share state.
type searcher struct {
	ai     domain.Piece
	root   *Position
	best   domain.Coord
	leaves int
}

// chooseMove runs minimax with alpha-beta pruning from root to a fixed
// depth and returns the first root move reaching the best value.
func chooseMove(root *Position, ai domain.Piece, depth int) (SearchResult, error) {
	if len(root.occupied) == 0 {
		return SearchResult{Move: root.center()}, nil
	}

	candidates := candidateMoves(root)
	if len(candidates) == 0 {
		return SearchResult{}, domain.ErrBoardFull
	}

	depth = clampDepth(depth)

	s := &searcher{ai: ai, root: root, best: candidates[0]}
	score := s.minimaxAB(root, depth, math.Inf(-1), math.Inf(1), true)

	return SearchResult{Move: s.best, Score: score, Leaves: s.leaves}, nil
}

// minimaxAB implements the minimax algorithm with alpha-beta pruning
func (s *searcher) minimaxAB(node *Position, depth int, alpha, beta float64, maximizing bool) float64 {
	if depth == 0 {
		s.leaves++
		return nodeScore(node, s.ai)
	}

	moves := candidateMoves(node)

	if maximizing {
		for _, c := range moves {
			child := node.withMove(c, node.turnToMove)
			value := s.minimaxAB(child, depth-1, alpha, beta, false)
			if value > alpha {
				alpha = value
				if node == s.root {
					s.best = c
				}
			}
			if beta <= alpha {
				return alpha // beta cutoff
			}
		}
		return alpha
	}

	for _, c := range moves {
		child := node.withMove(c, node.turnToMove)
		value := s.minimaxAB(child, depth-1, alpha, beta, true)
		if value < beta {
			beta = value
			if node == s.root {
				s.best = c
			}
		}
		if beta <= alpha {
			return beta // alpha cutoff
		}
	}
	return beta
}

func clampDepth(depth int) int {
	if depth < MinSearchDepth {
		return MinSearchDepth
	}
	if depth > MaxSearchDepth {
		return MaxSearchDepth
	}
	return depth
}

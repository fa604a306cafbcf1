package bot

import (
	"math"
	"sync"

	"github.com/iamasit07/five-in-a-row/backend/internal/domain"
)

// blockBias is added to the opponent's score at the leaves so that, all else
// equal, blocking an opponent threat beats an equal gain of our own.
const blockBias = 2

// lineCache maps a board dimension to its lines. Entries are built once and
// only read afterwards.
var lineCache sync.Map

// boardLines returns every row, column and diagonal of length >= ToWin as
// lists of grid indexes.
func boardLines(dim int) [][]int {
	if cached, ok := lineCache.Load(dim); ok {
		return cached.([][]int)
	}

	var lines [][]int
	walk := func(row, col, dRow, dCol int) {
		var line []int
		for row >= 0 && row < dim && col >= 0 && col < dim {
			line = append(line, row*dim+col)
			row += dRow
			col += dCol
		}
		if len(line) >= domain.ToWin {
			lines = append(lines, line)
		}
	}

	for i := 0; i < dim; i++ {
		walk(i, 0, 0, 1) // row
		walk(0, i, 1, 0) // column
	}
	// diagonals \ start on the top row or the left column
	for col := 0; col < dim; col++ {
		walk(0, col, 1, 1)
	}
	for row := 1; row < dim; row++ {
		walk(row, 0, 1, 1)
	}
	// diagonals / start on the top row or the right column
	for col := 0; col < dim; col++ {
		walk(0, col, 1, -1)
	}
	for row := 1; row < dim; row++ {
		walk(row, dim-1, 1, -1)
	}

	actual, _ := lineCache.LoadOrStore(dim, lines)
	return actual.([][]int)
}

// evaluate scores p from piece's point of view. A realized five returns
// +Inf; otherwise every pattern occurrence adds 2^weight.
func evaluate(p *Position, piece domain.Piece) float64 {
	lines := boardLines(p.dimension)
	opp := piece.Opponent()

	total := 0
	for _, line := range lines {
		total += len(line)
	}
	slab := make([]symbol, total)
	symLines := make([][]symbol, len(lines))

	offset := 0
	for i, line := range lines {
		syms := slab[offset : offset+len(line)]
		offset += len(line)

		run := 0
		for j, idx := range line {
			switch p.grid[idx] {
			case piece:
				syms[j] = symOwn
				run++
				if run >= domain.ToWin {
					return math.Inf(1)
				}
				continue
			case opp:
				syms[j] = symOpp
			default:
				syms[j] = symEmpty
			}
			run = 0
		}
		symLines[i] = syms
	}

	score := 0.0
	for _, group := range patternTable {
		found := 0
		for _, tmpl := range group.templates {
			for _, line := range symLines {
				found += countMatches(line, tmpl)
			}
		}
		score += math.Ldexp(float64(found), group.weight)
	}
	return score
}

// nodeScore is the leaf value of the search, always from the AI's side.
func nodeScore(p *Position, ai domain.Piece) float64 {
	aiScore := evaluate(p, ai)
	oppScore := evaluate(p, ai.Opponent())

	if math.IsInf(aiScore, 1) && math.IsInf(oppScore, 1) {
		// both sides show five; the side that did not play last got there first
		if p.lastPlayed == ai {
			return math.Inf(-1)
		}
		return math.Inf(1)
	}
	return aiScore - (oppScore + blockBias)
}

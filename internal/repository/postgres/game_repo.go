package postgres

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/iamasit07/five-in-a-row/backend/internal/domain"
	"github.com/lib/pq"
)

type GameRepo struct {
	DB *sql.DB
}

func NewGameRepo(db *sql.DB) *GameRepo {
	return &GameRepo{DB: db}
}

// GameRecord is one archived game.
type GameRecord struct {
	GameID     string         `json:"gameId"`
	HumanPiece domain.Piece   `json:"humanPiece"`
	Difficulty string         `json:"difficulty"`
	Winner     string         `json:"winner"` // "human", "ai" or "draw"
	Reason     string         `json:"reason"`
	TotalMoves int            `json:"totalMoves"`
	Moves      []domain.Coord `json:"moves"`
	Board      [][]int        `json:"board,omitempty"`
	CreatedAt  time.Time      `json:"createdAt"`
	FinishedAt time.Time      `json:"finishedAt"`
}

// SaveGame stores a finished game. Saving the same game twice overwrites it.
func (r *GameRepo) SaveGame(record GameRecord) error {
	boardJSON, err := json.Marshal(record.Board)
	if err != nil {
		return fmt.Errorf("failed to marshal board state: %w", err)
	}

	rows := make([]int64, len(record.Moves))
	cols := make([]int64, len(record.Moves))
	for i, m := range record.Moves {
		rows[i] = int64(m.Row)
		cols[i] = int64(m.Col)
	}

	query := `
	INSERT INTO games (game_id, human_piece, difficulty, winner, reason, total_moves, move_rows, move_cols, board_state, created_at, finished_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	ON CONFLICT (game_id) DO UPDATE SET
		winner = EXCLUDED.winner,
		reason = EXCLUDED.reason,
		total_moves = EXCLUDED.total_moves,
		move_rows = EXCLUDED.move_rows,
		move_cols = EXCLUDED.move_cols,
		board_state = EXCLUDED.board_state,
		finished_at = EXCLUDED.finished_at;
	`

	_, err = r.DB.Exec(query, record.GameID, int(record.HumanPiece), record.Difficulty, record.Winner, record.Reason,
		record.TotalMoves, pq.Array(rows), pq.Array(cols), boardJSON, record.CreatedAt, record.FinishedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert game record: %w", err)
	}
	return nil
}

// GetGameByID returns the archived game including its board, or nil if unknown.
func (r *GameRepo) GetGameByID(gameID string) (*GameRecord, error) {
	query := `
	SELECT game_id, human_piece, difficulty, winner, reason, total_moves, move_rows, move_cols, board_state, created_at, finished_at
	FROM games
	WHERE game_id = $1;
	`

	var record GameRecord
	var humanPiece int
	var rows, cols []int64
	var boardJSON []byte

	err := r.DB.QueryRow(query, gameID).Scan(
		&record.GameID,
		&humanPiece,
		&record.Difficulty,
		&record.Winner,
		&record.Reason,
		&record.TotalMoves,
		pq.Array(&rows),
		pq.Array(&cols),
		&boardJSON,
		&record.CreatedAt,
		&record.FinishedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get game by ID: %w", err)
	}

	record.HumanPiece = domain.Piece(humanPiece)
	record.Moves = zipMoves(rows, cols)
	if len(boardJSON) > 0 {
		if err := json.Unmarshal(boardJSON, &record.Board); err != nil {
			return nil, fmt.Errorf("failed to unmarshal board state: %w", err)
		}
	}
	return &record, nil
}

// GetRecentGames lists the most recently finished games without their boards.
func (r *GameRepo) GetRecentGames(limit int) ([]GameRecord, error) {
	query := `
	SELECT game_id, human_piece, difficulty, winner, reason, total_moves, move_rows, move_cols, created_at, finished_at
	FROM games
	ORDER BY finished_at DESC
	LIMIT $1;
	`

	rows, err := r.DB.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query game history: %w", err)
	}
	defer rows.Close()

	games := []GameRecord{}
	for rows.Next() {
		var record GameRecord
		var humanPiece int
		var moveRows, moveCols []int64

		err := rows.Scan(
			&record.GameID,
			&humanPiece,
			&record.Difficulty,
			&record.Winner,
			&record.Reason,
			&record.TotalMoves,
			pq.Array(&moveRows),
			pq.Array(&moveCols),
			&record.CreatedAt,
			&record.FinishedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan game row: %w", err)
		}

		record.HumanPiece = domain.Piece(humanPiece)
		record.Moves = zipMoves(moveRows, moveCols)
		games = append(games, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate game rows: %w", err)
	}
	return games, nil
}

func zipMoves(rows, cols []int64) []domain.Coord {
	n := len(rows)
	if len(cols) < n {
		n = len(cols)
	}
	moves := make([]domain.Coord, n)
	for i := 0; i < n; i++ {
		moves[i] = domain.Coord{Row: int(rows[i]), Col: int(cols[i])}
	}
	return moves
}

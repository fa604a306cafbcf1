package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/iamasit07/five-in-a-row/backend/internal/domain"
	"github.com/iamasit07/five-in-a-row/backend/internal/repository/postgres"
	"github.com/iamasit07/five-in-a-row/backend/internal/service/game"
)

type HistoryHandler struct {
	Service *game.Service
}

func NewHistoryHandler(service *game.Service) *HistoryHandler {
	return &HistoryHandler{Service: service}
}

type gameHistoryItem struct {
	ID         string    `json:"id"`
	HumanPiece int       `json:"humanPiece"`
	Difficulty string    `json:"difficulty,omitempty"`
	Result     string    `json:"result"` // "human", "ai", "draw"
	EndReason  string    `json:"endReason"`
	MovesCount int       `json:"movesCount"`
	CreatedAt  time.Time `json:"createdAt"`
	FinishedAt time.Time `json:"finishedAt"`
}

type gameDetails struct {
	gameHistoryItem
	Moves []domain.Coord `json:"moves"`
	Board [][]int        `json:"board_state"`
}

func toHistoryItem(record postgres.GameRecord) gameHistoryItem {
	return gameHistoryItem{
		ID:         record.GameID,
		HumanPiece: int(record.HumanPiece),
		Difficulty: record.Difficulty,
		Result:     record.Winner,
		EndReason:  record.Reason,
		MovesCount: record.TotalMoves,
		CreatedAt:  record.CreatedAt,
		FinishedAt: record.FinishedAt,
	}
}

func (h *HistoryHandler) GetHistory(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a non-negative integer"})
			return
		}
		limit = parsed
	}

	records, err := h.Service.RecentGames(limit)
	if err != nil {
		respondError(c, err)
		return
	}

	history := make([]gameHistoryItem, 0, len(records))
	for _, record := range records {
		history = append(history, toHistoryItem(record))
	}
	c.JSON(http.StatusOK, history)
}

func (h *HistoryHandler) GetGameDetails(c *gin.Context) {
	record, err := h.Service.ArchivedGame(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if record == nil {
		respondError(c, domain.ErrGameNotFound)
		return
	}

	c.JSON(http.StatusOK, gameDetails{
		gameHistoryItem: toHistoryItem(*record),
		Moves:           record.Moves,
		Board:           record.Board,
	})
}

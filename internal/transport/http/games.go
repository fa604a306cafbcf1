package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/iamasit07/five-in-a-row/backend/internal/domain"
	"github.com/iamasit07/five-in-a-row/backend/internal/service/game"
	"github.com/iamasit07/five-in-a-row/backend/internal/transport/http/middleware"
	"github.com/iamasit07/five-in-a-row/backend/pkg/auth"
)

type GameHandler struct {
	Sessions *game.SessionManager
	Tokens   *auth.TokenIssuer
}

func NewGameHandler(sm *game.SessionManager, tokens *auth.TokenIssuer) *GameHandler {
	return &GameHandler{Sessions: sm, Tokens: tokens}
}

type createGameRequest struct {
	HumanFirst *bool  `json:"humanFirst"`
	Difficulty string `json:"difficulty"`
}

type createGameResponse struct {
	game.GameView
	Token string `json:"token"`
}

type moveRequest struct {
	Row *int `json:"row" binding:"required"`
	Col *int `json:"col" binding:"required"`
}

type restartRequest struct {
	HumanFirst *bool `json:"humanFirst"`
}

// CreateGame starts a game against the AI and returns the player token
// needed for moves. The human moves first unless told otherwise.
func (h *GameHandler) CreateGame(c *gin.Context) {
	var req createGameRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
	}
	humanFirst := req.HumanFirst == nil || *req.HumanFirst

	session := h.Sessions.CreateSession(humanFirst, req.Difficulty)
	view := session.View()

	token, err := h.Tokens.GeneratePlayerToken(session.GameID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, createGameResponse{GameView: view, Token: token})
}

func (h *GameHandler) GetGame(c *gin.Context) {
	view, err := h.Sessions.LoadView(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// MakeMove plays the human move. The AI reply is computed in the background
// and pushed over the websocket, hence 202.
func (h *GameHandler) MakeMove(c *gin.Context) {
	session, ok := h.sessionFor(c)
	if !ok {
		return
	}

	var req moveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "row and col are required"})
		return
	}

	if err := session.HandleMove(domain.Coord{Row: *req.Row, Col: *req.Col}); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, session.View())
}

func (h *GameHandler) Restart(c *gin.Context) {
	session, ok := h.sessionFor(c)
	if !ok {
		return
	}

	var req restartRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
	}
	humanFirst := req.HumanFirst == nil || *req.HumanFirst

	if err := session.Restart(humanFirst); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, session.View())
}

// DeleteGame abandons the game and closes its sockets.
func (h *GameHandler) DeleteGame(c *gin.Context) {
	session, ok := h.sessionFor(c)
	if !ok {
		return
	}
	if err := h.Sessions.RemoveSession(session.GameID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// sessionFor resolves the live session the player token was issued for.
func (h *GameHandler) sessionFor(c *gin.Context) (*game.GameSession, bool) {
	claims, ok := middleware.ClaimsFrom(c)
	if !ok || claims.GameID != c.Param("id") {
		respondError(c, domain.ErrInvalidToken)
		return nil, false
	}

	session, exists := h.Sessions.GetSession(claims.GameID)
	if !exists {
		respondError(c, domain.ErrGameNotFound)
		return nil, false
	}
	return session, true
}

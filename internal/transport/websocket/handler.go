package websocket

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/iamasit07/five-in-a-row/backend/internal/domain"
	"github.com/iamasit07/five-in-a-row/backend/internal/service/game"
	"github.com/iamasit07/five-in-a-row/backend/pkg/auth"
	"github.com/iamasit07/five-in-a-row/backend/pkg/httputil"
)

// Handler manages WebSocket dependencies
type Handler struct {
	ConnManager    *ConnectionManager
	SessionManager *game.SessionManager
	Tokens         *auth.TokenIssuer
	Upgrader       websocket.Upgrader
}

func NewHandler(cm *ConnectionManager, sm *game.SessionManager, tokens *auth.TokenIssuer, allowedOrigins []string) *Handler {
	return &Handler{
		ConnManager:    cm,
		SessionManager: sm,
		Tokens:         tokens,
		Upgrader: websocket.Upgrader{
			CheckOrigin:     originChecker(allowedOrigins),
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, o := range allowed {
			if o == origin {
				return true
			}
		}
		log.Printf("[WS] Rejected origin %q", origin)
		return false
	}
}

// HandleWebSocket authenticates the player token for ?game= and upgrades
// the connection.
func (h *Handler) HandleWebSocket(c *gin.Context) {
	gameID := c.Query("game")
	session, exists := h.SessionManager.GetSession(gameID)
	if !exists {
		c.JSON(http.StatusNotFound, gin.H{"error": domain.ErrGameNotFound.Error()})
		return
	}

	token, err := httputil.GetTokenFromRequest(c.Request)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": domain.ErrInvalidToken.Error()})
		return
	}
	claims, err := h.Tokens.ValidatePlayerToken(token)
	if err != nil || claims.GameID != gameID {
		c.JSON(http.StatusUnauthorized, gin.H{"error": domain.ErrInvalidToken.Error()})
		return
	}

	conn, err := h.Upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("[WS] Upgrade error: %v", err)
		return
	}

	h.handleConnection(session, conn)
}

// handleConnection manages the lifecycle of a single WebSocket connection
func (h *Handler) handleConnection(session *game.GameSession, conn *websocket.Conn) {
	gameID := session.GameID

	conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	h.ConnManager.AddConnection(gameID, conn)
	log.Printf("[WS] Connection opened for game %s", gameID)

	done := make(chan struct{})
	defer func() {
		close(done)
		log.Printf("[WS] Connection closed for game %s", gameID)
		h.ConnManager.RemoveConnection(gameID, conn)
	}()

	// Keep-alive pinger
	go func() {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(10*time.Second)); err != nil {
					return
				}
			case <-done:
				return
			}
		}
	}()

	h.ConnManager.SendMessage(gameID, conn, session.StateMessage())

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("[WS] Game %s disconnected unexpectedly: %v", gameID, err)
			}
			return
		}

		var msg domain.ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			log.Printf("[WS] Invalid message format: %v", err)
			h.sendError(gameID, conn, "invalid message")
			continue
		}

		h.processMessage(session, conn, msg)
	}
}

// processMessage routes specific actions
func (h *Handler) processMessage(session *game.GameSession, conn *websocket.Conn, msg domain.ClientMessage) {
	switch msg.Type {
	case "make_move":
		if err := session.HandleMove(domain.Coord{Row: msg.Row, Col: msg.Col}); err != nil {
			h.sendError(session.GameID, conn, err.Error())
		}

	case "restart":
		humanFirst := msg.HumanFirst == nil || *msg.HumanFirst
		if err := session.Restart(humanFirst); err != nil {
			h.sendError(session.GameID, conn, err.Error())
		}

	case "get_state":
		h.ConnManager.SendMessage(session.GameID, conn, session.StateMessage())

	default:
		h.sendError(session.GameID, conn, "unknown message type: "+msg.Type)
	}
}

func (h *Handler) sendError(gameID string, conn *websocket.Conn, message string) {
	h.ConnManager.SendMessage(gameID, conn, domain.ErrorMessage{Type: "error", Message: message})
}

package game

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/iamasit07/five-in-a-row/backend/internal/domain"
	"github.com/iamasit07/five-in-a-row/backend/internal/repository/postgres"
	"github.com/iamasit07/five-in-a-row/backend/internal/service/bot"
	"github.com/iamasit07/five-in-a-row/backend/pkg/uid"
)

const (
	ReasonFiveInARow = "five_in_a_row"
	ReasonDraw       = "draw"

	WinnerHuman = "human"
	WinnerAI    = "ai"
	WinnerDraw  = "draw"
)

type ConnectionManagerInterface interface {
	Broadcast(gameID string, message domain.ServerMessage)
}

type GameRepository interface {
	SaveGame(record postgres.GameRecord) error
}

// SnapshotStore is an optional cache of serialized game views.
type SnapshotStore interface {
	SaveSnapshot(ctx context.Context, gameID string, data []byte) error
	LoadSnapshot(ctx context.Context, gameID string) ([]byte, error)
	DeleteSnapshot(ctx context.Context, gameID string) error
}

// SearchFunc picks the AI move for a board the caller owns exclusively.
type SearchFunc func(board *domain.Board, depth int) (bot.SearchResult, error)

type Options struct {
	DefaultDepth int
	AIMoveDelay  time.Duration
	Search       SearchFunc // defaults to bot.Search
}

type GameSession struct {
	GameID       string
	Game         *domain.Game
	Difficulty   string
	Depth        int
	Reason       string
	CreatedAt    time.Time
	FinishedAt   time.Time
	LastActivity time.Time
	mu           sync.Mutex
	aiThinking   bool
	generation   int  // bumped on restart so a stale AI turn is dropped
	closed       bool // set once the manager dropped the session
	manager      *SessionManager
}

// SessionManager manages active game sessions
type SessionManager struct {
	Session map[string]*GameSession // gameID → GameSession
	mu      sync.RWMutex
	repo    GameRepository // nil when persistence is disabled
	cache   SnapshotStore  // nil when Redis is unavailable
	conn    ConnectionManagerInterface
	opts    Options
}

func NewSessionManager(repo GameRepository, cache SnapshotStore, conn ConnectionManagerInterface, opts Options) *SessionManager {
	if opts.Search == nil {
		opts.Search = bot.Search
	}
	return &SessionManager{
		Session: make(map[string]*GameSession),
		repo:    repo,
		cache:   cache,
		conn:    conn,
		opts:    opts,
	}
}

// CreateSession starts a new game against the AI. When the human goes
// second the AI's opening move is scheduled right away.
func (sm *SessionManager) CreateSession(humanFirst bool, difficulty string) *GameSession {
	now := time.Now()
	gs := &GameSession{
		GameID:       uid.GenerateGameID(),
		Game:         domain.NewGame(humanFirst),
		Difficulty:   difficulty,
		Depth:        bot.DepthForDifficulty(difficulty, sm.opts.DefaultDepth),
		CreatedAt:    now,
		LastActivity: now,
		manager:      sm,
	}

	sm.mu.Lock()
	sm.Session[gs.GameID] = gs
	sm.mu.Unlock()

	log.Printf("[SESSION] Created session %s (human plays %s, depth %d)", gs.GameID, gs.Game.HumanPiece(), gs.Depth)

	gs.mu.Lock()
	defer gs.mu.Unlock()
	gs.storeSnapshot()
	if gs.Game.IsAITurn() {
		gs.scheduleBotMove()
	}
	return gs
}

func (sm *SessionManager) GetSession(gameID string) (*GameSession, bool) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	session, exists := sm.Session[gameID]
	return session, exists
}

type disconnector interface {
	DisconnectGame(gameID string, reason string)
}

// RemoveSession abandons a game: the session and its snapshot are dropped
// and any open sockets are closed.
func (sm *SessionManager) RemoveSession(gameID string) error {
	sm.mu.Lock()
	session, exists := sm.Session[gameID]
	if !exists {
		sm.mu.Unlock()
		return domain.ErrGameNotFound
	}
	delete(sm.Session, gameID)
	sm.mu.Unlock()

	log.Printf("[SESSION] Removing session %s", gameID)

	sm.closeSession(session, "game removed")
	if sm.cache != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := sm.cache.DeleteSnapshot(ctx, gameID); err != nil {
			log.Printf("[REDIS] Error deleting snapshot for %s: %v", gameID, err)
		}
	}
	return nil
}

// closeSession stops a session that is no longer in the map: it refuses
// further moves and snapshot writes, and its sockets are disconnected.
func (sm *SessionManager) closeSession(session *GameSession, reason string) {
	session.mu.Lock()
	session.closed = true
	session.generation++
	session.aiThinking = false
	session.mu.Unlock()

	if d, ok := sm.conn.(disconnector); ok {
		d.DisconnectGame(session.GameID, reason)
	}
}

// snapshotSessions copies the session list so callers can lock each
// session without holding sm.mu.
func (sm *SessionManager) snapshotSessions() []*GameSession {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	sessions := make([]*GameSession, 0, len(sm.Session))
	for _, session := range sm.Session {
		sessions = append(sessions, session)
	}
	return sessions
}

// LoadView returns the view of a live game, falling back to the snapshot
// cache for games this process no longer holds.
func (sm *SessionManager) LoadView(ctx context.Context, gameID string) (*GameView, error) {
	if gs, ok := sm.GetSession(gameID); ok {
		view := gs.View()
		return &view, nil
	}
	if sm.cache == nil || !uid.IsGameID(gameID) {
		return nil, domain.ErrGameNotFound
	}

	data, err := sm.cache.LoadSnapshot(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("loading snapshot: %w", err)
	}
	if data == nil {
		return nil, domain.ErrGameNotFound
	}

	var view GameView
	if err := json.Unmarshal(data, &view); err != nil {
		return nil, fmt.Errorf("decoding snapshot: %w", err)
	}
	return &view, nil
}

// CleanupOldSessions drops finished games idle for an hour and unfinished
// games idle longer than maxIdle. It returns how many were removed.
// Evicted games keep their snapshot until its TTL so LoadView can still
// serve them; their sockets are closed.
func (sm *SessionManager) CleanupOldSessions(maxIdle time.Duration) int {
	now := time.Now()

	var stale []*GameSession
	for _, session := range sm.snapshotSessions() {
		session.mu.Lock()
		limit := maxIdle
		if session.Game.IsFinished() {
			limit = time.Hour
		}
		if now.Sub(session.LastActivity) > limit && !session.aiThinking {
			stale = append(stale, session)
		}
		session.mu.Unlock()
	}

	var evicted []*GameSession
	sm.mu.Lock()
	for _, session := range stale {
		// the entry may have been removed or replaced meanwhile
		if sm.Session[session.GameID] == session {
			delete(sm.Session, session.GameID)
			evicted = append(evicted, session)
		}
	}
	sm.mu.Unlock()

	for _, session := range evicted {
		sm.closeSession(session, "game expired")
	}

	if len(evicted) > 0 {
		log.Printf("[SESSION] Memory cleanup: Removed %d stale game sessions", len(evicted))
	}
	return len(evicted)
}

type LiveGame struct {
	GameID     string    `json:"gameId"`
	Difficulty string    `json:"difficulty,omitempty"`
	MoveCount  int       `json:"moveCount"`
	Status     string    `json:"status"`
	StartedAt  time.Time `json:"startedAt"`
}

// ActiveGames lists sessions that are still being played.
func (sm *SessionManager) ActiveGames() []LiveGame {
	sessions := sm.snapshotSessions()

	games := make([]LiveGame, 0, len(sessions))
	for _, session := range sessions {
		session.mu.Lock()
		if !session.Game.IsFinished() {
			games = append(games, LiveGame{
				GameID:     session.GameID,
				Difficulty: session.Difficulty,
				MoveCount:  session.Game.MoveCount,
				Status:     string(session.Game.Status),
				StartedAt:  session.CreatedAt,
			})
		}
		session.mu.Unlock()
	}
	return games
}

func (sm *SessionManager) Count() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.Session)
}

// HandleMove plays the human's move and, if the game goes on, hands the
// turn to the AI.
func (gs *GameSession) HandleMove(c domain.Coord) error {
	gs.mu.Lock()
	defer gs.mu.Unlock()

	if gs.closed {
		return domain.ErrGameNotFound
	}
	if gs.aiThinking {
		return domain.ErrNotYourTurn
	}

	human := gs.Game.HumanPiece()
	if err := gs.Game.MakeMove(human, c); err != nil {
		return err
	}
	gs.LastActivity = time.Now()

	gs.broadcastMove(c, human)

	if gs.Game.IsFinished() {
		gs.finish()
		gs.storeSnapshot()
		return nil
	}

	gs.storeSnapshot()
	gs.scheduleBotMove()
	return nil
}

// scheduleBotMove runs the AI turn on its own goroutine after the
// configured delay. Caller must hold gs.mu.
func (gs *GameSession) scheduleBotMove() {
	gs.aiThinking = true
	generation := gs.generation

	gs.manager.conn.Broadcast(gs.GameID, domain.ServerMessage{
		Type:   "ai_thinking",
		GameID: gs.GameID,
	})

	delay := gs.manager.opts.AIMoveDelay
	go func() {
		if delay > 0 {
			time.Sleep(delay)
		}
		if err := gs.HandleBotMove(generation); err != nil {
			log.Printf("[BOT] Error handling bot move in game %s: %v", gs.GameID, err)
		}
	}()
}

// HandleBotMove searches and plays the AI's move. generation must match the
// session's current one, otherwise the board was restarted meanwhile.
// The search runs on a copy of the board without holding gs.mu.
func (gs *GameSession) HandleBotMove(generation int) error {
	gs.mu.Lock()
	if gs.closed || generation != gs.generation {
		gs.mu.Unlock()
		return nil
	}
	if !gs.Game.IsAITurn() {
		gs.aiThinking = false
		gs.mu.Unlock()
		return nil
	}
	board := gs.Game.Board.Clone()
	depth := gs.Depth
	search := gs.manager.opts.Search
	gs.mu.Unlock()

	start := time.Now()
	result, searchErr := search(board, depth)
	elapsed := time.Since(start)

	gs.mu.Lock()
	defer gs.mu.Unlock()

	if gs.closed || generation != gs.generation {
		log.Printf("[BOT] Game %s: dropping AI move for a restarted board", gs.GameID)
		return nil
	}
	gs.aiThinking = false
	if searchErr != nil {
		return searchErr
	}
	log.Printf("[BOT] Game %s: AI plays (%d,%d) at depth %d, %d leaves, %s",
		gs.GameID, result.Move.Row, result.Move.Col, depth, result.Leaves, elapsed)

	ai := gs.Game.AIPiece()
	if err := gs.Game.MakeMove(ai, result.Move); err != nil {
		return fmt.Errorf("applying AI move: %w", err)
	}
	gs.LastActivity = time.Now()

	gs.broadcastMove(result.Move, ai)
	if gs.Game.IsFinished() {
		gs.finish()
	}
	gs.storeSnapshot()
	return nil
}

// Restart clears the board for a new game in the same session.
func (gs *GameSession) Restart(humanFirst bool) error {
	gs.mu.Lock()
	defer gs.mu.Unlock()

	if gs.closed {
		return domain.ErrGameNotFound
	}

	gs.generation++
	gs.aiThinking = false
	gs.Game = domain.NewGame(humanFirst)
	gs.Reason = ""
	gs.CreatedAt = time.Now()
	gs.FinishedAt = time.Time{}
	gs.LastActivity = gs.CreatedAt

	log.Printf("[SESSION] Restarted session %s (human plays %s)", gs.GameID, gs.Game.HumanPiece())

	gs.manager.conn.Broadcast(gs.GameID, gs.stateMessage("game_state"))
	gs.storeSnapshot()
	if gs.Game.IsAITurn() {
		gs.scheduleBotMove()
	}
	return nil
}

func (gs *GameSession) View() GameView {
	gs.mu.Lock()
	defer gs.mu.Unlock()
	return gs.view()
}

func (gs *GameSession) StateMessage() domain.ServerMessage {
	gs.mu.Lock()
	defer gs.mu.Unlock()
	return gs.stateMessage("game_state")
}

func (gs *GameSession) broadcastMove(c domain.Coord, piece domain.Piece) {
	move := c
	gs.manager.conn.Broadcast(gs.GameID, domain.ServerMessage{
		Type:     "move_made",
		GameID:   gs.GameID,
		Move:     &move,
		Player:   int(piece),
		Board:    gs.Game.Board.Ints(),
		NextTurn: int(gs.Game.CurrentPiece()),
		Status:   string(gs.Game.Status),
	})
}

// finish announces the result and archives the game. Caller must hold gs.mu.
func (gs *GameSession) finish() {
	gs.FinishedAt = time.Now()
	gs.Reason = ReasonFiveInARow
	if gs.Game.Status == domain.StatusDraw {
		gs.Reason = ReasonDraw
	}
	winner := gs.winnerLabel()

	log.Printf("[GAME] Game %s over: winner=%s reason=%s moves=%d", gs.GameID, winner, gs.Reason, gs.Game.MoveCount)

	gs.manager.conn.Broadcast(gs.GameID, domain.ServerMessage{
		Type:   "game_over",
		GameID: gs.GameID,
		Board:  gs.Game.Board.Ints(),
		Status: string(gs.Game.Status),
		Winner: winner,
		Reason: gs.Reason,
	})

	gs.saveGameAsync(postgres.GameRecord{
		GameID:     gs.GameID,
		HumanPiece: gs.Game.HumanPiece(),
		Difficulty: gs.Difficulty,
		Winner:     winner,
		Reason:     gs.Reason,
		TotalMoves: gs.Game.MoveCount,
		Moves:      gs.Game.Board.Clone().Moves,
		Board:      gs.Game.Board.Ints(),
		CreatedAt:  gs.CreatedAt,
		FinishedAt: gs.FinishedAt,
	})
}

func (gs *GameSession) winnerLabel() string {
	switch gs.Game.Winner {
	case domain.Empty:
		if gs.Game.Status == domain.StatusDraw {
			return WinnerDraw
		}
		return ""
	case gs.Game.HumanPiece():
		return WinnerHuman
	default:
		return WinnerAI
	}
}

// Saves game data to database in background to avoid blocking game_over messages
func (gs *GameSession) saveGameAsync(record postgres.GameRecord) {
	repo := gs.manager.repo
	if repo == nil {
		return
	}

	go func() {
		if err := repo.SaveGame(record); err != nil {
			log.Printf("[GAME] Error saving game %s: %v", record.GameID, err)
		} else {
			log.Printf("[GAME] Game %s saved successfully", record.GameID)
		}
	}()
}

// storeSnapshot writes the current view to the cache. Caller must hold gs.mu.
func (gs *GameSession) storeSnapshot() {
	cache := gs.manager.cache
	if cache == nil || gs.closed {
		return
	}

	data, err := json.Marshal(gs.view())
	if err != nil {
		log.Printf("[REDIS] Error encoding snapshot for %s: %v", gs.GameID, err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := cache.SaveSnapshot(ctx, gs.GameID, data); err != nil {
		log.Printf("[REDIS] Error saving snapshot for %s: %v", gs.GameID, err)
	}
}

package game

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/iamasit07/five-in-a-row/backend/internal/domain"
	"github.com/iamasit07/five-in-a-row/backend/internal/repository/postgres"
	"github.com/iamasit07/five-in-a-row/backend/internal/service/bot"
)

type fakeConn struct {
	mu       sync.Mutex
	messages []domain.ServerMessage
}

func (f *fakeConn) Broadcast(gameID string, message domain.ServerMessage) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, message)
}

func (f *fakeConn) types() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.messages))
	for _, m := range f.messages {
		out = append(out, m.Type)
	}
	return out
}

func (f *fakeConn) has(kind string) bool {
	for _, t := range f.types() {
		if t == kind {
			return true
		}
	}
	return false
}

type fakeRepo struct {
	saved chan postgres.GameRecord
}

func (f *fakeRepo) SaveGame(record postgres.GameRecord) error {
	f.saved <- record
	return nil
}

type fakeCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: make(map[string][]byte)}
}

func (f *fakeCache) SaveSnapshot(ctx context.Context, gameID string, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data[gameID] = data
	return nil
}

func (f *fakeCache) LoadSnapshot(ctx context.Context, gameID string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.data[gameID], nil
}

func (f *fakeCache) DeleteSnapshot(ctx context.Context, gameID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.data, gameID)
	return nil
}

func newTestManager(delay time.Duration) (*SessionManager, *fakeConn) {
	conn := &fakeConn{}
	sm := NewSessionManager(nil, nil, conn, Options{DefaultDepth: 1, AIMoveDelay: delay})
	return sm, conn
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func moveCount(gs *GameSession) int {
	return len(gs.View().Moves)
}

func TestAIOpensInCentreWhenHumanMovesSecond(t *testing.T) {
	sm, conn := newTestManager(0)
	gs := sm.CreateSession(false, "")

	waitFor(t, "AI opening", func() bool { return moveCount(gs) == 1 })

	view := gs.View()
	if view.Moves[0] != (domain.Coord{Row: 7, Col: 7}) {
		t.Fatalf("expected centre opening, got %+v", view.Moves[0])
	}
	if view.HumanPiece != int(domain.PieceO) || view.NextTurn != int(domain.PieceO) {
		t.Fatalf("expected human O to move next, got human=%d next=%d", view.HumanPiece, view.NextTurn)
	}
	if !conn.has("ai_thinking") || !conn.has("move_made") {
		t.Fatalf("expected ai_thinking and move_made, got %v", conn.types())
	}
}

func TestHumanMoveGetsAIReply(t *testing.T) {
	sm, conn := newTestManager(0)
	gs := sm.CreateSession(true, "")

	if err := gs.HandleMove(domain.Coord{Row: 7, Col: 7}); err != nil {
		t.Fatalf("HandleMove: %v", err)
	}
	waitFor(t, "AI reply", func() bool { return moveCount(gs) == 2 })

	view := gs.View()
	reply := view.Moves[1]
	if view.Board[reply.Row][reply.Col] != int(domain.PieceO) {
		t.Fatalf("AI reply %+v not marked as O", reply)
	}
	dr, dc := reply.Row-7, reply.Col-7
	if dr < -1 || dr > 1 || dc < -1 || dc > 1 {
		t.Fatalf("AI reply %+v is not adjacent to the centre stone", reply)
	}
	if view.AIThinking {
		t.Fatalf("AIThinking still set after reply")
	}

	got := conn.types()
	if len(got) < 3 || got[0] != "move_made" || got[1] != "ai_thinking" {
		t.Fatalf("unexpected message order %v", got)
	}
}

func TestHandleMoveRejectsOccupiedCell(t *testing.T) {
	sm, _ := newTestManager(0)
	gs := sm.CreateSession(true, "")

	if err := gs.HandleMove(domain.Coord{Row: 7, Col: 7}); err != nil {
		t.Fatalf("HandleMove: %v", err)
	}
	waitFor(t, "AI reply", func() bool { return moveCount(gs) == 2 })

	err := gs.HandleMove(domain.Coord{Row: 7, Col: 7})
	if !errors.Is(err, domain.ErrCellOccupied) {
		t.Fatalf("expected ErrCellOccupied, got %v", err)
	}
	err = gs.HandleMove(domain.Coord{Row: 15, Col: 0})
	if !errors.Is(err, domain.ErrOutOfBounds) {
		t.Fatalf("expected ErrOutOfBounds, got %v", err)
	}
}

func TestHandleMoveWhileAIThinking(t *testing.T) {
	sm, _ := newTestManager(time.Hour)
	gs := sm.CreateSession(false, "")

	err := gs.HandleMove(domain.Coord{Row: 0, Col: 0})
	if !errors.Is(err, domain.ErrNotYourTurn) {
		t.Fatalf("expected ErrNotYourTurn, got %v", err)
	}
}

func TestRestartDropsPendingAIMove(t *testing.T) {
	sm, _ := newTestManager(50 * time.Millisecond)
	gs := sm.CreateSession(true, "")

	if err := gs.HandleMove(domain.Coord{Row: 7, Col: 7}); err != nil {
		t.Fatalf("HandleMove: %v", err)
	}
	if err := gs.Restart(true); err != nil {
		t.Fatalf("Restart: %v", err)
	}
	time.Sleep(150 * time.Millisecond)

	view := gs.View()
	if len(view.Moves) != 0 {
		t.Fatalf("expected empty board after restart, got moves %+v", view.Moves)
	}
	if view.AIThinking {
		t.Fatalf("AIThinking set after restart")
	}
}

func TestWinningMoveFinishesAndArchives(t *testing.T) {
	conn := &fakeConn{}
	repo := &fakeRepo{saved: make(chan postgres.GameRecord, 1)}
	sm := NewSessionManager(repo, nil, conn, Options{DefaultDepth: 1})
	gs := sm.CreateSession(true, "easy")

	gs.mu.Lock()
	for i := 0; i < 4; i++ {
		if err := gs.Game.MakeMove(domain.PieceX, domain.Coord{Row: 7, Col: 3 + i}); err != nil {
			t.Fatalf("setup X: %v", err)
		}
		if err := gs.Game.MakeMove(domain.PieceO, domain.Coord{Row: 0, Col: 2 * i}); err != nil {
			t.Fatalf("setup O: %v", err)
		}
	}
	gs.mu.Unlock()

	if err := gs.HandleMove(domain.Coord{Row: 7, Col: 7}); err != nil {
		t.Fatalf("HandleMove: %v", err)
	}

	select {
	case record := <-repo.saved:
		if record.Winner != WinnerHuman || record.Reason != ReasonFiveInARow {
			t.Fatalf("unexpected result %s/%s", record.Winner, record.Reason)
		}
		if record.TotalMoves != 9 || len(record.Moves) != 9 {
			t.Fatalf("expected 9 moves, got %d/%d", record.TotalMoves, len(record.Moves))
		}
		if record.Difficulty != "easy" {
			t.Fatalf("expected difficulty easy, got %q", record.Difficulty)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("game was not archived")
	}

	if !conn.has("game_over") {
		t.Fatalf("expected game_over, got %v", conn.types())
	}
	if conn.has("ai_thinking") {
		t.Fatalf("AI must not move after the game is over")
	}
	err := gs.HandleMove(domain.Coord{Row: 10, Col: 10})
	if !errors.Is(err, domain.ErrGameFinished) {
		t.Fatalf("expected ErrGameFinished, got %v", err)
	}
}

func TestDifficultySetsDepth(t *testing.T) {
	sm, _ := newTestManager(0)
	if gs := sm.CreateSession(true, "hard"); gs.Depth != 3 {
		t.Fatalf("expected depth 3 for hard, got %d", gs.Depth)
	}
	if gs := sm.CreateSession(true, "unknown"); gs.Depth != 1 {
		t.Fatalf("expected default depth 1, got %d", gs.Depth)
	}
}

func TestLoadViewFallsBackToSnapshot(t *testing.T) {
	cache := newFakeCache()
	first := NewSessionManager(nil, cache, &fakeConn{}, Options{DefaultDepth: 1})
	gs := first.CreateSession(true, "")
	if err := gs.HandleMove(domain.Coord{Row: 3, Col: 4}); err != nil {
		t.Fatalf("HandleMove: %v", err)
	}
	waitFor(t, "AI reply", func() bool { return moveCount(gs) == 2 })

	second := NewSessionManager(nil, cache, &fakeConn{}, Options{DefaultDepth: 1})
	view, err := second.LoadView(context.Background(), gs.GameID)
	if err != nil {
		t.Fatalf("LoadView: %v", err)
	}
	if len(view.Moves) != 2 || view.Board[3][4] != int(domain.PieceX) {
		t.Fatalf("snapshot does not match live game: %+v", view)
	}

	_, err = second.LoadView(context.Background(), "missing")
	if !errors.Is(err, domain.ErrGameNotFound) {
		t.Fatalf("expected ErrGameNotFound, got %v", err)
	}
}

func TestCleanupOldSessions(t *testing.T) {
	sm, _ := newTestManager(0)
	stale := sm.CreateSession(true, "")
	fresh := sm.CreateSession(true, "")

	stale.mu.Lock()
	stale.LastActivity = time.Now().Add(-48 * time.Hour)
	stale.mu.Unlock()

	if removed := sm.CleanupOldSessions(24 * time.Hour); removed != 1 {
		t.Fatalf("expected 1 removed, got %d", removed)
	}
	if _, ok := sm.GetSession(stale.GameID); ok {
		t.Fatalf("stale session still present")
	}
	if _, ok := sm.GetSession(fresh.GameID); !ok {
		t.Fatalf("fresh session was removed")
	}
	if len(sm.ActiveGames()) != 1 {
		t.Fatalf("expected one active game")
	}
}

func TestRemoveSessionDropsSnapshot(t *testing.T) {
	cache := newFakeCache()
	sm := NewSessionManager(nil, cache, &fakeConn{}, Options{DefaultDepth: 1})
	gs := sm.CreateSession(true, "")

	if err := sm.RemoveSession(gs.GameID); err != nil {
		t.Fatalf("RemoveSession: %v", err)
	}
	if _, err := sm.LoadView(context.Background(), gs.GameID); !errors.Is(err, domain.ErrGameNotFound) {
		t.Fatalf("expected ErrGameNotFound after removal, got %v", err)
	}
	if err := sm.RemoveSession(gs.GameID); !errors.Is(err, domain.ErrGameNotFound) {
		t.Fatalf("expected ErrGameNotFound on second removal, got %v", err)
	}
}

type disconnectingConn struct {
	fakeConn
	mu           sync.Mutex
	disconnected []string
}

func (d *disconnectingConn) DisconnectGame(gameID string, reason string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.disconnected = append(d.disconnected, gameID)
}

// blockingSearch returns a search that signals when it starts and waits for
// release before answering with move.
func blockingSearch(move domain.Coord) (search SearchFunc, started chan struct{}, release chan struct{}) {
	started = make(chan struct{}, 1)
	release = make(chan struct{})
	search = func(board *domain.Board, depth int) (bot.SearchResult, error) {
		started <- struct{}{}
		<-release
		return bot.SearchResult{Move: move}, nil
	}
	return search, started, release
}

func within(t *testing.T, what string, limit time.Duration, fn func()) {
	t.Helper()
	done := make(chan struct{})
	go func() {
		fn()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(limit):
		t.Fatalf("%s blocked for more than %s", what, limit)
	}
}

func TestSearchDoesNotBlockOtherSessions(t *testing.T) {
	search, started, release := blockingSearch(domain.Coord{Row: 7, Col: 7})
	sm := NewSessionManager(nil, nil, &fakeConn{}, Options{DefaultDepth: 1, AIMoveDelay: time.Hour, Search: search})

	searching := sm.CreateSession(false, "hard")
	other := sm.CreateSession(true, "")

	result := make(chan error, 1)
	go func() { result <- searching.HandleBotMove(0) }()
	<-started

	within(t, "CleanupOldSessions", time.Second, func() { sm.CleanupOldSessions(time.Hour) })
	within(t, "GetSession", time.Second, func() {
		if _, ok := sm.GetSession(other.GameID); !ok {
			t.Errorf("unrelated session missing")
		}
	})
	within(t, "ActiveGames", time.Second, func() { sm.ActiveGames() })
	within(t, "View of the searching game", time.Second, func() {
		if view := searching.View(); !view.AIThinking {
			t.Errorf("expected AIThinking during search")
		}
	})
	within(t, "HandleMove on the unrelated game", time.Second, func() {
		if err := other.HandleMove(domain.Coord{Row: 3, Col: 3}); err != nil {
			t.Errorf("HandleMove: %v", err)
		}
	})

	close(release)
	if err := <-result; err != nil {
		t.Fatalf("HandleBotMove: %v", err)
	}
	if view := searching.View(); len(view.Moves) != 1 || view.AIThinking {
		t.Fatalf("expected the AI move to be applied, got %+v", view)
	}
}

func TestRestartDuringSearchDiscardsResult(t *testing.T) {
	search, started, release := blockingSearch(domain.Coord{Row: 7, Col: 7})
	sm := NewSessionManager(nil, nil, &fakeConn{}, Options{DefaultDepth: 1, AIMoveDelay: time.Hour, Search: search})
	gs := sm.CreateSession(false, "")

	result := make(chan error, 1)
	go func() { result <- gs.HandleBotMove(0) }()
	<-started

	if err := gs.Restart(true); err != nil {
		t.Fatalf("Restart: %v", err)
	}
	close(release)
	if err := <-result; err != nil {
		t.Fatalf("HandleBotMove: %v", err)
	}

	view := gs.View()
	if len(view.Moves) != 0 || view.HumanPiece != int(domain.PieceX) {
		t.Fatalf("stale AI move leaked into the restarted board: %+v", view)
	}
}

func TestEvictedSessionIsClosed(t *testing.T) {
	cache := newFakeCache()
	conn := &disconnectingConn{}
	sm := NewSessionManager(nil, cache, conn, Options{DefaultDepth: 1})
	gs := sm.CreateSession(true, "")

	gs.mu.Lock()
	gs.LastActivity = time.Now().Add(-48 * time.Hour)
	gs.mu.Unlock()

	if removed := sm.CleanupOldSessions(24 * time.Hour); removed != 1 {
		t.Fatalf("expected 1 removed, got %d", removed)
	}

	conn.mu.Lock()
	disconnected := append([]string(nil), conn.disconnected...)
	conn.mu.Unlock()
	if len(disconnected) != 1 || disconnected[0] != gs.GameID {
		t.Fatalf("expected sockets of %s to be closed, got %v", gs.GameID, disconnected)
	}

	// a handler still holding the session can neither play nor restart
	if err := gs.HandleMove(domain.Coord{Row: 7, Col: 7}); !errors.Is(err, domain.ErrGameNotFound) {
		t.Fatalf("expected ErrGameNotFound from evicted session, got %v", err)
	}
	if err := gs.Restart(true); !errors.Is(err, domain.ErrGameNotFound) {
		t.Fatalf("expected ErrGameNotFound on restart, got %v", err)
	}

	// the snapshot outlives eviction and still serves reads
	view, err := sm.LoadView(context.Background(), gs.GameID)
	if err != nil {
		t.Fatalf("LoadView: %v", err)
	}
	if len(view.Moves) != 0 {
		t.Fatalf("snapshot changed after eviction: %+v", view.Moves)
	}
}

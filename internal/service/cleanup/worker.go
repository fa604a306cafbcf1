package cleanup

import (
	"log"
	"time"

	"github.com/iamasit07/five-in-a-row/backend/internal/service/game"
)

type SessionEvicter interface {
	CleanupOldSessions(maxIdle time.Duration) int
}

var _ SessionEvicter = (*game.SessionManager)(nil)

type Worker struct {
	Sessions SessionEvicter
	MaxIdle  time.Duration
	Interval time.Duration
	stop     chan struct{}
}

func NewWorker(sessions SessionEvicter, maxIdle time.Duration) *Worker {
	return &Worker{
		Sessions: sessions,
		MaxIdle:  maxIdle,
		Interval: time.Hour,
		stop:     make(chan struct{}),
	}
}

// Start initiates the background ticker
func (w *Worker) Start() {
	go w.runCleanup()

	ticker := time.NewTicker(w.Interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				w.runCleanup()
			case <-w.stop:
				return
			}
		}
	}()
	log.Println("[CLEANUP] Background worker started")
}

func (w *Worker) Stop() {
	close(w.stop)
}

// runCleanup executes the actual cleanup logic
func (w *Worker) runCleanup() int {
	removed := w.Sessions.CleanupOldSessions(w.MaxIdle)
	if removed > 0 {
		log.Printf("[CLEANUP] Evicted %d idle game sessions", removed)
	}
	return removed
}

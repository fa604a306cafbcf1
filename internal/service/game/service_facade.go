package game

import "github.com/iamasit07/five-in-a-row/backend/internal/repository/postgres"

type HistoryRepository interface {
	GetRecentGames(limit int) ([]postgres.GameRecord, error)
	GetGameByID(gameID string) (*postgres.GameRecord, error)
}

const (
	DefaultHistoryLimit = 20
	MaxHistoryLimit     = 100
)

// Service is the entry point for archived games (facade)
type Service struct {
	Repo HistoryRepository // nil when persistence is disabled
}

func NewService(repo HistoryRepository) *Service {
	return &Service{
		Repo: repo,
	}
}

func (s *Service) RecentGames(limit int) ([]postgres.GameRecord, error) {
	if s.Repo == nil {
		return []postgres.GameRecord{}, nil
	}
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if limit > MaxHistoryLimit {
		limit = MaxHistoryLimit
	}
	return s.Repo.GetRecentGames(limit)
}

// ArchivedGame returns nil without error when the game is not archived.
func (s *Service) ArchivedGame(gameID string) (*postgres.GameRecord, error) {
	if s.Repo == nil {
		return nil, nil
	}
	return s.Repo.GetGameByID(gameID)
}

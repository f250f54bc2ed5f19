package leaderboard

import (
	"context"
	"sync"
	"time"

	"spot_difference/internal/domain"
)

// MemoryStore - журнал результатов в памяти
type MemoryStore struct {
	mu      sync.RWMutex
	seq     int64
	entries []domain.LeaderboardEntry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Append(_ context.Context, e *domain.LeaderboardEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	e.Seq = s.seq
	e.SubmittedAt = time.Now()
	s.entries = append(s.entries, *e)
	return nil
}

func (s *MemoryStore) Top(_ context.Context, n int, difficulty domain.Difficulty) ([]domain.LeaderboardEntry, error) {
	s.mu.RLock()
	filtered := make([]domain.LeaderboardEntry, 0, len(s.entries))
	for _, e := range s.entries {
		if difficulty == "" || e.Difficulty == difficulty {
			filtered = append(filtered, e)
		}
	}
	s.mu.RUnlock()

	return Rank(filtered, n), nil
}

// Len - сколько всего записей в журнале
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

package catalog

import (
	"context"
	"sort"
	"sync"

	"spot_difference/internal/domain"
)

// MemoryStore хранит наборы в памяти процесса
type MemoryStore struct {
	mu   sync.RWMutex
	sets map[domain.Difficulty]*domain.DifferenceCatalog
}

// NewMemoryStore создает хранилище с переданными наборами
func NewMemoryStore(sets ...*domain.DifferenceCatalog) *MemoryStore {
	s := &MemoryStore{sets: make(map[domain.Difficulty]*domain.DifferenceCatalog)}
	for _, c := range sets {
		s.sets[c.Difficulty] = c.Clone()
	}
	return s
}

// NewFixtureStore создает хранилище со встроенными наборами
func NewFixtureStore() *MemoryStore {
	return NewMemoryStore(Fixtures()...)
}

func (s *MemoryStore) Get(_ context.Context, difficulty domain.Difficulty) (*domain.DifferenceCatalog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.sets[difficulty]
	if !ok {
		return nil, ErrNotFound
	}
	return c.Clone(), nil
}

func (s *MemoryStore) List(_ context.Context) ([]domain.CatalogSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.CatalogSummary, 0, len(s.sets))
	for _, c := range s.sets {
		out = append(out, domain.CatalogSummary{ID: c.ID, Difficulty: c.Difficulty})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryStore) Put(_ context.Context, c *domain.DifferenceCatalog) error {
	if err := c.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cp := c.Clone()
	if existing, ok := s.sets[c.Difficulty]; ok && cp.ID == 0 {
		cp.ID = existing.ID
	}
	if cp.ID == 0 {
		cp.ID = int64(len(s.sets) + 1)
	}
	s.sets[c.Difficulty] = cp
	return nil
}

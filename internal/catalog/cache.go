package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"spot_difference/internal/domain"
	"spot_difference/internal/logger"

	"github.com/redis/go-redis/v9"
)

const cacheKeyPrefix = "catalog:"

// CachedStore - кэш наборов в Redis поверх основного хранилища.
// Ошибки Redis не ломают чтение: идём в основное хранилище.
type CachedStore struct {
	next Store
	rdb  *redis.Client
	ttl  time.Duration
}

// NewCachedStore оборачивает хранилище кэшем с заданным TTL
func NewCachedStore(next Store, rdb *redis.Client, ttl time.Duration) *CachedStore {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &CachedStore{next: next, rdb: rdb, ttl: ttl}
}

func cacheKey(d domain.Difficulty) string {
	return cacheKeyPrefix + string(d)
}

func (s *CachedStore) Get(ctx context.Context, difficulty domain.Difficulty) (*domain.DifferenceCatalog, error) {
	raw, err := s.rdb.Get(ctx, cacheKey(difficulty)).Bytes()
	if err == nil {
		var c domain.DifferenceCatalog
		if err := json.Unmarshal(raw, &c); err == nil {
			return &c, nil
		}
		logger.Warn("catalog cache: broken entry", "difficulty", difficulty)
	} else if !errors.Is(err, redis.Nil) {
		logger.Warn("catalog cache: read failed", "difficulty", difficulty, "error", err)
	}

	c, err := s.next.Get(ctx, difficulty)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(c); err == nil {
		if err := s.rdb.Set(ctx, cacheKey(difficulty), data, s.ttl).Err(); err != nil {
			logger.Warn("catalog cache: write failed", "difficulty", difficulty, "error", err)
		}
	}
	return c, nil
}

func (s *CachedStore) List(ctx context.Context) ([]domain.CatalogSummary, error) {
	return s.next.List(ctx)
}

// Put пишет в основное хранилище и сбрасывает кэш для сложности
func (s *CachedStore) Put(ctx context.Context, c *domain.DifferenceCatalog) error {
	if err := s.next.Put(ctx, c); err != nil {
		return err
	}
	if err := s.rdb.Del(ctx, cacheKey(c.Difficulty)).Err(); err != nil {
		logger.Warn("catalog cache: invalidate failed", "difficulty", c.Difficulty, "error", err)
	}
	return nil
}

package leaderboard

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"spot_difference/internal/domain"

	"github.com/redis/go-redis/v9"
)

const (
	redisSeqKey     = "leaderboard:seq"
	redisEntriesKey = "leaderboard:entries"
	redisRankAll    = "leaderboard:rank:all"
)

// RedisStore хранит журнал в Redis.
// Порядковый номер берётся через INCR; рейтинг - sorted set со счётом -score
// и членом seq с ведущими нулями: ZRANGE по возрастанию даёт лучшие очки первыми,
// а при равенстве лексикографический порядок членов совпадает с порядком отправки.
type RedisStore struct {
	rdb *redis.Client
}

func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

type redisRecord struct {
	Seq         int64             `json:"seq"`
	Username    string            `json:"username"`
	Score       int               `json:"score"`
	Difficulty  domain.Difficulty `json:"difficulty"`
	SubmittedAt time.Time         `json:"submitted_at"`
}

func rankKey(difficulty domain.Difficulty) string {
	if difficulty == "" {
		return redisRankAll
	}
	return "leaderboard:rank:" + string(difficulty)
}

func member(seq int64) string {
	return fmt.Sprintf("%020d", seq)
}

func (s *RedisStore) Append(ctx context.Context, e *domain.LeaderboardEntry) error {
	seq, err := s.rdb.Incr(ctx, redisSeqKey).Result()
	if err != nil {
		return err
	}

	rec := redisRecord{
		Seq:         seq,
		Username:    e.Username,
		Score:       e.Score,
		Difficulty:  e.Difficulty,
		SubmittedAt: time.Now().UTC(),
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}

	m := member(seq)
	z := redis.Z{Score: -float64(rec.Score), Member: m}
	_, err = s.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.HSet(ctx, redisEntriesKey, m, data)
		p.ZAdd(ctx, redisRankAll, z)
		p.ZAdd(ctx, rankKey(rec.Difficulty), z)
		return nil
	})
	if err != nil {
		return err
	}

	e.Seq = rec.Seq
	e.SubmittedAt = rec.SubmittedAt
	return nil
}

func (s *RedisStore) Top(ctx context.Context, n int, difficulty domain.Difficulty) ([]domain.LeaderboardEntry, error) {
	if n <= 0 {
		return []domain.LeaderboardEntry{}, nil
	}

	members, err := s.rdb.ZRange(ctx, rankKey(difficulty), 0, int64(n-1)).Result()
	if err != nil {
		return nil, err
	}
	if len(members) == 0 {
		return []domain.LeaderboardEntry{}, nil
	}

	values, err := s.rdb.HMGet(ctx, redisEntriesKey, members...).Result()
	if err != nil {
		return nil, err
	}

	out := make([]domain.LeaderboardEntry, 0, len(values))
	for _, v := range values {
		raw, ok := v.(string)
		if !ok {
			continue
		}
		var rec redisRecord
		if err := json.Unmarshal([]byte(raw), &rec); err != nil {
			return nil, err
		}
		out = append(out, domain.LeaderboardEntry{
			Seq:         rec.Seq,
			Username:    rec.Username,
			Score:       rec.Score,
			Difficulty:  rec.Difficulty,
			SubmittedAt: rec.SubmittedAt,
		})
	}
	return out, nil
}

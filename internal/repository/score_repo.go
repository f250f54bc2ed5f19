package repository

import (
	"context"

	"spot_difference/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

// журнал результатов в таблице scores. id BIGSERIAL задаёт порядок отправки.
type ScoreRepository struct {
	db *pgxpool.Pool
}

func NewScoreRepository(db *pgxpool.Pool) *ScoreRepository {
	return &ScoreRepository{db: db}
}

func (r *ScoreRepository) Append(ctx context.Context, e *domain.LeaderboardEntry) error {
	return r.db.QueryRow(ctx, `
		INSERT INTO scores (username, score, difficulty)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`, e.Username, e.Score, string(e.Difficulty)).Scan(&e.Seq, &e.SubmittedAt)
}

func (r *ScoreRepository) Top(ctx context.Context, n int, difficulty domain.Difficulty) ([]domain.LeaderboardEntry, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, username, score, difficulty, created_at
		FROM scores
		WHERE $2 = '' OR difficulty = $2
		ORDER BY score DESC, id ASC
		LIMIT $1
	`, n, string(difficulty))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.LeaderboardEntry{}
	for rows.Next() {
		var (
			e    domain.LeaderboardEntry
			diff string
		)
		if err := rows.Scan(&e.Seq, &e.Username, &e.Score, &diff, &e.SubmittedAt); err != nil {
			return nil, err
		}
		e.Difficulty = domain.Difficulty(diff)
		out = append(out, e)
	}
	return out, rows.Err()
}

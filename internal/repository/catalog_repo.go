package repository

import (
	"context"
	"encoding/json"
	"errors"

	"spot_difference/internal/catalog"
	"spot_difference/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// хранит наборы картинок в таблице game_sets, отличия - JSONB
type CatalogRepository struct {
	db *pgxpool.Pool
}

func NewCatalogRepository(db *pgxpool.Pool) *CatalogRepository {
	return &CatalogRepository{db: db}
}

func (r *CatalogRepository) Get(ctx context.Context, difficulty domain.Difficulty) (*domain.DifferenceCatalog, error) {
	var (
		c    domain.DifferenceCatalog
		diff string
		raw  []byte
	)
	err := r.db.QueryRow(ctx, `
		SELECT id, difficulty, image_url_1, image_url_2, differences
		FROM game_sets
		WHERE difficulty = $1
	`, string(difficulty)).Scan(&c.ID, &diff, &c.ImageURL1, &c.ImageURL2, &raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, catalog.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	c.Difficulty = domain.Difficulty(diff)
	if err := json.Unmarshal(raw, &c.Differences); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CatalogRepository) List(ctx context.Context) ([]domain.CatalogSummary, error) {
	rows, err := r.db.Query(ctx, `SELECT id, difficulty FROM game_sets ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.CatalogSummary{}
	for rows.Next() {
		var (
			s    domain.CatalogSummary
			diff string
		)
		if err := rows.Scan(&s.ID, &diff); err != nil {
			return nil, err
		}
		s.Difficulty = domain.Difficulty(diff)
		out = append(out, s)
	}
	return out, rows.Err()
}

// Put создает или заменяет набор для сложности
func (r *CatalogRepository) Put(ctx context.Context, c *domain.DifferenceCatalog) error {
	if err := c.Validate(); err != nil {
		return err
	}
	raw, err := json.Marshal(c.Differences)
	if err != nil {
		return err
	}

	return r.db.QueryRow(ctx, `
		INSERT INTO game_sets (difficulty, image_url_1, image_url_2, differences)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (difficulty) DO UPDATE
		SET image_url_1 = EXCLUDED.image_url_1,
		    image_url_2 = EXCLUDED.image_url_2,
		    differences = EXCLUDED.differences,
		    updated_at  = now()
		RETURNING id
	`, string(c.Difficulty), c.ImageURL1, c.ImageURL2, raw).Scan(&c.ID)
}

// Seed заполняет пустую таблицу встроенными наборами
func (r *CatalogRepository) Seed(ctx context.Context, sets []*domain.DifferenceCatalog) error {
	var n int
	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM game_sets`).Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	for _, c := range sets {
		if err := r.Put(ctx, c.Clone()); err != nil {
			return err
		}
	}
	return nil
}

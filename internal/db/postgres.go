package db

import (
	"context"
	"time"

	"spot_difference/internal/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

const connectTimeout = 5 * time.Second

// Connect открывает пул соединений и применяет схему. При ошибке завершает процесс.
func Connect(databaseURL string) *pgxpool.Pool {
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		logger.Fatal("db connect failed", "error", err)
	}
	if err := pool.Ping(ctx); err != nil {
		logger.Fatal("db ping failed", "error", err)
	}
	if err := Migrate(ctx, pool); err != nil {
		logger.Fatal("db migrate failed", "error", err)
	}

	logger.Info("db connected")
	return pool
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            BIGSERIAL PRIMARY KEY,
		username      TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS game_sets (
		id          BIGSERIAL PRIMARY KEY,
		difficulty  TEXT NOT NULL UNIQUE,
		image_url_1 TEXT NOT NULL,
		image_url_2 TEXT NOT NULL,
		differences JSONB NOT NULL,
		updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS scores (
		id         BIGSERIAL PRIMARY KEY,
		username   TEXT NOT NULL,
		score      INTEGER NOT NULL CHECK (score >= 0),
		difficulty TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS scores_rank_idx ON scores (score DESC, id ASC)`,
	`CREATE TABLE IF NOT EXISTS audit_logs (
		id         BIGSERIAL PRIMARY KEY,
		username   TEXT NOT NULL,
		action     TEXT NOT NULL,
		category   TEXT NOT NULL,
		details    JSONB NOT NULL DEFAULT '{}',
		ip         TEXT NOT NULL DEFAULT '',
		user_agent TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
}

// Migrate создает таблицы, если их ещё нет
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range schema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

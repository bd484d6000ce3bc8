package database

import (
	"context"
	"fmt"

	"github.com/yourusername/courtside/internal/config"
)

// schema holds the idempotent DDL for every table the repositories touch.
// Vector-valued fields (mu, sigma, loss histories) are JSONB columns.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS team_states (
		team_id TEXT PRIMARY KEY,
		mu JSONB NOT NULL,
		sigma JSONB NOT NULL,
		games_processed INT NOT NULL DEFAULT 0,
		last_season INT NOT NULL DEFAULT 0,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS training_state (
		id TEXT PRIMARY KEY,
		alpha DOUBLE PRECISION NOT NULL,
		iteration BIGINT NOT NULL DEFAULT 0,
		feedback_triggers BIGINT NOT NULL DEFAULT 0,
		nn_loss_history JSONB NOT NULL,
		vae_loss_history JSONB NOT NULL,
		converged BOOLEAN NOT NULL DEFAULT FALSE,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS model_weights (
		id TEXT PRIMARY KEY,
		encoder JSONB NOT NULL,
		predictor JSONB NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS performance_records (
		id UUID PRIMARY KEY,
		game_id TEXT NOT NULL,
		outcome TEXT NOT NULL,
		nn_loss DOUBLE PRECISION NOT NULL,
		vae_loss DOUBLE PRECISION NOT NULL,
		feedback_triggered BOOLEAN NOT NULL,
		alpha DOUBLE PRECISION NOT NULL,
		attempts INT NOT NULL,
		recorded_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_performance_records_recorded_at
		ON performance_records (recorded_at DESC)`,
	`CREATE TABLE IF NOT EXISTS processed_games (
		game_id TEXT PRIMARY KEY,
		outcome TEXT NOT NULL,
		processed_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
}

// Initialize opens the pool and ensures the schema exists.
func Initialize(ctx context.Context, cfg *config.Config) (*DB, error) {
	db, err := NewDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	for _, ddl := range schema {
		if _, err := db.pool.Exec(ctx, ddl); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to initialize schema: %w", err)
		}
	}

	return db, nil
}

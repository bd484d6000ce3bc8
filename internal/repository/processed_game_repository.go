package repository

import (
	"context"
	"fmt"

	"github.com/yourusername/courtside/internal/database"
	"github.com/yourusername/courtside/internal/models"
)

// PostgresProcessedGameRepository implements ProcessedGameRepository for PostgreSQL
type PostgresProcessedGameRepository struct {
	db *database.DB
}

// NewPostgresProcessedGameRepository creates a new processed game repository
func NewPostgresProcessedGameRepository(db *database.DB) ProcessedGameRepository {
	return &PostgresProcessedGameRepository{db: db}
}

// MarkProcessed records that a game has been handled. Re-marking a game
// overwrites the outcome, which covers retried runs that later succeed.
func (r *PostgresProcessedGameRepository) MarkProcessed(ctx context.Context, gameID string, outcome models.UpdateOutcome) error {
	query := `
		INSERT INTO processed_games (game_id, outcome, processed_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (game_id) DO UPDATE SET
			outcome = EXCLUDED.outcome,
			processed_at = NOW()
	`

	_, err := r.db.GetPool().Exec(ctx, query, gameID, outcome)
	if err != nil {
		return fmt.Errorf("failed to mark game processed: %w", err)
	}

	return nil
}

// IsProcessed reports whether a game has already been handled
func (r *PostgresProcessedGameRepository) IsProcessed(ctx context.Context, gameID string) (bool, error) {
	query := "SELECT EXISTS(SELECT 1 FROM processed_games WHERE game_id = $1)"

	var exists bool
	err := r.db.GetPool().QueryRow(ctx, query, gameID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check processed game: %w", err)
	}

	return exists, nil
}

package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/yourusername/courtside/internal/database"
	"github.com/yourusername/courtside/internal/models"
)

// trainingStateID pins the single-row training state table. The id column is
// TEXT, so the key must bind as a string.
const trainingStateID = "core"

// PostgresTrainingStateRepository implements TrainingStateRepository for PostgreSQL
type PostgresTrainingStateRepository struct {
	db *database.DB
}

// NewPostgresTrainingStateRepository creates a new training state repository
func NewPostgresTrainingStateRepository(db *database.DB) TrainingStateRepository {
	return &PostgresTrainingStateRepository{db: db}
}

// Load retrieves the trainer state. Returns models.ErrNotFound when no state
// has been persisted yet.
func (r *PostgresTrainingStateRepository) Load(ctx context.Context) (*models.TrainingState, error) {
	query := `
		SELECT alpha, iteration, feedback_triggers, nn_loss_history, vae_loss_history, converged, updated_at
		FROM training_state WHERE id = $1
	`

	var nnJSON, vaeJSON []byte
	state := &models.TrainingState{}
	err := r.db.GetPool().QueryRow(ctx, query, trainingStateID).Scan(
		&state.Alpha, &state.Iteration, &state.FeedbackTriggers, &nnJSON, &vaeJSON, &state.Converged, &state.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load training state: %w", err)
	}

	if err := json.Unmarshal(nnJSON, &state.NNLossHistory); err != nil {
		return nil, fmt.Errorf("failed to decode nn loss history: %w", err)
	}
	if err := json.Unmarshal(vaeJSON, &state.VAELossHistory); err != nil {
		return nil, fmt.Errorf("failed to decode vae loss history: %w", err)
	}

	return state, nil
}

// Save upserts the trainer state
func (r *PostgresTrainingStateRepository) Save(ctx context.Context, state *models.TrainingState) error {
	nnJSON, err := json.Marshal(state.NNLossHistory)
	if err != nil {
		return fmt.Errorf("failed to encode nn loss history: %w", err)
	}
	vaeJSON, err := json.Marshal(state.VAELossHistory)
	if err != nil {
		return fmt.Errorf("failed to encode vae loss history: %w", err)
	}

	query := `
		INSERT INTO training_state (id, alpha, iteration, feedback_triggers, nn_loss_history, vae_loss_history, converged, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		ON CONFLICT (id) DO UPDATE SET
			alpha = EXCLUDED.alpha,
			iteration = EXCLUDED.iteration,
			feedback_triggers = EXCLUDED.feedback_triggers,
			nn_loss_history = EXCLUDED.nn_loss_history,
			vae_loss_history = EXCLUDED.vae_loss_history,
			converged = EXCLUDED.converged,
			updated_at = NOW()
	`

	_, err = r.db.GetPool().Exec(ctx, query,
		trainingStateID, state.Alpha, state.Iteration, state.FeedbackTriggers, nnJSON, vaeJSON, state.Converged,
	)
	if err != nil {
		return fmt.Errorf("failed to save training state: %w", err)
	}

	return nil
}

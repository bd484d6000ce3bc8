package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/yourusername/courtside/internal/database"
	"github.com/yourusername/courtside/internal/models"
	"github.com/yourusername/courtside/internal/neural"
)

// modelWeightsID pins the single-row model weights table.
const modelWeightsID = "core"

// PostgresModelWeightsRepository implements ModelWeightsRepository for PostgreSQL
type PostgresModelWeightsRepository struct {
	db *database.DB
}

// NewPostgresModelWeightsRepository creates a new model weights repository
func NewPostgresModelWeightsRepository(db *database.DB) ModelWeightsRepository {
	return &PostgresModelWeightsRepository{db: db}
}

// Load retrieves the persisted network parameters. Returns models.ErrNotFound
// when no weights have been saved yet.
func (r *PostgresModelWeightsRepository) Load(ctx context.Context) (*neural.ModelWeights, error) {
	query := `SELECT encoder, predictor FROM model_weights WHERE id = $1`

	var encJSON, predJSON []byte
	err := r.db.GetPool().QueryRow(ctx, query, modelWeightsID).Scan(&encJSON, &predJSON)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load model weights: %w", err)
	}

	weights := &neural.ModelWeights{}
	if err := json.Unmarshal(encJSON, &weights.Encoder); err != nil {
		return nil, fmt.Errorf("failed to decode encoder weights: %w", err)
	}
	if err := json.Unmarshal(predJSON, &weights.Predictor); err != nil {
		return nil, fmt.Errorf("failed to decode predictor weights: %w", err)
	}

	return weights, nil
}

// Save upserts the network parameters
func (r *PostgresModelWeightsRepository) Save(ctx context.Context, weights *neural.ModelWeights) error {
	encJSON, err := json.Marshal(weights.Encoder)
	if err != nil {
		return fmt.Errorf("failed to encode encoder weights: %w", err)
	}
	predJSON, err := json.Marshal(weights.Predictor)
	if err != nil {
		return fmt.Errorf("failed to encode predictor weights: %w", err)
	}

	query := `
		INSERT INTO model_weights (id, encoder, predictor, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (id) DO UPDATE SET
			encoder = EXCLUDED.encoder,
			predictor = EXCLUDED.predictor,
			updated_at = NOW()
	`

	if _, err := r.db.GetPool().Exec(ctx, query, modelWeightsID, encJSON, predJSON); err != nil {
		return fmt.Errorf("failed to save model weights: %w", err)
	}

	return nil
}

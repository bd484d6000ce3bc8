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

const errScanTeamState = "failed to scan team state: %w"

// PostgresTeamStateRepository implements TeamStateRepository for PostgreSQL
type PostgresTeamStateRepository struct {
	db *database.DB
}

// NewPostgresTeamStateRepository creates a new team state repository
func NewPostgresTeamStateRepository(db *database.DB) TeamStateRepository {
	return &PostgresTeamStateRepository{db: db}
}

// Load retrieves the latent distribution for one team
func (r *PostgresTeamStateRepository) Load(ctx context.Context, teamID string) (*models.LatentDistribution, error) {
	query := `
		SELECT team_id, mu, sigma, games_processed, last_season, updated_at
		FROM team_states WHERE team_id = $1
	`

	var muJSON, sigmaJSON []byte
	dist := &models.LatentDistribution{}
	err := r.db.GetPool().QueryRow(ctx, query, teamID).Scan(
		&dist.TeamID, &muJSON, &sigmaJSON, &dist.GamesProcessed, &dist.LastSeason, &dist.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load team state: %w", err)
	}

	if err := json.Unmarshal(muJSON, &dist.Mu); err != nil {
		return nil, fmt.Errorf("failed to decode mu: %w", err)
	}
	if err := json.Unmarshal(sigmaJSON, &dist.Sigma); err != nil {
		return nil, fmt.Errorf("failed to decode sigma: %w", err)
	}

	return dist, nil
}

// Save upserts the latent distribution for one team.
// Mu and sigma are stored as JSONB so the float slices round-trip losslessly.
func (r *PostgresTeamStateRepository) Save(ctx context.Context, dist *models.LatentDistribution) error {
	muJSON, err := json.Marshal(dist.Mu)
	if err != nil {
		return fmt.Errorf("failed to encode mu: %w", err)
	}
	sigmaJSON, err := json.Marshal(dist.Sigma)
	if err != nil {
		return fmt.Errorf("failed to encode sigma: %w", err)
	}

	query := `
		INSERT INTO team_states (team_id, mu, sigma, games_processed, last_season, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (team_id) DO UPDATE SET
			mu = EXCLUDED.mu,
			sigma = EXCLUDED.sigma,
			games_processed = EXCLUDED.games_processed,
			last_season = EXCLUDED.last_season,
			updated_at = NOW()
	`

	_, err = r.db.GetPool().Exec(ctx, query,
		dist.TeamID, muJSON, sigmaJSON, dist.GamesProcessed, dist.LastSeason,
	)
	if err != nil {
		return fmt.Errorf("failed to save team state: %w", err)
	}

	return nil
}

// LoadAll retrieves every tracked team's latent distribution
func (r *PostgresTeamStateRepository) LoadAll(ctx context.Context) ([]*models.LatentDistribution, error) {
	query := `
		SELECT team_id, mu, sigma, games_processed, last_season, updated_at
		FROM team_states
		ORDER BY team_id ASC
	`

	rows, err := r.db.GetPool().Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query team states: %w", err)
	}
	defer rows.Close()

	var dists []*models.LatentDistribution
	for rows.Next() {
		var muJSON, sigmaJSON []byte
		dist := &models.LatentDistribution{}
		err := rows.Scan(
			&dist.TeamID, &muJSON, &sigmaJSON, &dist.GamesProcessed, &dist.LastSeason, &dist.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf(errScanTeamState, err)
		}
		if err := json.Unmarshal(muJSON, &dist.Mu); err != nil {
			return nil, fmt.Errorf("failed to decode mu: %w", err)
		}
		if err := json.Unmarshal(sigmaJSON, &dist.Sigma); err != nil {
			return nil, fmt.Errorf("failed to decode sigma: %w", err)
		}
		dists = append(dists, dist)
	}

	return dists, rows.Err()
}

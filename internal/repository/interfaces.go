// Package repository provides persistence for team latent state, training
// state and performance history.
package repository

import (
	"context"
	"time"

	"github.com/yourusername/courtside/internal/models"
	"github.com/yourusername/courtside/internal/neural"
)

// TeamStateRepository persists per-team latent distributions. Load returns
// models.ErrNotFound when no state exists for the team. Implementations must
// be read-modify-write safe for sequential per-team updates.
type TeamStateRepository interface {
	Load(ctx context.Context, teamID string) (*models.LatentDistribution, error)
	Save(ctx context.Context, dist *models.LatentDistribution) error
	LoadAll(ctx context.Context) ([]*models.LatentDistribution, error)
}

// TrainingStateRepository persists the trainer's state. Round-trips alpha,
// the iteration counter and both loss histories losslessly.
type TrainingStateRepository interface {
	Load(ctx context.Context) (*models.TrainingState, error)
	Save(ctx context.Context, state *models.TrainingState) error
}

// ModelWeightsRepository persists the networks' layer parameters so a
// restart resumes from the trained model. Load returns models.ErrNotFound
// before the first save.
type ModelWeightsRepository interface {
	Load(ctx context.Context) (*neural.ModelWeights, error)
	Save(ctx context.Context, weights *neural.ModelWeights) error
}

// PerformanceRepository stores the monitor's append-only record history.
type PerformanceRepository interface {
	Append(ctx context.Context, record *models.PerformanceRecord) error
	GetRecent(ctx context.Context, limit int) ([]*models.PerformanceRecord, error)
	GetByDateRange(ctx context.Context, start, end time.Time) ([]*models.PerformanceRecord, error)
}

// ProcessedGameRepository tracks which games the pipeline has already handled
// so chronological per-team ordering survives restarts.
type ProcessedGameRepository interface {
	MarkProcessed(ctx context.Context, gameID string, outcome models.UpdateOutcome) error
	IsProcessed(ctx context.Context, gameID string) (bool, error)
}

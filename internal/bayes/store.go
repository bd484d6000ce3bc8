// Package bayes maintains each team's latent strength distribution and
// narrows its uncertainty as game evidence accumulates.
package bayes

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	applogger "github.com/yourusername/courtside/internal/logger"
	"github.com/yourusername/courtside/internal/metrics"
	"github.com/yourusername/courtside/internal/models"
	"github.com/yourusername/courtside/internal/repository"
)

// Config parameterizes the Bayesian update schedule.
type Config struct {
	LatentDim            int
	InitialUncertainty   float64
	MinUncertainty       float64
	UncertaintyDecayRate float64
	// Blend learning rate shrinks as base / (1 + decay·gamesProcessed).
	BaseLearningRate  float64
	LearningRateDecay float64
	// Season-boundary regression toward the standard-normal population prior.
	SeasonExpansion     float64
	RegressionPerSeason float64
}

// DefaultConfig returns the standard store settings for a latent dimension.
func DefaultConfig(latentDim int) Config {
	return Config{
		LatentDim:            latentDim,
		InitialUncertainty:   1.0,
		MinUncertainty:       0.05,
		UncertaintyDecayRate: 0.97,
		BaseLearningRate:     0.35,
		LearningRateDecay:    0.08,
		SeasonExpansion:      2.0,
		RegressionPerSeason:  0.25,
	}
}

// Store owns the LatentDistribution for every team id. Reads hand out clones;
// updates for one team must arrive in chronological game order because the
// learning-rate schedule depends on the gamesProcessed counter.
type Store struct {
	cfg         Config
	repo        repository.TeamStateRepository
	logger      *logrus.Logger
	modelLogger *applogger.ModelLogger

	mu    sync.RWMutex
	teams map[string]*models.LatentDistribution
}

// NewStore creates a store backed by the given persistence layer. repo may be
// nil for in-memory use in tests.
func NewStore(cfg Config, repo repository.TeamStateRepository, log *logrus.Logger) *Store {
	return &Store{
		cfg:         cfg,
		repo:        repo,
		logger:      log,
		modelLogger: applogger.NewModelLogger(log),
		teams:       make(map[string]*models.LatentDistribution),
	}
}

// GetDistribution returns the team's current latent distribution, creating a
// default high-uncertainty prior on first observation.
func (s *Store) GetDistribution(ctx context.Context, teamID string) (*models.LatentDistribution, error) {
	s.mu.RLock()
	if d, ok := s.teams[teamID]; ok {
		s.mu.RUnlock()
		return d.Clone(), nil
	}
	s.mu.RUnlock()

	if s.repo != nil {
		d, err := s.repo.Load(ctx, teamID)
		if err == nil {
			if err := d.Validate(); err != nil {
				return nil, fmt.Errorf("persisted state for team %s is invalid: %w", teamID, err)
			}
			s.mu.Lock()
			s.teams[teamID] = d
			metrics.UpdateTrackedTeams(len(s.teams))
			s.mu.Unlock()
			return d.Clone(), nil
		}
		if !errors.Is(err, models.ErrNotFound) {
			return nil, fmt.Errorf("failed to load team state: %w", err)
		}
	}

	d := s.defaultPrior(teamID)
	s.mu.Lock()
	s.teams[teamID] = d
	metrics.UpdateTrackedTeams(len(s.teams))
	s.mu.Unlock()

	s.logger.WithField("team_id", teamID).Debug("Created default prior for unseen team")
	return d.Clone(), nil
}

// Update blends the team's prior with an observed latent point using a
// precision-weighted convex combination, then decays sigma toward the floor.
// Returns a clone of the updated distribution.
func (s *Store) Update(ctx context.Context, teamID string, observedMu []float64, gameCtx models.GameContext) (*models.LatentDistribution, error) {
	if len(observedMu) != s.cfg.LatentDim {
		return nil, fmt.Errorf("%w: observed latent has %d components, store expects %d", models.ErrDimensionMismatch, len(observedMu), s.cfg.LatentDim)
	}

	if _, err := s.GetDistribution(ctx, teamID); err != nil {
		return nil, err
	}

	s.mu.Lock()
	d := s.teams[teamID]

	if gameCtx.Season != 0 && d.LastSeason != 0 && gameCtx.Season != d.LastSeason {
		s.regressToPrior(d, gameCtx.Season)
	}
	if gameCtx.Season != 0 {
		d.LastSeason = gameCtx.Season
	}

	lr := s.cfg.BaseLearningRate / (1 + s.cfg.LearningRateDecay*float64(d.GamesProcessed))
	for i := range d.Mu {
		d.Mu[i] = (1-lr)*d.Mu[i] + lr*observedMu[i]
		d.Sigma[i] *= s.cfg.UncertaintyDecayRate
		if d.Sigma[i] < s.cfg.MinUncertainty {
			d.Sigma[i] = s.cfg.MinUncertainty
		}
	}
	d.GamesProcessed++
	d.UpdatedAt = time.Now()
	updated := d.Clone()
	s.mu.Unlock()

	if s.repo != nil {
		if err := s.repo.Save(ctx, updated); err != nil {
			return nil, fmt.Errorf("failed to persist team state: %w", err)
		}
	}

	s.modelLogger.LogTeamStateUpdate(teamID, updated.GamesProcessed, updated.MeanUncertainty(), lr)

	return updated, nil
}

// regressToPrior widens sigma and pulls mu partway back toward the
// standard-normal population prior at a season boundary. The pull grows with
// the number of seasons skipped and shrinks with prior confidence.
func (s *Store) regressToPrior(d *models.LatentDistribution, newSeason int) {
	gap := newSeason - d.LastSeason
	if gap < 1 {
		gap = 1
	}

	span := s.cfg.InitialUncertainty - s.cfg.MinUncertainty
	confidence := 0.0
	if span > 0 {
		confidence = (s.cfg.InitialUncertainty - d.MeanUncertainty()) / span
		if confidence < 0 {
			confidence = 0
		}
		if confidence > 1 {
			confidence = 1
		}
	}

	pull := s.cfg.RegressionPerSeason * float64(gap) * (1 - 0.5*confidence)
	if pull > 1 {
		pull = 1
	}

	for i := range d.Mu {
		d.Mu[i] *= 1 - pull
		d.Sigma[i] *= s.cfg.SeasonExpansion
		if d.Sigma[i] > s.cfg.InitialUncertainty {
			d.Sigma[i] = s.cfg.InitialUncertainty
		}
	}

	s.logger.WithFields(logrus.Fields{
		"team_id":    d.TeamID,
		"season_gap": gap,
		"regression": pull,
	}).Info("Season boundary: regressed team state toward prior")
}

// TrackedTeams returns clones of every distribution currently in memory,
// for the monitor's convergence report.
func (s *Store) TrackedTeams() []*models.LatentDistribution {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.LatentDistribution, 0, len(s.teams))
	for _, d := range s.teams {
		out = append(out, d.Clone())
	}
	return out
}

// WarmUp preloads all persisted team state into memory.
func (s *Store) WarmUp(ctx context.Context) error {
	if s.repo == nil {
		return nil
	}
	dists, err := s.repo.LoadAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to warm up team state: %w", err)
	}
	s.mu.Lock()
	for _, d := range dists {
		s.teams[d.TeamID] = d
	}
	metrics.UpdateTrackedTeams(len(s.teams))
	s.mu.Unlock()
	s.logger.WithField("team_count", len(dists)).Info("Team state warmed up from persistence")
	return nil
}

func (s *Store) defaultPrior(teamID string) *models.LatentDistribution {
	d := &models.LatentDistribution{
		TeamID:    teamID,
		Mu:        make([]float64, s.cfg.LatentDim),
		Sigma:     make([]float64, s.cfg.LatentDim),
		UpdatedAt: time.Now(),
	}
	for i := range d.Sigma {
		d.Sigma[i] = s.cfg.InitialUncertainty
	}
	return d
}

package models

import (
	"fmt"
	"time"
)

// LatentDistribution is a diagonal Gaussian over a team's unobserved strength
// vector. The Bayesian store exclusively owns the instance for each team id;
// callers receive copies and must not mutate them.
type LatentDistribution struct {
	TeamID         string    `json:"team_id"`
	Mu             []float64 `json:"mu"`
	Sigma          []float64 `json:"sigma"`
	GamesProcessed int       `json:"games_processed"`
	LastSeason     int       `json:"last_season"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Validate checks the structural invariants: equal dimensionality and
// strictly positive sigma components.
func (d *LatentDistribution) Validate() error {
	if len(d.Mu) != len(d.Sigma) {
		return fmt.Errorf("%w: mu has %d components, sigma has %d", ErrDimensionMismatch, len(d.Mu), len(d.Sigma))
	}
	for i, s := range d.Sigma {
		if s <= 0 {
			return fmt.Errorf("%w: sigma[%d] = %g", ErrNonPositiveSigma, i, s)
		}
	}
	return nil
}

// Clone returns a deep copy safe to hand to callers.
func (d *LatentDistribution) Clone() *LatentDistribution {
	clone := &LatentDistribution{
		TeamID:         d.TeamID,
		Mu:             make([]float64, len(d.Mu)),
		Sigma:          make([]float64, len(d.Sigma)),
		GamesProcessed: d.GamesProcessed,
		LastSeason:     d.LastSeason,
		UpdatedAt:      d.UpdatedAt,
	}
	copy(clone.Mu, d.Mu)
	copy(clone.Sigma, d.Sigma)
	return clone
}

// MeanUncertainty returns the average sigma component, used by the monitor
// for convergence reporting.
func (d *LatentDistribution) MeanUncertainty() float64 {
	if len(d.Sigma) == 0 {
		return 0
	}
	sum := 0.0
	for _, s := range d.Sigma {
		sum += s
	}
	return sum / float64(len(d.Sigma))
}

package models

import (
	"time"

	"github.com/google/uuid"
)

// UpdateOutcome classifies the result of processing one completed game.
type UpdateOutcome string

const (
	OutcomeUpdated UpdateOutcome = "updated"
	OutcomeSkipped UpdateOutcome = "skipped"
	OutcomeFailed  UpdateOutcome = "failed"
)

// PerformanceRecord is one append-only entry in the monitor's rolling history.
type PerformanceRecord struct {
	ID                uuid.UUID     `json:"id"`
	GameID            string        `json:"game_id"`
	Outcome           UpdateOutcome `json:"outcome"`
	NNLoss            float64       `json:"nn_loss"`
	VAELoss           float64       `json:"vae_loss"`
	FeedbackTriggered bool          `json:"feedback_triggered"`
	Alpha             float64       `json:"alpha"`
	Attempts          int           `json:"attempts"`
	RecordedAt        time.Time     `json:"recorded_at"`
}

// AccuracyProxy maps a loss value onto [0,1]; the monitor trends this.
func (r *PerformanceRecord) AccuracyProxy() float64 {
	acc := 1 - r.NNLoss/2
	if acc < 0 {
		return 0
	}
	if acc > 1 {
		return 1
	}
	return acc
}

// GameResult is the orchestrator's per-game report returned to callers.
type GameResult struct {
	GameID            string        `json:"game_id"`
	Outcome           UpdateOutcome `json:"outcome"`
	NNLoss            float64       `json:"nn_loss"`
	VAELoss           float64       `json:"vae_loss"`
	HomeError         float64       `json:"home_error"`
	AwayError         float64       `json:"away_error"`
	FeedbackTriggered bool          `json:"feedback_triggered"`
	Alpha             float64       `json:"alpha"`
	Attempts          int           `json:"attempts"`
	Err               string        `json:"error,omitempty"`
}

package models

import "time"

// TrainingState is the feedback trainer's mutable state. The trainer
// exclusively owns the instance; persistence round-trips alpha and the
// iteration counter losslessly.
type TrainingState struct {
	Alpha            float64   `json:"alpha"`
	Iteration        int       `json:"iteration"`
	FeedbackTriggers int       `json:"feedback_triggers"`
	NNLossHistory    []float64 `json:"nn_loss_history"`
	VAELossHistory   []float64 `json:"vae_loss_history"`
	Converged        bool      `json:"converged"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// AppendLosses records one training step's losses, trimming both histories to
// the given window so the rolling statistics stay bounded.
func (s *TrainingState) AppendLosses(nnLoss, vaeLoss float64, window int) {
	s.NNLossHistory = append(s.NNLossHistory, nnLoss)
	s.VAELossHistory = append(s.VAELossHistory, vaeLoss)
	if len(s.NNLossHistory) > window {
		s.NNLossHistory = s.NNLossHistory[len(s.NNLossHistory)-window:]
	}
	if len(s.VAELossHistory) > window {
		s.VAELossHistory = s.VAELossHistory[len(s.VAELossHistory)-window:]
	}
}

// Package trainer couples the latent encoder and transition predictor into a
// single feedback-driven training loop with a decaying cross-influence term.
package trainer

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/courtside/internal/metrics"
	"github.com/yourusername/courtside/internal/models"
	"github.com/yourusername/courtside/internal/neural"
)

// Config parameterizes the joint training loop.
type Config struct {
	LearningRate         float64
	FeedbackThreshold    float64
	InitialAlpha         float64
	AlphaDecayRate       float64
	MinAlpha             float64
	StabilityWindow      int
	ConvergenceThreshold float64
}

// DefaultConfig returns the standard trainer settings.
func DefaultConfig() Config {
	return Config{
		LearningRate:         0.01,
		FeedbackThreshold:    1.5,
		InitialAlpha:         0.3,
		AlphaDecayRate:       0.995,
		MinAlpha:             0.01,
		StabilityWindow:      20,
		ConvergenceThreshold: 0.005,
	}
}

// StepResult reports one training step's outcome.
type StepResult struct {
	NNLoss            float64 `json:"nn_loss"`
	VAELoss           float64 `json:"vae_loss"`
	FeedbackTriggered bool    `json:"feedback_triggered"`
	Alpha             float64 `json:"alpha"`
}

// Trainer jointly improves the encoder and predictor from observed game
// outcomes. It exclusively owns its TrainingState; the pipeline serializes
// all calls.
type Trainer struct {
	encoder   *neural.Encoder
	predictor *neural.Predictor
	cfg       Config
	state     *models.TrainingState
	logger    *logrus.Logger

	// recentFeedback holds the feedback flag for the last StabilityWindow
	// steps; Stable judges the rate over this window, not the lifetime.
	recentFeedback []bool
}

// New creates a trainer over an encoder/predictor pair.
func New(encoder *neural.Encoder, predictor *neural.Predictor, cfg Config, logger *logrus.Logger) *Trainer {
	return &Trainer{
		encoder:   encoder,
		predictor: predictor,
		cfg:       cfg,
		state: &models.TrainingState{
			Alpha:     cfg.InitialAlpha,
			UpdatedAt: time.Now(),
		},
		logger: logger,
	}
}

// Restore replaces the trainer's state with a persisted one, keeping the
// configured alpha floor.
func (t *Trainer) Restore(state *models.TrainingState) {
	if state.Alpha < t.cfg.MinAlpha {
		state.Alpha = t.cfg.MinAlpha
	}
	t.state = state
}

// Step processes one observed (matchup, actual-outcome) pair:
// predictor forward + loss, one predictor SGD step toward the outcome, a
// conditional VAE feedback pass, and the unconditional alpha decay.
func (t *Trainer) Step(muA, sigmaA, muB, sigmaB []float64, gameCtx models.GameContext, features models.FeatureVector, actual models.TransitionProbs) (*StepResult, error) {
	input, err := t.predictor.BuildInput(muA, sigmaA, muB, sigmaB, gameCtx)
	if err != nil {
		return nil, err
	}

	nnLoss, err := t.predictor.TrainStep(input, actual, t.cfg.LearningRate)
	if err != nil {
		return nil, err
	}

	result := &StepResult{NNLoss: nnLoss}

	// Feedback only fires while the coupling coefficient is above its floor;
	// once alpha reaches MinAlpha the networks train independently.
	if nnLoss > t.cfg.FeedbackThreshold && t.state.Alpha > t.cfg.MinAlpha {
		losses, err := t.encoder.TrainStep(features, t.state.Alpha, nnLoss, t.cfg.LearningRate)
		if err != nil {
			return nil, err
		}
		result.VAELoss = losses.Total
		result.FeedbackTriggered = true
		t.state.FeedbackTriggers++
		metrics.RecordFeedbackTrigger()
	} else {
		losses, err := t.encoder.Evaluate(features, 0, 0)
		if err != nil {
			return nil, err
		}
		result.VAELoss = losses.Total
	}

	t.state.Alpha *= t.cfg.AlphaDecayRate
	if t.state.Alpha < t.cfg.MinAlpha {
		t.state.Alpha = t.cfg.MinAlpha
	}
	result.Alpha = t.state.Alpha

	t.recentFeedback = append(t.recentFeedback, result.FeedbackTriggered)
	if len(t.recentFeedback) > t.cfg.StabilityWindow {
		t.recentFeedback = t.recentFeedback[len(t.recentFeedback)-t.cfg.StabilityWindow:]
	}

	t.state.Iteration++
	t.state.AppendLosses(nnLoss, result.VAELoss, t.cfg.StabilityWindow)
	t.state.Converged = t.converged()
	t.state.UpdatedAt = time.Now()

	metrics.UpdateTrainingLosses(nnLoss, result.VAELoss)
	metrics.UpdateAlpha(t.state.Alpha)

	t.logger.WithFields(logrus.Fields{
		"iteration":          t.state.Iteration,
		"nn_loss":            nnLoss,
		"vae_loss":           result.VAELoss,
		"alpha":              t.state.Alpha,
		"feedback_triggered": result.FeedbackTriggered,
	}).Debug("Training step completed")

	return result, nil
}

// Converged reports whether both loss series have stabilized over the window.
func (t *Trainer) Converged() bool {
	return t.state.Converged
}

func (t *Trainer) converged() bool {
	w := t.cfg.StabilityWindow
	if len(t.state.NNLossHistory) < w || len(t.state.VAELossHistory) < w {
		return false
	}
	return variance(t.state.NNLossHistory) < t.cfg.ConvergenceThreshold &&
		variance(t.state.VAELossHistory) < t.cfg.ConvergenceThreshold
}

// Stable reports whether the coupling is under control: the feedback trigger
// rate over the stability window below 0.5. Alpha never increases, so old
// trigger-heavy phases must not keep the signal unstable once the coupling
// has settled.
func (t *Trainer) Stable() bool {
	if len(t.recentFeedback) == 0 {
		return true
	}
	return t.RecentFeedbackRate() < 0.5
}

// RecentFeedbackRate returns the fraction of steps within the stability
// window that fired feedback.
func (t *Trainer) RecentFeedbackRate() float64 {
	if len(t.recentFeedback) == 0 {
		return 0
	}
	fired := 0
	for _, triggered := range t.recentFeedback {
		if triggered {
			fired++
		}
	}
	return float64(fired) / float64(len(t.recentFeedback))
}

// FeedbackRate returns the lifetime fraction of steps that fired feedback.
func (t *Trainer) FeedbackRate() float64 {
	if t.state.Iteration == 0 {
		return 0
	}
	return float64(t.state.FeedbackTriggers) / float64(t.state.Iteration)
}

// Alpha returns the current feedback coefficient.
func (t *Trainer) Alpha() float64 { return t.state.Alpha }

// RollingNNLoss returns the mean predictor loss over the stability window.
func (t *Trainer) RollingNNLoss() float64 { return mean(t.state.NNLossHistory) }

// RollingVAELoss returns the mean encoder loss over the stability window.
func (t *Trainer) RollingVAELoss() float64 { return mean(t.state.VAELossHistory) }

// State returns a copy of the training state for persistence.
func (t *Trainer) State() models.TrainingState {
	s := *t.state
	s.NNLossHistory = append([]float64(nil), t.state.NNLossHistory...)
	s.VAELossHistory = append([]float64(nil), t.state.VAELossHistory...)
	return s
}

// Reset restores the trainer to its initial state.
func (t *Trainer) Reset() {
	t.state = &models.TrainingState{
		Alpha:     t.cfg.InitialAlpha,
		UpdatedAt: time.Now(),
	}
	t.recentFeedback = nil
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func variance(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	m := mean(values)
	v := 0.0
	for _, x := range values {
		diff := x - m
		v += diff * diff
	}
	return v / float64(len(values))
}

package trainer

import (
	"io"
	"math/rand"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/courtside/internal/models"
	"github.com/yourusername/courtside/internal/neural"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func newTestTrainer(cfg Config, seed int64) *Trainer {
	rng := rand.New(rand.NewSource(seed))
	encoder := neural.NewEncoder(neural.EncoderConfig{InputDim: 12, LatentDim: 4, Hidden1: 16, Hidden2: 8}, rng)
	predictor := neural.NewPredictor(neural.PredictorConfig{LatentDim: 4, Hidden1: 16, Hidden2: 8}, rng)
	return New(encoder, predictor, cfg, quietLogger())
}

func stepInputs(seed int64) (muA, sigmaA, muB, sigmaB []float64, features models.FeatureVector, actual models.TransitionProbs) {
	rng := rand.New(rand.NewSource(seed))
	muA = make([]float64, 4)
	sigmaA = make([]float64, 4)
	muB = make([]float64, 4)
	sigmaB = make([]float64, 4)
	features = make(models.FeatureVector, 12)
	for i := 0; i < 4; i++ {
		muA[i] = rng.NormFloat64()
		sigmaA[i] = 0.5
		muB[i] = rng.NormFloat64()
		sigmaB[i] = 0.5
	}
	for i := range features {
		features[i] = rng.Float64()
	}
	actual = models.TransitionProbs{0.3, 0.2, 0.1, 0.1, 0.1, 0.05, 0.05, 0.1}
	return
}

func TestAlphaDecaysToFloor(t *testing.T) {
	cfg := DefaultConfig()
	cfg.InitialAlpha = 0.8
	cfg.AlphaDecayRate = 0.5
	cfg.MinAlpha = 0.1
	tr := newTestTrainer(cfg, 1)

	muA, sigmaA, muB, sigmaB, features, actual := stepInputs(2)

	prev := tr.Alpha()
	for i := 0; i < 10; i++ {
		result, err := tr.Step(muA, sigmaA, muB, sigmaB, models.GameContext{}, features, actual)
		require.NoError(t, err)
		assert.LessOrEqual(t, result.Alpha, prev, "alpha must never increase")
		assert.GreaterOrEqual(t, result.Alpha, cfg.MinAlpha)
		prev = result.Alpha
	}

	assert.Equal(t, cfg.MinAlpha, tr.Alpha(), "alpha should settle at its floor")
}

func TestFeedbackNeverFiresAtAlphaFloor(t *testing.T) {
	cfg := DefaultConfig()
	// Threshold low enough that any real loss would exceed it.
	cfg.FeedbackThreshold = 1e-9
	cfg.InitialAlpha = 0.01
	cfg.MinAlpha = 0.01
	tr := newTestTrainer(cfg, 3)

	muA, sigmaA, muB, sigmaB, features, actual := stepInputs(4)

	for i := 0; i < 5; i++ {
		result, err := tr.Step(muA, sigmaA, muB, sigmaB, models.GameContext{}, features, actual)
		require.NoError(t, err)
		assert.False(t, result.FeedbackTriggered, "step %d: coupling is retired once alpha reaches its floor", i)
	}
	assert.Zero(t, tr.State().FeedbackTriggers)
}

func TestFeedbackFiresAboveThreshold(t *testing.T) {
	cfg := DefaultConfig()
	cfg.FeedbackThreshold = 1e-9
	cfg.InitialAlpha = 0.3
	cfg.MinAlpha = 0.01
	tr := newTestTrainer(cfg, 5)

	muA, sigmaA, muB, sigmaB, features, actual := stepInputs(6)

	result, err := tr.Step(muA, sigmaA, muB, sigmaB, models.GameContext{}, features, actual)
	require.NoError(t, err)
	assert.True(t, result.FeedbackTriggered)
	assert.Equal(t, 1, tr.State().FeedbackTriggers)
	assert.InEpsilon(t, 1.0, tr.FeedbackRate(), 1e-12)
}

func TestStateRoundTrip(t *testing.T) {
	cfg := DefaultConfig()
	tr := newTestTrainer(cfg, 7)

	muA, sigmaA, muB, sigmaB, features, actual := stepInputs(8)
	for i := 0; i < 3; i++ {
		_, err := tr.Step(muA, sigmaA, muB, sigmaB, models.GameContext{}, features, actual)
		require.NoError(t, err)
	}

	saved := tr.State()

	restored := newTestTrainer(cfg, 9)
	restored.Restore(&saved)

	assert.Equal(t, saved.Alpha, restored.Alpha())
	assert.Equal(t, saved.Iteration, restored.State().Iteration)
	assert.Equal(t, saved.NNLossHistory, restored.State().NNLossHistory)
	assert.Equal(t, saved.VAELossHistory, restored.State().VAELossHistory)
}

func TestRestoreClampsAlphaBelowFloor(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MinAlpha = 0.05
	tr := newTestTrainer(cfg, 10)

	tr.Restore(&models.TrainingState{Alpha: 0.001, UpdatedAt: time.Now()})
	assert.Equal(t, 0.05, tr.Alpha())
}

func TestStateReturnsCopy(t *testing.T) {
	tr := newTestTrainer(DefaultConfig(), 11)
	muA, sigmaA, muB, sigmaB, features, actual := stepInputs(12)
	_, err := tr.Step(muA, sigmaA, muB, sigmaB, models.GameContext{}, features, actual)
	require.NoError(t, err)

	state := tr.State()
	require.NotEmpty(t, state.NNLossHistory)
	state.NNLossHistory[0] = -999

	assert.NotEqual(t, -999.0, tr.State().NNLossHistory[0], "State must not share history slices")
}

func TestLossHistoryBounded(t *testing.T) {
	cfg := DefaultConfig()
	cfg.StabilityWindow = 5
	tr := newTestTrainer(cfg, 13)

	muA, sigmaA, muB, sigmaB, features, actual := stepInputs(14)
	for i := 0; i < 12; i++ {
		_, err := tr.Step(muA, sigmaA, muB, sigmaB, models.GameContext{}, features, actual)
		require.NoError(t, err)
	}

	state := tr.State()
	assert.Len(t, state.NNLossHistory, 5)
	assert.Len(t, state.VAELossHistory, 5)
	assert.Equal(t, 12, state.Iteration)
}

func TestStableJudgesRecentWindowNotLifetime(t *testing.T) {
	cfg := DefaultConfig()
	cfg.FeedbackThreshold = 1e-9
	cfg.InitialAlpha = 0.8
	cfg.AlphaDecayRate = 0.5
	cfg.MinAlpha = 0.1
	cfg.StabilityWindow = 2
	tr := newTestTrainer(cfg, 17)

	muA, sigmaA, muB, sigmaB, features, actual := stepInputs(18)

	// Alpha halves each step: the first three steps fire feedback, then the
	// floor retires the coupling and the last two steps run clean.
	for i := 0; i < 5; i++ {
		_, err := tr.Step(muA, sigmaA, muB, sigmaB, models.GameContext{}, features, actual)
		require.NoError(t, err)
	}

	assert.Equal(t, 3, tr.State().FeedbackTriggers)
	assert.Greater(t, tr.FeedbackRate(), 0.5, "lifetime rate stays high")
	assert.Zero(t, tr.RecentFeedbackRate(), "no triggers inside the window")
	assert.True(t, tr.Stable(), "a settled coupling is stable despite a noisy history")
}

func TestStableFalseWhileWindowSaturated(t *testing.T) {
	cfg := DefaultConfig()
	cfg.FeedbackThreshold = 1e-9
	cfg.InitialAlpha = 0.3
	cfg.MinAlpha = 0.01
	tr := newTestTrainer(cfg, 19)

	muA, sigmaA, muB, sigmaB, features, actual := stepInputs(20)
	for i := 0; i < 3; i++ {
		result, err := tr.Step(muA, sigmaA, muB, sigmaB, models.GameContext{}, features, actual)
		require.NoError(t, err)
		require.True(t, result.FeedbackTriggered)
	}

	assert.InEpsilon(t, 1.0, tr.RecentFeedbackRate(), 1e-12)
	assert.False(t, tr.Stable())
}

func TestReset(t *testing.T) {
	cfg := DefaultConfig()
	cfg.InitialAlpha = 0.4
	tr := newTestTrainer(cfg, 15)

	muA, sigmaA, muB, sigmaB, features, actual := stepInputs(16)
	_, err := tr.Step(muA, sigmaA, muB, sigmaB, models.GameContext{}, features, actual)
	require.NoError(t, err)

	tr.Reset()

	assert.Equal(t, 0.4, tr.Alpha())
	assert.Zero(t, tr.State().Iteration)
	assert.Empty(t, tr.State().NNLossHistory)
	assert.True(t, tr.Stable())
}

package neural

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/courtside/internal/models"
)

func trainedPredictor(t *testing.T, seed int64) *Predictor {
	t.Helper()
	rng := rand.New(rand.NewSource(seed))
	p := NewPredictor(PredictorConfig{LatentDim: 4, Hidden1: 16, Hidden2: 8}, rng)

	target := models.TransitionProbs{0.3, 0.2, 0.1, 0.1, 0.1, 0.05, 0.05, 0.1}
	input := make([]float64, p.InputDim())
	for i := range input {
		input[i] = rng.NormFloat64()
	}
	for i := 0; i < 5; i++ {
		_, err := p.TrainStep(input, target, 0.05)
		require.NoError(t, err)
	}
	return p
}

func TestPredictorWeightsRoundTrip(t *testing.T) {
	trained := trainedPredictor(t, 1)

	// A fresh network from a different seed diverges from the trained one.
	fresh := NewPredictor(PredictorConfig{LatentDim: 4, Hidden1: 16, Hidden2: 8}, rand.New(rand.NewSource(99)))

	input := make([]float64, trained.InputDim())
	for i := range input {
		input[i] = 0.3
	}
	assert.NotEqual(t, trained.Forward(input), fresh.Forward(input))

	require.NoError(t, fresh.SetWeights(trained.Weights()))
	assert.Equal(t, trained.Forward(input), fresh.Forward(input),
		"restored network must reproduce the trained forward pass exactly")
}

func TestEncoderWeightsRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	trained := NewEncoder(EncoderConfig{InputDim: 12, LatentDim: 4, Hidden1: 16, Hidden2: 8}, rng)

	features := make(models.FeatureVector, 12)
	for i := range features {
		features[i] = rng.Float64()
	}
	for i := 0; i < 5; i++ {
		_, err := trained.TrainStep(features, 0.3, 1.0, 0.05)
		require.NoError(t, err)
	}

	fresh := NewEncoder(EncoderConfig{InputDim: 12, LatentDim: 4, Hidden1: 16, Hidden2: 8}, rand.New(rand.NewSource(77)))
	require.NoError(t, fresh.SetWeights(trained.Weights()))

	// The deterministic encode half must match; sampling stays stochastic.
	muA, sigmaA, err := trained.Encode(features)
	require.NoError(t, err)
	muB, sigmaB, err := fresh.Encode(features)
	require.NoError(t, err)
	assert.Equal(t, muA, muB)
	assert.Equal(t, sigmaA, sigmaB)
}

func TestSetWeightsRejectsMismatchedTopology(t *testing.T) {
	small := NewPredictor(PredictorConfig{LatentDim: 4, Hidden1: 8, Hidden2: 4}, rand.New(rand.NewSource(3)))
	big := NewPredictor(PredictorConfig{LatentDim: 4, Hidden1: 16, Hidden2: 8}, rand.New(rand.NewSource(4)))

	err := small.SetWeights(big.Weights())
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrDimensionMismatch)
}

func TestWeightsSnapshotIsIndependent(t *testing.T) {
	p := trainedPredictor(t, 5)

	input := make([]float64, p.InputDim())
	for i := range input {
		input[i] = 0.2
	}
	before := p.Forward(input)

	w := p.Weights()
	w.H1.Weights[0][0] = -999
	w.H1.Biases[0] = -999

	assert.Equal(t, before, p.Forward(input), "mutating a snapshot must not touch the live network")
}

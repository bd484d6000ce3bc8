package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAccuracyProxy(t *testing.T) {
	perfect := &PerformanceRecord{NNLoss: 0}
	assert.Equal(t, 1.0, perfect.AccuracyProxy())

	middling := &PerformanceRecord{NNLoss: 1}
	assert.InDelta(t, 0.5, middling.AccuracyProxy(), 1e-12)

	// Clamped at both ends.
	terrible := &PerformanceRecord{NNLoss: 10}
	assert.Equal(t, 0.0, terrible.AccuracyProxy())

	negative := &PerformanceRecord{NNLoss: -1}
	assert.Equal(t, 1.0, negative.AccuracyProxy())
}

func TestAppendLossesTrimsToWindow(t *testing.T) {
	s := &TrainingState{}
	for i := 0; i < 8; i++ {
		s.AppendLosses(float64(i), float64(i)/2, 5)
	}

	assert.Len(t, s.NNLossHistory, 5)
	assert.Len(t, s.VAELossHistory, 5)
	assert.Equal(t, 3.0, s.NNLossHistory[0], "oldest entries fall off first")
	assert.Equal(t, 7.0, s.NNLossHistory[4])
}

func TestLatentDistributionValidate(t *testing.T) {
	valid := &LatentDistribution{Mu: []float64{0, 0}, Sigma: []float64{1, 1}}
	assert.NoError(t, valid.Validate())

	mismatched := &LatentDistribution{Mu: []float64{0}, Sigma: []float64{1, 1}}
	assert.ErrorIs(t, mismatched.Validate(), ErrDimensionMismatch)

	degenerate := &LatentDistribution{Mu: []float64{0, 0}, Sigma: []float64{1, 0}}
	assert.ErrorIs(t, degenerate.Validate(), ErrNonPositiveSigma)
}

func TestLatentDistributionClone(t *testing.T) {
	d := &LatentDistribution{TeamID: "duke", Mu: []float64{1, 2}, Sigma: []float64{0.5, 0.5}, GamesProcessed: 3}
	c := d.Clone()
	c.Mu[0] = 99

	assert.Equal(t, 1.0, d.Mu[0])
	assert.Equal(t, d.TeamID, c.TeamID)
	assert.Equal(t, d.GamesProcessed, c.GamesProcessed)
}

func TestMeanUncertainty(t *testing.T) {
	d := &LatentDistribution{Sigma: []float64{0.2, 0.4}}
	assert.InDelta(t, 0.3, d.MeanUncertainty(), 1e-12)

	empty := &LatentDistribution{}
	assert.Zero(t, empty.MeanUncertainty())
}

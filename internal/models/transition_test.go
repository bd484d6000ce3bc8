package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransitionProbsValidate(t *testing.T) {
	valid := TransitionProbs{0.3, 0.2, 0.1, 0.1, 0.1, 0.05, 0.05, 0.1}
	assert.NoError(t, valid.Validate())

	var zero TransitionProbs
	assert.ErrorIs(t, zero.Validate(), ErrAllZeroProbabilities)

	negative := TransitionProbs{0.5, -0.1, 0.2, 0.1, 0.1, 0.1, 0.05, 0.05}
	assert.Error(t, negative.Validate())
}

func TestTransitionProbsNormalize(t *testing.T) {
	p := TransitionProbs{2, 2, 1, 1, 1, 1, 1, 1}
	p.Normalize()

	total := 0.0
	for _, v := range p {
		total += v
	}
	assert.InDelta(t, 1.0, total, 1e-12)
	assert.InDelta(t, 0.2, p[OutcomeTwoMake], 1e-12)

	var zero TransitionProbs
	zero.Normalize()
	assert.Equal(t, TransitionProbs{}, zero, "normalizing a zero vector is a no-op")
}

func TestExpectedPointsPerPossession(t *testing.T) {
	p := TransitionProbs{}
	p[OutcomeTwoMake] = 0.5
	p[OutcomeThreeMake] = 0.2
	p[OutcomeFTMake] = 0.1
	p[OutcomeTurnover] = 0.2

	// 0.5*2 + 0.2*3 + 0.1*1 = 1.7
	assert.InDelta(t, 1.7, p.ExpectedPointsPerPossession(), 1e-12)
}

func TestOutcomePoints(t *testing.T) {
	assert.Equal(t, 2, OutcomePoints(OutcomeTwoMake))
	assert.Equal(t, 3, OutcomePoints(OutcomeThreeMake))
	assert.Equal(t, 1, OutcomePoints(OutcomeFTMake))
	assert.Equal(t, 0, OutcomePoints(OutcomeOffRebound))
	assert.Equal(t, 0, OutcomePoints(OutcomeTurnover))
}

func TestTransitionProbsFromSlice(t *testing.T) {
	values := []float64{0.3, 0.2, 0.1, 0.1, 0.1, 0.05, 0.05, 0.1}
	p, err := TransitionProbsFromSlice(values)
	require.NoError(t, err)
	assert.Equal(t, 0.3, p[OutcomeTwoMake])

	_, err = TransitionProbsFromSlice([]float64{0.5, 0.5})
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestTransitionProbsSliceIsCopy(t *testing.T) {
	p := TransitionProbs{0.3, 0.2, 0.1, 0.1, 0.1, 0.05, 0.05, 0.1}
	s := p.Slice()
	s[0] = -1
	assert.Equal(t, 0.3, p[0])
}

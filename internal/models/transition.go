package models

import "fmt"

// Possession outcome indexes into a TransitionProbs vector.
const (
	OutcomeTwoMake = iota
	OutcomeTwoMiss
	OutcomeThreeMake
	OutcomeThreeMiss
	OutcomeFTMake
	OutcomeFTMiss
	OutcomeOffRebound
	OutcomeTurnover

	NumOutcomes = 8
)

// outcomePoints maps each possession outcome to the points it scores.
var outcomePoints = [NumOutcomes]int{2, 0, 3, 0, 1, 0, 0, 0}

// OutcomePoints returns the points scored by a possession outcome.
func OutcomePoints(outcome int) int {
	return outcomePoints[outcome]
}

// TransitionProbs holds per-possession outcome probabilities for one team.
// The predictor's softmax layer guarantees the components sum to 1; values
// assembled from raw box scores should call Normalize before use.
type TransitionProbs [NumOutcomes]float64

// Validate rejects vectors that cannot drive a categorical sample.
func (p TransitionProbs) Validate() error {
	total := 0.0
	for i, v := range p {
		if v < 0 {
			return fmt.Errorf("probability[%d] is negative: %g", i, v)
		}
		total += v
	}
	if total == 0 {
		return ErrAllZeroProbabilities
	}
	return nil
}

// Normalize scales the vector so components sum to 1. No-op on an all-zero vector.
func (p *TransitionProbs) Normalize() {
	total := 0.0
	for _, v := range p {
		total += v
	}
	if total == 0 {
		return
	}
	for i := range p {
		p[i] /= total
	}
}

// ExpectedPointsPerPossession returns the scoring rate implied by the vector.
func (p TransitionProbs) ExpectedPointsPerPossession() float64 {
	pts := 0.0
	for i, v := range p {
		pts += v * float64(outcomePoints[i])
	}
	return pts
}

// Slice copies the vector into a plain []float64 for the numeric layers.
func (p TransitionProbs) Slice() []float64 {
	out := make([]float64, NumOutcomes)
	copy(out, p[:])
	return out
}

// TransitionProbsFromSlice builds a vector from a predictor output slice.
func TransitionProbsFromSlice(values []float64) (TransitionProbs, error) {
	var p TransitionProbs
	if len(values) != NumOutcomes {
		return p, fmt.Errorf("%w: expected %d outcome probabilities, got %d", ErrDimensionMismatch, NumOutcomes, len(values))
	}
	copy(p[:], values)
	return p, nil
}

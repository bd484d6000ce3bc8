package models

import "fmt"

// FeatureVector is a fixed-length ordered sequence of normalized statistical
// signals for one team in one game. Immutable once built; every component is
// expected to lie in [0,1] after normalization.
type FeatureVector []float64

// CheckDim verifies the vector matches the configured input dimension.
func (f FeatureVector) CheckDim(want int) error {
	if len(f) != want {
		return fmt.Errorf("%w: feature vector has %d components, encoder expects %d", ErrDimensionMismatch, len(f), want)
	}
	return nil
}

// Clamped returns a copy with every component clamped to [0,1]. The feature
// builder applies this as the final normalization step.
func (f FeatureVector) Clamped() FeatureVector {
	out := make(FeatureVector, len(f))
	for i, v := range f {
		switch {
		case v < 0:
			out[i] = 0
		case v > 1:
			out[i] = 1
		default:
			out[i] = v
		}
	}
	return out
}

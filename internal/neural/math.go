// Package neural implements the two fixed-topology networks at the heart of
// the model: the variational latent encoder and the transition predictor.
// Forward and backward passes are explicit matrix-vector operations with one
// reusable activation buffer per layer; the topology is fixed at construction
// so no computation graph is built.
package neural

import (
	"math"
	"math/rand"
)

// layer is one dense layer with cached pre-activation and activation buffers.
// Buffers are allocated once and reused across calls; a layer instance is not
// safe for concurrent use.
type layer struct {
	inDim   int
	outDim  int
	weights [][]float64 // [outDim][inDim]
	biases  []float64
	preact  []float64 // z = Wx + b, cached for the backward pass
	act     []float64 // activation(z)
	input   []float64 // last input, cached for weight gradients
}

func newLayer(inDim, outDim int, rng *rand.Rand) *layer {
	l := &layer{
		inDim:   inDim,
		outDim:  outDim,
		weights: make([][]float64, outDim),
		biases:  make([]float64, outDim),
		preact:  make([]float64, outDim),
		act:     make([]float64, outDim),
		input:   make([]float64, inDim),
	}
	// Xavier-style initialization scaled by fan-in
	scale := math.Sqrt(2.0 / float64(inDim))
	for i := range l.weights {
		l.weights[i] = make([]float64, inDim)
		for j := range l.weights[i] {
			l.weights[i][j] = rng.NormFloat64() * scale
		}
	}
	return l
}

// forward computes z = Wx + b into the cached buffers and returns preact.
// The caller applies the activation function.
func (l *layer) forward(input []float64) []float64 {
	copy(l.input, input)
	for i := 0; i < l.outDim; i++ {
		sum := l.biases[i]
		row := l.weights[i]
		for j := 0; j < l.inDim; j++ {
			sum += row[j] * input[j]
		}
		l.preact[i] = sum
	}
	return l.preact
}

// forwardReLU runs forward and applies ReLU into the act buffer.
func (l *layer) forwardReLU(input []float64) []float64 {
	l.forward(input)
	for i, z := range l.preact {
		if z > 0 {
			l.act[i] = z
		} else {
			l.act[i] = 0
		}
	}
	return l.act
}

// backward applies SGD updates for this layer given the delta on its
// pre-activations, and returns the delta propagated to its input (through the
// transposed weight matrix). Must follow a forward call.
func (l *layer) backward(delta []float64, lr float64) []float64 {
	prev := make([]float64, l.inDim)
	for i := 0; i < l.outDim; i++ {
		d := delta[i]
		row := l.weights[i]
		for j := 0; j < l.inDim; j++ {
			prev[j] += row[j] * d
			row[j] -= lr * d * l.input[j]
		}
		l.biases[i] -= lr * d
	}
	return prev
}

// reluGate zeroes delta components whose pre-activation was non-positive.
func (l *layer) reluGate(delta []float64) []float64 {
	for i := range delta {
		if l.preact[i] <= 0 {
			delta[i] = 0
		}
	}
	return delta
}

func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}

// softmax writes a numerically-stable softmax of src into dst.
func softmax(dst, src []float64) {
	maxVal := src[0]
	for _, v := range src[1:] {
		if v > maxVal {
			maxVal = v
		}
	}
	sum := 0.0
	for i, v := range src {
		dst[i] = math.Exp(v - maxVal)
		sum += dst[i]
	}
	for i := range dst {
		dst[i] /= sum
	}
}

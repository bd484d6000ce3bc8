package neural

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/yourusername/courtside/internal/models"
)

// lossEpsilon smooths the cross-entropy log to avoid singularities at 0.
const lossEpsilon = 1e-10

// PredictorConfig fixes the transition network topology.
type PredictorConfig struct {
	LatentDim int
	Hidden1   int
	Hidden2   int
}

// DefaultPredictorConfig returns the standard topology for a latent dimension.
func DefaultPredictorConfig(latentDim int) PredictorConfig {
	return PredictorConfig{
		LatentDim: latentDim,
		Hidden1:   48,
		Hidden2:   24,
	}
}

// Predictor turns two teams' latent distributions plus game context into a
// per-possession transition probability vector. Input layout: muA | sigmaA |
// muB | sigmaB | context. Not safe for concurrent use.
type Predictor struct {
	cfg      PredictorConfig
	inputDim int

	h1, h2, out *layer
	probs       []float64
	input       []float64
}

// NewPredictor constructs a predictor with freshly initialized weights.
func NewPredictor(cfg PredictorConfig, rng *rand.Rand) *Predictor {
	if cfg.Hidden1 == 0 || cfg.Hidden2 == 0 {
		def := DefaultPredictorConfig(cfg.LatentDim)
		if cfg.Hidden1 == 0 {
			cfg.Hidden1 = def.Hidden1
		}
		if cfg.Hidden2 == 0 {
			cfg.Hidden2 = def.Hidden2
		}
	}
	inputDim := 4*cfg.LatentDim + models.ContextDim
	return &Predictor{
		cfg:      cfg,
		inputDim: inputDim,
		h1:       newLayer(inputDim, cfg.Hidden1, rng),
		h2:       newLayer(cfg.Hidden1, cfg.Hidden2, rng),
		out:      newLayer(cfg.Hidden2, models.NumOutcomes, rng),
		probs:    make([]float64, models.NumOutcomes),
		input:    make([]float64, inputDim),
	}
}

// InputDim returns the concatenated input length.
func (p *Predictor) InputDim() int { return p.inputDim }

// BuildInput concatenates latent distributions and context into the network
// input layout. Dimension mismatches are rejected here so Predict and
// TrainStep share one validation path.
func (p *Predictor) BuildInput(muA, sigmaA, muB, sigmaB []float64, gameCtx models.GameContext) ([]float64, error) {
	L := p.cfg.LatentDim
	if len(muA) != L || len(sigmaA) != L || len(muB) != L || len(sigmaB) != L {
		return nil, fmt.Errorf("%w: latent vectors must have %d components (got %d/%d/%d/%d)",
			models.ErrDimensionMismatch, L, len(muA), len(sigmaA), len(muB), len(sigmaB))
	}
	input := make([]float64, 0, p.inputDim)
	input = append(input, muA...)
	input = append(input, sigmaA...)
	input = append(input, muB...)
	input = append(input, sigmaB...)
	input = append(input, gameCtx.Vector()...)
	return input, nil
}

// Predict runs the forward pass for team A facing team B.
func (p *Predictor) Predict(muA, sigmaA, muB, sigmaB []float64, gameCtx models.GameContext) (models.TransitionProbs, error) {
	input, err := p.BuildInput(muA, sigmaA, muB, sigmaB, gameCtx)
	if err != nil {
		return models.TransitionProbs{}, err
	}
	return models.TransitionProbsFromSlice(p.Forward(input))
}

// Forward runs the network on a prepared input vector and returns a copy of
// the softmax output.
func (p *Predictor) Forward(input []float64) []float64 {
	copy(p.input, input)
	h1 := p.h1.forwardReLU(input)
	h2 := p.h2.forwardReLU(h1)
	logits := p.out.forward(h2)
	softmax(p.probs, logits)
	out := make([]float64, models.NumOutcomes)
	copy(out, p.probs)
	return out
}

// Loss is the epsilon-smoothed cross-entropy between predicted and actual
// outcome distributions.
func (p *Predictor) Loss(predicted, actual models.TransitionProbs) float64 {
	loss := 0.0
	for i := range actual {
		loss -= actual[i] * math.Log(predicted[i]+lossEpsilon)
	}
	return loss
}

// TrainStep performs one forward+backward pass with an in-place SGD update and
// returns the pre-update loss. The softmax+cross-entropy pairing gives the
// closed-form output delta predicted − target; hidden deltas propagate through
// transposed weights gated by the ReLU derivative.
func (p *Predictor) TrainStep(input []float64, target models.TransitionProbs, lr float64) (float64, error) {
	if len(input) != p.inputDim {
		return 0, fmt.Errorf("%w: predictor input has %d components, expects %d", models.ErrDimensionMismatch, len(input), p.inputDim)
	}
	predicted := p.Forward(input)
	pv, _ := models.TransitionProbsFromSlice(predicted)
	loss := p.Loss(pv, target)

	delta := make([]float64, models.NumOutcomes)
	for i := range delta {
		delta[i] = predicted[i] - target[i]
	}

	d := p.out.backward(delta, lr)
	d = p.h2.backward(p.h2.reluGate(d), lr)
	p.h1.backward(p.h1.reluGate(d), lr)

	return loss, nil
}

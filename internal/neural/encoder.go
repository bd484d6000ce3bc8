package neural

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/yourusername/courtside/internal/models"
)

// EncoderConfig fixes the VAE topology at construction time.
type EncoderConfig struct {
	InputDim  int
	LatentDim int
	Hidden1   int
	Hidden2   int
}

// DefaultEncoderConfig returns the standard topology for box-score features.
func DefaultEncoderConfig(inputDim, latentDim int) EncoderConfig {
	return EncoderConfig{
		InputDim:  inputDim,
		LatentDim: latentDim,
		Hidden1:   64,
		Hidden2:   32,
	}
}

// Encoder is the variational autoencoder that maps a game feature vector to a
// Gaussian latent distribution. Not safe for concurrent use; the pipeline
// serializes all numeric work.
type Encoder struct {
	cfg EncoderConfig
	rng *rand.Rand

	encH1, encH2, encOut *layer
	decH1, decH2, decOut *layer

	mu     []float64
	logVar []float64
	sigma  []float64
	eps    []float64
	z      []float64
	recon  []float64
}

// NewEncoder constructs an encoder with freshly initialized weights.
func NewEncoder(cfg EncoderConfig, rng *rand.Rand) *Encoder {
	if cfg.Hidden1 == 0 || cfg.Hidden2 == 0 {
		def := DefaultEncoderConfig(cfg.InputDim, cfg.LatentDim)
		if cfg.Hidden1 == 0 {
			cfg.Hidden1 = def.Hidden1
		}
		if cfg.Hidden2 == 0 {
			cfg.Hidden2 = def.Hidden2
		}
	}
	return &Encoder{
		cfg:    cfg,
		rng:    rng,
		encH1:  newLayer(cfg.InputDim, cfg.Hidden1, rng),
		encH2:  newLayer(cfg.Hidden1, cfg.Hidden2, rng),
		encOut: newLayer(cfg.Hidden2, 2*cfg.LatentDim, rng),
		decH1:  newLayer(cfg.LatentDim, cfg.Hidden2, rng),
		decH2:  newLayer(cfg.Hidden2, cfg.Hidden1, rng),
		decOut: newLayer(cfg.Hidden1, cfg.InputDim, rng),
		mu:     make([]float64, cfg.LatentDim),
		logVar: make([]float64, cfg.LatentDim),
		sigma:  make([]float64, cfg.LatentDim),
		eps:    make([]float64, cfg.LatentDim),
		z:      make([]float64, cfg.LatentDim),
		recon:  make([]float64, cfg.InputDim),
	}
}

// InputDim returns the configured feature dimension.
func (e *Encoder) InputDim() int { return e.cfg.InputDim }

// LatentDim returns the configured latent dimension.
func (e *Encoder) LatentDim() int { return e.cfg.LatentDim }

// Encode maps a feature vector to the mean and standard deviation of its
// latent Gaussian. Returns copies; internal buffers stay owned by the encoder.
func (e *Encoder) Encode(features models.FeatureVector) (mu, sigma []float64, err error) {
	if err := features.CheckDim(e.cfg.InputDim); err != nil {
		return nil, nil, err
	}
	e.forwardEncode(features)
	mu = make([]float64, e.cfg.LatentDim)
	sigma = make([]float64, e.cfg.LatentDim)
	copy(mu, e.mu)
	copy(sigma, e.sigma)
	return mu, sigma, nil
}

// forwardEncode runs the encoder half and fills mu, logVar and sigma buffers.
func (e *Encoder) forwardEncode(x []float64) {
	h1 := e.encH1.forwardReLU(x)
	h2 := e.encH2.forwardReLU(h1)
	out := e.encOut.forward(h2) // linear output, split into mu and logVar
	L := e.cfg.LatentDim
	for i := 0; i < L; i++ {
		e.mu[i] = out[i]
		e.logVar[i] = out[L+i]
		e.sigma[i] = math.Exp(0.5 * e.logVar[i])
	}
}

// Reparameterize draws z = mu + sigma⊙eps with eps re-sampled from a standard
// normal on every call. This is the sole source of stochasticity in the
// encoder and the path gradients take through the sampling step.
func (e *Encoder) Reparameterize(mu, sigma []float64) []float64 {
	z := make([]float64, len(mu))
	for i := range mu {
		z[i] = mu[i] + sigma[i]*e.rng.NormFloat64()
	}
	return z
}

// Decode reconstructs a feature vector from a latent sample. The sigmoid
// output keeps reconstructed components in [0,1].
func (e *Encoder) Decode(z []float64) []float64 {
	h2 := e.decH1.forwardReLU(z)
	h1 := e.decH2.forwardReLU(h2)
	out := e.decOut.forward(h1)
	recon := make([]float64, e.cfg.InputDim)
	for i, v := range out {
		recon[i] = sigmoid(v)
	}
	return recon
}

// KLDivergence is the closed-form Gaussian KL to a standard-normal prior.
// Always >= 0, equal to 0 only at mu=0, sigma=1.
func KLDivergence(mu, logVar []float64) float64 {
	kl := 0.0
	for i := range mu {
		kl += -0.5 * (1 + logVar[i] - mu[i]*mu[i] - math.Exp(logVar[i]))
	}
	return kl
}

// ReconstructionLoss is the summed squared error over the feature vector.
func ReconstructionLoss(x, recon []float64) float64 {
	loss := 0.0
	for i := range x {
		diff := recon[i] - x[i]
		loss += diff * diff
	}
	return loss
}

// VAELosses breaks the total loss into its components.
type VAELosses struct {
	Total          float64
	Reconstruction float64
	KL             float64
	Feedback       float64
}

// Evaluate runs a full forward pass and returns the loss components without
// touching any weights.
func (e *Encoder) Evaluate(x models.FeatureVector, alpha, feedback float64) (VAELosses, error) {
	if err := x.CheckDim(e.cfg.InputDim); err != nil {
		return VAELosses{}, err
	}
	e.forwardEncode(x)
	z := e.sampleZ()
	recon := e.decodeInto(z)
	return e.losses(x, recon, alpha, feedback), nil
}

// TrainStep performs one forward+backward pass with an in-place SGD update of
// both halves. The feedback term couples the predictor's error into the
// reconstruction gradient, scaled by alpha.
func (e *Encoder) TrainStep(x models.FeatureVector, alpha, feedback, lr float64) (VAELosses, error) {
	if err := x.CheckDim(e.cfg.InputDim); err != nil {
		return VAELosses{}, err
	}
	L := e.cfg.LatentDim

	e.forwardEncode(x)
	z := e.sampleZ()
	recon := e.decodeInto(z)
	losses := e.losses(x, recon, alpha, feedback)

	// Decoder output delta: squared-error gradient through the sigmoid,
	// amplified by the feedback coupling.
	couple := 1 + alpha*feedback
	deltaOut := make([]float64, e.cfg.InputDim)
	for i := range deltaOut {
		deltaOut[i] = 2 * (recon[i] - x[i]) * recon[i] * (1 - recon[i]) * couple
	}

	d := e.decOut.backward(deltaOut, lr)
	d = e.decH2.backward(e.decH2.reluGate(d), lr)
	dz := e.decH1.backward(e.decH1.reluGate(d), lr)

	// Encoder output deltas: reconstruction gradient flows through the
	// sampling step (dz/dmu = 1, dz/dlogVar = 0.5*sigma*eps); KL gradient is
	// closed form.
	deltaEnc := make([]float64, 2*L)
	for i := 0; i < L; i++ {
		deltaEnc[i] = dz[i] + e.mu[i]
		deltaEnc[L+i] = dz[i]*0.5*e.sigma[i]*e.eps[i] + 0.5*(math.Exp(e.logVar[i])-1)
	}

	d = e.encOut.backward(deltaEnc, lr)
	d = e.encH2.backward(e.encH2.reluGate(d), lr)
	e.encH1.backward(e.encH1.reluGate(d), lr)

	return losses, nil
}

// sampleZ draws eps into the cached buffer and fills z from the current
// mu/sigma buffers. eps is retained for the backward pass.
func (e *Encoder) sampleZ() []float64 {
	for i := range e.z {
		e.eps[i] = e.rng.NormFloat64()
		e.z[i] = e.mu[i] + e.sigma[i]*e.eps[i]
	}
	return e.z
}

// decodeInto runs the decoder half into the cached reconstruction buffer.
func (e *Encoder) decodeInto(z []float64) []float64 {
	h2 := e.decH1.forwardReLU(z)
	h1 := e.decH2.forwardReLU(h2)
	out := e.decOut.forward(h1)
	for i, v := range out {
		e.recon[i] = sigmoid(v)
	}
	return e.recon
}

func (e *Encoder) losses(x, recon []float64, alpha, feedback float64) VAELosses {
	rec := ReconstructionLoss(x, recon)
	kl := KLDivergence(e.mu, e.logVar)
	fb := alpha * feedback
	return VAELosses{
		Total:          rec + kl + fb,
		Reconstruction: rec,
		KL:             kl,
		Feedback:       fb,
	}
}

// String describes the topology, handy in logs.
func (e *Encoder) String() string {
	return fmt.Sprintf("vae(%d-%d-%d-2x%d)", e.cfg.InputDim, e.cfg.Hidden1, e.cfg.Hidden2, e.cfg.LatentDim)
}

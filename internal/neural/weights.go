package neural

import (
	"fmt"

	"github.com/yourusername/courtside/internal/models"
)

// LayerWeights is the serializable snapshot of one dense layer.
type LayerWeights struct {
	Weights [][]float64 `json:"weights"`
	Biases  []float64   `json:"biases"`
}

// EncoderWeights captures every dense layer of the VAE.
type EncoderWeights struct {
	EncH1  LayerWeights `json:"enc_h1"`
	EncH2  LayerWeights `json:"enc_h2"`
	EncOut LayerWeights `json:"enc_out"`
	DecH1  LayerWeights `json:"dec_h1"`
	DecH2  LayerWeights `json:"dec_h2"`
	DecOut LayerWeights `json:"dec_out"`
}

// PredictorWeights captures every dense layer of the transition network.
type PredictorWeights struct {
	H1  LayerWeights `json:"h1"`
	H2  LayerWeights `json:"h2"`
	Out LayerWeights `json:"out"`
}

// ModelWeights bundles both networks' parameters for persistence, so a
// restarted process resumes from the trained model instead of a fresh
// random initialization.
type ModelWeights struct {
	Encoder   EncoderWeights   `json:"encoder"`
	Predictor PredictorWeights `json:"predictor"`
}

// snapshot deep-copies the layer's parameters.
func (l *layer) snapshot() LayerWeights {
	w := LayerWeights{
		Weights: make([][]float64, l.outDim),
		Biases:  make([]float64, l.outDim),
	}
	for i, row := range l.weights {
		w.Weights[i] = append([]float64(nil), row...)
	}
	copy(w.Biases, l.biases)
	return w
}

// restore replaces the layer's parameters with a snapshot. The snapshot must
// match the layer's dimensions exactly.
func (l *layer) restore(w LayerWeights) error {
	if len(w.Weights) != l.outDim || len(w.Biases) != l.outDim {
		return fmt.Errorf("%w: snapshot has %d rows and %d biases, layer expects %d",
			models.ErrDimensionMismatch, len(w.Weights), len(w.Biases), l.outDim)
	}
	for i, row := range w.Weights {
		if len(row) != l.inDim {
			return fmt.Errorf("%w: snapshot row %d has %d columns, layer expects %d",
				models.ErrDimensionMismatch, i, len(row), l.inDim)
		}
		copy(l.weights[i], row)
	}
	copy(l.biases, w.Biases)
	return nil
}

// Weights exports the encoder's current parameters.
func (e *Encoder) Weights() EncoderWeights {
	return EncoderWeights{
		EncH1:  e.encH1.snapshot(),
		EncH2:  e.encH2.snapshot(),
		EncOut: e.encOut.snapshot(),
		DecH1:  e.decH1.snapshot(),
		DecH2:  e.decH2.snapshot(),
		DecOut: e.decOut.snapshot(),
	}
}

// SetWeights replaces the encoder's parameters with a persisted snapshot.
// The snapshot topology must match the configured one.
func (e *Encoder) SetWeights(w EncoderWeights) error {
	layers := []struct {
		name string
		l    *layer
		w    LayerWeights
	}{
		{"enc_h1", e.encH1, w.EncH1},
		{"enc_h2", e.encH2, w.EncH2},
		{"enc_out", e.encOut, w.EncOut},
		{"dec_h1", e.decH1, w.DecH1},
		{"dec_h2", e.decH2, w.DecH2},
		{"dec_out", e.decOut, w.DecOut},
	}
	for _, entry := range layers {
		if err := entry.l.restore(entry.w); err != nil {
			return fmt.Errorf("encoder layer %s: %w", entry.name, err)
		}
	}
	return nil
}

// Weights exports the predictor's current parameters.
func (p *Predictor) Weights() PredictorWeights {
	return PredictorWeights{
		H1:  p.h1.snapshot(),
		H2:  p.h2.snapshot(),
		Out: p.out.snapshot(),
	}
}

// SetWeights replaces the predictor's parameters with a persisted snapshot.
// The snapshot topology must match the configured one.
func (p *Predictor) SetWeights(w PredictorWeights) error {
	layers := []struct {
		name string
		l    *layer
		w    LayerWeights
	}{
		{"h1", p.h1, w.H1},
		{"h2", p.h2, w.H2},
		{"out", p.out, w.Out},
	}
	for _, entry := range layers {
		if err := entry.l.restore(entry.w); err != nil {
			return fmt.Errorf("predictor layer %s: %w", entry.name, err)
		}
	}
	return nil
}

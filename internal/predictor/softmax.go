package predictor

import (
	"fmt"
	"math"
)

// Softmax is a multinomial logistic model: one weight row and bias per
// outcome.
type Softmax struct {
	Weights [][]float64
	Bias    []float64
}

func NewSoftmax(weights [][]float64, bias []float64) (Softmax, error) {
	if len(weights) == 0 {
		return Softmax{}, fmt.Errorf("softmax: no outcomes")
	}
	if len(bias) != len(weights) {
		return Softmax{}, fmt.Errorf("softmax: %d bias terms for %d outcomes", len(bias), len(weights))
	}
	width := len(weights[0])
	for i, row := range weights {
		if len(row) != width {
			return Softmax{}, fmt.Errorf("softmax: row %d has %d weights, want %d", i, len(row), width)
		}
	}
	return Softmax{Weights: weights, Bias: bias}, nil
}

func (s Softmax) Proba(fv []float64) ([]float64, error) {
	if len(fv) != len(s.Weights[0]) {
		return nil, fmt.Errorf("%w: got %d want %d", ErrFeatureMismatch, len(fv), len(s.Weights[0]))
	}
	logits := make([]float64, len(s.Weights))
	maxLogit := math.Inf(-1)
	for k, row := range s.Weights {
		z := s.Bias[k]
		for i, w := range row {
			z += w * fv[i]
		}
		logits[k] = z
		maxLogit = math.Max(maxLogit, z)
	}
	// shift by the max logit so exp never overflows
	total := 0.0
	for k, z := range logits {
		logits[k] = math.Exp(z - maxLogit)
		total += logits[k]
	}
	for k := range logits {
		logits[k] /= total
	}
	return logits, nil
}

package chance

import (
	"math"
)

func validateProb(p float64) error {
	if math.IsNaN(p) || math.IsInf(p, 0) {
		return ErrInvalidProb
	}
	if p < 0 || p > 1 {
		return ErrInvalidProb
	}
	return nil
}

func validateDistribution(probs []float64) error {
	if len(probs) == 0 {
		return ErrInvalidDistribution
	}
	total := 0.0
	for _, p := range probs {
		if err := validateProb(p); err != nil {
			return ErrInvalidDistribution
		}
		total += p
	}
	if total > 1+sumTolerance {
		return ErrInvalidDistribution
	}
	return nil
}

package chance

import "errors"

var (
	ErrInvalidProb         = errors.New("invalid probability p; must be 0..1")
	ErrInvalidDistribution = errors.New("invalid distribution; probabilities must sum to 1")
)

// sumTolerance absorbs float error in model output that should sum to 1.
const sumTolerance = 1e-6

// Draw under p, return if it is hit
// p <= 0 => no hit. p >= 1 => must hit. otherwise, rng.Float64() < p
func Draw(p float64, rng RandomSource) (bool, error) {
	if err := validateProb(p); err != nil {
		return false, err
	}
	if p <= 0 {
		return false, nil
	}
	if p >= 1 {
		return true, nil
	}
	if rng == nil {
		rng = DefaultRNG()
	}
	return rng.Float64() < p, nil
}

// Pick returns the smallest index i such that roll < sum(probs[0..i]).
// A roll that falls in the rounding gap above a distribution summing to
// 1 +/- sumTolerance resolves to the last index with non-zero mass.
func Pick(probs []float64, roll float64) (int, error) {
	if err := validateDistribution(probs); err != nil {
		return 0, err
	}
	total := 0.0
	last := -1
	for i, p := range probs {
		total += p
		if p > 0 {
			last = i
		}
		if roll < total {
			return i, nil
		}
	}
	if total >= 1-sumTolerance && last >= 0 {
		return last, nil
	}
	return 0, ErrInvalidDistribution
}

// Categorical draws one index from probs using a single roll of rng.
func Categorical(probs []float64, rng RandomSource) (int, error) {
	if rng == nil {
		rng = DefaultRNG()
	}
	return Pick(probs, rng.Float64())
}

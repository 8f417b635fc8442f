// Package predictor supplies categorical outcome distributions for the
// seven decisions a game makes. Implementations are read-only after
// construction and safe for concurrent use.
package predictor

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnknownModel    = errors.New("unknown model")
	ErrFeatureMismatch = errors.New("feature vector length mismatch")
	ErrOutcomeCount    = errors.New("wrong number of outcomes for model")
)

// Model addresses one of the seven predictors.
type Model int

const (
	Pitch Model = iota
	HitType
	OutType
	RunnerAdvanceOnOut
	RunnerAdvanceOnHit
	StealAttempt
	StealSuccess
)

// Models lists every model in index order.
var Models = []Model{Pitch, HitType, OutType, RunnerAdvanceOnOut, RunnerAdvanceOnHit, StealAttempt, StealSuccess}

var modelNames = [...]string{
	"pitch",
	"hit_type",
	"out_type",
	"runner_advance_on_out",
	"runner_advance_on_hit",
	"steal_attempt",
	"steal_success",
}

// outcome counts per model: pitch has six results, hit type four, the rest
// are binary where index 1 means yes.
var outcomeCounts = [...]int{6, 4, 2, 2, 2, 2, 2}

func (m Model) String() string {
	if m < 0 || int(m) >= len(modelNames) {
		return fmt.Sprintf("model(%d)", int(m))
	}
	return modelNames[m]
}

// Outcomes is the length of the distribution m must return.
func (m Model) Outcomes() int {
	if m < 0 || int(m) >= len(outcomeCounts) {
		return 0
	}
	return outcomeCounts[m]
}

func ParseModel(s string) (Model, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	for i, n := range modelNames {
		if n == key {
			return Model(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownModel, s)
}

// Predictor maps a feature vector to a probability per outcome index.
type Predictor interface {
	PredictProba(m Model, fv []float64) ([]float64, error)
}

// Classifier is a single model.
type Classifier interface {
	Proba(fv []float64) ([]float64, error)
}

// Set routes each Model to its own Classifier.
type Set struct {
	models map[Model]Classifier
}

// NewSet checks that every model is present.
func NewSet(models map[Model]Classifier) (*Set, error) {
	for _, m := range Models {
		if models[m] == nil {
			return nil, fmt.Errorf("%w: %s not configured", ErrUnknownModel, m)
		}
	}
	cp := make(map[Model]Classifier, len(models))
	for k, v := range models {
		cp[k] = v
	}
	return &Set{models: cp}, nil
}

func (s *Set) PredictProba(m Model, fv []float64) ([]float64, error) {
	c, ok := s.models[m]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownModel, m)
	}
	probs, err := c.Proba(fv)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", m, err)
	}
	if len(probs) != m.Outcomes() {
		return nil, fmt.Errorf("%s: %w: got %d", m, ErrOutcomeCount, len(probs))
	}
	return probs, nil
}

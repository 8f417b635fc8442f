package predictor

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// File is the YAML layout of a predictor parameter file. Each model entry
// carries either probs (a fixed table) or weights and bias (softmax).
type File struct {
	Version string                `yaml:"version"`
	Models  map[string]ModelEntry `yaml:"models"`
}

type ModelEntry struct {
	Probs   []float64   `yaml:"probs,omitempty"`
	Weights [][]float64 `yaml:"weights,omitempty"`
	Bias    []float64   `yaml:"bias,omitempty"`
}

// LoadFile reads path and builds a Set.
func LoadFile(path string) (*Set, string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("read models: %w", err)
	}
	return Parse(b)
}

// Parse builds a Set from YAML bytes and returns the file version.
func Parse(b []byte) (*Set, string, error) {
	var f File
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, "", fmt.Errorf("parse models: %w", err)
	}
	models := make(map[Model]Classifier, len(f.Models))
	for name, entry := range f.Models {
		m, err := ParseModel(name)
		if err != nil {
			return nil, "", err
		}
		c, err := entry.build(m)
		if err != nil {
			return nil, "", fmt.Errorf("model %s: %w", m, err)
		}
		models[m] = c
	}
	set, err := NewSet(models)
	if err != nil {
		return nil, "", err
	}
	return set, f.Version, nil
}

func (e ModelEntry) build(m Model) (Classifier, error) {
	switch {
	case len(e.Probs) > 0 && len(e.Weights) > 0:
		return nil, fmt.Errorf("both probs and weights set")
	case len(e.Probs) > 0:
		if len(e.Probs) != m.Outcomes() {
			return nil, fmt.Errorf("%w: got %d want %d", ErrOutcomeCount, len(e.Probs), m.Outcomes())
		}
		return NewTable(e.Probs...)
	case len(e.Weights) > 0:
		if len(e.Weights) != m.Outcomes() {
			return nil, fmt.Errorf("%w: got %d want %d", ErrOutcomeCount, len(e.Weights), m.Outcomes())
		}
		return NewSoftmax(e.Weights, e.Bias)
	default:
		return nil, fmt.Errorf("no parameters")
	}
}

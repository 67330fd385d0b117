// Package ml holds the optional pest-pressure model fused with rule scores.
package ml

import (
	"errors"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/i474232898/pest-advisory/internal/risk"
)

var (
	errNoWeights    = errors.New("model defines no weights")
	errUnknownInput = errors.New("model weight names an unknown feature")
	errNonFinite    = errors.New("model produced a non-finite score")
)

// Logistic is a logistic-regression model over risk.Features.
type Logistic struct {
	weights []float64 // risk.FeatureNames order
	bias    float64
}

type modelFile struct {
	Bias    float64            `yaml:"bias"`
	Weights map[string]float64 `yaml:"weights"`
}

// LoadLogistic reads coefficients from a YAML file of the form
//
//	bias: -2.1
//	weights:
//	  nearby_reports: 0.6
//	  symptom_count: 0.9
//
// Features without a weight contribute nothing.
func LoadLogistic(path string) (*Logistic, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model %s: %w", path, err)
	}
	var f modelFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("decode model %s: %w", path, err)
	}
	return NewLogistic(f.Bias, f.Weights)
}

// NewLogistic builds a model from named coefficients.
func NewLogistic(bias float64, weights map[string]float64) (*Logistic, error) {
	if len(weights) == 0 {
		return nil, errNoWeights
	}
	index := make(map[string]int, len(risk.FeatureNames))
	for i, name := range risk.FeatureNames {
		index[name] = i
	}

	m := &Logistic{weights: make([]float64, len(risk.FeatureNames)), bias: bias}
	for name, w := range weights {
		i, ok := index[name]
		if !ok {
			return nil, fmt.Errorf("%w: %s", errUnknownInput, name)
		}
		m.weights[i] = w
	}
	return m, nil
}

// Predict returns sigmoid(w·x + b).
func (m *Logistic) Predict(f risk.Features) (float64, error) {
	z := m.bias
	for i, x := range f.Vector() {
		z += m.weights[i] * x
	}
	p := 1 / (1 + math.Exp(-z))
	if math.IsNaN(p) || math.IsInf(p, 0) {
		return 0, errNonFinite
	}
	return p, nil
}

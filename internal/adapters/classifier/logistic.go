package classifier

import (
	"context"
	"encoding/json"
	"fmt"
	"math"

	"github.com/okian/propensity/internal/domain/features"
)

// logisticExport is the JSON layout written by the training notebook.
type logisticExport struct {
	Format       string    `json:"format"`
	Version      string    `json:"version"`
	Features     []string  `json:"features"`
	Coefficients []float64 `json:"coefficients"`
	Intercept    float64   `json:"intercept"`
}

// Logistic is a logistic regression: p = sigmoid(intercept + w·x).
type Logistic struct {
	version   string
	weights   []float64
	intercept float64
}

// NewLogistic builds a model from raw parameters.
func NewLogistic(version string, weights []float64, intercept float64) *Logistic {
	return &Logistic{version: version, weights: append([]float64(nil), weights...), intercept: intercept}
}

func loadLogistic(data []byte, schema features.ModelSchema) (*Logistic, error) {
	var exp logisticExport
	if err := json.Unmarshal(data, &exp); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidModel, err)
	}
	if exp.Format != FormatLogistic {
		return nil, fmt.Errorf("%w: format %q", ErrUnsupportedFormat, exp.Format)
	}
	if len(exp.Features) != len(exp.Coefficients) {
		return nil, fmt.Errorf("%w: %d features but %d coefficients", ErrInvalidModel, len(exp.Features), len(exp.Coefficients))
	}
	for i, w := range exp.Coefficients {
		if math.IsNaN(w) || math.IsInf(w, 0) {
			return nil, fmt.Errorf("%w: coefficient %d is not finite", ErrInvalidModel, i)
		}
	}
	if err := sameColumns(exp.Features, schema.Columns); err != nil {
		return nil, err
	}
	version := exp.Version
	if version == "" {
		version = schema.Version
	}
	return NewLogistic(version, exp.Coefficients, exp.Intercept), nil
}

// sameColumns requires the model columns to equal the schema, order included.
func sameColumns(got []string, want features.Schema) error {
	if len(got) != len(want) {
		return fmt.Errorf("%w: model has %d features, schema has %d", ErrSchemaDrift, len(got), len(want))
	}
	for i := range got {
		if got[i] != want[i] {
			return fmt.Errorf("%w: position %d is %q, schema expects %q", ErrSchemaDrift, i, got[i], want[i])
		}
	}
	return nil
}

// PredictProba implements Classifier.
func (m *Logistic) PredictProba(ctx context.Context, v features.Vector) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if err := checkWidth(v, len(m.weights)); err != nil {
		return 0, err
	}
	z := m.intercept
	for i, w := range m.weights {
		z += w * v[i]
	}
	return sigmoid(z), nil
}

// Info implements Classifier.
func (m *Logistic) Info() Info {
	return Info{Format: FormatLogistic, Version: m.version, Features: len(m.weights)}
}

// Close implements Classifier.
func (m *Logistic) Close() error { return nil }

func sigmoid(z float64) float64 {
	if z >= 0 {
		return 1 / (1 + math.Exp(-z))
	}
	e := math.Exp(z)
	return e / (1 + e)
}

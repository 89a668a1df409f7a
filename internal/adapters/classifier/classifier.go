// Package classifier loads trained propensity models and runs inference.
//
// Two artifact formats are supported: a JSON export of a logistic regression
// and an ONNX graph executed through onnxruntime.
package classifier

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/okian/propensity/internal/domain/features"
)

// Artifact formats.
const (
	FormatLogistic = "logistic_regression"
	FormatONNX     = "onnx"
)

// Sentinel kinds for classifier errors.
var (
	ErrSchemaDrift       = errors.New("model features differ from the bound schema")
	ErrFeatureWidth      = errors.New("feature vector width does not match the model")
	ErrUnsupportedFormat = errors.New("unsupported model format")
	ErrInvalidModel      = errors.New("invalid model artifact")
)

// Info describes a loaded model.
type Info struct {
	Format   string `json:"format"`
	Version  string `json:"version"`
	Features int    `json:"features"`
}

// Classifier is a loaded binary propensity model.
type Classifier interface {
	// PredictProba returns the probability of subscription for v.
	PredictProba(ctx context.Context, v features.Vector) (float64, error)
	// Info describes the model.
	Info() Info
	// Close releases native resources, if any.
	Close() error
}

// Load decodes a model artifact. The format comes from the key extension and
// falls back to sniffing the content. The model must have been trained on
// schema's columns.
func Load(ctx context.Context, key string, data []byte, schema features.ModelSchema, opts ...Option) (Classifier, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: %s is empty", ErrInvalidModel, key)
	}

	o := newOptions(opts)
	switch detectFormat(key, data) {
	case FormatLogistic:
		return loadLogistic(data, schema)
	case FormatONNX:
		return loadONNX(data, schema, o)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, key)
	}
}

func detectFormat(key string, data []byte) string {
	switch strings.ToLower(path.Ext(key)) {
	case ".json":
		return FormatLogistic
	case ".onnx":
		return FormatONNX
	case ".joblib", ".pkl", ".pickle":
		return ""
	}
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '{' {
		return FormatLogistic
	}
	// ONNX graphs are protobuf messages starting with the ir_version field.
	if data[0] == 0x08 {
		return FormatONNX
	}
	return ""
}

func checkWidth(v features.Vector, want int) error {
	if len(v) != want {
		return fmt.Errorf("%w: got %d, want %d", ErrFeatureWidth, len(v), want)
	}
	return nil
}

// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Flat snake_case keys shared by the YAML file and PROPENSITY_* env vars.
// - Nested column mapping uses a double underscore in env vars
//   (PROPENSITY_COLUMNS__JOB -> columns.job).
// - External errors are wrapped with this package's sentinel kinds.
package config

import (
	"github.com/okian/propensity/internal/domain/campaign"
)

// Storage backends.
const (
	BackendS3   = "s3"
	BackendFile = "file"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// StorageBackend is "s3" or "file". Empty selects s3 when a bucket is
	// configured and file otherwise.
	StorageBackend string `koanf:"storage_backend"`

	// StorageDir is the root directory of the file backend.
	StorageDir string `koanf:"storage_dir"`

	// Bucket, Region and Endpoint address the S3 backend. Endpoint is only
	// set for S3-compatible stores and switches to path-style addressing.
	Bucket   string `koanf:"bucket"`
	Region   string `koanf:"region"`
	Endpoint string `koanf:"endpoint"`

	// AccessKey and SecretKey are optional static credentials. When empty the
	// default AWS credential chain is used.
	AccessKey string `koanf:"access_key"`
	SecretKey string `koanf:"secret_key"`

	// DatasetKey is the object key of the cleaned campaign CSV.
	DatasetKey string `koanf:"dataset_key"`

	// ModelKey is the object key of the trained model. Empty uses the key
	// bound to the model schema.
	ModelKey string `koanf:"model_key"`

	// CSVDelimiter is the single-character field separator of the dataset.
	CSVDelimiter string `koanf:"csv_delimiter"`

	// Columns maps contact fields to dataset headers.
	Columns campaign.Columns `koanf:"columns"`

	// ONNXLibraryPath points at the onnxruntime shared library; only needed
	// for .onnx models.
	ONNXLibraryPath string `koanf:"onnx_library_path"`

	// Warmup loads the dataset and model at startup instead of on first use.
	Warmup bool `koanf:"warmup"`

	// MaxObjectBytes caps the size of any object read from storage.
	MaxObjectBytes int64 `koanf:"max_object_bytes"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:       "info",
		LogFormat:      "text",
		Addr:           ":8501",
		StorageDir:     "data",
		Region:         "eu-west-3",
		DatasetKey:     "bank_marketing_cleaned_v1.csv",
		CSVDelimiter:   ";",
		Columns:        campaign.DefaultColumns(),
		Warmup:         false,
		MaxObjectBytes: 64 << 20,
	}
}

// Backend returns the effective storage backend.
func (c *Config) Backend() string {
	if c.StorageBackend != "" {
		return c.StorageBackend
	}
	if c.Bucket != "" {
		return BackendS3
	}
	return BackendFile
}

// Delimiter returns the configured delimiter as a rune.
func (c *Config) Delimiter() rune {
	for _, r := range c.CSVDelimiter {
		return r
	}
	return ';'
}

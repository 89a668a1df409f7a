package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Environment variables read outside the PROPENSITY_ prefix.
const (
	envConfigFile = "PROPENSITY_CONFIG"
	envDotenvFile = "PROPENSITY_ENV_FILE"
	envPrefix     = "PROPENSITY_"

	// Names used by earlier deployments of the dashboard.
	legacyBucket    = "BUCKET_NAME"
	legacyAccessKey = "ACCESS_KEY"
	legacySecretKey = "SECRET_KEY"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if PROPENSITY_CONFIG is set
//  3. legacy env (BUCKET_NAME, ACCESS_KEY, SECRET_KEY)
//  4. env (prefix PROPENSITY_)
//
// A .env file (or PROPENSITY_ENV_FILE) is loaded first; it never overrides
// variables already set in the process environment.
func Load(_ context.Context) (*Config, error) {
	if err := loadDotenv(); err != nil {
		return nil, err
	}

	base := New()
	k := koanf.New(".")

	if path := os.Getenv(envConfigFile); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
		}
	}

	legacy := map[string]string{
		legacyBucket:    "bucket",
		legacyAccessKey: "access_key",
		legacySecretKey: "secret_key",
	}
	for name, key := range legacy {
		if v, ok := os.LookupEnv(name); ok && v != "" {
			if err := k.Set(key, v); err != nil {
				return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, name, err)
			}
		}
	}

	// Environment variables: PROPENSITY_ADDR, PROPENSITY_DATASET_KEY, ...
	// Flat keys keep their underscores; a double underscore nests
	// (PROPENSITY_COLUMNS__JOB -> columns.job).
	envProvider := env.Provider(envPrefix, ".", func(s string) string {
		s = strings.ToLower(strings.TrimPrefix(s, envPrefix))
		return strings.ReplaceAll(s, "__", ".")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func loadDotenv() error {
	path := os.Getenv(envDotenvFile)
	if path == "" {
		path = ".env"
	}
	err := godotenv.Load(path)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
}

// Validate checks the combination of settings.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	switch c.LogFormat {
	case "", "text", "json":
	default:
		return fmt.Errorf("%w: log_format must be text or json, got %q", ErrInvalidConfig, c.LogFormat)
	}
	switch c.Backend() {
	case BackendS3:
		if c.Bucket == "" {
			return fmt.Errorf("%w: bucket is required for the s3 backend", ErrInvalidConfig)
		}
		if (c.AccessKey == "") != (c.SecretKey == "") {
			return fmt.Errorf("%w: access_key and secret_key must be set together", ErrInvalidConfig)
		}
	case BackendFile:
		if c.StorageDir == "" {
			return fmt.Errorf("%w: storage_dir is required for the file backend", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown storage_backend %q", ErrInvalidConfig, c.StorageBackend)
	}
	if c.DatasetKey == "" {
		return fmt.Errorf("%w: dataset_key must not be empty", ErrInvalidConfig)
	}
	if utf8.RuneCountInString(c.CSVDelimiter) != 1 {
		return fmt.Errorf("%w: csv_delimiter must be a single character, got %q", ErrInvalidConfig, c.CSVDelimiter)
	}
	if c.MaxObjectBytes <= 0 {
		return fmt.Errorf("%w: max_object_bytes must be positive", ErrInvalidConfig)
	}
	return nil
}

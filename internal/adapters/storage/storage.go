// Package storage reads the dataset and model artifacts from object storage.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/okian/propensity/pkg/metrics"
)

// Default storage configuration constants.
const (
	defaultMaxBytes = 64 << 20
	defaultRegion   = "eu-west-3"
)

// Sentinel kinds for storage errors.
var (
	ErrNotFound   = errors.New("object not found")
	ErrTooLarge   = errors.New("object exceeds size limit")
	ErrInvalidKey = errors.New("invalid object key")
)

// Fetcher reads whole objects by key.
type Fetcher interface {
	// Fetch returns the object body. Missing objects yield ErrNotFound.
	Fetch(ctx context.Context, key string) ([]byte, error)
}

// readAll reads r up to max bytes, failing with ErrTooLarge beyond that.
func readAll(r io.Reader, key string, max int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, max+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	if int64(len(data)) > max {
		return nil, fmt.Errorf("%w: %s is larger than %d bytes", ErrTooLarge, key, max)
	}
	return data, nil
}

// observe records one fetch in metrics.
func observe(backend string, start time.Time, data []byte, err error) {
	outcome := metrics.OutcomeOK
	switch {
	case errors.Is(err, ErrNotFound):
		outcome = metrics.OutcomeNotFound
	case err != nil:
		outcome = metrics.OutcomeError
	}
	if err != nil {
		metrics.RecordErrorByComponent("storage", outcome)
	}
	metrics.RecordObjectFetch(backend, outcome, float64(time.Since(start).Microseconds())/1000, len(data))
}

// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/okian/propensity/internal/adapters/classifier"
	"github.com/okian/propensity/internal/adapters/storage"
	"github.com/okian/propensity/internal/domain/campaign"
	"github.com/okian/propensity/internal/domain/features"
	"github.com/okian/propensity/internal/domain/report"
	"github.com/okian/propensity/internal/domain/scoring"
	"github.com/okian/propensity/pkg/logger"
	"github.com/okian/propensity/pkg/metrics"
)

// ErrUnavailable marks failures to obtain the dataset or the model. The
// underlying cause stays in the chain.
var ErrUnavailable = errors.New("resource unavailable")

// Prediction is one scored prospect.
type Prediction struct {
	ID           string `json:"prediction_id"`
	ModelVersion string `json:"model_version"`
	scoring.Result
}

// datasetState is the parsed campaign history and its report.
type datasetState struct {
	dataset  *campaign.Dataset
	report   report.Report
	loadedAt time.Time
}

// modelState is the loaded classifier and the scorer bound to it.
type modelState struct {
	classifier classifier.Classifier
	scorer     *scoring.ModelScorer
	loadedAt   time.Time
}

// Service implements the API dependencies for the dashboard and simulator.
type Service struct {
	mu sync.RWMutex

	// Core components
	fetcher storage.Fetcher
	schema  features.ModelSchema
	dataset lazy[*datasetState]
	model   lazy[*modelState]

	// Configuration
	datasetKey     string
	modelKey       string
	columns        campaign.Columns
	delimiter      rune
	warmup         bool
	classifierOpts []classifier.Option
	scoringOpts    []scoring.Option

	// State
	started     bool
	predictions atomic.Int64
	rejected    atomic.Int64

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithFetcher sets the object storage the dataset and model are read from.
func WithFetcher(f storage.Fetcher) Option {
	return func(s *Service) {
		if f != nil {
			s.fetcher = f
		}
	}
}

// WithSchema binds the model schema used for alignment.
func WithSchema(m features.ModelSchema) Option {
	return func(s *Service) {
		s.schema = m
	}
}

// WithDatasetKey sets the object key of the campaign CSV.
func WithDatasetKey(key string) Option {
	return func(s *Service) {
		if key != "" {
			s.datasetKey = key
		}
	}
}

// WithModelKey overrides the model artifact key bound to the schema.
func WithModelKey(key string) Option {
	return func(s *Service) {
		if key != "" {
			s.modelKey = key
		}
	}
}

// WithColumns sets the dataset header mapping.
func WithColumns(c campaign.Columns) Option {
	return func(s *Service) {
		s.columns = c
	}
}

// WithDelimiter sets the dataset field separator.
func WithDelimiter(d rune) Option {
	return func(s *Service) {
		if d != 0 {
			s.delimiter = d
		}
	}
}

// WithWarmup loads the dataset and model during Start.
func WithWarmup(enabled bool) Option {
	return func(s *Service) {
		s.warmup = enabled
	}
}

// WithClassifierOptions passes options to model loading.
func WithClassifierOptions(opts ...classifier.Option) Option {
	return func(s *Service) {
		s.classifierOpts = append(s.classifierOpts, opts...)
	}
}

// WithScoringOptions passes options to the scorer.
func WithScoringOptions(opts ...scoring.Option) Option {
	return func(s *Service) {
		s.scoringOpts = append(s.scoringOpts, opts...)
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		schema:     features.BankMarketingV1,
		datasetKey: "bank_marketing_cleaned_v1.csv",
		columns:    campaign.DefaultColumns(),
		delimiter:  ';',
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}
	if s.modelKey == "" {
		s.modelKey = s.schema.ArtifactKey
	}
	return s
}

// Start validates the configuration and optionally warms the caches. Warm-up
// failures are logged; the next request retries the load.
func (s *Service) Start(ctx context.Context) error {
	started, err := s.prepare(ctx)
	if err != nil || started {
		return err
	}

	// GetStats must not wait on warm-up, so s.mu is not held here.
	if s.warmup {
		if _, err := s.loadedDataset(ctx); err != nil {
			s.logger.Warn(ctx, "dataset warm-up failed", logger.Error(err))
		}
		if _, err := s.loadedModel(ctx); err != nil {
			s.logger.Warn(ctx, "model warm-up failed", logger.Error(err))
		}
	}

	s.mu.Lock()
	s.started = true
	s.mu.Unlock()
	s.logger.Info(ctx, "propensity service started", logger.Bool("warmup", s.warmup))
	return nil
}

// prepare validates the configuration and reports whether the service is
// already started.
func (s *Service) prepare(ctx context.Context) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.started {
		return true, nil
	}
	if err := s.schema.Validate(); err != nil {
		return false, err
	}
	if s.fetcher == nil {
		return false, fmt.Errorf("%w: no object storage configured", ErrUnavailable)
	}

	s.logger.Info(ctx, "starting propensity service...",
		logger.String("schema", s.schema.Version),
		logger.String("dataset", s.datasetKey),
		logger.String("model", s.modelKey),
	)
	return false, nil
}

// Stop releases the model.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.logger.Info(context.Background(), "stopping propensity service...")
	if m, ok := s.model.reset(); ok {
		if err := m.classifier.Close(); err != nil {
			s.logger.Warn(context.Background(), "closing model failed", logger.Error(err))
		}
	}
	s.dataset.reset()

	s.started = false
	s.logger.Info(context.Background(), "propensity service stopped")
}

func (s *Service) loadedDataset(ctx context.Context) (*datasetState, error) {
	return s.dataset.get(ctx, func(ctx context.Context) (*datasetState, error) {
		if s.fetcher == nil {
			return nil, fmt.Errorf("%w: no object storage configured", ErrUnavailable)
		}
		start := time.Now()
		raw, err := s.fetcher.Fetch(ctx, s.datasetKey)
		if err != nil {
			return nil, fmt.Errorf("%w: dataset: %w", ErrUnavailable, err)
		}
		ds, err := campaign.Parse(bytes.NewReader(raw), s.columns, campaign.WithDelimiter(s.delimiter))
		if err != nil {
			metrics.RecordErrorByComponent("dataset", "parse")
			return nil, fmt.Errorf("%w: dataset: %w", ErrUnavailable, err)
		}
		st := &datasetState{dataset: ds, report: report.Build(ds.Contacts), loadedAt: time.Now()}

		metrics.UpdateDatasetSize(len(ds.Rows), len(ds.Contacts), len(ds.Warnings))
		metrics.RecordDatasetLoadDuration(float64(time.Since(start).Microseconds()) / 1000)
		s.logger.Info(ctx, "dataset loaded",
			logger.String("key", s.datasetKey),
			logger.Int("rows", len(ds.Rows)),
			logger.Int("contacts", len(ds.Contacts)),
			logger.Int("skipped", len(ds.Warnings)),
		)
		for _, w := range ds.Warnings {
			s.logger.Debug(ctx, "dataset row skipped", logger.String("reason", w))
		}
		return st, nil
	})
}

func (s *Service) loadedModel(ctx context.Context) (*modelState, error) {
	return s.model.get(ctx, func(ctx context.Context) (*modelState, error) {
		if s.fetcher == nil {
			return nil, fmt.Errorf("%w: no object storage configured", ErrUnavailable)
		}
		start := time.Now()
		raw, err := s.fetcher.Fetch(ctx, s.modelKey)
		if err != nil {
			return nil, fmt.Errorf("%w: model: %w", ErrUnavailable, err)
		}
		clf, err := classifier.Load(ctx, s.modelKey, raw, s.schema, s.classifierOpts...)
		if err != nil {
			metrics.RecordErrorByComponent("model", "load")
			return nil, fmt.Errorf("%w: model: %w", ErrUnavailable, err)
		}
		info := clf.Info()

		metrics.UpdateModelLoaded(info.Version, info.Format)
		metrics.RecordModelLoadDuration(float64(time.Since(start).Microseconds()) / 1000)
		s.logger.Info(ctx, "model loaded",
			logger.String("key", s.modelKey),
			logger.String("format", info.Format),
			logger.String("version", info.Version),
			logger.Int("features", info.Features),
		)
		return &modelState{
			classifier: clf,
			scorer:     scoring.NewModelScorer(s.schema, clf, s.scoringOpts...),
			loadedAt:   time.Now(),
		}, nil
	})
}

// Report returns the conversion report of the campaign history.
func (s *Service) Report(ctx context.Context) (report.Report, error) {
	st, err := s.loadedDataset(ctx)
	if err != nil {
		return report.Report{}, err
	}
	return st.report, nil
}

// Preview returns the first n raw rows of the dataset.
func (s *Service) Preview(ctx context.Context, n int) (campaign.Preview, error) {
	st, err := s.loadedDataset(ctx)
	if err != nil {
		return campaign.Preview{}, err
	}
	return st.dataset.Head(n), nil
}

// Predict scores one prospect given as simulator form values. Attributes
// the form never exposes are filled before alignment.
func (s *Service) Predict(ctx context.Context, values map[string]any) (Prediction, error) {
	m, err := s.loadedModel(ctx)
	if err != nil {
		return Prediction{}, err
	}

	start := time.Now()
	rec := features.NewRecord(s.schema.ApplyFormDefaults(values))
	res, err := m.scorer.Score(ctx, scoring.Input{Record: rec})
	if err != nil {
		if kind := alignmentKind(err); kind != "" {
			s.rejected.Add(1)
			metrics.RecordAlignmentError(kind)
		}
		return Prediction{}, err
	}
	metrics.RecordPredictionLatency(float64(time.Since(start).Microseconds()) / 1000)
	metrics.RecordPrediction(string(res.Tier), res.Probability)
	s.predictions.Add(1)

	p := Prediction{
		ID:           uuid.NewString(),
		ModelVersion: m.classifier.Info().Version,
		Result:       res,
	}
	s.logger.Debug(ctx, "prediction served",
		logger.String("prediction_id", p.ID),
		logger.Float64("score", res.Score),
		logger.String("tier", string(res.Tier)),
	)
	return p, nil
}

func alignmentKind(err error) string {
	switch {
	case errors.Is(err, features.ErrSchemaMismatch):
		return "schema_mismatch"
	case errors.Is(err, features.ErrUnknownCategoricalAttribute):
		return "unknown_categorical_attribute"
	default:
		return ""
	}
}

// Schema returns the bound model schema.
func (s *Service) Schema() features.ModelSchema {
	return s.schema
}

// FormOptions returns the simulator form description.
func (s *Service) FormOptions() features.Form {
	return s.schema.Form
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":         s.started,
		"schemaVersion":   s.schema.Version,
		"datasetKey":      s.datasetKey,
		"modelKey":        s.modelKey,
		"predictions":     s.predictions.Load(),
		"rejectedRecords": s.rejected.Load(),
		"datasetLoaded":   false,
		"modelLoaded":     false,
	}

	if st, ok := s.dataset.peek(); ok {
		stats["datasetLoaded"] = true
		stats["datasetRows"] = len(st.dataset.Rows)
		stats["datasetContacts"] = len(st.dataset.Contacts)
		stats["datasetSkippedRows"] = len(st.dataset.Warnings)
		stats["datasetLoadedAt"] = st.loadedAt.UTC().Format(time.RFC3339)
	}
	if m, ok := s.model.peek(); ok {
		info := m.classifier.Info()
		stats["modelLoaded"] = true
		stats["modelFormat"] = info.Format
		stats["modelVersion"] = info.Version
		stats["modelLoadedAt"] = m.loadedAt.UTC().Format(time.RFC3339)
	}

	return stats
}

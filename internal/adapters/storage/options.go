package storage

import "github.com/okian/propensity/pkg/logger"

type settings struct {
	maxBytes  int64
	region    string
	endpoint  string
	accessKey string
	secretKey string
	logger    logger.Logger
}

func newSettings(opts []Option) settings {
	s := settings{maxBytes: defaultMaxBytes, region: defaultRegion}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// Option applies a configuration option to a store.
type Option func(*settings)

// WithMaxBytes caps the size of a single object.
func WithMaxBytes(n int64) Option {
	return func(s *settings) {
		if n > 0 {
			s.maxBytes = n
		}
	}
}

// WithRegion sets the S3 region.
func WithRegion(region string) Option {
	return func(s *settings) {
		if region != "" {
			s.region = region
		}
	}
}

// WithEndpoint targets an S3-compatible store at url with path-style
// addressing.
func WithEndpoint(url string) Option {
	return func(s *settings) {
		s.endpoint = url
	}
}

// WithStaticCredentials uses fixed keys instead of the default AWS chain.
// Empty keys are ignored.
func WithStaticCredentials(accessKey, secretKey string) Option {
	return func(s *settings) {
		if accessKey != "" && secretKey != "" {
			s.accessKey = accessKey
			s.secretKey = secretKey
		}
	}
}

// WithLogger sets the logger used for fetch diagnostics.
func WithLogger(l logger.Logger) Option {
	return func(s *settings) {
		if l != nil {
			s.logger = l
		}
	}
}

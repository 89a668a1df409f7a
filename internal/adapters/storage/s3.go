package storage

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	smithyhttp "github.com/aws/smithy-go/transport/http"

	"github.com/okian/propensity/pkg/logger"
)

const backendS3 = "s3"

// S3API is the subset of the S3 client used by S3Store.
type S3API interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Store reads objects from one S3 bucket.
type S3Store struct {
	client   S3API
	bucket   string
	maxBytes int64
	logger   logger.Logger
}

// NewS3Store builds a client from the default AWS configuration chain,
// overridden by the given options.
func NewS3Store(ctx context.Context, bucket string, opts ...Option) (*S3Store, error) {
	if bucket == "" {
		return nil, fmt.Errorf("%w: empty bucket", ErrInvalidKey)
	}
	set := newSettings(opts)

	loadOpts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(set.region)}
	if set.accessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(set.accessKey, set.secretKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if set.endpoint != "" {
			o.BaseEndpoint = aws.String(set.endpoint)
			o.UsePathStyle = true
		}
	})
	return NewS3StoreWithClient(client, bucket, opts...), nil
}

// NewS3StoreWithClient wraps an existing client.
func NewS3StoreWithClient(client S3API, bucket string, opts ...Option) *S3Store {
	set := newSettings(opts)
	return &S3Store{client: client, bucket: bucket, maxBytes: set.maxBytes, logger: set.logger}
}

// Fetch downloads key from the bucket.
func (s *S3Store) Fetch(ctx context.Context, key string) (data []byte, err error) {
	start := time.Now()
	defer func() { observe(backendS3, start, data, err) }()

	if key == "" {
		return nil, fmt.Errorf("%w: empty key", ErrInvalidKey)
	}

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%w: s3://%s/%s", ErrNotFound, s.bucket, key)
		}
		return nil, fmt.Errorf("get s3://%s/%s: %w", s.bucket, key, err)
	}
	defer func() { _ = out.Body.Close() }()

	data, err = readAll(out.Body, key, s.maxBytes)
	if err != nil {
		return nil, err
	}
	if s.logger != nil {
		s.logger.Debug(ctx, "fetched object",
			logger.String("bucket", s.bucket), logger.String("key", key), logger.Int("bytes", len(data)))
	}
	return data, nil
}

func isNotFound(err error) bool {
	var noKey *types.NoSuchKey
	if errors.As(err, &noKey) {
		return true
	}
	var notFound *types.NotFound
	if errors.As(err, &notFound) {
		return true
	}
	var respErr *smithyhttp.ResponseError
	return errors.As(err, &respErr) && respErr.HTTPStatusCode() == http.StatusNotFound
}

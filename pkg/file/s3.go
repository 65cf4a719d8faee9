package file

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

// S3Client is the subset of *s3.Client used by S3Source.
type S3Client interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Config configures S3Source. Region is required unless a client is injected.
type S3Config struct {
	Region         string        `env:"S3_REGION"`
	AccessKeyID    string        `env:"S3_ACCESS_KEY_ID"`
	SecretKey      string        `env:"S3_SECRET_KEY"`
	Endpoint       string        `env:"S3_ENDPOINT"`                             // S3-compatible services
	ForcePathStyle bool          `env:"S3_FORCE_PATH_STYLE" envDefault:"false"` // MinIO and friends
	DefaultBucket  string        `env:"S3_BUCKET"`                               // used for s3:///key references
	Timeout        time.Duration `env:"S3_TIMEOUT" envDefault:"30s"`
}

// S3Source reads objects from S3. It is safe for concurrent use.
type S3Source struct {
	client        S3Client
	defaultBucket string
	timeout       time.Duration
	maxSize       int64
}

// S3Option configures S3Source.
type S3Option func(*s3Options)

type s3Options struct {
	httpClient      *http.Client
	s3Client        S3Client
	s3ConfigOptions []func(*config.LoadOptions) error
	s3ClientOptions []func(*s3.Options)
	maxSize         int64
}

// WithS3Client injects a pre-configured client, e.g. a mock.
func WithS3Client(client S3Client) S3Option {
	return func(o *s3Options) {
		o.s3Client = client
	}
}

// WithHTTPClient sets the HTTP client used by the AWS SDK.
func WithHTTPClient(client *http.Client) S3Option {
	return func(o *s3Options) {
		o.httpClient = client
	}
}

// WithS3ConfigOption appends an option applied when loading the AWS config.
func WithS3ConfigOption(option func(*config.LoadOptions) error) S3Option {
	return func(o *s3Options) {
		o.s3ConfigOptions = append(o.s3ConfigOptions, option)
	}
}

// WithS3ClientOption appends an option applied to the S3 client.
func WithS3ClientOption(option func(*s3.Options)) S3Option {
	return func(o *s3Options) {
		o.s3ClientOptions = append(o.s3ClientOptions, option)
	}
}

// WithS3MaxSize caps object size. Default is DefaultMaxSize.
func WithS3MaxSize(maxBytes int64) S3Option {
	return func(o *s3Options) {
		o.maxSize = maxBytes
	}
}

// NewS3Source builds an S3Source from cfg.
func NewS3Source(ctx context.Context, cfg S3Config, opts ...S3Option) (*S3Source, error) {
	options := &s3Options{maxSize: DefaultMaxSize}
	for _, opt := range opts {
		opt(options)
	}

	client := options.s3Client
	if client == nil {
		if cfg.Region == "" {
			return nil, ErrInvalidConfig
		}

		awsOptions := []func(*config.LoadOptions) error{
			config.WithRegion(cfg.Region),
		}
		if cfg.AccessKeyID != "" && cfg.SecretKey != "" {
			awsOptions = append(awsOptions,
				config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
					cfg.AccessKeyID,
					cfg.SecretKey,
					"",
				)),
			)
		}
		if options.httpClient != nil {
			awsOptions = append(awsOptions, config.WithHTTPClient(options.httpClient))
		}
		awsOptions = append(awsOptions, options.s3ConfigOptions...)

		awsConfig, err := config.LoadDefaultConfig(ctx, awsOptions...)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrFailedToLoadConfig, err)
		}

		client = s3.NewFromConfig(awsConfig, func(o *s3.Options) {
			if cfg.Endpoint != "" {
				o.BaseEndpoint = aws.String(cfg.Endpoint)
			}
			o.UsePathStyle = cfg.ForcePathStyle
			for _, opt := range options.s3ClientOptions {
				opt(o)
			}
		})
	}

	return &S3Source{
		client:        client,
		defaultBucket: cfg.DefaultBucket,
		timeout:       cfg.Timeout,
		maxSize:       options.maxSize,
	}, nil
}

// ParseS3URI splits s3://bucket/key. An empty bucket is allowed (s3:///key)
// and resolved against the default bucket by Open.
func ParseS3URI(ref string) (bucket, key string, err error) {
	rest, ok := strings.CutPrefix(ref, "s3://")
	if !ok {
		return "", "", fmt.Errorf("%w: %s", ErrInvalidPath, ref)
	}
	bucket, key, _ = strings.Cut(rest, "/")
	key = strings.TrimPrefix(key, "/")
	if key == "" || strings.HasSuffix(key, "/") || strings.Contains(key, "..") {
		return "", "", fmt.Errorf("%w: %s", ErrInvalidPath, ref)
	}
	return bucket, key, nil
}

// Open downloads the object named by an s3:// reference.
func (s *S3Source) Open(ctx context.Context, ref string) (*Blob, error) {
	bucket, key, err := ParseS3URI(ref)
	if err != nil {
		return nil, err
	}
	if bucket == "" {
		bucket = s.defaultBucket
	}
	if bucket == "" {
		return nil, fmt.Errorf("%w: no bucket in %s", ErrInvalidPath, ref)
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, classifyS3Error(err, "get object")
	}
	defer func() { _ = out.Body.Close() }()

	if out.ContentLength != nil {
		if err := ValidateSize(*out.ContentLength, s.maxSize); err != nil {
			return nil, err
		}
	}

	data, err := readLimited(out.Body, s.maxSize)
	if err != nil {
		return nil, err
	}
	return newBlob(path.Base(key), data), nil
}

// classifyS3Error converts S3 errors to package errors.
func classifyS3Error(err error, operation string) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s operation", ErrOperationTimeout, operation)
	}
	if errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %s operation", ErrOperationCanceled, operation)
	}

	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return fmt.Errorf("%w: %s", ErrFileNotFound, err)
	}
	var nsb *types.NoSuchBucket
	if errors.As(err, &nsb) {
		return ErrBucketNotFound
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		code := apiErr.ErrorCode()
		switch code {
		case "AccessDenied":
			return fmt.Errorf("%w: %s operation", ErrAccessDenied, operation)
		case "RequestTimeout":
			return fmt.Errorf("%w: %s operation", ErrRequestTimeout, operation)
		case "SlowDown", "ServiceUnavailable":
			return fmt.Errorf("%w: %s operation", ErrServiceUnavailable, operation)
		case "InvalidObjectState":
			return fmt.Errorf("%w: %s operation", ErrInvalidObjectState, operation)
		case "NoSuchKey", "NotFound":
			return fmt.Errorf("%w: %s", ErrFileNotFound, err)
		case "NoSuchBucket":
			return ErrBucketNotFound
		default:
			return fmt.Errorf("%s operation failed (code: %s): %w", operation, code, err)
		}
	}

	return fmt.Errorf("%s operation failed: %w", operation, err)
}

package feed

import (
	"context"
	"io"
	"net/url"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/vango-dev/viewmodel/internal/errors"
)

// ObjectGetter is the subset of the S3 client used to fetch feed objects.
type ObjectGetter interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Config configures the client built for s3:// sources.
type S3Config struct {
	Region    string
	Endpoint  string // optional, e.g. a MinIO URL
	PathStyle bool
}

// NewS3Client builds an S3 client from the default AWS credential chain.
func NewS3Client(ctx context.Context, cfg S3Config) (*s3.Client, error) {
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, err
	}
	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.PathStyle {
			o.UsePathStyle = true
		}
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	}), nil
}

// OpenOption configures Open.
type OpenOption func(*openConfig)

type openConfig struct {
	s3Client ObjectGetter
	s3Config S3Config
	stdin    io.Reader
}

// WithS3Client uses client for s3:// sources instead of building one.
func WithS3Client(client ObjectGetter) OpenOption {
	return func(c *openConfig) {
		c.s3Client = client
	}
}

// WithS3Config configures the client built for s3:// sources.
func WithS3Config(cfg S3Config) OpenOption {
	return func(c *openConfig) {
		c.s3Config = cfg
	}
}

// WithStdin replaces os.Stdin for the "-" source.
func WithStdin(r io.Reader) OpenOption {
	return func(c *openConfig) {
		c.stdin = r
	}
}

// Open returns a reader for source. The caller closes it.
func Open(ctx context.Context, source string, opts ...OpenOption) (io.ReadCloser, error) {
	config := openConfig{stdin: os.Stdin}
	for _, opt := range opts {
		opt(&config)
	}

	if source == "" {
		return nil, errors.New("E201").WithDetail("No feed source given")
	}
	if source == "-" {
		return io.NopCloser(config.stdin), nil
	}

	// Plain paths, including Windows drive letters, are not URLs.
	if !strings.Contains(source, "://") {
		return openFile(source)
	}

	u, err := url.Parse(source)
	if err != nil {
		return nil, errors.New("E201").WithDetail(source).Wrap(err)
	}

	switch u.Scheme {
	case "file":
		return openFile(u.Path)
	case "s3":
		return openS3(ctx, u, config)
	default:
		return nil, errors.New("E201").
			WithDetail("Unsupported scheme " + u.Scheme + " in " + source).
			WithSuggestion("Use a local path, file://, s3://bucket/key or -")
	}
}

func openFile(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.New("E202").WithDetail(path).Wrap(err)
	}
	return f, nil
}

func openS3(ctx context.Context, u *url.URL, config openConfig) (io.ReadCloser, error) {
	bucket := u.Host
	key := strings.TrimPrefix(u.Path, "/")
	if bucket == "" || key == "" {
		return nil, errors.New("E201").
			WithDetail("S3 source must be s3://bucket/key, got " + u.String())
	}

	client := config.s3Client
	if client == nil {
		c, err := NewS3Client(ctx, config.s3Config)
		if err != nil {
			return nil, errors.New("E202").WithDetail("Failed to configure S3 client").Wrap(err)
		}
		client = c
	}

	out, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, errors.New("E202").WithDetail(u.String()).Wrap(err)
	}
	return out.Body, nil
}

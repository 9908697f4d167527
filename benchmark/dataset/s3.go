package dataset

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// Compile-time check that S3Source implements Source.
var _ Source = (*S3Source)(nil)

// S3Source fetches dataset files from AWS S3 or S3-compatible object
// stores. URIs name single objects; prefix listing is not supported.
type S3Source struct {
	client *s3.Client
}

// S3Option configures an S3Source.
type S3Option func(*s3.Options)

// WithS3Region sets the AWS region.
func WithS3Region(region string) S3Option {
	return func(o *s3.Options) {
		o.Region = region
	}
}

// WithS3Endpoint sets a custom endpoint for S3-compatible services
// such as MinIO.
func WithS3Endpoint(endpoint string) S3Option {
	return func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
		o.UsePathStyle = true
	}
}

// NewS3Source creates an S3 source from the ambient AWS configuration.
func NewS3Source(ctx context.Context, opts ...S3Option) (*S3Source, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		for _, opt := range opts {
			opt(o)
		}
	})
	return &S3Source{client: client}, nil
}

// Schemes returns the handled URI schemes.
func (s *S3Source) Schemes() []string {
	return []string{"s3"}
}

// Resolve returns uri unchanged.
func (s *S3Source) Resolve(ctx context.Context, uri string) ([]string, error) {
	return []string{uri}, nil
}

// Fetch downloads the object at uri to destPath.
func (s *S3Source) Fetch(ctx context.Context, uri, destPath string) error {
	bucket, key, err := parseS3Path(uri)
	if err != nil {
		return err
	}

	result, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return fmt.Errorf("%w: %s", ErrNotFound, uri)
		}
		return fmt.Errorf("opening %s: %w", uri, err)
	}
	defer result.Body.Close()

	out, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("opening destination: %w", err)
	}
	if _, err := io.Copy(out, result.Body); err != nil {
		out.Close()
		return fmt.Errorf("downloading %s: %w", uri, err)
	}
	return out.Close()
}

// parseS3Path splits "s3://bucket/key" into bucket and key.
func parseS3Path(uri string) (bucket, key string, err error) {
	if !strings.HasPrefix(uri, "s3://") {
		return "", "", fmt.Errorf("invalid S3 path %q: must start with s3://", uri)
	}

	path := strings.TrimPrefix(uri, "s3://")
	parts := strings.SplitN(path, "/", 2)
	if parts[0] == "" || len(parts) < 2 || parts[1] == "" {
		return "", "", fmt.Errorf("invalid S3 path %q: want s3://bucket/key", uri)
	}
	return parts[0], parts[1], nil
}

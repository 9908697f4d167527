package dataset

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
)

// Compile-time check that GCSSource implements Source.
var _ Source = (*GCSSource)(nil)

// GCSSource fetches dataset files from Google Cloud Storage. URIs
// ending in "/" are prefixes and resolve to every object below them.
type GCSSource struct {
	client *storage.Client
}

// NewGCSSource creates a GCS source using ambient credentials.
func NewGCSSource(ctx context.Context) (*GCSSource, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("creating GCS client: %w", err)
	}
	return &GCSSource{client: client}, nil
}

// Schemes returns the handled URI schemes.
func (s *GCSSource) Schemes() []string {
	return []string{"gs"}
}

// Resolve expands a gs:// prefix into the URIs of the objects below
// it. Object URIs are returned unchanged.
func (s *GCSSource) Resolve(ctx context.Context, uri string) ([]string, error) {
	bucket, key, err := parseGCSPath(uri)
	if err != nil {
		return nil, err
	}
	if !strings.HasSuffix(uri, "/") && key != "" {
		return []string{uri}, nil
	}

	var uris []string
	it := s.client.Bucket(bucket).Objects(ctx, &storage.Query{Prefix: key})
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("listing %s: %w", uri, err)
		}
		if strings.HasSuffix(attrs.Name, "/") {
			continue
		}
		uris = append(uris, "gs://"+bucket+"/"+attrs.Name)
	}
	if len(uris) == 0 {
		return nil, fmt.Errorf("%w: no objects under %s", ErrNotFound, uri)
	}
	return uris, nil
}

// Fetch downloads the object at uri to destPath.
func (s *GCSSource) Fetch(ctx context.Context, uri, destPath string) error {
	bucket, key, err := parseGCSPath(uri)
	if err != nil {
		return err
	}

	r, err := s.client.Bucket(bucket).Object(key).NewReader(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return fmt.Errorf("%w: %s", ErrNotFound, uri)
	}
	if err != nil {
		return fmt.Errorf("opening %s: %w", uri, err)
	}
	defer r.Close()

	out, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("opening destination: %w", err)
	}
	if _, err := io.Copy(out, r); err != nil {
		out.Close()
		return fmt.Errorf("downloading %s: %w", uri, err)
	}
	return out.Close()
}

// Close releases the underlying client.
func (s *GCSSource) Close() error {
	return s.client.Close()
}

// parseGCSPath splits "gs://bucket/key" into bucket and key.
func parseGCSPath(uri string) (bucket, key string, err error) {
	if !strings.HasPrefix(uri, "gs://") {
		return "", "", fmt.Errorf("invalid GCS path %q: must start with gs://", uri)
	}

	path := strings.TrimPrefix(uri, "gs://")
	parts := strings.SplitN(path, "/", 2)
	if parts[0] == "" {
		return "", "", fmt.Errorf("invalid GCS path %q: missing bucket name", uri)
	}

	bucket = parts[0]
	if len(parts) > 1 {
		key = parts[1]
	}
	return bucket, key, nil
}

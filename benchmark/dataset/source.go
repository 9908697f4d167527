package dataset

import (
	"context"
	"errors"
	"strings"
)

// ErrNotFound indicates the requested dataset file does not exist at
// its source.
var ErrNotFound = errors.New("dataset: file not found")

// ErrNoSource indicates no registered source handles a URI's scheme.
var ErrNoSource = errors.New("dataset: no source for scheme")

// Source fetches dataset files for one or more URI schemes.
type Source interface {
	// Schemes returns the URI schemes the source handles, lower case,
	// without the "://" separator.
	Schemes() []string

	// Resolve expands uri into concrete file URIs. Sources without
	// listing support return uri unchanged.
	Resolve(ctx context.Context, uri string) ([]string, error)

	// Fetch copies the object at uri into destPath, overwriting any
	// existing file.
	Fetch(ctx context.Context, uri, destPath string) error
}

// directSource is implemented by sources whose URIs already name a
// local file, letting the fetcher bypass the cache.
type directSource interface {
	LocalPath(uri string) (string, error)
}

// schemeOf extracts the scheme of uri. Bare paths map to "file".
func schemeOf(uri string) string {
	if i := strings.Index(uri, "://"); i > 0 {
		return strings.ToLower(uri[:i])
	}
	return "file"
}

package dataset

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DefaultPrefetchLimit bounds how many fetches Prefetch runs at once.
const DefaultPrefetchLimit = 4

// Fetcher materializes dataset files locally. Each URI is routed to
// the source registered for its scheme; remote fetches land in the
// cache, local files are used in place.
type Fetcher struct {
	sources map[string]Source
	cache   *Cache
	logger  *zap.Logger
	limit   int
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithFetcherLogger sets the logger. The default discards all logs.
func WithFetcherLogger(logger *zap.Logger) FetcherOption {
	return func(f *Fetcher) {
		f.logger = logger
	}
}

// WithPrefetchLimit sets the number of concurrent fetches Prefetch
// may run.
func WithPrefetchLimit(n int) FetcherOption {
	return func(f *Fetcher) {
		f.limit = n
	}
}

// NewFetcher creates a fetcher over the given sources. Later sources
// win when two claim the same scheme.
func NewFetcher(cache *Cache, sources []Source, opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		sources: make(map[string]Source),
		cache:   cache,
		logger:  zap.NewNop(),
		limit:   DefaultPrefetchLimit,
	}
	for _, src := range sources {
		for _, scheme := range src.Schemes() {
			f.sources[scheme] = src
		}
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *Fetcher) source(uri string) (Source, error) {
	src, ok := f.sources[schemeOf(uri)]
	if !ok {
		return nil, fmt.Errorf("%w %q: %s", ErrNoSource, schemeOf(uri), uri)
	}
	return src, nil
}

// Resolve expands uri into concrete file URIs. Directory and prefix
// URIs become their members; plain file URIs pass through unchanged.
func (f *Fetcher) Resolve(ctx context.Context, uri string) ([]string, error) {
	src, err := f.source(uri)
	if err != nil {
		return nil, err
	}
	return src.Resolve(ctx, uri)
}

// Materialize returns a local path holding the contents of uri. Local
// files are returned in place; remote files are served from the cache,
// fetched on a miss. The returned path is valid until the cache evicts
// it, so callers that need the file beyond the next few fetches should
// copy it out.
func (f *Fetcher) Materialize(ctx context.Context, uri string) (string, error) {
	src, err := f.source(uri)
	if err != nil {
		return "", err
	}
	if direct, ok := src.(directSource); ok {
		return direct.LocalPath(uri)
	}

	if p, ok := f.cache.Get(uri); ok {
		f.logger.Debug("cache hit",
			zap.String("uri", uri),
			zap.String("path", p))
		return p, nil
	}

	slot := f.cache.Path(uri)
	part := slot + ".part"
	f.logger.Info("fetching", zap.String("uri", uri))
	if err := src.Fetch(ctx, uri, part); err != nil {
		// The partial file stays behind so a retry can resume it.
		return "", err
	}
	if err := os.Rename(part, slot); err != nil {
		return "", fmt.Errorf("publishing %s: %w", uri, err)
	}
	f.cache.Add(uri)

	f.logger.Info("fetched",
		zap.String("uri", uri),
		zap.String("path", slot))
	return slot, nil
}

// Prefetch materializes every URI, running up to the configured limit
// of fetches concurrently. The first failure cancels the rest.
func (f *Fetcher) Prefetch(ctx context.Context, uris []string) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(f.limit)
	for _, uri := range uris {
		g.Go(func() error {
			_, err := f.Materialize(ctx, uri)
			return err
		})
	}
	return g.Wait()
}

package dataset

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

// DefaultResponseHeaderTimeout is the default timeout for receiving
// response headers.
const DefaultResponseHeaderTimeout = 30 * time.Second

// Compile-time check that HTTPSource implements Source.
var _ Source = (*HTTPSource)(nil)

// HTTPSource downloads dataset files over HTTP(S) with resume support:
// a partial destination file is continued with a Range request instead
// of being fetched again.
type HTTPSource struct {
	client   *http.Client
	progress ProgressFunc
}

// HTTPOption configures an HTTPSource.
type HTTPOption func(*HTTPSource)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) HTTPOption {
	return func(s *HTTPSource) {
		s.client = client
	}
}

// WithHTTPProgress sets a progress callback invoked during downloads.
func WithHTTPProgress(fn ProgressFunc) HTTPOption {
	return func(s *HTTPSource) {
		s.progress = fn
	}
}

// NewHTTPSource creates an HTTP source with sensible transport
// defaults. Downloads have no overall timeout; stalls are bounded per
// request phase instead.
func NewHTTPSource(opts ...HTTPOption) *HTTPSource {
	s := &HTTPSource{
		client: &http.Client{
			Transport: &http.Transport{
				ResponseHeaderTimeout: DefaultResponseHeaderTimeout,
				IdleConnTimeout:       90 * time.Second,
				TLSHandshakeTimeout:   10 * time.Second,
				ExpectContinueTimeout: 1 * time.Second,
			},
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Schemes returns the handled URI schemes.
func (s *HTTPSource) Schemes() []string {
	return []string{"http", "https"}
}

// Resolve returns uri unchanged.
func (s *HTTPSource) Resolve(ctx context.Context, uri string) ([]string, error) {
	return []string{uri}, nil
}

// Fetch downloads uri to destPath. An existing partial file at
// destPath is resumed when the server honors Range requests.
func (s *HTTPSource) Fetch(ctx context.Context, uri, destPath string) error {
	var existing int64
	if info, err := os.Stat(destPath); err == nil {
		existing = info.Size()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if existing > 0 {
		req.Header.Set("Range", fmt.Sprintf("bytes=%d-", existing))
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("downloading %s: %w", uri, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		// Server ignored the range; start over.
		existing = 0
	case http.StatusPartialContent:
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrNotFound, uri)
	default:
		return fmt.Errorf("downloading %s: unexpected status %s", uri, resp.Status)
	}

	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if existing > 0 {
		flags = os.O_WRONLY | os.O_APPEND
	}
	out, err := os.OpenFile(destPath, flags, 0o644)
	if err != nil {
		return fmt.Errorf("opening destination: %w", err)
	}

	total := existing + resp.ContentLength
	if resp.ContentLength < 0 {
		total = -1
	}
	if err := s.copyBody(ctx, out, resp.Body, uri, existing, total); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func (s *HTTPSource) copyBody(ctx context.Context, out *os.File, body io.Reader, uri string, fetched, total int64) error {
	buf := make([]byte, 32*1024)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		n, err := body.Read(buf)
		if n > 0 {
			if _, writeErr := out.Write(buf[:n]); writeErr != nil {
				return fmt.Errorf("writing destination: %w", writeErr)
			}
			fetched += int64(n)
			if s.progress != nil {
				s.progress(Progress{File: uri, BytesFetched: fetched, BytesTotal: total})
			}
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading response: %w", err)
		}
	}
}

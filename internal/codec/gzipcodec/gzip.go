// Package gzipcodec provides a gzip codec. Archives built with it are
// larger than zstd ones but readable anywhere gzip is.
package gzipcodec

import (
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/seqarc/zfq/internal/codec"
)

// Compile-time check that Codec implements codec.Codec.
var _ codec.Codec = (*Codec)(nil)

// Codec implements codec.Codec with the standard library gzip
// implementation. The Threads hint is ignored, gzip has no internal
// parallelism.
type Codec struct{}

// New returns a new gzip codec.
func New() *Codec {
	return &Codec{}
}

// Compress writes a gzip-compressed copy of path beside it.
func (c *Codec) Compress(ctx context.Context, path string, hint codec.Hint) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	in, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening %s: %w", filepath.Base(path), err)
	}
	defer in.Close()

	out := path + "." + c.Extension()
	dst, err := os.Create(out)
	if err != nil {
		return "", fmt.Errorf("creating %s: %w", filepath.Base(out), err)
	}

	level := gzip.DefaultCompression
	if hint.Level == codec.LevelBest {
		level = gzip.BestCompression
	}
	enc, err := gzip.NewWriterLevel(dst, level)
	if err != nil {
		dst.Close()
		return "", fmt.Errorf("creating gzip writer: %w", err)
	}
	if _, err := io.Copy(enc, in); err != nil {
		enc.Close()
		dst.Close()
		return "", fmt.Errorf("compressing %s: %w", filepath.Base(path), err)
	}
	if err := enc.Close(); err != nil {
		dst.Close()
		return "", fmt.Errorf("flushing gzip writer: %w", err)
	}
	if err := dst.Close(); err != nil {
		return "", fmt.Errorf("closing %s: %w", filepath.Base(out), err)
	}
	return out, nil
}

// Decompress writes the decoded content of path beside it.
func (c *Codec) Decompress(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	ext := "." + c.Extension()
	if !strings.HasSuffix(path, ext) {
		return "", fmt.Errorf("decompressing %s: missing %s suffix", filepath.Base(path), ext)
	}
	out := strings.TrimSuffix(path, ext)

	in, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening %s: %w", filepath.Base(path), err)
	}
	defer in.Close()

	dec, err := gzip.NewReader(in)
	if err != nil {
		return "", fmt.Errorf("creating gzip reader: %w", err)
	}
	defer dec.Close()

	dst, err := os.Create(out)
	if err != nil {
		return "", fmt.Errorf("creating %s: %w", filepath.Base(out), err)
	}
	if _, err := io.Copy(dst, dec); err != nil {
		dst.Close()
		return "", fmt.Errorf("decompressing %s: %w", filepath.Base(path), err)
	}
	if err := dst.Close(); err != nil {
		return "", fmt.Errorf("closing %s: %w", filepath.Base(out), err)
	}
	return out, nil
}

// Extension returns "gz".
func (c *Codec) Extension() string {
	return "gz"
}

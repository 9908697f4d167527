// Package zstdcodec provides a native zstd codec.
package zstdcodec

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"

	"github.com/seqarc/zfq/internal/codec"
)

// Compile-time check that Codec implements codec.Codec.
var _ codec.Codec = (*Codec)(nil)

// Codec implements codec.Codec with the in-process zstd library.
// It produces standard zstd frames that the zstd command line tool can
// read, and vice versa.
type Codec struct{}

// New returns a new zstd codec.
func New() *Codec {
	return &Codec{}
}

// Compress writes a zstd-compressed copy of path beside it.
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

	enc, err := zstd.NewWriter(dst, encoderOptions(hint)...)
	if err != nil {
		dst.Close()
		return "", fmt.Errorf("creating zstd encoder: %w", err)
	}
	if _, err := io.Copy(enc, in); err != nil {
		enc.Close()
		dst.Close()
		return "", fmt.Errorf("compressing %s: %w", filepath.Base(path), err)
	}
	if err := enc.Close(); err != nil {
		dst.Close()
		return "", fmt.Errorf("flushing zstd encoder: %w", err)
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

	dec, err := zstd.NewReader(in)
	if err != nil {
		return "", fmt.Errorf("creating zstd decoder: %w", err)
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

// Extension returns "zst".
func (c *Codec) Extension() string {
	return "zst"
}

func encoderOptions(hint codec.Hint) []zstd.EOption {
	level := zstd.SpeedDefault
	if hint.Level == codec.LevelBest {
		level = zstd.SpeedBestCompression
	}
	opts := []zstd.EOption{zstd.WithEncoderLevel(level)}
	if hint.Threads > 0 {
		opts = append(opts, zstd.WithEncoderConcurrency(hint.Threads))
	}
	return opts
}

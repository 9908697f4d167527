// Package noopcodec provides a codec that copies bytes unchanged.
// It isolates container and pipeline tests from real compression.
package noopcodec

import (
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

// Codec implements no compression.
type Codec struct{}

// New returns a new no-op codec.
func New() *Codec {
	return &Codec{}
}

// Compress copies path beside itself under the raw extension.
func (c *Codec) Compress(ctx context.Context, path string, hint codec.Hint) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	out := path + "." + c.Extension()
	if err := copyFile(path, out); err != nil {
		return "", err
	}
	return out, nil
}

// Decompress copies path beside itself without the raw extension.
func (c *Codec) Decompress(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	ext := "." + c.Extension()
	if !strings.HasSuffix(path, ext) {
		return "", fmt.Errorf("decompressing %s: missing %s suffix", path, ext)
	}
	out := strings.TrimSuffix(path, ext)
	if err := copyFile(path, out); err != nil {
		return "", err
	}
	return out, nil
}

// Extension returns "raw".
func (c *Codec) Extension() string {
	return "raw"
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("opening %s: %w", filepath.Base(src), err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Base(dst), err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copying to %s: %w", filepath.Base(dst), err)
	}
	return out.Close()
}

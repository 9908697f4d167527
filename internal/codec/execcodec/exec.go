// Package execcodec provides a codec that shells out to an external
// compression tool.
package execcodec

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/seqarc/zfq/internal/codec"
)

// Default templates invoke the zstd command line tool the same way the
// native codec behaves: quiet, overwrite, explicit output path.
const (
	DefaultCompressTemplate   = "zstd -q -f -T#THREADS# -#LEVEL# #IN# -o #OUT#"
	DefaultDecompressTemplate = "zstd -q -f -d #IN# -o #OUT#"
)

// Compile-time check that Codec implements codec.Codec.
var _ codec.Codec = (*Codec)(nil)

// Codec runs templated shell commands to compress and decompress
// column files. Templates may use the placeholders #IN#, #OUT#,
// #THREADS# and #LEVEL#; unknown placeholders are left untouched.
type Codec struct {
	compress   string
	decompress string
	ext        string
}

// Option configures a Codec.
type Option func(*Codec)

// WithCompressTemplate overrides the compress command template.
func WithCompressTemplate(t string) Option {
	return func(c *Codec) { c.compress = t }
}

// WithDecompressTemplate overrides the decompress command template.
func WithDecompressTemplate(t string) Option {
	return func(c *Codec) { c.decompress = t }
}

// WithExtension overrides the output extension (without dot).
func WithExtension(ext string) Option {
	return func(c *Codec) { c.ext = strings.TrimPrefix(ext, ".") }
}

// New returns a codec that invokes the zstd command line tool, unless
// the templates are overridden.
func New(opts ...Option) *Codec {
	c := &Codec{
		compress:   DefaultCompressTemplate,
		decompress: DefaultDecompressTemplate,
		ext:        "zst",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compress runs the compress template on path.
func (c *Codec) Compress(ctx context.Context, path string, hint codec.Hint) (string, error) {
	out := path + "." + c.ext
	if err := c.run(ctx, "compress", render(c.compress, path, out, hint)); err != nil {
		return "", err
	}
	if _, err := os.Stat(out); err != nil {
		return "", fmt.Errorf("codec wrote no output at %s: %w", out, err)
	}
	return out, nil
}

// Decompress runs the decompress template on path.
func (c *Codec) Decompress(ctx context.Context, path string) (string, error) {
	ext := "." + c.ext
	if !strings.HasSuffix(path, ext) {
		return "", fmt.Errorf("decompressing %s: missing %s suffix", path, ext)
	}
	out := strings.TrimSuffix(path, ext)
	if err := c.run(ctx, "decompress", render(c.decompress, path, out, codec.Hint{})); err != nil {
		return "", err
	}
	if _, err := os.Stat(out); err != nil {
		return "", fmt.Errorf("codec wrote no output at %s: %w", out, err)
	}
	return out, nil
}

// Extension returns the configured extension.
func (c *Codec) Extension() string {
	return c.ext
}

func (c *Codec) run(ctx context.Context, op, cmdline string) error {
	cmd := exec.CommandContext(ctx, "sh", "-c", cmdline)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return &codec.CommandError{Op: op, Command: cmdline, Output: string(out), Err: err}
	}
	return nil
}

func render(tmpl, in, out string, hint codec.Hint) string {
	threads := hint.Threads
	if threads < 1 {
		threads = 1
	}
	level := "3"
	if hint.Level == codec.LevelBest {
		level = "18"
	}
	r := strings.NewReplacer(
		"#IN#", in,
		"#OUT#", out,
		"#THREADS#", strconv.Itoa(threads),
		"#LEVEL#", level,
	)
	return r.Replace(tmpl)
}

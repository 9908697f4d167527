package gzipcodec

import (
	"bytes"
	"compress/gzip"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/seqarc/zfq/internal/codec"
)

func TestRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		hint codec.Hint
	}{
		{"default", codec.Hint{}},
		{"best level", codec.Hint{Level: codec.LevelBest}},
	}

	payload := bytes.Repeat([]byte("ACGTACGTTTGA\n"), 2000)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			path := filepath.Join(dir, "qual.txt")
			if err := os.WriteFile(path, payload, 0o644); err != nil {
				t.Fatalf("WriteFile() error = %v", err)
			}

			c := New()
			compressed, err := c.Compress(context.Background(), path, tt.hint)
			if err != nil {
				t.Fatalf("Compress() error = %v", err)
			}
			if compressed != path+".gz" {
				t.Errorf("Compress() = %q, want %q", compressed, path+".gz")
			}

			info, err := os.Stat(compressed)
			if err != nil {
				t.Fatalf("Stat(%q) error = %v", compressed, err)
			}
			if info.Size() >= int64(len(payload)) {
				t.Errorf("compressed size %d, want smaller than %d", info.Size(), len(payload))
			}

			if err := os.Remove(path); err != nil {
				t.Fatalf("Remove() error = %v", err)
			}
			plain, err := c.Decompress(context.Background(), compressed)
			if err != nil {
				t.Fatalf("Decompress() error = %v", err)
			}
			got, err := os.ReadFile(plain)
			if err != nil {
				t.Fatalf("ReadFile() error = %v", err)
			}
			if !bytes.Equal(got, payload) {
				t.Errorf("round trip changed content: got %d bytes, want %d", len(got), len(payload))
			}
		})
	}
}

func TestCompress_StandardStream(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "head.txt")
	if err := os.WriteFile(path, []byte("read1\nread2\n"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	compressed, err := New().Compress(context.Background(), path, codec.Hint{})
	if err != nil {
		t.Fatalf("Compress() error = %v", err)
	}

	// The output must be a plain gzip stream other tools can read.
	f, err := os.Open(compressed)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer f.Close()
	if _, err := gzip.NewReader(f); err != nil {
		t.Errorf("output is not a valid gzip stream: %v", err)
	}
}

func TestDecompress_wrongSuffix(t *testing.T) {
	path := filepath.Join(t.TempDir(), "head.txt")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	if _, err := New().Decompress(context.Background(), path); err == nil {
		t.Fatal("Decompress() on unsuffixed path succeeded, want error")
	}
}

func TestDecompress_invalidData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "head.txt.gz")
	if err := os.WriteFile(path, []byte("not gzip data"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	if _, err := New().Decompress(context.Background(), path); err == nil {
		t.Fatal("Decompress() on invalid data succeeded, want error")
	}
}

func TestExtension(t *testing.T) {
	if got := New().Extension(); got != "gz" {
		t.Errorf("Extension() = %q, want %q", got, "gz")
	}
}

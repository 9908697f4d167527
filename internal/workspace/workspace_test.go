package workspace

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNew(t *testing.T) {
	root := t.TempDir()

	ws, err := New(root)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer ws.Close()

	info, err := os.Stat(ws.Path())
	if err != nil {
		t.Fatalf("Stat(%q) error = %v", ws.Path(), err)
	}
	if !info.IsDir() {
		t.Errorf("workspace path is not a directory")
	}
	if filepath.Dir(ws.Path()) != root {
		t.Errorf("workspace created in %q, want under %q", ws.Path(), root)
	}
}

func TestNew_createsRoot(t *testing.T) {
	root := filepath.Join(t.TempDir(), "not", "yet", "there")

	ws, err := New(root)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer ws.Close()

	if _, err := os.Stat(ws.Path()); err != nil {
		t.Errorf("Stat(%q) error = %v", ws.Path(), err)
	}
}

func TestNew_uniquePaths(t *testing.T) {
	root := t.TempDir()

	a, err := New(root)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer a.Close()

	b, err := New(root)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer b.Close()

	if a.Path() == b.Path() {
		t.Errorf("two workspaces share path %q", a.Path())
	}
}

func TestJoin(t *testing.T) {
	ws, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer ws.Close()

	got := ws.Join("qual.txt")
	want := filepath.Join(ws.Path(), "qual.txt")
	if got != want {
		t.Errorf("Join() = %q, want %q", got, want)
	}
}

func TestClose_removesTree(t *testing.T) {
	ws, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if err := os.WriteFile(ws.Join("leftover"), []byte("x"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	if err := ws.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if _, err := os.Stat(ws.Path()); !os.IsNotExist(err) {
		t.Errorf("workspace still present after Close, stat err = %v", err)
	}

	// A second Close must not fail.
	if err := ws.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
}

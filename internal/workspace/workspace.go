// Package workspace provides uniquely named scratch directories scoped
// to a single operation.
package workspace

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Workspace is a temporary directory owned exclusively by one
// operation. All intermediate column files live inside it, and it is
// removed on every exit path.
type Workspace struct {
	dir string
}

// New creates a fresh workspace under root. Root is created first if it
// does not exist.
func New(root string) (*Workspace, error) {
	dir := filepath.Join(root, uuid.NewString())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating workspace: %w", err)
	}
	return &Workspace{dir: dir}, nil
}

// Path returns the workspace directory.
func (w *Workspace) Path() string {
	return w.dir
}

// Join returns the path of name inside the workspace.
func (w *Workspace) Join(name string) string {
	return filepath.Join(w.dir, name)
}

// Close removes the workspace and everything in it.
// Closing an already removed workspace is a no-op.
func (w *Workspace) Close() error {
	return os.RemoveAll(w.dir)
}

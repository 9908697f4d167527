package dataset

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
)

// Compile-time check that FileSource implements Source.
var _ Source = (*FileSource)(nil)

// FileSource serves dataset files that already live on the local
// filesystem. URIs are bare paths or file:// paths.
type FileSource struct{}

// NewFileSource creates a local file source.
func NewFileSource() *FileSource {
	return &FileSource{}
}

// Schemes returns the handled URI schemes.
func (s *FileSource) Schemes() []string {
	return []string{"file"}
}

// Resolve returns uri unchanged.
func (s *FileSource) Resolve(ctx context.Context, uri string) ([]string, error) {
	return []string{uri}, nil
}

// LocalPath returns the filesystem path named by uri after checking it
// exists.
func (s *FileSource) LocalPath(uri string) (string, error) {
	path := strings.TrimPrefix(uri, "file://")
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return "", fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	if err != nil {
		return "", err
	}
	if info.IsDir() {
		return "", fmt.Errorf("%s is a directory", path)
	}
	return path, nil
}

// Fetch copies the file named by uri to destPath.
func (s *FileSource) Fetch(ctx context.Context, uri, destPath string) error {
	path, err := s.LocalPath(uri)
	if err != nil {
		return err
	}

	in, err := os.Open(path)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(destPath)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copying %s: %w", path, err)
	}
	return out.Close()
}

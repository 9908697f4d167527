// Package archive reads and writes the columnar container file, a flat
// tar aggregate with a fixed set of named entries.
package archive

import (
	"archive/tar"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// ErrMissingEntry indicates a required container entry is absent.
var ErrMissingEntry = errors.New("archive: missing entry")

// Entry names a file to package into the container.
type Entry struct {
	Name string
	Path string
}

// Write assembles entries into a tar container at outPath, in the given
// order. The container is staged beside the destination and renamed
// into place so a partial write is never visible, then its modification
// time is set to modTime.
func Write(outPath string, entries []Entry, modTime time.Time) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(outPath), "."+filepath.Base(outPath)+".*")
	if err != nil {
		return fmt.Errorf("staging container: %w", err)
	}
	defer func() {
		if err != nil {
			os.Remove(tmp.Name())
		}
	}()

	tw := tar.NewWriter(tmp)
	for _, e := range entries {
		if err := addFile(tw, e); err != nil {
			tmp.Close()
			return err
		}
	}
	if err := tw.Close(); err != nil {
		tmp.Close()
		return fmt.Errorf("finalizing container: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing container: %w", err)
	}

	if err := os.Rename(tmp.Name(), outPath); err != nil {
		return fmt.Errorf("renaming container into place: %w", err)
	}
	if err := os.Chtimes(outPath, modTime, modTime); err != nil {
		return fmt.Errorf("setting container mtime: %w", err)
	}
	return nil
}

// Read extracts every regular entry of the container at inPath into
// destDir and returns a map from entry name to extracted path. Any
// required name not found is an error wrapping ErrMissingEntry.
func Read(inPath, destDir string, required ...string) (map[string]string, error) {
	f, err := os.Open(inPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	extracted := make(map[string]string)
	tr := tar.NewReader(f)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading container: %w", err)
		}
		if hdr.Typeflag != tar.TypeReg {
			continue
		}
		// Entries are flat by construction; strip any path a foreign
		// tool may have added.
		name := filepath.Base(hdr.Name)
		dest := filepath.Join(destDir, name)
		if err := extractFile(tr, dest, name); err != nil {
			return nil, err
		}
		extracted[name] = dest
	}

	for _, name := range required {
		if _, ok := extracted[name]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingEntry, name)
		}
	}
	return extracted, nil
}

// ReadEntry returns the content of one named entry without extracting
// the rest of the container.
func ReadEntry(inPath, name string) ([]byte, error) {
	f, err := os.Open(inPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	tr := tar.NewReader(f)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading container: %w", err)
		}
		if hdr.Typeflag == tar.TypeReg && filepath.Base(hdr.Name) == name {
			data, err := io.ReadAll(tr)
			if err != nil {
				return nil, fmt.Errorf("reading entry %s: %w", name, err)
			}
			return data, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrMissingEntry, name)
}

func addFile(tw *tar.Writer, e Entry) error {
	f, err := os.Open(e.Path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", e.Name, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stating %s: %w", e.Name, err)
	}
	hdr, err := tar.FileInfoHeader(info, "")
	if err != nil {
		return fmt.Errorf("describing %s: %w", e.Name, err)
	}
	hdr.Name = e.Name

	if err := tw.WriteHeader(hdr); err != nil {
		return fmt.Errorf("writing %s header: %w", e.Name, err)
	}
	if _, err := io.Copy(tw, f); err != nil {
		return fmt.Errorf("writing %s: %w", e.Name, err)
	}
	return nil
}

func extractFile(r io.Reader, dest, name string) error {
	f, err := os.OpenFile(dest, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("extracting %s: %w", name, err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return fmt.Errorf("extracting %s: %w", name, err)
	}
	return f.Close()
}

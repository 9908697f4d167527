package fastq

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"path/filepath"
)

// ContentMD5 returns the hex digest of the decoded content of path.
// Gzip files hash to the same digest as their plain equivalent, which
// is what makes round-trip checks independent of outer framing.
func ContentMD5(path string) (string, error) {
	r, err := OpenDecoded(path)
	if err != nil {
		return "", err
	}
	defer r.Close()

	h := md5.New()
	if _, err := io.Copy(h, r); err != nil {
		return "", fmt.Errorf("hashing %s: %w", filepath.Base(path), err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

package zfq

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"time"
)

// Metadata describes the source file an archive was built from. The
// JSON field names match the info.json entry inside the archive.
type Metadata struct {
	// Records is the number of newline-terminated quality lines, which
	// equals the number of records when the source ends in a newline.
	Records int64 `json:"seq"`

	// Nucleotides is the byte length of the quality column, line
	// endings included.
	Nucleotides int64 `json:"nt"`

	// SourceMD5 is the hex digest of the decoded source content.
	SourceMD5 string `json:"md5"`

	// SourceMtime is the source file's modification time in fractional
	// seconds since the epoch.
	SourceMtime float64 `json:"mtime"`
}

// ModTime returns SourceMtime as a time.Time.
func (m Metadata) ModTime() time.Time {
	sec, frac := math.Modf(m.SourceMtime)
	return time.Unix(int64(sec), int64(frac*float64(time.Second)))
}

// mtimeOf returns path's modification time in fractional seconds since
// the epoch.
func mtimeOf(path string) (float64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	return float64(info.ModTime().UnixNano()) / float64(time.Second), nil
}

// collectMetadata scans the quality column file, whose line and byte
// counts mirror the record and nucleotide counts of the source, and
// combines them with the source digest and mtime captured earlier.
func collectMetadata(qualPath, sourceMD5 string, sourceMtime float64) (Metadata, error) {
	f, err := os.Open(qualPath)
	if err != nil {
		return Metadata{}, fmt.Errorf("opening quality column: %w", err)
	}
	defer f.Close()

	md := Metadata{SourceMD5: sourceMD5, SourceMtime: sourceMtime}
	buf := make([]byte, 64*1024)
	for {
		n, err := f.Read(buf)
		md.Nucleotides += int64(n)
		md.Records += int64(bytes.Count(buf[:n], []byte{'\n'}))
		if err == io.EOF {
			return md, nil
		}
		if err != nil {
			return Metadata{}, fmt.Errorf("scanning quality column: %w", err)
		}
	}
}

// writeMetadata stores md as the info.json payload at path.
func writeMetadata(path string, md Metadata) error {
	data, err := json.Marshal(md)
	if err != nil {
		return fmt.Errorf("encoding archive metadata: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing archive metadata: %w", err)
	}
	return nil
}

// parseMetadata decodes an info.json payload.
func parseMetadata(data []byte) (Metadata, error) {
	var md Metadata
	if err := json.Unmarshal(data, &md); err != nil {
		return Metadata{}, fmt.Errorf("decoding archive metadata: %w", err)
	}
	return md, nil
}

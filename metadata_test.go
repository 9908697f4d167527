package zfq

import (
	"math"
	"os"
	"path/filepath"
	"testing"
)

func TestCollectMetadata_Counts(t *testing.T) {
	dir := t.TempDir()
	qual := filepath.Join(dir, "qual.txt")
	// Two quality lines of 4 and 2 characters: 2 records, 8 bytes
	// with line endings included.
	if err := os.WriteFile(qual, []byte("IIII\nJJ\n"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	md, err := collectMetadata(qual, "d41d8cd98f00b204e9800998ecf8427e", 1700000000.25)
	if err != nil {
		t.Fatalf("collectMetadata() error = %v", err)
	}
	if md.Records != 2 {
		t.Errorf("Records = %d, want 2", md.Records)
	}
	if md.Nucleotides != 8 {
		t.Errorf("Nucleotides = %d, want 8", md.Nucleotides)
	}
	if md.SourceMD5 != "d41d8cd98f00b204e9800998ecf8427e" {
		t.Errorf("SourceMD5 = %q", md.SourceMD5)
	}
	if md.SourceMtime != 1700000000.25 {
		t.Errorf("SourceMtime = %v, want 1700000000.25", md.SourceMtime)
	}
}

func TestCollectMetadata_EmptyColumn(t *testing.T) {
	dir := t.TempDir()
	qual := filepath.Join(dir, "qual.txt")
	if err := os.WriteFile(qual, nil, 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	md, err := collectMetadata(qual, "", 0)
	if err != nil {
		t.Fatalf("collectMetadata() error = %v", err)
	}
	if md.Records != 0 || md.Nucleotides != 0 {
		t.Errorf("counts = %d/%d, want 0/0", md.Records, md.Nucleotides)
	}
}

func TestMetadata_ModTime(t *testing.T) {
	md := Metadata{SourceMtime: 1700000000.5}
	got := md.ModTime()
	if got.Unix() != 1700000000 {
		t.Errorf("ModTime().Unix() = %d, want 1700000000", got.Unix())
	}
	if got.Nanosecond() != 500000000 {
		t.Errorf("ModTime().Nanosecond() = %d, want 500000000", got.Nanosecond())
	}
}

func TestMetadata_JSONRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "info.json")

	want := Metadata{
		Records:     1500,
		Nucleotides: 227000,
		SourceMD5:   "0123456789abcdef0123456789abcdef",
		SourceMtime: 1699999999.875,
	}
	if err := writeMetadata(path, want); err != nil {
		t.Fatalf("writeMetadata() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	got, err := parseMetadata(data)
	if err != nil {
		t.Fatalf("parseMetadata() error = %v", err)
	}
	if got != want {
		t.Errorf("parseMetadata() = %+v, want %+v", got, want)
	}
}

func TestParseMetadata_FieldNames(t *testing.T) {
	md, err := parseMetadata([]byte(`{"seq": 3, "nt": 12, "md5": "abc", "mtime": 12.5}`))
	if err != nil {
		t.Fatalf("parseMetadata() error = %v", err)
	}
	if md.Records != 3 || md.Nucleotides != 12 || md.SourceMD5 != "abc" || md.SourceMtime != 12.5 {
		t.Errorf("parseMetadata() = %+v", md)
	}
}

func TestParseMetadata_Garbage(t *testing.T) {
	if _, err := parseMetadata([]byte("not json")); err == nil {
		t.Error("parseMetadata() expected error on garbage input")
	}
}

func TestMtimeOf(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "f")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	got, err := mtimeOf(path)
	if err != nil {
		t.Fatalf("mtimeOf() error = %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat() error = %v", err)
	}
	want := float64(info.ModTime().UnixNano()) / 1e9
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("mtimeOf() = %v, want %v", got, want)
	}
}

func TestMtimeOf_Missing(t *testing.T) {
	if _, err := mtimeOf(filepath.Join(t.TempDir(), "absent")); err == nil {
		t.Error("mtimeOf() expected error for missing file")
	}
}

package harness

import (
	"compress/gzip"
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"

	"github.com/seqarc/zfq"
	"github.com/seqarc/zfq/benchmark/dataset"
)

const sampleFastq = "@read/1 lane=3\nACGT\n+\nIIII\n@read/2 lane=3\nGG\n+\nJJ\n"

func contentMD5(s string) string {
	sum := md5.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}

func newTestFetcher(t *testing.T) *dataset.Fetcher {
	t.Helper()
	cache, err := dataset.NewCache(t.TempDir(), 8)
	if err != nil {
		t.Fatalf("NewCache: %v", err)
	}
	return dataset.NewFetcher(cache, []dataset.Source{dataset.NewFileSource()})
}

func newTestArchiver(t *testing.T) *zfq.Archiver {
	t.Helper()
	a, err := zfq.New()
	if err != nil {
		t.Fatalf("zfq.New: %v", err)
	}
	return a
}

func writeSample(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(sampleFastq), 0o644); err != nil {
		t.Fatalf("writing sample: %v", err)
	}
	return path
}

// fakeShell replaces the real shell with an in-process identity
// compressor. Commands look like "copy IN OUT". The first failFirst
// calls fail without producing output.
type fakeShell struct {
	mu        sync.Mutex
	calls     int
	failFirst int
}

func (f *fakeShell) run(ctx context.Context, cmdline, dir string) (Execution, error) {
	f.mu.Lock()
	f.calls++
	n := f.calls
	f.mu.Unlock()

	if n <= f.failFirst {
		return Execution{}, errors.New("transient failure")
	}
	parts := strings.Fields(cmdline)
	if len(parts) != 3 || parts[0] != "copy" {
		return Execution{}, fmt.Errorf("unexpected command %q", cmdline)
	}
	if err := copyFile(parts[1], parts[2]); err != nil {
		return Execution{}, err
	}
	return Execution{Seconds: 0.01, MaxRSS: 4096}, nil
}

var copyAlgo = Algorithm{
	Soft:          "copy",
	CompressCmd:   "copy #IN# #OUT#",
	DecompressCmd: "copy #IN# #OUT#",
}

// collectorSink records rows and flushes in memory.
type collectorSink struct {
	rows    []Row
	flushes int
}

func (c *collectorSink) WriteRow(row Row) error {
	c.rows = append(c.rows, row)
	return nil
}

func (c *collectorSink) Flush() error {
	c.flushes++
	return nil
}

func TestRunnerRun_ShellIdentity(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("needs a POSIX shell")
	}

	src := writeSample(t, "reads.fastq")
	workDir := filepath.Join(t.TempDir(), "work")
	r := NewRunner(newTestFetcher(t), newTestArchiver(t), workDir)

	algo := Algorithm{
		Soft:          "cp",
		CompressCmd:   "cp #IN# #OUT#",
		DecompressCmd: "cp #IN# #OUT#",
	}
	datasets := []dataset.Dataset{{Name: "local", Paths: []string{src}}}

	rows, err := r.Run(context.Background(), datasets, []Algorithm{algo}, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}

	row := rows[0]
	if !row.Compress.OK || !row.Decompress.OK {
		t.Fatalf("measurements not OK: compress %+v, decompress %+v", row.Compress, row.Decompress)
	}
	if !row.Verified() {
		t.Errorf("row not verified: expected %s, got %s", row.ExpectedHash, row.DecompressHash)
	}
	if row.ExpectedHash != contentMD5(sampleFastq) {
		t.Errorf("ExpectedHash = %s, want %s", row.ExpectedHash, contentMD5(sampleFastq))
	}
	if row.Compress.Size != int64(len(sampleFastq)) {
		t.Errorf("Compress.Size = %d, want %d", row.Compress.Size, len(sampleFastq))
	}
	if got := row.CompressionRatio(); got != 1 {
		t.Errorf("CompressionRatio = %f, want 1", got)
	}
	if row.Compress.Seconds <= 0 {
		t.Errorf("Compress.Seconds = %f, want > 0", row.Compress.Seconds)
	}
	if row.Compress.Retries != 0 || row.Compress.Err != "" {
		t.Errorf("unexpected failure record: %+v", row.Compress)
	}

	entries, err := os.ReadDir(workDir)
	if err != nil {
		t.Fatalf("reading working directory: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("working directory not cleaned up: %d entries left", len(entries))
	}
}

func TestRunnerRun_GzipInput(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "reads.fastq.gz")
	f, err := os.Create(src)
	if err != nil {
		t.Fatalf("creating source: %v", err)
	}
	gz := gzip.NewWriter(f)
	if _, err := gz.Write([]byte(sampleFastq)); err != nil {
		t.Fatalf("writing gzip: %v", err)
	}
	if err := gz.Close(); err != nil {
		t.Fatalf("closing gzip: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("closing source: %v", err)
	}

	r := NewRunner(newTestFetcher(t), newTestArchiver(t), filepath.Join(t.TempDir(), "work"))
	r.execute = (&fakeShell{}).run

	datasets := []dataset.Dataset{{Name: "gz", Paths: []string{src}}}
	rows, err := r.Run(context.Background(), datasets, []Algorithm{copyAlgo}, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}
	if rows[0].ExpectedHash != contentMD5(sampleFastq) {
		t.Errorf("ExpectedHash = %s, want hash of the decoded content", rows[0].ExpectedHash)
	}
	if !rows[0].Verified() {
		t.Error("row not verified")
	}
}

func TestRunnerRun_ArchiveInput(t *testing.T) {
	plain := writeSample(t, "reads.fastq")
	archive := filepath.Join(t.TempDir(), "reads.fastq.zfq")
	if _, err := newTestArchiver(t).Compress(context.Background(), plain, archive); err != nil {
		t.Fatalf("building archive: %v", err)
	}

	r := NewRunner(newTestFetcher(t), newTestArchiver(t), filepath.Join(t.TempDir(), "work"))
	r.execute = (&fakeShell{}).run

	datasets := []dataset.Dataset{{Name: "archived", Paths: []string{archive}}}
	rows, err := r.Run(context.Background(), datasets, []Algorithm{copyAlgo}, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}
	if rows[0].File != archive {
		t.Errorf("File = %q, want the source URI %q", rows[0].File, archive)
	}
	if rows[0].ExpectedHash != contentMD5(sampleFastq) {
		t.Errorf("ExpectedHash = %s, want hash of the reconstructed content", rows[0].ExpectedHash)
	}
	if !rows[0].Verified() {
		t.Error("row not verified")
	}
}

func TestRunnerRun_CommandFailure(t *testing.T) {
	src := writeSample(t, "reads.fastq")
	r := NewRunner(newTestFetcher(t), newTestArchiver(t), filepath.Join(t.TempDir(), "work"))
	r.execute = (&fakeShell{failFirst: 100}).run

	datasets := []dataset.Dataset{{Name: "local", Paths: []string{src}}}
	rows, err := r.Run(context.Background(), datasets, []Algorithm{copyAlgo}, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}

	row := rows[0]
	if row.Compress.OK || row.Decompress.OK {
		t.Error("measurements OK despite failing commands")
	}
	if row.Compress.Retries != 1 {
		t.Errorf("Compress.Retries = %d, want 1", row.Compress.Retries)
	}
	if row.Compress.Err != "transient failure" {
		t.Errorf("Compress.Err = %q", row.Compress.Err)
	}
	if row.DecompressHash != "" {
		t.Errorf("DecompressHash = %q, want empty", row.DecompressHash)
	}
	if row.Verified() {
		t.Error("failed row reports verified")
	}
}

func TestRunnerRun_RetrySucceeds(t *testing.T) {
	src := writeSample(t, "reads.fastq")
	r := NewRunner(newTestFetcher(t), newTestArchiver(t), filepath.Join(t.TempDir(), "work"),
		WithRetries(2))
	r.execute = (&fakeShell{failFirst: 1}).run

	datasets := []dataset.Dataset{{Name: "local", Paths: []string{src}}}
	rows, err := r.Run(context.Background(), datasets, []Algorithm{copyAlgo}, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	row := rows[0]
	if !row.Compress.OK {
		t.Fatalf("compress did not recover: %+v", row.Compress)
	}
	if row.Compress.Retries != 1 {
		t.Errorf("Compress.Retries = %d, want 1", row.Compress.Retries)
	}
	if row.Compress.Err != "transient failure" {
		t.Errorf("Compress.Err = %q, want the last failure kept", row.Compress.Err)
	}
	if row.Decompress.Retries != 0 {
		t.Errorf("Decompress.Retries = %d, want 0", row.Decompress.Retries)
	}
	if !row.Verified() {
		t.Error("row not verified after recovery")
	}
}

func TestRunnerRun_Sink(t *testing.T) {
	src1 := writeSample(t, "reads_1.fastq")
	src2 := writeSample(t, "reads_2.fastq")
	r := NewRunner(newTestFetcher(t), newTestArchiver(t), filepath.Join(t.TempDir(), "work"))
	r.execute = (&fakeShell{}).run

	second := copyAlgo
	second.Soft = "copy2"
	datasets := []dataset.Dataset{{Name: "local", Paths: []string{src1, src2}}}

	sink := &collectorSink{}
	rows, err := r.Run(context.Background(), datasets, []Algorithm{copyAlgo, second}, sink)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("got %d rows, want 4", len(rows))
	}
	if len(sink.rows) != 4 {
		t.Errorf("sink got %d rows, want 4", len(sink.rows))
	}
	if sink.flushes != 1 {
		t.Errorf("sink flushed %d times, want once per dataset", sink.flushes)
	}
}

func TestRunnerRun_MissingFile(t *testing.T) {
	r := NewRunner(newTestFetcher(t), newTestArchiver(t), filepath.Join(t.TempDir(), "work"))
	r.execute = (&fakeShell{}).run

	missing := filepath.Join(t.TempDir(), "none.fastq")
	datasets := []dataset.Dataset{{Name: "local", Paths: []string{missing}}}
	rows, err := r.Run(context.Background(), datasets, []Algorithm{copyAlgo}, nil)
	if !errors.Is(err, dataset.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if len(rows) != 0 {
		t.Errorf("got %d rows, want 0", len(rows))
	}
}

func TestFileMD5(t *testing.T) {
	path := filepath.Join(t.TempDir(), "x")
	if err := os.WriteFile(path, []byte("hello\n"), 0o644); err != nil {
		t.Fatalf("writing file: %v", err)
	}
	got, err := fileMD5(path)
	if err != nil {
		t.Fatalf("fileMD5: %v", err)
	}
	if got != "b1946ac92492d2347c6235b4d2611184" {
		t.Errorf("fileMD5 = %s", got)
	}
}

func TestRowCompressionRatio(t *testing.T) {
	row := Row{
		Compress:   Measurement{OK: true, Size: 250},
		Decompress: Measurement{OK: true, Size: 1000},
	}
	if got := row.CompressionRatio(); got != 4 {
		t.Errorf("CompressionRatio = %f, want 4", got)
	}

	row.Compress.OK = false
	if got := row.CompressionRatio(); got != 0 {
		t.Errorf("CompressionRatio = %f, want 0 for failed compress", got)
	}
}

package harness

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/seqarc/zfq"
	"github.com/seqarc/zfq/benchmark/dataset"
	"github.com/seqarc/zfq/internal/fastq"
)

// archiveExt is the conventional file extension of zfq archives.
const archiveExt = ".zfq"

// Sink consumes rows as the runner produces them, so partial results
// survive an interrupted run.
type Sink interface {
	WriteRow(Row) error
	Flush() error
}

// Runner benchmarks algorithms over datasets inside a working
// directory. Each dataset file is materialized as plain FASTQ once,
// then handed to every algorithm in turn.
type Runner struct {
	fetcher  *dataset.Fetcher
	archiver *zfq.Archiver
	workDir  string
	retries  int
	logger   *zap.Logger
	execute  executeFunc
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithRetries sets how many times a failed command is retried before
// its row records the failure.
func WithRetries(n int) RunnerOption {
	return func(r *Runner) {
		r.retries = n
	}
}

// WithRunnerLogger sets the logger. The default discards all logs.
func WithRunnerLogger(logger *zap.Logger) RunnerOption {
	return func(r *Runner) {
		r.logger = logger
	}
}

// NewRunner creates a runner. The working directory is created on
// first use; it holds the plain copy of the current dataset file and
// one scratch directory per algorithm.
func NewRunner(fetcher *dataset.Fetcher, archiver *zfq.Archiver, workDir string, opts ...RunnerOption) *Runner {
	r := &Runner{
		fetcher:  fetcher,
		archiver: archiver,
		workDir:  workDir,
		logger:   zap.NewNop(),
		execute:  runShell,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run benchmarks every algorithm against every dataset file and
// returns the rows in order. When sink is non-nil, rows are also
// streamed to it as they are produced and it is flushed after each
// dataset. Command failures are recorded in rows; the returned error
// covers harness failures only.
func (r *Runner) Run(ctx context.Context, datasets []dataset.Dataset, algos []Algorithm, sink Sink) ([]Row, error) {
	if err := os.MkdirAll(r.workDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating working directory: %w", err)
	}

	var rows []Row
	for _, ds := range datasets {
		for _, uri := range ds.Paths {
			if err := ctx.Err(); err != nil {
				return rows, err
			}
			fileRows, err := r.benchFile(ctx, ds, uri, algos, sink)
			rows = append(rows, fileRows...)
			if err != nil {
				return rows, err
			}
		}
		if sink != nil {
			if err := sink.Flush(); err != nil {
				return rows, fmt.Errorf("flushing results: %w", err)
			}
		}
	}
	return rows, nil
}

func (r *Runner) benchFile(ctx context.Context, ds dataset.Dataset, uri string, algos []Algorithm, sink Sink) (rows []Row, err error) {
	r.logger.Info("processing file",
		zap.String("dataset", ds.Name),
		zap.String("file", uri))

	local, err := r.fetcher.Materialize(ctx, uri)
	if err != nil {
		return nil, fmt.Errorf("materializing %s: %w", uri, err)
	}
	plain, err := r.materializePlain(ctx, local)
	if err != nil {
		return nil, fmt.Errorf("preparing %s: %w", uri, err)
	}
	defer multierr.AppendInvoke(&err, multierr.Invoke(func() error {
		return os.Remove(plain)
	}))

	expected, err := fileMD5(plain)
	if err != nil {
		return nil, err
	}

	for _, algo := range algos {
		r.logger.Info("benchmarking",
			zap.String("soft", algo.Soft),
			zap.String("file", uri))
		row, err := r.benchAlgorithm(ctx, ds, uri, plain, expected, algo)
		if err != nil {
			return rows, err
		}
		rows = append(rows, row)
		if sink != nil {
			if err := sink.WriteRow(row); err != nil {
				return rows, fmt.Errorf("writing row: %w", err)
			}
		}
	}
	return rows, nil
}

// materializePlain produces the plain FASTQ for a local dataset file
// inside the working directory. Gzip files are decoded, zfq archives
// reconstructed, anything else copied as is.
func (r *Runner) materializePlain(ctx context.Context, local string) (string, error) {
	base := filepath.Base(local)
	switch {
	case strings.HasSuffix(base, ".gz"):
		plain := filepath.Join(r.workDir, strings.TrimSuffix(base, ".gz"))
		return plain, decodeToPlain(local, plain)
	case strings.HasSuffix(base, archiveExt):
		plain := filepath.Join(r.workDir, strings.TrimSuffix(base, archiveExt))
		if _, err := r.archiver.Uncompress(ctx, local, plain); err != nil {
			return "", err
		}
		return plain, nil
	default:
		plain := filepath.Join(r.workDir, base)
		return plain, copyFile(local, plain)
	}
}

func (r *Runner) benchAlgorithm(ctx context.Context, ds dataset.Dataset, uri, plain, expected string, algo Algorithm) (Row, error) {
	row := Row{
		Dataset:        ds.Name,
		Laboratory:     ds.Laboratory,
		InstrumentType: ds.InstrumentType,
		Matrix:         ds.Matrix,
		Design:         ds.Design,
		File:           uri,
		ExpectedHash:   expected,
		Soft:           algo.Soft,
		CompressCmd:    algo.CompressCmd,
		DecompressCmd:  algo.DecompressCmd,
	}

	algoDir, err := filepath.Abs(filepath.Join(r.workDir, algo.Soft))
	if err != nil {
		return row, err
	}
	if err := os.MkdirAll(algoDir, 0o755); err != nil {
		return row, fmt.Errorf("creating scratch directory: %w", err)
	}
	defer os.RemoveAll(algoDir)

	input := filepath.Join(algoDir, "tmp_in.fastq")
	if err := copyFile(plain, input); err != nil {
		return row, err
	}

	compressed := filepath.Join(algoDir, "tmp_c")
	r.measure(ctx, algo.CompressCmd, input, compressed, algoDir, &row.Compress)

	decompressed := filepath.Join(algoDir, "tmp_d")
	r.measure(ctx, algo.DecompressCmd, compressed, decompressed, algoDir, &row.Decompress)
	if row.Decompress.OK {
		hash, err := fileMD5(decompressed)
		if err != nil {
			return row, err
		}
		row.DecompressHash = hash
	}
	return row, nil
}

// measure runs a command template until it succeeds or the retry
// budget is spent, recording the outcome in m.
func (r *Runner) measure(ctx context.Context, template, in, out, dir string, m *Measurement) {
	cmdline := expandCommand(template, in, out)
	r.logger.Debug("running", zap.String("cmd", cmdline))

	for attempt := 0; attempt <= r.retries; attempt++ {
		if ctx.Err() != nil {
			return
		}
		res, err := r.execute(ctx, cmdline, dir)
		if err == nil {
			var info os.FileInfo
			info, err = os.Stat(out)
			if err == nil {
				m.OK = true
				m.Seconds = res.Seconds
				m.MaxRSS = res.MaxRSS
				m.Size = info.Size()
				return
			}
			err = fmt.Errorf("no output produced: %w", err)
		}
		m.Retries++
		m.Err = err.Error()
		r.logger.Warn("command failed",
			zap.String("cmd", cmdline),
			zap.Int("attempt", attempt+1),
			zap.Error(err))
	}
}

// fileMD5 hashes the file bytes as stored, with no content decoding.
// Round-trip checks compare outputs byte for byte.
func fileMD5(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := md5.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hashing %s: %w", filepath.Base(path), err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func decodeToPlain(src, dest string) (err error) {
	in, err := fastq.OpenDecoded(src)
	if err != nil {
		return err
	}
	defer multierr.AppendInvoke(&err, multierr.Close(in))

	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("decoding %s: %w", filepath.Base(src), err)
	}
	return out.Close()
}

func copyFile(src, dest string) (err error) {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer multierr.AppendInvoke(&err, multierr.Close(in))

	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copying %s: %w", filepath.Base(src), err)
	}
	return out.Close()
}

// Package zfq transcodes four-line sequencing records (FASTQ) into a
// compact columnar archive and back.
//
// Compression splits the interleaved stream into three column files
// (headers, sequences, qualities), block-compresses each column, and
// packages the results with metadata into a single tar container.
// Decompression reverses the transform. No sequence boundaries are
// stored: a record's sequence is exactly as long as its quality
// string, so boundaries are recovered from quality-line lengths.
//
// Example usage:
//
//	a, err := zfq.New(zfq.WithThreads(4))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	meta, err := a.Compress(ctx, "reads.fastq", "reads.zfq")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("%d records archived\n", meta.Records)
package zfq

import (
	"errors"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/seqarc/zfq/internal/codec"
	"github.com/seqarc/zfq/internal/stats"
)

// Column entry names inside the archive. Compressed columns carry the
// codec extension on top (e.g. head.txt.zst).
const (
	headEntry = "head.txt"
	seqEntry  = "seq.fa"
	qualEntry = "qual.txt"
	infoEntry = "info.json"
)

// Sentinel errors for well-defined error conditions.
var (
	// ErrContentMismatch indicates a round-trip content hash did not
	// match the hash recorded at compression time.
	ErrContentMismatch = errors.New("zfq: content hash mismatch")

	// ErrNoCodec indicates the Archiver was configured without a codec.
	ErrNoCodec = errors.New("zfq: no codec provided")
)

// Archiver performs compress, uncompress and verify operations.
// An Archiver is safe for concurrent use: every operation stages its
// intermediate files in a private workspace.
type Archiver struct {
	codec         codec.Codec
	threads       int
	skipVerify    bool
	workspaceRoot string
	stats         stats.Collector
	logger        *zap.Logger
}

// New creates an Archiver with the given options. The defaults use the
// native zstd codec, a single compression thread and full round-trip
// verification.
func New(opts ...Option) (*Archiver, error) {
	cfg := defaultOptions()
	for _, opt := range opts {
		opt.apply(&cfg)
	}

	if cfg.codec == nil {
		return nil, ErrNoCodec
	}
	if cfg.threads < 1 {
		cfg.threads = 1
	}

	a := &Archiver{
		codec:         cfg.codec,
		threads:       cfg.threads,
		skipVerify:    cfg.skipVerify,
		workspaceRoot: cfg.workspaceRoot,
		stats:         cfg.stats,
		logger:        cfg.logger,
	}

	a.logger.Debug("archiver initialized",
		zap.String("codec", a.codec.Extension()),
		zap.Int("threads", a.threads),
		zap.Bool("skipVerify", a.skipVerify),
	)
	return a, nil
}

// workspaceDir returns the directory workspaces are created under for
// an operation writing to dest. Keeping the workspace beside the
// destination keeps the final rename on one filesystem.
func (a *Archiver) workspaceDir(dest string) string {
	if a.workspaceRoot != "" {
		return a.workspaceRoot
	}
	return filepath.Dir(dest)
}

// requiredEntries returns the three column entry names with the codec
// extension, in container order, followed by the metadata entry.
func (a *Archiver) requiredEntries() []string {
	ext := a.codec.Extension()
	return []string{
		headEntry + "." + ext,
		seqEntry + "." + ext,
		qualEntry + "." + ext,
		infoEntry,
	}
}

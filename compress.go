package zfq

import (
	"bufio"
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/seqarc/zfq/internal/archive"
	"github.com/seqarc/zfq/internal/codec"
	"github.com/seqarc/zfq/internal/fastq"
	"github.com/seqarc/zfq/internal/stats"
	"github.com/seqarc/zfq/internal/workspace"
)

const columnBufSize = 1 << 20

// Compress reads the FASTQ file at src, splits it into columns,
// compresses each column and packages the results with metadata into
// an archive at dest. Gzipped sources are decoded transparently. The
// archive's mtime is set to the source's mtime, and unless the
// Archiver was built with WithSkipVerify the archive is decompressed
// once more and checked against the source digest before Compress
// returns.
func (a *Archiver) Compress(ctx context.Context, src, dest string) (md Metadata, err error) {
	start := time.Now()

	mtime, err := mtimeOf(src)
	if err != nil {
		return Metadata{}, fmt.Errorf("stating source: %w", err)
	}

	ws, err := workspace.New(a.workspaceDir(dest))
	if err != nil {
		return Metadata{}, err
	}
	defer multierr.AppendInvoke(&err, multierr.Invoke(ws.Close))

	digest, records, err := a.splitColumns(src, ws)
	if err != nil {
		return Metadata{}, err
	}

	md, err = collectMetadata(ws.Join(qualEntry), digest, mtime)
	if err != nil {
		return Metadata{}, err
	}
	if err := writeMetadata(ws.Join(infoEntry), md); err != nil {
		return Metadata{}, err
	}

	entries, err := a.compressColumns(ctx, ws)
	if err != nil {
		return Metadata{}, err
	}
	entries = append(entries, archive.Entry{Name: infoEntry, Path: ws.Join(infoEntry)})

	if err := archive.Write(dest, entries, md.ModTime()); err != nil {
		return Metadata{}, err
	}

	if !a.skipVerify {
		if err := a.selfCheck(ctx, dest); err != nil {
			a.stats.IncCounter(stats.MetricVerifyFailures, 1)
			return Metadata{}, err
		}
	}

	elapsed := time.Since(start)
	a.stats.IncCounter(stats.MetricCompressOps, 1)
	a.stats.IncCounter(stats.MetricRecords, records)
	a.stats.IncCounter(stats.MetricNucleotides, md.Nucleotides)
	if info, statErr := os.Stat(dest); statErr == nil {
		a.stats.SetGauge(stats.MetricArchiveBytes, info.Size())
	}
	a.stats.ObserveHistogram(stats.MetricCompressSeconds, elapsed.Seconds())

	a.logger.Info("compressed",
		zap.String("source", src),
		zap.String("archive", dest),
		zap.Int64("records", records),
		zap.Int64("nucleotides", md.Nucleotides),
		zap.Duration("elapsed", elapsed),
	)
	return md, nil
}

// splitColumns streams the decoded source into the three column files
// inside ws, hashing the decoded content on the way through. It
// returns the content digest and the record count.
func (a *Archiver) splitColumns(src string, ws *workspace.Workspace) (digest string, records int64, err error) {
	in, err := fastq.OpenDecoded(src)
	if err != nil {
		return "", 0, fmt.Errorf("opening source: %w", err)
	}
	defer multierr.AppendInvoke(&err, multierr.Close(in))

	head, err := createColumn(ws.Join(headEntry))
	if err != nil {
		return "", 0, err
	}
	defer multierr.AppendInvoke(&err, multierr.Close(head))

	seq, err := createColumn(ws.Join(seqEntry))
	if err != nil {
		return "", 0, err
	}
	defer multierr.AppendInvoke(&err, multierr.Close(seq))

	qual, err := createColumn(ws.Join(qualEntry))
	if err != nil {
		return "", 0, err
	}
	defer multierr.AppendInvoke(&err, multierr.Close(qual))

	hash := md5.New()
	records, err = fastq.Split(io.TeeReader(in, hash), fastq.Columns{
		Head: head,
		Seq:  seq,
		Qual: qual,
	})
	if err != nil {
		return "", 0, err
	}
	return hex.EncodeToString(hash.Sum(nil)), records, nil
}

// compressColumns compresses the three column files in place and
// returns the archive entries in container order. The sequence column
// gets the strongest level, which pays off on its low-entropy content.
func (a *Archiver) compressColumns(ctx context.Context, ws *workspace.Workspace) ([]archive.Entry, error) {
	columns := []struct {
		name string
		hint codec.Hint
	}{
		{headEntry, codec.Hint{Threads: a.threads}},
		{seqEntry, codec.Hint{Threads: a.threads, Level: codec.LevelBest}},
		{qualEntry, codec.Hint{Threads: a.threads}},
	}

	entries := make([]archive.Entry, 0, len(columns)+1)
	for _, col := range columns {
		path := ws.Join(col.name)
		packed, err := a.codec.Compress(ctx, path, col.hint)
		if err != nil {
			return nil, fmt.Errorf("compressing %s: %w", col.name, err)
		}
		if err := os.Remove(path); err != nil {
			return nil, fmt.Errorf("removing consumed column: %w", err)
		}
		entries = append(entries, archive.Entry{Name: filepath.Base(packed), Path: packed})
	}
	return entries, nil
}

// columnFile is a buffered column writer whose Close flushes first.
type columnFile struct {
	*bufio.Writer
	f *os.File
}

func createColumn(path string) (*columnFile, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating column %s: %w", filepath.Base(path), err)
	}
	return &columnFile{Writer: bufio.NewWriterSize(f, columnBufSize), f: f}, nil
}

func (c *columnFile) Close() error {
	return multierr.Append(c.Flush(), c.f.Close())
}

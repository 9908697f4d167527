package zfq

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/seqarc/zfq/internal/archive"
	"github.com/seqarc/zfq/internal/fastq"
	"github.com/seqarc/zfq/internal/stats"
	"github.com/seqarc/zfq/internal/workspace"
)

// Uncompress reconstructs the FASTQ file archived at src into dest.
// The output is gzip-encoded when dest ends in ".gz" and gets its
// mtime set to the archived source mtime. Unless the Archiver was
// built with WithSkipVerify, the reconstructed content is hashed and
// compared against the digest recorded at compression time; a mismatch
// is reported as ErrContentMismatch and the output is left in place
// for inspection.
func (a *Archiver) Uncompress(ctx context.Context, src, dest string) (md Metadata, err error) {
	start := time.Now()

	ws, err := workspace.New(a.workspaceDir(dest))
	if err != nil {
		return Metadata{}, err
	}
	defer multierr.AppendInvoke(&err, multierr.Invoke(ws.Close))

	extracted, err := archive.Read(src, ws.Path(), a.requiredEntries()...)
	if err != nil {
		return Metadata{}, fmt.Errorf("reading archive: %w", err)
	}

	info, err := os.ReadFile(extracted[infoEntry])
	if err != nil {
		return Metadata{}, fmt.Errorf("reading archive metadata: %w", err)
	}
	md, err = parseMetadata(info)
	if err != nil {
		return Metadata{}, err
	}

	if err := a.decompressColumns(ctx, ws); err != nil {
		return Metadata{}, err
	}

	records, err := a.reconstruct(ws, dest)
	if err != nil {
		return Metadata{}, err
	}

	mt := md.ModTime()
	if err := os.Chtimes(dest, mt, mt); err != nil {
		return Metadata{}, fmt.Errorf("setting output mtime: %w", err)
	}

	if !a.skipVerify {
		actual, err := fastq.ContentMD5(dest)
		if err != nil {
			return Metadata{}, fmt.Errorf("hashing output: %w", err)
		}
		if actual != md.SourceMD5 {
			a.stats.IncCounter(stats.MetricVerifyFailures, 1)
			return Metadata{}, fmt.Errorf("%w: output %s, archived %s", ErrContentMismatch, actual, md.SourceMD5)
		}
	}

	elapsed := time.Since(start)
	a.stats.IncCounter(stats.MetricUncompressOps, 1)
	a.stats.IncCounter(stats.MetricRecords, records)
	a.stats.ObserveHistogram(stats.MetricUncompressSeconds, elapsed.Seconds())

	a.logger.Info("uncompressed",
		zap.String("archive", src),
		zap.String("output", dest),
		zap.Int64("records", records),
		zap.Duration("elapsed", elapsed),
	)
	return md, nil
}

// Info returns the metadata of the archive at path without extracting
// the columns.
func (a *Archiver) Info(path string) (Metadata, error) {
	data, err := archive.ReadEntry(path, infoEntry)
	if err != nil {
		return Metadata{}, fmt.Errorf("reading archive metadata: %w", err)
	}
	return parseMetadata(data)
}

// decompressColumns expands the three extracted column files inside ws
// back to their plain forms, removing each compressed file once its
// plain form exists.
func (a *Archiver) decompressColumns(ctx context.Context, ws *workspace.Workspace) error {
	ext := "." + a.codec.Extension()
	for _, name := range []string{headEntry, seqEntry, qualEntry} {
		packed := ws.Join(name + ext)
		if _, err := a.codec.Decompress(ctx, packed); err != nil {
			return fmt.Errorf("decompressing %s: %w", name, err)
		}
		if err := os.Remove(packed); err != nil {
			return fmt.Errorf("removing consumed column: %w", err)
		}
	}
	return nil
}

// reconstruct interleaves the plain column files in ws back into a
// record stream. The stream is staged inside the workspace and renamed
// to dest only once it is complete, so a partial output is never
// visible at dest.
func (a *Archiver) reconstruct(ws *workspace.Workspace, dest string) (records int64, err error) {
	head, err := os.Open(ws.Join(headEntry))
	if err != nil {
		return 0, fmt.Errorf("opening header column: %w", err)
	}
	defer multierr.AppendInvoke(&err, multierr.Close(head))

	seq, err := os.Open(ws.Join(seqEntry))
	if err != nil {
		return 0, fmt.Errorf("opening sequence column: %w", err)
	}
	defer multierr.AppendInvoke(&err, multierr.Close(seq))

	qual, err := os.Open(ws.Join(qualEntry))
	if err != nil {
		return 0, fmt.Errorf("opening quality column: %w", err)
	}
	defer multierr.AppendInvoke(&err, multierr.Close(qual))

	// The staged name keeps the destination's gzip suffix so the
	// encoding decision matches the final name.
	staged := ws.Join("output.fastq")
	if strings.HasSuffix(dest, ".gz") {
		staged += ".gz"
	}
	out, err := fastq.CreateEncoded(staged)
	if err != nil {
		return 0, fmt.Errorf("creating output: %w", err)
	}

	records, err = fastq.Rebuild(head, seq, qual, out)
	if cerr := out.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("closing output: %w", cerr)
	}
	if err != nil {
		return records, err
	}

	if err := os.Rename(staged, dest); err != nil {
		return records, fmt.Errorf("renaming output into place: %w", err)
	}
	return records, nil
}

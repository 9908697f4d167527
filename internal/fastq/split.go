// Package fastq splits four-line sequencing records into columnar
// streams and reassembles them. The split stores no sequence
// boundaries: a record's sequence is exactly as long as its quality
// string, so boundaries are recovered from quality-line lengths.
package fastq

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
)

// SeqSentinel is the single line the sequence column starts with. It
// frames the column as FASTA-like text, which the block codec handles
// slightly better on this data profile.
const SeqSentinel = ">\n"

const bufSize = 1 << 20

// Sentinel errors for malformed record streams.
var (
	// ErrTruncatedRecord indicates the stream ended in the middle of a
	// four-line record.
	ErrTruncatedRecord = errors.New("fastq: truncated record")

	// ErrEmptyHeader indicates a record identifier line with no content.
	ErrEmptyHeader = errors.New("fastq: empty record identifier")

	// ErrColumnMismatch indicates the column streams disagree on record
	// count or sequence length.
	ErrColumnMismatch = errors.New("fastq: column streams out of step")
)

// Columns receives the three column streams produced by Split.
type Columns struct {
	Head io.Writer
	Seq  io.Writer
	Qual io.Writer
}

// Split reads four-line records from r and appends each field to its
// column: the identifier minus its leading marker byte (newline kept),
// the sequence with line endings stripped and no delimiter, and the
// quality line verbatim. The separator line is consumed unchecked. The
// sequence column is prefixed with SeqSentinel even when r is empty.
// Split returns the number of records consumed.
func Split(r io.Reader, cols Columns) (int64, error) {
	if _, err := io.WriteString(cols.Seq, SeqSentinel); err != nil {
		return 0, fmt.Errorf("writing sequence sentinel: %w", err)
	}

	br := bufio.NewReaderSize(r, bufSize)
	var n int64
	for {
		id, err := br.ReadBytes('\n')
		if err != nil && err != io.EOF {
			return n, fmt.Errorf("reading record identifier: %w", err)
		}
		if len(id) == 0 {
			return n, nil
		}
		if err == io.EOF {
			return n, fmt.Errorf("record %d ends at its identifier: %w", n+1, ErrTruncatedRecord)
		}
		if len(bytes.TrimRight(id, "\r\n")) == 0 {
			return n, fmt.Errorf("record %d: %w", n+1, ErrEmptyHeader)
		}

		seq, err := br.ReadBytes('\n')
		if err != nil && err != io.EOF {
			return n, fmt.Errorf("reading sequence line: %w", err)
		}
		if err == io.EOF {
			if len(seq) == 0 {
				return n, fmt.Errorf("record %d has no sequence line: %w", n+1, ErrTruncatedRecord)
			}
			return n, fmt.Errorf("record %d ends before its separator: %w", n+1, ErrTruncatedRecord)
		}

		if _, err := br.ReadBytes('\n'); err != nil {
			if err == io.EOF {
				return n, fmt.Errorf("record %d ends before its quality line: %w", n+1, ErrTruncatedRecord)
			}
			return n, fmt.Errorf("reading separator line: %w", err)
		}

		qual, err := br.ReadBytes('\n')
		if err != nil && err != io.EOF {
			return n, fmt.Errorf("reading quality line: %w", err)
		}
		if len(qual) == 0 {
			return n, fmt.Errorf("record %d has no quality line: %w", n+1, ErrTruncatedRecord)
		}

		if _, err := cols.Head.Write(id[1:]); err != nil {
			return n, fmt.Errorf("writing header column: %w", err)
		}
		if _, err := cols.Seq.Write(bytes.TrimRight(seq, "\r\n")); err != nil {
			return n, fmt.Errorf("writing sequence column: %w", err)
		}
		if _, err := cols.Qual.Write(qual); err != nil {
			return n, fmt.Errorf("writing quality column: %w", err)
		}
		n++
	}
}

package fastq

import (
	"bufio"
	"fmt"
	"io"
)

// Rebuild reconstructs the interleaved record stream from the three
// column streams and writes it to w. The sentinel prefix of the
// sequence column is discarded; for each header/quality line pair read
// in lockstep, the sequence slice is exactly as long as the quality
// line minus its newline. Rebuild returns the number of records
// emitted.
func Rebuild(head, seq, qual io.Reader, w io.Writer) (int64, error) {
	hr := bufio.NewReaderSize(head, bufSize)
	sr := bufio.NewReaderSize(seq, bufSize)
	qr := bufio.NewReaderSize(qual, bufSize)
	bw := bufio.NewWriterSize(w, bufSize)

	sentinel := make([]byte, len(SeqSentinel))
	if _, err := io.ReadFull(sr, sentinel); err != nil {
		return 0, fmt.Errorf("sequence column has no sentinel: %w", ErrColumnMismatch)
	}

	var n int64
	var seqBuf []byte
	for {
		h, err := hr.ReadBytes('\n')
		if err != nil && err != io.EOF {
			return n, fmt.Errorf("reading header column: %w", err)
		}
		q, err := qr.ReadBytes('\n')
		if err != nil && err != io.EOF {
			return n, fmt.Errorf("reading quality column: %w", err)
		}

		if len(h) == 0 && len(q) == 0 {
			break
		}
		if len(h) == 0 || len(q) == 0 {
			return n, fmt.Errorf("record %d: header and quality columns disagree: %w", n+1, ErrColumnMismatch)
		}

		recLen := len(q)
		if q[recLen-1] == '\n' {
			recLen--
		}
		if cap(seqBuf) < recLen {
			seqBuf = make([]byte, recLen)
		}
		s := seqBuf[:recLen]
		if _, err := io.ReadFull(sr, s); err != nil {
			return n, fmt.Errorf("record %d: sequence column ends early: %w", n+1, ErrColumnMismatch)
		}

		if err := writeRecord(bw, h, s, q); err != nil {
			return n, fmt.Errorf("writing record %d: %w", n+1, err)
		}
		n++
	}

	// Anything left in the sequence column means the columns disagree.
	switch _, err := sr.ReadByte(); err {
	case io.EOF:
	case nil:
		return n, fmt.Errorf("sequence column has trailing data: %w", ErrColumnMismatch)
	default:
		return n, fmt.Errorf("reading sequence column: %w", err)
	}

	if err := bw.Flush(); err != nil {
		return n, fmt.Errorf("flushing record stream: %w", err)
	}
	return n, nil
}

func writeRecord(w *bufio.Writer, header, sequence, quality []byte) error {
	if err := w.WriteByte('@'); err != nil {
		return err
	}
	if _, err := w.Write(header); err != nil {
		return err
	}
	if _, err := w.Write(sequence); err != nil {
		return err
	}
	if _, err := w.WriteString("\n+\n"); err != nil {
		return err
	}
	_, err := w.Write(quality)
	return err
}

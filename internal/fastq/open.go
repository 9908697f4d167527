package fastq

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/multierr"
)

// OpenDecoded opens path for reading, transparently decoding gzip
// content. Detection is by magic bytes, not file name.
func OpenDecoded(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	br := bufio.NewReaderSize(f, bufSize)
	magic, err := br.Peek(2)
	if err == nil && magic[0] == 0x1f && magic[1] == 0x8b {
		gz, err := gzip.NewReader(br)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("opening gzip stream: %w", err)
		}
		return &decodedReader{Reader: gz, closers: []io.Closer{gz, f}}, nil
	}
	// Too short to hold the magic, or plain text either way.
	return &decodedReader{Reader: br, closers: []io.Closer{f}}, nil
}

// CreateEncoded creates path for writing, gzip-encoding the stream when
// the name ends in ".gz". Gzip output uses the maximum level.
func CreateEncoded(path string) (io.WriteCloser, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	if !strings.HasSuffix(path, ".gz") {
		return f, nil
	}
	gz, err := gzip.NewWriterLevel(f, gzip.BestCompression)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("opening gzip writer: %w", err)
	}
	return &encodedWriter{gz: gz, file: f}, nil
}

type decodedReader struct {
	io.Reader
	closers []io.Closer
}

func (d *decodedReader) Close() error {
	var err error
	for _, c := range d.closers {
		err = multierr.Append(err, c.Close())
	}
	return err
}

type encodedWriter struct {
	gz   *gzip.Writer
	file *os.File
}

func (e *encodedWriter) Write(p []byte) (int, error) {
	return e.gz.Write(p)
}

func (e *encodedWriter) Close() error {
	return multierr.Append(e.gz.Close(), e.file.Close())
}

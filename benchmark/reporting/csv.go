package reporting

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/seqarc/zfq/benchmark/harness"
)

// csvHeader is the column layout of the metrics CSV.
var csvHeader = []string{
	"dataset",
	"laboratory", "instrument_type", "matrix", "design",
	"file", "expected_hash", "decompress_hash", "soft",
	"decompress_size", "decompress_time", "decompress_mem",
	"compress_size", "compress_time", "compress_mem",
	"decompress_cmd", "decompress_nb_retries", "decompress_error",
	"compress_cmd", "compress_nb_retries", "compress_error",
}

// CSVWriter streams benchmark rows as CSV. It implements harness.Sink,
// so the runner can persist partial results while a long run is still
// in flight.
type CSVWriter struct {
	w           *csv.Writer
	wroteHeader bool
}

var _ harness.Sink = (*CSVWriter)(nil)

// NewCSVWriter creates a new CSV writer over w.
func NewCSVWriter(w io.Writer) *CSVWriter {
	return &CSVWriter{w: csv.NewWriter(w)}
}

// WriteRow appends one benchmark row, preceded by the header on first
// use. Size, time, and memory cells stay empty for measurements that
// never succeeded.
func (c *CSVWriter) WriteRow(row harness.Row) error {
	if !c.wroteHeader {
		if err := c.w.Write(csvHeader); err != nil {
			return err
		}
		c.wroteHeader = true
	}
	return c.w.Write(record(row))
}

// Flush writes any buffered rows to the underlying writer.
func (c *CSVWriter) Flush() error {
	c.w.Flush()
	return c.w.Error()
}

func record(row harness.Row) []string {
	return []string{
		row.Dataset,
		row.Laboratory, row.InstrumentType, row.Matrix, row.Design,
		row.File, row.ExpectedHash, row.DecompressHash, row.Soft,
		measuredInt(row.Decompress, row.Decompress.Size),
		measuredFloat(row.Decompress, row.Decompress.Seconds),
		measuredInt(row.Decompress, row.Decompress.MaxRSS),
		measuredInt(row.Compress, row.Compress.Size),
		measuredFloat(row.Compress, row.Compress.Seconds),
		measuredInt(row.Compress, row.Compress.MaxRSS),
		row.DecompressCmd, strconv.Itoa(row.Decompress.Retries), row.Decompress.Err,
		row.CompressCmd, strconv.Itoa(row.Compress.Retries), row.Compress.Err,
	}
}

func measuredInt(m harness.Measurement, v int64) string {
	if !m.OK {
		return ""
	}
	return strconv.FormatInt(v, 10)
}

func measuredFloat(m harness.Measurement, v float64) string {
	if !m.OK {
		return ""
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

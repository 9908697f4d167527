package analysis

import "github.com/seqarc/zfq/benchmark/harness"

// Metric extracts one comparable value per benchmark row.
type Metric struct {
	// Name labels the metric in reports.
	Name string

	// HigherIsBetter orients winner selection.
	HigherIsBetter bool

	// Value extracts the metric from a row; ok reports whether the row
	// carries it.
	Value func(row harness.Row) (v float64, ok bool)
}

// Built-in metrics over benchmark rows.
var (
	// CompressionRatio is plain size over compressed size.
	CompressionRatio = Metric{
		Name:           "compression ratio",
		HigherIsBetter: true,
		Value: func(row harness.Row) (float64, bool) {
			v := row.CompressionRatio()
			return v, v > 0
		},
	}

	// CompressSeconds is the wall time of the compress command.
	CompressSeconds = Metric{
		Name: "compress time (s)",
		Value: func(row harness.Row) (float64, bool) {
			return row.Compress.Seconds, row.Compress.OK
		},
	}

	// DecompressSeconds is the wall time of the decompress command.
	DecompressSeconds = Metric{
		Name: "decompress time (s)",
		Value: func(row harness.Row) (float64, bool) {
			return row.Decompress.Seconds, row.Decompress.OK
		},
	}

	// CompressMaxRSS is the compress command's peak memory in bytes.
	CompressMaxRSS = Metric{
		Name: "compress peak RSS (bytes)",
		Value: func(row harness.Row) (float64, bool) {
			return float64(row.Compress.MaxRSS), row.Compress.OK && row.Compress.MaxRSS > 0
		},
	}
)

// Samples extracts metric values for one algorithm, in row order.
// Rows that do not carry the metric, failed runs for instance, are
// skipped.
func Samples(rows []harness.Row, soft string, metric Metric) []float64 {
	var out []float64
	for _, row := range rows {
		if row.Soft != soft {
			continue
		}
		if v, ok := metric.Value(row); ok {
			out = append(out, v)
		}
	}
	return out
}

// Algorithms lists the distinct algorithm names in first-seen order.
func Algorithms(rows []harness.Row) []string {
	var names []string
	seen := make(map[string]bool)
	for _, row := range rows {
		if !seen[row.Soft] {
			seen[row.Soft] = true
			names = append(names, row.Soft)
		}
	}
	return names
}

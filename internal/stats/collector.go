// Package stats provides a unified interface for collecting metrics.
package stats

// Metric names used throughout the library.
const (
	// Operation metrics.
	MetricCompressOps    = "zfq_compress_total"
	MetricUncompressOps  = "zfq_uncompress_total"
	MetricVerifyFailures = "zfq_verify_failures_total"

	// Volume metrics.
	MetricRecords      = "zfq_records_total"
	MetricNucleotides  = "zfq_nucleotides_total"
	MetricArchiveBytes = "zfq_archive_bytes"

	// Timing metrics.
	MetricCompressSeconds   = "zfq_compress_seconds"
	MetricUncompressSeconds = "zfq_uncompress_seconds"
)

// Collector defines the interface for collecting metrics.
type Collector interface {
	// IncCounter increments a counter metric by delta.
	IncCounter(name string, delta int64)

	// SetGauge sets a gauge metric to value.
	SetGauge(name string, value int64)

	// ObserveHistogram records a value in a histogram metric.
	ObserveHistogram(name string, value float64)
}

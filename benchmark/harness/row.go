package harness

// Measurement captures one direction, compress or decompress, of an
// algorithm run on one file.
type Measurement struct {
	OK      bool    // The command succeeded and produced output.
	Size    int64   // Output size in bytes.
	Seconds float64 // Wall clock time of the successful run.
	MaxRSS  int64   // Peak resident set size in bytes, 0 if unknown.
	Retries int     // Failed attempts.
	Err     string  // Error text of the last failed attempt.
}

// Row is one benchmark result: one algorithm applied to one dataset
// file.
type Row struct {
	Dataset        string
	Laboratory     string
	InstrumentType string
	Matrix         string
	Design         string

	File         string // Source URI as listed in the dataset config.
	ExpectedHash string // MD5 of the plain FASTQ input.
	Soft         string

	CompressCmd   string
	DecompressCmd string

	Compress       Measurement
	Decompress     Measurement
	DecompressHash string // MD5 of the decompressed output.
}

// Verified reports whether the decompressed output reproduced the
// input byte for byte.
func (r Row) Verified() bool {
	return r.Decompress.OK && r.DecompressHash == r.ExpectedHash
}

// CompressionRatio returns the plain size divided by the compressed
// size, or 0 when either measurement is missing. The plain size comes
// from the decompressed output, so a failed round trip has no ratio.
func (r Row) CompressionRatio() float64 {
	if !r.Compress.OK || !r.Decompress.OK || r.Compress.Size == 0 {
		return 0
	}
	return float64(r.Decompress.Size) / float64(r.Compress.Size)
}

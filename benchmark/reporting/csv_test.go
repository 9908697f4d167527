package reporting

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/seqarc/zfq/benchmark/harness"
)

func sampleRow() harness.Row {
	return harness.Row{
		Dataset:        "ERR1019034",
		Laboratory:     "innovation lab",
		InstrumentType: "NovaSeq",
		Matrix:         "metagenomic",
		Design:         "amplicon",
		File:           "https://example.org/reads.fastq.gz",
		ExpectedHash:   "b1946ac92492d2347c6235b4d2611184",
		DecompressHash: "b1946ac92492d2347c6235b4d2611184",
		Soft:           "zfq",
		CompressCmd:    "zfq compress -i #IN# -o #OUT#",
		DecompressCmd:  "zfq uncompress -i #IN# -o #OUT#",
		Compress:       harness.Measurement{OK: true, Size: 250, Seconds: 1.5, MaxRSS: 1048576},
		Decompress:     harness.Measurement{OK: true, Size: 1000, Seconds: 0.5, MaxRSS: 524288},
	}
}

func writeRows(t *testing.T, rows ...harness.Row) [][]string {
	t.Helper()
	var buf bytes.Buffer
	w := NewCSVWriter(&buf)
	for _, row := range rows {
		if err := w.WriteRow(row); err != nil {
			t.Fatalf("WriteRow: %v", err)
		}
	}
	if err := w.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("reading back CSV: %v", err)
	}
	return records
}

func TestCSVWriter(t *testing.T) {
	records := writeRows(t, sampleRow())
	if len(records) != 2 {
		t.Fatalf("got %d records, want header + 1 row", len(records))
	}

	for i, want := range csvHeader {
		if records[0][i] != want {
			t.Errorf("header[%d] = %q, want %q", i, records[0][i], want)
		}
	}

	want := []string{
		"ERR1019034",
		"innovation lab", "NovaSeq", "metagenomic", "amplicon",
		"https://example.org/reads.fastq.gz",
		"b1946ac92492d2347c6235b4d2611184", "b1946ac92492d2347c6235b4d2611184", "zfq",
		"1000", "0.5", "524288",
		"250", "1.5", "1048576",
		"zfq uncompress -i #IN# -o #OUT#", "0", "",
		"zfq compress -i #IN# -o #OUT#", "0", "",
	}
	if len(records[1]) != len(want) {
		t.Fatalf("row has %d cells, want %d", len(records[1]), len(want))
	}
	for i := range want {
		if records[1][i] != want[i] {
			t.Errorf("cell %s = %q, want %q", csvHeader[i], records[1][i], want[i])
		}
	}
}

func TestCSVWriter_HeaderOnce(t *testing.T) {
	records := writeRows(t, sampleRow(), sampleRow())
	if len(records) != 3 {
		t.Fatalf("got %d records, want header + 2 rows", len(records))
	}
}

func TestCSVWriter_FailedMeasurements(t *testing.T) {
	row := sampleRow()
	row.DecompressHash = ""
	row.Compress = harness.Measurement{Retries: 3, Err: "exit status 1: disk full"}
	row.Decompress = harness.Measurement{Retries: 1, Err: "no output produced"}

	records := writeRows(t, row)
	cells := records[1]
	byName := make(map[string]string, len(csvHeader))
	for i, name := range csvHeader {
		byName[name] = cells[i]
	}

	for _, name := range []string{
		"decompress_hash",
		"decompress_size", "decompress_time", "decompress_mem",
		"compress_size", "compress_time", "compress_mem",
	} {
		if byName[name] != "" {
			t.Errorf("%s = %q, want empty for a failed run", name, byName[name])
		}
	}
	if byName["compress_nb_retries"] != "3" {
		t.Errorf("compress_nb_retries = %q, want 3", byName["compress_nb_retries"])
	}
	if byName["compress_error"] != "exit status 1: disk full" {
		t.Errorf("compress_error = %q", byName["compress_error"])
	}
	if byName["decompress_nb_retries"] != "1" {
		t.Errorf("decompress_nb_retries = %q, want 1", byName["decompress_nb_retries"])
	}
	if byName["decompress_error"] != "no output produced" {
		t.Errorf("decompress_error = %q", byName["decompress_error"])
	}
}

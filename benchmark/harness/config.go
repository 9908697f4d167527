// Package harness runs compression algorithms over benchmark datasets
// and records per-file metrics: sizes, wall times, peak memory, and
// round-trip hashes.
package harness

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Command templates substitute these placeholders with the input and
// output paths of each run.
const (
	PlaceholderIn  = "#IN#"
	PlaceholderOut = "#OUT#"
)

// Algorithm describes one compressor under test as a pair of shell
// command templates. The JSON field names match the configuration
// files consumed by the benchmark driver.
type Algorithm struct {
	Soft          string `json:"soft"`
	CompressCmd   string `json:"compress_cmd"`
	DecompressCmd string `json:"decompress_cmd"`
}

// LoadAlgorithms reads an algorithm configuration file, a JSON array
// of algorithm descriptions.
func LoadAlgorithms(path string) ([]Algorithm, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading algorithm config: %w", err)
	}

	var algos []Algorithm
	if err := json.Unmarshal(data, &algos); err != nil {
		return nil, fmt.Errorf("decoding algorithm config: %w", err)
	}

	for i, a := range algos {
		if a.Soft == "" {
			return nil, fmt.Errorf("algorithm %d has no soft name", i)
		}
		for _, cmd := range []string{a.CompressCmd, a.DecompressCmd} {
			if !strings.Contains(cmd, PlaceholderIn) || !strings.Contains(cmd, PlaceholderOut) {
				return nil, fmt.Errorf("algorithm %q: commands need both %s and %s placeholders",
					a.Soft, PlaceholderIn, PlaceholderOut)
			}
		}
	}
	return algos, nil
}

// DefaultAlgorithms returns a baseline roster comparing zfq archives
// against general-purpose compressors. The zfq binary and the external
// tools must be on PATH.
func DefaultAlgorithms() []Algorithm {
	return []Algorithm{
		{
			Soft:          "zfq",
			CompressCmd:   "zfq compress -i #IN# -o #OUT#",
			DecompressCmd: "zfq uncompress -i #IN# -o #OUT#",
		},
		{
			Soft:          "gzip",
			CompressCmd:   "gzip -c #IN# > #OUT#",
			DecompressCmd: "gzip -d -c #IN# > #OUT#",
		},
		{
			Soft:          "zstd",
			CompressCmd:   "zstd -q -f -o #OUT# #IN#",
			DecompressCmd: "zstd -d -q -f -o #OUT# #IN#",
		},
	}
}

// expandCommand substitutes the input and output placeholders in a
// command template.
func expandCommand(template, in, out string) string {
	template = strings.ReplaceAll(template, PlaceholderIn, in)
	return strings.ReplaceAll(template, PlaceholderOut, out)
}

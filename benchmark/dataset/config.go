// Package dataset loads benchmark dataset descriptions and materializes
// their files locally, fetching remote objects through an LRU-bounded
// on-disk cache.
package dataset

import (
	"encoding/json"
	"fmt"
	"os"
)

// Dataset describes one benchmark dataset: a group of FASTQ files that
// share sequencing provenance. The JSON field names match the
// configuration files consumed by the benchmark driver.
type Dataset struct {
	Name           string `json:"name"`
	Laboratory     string `json:"laboratory"`
	InstrumentType string `json:"instrument_type"`
	Matrix         string `json:"matrix"`
	Design         string `json:"design"`

	// Paths lists the dataset files. Entries may be local paths,
	// http(s):// URLs, gs:// objects or prefixes, or s3:// objects.
	Paths []string `json:"paths"`
}

// LoadDatasets reads a dataset configuration file, a JSON array of
// dataset descriptions.
func LoadDatasets(path string) ([]Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading dataset config: %w", err)
	}

	var datasets []Dataset
	if err := json.Unmarshal(data, &datasets); err != nil {
		return nil, fmt.Errorf("decoding dataset config: %w", err)
	}

	for i, d := range datasets {
		if d.Name == "" {
			return nil, fmt.Errorf("dataset %d has no name", i)
		}
		if len(d.Paths) == 0 {
			return nil, fmt.Errorf("dataset %q has no paths", d.Name)
		}
	}
	return datasets, nil
}

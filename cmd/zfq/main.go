// Package main provides the zfq CLI tool for transcoding FASTQ files
// into columnar archives and back.
package main

import (
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

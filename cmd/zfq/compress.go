package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/seqarc/zfq"
)

var compressCmd = &cobra.Command{
	Use:   "compress",
	Short: "Compress a FASTQ file into a zfq archive",
	Long: `Compress a FASTQ file into a zfq archive.

The input may be plain or gzipped; detection is by content, not file
name. Unless --skip-check is given, the archive is decompressed once
more after writing and checked against the source digest.

Examples:
  # Default single-threaded compression
  zfq compress -i reads.fastq -o reads.zfq

  # Four codec threads, delete the input once the archive checks out
  zfq compress -i reads.fastq.gz -o reads.zfq -t 4 --remove`,
	RunE: runCompress,
}

var (
	compressInput   string
	compressOutput  string
	compressRemove  bool
	compressSkip    bool
	compressThreads int
)

func init() {
	compressCmd.Flags().StringVarP(&compressInput, "input", "i", "", "path to the FASTQ file, optionally gzipped")
	compressCmd.Flags().StringVarP(&compressOutput, "output", "o", "", "path of the archive to write")
	compressCmd.Flags().BoolVarP(&compressRemove, "remove", "r", false, "remove the input file after success")
	compressCmd.Flags().BoolVarP(&compressSkip, "skip-check", "s", false, "skip the round-trip digest check")
	compressCmd.Flags().IntVarP(&compressThreads, "threads", "t", 1, "number of codec threads")
	compressCmd.MarkFlagRequired("input")
	compressCmd.MarkFlagRequired("output")
	rootCmd.AddCommand(compressCmd)
}

func runCompress(cmd *cobra.Command, args []string) error {
	a, err := newArchiver(
		zfq.WithThreads(compressThreads),
		zfq.WithSkipVerify(compressSkip),
	)
	if err != nil {
		return err
	}

	if _, err := a.Compress(cmd.Context(), compressInput, compressOutput); err != nil {
		return fmt.Errorf("compressing %s: %w", compressInput, err)
	}

	if compressRemove {
		if err := os.Remove(compressInput); err != nil {
			return fmt.Errorf("removing input: %w", err)
		}
	}
	return nil
}

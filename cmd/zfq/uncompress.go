package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/seqarc/zfq"
)

var uncompressCmd = &cobra.Command{
	Use:   "uncompress",
	Short: "Restore a FASTQ file from a zfq archive",
	Long: `Restore a FASTQ file from a zfq archive.

The output is gzipped when its name ends in ".gz" and gets the mtime of
the file the archive was built from. Unless --skip-check is given, the
restored content is checked against the digest recorded at compression
time.

Examples:
  zfq uncompress -i reads.zfq -o reads.fastq

  # Gzip the output and delete the archive once it checks out
  zfq uncompress -i reads.zfq -o reads.fastq.gz --remove`,
	RunE: runUncompress,
}

var (
	uncompressInput  string
	uncompressOutput string
	uncompressRemove bool
	uncompressSkip   bool
)

func init() {
	uncompressCmd.Flags().StringVarP(&uncompressInput, "input", "i", "", "path to the zfq archive")
	uncompressCmd.Flags().StringVarP(&uncompressOutput, "output", "o", "", "path of the FASTQ file to write, gzipped when it ends in .gz")
	uncompressCmd.Flags().BoolVarP(&uncompressRemove, "remove", "r", false, "remove the archive after success")
	uncompressCmd.Flags().BoolVarP(&uncompressSkip, "skip-check", "s", false, "skip the digest check on the restored file")
	uncompressCmd.MarkFlagRequired("input")
	uncompressCmd.MarkFlagRequired("output")
	rootCmd.AddCommand(uncompressCmd)
}

func runUncompress(cmd *cobra.Command, args []string) error {
	a, err := newArchiver(zfq.WithSkipVerify(uncompressSkip))
	if err != nil {
		return err
	}

	if _, err := a.Uncompress(cmd.Context(), uncompressInput, uncompressOutput); err != nil {
		return fmt.Errorf("uncompressing %s: %w", uncompressInput, err)
	}

	if uncompressRemove {
		if err := os.Remove(uncompressInput); err != nil {
			return fmt.Errorf("removing archive: %w", err)
		}
	}
	return nil
}

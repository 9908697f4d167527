package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/seqarc/zfq"
	"github.com/seqarc/zfq/internal/codec/execcodec"
)

// version is overridden at build time with -ldflags.
var version = "dev"

var (
	// Global flags.
	logLevel    string
	useExternal bool
)

var rootCmd = &cobra.Command{
	Use:     "zfq",
	Short:   "Compress FASTQ files into columnar archives",
	Version: version,
	Long: `zfq splits four-line FASTQ records into header, sequence and quality
columns, compresses each column separately and packages them into a
single archive. Splitting the columns lets the compressor exploit the
very different redundancy of each stream.

Archives record the source digest, so every compress and uncompress is
round-trip checked by default.

Examples:
  # Compress a FASTQ file (gzipped input is handled transparently)
  zfq compress -i reads.fastq.gz -o reads.zfq -t 4

  # Restore it, gzipping the output
  zfq uncompress -i reads.zfq -o reads.fastq.gz

  # Show archive metadata
  zfq info -i reads.zfq`,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&logLevel, "log-level", "l", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&useExternal, "external", false, "shell out to the zstd binary instead of the built-in codec")
}

// newLogger builds the CLI logger at the requested level. Logs go to
// stderr, keeping stdout free for command output.
func newLogger() (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(logLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", logLevel, err)
	}
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.DisableStacktrace = true
	return cfg.Build()
}

// newArchiver assembles an archiver from the global flags plus any
// command-specific options.
func newArchiver(opts ...zfq.Option) (*zfq.Archiver, error) {
	logger, err := newLogger()
	if err != nil {
		return nil, err
	}

	base := []zfq.Option{zfq.WithLogger(logger)}
	if useExternal {
		base = append(base, zfq.WithCodec(execcodec.New()))
	}
	return zfq.New(append(base, opts...)...)
}

// Package main provides the zfq-bench CLI tool for benchmarking FASTQ
// compression algorithms on real sequencing datasets.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/seqarc/zfq"
	"github.com/seqarc/zfq/benchmark/analysis"
	"github.com/seqarc/zfq/benchmark/dataset"
	"github.com/seqarc/zfq/benchmark/harness"
	"github.com/seqarc/zfq/benchmark/reporting"
)

var (
	workingDir     string
	algorithmsFile string
	datasetsFile   string
	metricsFile    string
	outputFormat   string
	outputFile     string
	retries        int
	cacheDir       string
	cacheSize      int
	prefetchLimit  int
	logLevel       string
)

var rootCmd = &cobra.Command{
	Use:   "zfq-bench",
	Short: "Benchmark FASTQ compression algorithms",
	Long: `zfq-bench compares FASTQ compression algorithms on real datasets.

For every dataset file it restores a plain FASTQ copy, then runs each
algorithm's compress and decompress commands, recording sizes, wall
times, peak memory and round-trip hashes. Rows stream to a CSV metrics
file while the run is in flight.

Examples:
  # Benchmark the default algorithms (zfq, gzip, zstd)
  zfq-bench run -w /tmp/bench -d datasets.json -m metrics.csv

  # Custom algorithm set, markdown report
  zfq-bench run -w /tmp/bench -d datasets.json -a algorithms.json \
      -m metrics.csv --format markdown --output report.md`,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the benchmark",
	RunE:  runBenchmark,
}

func init() {
	runCmd.Flags().StringVarP(&workingDir, "working-dir", "w", "", "working directory for temporary files")
	runCmd.Flags().StringVarP(&algorithmsFile, "algorithms", "a", "", "algorithm configuration file (JSON, default: built-in zfq/gzip/zstd)")
	runCmd.Flags().StringVarP(&datasetsFile, "datasets", "d", "", "dataset configuration file (JSON)")
	runCmd.Flags().StringVarP(&metricsFile, "metrics", "m", "", "metrics output file (CSV)")
	runCmd.Flags().StringVarP(&outputFormat, "format", "f", "text", "report format: text, markdown")
	runCmd.Flags().StringVarP(&outputFile, "output", "o", "", "report file (default: stdout)")
	runCmd.Flags().IntVar(&retries, "retries", 0, "retries per failed command")
	runCmd.Flags().StringVar(&cacheDir, "cache-dir", "", "download cache directory (default: <working-dir>/cache)")
	runCmd.Flags().IntVar(&cacheSize, "cache-size", 32, "maximum cached downloads")
	runCmd.Flags().IntVar(&prefetchLimit, "prefetch-limit", dataset.DefaultPrefetchLimit, "concurrent downloads")
	runCmd.Flags().StringVarP(&logLevel, "log-level", "l", "info", "log level (debug, info, warn, error)")
	runCmd.MarkFlagRequired("working-dir")
	runCmd.MarkFlagRequired("datasets")
	runCmd.MarkFlagRequired("metrics")

	rootCmd.AddCommand(runCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newLogger builds the CLI logger at the requested level. Logs go to
// stderr, keeping stdout free for the report.
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

func runBenchmark(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	logger, err := newLogger()
	if err != nil {
		return err
	}

	// Load configurations.
	datasets, err := dataset.LoadDatasets(datasetsFile)
	if err != nil {
		return fmt.Errorf("loading datasets: %w", err)
	}
	if len(datasets) == 0 {
		return fmt.Errorf("no datasets in %s", datasetsFile)
	}

	algos := harness.DefaultAlgorithms()
	if algorithmsFile != "" {
		algos, err = harness.LoadAlgorithms(algorithmsFile)
		if err != nil {
			return fmt.Errorf("loading algorithms: %w", err)
		}
	}
	if len(algos) == 0 {
		return fmt.Errorf("no algorithms in %s", algorithmsFile)
	}

	// Assemble the fetcher.
	dir := cacheDir
	if dir == "" {
		dir = filepath.Join(workingDir, "cache")
	}
	cache, err := dataset.NewCache(dir, cacheSize)
	if err != nil {
		return fmt.Errorf("creating cache: %w", err)
	}

	sources, closeSources, err := buildSources(ctx, datasets)
	if err != nil {
		return err
	}
	defer closeSources()

	fetcher := dataset.NewFetcher(cache, sources,
		dataset.WithFetcherLogger(logger),
		dataset.WithPrefetchLimit(prefetchLimit))

	// Expand prefixes into concrete files and pull remote ones into
	// the cache up front.
	datasets, err = expandDatasets(ctx, fetcher, datasets)
	if err != nil {
		return err
	}

	var remote []string
	for _, ds := range datasets {
		for _, uri := range ds.Paths {
			if isRemote(uri) {
				remote = append(remote, uri)
			}
		}
	}
	if len(remote) > 0 {
		logger.Info("prefetching datasets", zap.Int("files", len(remote)))
		if err := fetcher.Prefetch(ctx, remote); err != nil {
			return fmt.Errorf("prefetching datasets: %w", err)
		}
	}

	archiver, err := zfq.New(zfq.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("creating archiver: %w", err)
	}

	// Stream rows to the metrics file as they are produced.
	mf, err := os.Create(metricsFile)
	if err != nil {
		return fmt.Errorf("creating metrics file: %w", err)
	}
	defer mf.Close()
	sink := reporting.NewCSVWriter(mf)

	runner := harness.NewRunner(fetcher, archiver, workingDir,
		harness.WithRetries(retries),
		harness.WithRunnerLogger(logger))

	rows, err := runner.Run(ctx, datasets, algos, sink)
	if err != nil {
		return err
	}
	if err := sink.Flush(); err != nil {
		return fmt.Errorf("flushing metrics: %w", err)
	}

	// Output the report.
	var output io.Writer = os.Stdout
	if outputFile != "" {
		f, err := os.Create(outputFile)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer f.Close()
		output = f
	}

	switch outputFormat {
	case "markdown":
		return writeMarkdownReport(output, datasets, algos, rows)
	default:
		return writeTextReport(output, datasets, algos, rows)
	}
}

// buildSources constructs one source per URI scheme the datasets use.
// Cloud clients are only dialed when a dataset actually needs them.
func buildSources(ctx context.Context, datasets []dataset.Dataset) ([]dataset.Source, func(), error) {
	schemes := make(map[string]bool)
	for _, ds := range datasets {
		for _, uri := range ds.Paths {
			switch {
			case strings.HasPrefix(uri, "gs://"):
				schemes["gs"] = true
			case strings.HasPrefix(uri, "s3://"):
				schemes["s3"] = true
			}
		}
	}

	sources := []dataset.Source{
		dataset.NewFileSource(),
		dataset.NewHTTPSource(dataset.WithHTTPProgress(dataset.DefaultProgressFunc)),
	}
	var closers []func() error
	cleanup := func() {
		for _, c := range closers {
			_ = c()
		}
	}

	if schemes["gs"] {
		gcs, err := dataset.NewGCSSource(ctx)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("creating GCS source: %w", err)
		}
		sources = append(sources, gcs)
		closers = append(closers, gcs.Close)
	}
	if schemes["s3"] {
		s3src, err := dataset.NewS3Source(ctx)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("creating S3 source: %w", err)
		}
		sources = append(sources, s3src)
	}

	return sources, cleanup, nil
}

// expandDatasets replaces directory and bucket prefixes (paths ending
// in "/") with the files they contain.
func expandDatasets(ctx context.Context, fetcher *dataset.Fetcher, datasets []dataset.Dataset) ([]dataset.Dataset, error) {
	out := make([]dataset.Dataset, 0, len(datasets))
	for _, ds := range datasets {
		var paths []string
		for _, uri := range ds.Paths {
			if !strings.HasSuffix(uri, "/") {
				paths = append(paths, uri)
				continue
			}
			members, err := fetcher.Resolve(ctx, uri)
			if err != nil {
				return nil, fmt.Errorf("listing %s: %w", uri, err)
			}
			paths = append(paths, members...)
		}
		ds.Paths = paths
		out = append(out, ds)
	}
	return out, nil
}

func isRemote(uri string) bool {
	return strings.Contains(uri, "://") && !strings.HasPrefix(uri, "file://")
}

func countVerified(rows []harness.Row, soft string) (total, verified int) {
	for _, row := range rows {
		if row.Soft != soft {
			continue
		}
		total++
		if row.Verified() {
			verified++
		}
	}
	return total, verified
}

func writeTextReport(w io.Writer, datasets []dataset.Dataset, algos []harness.Algorithm, rows []harness.Row) error {
	var files int
	for _, ds := range datasets {
		files += len(ds.Paths)
	}

	fmt.Fprintf(w, "FASTQ Compression Benchmark\n")
	fmt.Fprintf(w, "===========================\n\n")
	fmt.Fprintf(w, "Datasets:   %d\n", len(datasets))
	fmt.Fprintf(w, "Files:      %d\n", files)
	fmt.Fprintf(w, "Algorithms: %d\n\n", len(algos))

	fmt.Fprintf(w, "Results:\n")
	fmt.Fprintf(w, "--------\n\n")

	for _, soft := range analysis.Algorithms(rows) {
		ratio := analysis.Describe(analysis.Samples(rows, soft, analysis.CompressionRatio))
		compress := analysis.Describe(analysis.Samples(rows, soft, analysis.CompressSeconds))
		decompress := analysis.Describe(analysis.Samples(rows, soft, analysis.DecompressSeconds))
		total, verified := countVerified(rows, soft)
		fmt.Fprintf(w, "%s:\n", soft)
		fmt.Fprintf(w, "  Verified:        %d/%d\n", verified, total)
		fmt.Fprintf(w, "  Mean ratio:      %.2f\n", ratio.Mean)
		fmt.Fprintf(w, "  Median ratio:    %.2f\n", ratio.Median)
		fmt.Fprintf(w, "  Mean compress:   %.2fs\n", compress.Mean)
		fmt.Fprintf(w, "  Mean decompress: %.2fs\n\n", decompress.Mean)
	}

	multi := analysis.CompareAll(
		rows, algos[0].Soft, analysis.CompressionRatio,
		10000, // Bootstrap iterations.
		0.95,  // 95% confidence.
	)
	if multi != nil {
		fmt.Fprintf(w, "Statistical Analysis:\n")
		fmt.Fprintf(w, "---------------------\n\n")
		for _, comp := range multi.Comparisons {
			fmt.Fprintln(w, comp.Summary())
			fmt.Fprintln(w)
		}
	}

	return nil
}

func writeMarkdownReport(w io.Writer, datasets []dataset.Dataset, algos []harness.Algorithm, rows []harness.Row) error {
	var files int
	for _, ds := range datasets {
		files += len(ds.Paths)
	}

	report := reporting.NewMarkdownReport(w)
	report.WriteHeader("FASTQ Compression Benchmark")
	report.WriteMethodology(len(datasets), files, len(algos))
	report.WriteSummaryTable(rows)

	baseline := algos[0].Soft
	multi := analysis.CompareAll(
		rows, baseline, analysis.CompressionRatio,
		10000, // Bootstrap iterations.
		0.95,  // 95% confidence.
	)
	if multi != nil {
		for _, comp := range multi.Comparisons {
			report.WriteComparison(comp)
		}
	}

	if ratios := analysis.Samples(rows, baseline, analysis.CompressionRatio); len(ratios) > 0 {
		report.WriteDistributionChart(baseline+" Compression Ratio", ratios)
	}

	report.WriteFooter()
	return nil
}

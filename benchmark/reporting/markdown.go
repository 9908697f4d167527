// Package reporting renders benchmark results as CSV metrics files and
// Markdown reports.
package reporting

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/seqarc/zfq/benchmark/analysis"
	"github.com/seqarc/zfq/benchmark/harness"
)

// MarkdownReport generates benchmark reports in Markdown format.
type MarkdownReport struct {
	w io.Writer
}

// NewMarkdownReport creates a new Markdown report writer.
func NewMarkdownReport(w io.Writer) *MarkdownReport {
	return &MarkdownReport{w: w}
}

// WriteHeader writes the report header.
func (r *MarkdownReport) WriteHeader(title string) {
	fmt.Fprintf(r.w, "# %s\n\n", title)
	fmt.Fprintf(r.w, "Generated: %s\n\n", time.Now().Format(time.RFC3339))
}

// WriteMethodology writes the methodology section.
func (r *MarkdownReport) WriteMethodology(datasets, files, algorithms int) {
	fmt.Fprintln(r.w, "## Methodology")
	fmt.Fprintln(r.w)
	fmt.Fprintf(r.w, "- **Datasets:** %d\n", datasets)
	fmt.Fprintf(r.w, "- **FASTQ files:** %d\n", files)
	fmt.Fprintf(r.w, "- **Algorithms:** %d\n", algorithms)
	fmt.Fprintln(r.w, "- **Metrics:** compression ratio (higher is better), wall time and peak RSS per command")
	fmt.Fprintln(r.w, "- **Verification:** decompressed output is compared to the source file by MD5")
	fmt.Fprintln(r.w, "- **Statistical tests:** Mann-Whitney U (non-parametric), Cohen's d effect size")
	fmt.Fprintln(r.w)
}

// WriteSummaryTable writes a per-algorithm summary over all rows.
func (r *MarkdownReport) WriteSummaryTable(rows []harness.Row) {
	fmt.Fprintln(r.w, "## Summary")
	fmt.Fprintln(r.w)
	fmt.Fprintln(r.w, "| Algorithm | Files | Verified | Mean Ratio | Median Ratio | Mean Compress (s) | Mean Decompress (s) |")
	fmt.Fprintln(r.w, "|-----------|-------|----------|------------|--------------|-------------------|---------------------|")

	for _, soft := range analysis.Algorithms(rows) {
		ratio := analysis.Describe(analysis.Samples(rows, soft, analysis.CompressionRatio))
		compress := analysis.Describe(analysis.Samples(rows, soft, analysis.CompressSeconds))
		decompress := analysis.Describe(analysis.Samples(rows, soft, analysis.DecompressSeconds))
		total, verified := countVerified(rows, soft)
		fmt.Fprintf(r.w, "| %s | %d | %d | %.2f | %.2f | %.2f | %.2f |\n",
			soft, total, verified, ratio.Mean, ratio.Median, compress.Mean, decompress.Mean)
	}
	fmt.Fprintln(r.w)
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

// WriteComparison writes a detailed comparison section.
func (r *MarkdownReport) WriteComparison(comp *analysis.AlgorithmComparison) {
	fmt.Fprintf(r.w, "## %s vs %s: %s\n\n", comp.Algorithm1, comp.Algorithm2, comp.Metric.Name)

	// Statistics table.
	fmt.Fprintln(r.w, "### Descriptive Statistics")
	fmt.Fprintln(r.w)
	fmt.Fprintln(r.w, "| Metric | "+comp.Algorithm1+" | "+comp.Algorithm2+" |")
	fmt.Fprintln(r.w, "|--------|"+strings.Repeat("-", len(comp.Algorithm1)+2)+"|"+strings.Repeat("-", len(comp.Algorithm2)+2)+"|")
	fmt.Fprintf(r.w, "| Mean | %.3f | %.3f |\n", comp.Stats1.Mean, comp.Stats2.Mean)
	fmt.Fprintf(r.w, "| Median | %.3f | %.3f |\n", comp.Stats1.Median, comp.Stats2.Median)
	fmt.Fprintf(r.w, "| Std Dev | %.3f | %.3f |\n", comp.Stats1.StdDev, comp.Stats2.StdDev)
	fmt.Fprintf(r.w, "| Min | %.3f | %.3f |\n", comp.Stats1.Min, comp.Stats2.Min)
	fmt.Fprintf(r.w, "| Max | %.3f | %.3f |\n", comp.Stats1.Max, comp.Stats2.Max)
	fmt.Fprintln(r.w)

	// Statistical tests.
	fmt.Fprintln(r.w, "### Statistical Analysis")
	fmt.Fprintln(r.w)
	fmt.Fprintf(r.w, "- **Mann-Whitney U:** %.2f (z=%.2f, p=%.4f)\n",
		comp.MannWhitney.U, comp.MannWhitney.Z, comp.MannWhitney.PValue)
	fmt.Fprintf(r.w, "- **Effect size (Cohen's d):** %.2f (%s)\n",
		comp.EffectSize.CohensD, comp.EffectSize.Interpretation)
	fmt.Fprintf(r.w, "- **95%% CI for mean difference:** [%.3f, %.3f]\n",
		comp.BootstrapCI.LowerBound, comp.BootstrapCI.UpperBound)
	fmt.Fprintln(r.w)

	// Conclusion.
	fmt.Fprintln(r.w, "### Conclusion")
	fmt.Fprintln(r.w)
	if comp.WinnerConfident {
		fmt.Fprintf(r.w, "**%s** shows statistically significant improvement over %s ",
			comp.Winner, otherAlgorithm(comp.Winner, comp.Algorithm1, comp.Algorithm2))
		fmt.Fprintf(r.w, "(p < 0.05, effect size: %s).\n", comp.EffectSize.Interpretation)
	} else {
		fmt.Fprintln(r.w, "No statistically significant difference detected between algorithms (p >= 0.05).")
	}
	fmt.Fprintln(r.w)
}

func otherAlgorithm(winner, a1, a2 string) string {
	if winner == a1 {
		return a2
	}
	return a1
}

// WriteDistributionChart writes an ASCII distribution chart.
func (r *MarkdownReport) WriteDistributionChart(name string, data []float64) {
	fmt.Fprintf(r.w, "### %s Distribution\n\n", name)
	fmt.Fprintln(r.w, "```")

	// Create histogram.
	hist, edges := makeHistogram(data, 10)
	maxCount := 0
	for _, count := range hist {
		if count > maxCount {
			maxCount = count
		}
	}

	// Print histogram.
	width := 40
	for i, count := range hist {
		barLen := 0
		if maxCount > 0 {
			barLen = count * width / maxCount
		}
		bar := strings.Repeat("█", barLen)
		fmt.Fprintf(r.w, "%7.2f-%7.2f │ %s %d\n", edges[i], edges[i+1], bar, count)
	}

	fmt.Fprintln(r.w, "```")
	fmt.Fprintln(r.w)
}

func makeHistogram(data []float64, buckets int) ([]int, []float64) {
	hist := make([]int, buckets)
	edges := make([]float64, buckets+1)
	if len(data) == 0 {
		return hist, edges
	}

	min, max := data[0], data[0]
	for _, v := range data {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}

	if max == min {
		max = min + 1
	}

	bucketSize := (max - min) / float64(buckets)
	for i := range edges {
		edges[i] = min + float64(i)*bucketSize
	}

	for _, v := range data {
		bucket := int((v - min) / bucketSize)
		if bucket >= buckets {
			bucket = buckets - 1
		}
		hist[bucket]++
	}

	return hist, edges
}

// WriteFooter writes the report footer.
func (r *MarkdownReport) WriteFooter() {
	fmt.Fprintln(r.w, "---")
	fmt.Fprintln(r.w)
	fmt.Fprintln(r.w, "*Report generated by zfq-bench*")
}

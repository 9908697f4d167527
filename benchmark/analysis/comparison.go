package analysis

import (
	"fmt"

	"github.com/seqarc/zfq/benchmark/harness"
)

// AlgorithmComparison contains a full statistical comparison between
// two algorithms on one metric.
type AlgorithmComparison struct {
	Metric          Metric
	Algorithm1      string
	Algorithm2      string
	Stats1          *DescriptiveStats
	Stats2          *DescriptiveStats
	MannWhitney     *MannWhitneyResult
	EffectSize      *EffectSize
	BootstrapCI     *BootstrapResult
	Winner          string // Algorithm with the better mean, or "tie".
	WinnerConfident bool   // True if statistically significant.
}

// CompareAlgorithms performs a full statistical comparison between two
// algorithms on one metric over the given rows.
func CompareAlgorithms(rows []harness.Row, algo1, algo2 string, metric Metric, bootstrapIterations int, confidence float64) *AlgorithmComparison {
	sample1 := Samples(rows, algo1, metric)
	sample2 := Samples(rows, algo2, metric)

	stats1 := Describe(sample1)
	stats2 := Describe(sample2)
	mw := MannWhitneyU(sample1, sample2)

	winner := "tie"
	var confident bool
	switch {
	case stats1.N == 0 || stats2.N == 0 || stats1.Mean == stats2.Mean:
	case (stats1.Mean > stats2.Mean) == metric.HigherIsBetter:
		winner = algo1
		confident = mw.Significant
	default:
		winner = algo2
		confident = mw.Significant
	}

	return &AlgorithmComparison{
		Metric:          metric,
		Algorithm1:      algo1,
		Algorithm2:      algo2,
		Stats1:          stats1,
		Stats2:          stats2,
		MannWhitney:     mw,
		EffectSize:      ComputeEffectSize(sample1, sample2),
		BootstrapCI:     BootstrapConfidenceInterval(sample1, sample2, bootstrapIterations, confidence),
		Winner:          winner,
		WinnerConfident: confident,
	}
}

// Summary returns a human-readable summary of the comparison.
func (c *AlgorithmComparison) Summary() string {
	sig := "not statistically significant"
	if c.MannWhitney.Significant {
		sig = fmt.Sprintf("statistically significant (p=%.4f)", c.MannWhitney.PValue)
	}

	return fmt.Sprintf(
		"%s vs %s on %s:\n"+
			"  %s: mean=%.3f, median=%.3f, std=%.3f\n"+
			"  %s: mean=%.3f, median=%.3f, std=%.3f\n"+
			"  Difference: %.3f (%.1f%%)\n"+
			"  Effect size: %.2f (%s)\n"+
			"  Result: %s, %s",
		c.Algorithm1, c.Algorithm2, c.Metric.Name,
		c.Algorithm1, c.Stats1.Mean, c.Stats1.Median, c.Stats1.StdDev,
		c.Algorithm2, c.Stats2.Mean, c.Stats2.Median, c.Stats2.StdDev,
		c.Stats1.Mean-c.Stats2.Mean,
		safePctDiff(c.Stats1.Mean, c.Stats2.Mean),
		c.EffectSize.CohensD, c.EffectSize.Interpretation,
		c.Winner, sig,
	)
}

func safePctDiff(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return (a - b) / b * 100
}

// MultiComparison compares several algorithms against a baseline.
type MultiComparison struct {
	Baseline    string
	Comparisons []*AlgorithmComparison
}

// CompareAll compares every other algorithm in rows against the
// baseline on one metric. It returns nil when the baseline has no
// rows.
func CompareAll(rows []harness.Row, baseline string, metric Metric, bootstrapIterations int, confidence float64) *MultiComparison {
	names := Algorithms(rows)
	found := false
	for _, soft := range names {
		if soft == baseline {
			found = true
			break
		}
	}
	if !found {
		return nil
	}

	multi := &MultiComparison{Baseline: baseline}
	for _, soft := range names {
		if soft == baseline {
			continue
		}
		multi.Comparisons = append(multi.Comparisons,
			CompareAlgorithms(rows, baseline, soft, metric, bootstrapIterations, confidence))
	}
	return multi
}

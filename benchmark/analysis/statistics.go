// Package analysis provides statistical analysis of benchmark results.
package analysis

import (
	"math"
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// bootstrapSeed fixes the resampling sequence so repeated reports over
// the same rows agree.
const bootstrapSeed = 1

// MannWhitneyResult contains the result of a Mann-Whitney U test.
type MannWhitneyResult struct {
	U           float64 // U statistic.
	Z           float64 // Z score (normal approximation).
	PValue      float64 // Two-tailed p-value.
	Significant bool    // True if p < 0.05.
}

// MannWhitneyU performs the Mann-Whitney U test on two samples, a
// non-parametric test for whether the samples come from different
// distributions.
func MannWhitneyU(sample1, sample2 []float64) *MannWhitneyResult {
	n1 := float64(len(sample1))
	n2 := float64(len(sample2))
	if n1 == 0 || n2 == 0 {
		return &MannWhitneyResult{}
	}

	combined := make([]float64, 0, len(sample1)+len(sample2))
	combined = append(combined, sample1...)
	combined = append(combined, sample2...)
	ranks := rankAll(combined)

	var r1 float64
	for i := range sample1 {
		r1 += ranks[i]
	}

	u1 := r1 - n1*(n1+1)/2
	u2 := n1*n2 - u1
	u := math.Min(u1, u2)

	// Normal approximation for the null distribution of U.
	mu := n1 * n2 / 2
	sigma := math.Sqrt(n1 * n2 * (n1 + n2 + 1) / 12)
	var z float64
	if sigma > 0 {
		z = (u - mu) / sigma
	}
	p := 2 * normalCDF(-math.Abs(z))

	return &MannWhitneyResult{U: u, Z: z, PValue: p, Significant: p < 0.05}
}

// rankAll assigns ranks to values, tied values sharing their average
// rank. The result is index-aligned with values.
func rankAll(values []float64) []float64 {
	idx := make([]int, len(values))
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(a, b int) bool { return values[idx[a]] < values[idx[b]] })

	ranks := make([]float64, len(values))
	for i := 0; i < len(idx); {
		j := i
		for j < len(idx) && values[idx[j]] == values[idx[i]] {
			j++
		}
		avg := float64(i+j+1) / 2
		for k := i; k < j; k++ {
			ranks[idx[k]] = avg
		}
		i = j
	}
	return ranks
}

// normalCDF is the cumulative distribution function of the standard
// normal.
func normalCDF(x float64) float64 {
	return 0.5 * (1 + math.Erf(x/math.Sqrt2))
}

// EffectSize contains effect size metrics.
type EffectSize struct {
	CohensD        float64 // Cohen's d: (mean1 - mean2) / pooled std dev.
	Interpretation string  // "negligible", "small", "medium", "large".
}

// ComputeEffectSize computes Cohen's d effect size.
func ComputeEffectSize(sample1, sample2 []float64) *EffectSize {
	if len(sample1) == 0 || len(sample2) == 0 {
		return &EffectSize{Interpretation: "undefined"}
	}

	mean1, std1 := stat.MeanStdDev(sample1, nil)
	mean2, std2 := stat.MeanStdDev(sample2, nil)

	n1 := float64(len(sample1))
	n2 := float64(len(sample2))
	pooled := math.Sqrt(((n1-1)*std1*std1 + (n2-1)*std2*std2) / (n1 + n2 - 2))

	var d float64
	if pooled > 0 {
		d = (mean1 - mean2) / pooled
	}
	return &EffectSize{
		CohensD:        d,
		Interpretation: interpretCohensD(math.Abs(d)),
	}
}

func interpretCohensD(d float64) string {
	switch {
	case d < 0.2:
		return "negligible"
	case d < 0.5:
		return "small"
	case d < 0.8:
		return "medium"
	default:
		return "large"
	}
}

// BootstrapResult describes a confidence interval for the difference
// of two sample means.
type BootstrapResult struct {
	MeanDiff   float64
	LowerBound float64
	UpperBound float64
	Confidence float64 // e.g. 0.95 for a 95% CI.
}

// BootstrapConfidenceInterval computes a percentile-method confidence
// interval for the mean difference. Resampling is seeded, so repeated
// runs over the same samples agree.
func BootstrapConfidenceInterval(sample1, sample2 []float64, iterations int, confidence float64) *BootstrapResult {
	if len(sample1) == 0 || len(sample2) == 0 || iterations <= 0 {
		return &BootstrapResult{Confidence: confidence}
	}

	actual := stat.Mean(sample1, nil) - stat.Mean(sample2, nil)

	rng := rand.New(rand.NewSource(bootstrapSeed))
	diffs := make([]float64, iterations)
	scratch1 := make([]float64, len(sample1))
	scratch2 := make([]float64, len(sample2))
	for i := range diffs {
		resample(rng, sample1, scratch1)
		resample(rng, sample2, scratch2)
		diffs[i] = stat.Mean(scratch1, nil) - stat.Mean(scratch2, nil)
	}
	sort.Float64s(diffs)

	alpha := 1 - confidence
	lower := int(alpha / 2 * float64(iterations))
	upper := int((1 - alpha/2) * float64(iterations))
	if lower < 0 {
		lower = 0
	}
	if upper >= iterations {
		upper = iterations - 1
	}

	return &BootstrapResult{
		MeanDiff:   actual,
		LowerBound: diffs[lower],
		UpperBound: diffs[upper],
		Confidence: confidence,
	}
}

// resample fills dst with a bootstrap resample of sample, drawing with
// replacement.
func resample(rng *rand.Rand, sample, dst []float64) {
	for i := range dst {
		dst[i] = sample[rng.Intn(len(sample))]
	}
}

// DescriptiveStats contains basic descriptive statistics.
type DescriptiveStats struct {
	N      int
	Mean   float64
	Median float64
	StdDev float64
	Min    float64
	Max    float64
	P25    float64
	P75    float64
}

// Describe computes descriptive statistics for a sample.
func Describe(sample []float64) *DescriptiveStats {
	if len(sample) == 0 {
		return &DescriptiveStats{}
	}

	sorted := make([]float64, len(sample))
	copy(sorted, sample)
	sort.Float64s(sorted)

	mean, std := stat.MeanStdDev(sample, nil)
	return &DescriptiveStats{
		N:      len(sample),
		Mean:   mean,
		Median: stat.Quantile(0.5, stat.Empirical, sorted, nil),
		StdDev: std,
		Min:    sorted[0],
		Max:    sorted[len(sorted)-1],
		P25:    stat.Quantile(0.25, stat.Empirical, sorted, nil),
		P75:    stat.Quantile(0.75, stat.Empirical, sorted, nil),
	}
}

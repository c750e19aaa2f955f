// Package statistics accumulates the running figures reported by the survey.
package statistics

import (
	"math"
	"sort"
)

// Sample tracks a stream of observations
type Sample struct {
	N      int
	Sum    float64
	SumSq  float64   // Sum of squares for variance calculation
	Values []float64 // Kept for median/percentile calculation
}

// Add incorporates one observation
func (s *Sample) Add(v float64) {
	s.N++
	s.Sum += v
	s.SumSq += v * v
	s.Values = append(s.Values, v)
}

// Merge folds other into s. Worker samples are merged once at the end of a run.
func (s *Sample) Merge(other *Sample) {
	s.N += other.N
	s.Sum += other.Sum
	s.SumSq += other.SumSq
	s.Values = append(s.Values, other.Values...)
}

// Mean returns the arithmetic mean
func (s *Sample) Mean() float64 {
	if s.N == 0 {
		return 0
	}
	return s.Sum / float64(s.N)
}

// Variance returns the sample variance
func (s *Sample) Variance() float64 {
	if s.N < 2 {
		return 0
	}
	mean := s.Mean()
	v := (s.SumSq - float64(s.N)*mean*mean) / float64(s.N-1)
	if v < 0 {
		// rounding on constant samples
		return 0
	}
	return v
}

// StdDev returns the sample standard deviation
func (s *Sample) StdDev() float64 {
	return math.Sqrt(s.Variance())
}

// StdError returns the standard error of the mean
func (s *Sample) StdError() float64 {
	if s.N == 0 {
		return 0
	}
	return s.StdDev() / math.Sqrt(float64(s.N))
}

// ConfidenceInterval95 returns the 95% confidence interval for the mean
func (s *Sample) ConfidenceInterval95() (float64, float64) {
	mean := s.Mean()
	margin := 1.96 * s.StdError()
	return mean - margin, mean + margin
}

// Median returns the median observation
func (s *Sample) Median() float64 {
	return s.Percentile(0.5)
}

// Percentile returns the value at the given percentile (0.0 to 1.0)
func (s *Sample) Percentile(p float64) float64 {
	if len(s.Values) == 0 {
		return 0
	}
	sorted := make([]float64, len(s.Values))
	copy(sorted, s.Values)
	sort.Float64s(sorted)

	index := p * float64(len(sorted)-1)
	lower := int(index)
	upper := lower + 1

	if upper >= len(sorted) {
		return sorted[len(sorted)-1]
	}

	weight := index - float64(lower)
	return sorted[lower]*(1-weight) + sorted[upper]*weight
}

// Rate counts how often a yes/no outcome came up yes.
type Rate struct {
	Hits  int
	Total int
}

// Observe records one outcome
func (r *Rate) Observe(hit bool) {
	r.Total++
	if hit {
		r.Hits++
	}
}

// Merge folds other into r.
func (r *Rate) Merge(other Rate) {
	r.Hits += other.Hits
	r.Total += other.Total
}

// Value returns the observed proportion
func (r Rate) Value() float64 {
	if r.Total == 0 {
		return 0
	}
	return float64(r.Hits) / float64(r.Total)
}

// ConfidenceInterval95 returns the Wilson score interval for the proportion.
func (r Rate) ConfidenceInterval95() (float64, float64) {
	if r.Total == 0 {
		return 0, 0
	}
	const z = 1.96
	n := float64(r.Total)
	p := r.Value()
	denom := 1 + z*z/n
	centre := (p + z*z/(2*n)) / denom
	margin := z * math.Sqrt(p*(1-p)/n+z*z/(4*n*n)) / denom
	return math.Max(0, centre-margin), math.Min(1, centre+margin)
}

// Histogram counts observations per integer bucket.
type Histogram map[int]int

// Add counts one observation in bucket
func (h Histogram) Add(bucket int) { h[bucket]++ }

// Merge folds other into h.
func (h Histogram) Merge(other Histogram) {
	for k, v := range other {
		h[k] += v
	}
}

// Total returns the number of observations
func (h Histogram) Total() int {
	n := 0
	for _, v := range h {
		n += v
	}
	return n
}

// Share returns the fraction of observations that fell in bucket.
func (h Histogram) Share(bucket int) float64 {
	total := h.Total()
	if total == 0 {
		return 0
	}
	return float64(h[bucket]) / float64(total)
}

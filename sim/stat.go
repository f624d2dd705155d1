package sim

import (
	"fmt"
	"math"
)

// Stat accumulates scalar samples of one named series in O(1) per sample.
type Stat struct {
	name  string
	count int64
	sum   float64
	sumSq float64
	min   float64
	max   float64
}

// NewStat creates an empty series.
func NewStat(name string) *Stat {
	return &Stat{name: name, min: math.Inf(1), max: math.Inf(-1)}
}

// Name returns the series name.
func (s *Stat) Name() string { return s.name }

// Len returns the number of recorded samples.
func (s *Stat) Len() int64 { return s.count }

// Record adds one sample.
func (s *Stat) Record(v float64) {
	s.count++
	s.sum += v
	s.sumSq += v * v
	s.min = math.Min(s.min, v)
	s.max = math.Max(s.max, v)
}

// Summary is the end-of-run view of a Stat.
type Summary struct {
	Name     string  `json:"name"`
	Count    int64   `json:"count"`
	Mean     float64 `json:"mean"`
	Variance float64 `json:"variance"` // population variance, sumSq/n - mean^2
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
}

// StdDev returns the square root of the variance. Rounding can push the
// variance of a near-constant series slightly below zero; that reads as 0.
func (s Summary) StdDev() float64 {
	if s.Variance <= 0 {
		return 0
	}
	return math.Sqrt(s.Variance)
}

func (s Summary) String() string {
	return fmt.Sprintf("%s: n=%d mean=%g sd=%g min=%g max=%g", s.Name, s.Count, s.Mean, s.StdDev(), s.Min, s.Max)
}

// Summary returns count, mean, variance, min and max.
// Returns ErrEmptySeries when no sample was recorded.
func (s *Stat) Summary() (Summary, error) {
	if s.count == 0 {
		return Summary{Name: s.name}, fmt.Errorf("%w: %s", ErrEmptySeries, s.name)
	}
	n := float64(s.count)
	mean := s.sum / n
	return Summary{
		Name:     s.name,
		Count:    s.count,
		Mean:     mean,
		Variance: s.sumSq/n - mean*mean,
		Min:      s.min,
		Max:      s.max,
	}, nil
}

package trace

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// TraceSummary aggregates statistics from a SimulationTrace.
type TraceSummary struct {
	Blocks          int
	Retargets       int
	HashRateChanges int
	FlooredChanges  int

	MeanAdjustment float64 // mean NewDifficulty/OldDifficulty over retargets
	MinAdjustment  float64
	MaxAdjustment  float64

	MinHashRate   float64
	MaxHashRate   float64
	MeanBlockTime float64
	P50BlockTime  float64
	P95BlockTime  float64
}

// Summarize computes aggregate statistics from a SimulationTrace.
// Safe for nil or empty traces (returns zero-value fields).
func Summarize(st *SimulationTrace) *TraceSummary {
	summary := &TraceSummary{}
	if st == nil {
		return summary
	}

	summary.Blocks = len(st.Blocks)
	if len(st.Blocks) > 0 {
		times := make([]float64, len(st.Blocks))
		for i, b := range st.Blocks {
			times[i] = b.BlockTime
		}
		sort.Float64s(times)
		summary.MeanBlockTime = stat.Mean(times, nil)
		summary.P50BlockTime = stat.Quantile(0.5, stat.Empirical, times, nil)
		summary.P95BlockTime = stat.Quantile(0.95, stat.Empirical, times, nil)
	}

	summary.Retargets = len(st.Retargets)
	if len(st.Retargets) > 0 {
		summary.MinAdjustment = math.Inf(1)
		summary.MaxAdjustment = math.Inf(-1)
		total := 0.0
		for _, r := range st.Retargets {
			adj := r.NewDifficulty / r.OldDifficulty
			total += adj
			summary.MinAdjustment = math.Min(summary.MinAdjustment, adj)
			summary.MaxAdjustment = math.Max(summary.MaxAdjustment, adj)
		}
		summary.MeanAdjustment = total / float64(len(st.Retargets))
	}

	summary.HashRateChanges = len(st.HashRates)
	if len(st.HashRates) > 0 {
		summary.MinHashRate = math.Inf(1)
		summary.MaxHashRate = math.Inf(-1)
		for _, h := range st.HashRates {
			if h.Floored {
				summary.FlooredChanges++
			}
			summary.MinHashRate = math.Min(summary.MinHashRate, h.NewHashRate)
			summary.MaxHashRate = math.Max(summary.MaxHashRate, h.NewHashRate)
		}
	}

	return summary
}

package mining

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/powcarbon/powcarbon/sim"
)

// Result is the end-of-run output of a Simulation.
type Result struct {
	RunID   string  `json:"run_id"`
	Seed    int64   `json:"seed"`
	Horizon float64 `json:"horizon"` // simulated seconds

	// Footprint summaries in kg CO2. A series with no samples is left at its
	// zero value and listed in EmptySeries.
	PerSecond            sim.Summary `json:"footprint_per_second"`
	PerTransaction       sim.Summary `json:"footprint_per_transaction"`
	PerBlock             sim.Summary `json:"footprint_per_block"`
	EnergyPerTransaction sim.Summary `json:"energy_per_transaction"`
	EmptySeries          []string    `json:"empty_series,omitempty"`

	Blocks           int64 `json:"blocks"`
	Transactions     int64 `json:"transactions"`
	DegenerateBlocks int64 `json:"degenerate_blocks"`
	Retargets        int   `json:"retargets"`
	FlooredSteps     int64 `json:"floored_hash_rate_steps"`

	FinalDifficulty float64 `json:"final_difficulty"`
	FinalHashRate   float64 `json:"final_hash_rate"`
	Intensity       float64 `json:"intensity"`
	IntensityUnit   string  `json:"intensity_unit"`

	TotalPerSecond float64 `json:"total_per_second"`
	PoolOccupied   int     `json:"pool_occupied"`
	PoolQueued     int     `json:"pool_queued"`
	PoolPeakQueued int     `json:"pool_peak_queued"`
	Events         uint64  `json:"events"`
}

// AnnualFootprintMt extrapolates the mean per-second footprint over blocks to
// one year, in megatonnes of CO2.
// Returns sim.ErrEmptySeries when no block was mined.
func (r *Result) AnnualFootprintMt() (float64, error) {
	if r.Blocks == 0 {
		return 0, fmt.Errorf("%w: no blocks mined", sim.ErrEmptySeries)
	}
	return (r.TotalPerSecond / float64(r.Blocks)) * SecondsPerYear / 1e9, nil
}

type resultJSON struct {
	*Result
	AnnualFootprintMt *float64 `json:"annual_footprint_mt,omitempty"`
}

// SaveResults writes r as indented JSON to path.
func (r *Result) SaveResults(path string) error {
	out := resultJSON{Result: r}
	if mt, err := r.AnnualFootprintMt(); err == nil {
		out.AnnualFootprintMt = &mt
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding results: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing results: %w", err)
	}
	return nil
}

func newResult(runID string, c *Context) *Result {
	r := &Result{
		RunID:            runID,
		Seed:             c.Config.Seed,
		Horizon:          c.Config.Horizon,
		Blocks:           c.State.BlockCount,
		Transactions:     c.State.TransactionCount,
		DegenerateBlocks: c.DegenerateBlocks,
		Retargets:        c.State.Retargets,
		FlooredSteps:     c.FlooredSteps,
		FinalDifficulty:  c.State.Difficulty,
		FinalHashRate:    c.State.HashRate,
		Intensity:        c.Intensity,
		IntensityUnit:    c.Table.Unit,
		TotalPerSecond:   c.TotalPerSecond,
		PoolOccupied:     c.Pool.Occupied(),
		PoolQueued:       c.Pool.Queued(),
		PoolPeakQueued:   c.Pool.PeakQueued(),
		Events:           c.Sched.Dispatched(),
	}
	for _, s := range []struct {
		stat *sim.Stat
		dst  *sim.Summary
	}{
		{c.PerSecond, &r.PerSecond},
		{c.PerTransaction, &r.PerTransaction},
		{c.PerBlock, &r.PerBlock},
		{c.EnergyPerTransaction, &r.EnergyPerTransaction},
	} {
		sum, err := s.stat.Summary()
		if err != nil {
			r.EmptySeries = append(r.EmptySeries, s.stat.Name())
		}
		*s.dst = sum
	}
	return r
}

package mining

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/powcarbon/powcarbon/sim"
	"github.com/powcarbon/powcarbon/sim/internal/testutil"
	"github.com/powcarbon/powcarbon/sim/trace"
)

// mineSynthetic activates a process that completes blocks blocks, each
// taking window/blocks seconds, and runs the scheduler until it is done.
// The clock ends half a block after the last one.
func mineSynthetic(t *testing.T, c *Context, blocks int, window float64) {
	t.Helper()
	start := c.Sched.Now()
	step := window / float64(blocks)
	mined := 0
	c.Sched.Activate("synthetic", sim.BehaviorFunc(func(p *sim.Process) (sim.Action, error) {
		if p.Reason() == sim.ReasonTimer {
			c.blockMined(step, 1)
			mined++
		}
		if mined == blocks {
			return sim.Terminate(), nil
		}
		return sim.Wait(step), nil
	}), start)
	require.NoError(t, c.Sched.Run(start+window+step/2))
	require.Equal(t, blocks, mined)
}

func TestRetarget_Formula(t *testing.T) {
	tests := []struct {
		name       string
		difficulty float64
		elapsed    float64
		want       float64
	}{
		{"on schedule", 1000, TwoWeeks, 1000},
		{"twice as fast", 1000, TwoWeeks / 2, 2000},
		{"twice as slow", 1000, 2 * TwoWeeks, 500},
		{"zero window", 1000, 0, 1000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			testutil.AssertFloat64Equal(t, "difficulty", tt.want, Retarget(tt.difficulty, tt.elapsed), 1e-12)
		})
	}
}

func TestInlineRetarget_AfterSynthetic2016Blocks(t *testing.T) {
	// GIVEN a context and 2016 synthetic blocks spread over T seconds
	c := newTestContext(t, nil)
	d0 := c.State.Difficulty
	const T = 1.0e6

	// WHEN the blocks complete
	mineSynthetic(t, c, RetargetInterval, T)

	// THEN difficulty was multiplied by TWO_WEEKS / T exactly once
	testutil.AssertFloat64Equal(t, "difficulty", d0*TwoWeeks/T, c.State.Difficulty, 1e-9)
	assert.Equal(t, 1, c.State.Retargets)
	testutil.AssertFloat64Equal(t, "last retarget", T, c.State.LastRetarget, 1e-9)
}

func TestInlineRetarget_MeasuresFromPreviousRetarget(t *testing.T) {
	// GIVEN two consecutive windows of different lengths
	c := newTestContext(t, nil)
	d0 := c.State.Difficulty
	const first, second = 1.0e6, 1.5e6

	// WHEN both windows complete
	mineSynthetic(t, c, RetargetInterval, first)
	firstRetarget := c.State.LastRetarget
	mineSynthetic(t, c, RetargetInterval, second)
	elapsed := c.State.LastRetarget - firstRetarget

	// THEN the second adjustment is measured from the first retarget, which
	// includes the half step the clock idled before the second window began
	testutil.AssertFloat64Equal(t, "second window", second+first/RetargetInterval/2, elapsed, 1e-9)
	want := d0 * (TwoWeeks / firstRetarget) * (TwoWeeks / elapsed)
	testutil.AssertFloat64Equal(t, "difficulty", want, c.State.Difficulty, 1e-9)
	assert.Equal(t, 2, c.State.Retargets)
}

func TestInlineRetarget_NotBeforeFullWindow(t *testing.T) {
	c := newTestContext(t, nil)
	d0 := c.State.Difficulty

	mineSynthetic(t, c, RetargetInterval-1, 1e6)

	assert.Equal(t, d0, c.State.Difficulty)
	assert.Zero(t, c.State.Retargets)
}

func TestPeriodicRetarget_Formula(t *testing.T) {
	tests := []struct {
		name   string
		blocks int
		after  float64
		want   float64
	}{
		{"no blocks", 0, 0, 1000},
		{"half the target", 1008, 0, 500},
		{"on target", 2016, TwoWeeks, 1000},
		{"above target", 2500, TwoWeeks / 2, 2000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			testutil.AssertFloat64Equal(t, "difficulty", tt.want, PeriodicRetarget(1000, tt.blocks, tt.after), 1e-12)
		})
	}
}

func TestPeriodicRetarget_DrivenByDifficultyBehavior(t *testing.T) {
	// GIVEN periodic mode and 2200 blocks in the first week
	c := newTestContext(t, func(cfg *Config) { cfg.Retarget = RetargetPeriodic })
	d0 := c.State.Difficulty
	c.Sched.Activate("difficulty", NewDifficultyBehavior(c), 0)
	const week = 7 * SecondsPerDay
	mineSynthetic(t, c, 2200, week)

	// WHEN the first two-week check runs
	require.NoError(t, c.Sched.Run(TwoWeeks))

	// THEN difficulty follows the time the 2016th block was reached
	reached := float64(week) / 2200 * RetargetInterval
	testutil.AssertFloat64Equal(t, "difficulty", d0*TwoWeeks/reached, c.State.Difficulty, 1e-9)
	assert.Equal(t, 0, c.State.BlocksSinceCheck)
	assert.Equal(t, float64(TwoWeeks), c.State.LastCheck)
	assert.Equal(t, 1, c.State.Retargets)
}

func TestRecordFootprint_Values(t *testing.T) {
	// GIVEN the reference context
	c := newTestContext(t, nil)
	cfg := c.Config

	// WHEN one 600 s block with 1200 transactions is recorded
	c.recordFootprint(600, 1200)

	// THEN the three footprints follow the consumption formulas
	perSec := (cfg.HashRate / cfg.AsicHashPower) * cfg.AsicPower / 3600
	sec, err := c.PerSecond.Summary()
	require.NoError(t, err)
	block, err := c.PerBlock.Summary()
	require.NoError(t, err)
	tx, err := c.PerTransaction.Summary()
	require.NoError(t, err)

	testutil.AssertFloat64Equal(t, "per second", perSec*c.Intensity, sec.Mean, 1e-12)
	testutil.AssertFloat64Equal(t, "per block", perSec*600*c.Intensity, block.Mean, 1e-12)
	testutil.AssertFloat64Equal(t, "per transaction", perSec*600/1200*c.Intensity, tx.Mean, 1e-12)
	testutil.AssertFloat64Equal(t, "total", perSec*c.Intensity, c.TotalPerSecond, 1e-12)
}

func TestRecordFootprint_ZeroTransactionBlock(t *testing.T) {
	// GIVEN a block with no transactions
	c := newTestContext(t, nil)

	// WHEN it is recorded
	c.recordFootprint(600, 0)

	// THEN the per-transaction sample is skipped and the block counted
	assert.Equal(t, int64(1), c.PerSecond.Len())
	assert.Equal(t, int64(1), c.PerBlock.Len())
	assert.Equal(t, int64(0), c.PerTransaction.Len())
	assert.Equal(t, int64(1), c.DegenerateBlocks)
	_, err := c.PerTransaction.Summary()
	assert.ErrorIs(t, err, sim.ErrEmptySeries)
}

func TestPerturbHashRate(t *testing.T) {
	c := newTestContext(t, nil)
	c.Trace = trace.NewSimulationTrace(trace.TraceLevelEvents)
	h0 := c.State.HashRate

	// A +1.5% step.
	c.perturbHashRate(1.5)
	testutil.AssertFloat64Equal(t, "hash rate", h0*1.015, c.State.HashRate, 1e-12)

	// A step that would go below zero is clamped at the floor.
	c.perturbHashRate(-150)
	assert.Equal(t, c.MinHashRate(), c.State.HashRate)
	assert.Greater(t, c.State.HashRate, 0.0)
	assert.Equal(t, int64(1), c.FlooredSteps)

	require.Len(t, c.Trace.HashRates, 2)
	assert.False(t, c.Trace.HashRates[0].Floored)
	assert.True(t, c.Trace.HashRates[1].Floored)
	testutil.AssertFloat64Equal(t, "floor", h0*1e-9, c.MinHashRate(), 1e-12)
}

func TestCoefficient(t *testing.T) {
	tests := []struct {
		name           string
		change, u1, u2 float64
		want           float64
	}{
		{"upward", 2, 0.5, 0.9, 1},
		{"downward kick", 2, 0.5, 0.4, -1},
		{"kick at boundary", 2, 0, 0.4, -2},
		{"no change", 0, 0.7, 0.1, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Coefficient(tt.change, tt.u1, tt.u2, 0.4))
		})
	}
}

func TestNewContext_InvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.HashRate = -1
	_, err := NewContext(cfg, nil, nil)
	var cerr *ConfigError
	assert.ErrorAs(t, err, &cerr)
}

func TestNewContext_InitialState(t *testing.T) {
	c := newTestContext(t, nil)
	assert.Equal(t, c.Config.HashRate*512, c.State.Difficulty)
	assert.Equal(t, 512.0, c.BlockTime())
	assert.Equal(t, 2400, c.Pool.Capacity())
	testutil.AssertFloat64Equal(t, "intensity", 783.54519/(1000*3600), c.Intensity, 1e-9)
}

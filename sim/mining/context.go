package mining

import (
	"math"

	"github.com/sirupsen/logrus"

	"github.com/powcarbon/powcarbon/sim"
	"github.com/powcarbon/powcarbon/sim/energy"
	"github.com/powcarbon/powcarbon/sim/trace"
)

// minHashRateFraction bounds the hash-rate walk from below, relative to the
// initial hash rate.
const minHashRateFraction = 1e-9

// Stat names.
const (
	StatPerSecond            = "footprint_per_second"
	StatPerTransaction       = "footprint_per_transaction"
	StatPerBlock             = "footprint_per_block"
	StatEnergyPerTransaction = "energy_per_transaction"
)

// MiningState is the network state shared by the domain behaviors.
type MiningState struct {
	Difficulty       float64
	HashRate         float64
	BlockCount       int64
	TransactionCount int64
	LastRetarget     float64 // time of the previous inline retarget
	Retargets        int

	// Periodic retarget bookkeeping.
	BlocksSinceCheck int
	TimeAtTarget     float64 // completion time of the window's 2016th block
	LastCheck        float64
}

// Context is everything one run shares between its processes. It is created
// once per run and owned by the goroutine driving the scheduler.
type Context struct {
	Config Config
	Sched  *sim.Scheduler
	Pool   *sim.Pool
	RNG    *sim.PartitionedRNG

	Mix       energy.Mix
	Table     energy.IntensityTable
	Intensity float64 // weighted carbon intensity in use

	State MiningState

	PerSecond            *sim.Stat
	PerTransaction       *sim.Stat
	PerBlock             *sim.Stat
	EnergyPerTransaction *sim.Stat

	TotalPerSecond   float64 // running sum of per-second footprints, one term per block
	DegenerateBlocks int64   // blocks mined with no transactions
	FlooredSteps     int64   // hash-rate steps clamped at the floor

	Trace *trace.SimulationTrace

	arrivals        ArrivalSampler
	asicPowerPerSec float64
	minHashRate     float64
	log             *logrus.Entry
}

// NewContext validates cfg and builds the shared state for one run.
// tr may be nil. log may be nil, in which case the standard logger is used.
func NewContext(cfg Config, tr *trace.SimulationTrace, log *logrus.Entry) (*Context, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	mix, err := cfg.Mix()
	if err != nil {
		return nil, err
	}
	table, err := energy.LookupTable(cfg.IntensityTable)
	if err != nil {
		return nil, err
	}
	arrivals, err := NewArrivalSampler(cfg.Arrival)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}

	return &Context{
		Config:    cfg,
		Sched:     sim.NewScheduler(),
		Pool:      sim.NewPool("block", cfg.PoolCapacity),
		RNG:       sim.NewPartitionedRNG(sim.NewSimulationKey(cfg.Seed)),
		Mix:       mix,
		Table:     table,
		Intensity: mix.CarbonIntensity(table),
		State: MiningState{
			Difficulty: cfg.InitialDifficulty(),
			HashRate:   cfg.HashRate,
		},
		PerSecond:            sim.NewStat(StatPerSecond),
		PerTransaction:       sim.NewStat(StatPerTransaction),
		PerBlock:             sim.NewStat(StatPerBlock),
		EnergyPerTransaction: sim.NewStat(StatEnergyPerTransaction),
		Trace:                tr,
		arrivals:             arrivals,
		asicPowerPerSec:      cfg.AsicPower / 3600,
		minHashRate:          cfg.HashRate * minHashRateFraction,
		log:                  log,
	}, nil
}

// BlockTime returns the time the network needs for one block at the current
// difficulty and hash rate.
func (c *Context) BlockTime() float64 {
	return c.State.Difficulty / c.State.HashRate
}

// ConsumptionPerSecond returns the network's energy use per second at the
// current hash rate.
func (c *Context) ConsumptionPerSecond() float64 {
	return (c.State.HashRate / c.Config.AsicHashPower) * c.asicPowerPerSec
}

// MinHashRate returns the floor of the hash-rate walk.
func (c *Context) MinHashRate() float64 {
	return c.minHashRate
}

// Retarget returns the difficulty after a window of RetargetInterval blocks
// that took elapsed seconds. A non-positive window leaves difficulty unchanged.
func Retarget(difficulty, elapsed float64) float64 {
	if elapsed <= 0 {
		return difficulty
	}
	return difficulty * TwoWeeks / elapsed
}

// PeriodicRetarget returns the difficulty after a two-week check that saw
// blocks blocks. reachedAfter is the time from the previous check to the
// window's RetargetInterval-th block and is only used when blocks exceeds it.
func PeriodicRetarget(difficulty float64, blocks int, reachedAfter float64) float64 {
	switch {
	case blocks == 0:
		return difficulty
	case blocks < RetargetInterval:
		return difficulty * float64(blocks) / RetargetInterval
	case blocks > RetargetInterval:
		return Retarget(difficulty, reachedAfter)
	default:
		return difficulty
	}
}

// blockMined updates the state for a block that took blockTime seconds and
// folded n transactions, and records its footprint.
func (c *Context) blockMined(blockTime float64, n int) {
	now := c.Sched.Now()
	c.State.BlockCount++

	switch c.Config.Retarget {
	case RetargetInline:
		if c.State.BlockCount%RetargetInterval == 0 {
			c.retarget(now-c.State.LastRetarget, RetargetInline)
			c.State.LastRetarget = now
		}
	case RetargetPeriodic:
		c.State.BlocksSinceCheck++
		if c.State.BlocksSinceCheck == RetargetInterval {
			c.State.TimeAtTarget = now
		}
	}

	c.recordFootprint(blockTime, n)
}

func (c *Context) retarget(elapsed float64, mode RetargetMode) {
	old := c.State.Difficulty
	c.State.Difficulty = Retarget(old, elapsed)
	c.noteRetarget(old, elapsed, mode)
}

func (c *Context) noteRetarget(old, elapsed float64, mode RetargetMode) {
	c.State.Retargets++
	c.log.WithFields(logrus.Fields{
		"height":  c.State.BlockCount,
		"elapsed": elapsed,
		"mode":    mode,
	}).Infof("[t=%.0f] difficulty %.6g -> %.6g", c.Sched.Now(), old, c.State.Difficulty)
	c.Trace.RecordRetarget(trace.RetargetRecord{
		Height:        c.State.BlockCount,
		Time:          c.Sched.Now(),
		Elapsed:       elapsed,
		OldDifficulty: old,
		NewDifficulty: c.State.Difficulty,
		Mode:          string(mode),
	})
}

// recordFootprint feeds the per-second, per-block and per-transaction
// footprints of one block to their statistics.
func (c *Context) recordFootprint(blockTime float64, n int) {
	perSec := c.ConsumptionPerSecond()
	perBlock := perSec * blockTime

	footprintPerSec := perSec * c.Intensity
	footprintPerBlock := perBlock * c.Intensity
	footprintPerTx := 0.0

	c.PerSecond.Record(footprintPerSec)
	c.PerBlock.Record(footprintPerBlock)
	c.TotalPerSecond += footprintPerSec

	if n > 0 {
		perTx := perBlock / float64(n)
		footprintPerTx = perTx * c.Intensity
		c.PerTransaction.Record(footprintPerTx)
		c.EnergyPerTransaction.Record(perTx)
	} else {
		c.DegenerateBlocks++
		c.log.Warnf("[t=%.0f] block %d mined with no transactions", c.Sched.Now(), c.State.BlockCount)
	}

	c.Trace.RecordBlock(trace.BlockRecord{
		Height:                  c.State.BlockCount,
		Time:                    c.Sched.Now(),
		BlockTime:               blockTime,
		Transactions:            n,
		HashRate:                c.State.HashRate,
		Difficulty:              c.State.Difficulty,
		FootprintPerSecond:      footprintPerSec,
		FootprintPerBlock:       footprintPerBlock,
		FootprintPerTransaction: footprintPerTx,
	})
}

// perturbHashRate applies a percent change to the hash rate, clamped at the
// floor.
func (c *Context) perturbHashRate(coef float64) {
	old := c.State.HashRate
	next := old + old*coef/100
	floored := false
	if next < c.minHashRate || math.IsNaN(next) {
		next = c.minHashRate
		floored = true
		c.FlooredSteps++
		c.log.Warnf("[t=%.0f] hash rate %.6g clamped to floor %.6g", c.Sched.Now(), old+old*coef/100, c.minHashRate)
	}
	c.State.HashRate = next
	c.Trace.RecordHashRate(trace.HashRateRecord{
		Time:        c.Sched.Now(),
		OldHashRate: old,
		NewHashRate: next,
		Coefficient: coef,
		Floored:     floored,
	})
}

// refreshIntensity recomputes the weighted carbon intensity from the mix.
func (c *Context) refreshIntensity() {
	c.Intensity = c.Mix.CarbonIntensity(c.Table)
	c.Trace.RecordIntensity(trace.IntensityRecord{Time: c.Sched.Now(), Intensity: c.Intensity})
}

// Package mining simulates a proof-of-work network for one horizon and
// estimates the CO2 footprint of its blocks and transactions.
//
// A run is four infinite processes sharing one Context: a transaction
// generator feeding a capacity-limited pool, a miner that empties the pool
// into each block, a hash-rate random walk and a two-weekly refresh of the
// carbon intensity. In periodic retarget mode a fifth process adjusts
// difficulty.
package mining

import (
	"context"
	"errors"
	"math"

	"github.com/rs/xid"
	"github.com/sirupsen/logrus"

	"github.com/powcarbon/powcarbon/sim"
	"github.com/powcarbon/powcarbon/sim/trace"
)

// runChunk is how far the scheduler advances between cancellation checks.
const runChunk = SecondsPerDay

// ErrAlreadyRan is returned by a second call to Simulation.Run.
var ErrAlreadyRan = errors.New("mining: simulation already ran")

// Option configures a Simulation.
type Option func(*Simulation)

// WithTrace records decisions into tr.
func WithTrace(tr *trace.SimulationTrace) Option {
	return func(s *Simulation) { s.trace = tr }
}

// WithRunID overrides the generated run ID.
func WithRunID(id string) Option {
	return func(s *Simulation) { s.runID = id }
}

// WithHook registers a scheduler hook for the run.
func WithHook(h sim.Hook) Option {
	return func(s *Simulation) { s.hooks = append(s.hooks, h) }
}

// Simulation is one configured run.
type Simulation struct {
	ctx   *Context
	runID string
	trace *trace.SimulationTrace
	hooks []sim.Hook
	log   *logrus.Entry
	ran   bool
}

// NewSimulation validates cfg and activates the domain processes. Any
// configuration problem is returned as a *ConfigError.
func NewSimulation(cfg Config, opts ...Option) (*Simulation, error) {
	s := &Simulation{runID: xid.New().String()}
	for _, opt := range opts {
		opt(s)
	}
	s.log = logrus.WithField("run_id", s.runID)

	c, err := NewContext(cfg, s.trace, s.log)
	if err != nil {
		return nil, err
	}
	s.ctx = c
	for _, h := range s.hooks {
		c.Sched.AddHook(h)
	}

	c.Sched.Activate("arrivals", NewArrivalBehavior(c), 0)
	c.Sched.Activate("miner", NewMinerBehavior(c), 0)
	c.Sched.Activate("hashrate", NewHashRateBehavior(c), 0)
	c.Sched.Activate("footprint", NewFootprintBehavior(c), 0)
	if cfg.Retarget == RetargetPeriodic {
		c.Sched.Activate("difficulty", NewDifficultyBehavior(c), 0)
	}
	return s, nil
}

// RunID returns the identifier attached to this run's logs and results.
func (s *Simulation) RunID() string { return s.runID }

// Context returns the shared run state.
func (s *Simulation) Context() *Context { return s.ctx }

// Run advances the simulation to the configured horizon and returns its
// result. ctx is checked once per simulated day; cancelling it aborts the run
// with ctx.Err(). A Simulation runs once.
func (s *Simulation) Run(ctx context.Context) (*Result, error) {
	if s.ran {
		return nil, ErrAlreadyRan
	}
	s.ran = true

	c := s.ctx
	horizon := c.Config.Horizon
	s.log.Infof("starting run: horizon %.0fs, seed %d, difficulty %.6g, hash rate %.6g, intensity %.6g %s",
		horizon, c.Config.Seed, c.State.Difficulty, c.State.HashRate, c.Intensity, c.Table.Unit)

	for c.Sched.Now() < horizon {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		until := math.Min(c.Sched.Now()+runChunk, horizon)
		if err := c.Sched.Run(until); err != nil {
			return nil, err
		}
	}

	res := newResult(s.runID, c)
	s.log.Infof("run finished: %d blocks, %d transactions, %d retargets, %d events",
		res.Blocks, res.Transactions, res.Retargets, res.Events)
	if res.DegenerateBlocks > 0 {
		s.log.Warnf("%d blocks had no transactions; per-transaction samples skipped", res.DegenerateBlocks)
	}
	return res, nil
}

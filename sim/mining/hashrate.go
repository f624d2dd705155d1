package mining

import (
	"github.com/powcarbon/powcarbon/sim"
)

// HashRateBehavior walks the network hash rate. Each step draws an
// exponential change (percent), waits an exponential interval, then applies
// a uniform fraction of the change with a chance of a downward kick.
type HashRateBehavior struct {
	ctx     *Context
	rng     *sim.Variates
	waiting bool
	change  float64 // drawn before the wait
}

// NewHashRateBehavior creates the hash-rate walk for ctx.
func NewHashRateBehavior(ctx *Context) *HashRateBehavior {
	return &HashRateBehavior{ctx: ctx, rng: ctx.RNG.ForSubsystem(sim.SubsystemHashRate)}
}

func (b *HashRateBehavior) Resume(_ *sim.Process) (sim.Action, error) {
	walk := b.ctx.Config.HashRateWalk
	if b.waiting {
		b.ctx.perturbHashRate(Coefficient(b.change, b.rng.Float64(), b.rng.Float64(), walk.DownwardChance))
	}
	b.change = b.rng.Exponential(walk.MeanChangePercent)
	b.waiting = true
	return sim.Wait(b.rng.Exponential(walk.MeanInterval)), nil
}

// Coefficient returns the percent change of one walk step: u1*change, minus
// change when u2 <= downward.
func Coefficient(change, u1, u2, downward float64) float64 {
	coef := u1 * change
	if u2 <= downward {
		coef -= change
	}
	return coef
}

package mining

import (
	"github.com/powcarbon/powcarbon/sim"
)

// Transaction weights are drawn from [minTxWeight, maxTxWeight] and truncated
// to whole pool units.
const (
	minTxWeight = 1
	maxTxWeight = 7
)

// ArrivalBehavior generates transactions forever. Each tick counts one
// transaction, activates its unit at the current time and waits for the next
// inter-arrival interval.
type ArrivalBehavior struct {
	ctx *Context
	rng *sim.Variates
	txs *sim.Variates
}

// NewArrivalBehavior creates the transaction generator for ctx.
func NewArrivalBehavior(ctx *Context) *ArrivalBehavior {
	return &ArrivalBehavior{
		ctx: ctx,
		rng: ctx.RNG.ForSubsystem(sim.SubsystemArrivals),
		txs: ctx.RNG.ForSubsystem(sim.SubsystemTransactions),
	}
}

func (b *ArrivalBehavior) Resume(p *sim.Process) (sim.Action, error) {
	b.ctx.State.TransactionCount++
	p.Activate("transaction", &TransactionBehavior{pool: b.ctx.Pool, rng: b.txs})
	return sim.Wait(b.ctx.arrivals.SampleIAT(b.rng)), nil
}

// TransactionBehavior is one transient transaction: it occupies its weight in
// the pool and terminates once admitted.
type TransactionBehavior struct {
	pool    *sim.Pool
	rng     *sim.Variates
	weight  int
	entered bool
}

// Weight returns the pool units the transaction asked for, 0 before its first
// resumption.
func (b *TransactionBehavior) Weight() int { return b.weight }

func (b *TransactionBehavior) Resume(_ *sim.Process) (sim.Action, error) {
	if b.entered {
		return sim.Terminate(), nil
	}
	b.weight = int(b.rng.Uniform(minTxWeight, maxTxWeight))
	b.entered = true
	return sim.Enter(b.pool, b.weight), nil
}

package mining

import (
	"github.com/powcarbon/powcarbon/sim"
)

type minerState int

const (
	minerPriming minerState = iota // occupy the initial backlog
	minerAssembling                 // fold the pool into a new block
	minerMining                     // block time elapsed
)

// MinerBehavior mines blocks forever. Each block takes every occupied pool
// unit, lasts difficulty / hash rate seconds, and is accounted when it
// completes.
type MinerBehavior struct {
	ctx   *Context
	state minerState

	// carried across the block-time wait
	started   float64
	blockTime float64
	txs       int
}

// NewMinerBehavior creates the miner for ctx.
func NewMinerBehavior(ctx *Context) *MinerBehavior {
	return &MinerBehavior{ctx: ctx}
}

func (b *MinerBehavior) Resume(p *sim.Process) (sim.Action, error) {
	for {
		switch b.state {
		case minerPriming:
			b.state = minerAssembling
			if n := b.ctx.Config.InitialBacklog; n > 0 {
				return sim.Enter(b.ctx.Pool, n), nil
			}

		case minerAssembling:
			b.started = p.Now()
			b.txs = b.ctx.Pool.Occupied()
			if err := p.Leave(b.ctx.Pool, b.txs); err != nil {
				return sim.Action{}, err
			}
			b.blockTime = b.ctx.BlockTime()
			b.state = minerMining
			return sim.Wait(b.blockTime), nil

		case minerMining:
			b.ctx.log.Debugf("[t=%.0f] block started at t=%.0f with %d transactions", p.Now(), b.started, b.txs)
			b.ctx.blockMined(b.blockTime, b.txs)
			b.state = minerAssembling
		}
	}
}

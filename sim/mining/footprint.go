package mining

import (
	"github.com/powcarbon/powcarbon/sim"
)

// FootprintBehavior refreshes the weighted carbon intensity every two weeks.
type FootprintBehavior struct {
	ctx     *Context
	started bool
}

// NewFootprintBehavior creates the intensity refresher for ctx.
func NewFootprintBehavior(ctx *Context) *FootprintBehavior {
	return &FootprintBehavior{ctx: ctx}
}

func (b *FootprintBehavior) Resume(p *sim.Process) (sim.Action, error) {
	if b.started {
		b.ctx.refreshIntensity()
		b.ctx.log.Debugf("[t=%.0f] carbon intensity %.6g %s", p.Now(), b.ctx.Intensity, b.ctx.Table.Unit)
	}
	b.started = true
	return sim.Wait(TwoWeeks), nil
}

package mining

import (
	"github.com/powcarbon/powcarbon/sim"
)

// DifficultyBehavior retargets difficulty every two weeks from the number of
// blocks mined since the previous check. Only activated in periodic mode.
type DifficultyBehavior struct {
	ctx     *Context
	started bool
}

// NewDifficultyBehavior creates the periodic retargeter for ctx.
func NewDifficultyBehavior(ctx *Context) *DifficultyBehavior {
	return &DifficultyBehavior{ctx: ctx}
}

func (b *DifficultyBehavior) Resume(p *sim.Process) (sim.Action, error) {
	if b.started {
		st := &b.ctx.State
		n := st.BlocksSinceCheck
		old := st.Difficulty
		st.Difficulty = PeriodicRetarget(old, n, st.TimeAtTarget-st.LastCheck)
		if st.Difficulty != old {
			b.ctx.noteRetarget(old, p.Now()-st.LastCheck, RetargetPeriodic)
		}
		st.BlocksSinceCheck = 0
		st.LastCheck = p.Now()
	}
	b.started = true
	return sim.Wait(TwoWeeks), nil
}

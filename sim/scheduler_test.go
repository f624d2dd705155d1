package sim

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorder appends "name@time" each time it is resumed, waiting the given
// delays in turn and terminating after the last one.
type recorder struct {
	log    *[]string
	delays []float64
	times  *[]float64
}

func (r *recorder) Resume(p *Process) (Action, error) {
	*r.log = append(*r.log, p.Name())
	if r.times != nil {
		*r.times = append(*r.times, p.Now())
	}
	if len(r.delays) == 0 {
		return Terminate(), nil
	}
	d := r.delays[0]
	r.delays = r.delays[1:]
	return Wait(d), nil
}

func TestScheduler_EqualTimesDispatchInInsertionOrder(t *testing.T) {
	// GIVEN three processes activated at the same instant
	s := NewScheduler()
	var log []string
	for _, name := range []string{"a", "b", "c"} {
		s.Activate(name, &recorder{log: &log}, 5)
	}

	// WHEN the scheduler runs
	require.NoError(t, s.Run(math.Inf(1)))

	// THEN they resume in activation order
	assert.Equal(t, []string{"a", "b", "c"}, log)
	assert.Equal(t, 5.0, s.Now())
	assert.Equal(t, uint64(3), s.Dispatched())
}

func TestScheduler_TimeOrderAcrossWaits(t *testing.T) {
	s := NewScheduler()
	var log []string
	var times []float64
	s.Activate("slow", &recorder{log: &log, times: &times, delays: []float64{10}}, 0)
	s.Activate("fast", &recorder{log: &log, times: &times, delays: []float64{3, 3}}, 0)

	require.NoError(t, s.Run(math.Inf(1)))

	assert.Equal(t, []string{"slow", "fast", "fast", "fast", "slow"}, log)
	assert.Equal(t, []float64{0, 0, 3, 6, 10}, times)
}

func TestScheduler_ClockNeverDecreases(t *testing.T) {
	// GIVEN a hook watching every dispatch and processes with random delays
	s := NewScheduler()
	last := math.Inf(-1)
	violations := 0
	s.AddHook(HookFunc(func(ctx HookCtx) {
		if ctx.Pos != HookPosBeforeEvent {
			return
		}
		if ctx.Now < last || ctx.Event.Time != ctx.Now {
			violations++
		}
		last = ctx.Now
	}))
	v := NewVariates(1)
	var log []string
	for i := 0; i < 20; i++ {
		delays := make([]float64, 50)
		for j := range delays {
			delays[j] = v.Exponential(4)
		}
		s.Activate("p", &recorder{log: &log, delays: delays}, v.Uniform(0, 10))
	}

	// WHEN the run completes
	require.NoError(t, s.Run(math.Inf(1)))

	// THEN the clock observed by hooks never went backwards
	assert.Zero(t, violations)
	assert.Len(t, log, 20*51)
}

func TestScheduler_SchedulingInThePastPanics(t *testing.T) {
	s := NewScheduler()
	var log []string
	s.Activate("p", &recorder{log: &log, delays: []float64{10}}, 0)
	require.NoError(t, s.Run(5))

	p := s.Activate("late", &recorder{log: &log}, 5)
	assert.Panics(t, func() { s.Schedule(p, 4, ReasonTimer) })
}

func TestScheduler_RunStopsAtHorizon(t *testing.T) {
	// GIVEN a ticker waiting 1s forever
	s := NewScheduler()
	ticks := 0
	s.Activate("ticker", BehaviorFunc(func(p *Process) (Action, error) {
		ticks++
		return Wait(1), nil
	}), 0)

	// WHEN the scheduler runs to 10.5 and then to 20
	require.NoError(t, s.Run(10.5))
	assert.Equal(t, 11, ticks, "ticks at 0..10")
	assert.Equal(t, 10.5, s.Now())
	assert.Equal(t, 1, s.Pending())

	require.NoError(t, s.Run(20))

	// THEN events at the horizon itself are dispatched
	assert.Equal(t, 21, ticks)
	assert.Equal(t, 20.0, s.Now())
}

func TestScheduler_InvalidDurationAbortsRun(t *testing.T) {
	for _, d := range []float64{-1, math.NaN()} {
		s := NewScheduler()
		p := s.Activate("bad", BehaviorFunc(func(p *Process) (Action, error) {
			return Wait(d), nil
		}), 0)

		err := s.Run(100)

		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrInvalidDuration))
		assert.Contains(t, err.Error(), "bad#1")
		assert.Equal(t, StateTerminated, p.State())
	}
}

func TestScheduler_BehaviorErrorIsWrapped(t *testing.T) {
	boom := errors.New("boom")
	s := NewScheduler()
	s.Activate("failing", BehaviorFunc(func(p *Process) (Action, error) {
		return Action{}, boom
	}), 2)

	err := s.Run(10)

	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "t=2")
}

func TestProcess_ActivateRunsAfterPendingEventsAtSameTime(t *testing.T) {
	// GIVEN a parent that activates a child and a sibling already scheduled at t=0
	s := NewScheduler()
	var log []string
	s.Activate("parent", BehaviorFunc(func(p *Process) (Action, error) {
		log = append(log, "parent")
		p.Activate("child", &recorder{log: &log})
		return Terminate(), nil
	}), 0)
	s.Activate("sibling", &recorder{log: &log}, 0)

	// WHEN the run completes
	require.NoError(t, s.Run(math.Inf(1)))

	// THEN the child runs after the sibling
	assert.Equal(t, []string{"parent", "sibling", "child"}, log)
}

func TestProcess_StatesAndReasons(t *testing.T) {
	s := NewScheduler()
	pool := NewPool("block", 1)
	var reasons []Reason
	step := 0
	holder := s.Activate("holder", BehaviorFunc(func(p *Process) (Action, error) {
		step++
		switch step {
		case 1:
			return Enter(pool, 1), nil
		case 2:
			return Wait(5), nil
		default:
			if err := p.Leave(pool, 1); err != nil {
				return Action{}, err
			}
			return Terminate(), nil
		}
	}), 0)
	entered := false
	waiter := s.Activate("waiter", BehaviorFunc(func(p *Process) (Action, error) {
		reasons = append(reasons, p.Reason())
		if !entered {
			entered = true
			return Enter(pool, 1), nil
		}
		return Terminate(), nil
	}), 0)

	require.NoError(t, s.Run(1))
	assert.Equal(t, StateWaiting, holder.State())
	assert.Equal(t, StateBlocked, waiter.State())

	require.NoError(t, s.Run(10))
	assert.Equal(t, StateTerminated, holder.State())
	assert.Equal(t, StateTerminated, waiter.State())
	assert.Equal(t, []Reason{ReasonActivated, ReasonAdmitted}, reasons)
	assert.Equal(t, 1, pool.Occupied())
}

func TestProcess_LeaveOutsideDispatchFails(t *testing.T) {
	s := NewScheduler()
	pool := NewPool("block", 10)
	p := s.Activate("idle", BehaviorFunc(func(p *Process) (Action, error) {
		return Terminate(), nil
	}), 0)

	err := p.Leave(pool, 0)

	assert.ErrorIs(t, err, ErrProcessNotRunning)
}

// sim/scheduler.go
package sim

import (
	"container/heap"
	"fmt"
	"math"

	"github.com/sirupsen/logrus"
)

// Scheduler is the virtual-time kernel. It owns the simulation clock and
// dispatches process resumptions in (time, insertion order).
//
// Thread-safety: NOT thread-safe. A Scheduler and everything it drives must be
// used from a single goroutine.
type Scheduler struct {
	clock float64
	queue EventQueue

	nextSeq    uint64
	nextID     uint64
	dispatched uint64

	current *Process
	hooks   []Hook
}

// NewScheduler creates a Scheduler with the clock at zero.
func NewScheduler() *Scheduler {
	s := &Scheduler{
		queue: make(EventQueue, 0),
	}
	heap.Init(&s.queue)
	return s
}

// Now returns the current virtual time in seconds.
func (s *Scheduler) Now() float64 {
	return s.clock
}

// Pending returns the number of scheduled, not yet dispatched events.
func (s *Scheduler) Pending() int {
	return s.queue.Len()
}

// Dispatched returns the number of events dispatched so far.
func (s *Scheduler) Dispatched() uint64 {
	return s.dispatched
}

// Current returns the process being executed, or nil between dispatches.
func (s *Scheduler) Current() *Process {
	return s.current
}

// AddHook registers a hook invoked around every dispatched event.
func (s *Scheduler) AddHook(h Hook) {
	s.hooks = append(s.hooks, h)
}

// Activate creates a process running b and schedules its first resumption at
// virtual time at.
func (s *Scheduler) Activate(name string, b Behavior, at float64) *Process {
	s.nextID++
	p := &Process{
		id:       s.nextID,
		name:     name,
		state:    StateReady,
		behavior: b,
		sched:    s,
	}
	s.Schedule(p, at, ReasonActivated)
	return p
}

// Schedule pushes a resumption of p at virtual time at.
// Scheduling in the past is a programming error and panics.
func (s *Scheduler) Schedule(p *Process, at float64, reason Reason) {
	if at < s.clock || math.IsNaN(at) {
		panic(fmt.Sprintf("sim: cannot schedule %s in the past: @%g, now %g", p, at, s.clock))
	}
	s.nextSeq++
	heap.Push(&s.queue, ScheduledEvent{
		Time:    at,
		Process: p,
		Reason:  reason,
		seq:     s.nextSeq,
	})
}

// Run dispatches events until the next one is due after until or the queue
// drains. The first error reported by a process aborts the run. When the run
// stops at the horizon the clock is left at until; processes still scheduled
// are abandoned where they are.
func (s *Scheduler) Run(until float64) error {
	for s.queue.Len() > 0 {
		if s.queue[0].Time > until {
			break
		}
		ev := heap.Pop(&s.queue).(ScheduledEvent)
		if ev.Time < s.clock {
			panic(fmt.Sprintf("sim: cannot dispatch %s in the past: @%g, now %g", ev.Process, ev.Time, s.clock))
		}
		s.clock = ev.Time
		s.dispatched++

		s.invokeHooks(HookCtx{Pos: HookPosBeforeEvent, Now: s.clock, Event: ev})
		if err := s.dispatch(ev); err != nil {
			return err
		}
		s.invokeHooks(HookCtx{Pos: HookPosAfterEvent, Now: s.clock, Event: ev})
	}
	if !math.IsInf(until, 1) && until > s.clock {
		s.clock = until
	}
	logrus.Debugf("[t=%.3f] scheduler stopped after %d events, %d pending", s.clock, s.dispatched, s.queue.Len())
	return nil
}

// dispatch resumes one process until it suspends, terminates or fails.
func (s *Scheduler) dispatch(ev ScheduledEvent) error {
	p := ev.Process
	if p.state == StateTerminated {
		return nil
	}
	p.state = StateReady
	p.reason = ev.Reason

	s.current = p
	defer func() { s.current = nil }()

	for {
		action, err := p.behavior.Resume(p)
		if err == nil {
			err = action.validate()
		}
		if err != nil {
			p.state = StateTerminated
			return fmt.Errorf("process %s at t=%g: %w", p, s.clock, err)
		}

		switch action.kind {
		case actionWait:
			p.state = StateWaiting
			s.Schedule(p, s.clock+action.duration, ReasonTimer)
			return nil
		case actionEnter:
			admitted, err := action.pool.request(p, action.amount)
			if err != nil {
				p.state = StateTerminated
				return fmt.Errorf("process %s at t=%g: %w", p, s.clock, err)
			}
			if !admitted {
				p.state = StateBlocked
				return nil
			}
			// Admitted on the spot: keep running in this dispatch.
			p.reason = ReasonAdmitted
		case actionTerminate:
			p.state = StateTerminated
			return nil
		}
	}
}

func (s *Scheduler) invokeHooks(ctx HookCtx) {
	for _, h := range s.hooks {
		h.Func(ctx)
	}
}

package sim

import (
	"fmt"
	"math"
)

// ProcessState is the lifecycle state of a simulated process.
type ProcessState int

const (
	StateReady      ProcessState = iota // scheduled to run at the current or a future time
	StateWaiting                        // suspended on a timer (Wait)
	StateBlocked                        // suspended on a pool (Enter)
	StateTerminated                     // behavior finished or failed
)

func (s ProcessState) String() string {
	switch s {
	case StateReady:
		return "ready"
	case StateWaiting:
		return "waiting"
	case StateBlocked:
		return "blocked"
	case StateTerminated:
		return "terminated"
	default:
		return fmt.Sprintf("ProcessState(%d)", int(s))
	}
}

// Behavior is the body of a simulated process, written as an explicit state
// machine. Resume runs from the process's current state up to its next
// suspension point and returns that suspension as an Action. Any local
// variable that must survive a suspension lives in the Behavior value.
//
// Resume must not block; everything it does happens atomically at the
// current virtual time with respect to other processes.
type Behavior interface {
	Resume(p *Process) (Action, error)
}

// BehaviorFunc adapts a function to the Behavior interface.
type BehaviorFunc func(p *Process) (Action, error)

// Resume calls f(p).
func (f BehaviorFunc) Resume(p *Process) (Action, error) {
	return f(p)
}

type actionKind int

const (
	actionWait actionKind = iota
	actionEnter
	actionTerminate
)

// Action is the suspension a Behavior requests when it yields control.
type Action struct {
	kind     actionKind
	duration float64
	pool     *Pool
	amount   int
}

// Wait suspends the process for d seconds of virtual time.
func Wait(d float64) Action {
	return Action{kind: actionWait, duration: d}
}

// Enter suspends the process until amount units of pool are available and
// then occupies them. A request that fits an idle pool is admitted without
// giving up the current dispatch.
func Enter(pool *Pool, amount int) Action {
	return Action{kind: actionEnter, pool: pool, amount: amount}
}

// Terminate ends the process.
func Terminate() Action {
	return Action{kind: actionTerminate}
}

func (a Action) String() string {
	switch a.kind {
	case actionWait:
		return fmt.Sprintf("Wait(%g)", a.duration)
	case actionEnter:
		return fmt.Sprintf("Enter(%s, %d)", a.pool.Name(), a.amount)
	default:
		return "Terminate"
	}
}

func (a Action) validate() error {
	switch a.kind {
	case actionWait:
		if a.duration < 0 || math.IsNaN(a.duration) {
			return fmt.Errorf("%w: %g", ErrInvalidDuration, a.duration)
		}
	case actionEnter:
		if a.pool == nil {
			return fmt.Errorf("%w: nil pool", ErrInvalidAmount)
		}
	}
	return nil
}

// Process is a cooperative unit of simulation logic driven by a Scheduler.
type Process struct {
	id       uint64
	name     string
	state    ProcessState
	reason   Reason
	behavior Behavior
	sched    *Scheduler
}

// ID returns the scheduler-unique process ID (1-based, in activation order).
func (p *Process) ID() uint64 { return p.id }

// Name returns the name given at activation.
func (p *Process) Name() string { return p.name }

// State returns the current lifecycle state.
func (p *Process) State() ProcessState { return p.state }

// Reason returns why the process was most recently resumed.
func (p *Process) Reason() Reason { return p.reason }

// Now returns the current virtual time.
func (p *Process) Now() float64 { return p.sched.Now() }

// Scheduler returns the scheduler driving this process.
func (p *Process) Scheduler() *Scheduler { return p.sched }

// Activate starts a new process at the current virtual time. It runs after
// every event already scheduled for this instant.
func (p *Process) Activate(name string, b Behavior) *Process {
	return p.sched.Activate(name, b, p.sched.Now())
}

// Leave releases amount units of pool and admits queued requests that now fit.
// Leave is not a suspension point: the calling process keeps running.
func (p *Process) Leave(pool *Pool, amount int) error {
	if p.sched.current != p {
		return fmt.Errorf("%w: %s", ErrProcessNotRunning, p)
	}
	_, err := pool.release(amount, p.sched)
	return err
}

func (p *Process) String() string {
	return fmt.Sprintf("%s#%d", p.name, p.id)
}

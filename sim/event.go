package sim

import "fmt"

// Reason records why a process is being resumed.
type Reason int

const (
	// ReasonActivated is the first resumption of a newly activated process.
	ReasonActivated Reason = iota
	// ReasonTimer resumes a process whose Wait elapsed.
	ReasonTimer
	// ReasonAdmitted resumes a process whose queued Enter request was admitted.
	ReasonAdmitted
)

func (r Reason) String() string {
	switch r {
	case ReasonActivated:
		return "activated"
	case ReasonTimer:
		return "timer"
	case ReasonAdmitted:
		return "admitted"
	default:
		return fmt.Sprintf("Reason(%d)", int(r))
	}
}

// ScheduledEvent is a pending resumption of a process.
// Events are ordered by Time, and events with equal Time keep the order in
// which they were scheduled.
type ScheduledEvent struct {
	Time    float64  // Virtual time (seconds) at which the process resumes
	Process *Process // Process to resume
	Reason  Reason   // Why the process is resumed

	seq uint64 // insertion order, breaks ties between equal times
}

// Seq returns the insertion sequence number of the event.
func (e ScheduledEvent) Seq() uint64 {
	return e.seq
}

// EventQueue implements heap.Interface and orders events by (Time, seq).
// See canonical Golang example here: https://pkg.go.dev/container/heap#example-package-IntHeap
type EventQueue []ScheduledEvent

func (eq EventQueue) Len() int { return len(eq) }

func (eq EventQueue) Less(i, j int) bool {
	if eq[i].Time != eq[j].Time {
		return eq[i].Time < eq[j].Time
	}
	return eq[i].seq < eq[j].seq
}

func (eq EventQueue) Swap(i, j int) { eq[i], eq[j] = eq[j], eq[i] }

func (eq *EventQueue) Push(x any) {
	*eq = append(*eq, x.(ScheduledEvent))
}

func (eq *EventQueue) Pop() any {
	old := *eq
	n := len(old)
	item := old[n-1]
	old[n-1] = ScheduledEvent{}
	*eq = old[0 : n-1]
	return item
}

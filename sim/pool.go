// Implements the Pool, a capacity-limited counter with a FIFO wait-list.
// Processes occupy units with Enter and release them with Leave.

package sim

import "fmt"

type poolRequest struct {
	proc   *Process
	amount int
}

// Pool is a capacity-limited resource shared by processes.
//
// Admission is strict FIFO: a request is admitted only when its entire amount
// fits, and a queued head that does not fit holds back every request behind it.
type Pool struct {
	name     string
	capacity int
	occupied int
	waiting  []poolRequest

	admitted   uint64
	peakQueued int
}

// NewPool creates an empty pool. Capacity must be positive.
func NewPool(name string, capacity int) *Pool {
	if capacity <= 0 {
		panic(fmt.Sprintf("NewPool: capacity must be positive, got %d", capacity))
	}
	return &Pool{
		name:     name,
		capacity: capacity,
	}
}

// Name returns the pool name.
func (p *Pool) Name() string { return p.name }

// Capacity returns the fixed capacity.
func (p *Pool) Capacity() int { return p.capacity }

// Occupied returns the number of occupied units.
func (p *Pool) Occupied() int { return p.occupied }

// Free returns capacity minus occupied.
func (p *Pool) Free() int { return p.capacity - p.occupied }

// Queued returns the number of requests waiting for admission.
func (p *Pool) Queued() int { return len(p.waiting) }

// Admitted returns the number of requests admitted so far.
func (p *Pool) Admitted() uint64 { return p.admitted }

// PeakQueued returns the longest wait-list observed.
func (p *Pool) PeakQueued() int { return p.peakQueued }

func (p *Pool) String() string {
	return fmt.Sprintf("Pool(%s: %d/%d, %d queued)", p.name, p.occupied, p.capacity, len(p.waiting))
}

// request occupies amount units for proc if possible and queues it otherwise.
// It reports whether the request was admitted immediately.
func (p *Pool) request(proc *Process, amount int) (bool, error) {
	if amount < 0 {
		return false, fmt.Errorf("%w: enter %s with %d", ErrInvalidAmount, p.name, amount)
	}
	if amount > p.capacity {
		return false, fmt.Errorf("%w: enter %s with %d, capacity %d", ErrExceedsCapacity, p.name, amount, p.capacity)
	}
	if len(p.waiting) == 0 && p.occupied+amount <= p.capacity {
		p.occupied += amount
		p.admitted++
		return true, nil
	}
	p.waiting = append(p.waiting, poolRequest{proc: proc, amount: amount})
	p.peakQueued = max(p.peakQueued, len(p.waiting))
	return false, nil
}

// release frees amount units and admits queued requests head-first while the
// head fits. Admitted processes are scheduled at the current time.
// It returns the number of requests admitted.
func (p *Pool) release(amount int, s *Scheduler) (int, error) {
	if amount < 0 {
		return 0, fmt.Errorf("%w: leave %s with %d", ErrInvalidAmount, p.name, amount)
	}
	if amount > p.occupied {
		return 0, fmt.Errorf("%w: leave %s with %d, occupied %d", ErrPoolUnderflow, p.name, amount, p.occupied)
	}
	p.occupied -= amount

	n := 0
	for len(p.waiting) > 0 {
		head := p.waiting[0]
		if p.occupied+head.amount > p.capacity {
			break
		}
		p.occupied += head.amount
		p.waiting[0] = poolRequest{}
		p.waiting = p.waiting[1:]
		p.admitted++
		n++

		head.proc.state = StateReady
		s.Schedule(head.proc, s.Now(), ReasonAdmitted)
	}
	return n, nil
}

package sim

import "errors"

var (
	// ErrInvalidDuration is returned when a process asks to wait a negative or
	// NaN amount of virtual time.
	ErrInvalidDuration = errors.New("sim: invalid wait duration")

	// ErrInvalidAmount is returned for negative Enter/Leave amounts.
	ErrInvalidAmount = errors.New("sim: invalid pool amount")

	// ErrExceedsCapacity is returned when an Enter request can never fit the pool.
	ErrExceedsCapacity = errors.New("sim: request exceeds pool capacity")

	// ErrPoolUnderflow is returned when Leave releases more than is occupied.
	ErrPoolUnderflow = errors.New("sim: leave exceeds occupied amount")

	// ErrProcessNotRunning is returned when a process that is not currently
	// executing tries to act on a pool.
	ErrProcessNotRunning = errors.New("sim: process is not running")

	// ErrEmptySeries is returned by Stat.Summary when no sample was recorded.
	ErrEmptySeries = errors.New("sim: empty statistics series")
)

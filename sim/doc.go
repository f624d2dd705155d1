// Package sim provides the discrete-event simulation kernel used by powcarbon.
//
// # Reading Guide
//
// Start with these files to understand the kernel:
//   - process.go: Behavior, the Action a behavior returns (Wait, Enter, Terminate) and Process lifecycle
//   - scheduler.go: the virtual clock and the dispatch loop
//   - pool.go: the FIFO capacity pool that processes Enter and Leave
//
// # Architecture
//
// The sim package knows nothing about mining; domain code lives in sub-packages:
//   - sim/mining/: network processes, difficulty retargeting and footprint accounting
//   - sim/energy/: regional electricity mix and carbon-intensity tables
//   - sim/trace/: decision trace recording and SQLite export
//
// A process is a state machine. The scheduler resumes it with a Reason, the
// behavior runs until it returns an Action, and the scheduler turns that Action
// into a future event or a pool request. Events at equal times run in the
// order they were scheduled.
//
// # Randomness
//
// PartitionedRNG derives one independent stream per subsystem from a single
// SimulationKey, so adding draws in one subsystem never shifts another.
// Stat accumulates running count, mean, variance, min and max without
// storing samples.
package sim

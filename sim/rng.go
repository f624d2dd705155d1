package sim

import (
	"hash/fnv"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"
)

// === SimulationKey ===

// SimulationKey uniquely identifies a reproducible simulation run.
// Two simulations with the same SimulationKey and identical configuration
// MUST produce bit-for-bit identical results.
type SimulationKey int64

// NewSimulationKey creates a SimulationKey from a seed value.
func NewSimulationKey(seed int64) SimulationKey {
	return SimulationKey(seed)
}

// === Subsystem Constants ===

const (
	// SubsystemArrivals drives transaction inter-arrival times.
	// Uses the master seed directly.
	SubsystemArrivals = "arrivals"

	// SubsystemTransactions drives transaction weights.
	SubsystemTransactions = "transactions"

	// SubsystemHashRate drives the hash-rate random walk.
	SubsystemHashRate = "hashrate"
)

// pcgStream is the fixed second PCG seed word; the first word carries the
// derived subsystem seed.
const pcgStream = 0x9e3779b97f4a7c15

// === Variates ===

// Variates draws random variates from one seeded stream.
//
// Thread-safety: NOT thread-safe.
type Variates struct {
	src rand.Source
	rng *rand.Rand
}

// NewVariates creates a stream seeded with seed.
func NewVariates(seed int64) *Variates {
	src := rand.NewPCG(uint64(seed), pcgStream)
	return &Variates{src: src, rng: rand.New(src)}
}

// Float64 returns a uniform draw in [0, 1).
func (v *Variates) Float64() float64 {
	return v.rng.Float64()
}

// Uniform returns a continuous uniform draw in the half-open range [lo, hi).
func (v *Variates) Uniform(lo, hi float64) float64 {
	return distuv.Uniform{Min: lo, Max: hi, Src: v.src}.Rand()
}

// Exponential returns an exponential draw with the given mean (rate 1/mean).
func (v *Variates) Exponential(mean float64) float64 {
	return distuv.Exponential{Rate: 1 / mean, Src: v.src}.Rand()
}

// === PartitionedRNG ===

// PartitionedRNG provides deterministic, isolated variate streams per subsystem,
// all derived from one master key per run.
//
// Derivation formula:
//   - For SubsystemArrivals: uses masterSeed directly
//   - For all other subsystems: masterSeed XOR fnv1a64(subsystemName)
//
// Drawing from one subsystem never shifts another subsystem's sequence, so a
// change to, say, the hash-rate walk leaves the arrival stream untouched.
//
// Thread-safety: NOT thread-safe. Must be called from single goroutine.
type PartitionedRNG struct {
	key        SimulationKey
	subsystems map[string]*Variates
}

// NewPartitionedRNG creates a PartitionedRNG from a SimulationKey.
func NewPartitionedRNG(key SimulationKey) *PartitionedRNG {
	return &PartitionedRNG{
		key:        key,
		subsystems: make(map[string]*Variates),
	}
}

// ForSubsystem returns the stream for the named subsystem.
// The same subsystem name always returns the same *Variates instance (cached).
// Never returns nil.
func (p *PartitionedRNG) ForSubsystem(name string) *Variates {
	if v, ok := p.subsystems[name]; ok {
		return v
	}

	var derivedSeed int64
	if name == SubsystemArrivals {
		derivedSeed = int64(p.key)
	} else {
		derivedSeed = int64(p.key) ^ fnv1a64(name)
	}

	v := NewVariates(derivedSeed)
	p.subsystems[name] = v
	return v
}

// Key returns the SimulationKey used to create this PartitionedRNG.
func (p *PartitionedRNG) Key() SimulationKey {
	return p.key
}

// fnv1a64 computes a 64-bit FNV-1a hash of the input string.
func fnv1a64(s string) int64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return int64(h.Sum64())
}

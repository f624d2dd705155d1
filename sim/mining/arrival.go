package mining

import (
	"fmt"

	"github.com/powcarbon/powcarbon/sim"
)

// ArrivalSampler generates transaction inter-arrival times.
type ArrivalSampler interface {
	// SampleIAT returns the next inter-arrival time in seconds (>= 0).
	SampleIAT(v *sim.Variates) float64
}

// ConstantSampler spaces arrivals exactly interval seconds apart.
type ConstantSampler struct {
	interval float64
}

func (s *ConstantSampler) SampleIAT(_ *sim.Variates) float64 {
	return s.interval
}

// UniformSampler draws intervals uniformly between min and max seconds.
type UniformSampler struct {
	min, max float64
}

func (s *UniformSampler) SampleIAT(v *sim.Variates) float64 {
	return v.Uniform(s.min, s.max)
}

// PoissonSampler draws exponential intervals with the given mean (CV=1).
type PoissonSampler struct {
	mean float64
}

func (s *PoissonSampler) SampleIAT(v *sim.Variates) float64 {
	return v.Exponential(s.mean)
}

// DefaultArrival returns the reference parameters for a named arrival process:
// one second for constant and poisson, 0.3 to 2.0 seconds for uniform.
func DefaultArrival(process string) ArrivalSpec {
	switch process {
	case ArrivalUniform:
		return ArrivalSpec{Process: ArrivalUniform, Min: 0.3, Max: 2.0}
	default:
		return ArrivalSpec{Process: process, Interval: 1}
	}
}

// NewArrivalSampler builds the sampler described by spec.
func NewArrivalSampler(spec ArrivalSpec) (ArrivalSampler, error) {
	switch spec.Process {
	case ArrivalConstant:
		return &ConstantSampler{interval: spec.Interval}, nil
	case ArrivalUniform:
		return &UniformSampler{min: spec.Min, max: spec.Max}, nil
	case ArrivalPoisson:
		return &PoissonSampler{mean: spec.Interval}, nil
	default:
		return nil, fmt.Errorf("unknown arrival process %q", spec.Process)
	}
}

package energy

import (
	"fmt"
	"sort"
)

// Experiment is a named bundle of mix overrides reproducing a scenario.
type Experiment struct {
	Name        string
	Description string
	apply       func(m Mix)
}

// Apply overrides the experiment's shares in m.
func (e Experiment) Apply(m Mix) {
	e.apply(m)
}

var experiments = map[string]Experiment{
	"experiment1": {
		Name:        "experiment1",
		Description: "mining moves to Europe: asia production 20%, europe production 63%",
		apply: func(m Mix) {
			m.Production[Asia] = .20
			m.Production[Europe] = .63
		},
	},
	"experiment2": {
		Name:        "experiment2",
		Description: "greener Asia: asia coal 50%, asia renewables 24%",
		apply: func(m Mix) {
			m.SetFuel(Asia, Coal, .50)
			m.SetFuel(Asia, Renewables, .24)
		},
	},
	"experiment3": {
		Name:        "experiment3",
		Description: "coal phase-out: no coal anywhere, renewables asia 74%, america 24.6%, europe 51%",
		apply: func(m Mix) {
			for _, r := range Regions {
				m.SetFuel(r, Coal, 0)
			}
			m.SetFuel(Asia, Renewables, .74)
			m.SetFuel(America, Renewables, .246)
			m.SetFuel(Europe, Renewables, .51)
		},
	},
}

// LookupExperiment returns the experiment registered under name.
func LookupExperiment(name string) (Experiment, error) {
	e, ok := experiments[name]
	if !ok {
		return Experiment{}, fmt.Errorf("unknown experiment %q; valid: %v", name, ExperimentNames())
	}
	return e, nil
}

// ExperimentNames returns the registered experiment names, sorted.
func ExperimentNames() []string {
	names := make([]string, 0, len(experiments))
	for name := range experiments {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

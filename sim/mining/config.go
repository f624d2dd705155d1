package mining

import (
	"bytes"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/powcarbon/powcarbon/sim/energy"
)

// Time constants in simulated seconds.
const (
	SecondsPerDay  = 24 * 60 * 60
	TwoWeeks       = 14 * SecondsPerDay
	SecondsPerYear = 365 * SecondsPerDay
)

// RetargetInterval is the number of blocks between difficulty retargets.
const RetargetInterval = 2016

// RetargetMode selects how difficulty adjusts.
type RetargetMode string

const (
	// RetargetInline adjusts difficulty inside the mining loop every 2016 blocks.
	RetargetInline RetargetMode = "inline"
	// RetargetPeriodic adjusts difficulty from a separate process every two
	// simulated weeks, based on the blocks mined in that window.
	RetargetPeriodic RetargetMode = "periodic"
)

// Arrival process names.
const (
	ArrivalConstant = "constant"
	ArrivalUniform  = "uniform"
	ArrivalPoisson  = "poisson"
)

// ArrivalSpec configures transaction inter-arrival times.
type ArrivalSpec struct {
	Process  string  `yaml:"process"`            // constant (default), uniform or poisson
	Interval float64 `yaml:"interval,omitempty"` // constant interval or poisson mean, seconds
	Min      float64 `yaml:"min,omitempty"`      // uniform lower bound, seconds
	Max      float64 `yaml:"max,omitempty"`      // uniform upper bound, seconds
}

// HashRateWalk configures the hash-rate random walk.
type HashRateWalk struct {
	MeanInterval      float64 `yaml:"mean_interval"`       // mean seconds between perturbations
	MeanChangePercent float64 `yaml:"mean_change_percent"` // mean of the exponential change draw
	DownwardChance    float64 `yaml:"downward_chance"`     // probability of the extra downward kick
}

// Config is everything a run consumes. Share fields are percentages in
// [0, 100]; a region or fuel absent from the maps keeps its reference value.
type Config struct {
	Seed    int64   `yaml:"seed"`
	Horizon float64 `yaml:"horizon"` // simulated seconds

	AsicPower        float64 `yaml:"asic_power"`        // W per device
	AsicHashPower    float64 `yaml:"asic_hash_power"`   // TH/s per device
	HashRate         float64 `yaml:"hash_rate"`         // initial network TH/s
	DifficultyFactor float64 `yaml:"difficulty_factor"` // initial difficulty = hash_rate * factor

	PoolCapacity   int `yaml:"pool_capacity"`
	InitialBacklog int `yaml:"initial_backlog"` // units the miner occupies before its first block

	Arrival      ArrivalSpec  `yaml:"arrival"`
	HashRateWalk HashRateWalk `yaml:"hash_rate_walk"`
	Retarget     RetargetMode `yaml:"retarget"`

	IntensityTable string `yaml:"intensity_table"`
	Experiment     string `yaml:"experiment,omitempty"`

	Production map[energy.Region]float64                 `yaml:"production,omitempty"`
	Fuels      map[energy.Region]map[energy.Fuel]float64 `yaml:"fuels,omitempty"`
}

// DefaultConfig returns the reference configuration.
func DefaultConfig() Config {
	return Config{
		Seed:             42,
		Horizon:          SecondsPerYear,
		AsicPower:        1535.62,
		AsicHashPower:    4.2438,
		HashRate:         35036000,
		DifficultyFactor: 512,
		PoolCapacity:     2400,
		InitialBacklog:   2200,
		Arrival:          ArrivalSpec{Process: ArrivalConstant, Interval: 1},
		HashRateWalk: HashRateWalk{
			MeanInterval:      SecondsPerDay,
			MeanChangePercent: 1.5,
			DownwardChance:    0.4,
		},
		Retarget:       RetargetInline,
		IntensityTable: energy.LifecycleTable.Name,
	}
}

// LoadConfig reads a YAML configuration file on top of DefaultConfig.
// Uses strict parsing: unrecognized keys (typos) are rejected.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// SetProduction overrides a region's production share, in percent.
func (c *Config) SetProduction(r energy.Region, percent float64) {
	if c.Production == nil {
		c.Production = make(map[energy.Region]float64)
	}
	c.Production[r] = percent
}

// SetFuel overrides a region's share of one fuel, in percent.
func (c *Config) SetFuel(r energy.Region, f energy.Fuel, percent float64) {
	if c.Fuels == nil {
		c.Fuels = make(map[energy.Region]map[energy.Fuel]float64)
	}
	if c.Fuels[r] == nil {
		c.Fuels[r] = make(map[energy.Fuel]float64)
	}
	c.Fuels[r][f] = percent
}

// Mix builds the energy mix: reference shares, then the configured percentage
// overrides, then the experiment bundle if one is selected.
func (c Config) Mix() (energy.Mix, error) {
	mix := energy.DefaultMix().Clone()
	for r, pct := range c.Production {
		mix.Production[r] = pct / 100
	}
	for r, fuels := range c.Fuels {
		for f, pct := range fuels {
			mix.SetFuel(r, f, pct/100)
		}
	}
	if c.Experiment != "" {
		exp, err := energy.LookupExperiment(c.Experiment)
		if err != nil {
			return mix, err
		}
		exp.Apply(mix)
	}
	return mix, nil
}

// InitialDifficulty returns hash_rate * difficulty_factor.
func (c Config) InitialDifficulty() float64 {
	return c.HashRate * c.DifficultyFactor
}

// ConfigError reports a configuration value that must stop the run before it
// starts.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid configuration: %s %s", e.Field, e.Reason)
}

func configErrorf(field, format string, args ...any) error {
	return &ConfigError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// ValidatePercent checks that a percentage lies in [0, 100].
func ValidatePercent(field string, v float64) error {
	if math.IsNaN(v) || v < 0 || v > 100 {
		return configErrorf(field, "must be a percentage in [0, 100], got %v", v)
	}
	return nil
}

func validateNonNegative(field string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return configErrorf(field, "must be a finite non-negative number, got %v", v)
	}
	return nil
}

func validatePositive(field string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return configErrorf(field, "must be a finite positive number, got %v", v)
	}
	return nil
}

// Validate checks every field. The first problem is returned as a *ConfigError.
func (c Config) Validate() error {
	if err := validateNonNegative("asic_power", c.AsicPower); err != nil {
		return err
	}
	// The next two are divisors: zero would make every figure infinite.
	if err := validatePositive("asic_hash_power", c.AsicHashPower); err != nil {
		return err
	}
	if err := validatePositive("hash_rate", c.HashRate); err != nil {
		return err
	}
	if err := validatePositive("difficulty_factor", c.DifficultyFactor); err != nil {
		return err
	}
	if err := validatePositive("horizon", c.Horizon); err != nil {
		return err
	}
	if c.PoolCapacity <= 0 {
		return configErrorf("pool_capacity", "must be positive, got %d", c.PoolCapacity)
	}
	if c.InitialBacklog < 0 || c.InitialBacklog > c.PoolCapacity {
		return configErrorf("initial_backlog", "must be in [0, %d], got %d", c.PoolCapacity, c.InitialBacklog)
	}

	for _, r := range energy.Regions {
		if v, ok := c.Production[r]; ok {
			if err := ValidatePercent(string(r)+"_production", v); err != nil {
				return err
			}
		}
		for _, f := range energy.Fuels {
			if v, ok := c.Fuels[r][f]; ok {
				if err := ValidatePercent(string(r)+"_"+string(f), v); err != nil {
					return err
				}
			}
		}
	}
	if err := c.validateKeys(); err != nil {
		return err
	}

	if err := c.validateArrival(); err != nil {
		return err
	}
	if err := c.validateWalk(); err != nil {
		return err
	}
	switch c.Retarget {
	case RetargetInline, RetargetPeriodic:
	default:
		return configErrorf("retarget", "must be %q or %q, got %q", RetargetInline, RetargetPeriodic, c.Retarget)
	}
	if _, err := energy.LookupTable(c.IntensityTable); err != nil {
		return configErrorf("intensity_table", "%v", err)
	}
	if c.Experiment != "" {
		if _, err := energy.LookupExperiment(c.Experiment); err != nil {
			return configErrorf("experiment", "%v", err)
		}
	}
	return nil
}

// validateKeys rejects region or fuel names that Validate's loops would skip.
func (c Config) validateKeys() error {
	knownRegion := func(r energy.Region) bool {
		for _, k := range energy.Regions {
			if k == r {
				return true
			}
		}
		return false
	}
	knownFuel := func(f energy.Fuel) bool {
		for _, k := range energy.Fuels {
			if k == f {
				return true
			}
		}
		return false
	}
	for r := range c.Production {
		if !knownRegion(r) {
			return configErrorf("production", "unknown region %q", r)
		}
	}
	for r, fuels := range c.Fuels {
		if !knownRegion(r) {
			return configErrorf("fuels", "unknown region %q", r)
		}
		for f := range fuels {
			if !knownFuel(f) {
				return configErrorf("fuels."+string(r), "unknown fuel %q", f)
			}
		}
	}
	return nil
}

func (c Config) validateArrival() error {
	a := c.Arrival
	switch a.Process {
	case ArrivalConstant, ArrivalPoisson:
		return validatePositive("arrival.interval", a.Interval)
	case ArrivalUniform:
		if err := validateNonNegative("arrival.min", a.Min); err != nil {
			return err
		}
		if err := validatePositive("arrival.max", a.Max); err != nil {
			return err
		}
		if a.Min > a.Max {
			return configErrorf("arrival", "min %v exceeds max %v", a.Min, a.Max)
		}
		return nil
	default:
		return configErrorf("arrival.process", "must be %s, %s or %s, got %q",
			ArrivalConstant, ArrivalUniform, ArrivalPoisson, a.Process)
	}
}

func (c Config) validateWalk() error {
	w := c.HashRateWalk
	if err := validatePositive("hash_rate_walk.mean_interval", w.MeanInterval); err != nil {
		return err
	}
	if err := validateNonNegative("hash_rate_walk.mean_change_percent", w.MeanChangePercent); err != nil {
		return err
	}
	if math.IsNaN(w.DownwardChance) || w.DownwardChance < 0 || w.DownwardChance > 1 {
		return configErrorf("hash_rate_walk.downward_chance", "must be in [0, 1], got %v", w.DownwardChance)
	}
	return nil
}

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/powcarbon/powcarbon/sim/energy"
	"github.com/powcarbon/powcarbon/sim/mining"
	"github.com/powcarbon/powcarbon/sim/trace"
)

var (
	// CLI flags for the run itself
	configPath  string  // YAML config applied before flags
	seed        int64   // Master seed for every random stream
	horizon     float64 // Simulated seconds
	logLevel    string  // Log verbosity level
	resultsPath string  // JSON results file
	traceDBPath string  // SQLite trace database
	traceLevel  string  // none, events or blocks

	// CLI flags for the network and hardware
	asicPower        float64 // W per device
	asicHashPower    float64 // TH/s per device
	hashRate         float64 // Initial network TH/s
	difficultyFactor float64 // Initial difficulty = hash rate * factor
	poolCapacity     int     // Pool capacity in transaction units
	initialBacklog   int     // Units the miner occupies before the first block

	// CLI flags for the model variants
	arrivalProcess  string  // constant, uniform or poisson
	arrivalInterval float64 // Constant interval or poisson mean
	arrivalMin      float64 // Uniform lower bound
	arrivalMax      float64 // Uniform upper bound
	retargetMode    string  // inline or periodic
	intensityTable  string  // lifecycle or legacy
	experiment      string  // Named override bundle

	// CLI flags for the energy mix, in percent
	productionShares = map[energy.Region]*float64{}
	fuelShares       = map[energy.Region]map[energy.Fuel]*float64{}
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "powcarbon",
	Short: "Discrete-event simulator for the carbon footprint of proof-of-work mining",
}

// runCmd executes the simulation using parameters from the config file and CLI flags
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Simulate the mining network and report its carbon footprint",
	Run: func(cmd *cobra.Command, args []string) {
		// Set up logging
		lvl, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(lvl)

		if !trace.IsValidTraceLevel(traceLevel) {
			logrus.Fatalf("Invalid trace level %q; valid: none, events, blocks", traceLevel)
		}

		cfg, err := buildConfig(cmd.Flags())
		if err != nil {
			logrus.Fatalf("%v", err)
		}

		var st *trace.SimulationTrace
		opts := []mining.Option{}
		level := trace.TraceLevel(traceLevel)
		if level == "" {
			level = trace.TraceLevelNone
		}
		if traceDBPath != "" && level == trace.TraceLevelNone {
			logrus.Warnf("--trace-db set without --trace-level; recording events")
			level = trace.TraceLevelEvents
		}
		if level != trace.TraceLevelNone {
			st = trace.NewSimulationTrace(level)
			opts = append(opts, mining.WithTrace(st))
		}

		s, err := mining.NewSimulation(cfg, opts...)
		if err != nil {
			logrus.Fatalf("%v", err)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		startTime := time.Now()
		res, err := s.Run(ctx)
		if err != nil {
			logrus.Fatalf("Simulation failed: %v", err)
		}

		printReport(os.Stdout, res, st, time.Since(startTime))

		if resultsPath != "" {
			if err := res.SaveResults(resultsPath); err != nil {
				logrus.Fatalf("%v", err)
			}
			logrus.Infof("Results written to %s", resultsPath)
		}
		if traceDBPath != "" {
			if err := trace.WriteSQLite(traceDBPath, st); err != nil {
				logrus.Fatalf("%v", err)
			}
			logrus.Infof("Trace written to %s", traceDBPath)
		}

		logrus.Info("Simulation complete.")
	},
}

// experimentsCmd lists the named override bundles
var experimentsCmd = &cobra.Command{
	Use:   "experiments",
	Short: "List the named energy-mix experiments",
	Run: func(cmd *cobra.Command, args []string) {
		printExperiments(cmd.OutOrStdout())
	},
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// flagName turns a region and an optional fuel into a flag name such as
// asia-crude-oil.
func flagName(r energy.Region, suffix string) string {
	return string(r) + "-" + strings.ReplaceAll(suffix, "_", "-")
}

// registerRunFlags binds the run flags to fs.
func registerRunFlags(fs *pflag.FlagSet) {
	def := mining.DefaultConfig()

	fs.StringVar(&configPath, "config", "", "YAML config file; flags set on the command line override it")
	fs.Int64Var(&seed, "seed", def.Seed, "Master seed for every random stream")
	fs.Float64Var(&horizon, "horizon", def.Horizon, "Simulated horizon in seconds")
	fs.StringVar(&logLevel, "log", "warn", "Log level (trace, debug, info, warn, error, fatal, panic)")
	fs.StringVar(&resultsPath, "results-path", "", "Write results as JSON to this file")
	fs.StringVar(&traceDBPath, "trace-db", "", "Write the decision trace to this new SQLite file")
	fs.StringVar(&traceLevel, "trace-level", string(trace.TraceLevelNone), "Trace verbosity (none, events, blocks)")

	// Network and hardware
	fs.Float64Var(&asicPower, "asic-power", def.AsicPower, "Power draw of one mining device in W")
	fs.Float64Var(&asicHashPower, "asic-hash-power", def.AsicHashPower, "Hash power of one mining device in TH/s")
	fs.Float64Var(&hashRate, "hash-rate", def.HashRate, "Initial network hash rate in TH/s")
	fs.Float64Var(&difficultyFactor, "difficulty-factor", def.DifficultyFactor, "Initial difficulty as a multiple of the hash rate")
	fs.IntVar(&poolCapacity, "pool-capacity", def.PoolCapacity, "Transaction pool capacity in units")
	fs.IntVar(&initialBacklog, "initial-backlog", def.InitialBacklog, "Units in the first block")

	// Model variants
	fs.StringVar(&arrivalProcess, "arrival", def.Arrival.Process, "Transaction arrival process (constant, uniform, poisson)")
	fs.Float64Var(&arrivalInterval, "arrival-interval", def.Arrival.Interval, "Constant interval or poisson mean in seconds")
	fs.Float64Var(&arrivalMin, "arrival-min", 0.3, "Uniform arrival lower bound in seconds")
	fs.Float64Var(&arrivalMax, "arrival-max", 2.0, "Uniform arrival upper bound in seconds")
	fs.StringVar(&retargetMode, "retarget", string(def.Retarget), "Difficulty retarget mode (inline, periodic)")
	fs.StringVar(&intensityTable, "intensity-table", def.IntensityTable, "Carbon intensity table (lifecycle, legacy)")
	fs.StringVar(&experiment, "experiment", "", "Named experiment applied after the share flags (see `experiments`)")

	// Energy mix
	ref := energy.DefaultMix()
	for _, r := range energy.Regions {
		v := new(float64)
		productionShares[r] = v
		fs.Float64Var(v, flagName(r, "production"), ref.Production[r]*100,
			fmt.Sprintf("Share of mining electricity produced in %s, percent", r))

		fuelShares[r] = map[energy.Fuel]*float64{}
		for _, f := range energy.Fuels {
			v := new(float64)
			fuelShares[r][f] = v
			fs.Float64Var(v, flagName(r, string(f)), ref.Fuels[r][f]*100,
				fmt.Sprintf("Share of %s in the %s electricity mix, percent", strings.ReplaceAll(string(f), "_", " "), r))
		}
	}
}

// buildConfig starts from defaults, applies --config if given, then every
// flag set explicitly on the command line, and validates the result.
func buildConfig(fs *pflag.FlagSet) (mining.Config, error) {
	cfg := mining.DefaultConfig()
	if configPath != "" {
		loaded, err := mining.LoadConfig(configPath)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
		logrus.Infof("Loaded config from %s", configPath)
	}

	changed := fs.Changed
	if changed("seed") {
		cfg.Seed = seed
	}
	if changed("horizon") {
		cfg.Horizon = horizon
	}
	if changed("asic-power") {
		cfg.AsicPower = asicPower
	}
	if changed("asic-hash-power") {
		cfg.AsicHashPower = asicHashPower
	}
	if changed("hash-rate") {
		cfg.HashRate = hashRate
	}
	if changed("difficulty-factor") {
		cfg.DifficultyFactor = difficultyFactor
	}
	if changed("pool-capacity") {
		cfg.PoolCapacity = poolCapacity
	}
	if changed("initial-backlog") {
		cfg.InitialBacklog = initialBacklog
	}
	if changed("arrival") {
		cfg.Arrival = mining.DefaultArrival(arrivalProcess)
	}
	if changed("arrival-interval") {
		cfg.Arrival.Interval = arrivalInterval
	}
	if changed("arrival-min") {
		cfg.Arrival.Min = arrivalMin
	}
	if changed("arrival-max") {
		cfg.Arrival.Max = arrivalMax
	}
	if changed("retarget") {
		cfg.Retarget = mining.RetargetMode(retargetMode)
	}
	if changed("intensity-table") {
		cfg.IntensityTable = intensityTable
	}
	if changed("experiment") {
		cfg.Experiment = experiment
	}
	for _, r := range energy.Regions {
		if changed(flagName(r, "production")) {
			cfg.SetProduction(r, *productionShares[r])
		}
		for _, f := range energy.Fuels {
			if changed(flagName(r, string(f))) {
				cfg.SetFuel(r, f, *fuelShares[r][f])
			}
		}
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// init sets up CLI flags and subcommands
func init() {
	registerRunFlags(runCmd.Flags())

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(experimentsCmd)
}

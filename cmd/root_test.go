package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/powcarbon/powcarbon/sim/energy"
	"github.com/powcarbon/powcarbon/sim/mining"
)

func TestMain(m *testing.M) {
	if os.Getenv("DEBUG_TESTS") == "" {
		logrus.SetLevel(logrus.ErrorLevel)
	}
	os.Exit(m.Run())
}

// parseRunFlags registers the run flags on a fresh FlagSet and parses args.
func parseRunFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("run", pflag.ContinueOnError)
	registerRunFlags(fs)
	require.NoError(t, fs.Parse(args))
	return fs
}

func TestFlagName(t *testing.T) {
	assert.Equal(t, "asia-crude-oil", flagName(energy.Asia, string(energy.CrudeOil)))
	assert.Equal(t, "europe-production", flagName(energy.Europe, "production"))
}

func TestBuildConfig_NoFlagsGivesDefaults(t *testing.T) {
	// GIVEN no flags on the command line
	fs := parseRunFlags(t)

	// WHEN the config is built
	cfg, err := buildConfig(fs)

	// THEN it is the reference configuration with no share overrides
	require.NoError(t, err)
	assert.Equal(t, mining.DefaultConfig(), cfg)
}

func TestBuildConfig_FlagOverrides(t *testing.T) {
	// GIVEN scalar and share flags
	fs := parseRunFlags(t,
		"--seed", "7",
		"--hash-rate", "1e6",
		"--retarget", "periodic",
		"--asia-coal", "50",
		"--europe-production", "30",
	)

	// WHEN the config is built
	cfg, err := buildConfig(fs)

	// THEN only the flags that were set override the defaults
	require.NoError(t, err)
	assert.Equal(t, int64(7), cfg.Seed)
	assert.Equal(t, 1e6, cfg.HashRate)
	assert.Equal(t, mining.RetargetPeriodic, cfg.Retarget)
	assert.Equal(t, map[energy.Region]float64{energy.Europe: 30}, cfg.Production)
	assert.Equal(t, map[energy.Region]map[energy.Fuel]float64{energy.Asia: {energy.Coal: 50}}, cfg.Fuels)
	assert.Equal(t, mining.DefaultConfig().AsicPower, cfg.AsicPower)
}

func TestBuildConfig_PercentBoundaries(t *testing.T) {
	tests := []struct {
		value string
		ok    bool
	}{
		{"0", true},
		{"100", true},
		{"-0.1", false},
		{"100.1", false},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			fs := parseRunFlags(t, "--america-renewables="+tt.value)

			_, err := buildConfig(fs)

			if tt.ok {
				assert.NoError(t, err)
				return
			}
			var cerr *mining.ConfigError
			require.ErrorAs(t, err, &cerr)
			assert.Equal(t, "america_renewables", cerr.Field)
		})
	}
}

func TestBuildConfig_ArrivalSwitchUsesProcessDefaults(t *testing.T) {
	fs := parseRunFlags(t, "--arrival", "uniform")

	cfg, err := buildConfig(fs)

	require.NoError(t, err)
	assert.Equal(t, mining.ArrivalSpec{Process: mining.ArrivalUniform, Min: 0.3, Max: 2.0}, cfg.Arrival)
}

func TestBuildConfig_UnknownExperiment(t *testing.T) {
	fs := parseRunFlags(t, "--experiment", "experiment9")

	_, err := buildConfig(fs)

	var cerr *mining.ConfigError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, "experiment", cerr.Field)
}

func TestBuildConfig_FlagsOverrideConfigFile(t *testing.T) {
	// GIVEN a YAML file setting the seed and hash rate
	path := filepath.Join(t.TempDir(), "run.yaml")
	require.NoError(t, os.WriteFile(path, []byte("seed: 5\nhash_rate: 2000000\nproduction:\n  asia: 40\n"), 0o644))

	// WHEN the seed is also passed on the command line
	fs := parseRunFlags(t, "--config", path, "--seed", "9")
	cfg, err := buildConfig(fs)

	// THEN the flag wins and the rest of the file is kept
	require.NoError(t, err)
	assert.Equal(t, int64(9), cfg.Seed)
	assert.Equal(t, 2e6, cfg.HashRate)
	assert.Equal(t, 40.0, cfg.Production[energy.Asia])
}

func TestBuildConfig_MissingConfigFile(t *testing.T) {
	fs := parseRunFlags(t, "--config", filepath.Join(t.TempDir(), "absent.yaml"))

	_, err := buildConfig(fs)

	assert.Error(t, err)
}

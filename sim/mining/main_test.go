package mining

import (
	"os"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestMain(m *testing.M) {
	// Set DEBUG_TESTS=1 to see full logs: DEBUG_TESTS=1 go test ./sim/mining/... -v
	if os.Getenv("DEBUG_TESTS") == "" {
		logrus.SetLevel(logrus.ErrorLevel)
	}
	os.Exit(m.Run())
}

// testConfig returns the reference configuration with a short horizon.
func testConfig(mutate func(*Config)) Config {
	cfg := DefaultConfig()
	cfg.Horizon = 30 * SecondsPerDay
	if mutate != nil {
		mutate(&cfg)
	}
	return cfg
}

func newTestContext(t *testing.T, mutate func(*Config)) *Context {
	t.Helper()
	c, err := NewContext(testConfig(mutate), nil, nil)
	if err != nil {
		t.Fatalf("NewContext: %v", err)
	}
	return c
}

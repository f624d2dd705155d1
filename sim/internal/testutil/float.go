// Package testutil provides assertion helpers shared by the sim test packages.
package testutil

import (
	"math"
	"testing"
)

// AssertFloat64Equal compares two float64 values with relative tolerance.
func AssertFloat64Equal(t *testing.T, name string, want, got, relTol float64) {
	t.Helper()
	if want == 0 && got == 0 {
		return
	}
	diff := math.Abs(want - got)
	maxVal := math.Max(math.Abs(want), math.Abs(got))
	if diff/maxVal > relTol {
		t.Errorf("%s: got %v, want %v (diff=%v, relDiff=%v)", name, got, want, diff, diff/maxVal)
	}
}

// AssertWithinPercent checks that got lies within pct percent of want.
func AssertWithinPercent(t *testing.T, name string, want, got, pct float64) {
	t.Helper()
	lo := want * (1 - pct/100)
	hi := want * (1 + pct/100)
	if lo > hi {
		lo, hi = hi, lo
	}
	if got < lo || got > hi {
		t.Errorf("%s: got %v, want %v ±%v%% [%v, %v]", name, got, want, pct, lo, hi)
	}
}

// AssertAllEqual fails unless got and want have the same length and every
// element matches bit for bit. NaN matches NaN.
func AssertAllEqual(t *testing.T, name string, want, got []float64) {
	t.Helper()
	if len(want) != len(got) {
		t.Fatalf("%s: length %d, want %d", name, len(got), len(want))
	}
	for i := range want {
		if math.Float64bits(want[i]) != math.Float64bits(got[i]) && !(math.IsNaN(want[i]) && math.IsNaN(got[i])) {
			t.Errorf("%s[%d]: got %v, want %v", name, i, got[i], want[i])
		}
	}
}

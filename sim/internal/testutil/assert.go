// Package testutil provides shared assertion helpers for the simulator's
// statistical tests.
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

// AssertInRange fails unless lo <= got <= hi.
func AssertInRange(t *testing.T, name string, got, lo, hi float64) {
	t.Helper()
	if got < lo || got > hi {
		t.Errorf("%s: got %v, want in [%v, %v]", name, got, lo, hi)
	}
}

// AssertWithinDelta compares with absolute tolerance.
func AssertWithinDelta(t *testing.T, name string, want, got, delta float64) {
	t.Helper()
	if math.Abs(want-got) > delta {
		t.Errorf("%s: got %v, want %v ± %v", name, got, want, delta)
	}
}

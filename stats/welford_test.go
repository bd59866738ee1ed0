package stats_test

import (
	"math"
	"testing"

	"github.com/sabouaram/ktli/stats"
)

func TestWelfordMeanAndVariance(t *testing.T) {
	var w stats.Welford
	samples := []float64{2, 4, 4, 4, 5, 5, 7, 9}
	for _, s := range samples {
		w.Update(s)
	}

	if got, want := w.Count(), int64(len(samples)); got != want {
		t.Fatalf("Count() = %d, want %d", got, want)
	}
	if got, want := w.Mean(), 5.0; math.Abs(got-want) > 1e-9 {
		t.Fatalf("Mean() = %v, want %v", got, want)
	}
	if got, want := w.Variance(), 32.0/7.0; math.Abs(got-want) > 1e-9 {
		t.Fatalf("Variance() = %v, want %v", got, want)
	}
	if got, want := w.Stddev(), math.Sqrt(32.0/7.0); math.Abs(got-want) > 1e-9 {
		t.Fatalf("Stddev() = %v, want %v", got, want)
	}
}

func TestWelfordEmptyAndSingleSample(t *testing.T) {
	var w stats.Welford
	if got := w.Mean(); got != 0 {
		t.Fatalf("empty Mean() = %v, want 0", got)
	}
	if got := w.Variance(); got != 0 {
		t.Fatalf("empty Variance() = %v, want 0", got)
	}

	w.Update(42)
	if got := w.Variance(); got != 0 {
		t.Fatalf("single-sample Variance() = %v, want 0 (n < 2)", got)
	}
	if got := w.Mean(); got != 42 {
		t.Fatalf("single-sample Mean() = %v, want 42", got)
	}
}

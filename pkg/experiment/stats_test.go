package experiment

import (
	"math"
	"testing"
)

func TestMean(t *testing.T) {
	if got := Mean(nil); got != 0 {
		t.Errorf("Mean(nil) = %f, want 0", got)
	}
	if got := Mean([]float64{2, 4, 6}); got != 4 {
		t.Errorf("Mean = %f, want 4", got)
	}
}

func TestStd(t *testing.T) {
	if got := Std(nil); got != 0 {
		t.Errorf("Std(nil) = %f, want 0", got)
	}
	// Population stddev of {2, 4, 4, 4, 5, 5, 7, 9} is exactly 2.
	got := Std([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	if math.Abs(got-2) > 1e-12 {
		t.Errorf("Std = %f, want 2", got)
	}
}

func TestIntHelpers(t *testing.T) {
	if got := MeanInts([]int{1, 2, 3}); got != 2 {
		t.Errorf("MeanInts = %f, want 2", got)
	}
	if got := MeanInts(nil); got != 0 {
		t.Errorf("MeanInts(nil) = %f, want 0", got)
	}
	if got := StdInts([]int{3, 3, 3}); got != 0 {
		t.Errorf("StdInts = %f, want 0", got)
	}
}

package elasticity

import (
	"errors"
	"math"
	"testing"
)

func TestEstimateExactSlope(t *testing.T) {
	// y = 2t with no noise recovers the slope without rounding error
	treatment := make([]float64, 10)
	outcome := make([]float64, 10)
	for i := 0; i < 10; i++ {
		treatment[i] = float64(i + 1)
		outcome[i] = 2 * treatment[i]
	}

	got, err := Estimate(treatment, outcome)
	if err != nil {
		t.Fatalf("Estimate failed: %v", err)
	}
	if got != 2.0 {
		t.Errorf("Expected exactly 2.0, got %v", got)
	}
}

func TestEstimateNegativeSlope(t *testing.T) {
	treatment := []float64{1, 2, 3, 4, 5}
	outcome := make([]float64, len(treatment))
	for i, v := range treatment {
		outcome[i] = 3 - 4*v
	}

	got, err := Estimate(treatment, outcome)
	if err != nil {
		t.Fatalf("Estimate failed: %v", err)
	}
	if got != -4.0 {
		t.Errorf("Expected exactly -4.0, got %v", got)
	}
}

func TestEstimateInterceptInvariance(t *testing.T) {
	// Shifting either variable by a constant must not move the slope
	treatment := []float64{2, 4, 7, 1, 9, 3}
	outcome := []float64{5, 1, 8, 2, 14, 3}

	base, err := Estimate(treatment, outcome)
	if err != nil {
		t.Fatalf("Estimate failed: %v", err)
	}

	shiftedT := make([]float64, len(treatment))
	shiftedY := make([]float64, len(outcome))
	for i := range treatment {
		shiftedT[i] = treatment[i] + 100
		shiftedY[i] = outcome[i] - 50
	}

	shifted, err := Estimate(shiftedT, shiftedY)
	if err != nil {
		t.Fatalf("Estimate failed: %v", err)
	}
	if math.Abs(shifted-base) > 1e-9 {
		t.Errorf("Slope moved under constant shift: %v vs %v", base, shifted)
	}
}

func TestEstimateDegenerateTreatment(t *testing.T) {
	treatment := []float64{5, 5, 5, 5}
	outcome := []float64{1, 2, 3, 4}

	_, err := Estimate(treatment, outcome)
	if err == nil {
		t.Fatal("Constant treatment should fail")
	}
	if !errors.Is(err, ErrDegenerateTreatment) {
		t.Errorf("Expected ErrDegenerateTreatment, got %v", err)
	}
}

func TestEstimateSingleRowIsDegenerate(t *testing.T) {
	_, err := Estimate([]float64{3}, []float64{7})
	if !errors.Is(err, ErrDegenerateTreatment) {
		t.Errorf("Single row has zero treatment variance, got %v", err)
	}
}

func TestEstimateEmptyInput(t *testing.T) {
	_, err := Estimate(nil, nil)
	if !errors.Is(err, ErrEmptyDataset) {
		t.Errorf("Expected ErrEmptyDataset, got %v", err)
	}
}

func TestEstimateLengthMismatch(t *testing.T) {
	_, err := Estimate([]float64{1, 2, 3}, []float64{1, 2})
	if err == nil {
		t.Error("Length mismatch should fail")
	}
}

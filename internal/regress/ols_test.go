package regress

import (
	"math"
	"testing"

	"github.com/sawpanic/causalrank/internal/dataset"
)

func buildFrame(t *testing.T, names []string, cols ...[]float64) *dataset.Frame {
	t.Helper()
	f := dataset.New()
	for i, name := range names {
		if err := f.AddColumn(name, cols[i]); err != nil {
			t.Fatalf("AddColumn %q failed: %v", name, err)
		}
	}
	return f
}

func TestFitFrameRecoversLinearCoefficients(t *testing.T) {
	n := 10
	x := make([]float64, n)
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		x[i] = float64(i)
		y[i] = 2 + 3*x[i]
	}
	f := buildFrame(t, []string{"x", "y"}, x, y)

	model, err := FitFrame(f, "y", Design{Intercept: true, Terms: []Term{{Field: "x"}}})
	if err != nil {
		t.Fatalf("FitFrame failed: %v", err)
	}

	coefs := model.Coefficients()
	if math.Abs(coefs["intercept"]-2) > 1e-8 {
		t.Errorf("Expected intercept 2, got %v", coefs["intercept"])
	}
	if math.Abs(coefs["x"]-3) > 1e-8 {
		t.Errorf("Expected slope 3, got %v", coefs["x"])
	}

	preds, err := model.PredictFrame(f)
	if err != nil {
		t.Fatalf("PredictFrame failed: %v", err)
	}
	for i := range y {
		if math.Abs(preds[i]-y[i]) > 1e-8 {
			t.Errorf("Row %d: expected prediction %v, got %v", i, y[i], preds[i])
		}
	}
}

func TestFitFrameWithInteraction(t *testing.T) {
	n := 12
	a := make([]float64, n)
	b := make([]float64, n)
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		a[i] = float64(i + 1)
		b[i] = float64((i * 3) % 7)
		y[i] = 1 + 2*a[i] + 0.5*a[i]*b[i] - b[i]
	}
	f := buildFrame(t, []string{"a", "b", "y"}, a, b, y)

	design := Design{
		Intercept: true,
		Terms:     []Term{{Field: "a"}, {Field: "a", With: "b"}, {Field: "b"}},
	}
	model, err := FitFrame(f, "y", design)
	if err != nil {
		t.Fatalf("FitFrame failed: %v", err)
	}

	coefs := model.Coefficients()
	expected := map[string]float64{"intercept": 1, "a": 2, "a:b": 0.5, "b": -1}
	for name, want := range expected {
		if math.Abs(coefs[name]-want) > 1e-8 {
			t.Errorf("Coefficient %q: expected %v, got %v", name, want, coefs[name])
		}
	}

	// Effect of a is 2 + 0.5*b per row
	scores, err := model.EffectScore(f, "a")
	if err != nil {
		t.Fatalf("EffectScore failed: %v", err)
	}
	for i := range scores {
		want := 2 + 0.5*b[i]
		if math.Abs(scores[i]-want) > 1e-8 {
			t.Errorf("Row %d: expected effect score %v, got %v", i, want, scores[i])
		}
	}
}

func TestFitFrameWithDummies(t *testing.T) {
	n := 15
	x := make([]float64, n)
	d := make([]float64, n)
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		x[i] = float64(i)
		d[i] = float64(i%3 + 1)
		y[i] = 10 + 5*x[i]
		switch d[i] {
		case 2:
			y[i] += 20
		case 3:
			y[i] += 30
		}
	}
	f := buildFrame(t, []string{"x", "d", "y"}, x, d, y)

	design := Design{Intercept: true, Terms: []Term{{Field: "x"}}, Dummies: []string{"d"}}
	model, err := FitFrame(f, "y", design)
	if err != nil {
		t.Fatalf("FitFrame failed: %v", err)
	}

	coefs := model.Coefficients()
	if math.Abs(coefs["d=2"]-20) > 1e-8 {
		t.Errorf("Expected d=2 coefficient 20, got %v", coefs["d=2"])
	}
	if math.Abs(coefs["d=3"]-30) > 1e-8 {
		t.Errorf("Expected d=3 coefficient 30, got %v", coefs["d=3"])
	}

	r2, err := model.R2Frame(f, "y")
	if err != nil {
		t.Fatalf("R2Frame failed: %v", err)
	}
	if r2 < 1-1e-9 {
		t.Errorf("Noiseless fit should have R² of 1, got %v", r2)
	}
}

func TestR2FrameBoundedOnNoisyData(t *testing.T) {
	n := 20
	x := make([]float64, n)
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		x[i] = float64(i)
		noise := 3.0
		if i%2 == 0 {
			noise = -3.0
		}
		y[i] = 4*x[i] + noise
	}
	f := buildFrame(t, []string{"x", "y"}, x, y)

	model, err := FitFrame(f, "y", Design{Intercept: true, Terms: []Term{{Field: "x"}}})
	if err != nil {
		t.Fatalf("FitFrame failed: %v", err)
	}

	r2, err := model.R2Frame(f, "y")
	if err != nil {
		t.Fatalf("R2Frame failed: %v", err)
	}
	if r2 <= 0 || r2 >= 1 {
		t.Errorf("Noisy fit should have R² strictly inside (0,1), got %v", r2)
	}

	mse, err := model.MSEFrame(f, "y")
	if err != nil {
		t.Fatalf("MSEFrame failed: %v", err)
	}
	if mse <= 0 || mse > 9+1e-8 {
		t.Errorf("MSE should be positive and at most the noise variance 9, got %v", mse)
	}
}

func TestR2FrameZeroVarianceOutcome(t *testing.T) {
	f := buildFrame(t, []string{"x", "y"},
		[]float64{1, 2, 3, 4},
		[]float64{7, 7, 7, 7},
	)

	model, err := FitFrame(f, "y", Design{Intercept: true, Terms: []Term{{Field: "x"}}})
	if err != nil {
		t.Fatalf("FitFrame failed: %v", err)
	}
	if _, err := model.R2Frame(f, "y"); err == nil {
		t.Error("Constant outcome should fail R²")
	}
}

func TestFitFrameErrors(t *testing.T) {
	f := buildFrame(t, []string{"x", "y"},
		[]float64{1, 2, 3, 4, 5},
		[]float64{2, 4, 6, 8, 10},
	)

	if _, err := FitFrame(f, "missing", Design{Intercept: true, Terms: []Term{{Field: "x"}}}); err == nil {
		t.Error("Missing outcome column should fail")
	}
	if _, err := FitFrame(f, "y", Design{Intercept: true, Terms: []Term{{Field: "nope"}}}); err == nil {
		t.Error("Missing term column should fail")
	}
	if _, err := FitFrame(f, "y", Design{}); err == nil {
		t.Error("Empty design should fail")
	}

	// Duplicate columns make the design collinear
	collinear := Design{Intercept: true, Terms: []Term{{Field: "x"}, {Field: "x"}}}
	if _, err := FitFrame(f, "y", collinear); err == nil {
		t.Error("Collinear design should fail")
	}

	tiny := buildFrame(t, []string{"x", "y"}, []float64{1}, []float64{2})
	if _, err := FitFrame(tiny, "y", Design{Intercept: true, Terms: []Term{{Field: "x"}}}); err == nil {
		t.Error("Fewer rows than parameters should fail")
	}
}

func TestEffectScoreRequiresTreatmentTerm(t *testing.T) {
	f := buildFrame(t, []string{"x", "t", "y"},
		[]float64{1, 2, 3, 4, 5},
		[]float64{5, 4, 3, 2, 1},
		[]float64{2, 4, 6, 8, 10},
	)

	model, err := FitFrame(f, "y", Design{Intercept: true, Terms: []Term{{Field: "x"}}})
	if err != nil {
		t.Fatalf("FitFrame failed: %v", err)
	}
	if _, err := model.EffectScore(f, "t"); err == nil {
		t.Error("Effect score without a treatment term should fail")
	}
}

func TestEffectScoreRejectsDummyTreatment(t *testing.T) {
	f := buildFrame(t, []string{"x", "d", "y"},
		[]float64{1, 2, 3, 4, 5, 6},
		[]float64{1, 2, 1, 2, 1, 2},
		[]float64{2, 5, 6, 9, 10, 13},
	)

	model, err := FitFrame(f, "y", Design{Intercept: true, Terms: []Term{{Field: "x"}}, Dummies: []string{"d"}})
	if err != nil {
		t.Fatalf("FitFrame failed: %v", err)
	}
	if _, err := model.EffectScore(f, "d"); err == nil {
		t.Error("Dummy treatment should fail effect score")
	}
}

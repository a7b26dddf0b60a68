package eval

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/sawpanic/causalrank/internal/dataset"
	"github.com/sawpanic/causalrank/internal/elasticity"
)

// Baseline is the expected curve of a score with no information: uniform
// random scores, averaged pointwise over repeated trials. Its mean curve
// should track the diagonal from (0,0) to (1, elasticity(full dataset)); the
// deviation fields quantify how closely it does.
type Baseline struct {
	Trials            int       `json:"trials"`
	Fractions         []float64 `json:"fractions"`
	MeanValues        []float64 `json:"mean_values"`
	FinalElasticity   float64   `json:"final_elasticity"`
	MaxDeviation      float64   `json:"max_deviation"`
	RelativeDeviation float64   `json:"relative_deviation"`
}

// baselineScoreField must not collide with caller columns on the scratch
// frame; the scratch frame only ever holds the three columns used here.
const baselineScoreField = "random_score"

// RandomBaseline reruns the cumulative gain computation with fresh uniform
// random scores, trials times, and averages the curves pointwise. The
// caller's frame is left untouched; randomness comes only from rng.
func RandomBaseline(f *dataset.Frame, cfg elasticity.CurveConfig, trials int, rng *rand.Rand) (*Baseline, error) {
	if trials <= 0 {
		return nil, fmt.Errorf("trials must be positive, got %d", trials)
	}

	outcome, ok := f.Column(cfg.OutcomeField)
	if !ok {
		return nil, fmt.Errorf("outcome column %q not found", cfg.OutcomeField)
	}
	treatment, ok := f.Column(cfg.TreatmentField)
	if !ok {
		return nil, fmt.Errorf("treatment column %q not found", cfg.TreatmentField)
	}

	trialCfg := cfg
	trialCfg.ScoreField = baselineScoreField

	var fractions []float64
	var meanValues []float64
	var final float64

	scores := make([]float64, f.Len())
	for trial := 0; trial < trials; trial++ {
		for i := range scores {
			scores[i] = rng.Float64()
		}

		scratch := dataset.New()
		if err := scratch.AddColumn(baselineScoreField, scores); err != nil {
			return nil, fmt.Errorf("build trial frame: %w", err)
		}
		if err := scratch.AddColumn(cfg.OutcomeField, outcome); err != nil {
			return nil, fmt.Errorf("build trial frame: %w", err)
		}
		if err := scratch.AddColumn(cfg.TreatmentField, treatment); err != nil {
			return nil, fmt.Errorf("build trial frame: %w", err)
		}

		curve, err := elasticity.CumulativeGain(scratch, trialCfg)
		if err != nil {
			return nil, fmt.Errorf("trial %d: %w", trial+1, err)
		}

		if meanValues == nil {
			meanValues = make([]float64, len(curve.Points))
			fractions = make([]float64, len(curve.Points))
			for i, p := range curve.Points {
				fractions[i] = p.Fraction
			}
			final = curve.Final().Value
		}
		for i, p := range curve.Points {
			meanValues[i] += p.Value
		}
	}

	for i := range meanValues {
		meanValues[i] /= float64(trials)
	}

	var maxDev float64
	for i := range meanValues {
		dev := math.Abs(meanValues[i] - fractions[i]*final)
		if dev > maxDev {
			maxDev = dev
		}
	}

	relative := 0.0
	if final != 0 {
		relative = maxDev / math.Abs(final)
	}

	return &Baseline{
		Trials:            trials,
		Fractions:         fractions,
		MeanValues:        meanValues,
		FinalElasticity:   final,
		MaxDeviation:      maxDev,
		RelativeDeviation: relative,
	}, nil
}

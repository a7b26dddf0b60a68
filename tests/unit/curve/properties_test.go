package curve

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sawpanic/causalrank/internal/dataset"
	"github.com/sawpanic/causalrank/internal/elasticity"
	"github.com/sawpanic/causalrank/internal/eval"
)

// buildLinearFrame creates the reference dataset: treatment 1..10, outcome
// exactly twice the treatment, score equal to the treatment.
func buildLinearFrame(t *testing.T) *dataset.Frame {
	treatment := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	outcome := make([]float64, len(treatment))
	for i, v := range treatment {
		outcome[i] = 2 * v
	}

	frame := dataset.New()
	require.NoError(t, frame.AddColumn("t", treatment))
	require.NoError(t, frame.AddColumn("y", outcome))
	require.NoError(t, frame.AddColumn("score", treatment))
	return frame
}

// TestElasticityExactOnLinearData tests that a perfectly linear relation
// recovers its slope without floating point error
func TestElasticityExactOnLinearData(t *testing.T) {
	treatment := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	outcome := make([]float64, len(treatment))
	for i, v := range treatment {
		outcome[i] = 2 * v
	}

	got, err := elasticity.Estimate(treatment, outcome)
	require.NoError(t, err)

	// All deviations and products are exactly representable, so the result
	// must be exactly 2.0, not approximately.
	assert.Equal(t, 2.0, got, "Slope of y=2t should be exact")
}

// TestPrefixSequence tests the documented prefix walk for min_periods=3,
// steps=2 on a 10-row frame
func TestPrefixSequence(t *testing.T) {
	frame := buildLinearFrame(t)

	cfg := elasticity.CurveConfig{
		ScoreField:     "score",
		OutcomeField:   "y",
		TreatmentField: "t",
		MinPeriods:     3,
		Steps:          2,
	}

	curve, err := elasticity.CumulativeGain(frame, cfg)
	require.NoError(t, err)

	// stride = 10/2 = 5: prefixes 3, 8, then the full frame
	require.Len(t, curve.Points, 3, "Expected exactly three evaluated prefixes")
	assert.Equal(t, 3, curve.Points[0].K)
	assert.Equal(t, 8, curve.Points[1].K)
	assert.Equal(t, 10, curve.Points[2].K)

	// Every prefix of y=2t has slope 2, so each value is 2 * fraction
	for _, p := range curve.Points {
		assert.InDelta(t, 2.0*p.Fraction, p.Value, 1e-12,
			"Prefix of %d rows should scale the slope by its fraction", p.K)
	}
}

// TestFinalPointMatchesFullEstimate tests that the last curve point always
// equals the full-frame elasticity scaled by 1.0
func TestFinalPointMatchesFullEstimate(t *testing.T) {
	rng := rand.New(rand.NewSource(21))
	n := 500
	treatment := make([]float64, n)
	outcome := make([]float64, n)
	score := make([]float64, n)
	for i := 0; i < n; i++ {
		treatment[i] = 5 + rng.NormFloat64()
		outcome[i] = 100 - 3*treatment[i] + 2*rng.NormFloat64()
		score[i] = rng.Float64()
	}

	frame := dataset.New()
	require.NoError(t, frame.AddColumn("t", treatment))
	require.NoError(t, frame.AddColumn("y", outcome))
	require.NoError(t, frame.AddColumn("score", score))

	cfg := elasticity.CurveConfig{
		ScoreField:     "score",
		OutcomeField:   "y",
		TreatmentField: "t",
		MinPeriods:     30,
		Steps:          25,
	}

	curve, err := elasticity.CumulativeGain(frame, cfg)
	require.NoError(t, err)

	full, err := elasticity.Estimate(treatment, outcome)
	require.NoError(t, err)

	final := curve.Final()
	assert.Equal(t, 1.0, final.Fraction, "Final point must cover the whole frame")
	assert.InDelta(t, full, final.Value, 1e-9, "Final value must equal the full elasticity")

	// Prefix lengths never decrease and the sequence ends at the frame size
	for i := 1; i < len(curve.Points); i++ {
		assert.GreaterOrEqual(t, curve.Points[i].K, curve.Points[i-1].K,
			"Prefix lengths must be non-decreasing")
	}
	assert.Equal(t, n, final.K)
}

// TestCurveIsIdempotent tests that repeated computation on an unchanged
// frame is bit-for-bit identical
func TestCurveIsIdempotent(t *testing.T) {
	frame := buildLinearFrame(t)

	cfg := elasticity.CurveConfig{
		ScoreField:     "score",
		OutcomeField:   "y",
		TreatmentField: "t",
		MinPeriods:     3,
		Steps:          4,
	}

	first, err := elasticity.CumulativeGain(frame, cfg)
	require.NoError(t, err)
	second, err := elasticity.CumulativeGain(frame, cfg)
	require.NoError(t, err)

	require.Equal(t, len(first.Points), len(second.Points))
	for i := range first.Points {
		assert.Equal(t, first.Points[i], second.Points[i],
			"Point %d must be identical across runs", i)
	}
}

// TestDegenerateTreatmentRejected tests that constant treatments surface an
// error instead of a silent NaN
func TestDegenerateTreatmentRejected(t *testing.T) {
	_, err := elasticity.Estimate([]float64{5, 5, 5, 5}, []float64{1, 2, 3, 4})
	require.ErrorIs(t, err, elasticity.ErrDegenerateTreatment)

	// A constant-treatment prefix inside a curve surfaces the same error
	frame := dataset.New()
	require.NoError(t, frame.AddColumn("t", []float64{7, 7, 7, 7, 7, 1, 2, 3}))
	require.NoError(t, frame.AddColumn("y", []float64{1, 2, 3, 4, 5, 6, 7, 8}))
	require.NoError(t, frame.AddColumn("score", []float64{8, 7, 6, 5, 4, 3, 2, 1}))

	cfg := elasticity.CurveConfig{
		ScoreField:     "score",
		OutcomeField:   "y",
		TreatmentField: "t",
		MinPeriods:     2,
		Steps:          4,
	}
	_, err = elasticity.CumulativeGain(frame, cfg)
	require.ErrorIs(t, err, elasticity.ErrDegenerateTreatment)
}

// TestInvalidConfigurationsRejected tests the configuration error contract
func TestInvalidConfigurationsRejected(t *testing.T) {
	frame := buildLinearFrame(t)

	testCases := []struct {
		name       string
		minPeriods int
		steps      int
	}{
		{"zero steps", 3, 0},
		{"negative steps", 3, -2},
		{"zero min periods", 0, 2},
		{"negative min periods", -1, 2},
		{"min periods beyond frame", 11, 2},
		{"steps beyond frame", 3, 11},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := elasticity.CurveConfig{
				ScoreField:     "score",
				OutcomeField:   "y",
				TreatmentField: "t",
				MinPeriods:     tc.minPeriods,
				Steps:          tc.steps,
			}
			_, err := elasticity.CumulativeGain(frame, cfg)
			assert.ErrorIs(t, err, elasticity.ErrInvalidConfig)
		})
	}
}

// TestEmptyDatasetRejected tests the empty input contract
func TestEmptyDatasetRejected(t *testing.T) {
	_, err := elasticity.Estimate(nil, nil)
	require.ErrorIs(t, err, elasticity.ErrEmptyDataset)

	cfg := elasticity.CurveConfig{
		ScoreField:     "score",
		OutcomeField:   "y",
		TreatmentField: "t",
		MinPeriods:     3,
		Steps:          2,
	}
	_, err = elasticity.CumulativeGain(dataset.New(), cfg)
	require.ErrorIs(t, err, elasticity.ErrEmptyDataset)
}

// TestRandomScoreTracksDiagonal tests that an uninformed ranking averages
// to the straight line from zero to the full elasticity
func TestRandomScoreTracksDiagonal(t *testing.T) {
	rng := rand.New(rand.NewSource(31))
	n := 800
	treatment := make([]float64, n)
	outcome := make([]float64, n)
	for i := 0; i < n; i++ {
		treatment[i] = 10 + 2*rng.NormFloat64()
		outcome[i] = 50 + 3*treatment[i] + 4*rng.NormFloat64()
	}

	frame := dataset.New()
	require.NoError(t, frame.AddColumn("t", treatment))
	require.NoError(t, frame.AddColumn("y", outcome))

	cfg := elasticity.CurveConfig{
		OutcomeField:   "y",
		TreatmentField: "t",
		MinPeriods:     30,
		Steps:          20,
	}

	baseline, err := eval.RandomBaseline(frame, cfg, 30, rand.New(rand.NewSource(32)))
	require.NoError(t, err)

	assert.Less(t, baseline.RelativeDeviation, 0.1,
		"Mean random curve should hug the diagonal, deviated %.2f%%", baseline.RelativeDeviation*100)
}

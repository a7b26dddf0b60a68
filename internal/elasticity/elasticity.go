// Package elasticity estimates linear treatment effects and builds
// cumulative gain curves over score-ranked data. The curve is the diagnostic
// that separates outcome prediction from effect ordering: a score that ranks
// units by treatment effect produces a curve that rises above the random
// diagonal, while a score that merely predicts the outcome may not.
package elasticity

import "fmt"

// Estimate computes the linear effect of treatment on outcome as the
// covariance/variance ratio:
//
//	Σ (t_i - mean(t)) * (y_i - mean(y)) / Σ (t_i - mean(t))²
//
// This equals the slope of the least-squares regression of outcome on
// treatment. The computation is two-pass: population means first, then the
// two sums. Pure and O(n).
//
// Returns ErrEmptyDataset for zero rows and ErrDegenerateTreatment when all
// treatment values are identical.
func Estimate(treatment, outcome []float64) (float64, error) {
	if len(treatment) == 0 {
		return 0, ErrEmptyDataset
	}
	if len(treatment) != len(outcome) {
		return 0, fmt.Errorf("treatment has %d rows, outcome has %d", len(treatment), len(outcome))
	}

	n := float64(len(treatment))
	var sumT, sumY float64
	for i := range treatment {
		sumT += treatment[i]
		sumY += outcome[i]
	}
	meanT := sumT / n
	meanY := sumY / n

	var num, den float64
	for i := range treatment {
		dt := treatment[i] - meanT
		num += dt * (outcome[i] - meanY)
		den += dt * dt
	}

	if den == 0 {
		return 0, ErrDegenerateTreatment
	}
	return num / den, nil
}

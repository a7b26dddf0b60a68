package regress

import (
	"fmt"

	"gonum.org/v1/gonum/stat"

	"github.com/sawpanic/causalrank/internal/dataset"
)

// Denoise removes the covariate-driven component of an outcome by
// residualizing it on the given design: fit outcome ~ covariates, subtract
// the fit, add the outcome mean back so the residualized series keeps the
// original scale. The treatment must not appear in the covariate design or
// the treatment effect itself would be stripped out.
func Denoise(f *dataset.Frame, outcome string, covariates Design) ([]float64, error) {
	if covariates.references(outcome) {
		return nil, fmt.Errorf("outcome %q cannot appear in the denoising design", outcome)
	}

	model, err := FitFrame(f, outcome, covariates)
	if err != nil {
		return nil, fmt.Errorf("fit denoising model: %w", err)
	}

	preds, err := model.PredictFrame(f)
	if err != nil {
		return nil, fmt.Errorf("predict covariate component: %w", err)
	}

	y, _ := f.Column(outcome)
	mean := stat.Mean(y, nil)

	residuals := make([]float64, len(y))
	for i := range y {
		residuals[i] = y[i] - preds[i] + mean
	}
	return residuals, nil
}

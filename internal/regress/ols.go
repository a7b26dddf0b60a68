package regress

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/sawpanic/causalrank/internal/dataset"
)

// Model is a fitted least-squares model. It retains the design and the dummy
// levels discovered at fit time, so the same schema can be applied to a
// different frame for prediction and scoring.
type Model struct {
	design   Design
	levels   map[string][]float64
	colNames []string
	coefs    []float64
}

// FitFrame fits outcome on the design's columns by QR least squares.
func FitFrame(f *dataset.Frame, outcome string, design Design) (*Model, error) {
	y, ok := f.Column(outcome)
	if !ok {
		return nil, fmt.Errorf("outcome column %q not found", outcome)
	}

	levels, err := design.discoverLevels(f)
	if err != nil {
		return nil, fmt.Errorf("discover dummy levels: %w", err)
	}

	X, names, err := design.matrix(f, levels)
	if err != nil {
		return nil, fmt.Errorf("build design matrix: %w", err)
	}

	rows, cols := X.Dims()
	if rows < cols {
		return nil, fmt.Errorf("need at least %d rows to fit %d parameters, have %d", cols, cols, rows)
	}

	yVec := mat.NewVecDense(rows, nil)
	for i := 0; i < rows; i++ {
		yVec.SetVec(i, y[i])
	}

	var qr mat.QR
	qr.Factorize(X)

	var beta mat.Dense
	if err := qr.SolveTo(&beta, false, yVec); err != nil {
		return nil, fmt.Errorf("solve least squares (design may be collinear): %w", err)
	}

	coefs := make([]float64, cols)
	for j := 0; j < cols; j++ {
		coefs[j] = beta.At(j, 0)
	}

	return &Model{
		design:   design,
		levels:   levels,
		colNames: names,
		coefs:    coefs,
	}, nil
}

// Coefficients returns the fitted coefficients keyed by design column name.
func (m *Model) Coefficients() map[string]float64 {
	out := make(map[string]float64, len(m.coefs))
	for i, name := range m.colNames {
		out[name] = m.coefs[i]
	}
	return out
}

// PredictFrame evaluates the fitted model on a frame with the same columns
// as the fitting frame.
func (m *Model) PredictFrame(f *dataset.Frame) ([]float64, error) {
	X, _, err := m.design.matrix(f, m.levels)
	if err != nil {
		return nil, fmt.Errorf("build design matrix: %w", err)
	}

	rows, _ := X.Dims()
	betaVec := mat.NewVecDense(len(m.coefs), m.coefs)

	var pred mat.VecDense
	pred.MulVec(X, betaVec)

	out := make([]float64, rows)
	for i := 0; i < rows; i++ {
		out[i] = pred.AtVec(i)
	}
	return out, nil
}

// R2Frame returns the coefficient of determination of the model's
// predictions against the frame's outcome column.
func (m *Model) R2Frame(f *dataset.Frame, outcome string) (float64, error) {
	y, ok := f.Column(outcome)
	if !ok {
		return 0, fmt.Errorf("outcome column %q not found", outcome)
	}
	if len(y) < 2 {
		return 0, fmt.Errorf("R² needs at least 2 rows, have %d", len(y))
	}
	if stat.Variance(y, nil) == 0 {
		return 0, fmt.Errorf("outcome %q has zero variance", outcome)
	}

	preds, err := m.PredictFrame(f)
	if err != nil {
		return 0, err
	}
	return stat.RSquaredFrom(preds, y, nil), nil
}

// MSEFrame returns the mean squared error of the model's predictions against
// the frame's outcome column.
func (m *Model) MSEFrame(f *dataset.Frame, outcome string) (float64, error) {
	y, ok := f.Column(outcome)
	if !ok {
		return 0, fmt.Errorf("outcome column %q not found", outcome)
	}

	preds, err := m.PredictFrame(f)
	if err != nil {
		return 0, err
	}

	var sum float64
	for i := range y {
		d := y[i] - preds[i]
		sum += d * d
	}
	return sum / float64(len(y)), nil
}

// EffectScore returns the derivative of the fitted surface with respect to
// the treatment column, per row: the treatment main-effect coefficient plus
// each treatment interaction coefficient times its partner column. This is
// the model's predicted elasticity and the natural ranking score for
// cumulative gain curves.
func (m *Model) EffectScore(f *dataset.Frame, treatment string) ([]float64, error) {
	for _, field := range m.design.Dummies {
		if field == treatment {
			return nil, fmt.Errorf("treatment %q is a dummy field, effect score needs a continuous term", treatment)
		}
	}

	offset := 0
	if m.design.Intercept {
		offset = 1
	}

	var base float64
	type interaction struct {
		partner string
		coef    float64
	}
	var interactions []interaction
	found := false

	for i, term := range m.design.Terms {
		coef := m.coefs[offset+i]
		switch {
		case term.Field == treatment && term.With == "":
			base += coef
			found = true
		case term.Field == treatment && term.With == treatment:
			// d(c·t²)/dt = 2c·t
			interactions = append(interactions, interaction{partner: treatment, coef: 2 * coef})
			found = true
		case term.Field == treatment && term.With != "":
			interactions = append(interactions, interaction{partner: term.With, coef: coef})
			found = true
		case term.With == treatment:
			interactions = append(interactions, interaction{partner: term.Field, coef: coef})
			found = true
		}
	}
	if !found {
		return nil, fmt.Errorf("design has no term in treatment %q", treatment)
	}

	scores := make([]float64, f.Len())
	for i := range scores {
		scores[i] = base
	}
	for _, ia := range interactions {
		partner, ok := f.Column(ia.partner)
		if !ok {
			return nil, fmt.Errorf("interaction column %q not found", ia.partner)
		}
		for i := range scores {
			scores[i] += ia.coef * partner[i]
		}
	}
	return scores, nil
}

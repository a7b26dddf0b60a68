// Package regress fits ordinary least squares models on dataset frames. It
// covers the model-fitting side of the walkthrough: predicting outcomes,
// scoring fits with R², deriving per-row effect scores from interaction
// terms, and denoising an outcome by residualizing it on covariates.
package regress

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/sawpanic/causalrank/internal/dataset"
)

// Term is one regressor. A plain term references a single column; setting
// With makes it the elementwise product of the two columns, which is how
// heterogeneous effects enter a linear model.
type Term struct {
	Field string
	With  string
}

// name returns the design-matrix column label for the term.
func (t Term) name() string {
	if t.With == "" {
		return t.Field
	}
	return t.Field + ":" + t.With
}

// Design describes the columns of a regression design matrix: an optional
// intercept, continuous terms (with optional interactions), and dummy
// expansions for discrete-valued columns. Dummy levels are discovered from
// the fitting frame, sorted ascending, with the first level dropped as the
// base.
type Design struct {
	Intercept bool
	Terms     []Term
	Dummies   []string
}

// references reports whether the design uses the given column anywhere.
func (d Design) references(field string) bool {
	for _, term := range d.Terms {
		if term.Field == field || term.With == field {
			return true
		}
	}
	for _, dummy := range d.Dummies {
		if dummy == field {
			return true
		}
	}
	return false
}

// discoverLevels collects the sorted distinct values of each dummy column.
func (d Design) discoverLevels(f *dataset.Frame) (map[string][]float64, error) {
	levels := make(map[string][]float64, len(d.Dummies))
	for _, field := range d.Dummies {
		col, ok := f.Column(field)
		if !ok {
			return nil, fmt.Errorf("dummy column %q not found", field)
		}
		seen := make(map[float64]bool)
		for _, v := range col {
			seen[v] = true
		}
		distinct := make([]float64, 0, len(seen))
		for v := range seen {
			distinct = append(distinct, v)
		}
		sort.Float64s(distinct)
		if len(distinct) < 2 {
			return nil, fmt.Errorf("dummy column %q has fewer than 2 levels", field)
		}
		levels[field] = distinct
	}
	return levels, nil
}

// matrix builds the design matrix for a frame using fixed dummy levels.
// Levels unseen at fit time contribute only the dropped base level.
func (d Design) matrix(f *dataset.Frame, levels map[string][]float64) (*mat.Dense, []string, error) {
	rows := f.Len()
	if rows == 0 {
		return nil, nil, fmt.Errorf("design matrix needs at least one row")
	}

	names := make([]string, 0, 1+len(d.Terms))
	if d.Intercept {
		names = append(names, "intercept")
	}
	for _, term := range d.Terms {
		names = append(names, term.name())
	}
	for _, field := range d.Dummies {
		for _, level := range levels[field][1:] {
			names = append(names, fmt.Sprintf("%s=%g", field, level))
		}
	}
	if len(names) == 0 {
		return nil, nil, fmt.Errorf("design has no columns")
	}

	X := mat.NewDense(rows, len(names), nil)
	col := 0

	if d.Intercept {
		for i := 0; i < rows; i++ {
			X.Set(i, col, 1)
		}
		col++
	}

	for _, term := range d.Terms {
		base, ok := f.Column(term.Field)
		if !ok {
			return nil, nil, fmt.Errorf("term column %q not found", term.Field)
		}
		if term.With == "" {
			for i := 0; i < rows; i++ {
				X.Set(i, col, base[i])
			}
		} else {
			partner, ok := f.Column(term.With)
			if !ok {
				return nil, nil, fmt.Errorf("interaction column %q not found", term.With)
			}
			for i := 0; i < rows; i++ {
				X.Set(i, col, base[i]*partner[i])
			}
		}
		col++
	}

	for _, field := range d.Dummies {
		values, ok := f.Column(field)
		if !ok {
			return nil, nil, fmt.Errorf("dummy column %q not found", field)
		}
		for _, level := range levels[field][1:] {
			for i := 0; i < rows; i++ {
				if values[i] == level {
					X.Set(i, col, 1)
				}
			}
			col++
		}
	}

	return X, names, nil
}

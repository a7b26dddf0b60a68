package elasticity

import "errors"

var (
	// ErrEmptyDataset is returned when a computation receives zero rows.
	ErrEmptyDataset = errors.New("dataset has no rows")

	// ErrDegenerateTreatment is returned when the treatment column has zero
	// variance in the evaluated slice, which makes the elasticity denominator
	// zero. Callers get the error instead of a silent NaN.
	ErrDegenerateTreatment = errors.New("treatment has zero variance")

	// ErrInvalidConfig is returned for curve configurations that cannot
	// produce a well-formed prefix sequence.
	ErrInvalidConfig = errors.New("invalid curve configuration")
)

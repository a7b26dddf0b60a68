package elasticity

import (
	"fmt"

	"github.com/sawpanic/causalrank/internal/dataset"
)

// CurveConfig selects the columns and sampling density for a cumulative gain
// curve. MinPeriods guards against noisy elasticity estimates on tiny
// prefixes; Steps controls how many prefix sizes are evaluated.
type CurveConfig struct {
	ScoreField     string `yaml:"score_field" json:"score_field"`
	OutcomeField   string `yaml:"outcome_field" json:"outcome_field"`
	TreatmentField string `yaml:"treatment_field" json:"treatment_field"`
	MinPeriods     int    `yaml:"min_periods" json:"min_periods"`
	Steps          int    `yaml:"steps" json:"steps"`
}

// DefaultCurveConfig returns the standard sampling parameters. Field names
// have no sensible defaults and must be set by the caller.
func DefaultCurveConfig() CurveConfig {
	return CurveConfig{
		MinPeriods: 30,
		Steps:      100,
	}
}

// Validate checks the size-independent parts of the configuration.
func (c CurveConfig) Validate() error {
	if c.ScoreField == "" || c.OutcomeField == "" || c.TreatmentField == "" {
		return fmt.Errorf("score, outcome and treatment fields must be set: %w", ErrInvalidConfig)
	}
	if c.Steps <= 0 {
		return fmt.Errorf("steps must be positive, got %d: %w", c.Steps, ErrInvalidConfig)
	}
	if c.MinPeriods <= 0 {
		return fmt.Errorf("min_periods must be positive, got %d: %w", c.MinPeriods, ErrInvalidConfig)
	}
	return nil
}

// Point is one evaluated prefix of the ranked dataset. Value is the
// elasticity of the prefix scaled by its coverage fraction K/size.
type Point struct {
	K          int     `json:"k"`
	Fraction   float64 `json:"fraction"`
	Elasticity float64 `json:"elasticity"`
	Value      float64 `json:"value"`
}

// Curve is an ordered sequence of scaled elasticity values over growing
// prefixes of the score-ranked dataset. Prefix sizes ascend; the last point
// always covers the full dataset.
type Curve struct {
	Points []Point `json:"points"`
}

// Values returns the scaled elasticity values in prefix order.
func (c *Curve) Values() []float64 {
	values := make([]float64, len(c.Points))
	for i, p := range c.Points {
		values[i] = p.Value
	}
	return values
}

// Final returns the last point, which covers the full dataset.
func (c *Curve) Final() Point {
	if len(c.Points) == 0 {
		return Point{}
	}
	return c.Points[len(c.Points)-1]
}

// CumulativeGain ranks the frame by the score column, strictly descending,
// and evaluates the elasticity estimator over growing prefixes of the ranked
// rows, scaling each estimate by its coverage fraction.
//
// Prefix sizes start at MinPeriods and advance by size/Steps (integer
// division), stopping before the full size; the full size is then always
// appended as the final prefix. A penultimate prefix may land close to the
// final one; the near-duplicate is kept because removing it would change the
// curve shape.
//
// The input frame is never reordered or otherwise modified, and the result
// depends only on the inputs, so repeated calls return identical curves.
// Ties in score keep their input order.
//
// MinPeriods larger than the dataset is rejected with ErrInvalidConfig
// rather than clamped, as is a Steps count exceeding the dataset size (the
// stride would be zero). A zero-variance treatment in any evaluated prefix
// surfaces ErrDegenerateTreatment wrapped with the prefix size.
func CumulativeGain(f *dataset.Frame, cfg CurveConfig) (*Curve, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	size := f.Len()
	if size == 0 {
		return nil, ErrEmptyDataset
	}
	if cfg.MinPeriods > size {
		return nil, fmt.Errorf("min_periods %d exceeds dataset size %d: %w",
			cfg.MinPeriods, size, ErrInvalidConfig)
	}

	outcomeCol, ok := f.Column(cfg.OutcomeField)
	if !ok {
		return nil, fmt.Errorf("outcome column %q not found", cfg.OutcomeField)
	}
	treatmentCol, ok := f.Column(cfg.TreatmentField)
	if !ok {
		return nil, fmt.Errorf("treatment column %q not found", cfg.TreatmentField)
	}

	index, err := f.SortedIndexDesc(cfg.ScoreField)
	if err != nil {
		return nil, fmt.Errorf("rank by score: %w", err)
	}

	lengths, err := prefixLengths(size, cfg.MinPeriods, cfg.Steps)
	if err != nil {
		return nil, err
	}

	treatment := make([]float64, size)
	outcome := make([]float64, size)
	for i, idx := range index {
		treatment[i] = treatmentCol[idx]
		outcome[i] = outcomeCol[idx]
	}

	points := make([]Point, 0, len(lengths))
	for _, k := range lengths {
		estimate, err := Estimate(treatment[:k], outcome[:k])
		if err != nil {
			return nil, fmt.Errorf("prefix of %d rows: %w", k, err)
		}
		fraction := float64(k) / float64(size)
		points = append(points, Point{
			K:          k,
			Fraction:   fraction,
			Elasticity: estimate,
			Value:      estimate * fraction,
		})
	}

	return &Curve{Points: points}, nil
}

// prefixLengths builds the ascending prefix-size sequence for a dataset of
// the given size: minPeriods, minPeriods+stride, ... below size, then size
// itself as the forced final entry.
func prefixLengths(size, minPeriods, steps int) ([]int, error) {
	stride := size / steps
	if stride == 0 {
		return nil, fmt.Errorf("steps %d exceeds dataset size %d: %w", steps, size, ErrInvalidConfig)
	}

	lengths := make([]int, 0, steps+1)
	for k := minPeriods; k < size; k += stride {
		lengths = append(lengths, k)
	}
	return append(lengths, size), nil
}

package dataset

import (
	"fmt"
	"math/rand"
	"sort"
)

// Frame is a column-oriented table of float64 columns. Columns keep their
// insertion order and share a single row count. A Frame is the unit of data
// exchanged between the simulator, the regression layer, and the curve
// builder; none of them mutate a Frame they did not create.
type Frame struct {
	names []string
	cols  map[string][]float64
	rows  int
}

// New creates an empty frame with no columns and no rows.
func New() *Frame {
	return &Frame{
		names: make([]string, 0),
		cols:  make(map[string][]float64),
	}
}

// AddColumn appends a named column. The first column fixes the row count;
// subsequent columns must match it. Values are copied so later changes to the
// caller's slice do not reach the frame.
func (f *Frame) AddColumn(name string, values []float64) error {
	if name == "" {
		return fmt.Errorf("column name must not be empty")
	}
	if _, exists := f.cols[name]; exists {
		return fmt.Errorf("column %q already present", name)
	}
	if len(f.names) > 0 && len(values) != f.rows {
		return fmt.Errorf("column %q has %d rows, frame has %d", name, len(values), f.rows)
	}

	col := make([]float64, len(values))
	copy(col, values)

	if len(f.names) == 0 {
		f.rows = len(values)
	}
	f.names = append(f.names, name)
	f.cols[name] = col
	return nil
}

// Column returns the values of a named column and whether it exists. The
// returned slice is the frame's backing storage; callers must treat it as
// read-only.
func (f *Frame) Column(name string) ([]float64, bool) {
	col, ok := f.cols[name]
	return col, ok
}

// HasColumn reports whether a column with the given name exists.
func (f *Frame) HasColumn(name string) bool {
	_, ok := f.cols[name]
	return ok
}

// Columns returns the column names in insertion order.
func (f *Frame) Columns() []string {
	names := make([]string, len(f.names))
	copy(names, f.names)
	return names
}

// Len returns the number of rows.
func (f *Frame) Len() int {
	return f.rows
}

// SortedIndexDesc returns a row permutation that orders the frame strictly
// descending by the given column. The sort is stable, so tied values keep
// their input order and repeated calls yield identical permutations. The
// frame itself is not reordered.
func (f *Frame) SortedIndexDesc(name string) ([]int, error) {
	col, ok := f.cols[name]
	if !ok {
		return nil, fmt.Errorf("sort column %q not found", name)
	}

	index := make([]int, f.rows)
	for i := range index {
		index[i] = i
	}
	sort.SliceStable(index, func(i, j int) bool {
		return col[index[i]] > col[index[j]]
	})
	return index, nil
}

// Select materializes a new frame whose rows follow the given index. Indices
// may repeat; each must be inside [0, Len).
func (f *Frame) Select(index []int) (*Frame, error) {
	for _, idx := range index {
		if idx < 0 || idx >= f.rows {
			return nil, fmt.Errorf("row index %d out of range [0,%d)", idx, f.rows)
		}
	}

	out := New()
	for _, name := range f.names {
		src := f.cols[name]
		col := make([]float64, len(index))
		for i, idx := range index {
			col[i] = src[idx]
		}
		if err := out.AddColumn(name, col); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Head materializes a copy of the first k rows.
func (f *Frame) Head(k int) (*Frame, error) {
	if k < 0 || k > f.rows {
		return nil, fmt.Errorf("head length %d outside [0,%d]", k, f.rows)
	}
	index := make([]int, k)
	for i := range index {
		index[i] = i
	}
	return f.Select(index)
}

// Split partitions the frame into train and test frames by shuffling rows
// with the supplied random source. testFraction must lie in (0,1) and the
// frame needs at least two rows so both sides are non-empty.
func (f *Frame) Split(testFraction float64, rng *rand.Rand) (train, test *Frame, err error) {
	if testFraction <= 0 || testFraction >= 1 {
		return nil, nil, fmt.Errorf("test fraction %.3f outside (0,1)", testFraction)
	}
	if f.rows < 2 {
		return nil, nil, fmt.Errorf("split needs at least 2 rows, have %d", f.rows)
	}

	perm := rng.Perm(f.rows)
	nTest := int(float64(f.rows) * testFraction)
	if nTest < 1 {
		nTest = 1
	}
	if nTest > f.rows-1 {
		nTest = f.rows - 1
	}

	test, err = f.Select(perm[:nTest])
	if err != nil {
		return nil, nil, fmt.Errorf("select test rows: %w", err)
	}
	train, err = f.Select(perm[nTest:])
	if err != nil {
		return nil, nil, fmt.Errorf("select train rows: %w", err)
	}
	return train, test, nil
}

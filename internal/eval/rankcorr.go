package eval

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// RankCorrelation returns the Spearman rank correlation between two
// equal-length series. Ties receive their average rank; the result is the
// Pearson correlation of the two rank series.
func RankCorrelation(a, b []float64) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("series length mismatch: %d vs %d", len(a), len(b))
	}
	if len(a) < 2 {
		return 0, fmt.Errorf("rank correlation needs at least 2 rows, have %d", len(a))
	}

	return stat.Correlation(ranks(a), ranks(b), nil), nil
}

// ranks assigns 1-based ranks in ascending value order, averaging ranks
// across tied values.
func ranks(values []float64) []float64 {
	n := len(values)
	index := make([]int, n)
	for i := range index {
		index[i] = i
	}
	sort.SliceStable(index, func(i, j int) bool {
		return values[index[i]] < values[index[j]]
	})

	out := make([]float64, n)
	i := 0
	for i < n {
		j := i
		for j+1 < n && values[index[j+1]] == values[index[i]] {
			j++
		}
		avg := float64(i+j+2) / 2
		for k := i; k <= j; k++ {
			out[index[k]] = avg
		}
		i = j + 1
	}
	return out
}

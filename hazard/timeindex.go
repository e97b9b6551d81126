package hazard

import (
	"log/slog"
	"sort"
)

// SearchIndex returns the index of the largest entry in sortedTimes less than
// or equal to the query. sortedTimes must be non-empty, see SearchIndices for
// the checked form. Queries above the last entry clamp to the last index.
// Queries below the first entry clamp to index 0 and report true, since the
// first available value then stands in for an earlier time and may overstate
// risk.
func SearchIndex(sortedTimes []float64, query float64) (int, bool) {
	n := len(sortedTimes)
	j := sort.SearchFloat64s(sortedTimes, query)
	switch {
	case j == n:
		j = n - 1
	case sortedTimes[j] != query:
		j--
	}
	if j < 0 {
		return 0, true
	}
	return j, false
}

// SearchIndices resolves each query time onto the index of its left neighbor
// in sortedTimes, see SearchIndex. A single warning is logged when any query
// falls below the smallest indexed time.
func SearchIndices(sortedTimes, queries []float64) ([]int, error) {
	if len(sortedTimes) == 0 {
		return nil, ErrEmptySeries
	}
	idx := make([]int, len(queries))
	var clamped int
	for i, q := range queries {
		j, below := SearchIndex(sortedTimes, q)
		if below {
			clamped++
		}
		idx[i] = j
	}
	if clamped > 0 {
		slog.Warn("query times below the smallest indexed time, clamping to the first entry",
			"count", clamped,
			"smallest_indexed", sortedTimes[0])
	}
	return idx, nil
}

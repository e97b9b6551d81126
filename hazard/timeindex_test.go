package hazard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchIndex(t *testing.T) {
	sortedTimes := []float64{1, 3, 5}

	testData := map[string]struct {
		query    float64
		expected int
		below    bool
	}{
		"below range":     {0, 0, true},
		"first exact":     {1, 0, false},
		"between entries": {2, 0, false},
		"middle exact":    {3, 1, false},
		"last exact":      {5, 2, false},
		"above range":     {6, 2, false},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			idx, below := SearchIndex(sortedTimes, td.query)
			assert.Equal(t, td.expected, idx)
			assert.Equal(t, td.below, below)
		})
	}
}

func TestSearchIndices(t *testing.T) {
	testData := map[string]struct {
		sortedTimes []float64
		queries     []float64
		err         error
		expected    []int
	}{
		"mixed queries": {
			sortedTimes: []float64{1, 3, 5},
			queries:     []float64{0, 1, 2, 3, 6},
			expected:    []int{0, 0, 0, 1, 2},
		},
		"exact hits": {
			sortedTimes: []float64{1, 3, 5},
			queries:     []float64{1, 3, 5},
			expected:    []int{0, 1, 2},
		},
		"single entry": {
			sortedTimes: []float64{4},
			queries:     []float64{2, 4, 9},
			expected:    []int{0, 0, 0},
		},
		"empty index": {
			queries: []float64{1},
			err:     ErrEmptySeries,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			idx, err := SearchIndices(td.sortedTimes, td.queries)
			if td.err != nil {
				require.ErrorIs(t, err, td.err)
				return
			}
			require.Nil(t, err)
			assert.Equal(t, td.expected, idx)
		})
	}
}

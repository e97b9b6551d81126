package survdataset

import (
	"math"
	"math/rand"
)

// GenerateCovariates draws n covariate rows of width p uniformly from [-1, 1).
func GenerateCovariates(n, p int) [][]float64 {
	x := make([][]float64, n)
	for i := range x {
		row := make([]float64, p)
		for j := range row {
			row[j] = 2.0*rand.Float64() - 1.0
		}
		x[i] = row
	}
	return x
}

// GenerateCohort simulates a proportional-hazards cohort with a linear risk
// score. Event times are drawn from an exponential distribution with rate
// baselineRate*exp(coef.x) and censoring times from an independent
// exponential with rate censorRate. A censorRate of 0 disables censoring.
func GenerateCohort(n int, coef []float64, baselineRate, censorRate float64) (*Dataset, error) {
	x := GenerateCovariates(n, len(coef))
	durations := make([]float64, n)
	events := make([]float64, n)
	for i := 0; i < n; i++ {
		var g float64
		for j, c := range coef {
			g += c * x[i][j]
		}
		eventTime := rand.ExpFloat64() / (baselineRate * math.Exp(g))
		censorTime := math.Inf(1)
		if censorRate > 0 {
			censorTime = rand.ExpFloat64() / censorRate
		}
		if eventTime <= censorTime {
			durations[i] = eventTime
			events[i] = 1.0
		} else {
			durations[i] = censorTime
		}
	}
	return New(x, durations, events)
}

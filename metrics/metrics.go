// Package metrics implements time-dependent accuracy metrics for survival
// predictions: the Brier score with inverse-probability-of-censoring weights
// and its integral over a time grid.
package metrics

import (
	"errors"
	"fmt"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/integrate"
	"gonum.org/v1/gonum/mat"

	"github.com/aouyang1/go-survival/hazard"
)

// DefaultGridPoints is the size of the equidistant integration grid used when
// no explicit grid is supplied.
const DefaultGridPoints = 100

var (
	ErrNoObservations = errors.New("no observations")
	ErrNoTimes        = errors.New("no evaluation times")
	ErrLenMismatch    = errors.New("durations and events must have equal lengths")
	ErrDimMismatch    = errors.New("survival matrix dimensions do not match times and observations")
	ErrInvalidGrid    = errors.New("time grid must have at least two strictly increasing entries")
	ErrDegenerateGrid = errors.New("cannot build a default grid from constant durations")
	ErrNilProbAliveFn = errors.New("nil survival prediction function")
)

// KaplanMeier estimates the survival function of the observed durations as a
// step series keyed by distinct duration, S(t) = prod(1 - d_i/n_i) over event
// times at or before t.
func KaplanMeier(durations, events []float64) (*hazard.Series, error) {
	n := len(durations)
	if n == 0 {
		return nil, ErrNoObservations
	}
	if len(events) != n {
		return nil, fmt.Errorf("%d durations, %d events, %w", n, len(events), ErrLenMismatch)
	}

	group := make(map[float64]int)
	var times, numEvents, numObs []float64
	for i := 0; i < n; i++ {
		j, ok := group[durations[i]]
		if !ok {
			j = len(times)
			group[durations[i]] = j
			times = append(times, durations[i])
			numEvents = append(numEvents, 0)
			numObs = append(numObs, 0)
		}
		numEvents[j] += events[i]
		numObs[j]++
	}

	order := make([]int, len(times))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		return times[order[a]] < times[order[b]]
	})

	s := &hazard.Series{
		Times:  make([]float64, len(order)),
		Values: make([]float64, len(order)),
	}
	atRisk := float64(n)
	surv := 1.0
	for i, j := range order {
		if atRisk > 0 {
			surv *= 1.0 - numEvents[j]/atRisk
		}
		atRisk -= numObs[j]
		s.Times[i] = times[j]
		s.Values[i] = surv
	}
	return s, nil
}

// BrierScore computes the Brier score of the survival estimates at each
// evaluation time, weighting subjects by the inverse of the Kaplan-Meier
// estimate of the censoring distribution. probAlive holds one row per
// evaluation time and one column per subject.
func BrierScore(times []float64, probAlive mat.Matrix, durations, events []float64) ([]float64, error) {
	if len(times) == 0 {
		return nil, ErrNoTimes
	}
	n := len(durations)
	if n == 0 {
		return nil, ErrNoObservations
	}
	if len(events) != n {
		return nil, fmt.Errorf("%d durations, %d events, %w", n, len(events), ErrLenMismatch)
	}
	r, c := probAlive.Dims()
	if r != len(times) || c != n {
		return nil, fmt.Errorf(
			"survival matrix is %dx%d, expected %dx%d, %w",
			r, c, len(times), n, ErrDimMismatch,
		)
	}

	// censoring survival: event indicators flipped
	censored := make([]float64, n)
	for i, e := range events {
		censored[i] = 1.0 - e
	}
	censorKM, err := KaplanMeier(durations, censored)
	if err != nil {
		return nil, fmt.Errorf("unable to estimate censoring distribution, %w", err)
	}

	scores := make([]float64, len(times))
	for k, t := range times {
		var bs float64
		for i := 0; i < n; i++ {
			s := probAlive.At(k, i)
			switch {
			case durations[i] <= t && events[i] == 1:
				// subject already failed, the left limit G(d-) weights it
				if w := stepValueBefore(censorKM, durations[i]); w > 0 {
					bs += s * s / w
				}
			case durations[i] > t:
				if w := stepValue(censorKM, t); w > 0 {
					bs += (1.0 - s) * (1.0 - s) / w
				}
			}
		}
		scores[k] = bs / float64(n)
	}
	return scores, nil
}

// IntegratedBrierScore integrates the Brier score over a time grid with the
// trapezoidal rule, normalized by the grid span. A nil grid defaults to
// DefaultGridPoints equidistant points between the smallest and largest
// duration. probAliveFn must return one row per requested time and one
// column per subject.
func IntegratedBrierScore(probAliveFn func(times []float64) (mat.Matrix, error), durations, events []float64, grid []float64) (float64, error) {
	if probAliveFn == nil {
		return 0, ErrNilProbAliveFn
	}
	if len(durations) == 0 {
		return 0, ErrNoObservations
	}

	if grid == nil {
		lo := floats.Min(durations)
		hi := floats.Max(durations)
		if lo == hi {
			return 0, ErrDegenerateGrid
		}
		grid = floats.Span(make([]float64, DefaultGridPoints), lo, hi)
	}
	if len(grid) < 2 {
		return 0, ErrInvalidGrid
	}
	for i := 1; i < len(grid); i++ {
		if grid[i] <= grid[i-1] {
			return 0, fmt.Errorf("at grid entry %d, %w", i, ErrInvalidGrid)
		}
	}

	probAlive, err := probAliveFn(grid)
	if err != nil {
		return 0, fmt.Errorf("unable to predict survival on grid, %w", err)
	}
	scores, err := BrierScore(grid, probAlive, durations, events)
	if err != nil {
		return 0, err
	}
	return integrate.Trapezoidal(grid, scores) / (grid[len(grid)-1] - grid[0]), nil
}

// stepValue evaluates the step series at t, treating times before the first
// entry as 1 since no observation has dropped out yet.
func stepValue(s *hazard.Series, t float64) float64 {
	j, below := hazard.SearchIndex(s.Times, t)
	if below {
		return 1.0
	}
	return s.Values[j]
}

// stepValueBefore evaluates the left limit of the step series at t.
func stepValueBefore(s *hazard.Series, t float64) float64 {
	j, below := hazard.SearchIndex(s.Times, t)
	if below {
		return 1.0
	}
	if s.Times[j] == t {
		j--
	}
	if j < 0 {
		return 1.0
	}
	return s.Values[j]
}

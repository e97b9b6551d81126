// Package hazard implements the non-parametric Breslow estimator of the
// baseline hazard of a proportional-hazards model, along with the cumulative
// aggregation and risk-weighted matrix construction used for survival
// inference.
package hazard

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

var (
	ErrNoObservations    = errors.New("no observations")
	ErrLenMismatch       = errors.New("durations, events, and risk must have equal lengths")
	ErrSeriesLenMismatch = errors.New("series times and values must have equal lengths")
	ErrNonMonotonicTimes = errors.New("series times must be strictly monotonic increasing")
	ErrEmptySeries       = errors.New("empty series")
	ErrNoRisk            = errors.New("no risk scores")
)

// Series is an ordered mapping from duration to a real value, used both for
// baseline hazards and their cumulative aggregation. Times must be strictly
// monotonic increasing since they represent distinct duration values.
type Series struct {
	Times  []float64 `json:"times"`
	Values []float64 `json:"values"`
}

// NewSeries returns a validated copy of the given duration/value pairs.
func NewSeries(times, values []float64) (*Series, error) {
	s := &Series{
		Times:  append([]float64(nil), times...),
		Values: append([]float64(nil), values...),
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Len returns the number of entries in the series.
func (s *Series) Len() int {
	return len(s.Times)
}

// Copy returns a deep copy of the series.
func (s *Series) Copy() *Series {
	return &Series{
		Times:  append([]float64(nil), s.Times...),
		Values: append([]float64(nil), s.Values...),
	}
}

// Validate checks that the series is non-empty, aligned, and indexed by
// strictly increasing times.
func (s *Series) Validate() error {
	if s.Len() == 0 {
		return ErrEmptySeries
	}
	if len(s.Times) != len(s.Values) {
		return fmt.Errorf(
			"series has %d times and %d values, %w",
			len(s.Times), len(s.Values), ErrSeriesLenMismatch,
		)
	}
	for i := 1; i < len(s.Times); i++ {
		if s.Times[i] <= s.Times[i-1] {
			return fmt.Errorf("at entry %d, %w", i, ErrNonMonotonicTimes)
		}
	}
	return nil
}

// Cumulative returns the prefix sum of the series values along the duration
// axis, producing the baseline cumulative hazard when applied to a baseline
// hazard series. The input index must be strictly monotonic increasing.
func (s *Series) Cumulative() (*Series, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &Series{
		Times:  append([]float64(nil), s.Times...),
		Values: floats.CumSum(make([]float64, len(s.Values)), s.Values),
	}, nil
}

// Truncate returns the sub-series of entries with times less than or equal to
// maxDuration. The result shares no storage with the receiver.
func (s *Series) Truncate(maxDuration float64) *Series {
	cnt := sort.SearchFloat64s(s.Times, maxDuration)
	if cnt < len(s.Times) && s.Times[cnt] == maxDuration {
		cnt++
	}
	return &Series{
		Times:  append([]float64(nil), s.Times[:cnt]...),
		Values: append([]float64(nil), s.Values[:cnt]...),
	}
}

// ValuesAt resolves each query time onto its left-neighbor entry and returns
// the series values at the resolved indexes. Queries below the first entry
// clamp to the first value with a warning, see SearchIndices. An empty series
// returns ErrEmptySeries.
func (s *Series) ValuesAt(queries []float64) ([]float64, error) {
	idx, err := SearchIndices(s.Times, queries)
	if err != nil {
		return nil, err
	}
	vals := make([]float64, len(idx))
	for i, j := range idx {
		vals[i] = s.Values[j]
	}
	return vals, nil
}

// Breslow computes the discrete baseline hazard series from observed
// (duration, event, risk) triples using Breslow's tie-handling method. The
// result is keyed by every distinct duration value present in the input,
// sorted ascending, and restricted to durations at or below maxDuration.
// Durations with a zero risk-set denominator yield a hazard of 0.
func Breslow(durations, events, risk []float64, maxDuration float64) (*Series, error) {
	if len(durations) == 0 {
		return nil, ErrNoObservations
	}
	if len(events) != len(durations) || len(risk) != len(durations) {
		return nil, fmt.Errorf(
			"%d durations, %d events, %d risk scores, %w",
			len(durations), len(events), len(risk), ErrLenMismatch,
		)
	}

	// group by distinct duration, accumulating exp(g) and event counts
	group := make(map[float64]int)
	var times, sumExpg, numEvents []float64
	for i := 0; i < len(durations); i++ {
		j, ok := group[durations[i]]
		if !ok {
			j = len(times)
			group[durations[i]] = j
			times = append(times, durations[i])
			sumExpg = append(sumExpg, 0)
			numEvents = append(numEvents, 0)
		}
		sumExpg[j] += math.Exp(risk[i])
		numEvents[j] += events[i]
	}

	order := make([]int, len(times))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		return times[order[a]] < times[order[b]]
	})

	// suffix sum from the largest duration downward realizes the risk-set
	// denominator of all subjects still at risk at each duration
	s := &Series{
		Times:  make([]float64, len(order)),
		Values: make([]float64, len(order)),
	}
	var riskSet float64
	for i := len(order) - 1; i >= 0; i-- {
		j := order[i]
		riskSet += sumExpg[j]
		s.Times[i] = times[j]
		if riskSet > 0 {
			s.Values[i] = numEvents[j] / riskSet
		}
	}
	return s.Truncate(maxDuration), nil
}

// RiskWeightedMatrix forms the dense outer product of a cumulative-hazard
// column vector and the exp(risk) row vector, producing the per-subject
// cumulative hazard matrix H(x, t) = H0(t) * exp(g(x)) with one row per time
// and one column per subject.
func RiskWeightedMatrix(cumulative, risk []float64) (*mat.Dense, error) {
	if len(cumulative) == 0 {
		return nil, ErrEmptySeries
	}
	if len(risk) == 0 {
		return nil, ErrNoRisk
	}
	expg := make([]float64, len(risk))
	for i, g := range risk {
		expg[i] = math.Exp(g)
	}
	m := mat.NewDense(len(cumulative), len(expg), nil)
	m.Outer(1.0,
		mat.NewVecDense(len(cumulative), append([]float64(nil), cumulative...)),
		mat.NewVecDense(len(expg), expg),
	)
	return m, nil
}

// CumulativeMatrix truncates the baseline cumulative hazard series to
// durations at or below maxDuration and combines it with the per-subject
// risk scores. It returns the truncated series alongside the matrix so
// callers keep the duration axis of the result.
func CumulativeMatrix(bch *Series, risk []float64, maxDuration float64) (*Series, *mat.Dense, error) {
	if err := bch.Validate(); err != nil {
		return nil, nil, err
	}
	trunc := bch.Truncate(maxDuration)
	if trunc.Len() == 0 {
		return nil, nil, fmt.Errorf("no entries at or below max duration %f, %w", maxDuration, ErrEmptySeries)
	}
	m, err := RiskWeightedMatrix(trunc.Values, risk)
	if err != nil {
		return nil, nil, err
	}
	return trunc, m, nil
}

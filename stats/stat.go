// Package stats provides supporting statistics for evaluating survival
// models on censored data.
package stats

import (
	"errors"
	"fmt"
)

var (
	ErrLenMismatch       = errors.New("durations, predictions, and events must have equal lengths")
	ErrNoObservations    = errors.New("no observations")
	ErrNoComparablePairs = errors.New("no comparable pairs under censoring")
)

// ConcordanceIndex computes the censored-data concordance index, the fraction
// of comparable subject pairs whose prediction ordering agrees with their
// observed survival-time ordering. A higher prediction is read as longer
// survival. Pairs where the earlier duration is censored are not comparable,
// and tied durations are informative only when exactly one of the pair is an
// event; prediction ties score one half.
func ConcordanceIndex(durations, predictions, events []float64) (float64, error) {
	n := len(durations)
	if n == 0 {
		return 0, ErrNoObservations
	}
	if len(predictions) != n || len(events) != n {
		return 0, fmt.Errorf(
			"%d durations, %d predictions, %d events, %w",
			n, len(predictions), len(events), ErrLenMismatch,
		)
	}

	var numerator, denominator float64
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			score, ok := pairScore(
				durations[i], durations[j],
				predictions[i], predictions[j],
				events[i] == 1, events[j] == 1,
			)
			if !ok {
				continue
			}
			numerator += score
			denominator++
		}
	}
	if denominator == 0 {
		return 0, ErrNoComparablePairs
	}
	return numerator / denominator, nil
}

// pairScore reports the concordance contribution of one subject pair and
// whether the pair is comparable at all.
func pairScore(dA, dB, pA, pB float64, eA, eB bool) (float64, bool) {
	// orient so subject a has the earlier duration
	if dB < dA {
		dA, dB = dB, dA
		pA, pB = pB, pA
		eA, eB = eB, eA
	}

	if dA == dB {
		switch {
		case eA && eB:
			// tied failure times order neither subject
			return 0, false
		case eA:
			// b outlived a, so b should have the higher prediction
			return orderScore(pA, pB), true
		case eB:
			return orderScore(pB, pA), true
		default:
			return 0, false
		}
	}

	if !eA {
		return 0, false
	}
	return orderScore(pA, pB), true
}

func orderScore(earlier, later float64) float64 {
	switch {
	case earlier < later:
		return 1
	case earlier == later:
		return 0.5
	default:
		return 0
	}
}

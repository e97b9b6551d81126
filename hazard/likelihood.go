package hazard

import (
	"fmt"
	"math"
	"sort"
)

// EventLikelihood holds the Breslow partial log-likelihood term of a single
// observed event. Censored observations contribute no term.
type EventLikelihood struct {
	// Subject indexes the observation in the cohort the term belongs to.
	Subject       int
	Duration      float64
	Risk          float64
	LogLikelihood float64
}

// PartialLogLikelihood computes the Breslow partial log-likelihood of every
// observed event, g - log(sum of exp(g) over the risk set). Subjects sharing
// a duration share the same denominator, evaluated at the end of the tie
// group to match the risk-set convention of the Breslow estimator. Results
// are ordered by descending duration.
func PartialLogLikelihood(durations, events, risk []float64) ([]EventLikelihood, error) {
	if len(durations) == 0 {
		return nil, ErrNoObservations
	}
	if len(events) != len(durations) || len(risk) != len(durations) {
		return nil, fmt.Errorf(
			"%d durations, %d events, %d risk scores, %w",
			len(durations), len(events), len(risk), ErrLenMismatch,
		)
	}

	order := make([]int, len(durations))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		return durations[order[a]] > durations[order[b]]
	})

	var out []EventLikelihood
	var cumExpg float64
	for i := 0; i < len(order); {
		j := i
		for j < len(order) && durations[order[j]] == durations[order[i]] {
			cumExpg += math.Exp(risk[order[j]])
			j++
		}
		logDenom := math.Log(cumExpg)
		for k := i; k < j; k++ {
			subj := order[k]
			if events[subj] != 1 {
				continue
			}
			out = append(out, EventLikelihood{
				Subject:       subj,
				Duration:      durations[subj],
				Risk:          risk[subj],
				LogLikelihood: risk[subj] - logDenom,
			})
		}
		i = j
	}
	return out, nil
}

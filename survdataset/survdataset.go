// Package survdataset provides the survival cohort representation consumed by
// the survival model. A cohort pairs a covariate matrix with aligned duration
// and event slices where an event value of 1 marks an observed failure and 0
// marks a censored observation.
package survdataset

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/mat"
)

var (
	ErrNoObservations   = errors.New("no observations")
	ErrNoCovariates     = errors.New("observations must have at least one covariate")
	ErrLenMismatch      = errors.New("durations and events have a different length than covariate rows")
	ErrColMismatch      = errors.New("covariate rows must all have the same width")
	ErrInvalidEvent     = errors.New("event values must be 0 or 1")
	ErrInvalidDuration  = errors.New("durations must be non-negative real numbers")
	ErrFieldCollision   = errors.New("duration and event fields must name distinct columns")
	ErrMissingField     = errors.New("column table is missing a reserved field")
	ErrInvalidSample    = errors.New("sample must select at least one and at most all observations")
	ErrIndexOutOfBounds = errors.New("observation index is out of bounds")
)

// Dataset represents a survival cohort storing one covariate row per subject
// along with the observed duration and event indicator of each subject. Row
// order carries no meaning beyond keeping the three parts aligned.
type Dataset struct {
	Durations []float64
	Events    []float64
	X         *mat.Dense

	// Labels carries optional covariate column names when the cohort was
	// built from a column table.
	Labels []string
}

// New returns an instance of a Dataset given covariate rows and aligned
// duration and event slices.
func New(x [][]float64, durations, events []float64) (*Dataset, error) {
	if len(x) == 0 {
		return nil, ErrNoObservations
	}
	if len(durations) != len(x) || len(events) != len(x) {
		return nil, fmt.Errorf(
			"covariates have %d rows, durations %d, events %d, %w",
			len(x), len(durations), len(events), ErrLenMismatch,
		)
	}

	width := len(x[0])
	if width == 0 {
		return nil, ErrNoCovariates
	}

	data := make([]float64, 0, len(x)*width)
	for i, row := range x {
		if len(row) != width {
			return nil, fmt.Errorf("at row %d, %w", i, ErrColMismatch)
		}
		data = append(data, row...)
	}

	for i := 0; i < len(durations); i++ {
		if math.IsNaN(durations[i]) || durations[i] < 0 {
			return nil, fmt.Errorf("at row %d got %f, %w", i, durations[i], ErrInvalidDuration)
		}
		if events[i] != 0 && events[i] != 1 {
			return nil, fmt.Errorf("at row %d got %f, %w", i, events[i], ErrInvalidEvent)
		}
	}

	durSlice := make([]float64, len(durations))
	eventSlice := make([]float64, len(events))
	copy(durSlice, durations)
	copy(eventSlice, events)

	return &Dataset{
		Durations: durSlice,
		Events:    eventSlice,
		X:         mat.NewDense(len(x), width, data),
	}, nil
}

// NewFromColumns builds a Dataset from a column-oriented table. The two
// reserved fields name the duration and event columns and must not collide
// with each other; every remaining column becomes a covariate, ordered by
// sorted column name for reproducibility.
func NewFromColumns(cols map[string][]float64, durationField, eventField string) (*Dataset, error) {
	if durationField == eventField {
		return nil, fmt.Errorf("both reserved fields are %q, %w", durationField, ErrFieldCollision)
	}
	durations, ok := cols[durationField]
	if !ok {
		return nil, fmt.Errorf("no column %q, %w", durationField, ErrMissingField)
	}
	events, ok := cols[eventField]
	if !ok {
		return nil, fmt.Errorf("no column %q, %w", eventField, ErrMissingField)
	}

	labels := make([]string, 0, len(cols)-2)
	for label := range cols {
		if label == durationField || label == eventField {
			continue
		}
		labels = append(labels, label)
	}
	sort.Strings(labels)
	if len(labels) == 0 {
		return nil, ErrNoCovariates
	}

	x := make([][]float64, len(durations))
	for i := range x {
		row := make([]float64, len(labels))
		for j, label := range labels {
			col := cols[label]
			if len(col) != len(durations) {
				return nil, fmt.Errorf(
					"column %q has length %d, expected %d, %w",
					label, len(col), len(durations), ErrLenMismatch,
				)
			}
			row[j] = col[i]
		}
		x[i] = row
	}

	d, err := New(x, durations, events)
	if err != nil {
		return nil, err
	}
	d.Labels = labels
	return d, nil
}

// Len returns the number of observations in the cohort.
func (d *Dataset) Len() int {
	return len(d.Durations)
}

// NumCovariates returns the width of the covariate block.
func (d *Dataset) NumCovariates() int {
	_, c := d.X.Dims()
	return c
}

// Copy returns a deep copy of the cohort.
func (d *Dataset) Copy() *Dataset {
	durations := make([]float64, len(d.Durations))
	events := make([]float64, len(d.Events))
	copy(durations, d.Durations)
	copy(events, d.Events)

	var x mat.Dense
	x.CloneFrom(d.X)

	var labels []string
	if d.Labels != nil {
		labels = make([]string, len(d.Labels))
		copy(labels, d.Labels)
	}
	return &Dataset{
		Durations: durations,
		Events:    events,
		X:         &x,
		Labels:    labels,
	}
}

// Subset returns a new cohort holding the observations at the requested
// indexes, in the requested order.
func (d *Dataset) Subset(idx []int) (*Dataset, error) {
	if len(idx) == 0 {
		return nil, ErrNoObservations
	}
	n := d.Len()
	_, c := d.X.Dims()

	durations := make([]float64, 0, len(idx))
	events := make([]float64, 0, len(idx))
	x := mat.NewDense(len(idx), c, nil)
	for i, j := range idx {
		if j < 0 || j >= n {
			return nil, fmt.Errorf("index %d with cohort size %d, %w", j, n, ErrIndexOutOfBounds)
		}
		durations = append(durations, d.Durations[j])
		events = append(events, d.Events[j])
		x.SetRow(i, d.X.RawRowView(j))
	}
	return &Dataset{
		Durations: durations,
		Events:    events,
		X:         x,
		Labels:    d.Labels,
	}, nil
}

// Sample selects a uniform-random subset of the cohort without replacement.
// A sample below 1 is treated as a fraction of the cohort rounded to the
// nearest count, and a sample of 1 or more as an absolute count. Selection
// uses the shared unseeded source, so repeated calls draw different subsets.
func (d *Dataset) Sample(sample float64) (*Dataset, error) {
	n := d.Len()
	var k int
	switch {
	case sample <= 0 || math.IsNaN(sample):
		return nil, fmt.Errorf("got sample %f, %w", sample, ErrInvalidSample)
	case sample < 1:
		k = int(math.Round(sample * float64(n)))
	default:
		k = int(sample)
	}
	if k < 1 || k > n {
		return nil, fmt.Errorf("sample selects %d of %d observations, %w", k, n, ErrInvalidSample)
	}

	idx := rand.Perm(n)[:k]
	sort.Ints(idx)
	return d.Subset(idx)
}

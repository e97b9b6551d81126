package survival

import (
	"errors"
	"fmt"
	"math"

	"github.com/aouyang1/go-survival/hazard"
)

// DefaultBatchSize is the number of covariate rows scored per risk scorer
// call when no batch size is configured.
const DefaultBatchSize = 8224

var ErrNegativeSample = errors.New("negative sample")

// Options configures a CoxModel.
type Options struct {
	// BatchSize caps the number of covariate rows fed to the risk scorer per
	// call. Batching only bounds memory and never changes numerical results.
	BatchSize int `json:"batch_size"`
}

// NewDefaultOptions returns a default set of CoxModel options.
func NewDefaultOptions() *Options {
	return &Options{
		BatchSize: DefaultBatchSize,
	}
}

// Validate runs basic validation on CoxModel options.
func (o *Options) Validate() (*Options, error) {
	if o == nil {
		o = NewDefaultOptions()
	}
	if o.BatchSize <= 0 {
		o.BatchSize = DefaultBatchSize
	}
	return o, nil
}

// BaselineHazardOptions configures a baseline-hazard computation.
type BaselineHazardOptions struct {
	// MaxDuration drops hazard entries for durations above the cutoff. A
	// non-positive or NaN value means no cutoff.
	MaxDuration float64 `json:"max_duration"`

	// Sample estimates the baseline hazard from a uniform-random subset of
	// the cohort, trading accuracy for speed. Values below 1 select a
	// fraction of the cohort and values of 1 or more an absolute count. 0
	// disables sampling.
	Sample float64 `json:"sample"`

	// SetHazards caches the computed baseline and cumulative hazard series
	// on the model, replacing any previously cached series.
	SetHazards bool `json:"set_hazards"`
}

// NewDefaultBaselineHazardOptions returns the default baseline-hazard
// options: no cutoff, no sampling, and caching enabled.
func NewDefaultBaselineHazardOptions() *BaselineHazardOptions {
	return &BaselineHazardOptions{
		MaxDuration: math.Inf(1),
		SetHazards:  true,
	}
}

// Validate normalizes the options, mapping a non-positive cutoff to no
// cutoff. The receiver is not mutated.
func (o *BaselineHazardOptions) Validate() (*BaselineHazardOptions, error) {
	if o == nil {
		return NewDefaultBaselineHazardOptions(), nil
	}
	out := *o
	if out.MaxDuration <= 0 || math.IsNaN(out.MaxDuration) {
		out.MaxDuration = math.Inf(1)
	}
	if out.Sample < 0 || math.IsNaN(out.Sample) {
		return nil, fmt.Errorf("got sample %f, %w", out.Sample, ErrNegativeSample)
	}
	return &out, nil
}

// PredictOptions configures hazard and survival prediction.
type PredictOptions struct {
	// MaxDuration drops prediction checkpoints above the cutoff. A
	// non-positive or NaN value means no cutoff. Ignored by the at-times
	// prediction variants, which use their explicit time grid instead.
	MaxDuration float64

	// BaselineHazards overrides the model's cached baseline hazard series.
	// The cumulative series is then recomputed from it and not cached.
	BaselineHazards *hazard.Series
}

// Validate normalizes the options, mapping a non-positive cutoff to no
// cutoff. The receiver is not mutated.
func (o *PredictOptions) Validate() (*PredictOptions, error) {
	if o == nil {
		return &PredictOptions{MaxDuration: math.Inf(1)}, nil
	}
	out := *o
	if out.MaxDuration <= 0 || math.IsNaN(out.MaxDuration) {
		out.MaxDuration = math.Inf(1)
	}
	return &out, nil
}

// Package survival implements Cox proportional-hazards survival inference on
// top of an arbitrary risk scorer. The baseline hazard is estimated with
// Breslow's tie-handling method and feeds cumulative-hazard and
// survival-function prediction, partial-likelihood and concordance
// evaluation, and time-dependent Brier scores.
package survival

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/aouyang1/go-survival/hazard"
	"github.com/aouyang1/go-survival/metrics"
	"github.com/aouyang1/go-survival/scorer"
	"github.com/aouyang1/go-survival/stats"
	"github.com/aouyang1/go-survival/survdataset"
)

var (
	ErrNoScorer                = errors.New("no risk scorer provided")
	ErrNoDataset               = errors.New("no dataset supplied")
	ErrNoTrainingData          = errors.New("no training dataset cached and none supplied")
	ErrNoBaselineHazards       = errors.New("baseline hazards have not been computed and none were supplied")
	ErrAmbiguousBaselineSource = errors.New("dataset and explicit baseline hazards cannot both be supplied")
	ErrNoQueryTimes            = errors.New("no query times")
	ErrRiskLenMismatch         = errors.New("risk scores have a different length than the cohort")
)

// CoxModel predicts cumulative hazards and survival functions for survival
// cohorts by pairing a trained risk scorer with a Breslow estimate of the
// baseline hazard. The most recently computed baseline and cumulative hazard
// series may be cached on the model; callers sharing a model across
// goroutines must serialize calls that set cached hazards.
type CoxModel struct {
	opt    *Options
	scorer scorer.RiskScorer

	trainingData *survdataset.Dataset

	baselineHazards           *hazard.Series
	baselineCumulativeHazards *hazard.Series
}

// New creates a new instance of a CoxModel around the given risk scorer. If
// no options are provided a default is used.
func New(s scorer.RiskScorer, opt *Options) (*CoxModel, error) {
	if s == nil {
		return nil, ErrNoScorer
	}
	opt, err := opt.Validate()
	if err != nil {
		return nil, err
	}
	return &CoxModel{
		opt:    opt,
		scorer: s,
	}, nil
}

// NewFromModel creates a new instance of a CoxModel from a previously
// persisted Model and the scorer it was built with. The cumulative hazard
// series is recomputed deterministically from the persisted baseline series,
// and the model can predict immediately.
func NewFromModel(model Model, s scorer.RiskScorer) (*CoxModel, error) {
	if len(model.BaselineHazards) == 0 {
		return nil, ErrNoHazardsInModel
	}
	times := make([]float64, 0, len(model.BaselineHazards))
	values := make([]float64, 0, len(model.BaselineHazards))
	for _, entry := range model.BaselineHazards {
		times = append(times, entry.Duration)
		values = append(values, entry.Hazard)
	}
	base, err := hazard.NewSeries(times, values)
	if err != nil {
		return nil, fmt.Errorf("invalid baseline hazards in model, %w", err)
	}
	bch, err := base.Cumulative()
	if err != nil {
		return nil, fmt.Errorf("unable to recompute cumulative hazards, %w", err)
	}

	m, err := New(s, model.Options)
	if err != nil {
		return nil, err
	}
	m.baselineHazards = base
	m.baselineCumulativeHazards = bch
	return m, nil
}

// SetTrainingData caches a training cohort on the model so baseline hazards
// can be computed without supplying a dataset.
func (m *CoxModel) SetTrainingData(d *survdataset.Dataset) {
	m.trainingData = d
}

// TrainingData returns the cached training cohort, if any.
func (m *CoxModel) TrainingData() *survdataset.Dataset {
	return m.trainingData
}

// BaselineHazards returns the cached baseline hazard series, or nil when none
// has been computed.
func (m *CoxModel) BaselineHazards() *hazard.Series {
	return m.baselineHazards
}

// BaselineCumulativeHazards returns the cached baseline cumulative hazard
// series, or nil when none has been computed.
func (m *CoxModel) BaselineCumulativeHazards() *hazard.Series {
	return m.baselineCumulativeHazards
}

func (m *CoxModel) risk(d *survdataset.Dataset) ([]float64, error) {
	res, err := scorer.BatchPredict(m.scorer, d.X, m.opt.BatchSize)
	if err != nil {
		return nil, fmt.Errorf("unable to compute risk scores, %w", err)
	}
	return res, nil
}

// ComputeBaselineHazards computes the Breslow estimate of the baseline
// hazards of the given cohort, or of the cached training cohort when d is
// nil. The result is keyed by every distinct duration in the cohort, sorted
// ascending. With SetHazards enabled the baseline and recomputed cumulative
// series replace the ones cached on the model.
func (m *CoxModel) ComputeBaselineHazards(d *survdataset.Dataset, opt *BaselineHazardOptions) (*hazard.Series, error) {
	opt, err := opt.Validate()
	if err != nil {
		return nil, err
	}
	if d == nil {
		if m.trainingData == nil {
			return nil, ErrNoTrainingData
		}
		d = m.trainingData
	}
	if opt.Sample > 0 {
		if d, err = d.Sample(opt.Sample); err != nil {
			return nil, fmt.Errorf("unable to sample cohort, %w", err)
		}
	}

	risk, err := m.risk(d)
	if err != nil {
		return nil, err
	}
	base, err := hazard.Breslow(d.Durations, d.Events, risk, opt.MaxDuration)
	if err != nil {
		return nil, fmt.Errorf("unable to estimate baseline hazards, %w", err)
	}

	if opt.SetHazards {
		bch, err := base.Cumulative()
		if err != nil {
			return nil, fmt.Errorf("unable to compute cumulative hazards, %w", err)
		}
		m.baselineHazards = base.Copy()
		m.baselineCumulativeHazards = bch
	}
	return base, nil
}

// ComputeBaselineCumulativeHazards computes the baseline cumulative hazard
// series as the prefix sum of a baseline hazard series, either the explicit
// one supplied or one estimated from the cohort. Supplying both a dataset
// and an explicit baseline series is an error. The baseline index must be
// strictly monotonic increasing.
func (m *CoxModel) ComputeBaselineCumulativeHazards(d *survdataset.Dataset, opt *BaselineHazardOptions, baseline *hazard.Series) (*hazard.Series, error) {
	if d != nil && baseline != nil {
		return nil, ErrAmbiguousBaselineSource
	}
	opt, err := opt.Validate()
	if err != nil {
		return nil, err
	}

	if baseline == nil {
		noCache := *opt
		noCache.SetHazards = false
		if baseline, err = m.ComputeBaselineHazards(d, &noCache); err != nil {
			return nil, err
		}
	}
	bch, err := baseline.Cumulative()
	if err != nil {
		return nil, fmt.Errorf("invalid baseline hazard series, %w", err)
	}

	if opt.SetHazards {
		m.baselineHazards = baseline.Copy()
		m.baselineCumulativeHazards = bch.Copy()
	}
	return bch, nil
}

// cumulativeSeries resolves the baseline cumulative hazard series a
// prediction should use: the one recomputed from an explicit override, or
// the cached series.
func (m *CoxModel) cumulativeSeries(opt *PredictOptions) (*hazard.Series, error) {
	if opt.BaselineHazards != nil {
		bch, err := opt.BaselineHazards.Cumulative()
		if err != nil {
			return nil, fmt.Errorf("invalid baseline hazard series, %w", err)
		}
		return bch, nil
	}
	if m.baselineCumulativeHazards == nil {
		return nil, ErrNoBaselineHazards
	}
	return m.baselineCumulativeHazards, nil
}

// PredictCumulativeHazards computes the cumulative hazard H(x, t) =
// H0(t)*exp(g(x)) for every subject of the cohort at every checkpoint of the
// baseline cumulative hazard series at or below the configured cutoff. The
// result holds one row per checkpoint and one column per subject.
func (m *CoxModel) PredictCumulativeHazards(d *survdataset.Dataset, opt *PredictOptions) (*Curves, error) {
	opt, err := opt.Validate()
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, ErrNoDataset
	}
	bch, err := m.cumulativeSeries(opt)
	if err != nil {
		return nil, err
	}
	risk, err := m.risk(d)
	if err != nil {
		return nil, err
	}
	trunc, values, err := hazard.CumulativeMatrix(bch, risk, opt.MaxDuration)
	if err != nil {
		return nil, fmt.Errorf("unable to combine cumulative hazards with risk, %w", err)
	}
	return &Curves{
		Times:  trunc.Times,
		Values: values,
	}, nil
}

// PredictSurvivalFunction computes the survival function S(x, t) =
// exp(-H(x, t)) for every subject of the cohort. Values are in (0, 1] for
// any finite non-negative cumulative hazard; no clamping is performed, so a
// corrupted baseline series propagates visibly.
func (m *CoxModel) PredictSurvivalFunction(d *survdataset.Dataset, opt *PredictOptions) (*Curves, error) {
	ch, err := m.PredictCumulativeHazards(d, opt)
	if err != nil {
		return nil, err
	}
	return ch.expNeg(), nil
}

// PredictCumulativeHazardsAtTimes computes cumulative hazards at an explicit
// time grid, resolving each query time onto the left neighbor of the
// baseline series index. Query times below the smallest indexed time clamp
// to the first entry with a warning.
func (m *CoxModel) PredictCumulativeHazardsAtTimes(times []float64, d *survdataset.Dataset, opt *PredictOptions) (*Curves, error) {
	opt, err := opt.Validate()
	if err != nil {
		return nil, err
	}
	if len(times) == 0 {
		return nil, ErrNoQueryTimes
	}
	if d == nil {
		return nil, ErrNoDataset
	}
	bch, err := m.cumulativeSeries(opt)
	if err != nil {
		return nil, err
	}
	risk, err := m.risk(d)
	if err != nil {
		return nil, err
	}
	baseline, err := bch.ValuesAt(times)
	if err != nil {
		return nil, fmt.Errorf("unable to resolve query times, %w", err)
	}
	values, err := hazard.RiskWeightedMatrix(baseline, risk)
	if err != nil {
		return nil, fmt.Errorf("unable to combine cumulative hazards with risk, %w", err)
	}
	return &Curves{
		Times:  append([]float64(nil), times...),
		Values: values,
	}, nil
}

// PredictSurvivalAtTimes computes survival estimates S(x, t) = exp(-H(x, t))
// at an explicit time grid, see PredictCumulativeHazardsAtTimes.
func (m *CoxModel) PredictSurvivalAtTimes(times []float64, d *survdataset.Dataset, opt *PredictOptions) (*Curves, error) {
	ch, err := m.PredictCumulativeHazardsAtTimes(times, d, opt)
	if err != nil {
		return nil, err
	}
	return ch.expNeg(), nil
}

// Curves holds a duration-indexed matrix of per-subject curves with one row
// per time checkpoint and one column per subject.
type Curves struct {
	Times  []float64
	Values *mat.Dense
}

// Dims returns the number of time checkpoints and subjects.
func (c *Curves) Dims() (int, int) {
	return c.Values.Dims()
}

// Subject returns a copy of the curve of the subject at the given column.
func (c *Curves) Subject(i int) []float64 {
	return mat.Col(nil, i, c.Values)
}

func (c *Curves) expNeg() *Curves {
	var values mat.Dense
	values.Apply(func(_, _ int, v float64) float64 {
		return math.Exp(-v)
	}, c.Values)
	return &Curves{
		Times:  c.Times,
		Values: &values,
	}
}

// PartialLogLikelihood computes the Breslow partial log-likelihood of every
// observed event in the cohort. When risk is nil the scores are computed
// with the model's risk scorer.
func (m *CoxModel) PartialLogLikelihood(d *survdataset.Dataset, risk []float64) ([]hazard.EventLikelihood, error) {
	if d == nil {
		return nil, ErrNoDataset
	}
	var err error
	if risk == nil {
		if risk, err = m.risk(d); err != nil {
			return nil, err
		}
	}
	if len(risk) != d.Len() {
		return nil, fmt.Errorf("got %d risk scores for %d observations, %w", len(risk), d.Len(), ErrRiskLenMismatch)
	}
	return hazard.PartialLogLikelihood(d.Durations, d.Events, risk)
}

// ConcordanceIndex evaluates the fraction of comparable subject pairs whose
// risk ordering agrees with their observed survival ordering. Since a higher
// risk score correlates with earlier death, the sign convention of the
// underlying concordance statistic is inverted before exposure. When risk is
// nil the scores are computed with the model's risk scorer.
func (m *CoxModel) ConcordanceIndex(d *survdataset.Dataset, risk []float64) (float64, error) {
	if d == nil {
		return 0, ErrNoDataset
	}
	var err error
	if risk == nil {
		if risk, err = m.risk(d); err != nil {
			return 0, err
		}
	}
	if len(risk) != d.Len() {
		return 0, fmt.Errorf("got %d risk scores for %d observations, %w", len(risk), d.Len(), ErrRiskLenMismatch)
	}
	c, err := stats.ConcordanceIndex(d.Durations, risk, d.Events)
	if err != nil {
		return 0, fmt.Errorf("unable to compute concordance, %w", err)
	}
	return 1.0 - c, nil
}

// BrierScore computes the IPCW Brier score of the model's survival estimates
// at each of the given times.
func (m *CoxModel) BrierScore(times []float64, d *survdataset.Dataset) ([]float64, error) {
	surv, err := m.PredictSurvivalAtTimes(times, d, nil)
	if err != nil {
		return nil, err
	}
	return metrics.BrierScore(times, surv.Values, d.Durations, d.Events)
}

// IntegratedBrierScore integrates the Brier score over a time grid. A nil
// grid defaults to equidistant points between the smallest and largest
// duration of the cohort.
func (m *CoxModel) IntegratedBrierScore(d *survdataset.Dataset, timesGrid []float64) (float64, error) {
	if d == nil {
		return 0, ErrNoDataset
	}
	probAlive := func(times []float64) (mat.Matrix, error) {
		surv, err := m.PredictSurvivalAtTimes(times, d, nil)
		if err != nil {
			return nil, err
		}
		return surv.Values, nil
	}
	return metrics.IntegratedBrierScore(probAlive, d.Durations, d.Events, timesGrid)
}

package survival

import (
	"bytes"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/aouyang1/go-survival/scorer"
)

func TestModel(t *testing.T) {
	m, d := tiedCohort(t)

	_, err := m.Model()
	assert.ErrorIs(t, err, ErrNoBaselineHazards)

	_, err = m.ComputeBaselineHazards(d, nil)
	require.Nil(t, err)

	model, err := m.Model()
	require.Nil(t, err)
	require.Equal(t, 2, len(model.BaselineHazards))
	assert.Equal(t, 2.0, model.BaselineHazards[0].Duration)
	assert.InDelta(t, 0.25, model.BaselineHazards[0].Hazard, 1e-12)
	assert.Equal(t, 3.0, model.BaselineHazards[1].Duration)
	assert.InDelta(t, 0.5, model.BaselineHazards[1].Hazard, 1e-12)
}

func TestModelRoundTrip(t *testing.T) {
	m, d := tiedCohort(t)
	_, err := m.ComputeBaselineHazards(d, nil)
	require.Nil(t, err)

	model, err := m.Model()
	require.Nil(t, err)

	out, err := json.Marshal(model)
	require.Nil(t, err)

	var decoded Model
	require.Nil(t, json.Unmarshal(out, &decoded))
	assert.Equal(t, model, decoded)
}

func TestModelWriteRead(t *testing.T) {
	m, d := tiedCohort(t)
	_, err := m.ComputeBaselineHazards(d, nil)
	require.Nil(t, err)

	model, err := m.Model()
	require.Nil(t, err)

	var plain bytes.Buffer
	require.Nil(t, model.Write(&plain))
	decoded, err := ReadModel(&plain)
	require.Nil(t, err)
	assert.Equal(t, model, decoded)

	var compressed bytes.Buffer
	require.Nil(t, model.WriteCompressed(&compressed))
	decoded, err = ReadModelCompressed(&compressed)
	require.Nil(t, err)
	assert.Equal(t, model, decoded)
}

func TestNewFromModel(t *testing.T) {
	m, d := tiedCohort(t)
	_, err := m.ComputeBaselineHazards(d, nil)
	require.Nil(t, err)

	expected, err := m.PredictCumulativeHazards(d, nil)
	require.Nil(t, err)

	model, err := m.Model()
	require.Nil(t, err)

	restored, err := NewFromModel(model, m.scorer)
	require.Nil(t, err)

	// the cumulative series is recomputed from the persisted baseline table
	res, err := restored.PredictCumulativeHazards(d, nil)
	require.Nil(t, err)
	assert.Equal(t, expected.Times, res.Times)
	assert.True(t, mat.EqualApprox(expected.Values, res.Values, 1e-12))
}

func TestNewFromModelErrors(t *testing.T) {
	s, err := scorer.NewLinear([]float64{1}, 0)
	require.Nil(t, err)

	_, err = NewFromModel(Model{}, s)
	assert.ErrorIs(t, err, ErrNoHazardsInModel)

	_, err = NewFromModel(Model{
		BaselineHazards: []HazardEntry{
			{Duration: 2, Hazard: 0.2},
			{Duration: 1, Hazard: 0.1},
		},
	}, s)
	assert.ErrorContains(t, err, "invalid baseline hazards in model")

	_, err = NewFromModel(Model{
		BaselineHazards: []HazardEntry{{Duration: 1, Hazard: 0.1}},
	}, nil)
	assert.ErrorIs(t, err, ErrNoScorer)
}

func TestModelTablePrint(t *testing.T) {
	m, d := tiedCohort(t)
	_, err := m.ComputeBaselineHazards(d, nil)
	require.Nil(t, err)

	model, err := m.Model()
	require.Nil(t, err)
	model.Scores = &Scores{
		ConcordanceIndex:     0.8,
		IntegratedBrierScore: 0.1,
	}

	var buf bytes.Buffer
	require.Nil(t, model.TablePrint(&buf, "", "  "))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "CoxModel:"))
	assert.Contains(t, out, "Batch Size: 8224")
	assert.Contains(t, out, "Concordance: 0.800")
	assert.Contains(t, out, "Baseline Hazards:")
	assert.Contains(t, out, "2.0000")
	assert.Contains(t, out, "0.250000")
}

func TestPlotSurvival(t *testing.T) {
	m, d := tiedCohort(t)

	var buf bytes.Buffer
	err := m.PlotSurvival(&buf, d, nil)
	assert.ErrorIs(t, err, ErrNoBaselineHazards)

	_, err = m.ComputeBaselineHazards(d, nil)
	require.Nil(t, err)

	require.Nil(t, m.PlotSurvival(&buf, d, nil))
	assert.Contains(t, buf.String(), "Baseline Hazard")
}

package survival

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/aouyang1/go-survival/hazard"
	"github.com/aouyang1/go-survival/survdataset"
)

// LineBaselineHazard generates an echart line chart of a baseline hazard
// series and, when present, its cumulative series.
func LineBaselineHazard(title string, baseline, cumulative *hazard.Series) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(
			opts.Title{
				Title: title,
			},
		),
	)

	lineDataBaseline := make([]opts.LineData, 0, baseline.Len())
	for _, v := range baseline.Values {
		lineDataBaseline = append(lineDataBaseline, opts.LineData{Value: v})
	}
	line = line.SetXAxis(baseline.Times).
		AddSeries("Baseline Hazard", lineDataBaseline)

	if cumulative != nil {
		lineDataCumulative := make([]opts.LineData, 0, cumulative.Len())
		for _, v := range cumulative.Values {
			lineDataCumulative = append(lineDataCumulative, opts.LineData{Value: v})
		}
		line = line.AddSeries("Cumulative Hazard", lineDataCumulative)
	}
	return line
}

// LineCurves generates an echart line chart with one series per subject of
// the given curves. Series are labelled by the input labels or by subject
// position when labels run out.
func LineCurves(title string, c *Curves, labels []string) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(
			opts.Title{
				Title: title,
			},
		),
	)
	line = line.SetXAxis(c.Times)

	_, numSubjects := c.Dims()
	for i := 0; i < numSubjects; i++ {
		curve := c.Subject(i)
		lineData := make([]opts.LineData, 0, len(curve))
		for _, v := range curve {
			lineData = append(lineData, opts.LineData{Value: v})
		}
		label := fmt.Sprintf("subject %d", i)
		if i < len(labels) {
			label = labels[i]
		}
		line = line.AddSeries(label, lineData)
	}
	return line
}

// PlotSurvival renders an html page with the model's baseline hazard series
// and the predicted survival curves of the given cohort.
func (m *CoxModel) PlotSurvival(w io.Writer, d *survdataset.Dataset, opt *PredictOptions) error {
	surv, err := m.PredictSurvivalFunction(d, opt)
	if err != nil {
		return fmt.Errorf("unable to predict survival functions, %w", err)
	}

	baseline := m.baselineHazards
	cumulative := m.baselineCumulativeHazards
	if opt != nil && opt.BaselineHazards != nil {
		baseline = opt.BaselineHazards
		if cumulative, err = baseline.Cumulative(); err != nil {
			return fmt.Errorf("invalid baseline hazard series, %w", err)
		}
	}

	page := components.NewPage()
	page.AddCharts(
		LineBaselineHazard("Baseline Hazard", baseline, cumulative),
		LineCurves("Survival Functions", surv, nil),
	)
	return page.Render(w)
}

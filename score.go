package survival

import (
	"fmt"

	"github.com/aouyang1/go-survival/survdataset"
)

// Scores summarizes model diagnostics on a labelled cohort.
type Scores struct {
	ConcordanceIndex     float64 `json:"concordance_index"`
	IntegratedBrierScore float64 `json:"integrated_brier_score"`
}

// NewScores evaluates the model's concordance index and integrated Brier
// score on the given cohort. The model needs cached baseline hazards for the
// Brier component.
func NewScores(m *CoxModel, d *survdataset.Dataset) (*Scores, error) {
	concordance, err := m.ConcordanceIndex(d, nil)
	if err != nil {
		return nil, fmt.Errorf("unable to compute concordance index, %w", err)
	}
	ibs, err := m.IntegratedBrierScore(d, nil)
	if err != nil {
		return nil, fmt.Errorf("unable to compute integrated brier score, %w", err)
	}
	return &Scores{
		ConcordanceIndex:     concordance,
		IntegratedBrierScore: ibs,
	}, nil
}

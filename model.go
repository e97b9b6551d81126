package survival

import (
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/goccy/go-json"
	"github.com/klauspost/compress/gzip"
)

var ErrNoHazardsInModel = errors.New("no baseline hazards in model")

// HazardEntry is one row of the persisted baseline hazard table.
type HazardEntry struct {
	Duration float64 `json:"duration"`
	Hazard   float64 `json:"hazard"`
}

// Model represents a serializeable format of a CoxModel storing the options,
// optional evaluation scores, and the ordered baseline hazard table. The
// cumulative hazard series is never persisted and is recomputed from the
// baseline table on load so the two cannot drift. The risk scorer persists
// its own parameters separately.
type Model struct {
	Options         *Options      `json:"options"`
	Scores          *Scores       `json:"scores,omitempty"`
	BaselineHazards []HazardEntry `json:"baseline_hazards"`
}

// Model returns the serializeable state of the fitted model. Baseline
// hazards must have been computed and cached first.
func (m *CoxModel) Model() (Model, error) {
	if m.baselineHazards == nil {
		return Model{}, ErrNoBaselineHazards
	}
	entries := make([]HazardEntry, m.baselineHazards.Len())
	for i := range entries {
		entries[i] = HazardEntry{
			Duration: m.baselineHazards.Times[i],
			Hazard:   m.baselineHazards.Values[i],
		}
	}
	return Model{
		Options:         m.opt,
		BaselineHazards: entries,
	}, nil
}

// Write serializes the model as JSON.
func (m Model) Write(w io.Writer) error {
	return json.NewEncoder(w).Encode(m)
}

// WriteCompressed serializes the model as gzip-compressed JSON.
func (m Model) WriteCompressed(w io.Writer) error {
	gz := gzip.NewWriter(w)
	if err := json.NewEncoder(gz).Encode(m); err != nil {
		return err
	}
	return gz.Close()
}

// ReadModel deserializes a model previously written with Write.
func ReadModel(r io.Reader) (Model, error) {
	var m Model
	if err := json.NewDecoder(r).Decode(&m); err != nil {
		return Model{}, fmt.Errorf("unable to decode model, %w", err)
	}
	return m, nil
}

// ReadModelCompressed deserializes a model previously written with
// WriteCompressed.
func ReadModelCompressed(r io.Reader) (Model, error) {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return Model{}, fmt.Errorf("unable to open gzip stream, %w", err)
	}
	defer gz.Close()
	return ReadModel(gz)
}

// TablePrint writes a human readable representation of the model.
func (m Model) TablePrint(w io.Writer, prefix, indent string) error {
	if _, err := fmt.Fprintf(w, "%sCoxModel:\n", prefix); err != nil {
		return err
	}
	if m.Options != nil {
		if _, err := fmt.Fprintf(w, "%s%sBatch Size: %d\n", prefix, indent, m.Options.BatchSize); err != nil {
			return err
		}
	}
	if m.Scores != nil {
		if _, err := fmt.Fprintf(w, "%s%sScores:\n", prefix, indent); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "%s%s%sConcordance: %.3f    Integrated Brier: %.3f\n",
			prefix, indent, indent,
			m.Scores.ConcordanceIndex,
			m.Scores.IntegratedBrierScore,
		); err != nil {
			return err
		}
	}

	if _, err := fmt.Fprintf(w, "%s%sBaseline Hazards:\n", prefix, indent); err != nil {
		return err
	}
	tbl := tabwriter.NewWriter(w, 0, 0, 1, ' ', tabwriter.AlignRight)
	if _, err := fmt.Fprintf(tbl, "%s%s%sDuration\tHazard\t\n", prefix, indent, indent); err != nil {
		return err
	}
	for _, entry := range m.BaselineHazards {
		if _, err := fmt.Fprintf(tbl, "%s%s%s%.4f\t%.6f\t\n",
			prefix, indent, indent,
			entry.Duration, entry.Hazard); err != nil {
			return err
		}
	}
	return tbl.Flush()
}

// Package scorer defines the risk scoring contract the survival model
// consumes. A scorer maps covariate rows to one real-valued risk score per
// row and is treated as already trained.
package scorer

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

var (
	ErrNoObservations    = errors.New("no covariate rows to score")
	ErrScoreLenMismatch  = errors.New("scorer returned a different number of scores than rows")
	ErrCoefLenMismatch   = errors.New("covariate width does not match coefficients")
	ErrUninitializedFunc = errors.New("uninitialized scorer func")
)

// RiskScorer produces one risk score per covariate row, preserving row order.
type RiskScorer interface {
	Predict(x mat.Matrix) ([]float64, error)
}

// Func adapts a plain function to the RiskScorer interface.
type Func func(x mat.Matrix) ([]float64, error)

func (f Func) Predict(x mat.Matrix) ([]float64, error) {
	if f == nil {
		return nil, ErrUninitializedFunc
	}
	return f(x)
}

// BatchPredict scores x in row chunks of at most batchSize, concatenating the
// results in input order. Chunking is purely a memory knob and never changes
// the numerical result. A batchSize of 0 or less scores all rows in one call.
func BatchPredict(s RiskScorer, x *mat.Dense, batchSize int) ([]float64, error) {
	r, c := x.Dims()
	if r == 0 {
		return nil, ErrNoObservations
	}
	if batchSize <= 0 || batchSize >= r {
		res, err := s.Predict(x)
		if err != nil {
			return nil, err
		}
		if len(res) != r {
			return nil, fmt.Errorf("got %d scores for %d rows, %w", len(res), r, ErrScoreLenMismatch)
		}
		return res, nil
	}

	out := make([]float64, 0, r)
	for i := 0; i < r; i += batchSize {
		end := min(i+batchSize, r)
		res, err := s.Predict(x.Slice(i, end, 0, c))
		if err != nil {
			return nil, fmt.Errorf("unable to score rows %d to %d, %w", i, end, err)
		}
		if len(res) != end-i {
			return nil, fmt.Errorf("got %d scores for %d rows, %w", len(res), end-i, ErrScoreLenMismatch)
		}
		out = append(out, res...)
	}
	return out, nil
}

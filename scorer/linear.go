package scorer

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

var ErrNoCoefficients = errors.New("no coefficients")

// Linear scores covariates with a fixed linear predictor g(x) = x.coef +
// intercept, the risk form of a standard Cox proportional-hazards model.
type Linear struct {
	Coef      []float64
	Intercept float64
}

// NewLinear returns a linear risk scorer with the given coefficients.
func NewLinear(coef []float64, intercept float64) (*Linear, error) {
	if len(coef) == 0 {
		return nil, ErrNoCoefficients
	}
	return &Linear{
		Coef:      append([]float64(nil), coef...),
		Intercept: intercept,
	}, nil
}

func (l *Linear) Predict(x mat.Matrix) ([]float64, error) {
	r, c := x.Dims()
	if c != len(l.Coef) {
		return nil, fmt.Errorf("got %d covariates with %d coefficients, %w", c, len(l.Coef), ErrCoefLenMismatch)
	}

	var res mat.VecDense
	res.MulVec(x, mat.NewVecDense(len(l.Coef), l.Coef))

	out := make([]float64, r)
	for i := 0; i < r; i++ {
		out[i] = res.AtVec(i) + l.Intercept
	}
	return out, nil
}

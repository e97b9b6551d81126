package scorer

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestLinearPredict(t *testing.T) {
	l, err := NewLinear([]float64{2, -1}, 0.5)
	require.Nil(t, err)

	x := mat.NewDense(3, 2, []float64{
		1, 0,
		0, 1,
		2, 3,
	})
	res, err := l.Predict(x)
	require.Nil(t, err)
	assert.InDeltaSlice(t, []float64{2.5, -0.5, 1.5}, res, 1e-12)
}

func TestLinearPredictErrors(t *testing.T) {
	_, err := NewLinear(nil, 0)
	assert.ErrorIs(t, err, ErrNoCoefficients)

	l, err := NewLinear([]float64{1}, 0)
	require.Nil(t, err)
	_, err = l.Predict(mat.NewDense(1, 2, []float64{1, 2}))
	assert.ErrorIs(t, err, ErrCoefLenMismatch)
}

func TestFuncPredict(t *testing.T) {
	var f Func
	_, err := f.Predict(mat.NewDense(1, 1, []float64{1}))
	assert.ErrorIs(t, err, ErrUninitializedFunc)

	f = func(x mat.Matrix) ([]float64, error) {
		r, _ := x.Dims()
		out := make([]float64, r)
		for i := range out {
			out[i] = x.At(i, 0)
		}
		return out, nil
	}
	res, err := f.Predict(mat.NewDense(2, 1, []float64{3, 4}))
	require.Nil(t, err)
	assert.Equal(t, []float64{3, 4}, res)
}

func TestBatchPredict(t *testing.T) {
	l, err := NewLinear([]float64{1, 2}, -1)
	require.Nil(t, err)

	x := mat.NewDense(5, 2, []float64{
		1, 1,
		2, 0,
		0, 3,
		-1, 2,
		4, -2,
	})

	full, err := BatchPredict(l, x, 0)
	require.Nil(t, err)

	// batching is a memory knob only and must not change results
	for _, batchSize := range []int{1, 2, 3, 5, 100} {
		res, err := BatchPredict(l, x, batchSize)
		require.Nil(t, err)
		assert.Equal(t, full, res)
	}
}

func TestBatchPredictErrors(t *testing.T) {
	l, err := NewLinear([]float64{1}, 0)
	require.Nil(t, err)

	_, err = BatchPredict(l, &mat.Dense{}, 1)
	assert.ErrorIs(t, err, ErrNoObservations)

	short := Func(func(x mat.Matrix) ([]float64, error) {
		return []float64{1}, nil
	})
	_, err = BatchPredict(short, mat.NewDense(3, 1, []float64{1, 2, 3}), 2)
	assert.ErrorIs(t, err, ErrScoreLenMismatch)

	failing := Func(func(x mat.Matrix) ([]float64, error) {
		return nil, errors.New("scorer offline")
	})
	_, err = BatchPredict(failing, mat.NewDense(2, 1, []float64{1, 2}), 1)
	assert.ErrorContains(t, err, "scorer offline")
}

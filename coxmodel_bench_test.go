package survival

import (
	"testing"

	"github.com/pkg/profile"

	"github.com/aouyang1/go-survival/scorer"
	"github.com/aouyang1/go-survival/survdataset"
)

var benchPredictRes *Curves

func benchSetup(n int) (*CoxModel, *survdataset.Dataset) {
	coef := []float64{0.8, -0.4, 0.2}
	d, err := survdataset.GenerateCohort(n, coef, 0.1, 0.02)
	if err != nil {
		panic(err)
	}
	s, err := scorer.NewLinear(coef, 0)
	if err != nil {
		panic(err)
	}
	m, err := New(s, nil)
	if err != nil {
		panic(err)
	}
	return m, d
}

func BenchmarkComputeBaselineHazards(b *testing.B) {
	m, d := benchSetup(10000)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := m.ComputeBaselineHazards(d, nil); err != nil {
			panic(err)
		}
	}
}

func BenchmarkPredictSurvivalFunction(b *testing.B) {
	m, d := benchSetup(2000)
	if _, err := m.ComputeBaselineHazards(d, nil); err != nil {
		panic(err)
	}

	var err error
	b.ResetTimer()
	defer profile.Start(profile.CPUProfile, profile.ProfilePath(".")).Stop()
	for i := 0; i < b.N; i++ {
		benchPredictRes, err = m.PredictSurvivalFunction(d, nil)
		if err != nil {
			panic(err)
		}
	}
}

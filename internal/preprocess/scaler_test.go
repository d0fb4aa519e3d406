package preprocess

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

func TestStandardScalerZeroMeanUnitVariance(t *testing.T) {
	X := mat.NewDense(6, 3, []float64{
		19, 15, 39,
		21, 15, 81,
		20, 16, 6,
		23, 16, 77,
		31, 17, 40,
		22, 17, 76,
	})
	s := NewStandardScaler("Age", "Annual Income", "Spending Score")
	Z, err := s.FitTransform(X)
	require.NoError(t, err)

	r, c := Z.Dims()
	require.Equal(t, 6, r)
	require.Equal(t, 3, c)
	col := make([]float64, r)
	for j := 0; j < c; j++ {
		mat.Col(col, j, Z)
		mean, std := stat.PopMeanStdDev(col, nil)
		assert.InDelta(t, 0, mean, 1e-12, "column %d mean", j)
		assert.InDelta(t, 1, std, 1e-12, "column %d std", j)
	}
}

func TestStandardScalerPopulationStd(t *testing.T) {
	X := mat.NewDense(4, 1, []float64{1, 2, 3, 4})
	s := NewStandardScaler()
	require.NoError(t, s.Fit(X))
	assert.InDelta(t, 2.5, s.Mean[0], 1e-12)
	assert.InDelta(t, math.Sqrt(1.25), s.Std[0], 1e-12)
}

func TestStandardScalerReusedForPrediction(t *testing.T) {
	train := mat.NewDense(3, 2, []float64{0, 10, 2, 20, 4, 30})
	s := NewStandardScaler()
	require.NoError(t, s.Fit(train))
	mean, std := append([]float64(nil), s.Mean...), append([]float64(nil), s.Std...)

	other := mat.NewDense(1, 2, []float64{2, 20})
	Z, err := s.Transform(other)
	require.NoError(t, err)
	assert.InDelta(t, 0, Z.At(0, 0), 1e-12)
	assert.InDelta(t, 0, Z.At(0, 1), 1e-12)
	assert.Equal(t, mean, s.Mean, "transform must not refit")
	assert.Equal(t, std, s.Std)

	back, err := s.InverseTransform(Z)
	require.NoError(t, err)
	assert.InDelta(t, 20, back.At(0, 1), 1e-9)
}

func TestStandardScalerDegenerateColumn(t *testing.T) {
	X := mat.NewDense(3, 3, []float64{
		30, 15, 39,
		30, 16, 81,
		30, 17, 6,
	})
	s := NewStandardScaler("Age", "Annual Income", "Spending Score")
	Z, err := s.FitTransform(X)
	assert.Nil(t, Z)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDegenerateColumn))

	var de *DegenerateColumnError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, 0, de.Index)
	assert.Equal(t, "Age", de.Name)
	assert.Equal(t, 30.0, de.Value)
	assert.False(t, s.Fitted(), "a failed fit leaves the scaler untrained")
}

func TestStandardScalerErrors(t *testing.T) {
	s := NewStandardScaler()
	_, err := s.Transform(mat.NewDense(1, 1, []float64{1}))
	assert.True(t, errors.Is(err, ErrNotFitted))
	assert.True(t, errors.Is(s.Fit(nil), ErrEmptyInput))

	require.NoError(t, s.Fit(mat.NewDense(2, 2, []float64{1, 2, 3, 4})))
	_, err = s.Transform(mat.NewDense(1, 3, []float64{1, 2, 3}))
	assert.Error(t, err)
}

func TestStandardScalerNilDense(t *testing.T) {
	var X *mat.Dense
	err := NewStandardScaler().Fit(X)
	assert.True(t, errors.Is(err, ErrEmptyInput))
}

package cluster

import (
	"errors"
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/mat"
)

// ErrModelNotTrained is returned when predicting with a model that has no centroids.
var ErrModelNotTrained = errors.New("model not trained")

// Model is a fitted k-means partition in standardized feature space. A Model
// is never mutated after Fit returns it.
type Model struct {
	// ID identifies the fit that produced the model.
	ID         string
	K          int
	Centroids  [][]float64
	Inertia    float64
	Iterations int
	Seed       int64
	FittedAt   time.Time
}

// Trained reports whether m can predict.
func (m *Model) Trained() bool {
	return m != nil && len(m.Centroids) > 0 && len(m.Centroids) == m.K
}

// Dim returns the feature dimension of the centroids.
func (m *Model) Dim() int {
	if !m.Trained() {
		return 0
	}
	return len(m.Centroids[0])
}

// Predict assigns every row of X to its nearest centroid.
func (m *Model) Predict(X mat.Matrix) ([]int, error) {
	return Predict(X, m)
}

// Predict assigns every row of X to the nearest centroid of m by squared
// Euclidean distance; the lowest centroid index wins ties. It never refits.
func Predict(X mat.Matrix, m *Model) ([]int, error) {
	if !m.Trained() {
		return nil, ErrModelNotTrained
	}
	if isEmpty(X) {
		return nil, ErrEmptyInput
	}
	r, c := X.Dims()
	if c != m.Dim() {
		return nil, fmt.Errorf("predict: got %d features, model has %d", c, m.Dim())
	}
	labels := make([]int, r)
	row := make([]float64, c)
	for i := 0; i < r; i++ {
		mat.Row(row, i, X)
		labels[i], _ = nearest(row, m.Centroids)
	}
	return labels, nil
}

// Sizes counts labels per cluster.
func Sizes(labels []int, k int) []int {
	sizes := make([]int, k)
	for _, l := range labels {
		if l >= 0 && l < k {
			sizes[l]++
		}
	}
	return sizes
}

func nearest(p []float64, centers [][]float64) (int, float64) {
	best, bestD := 0, math.Inf(1)
	for k, c := range centers {
		if d := sqDist(p, c); d < bestD {
			best, bestD = k, d
		}
	}
	return best, bestD
}

func sqDist(a, b []float64) float64 {
	var s float64
	for i := range a {
		d := a[i] - b[i]
		s += d * d
	}
	return s
}

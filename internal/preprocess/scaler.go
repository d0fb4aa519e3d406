// Package preprocess standardizes feature matrices before clustering.
package preprocess

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

var (
	// ErrDegenerateColumn indicates a zero-variance column that cannot be standardized.
	ErrDegenerateColumn = errors.New("degenerate column")
	// ErrNotFitted is returned by Transform before Fit.
	ErrNotFitted = errors.New("scaler not fitted")
	// ErrEmptyInput is returned when fitting an empty matrix.
	ErrEmptyInput = errors.New("empty input")
)

// DegenerateColumnError names the constant column that stopped the fit.
type DegenerateColumnError struct {
	Index int
	Name  string
	Value float64
}

func (e *DegenerateColumnError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("column %q has zero variance (every value is %g)", e.Name, e.Value)
	}
	return fmt.Sprintf("column %d has zero variance (every value is %g)", e.Index, e.Value)
}

func (e *DegenerateColumnError) Unwrap() error { return ErrDegenerateColumn }

// StandardScaler rescales each column to zero mean and unit variance using the
// population (ddof=0) standard deviation.
type StandardScaler struct {
	Mean []float64
	Std  []float64
	// Names labels columns in errors; optional.
	Names []string
}

// NewStandardScaler returns an unfitted scaler whose errors use names.
func NewStandardScaler(names ...string) *StandardScaler {
	return &StandardScaler{Names: names}
}

// Fitted reports whether Fit succeeded.
func (s *StandardScaler) Fitted() bool { return s != nil && len(s.Mean) > 0 }

// Fit computes the per-column mean and standard deviation of X.
func (s *StandardScaler) Fit(X mat.Matrix) error {
	if isEmpty(X) {
		return ErrEmptyInput
	}
	r, c := X.Dims()
	mean := make([]float64, c)
	std := make([]float64, c)
	col := make([]float64, r)
	for j := 0; j < c; j++ {
		mat.Col(col, j, X)
		mean[j], std[j] = stat.PopMeanStdDev(col, nil)
		if std[j] == 0 {
			return &DegenerateColumnError{Index: j, Name: s.name(j), Value: col[0]}
		}
	}
	s.Mean, s.Std = mean, std
	return nil
}

// isEmpty also catches a nil *mat.Dense stored in the interface, whose Dims
// would panic.
func isEmpty(X mat.Matrix) bool {
	if X == nil {
		return true
	}
	if d, ok := X.(*mat.Dense); ok && d == nil {
		return true
	}
	r, c := X.Dims()
	return r == 0 || c == 0
}

// Transform returns (x - mean) / std for every cell of X.
func (s *StandardScaler) Transform(X mat.Matrix) (*mat.Dense, error) {
	if !s.Fitted() {
		return nil, ErrNotFitted
	}
	r, c := X.Dims()
	if c != len(s.Mean) {
		return nil, fmt.Errorf("transform: got %d columns, scaler fitted on %d", c, len(s.Mean))
	}
	out := mat.NewDense(r, c, nil)
	out.Apply(func(_, j int, v float64) float64 {
		return (v - s.Mean[j]) / s.Std[j]
	}, X)
	return out, nil
}

// FitTransform fits on X and returns its standardized copy.
func (s *StandardScaler) FitTransform(X mat.Matrix) (*mat.Dense, error) {
	if err := s.Fit(X); err != nil {
		return nil, err
	}
	return s.Transform(X)
}

// InverseTransform maps standardized values back to the original units.
func (s *StandardScaler) InverseTransform(X mat.Matrix) (*mat.Dense, error) {
	if !s.Fitted() {
		return nil, ErrNotFitted
	}
	r, c := X.Dims()
	if c != len(s.Mean) {
		return nil, fmt.Errorf("inverse transform: got %d columns, scaler fitted on %d", c, len(s.Mean))
	}
	out := mat.NewDense(r, c, nil)
	out.Apply(func(_, j int, v float64) float64 {
		return v*s.Std[j] + s.Mean[j]
	}, X)
	return out, nil
}

func (s *StandardScaler) name(j int) string {
	if j < len(s.Names) {
		return s.Names[j]
	}
	return ""
}

package dataset

import "gonum.org/v1/gonum/mat"

// Features builds the rows × 3 feature matrix [Age, Annual Income, Spending
// Score] with rows in record order. It returns nil for an empty table.
func Features(t *Table) *mat.Dense {
	n := t.Len()
	if n == 0 {
		return nil
	}
	data := make([]float64, 0, n*len(FeatureNames))
	for _, r := range t.Records {
		data = append(data, float64(r.Age), float64(r.AnnualIncome), float64(r.SpendingScore))
	}
	return mat.NewDense(n, len(FeatureNames), data)
}

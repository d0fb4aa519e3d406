package analysis

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/mallseg-cli/internal/dataset"
)

func table() *dataset.Table {
	return &dataset.Table{Source: "Mall_Customers.csv", Records: []dataset.Record{
		{ID: 1, Gender: dataset.GenderMale, Age: 19, AnnualIncome: 15, SpendingScore: 39},
		{ID: 2, Gender: dataset.GenderMale, Age: 21, AnnualIncome: 15, SpendingScore: 81},
		{ID: 3, Gender: dataset.GenderFemale, Age: 20, AnnualIncome: 16, SpendingScore: 6},
		{ID: 4, Gender: dataset.GenderFemale, Age: 23, AnnualIncome: 16, SpendingScore: 77},
		{ID: 5, Gender: dataset.GenderUnknown, Age: 31, AnnualIncome: 17, SpendingScore: 40},
		{ID: 6, Gender: dataset.GenderFemale, Age: 22, AnnualIncome: 17, SpendingScore: 76},
	}}
}

func TestValueCountsOrder(t *testing.T) {
	counts, err := ValueCounts(table(), dataset.ColAnnualIncome)
	require.NoError(t, err)
	require.Len(t, counts, 3)
	assert.Equal(t, []Count{{15, 2}, {16, 2}, {17, 2}}, counts, "ties keep first appearance")

	counts, err = ValueCounts(table(), dataset.ColGender)
	require.NoError(t, err)
	assert.Equal(t, []Count{{0, 3}, {1, 2}}, counts, "unknown gender excluded")
	assert.Equal(t, "0", counts[0].Label())

	_, err = ValueCounts(table(), "Income")
	assert.ErrorIs(t, err, ErrUnknownColumn)
}

func TestClusterMeans(t *testing.T) {
	labels := []int{1, 1, 0, 0, 1, 3}
	sums, err := ClusterMeans(table(), labels)
	require.NoError(t, err)
	require.Len(t, sums, 3)
	assert.Equal(t, []int{0, 1, 3}, []int{sums[0].Cluster, sums[1].Cluster, sums[2].Cluster})

	c1 := sums[1]
	assert.Equal(t, 3, c1.Size)
	assert.InDelta(t, (19.0+21+31)/3, c1.Mean(dataset.ColAge), 1e-9)
	assert.InDelta(t, (39.0+81+40)/3, c1.Mean(dataset.ColSpendingScore), 1e-9)
	assert.InDelta(t, 1.0, c1.Mean(dataset.ColGender), 1e-9, "gender mean ignores the unknown row")

	_, err = ClusterMeans(table(), []int{0})
	assert.Error(t, err)
}

func TestRankBySpending(t *testing.T) {
	sums, err := ClusterMeans(table(), []int{0, 1, 2, 1, 2, 1})
	require.NoError(t, err)
	ranked := RankBySpending(sums)
	assert.Equal(t, 1, ranked[0].Cluster)
	assert.Equal(t, 0, sums[0].Cluster, "input order untouched")
}

func TestProfileMarkdown(t *testing.T) {
	rep := Profile(table(), DefaultOptions())
	assert.Equal(t, 6, rep.Rows)
	require.Len(t, rep.Cols, 4)

	gender := rep.Cols[0]
	assert.Equal(t, "categorical", gender.Kind)
	assert.Equal(t, 1, gender.Missing)
	assert.Equal(t, CategoryCount{Value: "Female", Count: 3}, gender.TopValues[0])

	age := rep.Cols[1]
	assert.Equal(t, "numeric", age.Kind)
	assert.Equal(t, 19.0, age.Min)
	assert.Equal(t, 31.0, age.Max)
	assert.InDelta(t, 136.0/6, age.Mean, 1e-9)

	md := rep.Markdown()
	assert.True(t, strings.HasPrefix(md, "[DATASET SUMMARY]"))
	assert.Contains(t, md, "File: Mall_Customers.csv")
	assert.Contains(t, md, "- Age: numeric (non-null 6, missing 0.0%)")
	assert.Contains(t, md, "[SAMPLE ROWS]")
	assert.Contains(t, md, "| 5 | NaN | 31 | 17 | 40 |")
	assert.Contains(t, md, "[NOTES]")
}

func TestMedianMAD(t *testing.T) {
	m, mad := medianMAD([]float64{1, 2, 3, 4, 100})
	assert.Equal(t, 3.0, m)
	assert.Equal(t, 1.0, mad)
	m, mad = medianMAD(nil)
	assert.Zero(t, m)
	assert.Zero(t, mad)
}

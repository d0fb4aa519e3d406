package dataset_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/mallseg-cli/internal/dataset"
)

const mallCSV = "CustomerID,Gender,Age,Annual Income (k$),Spending Score (1-100)\n" +
	"1,Male,19,15,39\n" +
	"2,Male,21,15,81\n" +
	"3,Female,20,16,6\n" +
	"4,Female,23,16,77\n" +
	"5,Female,31,17,40\n"

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestLoadRenamesAndMaps(t *testing.T) {
	p := writeFile(t, "Mall_Customers.csv", mallCSV)

	tbl, err := dataset.Load(p)
	require.NoError(t, err)
	assert.Equal(t, "Mall_Customers.csv", tbl.Source)
	require.Equal(t, 5, tbl.Len())

	first := tbl.Records[0]
	assert.Equal(t, dataset.Record{ID: 1, Gender: dataset.GenderMale, Age: 19, AnnualIncome: 15, SpendingScore: 39}, first)
	assert.Equal(t, dataset.GenderFemale, tbl.Records[2].Gender)

	for i, r := range tbl.Records {
		assert.Equal(t, i+1, r.ID, "rows must stay in file order")
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := dataset.Load(filepath.Join(t.TempDir(), "absent.csv"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, dataset.ErrDataNotFound))
}

func TestParseIsIdempotentOnRenamedHeaders(t *testing.T) {
	renamed := "idx;Gender;Age;Annual Income;Spending Score\n" +
		"10;Female;40;60;50\n" +
		"11;Male;35;70;45\n"
	a, err := dataset.Parse(strings.NewReader(mallCSV), "raw")
	require.NoError(t, err)
	b, err := dataset.Parse(strings.NewReader(renamed), "renamed")
	require.NoError(t, err)
	assert.Equal(t, 5, a.Len())
	assert.Equal(t, 2, b.Len())
	assert.Equal(t, dataset.Record{ID: 10, Gender: dataset.GenderFemale, Age: 40, AnnualIncome: 60, SpendingScore: 50}, b.Records[0])

	assert.Equal(t, dataset.ColAnnualIncome, dataset.RenameColumn("Annual Income (k$)"))
	assert.Equal(t, dataset.ColAnnualIncome, dataset.RenameColumn(dataset.RenameColumn("Annual Income (k$)")))
}

func TestParseColumnOrderAndBOM(t *testing.T) {
	in := "\ufeffid\tAge\tAnnual Income (k$)\tSpending Score (1-100)\tGender\n" +
		"1\t19\t15\t39\tMale\n"
	tbl, err := dataset.Parse(strings.NewReader(in), "tsv")
	require.NoError(t, err)
	require.Equal(t, 1, tbl.Len())
	assert.Equal(t, 19, tbl.Records[0].Age)
	assert.Equal(t, dataset.GenderMale, tbl.Records[0].Gender)
}

func TestParseUnknownGender(t *testing.T) {
	in := "id,Gender,Age,Annual Income (k$),Spending Score (1-100)\n1,Other,30,40,50\n2,,31,41,51\n"
	tbl, err := dataset.Parse(strings.NewReader(in), "x")
	require.NoError(t, err)
	for _, r := range tbl.Records {
		assert.Equal(t, dataset.GenderUnknown, r.Gender)
		assert.False(t, r.Gender.Known())
		_, ok := dataset.Value(r, dataset.ColGender)
		assert.False(t, ok)
		assert.Equal(t, "NaN", dataset.Cell(r, dataset.ColGender))
	}
}

func TestParseSchemaErrors(t *testing.T) {
	_, err := dataset.Parse(strings.NewReader("id,Gender,Age,Spending Score (1-100)\n1,Male,2,3\n"), "x")
	var se *dataset.SchemaError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, dataset.ColAnnualIncome, se.Column)
	assert.True(t, errors.Is(err, dataset.ErrSchema))

	_, err = dataset.Parse(strings.NewReader(""), "empty")
	assert.True(t, errors.Is(err, dataset.ErrSchema))
}

func TestParseRowError(t *testing.T) {
	in := "id,Gender,Age,Annual Income (k$),Spending Score (1-100)\n1,Male,19,15,39\n2,Male,abc,15,81\n"
	_, err := dataset.Parse(strings.NewReader(in), "x")
	var re *dataset.RowError
	require.True(t, errors.As(err, &re))
	assert.Equal(t, 3, re.Line)
	assert.Equal(t, dataset.ColAge, re.Column)
	assert.Equal(t, "abc", re.Value)
}

func TestFeatures(t *testing.T) {
	tbl, err := dataset.Parse(strings.NewReader(mallCSV), "x")
	require.NoError(t, err)
	X := dataset.Features(tbl)
	r, c := X.Dims()
	assert.Equal(t, 5, r)
	assert.Equal(t, 3, c)
	assert.Equal(t, []float64{21, 15, 81}, X.RawRowView(1))
	assert.Nil(t, dataset.Features(&dataset.Table{}))
}

func TestParseHeaderOnly(t *testing.T) {
	tbl, err := dataset.Parse(strings.NewReader("CustomerID,Gender,Age,Annual Income (k$),Spending Score (1-100)\n"), "x")
	require.NoError(t, err, "an empty table is rejected by the pipeline, not the parser")
	assert.Zero(t, tbl.Len())
	assert.Nil(t, dataset.Features(tbl))
}

package dataset

import "strconv"

// Gender is the encoded gender of a customer.
type Gender int

const (
	// GenderUnknown marks a raw value outside the Male/Female mapping.
	GenderUnknown Gender = -1
	GenderFemale  Gender = 0
	GenderMale    Gender = 1
)

// ParseGender applies the fixed categorical mapping {"Male": 1, "Female": 0}.
func ParseGender(raw string) Gender {
	switch raw {
	case "Male":
		return GenderMale
	case "Female":
		return GenderFemale
	default:
		return GenderUnknown
	}
}

// Known reports whether g came from a mapped value.
func (g Gender) Known() bool { return g == GenderMale || g == GenderFemale }

func (g Gender) String() string {
	switch g {
	case GenderMale:
		return "Male"
	case GenderFemale:
		return "Female"
	default:
		return "unknown"
	}
}

// Column names after renaming.
const (
	ColGender        = "Gender"
	ColAge           = "Age"
	ColAnnualIncome  = "Annual Income"
	ColSpendingScore = "Spending Score"
)

// Columns lists the table columns in file order, identifier excluded.
var Columns = []string{ColGender, ColAge, ColAnnualIncome, ColSpendingScore}

// FeatureNames are the clustering features, in feature matrix column order.
var FeatureNames = []string{ColAge, ColAnnualIncome, ColSpendingScore}

// Record is one customer row.
type Record struct {
	ID            int    `json:"id"`
	Gender        Gender `json:"gender"`
	Age           int    `json:"age"`
	AnnualIncome  int    `json:"annual_income"`
	SpendingScore int    `json:"spending_score"`
}

// Table holds customer records in file order.
type Table struct {
	Source  string
	Records []Record
}

// Len returns the number of records.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Records)
}

// Value returns the numeric value of column for r. The boolean is false for an
// unknown gender or an unknown column.
func Value(r Record, column string) (float64, bool) {
	switch column {
	case ColGender:
		if !r.Gender.Known() {
			return 0, false
		}
		return float64(r.Gender), true
	case ColAge:
		return float64(r.Age), true
	case ColAnnualIncome:
		return float64(r.AnnualIncome), true
	case ColSpendingScore:
		return float64(r.SpendingScore), true
	default:
		return 0, false
	}
}

// Cell formats column of r for display; unknown genders render as "NaN".
func Cell(r Record, column string) string {
	v, ok := Value(r, column)
	if !ok {
		return "NaN"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// HasColumn reports whether name is a table column.
func HasColumn(name string) bool {
	for _, c := range Columns {
		if c == name {
			return true
		}
	}
	return false
}

// Package datasettest builds customer CSV fixtures for tests.
package datasettest

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// Header is the raw header of the mall customers file.
const Header = "CustomerID,Gender,Age,Annual Income (k$),Spending Score (1-100)"

// segments are six well separated (age, income, score) profiles.
var segments = [][3]float64{
	{23, 25, 80},
	{45, 26, 18},
	{32, 86, 82},
	{41, 88, 16},
	{56, 54, 48},
	{26, 56, 50},
}

// Synthetic returns a CSV with n rows drawn around six customer segments.
func Synthetic(n int, seed int64) string {
	rng := rand.New(rand.NewSource(seed))
	var b strings.Builder
	b.WriteString(Header)
	b.WriteString("\n")
	for i := 0; i < n; i++ {
		s := segments[i%len(segments)]
		gender := "Female"
		if rng.Intn(2) == 0 {
			gender = "Male"
		}
		age := clamp(int(s[0]+rng.NormFloat64()*2), 18, 70)
		income := clamp(int(s[1]+rng.NormFloat64()*3), 15, 140)
		score := clamp(int(s[2]+rng.NormFloat64()*3), 1, 100)
		fmt.Fprintf(&b, "%d,%s,%d,%d,%d\n", i+1, gender, age, income, score)
	}
	return b.String()
}

// WriteSynthetic writes Synthetic(n, seed) to a temp file and returns its path.
func WriteSynthetic(t testing.TB, n int, seed int64) string {
	t.Helper()
	return WriteCSV(t, Synthetic(n, seed))
}

// WriteCSV writes content to Mall_Customers.csv in a temp dir.
func WriteCSV(t testing.TB, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "Mall_Customers.csv")
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return p
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

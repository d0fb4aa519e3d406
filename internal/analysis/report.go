package analysis

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/KaramelBytes/mallseg-cli/internal/dataset"
)

// Options controls profiling of a customer table.
type Options struct {
	// SampleRows determines how many example rows to include in the report.
	SampleRows int
	// OutlierThreshold counts values with robust |z| (MAD based) above it; 0 disables.
	OutlierThreshold float64
	// TopValues caps the categorical value list.
	TopValues int
}

// DefaultOptions returns reasonable defaults for dataset profiling.
func DefaultOptions() Options {
	return Options{SampleRows: 5, OutlierThreshold: 3.5, TopValues: 5}
}

// Report is a markdown-friendly profile of a customer table.
type Report struct {
	Name     string
	Rows     int
	Cols     []ColumnSummary
	Samples  []dataset.Record
	Warnings []string
}

// ColumnSummary captures the kind and statistics of one column.
type ColumnSummary struct {
	Name    string
	Kind    string // numeric|categorical
	NonNull int
	Missing int
	Unique  int
	// Numeric stats
	Min    float64
	Max    float64
	Mean   float64
	Std    float64
	Median float64
	// Outliers (robust Z via MAD)
	OutliersCount    int
	OutlierThreshold float64
	// Categorical top values
	TopValues []CategoryCount
}

// CategoryCount is a value with its frequency.
type CategoryCount struct {
	Value string
	Count int
}

// Profile summarizes every column of t.
func Profile(t *dataset.Table, opt Options) *Report {
	rep := &Report{Name: t.Source, Rows: t.Len()}
	if opt.SampleRows > 0 {
		n := opt.SampleRows
		if n > t.Len() {
			n = t.Len()
		}
		rep.Samples = append(rep.Samples, t.Records[:n]...)
	}
	for _, col := range dataset.Columns {
		rep.Cols = append(rep.Cols, summarize(t, col, opt))
	}
	if c := rep.Cols[0]; c.Missing > 0 {
		rep.Warnings = append(rep.Warnings,
			fmt.Sprintf("%d rows have a gender outside Male/Female and are excluded from gender statistics", c.Missing))
	}
	return rep
}

func summarize(t *dataset.Table, col string, opt Options) ColumnSummary {
	cs := ColumnSummary{Name: col, Kind: "numeric"}
	var vals []float64
	for _, r := range t.Records {
		v, ok := dataset.Value(r, col)
		if !ok {
			cs.Missing++
			continue
		}
		vals = append(vals, v)
	}
	cs.NonNull = len(vals)
	cs.Unique = unique(vals)

	if col == dataset.ColGender {
		cs.Kind = "categorical"
		counts := map[string]int{}
		for _, r := range t.Records {
			counts[r.Gender.String()]++
		}
		for v, n := range counts {
			cs.TopValues = append(cs.TopValues, CategoryCount{Value: v, Count: n})
		}
		sort.Slice(cs.TopValues, func(i, j int) bool {
			if cs.TopValues[i].Count != cs.TopValues[j].Count {
				return cs.TopValues[i].Count > cs.TopValues[j].Count
			}
			return cs.TopValues[i].Value < cs.TopValues[j].Value
		})
		if opt.TopValues > 0 && len(cs.TopValues) > opt.TopValues {
			cs.TopValues = cs.TopValues[:opt.TopValues]
		}
	}
	if len(vals) == 0 {
		return cs
	}
	cs.Min, cs.Max = floats.Min(vals), floats.Max(vals)
	cs.Mean, cs.Std = stat.PopMeanStdDev(vals, nil)
	median, mad := medianMAD(vals)
	cs.Median = median
	if opt.OutlierThreshold > 0 && mad > 0 {
		cs.OutlierThreshold = opt.OutlierThreshold
		for _, v := range vals {
			if z := 0.6745 * (v - median) / mad; math.Abs(z) > opt.OutlierThreshold {
				cs.OutliersCount++
			}
		}
	}
	return cs
}

// Markdown renders a compact report.
func (r *Report) Markdown() string {
	var b strings.Builder
	b.WriteString("[DATASET SUMMARY]\n")
	if r.Name != "" {
		b.WriteString(fmt.Sprintf("File: %s\n", r.Name))
	}
	b.WriteString(fmt.Sprintf("Rows: %d\n", r.Rows))
	b.WriteString(fmt.Sprintf("Columns: %d\n\n", len(r.Cols)))

	b.WriteString("[SCHEMA]\n")
	for _, c := range r.Cols {
		total := c.NonNull + c.Missing
		missPct := 0.0
		if total > 0 {
			missPct = float64(c.Missing) * 100.0 / float64(total)
		}
		b.WriteString(fmt.Sprintf("- %s: %s (non-null %d, missing %.1f%%)", c.Name, c.Kind, c.NonNull, missPct))
		switch c.Kind {
		case "numeric":
			b.WriteString(fmt.Sprintf("; min %.4g, max %.4g, mean %.4g, std %.4g, median %.4g", c.Min, c.Max, c.Mean, c.Std, c.Median))
			if c.OutlierThreshold > 0 {
				b.WriteString(fmt.Sprintf("; outliers: %d above |z|>%.1f", c.OutliersCount, c.OutlierThreshold))
			}
		case "categorical":
			if len(c.TopValues) > 0 {
				b.WriteString("; top: ")
				for i, kv := range c.TopValues {
					if i > 0 {
						b.WriteString(", ")
					}
					b.WriteString(fmt.Sprintf("%s(%d)", kv.Value, kv.Count))
				}
			}
		}
		b.WriteString("\n")
	}

	if len(r.Samples) > 0 {
		b.WriteString("\n[SAMPLE ROWS]\n")
		b.WriteString("| id | " + strings.Join(dataset.Columns, " | ") + " |\n")
		b.WriteString("|---|" + strings.Repeat("---|", len(dataset.Columns)) + "\n")
		for _, rec := range r.Samples {
			cells := []string{strconv.Itoa(rec.ID)}
			for _, col := range dataset.Columns {
				cells = append(cells, dataset.Cell(rec, col))
			}
			b.WriteString("| " + strings.Join(cells, " | ") + " |\n")
		}
	}
	if len(r.Warnings) > 0 {
		b.WriteString("\n[NOTES]\n")
		for _, w := range r.Warnings {
			b.WriteString("- ")
			b.WriteString(w)
			b.WriteString("\n")
		}
	}
	return b.String()
}

func unique(vals []float64) int {
	seen := make(map[float64]struct{}, len(vals))
	for _, v := range vals {
		seen[v] = struct{}{}
	}
	return len(seen)
}

// medianMAD computes median and MAD (median absolute deviation) of values.
func medianMAD(vals []float64) (median, mad float64) {
	if len(vals) == 0 {
		return 0, 0
	}
	cp := make([]float64, len(vals))
	copy(cp, vals)
	sort.Float64s(cp)
	median = quantile(cp, 0.5)
	dev := make([]float64, len(cp))
	for i, v := range cp {
		dev[i] = math.Abs(v - median)
	}
	sort.Float64s(dev)
	mad = quantile(dev, 0.5)
	return
}

func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	w := pos - float64(lo)
	return sorted[lo]*(1-w) + sorted[hi]*w
}

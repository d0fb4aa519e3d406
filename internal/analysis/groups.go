package analysis

import (
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/KaramelBytes/mallseg-cli/internal/dataset"
)

// ErrUnknownColumn is returned for a column name outside the table.
var ErrUnknownColumn = errors.New("unknown column")

// Count is one entry of a value-count listing.
type Count struct {
	Value float64
	Count int
}

// Label formats the counted value.
func (c Count) Label() string { return strconv.FormatFloat(c.Value, 'f', -1, 64) }

// ValueCounts counts the distinct values of column, most frequent first; ties
// keep the order of first appearance. Unknown genders are not counted.
func ValueCounts(t *dataset.Table, column string) ([]Count, error) {
	if !dataset.HasColumn(column) {
		return nil, fmt.Errorf("%w %q (choose one of %v)", ErrUnknownColumn, column, dataset.Columns)
	}
	index := map[float64]int{}
	var out []Count
	for _, r := range t.Records {
		v, ok := dataset.Value(r, column)
		if !ok {
			continue
		}
		i, seen := index[v]
		if !seen {
			i = len(out)
			index[v] = i
			out = append(out, Count{Value: v})
		}
		out[i].Count++
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out, nil
}

// ClusterSummary holds the size and column means of one cluster.
type ClusterSummary struct {
	Cluster int
	Size    int
	// Means is keyed by column name; Gender is averaged over known values only.
	Means map[string]float64
}

// Mean returns the mean of column, or 0 when it was not computed.
func (s ClusterSummary) Mean(column string) float64 { return s.Means[column] }

// ClusterMeans groups records by label and averages every column. Only
// clusters with members appear, in ascending label order.
func ClusterMeans(t *dataset.Table, labels []int) ([]ClusterSummary, error) {
	if len(labels) != t.Len() {
		return nil, fmt.Errorf("got %d labels for %d records", len(labels), t.Len())
	}
	type acc struct {
		size int
		sum  map[string]float64
		cnt  map[string]int
	}
	groups := map[int]*acc{}
	for i, r := range t.Records {
		g := groups[labels[i]]
		if g == nil {
			g = &acc{sum: map[string]float64{}, cnt: map[string]int{}}
			groups[labels[i]] = g
		}
		g.size++
		for _, col := range dataset.Columns {
			if v, ok := dataset.Value(r, col); ok {
				g.sum[col] += v
				g.cnt[col]++
			}
		}
	}
	out := make([]ClusterSummary, 0, len(groups))
	for label, g := range groups {
		s := ClusterSummary{Cluster: label, Size: g.size, Means: map[string]float64{}}
		for col, sum := range g.sum {
			s.Means[col] = sum / float64(g.cnt[col])
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Cluster < out[j].Cluster })
	return out, nil
}

// RankBySpending returns a copy of summaries ordered by mean spending score,
// highest first.
func RankBySpending(summaries []ClusterSummary) []ClusterSummary {
	out := append([]ClusterSummary(nil), summaries...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Mean(dataset.ColSpendingScore) > out[j].Mean(dataset.ColSpendingScore)
	})
	return out
}

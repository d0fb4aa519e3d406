package dashboard

import (
	"context"
	"fmt"
	"strings"

	"github.com/KaramelBytes/mallseg-cli/internal/analysis"
	"github.com/KaramelBytes/mallseg-cli/internal/dataset"
	"github.com/KaramelBytes/mallseg-cli/internal/pipeline"
)

// Runner executes the pipeline stages a view needs.
type Runner interface {
	Load(ctx context.Context) (*pipeline.Dataset, error)
	Run(ctx context.Context) (*pipeline.Result, error)
}

// Content is everything needed to render one view, in any format.
type Content struct {
	View   View
	Column string
	Page   Page

	Table     *dataset.Table
	Counts    []analysis.Count
	Result    *pipeline.Result
	Summaries []analysis.ClusterSummary
}

// Build runs only the stages v needs and gathers its data. An empty column
// selects the first dataset column.
func Build(ctx context.Context, r Runner, v View, column string) (*Content, error) {
	c := &Content{View: v}
	if p, ok := StaticPage(v); ok {
		c.Page = p
	}
	switch v.Needs() {
	case NeedData:
		ds, err := r.Load(ctx)
		if err != nil {
			return nil, err
		}
		c.Table = ds.Table
		if v == ViewVisualize {
			if column == "" {
				column = dataset.Columns[0]
			}
			counts, err := analysis.ValueCounts(ds.Table, column)
			if err != nil {
				return nil, err
			}
			c.Column, c.Counts = column, counts
		}
	case NeedModel:
		res, err := r.Run(ctx)
		if err != nil {
			return nil, err
		}
		sums, err := analysis.ClusterMeans(res.Table, res.Labels)
		if err != nil {
			return nil, err
		}
		c.Table, c.Result, c.Summaries = res.Table, res, sums
	}
	return c, nil
}

// Conclusion describes the clusters by their mean spending, highest first.
func Conclusion(summaries []analysis.ClusterSummary) []string {
	if len(summaries) == 0 {
		return nil
	}
	ranked := analysis.RankBySpending(summaries)
	out := []string{
		"Customers fall into distinct groups by age, annual income and spending score. Mall management can use these segments to target each group with its own marketing strategy.",
	}
	for _, s := range ranked {
		out = append(out, fmt.Sprintf("Cluster %d (%d customers): average age %.1f, annual income %.1f k$, spending score %.1f.",
			s.Cluster, s.Size, s.Mean(dataset.ColAge), s.Mean(dataset.ColAnnualIncome), s.Mean(dataset.ColSpendingScore)))
	}
	top, bottom := ranked[0], ranked[len(ranked)-1]
	out = append(out, fmt.Sprintf("Cluster %d spends the most and cluster %d the least; %s.",
		top.Cluster, bottom.Cluster, incomeNote(top, bottom)))
	return out
}

func incomeNote(top, bottom analysis.ClusterSummary) string {
	ti, bi := top.Mean(dataset.ColAnnualIncome), bottom.Mean(dataset.ColAnnualIncome)
	switch {
	case ti > bi:
		return "higher income goes with higher spending between these two"
	case ti < bi:
		return "the top spenders earn less than the lowest spenders, so income alone does not drive spending"
	default:
		return "both earn about the same"
	}
}

func clusterHeader() []string {
	return append([]string{"Cluster", "Size"}, dataset.Columns...)
}

func clusterRow(s analysis.ClusterSummary) []string {
	row := []string{fmt.Sprint(s.Cluster), fmt.Sprint(s.Size)}
	for _, col := range dataset.Columns {
		row = append(row, fmt.Sprintf("%.4f", s.Mean(col)))
	}
	return row
}

func datasetHeader() []string {
	return append([]string{"ID"}, dataset.Columns...)
}

func datasetRow(r dataset.Record) []string {
	row := []string{fmt.Sprint(r.ID)}
	for _, col := range dataset.Columns {
		if col == dataset.ColGender {
			row = append(row, r.Gender.String())
			continue
		}
		row = append(row, dataset.Cell(r, col))
	}
	return row
}

func bar(n, top, width int) string {
	if top <= 0 {
		return ""
	}
	return strings.Repeat("#", n*width/top)
}

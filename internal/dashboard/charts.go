package dashboard

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/KaramelBytes/mallseg-cli/internal/analysis"
	"github.com/KaramelBytes/mallseg-cli/internal/pipeline"
)

const (
	chartWidth  = "900px"
	chartHeight = "520px"
)

// CountsChart renders the value counts of one column as a bar chart page.
func CountsChart(w io.Writer, column string, counts []analysis.Count) error {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: AppTitle,
			Width:     chartWidth,
			Height:    chartHeight,
		}),
		charts.WithTitleOpts(opts.Title{Title: "Value counts: " + column}),
		charts.WithXAxisOpts(opts.XAxis{Name: column}),
		charts.WithYAxisOpts(opts.YAxis{Name: "count"}),
	)
	labels := make([]string, len(counts))
	items := make([]opts.BarData, len(counts))
	for i, c := range counts {
		labels[i] = c.Label()
		items[i] = opts.BarData{Value: c.Count}
	}
	bar.SetXAxis(labels).AddSeries(column, items)
	return bar.Render(w)
}

// ClustersChart renders every customer in Age, Spending Score and Annual
// Income space with one series per cluster.
func ClustersChart(w io.Writer, res *pipeline.Result) error {
	sc := charts.NewScatter3D()
	sc.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: AppTitle,
			Width:     chartWidth,
			Height:    chartHeight,
		}),
		charts.WithTitleOpts(opts.Title{Title: "Customer clusters"}),
		charts.WithXAxis3DOpts(opts.XAxis3D{Name: "Age"}),
		charts.WithYAxis3DOpts(opts.YAxis3D{Name: "Spending Score"}),
		charts.WithZAxis3DOpts(opts.ZAxis3D{Name: "Annual Income"}),
	)
	series := make([][]opts.Chart3DData, res.Model.K)
	for i, r := range res.Table.Records {
		l := res.Labels[i]
		series[l] = append(series[l], opts.Chart3DData{
			Value: []interface{}{r.Age, r.SpendingScore, r.AnnualIncome},
		})
	}
	for k, pts := range series {
		if len(pts) == 0 {
			continue
		}
		sc.AddSeries(fmt.Sprintf("Cluster %d", k), pts)
	}
	return sc.Render(w)
}

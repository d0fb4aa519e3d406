package dashboard

import (
	"fmt"
	"image/color"
	"io"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/KaramelBytes/mallseg-cli/internal/pipeline"
)

// PNGSize is the edge length of the exported scatter.
const PNGSize = 6 * vg.Inch

// WriteScatterPNG plots Age against Spending Score, coloured by cluster, with
// the centroids mapped back to original units.
func WriteScatterPNG(w io.Writer, res *pipeline.Result) error {
	p := plot.New()
	p.Title.Text = "Customer clusters"
	p.X.Label.Text = "Age"
	p.Y.Label.Text = "Spending Score"
	p.Legend.Top = true

	groups := make([]plotter.XYs, res.Model.K)
	for i, r := range res.Table.Records {
		l := res.Labels[i]
		groups[l] = append(groups[l], plotter.XY{X: float64(r.Age), Y: float64(r.SpendingScore)})
	}
	for k, pts := range groups {
		if len(pts) == 0 {
			continue
		}
		s, err := plotter.NewScatter(pts)
		if err != nil {
			return fmt.Errorf("cluster %d scatter: %w", k, err)
		}
		s.GlyphStyle.Color = plotutil.Color(k)
		s.GlyphStyle.Shape = draw.CircleGlyph{}
		s.GlyphStyle.Radius = vg.Points(2.5)
		p.Add(s)
		p.Legend.Add(fmt.Sprintf("Cluster %d", k), s)
	}

	centers, err := res.Scaler.InverseTransform(mat.NewDense(res.Model.K, res.Model.Dim(), flatten(res.Model.Centroids)))
	if err != nil {
		return fmt.Errorf("centroids: %w", err)
	}
	cpts := make(plotter.XYs, res.Model.K)
	for k := range cpts {
		// feature columns are Age, Annual Income, Spending Score
		cpts[k] = plotter.XY{X: centers.At(k, 0), Y: centers.At(k, 2)}
	}
	c, err := plotter.NewScatter(cpts)
	if err != nil {
		return fmt.Errorf("centroid scatter: %w", err)
	}
	c.GlyphStyle.Color = color.RGBA{A: 255}
	c.GlyphStyle.Shape = draw.CrossGlyph{}
	c.GlyphStyle.Radius = vg.Points(5)
	p.Add(c)
	p.Legend.Add("Centroid", c)

	wt, err := p.WriterTo(PNGSize, PNGSize, "png")
	if err != nil {
		return err
	}
	_, err = wt.WriteTo(w)
	return err
}

func flatten(rows [][]float64) []float64 {
	var out []float64
	for _, r := range rows {
		out = append(out, r...)
	}
	return out
}

package dashboard

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/mallseg-cli/internal/cluster"
	"github.com/KaramelBytes/mallseg-cli/internal/dataset"
	"github.com/KaramelBytes/mallseg-cli/internal/dataset/datasettest"
	"github.com/KaramelBytes/mallseg-cli/internal/metrics"
	"github.com/KaramelBytes/mallseg-cli/internal/pipeline"
)

// spyRunner records which stages a view asked for.
type spyRunner struct {
	inner       *pipeline.Pipeline
	loads, runs int
}

func (s *spyRunner) Load(ctx context.Context) (*pipeline.Dataset, error) {
	s.loads++
	return s.inner.Load(ctx)
}

func (s *spyRunner) Run(ctx context.Context) (*pipeline.Result, error) {
	s.runs++
	return s.inner.Run(ctx)
}

func newRunner(t *testing.T, data string, m *metrics.Metrics) *spyRunner {
	t.Helper()
	cfg := cluster.DefaultConfig()
	cfg.Runs = 2
	return &spyRunner{inner: pipeline.New(pipeline.Options{
		DataPath:  data,
		CachePath: filepath.Join(t.TempDir(), "kmeans_model.gob"),
		Cluster:   cfg,
		Logger:    zerolog.Nop(),
		Metrics:   m,
	})}
}

func TestParseView(t *testing.T) {
	v, err := ParseView("Clusters")
	require.NoError(t, err)
	assert.Equal(t, ViewClusters, v)

	v, err = ParseView("view dataset")
	require.NoError(t, err)
	assert.Equal(t, ViewDataset, v)

	_, err = ParseView("nope")
	assert.ErrorContains(t, err, "description")
	assert.Len(t, Views(), 7)
}

func TestBuildRunsOnlyNeededStages(t *testing.T) {
	r := newRunner(t, datasettest.WriteSynthetic(t, 120, 3), nil)
	ctx := context.Background()

	for _, v := range []View{ViewDescription, ViewSource, ViewAuthor, ViewAlgorithm} {
		c, err := Build(ctx, r, v, "")
		require.NoError(t, err)
		assert.NotEmpty(t, c.Page.Heading, v)
	}
	assert.Zero(t, r.loads)
	assert.Zero(t, r.runs)

	c, err := Build(ctx, r, ViewVisualize, "")
	require.NoError(t, err)
	assert.Equal(t, dataset.ColGender, c.Column)
	assert.Equal(t, 1, r.loads)
	assert.Zero(t, r.runs)

	c, err = Build(ctx, r, ViewClusters, "")
	require.NoError(t, err)
	assert.Equal(t, 1, r.runs)
	total := 0
	for _, s := range c.Summaries {
		total += s.Size
	}
	assert.Equal(t, 120, total)
}

func TestStaticViewsWorkWithoutData(t *testing.T) {
	r := newRunner(t, filepath.Join(t.TempDir(), "missing.csv"), nil)
	c, err := Build(context.Background(), r, ViewAuthor, "")
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, RenderText(&buf, c))
	assert.Contains(t, buf.String(), "Ranto")

	_, err = Build(context.Background(), r, ViewDataset, "")
	assert.ErrorIs(t, err, dataset.ErrDataNotFound)
}

func TestRenderTextClusters(t *testing.T) {
	r := newRunner(t, datasettest.WriteSynthetic(t, 120, 3), nil)
	c, err := Build(context.Background(), r, ViewClusters, "")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, RenderText(&buf, c))
	out := buf.String()
	assert.Contains(t, out, "Model not found, training a new model")
	assert.Contains(t, out, "Cluster means")
	assert.Contains(t, out, "Spending Score")
	assert.Contains(t, out, "spends the most")

	c, err = Build(context.Background(), r, ViewClusters, "")
	require.NoError(t, err)
	buf.Reset()
	require.NoError(t, RenderText(&buf, c))
	assert.NotContains(t, buf.String(), "Model not found", "second render reuses the cache")
}

func TestRenderTextVisualize(t *testing.T) {
	r := newRunner(t, datasettest.WriteSynthetic(t, 50, 5), nil)
	c, err := Build(context.Background(), r, ViewVisualize, dataset.ColGender)
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, RenderText(&buf, c))
	assert.Contains(t, buf.String(), "Value counts of Gender")
	assert.Contains(t, buf.String(), strings.Repeat("#", barWidth), "largest bar spans the full width")

	_, err = Build(context.Background(), r, ViewVisualize, "Income")
	assert.Error(t, err)
}

func TestConclusionOrdersBySpending(t *testing.T) {
	r := newRunner(t, datasettest.WriteSynthetic(t, 120, 3), nil)
	c, err := Build(context.Background(), r, ViewClusters, "")
	require.NoError(t, err)
	lines := Conclusion(c.Summaries)
	require.Len(t, lines, len(c.Summaries)+2)
	assert.Nil(t, Conclusion(nil))
}

func TestWriteScatterPNG(t *testing.T) {
	r := newRunner(t, datasettest.WriteSynthetic(t, 80, 8), nil)
	res, err := r.Run(context.Background())
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, WriteScatterPNG(&buf, res))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG")))
}

func get(t *testing.T, h http.Handler, target string) (int, string) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	body, err := io.ReadAll(rec.Result().Body)
	require.NoError(t, err)
	return rec.Code, string(body)
}

func TestServerRoutes(t *testing.T) {
	m := metrics.New()
	r := newRunner(t, datasettest.WriteSynthetic(t, 90, 4), m)
	srv := NewServer(r, zerolog.Nop(), m)

	code, body := get(t, srv, "/")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, AppTitle)
	assert.Contains(t, body, "K-Means")

	code, body = get(t, srv, "/?view=dataset")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "<th>Spending Score</th>")

	code, body = get(t, srv, "/?view=visualize&column=Age")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "/chart/counts?column=Age")

	code, body = get(t, srv, "/chart/counts?column=Annual+Income")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "echarts")

	code, body = get(t, srv, "/?view=clusters")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "Conclusion")

	code, body = get(t, srv, "/chart/clusters")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "Cluster 0")

	code, _ = get(t, srv, "/?view=bogus")
	assert.Equal(t, http.StatusBadRequest, code)
	code, _ = get(t, srv, "/chart/counts?column=Income")
	assert.Equal(t, http.StatusBadRequest, code)
	code, _ = get(t, srv, "/nowhere")
	assert.Equal(t, http.StatusNotFound, code)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Renders.WithLabelValues("clusters", "html")))
	code, body = get(t, srv, "/metrics")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "mallseg_view_renders_total")
	assert.Contains(t, body, "mallseg_model_cache_lookups_total")
}

func TestServerMissingData(t *testing.T) {
	r := newRunner(t, filepath.Join(t.TempDir(), "missing.csv"), nil)
	srv := NewServer(r, zerolog.Nop(), nil)

	code, _ := get(t, srv, "/?view=source")
	assert.Equal(t, http.StatusOK, code)
	code, body := get(t, srv, "/?view=clusters")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Contains(t, body, "missing.csv")
	code, _ = get(t, srv, "/metrics")
	assert.Equal(t, http.StatusNotFound, code, "no metrics route without a registry")
}

func TestServerHeaderOnlyDataset(t *testing.T) {
	r := newRunner(t, datasettest.WriteCSV(t, datasettest.Header+"\n"), nil)
	srv := NewServer(r, zerolog.Nop(), nil)
	for _, target := range []string{"/?view=clusters", "/?view=dataset", "/chart/clusters", "/plot.png"} {
		code, body := get(t, srv, target)
		assert.Equal(t, http.StatusUnprocessableEntity, code, target)
		assert.Contains(t, body, "dataset has no rows", target)
	}
}

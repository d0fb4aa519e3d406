package dashboard

import (
	"bytes"
	"errors"
	"html/template"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"github.com/KaramelBytes/mallseg-cli/internal/analysis"
	"github.com/KaramelBytes/mallseg-cli/internal/cluster"
	"github.com/KaramelBytes/mallseg-cli/internal/dataset"
	"github.com/KaramelBytes/mallseg-cli/internal/metrics"
	"github.com/KaramelBytes/mallseg-cli/internal/preprocess"
)

var pageTmpl = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.AppTitle}}</title>
<style>
body{font-family:sans-serif;margin:0;display:flex}
nav{width:220px;background:#f4f4f4;padding:1em;min-height:100vh}
nav a{display:block;padding:.3em 0}
nav a.active{font-weight:bold}
main{padding:1em 2em;flex:1}
table{border-collapse:collapse}
td,th{border:1px solid #ccc;padding:.2em .6em;text-align:right}
.notice{background:#fff3cd;padding:.6em}
iframe{border:0;width:940px;height:560px}
</style>
</head>
<body>
<nav>
<h3>Menu</h3>
{{range .Menu}}<a href="/?view={{.Key}}"{{if .Active}} class="active"{{end}}>{{.Title}}</a>
{{end}}
</nav>
<main>
<h1>{{.AppTitle}}</h1>
<h2>{{.Title}}</h2>
{{with .Page}}{{if .Heading}}<h3>{{.Heading}}</h3>{{end}}
{{range .Paragraphs}}<p>{{.}}</p>
{{end}}{{if .Bullets}}<ul>{{range .Bullets}}<li>{{.}}</li>{{end}}</ul>{{end}}{{end}}
{{if .Notice}}<p class="notice">{{.Notice}}</p>{{end}}
{{if .Columns}}<form method="get" action="/">
<input type="hidden" name="view" value="visualize">
<label>Column <select name="column" onchange="this.form.submit()">
{{range .Columns}}<option{{if .Active}} selected{{end}}>{{.Title}}</option>{{end}}
</select></label>
</form>{{end}}
{{if .Chart}}<iframe src="{{.Chart}}"></iframe>{{end}}
{{if .Header}}<table>
<tr>{{range .Header}}<th>{{.}}</th>{{end}}</tr>
{{range .Rows}}<tr>{{range .}}<td>{{.}}</td>{{end}}</tr>
{{end}}</table>{{end}}
{{if .Conclusion}}<h3>Conclusion</h3>
{{range .Conclusion}}<p>{{.}}</p>
{{end}}<p><a href="/plot.png">Download scatter (PNG)</a></p>{{end}}
</main>
</body>
</html>
`))

type menuItem struct {
	Key    string
	Title  string
	Active bool
}

type pageData struct {
	AppTitle   string
	Title      string
	Menu       []menuItem
	Page       Page
	Notice     string
	Columns    []menuItem
	Chart      string
	Header     []string
	Rows       [][]string
	Conclusion []string
}

// Server serves the dashboard over HTTP. Every request runs the stages its
// view needs from scratch.
type Server struct {
	runner  Runner
	log     zerolog.Logger
	metrics *metrics.Metrics
	mux     *http.ServeMux
}

// NewServer wires the dashboard routes. m may be nil, in which case /metrics
// is not served.
func NewServer(r Runner, log zerolog.Logger, m *metrics.Metrics) *Server {
	s := &Server{runner: r, log: log, metrics: m, mux: http.NewServeMux()}
	s.mux.HandleFunc("/", s.handlePage)
	s.mux.HandleFunc("/chart/counts", s.handleCounts)
	s.mux.HandleFunc("/chart/clusters", s.handleClusters)
	s.mux.HandleFunc("/plot.png", s.handlePNG)
	if m != nil {
		s.mux.Handle("/metrics", m.Handler())
	}
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
	s.mux.ServeHTTP(rec, r)
	s.log.Debug().
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Int("status", rec.status).
		Dur("took", time.Since(start)).
		Msg("request")
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	q := r.URL.Query()
	v := ViewDescription
	if raw := q.Get("view"); raw != "" {
		var err error
		if v, err = ParseView(raw); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}
	c, err := Build(r.Context(), s.runner, v, q.Get("column"))
	if err != nil {
		s.fail(w, err)
		return
	}

	data := pageData{AppTitle: AppTitle, Title: v.Title(), Page: c.Page}
	for _, mv := range views {
		data.Menu = append(data.Menu, menuItem{Key: string(mv), Title: mv.Title(), Active: mv == v})
	}
	switch v {
	case ViewDataset:
		data.Header = datasetHeader()
		for _, rec := range c.Table.Records {
			data.Rows = append(data.Rows, datasetRow(rec))
		}
	case ViewVisualize:
		for _, col := range dataset.Columns {
			data.Columns = append(data.Columns, menuItem{Key: col, Title: col, Active: col == c.Column})
		}
		data.Chart = "/chart/counts?column=" + url.QueryEscape(c.Column)
	case ViewClusters:
		data.Notice = c.Result.Notice()
		data.Chart = "/chart/clusters"
		data.Header = clusterHeader()
		for _, sum := range c.Summaries {
			data.Rows = append(data.Rows, clusterRow(sum))
		}
		data.Conclusion = Conclusion(c.Summaries)
	}

	var buf bytes.Buffer
	if err := pageTmpl.Execute(&buf, data); err != nil {
		s.fail(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
	s.metrics.Render(string(v), "html")
}

func (s *Server) handleCounts(w http.ResponseWriter, r *http.Request) {
	c, err := Build(r.Context(), s.runner, ViewVisualize, r.URL.Query().Get("column"))
	if err != nil {
		s.fail(w, err)
		return
	}
	var buf bytes.Buffer
	if err := CountsChart(&buf, c.Column, c.Counts); err != nil {
		s.fail(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
	s.metrics.Render(string(ViewVisualize), "chart")
}

func (s *Server) handleClusters(w http.ResponseWriter, r *http.Request) {
	res, err := s.runner.Run(r.Context())
	if err != nil {
		s.fail(w, err)
		return
	}
	var buf bytes.Buffer
	if err := ClustersChart(&buf, res); err != nil {
		s.fail(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
	s.metrics.Render(string(ViewClusters), "chart")
}

func (s *Server) handlePNG(w http.ResponseWriter, r *http.Request) {
	res, err := s.runner.Run(r.Context())
	if err != nil {
		s.fail(w, err)
		return
	}
	var buf bytes.Buffer
	if err := WriteScatterPNG(&buf, res); err != nil {
		s.fail(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	_, _ = buf.WriteTo(w)
	s.metrics.Render(string(ViewClusters), "png")
}

func (s *Server) fail(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, dataset.ErrDataNotFound):
		status = http.StatusNotFound
	case errors.Is(err, dataset.ErrSchema), errors.Is(err, dataset.ErrEmpty),
		errors.Is(err, preprocess.ErrDegenerateColumn), errors.Is(err, cluster.ErrTooFewSamples):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, analysis.ErrUnknownColumn):
		status = http.StatusBadRequest
	}
	s.log.Error().Err(err).Int("status", status).Msg("render failed")
	http.Error(w, err.Error(), status)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

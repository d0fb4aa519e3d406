// Package pipeline runs load → scale → load-or-fit → predict as one explicit
// value-threaded pass. Nothing is kept between calls.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/mat"

	"github.com/KaramelBytes/mallseg-cli/internal/cluster"
	"github.com/KaramelBytes/mallseg-cli/internal/dataset"
	"github.com/KaramelBytes/mallseg-cli/internal/metrics"
	"github.com/KaramelBytes/mallseg-cli/internal/modelcache"
	"github.com/KaramelBytes/mallseg-cli/internal/preprocess"
)

// Options configures a Pipeline.
type Options struct {
	DataPath  string
	CachePath string
	Cluster   cluster.Config
	Logger    zerolog.Logger
	// Metrics may be nil.
	Metrics *metrics.Metrics
	// Fitter overrides the k-means engine built from Cluster.
	Fitter modelcache.Fitter
}

// Pipeline executes the segmentation steps.
type Pipeline struct {
	opts  Options
	store *modelcache.Store
}

// Dataset is the output of the loading stage.
type Dataset struct {
	Table    *dataset.Table
	Features *mat.Dense
}

// Result is the output of a full run.
type Result struct {
	Dataset
	Scaler *preprocess.StandardScaler
	Scaled *mat.Dense
	Model  *cluster.Model
	// Labels holds one cluster label per record, in record order.
	Labels []int
	Cache  *modelcache.Result
}

// CacheHit reports whether the model came from disk.
func (r *Result) CacheHit() bool {
	return r != nil && r.Cache != nil && r.Cache.Outcome == modelcache.OutcomeHit
}

// Notice returns the user-facing cache message, if any.
func (r *Result) Notice() string {
	if r == nil || r.Cache == nil {
		return ""
	}
	return r.Cache.Notice
}

// New builds a pipeline from opts.
func New(opts Options) *Pipeline {
	if opts.Fitter == nil {
		opts.Fitter = cluster.New(opts.Cluster).WithLogger(opts.Logger)
	}
	store := modelcache.NewStore(opts.CachePath)
	store.Log = opts.Logger
	return &Pipeline{opts: opts, store: store}
}

// Load reads the dataset and derives its feature matrix.
func (p *Pipeline) Load(ctx context.Context) (*Dataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start := time.Now()
	t, err := dataset.Load(p.opts.DataPath)
	if err != nil {
		p.opts.Logger.Error().Err(err).Str("path", p.opts.DataPath).Msg("could not load dataset")
		return nil, err
	}
	if t.Len() == 0 {
		err := fmt.Errorf("%w: %s", dataset.ErrEmpty, p.opts.DataPath)
		p.opts.Logger.Error().Err(err).Msg("could not load dataset")
		return nil, err
	}
	p.opts.Metrics.ObserveStage("load", start)
	p.opts.Logger.Debug().
		Str("path", p.opts.DataPath).
		Int("rows", t.Len()).
		Msg("dataset loaded")
	return &Dataset{Table: t, Features: dataset.Features(t)}, nil
}

// Run executes every stage and labels each record.
func (p *Pipeline) Run(ctx context.Context) (res *Result, err error) {
	defer func() { p.opts.Metrics.Run(err) }()

	ds, err := p.Load(ctx)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	scaler := preprocess.NewStandardScaler(dataset.FeatureNames...)
	scaled, err := scaler.FitTransform(ds.Features)
	if err != nil {
		p.opts.Logger.Error().Err(err).Msg("could not standardize features")
		return nil, fmt.Errorf("scale features: %w", err)
	}
	p.opts.Metrics.ObserveStage("scale", start)

	start = time.Now()
	want := modelcache.NewMeta(p.opts.Cluster.K, p.opts.Cluster.Seed, dataset.FeatureNames, ds.Features)
	cached, err := p.store.LoadOrFit(ctx, want, scaled, p.opts.Fitter)
	if err != nil {
		return nil, fmt.Errorf("load or fit model: %w", err)
	}
	p.opts.Metrics.ObserveStage("model", start)
	p.opts.Metrics.Lookup(string(cached.Outcome))

	start = time.Now()
	labels, err := cluster.Predict(scaled, cached.Model)
	if err != nil {
		return nil, fmt.Errorf("predict: %w", err)
	}
	p.opts.Metrics.ObserveStage("predict", start)

	return &Result{
		Dataset: *ds,
		Scaler:  scaler,
		Scaled:  scaled,
		Model:   cached.Model,
		Labels:  labels,
		Cache:   cached,
	}, nil
}

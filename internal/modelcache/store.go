package modelcache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/mat"

	"github.com/KaramelBytes/mallseg-cli/internal/cluster"
	"github.com/KaramelBytes/mallseg-cli/internal/utils"
)

// Outcome says how LoadOrFit obtained its model.
type Outcome string

const (
	OutcomeHit   Outcome = "hit"
	OutcomeMiss  Outcome = "miss"
	OutcomeStale Outcome = "stale"
)

// NoticeTrained is shown to the user when a new model had to be fitted.
const NoticeTrained = "Model not found, training a new model... New model trained and saved."

// Fitter fits a model on standardized data.
type Fitter interface {
	Fit(X mat.Matrix) (*cluster.Model, error)
}

// Result is the model served by LoadOrFit.
type Result struct {
	Model   *cluster.Model
	Meta    Meta
	Outcome Outcome
	// Reason explains a stale outcome.
	Reason string
	// Notice is a user-facing message for miss and stale outcomes.
	Notice string
	// Persisted is false when another writer published first.
	Persisted bool
}

// Store is a single-file model cache.
type Store struct {
	Path string
	Log  zerolog.Logger
}

// NewStore returns a cache at path that logs nowhere.
func NewStore(path string) *Store {
	return &Store{Path: path, Log: zerolog.Nop()}
}

// LoadOrFit returns the cached model when it matches want, and otherwise fits
// one on X with f and persists it.
func (s *Store) LoadOrFit(ctx context.Context, want Meta, X mat.Matrix, f Fitter) (*Result, error) {
	a, err := Load(s.Path)
	switch {
	case err == nil:
		ok, reason := Compatible(a.Meta, want)
		if ok {
			s.Log.Debug().
				Str("path", s.Path).
				Str("model_id", a.Model.ID).
				Msg("model cache hit")
			return &Result{Model: &a.Model, Meta: a.Meta, Outcome: OutcomeHit, Persisted: true}, nil
		}
		s.Log.Warn().
			Str("path", s.Path).
			Str("reason", reason).
			Msg("cached model is stale, refitting")
		return s.refit(ctx, want, X, f, OutcomeStale, reason)
	case errors.Is(err, ErrCacheMiss):
		s.Log.Info().Str("path", s.Path).Msg("model not found, training a new model")
		return s.refit(ctx, want, X, f, OutcomeMiss, "")
	case errors.Is(err, ErrCorrupt):
		s.Log.Warn().Err(err).Str("path", s.Path).Msg("cached model unreadable, refitting")
		return s.refit(ctx, want, X, f, OutcomeStale, "artifact could not be decoded")
	default:
		return nil, err
	}
}

func (s *Store) refit(ctx context.Context, want Meta, X mat.Matrix, f Fitter, outcome Outcome, reason string) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if f == nil {
		return nil, fmt.Errorf("no fitter configured: %w", cluster.ErrModelNotTrained)
	}
	m, err := f.Fit(X)
	if err != nil {
		return nil, fmt.Errorf("fit model: %w", err)
	}
	if outcome == OutcomeStale {
		if err := Remove(s.Path); err != nil {
			return nil, err
		}
	}
	meta := want
	meta.CreatedAt = time.Now().UTC()
	res := &Result{Model: m, Meta: meta, Outcome: outcome, Reason: reason, Notice: NoticeTrained}

	err = Save(s.Path, &Artifact{Meta: meta, Model: *m})
	switch {
	case err == nil:
		res.Persisted = true
		s.Log.Info().
			Str("path", s.Path).
			Str("model_id", m.ID).
			Float64("inertia", m.Inertia).
			Int("iterations", m.Iterations).
			Msg("new model trained and saved")
	case errors.Is(err, utils.ErrExists):
		s.Log.Warn().
			Str("path", s.Path).
			Str("model_id", m.ID).
			Msg("model cache written concurrently, keeping the in-memory model")
	default:
		return nil, fmt.Errorf("persist model: %w", err)
	}
	return res, nil
}

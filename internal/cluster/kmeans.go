// Package cluster partitions standardized feature vectors with k-means.
package cluster

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

var (
	// ErrEmptyInput is returned when fitting or predicting on no rows.
	ErrEmptyInput = errors.New("empty input")
	// ErrTooFewSamples is returned when there are fewer rows than clusters.
	ErrTooFewSamples = errors.New("fewer samples than clusters")
)

// Config controls a k-means fit.
type Config struct {
	// K is the number of clusters.
	K int `mapstructure:"clusters" yaml:"clusters"`
	// MaxIter bounds the Lloyd iterations of a single run.
	MaxIter int `mapstructure:"max_iter" yaml:"max_iter"`
	// Tol stops a run once the squared centroid shift drops below
	// Tol times the mean feature variance.
	Tol float64 `mapstructure:"tolerance" yaml:"tolerance"`
	// Seed makes seeding and restarts reproducible.
	Seed int64 `mapstructure:"seed" yaml:"seed"`
	// Runs is the number of seeded restarts; the lowest inertia wins.
	Runs int `mapstructure:"runs" yaml:"runs"`
}

// DefaultConfig returns six clusters with a fixed seed.
func DefaultConfig() Config {
	return Config{K: 6, MaxIter: 300, Tol: 1e-4, Seed: 123, Runs: 10}
}

// KMeans fits Models. It holds no state between fits.
type KMeans struct {
	cfg Config
	log zerolog.Logger
}

// New returns an engine for cfg; zero MaxIter and Runs fall back to defaults.
func New(cfg Config) *KMeans {
	def := DefaultConfig()
	if cfg.MaxIter <= 0 {
		cfg.MaxIter = def.MaxIter
	}
	if cfg.Runs <= 0 {
		cfg.Runs = 1
	}
	if cfg.Tol < 0 {
		cfg.Tol = 0
	}
	return &KMeans{cfg: cfg, log: zerolog.Nop()}
}

// WithLogger sets the logger used for per-run debug events.
func (km *KMeans) WithLogger(l zerolog.Logger) *KMeans {
	km.log = l
	return km
}

// Config returns the effective configuration.
func (km *KMeans) Config() Config { return km.cfg }

// Fit partitions the rows of X into K clusters.
func (km *KMeans) Fit(X mat.Matrix) (*Model, error) {
	if km.cfg.K < 1 {
		return nil, fmt.Errorf("invalid cluster count %d", km.cfg.K)
	}
	if isEmpty(X) {
		return nil, ErrEmptyInput
	}
	n, _ := X.Dims()
	if n < km.cfg.K {
		return nil, fmt.Errorf("%w: %d rows, %d clusters", ErrTooFewSamples, n, km.cfg.K)
	}
	points := make([][]float64, n)
	for i := range points {
		points[i] = mat.Row(nil, i, X)
	}
	tol := km.cfg.Tol * meanVariance(X)

	rng := rand.New(rand.NewSource(km.cfg.Seed))
	var best *run
	for r := 0; r < km.cfg.Runs; r++ {
		centers := seedPlusPlus(points, km.cfg.K, rng)
		res := lloyd(points, centers, km.cfg.MaxIter, tol)
		km.log.Debug().
			Int("run", r).
			Int("iterations", res.iterations).
			Float64("inertia", res.inertia).
			Msg("k-means run finished")
		if best == nil || res.inertia < best.inertia {
			best = res
		}
	}
	return &Model{
		ID:         uuid.NewString(),
		K:          km.cfg.K,
		Centroids:  best.centers,
		Inertia:    best.inertia,
		Iterations: best.iterations,
		Seed:       km.cfg.Seed,
		FittedAt:   time.Now().UTC(),
	}, nil
}

// isEmpty reports a matrix with no cells, including a nil *mat.Dense.
func isEmpty(X mat.Matrix) bool {
	if X == nil {
		return true
	}
	if d, ok := X.(*mat.Dense); ok && d == nil {
		return true
	}
	r, c := X.Dims()
	return r == 0 || c == 0
}

type run struct {
	centers    [][]float64
	labels     []int
	inertia    float64
	iterations int
}

// seedPlusPlus picks k initial centres. Each centre after the first is the best
// of 2+ln(k) candidates drawn with probability proportional to the squared
// distance to the closest chosen centre, judged by the resulting potential.
func seedPlusPlus(points [][]float64, k int, rng *rand.Rand) [][]float64 {
	n := len(points)
	centers := make([][]float64, 0, k)
	first := rng.Intn(n)
	centers = append(centers, clone(points[first]))

	closest := make([]float64, n)
	pot := 0.0
	for i, p := range points {
		closest[i] = sqDist(p, centers[0])
		pot += closest[i]
	}
	trials := 2 + int(math.Log(float64(k)))
	cand := make([]float64, n)
	for len(centers) < k {
		bestIdx, bestPot := -1, math.Inf(1)
		var bestDist []float64
		for t := 0; t < trials; t++ {
			idx := sampleIndex(closest, pot, rng)
			candPot := 0.0
			for i, p := range points {
				cand[i] = math.Min(closest[i], sqDist(p, points[idx]))
				candPot += cand[i]
			}
			if candPot < bestPot {
				bestIdx, bestPot = idx, candPot
				bestDist = append(bestDist[:0], cand...)
			}
		}
		centers = append(centers, clone(points[bestIdx]))
		copy(closest, bestDist)
		pot = bestPot
	}
	return centers
}

// sampleIndex draws i with probability weights[i]/total; uniform when total is 0.
func sampleIndex(weights []float64, total float64, rng *rand.Rand) int {
	if total <= 0 {
		return rng.Intn(len(weights))
	}
	r := rng.Float64() * total
	acc := 0.0
	for i, w := range weights {
		acc += w
		if acc > r {
			return i
		}
	}
	for i := len(weights) - 1; i >= 0; i-- {
		if weights[i] > 0 {
			return i
		}
	}
	return len(weights) - 1
}

func lloyd(points, centers [][]float64, maxIter int, tol float64) *run {
	n, k, d := len(points), len(centers), len(points[0])
	labels := make([]int, n)
	for i := range labels {
		labels[i] = -1
	}
	sums := make([][]float64, k)
	for c := range sums {
		sums[c] = make([]float64, d)
	}
	counts := make([]int, k)
	dist := make([]float64, n)

	iterations := 0
	for it := 1; it <= maxIter; it++ {
		iterations = it
		changed := 0
		for i, p := range points {
			l, dd := nearest(p, centers)
			if l != labels[i] {
				changed++
				labels[i] = l
			}
			dist[i] = dd
		}
		if changed == 0 {
			break
		}
		relocateEmpty(points, labels, dist, k)

		for c := range sums {
			floats.Scale(0, sums[c])
			counts[c] = 0
		}
		for i, p := range points {
			floats.Add(sums[labels[i]], p)
			counts[labels[i]]++
		}
		shift := 0.0
		for c := range centers {
			next := clone(sums[c])
			floats.Scale(1/float64(counts[c]), next)
			shift += sqDist(centers[c], next)
			centers[c] = next
		}
		if shift <= tol {
			break
		}
	}

	inertia := 0.0
	for i, p := range points {
		l, dd := nearest(p, centers)
		labels[i] = l
		inertia += dd
	}
	return &run{centers: centers, labels: labels, inertia: inertia, iterations: iterations}
}

// relocateEmpty moves the point farthest from its centre into each empty
// cluster, only taking points from clusters that keep at least one member.
func relocateEmpty(points [][]float64, labels []int, dist []float64, k int) {
	sizes := Sizes(labels, k)
	for c := 0; c < k; c++ {
		if sizes[c] > 0 {
			continue
		}
		far, farD := -1, -1.0
		for i := range points {
			if sizes[labels[i]] > 1 && dist[i] > farD {
				far, farD = i, dist[i]
			}
		}
		if far < 0 {
			return
		}
		sizes[labels[far]]--
		labels[far] = c
		sizes[c] = 1
		dist[far] = 0
	}
}

func meanVariance(X mat.Matrix) float64 {
	n, d := X.Dims()
	col := make([]float64, n)
	total := 0.0
	for j := 0; j < d; j++ {
		mat.Col(col, j, X)
		_, v := stat.PopMeanVariance(col, nil)
		total += v
	}
	return total / float64(d)
}

func clone(v []float64) []float64 {
	return append([]float64(nil), v...)
}

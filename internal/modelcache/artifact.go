// Package modelcache persists fitted clustering models as tagged artifacts and
// reuses them while they still match the data they were fitted on.
package modelcache

import (
	"bytes"
	"crypto/sha1"
	"encoding/binary"
	"encoding/gob"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"strings"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/KaramelBytes/mallseg-cli/internal/cluster"
	"github.com/KaramelBytes/mallseg-cli/internal/utils"
)

// FormatVersion is bumped whenever the artifact layout changes.
const FormatVersion = 2

var (
	// ErrCacheMiss means no artifact exists at the path.
	ErrCacheMiss = errors.New("model cache miss")
	// ErrCorrupt means the artifact exists but cannot be decoded.
	ErrCorrupt = errors.New("model cache corrupt")
)

// Meta tags an artifact with what it was fitted on.
type Meta struct {
	FormatVersion int       `json:"format_version"`
	K             int       `json:"k"`
	Features      []string  `json:"features"`
	SchemaHash    string    `json:"schema_hash"`
	DataHash      string    `json:"data_hash"`
	Rows          int       `json:"rows"`
	Seed          int64     `json:"seed"`
	CreatedAt     time.Time `json:"created_at"`
}

// Artifact is the on-disk form of a fitted model.
type Artifact struct {
	Meta  Meta
	Model cluster.Model
}

// NewMeta describes a fit of k clusters over X with the given feature names.
func NewMeta(k int, seed int64, features []string, X mat.Matrix) Meta {
	rows := 0
	if !isNil(X) {
		rows, _ = X.Dims()
	}
	return Meta{
		FormatVersion: FormatVersion,
		K:             k,
		Features:      append([]string(nil), features...),
		SchemaHash:    SchemaHash(k, features),
		DataHash:      DataHash(X),
		Rows:          rows,
		Seed:          seed,
	}
}

// SchemaHash fingerprints the format version, cluster count and feature set.
func SchemaHash(k int, features []string) string {
	h := sha1.New()
	fmt.Fprintf(h, "v%d|k=%d|%s", FormatVersion, k, strings.Join(features, "\x1f"))
	return hex.EncodeToString(h.Sum(nil))
}

// DataHash fingerprints the values of X in row-major order.
func DataHash(X mat.Matrix) string {
	h := sha1.New()
	if isNil(X) {
		return hex.EncodeToString(h.Sum(nil))
	}
	r, c := X.Dims()
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(r))
	h.Write(buf[:])
	binary.LittleEndian.PutUint64(buf[:], uint64(c))
	h.Write(buf[:])
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			binary.LittleEndian.PutUint64(buf[:], math.Float64bits(X.At(i, j)))
			h.Write(buf[:])
		}
	}
	return hex.EncodeToString(h.Sum(nil))
}

func isNil(X mat.Matrix) bool {
	if X == nil {
		return true
	}
	d, ok := X.(*mat.Dense)
	return ok && d == nil
}

// Compatible reports whether an artifact tagged prev can serve a request for
// cur, and why not when it cannot.
func Compatible(prev, cur Meta) (bool, string) {
	switch {
	case prev.FormatVersion != cur.FormatVersion:
		return false, fmt.Sprintf("format version %d, want %d", prev.FormatVersion, cur.FormatVersion)
	case prev.K != cur.K:
		return false, fmt.Sprintf("fitted with k=%d, want %d", prev.K, cur.K)
	case strings.Join(prev.Features, ",") != strings.Join(cur.Features, ","):
		return false, fmt.Sprintf("features %v, want %v", prev.Features, cur.Features)
	case prev.SchemaHash != cur.SchemaHash:
		return false, "schema hash changed"
	case prev.Seed != cur.Seed:
		return false, fmt.Sprintf("fitted with seed %d, want %d", prev.Seed, cur.Seed)
	case prev.DataHash != cur.DataHash:
		return false, "dataset changed since the model was fitted"
	}
	return true, ""
}

// Load decodes the artifact at path.
func Load(path string) (*Artifact, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("read model cache: %w", err)
	}
	var a Artifact
	if err := gob.NewDecoder(bytes.NewReader(b)).Decode(&a); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if !a.Model.Trained() {
		return nil, fmt.Errorf("%w: artifact holds no centroids", ErrCorrupt)
	}
	return &a, nil
}

// Encode serializes a.
func Encode(a *Artifact) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(a); err != nil {
		return nil, fmt.Errorf("encode model: %w", err)
	}
	return buf.Bytes(), nil
}

// Save publishes a at path unless a file is already there, in which case the
// error wraps utils.ErrExists.
func Save(path string, a *Artifact) error {
	if a == nil || !a.Model.Trained() {
		return fmt.Errorf("save model: %w", cluster.ErrModelNotTrained)
	}
	b, err := Encode(a)
	if err != nil {
		return err
	}
	if err := utils.EnsureDir(path); err != nil {
		return fmt.Errorf("ensure dir: %w", err)
	}
	return utils.PublishFile(path, b)
}

// Inspect returns the metadata of the artifact at path.
func Inspect(path string) (Meta, error) {
	a, err := Load(path)
	if err != nil {
		return Meta{}, err
	}
	return a.Meta, nil
}

// Remove deletes the artifact at path; a missing file is not an error.
func Remove(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove model cache: %w", err)
	}
	return nil
}

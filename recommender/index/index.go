// Package index implements the embedding index: it encodes text through a
// sentence-embedding model, holds the corpus embedding matrix in memory and
// answers cosine-similarity queries over it. The index is built once (or
// restored from cache) and is read-only afterwards, so concurrent queries
// need no locking beyond the build/load transition.
package index

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/rs/zerolog"

	"github.com/revo-off/Vibeyf-ai/recommender/corpus"
)

// ErrNotReady is returned by queries issued before a successful Build or
// LoadCache. Callers must not treat it as an empty result.
var ErrNotReady = errors.New("embedding index not ready: call Build or LoadCache first")

// Encoder turns texts into fixed-length embedding vectors.
type Encoder interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float64, error)
}

// Index holds the corpus and its embedding matrix, index-aligned.
type Index struct {
	encoder Encoder
	cache   *Cache
	logger  zerolog.Logger

	mu     sync.RWMutex
	items  []corpus.Item
	matrix [][]float64
	ready  bool
}

// New creates an Index. cache may be nil, in which case Build skips
// persistence and LoadCache always misses.
func New(encoder Encoder, cache *Cache, logger zerolog.Logger) *Index {
	return &Index{
		encoder: encoder,
		cache:   cache,
		logger:  logger.With().Str("component", "index").Logger(),
	}
}

// Build encodes every item's semantic text in one batch, stores the matrix
// index-aligned with the corpus and persists the snapshot. A cache write
// failure is logged but does not fail the build: the index is usable either
// way and the next restart simply rebuilds.
func (ix *Index) Build(ctx context.Context, items []corpus.Item) error {
	if len(items) == 0 {
		return fmt.Errorf("build index: empty corpus")
	}

	texts := make([]string, len(items))
	for i, it := range items {
		texts[i] = it.SemanticText
	}

	matrix, err := ix.encoder.EmbedTexts(ctx, texts)
	if err != nil {
		return fmt.Errorf("encode corpus: %w", err)
	}
	if len(matrix) != len(items) {
		return fmt.Errorf("encode corpus: got %d vectors for %d items", len(matrix), len(items))
	}

	ix.mu.Lock()
	ix.items = items
	ix.matrix = matrix
	ix.ready = true
	ix.mu.Unlock()

	if ix.cache != nil {
		if err := ix.cache.Save(items, matrix); err != nil {
			ix.logger.Warn().Err(err).Msg("failed to persist embedding snapshot")
		}
	}

	ix.logger.Info().Int("items", len(items)).Msg("index built")
	return nil
}

// LoadCache attempts to restore the snapshot from the cache. It reports
// whether it succeeded and never returns an error: on any failure the index
// stays not-ready and the caller rebuilds from the corpus provider.
func (ix *Index) LoadCache(ctx context.Context) bool {
	if ix.cache == nil {
		return false
	}

	items, matrix, ok := ix.cache.Load()
	if !ok {
		return false
	}

	ix.mu.Lock()
	ix.items = items
	ix.matrix = matrix
	ix.ready = true
	ix.mu.Unlock()

	ix.logger.Info().Int("items", len(items)).Msg("index restored from cache")
	return true
}

// Ready reports whether the index can answer queries.
func (ix *Index) Ready() bool {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.ready
}

// Items returns the corpus in insertion order. The returned slice is shared
// and must not be mutated.
func (ix *Index) Items() ([]corpus.Item, error) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	if !ix.ready {
		return nil, ErrNotReady
	}
	return ix.items, nil
}

// Query encodes the query text once and returns the cosine similarity of the
// query against every corpus row, index-aligned with Items.
func (ix *Index) Query(ctx context.Context, text string) ([]float64, error) {
	ix.mu.RLock()
	ready := ix.ready
	matrix := ix.matrix
	ix.mu.RUnlock()

	if !ready {
		return nil, ErrNotReady
	}

	vectors, err := ix.encoder.EmbedTexts(ctx, []string{text})
	if err != nil {
		return nil, fmt.Errorf("encode query: %w", err)
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("encode query: expected 1 vector, got %d", len(vectors))
	}

	return Similarities(vectors[0], matrix), nil
}

// Similarities computes the cosine similarity between query and every row of
// matrix. Rows with mismatched dimensions or zero norm score 0.
func Similarities(query []float64, matrix [][]float64) []float64 {
	scores := make([]float64, len(matrix))
	qNorm := norm(query)
	if qNorm == 0 {
		return scores
	}
	for i, row := range matrix {
		scores[i] = cosine(query, qNorm, row)
	}
	return scores
}

func cosine(query []float64, qNorm float64, row []float64) float64 {
	if len(row) != len(query) {
		return 0
	}
	var dot, rSum float64
	for j, v := range row {
		dot += query[j] * v
		rSum += v * v
	}
	if rSum == 0 {
		return 0
	}
	return dot / (qNorm * math.Sqrt(rSum))
}

func norm(v []float64) float64 {
	var sum float64
	for _, x := range v {
		sum += x * x
	}
	return math.Sqrt(sum)
}

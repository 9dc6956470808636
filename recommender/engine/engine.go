// Package engine implements the core ranking pipeline: semantic similarity
// ranking over the embedding index, multi-factor scoring, and the final
// deduplicated recommendation bundle.
package engine

import (
	"context"
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"github.com/revo-off/Vibeyf-ai/recommender/corpus"
	"github.com/revo-off/Vibeyf-ai/recommender/index"
)

// Ranked is a corpus item annotated with its semantic similarity to a query.
type Ranked struct {
	Item       corpus.Item `json:"item"`
	Similarity float64     `json:"similarity"`
}

// Ranker answers similarity queries against the embedding index.
type Ranker struct {
	index  *index.Index
	logger zerolog.Logger
}

// NewRanker creates a Ranker over a built (or cache-restored) index.
func NewRanker(ix *index.Index, logger zerolog.Logger) *Ranker {
	return &Ranker{
		index:  ix,
		logger: logger.With().Str("component", "ranker").Logger(),
	}
}

// RankAll returns every corpus item with its similarity to the query, sorted
// descending. Ties keep the original corpus order. The whole corpus is
// scored with one query encode and one similarity pass; this is the primary
// feed into the multi-factor scorer.
func (r *Ranker) RankAll(ctx context.Context, query string) ([]Ranked, error) {
	items, err := r.index.Items()
	if err != nil {
		return nil, err
	}
	scores, err := r.index.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("rank query: %w", err)
	}

	ranked := make([]Ranked, len(items))
	for i, it := range items {
		ranked[i] = Ranked{Item: it, Similarity: scores[i]}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Similarity > ranked[j].Similarity
	})

	r.logger.Debug().Int("items", len(ranked)).Msg("full corpus ranked")
	return ranked, nil
}

// RankByKind returns the top kPerKind items of each requested kind, each
// list independently truncated and sorted by similarity descending. A kind
// with no matching items yields no entry rather than an error.
func (r *Ranker) RankByKind(ctx context.Context, query string, kinds []corpus.Kind, kPerKind int) (map[corpus.Kind][]Ranked, error) {
	if kPerKind <= 0 {
		kPerKind = 3
	}

	ranked, err := r.RankAll(ctx, query)
	if err != nil {
		return nil, err
	}

	result := make(map[corpus.Kind][]Ranked, len(kinds))
	for _, kind := range kinds {
		for _, rk := range ranked {
			if rk.Item.Kind != kind {
				continue
			}
			result[kind] = append(result[kind], rk)
			if len(result[kind]) >= kPerKind {
				break
			}
		}
	}

	return result, nil
}

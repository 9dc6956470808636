package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/revo-off/Vibeyf-ai/recommender/corpus"
	"github.com/revo-off/Vibeyf-ai/recommender/index"
)

// vectorEncoder maps each known text to a fixed embedding.
type vectorEncoder struct {
	vectors map[string][]float64
}

func (e *vectorEncoder) EmbedTexts(_ context.Context, texts []string) ([][]float64, error) {
	out := make([][]float64, len(texts))
	for i, text := range texts {
		vec, ok := e.vectors[text]
		if !ok {
			return nil, errors.New("unknown text: " + text)
		}
		out[i] = vec
	}
	return out, nil
}

func builtIndex(t *testing.T, encoder index.Encoder, items []corpus.Item) *index.Index {
	t.Helper()
	ix := index.New(encoder, nil, zerolog.Nop())
	require.NoError(t, ix.Build(context.Background(), items))
	return ix
}

func TestRankAll(t *testing.T) {
	encoder := &vectorEncoder{vectors: map[string][]float64{
		"rock song":  {1, 0},
		"calm piano": {0, 1},
		"mixed":      {1, 1},
		"query":      {1, 0.1},
	}}
	items := []corpus.Item{
		{Kind: corpus.KindSong, ID: "s1", SemanticText: "rock song"},
		{Kind: corpus.KindSong, ID: "s2", SemanticText: "calm piano"},
		{Kind: corpus.KindPlaylist, ID: "p1", SemanticText: "mixed"},
	}
	ranker := NewRanker(builtIndex(t, encoder, items), zerolog.Nop())

	ranked, err := ranker.RankAll(context.Background(), "query")
	require.NoError(t, err)
	require.Len(t, ranked, 3)

	assert.Equal(t, "s1", ranked[0].Item.ID)
	assert.Equal(t, "p1", ranked[1].Item.ID)
	assert.Equal(t, "s2", ranked[2].Item.ID)
	for i := 1; i < len(ranked); i++ {
		assert.GreaterOrEqual(t, ranked[i-1].Similarity, ranked[i].Similarity)
	}
}

func TestRankAllNotReady(t *testing.T) {
	ix := index.New(&vectorEncoder{}, nil, zerolog.Nop())
	ranker := NewRanker(ix, zerolog.Nop())

	_, err := ranker.RankAll(context.Background(), "query")
	assert.ErrorIs(t, err, index.ErrNotReady)
}

func TestRankByKind(t *testing.T) {
	encoder := &vectorEncoder{vectors: map[string][]float64{
		"a": {1, 0}, "b": {0.9, 0.1}, "c": {0.8, 0.2}, "d": {0.7, 0.3},
		"g": {0.5, 0.5}, "query": {1, 0},
	}}
	items := []corpus.Item{
		{Kind: corpus.KindSong, ID: "s1", SemanticText: "a"},
		{Kind: corpus.KindSong, ID: "s2", SemanticText: "b"},
		{Kind: corpus.KindSong, ID: "s3", SemanticText: "c"},
		{Kind: corpus.KindSong, ID: "s4", SemanticText: "d"},
		{Kind: corpus.KindGenre, ID: "g1", SemanticText: "g"},
	}
	ranker := NewRanker(builtIndex(t, encoder, items), zerolog.Nop())

	byKind, err := ranker.RankByKind(context.Background(), "query", []corpus.Kind{corpus.KindSong, corpus.KindGenre, corpus.KindMood}, 3)
	require.NoError(t, err)

	require.Len(t, byKind[corpus.KindSong], 3, "per-kind truncation")
	assert.Equal(t, "s1", byKind[corpus.KindSong][0].Item.ID)
	assert.Len(t, byKind[corpus.KindGenre], 1)
	_, hasMoods := byKind[corpus.KindMood]
	assert.False(t, hasMoods, "kind with no items is absent")
}

package genai

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/revo-off/Vibeyf-ai/recommender/corpus"
	"github.com/revo-off/Vibeyf-ai/recommender/engine"
)

func chatServer(t *testing.T, reply func(req chatRequest) (string, int)) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)
		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Messages, 2)

		content, status := reply(req)
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(chatResponse{
			Message: chatMessage{Role: "assistant", Content: content},
		})
	}))
}

func testGenClient(url string) *Client {
	return NewClient(Config{
		BaseURL:               url,
		Model:                 "test-model",
		MinWordsForEnrichment: 5,
		Timeout:               5 * time.Second,
	}, zerolog.Nop())
}

func TestEnrich(t *testing.T) {
	server := chatServer(t, func(req chatRequest) (string, int) {
		assert.Contains(t, req.Messages[1].Content, "sad songs")
		return "Slow, sorrowful ballads with sparse instrumentation.", http.StatusOK
	})
	defer server.Close()

	client := testGenClient(server.URL)

	t.Run("short text is expanded", func(t *testing.T) {
		enriched, err := client.Enrich(context.Background(), "sad songs")
		require.NoError(t, err)
		assert.Equal(t, "Slow, sorrowful ballads with sparse instrumentation.", enriched)
	})

	t.Run("long text passes through untouched", func(t *testing.T) {
		text := "something melancholic but still hopeful for late evenings"
		enriched, err := client.Enrich(context.Background(), text)
		require.NoError(t, err)
		assert.Equal(t, text, enriched)
	})

	t.Run("empty text passes through", func(t *testing.T) {
		enriched, err := client.Enrich(context.Background(), "   ")
		require.NoError(t, err)
		assert.Equal(t, "   ", enriched)
	})
}

func TestEnrichFailureKeepsOriginal(t *testing.T) {
	server := chatServer(t, func(chatRequest) (string, int) {
		return "", http.StatusInternalServerError
	})
	defer server.Close()

	enriched, err := testGenClient(server.URL).Enrich(context.Background(), "sad songs")
	require.Error(t, err)
	assert.Equal(t, "sad songs", enriched, "original text survives the failure")
}

func testBundle() engine.Bundle {
	top := []engine.Scored{
		{
			Item: corpus.Item{
				Kind:    corpus.KindSong,
				ID:      "s1",
				Payload: corpus.Payload{Name: "Clocks", Artist: "Coldplay", Genre: "rock"},
			},
			Scores: engine.ScoreVector{Global: 0.9},
		},
	}
	return engine.Bundle{
		TopRecommendations: top,
		TopByKind:          map[corpus.Kind][]engine.Scored{corpus.KindSong: top},
		WeakSpots:          top,
		Statistics:         engine.Statistics{MeanScore: 0.9, MaxScore: 0.9, MinScore: 0.9, ItemsCount: 1},
	}
}

func TestReport(t *testing.T) {
	server := chatServer(t, func(req chatRequest) (string, int) {
		assert.Contains(t, req.Messages[1].Content, "Clocks")
		if strings.Contains(req.Messages[0].Content, "progression") {
			return "Start with Clocks.", http.StatusOK
		}
		return "These picks match your calm mood.", http.StatusOK
	})
	defer server.Close()

	report, err := testGenClient(server.URL).Report(context.Background(), "calm evening", testBundle())
	require.NoError(t, err)
	assert.Equal(t, "These picks match your calm mood.", report.Summary)
	assert.Equal(t, "Start with Clocks.", report.ProgressionPlan)
}

func TestReportPartialFailure(t *testing.T) {
	var call int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		call++
		if call == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(chatResponse{
			Message: chatMessage{Role: "assistant", Content: "Start slow, then build up."},
		})
	}))
	defer server.Close()

	report, err := testGenClient(server.URL).Report(context.Background(), "calm", testBundle())
	require.Error(t, err, "first section failure is reported")
	assert.Empty(t, report.Summary)
	assert.Equal(t, "Start slow, then build up.", report.ProgressionPlan, "second section still generated")
}

func TestCompleteModelError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(chatResponse{Error: "model missing"})
	}))
	defer server.Close()

	_, err := testGenClient(server.URL).complete(context.Background(), "sys", "user")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model missing")
}

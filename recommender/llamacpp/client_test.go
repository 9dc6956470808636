package llamacpp

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(url string) *Client {
	return NewClient(Config{
		EmbedURL:     url,
		ModelID:      "test-model",
		Timeout:      5 * time.Second,
		MaxRetries:   2,
		RetryBackoff: time.Millisecond,
	}, zerolog.Nop())
}

func TestEmbedTexts(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req EmbedRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "test-model", req.ModelID)

		embeddings := make([][]float64, len(req.Texts))
		for i := range req.Texts {
			embeddings[i] = []float64{float64(i), 1}
		}
		require.NoError(t, json.NewEncoder(w).Encode(EmbedResponse{
			Embeddings: embeddings,
			ModelID:    "test-model",
			Dimension:  2,
		}))
	}))
	defer server.Close()

	client := testClient(server.URL)
	vectors, err := client.EmbedTexts(context.Background(), []string{"first", "second"})
	require.NoError(t, err)
	require.Len(t, vectors, 2)
	assert.Equal(t, []float64{0, 1}, vectors[0])
	assert.Equal(t, []float64{1, 1}, vectors[1])
}

func TestEmbedTextsEmptyInput(t *testing.T) {
	client := testClient("http://localhost:1") // must never be called
	vectors, err := client.EmbedTexts(context.Background(), nil)
	require.NoError(t, err)
	assert.NotNil(t, vectors)
	assert.Empty(t, vectors)
}

func TestEmbedTextsServerReportedError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(EmbedResponse{Error: "model not loaded"})
	}))
	defer server.Close()

	_, err := testClient(server.URL).EmbedTexts(context.Background(), []string{"x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model not loaded")
}

func TestEmbedTextsCountMismatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(EmbedResponse{Embeddings: [][]float64{{1}}})
	}))
	defer server.Close()

	_, err := testClient(server.URL).EmbedTexts(context.Background(), []string{"a", "b"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mismatch")
}

func TestEmbedText(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(EmbedResponse{Embeddings: [][]float64{{0.5, 0.5}}})
	}))
	defer server.Close()

	vector, err := testClient(server.URL).EmbedText(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, []float64{0.5, 0.5}, vector)
}

func TestRetryOnServerError(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(EmbedResponse{Embeddings: [][]float64{{1}}})
	}))
	defer server.Close()

	vectors, err := testClient(server.URL).EmbedTexts(context.Background(), []string{"x"})
	require.NoError(t, err)
	assert.Len(t, vectors, 1)
	assert.Equal(t, int32(3), calls.Load())
}

func TestNoRetryOnClientError(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "bad payload", http.StatusBadRequest)
	}))
	defer server.Close()

	_, err := testClient(server.URL).EmbedTexts(context.Background(), []string{"x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "client error")
	assert.Equal(t, int32(1), calls.Load())
}

func TestRetriesExhausted(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	_, err := testClient(server.URL).EmbedTexts(context.Background(), []string{"x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "all retries failed")
	assert.Equal(t, int32(3), calls.Load(), "initial attempt plus two retries")
}

func TestHealthCheck(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/health", r.URL.Path)
			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()
		assert.NoError(t, testClient(server.URL).HealthCheck(context.Background()))
	})

	t.Run("unhealthy", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer server.Close()
		assert.Error(t, testClient(server.URL).HealthCheck(context.Background()))
	})
}

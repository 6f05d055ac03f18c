package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T, cfg Config, handler http.HandlerFunc) *EmbeddingService {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg.APIKey = "sk-test"
	cfg.BaseURL = server.URL
	svc, err := NewEmbeddingService(cfg)
	require.NoError(t, err)
	return svc
}

func TestEmbedBatch(t *testing.T) {
	svc := newTestService(t, Config{Model: "text-embedding-3-small", Dimensions: 4},
		func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/embeddings", r.URL.Path)
			assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

			var req embeddingRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "text-embedding-3-small", req.Model)
			assert.Equal(t, "float", req.EncodingFormat)
			assert.Equal(t, 4, req.Dimensions)
			assert.Equal(t, []string{"alpha", "beta"}, req.Input)

			// Out-of-order data must be reassembled by index.
			w.Write([]byte(`{"data": [
				{"embedding": [0.5, 0.5, 0.5, 0.5], "index": 1},
				{"embedding": [0.1, 0.2, 0.3, 0.4], "index": 0}
			]}`))
		})

	vectors, err := svc.EmbedBatch(context.Background(), []string{"alpha", "beta"})
	require.NoError(t, err)
	require.Len(t, vectors, 2)
	assert.Equal(t, []float32{0.1, 0.2, 0.3, 0.4}, vectors[0])
	assert.Equal(t, []float32{0.5, 0.5, 0.5, 0.5}, vectors[1])
}

func TestEmbedBatch_Empty(t *testing.T) {
	svc := newTestService(t, Config{}, func(http.ResponseWriter, *http.Request) {
		t.Fatal("no request expected")
	})

	vectors, err := svc.EmbedBatch(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, vectors)
}

func TestEmbedBatch_APIError(t *testing.T) {
	svc := newTestService(t, Config{}, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error": {"message": "input too long", "type": "invalid_request_error"}}`))
	})

	_, err := svc.EmbedBatch(context.Background(), []string{"x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "input too long")
}

func TestDimensions(t *testing.T) {
	svc, err := NewEmbeddingService(Config{APIKey: "sk-test", Model: "text-embedding-3-large"})
	require.NoError(t, err)
	assert.Equal(t, 3072, svc.Dimensions())

	svc, err = NewEmbeddingService(Config{APIKey: "sk-test", Model: "custom-model"})
	require.NoError(t, err)
	assert.Equal(t, 1536, svc.Dimensions())

	svc, err = NewEmbeddingService(Config{APIKey: "sk-test", Dimensions: 256})
	require.NoError(t, err)
	assert.Equal(t, 256, svc.Dimensions())
}

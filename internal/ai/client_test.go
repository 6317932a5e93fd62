package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComplete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/chat/completions", r.URL.Path)
		require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "test-model", body["model"])

		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"content": "The answer is 4."}},
			},
		})
	}))
	defer server.Close()

	client := NewClient()
	cfg := ChatConfig{BaseURL: server.URL, APIKey: "test-key", Model: "test-model"}

	got, err := client.Complete(context.Background(), cfg, []ChatMessage{
		{Role: "user", Content: "What is 2+2?"},
	})
	require.NoError(t, err)
	assert.Equal(t, "The answer is 4.", got)
}

func TestCompleteEmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"choices": []interface{}{}})
	}))
	defer server.Close()

	client := NewClient()
	cfg := ChatConfig{BaseURL: server.URL, Model: "test-model"}

	_, err := client.Complete(context.Background(), cfg, []ChatMessage{{Role: "user", Content: "hi"}})
	assert.Error(t, err)
}

func TestCompleteUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewClient()
	cfg := ChatConfig{BaseURL: server.URL, Model: "test-model"}

	_, err := client.Complete(context.Background(), cfg, []ChatMessage{{Role: "user", Content: "hi"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestEmbed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/embeddings", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"data": []map[string]interface{}{
				{"embedding": []float32{0.1, 0.2, 0.3}},
			},
		})
	}))
	defer server.Close()

	client := NewClient()
	cfg := EmbeddingConfig{BaseURL: server.URL, Model: "embed-model"}

	vec, err := client.Embed(context.Background(), cfg, "photosynthesis")
	require.NoError(t, err)
	assert.Len(t, vec, 3)
}

func TestEmbedEmptyInput(t *testing.T) {
	client := NewClient()
	_, err := client.Embed(context.Background(), EmbeddingConfig{BaseURL: "http://127.0.0.1:0"}, "   ")
	assert.Error(t, err)
}

func TestEmbedBatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Input []string `json:"input"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		data := make([]map[string]interface{}, len(body.Input))
		for i := range body.Input {
			data[i] = map[string]interface{}{"embedding": []float32{float32(i), 1}}
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"data": data})
	}))
	defer server.Close()

	client := NewClient()
	cfg := EmbeddingConfig{BaseURL: server.URL, Model: "embed-model"}

	vecs, err := client.EmbedBatch(context.Background(), cfg, []string{"a", "b", "c"})
	require.NoError(t, err)
	require.Len(t, vecs, 3)
	assert.Equal(t, []float32{2, 1}, vecs[2])
}

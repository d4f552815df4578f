package embedder

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// newEmbedServer returns a mock Ollama /api/embed endpoint that answers
// every input with a fixed 4-dimensional vector and counts calls.
func newEmbedServer(t *testing.T, callCount *int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*callCount++

		if r.Method != "POST" {
			t.Errorf("Expected POST request, got %s", r.Method)
		}

		var req struct {
			Model string   `json:"model"`
			Input []string `json:"input"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("Decoding embed request: %v", err)
		}

		embeddings := make([][]float32, len(req.Input))
		for i := range req.Input {
			embeddings[i] = []float32{0.1, 0.2, 0.3, float32(i)}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"model":      req.Model,
			"embeddings": embeddings,
		})
	}))
}

func TestOllamaProvider(t *testing.T) {
	t.Run("provider metadata", func(t *testing.T) {
		provider, err := NewOllamaProvider("", "", NewCache(10))
		if err != nil {
			t.Fatalf("NewOllamaProvider() error = %v", err)
		}
		defer provider.Close()

		if provider.Provider() != ProviderOllama {
			t.Errorf("Provider() = %s, want %s", provider.Provider(), ProviderOllama)
		}
		if provider.Model() != DefaultOllamaModel {
			t.Errorf("Model() = %s, want %s", provider.Model(), DefaultOllamaModel)
		}
		if provider.Dimension() != 768 {
			t.Errorf("Dimension() = %d, want 768 for %s", provider.Dimension(), DefaultOllamaModel)
		}
	})

	t.Run("unknown model reports zero dimension", func(t *testing.T) {
		provider, err := NewOllamaProvider("", "some-custom-model", nil)
		if err != nil {
			t.Fatalf("NewOllamaProvider() error = %v", err)
		}
		if provider.Dimension() != 0 {
			t.Errorf("Dimension() = %d, want 0 for unknown model", provider.Dimension())
		}
	})

	t.Run("invalid host", func(t *testing.T) {
		_, err := NewOllamaProvider("://not-a-url", "", nil)
		if err == nil {
			t.Error("Expected error for invalid host URL")
		}
	})

	t.Run("batch embedding via server", func(t *testing.T) {
		callCount := 0
		server := newEmbedServer(t, &callCount)
		defer server.Close()

		provider, err := NewOllamaProvider(server.URL, "test-model", NewCache(10))
		if err != nil {
			t.Fatalf("NewOllamaProvider() error = %v", err)
		}
		defer provider.Close()

		ctx := context.Background()
		resp, err := provider.GenerateBatch(ctx, BatchEmbeddingRequest{
			Texts: []string{"first chunk", "second chunk"},
		})
		if err != nil {
			t.Fatalf("GenerateBatch() error = %v", err)
		}

		if len(resp.Embeddings) != 2 {
			t.Fatalf("Got %d embeddings, want 2", len(resp.Embeddings))
		}
		if resp.Provider != ProviderOllama {
			t.Errorf("Provider = %s, want %s", resp.Provider, ProviderOllama)
		}
		if resp.Embeddings[0].Dimension != 4 {
			t.Errorf("Dimension = %d, want 4", resp.Embeddings[0].Dimension)
		}
		if resp.Embeddings[1].Vector[3] != 1.0 {
			t.Errorf("Embeddings out of input order: got %f at position 1", resp.Embeddings[1].Vector[3])
		}
		if callCount != 1 {
			t.Errorf("Server called %d times, want 1", callCount)
		}
	})

	t.Run("single routes through batch", func(t *testing.T) {
		callCount := 0
		server := newEmbedServer(t, &callCount)
		defer server.Close()

		provider, err := NewOllamaProvider(server.URL, "test-model", NewCache(10))
		if err != nil {
			t.Fatalf("NewOllamaProvider() error = %v", err)
		}
		defer provider.Close()

		ctx := context.Background()
		emb, err := provider.GenerateEmbedding(ctx, EmbeddingRequest{Text: "single text"})
		if err != nil {
			t.Fatalf("GenerateEmbedding() error = %v", err)
		}
		if emb.Dimension != 4 {
			t.Errorf("Dimension = %d, want 4", emb.Dimension)
		}

		// Second call hits the cache, not the server
		_, err = provider.GenerateEmbedding(ctx, EmbeddingRequest{Text: "single text"})
		if err != nil {
			t.Fatalf("Cached GenerateEmbedding() error = %v", err)
		}
		if callCount != 1 {
			t.Errorf("Server called %d times, want 1 (second call should hit cache)", callCount)
		}
	})

	t.Run("server failure is not retried", func(t *testing.T) {
		callCount := 0
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			callCount++
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(map[string]string{"error": "model not loaded"})
		}))
		defer server.Close()

		provider, err := NewOllamaProvider(server.URL, "test-model", nil)
		if err != nil {
			t.Fatalf("NewOllamaProvider() error = %v", err)
		}
		defer provider.Close()

		ctx := context.Background()
		_, err = provider.GenerateBatch(ctx, BatchEmbeddingRequest{Texts: []string{"text"}})
		if !errors.Is(err, ErrProviderFailed) {
			t.Errorf("Error = %v, want ErrProviderFailed", err)
		}
		if callCount != 1 {
			t.Errorf("Server called %d times, want exactly 1 (no retries)", callCount)
		}
	})

	t.Run("validation errors", func(t *testing.T) {
		provider, err := NewOllamaProvider("", "", NewCache(10))
		if err != nil {
			t.Fatalf("NewOllamaProvider() error = %v", err)
		}
		defer provider.Close()

		ctx := context.Background()

		// Empty text
		_, err = provider.GenerateEmbedding(ctx, EmbeddingRequest{Text: ""})
		if err == nil {
			t.Error("Expected error for empty text")
		}

		// Empty batch
		_, err = provider.GenerateBatch(ctx, BatchEmbeddingRequest{Texts: []string{}})
		if err == nil {
			t.Error("Expected error for empty batch")
		}

		// Batch too large
		largeTexts := make([]string, MaxBatchSize+1)
		for i := range largeTexts {
			largeTexts[i] = "text"
		}
		_, err = provider.GenerateBatch(ctx, BatchEmbeddingRequest{Texts: largeTexts})
		if !errors.Is(err, ErrBatchTooLarge) {
			t.Errorf("Error = %v, want ErrBatchTooLarge", err)
		}
	})
}

func TestOpenAIProviderSetup(t *testing.T) {
	t.Run("provider metadata", func(t *testing.T) {
		provider, err := NewOpenAIProvider("test-key", "", NewCache(10))
		if err != nil {
			t.Fatalf("NewOpenAIProvider() error = %v", err)
		}
		defer provider.Close()

		if provider.Provider() != ProviderOpenAI {
			t.Errorf("Provider() = %s, want %s", provider.Provider(), ProviderOpenAI)
		}
		if provider.Dimension() != OpenAIDimension {
			t.Errorf("Dimension() = %d, want %d", provider.Dimension(), OpenAIDimension)
		}
		if provider.Model() != DefaultOpenAIModel {
			t.Errorf("Model() = %s, want %s", provider.Model(), DefaultOpenAIModel)
		}
	})

	t.Run("missing api key", func(t *testing.T) {
		t.Setenv(EnvOpenAIAPIKey, "")

		_, err := NewOpenAIProvider("", "", nil)
		if !errors.Is(err, ErrNoProviderEnabled) {
			t.Errorf("Error = %v, want ErrNoProviderEnabled", err)
		}
	})

	t.Run("key from environment", func(t *testing.T) {
		t.Setenv(EnvOpenAIAPIKey, "env-key")

		provider, err := NewOpenAIProvider("", "", nil)
		if err != nil {
			t.Fatalf("NewOpenAIProvider() error = %v", err)
		}
		defer provider.Close()
	})

	t.Run("validation errors", func(t *testing.T) {
		provider, err := NewOpenAIProvider("test-key", "", NewCache(10))
		if err != nil {
			t.Fatalf("NewOpenAIProvider() error = %v", err)
		}
		defer provider.Close()

		ctx := context.Background()

		// Empty text
		_, err = provider.GenerateEmbedding(ctx, EmbeddingRequest{Text: ""})
		if err == nil {
			t.Error("Expected error for empty text")
		}

		// Empty batch
		_, err = provider.GenerateBatch(ctx, BatchEmbeddingRequest{Texts: []string{}})
		if err == nil {
			t.Error("Expected error for empty batch")
		}

		// Batch too large
		largeTexts := make([]string, MaxBatchSize+1)
		for i := range largeTexts {
			largeTexts[i] = "text"
		}
		_, err = provider.GenerateBatch(ctx, BatchEmbeddingRequest{Texts: largeTexts})
		if !errors.Is(err, ErrBatchTooLarge) {
			t.Errorf("Error = %v, want ErrBatchTooLarge", err)
		}
	})
}

func TestProviderCaching(t *testing.T) {
	t.Run("cache hit avoids recompute", func(t *testing.T) {
		cache := NewCache(100)
		provider, err := NewLocalProvider(cache)
		if err != nil {
			t.Fatalf("NewLocalProvider() error = %v", err)
		}
		defer provider.Close()

		ctx := context.Background()
		text := "the grace period for late payments is thirty days"

		// First call
		emb1, err := provider.GenerateEmbedding(ctx, EmbeddingRequest{Text: text})
		if err != nil {
			t.Fatalf("First call error = %v", err)
		}

		// Verify cached
		hash := ComputeHash(text)
		if cache.Size() == 0 {
			t.Error("Expected cache to have entry")
		}

		cached, ok := cache.Get(hash)
		if !ok {
			t.Error("Expected cache hit")
		}

		// Second call should return cached value
		emb2, err := provider.GenerateEmbedding(ctx, EmbeddingRequest{Text: text})
		if err != nil {
			t.Fatalf("Second call error = %v", err)
		}

		// Compare vectors
		if len(emb1.Vector) != len(emb2.Vector) {
			t.Error("Cached embedding has different dimension")
		}

		// Should be identical (cached)
		if cached.Hash != emb2.Hash {
			t.Error("Cache returned different embedding")
		}
	})

	t.Run("different text gets different embedding", func(t *testing.T) {
		cache := NewCache(100)
		provider, err := NewLocalProvider(cache)
		if err != nil {
			t.Fatalf("NewLocalProvider() error = %v", err)
		}
		defer provider.Close()

		ctx := context.Background()

		emb1, err := provider.GenerateEmbedding(ctx, EmbeddingRequest{Text: "text one"})
		if err != nil {
			t.Fatalf("Error = %v", err)
		}

		emb2, err := provider.GenerateEmbedding(ctx, EmbeddingRequest{Text: "text two"})
		if err != nil {
			t.Fatalf("Error = %v", err)
		}

		// Hashes should be different
		if emb1.Hash == emb2.Hash {
			t.Error("Expected different hashes for different texts")
		}

		// Cache should have both
		if cache.Size() != 2 {
			t.Errorf("Cache size = %d, want 2", cache.Size())
		}
	})

	t.Run("batch caching", func(t *testing.T) {
		cache := NewCache(100)
		provider, err := NewLocalProvider(cache)
		if err != nil {
			t.Fatalf("NewLocalProvider() error = %v", err)
		}
		defer provider.Close()

		ctx := context.Background()
		texts := []string{"chunk one", "chunk two", "chunk three"}

		resp, err := provider.GenerateBatch(ctx, BatchEmbeddingRequest{Texts: texts})
		if err != nil {
			t.Fatalf("GenerateBatch() error = %v", err)
		}

		if len(resp.Embeddings) != 3 {
			t.Errorf("Got %d embeddings, want 3", len(resp.Embeddings))
		}

		// All should be cached
		if cache.Size() != 3 {
			t.Errorf("Cache size = %d, want 3", cache.Size())
		}

		// Requesting same texts again should hit cache
		for _, text := range texts {
			hash := ComputeHash(text)
			if _, ok := cache.Get(hash); !ok {
				t.Errorf("Expected cache hit for text: %s", text)
			}
		}
	})
}

func TestContextCancellation(t *testing.T) {
	t.Run("cancelled context", func(t *testing.T) {
		provider, err := NewLocalProvider(nil)
		if err != nil {
			t.Fatalf("NewLocalProvider() error = %v", err)
		}
		defer provider.Close()

		ctx, cancel := context.WithCancel(context.Background())
		cancel() // Cancel immediately

		// Local provider doesn't check context in current implementation
		// but should not panic
		_, _ = provider.GenerateEmbedding(ctx, EmbeddingRequest{Text: "test"})
	})

	t.Run("timeout context", func(t *testing.T) {
		provider, err := NewLocalProvider(nil)
		if err != nil {
			t.Fatalf("NewLocalProvider() error = %v", err)
		}
		defer provider.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Nanosecond)
		defer cancel()

		time.Sleep(1 * time.Millisecond) // Ensure timeout

		// Should complete quickly with local provider
		_, _ = provider.GenerateEmbedding(ctx, EmbeddingRequest{Text: "test"})
	})
}

func TestProviderClose(t *testing.T) {
	providers := []struct {
		name     string
		provider Embedder
	}{
		{
			name:     "local",
			provider: mustNewLocalProvider(t),
		},
	}

	for _, tc := range providers {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.provider.Close()
			if err != nil {
				t.Errorf("Close() error = %v", err)
			}
		})
	}
}

func mustNewLocalProvider(t *testing.T) *LocalProvider {
	t.Helper()
	p, err := NewLocalProvider(NewCache(10))
	if err != nil {
		t.Fatalf("NewLocalProvider() error = %v", err)
	}
	return p
}

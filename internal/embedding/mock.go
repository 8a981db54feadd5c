package embedding

import (
	"context"
	"hash/fnv"
	"math"
)

// MockEmbedder is a deterministic embedder for tests. The vector is
// derived from a hash of the text, so the same text always gets the same
// unit-length embedding.
type MockEmbedder struct {
	dim   int
	model string
}

// NewMockEmbedder returns an embedder producing deterministic embeddings
// of the given dimension.
func NewMockEmbedder(dim int) *MockEmbedder {
	if dim <= 0 {
		dim = 384
	}
	return &MockEmbedder{dim: dim, model: "mock-embedder"}
}

// Embed returns a deterministic embedding based on the text hash.
func (e *MockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	h := fnv.New64a()
	_, _ = h.Write([]byte(text))
	seed := h.Sum64()
	vec := make([]float32, e.dim)
	for i := range vec {
		vec[i] = float32(math.Sin(float64(seed%1000)*float64(i+1))*0.1 + 0.01)
	}
	return l2normalize(vec), nil
}

// EmbedBatch calls Embed for each text.
func (e *MockEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		vec, err := e.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		out[i] = vec
	}
	return out, nil
}

// Dimensions returns the embedding dimension.
func (e *MockEmbedder) Dimensions() int { return e.dim }

// ModelName returns the mock model identifier.
func (e *MockEmbedder) ModelName() string { return e.model }

// Close is a no-op for MockEmbedder.
func (e *MockEmbedder) Close() error { return nil }

func l2normalize(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x * x)
	}
	if sum == 0 {
		return v
	}
	inv := float32(1.0 / math.Sqrt(sum))
	for i := range v {
		v[i] *= inv
	}
	return v
}

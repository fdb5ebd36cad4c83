package embeddings

import (
	"context"
	"crypto/sha256"
	"fmt"

	"github.com/mentormatch/backend/internal/merrors"
	"github.com/mentormatch/backend/pkg/vector"
)

// MockClient implements Client for tests and local development.
// It generates deterministic unit-length embeddings from the input text hash,
// so identical text always produces an identical vector.
type MockClient struct {
	dimensions int
}

// Ensure MockClient implements Client interface
var _ Client = (*MockClient)(nil)

// NewMockClient creates a mock client with the given dimensions.
func NewMockClient(dimensions int) *MockClient {
	return &MockClient{dimensions: dimensions}
}

// CreateEmbeddings generates deterministic embeddings for the given texts.
func (c *MockClient) CreateEmbeddings(_ context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, merrors.NewInvalidArgumentError("texts", "texts cannot be empty")
	}

	for i, text := range texts {
		if text == "" {
			return nil, merrors.NewInvalidArgumentError("texts", fmt.Sprintf("text at index %d is empty", i))
		}
	}

	out := make([][]float32, len(texts))
	for i, text := range texts {
		out[i] = c.deterministicEmbedding(text)
	}

	return out, nil
}

// deterministicEmbedding creates a normalized embedding vector from the text hash.
func (c *MockClient) deterministicEmbedding(text string) []float32 {
	hash := sha256.Sum256([]byte(text))
	embedding := make([]float32, c.dimensions)

	// Cycle over hash bytes, mapping each to [-1, 1].
	for i := 0; i < c.dimensions; i++ {
		byteIdx := i % len(hash)
		embedding[i] = (float32(hash[byteIdx]) / 127.5) - 1.0
	}

	vector.NormalizeL2(embedding)

	return embedding
}

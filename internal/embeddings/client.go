// Package embeddings defines the provider-agnostic embedding client contract
// and a deterministic mock implementation for tests and local runs.
package embeddings

import "context"

// Client generates embedding vectors for text.
// Implemented by provider-specific clients (e.g. OpenAI, Google Gemini).
//
// CreateEmbeddings is batch and order-preserving: one vector per input text,
// same order, same count. Implementations must surface a transport or non-2xx
// failure as merrors.EmbeddingUnavailableError and a count or dimensionality
// violation as merrors.EmbeddingProtocolError; they never retry and never
// pad or truncate vectors.
type Client interface {
	CreateEmbeddings(ctx context.Context, texts []string) ([][]float32, error)
}

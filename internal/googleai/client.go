// Package googleai provides a thin wrapper around the Google Gen AI SDK for embeddings (Gemini API).
package googleai

import (
	"context"
	"fmt"
	"math"
	"strings"

	"google.golang.org/genai"

	"github.com/mentormatch/backend/internal/embeddings"
	"github.com/mentormatch/backend/internal/merrors"
)

const (
	defaultDimension = 1536
	defaultModel     = "gemini-embedding-001"
)

// Client calls the Gemini embeddings API via the Google Gen AI SDK.
type Client struct {
	client     *genai.Client
	model      string
	dimensions int
}

// Ensure Client implements the embedding client interface.
var _ embeddings.Client = (*Client)(nil)

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithDimensions sets the requested embedding dimension (must match the DB column).
func WithDimensions(dim int) ClientOption {
	return func(c *Client) {
		c.dimensions = dim
	}
}

// WithModel sets the embedding model name (e.g. gemini-embedding-001). Empty uses default.
func WithModel(model string) ClientOption {
	return func(c *Client) {
		if model != "" {
			c.model = model
		}
	}
}

// NewClient creates a Gemini embeddings client.
func NewClient(ctx context.Context, apiKey string, opts ...ClientOption) (*Client, error) {
	genaiClient, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("googleai client: %w", err)
	}

	client := &Client{
		client:     genaiClient,
		model:      defaultModel,
		dimensions: defaultDimension,
	}
	for _, opt := range opts {
		opt(client)
	}

	return client, nil
}

// CreateEmbeddings returns one embedding vector per input text, in input order.
// Transport or API failures surface as EmbeddingUnavailableError; a response
// with the wrong vector count or ragged dimensionality surfaces as
// EmbeddingProtocolError.
func (c *Client) CreateEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, merrors.NewInvalidArgumentError("texts", "texts cannot be empty")
	}

	if c.dimensions <= 0 || c.dimensions > math.MaxInt32 {
		return nil, merrors.NewInvalidArgumentError("dimensions", "embedding dimensions must be positive")
	}

	contents := make([]*genai.Content, 0, len(texts))

	for i, t := range texts {
		if strings.TrimSpace(t) == "" {
			return nil, merrors.NewInvalidArgumentError("texts", fmt.Sprintf("text at index %d is empty", i))
		}

		contents = append(contents, genai.NewContentFromText(t, genai.RoleUser))
	}

	//nolint:gosec // G115: c.dimensions is bounded above by math.MaxInt32
	dimInt32 := int32(c.dimensions)

	resp, err := c.client.Models.EmbedContent(ctx, c.model, contents, &genai.EmbedContentConfig{
		OutputDimensionality: &dimInt32,
	})
	if err != nil {
		return nil, merrors.NewEmbeddingUnavailableError("gemini embeddings call failed", err)
	}

	if len(resp.Embeddings) != len(texts) {
		return nil, merrors.NewEmbeddingProtocolError(
			fmt.Sprintf("gemini returned %d embeddings, want %d", len(resp.Embeddings), len(texts)))
	}

	out := make([][]float32, len(resp.Embeddings))

	for i, emb := range resp.Embeddings {
		if len(emb.Values) != c.dimensions {
			return nil, merrors.NewEmbeddingProtocolError(
				fmt.Sprintf("gemini embedding %d has dimension %d, want %d", i, len(emb.Values), c.dimensions))
		}

		vec := make([]float32, len(emb.Values))
		copy(vec, emb.Values)
		out[i] = vec
	}

	return out, nil
}

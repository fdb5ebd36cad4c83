// Package openai provides a thin wrapper around the official OpenAI Go SDK for embeddings.
package openai

import (
	"context"
	"fmt"
	"strings"

	openaisdk "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/packages/param"

	"github.com/mentormatch/backend/internal/embeddings"
	"github.com/mentormatch/backend/internal/merrors"
)

const defaultDimension = 1536

// Client calls the OpenAI embeddings API via the official SDK.
type Client struct {
	sdk        openaisdk.Client
	model      openaisdk.EmbeddingModel
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

// WithModel sets the embedding model name. Empty uses text-embedding-3-small.
func WithModel(model string) ClientOption {
	return func(c *Client) {
		if model != "" {
			c.model = openaisdk.EmbeddingModel(model)
		}
	}
}

// NewClient creates an OpenAI embeddings client using the official SDK.
func NewClient(apiKey string, opts ...ClientOption) *Client {
	client := &Client{
		sdk:        openaisdk.NewClient(option.WithAPIKey(apiKey)),
		model:      openaisdk.EmbeddingModelTextEmbedding3Small,
		dimensions: defaultDimension,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// CreateEmbeddings returns one embedding vector per input text, in input order.
// Transport or API failures surface as EmbeddingUnavailableError; a response
// with the wrong vector count or ragged dimensionality surfaces as
// EmbeddingProtocolError. The returned vectors all have the configured length.
func (c *Client) CreateEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, merrors.NewInvalidArgumentError("texts", "texts cannot be empty")
	}

	if c.dimensions <= 0 {
		return nil, merrors.NewInvalidArgumentError("dimensions", "embedding dimensions must be positive")
	}

	for i, t := range texts {
		if strings.TrimSpace(t) == "" {
			return nil, merrors.NewInvalidArgumentError("texts", fmt.Sprintf("text at index %d is empty", i))
		}
	}

	resp, err := c.sdk.Embeddings.New(ctx, openaisdk.EmbeddingNewParams{
		Input: openaisdk.EmbeddingNewParamsInputUnion{
			OfArrayOfStrings: texts,
		},
		Model:      c.model,
		Dimensions: param.NewOpt(int64(c.dimensions)),
	})
	if err != nil {
		return nil, merrors.NewEmbeddingUnavailableError("openai embeddings call failed", err)
	}

	if len(resp.Data) != len(texts) {
		return nil, merrors.NewEmbeddingProtocolError(
			fmt.Sprintf("openai returned %d embeddings, want %d", len(resp.Data), len(texts)))
	}

	out := make([][]float32, len(resp.Data))

	for i, data := range resp.Data {
		if len(data.Embedding) != c.dimensions {
			return nil, merrors.NewEmbeddingProtocolError(
				fmt.Sprintf("openai embedding %d has dimension %d, want %d", i, len(data.Embedding), c.dimensions))
		}

		vec := make([]float32, len(data.Embedding))
		for j, v := range data.Embedding {
			vec[j] = float32(v)
		}

		out[i] = vec
	}

	return out, nil
}

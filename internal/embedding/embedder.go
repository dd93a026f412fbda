// Package embedding turns text into vectors for similarity search.
package embedding

import (
	"context"
	"log/slog"

	"planner-service/internal/metrics"
	"planner-service/internal/openai"
)

// Dimension is the length of every vector produced here.
const Dimension = 1536

// Embedder produces embedding vectors.
type Embedder interface {
	Name() string
	Dimension() int
	Embed(ctx context.Context, text string) ([]float64, error)
}

// Remote is the API surface the OpenAI embedder needs.
type Remote interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}

// OpenAIEmbedder calls a remote embeddings endpoint.
type OpenAIEmbedder struct {
	remote Remote
}

func NewOpenAIEmbedder(remote Remote) *OpenAIEmbedder {
	return &OpenAIEmbedder{remote: remote}
}

func (e *OpenAIEmbedder) Name() string   { return "openai" }
func (e *OpenAIEmbedder) Dimension() int { return Dimension }

func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	return e.remote.Embed(ctx, text)
}

// New picks the embedder once from configuration. Without an API client
// vectors are random; with one, failures fall back to random vectors.
func New(client *openai.Client, logger *slog.Logger, m *metrics.Metrics) Embedder {
	if client == nil {
		logger.Warn("embedding provider not configured, using mock vectors")
		return NewMockEmbedder()
	}
	return NewFallback(NewOpenAIEmbedder(client), logger, m)
}

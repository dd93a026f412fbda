package embedding

import (
	"context"
	"log/slog"

	"planner-service/internal/metrics"
)

// Fallback wraps a live embedder and answers its failures with mock
// vectors, so Embed never returns an error.
type Fallback struct {
	primary Embedder
	mock    *MockEmbedder
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func NewFallback(primary Embedder, logger *slog.Logger, m *metrics.Metrics) *Fallback {
	return &Fallback{primary: primary, mock: NewMockEmbedder(), logger: logger, metrics: m}
}

func (f *Fallback) Name() string   { return f.primary.Name() }
func (f *Fallback) Dimension() int { return f.primary.Dimension() }

func (f *Fallback) Embed(ctx context.Context, text string) ([]float64, error) {
	v, err := f.primary.Embed(ctx, text)
	if err == nil && len(v) > 0 {
		return v, nil
	}
	f.logger.Warn("embedding failed, using mock vector", "embedder", f.primary.Name(), "error", err)
	f.metrics.RecordEmbeddingFallback()
	return f.mock.Embed(ctx, text)
}

package services

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"planner-service/internal/logging"
	"planner-service/internal/models"
	"planner-service/internal/vectorstore/memory"
)

// flakyEmbedder fails every call after the first ok ones.
type flakyEmbedder struct {
	wordEmbedder
	ok    int
	calls int
}

func (e *flakyEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	e.calls++
	if e.calls > e.ok {
		return nil, errors.New("rate limited")
	}
	return e.wordEmbedder.Embed(ctx, text)
}

func TestIndexDocuments(t *testing.T) {
	p := &models.Project{Title: "Coffee bot", Description: "Orders in Telegram"}
	docs := IndexDocuments(p)
	require.Len(t, docs, 1)
	assert.Equal(t, IndexDocument{Facet: models.EmbeddingFacetDescription, Content: "Coffee bot - Orders in Telegram"}, docs[0])

	p.BusinessIdea = "Pre-order coffee"
	p.AIAnalysis = &models.SWOTAnalysis{Summary: "Viable niche"}
	docs = IndexDocuments(p)
	require.Len(t, docs, 3)
	assert.Equal(t, models.EmbeddingFacetBusinessIdea, docs[1].Facet)
	assert.Equal(t, "Viable niche", docs[2].Content)
}

func TestReindexReplacesRecords(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStorage()
	idx := NewVectorIndexer(&wordEmbedder{}, store, DefaultSimilarityThreshold, logging.Discard())

	p := &models.Project{ID: 1, Title: "Coffee bot", BusinessIdea: "Pre-order coffee"}
	require.NoError(t, idx.IndexProject(ctx, p))
	require.NoError(t, idx.IndexProject(ctx, p))
	assert.Equal(t, 2, store.Len())

	p.AIAnalysis = &models.SWOTAnalysis{Summary: "Viable niche"}
	require.NoError(t, idx.IndexProject(ctx, p))
	assert.Equal(t, 3, store.Len())
}

func TestIndexStopsAtFirstFailure(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStorage()
	idx := NewVectorIndexer(&flakyEmbedder{ok: 1}, store, DefaultSimilarityThreshold, logging.Discard())

	p := &models.Project{ID: 1, Title: "Coffee bot", BusinessIdea: "Pre-order coffee", AIAnalysis: &models.SWOTAnalysis{Summary: "ok"}}
	err := idx.IndexProject(ctx, p)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "business_idea")
	assert.Equal(t, 1, store.Len(), "records written before the failure stay")
}

func TestSearchSimilarKeepsBestMatchPerProject(t *testing.T) {
	ctx := context.Background()
	idx := NewVectorIndexer(&wordEmbedder{}, memory.NewStorage(), DefaultSimilarityThreshold, logging.Discard())

	projects := []*models.Project{
		{ID: 1, Title: "organic produce", Description: "farm ledger", BusinessIdea: "organic produce farm ledger"},
		{ID: 2, Title: "organic produce market", BusinessIdea: "organic produce market for farm owners"},
		{ID: 3, Title: "Neural Gaming", BusinessIdea: "multiplayer game engine"},
	}
	for _, p := range projects {
		require.NoError(t, idx.IndexProject(ctx, p))
	}

	found, err := idx.SearchSimilar(ctx, "organic produce farm ledger", 0)
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, int64(1), found[0].ProjectID)
	assert.InDelta(t, 1.0, found[0].Score, 1e-9)
	assert.Equal(t, models.EmbeddingFacetBusinessIdea, found[0].Facet)
	assert.Equal(t, int64(2), found[1].ProjectID)
	assert.GreaterOrEqual(t, found[1].Score, DefaultSimilarityThreshold)

	found, err = idx.SearchSimilar(ctx, "organic produce farm ledger", 1)
	require.NoError(t, err)
	assert.Len(t, found, 1)
}

func TestSearchSimilarReportsEmbeddingFailure(t *testing.T) {
	e := &wordEmbedder{}
	e.fail(errBoom)
	idx := NewVectorIndexer(e, memory.NewStorage(), DefaultSimilarityThreshold, logging.Discard())
	_, err := idx.SearchSimilar(context.Background(), "anything", 5)
	assert.ErrorIs(t, err, errBoom)
}

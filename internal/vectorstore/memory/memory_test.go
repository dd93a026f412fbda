package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"planner-service/internal/models"
)

func record(projectID int64, facet string, vec ...float64) models.ProjectEmbedding {
	return models.ProjectEmbedding{
		ID:        models.EmbeddingID(projectID, facet),
		ProjectID: projectID,
		Facet:     facet,
		Content:   facet,
		Vector:    vec,
	}
}

func TestUpsertReplacesSameKey(t *testing.T) {
	ctx := context.Background()
	s := NewStorage()

	require.NoError(t, s.Upsert(ctx, []models.ProjectEmbedding{record(1, "description", 1, 0)}))
	require.NoError(t, s.Upsert(ctx, []models.ProjectEmbedding{record(1, "description", 0, 1)}))
	assert.Equal(t, 1, s.Len())

	matches, err := s.Search(ctx, []float64{0, 1}, 0.5, 5)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.InDelta(t, 1.0, matches[0].Score, 1e-9)
}

func TestSearchThresholdAndOrder(t *testing.T) {
	ctx := context.Background()
	s := NewStorage()
	require.NoError(t, s.Upsert(ctx, []models.ProjectEmbedding{
		record(1, "description", 1, 0),
		record(2, "description", 0.8, 0.6),
		record(3, "description", 0, 1),
		record(4, "description", -1, 0),
	}))

	matches, err := s.Search(ctx, []float64{1, 0}, 0.5, 5)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, int64(1), matches[0].ProjectID)
	assert.Equal(t, int64(2), matches[1].ProjectID)

	limited, err := s.Search(ctx, []float64{1, 0}, -1, 3)
	require.NoError(t, err)
	assert.Len(t, limited, 3)
}

func TestDeleteProject(t *testing.T) {
	ctx := context.Background()
	s := NewStorage()
	require.NoError(t, s.Upsert(ctx, []models.ProjectEmbedding{
		record(1, "description", 1, 0),
		record(1, "business_idea", 1, 0),
		record(2, "description", 1, 0),
	}))

	require.NoError(t, s.DeleteProject(ctx, 1))
	assert.Equal(t, 1, s.Len())
}

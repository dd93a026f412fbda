package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"planner-service/internal/models"
)

func setupPostgres(t *testing.T) *gorm.DB {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "planner",
				"POSTGRES_PASSWORD": "planner",
				"POSTGRES_DB":       "planner",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(2 * time.Minute),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("Failed to terminate postgres container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	dsn := fmt.Sprintf("host=%s port=%s user=planner password=planner dbname=planner sslmode=disable", host, port.Port())
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, Migrate(db))
	return db
}

func newProject(id int64, title string) *models.Project {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &models.Project{
		ID:           id,
		Title:        title,
		Description:  title + " description",
		BusinessIdea: "An idea about " + title,
		Stage:        models.StageIdea,
		Status:       models.StatusDraft,
		Tags:         []string{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func TestProjectRepositoryPostgres(t *testing.T) {
	db := setupPostgres(t)
	repo := NewProjectRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Ping(ctx))

	first := newProject(1, "Coffee subscription")
	second := newProject(2, "Drone delivery")
	second.CreatedAt = first.CreatedAt.Add(time.Second)
	require.NoError(t, repo.CreateProject(ctx, first))
	require.NoError(t, repo.CreateProject(ctx, second))

	list, err := repo.ListProjects(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, int64(2), list[0].ID, "newest first")

	score := 8.2
	first.Status = models.StatusActive
	first.AIAnalysis = &models.SWOTAnalysis{Summary: "solid", Strengths: []string{"recurring revenue"}}
	first.AIScore = &score
	require.NoError(t, repo.UpdateProject(ctx, first))

	got, err := repo.GetProject(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, models.StatusActive, got.Status)
	require.NotNil(t, got.AIAnalysis)
	assert.Equal(t, "solid", got.AIAnalysis.Summary)
	assert.InDelta(t, 8.2, *got.AIScore, 1e-9)

	found, err := repo.SearchProjects(ctx, "DRONE")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, int64(2), found[0].ID)

	byIDs, err := repo.GetProjectsByIDs(ctx, []int64{1, 2, 3})
	require.NoError(t, err)
	assert.Len(t, byIDs, 2)

	missing := newProject(99, "ghost")
	assert.ErrorIs(t, repo.UpdateProject(ctx, missing), ErrNotFound)

	require.NoError(t, repo.DeleteProject(ctx, 1))
	_, err = repo.GetProject(ctx, 1)
	assert.ErrorIs(t, err, ErrNotFound)

	exists, err := repo.ProjectExists(ctx, 2)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestEmbeddingRepositoryPostgres(t *testing.T) {
	db := setupPostgres(t)
	repo := NewEmbeddingRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, []models.ProjectEmbedding{
		{ProjectID: 1, Facet: models.EmbeddingFacetDescription, Content: "a", Vector: []float64{1, 0}},
		{ProjectID: 2, Facet: models.EmbeddingFacetDescription, Content: "b", Vector: []float64{0, 1}},
	}))
	require.NoError(t, repo.Upsert(ctx, []models.ProjectEmbedding{
		{ProjectID: 1, Facet: models.EmbeddingFacetDescription, Content: "a2", Vector: []float64{0.9, 0.1}},
	}))

	var count int64
	require.NoError(t, db.Model(&models.ProjectEmbedding{}).Count(&count).Error)
	assert.Equal(t, int64(2), count, "re-indexing replaces the record")

	matches, err := repo.Search(ctx, []float64{1, 0}, 0.5, 5)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "a2", matches[0].Content)

	require.NoError(t, repo.DeleteProject(ctx, 1))
	matches, err = repo.Search(ctx, []float64{1, 0}, -1, 5)
	require.NoError(t, err)
	assert.Len(t, matches, 1)
}

func TestNilDatabaseIsUnavailable(t *testing.T) {
	ctx := context.Background()
	repo := NewProjectRepository(nil)

	assert.ErrorIs(t, repo.Ping(ctx), ErrUnavailable)
	_, err := repo.ListProjects(ctx)
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.ErrorIs(t, repo.CreateProject(ctx, newProject(1, "x")), ErrUnavailable)

	embeddings := NewEmbeddingRepository(nil)
	_, err = embeddings.Search(ctx, []float64{1}, 0.5, 5)
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `50\% off\_now`, escapeLike("50% off_now"))
}

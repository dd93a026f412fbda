package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"planner-service/internal/logging"
	"planner-service/internal/models"
	"planner-service/internal/repository"
	"planner-service/internal/services/caches"
	"planner-service/internal/vectorstore/memory"
)

func newTestProjectService(t *testing.T) (*ProjectService, *fakeDurable, *caches.MemoryCache) {
	t.Helper()
	durable := newFakeDurable()
	local := caches.NewMemoryCache()
	svc := NewProjectService(durable, local, nil, logging.Discard(), nil)
	return svc, durable, local
}

func localIDs(t *testing.T, local *caches.MemoryCache) []int64 {
	t.Helper()
	projects, err := local.Load(context.Background())
	require.NoError(t, err)
	ids := make([]int64, 0, len(projects))
	for _, p := range projects {
		ids = append(ids, p.ID)
	}
	return ids
}

func TestIDGeneratorIsStrictlyIncreasing(t *testing.T) {
	clock := time.UnixMilli(1_000)
	g := NewIDGenerator()
	g.now = func() time.Time { return clock }

	assert.Equal(t, int64(1_000), g.Next())
	assert.Equal(t, int64(1_001), g.Next())

	clock = time.UnixMilli(500)
	assert.Equal(t, int64(1_002), g.Next(), "clock stepped back")

	g.Observe(5_000)
	assert.Equal(t, int64(5_001), g.Next())

	clock = time.UnixMilli(9_000)
	assert.Equal(t, int64(9_000), g.Next())
}

func TestCreateProjectAssignsIdentity(t *testing.T) {
	ctx := context.Background()
	svc, durable, local := newTestProjectService(t)

	p, err := svc.CreateProject(ctx, models.Project{
		Title:     "EcoMarket",
		Status:    models.StatusFunded,
		ViewCount: 12,
	})
	require.NoError(t, err)

	assert.NotZero(t, p.ID)
	assert.Equal(t, models.StatusDraft, p.Status)
	assert.Equal(t, models.StageIdea, p.Stage)
	assert.Zero(t, p.ViewCount)
	assert.NotNil(t, p.Tags)
	assert.Empty(t, p.Tags)
	assert.Equal(t, p.CreatedAt, p.UpdatedAt)

	stored, err := durable.GetProject(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "EcoMarket", stored.Title)
	assert.Equal(t, []int64{p.ID}, localIDs(t, local), "durable writes are mirrored")
}

func TestCreateProjectValidation(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestProjectService(t)

	_, err := svc.CreateProject(ctx, models.Project{})
	assert.ErrorIs(t, err, ErrInvalidProject)

	_, err = svc.CreateProject(ctx, models.Project{Title: "x", Stage: "series-b"})
	assert.ErrorIs(t, err, ErrInvalidProject)

	p, err := svc.CreateProject(ctx, models.Project{BusinessIdea: "Rent bikes by the hour. Pay in TON."})
	require.NoError(t, err)
	assert.Equal(t, "Rent bikes by the hour", p.Title)
}

func TestCreatedIDsAreUnique(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestProjectService(t)
	svc.ids.now = func() time.Time { return time.UnixMilli(42) }

	var mu sync.Mutex
	seen := make(map[int64]bool)
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p, err := svc.CreateProject(ctx, models.Project{Title: "same millisecond"})
			if !assert.NoError(t, err) {
				return
			}
			mu.Lock()
			seen[p.ID] = true
			mu.Unlock()
		}()
	}
	wg.Wait()
	assert.Len(t, seen, 10)
}

func TestRoundTripThroughLocalCacheWhenDurableDown(t *testing.T) {
	ctx := context.Background()
	svc, durable, _ := newTestProjectService(t)
	durable.setDown(true)

	created, err := svc.CreateProject(ctx, models.Project{Title: "Offline idea"})
	require.NoError(t, err)

	got, err := svc.GetProject(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Offline idea", got.Title)

	got.Title = "Offline idea v2"
	got.Budget = "$5k"
	_, err = svc.UpdateProject(ctx, got)
	require.NoError(t, err)

	got, err = svc.GetProject(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Offline idea v2", got.Title)
	assert.Equal(t, "$5k", got.Budget)

	assert.Zero(t, durable.callCount("create"), "probe failure skips the durable store")
	assert.Zero(t, durable.callCount("update"))
}

func TestDurableErrorMidOperationFallsBack(t *testing.T) {
	ctx := context.Background()
	logger, logs := captureLogger()
	durable := newFakeDurable()
	local := caches.NewMemoryCache()
	svc := NewProjectService(durable, local, nil, logger, nil)

	durable.failOn("create", errBoom)
	created, err := svc.CreateProject(ctx, models.Project{Title: "Flaky"})
	require.NoError(t, err)
	assert.Equal(t, []int64{created.ID}, localIDs(t, local))
	assert.Contains(t, logs.String(), "operation=create")

	durable.failOn("get", errBoom)
	got, err := svc.GetProject(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Flaky", got.Title)
}

func TestUpdateUnknownToDurableLandsLocally(t *testing.T) {
	ctx := context.Background()
	svc, durable, local := newTestProjectService(t)

	// not in the durable store: update reports not found there
	p := &models.Project{ID: 77, Title: "Orphan", Status: models.StatusDraft, Stage: models.StageMVP}
	updated, err := svc.UpdateProject(ctx, p)
	require.NoError(t, err)
	assert.Equal(t, int64(77), updated.ID)
	assert.Equal(t, []int64{77}, localIDs(t, local))
	assert.Equal(t, 1, durable.callCount("update"))

	got, err := svc.GetProject(ctx, 77)
	require.NoError(t, err)
	assert.Equal(t, "Orphan", got.Title)
}

func TestUpdateRequiresID(t *testing.T) {
	svc, _, _ := newTestProjectService(t)
	_, err := svc.UpdateProject(context.Background(), &models.Project{Title: "no id"})
	assert.ErrorIs(t, err, ErrInvalidProject)
}

func TestUpdatedAtNeverMovesBackwards(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestProjectService(t)

	future := time.Now().Add(time.Hour).UTC()
	p := &models.Project{ID: 1, Title: "Clock skew", UpdatedAt: future}
	updated, err := svc.UpdateProject(ctx, p)
	require.NoError(t, err)
	assert.Equal(t, future, updated.UpdatedAt)

	past := time.Now().Add(-time.Hour).UTC()
	p.UpdatedAt = past
	updated, err = svc.UpdateProject(ctx, p)
	require.NoError(t, err)
	assert.True(t, updated.UpdatedAt.After(past))
}

func TestDeleteIsIdempotent(t *testing.T) {
	for name, down := range map[string]bool{"durable up": false, "durable down": true} {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			svc, durable, _ := newTestProjectService(t)
			durable.setDown(down)

			p, err := svc.CreateProject(ctx, models.Project{Title: "Short lived"})
			require.NoError(t, err)

			require.NoError(t, svc.DeleteProject(ctx, p.ID))
			_, err = svc.GetProject(ctx, p.ID)
			assert.ErrorIs(t, err, ErrProjectNotFound)

			require.NoError(t, svc.DeleteProject(ctx, p.ID))
			_, err = svc.GetProject(ctx, p.ID)
			assert.ErrorIs(t, err, ErrProjectNotFound)
		})
	}
}

func TestDeleteRemovesEmbeddings(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStorage()
	indexer := NewVectorIndexer(&wordEmbedder{}, store, DefaultSimilarityThreshold, logging.Discard())
	svc := NewProjectService(newFakeDurable(), caches.NewMemoryCache(), indexer, logging.Discard(), nil)

	p, err := svc.CreateProject(ctx, models.Project{Title: "Indexed", BusinessIdea: "something to embed"})
	require.NoError(t, err)
	require.NoError(t, indexer.IndexProject(ctx, p))
	require.Equal(t, 2, store.Len())

	require.NoError(t, svc.DeleteProject(ctx, p.ID))
	assert.Zero(t, store.Len())
}

func TestSearchIsCaseInsensitiveSubstring(t *testing.T) {
	for name, down := range map[string]bool{"durable up": false, "durable down": true} {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			svc, durable, _ := newTestProjectService(t)
			durable.setDown(down)

			eco, err := svc.CreateProject(ctx, models.Project{Title: "EcoMarket"})
			require.NoError(t, err)
			gaming, err := svc.CreateProject(ctx, models.Project{Title: "Neural Gaming"})
			require.NoError(t, err)

			found, err := svc.SearchProjects(ctx, "eco")
			require.NoError(t, err)
			require.Len(t, found, 1)
			assert.Equal(t, eco.ID, found[0].ID)

			found, err = svc.SearchProjects(ctx, "GAMING")
			require.NoError(t, err)
			require.Len(t, found, 1)
			assert.Equal(t, gaming.ID, found[0].ID)

			ledger, err := svc.CreateProject(ctx, models.Project{
				Title:        "Green Ledger",
				Description:  "traceability",
				BusinessIdea: "verify organic produce on-chain",
			})
			require.NoError(t, err)

			found, err = svc.SearchProjects(ctx, "ORGANIC")
			require.NoError(t, err)
			require.Len(t, found, 1, "business idea text is searched")
			assert.Equal(t, ledger.ID, found[0].ID)
		})
	}
}

func TestSearchFallsBackToSimilarProjects(t *testing.T) {
	ctx := context.Background()
	indexer := NewVectorIndexer(&wordEmbedder{}, memory.NewStorage(), DefaultSimilarityThreshold, logging.Discard())
	svc := NewProjectService(newFakeDurable(), caches.NewMemoryCache(), indexer, logging.Discard(), nil)

	ledger, err := svc.CreateProject(ctx, models.Project{
		Title:        "Green Ledger",
		Description:  "Traceability for growers",
		BusinessIdea: "verify organic farm produce on chain",
	})
	require.NoError(t, err)
	games, err := svc.CreateProject(ctx, models.Project{
		Title:        "Neural Gaming",
		BusinessIdea: "multiplayer game engine",
	})
	require.NoError(t, err)
	require.NoError(t, indexer.IndexProject(ctx, ledger))
	require.NoError(t, indexer.IndexProject(ctx, games))

	found, err := svc.SearchProjects(ctx, "organic farm produce")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, ledger.ID, found[0].ID)
}

func TestListProjects(t *testing.T) {
	ctx := context.Background()

	t.Run("durable list replaces local collection", func(t *testing.T) {
		svc, durable, local := newTestProjectService(t)
		require.NoError(t, local.Save(ctx, []models.Project{{ID: 1, Title: "stale"}}))
		now := time.Now().UTC()
		durable.put(models.Project{ID: 2, Title: "older", CreatedAt: now.Add(-time.Minute)})
		durable.put(models.Project{ID: 3, Title: "newer", CreatedAt: now})

		projects, err := svc.ListProjects(ctx)
		require.NoError(t, err)
		require.Len(t, projects, 2)
		assert.Equal(t, int64(3), projects[0].ID)
		assert.ElementsMatch(t, []int64{2, 3}, localIDs(t, local))
	})

	t.Run("empty durable list is answered locally", func(t *testing.T) {
		svc, _, local := newTestProjectService(t)
		require.NoError(t, local.Save(ctx, []models.Project{{ID: 1, Title: "written offline"}}))

		projects, err := svc.ListProjects(ctx)
		require.NoError(t, err)
		require.Len(t, projects, 1)
		assert.Equal(t, "written offline", projects[0].Title)
	})

	t.Run("durable failure is answered locally", func(t *testing.T) {
		svc, durable, local := newTestProjectService(t)
		require.NoError(t, local.Save(ctx, []models.Project{{ID: 1}, {ID: 2}}))
		durable.failOn("list", errBoom)

		projects, err := svc.ListProjects(ctx)
		require.NoError(t, err)
		assert.Len(t, projects, 2)
	})
}

func TestTransitionStatus(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestProjectService(t)

	p, err := svc.CreateProject(ctx, models.Project{Title: "Lifecycle"})
	require.NoError(t, err)

	_, err = svc.TransitionStatus(ctx, p.ID, models.StatusActive)
	assert.ErrorIs(t, err, models.ErrInvalidTransition, "activation only happens through analysis")
	_, err = svc.TransitionStatus(ctx, p.ID, models.StatusFunded)
	assert.ErrorIs(t, err, models.ErrInvalidTransition)
	_, err = svc.TransitionStatus(ctx, p.ID, "archived")
	assert.ErrorIs(t, err, models.ErrInvalidTransition)

	p.Status = models.StatusActive
	_, err = svc.UpdateProject(ctx, p)
	require.NoError(t, err)

	funded, err := svc.TransitionStatus(ctx, p.ID, models.StatusFunded)
	require.NoError(t, err)
	assert.Equal(t, models.StatusFunded, funded.Status)

	done, err := svc.TransitionStatus(ctx, p.ID, models.StatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, done.Status)

	_, err = svc.TransitionStatus(ctx, p.ID, models.StatusCancelled)
	assert.ErrorIs(t, err, models.ErrInvalidTransition)

	_, err = svc.TransitionStatus(ctx, 404, models.StatusFunded)
	assert.ErrorIs(t, err, ErrProjectNotFound)
}

func TestCountersAreNotLost(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestProjectService(t)
	p, err := svc.CreateProject(ctx, models.Project{Title: "Popular"})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.RecordView(ctx, p.ID)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	liked, err := svc.RecordLike(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(20), liked.ViewCount)
	assert.Equal(t, int64(1), liked.LikeCount)
}

func TestSyncLocalToDurable(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStorage()
	indexer := NewVectorIndexer(&wordEmbedder{}, store, DefaultSimilarityThreshold, logging.Discard())
	durable := newFakeDurable()
	svc := NewProjectService(durable, caches.NewMemoryCache(), indexer, logging.Discard(), nil)

	durable.setDown(true)
	a, err := svc.CreateProject(ctx, models.Project{Title: "Written offline A"})
	require.NoError(t, err)
	b, err := svc.CreateProject(ctx, models.Project{Title: "Written offline B"})
	require.NoError(t, err)

	_, err = svc.SyncLocalToDurable(ctx)
	assert.ErrorIs(t, err, ErrDurableUnavailable)

	durable.setDown(false)
	durable.put(*a)

	report, err := svc.SyncLocalToDurable(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Scanned)
	assert.Equal(t, 1, report.Inserted)
	assert.Equal(t, 1, report.Skipped)
	assert.Equal(t, 1, report.Indexed)
	assert.True(t, report.Success())

	exists, err := durable.ProjectExists(ctx, b.ID)
	require.NoError(t, err)
	assert.True(t, exists)
	assert.Equal(t, 1, store.Len())
}

func TestStatus(t *testing.T) {
	ctx := context.Background()

	svc := NewProjectService(repository.NewProjectRepository(nil), caches.NewMemoryCache(), nil, logging.Discard(), nil)
	st := svc.Status(ctx)
	assert.False(t, st.DurableConfigured)
	assert.False(t, st.DurableAvailable)
	assert.Equal(t, "MEMORY", st.Local.Name)

	svc2, durable, _ := newTestProjectService(t)
	_, err := svc2.CreateProject(ctx, models.Project{Title: "one"})
	require.NoError(t, err)
	durable.setDown(true)
	st = svc2.Status(ctx)
	assert.True(t, st.DurableConfigured)
	assert.False(t, st.DurableAvailable)
	assert.Equal(t, 1, st.LocalProjects)
}

func TestDurableStoreRecoversAfterStartupOutage(t *testing.T) {
	ctx := context.Background()
	svc, durable, _ := newTestProjectService(t)

	var prepares int
	var prepareErr error
	svc.SetDurablePrepare(func(context.Context) error {
		prepares++
		return prepareErr
	})

	durable.setDown(true)
	offline, err := svc.CreateProject(ctx, models.Project{Title: "Written offline"})
	require.NoError(t, err)
	assert.Zero(t, prepares, "not prepared while unreachable")

	durable.setDown(false)
	prepareErr = errBoom
	_, err = svc.CreateProject(ctx, models.Project{Title: "Schema missing"})
	require.NoError(t, err)
	assert.Zero(t, durable.callCount("create"), "unprepared store is not written")

	prepareErr = nil
	online, err := svc.CreateProject(ctx, models.Project{Title: "Written online"})
	require.NoError(t, err)
	assert.Equal(t, 1, durable.callCount("create"))
	assert.Equal(t, 2, prepares)

	got, err := durable.GetProject(ctx, online.ID)
	require.NoError(t, err)
	assert.Equal(t, "Written online", got.Title)

	_, err = svc.GetProject(ctx, offline.ID)
	require.NoError(t, err, "local tier still answers for records written offline")

	_, err = svc.ListProjects(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, prepares, "prepare runs once after success")
	assert.True(t, svc.Status(ctx).DurableAvailable)
}

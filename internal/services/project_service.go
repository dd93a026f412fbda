package services

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"

	"planner-service/internal/metrics"
	"planner-service/internal/models"
	"planner-service/internal/repository"
	"planner-service/internal/services/cache"
)

// DefaultProbeTimeout bounds the reachability check of the durable store.
const DefaultProbeTimeout = 2 * time.Second

// ProjectIndex is the part of the vector indexer the project service uses.
type ProjectIndex interface {
	IndexProject(ctx context.Context, p *models.Project) error
	SearchSimilar(ctx context.Context, query string, limit int) ([]SimilarProject, error)
	RemoveProject(ctx context.Context, projectID int64) error
}

// StorageStatus describes both storage tiers.
type StorageStatus struct {
	DurableConfigured bool             `json:"durable_configured"`
	DurableAvailable  bool             `json:"durable_available"`
	LocalProjects     int              `json:"local_projects"`
	Local             cache.LayerStats `json:"local"`
}

// ProjectService stores projects in the durable store when it is reachable
// and in the local cache otherwise. Durable writes are mirrored locally so
// the local tier can answer reads during an outage.
type ProjectService struct {
	durable      repository.ProjectRepository
	local        cache.ProjectCache
	index        ProjectIndex
	ids          *IDGenerator
	metrics      *metrics.Metrics
	logger       *slog.Logger
	probeTimeout time.Duration
	similarLimit int
	now          func() time.Time

	mu        sync.Mutex // local read-modify-write
	counterMu sync.Mutex

	prepare   func(ctx context.Context) error
	prepareMu sync.Mutex
	prepared  atomic.Bool
}

func NewProjectService(durable repository.ProjectRepository, local cache.ProjectCache, index ProjectIndex, logger *slog.Logger, m *metrics.Metrics) *ProjectService {
	return &ProjectService{
		durable:      durable,
		local:        local,
		index:        index,
		ids:          NewIDGenerator(),
		metrics:      m,
		logger:       logger,
		probeTimeout: DefaultProbeTimeout,
		similarLimit: DefaultSimilarLimit,
		now:          time.Now,
	}
}

func (s *ProjectService) SetProbeTimeout(d time.Duration) {
	if d > 0 {
		s.probeTimeout = d
	}
}

func (s *ProjectService) SetSimilarLimit(n int) {
	if n > 0 {
		s.similarLimit = n
	}
}

// SetDurablePrepare registers a step (typically the schema migration) that
// must succeed once before the durable store is used. It runs after the
// first successful probe and is retried on later probes until it succeeds.
func (s *ProjectService) SetDurablePrepare(fn func(ctx context.Context) error) {
	s.prepare = fn
}

func (s *ProjectService) durableAvailable(ctx context.Context) bool {
	if s.durable == nil {
		return false
	}
	pctx, cancel := context.WithTimeout(ctx, s.probeTimeout)
	defer cancel()

	err := s.durable.Ping(pctx)
	s.metrics.RecordDurableProbe(err == nil)
	if err != nil {
		if errors.Is(err, repository.ErrUnavailable) {
			s.logger.Debug("durable store not configured, using local cache")
		} else {
			s.logger.Warn("durable store unreachable, using local cache", "error", err)
		}
		return false
	}
	return s.ensurePrepared(ctx)
}

func (s *ProjectService) ensurePrepared(ctx context.Context) bool {
	if s.prepare == nil || s.prepared.Load() {
		return true
	}
	s.prepareMu.Lock()
	defer s.prepareMu.Unlock()
	if s.prepared.Load() {
		return true
	}
	if err := s.prepare(ctx); err != nil {
		s.logger.Warn("durable store not ready, using local cache", "error", err)
		s.metrics.RecordStoreFallback("prepare")
		return false
	}
	s.prepared.Store(true)
	s.logger.Info("durable store ready")
	return true
}

func (s *ProjectService) fallback(op string, err error) {
	s.logger.Warn("durable store operation failed, falling back to local cache", "operation", op, "error", err)
	s.metrics.RecordStoreFallback(op)
}

// ListProjects returns every project, newest first.
func (s *ProjectService) ListProjects(ctx context.Context) ([]models.Project, error) {
	if s.durableAvailable(ctx) {
		projects, err := s.durable.ListProjects(ctx)
		switch {
		case err != nil:
			s.fallback("list", err)
		case len(projects) > 0:
			s.replaceLocal(ctx, projects)
			return projects, nil
		}
	}

	projects, err := s.loadLocal(ctx)
	if err != nil {
		return nil, err
	}
	sortNewestFirst(projects)
	return projects, nil
}

func (s *ProjectService) GetProject(ctx context.Context, id int64) (*models.Project, error) {
	if s.durableAvailable(ctx) {
		p, err := s.durable.GetProject(ctx, id)
		if err == nil {
			return p, nil
		}
		if !errors.Is(err, repository.ErrNotFound) {
			s.fallback("get", err)
		}
	}

	projects, err := s.loadLocal(ctx)
	if err != nil {
		return nil, err
	}
	for i := range projects {
		if projects[i].ID == id {
			return &projects[i], nil
		}
	}
	return nil, ErrProjectNotFound
}

// CreateProject stores a new draft built from the given fields. Identity,
// timestamps, status and counters are assigned here.
func (s *ProjectService) CreateProject(ctx context.Context, draft models.Project) (*models.Project, error) {
	p := draft
	if strings.TrimSpace(p.Title) == "" {
		if strings.TrimSpace(p.BusinessIdea) == "" {
			return nil, errors.Wrap(ErrInvalidProject, "title or business idea is required")
		}
		p.Title = ExtractTitle(p.BusinessIdea)
	}
	if p.Stage == "" {
		p.Stage = models.StageIdea
	}
	if !p.Stage.Valid() {
		return nil, errors.Wrapf(ErrInvalidProject, "unknown stage %q", p.Stage)
	}
	if p.Tags == nil {
		p.Tags = []string{}
	}
	now := s.now().UTC()
	p.ID = s.ids.Next()
	p.Status = models.StatusDraft
	p.ViewCount, p.LikeCount, p.InvestmentCount = 0, 0, 0
	p.CreatedAt, p.UpdatedAt = now, now

	if s.durableAvailable(ctx) {
		err := s.durable.CreateProject(ctx, &p)
		if err == nil {
			s.mirror(ctx, p)
			return &p, nil
		}
		s.fallback("create", err)
	}

	if err := s.upsertLocal(ctx, p); err != nil {
		return nil, err
	}
	return &p, nil
}

// UpdateProject writes the whole project and refreshes updated_at. A
// project unknown to the local tier is appended there.
func (s *ProjectService) UpdateProject(ctx context.Context, project *models.Project) (*models.Project, error) {
	if project == nil || project.ID == 0 {
		return nil, errors.Wrap(ErrInvalidProject, "project id is required")
	}
	p := *project
	p.UpdatedAt = s.touch(project.UpdatedAt)
	if p.Tags == nil {
		p.Tags = []string{}
	}

	if s.durableAvailable(ctx) {
		err := s.durable.UpdateProject(ctx, &p)
		if err == nil {
			s.mirror(ctx, p)
			return &p, nil
		}
		s.fallback("update", err)
	}

	if err := s.upsertLocal(ctx, p); err != nil {
		return nil, err
	}
	return &p, nil
}

// DeleteProject removes the project from both tiers and drops its
// embeddings. Deleting an unknown id succeeds.
func (s *ProjectService) DeleteProject(ctx context.Context, id int64) error {
	if s.durableAvailable(ctx) {
		if err := s.durable.DeleteProject(ctx, id); err != nil {
			s.fallback("delete", err)
		}
	}

	s.mu.Lock()
	projects, err := s.local.Load(ctx)
	if err == nil {
		kept := projects[:0]
		for _, p := range projects {
			if p.ID != id {
				kept = append(kept, p)
			}
		}
		err = s.local.Save(ctx, kept)
		s.metrics.SetLocalProjects(len(kept))
	}
	s.mu.Unlock()
	if err != nil {
		return errors.Wrap(err, "remove project from local cache")
	}

	if s.index != nil {
		if err := s.index.RemoveProject(ctx, id); err != nil {
			s.logger.Warn("failed to remove project embeddings", "project_id", id, "error", err)
		}
	}
	return nil
}

// SearchProjects matches the query against title and description. When
// the durable store has no substring match, similar projects found through
// the vector index are returned instead.
func (s *ProjectService) SearchProjects(ctx context.Context, query string) ([]models.Project, error) {
	query = strings.TrimSpace(query)

	if s.durableAvailable(ctx) {
		found, err := s.durable.SearchProjects(ctx, query)
		if err != nil {
			s.fallback("search", err)
		} else if len(found) > 0 {
			return found, nil
		} else if similar := s.searchSimilar(ctx, query); len(similar) > 0 {
			return similar, nil
		}
	}

	projects, err := s.loadLocal(ctx)
	if err != nil {
		return nil, err
	}
	needle := strings.ToLower(query)
	out := make([]models.Project, 0)
	for _, p := range projects {
		if matchesText(&p, needle) {
			out = append(out, p)
		}
	}
	sortNewestFirst(out)
	return out, nil
}

// matchesText reports whether the lowercase needle occurs in the title,
// description or business idea.
func matchesText(p *models.Project, needle string) bool {
	return strings.Contains(strings.ToLower(p.Title), needle) ||
		strings.Contains(strings.ToLower(p.Description), needle) ||
		strings.Contains(strings.ToLower(p.BusinessIdea), needle)
}

func (s *ProjectService) searchSimilar(ctx context.Context, query string) []models.Project {
	if s.index == nil || query == "" {
		return nil
	}
	matches, err := s.index.SearchSimilar(ctx, query, s.similarLimit)
	if err != nil {
		s.logger.Warn("similarity search failed", "error", err)
		return nil
	}
	if len(matches) == 0 {
		return nil
	}
	ids := make([]int64, len(matches))
	for i, m := range matches {
		ids[i] = m.ProjectID
	}
	found, err := s.durable.GetProjectsByIDs(ctx, ids)
	if err != nil {
		s.fallback("search", err)
		return nil
	}

	byID := make(map[int64]models.Project, len(found))
	for _, p := range found {
		byID[p.ID] = p
	}
	out := make([]models.Project, 0, len(found))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			out = append(out, p)
		}
	}
	return out
}

// TransitionStatus moves a project along its lifecycle. Activation only
// happens through analysis.
func (s *ProjectService) TransitionStatus(ctx context.Context, id int64, next models.Status) (*models.Project, error) {
	if !next.Valid() || next == models.StatusDraft || next == models.StatusActive {
		return nil, errors.Wrapf(models.ErrInvalidTransition, "cannot set status %q directly", next)
	}
	p, err := s.GetProject(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Status == next {
		return p, nil
	}
	if !p.Status.CanTransitionTo(next) {
		return nil, errors.Wrapf(models.ErrInvalidTransition, "%s -> %s", p.Status, next)
	}
	p.Status = next
	return s.UpdateProject(ctx, p)
}

func (s *ProjectService) RecordView(ctx context.Context, id int64) (*models.Project, error) {
	return s.bump(ctx, id, func(p *models.Project) { p.ViewCount++ })
}

func (s *ProjectService) RecordLike(ctx context.Context, id int64) (*models.Project, error) {
	return s.bump(ctx, id, func(p *models.Project) { p.LikeCount++ })
}

func (s *ProjectService) bump(ctx context.Context, id int64, apply func(p *models.Project)) (*models.Project, error) {
	s.counterMu.Lock()
	defer s.counterMu.Unlock()

	p, err := s.GetProject(ctx, id)
	if err != nil {
		return nil, err
	}
	apply(p)
	return s.UpdateProject(ctx, p)
}

// SyncLocalToDurable copies projects that only exist locally into the
// durable store and indexes them.
func (s *ProjectService) SyncLocalToDurable(ctx context.Context) (*metrics.SyncReport, error) {
	if !s.durableAvailable(ctx) {
		return nil, ErrDurableUnavailable
	}
	projects, err := s.loadLocal(ctx)
	if err != nil {
		return nil, err
	}

	report := metrics.NewSyncReport()
	for i := range projects {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		p := projects[i]
		report.Scanned++

		exists, err := s.durable.ProjectExists(ctx, p.ID)
		if err != nil {
			report.Failed++
			s.logger.Warn("sync: existence check failed", "project_id", p.ID, "error", err)
			continue
		}
		if exists {
			report.Skipped++
			continue
		}
		if err := s.durable.CreateProject(ctx, &p); err != nil {
			report.Failed++
			s.logger.Warn("sync: insert failed", "project_id", p.ID, "error", err)
			continue
		}
		report.Inserted++

		if s.index != nil {
			if err := s.index.IndexProject(ctx, &p); err != nil {
				s.metrics.RecordIndexFailure()
				s.logger.Warn("sync: indexing failed", "project_id", p.ID, "error", err)
				continue
			}
			report.Indexed++
		}
	}
	report.Finish()
	s.logger.Info("local cache synced to durable store", "summary", report.GetSummary())
	return report, nil
}

func (s *ProjectService) Status(ctx context.Context) StorageStatus {
	st := StorageStatus{Local: s.local.GetStats()}
	if s.durable != nil {
		pctx, cancel := context.WithTimeout(ctx, s.probeTimeout)
		err := s.durable.Ping(pctx)
		cancel()
		st.DurableConfigured = !errors.Is(err, repository.ErrUnavailable)
		st.DurableAvailable = err == nil && s.ensurePrepared(ctx)
	}
	if projects, err := s.loadLocal(ctx); err == nil {
		st.LocalProjects = len(projects)
	}
	return st
}

func (s *ProjectService) loadLocal(ctx context.Context) ([]models.Project, error) {
	projects, err := s.local.Load(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "load local cache")
	}
	for _, p := range projects {
		s.ids.Observe(p.ID)
	}
	s.metrics.SetLocalProjects(len(projects))
	return projects, nil
}

func (s *ProjectService) upsertLocal(ctx context.Context, p models.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	projects, err := s.local.Load(ctx)
	if err != nil {
		return errors.Wrap(err, "load local cache")
	}
	replaced := false
	for i := range projects {
		if projects[i].ID == p.ID {
			projects[i] = p
			replaced = true
			break
		}
	}
	if !replaced {
		projects = append(projects, p)
	}
	if err := s.local.Save(ctx, projects); err != nil {
		return errors.Wrap(err, "save local cache")
	}
	s.metrics.SetLocalProjects(len(projects))
	return nil
}

// mirror copies a durable write into the local tier. The durable store
// already holds the data, so a local failure is only logged.
func (s *ProjectService) mirror(ctx context.Context, p models.Project) {
	if err := s.upsertLocal(ctx, p); err != nil {
		s.logger.Warn("failed to mirror project into local cache", "project_id", p.ID, "error", err)
	}
}

func (s *ProjectService) replaceLocal(ctx context.Context, projects []models.Project) {
	s.mu.Lock()
	err := s.local.Save(ctx, projects)
	s.mu.Unlock()
	if err != nil {
		s.logger.Warn("failed to refresh local cache", "error", err)
		return
	}
	for _, p := range projects {
		s.ids.Observe(p.ID)
	}
	s.metrics.SetLocalProjects(len(projects))
}

// touch returns the new updated_at, never earlier than prev.
func (s *ProjectService) touch(prev time.Time) time.Time {
	now := s.now().UTC()
	if now.Before(prev) {
		return prev
	}
	return now
}

func sortNewestFirst(projects []models.Project) {
	sort.SliceStable(projects, func(i, j int) bool {
		return projects[i].CreatedAt.After(projects[j].CreatedAt)
	})
}

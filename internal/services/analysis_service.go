package services

import (
	"context"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"planner-service/internal/generation"
	"planner-service/internal/metrics"
	"planner-service/internal/models"
)

const (
	// MaxAnalysisParallel is the number of facets generated at once.
	MaxAnalysisParallel = 8

	maxTitleLen       = 50
	titleWords        = 5
	maxDescriptionLen = 200
)

// ProjectStore is the project storage the analysis and export services need.
type ProjectStore interface {
	GetProject(ctx context.Context, id int64) (*models.Project, error)
	CreateProject(ctx context.Context, draft models.Project) (*models.Project, error)
	UpdateProject(ctx context.Context, p *models.Project) (*models.Project, error)
}

// Indexer makes analysed projects searchable.
type Indexer interface {
	IndexProject(ctx context.Context, p *models.Project) error
}

// AnalysisService generates every analysis facet of a project concurrently
// and stores the enriched project in one write.
type AnalysisService struct {
	projects ProjectStore
	provider generation.Provider
	indexer  Indexer
	parallel int
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

func NewAnalysisService(projects ProjectStore, provider generation.Provider, indexer Indexer, logger *slog.Logger, m *metrics.Metrics) *AnalysisService {
	return &AnalysisService{
		projects: projects,
		provider: provider,
		indexer:  indexer,
		parallel: MaxAnalysisParallel,
		metrics:  m,
		logger:   logger,
	}
}

// SetParallelism limits how many facets are generated at once.
func (s *AnalysisService) SetParallelism(n int) {
	if n >= 1 && n <= MaxAnalysisParallel {
		s.parallel = n
	}
}

// AnalyzeProject runs the full analysis of a stored project. Provider
// failures never fail the analysis; they surface as fallback facets.
// Indexing happens after the write and its failure is only logged.
func (s *AnalysisService) AnalyzeProject(ctx context.Context, id int64) (*models.Project, error) {
	timings := metrics.NewAnalysisTimings(id)

	project, err := s.projects.GetProject(ctx, id)
	if err != nil {
		s.metrics.RecordAnalysis(false, timings.Finalize())
		return nil, err
	}
	pc := generation.ContextFromProject(project)
	withMVP := pc.Stage == models.StageIdea

	var (
		swot        *models.SWOTAnalysis
		market      *models.MarketResearch
		financial   *models.FinancialProjections
		competitive *models.CompetitiveAnalysis
		tokenomics  *models.Tokenomics
		deck        *models.PitchDeck
		mvp         *models.MVPPlan
		score       float64
	)

	var g errgroup.Group
	g.SetLimit(s.parallel)
	run := func(facet generation.Facet, fn func()) {
		g.Go(func() error {
			d := timings.Track(string(facet), fn)
			s.metrics.ObserveFacet(string(facet), d)
			return nil
		})
	}
	run(generation.FacetSWOT, func() { swot = s.provider.AnalyzeIdea(ctx, pc) })
	run(generation.FacetMarket, func() { market = s.provider.MarketResearch(ctx, pc) })
	run(generation.FacetFinancial, func() { financial = s.provider.FinancialProjections(ctx, pc) })
	run(generation.FacetCompetitive, func() { competitive = s.provider.CompetitiveAnalysis(ctx, pc) })
	run(generation.FacetTokenomics, func() { tokenomics = s.provider.Tokenomics(ctx, pc) })
	run(generation.FacetPitchDeck, func() { deck = s.provider.PitchDeck(ctx, pc) })
	if withMVP {
		run(generation.FacetMVPPlan, func() { mvp = s.provider.MVPPlan(ctx, pc) })
	}
	run(generation.FacetScore, func() { score = s.provider.Score(ctx, pc) })
	_ = g.Wait()

	merged := *project
	merged.AIAnalysis = swot
	merged.MarketResearch = market
	merged.FinancialProjections = financial
	merged.CompetitiveAnalysis = competitive
	merged.Tokenomics = tokenomics
	merged.PitchDeckData = keepExportLink(deck, project.PitchDeckURL)
	merged.MVPPlan = mvp // nil past the idea stage
	merged.AIScore = &score
	if merged.TokenSymbol == "" {
		merged.TokenSymbol = pc.TokenSymbol
	}
	if merged.Status == "" || merged.Status == models.StatusDraft {
		merged.Status = models.StatusActive
	}

	updated, err := s.projects.UpdateProject(ctx, &merged)
	if err != nil {
		s.metrics.RecordAnalysis(false, timings.Finalize())
		return nil, errors.Wrapf(err, "store analysis of project %d", id)
	}

	if s.indexer != nil {
		if err := s.indexer.IndexProject(ctx, updated); err != nil {
			s.metrics.RecordIndexFailure()
			s.logger.Error("failed to index analysed project", "project_id", id, "error", err)
		}
	}

	d := timings.Finalize()
	s.metrics.RecordAnalysis(true, d)
	slowest, slowestMs := timings.Slowest()
	s.logger.Info("project analysed",
		append(timings.LogAttrs(), "slowest", slowest, "slowest_ms", slowestMs, "provider", s.provider.Name())...)
	return updated, nil
}

// SubmitIdea creates a draft project from a free-text idea and analyses it.
func (s *AnalysisService) SubmitIdea(ctx context.Context, idea, userID string) (*models.Project, error) {
	idea = strings.TrimSpace(idea)
	if idea == "" {
		return nil, ErrEmptyIdea
	}
	draft := models.Project{
		UserID:       userID,
		Title:        ExtractTitle(idea),
		Description:  truncateRunes(idea, maxDescriptionLen),
		BusinessIdea: idea,
		Status:       models.StatusDraft,
		Stage:        models.StageIdea,
	}
	created, err := s.projects.CreateProject(ctx, draft)
	if err != nil {
		return nil, errors.Wrap(err, "create draft project")
	}
	s.logger.Info("idea submitted", "project_id", created.ID, "user_id", userID)
	return s.AnalyzeProject(ctx, created.ID)
}

// ExtractTitle derives a short title from an idea: its first sentence, cut
// to the first five words when the sentence is long.
func ExtractTitle(idea string) string {
	idea = strings.TrimSpace(idea)
	title := idea
	if i := strings.IndexAny(idea, ".!?"); i >= 0 {
		title = strings.TrimSpace(idea[:i])
	}
	if title == "" {
		title = strings.TrimSpace(strings.Trim(idea, ".!? "))
	}
	if title == "" {
		return "Untitled project"
	}
	if utf8.RuneCountInString(title) <= maxTitleLen {
		return title
	}
	words := strings.Fields(title)
	if len(words) > titleWords {
		return strings.Join(words[:titleWords], " ") + "..."
	}
	return strings.Join(words, " ")
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

// keepExportLink carries the link of an earlier export over to a freshly
// generated deck.
func keepExportLink(deck *models.PitchDeck, url string) *models.PitchDeck {
	if deck == nil || url == "" {
		return deck
	}
	if deck.DownloadURL == "" || deck.DownloadURL == "#" {
		deck.DownloadURL = url
	}
	return deck
}

// Package generation produces the analysis facets of a project. Every
// provider call resolves: failures are answered with fallback data.
package generation

import (
	"context"
	"log/slog"
	"math"

	"planner-service/internal/metrics"
	"planner-service/internal/models"
	"planner-service/internal/openai"
)

// Facet names one kind of generated analysis.
type Facet string

const (
	FacetSWOT        Facet = "swot"
	FacetMarket      Facet = "market_research"
	FacetFinancial   Facet = "financial_projections"
	FacetCompetitive Facet = "competitive_analysis"
	FacetTokenomics  Facet = "tokenomics"
	FacetPitchDeck   Facet = "pitch_deck"
	FacetMVPPlan     Facet = "mvp_plan"
	FacetScore       Facet = "score"
)

const (
	// MockScore is returned when no live provider is configured.
	MockScore = 7.5
	// FailureScore is returned when a configured provider fails to score.
	FailureScore = 5.0

	minScore = 1.0
	maxScore = 10.0
)

// Provider generates analysis facets for a project. Implementations never
// fail: when generation is impossible they return fallback data.
type Provider interface {
	Name() string
	AnalyzeIdea(ctx context.Context, pc ProjectContext) *models.SWOTAnalysis
	MarketResearch(ctx context.Context, pc ProjectContext) *models.MarketResearch
	FinancialProjections(ctx context.Context, pc ProjectContext) *models.FinancialProjections
	CompetitiveAnalysis(ctx context.Context, pc ProjectContext) *models.CompetitiveAnalysis
	Tokenomics(ctx context.Context, pc ProjectContext) *models.Tokenomics
	PitchDeck(ctx context.Context, pc ProjectContext) *models.PitchDeck
	MVPPlan(ctx context.Context, pc ProjectContext) *models.MVPPlan
	Score(ctx context.Context, pc ProjectContext) float64
}

// ProjectContext is the part of a project that prompts are built from.
type ProjectContext struct {
	Title          string
	Description    string
	BusinessIdea   string
	Industry       string
	TargetAudience string
	Budget         string
	Monetization   string
	Stage          models.Stage
	TokenSymbol    string
}

// ContextFromProject extracts the prompt inputs of p. A missing token
// symbol is derived from the title.
func ContextFromProject(p *models.Project) ProjectContext {
	symbol := p.TokenSymbol
	if symbol == "" {
		symbol = GenerateTokenSymbol(p.Title)
	}
	stage := p.Stage
	if stage == "" {
		stage = models.StageIdea
	}
	return ProjectContext{
		Title:          p.Title,
		Description:    p.Description,
		BusinessIdea:   p.BusinessIdea,
		Industry:       p.Industry,
		TargetAudience: p.TargetAudience,
		Budget:         p.Budget,
		Monetization:   p.Monetization,
		Stage:          stage,
		TokenSymbol:    symbol,
	}
}

// New picks the provider once from configuration: without an API client
// every facet comes from the mock provider.
func New(client *openai.Client, logger *slog.Logger, m *metrics.Metrics) Provider {
	if client == nil {
		logger.Warn("generation provider not configured, using mock data")
		return NewMockProvider()
	}
	return NewLiveProvider(client, logger, m)
}

// NormalizeScore clamps s into [1, 10] and rounds it to one decimal.
func NormalizeScore(s float64) float64 {
	if math.IsNaN(s) {
		return FailureScore
	}
	s = math.Max(minScore, math.Min(maxScore, s))
	return math.Round(s*10) / 10
}

package generation

import (
	"context"
	"encoding/json"
	"log/slog"
	"reflect"
	"time"

	"github.com/pkg/errors"

	"planner-service/internal/metrics"
	"planner-service/internal/models"
)

// Completer asks a chat model for a JSON object.
type Completer interface {
	CompleteJSON(ctx context.Context, system, user string) (string, error)
}

// LiveProvider generates facets with a chat model. Any failure is logged,
// counted and answered with the mock payload of the facet.
type LiveProvider struct {
	chat     Completer
	fallback *MockProvider
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

func NewLiveProvider(chat Completer, logger *slog.Logger, m *metrics.Metrics) *LiveProvider {
	return &LiveProvider{
		chat:     chat,
		fallback: NewMockProvider(),
		logger:   logger,
		metrics:  m,
	}
}

func (p *LiveProvider) Name() string { return "live" }

func (p *LiveProvider) AnalyzeIdea(ctx context.Context, pc ProjectContext) *models.SWOTAnalysis {
	return generate(ctx, p, FacetSWOT, pc, mockSWOT)
}

func (p *LiveProvider) MarketResearch(ctx context.Context, pc ProjectContext) *models.MarketResearch {
	return generate(ctx, p, FacetMarket, pc, mockMarketResearch)
}

func (p *LiveProvider) FinancialProjections(ctx context.Context, pc ProjectContext) *models.FinancialProjections {
	return generate(ctx, p, FacetFinancial, pc, mockFinancials)
}

func (p *LiveProvider) CompetitiveAnalysis(ctx context.Context, pc ProjectContext) *models.CompetitiveAnalysis {
	return generate(ctx, p, FacetCompetitive, pc, mockCompetitive)
}

func (p *LiveProvider) Tokenomics(ctx context.Context, pc ProjectContext) *models.Tokenomics {
	return generate(ctx, p, FacetTokenomics, pc, func() *models.Tokenomics {
		return mockTokenomics(pc.TokenSymbol)
	})
}

func (p *LiveProvider) PitchDeck(ctx context.Context, pc ProjectContext) *models.PitchDeck {
	deck := generate(ctx, p, FacetPitchDeck, pc, mockPitchDeck)
	if deck.DownloadURL == "" {
		deck.DownloadURL = "#"
	}
	return deck
}

func (p *LiveProvider) MVPPlan(ctx context.Context, pc ProjectContext) *models.MVPPlan {
	return generate(ctx, p, FacetMVPPlan, pc, mockMVPPlan)
}

// Score asks for a 1-10 score. A failed call yields FailureScore, which is
// deliberately different from the mock provider's MockScore.
func (p *LiveProvider) Score(ctx context.Context, pc ProjectContext) float64 {
	var out struct {
		Score *float64 `json:"score"`
	}
	err := p.complete(ctx, FacetScore, pc, &out)
	if err == nil && out.Score == nil {
		err = errors.New("score missing from response")
	}
	if err != nil {
		p.logger.Warn("scoring failed, using neutral score", "error", err, "score", FailureScore)
		p.metrics.RecordProviderFallback(string(FacetScore))
		return FailureScore
	}
	return NormalizeScore(*out.Score)
}

func generate[T any](ctx context.Context, p *LiveProvider, facet Facet, pc ProjectContext, fallback func() *T) *T {
	out := new(T)
	if err := p.complete(ctx, facet, pc, out); err != nil {
		p.logger.Warn("generation failed, using mock data", "facet", facet, "error", err)
		p.metrics.RecordProviderFallback(string(facet))
		return fallback()
	}
	if reflect.ValueOf(out).Elem().IsZero() {
		p.logger.Warn("generation returned an empty payload, using mock data", "facet", facet)
		p.metrics.RecordProviderFallback(string(facet))
		return fallback()
	}
	return out
}

func (p *LiveProvider) complete(ctx context.Context, facet Facet, pc ProjectContext, out any) error {
	system, user := buildPrompt(facet, pc)
	start := time.Now()
	content, err := p.chat.CompleteJSON(ctx, system, user)
	p.logger.Debug("facet generated", "facet", facet, "duration", time.Since(start))
	if err != nil {
		return errors.Wrapf(err, "generate %s", facet)
	}
	if err := json.Unmarshal([]byte(content), out); err != nil {
		return errors.Wrapf(err, "decode %s", facet)
	}
	return nil
}

package generation

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"planner-service/internal/logging"
	"planner-service/internal/models"
)

type fakeCompleter struct {
	mu        sync.Mutex
	responses map[string]string
	err       error
	prompts   []string
}

func (f *fakeCompleter) CompleteJSON(_ context.Context, system, user string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, user)
	if f.err != nil {
		return "", f.err
	}
	for marker, resp := range f.responses {
		if strings.Contains(system, marker) {
			return resp, nil
		}
	}
	return "not json", nil
}

func testContext() ProjectContext {
	return ContextFromProject(&models.Project{
		Title:        "Smart Coffee Bot",
		Description:  "Coffee ordering inside Telegram",
		BusinessIdea: "Let people pre-order coffee from a Telegram bot",
		Stage:        models.StageIdea,
	})
}

func TestNewWithoutClientUsesMock(t *testing.T) {
	p := New(nil, logging.Discard(), nil)
	assert.Equal(t, "mock", p.Name())
	assert.Equal(t, MockScore, p.Score(context.Background(), testContext()))
}

func TestMockProviderFillsEveryFacet(t *testing.T) {
	ctx := context.Background()
	p := NewMockProvider()
	pc := testContext()

	assert.NotEmpty(t, p.AnalyzeIdea(ctx, pc).Summary)
	assert.Len(t, p.FinancialProjections(ctx, pc).Revenue, 5)
	assert.Len(t, p.CompetitiveAnalysis(ctx, pc).Competitors, 3)
	assert.Equal(t, "SCB", p.Tokenomics(ctx, pc).TokenBasics.Symbol)
	assert.Equal(t, "#", p.PitchDeck(ctx, pc).DownloadURL)
	assert.NotEmpty(t, p.MVPPlan(ctx, pc).Features)
	assert.NotEmpty(t, p.MarketResearch(ctx, pc).Trends)

	first := p.AnalyzeIdea(ctx, pc)
	first.Strengths[0] = "changed"
	assert.NotEqual(t, "changed", p.AnalyzeIdea(ctx, pc).Strengths[0], "payloads are not shared")
}

func TestLiveProviderDecodesResponses(t *testing.T) {
	chat := &fakeCompleter{responses: map[string]string{
		"business ideas":      `{"summary":"Strong niche","strengths":["fast"],"weaknesses":[],"opportunities":[],"threats":[]}`,
		"startup evaluation":  `{"score": 8.26}`,
		"competitive":         `{"competitors":[{"name":"Starbucks","marketShare":40}],"projectAdvantages":["speed"],"marketSharePotential":5,"entryBarriers":[]}`,
		"tokenomics":          `{"tokenBasics":{"name":"Coffee","symbol":"SCB","totalSupply":1000,"decimals":18,"initialPrice":"0.01"}}`,
		"pitch decks":         `{"slides":[{"title":"Problem","content":"Queues"}]}`,
	}}
	p := NewLiveProvider(chat, logging.Discard(), nil)
	ctx := context.Background()
	pc := testContext()

	assert.Equal(t, "Strong niche", p.AnalyzeIdea(ctx, pc).Summary)
	assert.Equal(t, 8.3, p.Score(ctx, pc))
	assert.Equal(t, "Starbucks", p.CompetitiveAnalysis(ctx, pc).Competitors[0].Name)
	assert.Equal(t, "Coffee", p.Tokenomics(ctx, pc).TokenBasics.Name)

	deck := p.PitchDeck(ctx, pc)
	assert.Equal(t, "Queues", deck.Slides[0].Content)
	assert.Equal(t, "#", deck.DownloadURL)
}

func TestLiveProviderFallsBackOnMalformedResponse(t *testing.T) {
	p := NewLiveProvider(&fakeCompleter{}, logging.Discard(), nil)
	ctx := context.Background()

	assert.Equal(t, mockMarketResearch(), p.MarketResearch(ctx, testContext()))
	assert.Equal(t, FailureScore, p.Score(ctx, testContext()))
}

func TestLiveProviderFallsBackOnEmptyObject(t *testing.T) {
	chat := &fakeCompleter{responses: map[string]string{"MVP": `{}`, "startup evaluation": `{}`}}
	p := NewLiveProvider(chat, logging.Discard(), nil)

	assert.Equal(t, mockMVPPlan(), p.MVPPlan(context.Background(), testContext()))
	assert.Equal(t, FailureScore, p.Score(context.Background(), testContext()))
}

func TestLiveProviderFallsBackOnError(t *testing.T) {
	p := NewLiveProvider(&fakeCompleter{err: errors.New("timeout")}, logging.Discard(), nil)
	ctx := context.Background()
	pc := testContext()

	assert.Equal(t, mockSWOT(), p.AnalyzeIdea(ctx, pc))
	assert.Equal(t, mockFinancials(), p.FinancialProjections(ctx, pc))
	assert.Equal(t, "SCB", p.Tokenomics(ctx, pc).TokenBasics.Symbol)
	assert.Equal(t, FailureScore, p.Score(ctx, pc))
	assert.NotEqual(t, MockScore, FailureScore)
}

func TestScoreIsAlwaysInRange(t *testing.T) {
	for raw, want := range map[string]float64{
		`{"score": 42}`:    10,
		`{"score": -3}`:    1,
		`{"score": 0}`:     1,
		`{"score": 6.449}`: 6.4,
		`{"score": 9.96}`:  10,
	} {
		p := NewLiveProvider(&fakeCompleter{responses: map[string]string{"startup": raw}}, logging.Discard(), nil)
		got := p.Score(context.Background(), testContext())
		assert.Equal(t, want, got, raw)
		assert.GreaterOrEqual(t, got, 1.0)
		assert.LessOrEqual(t, got, 10.0)
	}
}

func TestPromptsCarryProjectContext(t *testing.T) {
	chat := &fakeCompleter{err: errors.New("offline")}
	p := NewLiveProvider(chat, logging.Discard(), nil)
	pc := testContext()
	pc.Budget = "$20k"

	p.FinancialProjections(context.Background(), pc)
	p.Tokenomics(context.Background(), pc)

	require.Len(t, chat.prompts, 2)
	assert.Contains(t, chat.prompts[0], "Budget: $20k")
	assert.Contains(t, chat.prompts[0], "Monetization model: Not specified")
	assert.Contains(t, chat.prompts[1], `"symbol": "SCB"`)
	assert.Contains(t, chat.prompts[1], `"bonus": "xx%"`)
}

func TestGenerateTokenSymbol(t *testing.T) {
	cases := map[string]string{
		"":                       "TKN",
		"   ":                    "TKN",
		"Smart Coffee Bot":       "SCB",
		"Smart coffee bot extra": "SCB",
		"Coffee bot":             "CBO",
		"Coffee b":               "CB",
		"coffee":                 "COF",
		"ai":                     "AI",
		"Кофе бот":               "КБО",
	}
	for title, want := range cases {
		assert.Equal(t, want, GenerateTokenSymbol(title), title)
	}
}

func TestContextFromProjectKeepsExplicitSymbol(t *testing.T) {
	pc := ContextFromProject(&models.Project{Title: "Coffee bot", TokenSymbol: "BREW"})
	assert.Equal(t, "BREW", pc.TokenSymbol)
	assert.Equal(t, models.StageIdea, pc.Stage)
}

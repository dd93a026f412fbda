package generation

import (
	"context"

	"planner-service/internal/models"
)

// MockProvider returns fixed illustrative payloads. It is used when no
// live provider is configured and as the fallback of the live provider.
type MockProvider struct{}

func NewMockProvider() *MockProvider {
	return &MockProvider{}
}

func (m *MockProvider) Name() string { return "mock" }

func (m *MockProvider) AnalyzeIdea(_ context.Context, _ ProjectContext) *models.SWOTAnalysis {
	return mockSWOT()
}

func (m *MockProvider) MarketResearch(_ context.Context, _ ProjectContext) *models.MarketResearch {
	return mockMarketResearch()
}

func (m *MockProvider) FinancialProjections(_ context.Context, _ ProjectContext) *models.FinancialProjections {
	return mockFinancials()
}

func (m *MockProvider) CompetitiveAnalysis(_ context.Context, _ ProjectContext) *models.CompetitiveAnalysis {
	return mockCompetitive()
}

func (m *MockProvider) Tokenomics(_ context.Context, pc ProjectContext) *models.Tokenomics {
	return mockTokenomics(pc.TokenSymbol)
}

func (m *MockProvider) PitchDeck(_ context.Context, _ ProjectContext) *models.PitchDeck {
	return mockPitchDeck()
}

func (m *MockProvider) MVPPlan(_ context.Context, _ ProjectContext) *models.MVPPlan {
	return mockMVPPlan()
}

func (m *MockProvider) Score(_ context.Context, _ ProjectContext) float64 {
	return MockScore
}

func mockSWOT() *models.SWOTAnalysis {
	return &models.SWOTAnalysis{
		Summary:       "Demo analysis of the project. Configure an API key to get a real analysis.",
		Strengths:     []string{"Innovative idea", "Potentially large market", "Low entry barriers"},
		Weaknesses:    []string{"Requires significant funding", "High competition"},
		Opportunities: []string{"Expansion to international markets", "Partnerships with large companies"},
		Threats:       []string{"Regulatory changes", "New competitors"},
	}
}

func mockMarketResearch() *models.MarketResearch {
	return &models.MarketResearch{
		MarketSize: models.MarketSize{
			Global: models.MarketValue{Value: 100, Unit: "bn $"},
			Target: models.MarketValue{Value: 10, Unit: "bn $"},
			CAGR:   15,
		},
		TargetAudience: models.AudienceProfile{
			Demographics:   "Men and women aged 25-45 with above-average income",
			Psychographics: "Tech-savvy, value convenience and innovation",
			Behaviors:      "Active users of mobile apps and online services",
		},
		Trends: []string{"Growth of mobile payments", "Demand for personalisation", "Focus on data security"},
	}
}

func mockFinancials() *models.FinancialProjections {
	return &models.FinancialProjections{
		Revenue:           []float64{100000, 500000, 2000000, 5000000, 10000000},
		Expenses:          []float64{200000, 400000, 1000000, 2000000, 4000000},
		Profit:            []float64{-100000, 100000, 1000000, 3000000, 6000000},
		BreakEvenPoint:    models.BreakEven{Months: 18, Revenue: 600000},
		InitialInvestment: 300000,
		ROI:               models.ROI{Year1: -0.3, Year3: 2.5, Year5: 10},
	}
}

func mockCompetitive() *models.CompetitiveAnalysis {
	return &models.CompetitiveAnalysis{
		Competitors: []models.Competitor{
			{
				Name:        "Competitor A",
				MarketShare: 30,
				Strengths:   []string{"Strong brand", "Large customer base"},
				Weaknesses:  []string{"Outdated technology", "High prices"},
			},
			{
				Name:        "Competitor B",
				MarketShare: 25,
				Strengths:   []string{"Innovative solutions", "Low prices"},
				Weaknesses:  []string{"Limited geographic presence", "Weak marketing"},
			},
			{
				Name:        "Competitor C",
				MarketShare: 15,
				Strengths:   []string{"Quality service", "Loyal customers"},
				Weaknesses:  []string{"Narrow product range", "Slow growth"},
			},
		},
		ProjectAdvantages:    []string{"Unique technology", "Better price/quality ratio", "Innovative approach", "Strong team"},
		MarketSharePotential: 20,
		EntryBarriers:        []string{"High development costs", "Competitor patents", "Regulatory requirements"},
	}
}

func mockTokenomics(symbol string) *models.Tokenomics {
	if symbol == "" {
		symbol = "DEMO"
	}
	return &models.Tokenomics{
		TokenBasics: models.TokenBasics{
			Name:         "Demo Token",
			Symbol:       symbol,
			TotalSupply:  100000000,
			Decimals:     18,
			InitialPrice: "0.05",
		},
		Distribution: map[string]models.Allocation{
			"publicSale": {
				Percentage: 40,
				Amount:     40000000,
				PriceTiers: []models.PriceTier{
					{Tier: "Early", Percentage: 10, Price: "0.03", Bonus: "30%"},
					{Tier: "Main", Percentage: 30, Price: "0.05", Bonus: "10%"},
				},
			},
			"team":        {Percentage: 20, Amount: 20000000, Vesting: "2 years with a 6-month cliff"},
			"development": {Percentage: 15, Amount: 15000000, Purpose: "Product and technology development"},
			"marketing":   {Percentage: 10, Amount: 10000000, Purpose: "Marketing and user acquisition"},
			"treasury":    {Percentage: 10, Amount: 10000000, Purpose: "Reserve fund for future investments"},
			"liquidity":   {Percentage: 5, Amount: 5000000, Purpose: "Exchange liquidity"},
		},
		UtilityMechanisms: []models.UtilityMechanism{
			{
				Type:        "Staking",
				Description: "Holders stake tokens to unlock additional benefits",
				Tiers: []models.UtilityTier{
					{Level: "Basic", Requirement: 1000, Benefits: []string{"5% discount", "Access to basic features"}},
					{Level: "Pro", Requirement: 10000, Benefits: []string{"15% discount", "Priority support", "Access to PRO features"}},
					{Level: "Business", Requirement: 100000, Benefits: []string{"30% discount", "Dedicated manager", "Full access"}},
				},
			},
			{
				Type:         "Governance",
				Description:  "Token holders vote on protocol changes",
				VotingPower:  "1 token = 1 vote",
				MinimumStake: 1000,
			},
		},
		GrowthIncentives: map[string]map[string]string{
			"userAcquisition": {
				"referralRewards": "50 " + symbol + " per invited user",
				"earlyAdopter":    "1000 " + symbol + " bonus for the first 10,000 users",
				"socialTasks":     "5-25 " + symbol + " for social media activity",
			},
		},
	}
}

func mockPitchDeck() *models.PitchDeck {
	return &models.PitchDeck{
		Slides: []models.Slide{
			{Title: "Problem", Content: "The problem the project solves"},
			{Title: "Solution", Content: "How the project solves it"},
			{Title: "Market", Content: "Market analysis and target audience"},
			{Title: "Business model", Content: "How the project makes money"},
			{Title: "Competition", Content: "Competitors and competitive advantages"},
			{Title: "Team", Content: "The people behind the project"},
			{Title: "Financials", Content: "Financial forecast and investment needs"},
			{Title: "Roadmap", Content: "Development plan"},
		},
		DownloadURL: "#",
	}
}

func mockMVPPlan() *models.MVPPlan {
	return &models.MVPPlan{
		Features: []models.Feature{
			{Name: "Sign-up and login", Description: "User registration and authentication", Priority: "High"},
			{Name: "Core functionality", Description: "The key product capability", Priority: "High"},
			{Name: "User profile", Description: "Profile page with settings", Priority: "Medium"},
			{Name: "Notifications", Description: "User notification system", Priority: "Low"},
		},
		Timeline: models.Timeline{
			Design:      "2 weeks",
			Development: "8 weeks",
			Testing:     "2 weeks",
			Launch:      "1 week",
		},
		Budget:    50000,
		Resources: models.Resources{Developers: 3, Designers: 1, ProjectManagers: 1},
		KPIs:      []string{"Sign-ups", "Active users", "Time on site", "Conversion"},
	}
}

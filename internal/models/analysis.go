package models

// SWOTAnalysis is the strengths/weaknesses/opportunities/threats facet.
type SWOTAnalysis struct {
	Summary       string   `json:"summary"`
	Strengths     []string `json:"strengths"`
	Weaknesses    []string `json:"weaknesses"`
	Opportunities []string `json:"opportunities"`
	Threats       []string `json:"threats"`
}

type MarketValue struct {
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
}

type MarketSize struct {
	Global MarketValue `json:"global"`
	Target MarketValue `json:"target"`
	CAGR   float64     `json:"cagr"`
}

type AudienceProfile struct {
	Demographics   string `json:"demographics"`
	Psychographics string `json:"psychographics"`
	Behaviors      string `json:"behaviors"`
}

// MarketResearch describes market size, audience and trends.
type MarketResearch struct {
	MarketSize     MarketSize      `json:"marketSize"`
	TargetAudience AudienceProfile `json:"targetAudience"`
	Trends         []string        `json:"trends"`
}

type BreakEven struct {
	Months  int     `json:"months"`
	Revenue float64 `json:"revenue"`
}

type ROI struct {
	Year1 float64 `json:"year1"`
	Year3 float64 `json:"year3"`
	Year5 float64 `json:"year5"`
}

// FinancialProjections holds five-year revenue, expense and profit series.
type FinancialProjections struct {
	Revenue           []float64 `json:"revenue"`
	Expenses          []float64 `json:"expenses"`
	Profit            []float64 `json:"profit"`
	BreakEvenPoint    BreakEven `json:"breakEvenPoint"`
	InitialInvestment float64   `json:"initialInvestment"`
	ROI               ROI       `json:"roi"`
}

type Competitor struct {
	Name        string   `json:"name"`
	MarketShare float64  `json:"marketShare"`
	Strengths   []string `json:"strengths"`
	Weaknesses  []string `json:"weaknesses"`
}

type CompetitiveAnalysis struct {
	Competitors          []Competitor `json:"competitors"`
	ProjectAdvantages    []string     `json:"projectAdvantages"`
	MarketSharePotential float64      `json:"marketSharePotential"`
	EntryBarriers        []string     `json:"entryBarriers"`
}

type TokenBasics struct {
	Name         string  `json:"name"`
	Symbol       string  `json:"symbol"`
	TotalSupply  float64 `json:"totalSupply"`
	Decimals     int     `json:"decimals"`
	InitialPrice string  `json:"initialPrice"`
}

type PriceTier struct {
	Tier       string  `json:"tier"`
	Percentage float64 `json:"percentage"`
	Price      string  `json:"price"`
	Bonus      string  `json:"bonus"`
}

// Allocation is one bucket of the token distribution (public sale, team,
// treasury and so on).
type Allocation struct {
	Percentage float64     `json:"percentage"`
	Amount     float64     `json:"amount"`
	Purpose    string      `json:"purpose,omitempty"`
	Vesting    string      `json:"vesting,omitempty"`
	PriceTiers []PriceTier `json:"priceTiers,omitempty"`
}

type UtilityTier struct {
	Level       string   `json:"level"`
	Requirement float64  `json:"requirement"`
	Benefits    []string `json:"benefits"`
}

type UtilityMechanism struct {
	Type         string        `json:"type"`
	Description  string        `json:"description"`
	Tiers        []UtilityTier `json:"tiers,omitempty"`
	VotingPower  string        `json:"votingPower,omitempty"`
	MinimumStake float64       `json:"minimumStake,omitempty"`
}

// Tokenomics is the token design facet.
type Tokenomics struct {
	TokenBasics       TokenBasics                  `json:"tokenBasics"`
	Distribution      map[string]Allocation        `json:"distribution"`
	UtilityMechanisms []UtilityMechanism           `json:"utilityMechanisms"`
	GrowthIncentives  map[string]map[string]string `json:"growthIncentives,omitempty"`
}

type Slide struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// PitchDeck is the slide outline. DownloadURL points at the exported plan
// once one has been produced.
type PitchDeck struct {
	Slides      []Slide `json:"slides"`
	DownloadURL string  `json:"downloadUrl"`
}

type Feature struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
}

type Timeline struct {
	Design      string `json:"design"`
	Development string `json:"development"`
	Testing     string `json:"testing"`
	Launch      string `json:"launch"`
}

type Resources struct {
	Developers      int `json:"developers"`
	Designers       int `json:"designers"`
	ProjectManagers int `json:"projectManagers"`
}

type MVPPlan struct {
	Features  []Feature `json:"features"`
	Timeline  Timeline  `json:"timeline"`
	Budget    float64   `json:"budget"`
	Resources Resources `json:"resources"`
	KPIs      []string  `json:"kpis"`
}

package generation

import (
	"fmt"
	"strings"
)

type contextField int

const (
	fieldIndustry contextField = iota
	fieldAudience
	fieldBudget
	fieldMonetization
	fieldStage
	fieldTokenSymbol
)

type prompt struct {
	system string
	task   string
	fields []contextField
	schema string
	footer string
}

const notSpecified = "Not specified"

var prompts = map[Facet]prompt{
	FacetSWOT: {
		system: "You are an expert in analysing business ideas and startups. Provide a structured analysis of the business idea as JSON.",
		task:   "Analyse the following business idea and provide a structured analysis:",
		fields: []contextField{fieldIndustry, fieldAudience},
		schema: `{
  "summary": "Short summary of the analysis",
  "strengths": ["Strength 1", "Strength 2"],
  "weaknesses": ["Weakness 1", "Weakness 2"],
  "opportunities": ["Opportunity 1", "Opportunity 2"],
  "threats": ["Threat 1", "Threat 2"]
}`,
	},
	FacetMarket: {
		system: "You are a market research expert. Provide a structured market analysis as JSON.",
		task:   "Research the market for the following project:",
		fields: []contextField{fieldIndustry, fieldAudience},
		schema: `{
  "marketSize": {
    "global": {"value": number, "unit": "bn $"},
    "target": {"value": number, "unit": "bn $"},
    "cagr": number
  },
  "targetAudience": {
    "demographics": "Demographics",
    "psychographics": "Psychographics",
    "behaviors": "Behaviours"
  },
  "trends": ["Trend 1", "Trend 2", "Trend 3"]
}`,
	},
	FacetFinancial: {
		system: "You are a financial analyst. Provide structured financial projections as JSON.",
		task:   "Create financial projections for the following project:",
		fields: []contextField{fieldIndustry, fieldBudget, fieldMonetization},
		schema: `{
  "revenue": [n1, n2, n3, n4, n5],
  "expenses": [n1, n2, n3, n4, n5],
  "profit": [n1, n2, n3, n4, n5],
  "breakEvenPoint": {"months": number, "revenue": number},
  "initialInvestment": number,
  "roi": {"year1": number, "year3": number, "year5": number}
}`,
		footer: "The revenue, expenses and profit arrays are forecasts for five consecutive years.",
	},
	FacetCompetitive: {
		system: "You are a competitive analysis expert. Provide a structured competitive analysis as JSON.",
		task:   "Perform a competitive analysis for the following project:",
		fields: []contextField{fieldIndustry},
		schema: `{
  "competitors": [
    {"name": "Competitor", "marketShare": number, "strengths": ["..."], "weaknesses": ["..."]}
  ],
  "projectAdvantages": ["Advantage 1", "Advantage 2", "Advantage 3", "Advantage 4"],
  "marketSharePotential": number,
  "entryBarriers": ["Barrier 1", "Barrier 2", "Barrier 3"]
}`,
		footer: "List exactly three competitors.",
	},
	FacetTokenomics: {
		system: "You are an expert in tokenomics and crypto-economics. Provide structured tokenomics as JSON.",
		task:   "Design the tokenomics for the following project:",
		fields: []contextField{fieldIndustry, fieldTokenSymbol},
		schema: `{
  "tokenBasics": {"name": "Token name", "symbol": "%s", "totalSupply": number, "decimals": 18, "initialPrice": "0.xxx"},
  "distribution": {
    "publicSale": {"percentage": number, "amount": number, "priceTiers": [
      {"tier": "Early", "percentage": number, "price": "0.xxx", "bonus": "xx%%"},
      {"tier": "Main", "percentage": number, "price": "0.xxx", "bonus": "xx%%"}
    ]},
    "team": {"percentage": number, "amount": number, "vesting": "vesting terms"},
    "development": {"percentage": number, "amount": number, "purpose": "purpose"},
    "marketing": {"percentage": number, "amount": number, "purpose": "purpose"},
    "treasury": {"percentage": number, "amount": number, "purpose": "purpose"},
    "liquidity": {"percentage": number, "amount": number, "purpose": "purpose"}
  },
  "utilityMechanisms": [
    {"type": "Staking", "description": "...", "tiers": [
      {"level": "Basic", "requirement": number, "benefits": ["..."]},
      {"level": "Pro", "requirement": number, "benefits": ["..."]},
      {"level": "Business", "requirement": number, "benefits": ["..."]}
    ]},
    {"type": "Governance", "description": "...", "votingPower": "...", "minimumStake": number}
  ],
  "growthIncentives": {
    "userAcquisition": {"referralRewards": "...", "earlyAdopter": "...", "socialTasks": "..."}
  }
}`,
		footer: "All numeric fields must be JSON numbers; prices are strings.",
	},
	FacetPitchDeck: {
		system: "You are an expert in startup pitch decks. Provide a structured pitch deck outline as JSON.",
		task:   "Create a pitch deck outline for the following project:",
		fields: []contextField{fieldIndustry, fieldAudience},
		schema: `{
  "slides": [
    {"title": "Slide title", "content": "Slide content"}
  ],
  "downloadUrl": "#"
}`,
	},
	FacetMVPPlan: {
		system: "You are an expert in building MVPs for startups. Provide a structured MVP plan as JSON.",
		task:   "Create an MVP plan for the following project:",
		fields: []contextField{fieldIndustry, fieldStage},
		schema: `{
  "features": [
    {"name": "Feature", "description": "Description", "priority": "High/Medium/Low"}
  ],
  "timeline": {"design": "x weeks", "development": "x weeks", "testing": "x weeks", "launch": "x weeks"},
  "budget": number,
  "resources": {"developers": number, "designers": number, "projectManagers": number},
  "kpis": ["KPI 1", "KPI 2", "KPI 3", "KPI 4"]
}`,
	},
	FacetScore: {
		system: "You are a startup evaluation expert. Give an objective score of the project from 1 to 10 with one decimal place.",
		task:   "Score the following project from 1 to 10 (one decimal place):",
		fields: []contextField{fieldIndustry, fieldAudience},
		schema: `{
  "score": number
}`,
	},
}

// buildPrompt renders the system and user messages for facet.
func buildPrompt(facet Facet, pc ProjectContext) (string, string) {
	p := prompts[facet]

	var b strings.Builder
	b.WriteString(p.task)
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "Project title: %s\n", pc.Title)
	fmt.Fprintf(&b, "Description: %s\n", pc.Description)
	fmt.Fprintf(&b, "Business idea: %s\n", pc.BusinessIdea)
	for _, f := range p.fields {
		switch f {
		case fieldIndustry:
			fmt.Fprintf(&b, "Industry: %s\n", orNotSpecified(pc.Industry))
		case fieldAudience:
			fmt.Fprintf(&b, "Target audience: %s\n", orNotSpecified(pc.TargetAudience))
		case fieldBudget:
			fmt.Fprintf(&b, "Budget: %s\n", orNotSpecified(pc.Budget))
		case fieldMonetization:
			fmt.Fprintf(&b, "Monetization model: %s\n", orNotSpecified(pc.Monetization))
		case fieldStage:
			fmt.Fprintf(&b, "Stage: %s\n", pc.Stage)
		case fieldTokenSymbol:
			fmt.Fprintf(&b, "Token symbol: %s\n", pc.TokenSymbol)
		}
	}

	schema := p.schema
	if facet == FacetTokenomics {
		schema = fmt.Sprintf(schema, pc.TokenSymbol)
	}
	b.WriteString("\nRespond with JSON in the following format:\n")
	b.WriteString(schema)
	b.WriteString("\n")
	if p.footer != "" {
		b.WriteString(p.footer)
		b.WriteString("\n")
	}
	return p.system, b.String()
}

func orNotSpecified(s string) string {
	if strings.TrimSpace(s) == "" {
		return notSpecified
	}
	return s
}

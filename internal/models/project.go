package models

import (
	"time"

	"gorm.io/datatypes"
)

// Project is a business idea and every artefact generated from it.
type Project struct {
	ID     int64  `json:"id" gorm:"primaryKey;autoIncrement:false"`
	UserID string `json:"user_id,omitempty" gorm:"index"`

	Title          string `json:"title" gorm:"not null"`
	Description    string `json:"description"`
	BusinessIdea   string `json:"business_idea" gorm:"type:text"`
	Industry       string `json:"industry,omitempty"`
	TargetAudience string `json:"target_audience,omitempty"`
	Budget         string `json:"budget,omitempty"`
	Monetization   string `json:"monetization,omitempty"`
	Stage          Stage  `json:"stage" gorm:"type:varchar(16);not null;default:idea"`
	Status         Status `json:"status" gorm:"type:varchar(16);not null;default:draft;index"`

	AIAnalysis           *SWOTAnalysis         `json:"ai_analysis,omitempty" gorm:"type:jsonb;serializer:json"`
	MarketResearch       *MarketResearch       `json:"market_research,omitempty" gorm:"type:jsonb;serializer:json"`
	FinancialProjections *FinancialProjections `json:"financial_projections,omitempty" gorm:"type:jsonb;serializer:json"`
	CompetitiveAnalysis  *CompetitiveAnalysis  `json:"competitive_analysis,omitempty" gorm:"type:jsonb;serializer:json"`
	Tokenomics           *Tokenomics           `json:"tokenomics,omitempty" gorm:"type:jsonb;serializer:json"`
	PitchDeckData        *PitchDeck            `json:"pitch_deck_data,omitempty" gorm:"type:jsonb;serializer:json"`
	MVPPlan              *MVPPlan              `json:"mvp_plan,omitempty" gorm:"type:jsonb;serializer:json"`
	AIScore              *float64              `json:"ai_score,omitempty"`

	InvestmentEnabled bool     `json:"investment_enabled"`
	FundingGoalTON    *float64 `json:"funding_goal_ton,omitempty"`
	FundingRaisedTON  *float64 `json:"funding_raised_ton,omitempty"`
	TokenSymbol       string   `json:"token_symbol,omitempty"`
	TokenPriceTON     *float64 `json:"token_price_ton,omitempty"`
	NFTCollectionID   string   `json:"nft_collection_id,omitempty"`

	PitchDeckURL string `json:"pitch_deck_url,omitempty"`
	DemoURL      string `json:"demo_url,omitempty"`
	WebsiteURL   string `json:"website_url,omitempty"`

	ViewCount       int64                       `json:"view_count"`
	LikeCount       int64                       `json:"like_count"`
	InvestmentCount int64                       `json:"investment_count"`
	Tags            datatypes.JSONSlice[string] `json:"tags" gorm:"type:jsonb"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime:false"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime:false;index"`
}

// HasCompleteAnalysis reports whether every facet expected for the
// project's stage has been attached. MVP plans are only produced for
// projects still at the idea stage.
func (p *Project) HasCompleteAnalysis() bool {
	complete := p.AIAnalysis != nil &&
		p.MarketResearch != nil &&
		p.FinancialProjections != nil &&
		p.CompetitiveAnalysis != nil &&
		p.Tokenomics != nil &&
		p.PitchDeckData != nil &&
		p.AIScore != nil
	if p.Stage == StageIdea {
		complete = complete && p.MVPPlan != nil
	}
	return complete
}

// HasAnyAnalysis reports whether at least one facet is attached.
func (p *Project) HasAnyAnalysis() bool {
	return p.AIAnalysis != nil ||
		p.MarketResearch != nil ||
		p.FinancialProjections != nil ||
		p.CompetitiveAnalysis != nil ||
		p.Tokenomics != nil ||
		p.PitchDeckData != nil ||
		p.MVPPlan != nil ||
		p.AIScore != nil
}

package models

import "time"

// Source is a grounding citation returned alongside generated text.
type Source struct {
	Title string `json:"title"`
	URI   string `json:"uri"`
}

// NewsAnalysis is the structured per-stock news analysis shape.
type NewsAnalysis struct {
	BiasReason          string   `json:"biasReason,omitempty"`
	PriceOutlook        string   `json:"priceOutlook,omitempty"`
	BuyRecommendations  []string `json:"buyRecommendations,omitempty"`
	SellRecommendations []string `json:"sellRecommendations,omitempty"`
	OverallSummary      string   `json:"overallSummary,omitempty"`
	Sources             []Source `json:"sources,omitempty"`
}

// SectorConcentration is one sector's share of active portfolio value.
type SectorConcentration struct {
	Sector     string  `json:"sector"`
	Percentage float64 `json:"percentage"`
}

// StockConcentration is one holding's share of active portfolio value.
type StockConcentration struct {
	Symbol     string  `json:"stockSymbol"`
	Percentage float64 `json:"percentage"`
}

// RiskAssessment is the portfolio risk analysis shape.
type RiskAssessment struct {
	RiskLevel           string                `json:"riskLevel"` // Low, Moderate, High
	AssessmentSummary   string                `json:"assessmentSummary"`
	SectorConcentration []SectorConcentration `json:"sectorConcentration,omitempty"`
	StockConcentration  []StockConcentration  `json:"stockConcentration,omitempty"`
}

// StockSuggestion is a single stock idea within a goal plan or screen result.
type StockSuggestion struct {
	Symbol       string  `json:"symbol"`
	CompanyName  string  `json:"companyName"`
	Rationale    string  `json:"rationale"`
	CurrentPrice float64 `json:"currentPrice,omitempty"`
	TargetPrice  float64 `json:"targetPrice,omitempty"`
}

// GoalInput captures the user's financial goal parameters.
type GoalInput struct {
	TargetAmount   float64 `json:"target_amount"`
	TimeframeYears int     `json:"timeframe_years"`
	RiskTolerance  string  `json:"risk_tolerance"` // Low, Moderate, High
}

// GoalPlan is the AI-generated plan toward a financial goal.
type GoalPlan struct {
	Strategy          string            `json:"strategy,omitempty"`
	SuggestedActions  []string          `json:"suggestedActions,omitempty"`
	MonthlyInvestment float64           `json:"monthlyInvestment,omitempty"`
	AssetAllocation   map[string]string `json:"assetAllocation,omitempty"`
	Warnings          []string          `json:"warnings,omitempty"`
	StockSuggestions  []StockSuggestion `json:"stockSuggestions,omitempty"`
}

// StockComparison is the two-stock comparison shape.
type StockComparison struct {
	ComparisonSummary string            `json:"comparisonSummary"`
	Details           map[string]string `json:"details,omitempty"`
}

// WhatIfInput describes a hypothetical buy or sell to analyze.
type WhatIfInput struct {
	Action           string  `json:"action"` // Buy or Sell
	Symbol           string  `json:"symbol"`
	CompanyName      string  `json:"company_name,omitempty"`
	Sector           string  `json:"sector,omitempty"`
	Quantity         int64   `json:"quantity"`
	Price            float64 `json:"price"`
	InvestmentToSell string  `json:"investment_to_sell_id,omitempty"` // Sell only
}

// WhatIfAnalysis combines locally computed projections with AI commentary.
type WhatIfAnalysis struct {
	ProjectedPortfolioValue float64 `json:"projectedPortfolioValue,omitempty"`
	NewCashBalance          float64 `json:"newCashBalance,omitempty"`
	PnLImpactOnSale         float64 `json:"pnlImpactOnSale,omitempty"`
	RiskImpactSummary       string  `json:"riskImpactSummary,omitempty"`
	DiversificationChanges  string  `json:"diversificationChanges,omitempty"`
	Commentary              string  `json:"commentary,omitempty"`
}

// ScreenedStock extends a suggestion with trading-summary context.
type ScreenedStock struct {
	StockSuggestion
	LastPrice    float64 `json:"lastPrice,omitempty"`
	NotesFromDoc string  `json:"notesFromPDF,omitempty"`
}

// ScreenerResult is the AI stock screen shape.
type ScreenerResult struct {
	Suggestions []ScreenedStock `json:"suggestions"`
	Summary     string          `json:"summary,omitempty"`
}

// SectorSentiment is per-sector sentiment within a market analysis.
type SectorSentiment struct {
	Sector     string   `json:"sector"`
	Sentiment  string   `json:"sentiment"` // Positive, Negative, Neutral, Mixed
	Reason     string   `json:"reason"`
	KeyDrivers []string `json:"keyDriversFromPDF,omitempty"`
}

// MarketSentiment is the document-grounded market sentiment shape.
type MarketSentiment struct {
	OverallSentiment string            `json:"overallSentiment"`
	OverallSummary   string            `json:"overallSummary"`
	SectorSentiments []SectorSentiment `json:"sectorSentiments,omitempty"`
	KeyObservations  []string          `json:"keyObservationsFromPDF,omitempty"`
}

// NewsFeedItem is one portfolio-relevant extract from an uploaded document.
type NewsFeedItem struct {
	Symbol          string  `json:"stockSymbol"`
	CompanyName     string  `json:"companyName,omitempty"`
	DocumentExtract string  `json:"documentExtract"`
	LastPrice       float64 `json:"lastPrice,omitempty"`
	ChangePercent   float64 `json:"changePercent,omitempty"`
}

// NewsFeed is the personalized news feed shape.
type NewsFeed struct {
	Items []NewsFeedItem `json:"feedItems"`
}

// OptimizationSuggestion is a single rebalancing action.
type OptimizationSuggestion struct {
	Action          string `json:"action"` // Buy, Sell, Hold, Reallocate, DiversifyIntoSector, ReduceExposureInSector
	Symbol          string `json:"stockSymbol,omitempty"`
	TargetSector    string `json:"targetSector,omitempty"`
	Quantity        string `json:"quantity,omitempty"` // model may answer "all" or a number
	Reasoning       string `json:"reasoning"`
	Priority        string `json:"priority,omitempty"` // High, Medium, Low
	PotentialImpact string `json:"potentialImpact,omitempty"`
}

// OptimizerResult is the portfolio optimization shape.
type OptimizerResult struct {
	Suggestions            []OptimizationSuggestion `json:"suggestions"`
	OverallStrategyComment string                   `json:"overallStrategyComment,omitempty"`
	SummaryFromDoc         string                   `json:"summaryFromPDF,omitempty"`
}

// BriefingPoint is one insight within the consolidated daily briefing.
type BriefingPoint struct {
	Category     string `json:"category"`
	Summary      string `json:"summary"`
	Importance   string `json:"importance,omitempty"` // High, Medium, Low
	SourceModule string `json:"sourceModule,omitempty"`
}

// Briefing is the consolidated daily briefing shape.
type Briefing struct {
	Title       string          `json:"briefingTitle"`
	Points      []BriefingPoint `json:"points"`
	GeneratedAt time.Time       `json:"generatedAt"`
}

// UpcomingDividend is a forecast dividend within a dividend analysis.
type UpcomingDividend struct {
	Symbol                  string  `json:"stockSymbol"`
	EstimatedAmountPerShare float64 `json:"estimatedAmountPerShare,omitempty"`
	EstimatedExDate         string  `json:"estimatedExDate,omitempty"` // YYYY-MM-DD
	Confidence              string  `json:"confidence,omitempty"`      // High, Medium, Low
}

// DividendAnalysis is the AI dividend income analysis shape.
type DividendAnalysis struct {
	EstimatedAnnualIncome float64            `json:"estimatedAnnualIncome,omitempty"`
	UpcomingDividends     []UpcomingDividend `json:"upcomingDividends,omitempty"`
	Commentary            string             `json:"commentary,omitempty"`
}

// SignificantMention is one notable item within a deep document summary.
type SignificantMention struct {
	Item    string `json:"item"`
	Context string `json:"context"`
}

// DocumentSummary is the deep document analysis shape.
type DocumentSummary struct {
	FullSummary         string               `json:"fullSummary"`
	KeyThemes           []string             `json:"keyThemes"`
	SignificantMentions []SignificantMention `json:"significantMentions,omitempty"`
}

// ChatMessage is a single turn in the advisor chat.
type ChatMessage struct {
	ID      string    `json:"id"`
	Role    string    `json:"role"` // user or model
	Text    string    `json:"text"`
	IsError bool      `json:"is_error,omitempty"`
	Date    time.Time `json:"date"`
}

// PanelState is the queryable state of one advisor panel. Result holds the
// typed result for the panel, RawText the unparsed fallback when the model
// returned an invalid format.
type PanelState struct {
	Panel     string      `json:"panel"`
	Seq       uint64      `json:"seq"`
	Loading   bool        `json:"loading"`
	Result    interface{} `json:"result,omitempty"`
	RawText   string      `json:"raw_text,omitempty"`
	Error     string      `json:"error,omitempty"`
	UpdatedAt time.Time   `json:"updated_at"`
}

package advisor

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/lakmalw/cense/internal/common"
	"github.com/lakmalw/cense/internal/models"
)

// Panel names.
const (
	PanelNewsAnalysis     = "news-analysis"
	PanelRiskAssessment   = "risk-assessment"
	PanelGoalPlanner      = "goal-planner"
	PanelStockComparison  = "stock-comparison"
	PanelWhatIf           = "what-if"
	PanelScreener         = "screener"
	PanelMarketSentiment  = "market-sentiment"
	PanelNewsFeed         = "news-feed"
	PanelOptimizer        = "optimizer"
	PanelBriefing         = "briefing"
	PanelDividendAnalysis = "dividend-analysis"
	PanelDocumentSummary  = "document-summary"
	PanelMarketTrend      = "market-trend"
	PanelGuide            = "guide"
)

type genMode int

const (
	modeJSON genMode = iota
	modeSearch
	modeText
)

// panelRequest is a prepared model call: the prompt, how to issue it, and how
// to turn the response text into the panel's typed result.
type panelRequest struct {
	prompt string
	mode   genMode
	finish func(text string, sources []models.Source) (interface{}, error)
}

type panelSpec struct {
	name  string
	build func(ctx context.Context, s *Service, input map[string]interface{}) (panelRequest, error)
}

const analystRole = "You are a financial analyst specializing in the Colombo Stock Exchange (CSE) advising a Sri Lankan retail investor. All amounts are in LKR."

// portfolioContext assembles the ledger, watchlist, and document context
// shared by most panel prompts.
func (s *Service) portfolioContext(ctx context.Context) (string, error) {
	summary, err := s.ledger.Summary(ctx)
	if err != nil {
		return "", err
	}
	wlSummary, err := s.watchlist.Summary(ctx)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("PORTFOLIO:\n")
	b.WriteString(summary)
	b.WriteString("\n")
	b.WriteString(wlSummary)
	if docCtx := s.docs.CombinedContext(); docCtx != "" {
		b.WriteString("\nUPLOADED DOCUMENTS:\n")
		b.WriteString(docCtx)
	}
	return b.String(), nil
}

// jsonFinish returns a finish func that parses the response into out.
// out must be a pointer; the parsed value is returned as the panel result.
func jsonFinish(newOut func() interface{}) func(string, []models.Source) (interface{}, error) {
	return func(text string, _ []models.Source) (interface{}, error) {
		out := newOut()
		if err := common.ParseLenientJSON(text, out); err != nil {
			return nil, err
		}
		return out, nil
	}
}

func textFinish(text string, _ []models.Source) (interface{}, error) {
	return text, nil
}

func inputString(input map[string]interface{}, key string) string {
	if v, ok := input[key].(string); ok {
		return strings.TrimSpace(v)
	}
	return ""
}

func panelSpecs() []panelSpec {
	return []panelSpec{
		{PanelNewsAnalysis, buildNewsAnalysis},
		{PanelRiskAssessment, buildRiskAssessment},
		{PanelGoalPlanner, buildGoalPlanner},
		{PanelStockComparison, buildStockComparison},
		{PanelWhatIf, buildWhatIf},
		{PanelScreener, buildScreener},
		{PanelMarketSentiment, buildMarketSentiment},
		{PanelNewsFeed, buildNewsFeed},
		{PanelOptimizer, buildOptimizer},
		{PanelBriefing, buildBriefing},
		{PanelDividendAnalysis, buildDividendAnalysis},
		{PanelDocumentSummary, buildDocumentSummary},
		{PanelMarketTrend, buildMarketTrend},
		{PanelGuide, buildGuide},
	}
}

// buildNewsAnalysis analyzes news for one symbol. With documents loaded the
// analysis is document-only; otherwise it is grounded on web search and the
// returned citations are attached to the result.
func buildNewsAnalysis(ctx context.Context, s *Service, input map[string]interface{}) (panelRequest, error) {
	symbol := strings.ToUpper(inputString(input, "symbol"))
	if symbol == "" {
		return panelRequest{}, fmt.Errorf("%w: symbol is required", models.ErrValidation)
	}

	docCtx := s.docs.CombinedContext()
	mode := modeSearch
	sourceNote := "Use Google Search to find recent news."
	if docCtx != "" {
		mode = modeJSON
		sourceNote = "Base the analysis ONLY on the uploaded documents below.\n\n" + docCtx
	}

	prompt := fmt.Sprintf(`%s

Analyze recent news and outlook for %s. %s

Respond with a single JSON object:
{"biasReason": "...", "priceOutlook": "...", "buyRecommendations": ["..."], "sellRecommendations": ["..."], "overallSummary": "..."}`,
		analystRole, symbol, sourceNote)

	return panelRequest{
		prompt: prompt,
		mode:   mode,
		finish: func(text string, sources []models.Source) (interface{}, error) {
			var out models.NewsAnalysis
			if err := common.ParseLenientJSON(text, &out); err != nil {
				return nil, err
			}
			out.Sources = sources
			return &out, nil
		},
	}, nil
}

func buildRiskAssessment(ctx context.Context, s *Service, _ map[string]interface{}) (panelRequest, error) {
	pctx, err := s.portfolioContext(ctx)
	if err != nil {
		return panelRequest{}, err
	}
	prompt := fmt.Sprintf(`%s

Assess the risk of this portfolio, paying attention to sector and single-stock concentration.

%s
Respond with a single JSON object:
{"riskLevel": "Low|Moderate|High", "assessmentSummary": "...", "sectorConcentration": [{"sector": "...", "percentage": 0}], "stockConcentration": [{"stockSymbol": "...", "percentage": 0}]}`,
		analystRole, pctx)

	return panelRequest{
		prompt: prompt,
		finish: jsonFinish(func() interface{} { return &models.RiskAssessment{} }),
	}, nil
}

func buildGoalPlanner(ctx context.Context, s *Service, input map[string]interface{}) (panelRequest, error) {
	var goal models.GoalInput
	if err := decodeInput(input, &goal); err != nil {
		return panelRequest{}, err
	}
	if goal.TargetAmount <= 0 || goal.TimeframeYears <= 0 {
		return panelRequest{}, fmt.Errorf("%w: target amount and timeframe must be positive", models.ErrValidation)
	}

	pctx, err := s.portfolioContext(ctx)
	if err != nil {
		return panelRequest{}, err
	}
	prompt := fmt.Sprintf(`%s

The investor wants to reach %.2f LKR within %d years with %s risk tolerance. Build a realistic plan from their current position.

%s
Respond with a single JSON object:
{"strategy": "...", "suggestedActions": ["..."], "monthlyInvestment": 0, "assetAllocation": {"equities": "60%%"}, "warnings": ["..."], "stockSuggestions": [{"symbol": "...", "companyName": "...", "rationale": "..."}]}`,
		analystRole, goal.TargetAmount, goal.TimeframeYears, goal.RiskTolerance, pctx)

	return panelRequest{
		prompt: prompt,
		finish: jsonFinish(func() interface{} { return &models.GoalPlan{} }),
	}, nil
}

func buildStockComparison(ctx context.Context, s *Service, input map[string]interface{}) (panelRequest, error) {
	symbolA := strings.ToUpper(inputString(input, "symbol_a"))
	symbolB := strings.ToUpper(inputString(input, "symbol_b"))
	if symbolA == "" || symbolB == "" {
		return panelRequest{}, fmt.Errorf("%w: two symbols are required", models.ErrValidation)
	}

	pctx, err := s.portfolioContext(ctx)
	if err != nil {
		return panelRequest{}, err
	}
	prompt := fmt.Sprintf(`%s

Compare %s and %s as CSE investments for this investor: valuation, liquidity, dividend record, sector outlook.

%s
Respond with a single JSON object:
{"comparisonSummary": "...", "details": {"valuation": "...", "liquidity": "...", "dividends": "...", "outlook": "..."}}`,
		analystRole, symbolA, symbolB, pctx)

	return panelRequest{
		prompt: prompt,
		finish: jsonFinish(func() interface{} { return &models.StockComparison{} }),
	}, nil
}

// buildWhatIf computes the deterministic figures of a hypothetical trade
// locally and asks the model only for qualitative commentary.
func buildWhatIf(ctx context.Context, s *Service, input map[string]interface{}) (panelRequest, error) {
	var scenario models.WhatIfInput
	if err := decodeInput(input, &scenario); err != nil {
		return panelRequest{}, err
	}
	if scenario.Quantity <= 0 || scenario.Price <= 0 {
		return panelRequest{}, fmt.Errorf("%w: quantity and price must be positive", models.ErrValidation)
	}
	var action string
	switch {
	case strings.EqualFold(scenario.Action, "buy"):
		action = "Buy"
	case strings.EqualFold(scenario.Action, "sell"):
		action = "Sell"
	default:
		return panelRequest{}, fmt.Errorf("%w: action must be Buy or Sell", models.ErrValidation)
	}

	dashboard, err := s.ledger.Dashboard(ctx)
	if err != nil {
		return panelRequest{}, err
	}

	amount := float64(scenario.Quantity) * scenario.Price
	projected := models.WhatIfAnalysis{}
	if action == "Buy" {
		projected.NewCashBalance = dashboard.CashBalance - amount
		projected.ProjectedPortfolioValue = dashboard.TotalPortfolioValue + amount
	} else {
		projected.NewCashBalance = dashboard.CashBalance + amount
		projected.ProjectedPortfolioValue = dashboard.TotalPortfolioValue - amount
		if scenario.InvestmentToSell != "" {
			investments, err := s.ledger.GetInvestments(ctx)
			if err != nil {
				return panelRequest{}, err
			}
			for _, inv := range investments {
				if inv.ID == scenario.InvestmentToSell {
					projected.PnLImpactOnSale = (scenario.Price - inv.BuyPrice) * float64(scenario.Quantity)
					projected.ProjectedPortfolioValue = dashboard.TotalPortfolioValue - inv.MarketValue()
				}
			}
		}
	}

	pctx, err := s.portfolioContext(ctx)
	if err != nil {
		return panelRequest{}, err
	}
	prompt := fmt.Sprintf(`%s

Hypothetical trade: %s %d shares of %s @ %.2f LKR.
Computed outcome: new cash balance %.2f, projected holdings value %.2f, realized P/L on sale %.2f.

%s
Comment on the risk and diversification impact of this trade. Respond with a single JSON object:
{"riskImpactSummary": "...", "diversificationChanges": "...", "commentary": "..."}`,
		analystRole, action, scenario.Quantity, strings.ToUpper(scenario.Symbol), scenario.Price,
		projected.NewCashBalance, projected.ProjectedPortfolioValue, projected.PnLImpactOnSale, pctx)

	return panelRequest{
		prompt: prompt,
		finish: func(text string, _ []models.Source) (interface{}, error) {
			out := projected
			if err := common.ParseLenientJSON(text, &out); err != nil {
				return nil, err
			}
			// Locally computed figures always win over model output
			out.NewCashBalance = projected.NewCashBalance
			out.ProjectedPortfolioValue = projected.ProjectedPortfolioValue
			out.PnLImpactOnSale = projected.PnLImpactOnSale
			return &out, nil
		},
	}, nil
}

func buildScreener(ctx context.Context, s *Service, input map[string]interface{}) (panelRequest, error) {
	criteria := inputString(input, "criteria")
	if criteria == "" {
		return panelRequest{}, fmt.Errorf("%w: criteria is required", models.ErrValidation)
	}

	pctx, err := s.portfolioContext(ctx)
	if err != nil {
		return panelRequest{}, err
	}
	prompt := fmt.Sprintf(`%s

Screen CSE stocks matching: %q. Prefer evidence from the uploaded trading summary when present.

%s
Respond with a single JSON object:
{"suggestions": [{"symbol": "...", "companyName": "...", "rationale": "...", "lastPrice": 0, "notesFromPDF": "..."}], "summary": "..."}`,
		analystRole, criteria, pctx)

	return panelRequest{
		prompt: prompt,
		finish: jsonFinish(func() interface{} { return &models.ScreenerResult{} }),
	}, nil
}

func buildMarketSentiment(ctx context.Context, s *Service, _ map[string]interface{}) (panelRequest, error) {
	docCtx := s.docs.CombinedContext()
	if docCtx == "" {
		return panelRequest{}, fmt.Errorf("%w: upload a market document first", models.ErrValidation)
	}
	prompt := fmt.Sprintf(`%s

From the uploaded documents ONLY, assess overall CSE market sentiment and per-sector sentiment.

%s
Respond with a single JSON object:
{"overallSentiment": "Positive|Negative|Neutral|Mixed", "overallSummary": "...", "sectorSentiments": [{"sector": "...", "sentiment": "...", "reason": "...", "keyDriversFromPDF": ["..."]}], "keyObservationsFromPDF": ["..."]}`,
		analystRole, docCtx)

	return panelRequest{
		prompt: prompt,
		finish: jsonFinish(func() interface{} { return &models.MarketSentiment{} }),
	}, nil
}

func buildNewsFeed(ctx context.Context, s *Service, _ map[string]interface{}) (panelRequest, error) {
	docCtx := s.docs.CombinedContext()
	if docCtx == "" {
		return panelRequest{}, fmt.Errorf("%w: upload a news document first", models.ErrValidation)
	}
	summary, err := s.ledger.Summary(ctx)
	if err != nil {
		return panelRequest{}, err
	}
	wlSummary, err := s.watchlist.Summary(ctx)
	if err != nil {
		return panelRequest{}, err
	}
	prompt := fmt.Sprintf(`%s

Extract every item from the uploaded documents that is relevant to the investor's holdings or watchlist. Quote the document, do not invent.

PORTFOLIO:
%s
%s
DOCUMENTS:
%s
Respond with a single JSON object:
{"feedItems": [{"stockSymbol": "...", "companyName": "...", "documentExtract": "...", "lastPrice": 0, "changePercent": 0}]}`,
		analystRole, summary, wlSummary, docCtx)

	return panelRequest{
		prompt: prompt,
		finish: jsonFinish(func() interface{} { return &models.NewsFeed{} }),
	}, nil
}

func buildOptimizer(ctx context.Context, s *Service, _ map[string]interface{}) (panelRequest, error) {
	pctx, err := s.portfolioContext(ctx)
	if err != nil {
		return panelRequest{}, err
	}
	prompt := fmt.Sprintf(`%s

Suggest concrete rebalancing actions for this portfolio. Valid actions: Buy, Sell, Hold, Reallocate, DiversifyIntoSector, ReduceExposureInSector.

%s
Respond with a single JSON object:
{"suggestions": [{"action": "...", "stockSymbol": "...", "targetSector": "...", "quantity": "...", "reasoning": "...", "priority": "High|Medium|Low", "potentialImpact": "..."}], "overallStrategyComment": "...", "summaryFromPDF": "..."}`,
		analystRole, pctx)

	return panelRequest{
		prompt: prompt,
		finish: jsonFinish(func() interface{} { return &models.OptimizerResult{} }),
	}, nil
}

func buildBriefing(ctx context.Context, s *Service, _ map[string]interface{}) (panelRequest, error) {
	pctx, err := s.portfolioContext(ctx)
	if err != nil {
		return panelRequest{}, err
	}
	prompt := fmt.Sprintf(`%s

Produce a consolidated daily briefing: the handful of things this investor should know today, ordered by importance.

%s
Respond with a single JSON object:
{"briefingTitle": "...", "points": [{"category": "...", "summary": "...", "importance": "High|Medium|Low", "sourceModule": "..."}]}`,
		analystRole, pctx)

	return panelRequest{
		prompt: prompt,
		finish: func(text string, _ []models.Source) (interface{}, error) {
			var out models.Briefing
			if err := common.ParseLenientJSON(text, &out); err != nil {
				return nil, err
			}
			out.GeneratedAt = time.Now()
			return &out, nil
		},
	}, nil
}

func buildDividendAnalysis(ctx context.Context, s *Service, _ map[string]interface{}) (panelRequest, error) {
	pctx, err := s.portfolioContext(ctx)
	if err != nil {
		return panelRequest{}, err
	}
	dividends, err := s.ledger.ListDividends(ctx)
	if err != nil {
		return panelRequest{}, err
	}
	var logged strings.Builder
	if len(dividends) == 0 {
		logged.WriteString("none\n")
	}
	for _, div := range dividends {
		fmt.Fprintf(&logged, "- %s: %.2f per share x %d on %s\n", div.Symbol, div.AmountPerShare, div.Quantity, div.PaymentDate)
	}

	prompt := fmt.Sprintf(`%s

Estimate annual dividend income for this portfolio and forecast upcoming dividends.

%s
LOGGED DIVIDENDS:
%s
Respond with a single JSON object:
{"estimatedAnnualIncome": 0, "upcomingDividends": [{"stockSymbol": "...", "estimatedAmountPerShare": 0, "estimatedExDate": "YYYY-MM-DD", "confidence": "High|Medium|Low"}], "commentary": "..."}`,
		analystRole, pctx, logged.String())

	return panelRequest{
		prompt: prompt,
		finish: jsonFinish(func() interface{} { return &models.DividendAnalysis{} }),
	}, nil
}

func buildDocumentSummary(ctx context.Context, s *Service, _ map[string]interface{}) (panelRequest, error) {
	docCtx := s.docs.CombinedContext()
	if docCtx == "" {
		return panelRequest{}, fmt.Errorf("%w: upload a document first", models.ErrValidation)
	}
	prompt := fmt.Sprintf(`%s

Summarize the uploaded documents in depth for this investor.

%s
Respond with a single JSON object:
{"fullSummary": "...", "keyThemes": ["..."], "significantMentions": [{"item": "...", "context": "..."}]}`,
		analystRole, docCtx)

	return panelRequest{
		prompt: prompt,
		finish: jsonFinish(func() interface{} { return &models.DocumentSummary{} }),
	}, nil
}

func buildMarketTrend(ctx context.Context, s *Service, _ map[string]interface{}) (panelRequest, error) {
	pctx, err := s.portfolioContext(ctx)
	if err != nil {
		return panelRequest{}, err
	}
	prompt := fmt.Sprintf(`%s

In a few short paragraphs, comment on current CSE market trends relevant to this portfolio.

%s`, analystRole, pctx)

	return panelRequest{prompt: prompt, mode: modeText, finish: textFinish}, nil
}

func buildGuide(ctx context.Context, s *Service, input map[string]interface{}) (panelRequest, error) {
	topic := inputString(input, "topic")
	if topic == "" {
		topic = "how to read this dashboard"
	}
	prompt := fmt.Sprintf(`%s

Explain %q in plain language for a beginner CSE investor. Keep it under 200 words.`, analystRole, topic)

	return panelRequest{prompt: prompt, mode: modeText, finish: textFinish}, nil
}

// buildChatPrompt renders the system instruction, portfolio context, and the
// running transcript for one chat turn.
func (s *Service) buildChatPrompt(ctx context.Context, transcript string) (string, error) {
	pctx, err := s.portfolioContext(ctx)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(`%s

You are chatting with the investor. Answer concisely, refer to their actual holdings when relevant, and never give guarantees about returns.

%s
CONVERSATION:
%s
model:`, analystRole, pctx, transcript), nil
}

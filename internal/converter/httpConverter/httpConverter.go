package httpConverter

import (
	"github.com/KotFed0t/portfolio_analyzer/internal/model"
	"github.com/KotFed0t/portfolio_analyzer/internal/model/httpModel"
)

func ConvertAnalyzeRequestToHoldings(req httpModel.AnalyzeRequest) []model.Holding {
	holdings := make([]model.Holding, 0, len(req.Assets))
	for _, asset := range req.Assets {
		holdings = append(holdings, model.Holding{
			Symbol:   model.NormalizeSymbol(asset.Symbol),
			Quantity: asset.Quantity,
		})
	}
	return holdings
}

func ConvertSummaryToAnalyzeResponse(summary model.PortfolioSummary) httpModel.AnalyzeResponse {
	breakdown := make([]httpModel.BreakdownItem, 0, len(summary.Breakdown))
	for _, h := range summary.Breakdown {
		breakdown = append(breakdown, httpModel.BreakdownItem{
			Symbol:     h.Symbol,
			Quantity:   h.Quantity.InexactFloat64(),
			Price:      h.Price.InexactFloat64(),
			Value:      h.Value.InexactFloat64(),
			Percentage: h.Percentage.InexactFloat64(),
			Risk:       string(h.Risk),
		})
	}

	return httpModel.AnalyzeResponse{
		TotalValue: summary.TotalValue.InexactFloat64(),
		Currency:   summary.Currency,
		Breakdown:  breakdown,
		AIInsight:  summary.AIInsight,
	}
}

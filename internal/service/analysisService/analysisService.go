package analysisService

import (
	"context"
	"errors"
	"log/slog"

	"github.com/KotFed0t/portfolio_analyzer/config"
	"github.com/KotFed0t/portfolio_analyzer/internal/model"
	"github.com/KotFed0t/portfolio_analyzer/internal/model/yahooModel"
	"github.com/KotFed0t/portfolio_analyzer/utils"
	"github.com/shopspring/decimal"
)

type Valuator interface {
	Valuate(ctx context.Context, holdings []model.Holding) (model.PortfolioSummary, error)
}

type InsightGenerator interface {
	Summarize(ctx context.Context, breakdown []model.PricedHolding) model.Insight
}

type ReportGenerator interface {
	Generate(ctx context.Context, summary model.PortfolioSummary) (fileBytes []byte, fileExtension string, err error)
}

type MarketApi interface {
	GetLatestPrices(ctx context.Context, symbols []string) (map[string]yahooModel.Price, error)
}

type Cache interface {
	SetPrices(ctx context.Context, prices map[string]decimal.Decimal) error
}

type AnalysisService struct {
	valuator        Valuator
	insight         InsightGenerator
	reportGenerator ReportGenerator
	marketApi       MarketApi
	cache           Cache
	symbols         model.SymbolSet
	currency        string
	fxSymbol        string
}

func New(
	cfg *config.Config,
	symbols model.SymbolSet,
	valuator Valuator,
	insight InsightGenerator,
	reportGenerator ReportGenerator,
	marketApi MarketApi,
	cache Cache,
) *AnalysisService {
	return &AnalysisService{
		valuator:        valuator,
		insight:         insight,
		reportGenerator: reportGenerator,
		marketApi:       marketApi,
		cache:           cache,
		symbols:         symbols,
		currency:        cfg.Portfolio.TargetCurrency,
		fxSymbol:        cfg.Portfolio.FxSymbol,
	}
}

// Analyze valuates holdings and attaches the AI narrative. Valuation errors
// are returned unchanged; the narrative never fails the request.
func (s *AnalysisService) Analyze(ctx context.Context, holdings []model.Holding) (model.PortfolioSummary, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "AnalysisService.Analyze"

	slog.Debug("Analyze start", slog.String("rqID", rqID), slog.String("op", op), slog.Int("holdings", len(holdings)))
	defer func() {
		slog.Debug("Analyze finished", slog.String("rqID", rqID), slog.String("op", op))
	}()

	summary, err := s.valuator.Valuate(ctx, holdings)
	if err != nil {
		return model.PortfolioSummary{}, err
	}

	insight := s.insight.Summarize(ctx, summary.Breakdown)
	summary.AIInsight = insight.Text
	summary.InsightStatus = insight.Status

	if insight.Degraded() {
		slog.Info("analysis returned with placeholder insight", slog.String("rqID", rqID), slog.String("op", op), slog.String("status", string(insight.Status)))
	}

	return summary, nil
}

func (s *AnalysisService) AnalyzeReport(ctx context.Context, holdings []model.Holding) (fileBytes []byte, fileExtension string, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "AnalysisService.AnalyzeReport"

	summary, err := s.Analyze(ctx, holdings)
	if err != nil {
		return nil, "", err
	}

	fileBytes, fileExtension, err = s.reportGenerator.Generate(ctx, summary)
	if err != nil {
		slog.Error("got error from reportGenerator.Generate", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, "", err
	}

	return fileBytes, fileExtension, nil
}

func (s *AnalysisService) SupportedSymbols() []string {
	return s.symbols.List()
}

func (s *AnalysisService) Currency() string {
	return s.currency
}

// FillPriceCache warms the cache with the latest price of every supported
// symbol and of the fx pair.
func (s *AnalysisService) FillPriceCache(ctx context.Context) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "AnalysisService.FillPriceCache"

	if s.cache == nil {
		return errors.New("price cache is not configured")
	}

	symbols := append(s.symbols.List(), s.fxSymbol)

	prices, err := s.marketApi.GetLatestPrices(ctx, symbols)
	if err != nil {
		slog.Error("got error from marketApi.GetLatestPrices", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return err
	}

	toCache := make(map[string]decimal.Decimal, len(prices))
	for symbol, price := range prices {
		if price.Close.IsPositive() {
			toCache[symbol] = price.Close
		}
	}

	if len(toCache) == 0 {
		return nil
	}

	err = s.cache.SetPrices(ctx, toCache)
	if err != nil {
		slog.Error("got error from cache.SetPrices", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return err
	}

	slog.Info("price cache filled", slog.String("rqID", rqID), slog.String("op", op), slog.Int("cached", len(toCache)), slog.Int("requested", len(symbols)))

	return nil
}

package analysisService

import (
	"context"
	"errors"
	"testing"

	"github.com/KotFed0t/portfolio_analyzer/config"
	"github.com/KotFed0t/portfolio_analyzer/internal/insight"
	"github.com/KotFed0t/portfolio_analyzer/internal/model"
	"github.com/KotFed0t/portfolio_analyzer/internal/model/yahooModel"
	"github.com/KotFed0t/portfolio_analyzer/internal/service"
	"github.com/KotFed0t/portfolio_analyzer/internal/service/valuator"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeValuator struct {
	summary model.PortfolioSummary
	err     error
}

func (f *fakeValuator) Valuate(_ context.Context, _ []model.Holding) (model.PortfolioSummary, error) {
	return f.summary, f.err
}

type fakeInsight struct {
	res   model.Insight
	calls int
}

func (f *fakeInsight) Summarize(_ context.Context, _ []model.PricedHolding) model.Insight {
	f.calls++
	return f.res
}

type fakeReport struct {
	got model.PortfolioSummary
}

func (f *fakeReport) Generate(_ context.Context, summary model.PortfolioSummary) ([]byte, string, error) {
	f.got = summary
	return []byte("xlsx"), ".xlsx", nil
}

type fakeMarket struct {
	prices    map[string]yahooModel.Price
	err       error
	requested []string
}

func (f *fakeMarket) GetLatestPrices(_ context.Context, symbols []string) (map[string]yahooModel.Price, error) {
	f.requested = symbols
	return f.prices, f.err
}

type fakeCache struct {
	stored map[string]decimal.Decimal
}

func (f *fakeCache) SetPrices(_ context.Context, prices map[string]decimal.Decimal) error {
	f.stored = prices
	return nil
}

type fixedPrices map[string]decimal.Decimal

func (p fixedPrices) LatestPrice(_ context.Context, symbol string) (decimal.Decimal, bool) {
	price, ok := p[symbol]
	return price, ok
}

type fixedFx struct{}

func (fixedFx) UsdToTarget(_ context.Context) model.FxRate {
	return model.FxRate{Rate: decimal.NewFromInt(80)}
}

func testConfig() *config.Config {
	return &config.Config{Portfolio: config.Portfolio{TargetCurrency: "INR", FxSymbol: "USDINR=X"}}
}

var symbols = model.NewSymbolSet([]string{"AAPL", "TSLA"})

func TestAnalyze_AttachesInsight(t *testing.T) {
	val := &fakeValuator{summary: model.PortfolioSummary{
		TotalValue: decimal.NewFromInt(100),
		Currency:   "INR",
		Breakdown:  []model.PricedHolding{{Symbol: "AAPL"}},
	}}
	ins := &fakeInsight{res: model.Insight{Text: "Concentrated.", Status: model.InsightGenerated}}
	s := New(testConfig(), symbols, val, ins, &fakeReport{}, &fakeMarket{}, nil)

	summary, err := s.Analyze(context.Background(), []model.Holding{{Symbol: "AAPL", Quantity: decimal.NewFromInt(1)}})
	require.NoError(t, err)
	assert.Equal(t, "Concentrated.", summary.AIInsight)
	assert.Equal(t, model.InsightGenerated, summary.InsightStatus)
	assert.True(t, summary.TotalValue.Equal(decimal.NewFromInt(100)))
}

func TestAnalyze_PropagatesValuationError(t *testing.T) {
	valErr := &service.PriceUnavailableError{Symbol: "TSLA"}
	ins := &fakeInsight{}
	s := New(testConfig(), symbols, &fakeValuator{err: valErr}, ins, &fakeReport{}, &fakeMarket{}, nil)

	_, err := s.Analyze(context.Background(), nil)
	require.ErrorIs(t, err, valErr)
	assert.True(t, service.IsClientError(err))
	assert.Equal(t, 0, ins.calls)
}

func TestAnalyze_WithoutCredentialKeepsValuation(t *testing.T) {
	val := valuator.New(symbols, fixedPrices{"AAPL": decimal.NewFromInt(150), "TSLA": decimal.NewFromInt(200)}, fixedFx{}, "INR", 2)
	s := New(testConfig(), symbols, val, insight.New(nil, "INR"), &fakeReport{}, &fakeMarket{}, nil)

	holdings := []model.Holding{
		{Symbol: "AAPL", Quantity: decimal.NewFromInt(2)},
		{Symbol: "TSLA", Quantity: decimal.NewFromInt(1)},
	}
	summary, err := s.Analyze(context.Background(), holdings)
	require.NoError(t, err)

	assert.Equal(t, insight.NotConfiguredText, summary.AIInsight)
	assert.Equal(t, model.InsightNotConfigured, summary.InsightStatus)
	assert.True(t, summary.TotalValue.Equal(decimal.NewFromInt(40000)))
	require.Len(t, summary.Breakdown, 2)
	assert.Equal(t, model.RiskHigh, summary.Breakdown[0].Risk)
	assert.Equal(t, model.RiskNormal, summary.Breakdown[1].Risk)
}

func TestAnalyzeReport_RendersAnalyzedSummary(t *testing.T) {
	val := &fakeValuator{summary: model.PortfolioSummary{Currency: "INR"}}
	ins := &fakeInsight{res: model.Insight{Text: "ok", Status: model.InsightGenerated}}
	report := &fakeReport{}
	s := New(testConfig(), symbols, val, ins, report, &fakeMarket{}, nil)

	data, ext, err := s.AnalyzeReport(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, []byte("xlsx"), data)
	assert.Equal(t, ".xlsx", ext)
	assert.Equal(t, "ok", report.got.AIInsight)
}

func TestFillPriceCache(t *testing.T) {
	market := &fakeMarket{prices: map[string]yahooModel.Price{
		"AAPL":     {Symbol: "AAPL", Close: decimal.NewFromInt(150)},
		"USDINR=X": {Symbol: "USDINR=X", Close: decimal.RequireFromString("83.2")},
		"TSLA":     {Symbol: "TSLA", Close: decimal.Zero},
	}}
	cache := &fakeCache{}
	s := New(testConfig(), symbols, &fakeValuator{}, &fakeInsight{}, &fakeReport{}, market, cache)

	require.NoError(t, s.FillPriceCache(context.Background()))

	assert.Equal(t, []string{"AAPL", "TSLA", "USDINR=X"}, market.requested)
	require.Len(t, cache.stored, 2)
	assert.True(t, cache.stored["AAPL"].Equal(decimal.NewFromInt(150)))
	assert.True(t, cache.stored["USDINR=X"].Equal(decimal.RequireFromString("83.2")))
}

func TestFillPriceCache_MarketError(t *testing.T) {
	cache := &fakeCache{}
	s := New(testConfig(), symbols, &fakeValuator{}, &fakeInsight{}, &fakeReport{}, &fakeMarket{err: errors.New("down")}, cache)

	assert.Error(t, s.FillPriceCache(context.Background()))
	assert.Nil(t, cache.stored)
}

func TestFillPriceCache_NoCache(t *testing.T) {
	s := New(testConfig(), symbols, &fakeValuator{}, &fakeInsight{}, &fakeReport{}, &fakeMarket{}, nil)

	assert.Error(t, s.FillPriceCache(context.Background()))
}

func TestSupportedSymbols(t *testing.T) {
	s := New(testConfig(), symbols, &fakeValuator{}, &fakeInsight{}, &fakeReport{}, &fakeMarket{}, nil)

	assert.Equal(t, []string{"AAPL", "TSLA"}, s.SupportedSymbols())
	assert.Equal(t, "INR", s.Currency())
}

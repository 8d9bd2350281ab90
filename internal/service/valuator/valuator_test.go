package valuator

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/KotFed0t/portfolio_analyzer/internal/model"
	"github.com/KotFed0t/portfolio_analyzer/internal/service"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePrices struct {
	mu     sync.Mutex
	prices map[string]decimal.Decimal
	calls  map[string]int
}

func newFakePrices(prices map[string]float64) *fakePrices {
	f := &fakePrices{prices: map[string]decimal.Decimal{}, calls: map[string]int{}}
	for s, p := range prices {
		f.prices[s] = decimal.NewFromFloat(p)
	}
	return f
}

func (f *fakePrices) LatestPrice(_ context.Context, symbol string) (decimal.Decimal, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[symbol]++
	p, ok := f.prices[symbol]
	return p, ok
}

func (f *fakePrices) totalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

type fakeFx struct {
	mu    sync.Mutex
	rate  model.FxRate
	calls int
}

func (f *fakeFx) UsdToTarget(_ context.Context) model.FxRate {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.rate
}

var testSymbols = model.NewSymbolSet([]string{"AAPL", "TSLA", "MSFT", "GOOG", "AMZN"})

func liveFx(rate int64) *fakeFx {
	return &fakeFx{rate: model.FxRate{Rate: decimal.NewFromInt(rate)}}
}

func holding(symbol string, qty float64) model.Holding {
	return model.Holding{Symbol: symbol, Quantity: decimal.NewFromFloat(qty)}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestValuate_ReferenceExample(t *testing.T) {
	prices := newFakePrices(map[string]float64{"AAPL": 150, "TSLA": 200})
	fx := liveFx(80)
	v := New(testSymbols, prices, fx, "INR", 4)

	summary, err := v.Valuate(context.Background(), []model.Holding{holding("AAPL", 2), holding("TSLA", 1)})
	require.NoError(t, err)

	assert.Equal(t, "INR", summary.Currency)
	assert.True(t, summary.TotalValue.Equal(dec("40000")), summary.TotalValue.String())
	require.Len(t, summary.Breakdown, 2)

	aapl := summary.Breakdown[0]
	assert.Equal(t, "AAPL", aapl.Symbol)
	assert.True(t, aapl.Price.Equal(dec("12000")))
	assert.True(t, aapl.Value.Equal(dec("24000")))
	assert.True(t, aapl.Percentage.Equal(dec("60")))
	assert.Equal(t, model.RiskHigh, aapl.Risk)

	tsla := summary.Breakdown[1]
	assert.Equal(t, "TSLA", tsla.Symbol)
	assert.True(t, tsla.Price.Equal(dec("16000")))
	assert.True(t, tsla.Value.Equal(dec("16000")))
	assert.True(t, tsla.Percentage.Equal(dec("40")))
	assert.Equal(t, model.RiskNormal, tsla.Risk)

	assert.Equal(t, 1, fx.calls)
	assert.Empty(t, summary.AIInsight)
}

func TestValuate_UnsupportedSymbolBeforePricing(t *testing.T) {
	prices := newFakePrices(map[string]float64{"AAPL": 150})
	fx := liveFx(80)
	v := New(testSymbols, prices, fx, "INR", 4)

	_, err := v.Valuate(context.Background(), []model.Holding{holding("doge", 1), holding("AAPL", 1)})

	var unsupported *service.UnsupportedSymbolError
	require.True(t, errors.As(err, &unsupported))
	assert.Equal(t, "DOGE", unsupported.Symbol)
	assert.Equal(t, "Unsupported symbol: DOGE", err.Error())
	assert.Equal(t, 0, prices.totalCalls())
	assert.Equal(t, 0, fx.calls)
}

func TestValuate_InvalidQuantity(t *testing.T) {
	for _, qty := range []float64{0, -1, -0.5} {
		prices := newFakePrices(map[string]float64{"AAPL": 150})
		v := New(testSymbols, prices, liveFx(80), "INR", 4)

		_, err := v.Valuate(context.Background(), []model.Holding{holding("AAPL", qty)})

		var invalid *service.InvalidQuantityError
		require.True(t, errors.As(err, &invalid), "qty %v", qty)
		assert.Equal(t, "AAPL", invalid.Symbol)
		assert.Equal(t, "Invalid quantity for AAPL", err.Error())
		assert.Equal(t, 0, prices.totalCalls())
	}
}

func TestValuate_SingleHoldingIsHundredPercentHigh(t *testing.T) {
	for _, symbol := range []string{"AAPL", "MSFT", "AMZN"} {
		prices := newFakePrices(map[string]float64{symbol: 123.45})
		v := New(testSymbols, prices, liveFx(83), "INR", 4)

		summary, err := v.Valuate(context.Background(), []model.Holding{holding(symbol, 3.5)})
		require.NoError(t, err)
		require.Len(t, summary.Breakdown, 1)
		assert.True(t, summary.Breakdown[0].Percentage.Equal(dec("100")))
		assert.Equal(t, model.RiskHigh, summary.Breakdown[0].Risk)
	}
}

func TestValuate_PercentagesSumToHundred(t *testing.T) {
	prices := newFakePrices(map[string]float64{"AAPL": 101.17, "TSLA": 253.03, "MSFT": 411.9})
	v := New(testSymbols, prices, liveFx(83), "INR", 2)

	holdings := []model.Holding{holding("AAPL", 3), holding("TSLA", 1.5), holding("MSFT", 0.25)}
	summary, err := v.Valuate(context.Background(), holdings)
	require.NoError(t, err)

	sum := decimal.Zero
	for _, h := range summary.Breakdown {
		sum = sum.Add(h.Percentage)
	}
	tolerance := dec("0.01").Mul(decimal.NewFromInt(int64(len(holdings))))
	assert.True(t, sum.Sub(dec("100")).Abs().LessThanOrEqual(tolerance), sum.String())
}

func TestValuate_RiskBoundaries(t *testing.T) {
	t.Run("exactly fifty is normal", func(t *testing.T) {
		prices := newFakePrices(map[string]float64{"AAPL": 1, "TSLA": 1})
		v := New(testSymbols, prices, liveFx(1), "INR", 4)

		summary, err := v.Valuate(context.Background(), []model.Holding{holding("AAPL", 50), holding("TSLA", 50)})
		require.NoError(t, err)
		for _, h := range summary.Breakdown {
			assert.True(t, h.Percentage.Equal(dec("50")))
			assert.Equal(t, model.RiskNormal, h.Risk)
		}
	})

	t.Run("exactly twenty five is low", func(t *testing.T) {
		prices := newFakePrices(map[string]float64{"AAPL": 1, "TSLA": 1})
		v := New(testSymbols, prices, liveFx(1), "INR", 4)

		summary, err := v.Valuate(context.Background(), []model.Holding{holding("AAPL", 25), holding("TSLA", 75)})
		require.NoError(t, err)
		assert.True(t, summary.Breakdown[0].Percentage.Equal(dec("25")))
		assert.Equal(t, model.RiskLow, summary.Breakdown[0].Risk)
		assert.Equal(t, model.RiskHigh, summary.Breakdown[1].Risk)
	})
}

func TestValuate_PriceFailureAbortsWholeRequest(t *testing.T) {
	prices := newFakePrices(map[string]float64{"AAPL": 150, "MSFT": 400})
	v := New(testSymbols, prices, liveFx(80), "INR", 4)

	summary, err := v.Valuate(context.Background(), []model.Holding{holding("AAPL", 1), holding("TSLA", 1), holding("MSFT", 1)})

	var unavailable *service.PriceUnavailableError
	require.True(t, errors.As(err, &unavailable))
	assert.Equal(t, "TSLA", unavailable.Symbol)
	assert.Equal(t, "Failed to fetch price for TSLA", err.Error())
	assert.Empty(t, summary.Breakdown)
	assert.True(t, summary.TotalValue.IsZero())
}

func TestValuate_FirstFailureInInputOrderWins(t *testing.T) {
	t.Run("price failure before invalid holding", func(t *testing.T) {
		prices := newFakePrices(map[string]float64{})
		v := New(testSymbols, prices, liveFx(80), "INR", 4)

		_, err := v.Valuate(context.Background(), []model.Holding{holding("AAPL", 1), holding("BTC", 1)})

		var unavailable *service.PriceUnavailableError
		require.True(t, errors.As(err, &unavailable))
		assert.Equal(t, "AAPL", unavailable.Symbol)
	})

	t.Run("invalid holding after priced holding", func(t *testing.T) {
		prices := newFakePrices(map[string]float64{"AAPL": 150, "MSFT": 400})
		v := New(testSymbols, prices, liveFx(80), "INR", 4)

		_, err := v.Valuate(context.Background(), []model.Holding{holding("AAPL", 1), holding("TSLA", 0), holding("MSFT", 1)})

		var invalid *service.InvalidQuantityError
		require.True(t, errors.As(err, &invalid))
		assert.Equal(t, "TSLA", invalid.Symbol)
		assert.Zero(t, prices.calls["MSFT"])
	})
}

func TestValuate_DegradedFxStillSucceeds(t *testing.T) {
	prices := newFakePrices(map[string]float64{"AAPL": 100})
	fx := &fakeFx{rate: model.FxRate{Rate: dec("83"), Degraded: true}}
	v := New(testSymbols, prices, fx, "INR", 4)

	summary, err := v.Valuate(context.Background(), []model.Holding{holding("AAPL", 2)})
	require.NoError(t, err)

	assert.True(t, summary.FxRate.Degraded)
	assert.True(t, summary.Breakdown[0].Price.Equal(dec("8300")))
	assert.True(t, summary.TotalValue.Equal(dec("16600")))
}

func TestValuate_NormalizesSymbols(t *testing.T) {
	prices := newFakePrices(map[string]float64{"AAPL": 150})
	v := New(testSymbols, prices, liveFx(80), "INR", 4)

	summary, err := v.Valuate(context.Background(), []model.Holding{holding(" aapl ", 1)})
	require.NoError(t, err)
	assert.Equal(t, "AAPL", summary.Breakdown[0].Symbol)
}

func TestValuate_DuplicateSymbolsPricedOnce(t *testing.T) {
	prices := newFakePrices(map[string]float64{"AAPL": 150})
	v := New(testSymbols, prices, liveFx(80), "INR", 4)

	summary, err := v.Valuate(context.Background(), []model.Holding{holding("AAPL", 1), holding("aapl", 3)})
	require.NoError(t, err)

	assert.Equal(t, 1, prices.calls["AAPL"])
	require.Len(t, summary.Breakdown, 2)
	assert.True(t, summary.Breakdown[0].Percentage.Equal(dec("25")))
	assert.True(t, summary.Breakdown[1].Percentage.Equal(dec("75")))
}

func TestValuate_EmptyPortfolio(t *testing.T) {
	fx := liveFx(80)
	v := New(testSymbols, newFakePrices(nil), fx, "INR", 4)

	summary, err := v.Valuate(context.Background(), nil)
	require.NoError(t, err)
	assert.True(t, summary.TotalValue.IsZero())
	assert.Empty(t, summary.Breakdown)
	assert.Equal(t, "INR", summary.Currency)
	assert.Equal(t, 0, fx.calls)
}

func TestValuate_RoundsEachValueBeforeSumming(t *testing.T) {
	prices := newFakePrices(map[string]float64{"AAPL": 1.11, "TSLA": 2.22})
	v := New(testSymbols, prices, &fakeFx{rate: model.FxRate{Rate: dec("83.33")}}, "INR", 1)

	summary, err := v.Valuate(context.Background(), []model.Holding{holding("AAPL", 0.333), holding("TSLA", 0.777)})
	require.NoError(t, err)

	// 1.11 * 83.33 = 92.4963 -> 92.50, * 0.333 = 30.8025 -> 30.80
	// 2.22 * 83.33 = 184.9926 -> 184.99, * 0.777 = 143.73723 -> 143.74
	assert.True(t, summary.Breakdown[0].Price.Equal(dec("92.50")))
	assert.True(t, summary.Breakdown[0].Value.Equal(dec("30.80")))
	assert.True(t, summary.Breakdown[1].Price.Equal(dec("184.99")))
	assert.True(t, summary.Breakdown[1].Value.Equal(dec("143.74")))
	assert.True(t, summary.TotalValue.Equal(dec("174.54")), summary.TotalValue.String())
}

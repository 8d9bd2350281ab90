package valuator

import (
	"context"
	"log/slog"

	"github.com/KotFed0t/portfolio_analyzer/internal/model"
	"github.com/KotFed0t/portfolio_analyzer/internal/service"
	"github.com/KotFed0t/portfolio_analyzer/utils"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

var hundred = decimal.NewFromInt(100)

type PriceOracle interface {
	LatestPrice(ctx context.Context, symbol string) (decimal.Decimal, bool)
}

type FxOracle interface {
	UsdToTarget(ctx context.Context) model.FxRate
}

type Valuator struct {
	symbols     model.SymbolSet
	prices      PriceOracle
	fx          FxOracle
	currency    string
	maxParallel int
}

func New(symbols model.SymbolSet, prices PriceOracle, fx FxOracle, currency string, maxParallel int) *Valuator {
	if maxParallel < 1 {
		maxParallel = 1
	}
	return &Valuator{
		symbols:     symbols,
		prices:      prices,
		fx:          fx,
		currency:    currency,
		maxParallel: maxParallel,
	}
}

// Valuate prices holdings in the target currency and classifies each one by
// its share of the total. The first invalid or unpriceable holding in input
// order aborts the whole valuation. AIInsight is left empty.
func (v *Valuator) Valuate(ctx context.Context, holdings []model.Holding) (model.PortfolioSummary, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Valuator.Valuate"

	slog.Debug("Valuate start", slog.String("rqID", rqID), slog.String("op", op), slog.Int("holdings", len(holdings)))
	defer func() {
		slog.Debug("Valuate finished", slog.String("rqID", rqID), slog.String("op", op))
	}()

	// Validation is pure, so the prefix of valid holdings is known before any
	// lookup. Holdings past the first invalid one are never priced.
	valid := make([]model.Holding, 0, len(holdings))
	var validationErr error
	for _, h := range holdings {
		h.Symbol = model.NormalizeSymbol(h.Symbol)
		if err := v.validate(h); err != nil {
			validationErr = err
			break
		}
		valid = append(valid, h)
	}

	if len(valid) == 0 && validationErr != nil {
		slog.Info("holding rejected", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", validationErr.Error()))
		return model.PortfolioSummary{}, validationErr
	}

	summary := model.PortfolioSummary{
		TotalValue: decimal.Zero,
		Currency:   v.currency,
		Breakdown:  make([]model.PricedHolding, 0, len(valid)),
	}

	if len(valid) == 0 {
		return summary, nil
	}

	prices, fxRate := v.fetchQuotes(ctx, valid)
	summary.FxRate = fxRate

	for _, h := range valid {
		native, ok := prices[h.Symbol]
		if !ok {
			err := &service.PriceUnavailableError{Symbol: h.Symbol}
			slog.Warn("valuation aborted", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
			return model.PortfolioSummary{}, err
		}

		price := native.Mul(fxRate.Rate).Round(2)
		value := price.Mul(h.Quantity).Round(2)
		summary.TotalValue = summary.TotalValue.Add(value)

		summary.Breakdown = append(summary.Breakdown, model.PricedHolding{
			Symbol:   h.Symbol,
			Quantity: h.Quantity,
			Price:    price,
			Value:    value,
		})
	}

	if validationErr != nil {
		slog.Info("holding rejected", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", validationErr.Error()))
		return model.PortfolioSummary{}, validationErr
	}

	summary.TotalValue = summary.TotalValue.Round(2)
	classify(summary.Breakdown, summary.TotalValue)

	slog.Debug(
		"portfolio valuated",
		slog.String("rqID", rqID),
		slog.String("op", op),
		slog.String("total", summary.TotalValue.String()),
		slog.String("fxRate", fxRate.Rate.String()),
		slog.Bool("fxDegraded", fxRate.Degraded),
	)

	return summary, nil
}

func (v *Valuator) validate(h model.Holding) error {
	if !v.symbols.Contains(h.Symbol) {
		return &service.UnsupportedSymbolError{Symbol: h.Symbol}
	}
	if !h.Quantity.IsPositive() {
		return &service.InvalidQuantityError{Symbol: h.Symbol}
	}
	return nil
}

// fetchQuotes looks up every distinct symbol and the fx rate concurrently.
// Lookups are not cancelled on failure, so the caller can still report the
// first failing holding in input order.
func (v *Valuator) fetchQuotes(ctx context.Context, holdings []model.Holding) (map[string]decimal.Decimal, model.FxRate) {
	symbols := make([]string, 0, len(holdings))
	seen := make(map[string]struct{}, len(holdings))
	for _, h := range holdings {
		if _, ok := seen[h.Symbol]; ok {
			continue
		}
		seen[h.Symbol] = struct{}{}
		symbols = append(symbols, h.Symbol)
	}

	type quote struct {
		price decimal.Decimal
		ok    bool
	}
	quotes := make([]quote, len(symbols))
	var fxRate model.FxRate

	var g errgroup.Group
	g.SetLimit(v.maxParallel)

	g.Go(func() error {
		fxRate = v.fx.UsdToTarget(ctx)
		return nil
	})

	for i, symbol := range symbols {
		g.Go(func() error {
			price, ok := v.prices.LatestPrice(ctx, symbol)
			quotes[i] = quote{price: price, ok: ok}
			return nil
		})
	}

	_ = g.Wait()

	res := make(map[string]decimal.Decimal, len(symbols))
	for i, symbol := range symbols {
		if quotes[i].ok {
			res[symbol] = quotes[i].price
		}
	}

	return res, fxRate
}

func classify(breakdown []model.PricedHolding, total decimal.Decimal) {
	for i := range breakdown {
		pct := decimal.Zero
		if total.IsPositive() {
			pct = breakdown[i].Value.Mul(hundred).Div(total).Round(2)
		}
		breakdown[i].Percentage = pct
		breakdown[i].Risk = model.ClassifyRisk(pct)
	}
}

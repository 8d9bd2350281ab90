package priceOracle

import (
	"context"
	"log/slog"

	"github.com/KotFed0t/portfolio_analyzer/internal/model/yahooModel"
	"github.com/KotFed0t/portfolio_analyzer/utils"
	"github.com/shopspring/decimal"
)

type MarketApi interface {
	GetLatestPrice(ctx context.Context, symbol string) (yahooModel.Price, error)
}

type Cache interface {
	GetPrice(ctx context.Context, symbol string) (decimal.Decimal, error)
}

type PriceOracle struct {
	api   MarketApi
	cache Cache
}

// New builds the oracle. cache may be nil, then every lookup goes to the api.
func New(api MarketApi, cache Cache) *PriceOracle {
	return &PriceOracle{api: api, cache: cache}
}

// LatestPrice returns the latest close for symbol in its native currency,
// rounded to cents. ok is false when no usable price could be obtained.
func (o *PriceOracle) LatestPrice(ctx context.Context, symbol string) (price decimal.Decimal, ok bool) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PriceOracle.LatestPrice"

	if o.cache != nil {
		cached, err := o.cache.GetPrice(ctx, symbol)
		if err == nil && cached.IsPositive() {
			slog.Debug("price taken from cache", slog.String("rqID", rqID), slog.String("op", op), slog.String("symbol", symbol))
			return cached.Round(2), true
		}
		if err != nil {
			slog.Debug("can't get price from cache", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		}
	}

	res, err := o.api.GetLatestPrice(ctx, symbol)
	if err != nil {
		slog.Warn("price unavailable", slog.String("rqID", rqID), slog.String("op", op), slog.String("symbol", symbol), slog.String("err", err.Error()))
		return decimal.Decimal{}, false
	}

	if !res.Close.IsPositive() {
		slog.Warn("non positive price", slog.String("rqID", rqID), slog.String("op", op), slog.String("symbol", symbol), slog.String("price", res.Close.String()))
		return decimal.Decimal{}, false
	}

	return res.Close.Round(2), true
}

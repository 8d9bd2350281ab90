package fxOracle

import (
	"context"
	"log/slog"

	"github.com/KotFed0t/portfolio_analyzer/internal/model"
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

type FxOracle struct {
	api      MarketApi
	cache    Cache
	symbol   string
	fallback decimal.Decimal
}

// New builds the oracle for the market symbol of the USD to target pair,
// e.g. USDINR=X. cache may be nil.
func New(api MarketApi, cache Cache, symbol string, fallback decimal.Decimal) *FxOracle {
	return &FxOracle{
		api:      api,
		cache:    cache,
		symbol:   symbol,
		fallback: fallback,
	}
}

func (o *FxOracle) Fallback() model.FxRate {
	return model.FxRate{Rate: o.fallback, Degraded: true}
}

// UsdToTarget never fails: provider errors yield the fallback rate with
// Degraded set.
func (o *FxOracle) UsdToTarget(ctx context.Context) model.FxRate {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "FxOracle.UsdToTarget"

	if o.cache != nil {
		cached, err := o.cache.GetPrice(ctx, o.symbol)
		if err == nil && cached.IsPositive() {
			return model.FxRate{Rate: cached.Round(2)}
		}
	}

	res, err := o.api.GetLatestPrice(ctx, o.symbol)
	if err != nil {
		slog.Warn("fx rate unavailable, using fallback", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()), slog.String("fallback", o.fallback.String()))
		return o.Fallback()
	}

	if !res.Close.IsPositive() {
		slog.Warn("non positive fx rate, using fallback", slog.String("rqID", rqID), slog.String("op", op), slog.String("rate", res.Close.String()))
		return o.Fallback()
	}

	return model.FxRate{Rate: res.Close.Round(2)}
}

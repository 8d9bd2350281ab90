package yahooApi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/KotFed0t/portfolio_analyzer/config"
	"github.com/KotFed0t/portfolio_analyzer/internal/externalApi"
	"github.com/KotFed0t/portfolio_analyzer/internal/model/yahooModel"
	"github.com/KotFed0t/portfolio_analyzer/utils"
	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"
)

const chartUrl = "/v8/finance/chart/{symbol}"

type YahooApi struct {
	client  *resty.Client
	limiter *rate.Limiter
}

func New(cfg *config.Config) *YahooApi {
	client := resty.New().
		SetDebug(cfg.API.Debug).
		SetTimeout(cfg.API.Timeout).
		SetBaseURL(cfg.API.YahooApi.Url).
		SetHeader("User-Agent", cfg.API.YahooApi.UserAgent)

	limit := cfg.API.YahooApi.RateLimit
	if limit <= 0 {
		limit = 1
	}

	return &YahooApi{client: client, limiter: rate.NewLimiter(rate.Limit(limit), limit)}
}

// GetLatestPrice returns the last settled daily close for symbol in the
// currency the exchange quotes it in.
func (a *YahooApi) GetLatestPrice(ctx context.Context, symbol string) (yahooModel.Price, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "YahooApi.GetLatestPrice"

	slog.Debug("start YahooApi.GetLatestPrice request", slog.String("rqID", rqID), slog.String("symbol", symbol))

	if err := a.limiter.Wait(ctx); err != nil {
		slog.Error("rate limiter wait failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return yahooModel.Price{}, err
	}

	params := map[string]string{
		"range":    "5d",
		"interval": "1d",
	}

	resp, err := a.client.R().
		SetContext(ctx).
		SetHeader("Accept", "application/json").
		SetPathParam("symbol", symbol).
		SetQueryParams(params).
		Get(chartUrl)

	if err != nil {
		slog.Error("error while dialing YahooApi", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return yahooModel.Price{}, err
	}

	if resp.StatusCode() == http.StatusNotFound {
		slog.Warn("symbol not found in YahooApi", slog.String("rqID", rqID), slog.String("op", op), slog.String("symbol", symbol))
		return yahooModel.Price{}, externalApi.ErrNotFound
	}

	if resp.IsError() {
		slog.Error("YahooApi responded with error status", slog.String("rqID", rqID), slog.String("op", op), slog.Int("status", resp.StatusCode()))
		return yahooModel.Price{}, fmt.Errorf("yahoo api status %d", resp.StatusCode())
	}

	rawChart := yahooModel.RawChart{}
	err = json.Unmarshal(resp.Body(), &rawChart)
	if err != nil {
		slog.Error("can't unmarshall response into yahooModel.RawChart", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return yahooModel.Price{}, err
	}

	res, err := a.parseRawChart(rawChart)
	if err != nil {
		slog.Error("can't parse raw chart", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return yahooModel.Price{}, err
	}

	if res.Symbol == "" {
		res.Symbol = symbol
	}

	slog.Debug("YahooApi.GetLatestPrice request complete", slog.String("rqID", rqID), slog.String("symbol", symbol), slog.String("close", res.Close.String()))

	return res, nil
}

// GetLatestPrices fetches symbols one by one and skips the ones that failed.
// An error is returned only when nothing could be fetched.
func (a *YahooApi) GetLatestPrices(ctx context.Context, symbols []string) (map[string]yahooModel.Price, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "YahooApi.GetLatestPrices"

	res := make(map[string]yahooModel.Price, len(symbols))
	var lastErr error

	for _, symbol := range symbols {
		price, err := a.GetLatestPrice(ctx, symbol)
		if err != nil {
			slog.Warn("skip symbol", slog.String("rqID", rqID), slog.String("op", op), slog.String("symbol", symbol), slog.String("err", err.Error()))
			lastErr = err
			continue
		}
		res[symbol] = price
	}

	if len(res) == 0 && lastErr != nil {
		return nil, lastErr
	}

	return res, nil
}

func (a *YahooApi) parseRawChart(rawChart yahooModel.RawChart) (yahooModel.Price, error) {
	if rawChart.Chart.Error != nil {
		if rawChart.Chart.Error.Code == "Not Found" {
			return yahooModel.Price{}, externalApi.ErrNotFound
		}
		return yahooModel.Price{}, fmt.Errorf("chart error %s: %s", rawChart.Chart.Error.Code, rawChart.Chart.Error.Description)
	}

	if len(rawChart.Chart.Result) == 0 {
		return yahooModel.Price{}, externalApi.ErrEmptyResult
	}

	result := rawChart.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		return yahooModel.Price{}, errors.New("chart result without quote indicators")
	}

	closes := result.Indicators.Quote[0].Close
	for i := len(closes) - 1; i >= 0; i-- {
		if closes[i] == nil || *closes[i] <= 0 {
			continue
		}

		return yahooModel.Price{
			Symbol:   result.Meta.Symbol,
			Currency: result.Meta.Currency,
			Close:    decimal.NewFromFloat(*closes[i]),
		}, nil
	}

	return yahooModel.Price{}, externalApi.ErrEmptyResult
}

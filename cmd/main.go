package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/KotFed0t/portfolio_analyzer/config"
	"github.com/KotFed0t/portfolio_analyzer/data"
	"github.com/KotFed0t/portfolio_analyzer/data/cache"
	"github.com/KotFed0t/portfolio_analyzer/internal/externalApi/geminiApi"
	"github.com/KotFed0t/portfolio_analyzer/internal/externalApi/groqApi"
	"github.com/KotFed0t/portfolio_analyzer/internal/externalApi/yahooApi"
	"github.com/KotFed0t/portfolio_analyzer/internal/httpServer"
	"github.com/KotFed0t/portfolio_analyzer/internal/insight"
	"github.com/KotFed0t/portfolio_analyzer/internal/model"
	"github.com/KotFed0t/portfolio_analyzer/internal/oracle/fxOracle"
	"github.com/KotFed0t/portfolio_analyzer/internal/oracle/priceOracle"
	"github.com/KotFed0t/portfolio_analyzer/internal/reportGenerator/xslsxGenerator"
	"github.com/KotFed0t/portfolio_analyzer/internal/scheduler"
	"github.com/KotFed0t/portfolio_analyzer/internal/service/analysisService"
	"github.com/KotFed0t/portfolio_analyzer/internal/service/valuator"
	"github.com/KotFed0t/portfolio_analyzer/internal/transport/rest"
	"github.com/shopspring/decimal"
)

func main() {
	cfg := config.MustLoad()

	setupLogger(cfg)

	slog.Debug("config", slog.Any("cfg", cfg))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// interface-typed so that a disabled cache stays a true nil
	var (
		priceCache   priceOracle.Cache
		fxCache      fxOracle.Cache
		serviceCache analysisService.Cache
	)

	if cfg.Redis.Enabled {
		redisClient := data.NewRedisClient(cfg)
		defer redisClient.Close()

		redisCache := cache.NewRedisCache(redisClient, cfg)
		priceCache, fxCache, serviceCache = redisCache, redisCache, redisCache
	}

	yahooApiClient := yahooApi.New(cfg)

	prices := priceOracle.New(yahooApiClient, priceCache)
	fx := fxOracle.New(yahooApiClient, fxCache, cfg.Portfolio.FxSymbol, decimal.NewFromFloat(cfg.Portfolio.FxFallbackRate))

	symbols := model.NewSymbolSet(cfg.Portfolio.SupportedSymbols)

	portfolioValuator := valuator.New(symbols, prices, fx, cfg.Portfolio.TargetCurrency, cfg.Valuation.MaxParallelLookups)

	insightGenerator := insight.New(newTextGenerator(ctx, cfg), cfg.Portfolio.TargetCurrency)

	reportGenerator := xslsxGenerator.New()

	analysisSrv := analysisService.New(cfg, symbols, portfolioValuator, insightGenerator, reportGenerator, yahooApiClient, serviceCache)

	if serviceCache != nil {
		sched := scheduler.New(cfg.Jobs.Timeout)
		sched.NewIntervalJob("fill price cache", analysisSrv.FillPriceCache, cfg.Jobs.FillPriceCacheInterval, true)
		sched.Start()
		defer sched.Stop()
	}

	ctrl := rest.NewController(analysisSrv)

	srv := httpServer.New(cfg, ctrl)
	srv.Start()
	defer srv.Stop()

	// Waiting interruption signal
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	<-interrupt
}

// newTextGenerator picks the insight provider. A nil result means no
// credential is set and the insight falls back to a placeholder.
func newTextGenerator(ctx context.Context, cfg *config.Config) insight.TextGenerator {
	switch strings.ToLower(cfg.Insight.Provider) {
	case "gemini":
		if cfg.Insight.GeminiApi.Key == "" {
			slog.Warn("GEMINI_API_KEY is not set, AI insight disabled")
			return nil
		}
		client, err := geminiApi.New(ctx, cfg)
		if err != nil {
			slog.Error("can't create gemini client, AI insight disabled", slog.String("err", err.Error()))
			return nil
		}
		return client
	default:
		if cfg.Insight.GroqApi.Key == "" {
			slog.Warn("GROQ_API_KEY is not set, AI insight disabled")
			return nil
		}
		return groqApi.New(cfg)
	}
}

func setupLogger(cfg *config.Config) {
	var logLevel slog.Level

	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warning":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(log)
}

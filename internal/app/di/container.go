package di

import (
	"context"
	"errors"
	"fmt"
	"time"

	redisv9 "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"signal_backend/internal/app/config"
	"signal_backend/internal/feature/analysis/adapters/gemini"
	analysisuc "signal_backend/internal/feature/analysis/usecase"
	"signal_backend/internal/feature/trades/ledger"
	tradesuc "signal_backend/internal/feature/trades/usecase"
	infrahttp "signal_backend/internal/platform/http"
	infraredis "signal_backend/internal/platform/redis"
	"signal_backend/internal/shared/opstats"
	"signal_backend/internal/shared/ratelimiter"
)

// App holds the wired usecases shared by the server and the one-shot commands.
type App struct {
	Config  config.Config
	Ledger  *ledger.Ledger
	Stats   *opstats.Counters
	Signals *analysisuc.SignalUsecase
	Monitor *tradesuc.MonitorUsecase
	Reports *tradesuc.ReportUsecase

	closers []func() error
}

// Build connects the stores and external clients and wires the usecases.
// Redis and Gemini are optional: a failure there is logged and the feature is disabled.
// The trade history must load, otherwise a later write would overwrite it.
func Build(ctx context.Context, cfg config.Config, version string) (*App, error) {
	app := &App{Config: cfg}

	httpClient := infrahttp.NewHTTPClient(cfg.TwelveData.Timeout)

	// Redis
	var rdb *redisv9.Client
	if cfg.Redis.Enabled() {
		if tmp, err := infraredis.NewRedisClient(ctx, cfg.Redis); err != nil {
			log.Warn().Err(err).Msg("Redis unavailable. Running without cache.")
		} else {
			rdb = tmp
			app.closers = append(app.closers, rdb.Close)
		}
	}

	market := NewMarket(cfg.TwelveData, httpClient, cfg.Retry, rdb, cfg.MarketCacheTTL)

	notifier, err := NewNotifier(cfg.Telegram, httpClient, cfg.Retry)
	if err != nil {
		_ = app.close()
		return nil, fmt.Errorf("telegram: %w", err)
	}

	store, closeStore, err := NewTradeStore(cfg)
	if err != nil {
		_ = app.close()
		return nil, err
	}
	app.closers = append(app.closers, closeStore)

	app.Ledger = ledger.New(store)
	if err := app.Ledger.Load(ctx); err != nil {
		_ = app.close()
		return nil, err
	}

	app.Stats = opstats.New(version, cfg.Cryptos, time.Now().UTC())
	limiter := ratelimiter.NewRateLimiter(cfg.FetchPacing, 1)

	var opts []analysisuc.Option
	if cfg.CommentaryEnabled {
		if c, err := gemini.NewGeminiCommentator(ctx, cfg.Gemini); err != nil {
			log.Warn().Err(err).Msg("Gemini unavailable. Signals are sent without commentary.")
		} else {
			opts = append(opts, analysisuc.WithCommentator(c))
		}
	}

	app.Signals = analysisuc.NewSignalUsecase(market, app.Ledger, notifier, app.Stats, limiter, opts...)
	app.Monitor = tradesuc.NewMonitorUsecase(market, app.Ledger, notifier, limiter)
	app.Reports = tradesuc.NewReportUsecase(app.Monitor, app.Ledger, notifier)
	return app, nil
}

// Close flushes pending ledger writes and releases connections.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	if a.Ledger != nil {
		if err := a.Ledger.Flush(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if err := a.close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (a *App) close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

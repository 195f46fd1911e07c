package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	candle "signal_backend/internal/feature/candles/domain/entity"
	"signal_backend/internal/feature/trades/domain"
	"signal_backend/internal/feature/trades/domain/entity"
	"signal_backend/internal/shared/apperr"
	"signal_backend/internal/shared/ratelimiter"
)

const (
	// monitorInterval はトレード判定に使うエントリー時間足です。
	monitorInterval = candle.Interval1h
	// monitorOutputSize は分析と同じ件数にしてキャッシュを共有します。
	monitorOutputSize = 100
	// notifyTimeout は pass の ctx がキャンセルされた後も確定済みの決着を送り切るための上限です。
	notifyTimeout = 30 * time.Second
)

// PassResult は1回の監視パスの集計です。
type PassResult struct {
	Checked  int `json:"checked"`
	Resolved int `json:"resolved"`
	Skipped  int `json:"skipped"`
}

// MonitorUsecase は ACTIVE なトレードを最新価格と照合し、決着したものを確定させます。
// パスは mutex で直列化されるため、cron とレポートからの同時呼び出しでも二重判定しません。
type MonitorUsecase struct {
	market      MarketRepository
	ledger      TradeLedger
	notifier    Notifier
	rateLimiter ratelimiter.RateLimiterInterface

	mu sync.Mutex
}

// NewMonitorUsecase は新しい MonitorUsecase を作成します。
func NewMonitorUsecase(market MarketRepository, ledger TradeLedger, notifier Notifier, rateLimiter ratelimiter.RateLimiterInterface) *MonitorUsecase {
	return &MonitorUsecase{market: market, ledger: ledger, notifier: notifier, rateLimiter: rateLimiter}
}

// CheckActive は監視パスを1回実行します。
// 価格取得に失敗した銘柄のトレードはスキップして次のパスで再判定します。
// ctx がキャンセルされた場合は残りの銘柄を処理せずに ctx のエラーを返します。
func (m *MonitorUsecase) CheckActive(ctx context.Context) (PassResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var res PassResult
	active := m.ledger.Active()
	if len(active) == 0 {
		return res, nil
	}

	logger := log.With().Str("pass_id", uuid.NewString()).Logger()
	logger.Debug().Int("active", len(active)).Msg("monitor pass started")

	symbols, bySymbol := groupBySymbol(active)
	resolutions := make([]entity.Resolution, 0)
	for _, symbol := range symbols {
		trades := bySymbol[symbol]

		price, err := m.latestPrice(ctx, symbol)
		if err != nil {
			if ctx.Err() != nil {
				return res, ctx.Err()
			}
			logEvent(&logger, err).Err(err).Str("symbol", symbol).Int("trades", len(trades)).Msg("price unavailable, trades skipped")
			res.Skipped += len(trades)
			continue
		}

		for _, t := range trades {
			res.Checked++
			if r, ok := domain.Evaluate(t, price); ok {
				resolutions = append(resolutions, r)
			}
		}
	}

	applied, err := m.ledger.Apply(ctx, resolutions)
	if err != nil && !errors.Is(err, apperr.ErrPersistence) {
		return res, err
	}
	if err != nil {
		// メモリ上は確定済みなので通知は続ける
		logger.Error().Err(err).Int("resolved", len(applied)).Msg("trade resolutions not persisted")
	}
	res.Resolved = len(applied)

	// 決着はメモリ上で確定済みのため、ctx がキャンセルされても通知は送る
	sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
	defer cancel()
	for _, r := range applied {
		symbol := symbolOf(active, r.TradeID)
		if err := m.notifier.Send(sendCtx, formatUpdate(symbol, r)); err != nil {
			logger.Warn().Err(fmt.Errorf("%w: %w", apperr.ErrNotification, err)).Int("trade_id", r.TradeID).Msg("update not delivered")
		}
		logger.Info().Int("trade_id", r.TradeID).Str("symbol", symbol).Str("status", string(r.Status)).
			Float64("pnl_percent", r.PnLPercent).Msg("trade resolved")
	}

	logger.Info().Int("checked", res.Checked).Int("resolved", res.Resolved).Int("skipped", res.Skipped).Msg("monitor pass finished")
	return res, nil
}

// latestPrice は1時間足の最終終値を返します。
func (m *MonitorUsecase) latestPrice(ctx context.Context, symbol string) (float64, error) {
	if err := m.rateLimiter.Wait(ctx); err != nil {
		return 0, err
	}
	cs, err := m.market.GetTimeSeries(ctx, symbol, monitorInterval, monitorOutputSize)
	if err != nil {
		return 0, err
	}
	price, ok := candle.LastClose(cs)
	if !ok {
		return 0, fmt.Errorf("%w: no close for %s", apperr.ErrDataUnavailable, symbol)
	}
	return price, nil
}

// groupBySymbol は最初に現れた順を保ったまま銘柄ごとにまとめます。
func groupBySymbol(trades []entity.Trade) ([]string, map[string][]entity.Trade) {
	order := make([]string, 0)
	by := make(map[string][]entity.Trade)
	for _, t := range trades {
		if _, ok := by[t.Symbol]; !ok {
			order = append(order, t.Symbol)
		}
		by[t.Symbol] = append(by[t.Symbol], t)
	}
	return order, by
}

func symbolOf(trades []entity.Trade, id int) string {
	for _, t := range trades {
		if t.ID == id {
			return t.Symbol
		}
	}
	return ""
}

// logEvent はスキップ可能なエラーを Warn、それ以外を Error で記録します。
func logEvent(l *zerolog.Logger, err error) *zerolog.Event {
	if apperr.Skippable(err) {
		return l.Warn()
	}
	return l.Error()
}

// Package usecase はシグナル判定のオーケストレーションを実装します。
package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"signal_backend/internal/feature/analysis/domain/decision"
	"signal_backend/internal/feature/analysis/domain/entity"
	"signal_backend/internal/feature/analysis/domain/indicator"
	"signal_backend/internal/feature/analysis/domain/pivot"
	candle "signal_backend/internal/feature/candles/domain/entity"
	trade "signal_backend/internal/feature/trades/domain/entity"
	"signal_backend/internal/shared/apperr"
	"signal_backend/internal/shared/ratelimiter"
)

const (
	// trendOutputSize は4時間足・1時間足の取得件数です。
	trendOutputSize = 100
	// dailyOutputSize は日足の取得件数です。ピボットは最後から2本目を使います。
	dailyOutputSize = 5
	// notifyTimeout は記録済みシグナルの通知を ctx のキャンセル後も送り切るための上限です。
	notifyTimeout = 30 * time.Second

	// CommentaryPromptTemplate はシグナルに添える短い解説のプロンプトです。
	CommentaryPromptTemplate = "In two short sentences, explain a %s signal on %s at %.2f: 4h trend %s, 1h trend %s, price %s the daily pivot %.2f. No financial advice disclaimers."
)

// MarketRepository は時系列データを取得するリポジトリのインターフェイスです。
// Following Go convention: interfaces are defined by the consumer (usecase), not the provider (adapters).
type MarketRepository interface {
	GetTimeSeries(ctx context.Context, symbol, interval string, outputsize int) ([]candle.Candle, error)
}

// TradeRecorder は方向性シグナルをトレードとして記録します。
type TradeRecorder interface {
	Record(ctx context.Context, nt trade.NewTrade) (trade.Trade, error)
}

// Notifier はチャットへのメッセージ送信を抽象化します。
type Notifier interface {
	Send(ctx context.Context, text string) error
}

// Commentator はシグナルに添える解説文を生成します。
type Commentator interface {
	Analyze(ctx context.Context, prompt string) (string, error)
}

// StatsRecorder は分析カウンタを更新します。
type StatsRecorder interface {
	RecordAnalysis(at time.Time)
}

// SignalUsecase は1銘柄ずつ多時間足のトレンドとピボットを評価し、
// 方向性シグナルであればトレードの記録と通知を行います。
type SignalUsecase struct {
	market      MarketRepository
	trades      TradeRecorder
	notifier    Notifier
	stats       StatsRecorder
	rateLimiter ratelimiter.RateLimiterInterface
	commentator Commentator
	now         func() time.Time
}

// Option は SignalUsecase の任意設定です。
type Option func(*SignalUsecase)

// WithCommentator は解説文の生成を有効にします。
func WithCommentator(c Commentator) Option {
	return func(u *SignalUsecase) { u.commentator = c }
}

// WithClock は現在時刻の取得方法を差し替えます。
func WithClock(now func() time.Time) Option {
	return func(u *SignalUsecase) { u.now = now }
}

// NewSignalUsecase は新しい SignalUsecase を作成します。
func NewSignalUsecase(market MarketRepository, trades TradeRecorder, notifier Notifier, stats StatsRecorder, rateLimiter ratelimiter.RateLimiterInterface, opts ...Option) *SignalUsecase {
	u := &SignalUsecase{
		market:      market,
		trades:      trades,
		notifier:    notifier,
		stats:       stats,
		rateLimiter: rateLimiter,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// Analyze は1銘柄を評価します。
// データ不足や取得失敗はエラーとして返し、副作用は起こしません。
// WAIT の場合はトレードも通知も作りません。
func (u *SignalUsecase) Analyze(ctx context.Context, symbol string) (entity.Signal, error) {
	now := u.now().UTC()

	h4raw, err := u.fetch(ctx, symbol, candle.Interval4h, trendOutputSize)
	if err != nil {
		return entity.Signal{}, err
	}
	h1raw, err := u.fetch(ctx, symbol, candle.Interval1h, trendOutputSize)
	if err != nil {
		return entity.Signal{}, err
	}
	daily, err := u.fetch(ctx, symbol, candle.IntervalDay, dailyOutputSize)
	if err != nil {
		return entity.Signal{}, err
	}

	price, ok := candle.LastClose(h4raw)
	if !ok {
		return entity.Signal{}, fmt.Errorf("%w: no 4h close for %s", apperr.ErrDataUnavailable, symbol)
	}
	h4, err := indicator.Snapshot(candle.Completed(h4raw, candle.Interval4h, now))
	if err != nil {
		return entity.Signal{}, fmt.Errorf("%s 4h: %w", symbol, err)
	}
	h1, err := indicator.Snapshot(candle.Completed(h1raw, candle.Interval1h, now))
	if err != nil {
		return entity.Signal{}, fmt.Errorf("%s 1h: %w", symbol, err)
	}
	levels, err := pivot.Calculate(daily)
	if err != nil {
		return entity.Signal{}, fmt.Errorf("%s pivots: %w", symbol, err)
	}

	sig := decision.Decide(decision.Input{Symbol: symbol, Price: price, H4: h4, H1: h1, Pivots: levels, At: now})
	logger := log.With().Str("symbol", symbol).Str("signal", string(sig.Type)).Float64("price", price).Logger()
	if !sig.Type.IsDirectional() {
		logger.Debug().Str("reason", sig.Reason).Str("trend_4h", string(h4.Trend)).Str("trend_1h", string(h1.Trend)).Msg("no signal")
		return sig, nil
	}

	t, err := u.trades.Record(ctx, trade.NewTrade{
		Symbol:    symbol,
		Signal:    string(sig.Type),
		Entry:     sig.Price,
		TP1:       sig.TP1,
		TP2:       sig.TP2,
		SL:        sig.SL,
		CreatedAt: now,
	})
	if err != nil {
		if !errors.Is(err, apperr.ErrPersistence) {
			return sig, err
		}
		logger.Error().Err(err).Int("trade_id", t.ID).Msg("trade recorded in memory only")
	}

	msg := formatSignal(sig)
	if note := u.commentary(ctx, sig); note != "" {
		msg += "\n\n<i>" + escape(note) + "</i>"
	}
	sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
	defer cancel()
	if err := u.notifier.Send(sendCtx, msg); err != nil {
		logger.Warn().Err(fmt.Errorf("%w: %w", apperr.ErrNotification, err)).Int("trade_id", t.ID).Msg("signal not delivered")
	}

	u.stats.RecordAnalysis(now)
	logger.Info().Int("trade_id", t.ID).Float64("tp1", sig.TP1).Float64("tp2", sig.TP2).Float64("sl", sig.SL).Msg("signal emitted")
	return sig, nil
}

// AnalyzeAll は全銘柄を順に評価します。1銘柄の失敗は記録して次へ進みます。
// ctx がキャンセルされた場合だけ途中で終了します。
func (u *SignalUsecase) AnalyzeAll(ctx context.Context, symbols []string) ([]entity.Signal, error) {
	out := make([]entity.Signal, 0, len(symbols))
	for _, s := range symbols {
		sig, err := u.Analyze(ctx, s)
		if err != nil {
			if ctx.Err() != nil {
				return out, ctx.Err()
			}
			ev := log.Error()
			if apperr.Skippable(err) {
				ev = log.Warn()
			}
			ev.Err(err).Str("symbol", s).Msg("analysis skipped")
			continue
		}
		out = append(out, sig)
	}
	return out, nil
}

func (u *SignalUsecase) fetch(ctx context.Context, symbol, interval string, outputsize int) ([]candle.Candle, error) {
	if err := u.rateLimiter.Wait(ctx); err != nil {
		return nil, err
	}
	cs, err := u.market.GetTimeSeries(ctx, symbol, interval, outputsize)
	if err != nil {
		return nil, fmt.Errorf("fetch %s %s: %w", symbol, interval, err)
	}
	return cs, nil
}

// commentary は解説文を返します。失敗しても通知は止めません。
func (u *SignalUsecase) commentary(ctx context.Context, sig entity.Signal) string {
	if u.commentator == nil {
		return ""
	}
	side := "above"
	if sig.Price < sig.Pivots.PP {
		side = "below"
	}
	prompt := fmt.Sprintf(CommentaryPromptTemplate, sig.Type, sig.Symbol, sig.Price, sig.Trend4h, sig.Trend1h, side, sig.Pivots.PP)
	note, err := u.commentator.Analyze(ctx, prompt)
	if err != nil {
		log.Warn().Err(err).Str("symbol", sig.Symbol).Msg("commentary unavailable")
		return ""
	}
	return note
}

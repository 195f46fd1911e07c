package usecase

import (
	"context"
	"time"

	candle "signal_backend/internal/feature/candles/domain/entity"
	"signal_backend/internal/feature/trades/domain/entity"
)

// MarketRepository は最新価格の取得に使う市場データのインターフェイスです。
// Following Go convention: interfaces are defined by the consumer (usecase), not the provider (adapters).
type MarketRepository interface {
	GetTimeSeries(ctx context.Context, symbol, interval string, outputsize int) ([]candle.Candle, error)
}

// Notifier はチャットへのメッセージ送信を抽象化します。
type Notifier interface {
	Send(ctx context.Context, text string) error
}

// TradeLedger はトレード履歴への読み書きを抽象化します。実装は ledger.Ledger です。
type TradeLedger interface {
	Active() []entity.Trade
	Since(t time.Time) []entity.Trade
	Apply(ctx context.Context, rs []entity.Resolution) ([]entity.Resolution, error)
}

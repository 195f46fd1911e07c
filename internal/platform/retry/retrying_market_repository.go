// Package retry はリポジトリに有限回のリトライを付与するデコレータを提供します。
package retry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog/log"

	"signal_backend/internal/feature/analysis/usecase"
	"signal_backend/internal/feature/candles/domain/entity"
	"signal_backend/internal/shared/apperr"
)

// Policy は試行回数と試行間隔です。Attempts は初回を含みます。
type Policy struct {
	Attempts int
	Delay    time.Duration
}

// DefaultPolicy は3回まで2秒間隔で試行します。
var DefaultPolicy = Policy{Attempts: 3, Delay: 2 * time.Second}

// RetryingMarketRepository は MarketRepository の一時的な失敗を再試行します。
// 試行を使い切った場合は apperr.ErrTransient を返します。
// apperr.ErrDataUnavailable と ctx のキャンセルは再試行しません。
type RetryingMarketRepository struct {
	inner  usecase.MarketRepository
	policy Policy
}

var _ usecase.MarketRepository = (*RetryingMarketRepository)(nil)

// NewRetryingMarketRepository は新しい RetryingMarketRepository を作成します。
func NewRetryingMarketRepository(inner usecase.MarketRepository, policy Policy) *RetryingMarketRepository {
	if policy.Attempts < 1 {
		policy.Attempts = 1
	}
	if policy.Delay < 0 {
		policy.Delay = 0
	}
	return &RetryingMarketRepository{inner: inner, policy: policy}
}

// GetTimeSeries は inner を呼び出し、失敗時は一定間隔で再試行します。
func (r *RetryingMarketRepository) GetTimeSeries(ctx context.Context, symbol, interval string, outputsize int) ([]entity.Candle, error) {
	var out []entity.Candle
	attempt := 0
	op := func() error {
		attempt++
		cs, err := r.inner.GetTimeSeries(ctx, symbol, interval, outputsize)
		if err != nil {
			if errors.Is(err, apperr.ErrDataUnavailable) || ctx.Err() != nil {
				return backoff.Permanent(err)
			}
			return err
		}
		out = cs
		return nil
	}
	notify := func(err error, wait time.Duration) {
		log.Warn().Err(err).Str("symbol", symbol).Str("interval", interval).
			Int("attempt", attempt).Dur("retry_in", wait).Msg("market fetch failed, retrying")
	}

	b := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(r.policy.Delay), uint64(r.policy.Attempts-1)),
		ctx,
	)
	err := backoff.RetryNotify(op, b, notify)
	if err == nil {
		return out, nil
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if errors.Is(err, apperr.ErrDataUnavailable) {
		return nil, err
	}
	return nil, fmt.Errorf("%w: %s %s after %d attempts: %w", apperr.ErrTransient, symbol, interval, attempt, err)
}

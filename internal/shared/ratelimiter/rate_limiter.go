// Package ratelimiter paces calls to external market-data APIs.
package ratelimiter

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

// RateLimiterInterface は、API呼び出しなどの操作の頻度を制限するインターフェースです。
type RateLimiterInterface interface {
	Wait(ctx context.Context) error
}

// RateLimiter は token bucket で API 呼び出しの間隔を空けます。
type RateLimiter struct {
	limiter *rate.Limiter
	every   time.Duration
}

// NewRateLimiter は every ごとに1回、最大 burst 回まで連続して呼び出せる RateLimiter を生成します。
// every が0以下の場合は待機しません。
func NewRateLimiter(every time.Duration, burst int) *RateLimiter {
	if burst < 1 {
		burst = 1
	}
	limit := rate.Inf
	if every > 0 {
		limit = rate.Every(every)
	}
	return &RateLimiter{limiter: rate.NewLimiter(limit, burst), every: every}
}

// Wait はトークンが取得できるまで待機します。ctx がキャンセルされた場合はエラーを返します。
func (rl *RateLimiter) Wait(ctx context.Context) error {
	r := rl.limiter.Reserve()
	if !r.OK() {
		return rl.limiter.Wait(ctx)
	}
	delay := r.Delay()
	if delay <= 0 {
		return nil
	}
	log.Debug().Dur("delay", delay).Msg("rate limit: pacing next call")

	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		r.Cancel()
		return ctx.Err()
	}
}

// Package di provides dependency injection factories for creating application components.
package di

import (
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"signal_backend/internal/feature/analysis/usecase"
	"signal_backend/internal/platform/cache"
	"signal_backend/internal/platform/externalapi/twelvedata"
	"signal_backend/internal/platform/retry"
)

// NewMarket builds the market data chain: Redis cache -> bounded retry -> Twelve Data.
// A nil rdb disables caching.
func NewMarket(cfg twelvedata.Config, client *http.Client, policy retry.Policy, rdb *redis.Client, cacheTTL time.Duration) usecase.MarketRepository {
	var market usecase.MarketRepository = twelvedata.NewTwelveDataMarket(cfg, client)
	market = retry.NewRetryingMarketRepository(market, policy)
	if rdb == nil {
		return market
	}
	return cache.NewCachingMarketRepository(rdb, cacheTTL, market, "market")
}

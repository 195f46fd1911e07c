package di

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"signal_backend/internal/app/config"
	tradeadapters "signal_backend/internal/feature/trades/adapters"
	"signal_backend/internal/feature/trades/ledger"
	"signal_backend/internal/platform/db"
)

// NewTradeStore opens the configured trade store. The returned close function releases
// the database connection and is a no-op for the JSON file store.
func NewTradeStore(cfg config.Config) (ledger.Store, func() error, error) {
	if cfg.TradeStore == config.StoreJSON {
		log.Info().Str("file", cfg.TradeFile).Msg("using JSON trade store")
		return tradeadapters.NewTradeFile(cfg.TradeFile), func() error { return nil }, nil
	}

	gdb, err := db.OpenDB(cfg.DB)
	if err != nil {
		return nil, nil, err
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	log.Info().Str("driver", cfg.DB.Driver).Msg("using database trade store")
	return tradeadapters.NewTradeRepository(gdb), sqlDB.Close, nil
}

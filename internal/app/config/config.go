// Package config は .env と環境変数からアプリケーション設定を読み込みます。
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"signal_backend/internal/feature/analysis/adapters/gemini"
	"signal_backend/internal/platform/db"
	"signal_backend/internal/platform/externalapi/twelvedata"
	"signal_backend/internal/platform/notify"
	"signal_backend/internal/platform/redis"
	"signal_backend/internal/platform/retry"
)

const (
	StoreDB   = "db"
	StoreJSON = "json"
)

// Config はプロセス全体の設定です。起動時に一度だけ読み込みます。
type Config struct {
	Cryptos []string // 監視対象（例: BTC/USD）
	Port    string   // HTTP ポート

	LogLevel  string
	LogFormat string // json | console

	Location         *time.Location // cron のタイムゾーン
	AnalysisSchedule string
	MonitorSchedule  string
	ReportSchedule   string
	StartupAnalysis  bool // 起動時に全銘柄を一度分析するか

	TwelveData     twelvedata.Config
	Retry          retry.Policy
	FetchPacing    time.Duration
	MarketCacheTTL time.Duration

	Telegram notify.TelegramConfig

	TradeStore string // db | json
	TradeFile  string
	DB         db.Config
	Redis      redis.Config

	JWTSecret     string
	JWTExpiration time.Duration

	CommentaryEnabled bool
	Gemini            gemini.Config
}

// Load は envFile（通常 ".env"）と環境変数から設定を読み込みます。
// ファイルが無い場合は環境変数とデフォルト値のみを使います。環境変数がファイルより優先されます。
func Load(envFile string) (Config, error) {
	v := viper.New()
	if envFile != "" {
		v.SetConfigFile(envFile)
		v.SetConfigType("env")
		_ = v.ReadInConfig()
	}
	v.AutomaticEnv()
	setDefaults(v)

	cfg := Config{
		Cryptos: splitList(v.GetString("CRYPTOS")),
		Port:    v.GetString("PORT"),

		LogLevel:  v.GetString("LOG_LEVEL"),
		LogFormat: v.GetString("LOG_FORMAT"),

		AnalysisSchedule: v.GetString("ANALYSIS_SCHEDULE"),
		MonitorSchedule:  v.GetString("MONITOR_SCHEDULE"),
		ReportSchedule:   v.GetString("REPORT_SCHEDULE"),
		StartupAnalysis:  v.GetBool("STARTUP_ANALYSIS"),

		TwelveData: twelvedata.Config{
			TwelveDataAPIKey: v.GetString("TWELVE_DATA_API_KEY"),
			BaseURL:          v.GetString("TWELVE_DATA_BASE_URL"),
			Timeout:          v.GetDuration("HTTP_TIMEOUT"),
		},
		Retry: retry.Policy{
			Attempts: v.GetInt("FETCH_RETRIES"),
			Delay:    v.GetDuration("FETCH_RETRY_DELAY"),
		},
		FetchPacing:    v.GetDuration("FETCH_PACING"),
		MarketCacheTTL: v.GetDuration("MARKET_CACHE_TTL"),

		Telegram: notify.TelegramConfig{
			Token:  v.GetString("TELEGRAM_BOT_TOKEN"),
			ChatID: strings.TrimSpace(v.GetString("TELEGRAM_CHAT_ID")),
		},

		TradeStore: strings.ToLower(v.GetString("TRADE_STORE")),
		TradeFile:  v.GetString("TRADE_FILE"),
		DB: db.Config{
			Driver:         strings.ToLower(v.GetString("DB_DRIVER")),
			DSN:            v.GetString("DB_DSN"),
			ConnectTimeout: v.GetDuration("DB_CONNECT_TIMEOUT"),
			Migrate:        v.GetBool("DB_MIGRATE"),
		},
		Redis: redis.Config{
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetString("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},

		JWTSecret:     v.GetString("JWT_SECRET"),
		JWTExpiration: v.GetDuration("JWT_EXPIRATION"),

		CommentaryEnabled: v.GetBool("COMMENTARY_ENABLED"),
		Gemini: gemini.Config{
			APIKey: v.GetString("GEMINI_API_KEY"),
			Model:  v.GetString("GEMINI_MODEL"),
		},
	}

	loc, err := time.LoadLocation(v.GetString("SCHEDULE_TZ"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid SCHEDULE_TZ: %w", err)
	}
	cfg.Location = loc

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("CRYPTOS", "BTC/USD,ETH/USD,SOL/USD")
	v.SetDefault("PORT", "10000")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("SCHEDULE_TZ", "UTC")
	v.SetDefault("ANALYSIS_SCHEDULE", "0 */2 * * *")
	v.SetDefault("MONITOR_SCHEDULE", "15,30,45 * * * *")
	v.SetDefault("REPORT_SCHEDULE", "0 9 * * *")
	v.SetDefault("STARTUP_ANALYSIS", true)

	v.SetDefault("TWELVE_DATA_BASE_URL", twelvedata.DefaultBaseURL)
	v.SetDefault("HTTP_TIMEOUT", "10s")
	v.SetDefault("FETCH_RETRIES", retry.DefaultPolicy.Attempts)
	v.SetDefault("FETCH_RETRY_DELAY", retry.DefaultPolicy.Delay)
	v.SetDefault("FETCH_PACING", "1s")
	v.SetDefault("MARKET_CACHE_TTL", "60s")

	v.SetDefault("TRADE_STORE", StoreDB)
	v.SetDefault("TRADE_FILE", "crypto_trade_history.json")
	v.SetDefault("DB_DRIVER", db.DriverSQLite)
	v.SetDefault("DB_CONNECT_TIMEOUT", "60s")
	v.SetDefault("DB_MIGRATE", true)
	v.SetDefault("REDIS_PORT", "6379")

	v.SetDefault("JWT_EXPIRATION", "24h")
	v.SetDefault("COMMENTARY_ENABLED", false)
	v.SetDefault("GEMINI_MODEL", gemini.DefaultModel)
}

func (c Config) validate() error {
	var errs []error
	if len(c.Cryptos) == 0 {
		errs = append(errs, errors.New("CRYPTOS must list at least one asset"))
	}
	if c.TradeStore != StoreDB && c.TradeStore != StoreJSON {
		errs = append(errs, fmt.Errorf("TRADE_STORE must be %q or %q, got %q", StoreDB, StoreJSON, c.TradeStore))
	}
	if c.Retry.Attempts < 1 {
		errs = append(errs, errors.New("FETCH_RETRIES must be at least 1"))
	}
	if c.Telegram.Token != "" {
		if c.Telegram.ChatID == "" {
			errs = append(errs, errors.New("TELEGRAM_CHAT_ID is required when TELEGRAM_BOT_TOKEN is set"))
		} else if _, _, err := notify.ParseChatID(c.Telegram.ChatID); err != nil {
			errs = append(errs, fmt.Errorf("TELEGRAM_CHAT_ID: %w", err))
		}
	}
	return errors.Join(errs...)
}

// Addr は gin が待ち受けるアドレスです。
func (c Config) Addr() string {
	return ":" + c.Port
}

// splitList はカンマ区切りの銘柄リストを正規化します。空要素と重複は除きます。
func splitList(s string) []string {
	var out []string
	seen := map[string]bool{}
	for _, p := range strings.Split(s, ",") {
		p = strings.ToUpper(strings.TrimSpace(p))
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out
}

package di

import (
	"context"
	"net/http"

	"github.com/rs/zerolog/log"

	"signal_backend/internal/platform/notify"
	"signal_backend/internal/platform/retry"
)

// Notifier is the delivery channel shared by the analysis and trades features.
type Notifier interface {
	Send(ctx context.Context, text string) error
}

// NewNotifier returns a Telegram notifier, or a log-only notifier when no bot token is configured.
// Only a rejected token is an error. An unreachable Bot API is retried on the next message.
func NewNotifier(cfg notify.TelegramConfig, client *http.Client, policy retry.Policy) (Notifier, error) {
	if cfg.Token == "" {
		log.Warn().Msg("TELEGRAM_BOT_TOKEN is not set. Messages will only be logged.")
		return notify.LogNotifier{}, nil
	}
	return notify.NewTelegramNotifier(cfg, client, policy)
}

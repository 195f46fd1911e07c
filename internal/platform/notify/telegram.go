// Package notify はチャットへの通知送信を提供します。
package notify

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog/log"

	analysis "signal_backend/internal/feature/analysis/usecase"
	trades "signal_backend/internal/feature/trades/usecase"
	"signal_backend/internal/platform/retry"
	"signal_backend/internal/shared/apperr"
)

// TelegramConfig は Telegram Bot API の設定です。
type TelegramConfig struct {
	Token string
	// ChatID は数値の chat id か "@channel" 形式のチャンネル名です。
	ChatID string
	// Endpoint は "https://api.telegram.org/bot%s/%s" 形式の API エンドポイントです。空ならデフォルト。
	Endpoint string
}

// ParseChatID は数値の chat id かチャンネル名のどちらかを返します。
func ParseChatID(s string) (id int64, channel string, err error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "@") {
		if len(s) == 1 {
			return 0, "", errors.New("empty channel name")
		}
		return 0, s, nil
	}
	id, err = strconv.ParseInt(s, 10, 64)
	if err != nil || id == 0 {
		return 0, "", fmt.Errorf("chat id %q is neither a number nor an @channel", s)
	}
	return id, "", nil
}

// TelegramNotifier は1つのチャットへ HTML 形式のメッセージを送信します。
// 起動時に接続できなかった場合は次の Send で接続し直します。
type TelegramNotifier struct {
	token    string
	endpoint string
	client   *http.Client
	policy   retry.Policy
	chatID   int64
	channel  string

	mu  sync.Mutex
	bot *tgbotapi.BotAPI
}

var (
	_ analysis.Notifier = (*TelegramNotifier)(nil)
	_ trades.Notifier   = (*TelegramNotifier)(nil)
)

// NewTelegramNotifier は TelegramNotifier を作成し、getMe でトークンを検証します。
// トークンが拒否された場合だけエラーを返します。通信エラーはログに残して後で接続します。
func NewTelegramNotifier(cfg TelegramConfig, client *http.Client, policy retry.Policy) (*TelegramNotifier, error) {
	chatID, channel, err := ParseChatID(cfg.ChatID)
	if err != nil {
		return nil, fmt.Errorf("telegram: %w", err)
	}
	if policy.Attempts < 1 {
		policy.Attempts = 1
	}
	if policy.Delay < 0 {
		policy.Delay = 0
	}
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = tgbotapi.APIEndpoint
	}
	n := &TelegramNotifier{
		token:    cfg.Token,
		endpoint: endpoint,
		client:   client,
		policy:   policy,
		chatID:   chatID,
		channel:  channel,
	}
	if _, err := n.connect(); err != nil {
		if rejected(err) {
			return nil, fmt.Errorf("telegram connect: %w", err)
		}
		log.Warn().Err(err).Msg("Telegram unreachable. Connecting again on the next message.")
	}
	return n, nil
}

// connect は接続済みのボットを返し、未接続なら getMe で接続します。
func (n *TelegramNotifier) connect() (*tgbotapi.BotAPI, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.bot != nil {
		return n.bot, nil
	}
	bot, err := tgbotapi.NewBotAPIWithClient(n.token, n.endpoint, n.client)
	if err != nil {
		return nil, err
	}
	bot.Debug = false
	log.Info().Str("@", bot.Self.UserName).Int64("chat_id", n.chatID).Str("channel", n.channel).Msg("Telegram connected")
	n.bot = bot
	return bot, nil
}

// Send はメッセージを送信します。一時的な失敗は policy に従って再試行します。
// 試行を使い切った場合と 4xx で拒否された場合は apperr.ErrNotification を返します。
func (n *TelegramNotifier) Send(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	attempt := 0
	op := func() error {
		attempt++
		bot, err := n.connect()
		if err == nil {
			_, err = bot.Send(n.message(text))
		}
		if err != nil && rejected(err) {
			return backoff.Permanent(err)
		}
		return err
	}
	notify := func(err error, wait time.Duration) {
		log.Warn().Err(err).Int("attempt", attempt).Dur("retry_in", wait).Msg("telegram send failed, retrying")
	}

	b := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(n.policy.Delay), uint64(n.policy.Attempts-1)),
		ctx,
	)
	if err := backoff.RetryNotify(op, b, notify); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: telegram send after %d attempts: %w", apperr.ErrNotification, attempt, err)
	}
	return nil
}

func (n *TelegramNotifier) message(text string) tgbotapi.MessageConfig {
	var msg tgbotapi.MessageConfig
	if n.channel != "" {
		msg = tgbotapi.NewMessageToChannel(n.channel, text)
	} else {
		msg = tgbotapi.NewMessage(n.chatID, text)
	}
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true
	return msg
}

// rejected は Bot API が要求自体を拒否した 4xx 応答かを判定します。429 は待てば通るので含めません。
func rejected(err error) bool {
	var apiErr *tgbotapi.Error
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.Code >= 400 && apiErr.Code < 500 && apiErr.Code != http.StatusTooManyRequests
}

// LogNotifier はトークン未設定時のフォールバックで、メッセージをログに出すだけです。
type LogNotifier struct{}

var (
	_ analysis.Notifier = LogNotifier{}
	_ trades.Notifier   = LogNotifier{}
)

func (LogNotifier) Send(ctx context.Context, text string) error {
	log.Info().Str("text", text).Msg("notification")
	return nil
}

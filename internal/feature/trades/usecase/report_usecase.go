package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"signal_backend/internal/feature/trades/domain"
	"signal_backend/internal/shared/apperr"
)

// ActiveChecker は監視パスを強制実行するためのインターフェイスです。
type ActiveChecker interface {
	CheckActive(ctx context.Context) (PassResult, error)
}

// ReportUsecase は直近24時間のトレード成績を集計して通知します。
type ReportUsecase struct {
	monitor  ActiveChecker
	ledger   TradeLedger
	notifier Notifier
}

// NewReportUsecase は新しい ReportUsecase を作成します。
func NewReportUsecase(monitor ActiveChecker, ledger TradeLedger, notifier Notifier) *ReportUsecase {
	return &ReportUsecase{monitor: monitor, ledger: ledger, notifier: notifier}
}

// Report は先に監視パスを実行して結果を最新化し、[now-24h, now] の集計を送信します。
// 監視パスの失敗はキャンセル以外は記録だけして集計を続けます。
func (r *ReportUsecase) Report(ctx context.Context, now time.Time) (domain.Summary, error) {
	if _, err := r.monitor.CheckActive(ctx); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return domain.Summary{}, err
		}
		log.Warn().Err(err).Msg("monitor pass before report failed")
	}

	s := r.Summary(now, domain.ReportWindow)
	if err := r.notifier.Send(ctx, formatReport(s)); err != nil {
		return s, fmt.Errorf("%w: %w", apperr.ErrNotification, err)
	}
	log.Info().Int("signals", s.Count).Int("wins", s.Wins).Int("losses", s.Losses).
		Float64("net_pnl", s.NetPnL).Msg("daily report sent")
	return s, nil
}

// Summary は監視パスも通知もせずに [now-window, now] を集計します。
func (r *ReportUsecase) Summary(now time.Time, window time.Duration) domain.Summary {
	return domain.Summarize(r.ledger.Since(now.Add(-window)), now, window)
}

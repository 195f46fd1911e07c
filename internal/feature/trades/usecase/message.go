package usecase

import (
	"fmt"
	"html"
	"strings"

	"signal_backend/internal/feature/trades/domain"
	"signal_backend/internal/feature/trades/domain/entity"
)

// formatUpdate はトレード決着の通知文を作ります (HTML parse mode)。
func formatUpdate(symbol string, r entity.Resolution) string {
	return fmt.Sprintf("🔔 <b>UPDATE:</b> %s hit %s (%s) %+.2f%%",
		html.EscapeString(symbol), r.Status, r.Outcome, r.PnLPercent)
}

// formatReport は24時間レポートの通知文を作ります。
func formatReport(s domain.Summary) string {
	var b strings.Builder
	if s.Count == 0 {
		b.WriteString("📊 <b>24H REPORT</b>\n\nNo trades in last 24h.")
		return b.String()
	}
	mark := "🟢"
	if s.NetPnL < 0 {
		mark = "🔴"
	}
	b.WriteString("📊 <b>24H CRYPTO REPORT</b>\n\n")
	fmt.Fprintf(&b, "Signals: %d\n", s.Count)
	fmt.Fprintf(&b, "✅ Wins: %d\n", s.Wins)
	fmt.Fprintf(&b, "❌ Losses: %d\n", s.Losses)
	fmt.Fprintf(&b, "Net PnL: %s %+.2f%%", mark, s.NetPnL)
	return b.String()
}

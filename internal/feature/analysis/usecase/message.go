package usecase

import (
	"fmt"
	"html"
	"strings"

	"signal_backend/internal/feature/analysis/domain/entity"
)

var escape = html.EscapeString

// formatSignal はシグナル通知の本文を作ります (HTML parse mode)。
func formatSignal(sig entity.Signal) string {
	emoji, label := "🚀", "STRONG BUY"
	if sig.Type == entity.StrongSell {
		emoji, label = "🔻", "STRONG SELL"
	}
	side := "Above"
	if sig.Price <= sig.Pivots.PP {
		side = "Below"
	}

	var b strings.Builder
	b.WriteString("🏆 <b>CRYPTO SIGNAL</b>\n\n")
	fmt.Fprintf(&b, "<b>Asset:</b> %s\n", escape(sig.Symbol))
	fmt.Fprintf(&b, "<b>Price:</b> <code>%s</code>\n\n", formatPrice(sig.Price))
	fmt.Fprintf(&b, "%s <b>SIGNAL: %s</b>\n\n", emoji, label)
	b.WriteString("<b>📈 CONFLUENCE:</b>\n")
	fmt.Fprintf(&b, "• 4H: <code>%s</code>\n", sig.Trend4h)
	fmt.Fprintf(&b, "• 1H: <code>%s</code>\n", sig.Trend1h)
	fmt.Fprintf(&b, "• Pivot: %s PP\n\n", side)
	b.WriteString("<b>🎯 TARGETS:</b>\n")
	fmt.Fprintf(&b, "✅ TP1: <code>%s</code>\n", formatPrice(sig.TP1))
	fmt.Fprintf(&b, "🔥 TP2: <code>%s</code>\n", formatPrice(sig.TP2))
	fmt.Fprintf(&b, "🛑 SL: <code>%s</code>", formatPrice(sig.SL))
	return b.String()
}

// formatPrice は桁区切り付き小数2桁で表示します (例: 64,250.50)。
func formatPrice(v float64) string {
	s := fmt.Sprintf("%.2f", v)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	intPart, frac := s[:len(s)-3], s[len(s)-3:]

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	b.WriteString(frac)
	return b.String()
}

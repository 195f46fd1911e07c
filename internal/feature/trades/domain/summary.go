package domain

import (
	"time"

	"signal_backend/internal/feature/trades/domain/entity"
)

// ReportWindow is the trailing window covered by the daily report.
const ReportWindow = 24 * time.Hour

// Summary aggregates the trades created inside a window.
type Summary struct {
	WindowStart time.Time `json:"window_start"`
	WindowEnd   time.Time `json:"window_end"`
	Count       int       `json:"count"`
	Wins        int       `json:"wins"`
	Losses      int       `json:"losses"`
	NetPnL      float64   `json:"net_pnl"`
}

// Summarize counts trades created in [now-window, now].
func Summarize(trades []entity.Trade, now time.Time, window time.Duration) Summary {
	s := Summary{WindowStart: now.Add(-window), WindowEnd: now}
	for _, t := range trades {
		if t.CreatedAt.Before(s.WindowStart) || t.CreatedAt.After(now) {
			continue
		}
		s.Count++
		switch t.Outcome {
		case entity.OutcomeWin:
			s.Wins++
		case entity.OutcomeLoss:
			s.Losses++
		}
		s.NetPnL += t.PnLPercent
	}
	return s
}

// Totals are the all-time figures shown on the status page.
type Totals struct {
	Total   int     `json:"total_trades"`
	Wins    int     `json:"wins"`
	Losses  int     `json:"losses"`
	WinRate float64 `json:"win_rate"`
}

// Tally computes all-time totals. WinRate is a percentage of resolved trades rounded to 0.1.
func Tally(trades []entity.Trade) Totals {
	var out Totals
	out.Total = len(trades)
	for _, t := range trades {
		switch t.Outcome {
		case entity.OutcomeWin:
			out.Wins++
		case entity.OutcomeLoss:
			out.Losses++
		}
	}
	if resolved := out.Wins + out.Losses; resolved > 0 {
		rate := float64(out.Wins) / float64(resolved) * 100
		out.WinRate = float64(int(rate*10+0.5)) / 10
	}
	return out
}

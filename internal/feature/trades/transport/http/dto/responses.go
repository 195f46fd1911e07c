// Package dto はtradesフィーチャーのHTTPレスポンスDTOを定義します。
package dto

import "time"

// ErrorResponse はエラー時の共通レスポンスです。
type ErrorResponse struct {
	Error string `json:"error"`
}

// StatusResponse は GET / と GET /status のレスポンスです。
type StatusResponse struct {
	Status          string     `json:"status"`           // initializing | operational
	Version         string     `json:"version"`          // ビルドバージョン
	MonitoredAssets []string   `json:"monitored_assets"` // 監視対象
	TotalAnalyses   int        `json:"total_analyses"`   // シグナル発行回数
	LastAnalysis    *time.Time `json:"last_analysis"`    // 最後のシグナル発行時刻
	UptimeStart     time.Time  `json:"uptime_start"`     // 起動時刻
	TotalTrades     int        `json:"total_trades"`     // 全トレード数
	Wins            int        `json:"wins"`             // 勝ち数
	Losses          int        `json:"losses"`           // 負け数
	WinRate         float64    `json:"win_rate"`         // 勝率（%）
}

// TradeResponse はトレード1件のレスポンスDTOです。
type TradeResponse struct {
	ID         int     `json:"id"`
	Symbol     string  `json:"symbol"`
	Signal     string  `json:"signal"`
	Entry      float64 `json:"entry"`
	TP1        float64 `json:"tp1"`
	TP2        float64 `json:"tp2"`
	SL         float64 `json:"sl"`
	Timestamp  string  `json:"timestamp"` // RFC3339 (UTC)
	Status     string  `json:"status"`
	Outcome    string  `json:"outcome"`
	PnLPercent float64 `json:"pnl_percent"`
}

// Package handler はtradesフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"signal_backend/internal/feature/trades/domain"
	"signal_backend/internal/feature/trades/domain/entity"
	"signal_backend/internal/feature/trades/transport/http/dto"
	"signal_backend/internal/feature/trades/usecase"
	"signal_backend/internal/shared/apperr"
	"signal_backend/internal/shared/opstats"
)

const (
	defaultTradeLimit = 50
	maxTradeLimit     = 500
	defaultReportHour = 24
	maxReportHours    = 24 * 30
)

// StatsProvider は稼働状況のスナップショットを返します。
type StatsProvider interface {
	Snapshot() opstats.Snapshot
}

// TradeReader はトレード履歴の読み取り専用ビューです。
type TradeReader interface {
	All() []entity.Trade
	Totals() domain.Totals
}

// MonitorRunner は監視パスを1回実行します。
type MonitorRunner interface {
	CheckActive(ctx context.Context) (usecase.PassResult, error)
}

// Reporter は集計とレポート送信を行います。
type Reporter interface {
	Report(ctx context.Context, now time.Time) (domain.Summary, error)
	Summary(now time.Time, window time.Duration) domain.Summary
}

// StatusHandler は稼働状況・トレード履歴・レポートのHTTPリクエストを処理します。
type StatusHandler struct {
	stats    StatsProvider
	trades   TradeReader
	monitor  MonitorRunner
	reporter Reporter
	now      func() time.Time
}

// NewStatusHandler は新しい StatusHandler を作成します。
func NewStatusHandler(stats StatsProvider, trades TradeReader, monitor MonitorRunner, reporter Reporter) *StatusHandler {
	return &StatusHandler{stats: stats, trades: trades, monitor: monitor, reporter: reporter, now: time.Now}
}

// GetStatus は稼働カウンタと通算成績を返します。
//
// エンドポイント例:
// GET /status
func (h *StatusHandler) GetStatus(c *gin.Context) {
	s := h.stats.Snapshot()
	t := h.trades.Totals()
	c.JSON(http.StatusOK, dto.StatusResponse{
		Status:          s.Status,
		Version:         s.Version,
		MonitoredAssets: s.MonitoredAssets,
		TotalAnalyses:   s.TotalAnalyses,
		LastAnalysis:    s.LastAnalysis,
		UptimeStart:     s.UptimeStart,
		TotalTrades:     t.Total,
		Wins:            t.Wins,
		Losses:          t.Losses,
		WinRate:         t.WinRate,
	})
}

// ListTrades はトレードを新しい順に返します。
//
// エンドポイント例:
// GET /trades?status=ACTIVE&limit=50
func (h *StatusHandler) ListTrades(c *gin.Context) {
	var status entity.Status
	if q := c.Query("status"); q != "" {
		status = entity.Status(strings.ToUpper(q))
		if !validStatus(status) {
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "unknown status: " + q})
			return
		}
	}
	limit, err := intQuery(c, "limit", defaultTradeLimit, 1, maxTradeLimit)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}

	all := h.trades.All()
	slices.Reverse(all)

	out := make([]dto.TradeResponse, 0, min(limit, len(all)))
	for _, t := range all {
		if status != "" && t.Status != status {
			continue
		}
		out = append(out, toTradeResponse(t))
		if len(out) == limit {
			break
		}
	}
	c.JSON(http.StatusOK, out)
}

// GetReport は監視パスを実行せずに直近 hours 時間の集計を返します。
//
// エンドポイント例:
// GET /report?hours=24
func (h *StatusHandler) GetReport(c *gin.Context) {
	hours, err := intQuery(c, "hours", defaultReportHour, 1, maxReportHours)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, h.reporter.Summary(h.now().UTC(), time.Duration(hours)*time.Hour))
}

// RunCheck は監視パスを即時実行します（管理用）。
//
// エンドポイント例:
// POST /admin/check
func (h *StatusHandler) RunCheck(c *gin.Context) {
	res, err := h.monitor.CheckActive(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// RunReport は24時間レポートを即時送信します（管理用）。
// 通知に失敗した場合も集計は返し、notified=false で示します。
//
// エンドポイント例:
// POST /admin/report
func (h *StatusHandler) RunReport(c *gin.Context) {
	s, err := h.reporter.Report(c.Request.Context(), h.now().UTC())
	if err != nil && !errors.Is(err, apperr.ErrNotification) {
		writeError(c, err)
		return
	}
	if err != nil {
		log.Warn().Err(err).Msg("report not delivered")
	}
	c.JSON(http.StatusOK, gin.H{"summary": s, "notified": err == nil})
}

func writeError(c *gin.Context, err error) {
	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		code = http.StatusServiceUnavailable
	case errors.Is(err, apperr.ErrDataUnavailable), errors.Is(err, apperr.ErrTransient):
		code = http.StatusBadGateway
	}
	log.Error().Err(err).Str("path", c.FullPath()).Msg("admin request failed")
	c.JSON(code, dto.ErrorResponse{Error: err.Error()})
}

// intQuery はクエリ値を整数として読み、[lo, hi] の範囲外ならエラーを返します。
func intQuery(c *gin.Context, key string, def, lo, hi int) (int, error) {
	raw, ok := c.GetQuery(key)
	if !ok || raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < lo || v > hi {
		return 0, errors.New(key + " must be an integer between " + strconv.Itoa(lo) + " and " + strconv.Itoa(hi))
	}
	return v, nil
}

func validStatus(s entity.Status) bool {
	switch s {
	case entity.StatusActive, entity.StatusTP1Hit, entity.StatusTP2Hit, entity.StatusSLHit:
		return true
	}
	return false
}

func toTradeResponse(t entity.Trade) dto.TradeResponse {
	return dto.TradeResponse{
		ID:         t.ID,
		Symbol:     t.Symbol,
		Signal:     t.Signal,
		Entry:      t.Entry,
		TP1:        t.TP1,
		TP2:        t.TP2,
		SL:         t.SL,
		Timestamp:  t.CreatedAt.UTC().Format(time.RFC3339),
		Status:     string(t.Status),
		Outcome:    string(t.Outcome),
		PnLPercent: t.PnLPercent,
	}
}

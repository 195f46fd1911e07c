// Package handler はanalysisフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"net/http"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"signal_backend/internal/feature/analysis/domain/entity"
	"signal_backend/internal/shared/apperr"
)

// SignalUsecase は1銘柄の即時分析を行うユースケースです。
type SignalUsecase interface {
	Analyze(ctx context.Context, symbol string) (entity.Signal, error)
}

// SignalHandler は管理用の即時分析リクエストを処理します。
type SignalHandler struct {
	uc      SignalUsecase
	symbols []string
}

// NewSignalHandler は監視対象 symbols に限定した SignalHandler を作成します。
func NewSignalHandler(uc SignalUsecase, symbols []string) *SignalHandler {
	return &SignalHandler{uc: uc, symbols: symbols}
}

// Analyze は指定銘柄を即時に評価し、シグナルを返します。
// パスに "/" を含められないため、BTC-USD や btc_usd は BTC/USD として扱います。
//
// エンドポイント例:
// POST /admin/analyze/BTC-USD
func (h *SignalHandler) Analyze(c *gin.Context) {
	symbol := normalizeSymbol(c.Param("symbol"))
	if !slices.Contains(h.symbols, symbol) {
		c.JSON(http.StatusNotFound, gin.H{"error": "symbol is not monitored: " + symbol})
		return
	}

	sig, err := h.uc.Analyze(c.Request.Context(), symbol)
	if err != nil {
		code := http.StatusInternalServerError
		switch {
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			code = http.StatusServiceUnavailable
		case errors.Is(err, apperr.ErrDataUnavailable), errors.Is(err, apperr.ErrTransient):
			code = http.StatusBadGateway
		}
		log.Warn().Err(err).Str("symbol", symbol).Msg("manual analysis failed")
		c.JSON(code, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, sig)
}

func normalizeSymbol(s string) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	return strings.NewReplacer("-", "/", "_", "/").Replace(s)
}

package router

import (
	"github.com/gin-gonic/gin"

	analysishandler "signal_backend/internal/feature/analysis/transport/handler"
	tradeshandler "signal_backend/internal/feature/trades/transport/handler"
	"signal_backend/internal/platform/http/handler"
	jwtmw "signal_backend/internal/platform/jwt"
)

// NewRouter は公開ステータスページと管理用ルートを登録した gin.Engine を返します。
func NewRouter(version, jwtSecret string, status *tradeshandler.StatusHandler, signals *analysishandler.SignalHandler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), handler.RequestID())

	// 認証不要
	// 導通確認用（/health は旧ダッシュボードとの互換）
	health := handler.Health(version)
	for _, path := range []string{"/healthz", "/health"} {
		r.GET(path, health)
		r.HEAD(path, health)
		r.OPTIONS(path, health)
	}
	r.GET("/", status.GetStatus)
	r.GET("/status", status.GetStatus)
	r.GET("/trades", status.ListTrades)
	r.GET("/report", status.GetReport)

	// 管理用ルート
	// → Authorization: Bearer <signalbot token で発行した JWT> が必要
	admin := r.Group("/admin")
	admin.Use(jwtmw.AuthRequired(jwtSecret))
	{
		admin.POST("/analyze/:symbol", signals.Analyze)
		admin.POST("/check", status.RunCheck)
		admin.POST("/report", status.RunReport)
	}

	return r
}

package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	// HeaderRequestID はリクエストIDを受け渡すヘッダーです。
	HeaderRequestID = "X-Request-ID"
	// ContextRequestID は gin.Context に格納するキーです。
	ContextRequestID = "request_id"
)

// RequestID は各リクエストに ID を割り当て、レスポンスヘッダーに返します。
// クライアントが妥当な UUID を送った場合はそれを引き継ぎます。
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderRequestID)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		c.Set(ContextRequestID, id)
		c.Header(HeaderRequestID, id)

		c.Next()

		log.Debug().
			Str("request_id", id).
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Int("status", c.Writer.Status()).
			Msg("http request")
	}
}

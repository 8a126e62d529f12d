package middleware

import (
	"strings"
	"unicode"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// CorrelationIDHeader 同时用于请求与响应。
	CorrelationIDHeader = "X-Correlation-ID"
	requestIDHeader     = "X-Request-ID"

	correlationIDKey    = "correlationID"
	maxCorrelationIDLen = 128
)

// CorrelationIDMiddleware 为每个请求确定 Correlation ID：优先沿用调用方的
// X-Correlation-ID / X-Request-ID，不合法时重新生成。该 ID 会写进导出任务，
// 并随 websocket 通知返回。
func CorrelationIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := acceptCorrelationID(c.GetHeader(CorrelationIDHeader))
		if id == "" {
			id = acceptCorrelationID(c.GetHeader(requestIDHeader))
		}
		if id == "" {
			id = uuid.NewString()
		}

		c.Set(correlationIDKey, id)
		c.Header(CorrelationIDHeader, id)
		c.Next()
	}
}

// acceptCorrelationID drops values that are too long or carry characters we
// would not want echoed into logs and headers.
func acceptCorrelationID(raw string) string {
	id := strings.TrimSpace(raw)
	if id == "" || len(id) > maxCorrelationIDLen {
		return ""
	}
	for _, r := range id {
		if r > unicode.MaxASCII || !unicode.IsPrint(r) || unicode.IsSpace(r) {
			return ""
		}
	}
	return id
}

// GetCorrelationID 从上下文中取出 Correlation ID。
func GetCorrelationID(c *gin.Context) string {
	return c.GetString(correlationIDKey)
}

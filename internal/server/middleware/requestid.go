package middleware

import (
	"github.com/gin-gonic/gin"

	"lychee/internal/pkg/id"
)

const (
	// RequestIDKey 请求ID在 gin.Context 中的键
	RequestIDKey = "request_id"
	// RequestIDHeader 请求ID的 HTTP 头
	RequestIDHeader = "X-Request-ID"
)

// RequestID 为每个请求分配ID（调用方传入的 X-Request-ID 优先）
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = id.New()
		}

		c.Set(RequestIDKey, requestID)
		c.Writer.Header().Set(RequestIDHeader, requestID)

		c.Next()
	}
}

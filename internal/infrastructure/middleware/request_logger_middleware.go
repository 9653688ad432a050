package middleware

import (
	"context"
	"time"

	"roomrelay/pkg/logger"
	"roomrelay/pkg/utils"

	"github.com/gin-gonic/gin"
)

// RequestLoggerMiddleware assigns each request an id and logs it on completion
func RequestLoggerMiddleware(cl *logger.ContextLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := context.WithValue(c.Request.Context(), logger.RequestIDKey, utils.GenerateRequestID())
		c.Request = c.Request.WithContext(ctx)

		start := time.Now()
		c.Next()

		cl.LogRequest(ctx, c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start).Milliseconds())
	}
}

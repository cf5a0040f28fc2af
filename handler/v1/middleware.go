package v1

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	RequestIDHeader = "X-Request-ID"
	RequestIDKey    = "request_id"
)

// RequestID reuses the caller's X-Request-ID or assigns a new one, and
// echoes it on the response.
func RequestID() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		requestID := ctx.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		ctx.Set(RequestIDKey, requestID)
		ctx.Header(RequestIDHeader, requestID)
		ctx.Next()
	}
}

// RequestLogger logs one line per request at a level chosen by the status.
func RequestLogger() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()
		ctx.Next()

		status := ctx.Writer.Status()
		logger := handlerLogger().With("component", "http")
		logMethod := logger.Info
		switch {
		case status >= 500:
			logMethod = logger.Error
		case status >= 400:
			logMethod = logger.Warn
		}

		fields := []interface{}{
			"method", ctx.Request.Method,
			"uri", ctx.Request.URL.RequestURI(),
			"status", status,
			"latency_ms", float64(time.Since(start)) / float64(time.Millisecond),
			"remote_ip", ctx.ClientIP(),
			"request_id", ctx.GetString(RequestIDKey),
		}
		if size := ctx.Writer.Size(); size > 0 {
			fields = append(fields, "resp_size", size)
		}
		if len(ctx.Errors) > 0 {
			fields = append(fields, "error", ctx.Errors.String())
		}
		logMethod(fmt.Sprintf("%s %s %d", ctx.Request.Method, ctx.Request.URL.Path, status), fields...)
	}
}

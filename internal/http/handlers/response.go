package handlers

import (
	"time"

	"schoolcampus/internal/http/middleware"
	"schoolcampus/internal/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// exposeErrors controls whether error detail reaches the wire; it is off in
// production so internals never leak.
var exposeErrors = true

// SetExposeErrors is called once at router build time.
func SetExposeErrors(expose bool) { exposeErrors = expose }

type envelope struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	Data      any    `json:"data,omitempty"`
	Error     string `json:"error,omitempty"`
	Timestamp string `json:"timestamp"`
}

// Success writes the uniform success envelope.
func Success(c *gin.Context, status int, message string, data any) {
	c.JSON(status, envelope{
		Success:   true,
		Message:   message,
		Data:      data,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// Fail writes the uniform error envelope. The underlying error is logged
// always but serialized only outside production.
func Fail(c *gin.Context, status int, message string, err error) {
	resp := envelope{
		Success:   false,
		Message:   message,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	if err != nil {
		logger.Error().Error("api error",
			zap.Int("status", status),
			zap.String("message", message),
			zap.String("request_id", middleware.GetRequestID(c)),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Error(err),
		)
		if exposeErrors {
			resp.Error = err.Error()
		}
	}
	c.JSON(status, resp)
}

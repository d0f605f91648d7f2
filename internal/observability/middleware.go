package observability

import (
	"net/http"
	"runtime/debug"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/taskdeck/backend/internal/model"
)

const (
	RequestIDHeader    = "X-Request-ID"
	maxRequestIDLength = 128
)

// RequestLogger tags each request with an id, puts a child logger and a
// sentry hub into the request context, and writes one access log line.
func RequestLogger(logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" || len(requestID) > maxRequestIDLength {
			requestID = uuid.NewString()
		}
		c.Header(RequestIDHeader, requestID)

		reqLogger := logger.With().Str("request_id", requestID).Logger()

		hub := sentry.CurrentHub().Clone()
		hub.Scope().SetTag("request_id", requestID)
		hub.Scope().SetRequest(c.Request)

		ctx := reqLogger.WithContext(c.Request.Context())
		ctx = sentry.SetHubOnContext(ctx, hub)
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		status := c.Writer.Status()
		var event *zerolog.Event
		switch {
		case status >= http.StatusInternalServerError:
			event = reqLogger.Error()
		case status >= http.StatusBadRequest:
			event = reqLogger.Warn()
		default:
			event = reqLogger.Info()
		}
		event.
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("client_ip", c.ClientIP()).
			Msg("http_request")
	}
}

// Recovery turns a panic into a 500 and reports it.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			ctx := c.Request.Context()
			stack := debug.Stack()

			hub := hubFromContext(ctx)
			hub.WithScope(func(scope *sentry.Scope) {
				scope.SetExtra("stack", string(stack))
				hub.RecoverWithContext(ctx, rec)
			})

			zerolog.Ctx(ctx).Error().
				Interface("panic", rec).
				Bytes("stack", stack).
				Str("path", c.Request.URL.Path).
				Str("method", c.Request.Method).
				Msg("panic_recovered")

			c.AbortWithStatusJSON(http.StatusInternalServerError, model.ErrorResponse{Error: "internal server error"})
		}()

		c.Next()
	}
}

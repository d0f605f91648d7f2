package observability

import (
	"context"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/taskdeck/backend/internal/config"
)

// InitSentry is a no-op without a DSN; captures then go nowhere.
func InitSentry(cfg config.SentryConfig) error {
	if cfg.DSN == "" {
		return nil
	}

	return sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.DSN,
		Environment:      cfg.Environment,
		AttachStacktrace: true,
	})
}

func FlushSentry() {
	sentry.Flush(2 * time.Second)
}

// CaptureError reports err on the request's hub, or the global one.
func CaptureError(ctx context.Context, err error) {
	hubFromContext(ctx).CaptureException(err)
}

func hubFromContext(ctx context.Context) *sentry.Hub {
	if hub := sentry.GetHubFromContext(ctx); hub != nil {
		return hub
	}
	return sentry.CurrentHub()
}

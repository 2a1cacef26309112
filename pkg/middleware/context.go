package middleware

import (
	"context"

	"github.com/utafrali/EVCatalog/pkg/logger"
)

// withSubject records the authenticated principal for logging.
func withSubject(ctx context.Context, subject string) context.Context {
	if subject == "" {
		return ctx
	}
	return logger.WithUserID(ctx, subject)
}

// SubjectFromContext returns the principal set by CookieAuth, or "".
func SubjectFromContext(ctx context.Context) string {
	return logger.UserIDFromContext(ctx)
}

package middleware

import (
	"log/slog"
	"net/http"

	"github.com/utafrali/EVCatalog/pkg/logger"
)

// RequestLogger stores a request-scoped logger carrying correlation_id,
// user_id and trace/span ids in the context. Mount it after RequestLogging,
// Tracing and CookieAuth so those values are present.
func RequestLogger(base *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			ctx = logger.NewContext(ctx, logger.WithContext(ctx, base))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

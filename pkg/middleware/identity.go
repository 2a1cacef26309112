package middleware

import (
	"context"
	"log/slog"
	"net/http"
)

// ResolveFunc turns a credential into an enriched context. subject is the
// authenticated principal and is attached to log lines.
type ResolveFunc func(ctx context.Context, credential string) (enriched context.Context, subject string, err error)

// CookieAuth reads the credential from the named cookie and resolves it. A
// missing cookie or a failed resolution leaves the request anonymous; it never
// rejects the request.
func CookieAuth(cookieName string, resolve ResolveFunc, l *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(cookieName)
			if err != nil || cookie.Value == "" {
				next.ServeHTTP(w, r)
				return
			}

			ctx, subject, err := resolve(r.Context(), cookie.Value)
			if err != nil {
				l.DebugContext(r.Context(), "credential rejected, continuing anonymously",
					slog.String("path", r.URL.Path),
					slog.String("error", err.Error()),
				)
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(withSubject(ctx, subject)))
		})
	}
}

// RedirectAnonymous sends requests for which authenticated returns false to
// target with 303 See Other.
func RedirectAnonymous(target string, authenticated func(context.Context) bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !authenticated(r.Context()) {
				http.Redirect(w, r, target, http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

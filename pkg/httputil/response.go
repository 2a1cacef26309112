package httputil

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/google/uuid"

	apperrors "github.com/utafrali/EVCatalog/pkg/errors"
	"github.com/utafrali/EVCatalog/pkg/logger"
	"github.com/utafrali/EVCatalog/pkg/validator"
)

// RedirectWithError sends the client back to path with msg in the "error"
// query parameter (303 See Other), the post/redirect/get shape used by every
// form in the app. Existing query parameters on path are preserved.
func RedirectWithError(w http.ResponseWriter, r *http.Request, path, msg string) {
	target, err := url.Parse(path)
	if err != nil {
		http.Redirect(w, r, path, http.StatusSeeOther)
		return
	}
	q := target.Query()
	q.Set("error", msg)
	target.RawQuery = q.Encode()
	http.Redirect(w, r, target.String(), http.StatusSeeOther)
}

// Message turns err into a line that is safe to show next to a form.
// Validation failures report the first failing field; classified errors use
// their own message; anything else collapses to a generic message.
func Message(err error) string {
	var valErr *validator.ValidationError
	if errors.As(err, &valErr) {
		return valErr.First()
	}
	return apperrors.UserMessage(err)
}

// LogError records err with the request-scoped logger when the RequestLogger
// middleware is mounted, otherwise with fallback. Server-side failures are
// logged at error level, client mistakes at debug.
func LogError(r *http.Request, err error, fallback *slog.Logger) {
	l := logger.FromContext(r.Context())
	if l == slog.Default() && fallback != nil {
		l = fallback
	}

	level := slog.LevelDebug
	if apperrors.HTTPStatus(err) >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	l.Log(r.Context(), level, "request failed",
		slog.String("error", err.Error()),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
	)
}

// ValidID reports whether param is a well-formed record id. Handlers treat a
// malformed id exactly like an unknown one.
func ValidID(param string) bool {
	_, err := uuid.Parse(param)
	return err == nil
}

package middleware

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

type ctxKey struct{}

func resolver(calls *int) ResolveFunc {
	return func(ctx context.Context, credential string) (context.Context, string, error) {
		*calls++
		if credential != "good" {
			return nil, "", errors.New("token expired")
		}
		return context.WithValue(ctx, ctxKey{}, "resolved"), "uid-1", nil
	}
}

func TestCookieAuth(t *testing.T) {
	tests := []struct {
		name        string
		cookie      *http.Cookie
		wantCalls   int
		wantValue   any
		wantSubject string
	}{
		{name: "no cookie", wantCalls: 0},
		{name: "empty cookie", cookie: &http.Cookie{Name: "token", Value: ""}, wantCalls: 0},
		{name: "invalid token", cookie: &http.Cookie{Name: "token", Value: "bad"}, wantCalls: 1},
		{name: "valid token", cookie: &http.Cookie{Name: "token", Value: "good"}, wantCalls: 1, wantValue: "resolved", wantSubject: "uid-1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			calls := 0
			reached := false

			handler := CookieAuth("token", resolver(&calls), newTestLogger(&buf))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				reached = true
				assert.Equal(t, tt.wantValue, r.Context().Value(ctxKey{}))
				assert.Equal(t, tt.wantSubject, SubjectFromContext(r.Context()))
			}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.cookie != nil {
				req.AddCookie(tt.cookie)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.True(t, reached, "request must never be rejected")
			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, tt.wantCalls, calls)
		})
	}
}

func TestRedirectAnonymous(t *testing.T) {
	authed := func(ctx context.Context) bool { return SubjectFromContext(ctx) != "" }
	handler := RedirectAnonymous("/login", authed)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/delete-ev/1", nil))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))

	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/delete-ev/1", nil)
	handler.ServeHTTP(rec, req.WithContext(withSubject(req.Context(), "uid-1")))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

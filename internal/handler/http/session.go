package http

import (
	"context"
	"log/slog"

	"github.com/utafrali/EVCatalog/internal/auth"
	"github.com/utafrali/EVCatalog/internal/domain"
	"github.com/utafrali/EVCatalog/internal/service"
)

// SessionCookie holds the identity token set by the login page.
const SessionCookie = "token"

type identityKey struct{}

type userKey struct{}

// Session resolves the session cookie into a verified identity and its
// local profile.
type Session struct {
	verifier auth.Verifier
	users    *service.UserService
	logger   *slog.Logger
}

// NewSession creates a session resolver.
func NewSession(verifier auth.Verifier, users *service.UserService, logger *slog.Logger) *Session {
	return &Session{
		verifier: verifier,
		users:    users,
		logger:   logger,
	}
}

// Resolve is a middleware.ResolveFunc. A token that fails verification
// leaves the request anonymous. A verified identity whose profile cannot be
// loaded stays signed in without a profile.
func (s *Session) Resolve(ctx context.Context, token string) (context.Context, string, error) {
	identity, err := s.verifier.Verify(ctx, token)
	if err != nil {
		return ctx, "", err
	}
	ctx = context.WithValue(ctx, identityKey{}, identity)

	user, err := s.users.EnsureProfile(ctx, identity)
	if err != nil {
		s.logger.WarnContext(ctx, "failed to resolve user profile",
			slog.String("user_id", identity.Subject),
			slog.String("error", err.Error()),
		)
		return ctx, identity.Subject, nil
	}
	return context.WithValue(ctx, userKey{}, user), identity.Subject, nil
}

// IdentityFromContext returns the verified identity, or nil for anonymous
// requests.
func IdentityFromContext(ctx context.Context) *auth.Identity {
	id, _ := ctx.Value(identityKey{}).(*auth.Identity)
	return id
}

// UserFromContext returns the viewer's profile, or nil.
func UserFromContext(ctx context.Context) *domain.User {
	u, _ := ctx.Value(userKey{}).(*domain.User)
	return u
}

// Authenticated reports whether the request carries a verified identity.
func Authenticated(ctx context.Context) bool {
	return IdentityFromContext(ctx) != nil
}

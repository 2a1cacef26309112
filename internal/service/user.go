package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/utafrali/EVCatalog/internal/auth"
	"github.com/utafrali/EVCatalog/internal/domain"
	"github.com/utafrali/EVCatalog/internal/repository"
	apperrors "github.com/utafrali/EVCatalog/pkg/errors"
)

// UserService resolves local profiles for verified identities.
type UserService struct {
	repo    repository.UserRepository
	timeout time.Duration
	logger  *slog.Logger
}

// NewUserService creates a new user service.
func NewUserService(repo repository.UserRepository, timeout time.Duration, logger *slog.Logger) *UserService {
	return &UserService{repo: repo, timeout: timeout, logger: logger}
}

// EnsureProfile returns the profile for identity, creating one named
// domain.DefaultUserName the first time the subject is seen.
func (s *UserService) EnsureProfile(ctx context.Context, identity *auth.Identity) (*domain.User, error) {
	if identity == nil || identity.Subject == "" {
		return nil, apperrors.Unauthorized("no verified identity")
	}

	var user *domain.User
	err := storeCall(ctx, s.timeout, "ensure user", func(ctx context.Context) error {
		var err error
		user, err = s.repo.Ensure(ctx, identity.Subject, domain.DefaultUserName)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.DebugContext(ctx, "user profile resolved", slog.String("user_id", user.ID))
	return user, nil
}

package repository

import (
	"context"

	"github.com/utafrali/EVCatalog/internal/domain"
)

// EVRepository defines the interface for EV catalog persistence.
type EVRepository interface {
	// Create inserts ev unless another record already has its name, in which
	// case it returns a DuplicateName error and writes nothing.
	Create(ctx context.Context, ev *domain.EV) error

	// GetByID retrieves an EV by its identifier.
	GetByID(ctx context.Context, id string) (*domain.EV, error)

	// List returns one page of EVs ordered by name, with the total count.
	List(ctx context.Context, limit, offset int) ([]domain.EV, int, error)

	// FindByAttribute returns EVs whose attribute equals value.
	FindByAttribute(ctx context.Context, attr domain.Attribute, value any) ([]domain.EV, error)

	// FindInRange returns EVs whose attribute lies in [lower, upper].
	FindInRange(ctx context.Context, attr domain.Attribute, lower, upper any) ([]domain.EV, error)

	// Update replaces every attribute of an existing EV.
	Update(ctx context.Context, ev *domain.EV) error

	// Delete removes an EV and reports whether a row existed.
	Delete(ctx context.Context, id string) (bool, error)

	// NameExists reports whether an EV other than excludeID uses name.
	NameExists(ctx context.Context, name, excludeID string) (bool, error)
}

// ReviewRepository defines the interface for review persistence.
type ReviewRepository interface {
	// Create inserts a review for an existing EV.
	Create(ctx context.Context, review *domain.Review) error

	// ListByEV returns one page of an EV's reviews, newest first, with the total count.
	ListByEV(ctx context.Context, evID string, limit, offset int) ([]domain.Review, int, error)

	// RatingTotals returns the sum and number of ratings for an EV.
	RatingTotals(ctx context.Context, evID string) (sum, count int, err error)
}

// UserRepository defines the interface for user profile persistence.
type UserRepository interface {
	// Ensure returns the profile for id, creating it with name if absent.
	Ensure(ctx context.Context, id, name string) (*domain.User, error)
}

// ScoreCache caches average scores per EV. Get reports a miss as
// apperrors.ErrNotFound.
type ScoreCache interface {
	Get(ctx context.Context, evID string) (domain.AverageScore, error)
	Set(ctx context.Context, evID string, score domain.AverageScore) error
	Invalidate(ctx context.Context, evID string) error
}

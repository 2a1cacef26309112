package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/utafrali/EVCatalog/internal/domain"
	"github.com/utafrali/EVCatalog/pkg/database"
	apperrors "github.com/utafrali/EVCatalog/pkg/errors"
	"github.com/utafrali/EVCatalog/pkg/validator"
)

// DefaultStoreTimeout bounds a single store call when none is configured.
const DefaultStoreTimeout = 5 * time.Second

// EventPublisher is satisfied by *event.Producer.
type EventPublisher interface {
	PublishEVCreated(ctx context.Context, ev *domain.EV) error
	PublishEVUpdated(ctx context.Context, ev *domain.EV) error
	PublishEVDeleted(ctx context.Context, id string) error
	PublishReviewCreated(ctx context.Context, review *domain.Review) error
}

// storeCall runs fn under the store timeout and classifies connection and
// deadline failures as StoreUnavailable. Other errors are wrapped with op.
func storeCall(ctx context.Context, timeout time.Duration, op string, fn func(ctx context.Context) error) error {
	if timeout <= 0 {
		timeout = DefaultStoreTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	err := fn(ctx)
	if err == nil {
		return nil
	}
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return err
	}
	if database.IsUnavailable(err) {
		return apperrors.StoreUnavailable(fmt.Errorf("%s: %w", op, err))
	}
	return fmt.Errorf("%s: %w", op, err)
}

// validate runs struct validation and reports the first failing field as
// InvalidInput.
func validate(input any) error {
	err := validator.Validate(input)
	if err == nil {
		return nil
	}
	var verr *validator.ValidationError
	if errors.As(err, &verr) {
		return apperrors.InvalidInput(verr.First())
	}
	return apperrors.InvalidInput(err.Error())
}

func logPublishFailure(ctx context.Context, logger *slog.Logger, topic, id string, err error) {
	logger.ErrorContext(ctx, "failed to publish event",
		slog.String("event", topic),
		slog.String("aggregate_id", id),
		slog.String("error", err.Error()),
	)
}

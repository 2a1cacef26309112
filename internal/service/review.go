package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/utafrali/EVCatalog/internal/domain"
	"github.com/utafrali/EVCatalog/internal/event"
	"github.com/utafrali/EVCatalog/internal/repository"
	apperrors "github.com/utafrali/EVCatalog/pkg/errors"
	"github.com/utafrali/EVCatalog/pkg/pagination"
)

// ReviewService implements the business logic for reviews and average scores.
type ReviewService struct {
	repo    repository.ReviewRepository
	scores  repository.ScoreCache
	events  EventPublisher
	metrics *Metrics
	timeout time.Duration
	logger  *slog.Logger
}

// NewReviewService creates a new review service. scores, events and metrics
// may be nil.
func NewReviewService(
	repo repository.ReviewRepository,
	scores repository.ScoreCache,
	events EventPublisher,
	metrics *Metrics,
	timeout time.Duration,
	logger *slog.Logger,
) *ReviewService {
	return &ReviewService{
		repo:    repo,
		scores:  scores,
		events:  events,
		metrics: metrics,
		timeout: timeout,
		logger:  logger,
	}
}

// CreateReview stores a review by a verified user for an existing EV.
func (s *ReviewService) CreateReview(ctx context.Context, input domain.ReviewInput) (*domain.Review, error) {
	if input.UserID == "" {
		return nil, apperrors.Unauthorized("sign in to review an EV")
	}
	input.Normalize()
	if err := validate(input); err != nil {
		return nil, err
	}

	review := &domain.Review{
		ID:        uuid.New().String(),
		EVID:      input.EVID,
		UserID:    input.UserID,
		Content:   input.Content,
		Rating:    input.Rating,
		CreatedAt: time.Now().UTC(),
	}

	err := storeCall(ctx, s.timeout, "create review", func(ctx context.Context) error {
		return s.repo.Create(ctx, review)
	})
	if err != nil {
		return nil, err
	}
	s.metrics.reviewCreated()

	s.invalidateScore(ctx, review.EVID)
	if s.events != nil {
		if err := s.events.PublishReviewCreated(ctx, review); err != nil {
			logPublishFailure(ctx, s.logger, event.TopicReviewCreated, review.ID, err)
		}
	}

	s.logger.InfoContext(ctx, "review created",
		slog.String("review_id", review.ID),
		slog.String("ev_id", review.EVID),
		slog.Int("rating", review.Rating),
	)
	return review, nil
}

// ListReviews returns one page of an EV's reviews, newest first.
func (s *ReviewService) ListReviews(ctx context.Context, evID string, page, perPage int) (pagination.Result[domain.Review], error) {
	params := pagination.New(page, perPage)

	var (
		reviews []domain.Review
		total   int
	)
	err := storeCall(ctx, s.timeout, "list reviews", func(ctx context.Context) error {
		var err error
		reviews, total, err = s.repo.ListByEV(ctx, evID, params.PerPage, params.Offset)
		return err
	})
	if err != nil {
		return pagination.Result[domain.Review]{}, err
	}
	return pagination.NewResult(reviews, total, params), nil
}

// AverageScore returns the mean rating of an EV's reviews. An EV without
// reviews yields the zero AverageScore.
func (s *ReviewService) AverageScore(ctx context.Context, evID string) (domain.AverageScore, error) {
	if s.scores != nil {
		score, err := s.scores.Get(ctx, evID)
		switch {
		case err == nil:
			s.metrics.scoreLookup("hit")
			return score, nil
		case errors.Is(err, apperrors.ErrNotFound):
			s.metrics.scoreLookup("miss")
		default:
			s.metrics.scoreLookup("error")
			s.logger.WarnContext(ctx, "score cache read failed",
				slog.String("ev_id", evID),
				slog.String("error", err.Error()),
			)
		}
	}

	var sum, count int
	err := storeCall(ctx, s.timeout, "average score", func(ctx context.Context) error {
		var err error
		sum, count, err = s.repo.RatingTotals(ctx, evID)
		return err
	})
	if err != nil {
		return domain.AverageScore{}, err
	}
	score := domain.NewAverageScore(sum, count)

	if s.scores != nil {
		if err := s.scores.Set(ctx, evID, score); err != nil {
			s.logger.WarnContext(ctx, "score cache write failed",
				slog.String("ev_id", evID),
				slog.String("error", err.Error()),
			)
		}
	}
	return score, nil
}

func (s *ReviewService) invalidateScore(ctx context.Context, evID string) {
	if s.scores == nil {
		return
	}
	if err := s.scores.Invalidate(ctx, evID); err != nil {
		s.logger.WarnContext(ctx, "failed to invalidate score cache",
			slog.String("ev_id", evID),
			slog.String("error", err.Error()),
		)
	}
}

package service

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/utafrali/EVCatalog/internal/domain"
	"github.com/utafrali/EVCatalog/internal/event"
	"github.com/utafrali/EVCatalog/internal/repository"
	apperrors "github.com/utafrali/EVCatalog/pkg/errors"
	"github.com/utafrali/EVCatalog/pkg/pagination"
)

const invalidRangeMessage = "Invalid numerical range provided."

// CatalogService implements the business logic for EV records.
type CatalogService struct {
	repo    repository.EVRepository
	scores  repository.ScoreCache
	events  EventPublisher
	metrics *Metrics
	timeout time.Duration
	logger  *slog.Logger
}

// NewCatalogService creates a new catalog service. scores, events and metrics
// may be nil.
func NewCatalogService(
	repo repository.EVRepository,
	scores repository.ScoreCache,
	events EventPublisher,
	metrics *Metrics,
	timeout time.Duration,
	logger *slog.Logger,
) *CatalogService {
	return &CatalogService{
		repo:    repo,
		scores:  scores,
		events:  events,
		metrics: metrics,
		timeout: timeout,
		logger:  logger,
	}
}

// List returns one page of the catalog ordered by name.
func (s *CatalogService) List(ctx context.Context, page, perPage int) (pagination.Result[domain.EV], error) {
	params := pagination.New(page, perPage)

	var (
		evs   []domain.EV
		total int
	)
	err := storeCall(ctx, s.timeout, "list evs", func(ctx context.Context) error {
		var err error
		evs, total, err = s.repo.List(ctx, params.PerPage, params.Offset)
		return err
	})
	if err != nil {
		return pagination.Result[domain.EV]{}, err
	}
	return pagination.NewResult(evs, total, params), nil
}

// GetEV retrieves an EV by its ID.
func (s *CatalogService) GetEV(ctx context.Context, id string) (*domain.EV, error) {
	var ev *domain.EV
	err := storeCall(ctx, s.timeout, "get ev", func(ctx context.Context) error {
		var err error
		ev, err = s.repo.GetByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return ev, nil
}

// CreateEV validates input and stores a new EV. A name already in the
// catalog fails with DuplicateName and nothing is written.
func (s *CatalogService) CreateEV(ctx context.Context, input domain.EVInput) (*domain.EV, error) {
	input.Normalize()
	if err := validate(input); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	ev := &domain.EV{
		ID:        uuid.New().String(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	input.Apply(ev)

	err := storeCall(ctx, s.timeout, "create ev", func(ctx context.Context) error {
		return s.repo.Create(ctx, ev)
	})
	if err != nil {
		return nil, err
	}
	s.metrics.evWritten("create")

	if s.events != nil {
		if err := s.events.PublishEVCreated(ctx, ev); err != nil {
			logPublishFailure(ctx, s.logger, event.TopicEVCreated, ev.ID, err)
		}
	}

	s.logger.InfoContext(ctx, "ev created",
		slog.String("ev_id", ev.ID),
		slog.String("name", ev.Name),
	)
	return ev, nil
}

// UpdateEV replaces every attribute of an existing EV.
func (s *CatalogService) UpdateEV(ctx context.Context, id string, input domain.EVInput) (*domain.EV, error) {
	input.Normalize()
	if err := validate(input); err != nil {
		return nil, err
	}

	ev, err := s.GetEV(ctx, id)
	if err != nil {
		return nil, err
	}

	taken, err := s.NameExists(ctx, input.Name, id)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, apperrors.DuplicateName("ev", input.Name)
	}

	input.Apply(ev)
	ev.UpdatedAt = time.Now().UTC()

	err = storeCall(ctx, s.timeout, "update ev", func(ctx context.Context) error {
		return s.repo.Update(ctx, ev)
	})
	if err != nil {
		return nil, err
	}
	s.metrics.evWritten("update")

	if s.events != nil {
		if err := s.events.PublishEVUpdated(ctx, ev); err != nil {
			logPublishFailure(ctx, s.logger, event.TopicEVUpdated, ev.ID, err)
		}
	}

	s.logger.InfoContext(ctx, "ev updated", slog.String("ev_id", ev.ID))
	return ev, nil
}

// DeleteEV removes an EV and its reviews. Deleting an unknown ID succeeds.
func (s *CatalogService) DeleteEV(ctx context.Context, id string) error {
	var deleted bool
	err := storeCall(ctx, s.timeout, "delete ev", func(ctx context.Context) error {
		var err error
		deleted, err = s.repo.Delete(ctx, id)
		return err
	})
	if err != nil {
		return err
	}
	if !deleted {
		return nil
	}
	s.metrics.evWritten("delete")

	if s.scores != nil {
		if err := s.scores.Invalidate(ctx, id); err != nil {
			s.logger.WarnContext(ctx, "failed to invalidate score cache",
				slog.String("ev_id", id),
				slog.String("error", err.Error()),
			)
		}
	}
	if s.events != nil {
		if err := s.events.PublishEVDeleted(ctx, id); err != nil {
			logPublishFailure(ctx, s.logger, event.TopicEVDeleted, id, err)
		}
	}

	s.logger.InfoContext(ctx, "ev deleted", slog.String("ev_id", id))
	return nil
}

// NameExists reports whether an EV other than excludeID is called name.
func (s *CatalogService) NameExists(ctx context.Context, name, excludeID string) (bool, error) {
	var exists bool
	err := storeCall(ctx, s.timeout, "check ev name", func(ctx context.Context) error {
		var err error
		exists, err = s.repo.NameExists(ctx, strings.TrimSpace(name), excludeID)
		return err
	})
	return exists, err
}

// Filter returns the EVs whose attribute equals value exactly.
func (s *CatalogService) Filter(ctx context.Context, attribute, value string) ([]domain.EV, error) {
	attr, ok := domain.LookupAttribute(attribute)
	if !ok {
		return nil, apperrors.InvalidInput("unknown attribute " + strconv.Quote(attribute))
	}
	v, err := attr.ParseValue(value)
	if err != nil {
		return nil, apperrors.InvalidInput(err.Error())
	}

	var evs []domain.EV
	err = storeCall(ctx, s.timeout, "filter evs", func(ctx context.Context) error {
		var err error
		evs, err = s.repo.FindByAttribute(ctx, attr, v)
		return err
	})
	if err != nil {
		return nil, err
	}
	return evs, nil
}

// Range returns the EVs whose numeric attribute lies between lower and upper
// inclusive. Both bounds must be integers.
func (s *CatalogService) Range(ctx context.Context, attribute, lower, upper string) ([]domain.EV, error) {
	attr, ok := domain.LookupAttribute(attribute)
	if !ok || !attr.Numeric() {
		return nil, apperrors.InvalidRange(invalidRangeMessage)
	}
	lo, err := strconv.Atoi(strings.TrimSpace(lower))
	if err != nil {
		return nil, apperrors.InvalidRange(invalidRangeMessage)
	}
	hi, err := strconv.Atoi(strings.TrimSpace(upper))
	if err != nil {
		return nil, apperrors.InvalidRange(invalidRangeMessage)
	}
	if lo > hi {
		return nil, apperrors.InvalidRange(invalidRangeMessage)
	}

	var evs []domain.EV
	err = storeCall(ctx, s.timeout, "range evs", func(ctx context.Context) error {
		var err error
		evs, err = s.repo.FindInRange(ctx, attr, attr.Bound(lo), attr.Bound(hi))
		return err
	})
	if err != nil {
		return nil, err
	}
	return evs, nil
}

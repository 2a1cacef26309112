package service

import (
	"context"
	"log/slog"
	"os"

	"github.com/stretchr/testify/mock"

	"github.com/utafrali/EVCatalog/internal/domain"
)

// --- Mock EV Repository ---

type mockEVRepository struct {
	mock.Mock
}

func (m *mockEVRepository) Create(ctx context.Context, ev *domain.EV) error {
	args := m.Called(ctx, ev)
	return args.Error(0)
}

func (m *mockEVRepository) GetByID(ctx context.Context, id string) (*domain.EV, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.EV), args.Error(1)
}

func (m *mockEVRepository) List(ctx context.Context, limit, offset int) ([]domain.EV, int, error) {
	args := m.Called(ctx, limit, offset)
	return args.Get(0).([]domain.EV), args.Int(1), args.Error(2)
}

func (m *mockEVRepository) FindByAttribute(ctx context.Context, attr domain.Attribute, value any) ([]domain.EV, error) {
	args := m.Called(ctx, attr, value)
	return args.Get(0).([]domain.EV), args.Error(1)
}

func (m *mockEVRepository) FindInRange(ctx context.Context, attr domain.Attribute, lower, upper any) ([]domain.EV, error) {
	args := m.Called(ctx, attr, lower, upper)
	return args.Get(0).([]domain.EV), args.Error(1)
}

func (m *mockEVRepository) Update(ctx context.Context, ev *domain.EV) error {
	args := m.Called(ctx, ev)
	return args.Error(0)
}

func (m *mockEVRepository) Delete(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *mockEVRepository) NameExists(ctx context.Context, name, excludeID string) (bool, error) {
	args := m.Called(ctx, name, excludeID)
	return args.Bool(0), args.Error(1)
}

// --- Mock Review Repository ---

type mockReviewRepository struct {
	mock.Mock
}

func (m *mockReviewRepository) Create(ctx context.Context, review *domain.Review) error {
	args := m.Called(ctx, review)
	return args.Error(0)
}

func (m *mockReviewRepository) ListByEV(ctx context.Context, evID string, limit, offset int) ([]domain.Review, int, error) {
	args := m.Called(ctx, evID, limit, offset)
	return args.Get(0).([]domain.Review), args.Int(1), args.Error(2)
}

func (m *mockReviewRepository) RatingTotals(ctx context.Context, evID string) (int, int, error) {
	args := m.Called(ctx, evID)
	return args.Int(0), args.Int(1), args.Error(2)
}

// --- Mock User Repository ---

type mockUserRepository struct {
	mock.Mock
}

func (m *mockUserRepository) Ensure(ctx context.Context, id, name string) (*domain.User, error) {
	args := m.Called(ctx, id, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

// --- Mock Score Cache ---

type mockScoreCache struct {
	mock.Mock
}

func (m *mockScoreCache) Get(ctx context.Context, evID string) (domain.AverageScore, error) {
	args := m.Called(ctx, evID)
	return args.Get(0).(domain.AverageScore), args.Error(1)
}

func (m *mockScoreCache) Set(ctx context.Context, evID string, score domain.AverageScore) error {
	args := m.Called(ctx, evID, score)
	return args.Error(0)
}

func (m *mockScoreCache) Invalidate(ctx context.Context, evID string) error {
	args := m.Called(ctx, evID)
	return args.Error(0)
}

// --- Mock Event Publisher ---

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) PublishEVCreated(ctx context.Context, ev *domain.EV) error {
	return m.Called(ctx, ev).Error(0)
}

func (m *mockPublisher) PublishEVUpdated(ctx context.Context, ev *domain.EV) error {
	return m.Called(ctx, ev).Error(0)
}

func (m *mockPublisher) PublishEVDeleted(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockPublisher) PublishReviewCreated(ctx context.Context, review *domain.Review) error {
	return m.Called(ctx, review).Error(0)
}

// --- Test Helpers ---

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

const testEVID = "6f1c2e9a-3b4d-4e5f-8a7b-1c2d3e4f5a6b"

func validEVInput() domain.EVInput {
	return domain.EVInput{
		Name:         "Model 3",
		Manufacturer: "Tesla",
		Year:         2021,
		BatterySize:  60,
		RangeWLTP:    491,
		Cost:         40000,
		Power:        283,
	}
}

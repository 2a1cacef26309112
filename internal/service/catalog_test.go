package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/EVCatalog/internal/domain"
	apperrors "github.com/utafrali/EVCatalog/pkg/errors"
)

type catalogFixture struct {
	repo   *mockEVRepository
	cache  *mockScoreCache
	events *mockPublisher
	svc    *CatalogService
}

func newCatalogFixture() *catalogFixture {
	f := &catalogFixture{
		repo:   new(mockEVRepository),
		cache:  new(mockScoreCache),
		events: new(mockPublisher),
	}
	f.svc = NewCatalogService(f.repo, f.cache, f.events, nil, time.Second, newTestLogger())
	return f
}

// ============================================================================
// CreateEV Tests
// ============================================================================

func TestCreateEV_Success(t *testing.T) {
	f := newCatalogFixture()
	ctx := context.Background()

	f.repo.On("Create", mock.Anything, mock.MatchedBy(func(ev *domain.EV) bool {
		return ev.Name == "Model 3" && ev.ID != "" && ev.BatterySize == 60
	})).Run(func(args mock.Arguments) {
		_, hasDeadline := args.Get(0).(context.Context).Deadline()
		assert.True(t, hasDeadline, "store call should run under a timeout")
	}).Return(nil)
	f.events.On("PublishEVCreated", mock.Anything, mock.AnythingOfType("*domain.EV")).Return(nil)

	input := validEVInput()
	input.Name = "  Model 3  "
	ev, err := f.svc.CreateEV(ctx, input)

	require.NoError(t, err)
	assert.Equal(t, "Model 3", ev.Name)
	assert.Equal(t, time.UTC, ev.CreatedAt.Location())
	f.repo.AssertExpectations(t)
	f.events.AssertExpectations(t)
}

func TestCreateEV_DuplicateName(t *testing.T) {
	f := newCatalogFixture()

	f.repo.On("Create", mock.Anything, mock.AnythingOfType("*domain.EV")).
		Return(apperrors.DuplicateName("ev", "Model 3"))

	ev, err := f.svc.CreateEV(context.Background(), validEVInput())

	assert.Nil(t, ev)
	assert.ErrorIs(t, err, apperrors.ErrAlreadyExists)
	f.events.AssertNotCalled(t, "PublishEVCreated", mock.Anything, mock.Anything)
}

func TestCreateEV_InvalidInput(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*domain.EVInput)
	}{
		{"missing name", func(in *domain.EVInput) { in.Name = "   " }},
		{"missing manufacturer", func(in *domain.EVInput) { in.Manufacturer = "" }},
		{"zero battery", func(in *domain.EVInput) { in.BatterySize = 0 }},
		{"negative cost", func(in *domain.EVInput) { in.Cost = -1 }},
		{"year out of range", func(in *domain.EVInput) { in.Year = 1700 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newCatalogFixture()
			input := validEVInput()
			tt.mutate(&input)

			_, err := f.svc.CreateEV(context.Background(), input)

			assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
			f.repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestCreateEV_PublishFailureIsNotFatal(t *testing.T) {
	f := newCatalogFixture()

	f.repo.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.events.On("PublishEVCreated", mock.Anything, mock.Anything).Return(errors.New("broker down"))

	ev, err := f.svc.CreateEV(context.Background(), validEVInput())

	require.NoError(t, err)
	assert.NotNil(t, ev)
}

func TestCreateEV_StoreUnavailable(t *testing.T) {
	f := newCatalogFixture()

	f.repo.On("Create", mock.Anything, mock.Anything).
		Return(fmt.Errorf("insert ev: %w", context.DeadlineExceeded))

	_, err := f.svc.CreateEV(context.Background(), validEVInput())

	assert.ErrorIs(t, err, apperrors.ErrServiceUnavail)
	assert.Equal(t, 503, apperrors.HTTPStatus(err))
}

func TestCreateEV_NilPublisher(t *testing.T) {
	repo := new(mockEVRepository)
	svc := NewCatalogService(repo, nil, nil, nil, 0, newTestLogger())

	repo.On("Create", mock.Anything, mock.Anything).Return(nil)

	_, err := svc.CreateEV(context.Background(), validEVInput())
	require.NoError(t, err)
}

// ============================================================================
// GetEV / List Tests
// ============================================================================

func TestGetEV_NotFound(t *testing.T) {
	f := newCatalogFixture()
	f.repo.On("GetByID", mock.Anything, "missing").Return(nil, apperrors.NotFound("ev", "missing"))

	ev, err := f.svc.GetEV(context.Background(), "missing")

	assert.Nil(t, ev)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestList_Paginates(t *testing.T) {
	f := newCatalogFixture()
	evs := []domain.EV{{ID: "a", Name: "Ioniq 5"}, {ID: "b", Name: "Model 3"}}
	f.repo.On("List", mock.Anything, 2, 2).Return(evs, 5, nil)

	res, err := f.svc.List(context.Background(), 2, 2)

	require.NoError(t, err)
	assert.Equal(t, evs, res.Data)
	assert.Equal(t, 5, res.TotalCount)
	assert.Equal(t, 3, res.TotalPages)
	assert.True(t, res.HasNext)
	assert.True(t, res.HasPrev)
}

func TestList_DefaultsPageSize(t *testing.T) {
	f := newCatalogFixture()
	f.repo.On("List", mock.Anything, 20, 0).Return([]domain.EV{}, 0, nil)

	res, err := f.svc.List(context.Background(), 0, 0)

	require.NoError(t, err)
	assert.Empty(t, res.Data)
	assert.Equal(t, 1, res.Page)
}

// ============================================================================
// UpdateEV Tests
// ============================================================================

func TestUpdateEV_ReplacesAllFields(t *testing.T) {
	f := newCatalogFixture()
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	existing := &domain.EV{ID: testEVID, Name: "Old", Manufacturer: "Old Co", Year: 2019, CreatedAt: created}

	f.repo.On("GetByID", mock.Anything, testEVID).Return(existing, nil)
	f.repo.On("NameExists", mock.Anything, "Model 3", testEVID).Return(false, nil)
	f.repo.On("Update", mock.Anything, mock.MatchedBy(func(ev *domain.EV) bool {
		return ev.ID == testEVID && ev.Name == "Model 3" && ev.Manufacturer == "Tesla" && ev.Power == 283
	})).Return(nil)
	f.events.On("PublishEVUpdated", mock.Anything, mock.Anything).Return(nil)

	ev, err := f.svc.UpdateEV(context.Background(), testEVID, validEVInput())

	require.NoError(t, err)
	assert.Equal(t, 2021, ev.Year)
	assert.Equal(t, created, ev.CreatedAt)
	f.repo.AssertExpectations(t)
}

func TestUpdateEV_PartialInputRejected(t *testing.T) {
	f := newCatalogFixture()
	input := validEVInput()
	input.Manufacturer = ""

	_, err := f.svc.UpdateEV(context.Background(), testEVID, input)

	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	f.repo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	f.repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestUpdateEV_DuplicateName(t *testing.T) {
	f := newCatalogFixture()

	f.repo.On("GetByID", mock.Anything, testEVID).Return(&domain.EV{ID: testEVID, Name: "Old"}, nil)
	f.repo.On("NameExists", mock.Anything, "Model 3", testEVID).Return(true, nil)

	_, err := f.svc.UpdateEV(context.Background(), testEVID, validEVInput())

	assert.ErrorIs(t, err, apperrors.ErrAlreadyExists)
	f.repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestUpdateEV_NotFound(t *testing.T) {
	f := newCatalogFixture()
	f.repo.On("GetByID", mock.Anything, testEVID).Return(nil, apperrors.NotFound("ev", testEVID))

	_, err := f.svc.UpdateEV(context.Background(), testEVID, validEVInput())

	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

// ============================================================================
// DeleteEV Tests
// ============================================================================

func TestDeleteEV_Existing(t *testing.T) {
	f := newCatalogFixture()
	f.repo.On("Delete", mock.Anything, testEVID).Return(true, nil)
	f.cache.On("Invalidate", mock.Anything, testEVID).Return(nil)
	f.events.On("PublishEVDeleted", mock.Anything, testEVID).Return(nil)

	require.NoError(t, f.svc.DeleteEV(context.Background(), testEVID))

	f.cache.AssertExpectations(t)
	f.events.AssertExpectations(t)
}

func TestDeleteEV_UnknownIsNoOp(t *testing.T) {
	f := newCatalogFixture()
	f.repo.On("Delete", mock.Anything, "missing").Return(false, nil)

	require.NoError(t, f.svc.DeleteEV(context.Background(), "missing"))

	f.events.AssertNotCalled(t, "PublishEVDeleted", mock.Anything, mock.Anything)
	f.cache.AssertNotCalled(t, "Invalidate", mock.Anything, mock.Anything)
}

// ============================================================================
// Filter / Range Tests
// ============================================================================

func TestFilter_TextAttribute(t *testing.T) {
	f := newCatalogFixture()
	attr, _ := domain.LookupAttribute("Manufacturer")
	want := []domain.EV{{Name: "Model 3", Manufacturer: "Tesla"}}
	f.repo.On("FindByAttribute", mock.Anything, attr, "Tesla").Return(want, nil)

	got, err := f.svc.Filter(context.Background(), "Manufacturer", "Tesla")

	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestFilter_NumericAttributeParsed(t *testing.T) {
	f := newCatalogFixture()
	attr, _ := domain.LookupAttribute("Year")
	f.repo.On("FindByAttribute", mock.Anything, attr, 2021).Return([]domain.EV{}, nil)

	_, err := f.svc.Filter(context.Background(), "Year", " 2021 ")

	require.NoError(t, err)
	f.repo.AssertExpectations(t)
}

func TestFilter_Rejects(t *testing.T) {
	f := newCatalogFixture()

	_, err := f.svc.Filter(context.Background(), "Colour", "red")
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	_, err = f.svc.Filter(context.Background(), "Year", "recent")
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	f.repo.AssertNotCalled(t, "FindByAttribute", mock.Anything, mock.Anything, mock.Anything)
}

func TestRange_Inclusive(t *testing.T) {
	f := newCatalogFixture()
	attr, _ := domain.LookupAttribute("Battery_size")
	want := []domain.EV{{Name: "A", BatterySize: 60}, {Name: "B", BatterySize: 75}}
	f.repo.On("FindInRange", mock.Anything, attr, float64(60), float64(75)).Return(want, nil)

	got, err := f.svc.Range(context.Background(), "Battery_size", "60", "75")

	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestRange_IntegerColumnBounds(t *testing.T) {
	f := newCatalogFixture()
	attr, _ := domain.LookupAttribute("Year")
	f.repo.On("FindInRange", mock.Anything, attr, 2020, 2020).Return([]domain.EV{}, nil)

	_, err := f.svc.Range(context.Background(), "Year", "2020", "2020")

	require.NoError(t, err)
	f.repo.AssertExpectations(t)
}

func TestRange_InvalidBounds(t *testing.T) {
	tests := []struct {
		name, attribute, lower, upper string
	}{
		{"non-numeric lower", "Cost", "cheap", "100"},
		{"non-numeric upper", "Cost", "1", "lots"},
		{"decimal bound", "Cost", "1.5", "100"},
		{"empty bounds", "Cost", "", ""},
		{"lower above upper", "Cost", "100", "1"},
		{"text attribute", "Name", "1", "2"},
		{"unknown attribute", "Colour", "1", "2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newCatalogFixture()

			got, err := f.svc.Range(context.Background(), tt.attribute, tt.lower, tt.upper)

			assert.Empty(t, got)
			require.Error(t, err)
			assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
			var appErr *apperrors.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, "INVALID_RANGE", appErr.Code)
			assert.Equal(t, "Invalid numerical range provided.", appErr.Message)
			f.repo.AssertNotCalled(t, "FindInRange", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestNameExists(t *testing.T) {
	f := newCatalogFixture()
	f.repo.On("NameExists", mock.Anything, "Model 3", "").Return(true, nil)

	exists, err := f.svc.NameExists(context.Background(), " Model 3 ", "")

	require.NoError(t, err)
	assert.True(t, exists)
}

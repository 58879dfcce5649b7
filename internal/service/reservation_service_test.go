package service

import (
	"context"
	"io"
	"testing"
	"time"

	"reserva/internal/config"
	"reserva/internal/database"
	"reserva/internal/domain"
	"reserva/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func testPolicy() config.BookingConfig {
	return config.BookingConfig{
		Campuses:           []string{"Monterrico", "San Miguel"},
		DurationChoices:    []int{30, 60, 90, 120},
		MaxDurationMinutes: 120,
	}
}

func validRequest(now time.Time) *domain.CreateReservationRequest {
	return &domain.CreateReservationRequest{
		ProductID:       1,
		Campus:          "Monterrico",
		RequesterName:   "Lucia Herrera",
		RequesterCode:   "U201912345",
		Purpose:         "thesis shoot",
		StartAt:         now.Add(2 * time.Hour),
		DurationMinutes: 60,
	}
}

func TestCreateReservationValidation(t *testing.T) {
	repo := new(mockRepo)
	logger := zerolog.New(io.Discard)
	svc := NewReservationService(repo, nil, nil, testPolicy(), &logger)
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }
	ctx := context.Background()

	t.Run("MissingRequester", func(t *testing.T) {
		req := validRequest(now)
		req.RequesterName = ""
		_, err := svc.CreateReservation(ctx, req)
		assert.ErrorIs(t, err, ErrMissingRequester)
	})

	t.Run("ZeroStart", func(t *testing.T) {
		req := validRequest(now)
		req.StartAt = time.Time{}
		_, err := svc.CreateReservation(ctx, req)
		assert.ErrorIs(t, err, ErrInvalidStart)
	})

	t.Run("PastStart", func(t *testing.T) {
		req := validRequest(now)
		req.StartAt = now.Add(-time.Minute)
		_, err := svc.CreateReservation(ctx, req)
		assert.ErrorIs(t, err, ErrInvalidStart)
	})

	t.Run("DurationOverCap", func(t *testing.T) {
		req := validRequest(now)
		req.DurationMinutes = 150
		_, err := svc.CreateReservation(ctx, req)
		assert.ErrorIs(t, err, ErrDurationExceeded)
	})

	t.Run("DurationNotAChoice", func(t *testing.T) {
		req := validRequest(now)
		req.DurationMinutes = 45
		_, err := svc.CreateReservation(ctx, req)
		assert.ErrorIs(t, err, ErrInvalidDuration)
	})

	t.Run("UnknownCampus", func(t *testing.T) {
		req := validRequest(now)
		req.Campus = "Villa"
		_, err := svc.CreateReservation(ctx, req)
		assert.ErrorIs(t, err, ErrUnknownCampus)
	})

	// No repository calls for rejected requests.
	repo.AssertExpectations(t)
}

func TestCreateReservation(t *testing.T) {
	repo := new(mockRepo)
	bus := new(mockEventBus)
	logger := zerolog.New(io.Discard)
	svc := NewReservationService(repo, nil, bus, testPolicy(), &logger)
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		req := validRequest(now)

		repo.On("CreateReservationWithLock", ctx, "Monterrico", mock.AnythingOfType("*models.Reservation")).
			Run(func(args mock.Arguments) {
				r := args.Get(2).(*models.Reservation)
				r.ID = 7
				r.UnitID = 3
				r.UnitCode = "CAM-MT-01"
				r.Status = models.StatusReserved
			}).Return(nil).Once()
		bus.On("PublishJSON", mock.Anything, mock.Anything).Return(nil).Once()

		reservation, err := svc.CreateReservation(ctx, req)
		require.NoError(t, err)
		assert.Equal(t, int64(7), reservation.ID)
		assert.Equal(t, "CAM-MT-01", reservation.UnitCode)
		assert.Equal(t, req.StartAt.Add(time.Hour), reservation.EndAt)
		repo.AssertExpectations(t)
		bus.AssertExpectations(t)
	})

	t.Run("FullyBooked", func(t *testing.T) {
		req := validRequest(now)

		repo.On("CreateReservationWithLock", ctx, "Monterrico", mock.AnythingOfType("*models.Reservation")).
			Return(database.ErrNoUnitAvailable).Once()

		_, err := svc.CreateReservation(ctx, req)
		assert.ErrorIs(t, err, database.ErrNoUnitAvailable)
		repo.AssertExpectations(t)
	})
}

func TestCreateReservationIdempotency(t *testing.T) {
	repo := new(mockRepo)
	idem := new(mockIdempotency)
	logger := zerolog.New(io.Discard)
	svc := NewReservationService(repo, idem, nil, testPolicy(), &logger)
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }
	ctx := context.Background()

	t.Run("Replay", func(t *testing.T) {
		req := validRequest(now)
		req.RequesterCode = ""
		req.IdempotencyKey = "portal-abc123"
		existing := &models.Reservation{ID: 42, Status: models.StatusReserved}

		idem.On("Get", ctx, "portal-abc123").
			Return(&domain.IdempotencyRecord{Key: "portal-abc123", ReservationID: 42}, nil).Once()
		repo.On("GetReservation", ctx, int64(42)).Return(existing, nil).Once()

		reservation, err := svc.CreateReservation(ctx, req)
		require.NoError(t, err)
		assert.Equal(t, int64(42), reservation.ID)
		repo.AssertNotCalled(t, "CreateReservationWithLock", mock.Anything, mock.Anything, mock.Anything)
		idem.AssertExpectations(t)
	})

	t.Run("StoresRecordOnSuccess", func(t *testing.T) {
		req := validRequest(now)
		req.RequesterCode = ""
		req.IdempotencyKey = "portal-def456"

		idem.On("Get", ctx, "portal-def456").Return(nil, nil).Once()
		repo.On("CreateReservationWithLock", ctx, "Monterrico", mock.AnythingOfType("*models.Reservation")).
			Run(func(args mock.Arguments) {
				args.Get(2).(*models.Reservation).ID = 43
			}).Return(nil).Once()
		idem.On("Set", ctx, &domain.IdempotencyRecord{Key: "portal-def456", ReservationID: 43}).
			Return(nil).Once()

		_, err := svc.CreateReservation(ctx, req)
		require.NoError(t, err)
		idem.AssertExpectations(t)
	})
}

func TestCreateReservationRateLimit(t *testing.T) {
	repo := new(mockRepo)
	idem := new(mockIdempotency)
	logger := zerolog.New(io.Discard)
	policy := testPolicy()
	policy.RateLimitRequests = 10
	policy.RateLimitWindowSecs = 60
	svc := NewReservationService(repo, idem, nil, policy, &logger)
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }
	ctx := context.Background()

	req := validRequest(now)
	idem.On("CheckRateLimit", ctx, "reservation:U201912345", 10, time.Minute).
		Return(false, nil).Once()

	_, err := svc.CreateReservation(ctx, req)
	assert.ErrorIs(t, err, ErrRateLimited)
	repo.AssertNotCalled(t, "CreateReservationWithLock", mock.Anything, mock.Anything, mock.Anything)
}

func TestReservationStatusTransitions(t *testing.T) {
	repo := new(mockRepo)
	bus := new(mockEventBus)
	logger := zerolog.New(io.Discard)
	svc := NewReservationService(repo, nil, bus, testPolicy(), &logger)
	ctx := context.Background()

	t.Run("Complete", func(t *testing.T) {
		reservation := &models.Reservation{ID: 5, Status: models.StatusCompleted}
		repo.On("UpdateReservationStatus", ctx, int64(5), models.StatusCompleted).Return(nil).Once()
		repo.On("GetReservation", ctx, int64(5)).Return(reservation, nil).Once()
		bus.On("PublishJSON", mock.Anything, mock.Anything).Return(nil).Once()

		err := svc.CompleteReservation(ctx, 5)
		assert.NoError(t, err)
		repo.AssertExpectations(t)
	})

	t.Run("Cancel", func(t *testing.T) {
		reservation := &models.Reservation{ID: 6, Status: models.StatusCancelled}
		repo.On("UpdateReservationStatus", ctx, int64(6), models.StatusCancelled).Return(nil).Once()
		repo.On("GetReservation", ctx, int64(6)).Return(reservation, nil).Once()
		bus.On("PublishJSON", mock.Anything, mock.Anything).Return(nil).Once()

		err := svc.CancelReservation(ctx, 6)
		assert.NoError(t, err)
		repo.AssertExpectations(t)
	})

	t.Run("AlreadyTerminal", func(t *testing.T) {
		repo.On("UpdateReservationStatus", ctx, int64(7), models.StatusCancelled).
			Return(database.ErrInvalidTransition).Once()

		err := svc.CancelReservation(ctx, 7)
		assert.ErrorIs(t, err, database.ErrInvalidTransition)
		repo.AssertExpectations(t)
	})
}

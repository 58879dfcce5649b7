package service

import (
	"context"
	"io"
	"testing"
	"time"

	"reserva/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestVerificationBuckets(t *testing.T) {
	repo := new(mockRepo)
	logger := zerolog.New(io.Discard)
	svc := NewVerificationService(repo, nil, nil, 60, &logger)
	ctx := context.Background()

	startAt := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	endAt := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	open := []*models.Reservation{
		{ID: 1, StartAt: startAt, EndAt: endAt, Status: models.StatusReserved},
	}

	cases := []struct {
		name     string
		now      time.Time
		upcoming int
		active   int
		overdue  int
	}{
		{"BeforeStart", time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC), 1, 0, 0},
		{"AtStart", startAt, 0, 1, 0},
		{"Midway", time.Date(2024, 1, 1, 9, 30, 0, 0, time.UTC), 0, 1, 0},
		{"AtEnd", endAt, 0, 1, 0},
		{"AfterEnd", time.Date(2024, 1, 1, 10, 30, 0, 0, time.UTC), 0, 0, 1},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo.On("GetReservationsByStatus", ctx, models.StatusReserved).Return(open, nil).Once()
			svc.now = func() time.Time { return tc.now }

			buckets, err := svc.Buckets(ctx)
			require.NoError(t, err)
			assert.Len(t, buckets.Upcoming, tc.upcoming)
			assert.Len(t, buckets.Active, tc.active)
			assert.Len(t, buckets.Overdue, tc.overdue)
			assert.Equal(t, 1, buckets.Total())
		})
	}
}

func TestVerificationBucketsDisjoint(t *testing.T) {
	repo := new(mockRepo)
	logger := zerolog.New(io.Discard)
	svc := NewVerificationService(repo, nil, nil, 60, &logger)
	ctx := context.Background()

	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	open := []*models.Reservation{
		{ID: 1, StartAt: now.Add(time.Hour), EndAt: now.Add(2 * time.Hour), Status: models.StatusReserved},
		{ID: 2, StartAt: now.Add(-time.Hour), EndAt: now.Add(time.Hour), Status: models.StatusReserved},
		{ID: 3, StartAt: now.Add(-3 * time.Hour), EndAt: now.Add(-time.Hour), Status: models.StatusReserved},
		{ID: 4, StartAt: now, EndAt: now.Add(30 * time.Minute), Status: models.StatusReserved},
	}
	repo.On("GetReservationsByStatus", ctx, models.StatusReserved).Return(open, nil).Once()

	buckets, err := svc.Buckets(ctx)
	require.NoError(t, err)
	assert.Equal(t, len(open), buckets.Total())
	assert.Len(t, buckets.Upcoming, 1)
	assert.Len(t, buckets.Active, 2)
	assert.Len(t, buckets.Overdue, 1)
	assert.Equal(t, int64(1), buckets.Upcoming[0].ID)
	assert.Equal(t, int64(3), buckets.Overdue[0].ID)
}

func TestVerificationCachedSnapshot(t *testing.T) {
	repo := new(mockRepo)
	logger := zerolog.New(io.Discard)
	svc := NewVerificationService(repo, nil, nil, 60, &logger)
	ctx := context.Background()

	assert.Nil(t, svc.Cached())

	repo.On("GetReservationsByStatus", ctx, models.StatusReserved).
		Return([]*models.Reservation{}, nil).Once()
	buckets, err := svc.Buckets(ctx)
	require.NoError(t, err)

	assert.Equal(t, buckets, svc.Cached())
}

func TestVerificationRecordUnitNote(t *testing.T) {
	repo := new(mockRepo)
	bus := new(mockEventBus)
	logger := zerolog.New(io.Discard)
	svc := NewVerificationService(repo, nil, bus, 60, &logger)
	ctx := context.Background()

	repo.On("AddUnitNote", ctx, mock.AnythingOfType("*models.UnitNote")).
		Run(func(args mock.Arguments) {
			args.Get(1).(*models.UnitNote).ID = 11
		}).Return(nil).Once()
	bus.On("PublishJSON", mock.Anything, mock.Anything).Return(nil).Once()

	note, err := svc.RecordUnitNote(ctx, 3, "scratched lens cap", "staff:mrios")
	require.NoError(t, err)
	assert.Equal(t, int64(11), note.ID)
	assert.Equal(t, int64(3), note.UnitID)
	repo.AssertExpectations(t)
	bus.AssertExpectations(t)
}

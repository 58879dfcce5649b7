package service

import (
	"context"
	"io"
	"testing"
	"time"

	"reserva/internal/domain"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductAvailabilityHeadline(t *testing.T) {
	repo := new(mockRepo)
	logger := zerolog.New(io.Discard)
	svc := NewAvailabilityService(repo, &logger)
	ctx := context.Background()

	repo.On("CountActiveUnits", ctx, int64(1), "Monterrico").Return(3, nil).Once()

	availability, err := svc.ProductAvailability(ctx, 1, "Monterrico", nil)
	require.NoError(t, err)
	assert.Equal(t, 3, availability.ActiveUnits)
	// Without a window the free count mirrors the headline count.
	assert.Equal(t, 3, availability.FreeUnits)
	assert.Nil(t, availability.WindowStart)
	repo.AssertExpectations(t)
}

func TestProductAvailabilityWithWindow(t *testing.T) {
	repo := new(mockRepo)
	logger := zerolog.New(io.Discard)
	svc := NewAvailabilityService(repo, &logger)
	ctx := context.Background()

	startAt := time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)
	endAt := startAt.Add(time.Hour)

	repo.On("CountActiveUnits", ctx, int64(1), "San Miguel").Return(3, nil).Once()
	repo.On("CountFreeUnits", ctx, int64(1), "San Miguel", startAt, endAt).Return(1, nil).Once()

	availability, err := svc.ProductAvailability(ctx, 1, "San Miguel", &domain.Window{StartAt: startAt, EndAt: endAt})
	require.NoError(t, err)
	assert.Equal(t, 3, availability.ActiveUnits)
	assert.Equal(t, 1, availability.FreeUnits)
	require.NotNil(t, availability.WindowStart)
	assert.Equal(t, startAt, *availability.WindowStart)
	assert.Equal(t, endAt, *availability.WindowEnd)
	repo.AssertExpectations(t)
}

package service

import (
	"context"
	"time"

	"reserva/internal/domain"
	"reserva/internal/models"

	"github.com/rs/zerolog"
)

// AvailabilityService answers "how many units could I get" questions.
// The headline count only looks at unit status; the free count additionally
// subtracts units whose reservations overlap the requested window.
type AvailabilityService struct {
	repo   domain.Repository
	logger *zerolog.Logger
}

func NewAvailabilityService(repo domain.Repository, logger *zerolog.Logger) *AvailabilityService {
	return &AvailabilityService{repo: repo, logger: logger}
}

func (s *AvailabilityService) ProductAvailability(ctx context.Context, productID int64, campus string, window *domain.Window) (*models.ProductAvailability, error) {
	active, err := s.repo.CountActiveUnits(ctx, productID, campus)
	if err != nil {
		return nil, err
	}

	availability := &models.ProductAvailability{
		ProductID:   productID,
		Campus:      campus,
		ActiveUnits: active,
		FreeUnits:   active,
	}

	if window != nil {
		free, err := s.repo.CountFreeUnits(ctx, productID, campus, window.StartAt, window.EndAt)
		if err != nil {
			return nil, err
		}
		availability.FreeUnits = free
		start := window.StartAt
		end := window.EndAt
		availability.WindowStart = &start
		availability.WindowEnd = &end
	}

	return availability, nil
}

func (s *AvailabilityService) IsUnitFree(ctx context.Context, unitID int64, startAt, endAt time.Time) (bool, error) {
	return s.repo.IsUnitFree(ctx, unitID, startAt, endAt)
}

func (s *AvailabilityService) PickFreeUnit(ctx context.Context, productID int64, campus string, startAt, endAt time.Time) (*models.Unit, error) {
	return s.repo.PickFreeUnit(ctx, productID, campus, startAt, endAt)
}

package service

import (
	"context"
	"errors"
	"time"

	"reserva/internal/config"
	"reserva/internal/database"
	"reserva/internal/domain"
	"reserva/internal/events"
	"reserva/internal/metrics"
	"reserva/internal/models"

	"github.com/rs/zerolog"
)

// ReservationService admits new reservations and drives the status machine.
// All writes go through the repository's locked create so two concurrent
// requests can never be granted the same unit for overlapping windows.
type ReservationService struct {
	repo        domain.Repository
	idempotency domain.IdempotencyRepository
	eventBus    domain.EventPublisher
	policy      config.BookingConfig
	logger      *zerolog.Logger

	now func() time.Time
}

func NewReservationService(repo domain.Repository, idempotency domain.IdempotencyRepository, eventBus domain.EventPublisher, policy config.BookingConfig, logger *zerolog.Logger) *ReservationService {
	if policy.MaxDurationMinutes <= 0 || policy.MaxDurationMinutes > models.MaxReservationMinutes {
		policy.MaxDurationMinutes = models.MaxReservationMinutes
	}
	if len(policy.DurationChoices) == 0 {
		policy.DurationChoices = models.DefaultDurationChoices
	}
	if len(policy.Campuses) == 0 {
		policy.Campuses = models.DefaultCampuses
	}
	return &ReservationService{
		repo:        repo,
		idempotency: idempotency,
		eventBus:    eventBus,
		policy:      policy,
		logger:      logger,
		now:         time.Now,
	}
}

func (s *ReservationService) validateRequest(req *domain.CreateReservationRequest) error {
	if req.RequesterName == "" {
		return ErrMissingRequester
	}

	if req.StartAt.IsZero() || req.StartAt.Before(s.now()) {
		return ErrInvalidStart
	}

	if req.DurationMinutes > s.policy.MaxDurationMinutes {
		return ErrDurationExceeded
	}
	allowed := false
	for _, choice := range s.policy.DurationChoices {
		if req.DurationMinutes == choice {
			allowed = true
			break
		}
	}
	if !allowed {
		return ErrInvalidDuration
	}

	for _, campus := range s.policy.Campuses {
		if req.Campus == campus {
			return nil
		}
	}
	return ErrUnknownCampus
}

func (s *ReservationService) CreateReservation(ctx context.Context, req *domain.CreateReservationRequest) (*models.Reservation, error) {
	if err := s.validateRequest(req); err != nil {
		return nil, err
	}

	// A retried request with the same key returns the original reservation
	// instead of booking a second unit.
	if req.IdempotencyKey != "" && s.idempotency != nil {
		record, err := s.idempotency.Get(ctx, req.IdempotencyKey)
		if err != nil {
			s.logger.Warn().Err(err).Str("key", req.IdempotencyKey).Msg("idempotency lookup error")
		} else if record != nil {
			return s.repo.GetReservation(ctx, record.ReservationID)
		}
	}

	if req.RequesterCode != "" && s.idempotency != nil && s.policy.RateLimitRequests > 0 {
		window := time.Duration(s.policy.RateLimitWindowSecs) * time.Second
		if window <= 0 {
			window = time.Duration(models.RateLimitWindow) * time.Second
		}
		ok, err := s.idempotency.CheckRateLimit(ctx, "reservation:"+req.RequesterCode, s.policy.RateLimitRequests, window)
		if err != nil {
			s.logger.Warn().Err(err).Str("requester", req.RequesterCode).Msg("rate limit check error")
		} else if !ok {
			return nil, ErrRateLimited
		}
	}

	reservation := &models.Reservation{
		ProductID:     req.ProductID,
		RequesterName: req.RequesterName,
		RequesterCode: req.RequesterCode,
		Purpose:       req.Purpose,
		StartAt:       req.StartAt,
		EndAt:         req.StartAt.Add(time.Duration(req.DurationMinutes) * time.Minute),
	}

	if err := s.repo.CreateReservationWithLock(ctx, req.Campus, reservation); err != nil {
		if errors.Is(err, database.ErrNoUnitAvailable) {
			metrics.IncReservationConflict()
		}
		return nil, err
	}

	metrics.IncReservationCreated()

	if req.IdempotencyKey != "" && s.idempotency != nil {
		record := &domain.IdempotencyRecord{Key: req.IdempotencyKey, ReservationID: reservation.ID}
		if err := s.idempotency.Set(ctx, record); err != nil {
			s.logger.Warn().Err(err).Str("key", req.IdempotencyKey).Msg("idempotency store error")
		}
	}

	s.publishEvent(events.EventReservationCreated, reservation, "requester")

	return reservation, nil
}

func (s *ReservationService) CompleteReservation(ctx context.Context, id int64) error {
	if err := s.repo.UpdateReservationStatus(ctx, id, models.StatusCompleted); err != nil {
		return err
	}

	if reservation, err := s.repo.GetReservation(ctx, id); err == nil {
		s.publishEvent(events.EventReservationCompleted, reservation, "staff")
	}

	return nil
}

func (s *ReservationService) CancelReservation(ctx context.Context, id int64) error {
	if err := s.repo.UpdateReservationStatus(ctx, id, models.StatusCancelled); err != nil {
		return err
	}

	if reservation, err := s.repo.GetReservation(ctx, id); err == nil {
		s.publishEvent(events.EventReservationCancelled, reservation, "staff")
	}

	return nil
}

func (s *ReservationService) GetReservation(ctx context.Context, id int64) (*models.Reservation, error) {
	return s.repo.GetReservation(ctx, id)
}

func (s *ReservationService) GetReservationsByStatus(ctx context.Context, status string) ([]*models.Reservation, error) {
	return s.repo.GetReservationsByStatus(ctx, status)
}

func (s *ReservationService) GetReservationsByRange(ctx context.Context, startAt, endAt time.Time) ([]*models.Reservation, error) {
	return s.repo.GetReservationsByRange(ctx, startAt, endAt)
}

func (s *ReservationService) publishEvent(eventType string, reservation *models.Reservation, changedBy string) {
	if s.eventBus == nil {
		return
	}

	payload := events.ReservationEventPayload{
		ReservationID: reservation.ID,
		ProductID:     reservation.ProductID,
		UnitID:        reservation.UnitID,
		UnitCode:      reservation.UnitCode,
		RequesterName: reservation.RequesterName,
		Status:        reservation.Status,
		StartAt:       reservation.StartAt,
		EndAt:         reservation.EndAt,
		ChangedBy:     changedBy,
	}

	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Str("event_type", eventType).Int64("reservation_id", reservation.ID).Msg("publish event error")
	}
}

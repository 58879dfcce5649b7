package service

import (
	"context"
	"sync"
	"time"

	"reserva/internal/domain"
	"reserva/internal/events"
	"reserva/internal/models"

	"github.com/rs/zerolog"
)

// VerificationService feeds the staff check-in/check-out board. It projects
// open reservations into time buckets and keeps a periodically refreshed
// snapshot so dashboard polls do not hit the database on every request.
type VerificationService struct {
	repo        domain.Repository
	reservation domain.ReservationService
	eventBus    domain.EventPublisher
	refresh     time.Duration
	logger      *zerolog.Logger

	mu       sync.RWMutex
	snapshot *models.VerificationBuckets

	now func() time.Time
}

func NewVerificationService(repo domain.Repository, reservation domain.ReservationService, eventBus domain.EventPublisher, refreshSeconds int, logger *zerolog.Logger) *VerificationService {
	if refreshSeconds <= 0 {
		refreshSeconds = models.DefaultVerificationRefreshSeconds
	}
	return &VerificationService{
		repo:        repo,
		reservation: reservation,
		eventBus:    eventBus,
		refresh:     time.Duration(refreshSeconds) * time.Second,
		logger:      logger,
		now:         time.Now,
	}
}

// Start refreshes the snapshot on a ticker until the context is cancelled.
func (s *VerificationService) Start(ctx context.Context) {
	if _, err := s.Buckets(ctx); err != nil {
		s.logger.Error().Err(err).Msg("initial verification refresh error")
	}

	ticker := time.NewTicker(s.refresh)
	defer ticker.Stop()

	s.logger.Info().Dur("interval", s.refresh).Msg("verification refresh started")

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("verification refresh stopped")
			return
		case <-ticker.C:
			if _, err := s.Buckets(ctx); err != nil {
				s.logger.Error().Err(err).Msg("verification refresh error")
			}
		}
	}
}

// Buckets rebuilds the projection from open reservations and caches it.
func (s *VerificationService) Buckets(ctx context.Context) (*models.VerificationBuckets, error) {
	open, err := s.repo.GetReservationsByStatus(ctx, models.StatusReserved)
	if err != nil {
		return nil, err
	}

	now := s.now()
	buckets := &models.VerificationBuckets{Now: now}
	for _, reservation := range open {
		switch reservation.Bucket(now) {
		case models.BucketUpcoming:
			buckets.Upcoming = append(buckets.Upcoming, reservation)
		case models.BucketActive:
			buckets.Active = append(buckets.Active, reservation)
		case models.BucketOverdue:
			buckets.Overdue = append(buckets.Overdue, reservation)
		}
	}

	s.mu.Lock()
	s.snapshot = buckets
	s.mu.Unlock()

	return buckets, nil
}

// Cached returns the last snapshot, or nil before the first refresh.
func (s *VerificationService) Cached() *models.VerificationBuckets {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot
}

// RecordUnitNote attaches a condition note during check-in and keeps the
// unit's latest-note pointer current.
func (s *VerificationService) RecordUnitNote(ctx context.Context, unitID int64, text, author string) (*models.UnitNote, error) {
	note := &models.UnitNote{
		UnitID:    unitID,
		Note:      text,
		CreatedBy: author,
	}
	if err := s.repo.AddUnitNote(ctx, note); err != nil {
		return nil, err
	}

	if s.eventBus != nil {
		payload := events.UnitEventPayload{UnitID: unitID, Note: text, Author: author}
		if err := s.eventBus.PublishJSON(events.EventUnitNoteAdded, payload); err != nil {
			s.logger.Error().Err(err).Int64("unit_id", unitID).Msg("publish event error")
		}
	}

	return note, nil
}

// CompleteReservation marks a reservation returned from the verification board.
func (s *VerificationService) CompleteReservation(ctx context.Context, reservationID int64) error {
	return s.reservation.CompleteReservation(ctx, reservationID)
}

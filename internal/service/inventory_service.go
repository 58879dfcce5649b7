package service

import (
	"context"

	"reserva/internal/domain"
	"reserva/internal/events"
	"reserva/internal/models"

	"github.com/rs/zerolog"
)

// InventoryService manages the physical unit registry: registration, status
// changes, condition notes and cascade removal.
type InventoryService struct {
	repo     domain.Repository
	eventBus domain.EventPublisher
	logger   *zerolog.Logger
}

func NewInventoryService(repo domain.Repository, eventBus domain.EventPublisher, logger *zerolog.Logger) *InventoryService {
	return &InventoryService{repo: repo, eventBus: eventBus, logger: logger}
}

func (s *InventoryService) RegisterUnit(ctx context.Context, unit *models.Unit) error {
	if unit.Status == "" {
		unit.Status = models.UnitStatusActive
	}
	return s.repo.CreateUnit(ctx, unit)
}

func (s *InventoryService) GetUnit(ctx context.Context, id int64) (*models.Unit, error) {
	return s.repo.GetUnit(ctx, id)
}

func (s *InventoryService) ListUnits(ctx context.Context, productID int64) ([]*models.Unit, error) {
	return s.repo.GetUnitsByProduct(ctx, productID)
}

func (s *InventoryService) ListActiveUnits(ctx context.Context, productID int64, campus string) ([]*models.Unit, error) {
	return s.repo.GetActiveUnits(ctx, productID, campus)
}

// SetUnitStatus moves a unit between active, maintenance and retired.
// Existing reservations on the unit are left untouched; staff resolve them
// from the verification board.
func (s *InventoryService) SetUnitStatus(ctx context.Context, id int64, status string) error {
	if err := s.repo.SetUnitStatus(ctx, id, status); err != nil {
		return err
	}

	if s.eventBus != nil {
		payload := events.UnitEventPayload{UnitID: id, Status: status}
		if err := s.eventBus.PublishJSON(events.EventUnitStatusChanged, payload); err != nil {
			s.logger.Error().Err(err).Int64("unit_id", id).Msg("publish event error")
		}
	}

	return nil
}

// DeleteUnit removes a unit with its notes and reservations, and reports how
// many units the product still has.
func (s *InventoryService) DeleteUnit(ctx context.Context, id int64) (int, error) {
	remaining, err := s.repo.DeleteUnit(ctx, id)
	if err != nil {
		return 0, err
	}

	s.logger.Info().Int64("unit_id", id).Int("remaining", remaining).Msg("unit deleted")
	return remaining, nil
}

func (s *InventoryService) AddNote(ctx context.Context, unitID int64, text, author string) (*models.UnitNote, error) {
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

func (s *InventoryService) ListNotes(ctx context.Context, unitID int64) ([]*models.UnitNote, error) {
	return s.repo.GetUnitNotes(ctx, unitID)
}

func (s *InventoryService) DeleteNote(ctx context.Context, noteID int64) error {
	return s.repo.DeleteUnitNote(ctx, noteID)
}

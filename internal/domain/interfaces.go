package domain

import (
	"context"
	"time"

	"reserva/internal/models"
)

type Repository interface {
	// Products (read-only feed from the catalog).
	GetProduct(ctx context.Context, id int64) (*models.Product, error)
	GetActiveProducts(ctx context.Context) ([]*models.Product, error)

	// Unit registry.
	CreateUnit(ctx context.Context, unit *models.Unit) error
	GetUnit(ctx context.Context, id int64) (*models.Unit, error)
	GetUnitsByProduct(ctx context.Context, productID int64) ([]*models.Unit, error)
	GetActiveUnits(ctx context.Context, productID int64, campus string) ([]*models.Unit, error)
	CountActiveUnits(ctx context.Context, productID int64, campus string) (int, error)
	SetUnitStatus(ctx context.Context, id int64, status string) error
	DeleteUnit(ctx context.Context, id int64) (remaining int, err error)

	// Unit notes.
	AddUnitNote(ctx context.Context, note *models.UnitNote) error
	GetUnitNotes(ctx context.Context, unitID int64) ([]*models.UnitNote, error)
	DeleteUnitNote(ctx context.Context, noteID int64) error

	// Reservations.
	CreateReservationWithLock(ctx context.Context, campus string, reservation *models.Reservation) error
	GetReservation(ctx context.Context, id int64) (*models.Reservation, error)
	GetReservationsByStatus(ctx context.Context, status string) ([]*models.Reservation, error)
	GetReservationsByRange(ctx context.Context, startAt, endAt time.Time) ([]*models.Reservation, error)
	GetUnitReservations(ctx context.Context, unitID int64) ([]*models.Reservation, error)
	UpdateReservationStatus(ctx context.Context, id int64, status string) error

	// Availability.
	IsUnitFree(ctx context.Context, unitID int64, startAt, endAt time.Time) (bool, error)
	PickFreeUnit(ctx context.Context, productID int64, campus string, startAt, endAt time.Time) (*models.Unit, error)
	CountFreeUnits(ctx context.Context, productID int64, campus string, startAt, endAt time.Time) (int, error)
}

// IdempotencyRecord maps a caller-supplied key to the reservation the key
// originally created, so a retried create returns the same result.
type IdempotencyRecord struct {
	Key           string `json:"key"`
	ReservationID int64  `json:"reservation_id"`
}

type IdempotencyRepository interface {
	Get(ctx context.Context, key string) (*IdempotencyRecord, error)
	Set(ctx context.Context, record *IdempotencyRecord) error
	CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

type ReservationService interface {
	CreateReservation(ctx context.Context, req *CreateReservationRequest) (*models.Reservation, error)
	CompleteReservation(ctx context.Context, id int64) error
	CancelReservation(ctx context.Context, id int64) error
	GetReservation(ctx context.Context, id int64) (*models.Reservation, error)
	GetReservationsByStatus(ctx context.Context, status string) ([]*models.Reservation, error)
}

// CreateReservationRequest carries everything the scheduler needs to admit
// a booking. EndAt is derived from StartAt + DurationMinutes; callers never
// supply it directly.
type CreateReservationRequest struct {
	ProductID       int64
	Campus          string
	RequesterName   string
	RequesterCode   string
	Purpose         string
	StartAt         time.Time
	DurationMinutes int
	IdempotencyKey  string
}

type AvailabilityService interface {
	ProductAvailability(ctx context.Context, productID int64, campus string, window *Window) (*models.ProductAvailability, error)
	IsUnitFree(ctx context.Context, unitID int64, startAt, endAt time.Time) (bool, error)
	PickFreeUnit(ctx context.Context, productID int64, campus string, startAt, endAt time.Time) (*models.Unit, error)
}

// Window is an optional half-open interval for availability queries.
type Window struct {
	StartAt time.Time
	EndAt   time.Time
}

type VerificationService interface {
	Buckets(ctx context.Context) (*models.VerificationBuckets, error)
	Cached() *models.VerificationBuckets
	RecordUnitNote(ctx context.Context, unitID int64, text, author string) (*models.UnitNote, error)
	CompleteReservation(ctx context.Context, reservationID int64) error
}

type InventoryService interface {
	RegisterUnit(ctx context.Context, unit *models.Unit) error
	GetUnit(ctx context.Context, id int64) (*models.Unit, error)
	ListUnits(ctx context.Context, productID int64) ([]*models.Unit, error)
	ListActiveUnits(ctx context.Context, productID int64, campus string) ([]*models.Unit, error)
	SetUnitStatus(ctx context.Context, id int64, status string) error
	DeleteUnit(ctx context.Context, id int64) (remaining int, err error)
	AddNote(ctx context.Context, unitID int64, text, author string) (*models.UnitNote, error)
	ListNotes(ctx context.Context, unitID int64) ([]*models.UnitNote, error)
	DeleteNote(ctx context.Context, noteID int64) error
}

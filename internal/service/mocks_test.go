package service

import (
	"context"
	"time"

	"reserva/internal/domain"
	"reserva/internal/models"

	"github.com/stretchr/testify/mock"
)

type mockRepo struct {
	mock.Mock
}

func (m *mockRepo) GetProduct(ctx context.Context, id int64) (*models.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}
func (m *mockRepo) GetActiveProducts(ctx context.Context) ([]*models.Product, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Product), args.Error(1)
}
func (m *mockRepo) CreateUnit(ctx context.Context, u *models.Unit) error {
	return m.Called(ctx, u).Error(0)
}
func (m *mockRepo) GetUnit(ctx context.Context, id int64) (*models.Unit, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Unit), args.Error(1)
}
func (m *mockRepo) GetUnitsByProduct(ctx context.Context, pid int64) ([]*models.Unit, error) {
	args := m.Called(ctx, pid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Unit), args.Error(1)
}
func (m *mockRepo) GetActiveUnits(ctx context.Context, pid int64, campus string) ([]*models.Unit, error) {
	args := m.Called(ctx, pid, campus)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Unit), args.Error(1)
}
func (m *mockRepo) CountActiveUnits(ctx context.Context, pid int64, campus string) (int, error) {
	args := m.Called(ctx, pid, campus)
	return args.Int(0), args.Error(1)
}
func (m *mockRepo) SetUnitStatus(ctx context.Context, id int64, status string) error {
	return m.Called(ctx, id, status).Error(0)
}
func (m *mockRepo) DeleteUnit(ctx context.Context, id int64) (int, error) {
	args := m.Called(ctx, id)
	return args.Int(0), args.Error(1)
}
func (m *mockRepo) AddUnitNote(ctx context.Context, n *models.UnitNote) error {
	return m.Called(ctx, n).Error(0)
}
func (m *mockRepo) GetUnitNotes(ctx context.Context, uid int64) ([]*models.UnitNote, error) {
	args := m.Called(ctx, uid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.UnitNote), args.Error(1)
}
func (m *mockRepo) DeleteUnitNote(ctx context.Context, nid int64) error {
	return m.Called(ctx, nid).Error(0)
}
func (m *mockRepo) CreateReservationWithLock(ctx context.Context, campus string, r *models.Reservation) error {
	return m.Called(ctx, campus, r).Error(0)
}
func (m *mockRepo) GetReservation(ctx context.Context, id int64) (*models.Reservation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Reservation), args.Error(1)
}
func (m *mockRepo) GetReservationsByStatus(ctx context.Context, status string) ([]*models.Reservation, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Reservation), args.Error(1)
}
func (m *mockRepo) GetReservationsByRange(ctx context.Context, s, e time.Time) ([]*models.Reservation, error) {
	args := m.Called(ctx, s, e)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Reservation), args.Error(1)
}
func (m *mockRepo) GetUnitReservations(ctx context.Context, uid int64) ([]*models.Reservation, error) {
	args := m.Called(ctx, uid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Reservation), args.Error(1)
}
func (m *mockRepo) UpdateReservationStatus(ctx context.Context, id int64, status string) error {
	return m.Called(ctx, id, status).Error(0)
}
func (m *mockRepo) IsUnitFree(ctx context.Context, uid int64, s, e time.Time) (bool, error) {
	args := m.Called(ctx, uid, s, e)
	return args.Bool(0), args.Error(1)
}
func (m *mockRepo) PickFreeUnit(ctx context.Context, pid int64, campus string, s, e time.Time) (*models.Unit, error) {
	args := m.Called(ctx, pid, campus, s, e)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Unit), args.Error(1)
}
func (m *mockRepo) CountFreeUnits(ctx context.Context, pid int64, campus string, s, e time.Time) (int, error) {
	args := m.Called(ctx, pid, campus, s, e)
	return args.Int(0), args.Error(1)
}

type mockIdempotency struct {
	mock.Mock
}

func (m *mockIdempotency) Get(ctx context.Context, key string) (*domain.IdempotencyRecord, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.IdempotencyRecord), args.Error(1)
}
func (m *mockIdempotency) Set(ctx context.Context, r *domain.IdempotencyRecord) error {
	return m.Called(ctx, r).Error(0)
}
func (m *mockIdempotency) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	args := m.Called(ctx, key, limit, window)
	return args.Bool(0), args.Error(1)
}

type mockEventBus struct {
	mock.Mock
}

func (m *mockEventBus) PublishJSON(et string, p interface{}) error { return m.Called(et, p).Error(0) }

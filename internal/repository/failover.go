package repository

import (
	"context"
	"sync/atomic"
	"time"

	"reserva/internal/domain"

	"github.com/rs/zerolog"
)

// FailoverIdempotencyRepository serves from the primary (Redis) while it is
// healthy and degrades to the in-memory fallback when it is not, probing
// the primary again after a minute.
type FailoverIdempotencyRepository struct {
	primary   domain.IdempotencyRepository
	fallback  domain.IdempotencyRepository
	logger    *zerolog.Logger
	isDown    atomic.Bool
	lastCheck time.Time
}

func NewFailoverIdempotencyRepository(primary, fallback domain.IdempotencyRepository, logger *zerolog.Logger) *FailoverIdempotencyRepository {
	return &FailoverIdempotencyRepository{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

func (r *FailoverIdempotencyRepository) Get(ctx context.Context, key string) (*domain.IdempotencyRecord, error) {
	if !r.isDown.Load() {
		record, err := r.primary.Get(ctx, key)
		if err == nil {
			return record, nil
		}
		r.logger.Error().Err(err).Msg("Primary idempotency repository failed, falling back to memory")
		r.isDown.Store(true)
		r.lastCheck = time.Now()
	}

	// Try to recover after 1 minute
	if r.isDown.Load() && time.Since(r.lastCheck) > time.Minute {
		record, err := r.primary.Get(ctx, key)
		if err == nil {
			r.isDown.Store(false)
			return record, nil
		}
		r.lastCheck = time.Now()
	}

	return r.fallback.Get(ctx, key)
}

func (r *FailoverIdempotencyRepository) Set(ctx context.Context, record *domain.IdempotencyRecord) error {
	if !r.isDown.Load() {
		err := r.primary.Set(ctx, record)
		if err == nil {
			return nil
		}
		r.logger.Error().Err(err).Msg("Primary idempotency repository failed, falling back to memory")
		r.isDown.Store(true)
		r.lastCheck = time.Now()
	}

	return r.fallback.Set(ctx, record)
}

func (r *FailoverIdempotencyRepository) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	if !r.isDown.Load() {
		allowed, err := r.primary.CheckRateLimit(ctx, key, limit, window)
		if err == nil {
			return allowed, nil
		}
		r.logger.Error().Err(err).Msg("Primary idempotency repository failed, falling back to memory")
		r.isDown.Store(true)
		r.lastCheck = time.Now()
	}

	return r.fallback.CheckRateLimit(ctx, key, limit, window)
}

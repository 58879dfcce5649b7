package repository

import (
	"context"
	"sync"
	"time"

	"reserva/internal/domain"
)

type MemoryIdempotencyRepository struct {
	records    sync.Map
	rateLimits sync.Map
	ttl        time.Duration
}

func NewMemoryIdempotencyRepository(ttl time.Duration) *MemoryIdempotencyRepository {
	return &MemoryIdempotencyRepository{
		ttl: ttl,
	}
}

type memoryRecord struct {
	record    *domain.IdempotencyRecord
	expiresAt time.Time
}

func (r *MemoryIdempotencyRepository) Get(ctx context.Context, key string) (*domain.IdempotencyRecord, error) {
	val, ok := r.records.Load(key)
	if !ok {
		return nil, nil
	}
	entry := val.(*memoryRecord)
	if r.ttl > 0 && time.Now().After(entry.expiresAt) {
		r.records.Delete(key)
		return nil, nil
	}
	return entry.record, nil
}

func (r *MemoryIdempotencyRepository) Set(ctx context.Context, record *domain.IdempotencyRecord) error {
	r.records.Store(record.Key, &memoryRecord{
		record:    record,
		expiresAt: time.Now().Add(r.ttl),
	})
	return nil
}

type rateLimitEntry struct {
	count     int
	expiresAt time.Time
}

func (r *MemoryIdempotencyRepository) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	now := time.Now()
	val, ok := r.rateLimits.Load(key)

	var entry *rateLimitEntry
	if !ok {
		entry = &rateLimitEntry{
			count:     1,
			expiresAt: now.Add(window),
		}
	} else {
		entry = val.(*rateLimitEntry)
		if now.After(entry.expiresAt) {
			entry.count = 1
			entry.expiresAt = now.Add(window)
		} else {
			entry.count++
		}
	}

	r.rateLimits.Store(key, entry)
	return entry.count <= limit, nil
}

package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/easyfreight/quote-engine/internal/model"
)

// CachedStore wraps a primary Store (PostgreSQL) with a Redis read-through
// cache for booking lookups. Bookings are immutable once created, so there
// is no invalidation path beyond TTL expiry; search logs are write-only and
// pass straight through.
type CachedStore struct {
	primary Store
	rdb     *redis.Client
	ttl     time.Duration
}

// NewCachedStore creates a cached wrapper around a primary store.
func NewCachedStore(primary Store, rdb *redis.Client, ttl time.Duration) *CachedStore {
	return &CachedStore{
		primary: primary,
		rdb:     rdb,
		ttl:     ttl,
	}
}

func (s *CachedStore) CreateBooking(ctx context.Context, b *model.Booking) error {
	if err := s.primary.CreateBooking(ctx, b); err != nil {
		return err
	}
	s.cacheBooking(ctx, b)
	return nil
}

func (s *CachedStore) GetBooking(ctx context.Context, id string) (*model.Booking, error) {
	data, err := s.rdb.Get(ctx, bookingKey(id)).Bytes()
	if err == nil {
		var b model.Booking
		if json.Unmarshal(data, &b) == nil {
			return &b, nil
		}
	}

	b, err := s.primary.GetBooking(ctx, id)
	if err != nil {
		return nil, err
	}

	s.cacheBooking(ctx, b)
	return b, nil
}

func (s *CachedStore) GetBookingByNumber(ctx context.Context, number string) (*model.Booking, error) {
	// Number lookups go through a number→ID mapping so each booking is
	// cached once.
	id, err := s.rdb.Get(ctx, numberKey(number)).Result()
	if err == nil {
		return s.GetBooking(ctx, id)
	}

	b, err := s.primary.GetBookingByNumber(ctx, number)
	if err != nil {
		return nil, err
	}

	s.cacheBooking(ctx, b)
	return b, nil
}

// ListBookingsByUser is not cached: it is an infrequent account view and
// caching it would complicate the create path for no measurable gain.
func (s *CachedStore) ListBookingsByUser(ctx context.Context, userID string) ([]model.Booking, error) {
	return s.primary.ListBookingsByUser(ctx, userID)
}

func (s *CachedStore) InsertSearchLog(ctx context.Context, l *model.SearchLog) error {
	return s.primary.InsertSearchLog(ctx, l)
}

func (s *CachedStore) ListSearchLogsByUser(ctx context.Context, userID string) ([]model.SearchLog, error) {
	return s.primary.ListSearchLogsByUser(ctx, userID)
}

func (s *CachedStore) cacheBooking(ctx context.Context, b *model.Booking) {
	if data, err := json.Marshal(b); err == nil {
		s.rdb.Set(ctx, bookingKey(b.ID), data, s.ttl)
		s.rdb.Set(ctx, numberKey(b.BookingNumber), b.ID, s.ttl)
	}
}

func bookingKey(id string) string     { return fmt.Sprintf("booking:%s", id) }
func numberKey(number string) string  { return fmt.Sprintf("booking-number:%s", number) }

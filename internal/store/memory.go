package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/easyfreight/quote-engine/internal/model"
)

// MemoryStore implements Store with in-memory slices and maps. Used for
// testing and development. Not suitable for production (no persistence).
type MemoryStore struct {
	mu       sync.RWMutex
	bookings map[string]*model.Booking
	byNumber map[string]string // booking number -> id
	searches []model.SearchLog
}

// NewMemoryStore creates a new in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		bookings: make(map[string]*model.Booking),
		byNumber: make(map[string]string),
	}
}

func (s *MemoryStore) CreateBooking(_ context.Context, b *model.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byNumber[b.BookingNumber]; exists {
		return fmt.Errorf("booking number %s already exists", b.BookingNumber)
	}
	if _, exists := s.bookings[b.ID]; exists {
		return fmt.Errorf("booking %s already exists", b.ID)
	}

	// Store a copy to avoid external mutation.
	cp := *b
	s.bookings[b.ID] = &cp
	s.byNumber[b.BookingNumber] = b.ID
	return nil
}

func (s *MemoryStore) GetBooking(_ context.Context, id string) (*model.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.bookings[id]
	if !ok {
		return nil, fmt.Errorf("booking %s: %w", id, ErrNotFound)
	}
	cp := *b
	return &cp, nil
}

func (s *MemoryStore) GetBookingByNumber(_ context.Context, number string) (*model.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byNumber[number]
	if !ok {
		return nil, fmt.Errorf("booking number %s: %w", number, ErrNotFound)
	}
	cp := *s.bookings[id]
	return &cp, nil
}

func (s *MemoryStore) ListBookingsByUser(_ context.Context, userID string) ([]model.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []model.Booking
	for _, b := range s.bookings {
		if b.UserID == userID {
			result = append(result, *b)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (s *MemoryStore) InsertSearchLog(_ context.Context, l *model.SearchLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.searches = append(s.searches, *l)
	return nil
}

func (s *MemoryStore) ListSearchLogsByUser(_ context.Context, userID string) ([]model.SearchLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []model.SearchLog
	for _, l := range s.searches {
		if l.UserID == userID {
			result = append(result, l)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

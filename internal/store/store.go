// Package store defines the persistence interface for accepted quotes.
// Implementations include PostgreSQL (source of truth), Redis (read-through
// cache), and in-memory (for testing).
package store

import (
	"context"
	"errors"

	"github.com/easyfreight/quote-engine/internal/model"
)

// ErrNotFound is returned when a booking does not exist.
var ErrNotFound = errors.New("store: not found")

// Store is the persistence interface. PostgreSQL is the source of truth;
// Redis provides a read-through cache layer. The quote computation itself
// never touches the store — only accepted quotes and search logs do.
type Store interface {
	// --- Bookings ---

	// CreateBooking persists an accepted quote. Booking numbers are unique;
	// a collision is an error.
	CreateBooking(ctx context.Context, b *model.Booking) error

	// GetBooking retrieves a booking by its row ID.
	GetBooking(ctx context.Context, id string) (*model.Booking, error)

	// GetBookingByNumber retrieves a booking by its human-facing number.
	GetBookingByNumber(ctx context.Context, number string) (*model.Booking, error)

	// ListBookingsByUser returns a user's bookings, newest first.
	ListBookingsByUser(ctx context.Context, userID string) ([]model.Booking, error)

	// --- Search logs ---

	// InsertSearchLog appends a quote-request record. Best effort at the
	// call site: callers log failures but never fail the quote.
	InsertSearchLog(ctx context.Context, l *model.SearchLog) error

	// ListSearchLogsByUser returns a user's search history, newest first.
	ListSearchLogsByUser(ctx context.Context, userID string) ([]model.SearchLog, error)
}

package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/easyfreight/quote-engine/internal/model"
)

// PostgresStore implements Store using PostgreSQL as the source of truth.
// Prices are stored as NUMERIC for exact decimal precision.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgreSQL-backed store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const bookingColumns = `id, booking_number, user_id, selected_mode,
	price_eur::TEXT, ftl_price_eur::TEXT, distance_km,
	pickup_date, transit_time_days, co2_grams,
	pickup_country, pickup_postal, delivery_country, delivery_postal,
	goods, created_at`

func (s *PostgresStore) CreateBooking(ctx context.Context, b *model.Booking) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO bookings (id, booking_number, user_id, selected_mode,
		    price_eur, ftl_price_eur, distance_km,
		    pickup_date, transit_time_days, co2_grams,
		    pickup_country, pickup_postal, delivery_country, delivery_postal,
		    goods, created_at)
		 VALUES ($1, $2, $3, $4, $5::NUMERIC, $6::NUMERIC, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`,
		b.ID, b.BookingNumber, b.UserID, b.SelectedMode,
		b.PriceEUR.String(), b.FTLPriceEUR.String(), b.DistanceKm,
		b.PickupDate, b.TransitTimeDays, b.CO2Grams,
		b.PickupCountry, b.PickupPostal, b.DeliveryCountry, b.DeliveryPostal,
		b.Goods, b.CreatedAt,
	)
	return err
}

func (s *PostgresStore) GetBooking(ctx context.Context, id string) (*model.Booking, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, id)
	b, err := scanBooking(row)
	if err != nil {
		return nil, fmt.Errorf("get booking %s: %w", id, mapNoRows(err))
	}
	return b, nil
}

func (s *PostgresStore) GetBookingByNumber(ctx context.Context, number string) (*model.Booking, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE booking_number = $1`, number)
	b, err := scanBooking(row)
	if err != nil {
		return nil, fmt.Errorf("get booking by number %s: %w", number, mapNoRows(err))
	}
	return b, nil
}

func (s *PostgresStore) ListBookingsByUser(ctx context.Context, userID string) ([]model.Booking, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+bookingColumns+` FROM bookings
		 WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bookings []model.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, *b)
	}
	return bookings, rows.Err()
}

func (s *PostgresStore) InsertSearchLog(ctx context.Context, l *model.SearchLog) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO search_logs (id, user_id, from_country, from_postal,
		    to_country, to_postal, weight_kg, options, selected_option, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		l.ID, l.UserID, l.FromCountry, l.FromPostal,
		l.ToCountry, l.ToPostal, l.WeightKg, l.Options, l.SelectedOption, l.CreatedAt,
	)
	return err
}

func (s *PostgresStore) ListSearchLogsByUser(ctx context.Context, userID string) ([]model.SearchLog, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, user_id, from_country, from_postal, to_country, to_postal,
		        weight_kg, options, selected_option, created_at
		 FROM search_logs WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []model.SearchLog
	for rows.Next() {
		var l model.SearchLog
		if err := rows.Scan(&l.ID, &l.UserID, &l.FromCountry, &l.FromPostal,
			&l.ToCountry, &l.ToPostal, &l.WeightKg, &l.Options,
			&l.SelectedOption, &l.CreatedAt); err != nil {
			return nil, err
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}

// scanner covers both pgx.Row and pgx.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanBooking(row scanner) (*model.Booking, error) {
	var b model.Booking
	var priceS, ftlS string

	if err := row.Scan(&b.ID, &b.BookingNumber, &b.UserID, &b.SelectedMode,
		&priceS, &ftlS, &b.DistanceKm,
		&b.PickupDate, &b.TransitTimeDays, &b.CO2Grams,
		&b.PickupCountry, &b.PickupPostal, &b.DeliveryCountry, &b.DeliveryPostal,
		&b.Goods, &b.CreatedAt); err != nil {
		return nil, err
	}

	b.PriceEUR, _ = decimal.NewFromString(priceS)
	b.FTLPriceEUR, _ = decimal.NewFromString(ftlS)
	return &b, nil
}

func mapNoRows(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

// Package booking turns accepted quotes into persisted bookings and serves
// booking lookups. Bookings are immutable once created; cancellation and
// amendment live upstream.
package booking

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/easyfreight/quote-engine/internal/metrics"
	"github.com/easyfreight/quote-engine/internal/model"
	"github.com/easyfreight/quote-engine/internal/quote"
	"github.com/easyfreight/quote-engine/internal/store"
)

// CreateRequest is the payload for accepting a quote. The price fields are
// echoed back from the quote the customer accepted; the engine does not
// re-price at booking time.
type CreateRequest struct {
	UserID          string          `json:"user_id"`
	SelectedMode    string          `json:"selected_mode"`
	PriceEUR        decimal.Decimal `json:"price_eur"`
	FTLPriceEUR     decimal.Decimal `json:"ftl_price_eur"`
	DistanceKm      int             `json:"distance_km"`
	PickupDate      string          `json:"pickup_date"` // YYYY-MM-DD
	TransitTimeDays string          `json:"transit_time_days"`
	CO2Grams        int64           `json:"co2_emissions_grams"`
	PickupCountry   string          `json:"pickup_country"`
	PickupPostal    string          `json:"pickup_postal"`
	DeliveryCountry string          `json:"delivery_country"`
	DeliveryPostal  string          `json:"delivery_postal"`
	Goods           json.RawMessage `json:"goods,omitempty"`
}

func (r CreateRequest) validate() string {
	switch {
	case r.UserID == "":
		return "user_id is required"
	case r.SelectedMode == "":
		return "selected_mode is required"
	case !r.PriceEUR.IsPositive():
		return "price_eur must be positive"
	case len(r.PickupCountry) != 2 || len(r.DeliveryCountry) != 2:
		return "country codes must be two letters"
	}
	if _, err := time.Parse("2006-01-02", r.PickupDate); err != nil {
		return "pickup_date must be YYYY-MM-DD"
	}
	return ""
}

// Service persists bookings and announces them on the event hub.
type Service struct {
	store store.Store
	wsHub *quote.EventHub // optional

	now func() time.Time
}

// NewService creates a booking service. Pass nil for hub to disable
// broadcasting.
func NewService(st store.Store, hub *quote.EventHub) *Service {
	return &Service{
		store: st,
		wsHub: hub,
		now:   time.Now,
	}
}

// Create persists a new booking with a fresh booking number.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*model.Booking, error) {
	number, err := NewNumber()
	if err != nil {
		return nil, err
	}

	b := &model.Booking{
		ID:              uuid.New().String(),
		BookingNumber:   number,
		UserID:          req.UserID,
		SelectedMode:    req.SelectedMode,
		PriceEUR:        req.PriceEUR,
		FTLPriceEUR:     req.FTLPriceEUR,
		DistanceKm:      req.DistanceKm,
		PickupDate:      req.PickupDate,
		TransitTimeDays: req.TransitTimeDays,
		CO2Grams:        req.CO2Grams,
		PickupCountry:   req.PickupCountry,
		PickupPostal:    req.PickupPostal,
		DeliveryCountry: req.DeliveryCountry,
		DeliveryPostal:  req.DeliveryPostal,
		Goods:           req.Goods,
		CreatedAt:       s.now().UTC(),
	}
	if err := s.store.CreateBooking(ctx, b); err != nil {
		return nil, err
	}

	metrics.BookingsTotal.WithLabelValues(b.SelectedMode).Inc()
	slog.Info("booking created",
		"booking_number", b.BookingNumber,
		"user", b.UserID,
		"mode", b.SelectedMode,
		"lane", b.PickupCountry+"-"+b.DeliveryCountry,
		"price_eur", b.PriceEUR.String(),
	)

	if s.wsHub != nil {
		s.wsHub.Broadcast(quote.Event{
			Type:          "booking_created",
			UserID:        b.UserID,
			Lane:          b.PickupCountry + "-" + b.DeliveryCountry,
			Mode:          b.SelectedMode,
			PriceEUR:      b.PriceEUR.String(),
			BookingNumber: b.BookingNumber,
		})
	}
	return b, nil
}

// --- HTTP handlers ---

// HandleCreate handles POST /api/v1/bookings.
func (s *Service) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if msg := req.validate(); msg != "" {
		writeError(w, msg, http.StatusBadRequest)
		return
	}

	b, err := s.Create(r.Context(), req)
	if err != nil {
		slog.Error("booking create failed", "err", err)
		writeError(w, "failed to create booking", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(b)
}

// HandleGet handles GET /api/v1/bookings/{bookingID}.
func (s *Service) HandleGet(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "bookingID")

	b, err := s.store.GetBooking(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, "booking not found", http.StatusNotFound)
			return
		}
		writeError(w, "failed to load booking", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(b)
}

// HandleGetByNumber handles GET /api/v1/bookings/number/{number}.
func (s *Service) HandleGetByNumber(w http.ResponseWriter, r *http.Request) {
	number := chi.URLParam(r, "number")
	if !ValidNumber(number) {
		writeError(w, "invalid booking number", http.StatusBadRequest)
		return
	}

	b, err := s.store.GetBookingByNumber(r.Context(), number)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, "booking not found", http.StatusNotFound)
			return
		}
		writeError(w, "failed to load booking", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(b)
}

// HandleListByUser handles GET /api/v1/users/{userID}/bookings.
func (s *Service) HandleListByUser(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	bookings, err := s.store.ListBookingsByUser(r.Context(), userID)
	if err != nil {
		writeError(w, "failed to load bookings", http.StatusInternalServerError)
		return
	}
	if bookings == nil {
		bookings = []model.Booking{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(bookings)
}

func writeError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

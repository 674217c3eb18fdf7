// Package model defines the core domain types shared across the quote engine.
// All monetary values use shopspring/decimal — never float64 for money.
package model

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// Status classifies the outcome of one mode evaluation. Statuses are values,
// not errors: a rejected mode is a normal result, and one mode's rejection
// never aborts the evaluation of the others.
type Status string

const (
	StatusSuccess          Status = "success"
	StatusNotAvailable     Status = "not_available"
	StatusWeightNotAllowed Status = "weight_not_allowed"
	StatusWeightExceedsMax Status = "weight_exceeds_max"
	StatusBadConfig        Status = "bad_config"
)

// Coordinate is a WGS84 point in decimal degrees.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// QuoteRequest is the validated input for one multi-mode quote computation.
// Postal prefixes are the leading two digits of the postal code.
type QuoteRequest struct {
	UserID             string          `json:"user_id"`
	PickupCoordinate   Coordinate      `json:"pickup_coordinate"`
	DeliveryCoordinate Coordinate      `json:"delivery_coordinate"`
	PickupCountry      string          `json:"pickup_country"`
	PickupPostal       string          `json:"pickup_postal_prefix"`
	DeliveryCountry    string          `json:"delivery_country"`
	DeliveryPostal     string          `json:"delivery_postal_prefix"`
	ChargeableWeightKg float64         `json:"chargeable_weight_kg"`
	Goods              json.RawMessage `json:"goods,omitempty"`
}

// TransitTime is the estimated door-to-door range in days.
type TransitTime struct {
	MinDays int `json:"min_days"`
	MaxDays int `json:"max_days"`
}

// String renders the range the way bookings store it, e.g. "3-4".
func (t TransitTime) String() string {
	return strconv.Itoa(t.MinDays) + "-" + strconv.Itoa(t.MaxDays)
}

// QuoteResult is the outcome of evaluating one transport mode for one
// request. Computed fresh per request and never persisted by the core;
// accepted quotes become Bookings via the booking service.
type QuoteResult struct {
	Mode               string          `json:"mode"`
	Description        string          `json:"description,omitempty"`
	Available          bool            `json:"available"`
	Status             Status          `json:"status"`
	TotalPriceEUR      decimal.Decimal `json:"total_price_eur"`
	FTLPriceEUR        decimal.Decimal `json:"ftl_price_eur"`
	DistanceKm         int             `json:"distance_km"`
	TransitTime        TransitTime     `json:"transit_time_days"`
	EarliestPickupDate string          `json:"earliest_pickup_date"` // YYYY-MM-DD
	CO2Grams           int64           `json:"co2_emissions_grams"`
}

// Booking is a persisted, accepted quote. Once created it is never modified;
// cancellation is an upstream concern.
type Booking struct {
	ID              string          `json:"id" db:"id"`
	BookingNumber   string          `json:"booking_number" db:"booking_number"`
	UserID          string          `json:"user_id" db:"user_id"`
	SelectedMode    string          `json:"selected_mode" db:"selected_mode"`
	PriceEUR        decimal.Decimal `json:"price_eur" db:"price_eur"`
	FTLPriceEUR     decimal.Decimal `json:"ftl_price_eur" db:"ftl_price_eur"`
	DistanceKm      int             `json:"distance_km" db:"distance_km"`
	PickupDate      string          `json:"pickup_date" db:"pickup_date"` // YYYY-MM-DD
	TransitTimeDays string          `json:"transit_time_days" db:"transit_time_days"`
	CO2Grams        int64           `json:"co2_emissions_grams" db:"co2_grams"`
	PickupCountry   string          `json:"pickup_country" db:"pickup_country"`
	PickupPostal    string          `json:"pickup_postal" db:"pickup_postal"`
	DeliveryCountry string          `json:"delivery_country" db:"delivery_country"`
	DeliveryPostal  string          `json:"delivery_postal" db:"delivery_postal"`
	Goods           json.RawMessage `json:"goods,omitempty" db:"goods"`
	CreatedAt       time.Time       `json:"created_at" db:"created_at"`
}

// SearchLog records one quote request and the options it produced, for
// conversion analysis. Written best-effort; a failed insert never fails
// the quote.
type SearchLog struct {
	ID             string          `json:"id" db:"id"`
	UserID         string          `json:"user_id" db:"user_id"`
	FromCountry    string          `json:"from_country" db:"from_country"`
	FromPostal     string          `json:"from_postal" db:"from_postal"`
	ToCountry      string          `json:"to_country" db:"to_country"`
	ToPostal       string          `json:"to_postal" db:"to_postal"`
	WeightKg       float64         `json:"weight_kg" db:"weight_kg"`
	Options        json.RawMessage `json:"options" db:"options"`
	SelectedOption string          `json:"selected_option" db:"selected_option"`
	CreatedAt      time.Time       `json:"created_at" db:"created_at"`
}

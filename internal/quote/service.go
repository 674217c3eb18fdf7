// Package quote orchestrates one freight quote across all configured
// transport modes: zone eligibility, lane distance, FTL reference price,
// curve evaluation, transit time, earliest pickup, and CO2 estimate.
package quote

import (
	"encoding/json"
	"log/slog"
	"math"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/easyfreight/quote-engine/internal/calendar"
	"github.com/easyfreight/quote-engine/internal/config"
	"github.com/easyfreight/quote-engine/internal/curve"
	"github.com/easyfreight/quote-engine/internal/geo"
	"github.com/easyfreight/quote-engine/internal/metrics"
	"github.com/easyfreight/quote-engine/internal/model"
	"github.com/easyfreight/quote-engine/internal/store"
	"github.com/easyfreight/quote-engine/internal/zone"
)

// Service computes multi-mode quotes. The quote computation itself is pure;
// the store is only touched for best-effort search logging, and the hub is
// optional.
type Service struct {
	provider config.Provider
	store    store.Store
	wsHub    *EventHub // optional, nil disables broadcasting

	// now is injectable so quotes are reproducible in tests and replays.
	now func() time.Time
}

// NewService creates a new quote service. Pass nil for hub if WebSocket
// broadcasting is not needed.
func NewService(provider config.Provider, st store.Store, hub *EventHub) *Service {
	return &Service{
		provider: provider,
		store:    st,
		wsHub:    hub,
		now:      time.Now,
	}
}

// QuoteAllModes evaluates every configured mode for the request and returns
// one result per mode. Modes are independent: a bad tariff in one mode
// never aborts the others. All evaluations share a single tariff snapshot
// taken up front, so a concurrent tariff publish cannot produce a quote
// that mixes two tariff versions.
func (s *Service) QuoteAllModes(req model.QuoteRequest) map[string]model.QuoteResult {
	snapshot := s.provider.Modes()
	now := s.now().UTC()

	names := snapshot.ModeNames()
	results := make([]model.QuoteResult, len(names))

	var wg sync.WaitGroup
	for i, name := range names {
		cfg, _ := snapshot.Mode(name)
		wg.Add(1)
		go func(i int, name string, cfg config.ModeConfig) {
			defer wg.Done()
			results[i] = s.quoteMode(name, cfg, req, now)
		}(i, name, cfg)
	}
	wg.Wait()

	out := make(map[string]model.QuoteResult, len(results))
	for _, r := range results {
		metrics.QuotesTotal.WithLabelValues(r.Mode, string(r.Status)).Inc()
		out[r.Mode] = r
	}
	return out
}

// quoteMode runs the full evaluation chain for one transport mode.
func (s *Service) quoteMode(name string, cfg config.ModeConfig, req model.QuoteRequest, now time.Time) model.QuoteResult {
	result := model.QuoteResult{
		Mode:        name,
		Description: cfg.Description,
	}

	// Eligibility is directional: pickup and delivery are checked
	// independently against the mode's zone map.
	if !zone.Allowed(req.PickupCountry, req.PickupPostal, cfg.AvailableZones) ||
		!zone.Allowed(req.DeliveryCountry, req.DeliveryPostal, cfg.AvailableZones) {
		result.Status = model.StatusNotAvailable
		return result
	}

	if req.ChargeableWeightKg < cfg.MinAllowedWeightKg || req.ChargeableWeightKg > cfg.MaxAllowedWeightKg {
		result.Status = model.StatusWeightNotAllowed
		return result
	}

	distKm, err := geo.DistanceKm(req.PickupCoordinate, req.DeliveryCoordinate)
	if err != nil {
		result.Status = model.StatusNotAvailable
		return result
	}
	distance := int(math.Round(distKm))
	result.DistanceKm = distance

	ftl := curve.FTLPrice(distance, cfg.KmPriceEUR, cfg.BalanceFactor(req.PickupCountry, req.DeliveryCountry))
	result.FTLPriceEUR = ftl

	total, status := curve.Evaluate(cfg.Calibration(), ftl, req.ChargeableWeightKg)
	result.Status = status
	if status != model.StatusSuccess {
		return result
	}

	result.Available = true
	result.TotalPriceEUR = total

	days := int(math.Round(float64(distance) / cfg.TransitSpeedKmpd))
	if days < 1 {
		days = 1
	}
	result.TransitTime = model.TransitTime{MinDays: days, MaxDays: days + 1}

	pickup := calendar.EarliestPickup(req.PickupCountry, cfg.CutoffHour, cfg.ExtraPickupDays, now)
	result.EarliestPickupDate = pickup.Format("2006-01-02")

	// Tonne-kilometre basis converted to grams.
	result.CO2Grams = int64(math.Round(float64(distance) * req.ChargeableWeightKg / 1000 * cfg.CO2PerTonKm * 1000))

	return result
}

// --- HTTP handlers ---

// HandleQuote handles POST /api/v1/quotes.
func (s *Service) HandleQuote(w http.ResponseWriter, r *http.Request) {
	var req model.QuoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if req.ChargeableWeightKg <= 0 {
		writeError(w, "chargeable_weight_kg must be positive", http.StatusBadRequest)
		return
	}
	if len(req.PickupCountry) != 2 || len(req.DeliveryCountry) != 2 {
		writeError(w, "country codes must be two letters", http.StatusBadRequest)
		return
	}

	start := time.Now()
	quotes := s.QuoteAllModes(req)
	metrics.QuoteDuration.Observe(time.Since(start).Seconds())

	s.logSearch(r, req, quotes)

	if s.wsHub != nil {
		for mode, q := range quotes {
			s.wsHub.Broadcast(Event{
				Type:     "quote_computed",
				UserID:   req.UserID,
				Lane:     req.PickupCountry + "-" + req.DeliveryCountry,
				Mode:     mode,
				Status:   string(q.Status),
				PriceEUR: q.TotalPriceEUR.String(),
			})
		}
	}

	slog.Info("quote computed",
		"user", req.UserID,
		"lane", req.PickupCountry+"-"+req.DeliveryCountry,
		"weight_kg", req.ChargeableWeightKg,
		"modes", len(quotes),
	)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(quotes)
}

// HandleListModes handles GET /api/v1/modes.
func (s *Service) HandleListModes(w http.ResponseWriter, _ *http.Request) {
	snapshot := s.provider.Modes()

	type modeInfo struct {
		Mode        string `json:"mode"`
		Description string `json:"description"`
	}
	modes := make([]modeInfo, 0, snapshot.Len())
	for _, name := range snapshot.ModeNames() {
		cfg, _ := snapshot.Mode(name)
		modes = append(modes, modeInfo{Mode: name, Description: cfg.Description})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(modes)
}

// HandleSearchHistory handles GET /api/v1/users/{userID}/searches.
func (s *Service) HandleSearchHistory(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	logs, err := s.store.ListSearchLogsByUser(r.Context(), userID)
	if err != nil {
		writeError(w, "failed to load search history", http.StatusInternalServerError)
		return
	}
	if logs == nil {
		logs = []model.SearchLog{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(logs)
}

// logSearch appends a search-log row. Best effort: a store failure is
// logged, never surfaced to the caller.
func (s *Service) logSearch(r *http.Request, req model.QuoteRequest, quotes map[string]model.QuoteResult) {
	options, err := json.Marshal(quotes)
	if err != nil {
		return
	}

	entry := &model.SearchLog{
		ID:          uuid.New().String(),
		UserID:      req.UserID,
		FromCountry: req.PickupCountry,
		FromPostal:  req.PickupPostal,
		ToCountry:   req.DeliveryCountry,
		ToPostal:    req.DeliveryPostal,
		WeightKg:    req.ChargeableWeightKg,
		Options:     options,
		CreatedAt:   s.now().UTC(),
	}
	if err := s.store.InsertSearchLog(r.Context(), entry); err != nil {
		slog.Warn("search log insert failed", "err", err)
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

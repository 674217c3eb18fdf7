package quote

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/easyfreight/quote-engine/internal/config"
	"github.com/easyfreight/quote-engine/internal/model"
	"github.com/easyfreight/quote-engine/internal/store"
)

// roadConfig is a realistic road tariff covering Sweden and Germany.
func roadConfig() config.ModeConfig {
	return config.ModeConfig{
		Description:        "Road freight",
		KmPriceEUR:         1.1,
		AvailableZones:     map[string][]string{"SE": {"00-99"}, "DE": {"00-99"}},
		BalanceFactors:     map[string]float64{"SE-DE": 0.95},
		MinAllowedWeightKg: 1,
		MaxAllowedWeightKg: 25160,
		P1:                 30, PriceP1: 50,
		P2: 1000, P2K: 0.16, P2M: 50,
		P3: 10000, P3K: 0.55, P3M: 20,
		DefaultBreakpoint: 20000,
		MaxWeightKg:       25160,
		TransitSpeedKmpd:  500,
		CutoffHour:        14,
		ExtraPickupDays:   0,
		CO2PerTonKm:       62,
	}
}

// fixedProvider serves a snapshot without load-time validation, so tests
// can feed broken tariffs straight to the orchestrator.
type fixedProvider struct {
	snap config.Snapshot
}

func (p fixedProvider) Modes() config.Snapshot { return p.snap }

func newTestService(t *testing.T, modes map[string]config.ModeConfig) (*Service, *store.MemoryStore) {
	t.Helper()
	st := store.NewMemoryStore()
	svc := NewService(fixedProvider{snap: config.NewSnapshot(modes)}, st, nil)
	// Tuesday, well before any cutoff in European time zones.
	svc.now = func() time.Time {
		return time.Date(2025, time.September, 9, 10, 0, 0, 0, time.UTC)
	}
	return svc, st
}

// stockholmToHamburg is the reference lane for these tests.
func stockholmToHamburg(weightKg float64) model.QuoteRequest {
	return model.QuoteRequest{
		UserID:             "u1",
		PickupCoordinate:   model.Coordinate{Lat: 59.3293, Lon: 18.0686},
		DeliveryCoordinate: model.Coordinate{Lat: 53.5511, Lon: 9.9937},
		PickupCountry:      "SE",
		PickupPostal:       "11",
		DeliveryCountry:    "DE",
		DeliveryPostal:     "20",
		ChargeableWeightKg: weightKg,
	}
}

func TestQuoteAllModesFullPipeline(t *testing.T) {
	svc, _ := newTestService(t, map[string]config.ModeConfig{"road": roadConfig()})

	results := svc.QuoteAllModes(stockholmToHamburg(4500))
	r, ok := results["road"]
	if !ok {
		t.Fatalf("no result for road, got %v", results)
	}

	if r.Status != model.StatusSuccess {
		t.Fatalf("status = %s, want success", r.Status)
	}
	if !r.Available {
		t.Errorf("Available = false for a successful quote")
	}
	if r.DistanceKm < 900 || r.DistanceKm > 1050 {
		t.Errorf("DistanceKm = %d, want roughly 970 road km", r.DistanceKm)
	}
	if !r.FTLPriceEUR.IsPositive() {
		t.Errorf("FTLPriceEUR = %s, want positive", r.FTLPriceEUR)
	}
	if !r.TotalPriceEUR.IsPositive() || r.TotalPriceEUR.GreaterThan(r.FTLPriceEUR) {
		t.Errorf("TotalPriceEUR = %s, want in (0, %s]", r.TotalPriceEUR, r.FTLPriceEUR)
	}
	// ~970 km at 500 km/day rounds to 2 days.
	if r.TransitTime.MinDays != 2 || r.TransitTime.MaxDays != 3 {
		t.Errorf("TransitTime = %v, want 2-3 days", r.TransitTime)
	}
	// Tuesday 12:00 Stockholm time is before the 14:00 cutoff.
	if r.EarliestPickupDate != "2025-09-10" {
		t.Errorf("EarliestPickupDate = %s, want 2025-09-10", r.EarliestPickupDate)
	}
	if r.CO2Grams <= 0 {
		t.Errorf("CO2Grams = %d, want positive", r.CO2Grams)
	}
}

func TestQuoteAllModesDeterministic(t *testing.T) {
	svc, _ := newTestService(t, map[string]config.ModeConfig{"road": roadConfig()})
	req := stockholmToHamburg(4500)

	first := svc.QuoteAllModes(req)
	second := svc.QuoteAllModes(req)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("repeated quote differs:\nfirst  = %+v\nsecond = %+v", first, second)
	}
}

func TestQuoteAllModesModeIsolation(t *testing.T) {
	broken := roadConfig()
	broken.P2K = -1 // drives the second anchor negative

	svc, _ := newTestService(t, map[string]config.ModeConfig{
		"road":   roadConfig(),
		"broken": broken,
	})

	results := svc.QuoteAllModes(stockholmToHamburg(4500))
	if got := results["road"].Status; got != model.StatusSuccess {
		t.Errorf("road status = %s, want success", got)
	}
	if got := results["broken"].Status; got != model.StatusBadConfig {
		t.Errorf("broken status = %s, want bad_config", got)
	}
}

func TestQuoteModeZoneDirectional(t *testing.T) {
	cfg := roadConfig()
	// Germany only accepts the Hamburg area; pickup side is unrestricted.
	cfg.AvailableZones = map[string][]string{"SE": {"00-99"}, "DE": {"20-22"}}

	svc, _ := newTestService(t, map[string]config.ModeConfig{"road": cfg})

	ok := stockholmToHamburg(4500)
	if got := svc.QuoteAllModes(ok)["road"].Status; got != model.StatusSuccess {
		t.Fatalf("status for DE 20 = %s, want success", got)
	}

	blocked := stockholmToHamburg(4500)
	blocked.DeliveryPostal = "80" // Munich area, outside the zone
	if got := svc.QuoteAllModes(blocked)["road"].Status; got != model.StatusNotAvailable {
		t.Errorf("status for DE 80 = %s, want not_available", got)
	}
}

func TestQuoteModeWeightBounds(t *testing.T) {
	cfg := roadConfig()
	cfg.MinAllowedWeightKg = 100

	svc, _ := newTestService(t, map[string]config.ModeConfig{"road": cfg})

	tests := []struct {
		name   string
		weight float64
		want   model.Status
	}{
		{"below minimum", 50, model.StatusWeightNotAllowed},
		{"at minimum", 100, model.StatusSuccess},
		{"above maximum", 30000, model.StatusWeightNotAllowed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := svc.QuoteAllModes(stockholmToHamburg(tt.weight))["road"].Status
			if got != tt.want {
				t.Errorf("status = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestQuoteModeUnbalancedLaneDefaultsToOne(t *testing.T) {
	withFactor := roadConfig()
	without := roadConfig()
	without.BalanceFactors = nil

	svc, _ := newTestService(t, map[string]config.ModeConfig{
		"discounted": withFactor, // SE-DE factor 0.95
		"flat":       without,
	})

	results := svc.QuoteAllModes(stockholmToHamburg(4500))
	if !results["discounted"].FTLPriceEUR.LessThan(results["flat"].FTLPriceEUR) {
		t.Errorf("balance factor 0.95 should lower the FTL price: discounted=%s flat=%s",
			results["discounted"].FTLPriceEUR, results["flat"].FTLPriceEUR)
	}
}

// --- HTTP handler tests ---

func TestHandleQuote(t *testing.T) {
	svc, st := newTestService(t, map[string]config.ModeConfig{"road": roadConfig()})

	body, err := json.Marshal(stockholmToHamburg(4500))
	if err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/quotes", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	svc.HandleQuote(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var quotes map[string]model.QuoteResult
	if err := json.Unmarshal(rec.Body.Bytes(), &quotes); err != nil {
		t.Fatalf("response not valid JSON: %v", err)
	}
	if quotes["road"].Status != model.StatusSuccess {
		t.Errorf("road status = %s, want success", quotes["road"].Status)
	}

	// The request must be logged for conversion analysis.
	logs, err := st.ListSearchLogsByUser(context.Background(), "u1")
	if err != nil {
		t.Fatal(err)
	}
	if len(logs) != 1 {
		t.Fatalf("search logs = %d, want 1", len(logs))
	}
	if logs[0].FromCountry != "SE" || logs[0].ToCountry != "DE" || logs[0].WeightKg != 4500 {
		t.Errorf("search log lane = %s-%s %v kg", logs[0].FromCountry, logs[0].ToCountry, logs[0].WeightKg)
	}
}

func TestHandleQuoteRejectsBadInput(t *testing.T) {
	svc, _ := newTestService(t, map[string]config.ModeConfig{"road": roadConfig()})

	tests := []struct {
		name string
		body string
	}{
		{"malformed JSON", "{not json"},
		{"zero weight", `{"user_id":"u1","pickup_country":"SE","delivery_country":"DE","chargeable_weight_kg":0}`},
		{"bad country code", `{"user_id":"u1","pickup_country":"SWE","delivery_country":"DE","chargeable_weight_kg":100}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/quotes", bytes.NewReader([]byte(tt.body)))
			rec := httptest.NewRecorder()
			svc.HandleQuote(rec, req)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
		})
	}
}

func TestHandleListModes(t *testing.T) {
	svc, _ := newTestService(t, map[string]config.ModeConfig{
		"road": roadConfig(),
		"rail": roadConfig(),
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/modes", nil)
	rec := httptest.NewRecorder()
	svc.HandleListModes(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var modes []struct {
		Mode        string `json:"mode"`
		Description string `json:"description"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &modes); err != nil {
		t.Fatal(err)
	}
	if len(modes) != 2 {
		t.Errorf("modes = %d, want 2", len(modes))
	}
}

func TestHandleSearchHistory(t *testing.T) {
	svc, st := newTestService(t, map[string]config.ModeConfig{"road": roadConfig()})

	err := st.InsertSearchLog(context.Background(), &model.SearchLog{
		ID: "s1", UserID: "u1", FromCountry: "SE", ToCountry: "DE", WeightKg: 100,
	})
	if err != nil {
		t.Fatal(err)
	}

	router := chi.NewRouter()
	router.Get("/api/v1/users/{userID}/searches", svc.HandleSearchHistory)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/users/u1/searches", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var logs []model.SearchLog
	if err := json.Unmarshal(rec.Body.Bytes(), &logs); err != nil {
		t.Fatal(err)
	}
	if len(logs) != 1 || logs[0].ID != "s1" {
		t.Errorf("logs = %+v, want the seeded entry", logs)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/users/nobody/searches", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status for unknown user = %d", rec.Code)
	}
	if body := bytes.TrimSpace(rec.Body.Bytes()); string(body) != "[]" {
		t.Errorf("unknown user body = %s, want []", body)
	}
}

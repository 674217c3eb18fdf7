package geo

import (
	"math"
	"testing"

	"github.com/easyfreight/quote-engine/internal/model"
)

func TestDistanceKm_KnownLanes(t *testing.T) {
	tests := []struct {
		name      string
		a, b      model.Coordinate
		wantKm    float64 // great-circle × 1.2
		tolerance float64
	}{
		{
			name:      "same point",
			a:         model.Coordinate{Lat: 59.3293, Lon: 18.0686},
			b:         model.Coordinate{Lat: 59.3293, Lon: 18.0686},
			wantKm:    0,
			tolerance: 0.001,
		},
		{
			name:      "Stockholm to Hamburg (~810km great circle)",
			a:         model.Coordinate{Lat: 59.3293, Lon: 18.0686},
			b:         model.Coordinate{Lat: 53.5511, Lon: 9.9937},
			wantKm:    810 * 1.2,
			tolerance: 30,
		},
		{
			name:      "Gothenburg to Rotterdam (~800km great circle)",
			a:         model.Coordinate{Lat: 57.7089, Lon: 11.9746},
			b:         model.Coordinate{Lat: 51.9244, Lon: 4.4777},
			wantKm:    800 * 1.2,
			tolerance: 50,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DistanceKm(tt.a, tt.b)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if math.Abs(got-tt.wantKm) > tt.tolerance {
				t.Errorf("DistanceKm() = %f, want %f (±%f)", got, tt.wantKm, tt.tolerance)
			}
		})
	}
}

func TestDistanceKm_Symmetry(t *testing.T) {
	a := model.Coordinate{Lat: 59.3293, Lon: 18.0686}
	b := model.Coordinate{Lat: 52.5200, Lon: 13.4050}

	d1, err := DistanceKm(a, b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	d2, err := DistanceKm(b, a)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(d1-d2) > 0.0001 {
		t.Errorf("distance is not symmetric: %f vs %f", d1, d2)
	}
}

func TestDistanceKm_AppliesRoadFactor(t *testing.T) {
	a := model.Coordinate{Lat: 59.3293, Lon: 18.0686}
	b := model.Coordinate{Lat: 55.6761, Lon: 12.5683}

	got, err := DistanceKm(a, b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	greatCircle := haversineKm(a.Lat, a.Lon, b.Lat, b.Lon)
	if math.Abs(got-greatCircle*1.2) > 1e-9 {
		t.Errorf("expected great-circle × 1.2 = %f, got %f", greatCircle*1.2, got)
	}
}

func TestDistanceKm_NonFiniteInput(t *testing.T) {
	good := model.Coordinate{Lat: 59.3, Lon: 18.0}
	bad := []model.Coordinate{
		{Lat: math.NaN(), Lon: 18.0},
		{Lat: 59.3, Lon: math.Inf(1)},
		{Lat: math.Inf(-1), Lon: math.NaN()},
	}
	for _, b := range bad {
		if _, err := DistanceKm(good, b); err != ErrInvalidCoordinate {
			t.Errorf("DistanceKm(good, %+v): expected ErrInvalidCoordinate, got %v", b, err)
		}
		if _, err := DistanceKm(b, good); err != ErrInvalidCoordinate {
			t.Errorf("DistanceKm(%+v, good): expected ErrInvalidCoordinate, got %v", b, err)
		}
	}
}

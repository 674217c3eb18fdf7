// Package geo contains pure geographic computation helpers for lane
// distances. Routed road distance is approximated as great-circle distance
// inflated by a fixed factor, which keeps quoting deterministic and offline.
package geo

import (
	"errors"
	"math"

	"github.com/easyfreight/quote-engine/internal/model"
)

const (
	earthRadiusKm = 6371.0

	// roadFactor inflates the great-circle distance to approximate the
	// actually routed distance between two addresses.
	roadFactor = 1.2
)

// ErrInvalidCoordinate is returned when a coordinate component is NaN or
// infinite.
var ErrInvalidCoordinate = errors.New("geo: coordinate must be finite")

// DistanceKm returns the approximate road distance in kilometres between two
// points: haversine great-circle distance times the road inflation factor.
// The result is a float; rounding to integer kilometres is the caller's
// concern since downstream tariff formulas consume whole kilometres.
func DistanceKm(a, b model.Coordinate) (float64, error) {
	for _, v := range []float64{a.Lat, a.Lon, b.Lat, b.Lon} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, ErrInvalidCoordinate
		}
	}
	return haversineKm(a.Lat, a.Lon, b.Lat, b.Lon) * roadFactor, nil
}

// haversineKm returns the great-circle distance in kilometres between two
// points specified in decimal degrees.
func haversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := degreesToRadians(lat2 - lat1)
	dLon := degreesToRadians(lon2 - lon1)

	rLat1 := degreesToRadians(lat1)
	rLat2 := degreesToRadians(lat2)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rLat1)*math.Cos(rLat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadiusKm * c
}

func degreesToRadians(deg float64) float64 {
	return deg * math.Pi / 180.0
}

// Package curve implements the multi-segment logarithmic pricing curve used
// to price part-load freight shipments against a full-truckload (FTL)
// reference price.
//
// The tariff for each transport mode is calibrated with four anchor points
// (weight, price-per-kg). Between consecutive anchors the per-kg price
// follows a power law a·w^n fitted exactly through both endpoints in log-log
// space, which gives:
//   - Smooth, monotonically decaying per-kg prices as weight grows
//   - Exact reproduction of the negotiated anchor prices
//   - A hard ceiling at the FTL price: itemized freight never costs more
//     than chartering the whole vehicle
//
// All monetary values use shopspring/decimal — never float64 for money.
// Internal transcendental math (ln, pow) runs in float64, with results
// immediately rounded to whole euros and converted to decimal.
package curve

import (
	"errors"
	"math"

	"github.com/shopspring/decimal"

	"github.com/easyfreight/quote-engine/internal/model"
)

var (
	// ErrNonMonotonicAnchors is returned when the calibration weights do not
	// satisfy 0 < p1 < p2 < p3 < breakpoint <= maxWeight.
	ErrNonMonotonicAnchors = errors.New("curve: calibration weights must be strictly increasing")

	// ErrNonPositiveAnchor is returned when a derived per-kg anchor price is
	// not strictly positive. The log-log fit takes the logarithm of every
	// anchor, so a zero or negative price makes the curve undefined. This is
	// a real failure mode when p2k/p2m are misconfigured against a small FTL
	// price, and it must surface as a config error before any evaluation.
	ErrNonPositiveAnchor = errors.New("curve: per-kg anchor price must be positive")
)

// Calibration carries the per-mode tariff parameters the curve is fitted
// from. Anchor 1 is a direct (weight, total price at that weight) pair;
// anchors 2 and 3 are linear functions of the FTL price so the tariff
// scales with lane distance.
type Calibration struct {
	P1      float64 // weight of anchor 1, kg
	PriceP1 float64 // total price at p1, EUR

	P2  float64 // weight of anchor 2, kg
	P2K float64 // anchor 2 per-kg price = (p2k·FTL + p2m) / p2
	P2M float64

	P3  float64 // weight of anchor 3, kg
	P3K float64
	P3M float64

	Breakpoint  float64 // weight above which the price is flat FTL
	MaxWeightKg float64 // absolute ceiling this mode can carry

	MinAllowedKg float64 // admission bounds for this mode
	MaxAllowedKg float64
}

// monotonic reports whether the anchor weights form a valid chain.
func (c Calibration) monotonic() bool {
	return 0 < c.P1 && c.P1 < c.P2 && c.P2 < c.P3 &&
		c.P3 < c.Breakpoint && c.Breakpoint <= c.MaxWeightKg
}

// segment is one fitted power law: perKg(w) = a · w^n over [lo, hi).
type segment struct {
	lo, hi float64
	a, n   float64
}

// fitSegment solves a·x^n through (xa, ya) and (xb, yb):
//
//	n = (ln yb − ln ya) / (ln xb − ln xa)
//	a = ya / xa^n
//
// Caller guarantees xa < xb and ya, yb > 0.
func fitSegment(xa, ya, xb, yb float64) segment {
	n := (math.Log(yb) - math.Log(ya)) / (math.Log(xb) - math.Log(xa))
	a := ya / math.Pow(xa, n)
	return segment{lo: xa, hi: xb, a: a, n: n}
}

// Curve is a fitted pricing curve for one mode and one FTL reference price.
// It is immutable after construction and safe for concurrent use.
type Curve struct {
	cal  Calibration
	ftl  float64 // whole euros, >= 1
	segs [3]segment
}

// FTLPrice computes the full-truckload reference price for a lane:
// round(distance · kmPrice · balanceFactor), clamped to a minimum of 1 EUR
// to avoid division and log degeneracies in the curve fit downstream.
func FTLPrice(distanceKm int, kmPriceEUR, balanceFactor float64) decimal.Decimal {
	ftl := math.Round(float64(distanceKm) * kmPriceEUR * balanceFactor)
	if ftl < 1 {
		ftl = 1
	}
	return decimal.NewFromFloat(ftl)
}

// New fits the three-segment curve for the given calibration and FTL price.
// The four per-kg anchors are
//
//	y1 = priceP1 / p1
//	y2 = (p2k·FTL + p2m) / p2
//	y3 = (p3k·FTL + p3m) / p3
//	y4 = FTL / breakpoint
//
// and the segments run [p1,p2), [p2,p3), [p3,breakpoint].
func New(cal Calibration, ftlPriceEUR decimal.Decimal) (*Curve, error) {
	if !cal.monotonic() {
		return nil, ErrNonMonotonicAnchors
	}
	if cal.PriceP1 <= 0 {
		return nil, ErrNonPositiveAnchor
	}

	ftl := ftlPriceEUR.InexactFloat64()
	if ftl < 1 {
		ftl = 1
	}

	y1 := cal.PriceP1 / cal.P1
	y2 := (cal.P2K*ftl + cal.P2M) / cal.P2
	y3 := (cal.P3K*ftl + cal.P3M) / cal.P3
	y4 := ftl / cal.Breakpoint

	for _, y := range []float64{y1, y2, y3, y4} {
		if y <= 0 || math.IsNaN(y) || math.IsInf(y, 0) {
			return nil, ErrNonPositiveAnchor
		}
	}

	return &Curve{
		cal: cal,
		ftl: ftl,
		segs: [3]segment{
			fitSegment(cal.P1, y1, cal.P2, y2),
			fitSegment(cal.P2, y2, cal.P3, y3),
			fitSegment(cal.P3, y3, cal.Breakpoint, y4),
		},
	}, nil
}

// FTL returns the (clamped) FTL reference price as whole euros.
func (c *Curve) FTL() decimal.Decimal {
	return decimal.NewFromFloat(c.ftl)
}

// PerKg evaluates the fitted per-kg curve at weight w. Only defined for
// p1 <= w <= breakpoint; outside that range it clamps to the nearest
// segment. Exposed so callers can verify anchor continuity.
func (c *Curve) PerKg(w float64) float64 {
	seg := c.segs[2]
	switch {
	case w < c.segs[0].hi:
		seg = c.segs[0]
	case w < c.segs[1].hi:
		seg = c.segs[1]
	}
	return seg.a * math.Pow(w, seg.n)
}

// Total computes the total price in whole euros for chargeable weight w.
//
// Below p1 the curve is not fitted, so sub-threshold shipments are priced
// as a linear fraction of FTL scaled by the mode's absolute max weight:
// round(ftl·w/maxWeight). On the fitted segments the per-kg coefficient is
// multiplied by the weight to obtain the total, giving min(a·w^n·w, ftl).
// The multiplication by w on top of the calibrated "per-kg" anchors is
// load-bearing for existing price agreements and must not be altered.
// Above the breakpoint the price is flat FTL.
func (c *Curve) Total(w float64) (decimal.Decimal, model.Status) {
	if w > c.cal.MaxWeightKg {
		return decimal.Zero, model.StatusWeightExceedsMax
	}
	if w > c.cal.Breakpoint {
		return decimal.NewFromFloat(c.ftl), model.StatusSuccess
	}
	if w < c.cal.P1 {
		total := math.Round(c.ftl * w / c.cal.MaxWeightKg)
		return decimal.NewFromFloat(total), model.StatusSuccess
	}

	total := math.Round(math.Min(c.PerKg(w)*w, c.ftl))
	return decimal.NewFromFloat(total), model.StatusSuccess
}

// Evaluate runs the full precondition chain and curve evaluation for one
// mode: admission bounds first, then calibration validity, then the
// piecewise total. Business-rule rejections come back as statuses; Evaluate
// never returns an error and never panics inside the math — log-domain
// failures are rejected before any logarithm is taken.
func Evaluate(cal Calibration, ftlPriceEUR decimal.Decimal, weightKg float64) (decimal.Decimal, model.Status) {
	if weightKg < cal.MinAllowedKg || weightKg > cal.MaxAllowedKg {
		return decimal.Zero, model.StatusWeightNotAllowed
	}

	c, err := New(cal, ftlPriceEUR)
	if err != nil {
		return decimal.Zero, model.StatusBadConfig
	}

	return c.Total(weightKg)
}

package velocity

import (
	"math"
	"time"
)

const (
	// DefaultCadenceDays is used when there is not enough history to measure cadence.
	DefaultCadenceDays = 30.0
	// LeadTimeDays is the assumed supplier lead time.
	LeadTimeDays = 7.0
	// SafetyFactor pads the lead-time demand for the reorder point.
	SafetyFactor = 1.5
	// MinCoverageDays is the shortest period a recommended order should cover.
	MinCoverageDays = 30.0
)

const day = 24 * time.Hour

// Demand is one dated purchase quantity.
type Demand struct {
	Date     time.Time
	Quantity float64
}

// Recommendation holds the cadence, burn-rate and reorder figures derived
// from a purchase history.
type Recommendation struct {
	TotalQuantity       float64
	FirstOrderDate      time.Time
	LastOrderDate       time.Time
	AverageCadenceDays  float64
	DailyBurnRate       float64
	RecommendedMin      int
	RecommendedOrderQty int
	NextPredictedOrder  *time.Time
}

// Recommend computes reorder figures from dated quantities and the number of
// distinct orders they came from. Both the fuzzy profile builder and the
// exact-name inventory aggregator go through here.
//
// Dates are compared as instants; the predicted next order adds the cadence
// as an absolute duration, so it ignores calendar and DST shifts.
func Recommend(points []Demand, orderCount int) Recommendation {
	var rec Recommendation
	if len(points) == 0 {
		return rec
	}

	rec.FirstOrderDate = points[0].Date
	rec.LastOrderDate = points[0].Date
	for _, p := range points {
		rec.TotalQuantity += p.Quantity
		if p.Date.Before(rec.FirstOrderDate) {
			rec.FirstOrderDate = p.Date
		}
		if p.Date.After(rec.LastOrderDate) {
			rec.LastOrderDate = p.Date
		}
	}

	daySpan := float64(rec.LastOrderDate.Sub(rec.FirstOrderDate)) / float64(day)

	rec.AverageCadenceDays = DefaultCadenceDays
	if orderCount > 1 && daySpan > 0 {
		rec.AverageCadenceDays = daySpan / float64(orderCount-1)
	}

	effectiveSpan := daySpan
	if effectiveSpan == 0 {
		effectiveSpan = DefaultCadenceDays
	}
	rec.DailyBurnRate = rec.TotalQuantity / effectiveSpan

	rec.RecommendedMin = ceilNonNegative(rec.DailyBurnRate * LeadTimeDays * SafetyFactor)
	targetDays := math.Max(rec.AverageCadenceDays, MinCoverageDays)
	rec.RecommendedOrderQty = ceilNonNegative(rec.DailyBurnRate * targetDays)

	if orderCount >= 2 {
		next := rec.LastOrderDate.Add(time.Duration(rec.AverageCadenceDays * float64(day)))
		rec.NextPredictedOrder = &next
	}

	return rec
}

func ceilNonNegative(v float64) int {
	if v <= 0 || math.IsNaN(v) {
		return 0
	}
	return int(math.Ceil(v))
}

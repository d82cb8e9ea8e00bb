// Package rates holds the sales-rate and days-of-coverage arithmetic shared by
// the batch optimizer and the batch planner.
package rates

import (
	"math"
	"time"

	"mfgplan/internal/core/types"
)

// SalesWindow resolves an optional [from, to] period. A missing end defaults to now,
// a missing start to windowDays before the end.
func SalesWindow(from, to *time.Time, now time.Time, windowDays int) (time.Time, time.Time) {
	end := now
	if to != nil {
		end = *to
	}
	start := end.AddDate(0, 0, -windowDays)
	if from != nil {
		start = *from
	}
	return start, end
}

// DaysInWindow returns the number of whole days in the period, never less than 1.
func DaysInWindow(from, to time.Time) float64 {
	days := math.Floor(to.Sub(from).Hours() / 24)
	if days < 1 {
		return 1
	}
	return days
}

// DailySalesRate converts a total sold over [from, to] into pieces per day.
func DailySalesRate(totalSold float64, from, to time.Time) float64 {
	if totalSold <= 0 {
		return 0
	}
	return totalSold / DaysInWindow(from, to)
}

// CurrentCoverage returns stock / rate, or 0 when the rate is below minRate.
// Zero is the display convention for products with no sales history.
func CurrentCoverage(stock, rate, minRate float64) float64 {
	if rate < minRate || rate <= 0 {
		return 0
	}
	return stock / rate
}

// FutureCoverage returns stock / rate as a Coverage, unbounded when the rate is below minRate.
func FutureCoverage(stock, rate, minRate float64) types.Coverage {
	if rate < minRate || rate <= 0 {
		return types.UnboundedCoverage()
	}
	return types.FiniteCoverage(stock / rate)
}

// MaxUnits bounds every unit count handed out by the planners.
const MaxUnits = math.MaxInt32

// UnitsForCoverage returns the whole units needed to bring stock up to targetDays
// of coverage: max(0, floor(rate*targetDays - stock)). The result stays a float so
// callers can cap it by volume before converting.
func UnitsForCoverage(rate, stock, targetDays float64) float64 {
	need := math.Floor(rate*targetDays - stock)
	if need <= 0 || math.IsNaN(need) {
		return 0
	}
	return need
}

// WholeUnits floors v into [0, MaxUnits].
func WholeUnits(v float64) int {
	if v <= 0 || math.IsNaN(v) {
		return 0
	}
	if v >= MaxUnits {
		return MaxUnits
	}
	return int(math.Floor(v))
}

// Package types provides value types shared across domain packages.
package types

import (
	"math"
	"strconv"
)

// Coverage is a days-of-coverage value: either a finite number of days or
// unbounded (stock that never runs out because nothing sells).
//
// The zero value is a finite coverage of 0 days.
type Coverage struct {
	days      float64
	unbounded bool
}

// FiniteCoverage returns a coverage of the given number of days.
// Infinite or NaN inputs are normalized to UnboundedCoverage.
func FiniteCoverage(days float64) Coverage {
	if math.IsInf(days, 1) || math.IsNaN(days) {
		return UnboundedCoverage()
	}
	return Coverage{days: days}
}

// UnboundedCoverage returns a coverage with no time horizon.
func UnboundedCoverage() Coverage {
	return Coverage{unbounded: true}
}

// IsUnbounded reports whether the coverage has no time horizon.
func (c Coverage) IsUnbounded() bool { return c.unbounded }

// Days returns the number of days, or +Inf when unbounded.
func (c Coverage) Days() float64 {
	if c.unbounded {
		return math.Inf(1)
	}
	return c.days
}

// Capped returns the number of days with unbounded (and anything above limit)
// replaced by limit. Meant for serialization boundaries that cannot carry infinity.
func (c Coverage) Capped(limit float64) float64 {
	if c.unbounded || c.days > limit {
		return limit
	}
	return c.days
}

// String renders the coverage with two fractional digits, or "unbounded".
func (c Coverage) String() string {
	if c.unbounded {
		return "unbounded"
	}
	return strconv.FormatFloat(c.days, 'f', 2, 64)
}

// AverageFinite returns the mean of all finite coverages and how many were counted.
// Unbounded values are excluded; the mean of an empty set is 0.
func AverageFinite(values []Coverage) (float64, int) {
	var sum float64
	var n int
	for _, v := range values {
		if v.unbounded {
			continue
		}
		sum += v.days
		n++
	}
	if n == 0 {
		return 0, 0
	}
	return sum / float64(n), n
}

package rates

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSalesWindow_Defaults(t *testing.T) {
	now := time.Date(2025, 3, 31, 12, 0, 0, 0, time.UTC)

	from, to := SalesWindow(nil, nil, now, 30)
	assert.Equal(t, now, to)
	assert.Equal(t, time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC), from)

	explicitFrom := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	from, to = SalesWindow(&explicitFrom, nil, now, 30)
	assert.Equal(t, explicitFrom, from)
	assert.Equal(t, now, to)
}

func TestDaysInWindow_AtLeastOne(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, 1.0, DaysInWindow(start, start))
	assert.Equal(t, 1.0, DaysInWindow(start, start.Add(5*time.Hour)))
	assert.Equal(t, 30.0, DaysInWindow(start, start.AddDate(0, 0, 30)))
	assert.Equal(t, 1.0, DaysInWindow(start, start.AddDate(0, 0, -3)))
}

func TestDailySalesRate(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 30)

	assert.Equal(t, 2.0, DailySalesRate(60, start, end))
	assert.Equal(t, 0.0, DailySalesRate(0, start, end))
	assert.Equal(t, 0.0, DailySalesRate(-5, start, end))
}

func TestCoverageHelpers(t *testing.T) {
	tests := []struct {
		name        string
		stock, rate float64
		wantCurrent float64
		wantInf     bool
	}{
		{"regular", 100, 4, 25, false},
		{"no sales", 100, 0, 0, true},
		{"below minimum rate", 100, 1e-9, 0, true},
		{"empty stock", 0, 2, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantCurrent, CurrentCoverage(tt.stock, tt.rate, 1e-6))
			assert.Equal(t, tt.wantInf, FutureCoverage(tt.stock, tt.rate, 1e-6).IsUnbounded())
		})
	}
}

func TestUnitsForCoverage(t *testing.T) {
	assert.Equal(t, 50.0, UnitsForCoverage(2, 10, 30))
	assert.Equal(t, 0.0, UnitsForCoverage(2, 100, 30))
	assert.Equal(t, 4.0, UnitsForCoverage(1.5, 0, 3))
	assert.Equal(t, 0.0, UnitsForCoverage(0, 0, 30))
	assert.Equal(t, 1e302, UnitsForCoverage(1, 0, 1e302))
}

func TestWholeUnits(t *testing.T) {
	tests := []struct {
		name string
		in   float64
		want int
	}{
		{name: "floors", in: 7.9, want: 7},
		{name: "negative", in: -3, want: 0},
		{name: "NaN", in: math.NaN(), want: 0},
		{name: "at limit", in: MaxUnits, want: MaxUnits},
		{name: "beyond int64", in: 1e19, want: MaxUnits},
		{name: "infinite", in: math.Inf(1), want: MaxUnits},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, WholeUnits(tt.in))
		})
	}
}

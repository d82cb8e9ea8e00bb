package planning

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mfgplan/internal/core/apperror"
)

const volumeEpsilon = 1e-9

func qty(v float64) *float64 { return &v }

func newTestPlanner() *Planner {
	return NewPlanner(DefaultConfig())
}

func itemByCode(t *testing.T, items []Item, code string) Item {
	t.Helper()
	for _, it := range items {
		if it.ProductCode == code {
			return it
		}
	}
	require.FailNow(t, "item not found", code)
	return Item{}
}

func TestAllocate_MmqMultiplierConsumesVolumeSequentially(t *testing.T) {
	items := []Item{
		{ProductCode: "P1", VolumePerUnit: 1, MinimalManufactureQuantity: 50},
		{ProductCode: "P2", VolumePerUnit: 1, MinimalManufactureQuantity: 30},
	}

	out, summary, err := newTestPlanner().Allocate(150, items, Strategy{Mode: ModeMmqMultiplier, MmqMultiplier: 2})
	require.NoError(t, err)

	assert.Equal(t, 100, out[0].RecommendedUnits)
	assert.Equal(t, 50, out[1].RecommendedUnits)
	assert.Equal(t, NoteReducedToFit, out[1].Note)
	assert.True(t, out[0].WasOptimized)
	assert.InDelta(t, 150.0, summary.TotalVolumeUsed, volumeEpsilon)
	assert.InDelta(t, 100.0, summary.VolumeUtilizationPercent, volumeEpsilon)
	assert.Equal(t, 2, summary.OptimizedProducts)
}

func TestAllocate_FixedCommitmentsExceedSupply(t *testing.T) {
	items := []Item{
		{ProductCode: "P1", VolumePerUnit: 1, IsFixed: true, UserFixedQuantity: qty(100)},
		{ProductCode: "P2", VolumePerUnit: 1, IsFixed: true, UserFixedQuantity: qty(100)},
		{ProductCode: "P3", VolumePerUnit: 1, MinimalManufactureQuantity: 10},
	}

	_, _, err := newTestPlanner().Allocate(150, items, Strategy{Mode: ModeMmqMultiplier, MmqMultiplier: 1})

	require.Error(t, err)
	assert.True(t, apperror.IsInvalidOperation(err))
}

func TestAllocate_TargetDaysWithoutSales(t *testing.T) {
	items := []Item{
		{ProductCode: "IDLE", VolumePerUnit: 2, CurrentStock: 7},
		{ProductCode: "SELLS", VolumePerUnit: 2, CurrentStock: 4, DailySalesRate: 2, CurrentDaysCoverage: 2},
	}

	out, summary, err := newTestPlanner().Allocate(100, items, Strategy{Mode: ModeTargetDaysCoverage, TargetDaysCoverage: 10})
	require.NoError(t, err)

	idle := itemByCode(t, out, "IDLE")
	assert.Equal(t, 0, idle.RecommendedUnits)
	assert.Equal(t, NoteNoSalesData, idle.Note)
	assert.True(t, idle.FutureDaysCoverage.IsUnbounded())
	assert.InDelta(t, 7.0, idle.FutureStock, volumeEpsilon)

	sells := itemByCode(t, out, "SELLS")
	assert.Equal(t, 16, sells.RecommendedUnits)
	assert.InDelta(t, 32.0, sells.TotalVolumeRequired, volumeEpsilon)
	assert.InDelta(t, 10.0, sells.FutureDaysCoverage.Days(), volumeEpsilon)

	// unbounded coverage is left out of the average
	assert.InDelta(t, 10.0, summary.AchievedAverageCoverage, volumeEpsilon)
}

func TestAllocate_TargetDaysCappedByRemainingVolume(t *testing.T) {
	items := []Item{
		{ProductCode: "A", VolumePerUnit: 1, DailySalesRate: 1},
		{ProductCode: "B", VolumePerUnit: 1, DailySalesRate: 1},
	}

	out, _, err := newTestPlanner().Allocate(15, items, Strategy{Mode: ModeTargetDaysCoverage, TargetDaysCoverage: 10})
	require.NoError(t, err)

	assert.Equal(t, 10, out[0].RecommendedUnits)
	assert.Equal(t, 5, out[1].RecommendedUnits)
	assert.Equal(t, NoteReducedToFit, out[1].Note)
}

func TestAllocate_TotalWeight(t *testing.T) {
	items := func() []Item {
		return []Item{
			{ProductCode: "LOW", VolumePerUnit: 2, CurrentStock: 1, DailySalesRate: 1, CurrentDaysCoverage: 1},
			{ProductCode: "MID1", VolumePerUnit: 2, CurrentStock: 4, DailySalesRate: 2, CurrentDaysCoverage: 2},
			{ProductCode: "MID2", VolumePerUnit: 2, CurrentStock: 2, DailySalesRate: 1, CurrentDaysCoverage: 2},
			{ProductCode: "IDLE", VolumePerUnit: 2, CurrentStock: 9},
		}
	}

	tests := []struct {
		name      string
		available float64
		total     float64
		want      []int
	}{
		{name: "within supply", available: 100, total: 40, want: []int{10, 5, 5, 0}},
		{name: "capped by supply", available: 40, total: 1000, want: []int{10, 5, 5, 0}},
		{name: "half the weight", available: 100, total: 20, want: []int{5, 2, 2, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, summary, err := newTestPlanner().Allocate(tt.available, items(), Strategy{
				Mode:             ModeTotalWeight,
				TotalWeightToUse: tt.total,
			})
			require.NoError(t, err)

			got := make([]int, len(out))
			for i, it := range out {
				got[i] = it.RecommendedUnits
			}
			assert.Equal(t, tt.want, got)
			assert.Equal(t, NoteNoSalesData, out[3].Note)
			assert.LessOrEqual(t, summary.TotalVolumeUsed, tt.available+volumeEpsilon)
		})
	}
}

func TestAllocate_TotalWeightNoVolumeRemaining(t *testing.T) {
	items := []Item{
		{ProductCode: "FIX", VolumePerUnit: 1, IsFixed: true, UserFixedQuantity: qty(20)},
		{ProductCode: "A", VolumePerUnit: 1, DailySalesRate: 1, CurrentDaysCoverage: 1},
	}

	out, _, err := newTestPlanner().Allocate(100, items, Strategy{Mode: ModeTotalWeight, TotalWeightToUse: 20})
	require.NoError(t, err)

	a := itemByCode(t, out, "A")
	assert.Equal(t, 0, a.RecommendedUnits)
	assert.Equal(t, NoteNoVolumeRemaining, a.Note)
	assert.Equal(t, 20, itemByCode(t, out, "FIX").RecommendedUnits)
}

func TestAllocate_FixedItemsKeepTheirQuantity(t *testing.T) {
	items := []Item{
		{ProductCode: "A", VolumePerUnit: 1, MinimalManufactureQuantity: 100},
		{ProductCode: "FIX", VolumePerUnit: 2, CurrentStock: 3, DailySalesRate: 1, IsFixed: true, UserFixedQuantity: qty(5)},
	}

	out, summary, err := newTestPlanner().Allocate(50, items, Strategy{Mode: ModeMmqMultiplier, MmqMultiplier: 1})
	require.NoError(t, err)

	fixed := itemByCode(t, out, "FIX")
	assert.Equal(t, 5, fixed.RecommendedUnits)
	assert.False(t, fixed.WasOptimized)
	assert.Equal(t, NoteFixed, fixed.Note)
	assert.InDelta(t, 8.0, fixed.FutureDaysCoverage.Days(), volumeEpsilon)

	// the flexible item only sees what the fixed item left
	assert.Equal(t, 40, itemByCode(t, out, "A").RecommendedUnits)
	assert.Equal(t, 1, summary.FixedProducts)
	assert.Equal(t, 1, summary.OptimizedProducts)
}

func TestAllocate_Ordering(t *testing.T) {
	items := []Item{
		{ProductCode: "B2", VolumePerUnit: 1, MinimalManufactureQuantity: 10, DailySalesRate: 1, CurrentStock: 5, CurrentDaysCoverage: 5},
		{ProductCode: "A1", VolumePerUnit: 1, MinimalManufactureQuantity: 10, DailySalesRate: 1, CurrentStock: 9, CurrentDaysCoverage: 9},
		{ProductCode: "C3", VolumePerUnit: 1, MinimalManufactureQuantity: 10, DailySalesRate: 1, CurrentStock: 1, CurrentDaysCoverage: 1},
	}

	tests := []struct {
		ordering Ordering
		winner   string
	}{
		{ordering: "", winner: "B2"},
		{ordering: OrderAsListed, winner: "B2"},
		{ordering: OrderByProductCode, winner: "A1"},
		{ordering: OrderByUrgency, winner: "C3"},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("ordering %q", tt.ordering), func(t *testing.T) {
			out, _, err := newTestPlanner().Allocate(10, items, Strategy{
				Mode:          ModeMmqMultiplier,
				MmqMultiplier: 1,
				Ordering:      tt.ordering,
			})
			require.NoError(t, err)

			// result rows stay in input order
			assert.Equal(t, "B2", out[0].ProductCode)
			assert.Equal(t, "A1", out[1].ProductCode)
			assert.Equal(t, "C3", out[2].ProductCode)

			for _, it := range out {
				if it.ProductCode == tt.winner {
					assert.Equal(t, 10, it.RecommendedUnits, it.ProductCode)
				} else {
					assert.Equal(t, 0, it.RecommendedUnits, it.ProductCode)
				}
			}
		})
	}
}

func TestAllocate_DoesNotModifyInput(t *testing.T) {
	items := []Item{
		{ProductCode: "A", VolumePerUnit: 1, MinimalManufactureQuantity: 10},
	}

	_, _, err := newTestPlanner().Allocate(100, items, Strategy{Mode: ModeMmqMultiplier, MmqMultiplier: 3})
	require.NoError(t, err)

	assert.Equal(t, 0, items[0].RecommendedUnits)
	assert.Empty(t, items[0].Note)
}

func TestStrategy_Validate(t *testing.T) {
	tests := []struct {
		name     string
		strategy Strategy
		valid    bool
	}{
		{name: "mmq", strategy: Strategy{Mode: ModeMmqMultiplier, MmqMultiplier: 1.5}, valid: true},
		{name: "mmq zero multiplier", strategy: Strategy{Mode: ModeMmqMultiplier}},
		{name: "total weight zero", strategy: Strategy{Mode: ModeTotalWeight}, valid: true},
		{name: "total weight negative", strategy: Strategy{Mode: ModeTotalWeight, TotalWeightToUse: -1}},
		{name: "target days", strategy: Strategy{Mode: ModeTargetDaysCoverage, TargetDaysCoverage: 30}, valid: true},
		{name: "target days zero", strategy: Strategy{Mode: ModeTargetDaysCoverage}},
		{name: "unknown mode", strategy: Strategy{Mode: "Random", MmqMultiplier: 1}},
		{name: "unknown ordering", strategy: Strategy{Mode: ModeMmqMultiplier, MmqMultiplier: 1, Ordering: "Random"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.strategy.Validate()
			if tt.valid {
				assert.NoError(t, err)
				return
			}
			assert.True(t, apperror.IsValidation(err))
		})
	}
}

func TestAllocate_RejectsFractionalFixedQuantity(t *testing.T) {
	items := []Item{{ProductCode: "A", VolumePerUnit: 1, IsFixed: true, UserFixedQuantity: qty(2.5)}}

	_, _, err := newTestPlanner().Allocate(100, items, Strategy{Mode: ModeMmqMultiplier, MmqMultiplier: 1})

	assert.True(t, apperror.IsValidation(err))
}

func TestAllocate_HugeFixedQuantity(t *testing.T) {
	t.Run("exceeds supply", func(t *testing.T) {
		items := []Item{
			{ProductCode: "FIX", VolumePerUnit: 1, IsFixed: true, UserFixedQuantity: qty(1e19)},
			{ProductCode: "A", VolumePerUnit: 1, MinimalManufactureQuantity: 100},
		}

		_, _, err := newTestPlanner().Allocate(150, items, Strategy{Mode: ModeMmqMultiplier, MmqMultiplier: 1})

		require.Error(t, err)
		assert.True(t, apperror.IsInvalidOperation(err))
	})

	t.Run("beyond unit limit without volume", func(t *testing.T) {
		items := []Item{{ProductCode: "FREE", VolumePerUnit: 0, IsFixed: true, UserFixedQuantity: qty(1e19)}}

		_, _, err := newTestPlanner().Allocate(150, items, Strategy{Mode: ModeMmqMultiplier, MmqMultiplier: 1})

		require.Error(t, err)
		assert.True(t, apperror.IsValidation(err))
	})
}

func TestAllocate_HugeTargetsAreCappedByVolume(t *testing.T) {
	tests := []struct {
		name     string
		item     Item
		strategy Strategy
	}{
		{
			name:     "MMQ multiplier",
			item:     Item{ProductCode: "A", VolumePerUnit: 1, MinimalManufactureQuantity: 50},
			strategy: Strategy{Mode: ModeMmqMultiplier, MmqMultiplier: 1e300},
		},
		{
			name:     "target days",
			item:     Item{ProductCode: "A", VolumePerUnit: 1, DailySalesRate: 1, CurrentStock: 5, CurrentDaysCoverage: 5},
			strategy: Strategy{Mode: ModeTargetDaysCoverage, TargetDaysCoverage: 1e300},
		},
		{
			name:     "total weight",
			item:     Item{ProductCode: "A", VolumePerUnit: 1, DailySalesRate: 1, CurrentStock: 5, CurrentDaysCoverage: 5},
			strategy: Strategy{Mode: ModeTotalWeight, TotalWeightToUse: 1e300},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, summary, err := newTestPlanner().Allocate(150, []Item{tt.item}, tt.strategy)
			require.NoError(t, err)

			assert.Equal(t, 150, out[0].RecommendedUnits)
			assert.InDelta(t, 150.0, summary.TotalVolumeUsed, volumeEpsilon)
		})
	}
}

func TestAllocate_UrgencyTreatsNegligibleSalesAsNoSales(t *testing.T) {
	items := []Item{
		{ProductCode: "SLOW", VolumePerUnit: 1, MinimalManufactureQuantity: 10, DailySalesRate: 1e-9},
		{ProductCode: "FAST", VolumePerUnit: 1, MinimalManufactureQuantity: 10, DailySalesRate: 1, CurrentStock: 3, CurrentDaysCoverage: 3},
	}

	out, _, err := newTestPlanner().Allocate(10, items, Strategy{
		Mode:          ModeMmqMultiplier,
		MmqMultiplier: 1,
		Ordering:      OrderByUrgency,
	})
	require.NoError(t, err)

	assert.Equal(t, 10, itemByCode(t, out, "FAST").RecommendedUnits)
	assert.Equal(t, 0, itemByCode(t, out, "SLOW").RecommendedUnits)
}

func randomItems(r *rand.Rand) ([]Item, float64) {
	n := 1 + r.Intn(8)
	items := make([]Item, n)
	var fixedVolume float64
	for i := range items {
		rate := r.Float64() * 4
		if r.Intn(4) == 0 {
			rate = 0
		}
		stock := float64(r.Intn(50))
		cov := 0.0
		if rate > 0 {
			cov = stock / rate
		}
		items[i] = Item{
			ProductCode:                fmt.Sprintf("P%02d", i),
			CurrentStock:               stock,
			DailySalesRate:             rate,
			CurrentDaysCoverage:        cov,
			VolumePerUnit:              0.1 + r.Float64()*3,
			MinimalManufactureQuantity: r.Intn(60),
		}
		if r.Intn(4) == 0 {
			items[i].IsFixed = true
			items[i].UserFixedQuantity = qty(float64(r.Intn(10)))
			fixedVolume += *items[i].UserFixedQuantity * items[i].VolumePerUnit
		}
	}
	return items, fixedVolume + r.Float64()*300
}

func TestAllocate_Properties(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	planner := newTestPlanner()
	strategies := []Strategy{
		{Mode: ModeMmqMultiplier, MmqMultiplier: 1.5},
		{Mode: ModeTargetDaysCoverage, TargetDaysCoverage: 20, Ordering: OrderByUrgency},
		{Mode: ModeTotalWeight, TotalWeightToUse: 150, Ordering: OrderByProductCode},
	}

	for i := 0; i < 300; i++ {
		items, available := randomItems(r)
		for _, s := range strategies {
			out, summary, err := planner.Allocate(available, items, s)
			require.NoError(t, err)

			var used float64
			for j, it := range out {
				used += it.TotalVolumeRequired
				if items[j].IsFixed {
					require.Equal(t, int(*items[j].UserFixedQuantity), it.RecommendedUnits)
				}
				require.GreaterOrEqual(t, it.RecommendedUnits, 0)
			}
			require.LessOrEqual(t, used, available+volumeEpsilon, "mode %s", s.Mode)
			require.InDelta(t, used, summary.TotalVolumeUsed, volumeEpsilon)

			again, _, err := planner.Allocate(available, items, s)
			require.NoError(t, err)
			require.Equal(t, out, again)
		}
	}
}

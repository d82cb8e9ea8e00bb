package batch

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mfgplan/internal/domain/rates"
)

const weightEpsilon = 1e-9

func TestOptimize_SingleVariant(t *testing.T) {
	b := Batch{
		Name:        "single",
		TotalWeight: 100,
		Variants: []Variant{
			{Code: "A", WeightPerUnit: 10, DailySalesRate: 2, CurrentStock: 0},
		},
	}
	opt := NewOptimizer(DefaultOptimizerConfig())

	withResidue := opt.Optimize(b, true)
	assert.InDelta(t, 5.0, withResidue.BestDays, 0.1)
	assert.Equal(t, 10, withResidue.Amount("A"))
	assert.InDelta(t, 0.0, withResidue.ResidueWeight, weightEpsilon)

	// floor at a coverage just below 5 days leaves one unit of slack
	plain := opt.Optimize(b, false)
	assert.Equal(t, 9, plain.Amount("A"))
	assert.InDelta(t, 10.0, plain.ResidueWeight, weightEpsilon)
}

func TestOptimize_TwoVariantsWithoutResidueMinimization(t *testing.T) {
	b := Batch{
		TotalWeight: 30,
		Variants: []Variant{
			{Code: "S", WeightPerUnit: 5, DailySalesRate: 1},
			{Code: "L", WeightPerUnit: 10, DailySalesRate: 1},
		},
	}

	res := NewOptimizer(DefaultOptimizerConfig()).Optimize(b, false)

	assert.Equal(t, 1, res.Amount("S"))
	assert.Equal(t, 1, res.Amount("L"))
	assert.InDelta(t, 15.0, res.UsedWeight, weightEpsilon)
	assert.InDelta(t, 15.0, res.ResidueWeight, weightEpsilon)
	assert.Less(t, res.BestDays, 2.0)
}

func TestOptimize_TwoVariantsRedistributesLargestFirst(t *testing.T) {
	b := Batch{
		TotalWeight: 30,
		Variants: []Variant{
			{Code: "S", WeightPerUnit: 5, DailySalesRate: 1},
			{Code: "L", WeightPerUnit: 10, DailySalesRate: 1},
		},
	}

	res := NewOptimizer(DefaultOptimizerConfig()).Optimize(b, true)

	assert.Equal(t, 2, res.Amount("S"))
	assert.Equal(t, 2, res.Amount("L"))
	assert.Less(t, res.ResidueWeight, 5.0)
}

func TestOptimize_DoesNotModifyInput(t *testing.T) {
	variants := []Variant{
		{Code: "S", WeightPerUnit: 5, DailySalesRate: 1},
		{Code: "L", WeightPerUnit: 10, DailySalesRate: 1},
	}
	b := Batch{TotalWeight: 30, Variants: variants}

	NewOptimizer(DefaultOptimizerConfig()).Optimize(b, true)

	assert.Equal(t, "S", b.Variants[0].Code)
	assert.Equal(t, 5.0, b.Variants[0].WeightPerUnit)
	assert.Equal(t, 0.0, b.Variants[0].CurrentStock)
}

func TestOptimize_DegenerateInputs(t *testing.T) {
	opt := NewOptimizer(DefaultOptimizerConfig())

	empty := opt.Optimize(Batch{TotalWeight: 100}, true)
	assert.Empty(t, empty.Allocations)
	assert.Equal(t, 0.0, empty.BestDays)

	zeroWeight := opt.Optimize(Batch{
		TotalWeight: 0,
		Variants:    []Variant{{Code: "A", WeightPerUnit: 2, DailySalesRate: 3}},
	}, true)
	assert.Equal(t, 0, zeroWeight.Amount("A"))
	assert.Equal(t, 0.0, zeroWeight.UsedWeight)
}

func TestOptimize_InvalidVariantsSkipSearch(t *testing.T) {
	b := Batch{
		TotalWeight: 100,
		Variants: []Variant{
			{Code: "SELLS", WeightPerUnit: 10, DailySalesRate: 1},
			{Code: "NO_SALES", WeightPerUnit: 3, DailySalesRate: 0},
			{Code: "NEGATIVE", WeightPerUnit: 3, DailySalesRate: -1},
			{Code: "NO_WEIGHT", WeightPerUnit: 0, DailySalesRate: 4},
		},
	}
	opt := NewOptimizer(DefaultOptimizerConfig())

	res := opt.Optimize(b, false)
	assert.Equal(t, 0, res.Amount("NO_SALES"))
	assert.Equal(t, 0, res.Amount("NEGATIVE"))
	assert.Equal(t, 0, res.Amount("NO_WEIGHT"))
	assert.Greater(t, res.Amount("SELLS"), 0)

	// redistribution may reach variants without sales, never zero-weight ones
	redistributed := opt.Optimize(b, true)
	assert.Equal(t, 0, redistributed.Amount("NO_WEIGHT"))
	assert.LessOrEqual(t, redistributed.UsedWeight, b.TotalWeight+weightEpsilon)
}

func TestOptimize_CappedAtMaxCoverageDays(t *testing.T) {
	opt := NewOptimizer(OptimizerConfig{MaxCoverageDays: 10, Tolerance: 0.1})
	b := Batch{
		TotalWeight: 1000,
		Variants:    []Variant{{Code: "A", WeightPerUnit: 1, DailySalesRate: 1}},
	}

	res := opt.Optimize(b, false)

	assert.LessOrEqual(t, res.BestDays, 10.0)
	assert.Equal(t, 9, res.Amount("A"))
	assert.Greater(t, res.ResidueWeight, 900.0)
}

func TestNewOptimizer_FallsBackToDefaults(t *testing.T) {
	opt := NewOptimizer(OptimizerConfig{})
	assert.Equal(t, DefaultOptimizerConfig(), opt.cfg)
}

func TestDistributeRemainingWeight_StopsBelowSmallestWeight(t *testing.T) {
	variants := []Variant{
		{Code: "A", WeightPerUnit: 4},
		{Code: "B", WeightPerUnit: 7},
		{Code: "Z", WeightPerUnit: 0},
	}
	amounts := []int{0, 0, 0}

	left := DistributeRemainingWeight(variants, amounts, 19)

	assert.Equal(t, []int{1, 2, 0}, amounts)
	assert.InDelta(t, 1.0, left, weightEpsilon)
}

func TestDistributeRemainingWeight_NoPositiveWeights(t *testing.T) {
	amounts := []int{0}
	left := DistributeRemainingWeight([]Variant{{Code: "Z"}}, amounts, 12)

	assert.Equal(t, 12.0, left)
	assert.Equal(t, []int{0}, amounts)
}

func TestDistributeRemainingWeight_CapsUnits(t *testing.T) {
	amounts := []int{999}
	left := DistributeRemainingWeight([]Variant{{Code: "A", WeightPerUnit: 1}}, amounts, 1e20)

	assert.Equal(t, []int{rates.MaxUnits}, amounts)
	assert.Greater(t, left, 0.0)
}

func TestOptimize_HugeBudgetsStayWithinUnitLimit(t *testing.T) {
	tests := []struct {
		name string
		b    Batch
	}{
		{
			name: "residue spending",
			b:    Batch{TotalWeight: 1e20, Variants: []Variant{{Code: "A", WeightPerUnit: 1, DailySalesRate: 1}}},
		},
		{
			name: "coverage amounts",
			b:    Batch{TotalWeight: 1e30, Variants: []Variant{{Code: "A", WeightPerUnit: 1, DailySalesRate: 1e25}}},
		},
	}
	opt := NewOptimizer(DefaultOptimizerConfig())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, minimize := range []bool{false, true} {
				res := opt.Optimize(tt.b, minimize)

				amount := res.Amount("A")
				assert.GreaterOrEqual(t, amount, 0)
				assert.LessOrEqual(t, amount, rates.MaxUnits)
				assert.GreaterOrEqual(t, res.UsedWeight, 0.0)
				assert.LessOrEqual(t, res.UsedWeight, tt.b.TotalWeight)
			}
			assert.Equal(t, rates.MaxUnits, opt.Optimize(tt.b, true).Amount("A"))
		})
	}
}

func randomBatch(r *rand.Rand) Batch {
	n := 1 + r.Intn(6)
	b := Batch{TotalWeight: r.Float64() * 500}
	for i := 0; i < n; i++ {
		rate := r.Float64() * 5
		if r.Intn(5) == 0 {
			rate = 0
		}
		b.Variants = append(b.Variants, Variant{
			Code:           string(rune('A' + i)),
			WeightPerUnit:  0.5 + r.Float64()*20,
			DailySalesRate: rate,
			CurrentStock:   r.Float64() * 50,
		})
	}
	return b
}

func TestOptimize_Properties(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	opt := NewOptimizer(DefaultOptimizerConfig())

	for i := 0; i < 500; i++ {
		b := randomBatch(r)

		plain := opt.Optimize(b, false)
		minimized := opt.Optimize(b, true)

		require.LessOrEqual(t, plain.UsedWeight, b.TotalWeight+weightEpsilon, "plain over budget: %+v", b)
		require.LessOrEqual(t, minimized.UsedWeight, b.TotalWeight+weightEpsilon, "minimized over budget: %+v", b)
		require.LessOrEqual(t, minimized.ResidueWeight, plain.ResidueWeight+weightEpsilon)

		minWeight := b.Variants[0].WeightPerUnit
		for _, v := range b.Variants {
			if v.WeightPerUnit < minWeight {
				minWeight = v.WeightPerUnit
			}
		}
		if plain.ResidueWeight >= minWeight {
			require.Less(t, minimized.ResidueWeight, plain.ResidueWeight)
		}

		for j, v := range b.Variants {
			if !v.IsValid() {
				require.Equal(t, 0, plain.Allocations[j].SuggestedAmount)
			}
		}

		// Monotonic growth is only checked without residue spending. The greedy
		// pass hands slack to the heaviest variant first, so a larger budget can
		// move units between variants when minimizeResidue is on.
		bigger := b
		bigger.TotalWeight = b.TotalWeight + r.Float64()*200
		grown := opt.Optimize(bigger, false)
		require.GreaterOrEqual(t, grown.BestDays, plain.BestDays)
		for j := range b.Variants {
			require.GreaterOrEqual(t, grown.Allocations[j].SuggestedAmount, plain.Allocations[j].SuggestedAmount)
		}
	}
}

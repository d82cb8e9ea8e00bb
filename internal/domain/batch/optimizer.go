package batch

import (
	"math"
	"sort"

	"mfgplan/internal/domain/rates"
)

// OptimizerConfig holds the search bounds.
type OptimizerConfig struct {
	// MaxCoverageDays caps the search. Optima beyond it are returned as the cap.
	MaxCoverageDays float64

	// Tolerance stops the bisection once the bracket is this narrow.
	Tolerance float64
}

// DefaultOptimizerConfig returns the production search bounds.
func DefaultOptimizerConfig() OptimizerConfig {
	return OptimizerConfig{
		MaxCoverageDays: 1000,
		Tolerance:       0.1,
	}
}

// Optimizer finds the uniform coverage a material budget can buy.
// It holds no mutable state and is safe for concurrent use.
type Optimizer struct {
	cfg OptimizerConfig
}

// NewOptimizer creates an optimizer. Non-positive settings fall back to defaults.
func NewOptimizer(cfg OptimizerConfig) *Optimizer {
	def := DefaultOptimizerConfig()
	if cfg.MaxCoverageDays <= 0 {
		cfg.MaxCoverageDays = def.MaxCoverageDays
	}
	if cfg.Tolerance <= 0 {
		cfg.Tolerance = def.Tolerance
	}
	return &Optimizer{cfg: cfg}
}

// Optimize sizes the batch. The input batch is not modified.
//
// The search accounts required weight with ceil (never over the budget), the final
// amounts use floor, so a small slack can remain. With minimizeResidue that slack is
// handed out by DistributeRemainingWeight.
func (o *Optimizer) Optimize(b Batch, minimizeResidue bool) Result {
	amounts := make([]int, len(b.Variants))

	valid := make([]int, 0, len(b.Variants))
	for i, v := range b.Variants {
		if v.IsValid() {
			valid = append(valid, i)
		}
	}

	var bestDays float64
	if len(valid) > 0 {
		bestDays = o.searchCoverageDays(b, valid)
		for _, i := range valid {
			v := b.Variants[i]
			amounts[i] = rates.WholeUnits(bestDays*v.DailySalesRate - v.CurrentStock)
		}
	}

	if minimizeResidue {
		remaining := b.TotalWeight - usedWeight(b.Variants, amounts)
		if remaining > 0 {
			DistributeRemainingWeight(b.Variants, amounts, remaining)
		}
	}

	used := usedWeight(b.Variants, amounts)
	res := Result{
		BestDays:      bestDays,
		Allocations:   make([]VariantAllocation, len(b.Variants)),
		UsedWeight:    used,
		ResidueWeight: b.TotalWeight - used,
	}
	for i, v := range b.Variants {
		res.Allocations[i] = VariantAllocation{Code: v.Code, SuggestedAmount: amounts[i]}
	}
	return res
}

// searchCoverageDays bisects [0, MaxCoverageDays] for the largest feasible coverage.
func (o *Optimizer) searchCoverageDays(b Batch, valid []int) float64 {
	low, high := 0.0, o.cfg.MaxCoverageDays
	best := 0.0

	for high-low > o.cfg.Tolerance {
		mid := (low + high) / 2
		if requiredWeight(b.Variants, valid, mid) <= b.TotalWeight {
			best = mid
			low = mid
		} else {
			high = mid
		}
	}

	return best
}

// requiredWeight is the pessimistic (ceil) material needed to reach days of coverage.
func requiredWeight(variants []Variant, valid []int, days float64) float64 {
	var total float64
	for _, i := range valid {
		v := variants[i]
		units := math.Ceil(math.Max(days*v.DailySalesRate-v.CurrentStock, 0))
		total += units * v.WeightPerUnit
	}
	return total
}

func usedWeight(variants []Variant, amounts []int) float64 {
	var total float64
	for i, v := range variants {
		if v.WeightPerUnit <= 0 {
			continue
		}
		total += float64(amounts[i]) * v.WeightPerUnit
	}
	return total
}

// DistributeRemainingWeight adds whole units to amounts, largest packaging first,
// until no variant fits into the remaining weight. Variants without a positive
// weight are skipped and no amount grows beyond rates.MaxUnits. Returns the
// weight left over.
func DistributeRemainingWeight(variants []Variant, amounts []int, remaining float64) float64 {
	order := make([]int, 0, len(variants))
	minWeight := math.Inf(1)
	for i, v := range variants {
		if v.WeightPerUnit <= 0 {
			continue
		}
		order = append(order, i)
		minWeight = math.Min(minWeight, v.WeightPerUnit)
	}
	if len(order) == 0 {
		return remaining
	}

	sort.SliceStable(order, func(a, b int) bool {
		return variants[order[a]].WeightPerUnit > variants[order[b]].WeightPerUnit
	})

	for _, i := range order {
		if remaining < minWeight {
			break
		}
		w := variants[i].WeightPerUnit
		additional := math.Min(math.Floor(remaining/w), float64(rates.MaxUnits-amounts[i]))
		if additional > 0 {
			amounts[i] += int(additional)
			remaining -= additional * w
		}
	}

	return remaining
}

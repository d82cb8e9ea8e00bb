package planning

import (
	"fmt"
	"math"
	"sort"

	"mfgplan/internal/core/apperror"
	"mfgplan/internal/core/types"
	"mfgplan/internal/domain/rates"
)

// Notes attached to items.
const (
	NoteFixed             = "Fixed by user"
	NoteReducedToFit      = "Reduced to fit remaining volume"
	NoteNoVolumeRemaining = "No volume remaining"
	NoteNoSalesData       = "No sales data"
)

// Planner runs the allocation strategies over already loaded items.
// It holds no mutable state and is safe for concurrent use.
type Planner struct {
	cfg Config
}

// NewPlanner creates a planner.
func NewPlanner(cfg Config) *Planner {
	return &Planner{cfg: cfg.withDefaults()}
}

// Allocate computes the plan for items sharing availableVolume. The input slice is
// not modified; the returned items keep the input order.
//
// Fixed items are served first with exactly their fixed quantity. The remaining
// volume goes to the other items through the strategy's control mode.
func (p *Planner) Allocate(availableVolume float64, items []Item, s Strategy) ([]Item, Summary, error) {
	if err := s.Validate(); err != nil {
		return nil, Summary{}, err
	}

	out := make([]Item, len(items))
	copy(out, items)

	var fixed, flexible []*Item
	for i := range out {
		if out[i].IsFixed {
			fixed = append(fixed, &out[i])
		} else {
			flexible = append(flexible, &out[i])
		}
	}

	usedByFixed, err := fixedVolume(fixed)
	if err != nil {
		return nil, Summary{}, err
	}

	remaining := availableVolume - usedByFixed
	if remaining < 0 {
		return nil, Summary{}, apperror.NewInvalidOperation("fixed products require more volume than is available").
			WithDetail("requiredVolume", usedByFixed).
			WithDetail("availableVolume", availableVolume)
	}

	if err := p.applyFixed(fixed); err != nil {
		return nil, Summary{}, err
	}

	p.orderItems(flexible, s.Ordering)

	switch s.Mode {
	case ModeMmqMultiplier:
		p.allocateByMmq(flexible, s.MmqMultiplier, remaining)
	case ModeTotalWeight:
		p.allocateByTotalWeight(flexible, s.TotalWeightToUse, usedByFixed, remaining)
	case ModeTargetDaysCoverage:
		p.allocateByTargetDays(flexible, s.TargetDaysCoverage, remaining)
	}

	for _, it := range flexible {
		it.WasOptimized = true
		p.finalize(it)
	}

	return out, summarize(out, availableVolume), nil
}

// Validate checks the mode and its parameter.
func (s Strategy) Validate() error {
	if !s.Mode.IsValid() {
		return apperror.NewValidation("unknown control mode").
			WithDetail("field", "controlMode").
			WithDetail("value", string(s.Mode))
	}
	if !s.Ordering.IsValid() {
		return apperror.NewValidation("unknown ordering").
			WithDetail("field", "ordering").
			WithDetail("value", string(s.Ordering))
	}

	switch s.Mode {
	case ModeMmqMultiplier:
		if s.MmqMultiplier <= 0 {
			return apperror.NewValidation("MMQ multiplier must be positive").
				WithDetail("field", "mmqMultiplier")
		}
	case ModeTotalWeight:
		if s.TotalWeightToUse < 0 {
			return apperror.NewValidation("total weight cannot be negative").
				WithDetail("field", "totalWeightToUse")
		}
	case ModeTargetDaysCoverage:
		if s.TargetDaysCoverage <= 0 {
			return apperror.NewValidation("target days of coverage must be positive").
				WithDetail("field", "targetDaysCoverage")
		}
	}

	return nil
}

// fixedVolume validates the fixed quantities and returns the volume they take.
// The sum is kept in float so oversized quantities surface as a shortage.
func fixedVolume(items []*Item) (float64, error) {
	var used float64
	for _, it := range items {
		if it.UserFixedQuantity == nil {
			return 0, apperror.NewValidation("fixed product has no quantity").
				WithDetail("productCode", it.ProductCode)
		}
		if err := validateFixedQuantity(it.ProductCode, *it.UserFixedQuantity); err != nil {
			return 0, err
		}
		used += *it.UserFixedQuantity * it.VolumePerUnit
	}
	return used, nil
}

// applyFixed sets fixed items to their user quantity.
func (p *Planner) applyFixed(items []*Item) error {
	for _, it := range items {
		qty := *it.UserFixedQuantity
		if qty > rates.MaxUnits {
			return apperror.NewValidation("fixed quantity is too large").
				WithDetail("productCode", it.ProductCode).
				WithDetail("value", qty).
				WithDetail("max", rates.MaxUnits)
		}

		setUnits(it, int(qty))
		it.WasOptimized = false
		it.Note = NoteFixed
		p.finalize(it)
	}
	return nil
}

func validateFixedQuantity(code string, qty float64) error {
	if qty < 0 || math.IsNaN(qty) || math.IsInf(qty, 0) || qty != math.Trunc(qty) {
		return apperror.NewValidation("fixed quantity must be a non-negative whole number").
			WithDetail("productCode", code).
			WithDetail("value", qty)
	}
	return nil
}

// allocateByMmq gives each item floor(MMQ * multiplier) units, first come first served.
func (p *Planner) allocateByMmq(items []*Item, multiplier, remaining float64) {
	note := fmt.Sprintf("MMQ x %.2f", multiplier)
	for _, it := range items {
		target := math.Max(math.Floor(float64(it.MinimalManufactureQuantity)*multiplier), 0)
		it.Note = note
		remaining = take(it, target, remaining)
	}
}

// allocateByTargetDays brings each selling item up to targetDays of coverage, first come first served.
func (p *Planner) allocateByTargetDays(items []*Item, targetDays, remaining float64) {
	note := fmt.Sprintf("Target %.0f days", targetDays)
	for _, it := range items {
		if !p.hasSales(it) {
			it.Note = NoteNoSalesData
			setUnits(it, 0)
			continue
		}
		it.Note = note
		target := rates.UnitsForCoverage(it.DailySalesRate, it.CurrentStock, targetDays)
		remaining = take(it, target, remaining)
	}
}

// allocateByTotalWeight splits totalWeight (less the fixed volume, never more than
// what is left) across selling items in proportion to 1 / current coverage.
func (p *Planner) allocateByTotalWeight(items []*Item, totalWeight, usedByFixed, remaining float64) {
	available := math.Min(totalWeight-usedByFixed, remaining)
	if available <= 0 {
		for _, it := range items {
			it.Note = NoteNoVolumeRemaining
			setUnits(it, 0)
		}
		return
	}

	weights := make([]float64, len(items))
	var sum float64
	for i, it := range items {
		if !p.hasSales(it) {
			continue
		}
		weights[i] = 1 / math.Max(it.CurrentDaysCoverage, p.cfg.CoverageFloorDays)
		sum += weights[i]
	}

	for i, it := range items {
		if weights[i] == 0 || sum == 0 {
			it.Note = NoteNoSalesData
			setUnits(it, 0)
			continue
		}
		share := weights[i] / sum
		budget := available * share
		it.Note = fmt.Sprintf("Share %.1f%%", share*100)
		setUnits(it, unitsWithin(budget, it.VolumePerUnit))
	}
}

// take assigns target units, scaled down to what fits in remaining, and returns
// the volume left for the next item. target is capped before it becomes an int.
func take(it *Item, target, remaining float64) float64 {
	units := rates.WholeUnits(target)
	if target > 0 && target*it.VolumePerUnit > remaining {
		units = unitsWithin(remaining, it.VolumePerUnit)
		it.Note = NoteReducedToFit
	}
	setUnits(it, units)
	return remaining - it.TotalVolumeRequired
}

func unitsWithin(volume, perUnit float64) int {
	if volume <= 0 || perUnit <= 0 {
		return 0
	}
	return rates.WholeUnits(volume / perUnit)
}

func setUnits(it *Item, units int) {
	it.RecommendedUnits = units
	it.TotalVolumeRequired = float64(units) * it.VolumePerUnit
}

func (p *Planner) hasSales(it *Item) bool {
	return it.DailySalesRate >= p.cfg.MinDailySalesRate && it.DailySalesRate > 0
}

func (p *Planner) finalize(it *Item) {
	it.FutureStock = it.CurrentStock + float64(it.RecommendedUnits)
	it.FutureDaysCoverage = rates.FutureCoverage(it.FutureStock, it.DailySalesRate, p.cfg.MinDailySalesRate)
}

// orderItems sorts the flexible items in place by the requested priority.
func (p *Planner) orderItems(items []*Item, ordering Ordering) {
	switch ordering {
	case OrderByProductCode:
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].ProductCode < items[j].ProductCode
		})
	case OrderByUrgency:
		sort.SliceStable(items, func(i, j int) bool {
			a, b := p.urgencyKey(items[i]), p.urgencyKey(items[j])
			if a != b {
				return a < b
			}
			return items[i].ProductCode < items[j].ProductCode
		})
	}
}

// urgencyKey ranks items without sales last.
func (p *Planner) urgencyKey(it *Item) float64 {
	if !p.hasSales(it) {
		return math.Inf(1)
	}
	return it.CurrentDaysCoverage
}

func summarize(items []Item, availableVolume float64) Summary {
	s := Summary{
		TotalProducts:        len(items),
		TotalVolumeAvailable: availableVolume,
	}

	coverages := make([]types.Coverage, 0, len(items))
	for _, it := range items {
		if it.IsFixed {
			s.FixedProducts++
		}
		if it.WasOptimized {
			s.OptimizedProducts++
		}
		s.TotalVolumeUsed += it.TotalVolumeRequired
		coverages = append(coverages, it.FutureDaysCoverage)
	}

	if availableVolume > 0 {
		s.VolumeUtilizationPercent = s.TotalVolumeUsed / availableVolume * 100
	}
	s.AchievedAverageCoverage, _ = types.AverageFinite(coverages)

	return s
}

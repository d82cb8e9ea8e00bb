// Package batch sizes a production batch of one product family so that every
// packaging variant reaches the same days of coverage.
package batch

import (
	"time"

	"mfgplan/internal/core/types"
)

// Variant is one sellable packaging size of a product family.
type Variant struct {
	Code     string
	Name     string
	SizeCode string

	// WeightPerUnit is the material consumed by one produced unit. Must be > 0.
	WeightPerUnit float64

	// DailySalesRate in pieces per day. Variants with rate <= 0 do not drive the search.
	DailySalesRate float64

	CurrentStock float64
}

// IsValid reports whether the variant takes part in the coverage search.
func (v Variant) IsValid() bool {
	return v.WeightPerUnit > 0 && v.DailySalesRate > 0
}

// Batch is the material budget and the variants competing for it.
type Batch struct {
	Name        string
	TotalWeight float64
	Variants    []Variant
}

// VariantAllocation is the optimizer's decision for one variant.
type VariantAllocation struct {
	Code            string
	SuggestedAmount int
}

// Result is the outcome of Optimizer.Optimize. Allocations follow the input variant order.
type Result struct {
	// BestDays is the largest uniform coverage found by the search.
	BestDays      float64
	Allocations   []VariantAllocation
	UsedWeight    float64
	ResidueWeight float64
}

// Amount returns the suggested amount for a variant code, 0 if unknown.
func (r Result) Amount(code string) int {
	for _, a := range r.Allocations {
		if a.Code == code {
			return a.SuggestedAmount
		}
	}
	return 0
}

// --- Service level types ---

// Request asks for a batch of a product family sized to a total material weight.
type Request struct {
	ProductFamily   string
	TotalWeight     float64
	FromDate        *time.Time
	ToDate          *time.Time
	MinimizeResidue *bool
}

// VariantPlan is a variant with the computed production suggestion.
type VariantPlan struct {
	Variant

	SuggestedAmount     int
	RequiredWeight      float64
	CurrentDaysCoverage float64
	FutureDaysCoverage  types.Coverage
}

// BatchResult is the response of Service.CalculateBySize.
type BatchResult struct {
	ProductFamily   string
	TotalWeight     float64
	UsedWeight      float64
	ResidueWeight   float64
	CoverageDays    float64
	MinimizeResidue bool
	FromDate        time.Time
	ToDate          time.Time
	Variants        []VariantPlan
}

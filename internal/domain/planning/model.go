// Package planning splits the available stock of a semiproduct across the finished
// products made from it.
package planning

import (
	"time"

	"mfgplan/internal/core/types"
)

// ControlMode selects the allocation strategy for products that are not fixed.
type ControlMode string

const (
	// ModeMmqMultiplier produces a multiple of each product's minimal manufacture quantity.
	ModeMmqMultiplier ControlMode = "MmqMultiplier"
	// ModeTotalWeight spreads a total weight in proportion to inverse coverage.
	ModeTotalWeight ControlMode = "TotalWeight"
	// ModeTargetDaysCoverage tops every product up to a number of days of coverage.
	ModeTargetDaysCoverage ControlMode = "TargetDaysCoverage"
)

// IsValid reports whether m is a known mode.
func (m ControlMode) IsValid() bool {
	switch m {
	case ModeMmqMultiplier, ModeTotalWeight, ModeTargetDaysCoverage:
		return true
	}
	return false
}

// Ordering decides which flexible product gets first access to scarce volume
// in the sequential strategies.
type Ordering string

const (
	// OrderAsListed keeps bill-of-materials order. This is the default.
	OrderAsListed Ordering = "AsListed"
	// OrderByProductCode sorts by product code ascending.
	OrderByProductCode Ordering = "ProductCode"
	// OrderByUrgency serves the lowest current coverage first.
	OrderByUrgency Ordering = "Urgency"
)

// IsValid reports whether o is a known ordering. Empty means OrderAsListed.
func (o Ordering) IsValid() bool {
	switch o {
	case "", OrderAsListed, OrderByProductCode, OrderByUrgency:
		return true
	}
	return false
}

// ProductConstraint pins the quantity of one product.
type ProductConstraint struct {
	ProductCode   string
	IsFixed       bool
	FixedQuantity *float64
}

// Strategy is the allocation part of a request.
type Strategy struct {
	Mode               ControlMode
	MmqMultiplier      float64
	TotalWeightToUse   float64
	TargetDaysCoverage float64
	Ordering           Ordering
}

// Request asks for a production plan for one semiproduct.
type Request struct {
	SemiproductCode    string
	FromDate           *time.Time
	ToDate             *time.Time
	ProductConstraints []ProductConstraint
	Strategy
}

// Semiproduct is the material being split.
type Semiproduct struct {
	Code           string
	Name           string
	AvailableStock float64
}

// Item is one finished product's planning row.
type Item struct {
	ProductCode string
	ProductName string

	CurrentStock        float64
	DailySalesRate      float64
	CurrentDaysCoverage float64

	// VolumePerUnit is the semiproduct consumed per produced unit.
	VolumePerUnit              float64
	MinimalManufactureQuantity int

	IsFixed           bool
	UserFixedQuantity *float64

	// Outputs
	RecommendedUnits    int
	TotalVolumeRequired float64
	FutureStock         float64
	FutureDaysCoverage  types.Coverage
	WasOptimized        bool
	Note                string
}

// Summary aggregates a plan.
type Summary struct {
	TotalProducts            int
	FixedProducts            int
	OptimizedProducts        int
	TotalVolumeUsed          float64
	TotalVolumeAvailable     float64
	VolumeUtilizationPercent float64
	AchievedAverageCoverage  float64
}

// Result is the computed plan.
type Result struct {
	Semiproduct Semiproduct
	FromDate    time.Time
	ToDate      time.Time
	ControlMode ControlMode
	Ordering    Ordering
	Items       []Item
	Summary     Summary
}

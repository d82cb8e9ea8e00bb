package dto

import (
	"mfgplan/internal/domain/planning"
)

// ProductConstraintRequest pins the quantity of one product.
type ProductConstraintRequest struct {
	ProductCode   string   `json:"productCode" binding:"required"`
	IsFixed       bool     `json:"isFixed"`
	FixedQuantity *float64 `json:"fixedQuantity"`
}

// BatchPlanRequest is the body of POST /manufacture/batch-planning/calculate.
type BatchPlanRequest struct {
	SemiproductCode    string                     `json:"semiproductCode" binding:"required"`
	FromDate           *string                    `json:"fromDate"`
	ToDate             *string                    `json:"toDate"`
	ProductConstraints []ProductConstraintRequest `json:"productConstraints" binding:"dive"`
	ControlMode        string                     `json:"controlMode" binding:"required"`
	MmqMultiplier      float64                    `json:"mmqMultiplier"`
	TotalWeightToUse   float64                    `json:"totalWeightToUse"`
	TargetDaysCoverage float64                    `json:"targetDaysCoverage"`
	Ordering           string                     `json:"ordering"`
}

// ToDomain converts the request into a planning request.
func (r *BatchPlanRequest) ToDomain() (planning.Request, error) {
	from, to, err := parseRange(r.FromDate, r.ToDate)
	if err != nil {
		return planning.Request{}, err
	}

	constraints := make([]planning.ProductConstraint, len(r.ProductConstraints))
	for i, c := range r.ProductConstraints {
		constraints[i] = planning.ProductConstraint{
			ProductCode:   c.ProductCode,
			IsFixed:       c.IsFixed,
			FixedQuantity: c.FixedQuantity,
		}
	}

	return planning.Request{
		SemiproductCode:    r.SemiproductCode,
		FromDate:           from,
		ToDate:             to,
		ProductConstraints: constraints,
		Strategy: planning.Strategy{
			Mode:               planning.ControlMode(r.ControlMode),
			MmqMultiplier:      r.MmqMultiplier,
			TotalWeightToUse:   r.TotalWeightToUse,
			TargetDaysCoverage: r.TargetDaysCoverage,
			Ordering:           planning.Ordering(r.Ordering),
		},
	}, nil
}

// SemiproductResponse describes the split material.
type SemiproductResponse struct {
	Code           string  `json:"code"`
	Name           string  `json:"name"`
	AvailableStock float64 `json:"availableStock"`
}

// PlanItemResponse is one product row of a plan.
type PlanItemResponse struct {
	ProductCode                string   `json:"productCode"`
	ProductName                string   `json:"productName"`
	CurrentStock               float64  `json:"currentStock"`
	DailySalesRate             float64  `json:"dailySalesRate"`
	CurrentDaysCoverage        float64  `json:"currentDaysCoverage"`
	VolumePerUnit              float64  `json:"volumePerUnit"`
	MinimalManufactureQuantity int      `json:"minimalManufactureQuantity"`
	IsFixed                    bool     `json:"isFixed"`
	UserFixedQuantity          *float64 `json:"userFixedQuantity,omitempty"`
	RecommendedUnits           int      `json:"recommendedUnits"`
	TotalVolumeRequired        float64  `json:"totalVolumeRequired"`
	FutureStock                float64  `json:"futureStock"`
	FutureDaysCoverage         float64  `json:"futureDaysCoverage"`
	WasOptimized               bool     `json:"wasOptimized"`
	Note                       string   `json:"note,omitempty"`
}

// PlanSummaryResponse aggregates a plan.
type PlanSummaryResponse struct {
	TotalProducts            int     `json:"totalProducts"`
	FixedProducts            int     `json:"fixedProducts"`
	OptimizedProducts        int     `json:"optimizedProducts"`
	TotalVolumeUsed          float64 `json:"totalVolumeUsed"`
	TotalVolumeAvailable     float64 `json:"totalVolumeAvailable"`
	VolumeUtilizationPercent float64 `json:"volumeUtilizationPercent"`
	AchievedAverageCoverage  float64 `json:"achievedAverageCoverage"`
}

// BatchPlanResponse is the computed plan.
type BatchPlanResponse struct {
	Semiproduct SemiproductResponse `json:"semiproduct"`
	FromDate    string              `json:"fromDate"`
	ToDate      string              `json:"toDate"`
	ControlMode string              `json:"controlMode"`
	Ordering    string              `json:"ordering"`
	Items       []PlanItemResponse  `json:"items"`
	Summary     PlanSummaryResponse `json:"summary"`
}

// FromPlanResult builds the response. infiniteDays replaces unbounded coverage.
func FromPlanResult(res *planning.Result, infiniteDays float64) BatchPlanResponse {
	items := make([]PlanItemResponse, len(res.Items))
	for i, it := range res.Items {
		items[i] = PlanItemResponse{
			ProductCode:                it.ProductCode,
			ProductName:                it.ProductName,
			CurrentStock:               it.CurrentStock,
			DailySalesRate:             it.DailySalesRate,
			CurrentDaysCoverage:        it.CurrentDaysCoverage,
			VolumePerUnit:              it.VolumePerUnit,
			MinimalManufactureQuantity: it.MinimalManufactureQuantity,
			IsFixed:                    it.IsFixed,
			UserFixedQuantity:          it.UserFixedQuantity,
			RecommendedUnits:           it.RecommendedUnits,
			TotalVolumeRequired:        it.TotalVolumeRequired,
			FutureStock:                it.FutureStock,
			FutureDaysCoverage:         CoverageDays(it.FutureDaysCoverage, infiniteDays),
			WasOptimized:               it.WasOptimized,
			Note:                       it.Note,
		}
	}

	s := res.Summary
	return BatchPlanResponse{
		Semiproduct: SemiproductResponse{
			Code:           res.Semiproduct.Code,
			Name:           res.Semiproduct.Name,
			AvailableStock: res.Semiproduct.AvailableStock,
		},
		FromDate:    formatDate(res.FromDate),
		ToDate:      formatDate(res.ToDate),
		ControlMode: string(res.ControlMode),
		Ordering:    string(res.Ordering),
		Items:       items,
		Summary: PlanSummaryResponse{
			TotalProducts:            s.TotalProducts,
			FixedProducts:            s.FixedProducts,
			OptimizedProducts:        s.OptimizedProducts,
			TotalVolumeUsed:          s.TotalVolumeUsed,
			TotalVolumeAvailable:     s.TotalVolumeAvailable,
			VolumeUtilizationPercent: s.VolumeUtilizationPercent,
			AchievedAverageCoverage:  s.AchievedAverageCoverage,
		},
	}
}

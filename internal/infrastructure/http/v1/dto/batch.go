package dto

import (
	"mfgplan/internal/domain/batch"
)

// BatchBySizeRequest is the body of POST /manufacture/batch/calculate-by-size.
type BatchBySizeRequest struct {
	ProductFamily   string  `json:"productFamily" binding:"required"`
	TotalWeight     float64 `json:"totalWeight"`
	FromDate        *string `json:"fromDate"`
	ToDate          *string `json:"toDate"`
	MinimizeResidue *bool   `json:"minimizeResidue"`
}

// ToDomain converts the request into a batch request.
func (r *BatchBySizeRequest) ToDomain() (batch.Request, error) {
	from, to, err := parseRange(r.FromDate, r.ToDate)
	if err != nil {
		return batch.Request{}, err
	}
	return batch.Request{
		ProductFamily:   r.ProductFamily,
		TotalWeight:     r.TotalWeight,
		FromDate:        from,
		ToDate:          to,
		MinimizeResidue: r.MinimizeResidue,
	}, nil
}

// VariantPlanResponse is one packaging size of the batch.
type VariantPlanResponse struct {
	Code                string  `json:"code"`
	Name                string  `json:"name"`
	SizeCode            string  `json:"sizeCode"`
	WeightPerUnit       float64 `json:"weightPerUnit"`
	DailySalesRate      float64 `json:"dailySalesRate"`
	CurrentStock        float64 `json:"currentStock"`
	SuggestedAmount     int     `json:"suggestedAmount"`
	RequiredWeight      float64 `json:"requiredWeight"`
	CurrentDaysCoverage float64 `json:"currentDaysCoverage"`
	FutureDaysCoverage  float64 `json:"futureDaysCoverage"`
}

// BatchBySizeResponse is the optimized batch.
type BatchBySizeResponse struct {
	ProductFamily   string                `json:"productFamily"`
	TotalWeight     float64               `json:"totalWeight"`
	UsedWeight      float64               `json:"usedWeight"`
	ResidueWeight   float64               `json:"residueWeight"`
	CoverageDays    float64               `json:"coverageDays"`
	MinimizeResidue bool                  `json:"minimizeResidue"`
	FromDate        string                `json:"fromDate"`
	ToDate          string                `json:"toDate"`
	Variants        []VariantPlanResponse `json:"variants"`
}

// FromBatchResult builds the response. infiniteDays replaces unbounded coverage.
func FromBatchResult(res *batch.BatchResult, infiniteDays float64) BatchBySizeResponse {
	variants := make([]VariantPlanResponse, len(res.Variants))
	for i, v := range res.Variants {
		variants[i] = VariantPlanResponse{
			Code:                v.Code,
			Name:                v.Name,
			SizeCode:            v.SizeCode,
			WeightPerUnit:       v.WeightPerUnit,
			DailySalesRate:      v.DailySalesRate,
			CurrentStock:        v.CurrentStock,
			SuggestedAmount:     v.SuggestedAmount,
			RequiredWeight:      v.RequiredWeight,
			CurrentDaysCoverage: v.CurrentDaysCoverage,
			FutureDaysCoverage:  CoverageDays(v.FutureDaysCoverage, infiniteDays),
		}
	}

	return BatchBySizeResponse{
		ProductFamily:   res.ProductFamily,
		TotalWeight:     res.TotalWeight,
		UsedWeight:      res.UsedWeight,
		ResidueWeight:   res.ResidueWeight,
		CoverageDays:    res.CoverageDays,
		MinimizeResidue: res.MinimizeResidue,
		FromDate:        formatDate(res.FromDate),
		ToDate:          formatDate(res.ToDate),
		Variants:        variants,
	}
}

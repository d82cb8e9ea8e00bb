package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"mfgplan/internal/domain/batch"
	"mfgplan/internal/domain/planning"
	"mfgplan/internal/infrastructure/http/v1/dto"
)

// PlanCalculator computes semiproduct allocation plans.
type PlanCalculator interface {
	CalculateBatchPlan(ctx context.Context, req planning.Request) (*planning.Result, error)
}

// BatchCalculator computes batches split by packaging size.
type BatchCalculator interface {
	CalculateBySize(ctx context.Context, req batch.Request) (*batch.BatchResult, error)
}

var (
	_ PlanCalculator  = (*planning.Service)(nil)
	_ BatchCalculator = (*batch.Service)(nil)
)

// ManufactureHandler handles HTTP requests for production planning.
type ManufactureHandler struct {
	*BaseHandler
	plans   PlanCalculator
	batches BatchCalculator

	// infiniteCoverageDays replaces unbounded coverage in responses.
	infiniteCoverageDays float64
}

// NewManufactureHandler creates a new manufacture handler.
func NewManufactureHandler(base *BaseHandler, plans PlanCalculator, batches BatchCalculator, infiniteCoverageDays float64) *ManufactureHandler {
	return &ManufactureHandler{
		BaseHandler:          base,
		plans:                plans,
		batches:              batches,
		infiniteCoverageDays: infiniteCoverageDays,
	}
}

// CalculateBatchPlan handles POST /manufacture/batch-planning/calculate
func (h *ManufactureHandler) CalculateBatchPlan(c *gin.Context) {
	var req dto.BatchPlanRequest
	if !h.BindJSON(c, &req) {
		return
	}

	domainReq, err := req.ToDomain()
	if err != nil {
		h.Error(c, err)
		return
	}

	res, err := h.plans.CalculateBatchPlan(c.Request.Context(), domainReq)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromPlanResult(res, h.infiniteCoverageDays))
}

// CalculateBySize handles POST /manufacture/batch/calculate-by-size
func (h *ManufactureHandler) CalculateBySize(c *gin.Context) {
	var req dto.BatchBySizeRequest
	if !h.BindJSON(c, &req) {
		return
	}

	domainReq, err := req.ToDomain()
	if err != nil {
		h.Error(c, err)
		return
	}

	res, err := h.batches.CalculateBySize(c.Request.Context(), domainReq)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromBatchResult(res, h.infiniteCoverageDays))
}

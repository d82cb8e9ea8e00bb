package batch

import (
	"context"
	"fmt"
	"time"

	"mfgplan/internal/core/apperror"
	"mfgplan/internal/core/tx"
	"mfgplan/internal/domain/rates"
	"mfgplan/pkg/logger"
)

// Config configures the batch service.
type Config struct {
	Optimizer         OptimizerConfig
	MinDailySalesRate float64
	SalesWindowDays   int
}

// DefaultConfig returns production defaults.
func DefaultConfig() Config {
	return Config{
		Optimizer:         DefaultOptimizerConfig(),
		MinDailySalesRate: 1e-6,
		SalesWindowDays:   30,
	}
}

// Service assembles a batch from catalog data and runs the optimizer over it.
type Service struct {
	repo      Repository
	sales     SalesRepository
	optimizer *Optimizer
	cfg       Config
	now       func() time.Time
}

// NewService creates a new batch service.
func NewService(repo Repository, sales SalesRepository, cfg Config) *Service {
	if cfg.SalesWindowDays <= 0 {
		cfg.SalesWindowDays = DefaultConfig().SalesWindowDays
	}
	return &Service{
		repo:      repo,
		sales:     sales,
		optimizer: NewOptimizer(cfg.Optimizer),
		cfg:       cfg,
		now:       time.Now,
	}
}

// CalculateBySize suggests production amounts for every packaging size of a family.
func (s *Service) CalculateBySize(ctx context.Context, req Request) (*BatchResult, error) {
	if req.ProductFamily == "" {
		return nil, apperror.NewValidation("product family is required").
			WithDetail("field", "productFamily")
	}
	if req.TotalWeight < 0 {
		return nil, apperror.NewValidation("total weight cannot be negative").
			WithDetail("field", "totalWeight")
	}

	from, to := rates.SalesWindow(req.FromDate, req.ToDate, s.now(), s.cfg.SalesWindowDays)
	if from.After(to) {
		return nil, apperror.NewValidation("fromDate must be before toDate")
	}

	minimize := true
	if req.MinimizeResidue != nil {
		minimize = *req.MinimizeResidue
	}

	var variants []Variant
	err := tx.RunReadOnly(ctx, func(ctx context.Context) error {
		var err error
		variants, err = s.loadVariants(ctx, req.ProductFamily, from, to)
		return err
	})
	if err != nil {
		return nil, err
	}

	b := Batch{Name: req.ProductFamily, TotalWeight: req.TotalWeight, Variants: variants}
	res := s.optimizer.Optimize(b, minimize)

	result := &BatchResult{
		ProductFamily:   req.ProductFamily,
		TotalWeight:     req.TotalWeight,
		UsedWeight:      res.UsedWeight,
		ResidueWeight:   res.ResidueWeight,
		CoverageDays:    res.BestDays,
		MinimizeResidue: minimize,
		FromDate:        from,
		ToDate:          to,
		Variants:        make([]VariantPlan, len(variants)),
	}
	for i, v := range variants {
		amount := res.Allocations[i].SuggestedAmount
		result.Variants[i] = VariantPlan{
			Variant:             v,
			SuggestedAmount:     amount,
			RequiredWeight:      float64(amount) * v.WeightPerUnit,
			CurrentDaysCoverage: rates.CurrentCoverage(v.CurrentStock, v.DailySalesRate, s.cfg.MinDailySalesRate),
			FutureDaysCoverage:  rates.FutureCoverage(v.CurrentStock+float64(amount), v.DailySalesRate, s.cfg.MinDailySalesRate),
		}
	}

	logger.Info(ctx, "batch calculated",
		"product_family", req.ProductFamily,
		"variants", len(variants),
		"coverage_days", res.BestDays,
		"residue_weight", res.ResidueWeight,
	)

	return result, nil
}

// loadVariants reads family members and their sales rates. Members without a
// positive net weight cannot be sized and are left out.
func (s *Service) loadVariants(ctx context.Context, family string, from, to time.Time) ([]Variant, error) {
	members, err := s.repo.ListFamilyVariants(ctx, family)
	if err != nil {
		return nil, fmt.Errorf("list family variants: %w", err)
	}
	if len(members) == 0 {
		return nil, apperror.NewNotFound("product family", family)
	}

	variants := make([]Variant, 0, len(members))
	for _, m := range members {
		if m.NetWeight <= 0 {
			logger.Warn(ctx, "variant skipped",
				"product_code", m.Code,
				"reason", "net weight is not positive",
			)
			continue
		}

		sold, err := s.sales.GetUnitsSold(ctx, m.Code, from, to)
		if err != nil {
			return nil, fmt.Errorf("units sold for %s: %w", m.Code, err)
		}

		rate := rates.DailySalesRate(sold, from, to)
		if rate < s.cfg.MinDailySalesRate {
			rate = 0
		}

		variants = append(variants, Variant{
			Code:           m.Code,
			Name:           m.Name,
			SizeCode:       m.SizeCode,
			WeightPerUnit:  m.NetWeight,
			DailySalesRate: rate,
			CurrentStock:   m.Stock,
		})
	}

	return variants, nil
}

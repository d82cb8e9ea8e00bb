package planning

import (
	"context"
	"fmt"
	"time"

	"mfgplan/internal/core/apperror"
	"mfgplan/internal/core/tx"
	"mfgplan/internal/domain/rates"
	"mfgplan/pkg/logger"
)

// Config configures the planner and the plan service.
type Config struct {
	// MinDailySalesRate is the smallest rate treated as a selling product.
	MinDailySalesRate float64
	SalesWindowDays   int
	// CoverageFloorDays bounds the inverse-coverage weight of products with no stock.
	CoverageFloorDays float64
}

// DefaultConfig returns production defaults.
func DefaultConfig() Config {
	return Config{
		MinDailySalesRate: 1e-6,
		SalesWindowDays:   30,
		CoverageFloorDays: 0.1,
	}
}

func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.MinDailySalesRate <= 0 {
		c.MinDailySalesRate = def.MinDailySalesRate
	}
	if c.SalesWindowDays <= 0 {
		c.SalesWindowDays = def.SalesWindowDays
	}
	if c.CoverageFloorDays <= 0 {
		c.CoverageFloorDays = def.CoverageFloorDays
	}
	return c
}

// Service builds production plans for semiproducts.
type Service struct {
	repo    Repository
	sales   SalesRepository
	planner *Planner
	cfg     Config
	now     func() time.Time
}

// NewService creates a new planning service.
func NewService(repo Repository, sales SalesRepository, cfg Config) *Service {
	cfg = cfg.withDefaults()
	return &Service{
		repo:    repo,
		sales:   sales,
		planner: NewPlanner(cfg),
		cfg:     cfg,
		now:     time.Now,
	}
}

// CalculateBatchPlan splits the available stock of a semiproduct across the
// products made from it.
func (s *Service) CalculateBatchPlan(ctx context.Context, req Request) (*Result, error) {
	if req.SemiproductCode == "" {
		return nil, apperror.NewValidation("semiproduct code is required").
			WithDetail("field", "semiproductCode")
	}
	if err := req.Strategy.Validate(); err != nil {
		return nil, err
	}

	constraints, err := indexConstraints(req.ProductConstraints)
	if err != nil {
		return nil, err
	}

	from, to := rates.SalesWindow(req.FromDate, req.ToDate, s.now(), s.cfg.SalesWindowDays)
	if from.After(to) {
		return nil, apperror.NewValidation("fromDate must be before toDate")
	}

	var (
		semi  *Semiproduct
		items []Item
	)
	err = tx.RunReadOnly(ctx, func(ctx context.Context) error {
		var err error
		semi, err = s.repo.GetSemiproduct(ctx, req.SemiproductCode)
		if err != nil {
			return err
		}
		items, err = s.loadItems(ctx, semi.Code, constraints, from, to)
		return err
	})
	if err != nil {
		return nil, err
	}

	planned, summary, err := s.planner.Allocate(semi.AvailableStock, items, req.Strategy)
	if err != nil {
		return nil, err
	}

	ordering := req.Ordering
	if ordering == "" {
		ordering = OrderAsListed
	}

	logger.Info(ctx, "batch plan calculated",
		"semiproduct_code", semi.Code,
		"control_mode", string(req.Mode),
		"products", summary.TotalProducts,
		"volume_used", summary.TotalVolumeUsed,
		"volume_available", summary.TotalVolumeAvailable,
	)

	return &Result{
		Semiproduct: *semi,
		FromDate:    from,
		ToDate:      to,
		ControlMode: req.Mode,
		Ordering:    ordering,
		Items:       planned,
		Summary:     summary,
	}, nil
}

// loadItems joins the bill of materials with catalog and sales data. Products
// that cannot be planned are logged and left out.
func (s *Service) loadItems(
	ctx context.Context,
	semiproductCode string,
	constraints map[string]ProductConstraint,
	from, to time.Time,
) ([]Item, error) {
	entries, err := s.repo.ListProductsUsing(ctx, semiproductCode)
	if err != nil {
		return nil, fmt.Errorf("list products using %s: %w", semiproductCode, err)
	}
	if len(entries) == 0 {
		return nil, apperror.NewNotFound("products using semiproduct", semiproductCode)
	}

	items := make([]Item, 0, len(entries))
	for _, e := range entries {
		if e.IngredientAmount <= 0 {
			logger.Warn(ctx, "product skipped",
				"product_code", e.ProductCode,
				"reason", "missing ingredient amount",
			)
			continue
		}

		product, err := s.repo.GetCatalogProduct(ctx, e.ProductCode)
		if err != nil {
			if apperror.IsNotFound(err) {
				logger.Warn(ctx, "product skipped",
					"product_code", e.ProductCode,
					"reason", "not in catalog",
				)
				continue
			}
			return nil, fmt.Errorf("catalog product %s: %w", e.ProductCode, err)
		}

		sold, err := s.sales.GetUnitsSold(ctx, product.Code, from, to)
		if err != nil {
			return nil, fmt.Errorf("units sold for %s: %w", product.Code, err)
		}

		rate := rates.DailySalesRate(sold, from, to)
		if rate < s.cfg.MinDailySalesRate {
			rate = 0
		}

		name := product.Name
		if name == "" {
			name = e.ProductName
		}

		item := Item{
			ProductCode:                product.Code,
			ProductName:                name,
			CurrentStock:               product.Stock,
			DailySalesRate:             rate,
			CurrentDaysCoverage:        rates.CurrentCoverage(product.Stock, rate, s.cfg.MinDailySalesRate),
			VolumePerUnit:              e.IngredientAmount,
			MinimalManufactureQuantity: product.MinimalManufactureQuantity,
		}
		if c, ok := constraints[product.Code]; ok && c.IsFixed {
			item.IsFixed = true
			qty := *c.FixedQuantity
			item.UserFixedQuantity = &qty
		}

		items = append(items, item)
	}

	return items, nil
}

// indexConstraints validates fixed constraints and keys them by product code.
func indexConstraints(list []ProductConstraint) (map[string]ProductConstraint, error) {
	out := make(map[string]ProductConstraint, len(list))
	for _, c := range list {
		if c.ProductCode == "" {
			return nil, apperror.NewValidation("product constraint without product code")
		}
		if c.IsFixed {
			if c.FixedQuantity == nil {
				return nil, apperror.NewValidation("fixed product has no quantity").
					WithDetail("productCode", c.ProductCode)
			}
			if err := validateFixedQuantity(c.ProductCode, *c.FixedQuantity); err != nil {
				return nil, err
			}
		}
		out[c.ProductCode] = c
	}
	return out, nil
}

package catalog_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/shopspring/decimal"

	"mfgplan/internal/domain/batch"
	"mfgplan/internal/domain/planning"
)

var (
	_ batch.SalesRepository    = (*SalesRepo)(nil)
	_ planning.SalesRepository = (*SalesRepo)(nil)
)

// SalesRepo aggregates the sales register.
type SalesRepo struct {
	baseRepo
}

// NewSalesRepo creates a new sales repository.
func NewSalesRepo() *SalesRepo {
	return &SalesRepo{baseRepo: newBaseRepo()}
}

func (r *SalesRepo) unitsSoldQuery(productCode string, from, to time.Time) squirrel.SelectBuilder {
	return r.builder.
		Select("COALESCE(SUM(quantity), 0)").
		From(salesTable).
		Where(squirrel.Eq{"product_code": productCode}).
		Where(squirrel.GtOrEq{"sold_at": from}).
		Where(squirrel.LtOrEq{"sold_at": to})
}

// GetUnitsSold returns the total quantity sold within [from, to].
func (r *SalesRepo) GetUnitsSold(ctx context.Context, productCode string, from, to time.Time) (float64, error) {
	sql, args, err := r.unitsSoldQuery(productCode, from, to).ToSql()
	if err != nil {
		return 0, fmt.Errorf("build units sold query: %w", err)
	}

	var total decimal.Decimal
	querier := r.getTxManager(ctx).GetQuerier(ctx)
	if err := querier.QueryRow(ctx, sql, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("units sold for %s: %w", productCode, err)
	}

	return total.InexactFloat64(), nil
}

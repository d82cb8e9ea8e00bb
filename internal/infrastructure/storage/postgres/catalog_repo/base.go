// Package catalog_repo provides PostgreSQL implementations for the catalog,
// bill-of-materials and sales repositories.
// TxManager is obtained from context per-request.
package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"mfgplan/internal/core/apperror"
	"mfgplan/internal/infrastructure/storage/postgres"
)

const (
	productsTable  = "cat_products"
	templatesTable = "cat_product_templates"
	salesTable     = "reg_sales"
)

// Product kinds stored in cat_products.kind.
const (
	KindProduct     = "product"
	KindSemiproduct = "semiproduct"
	KindMaterial    = "material"
)

// baseRepo holds the query builder shared by the repositories of this package.
type baseRepo struct {
	builder squirrel.StatementBuilderType
}

func newBaseRepo() baseRepo {
	return baseRepo{
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// getTxManager retrieves TxManager from context.
// Panics if not found - this indicates a programming error (missing Database middleware).
func (r baseRepo) getTxManager(ctx context.Context) *postgres.TxManager {
	return postgres.MustGetTxManager(ctx)
}

// selectAll runs q and scans every row into dst.
func (r baseRepo) selectAll(ctx context.Context, dst any, q squirrel.SelectBuilder, what string) error {
	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build %s query: %w", what, err)
	}

	querier := r.getTxManager(ctx).GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, dst, sql, args...); err != nil {
		return fmt.Errorf("select %s: %w", what, err)
	}
	return nil
}

// getOne runs q and scans exactly one row into dst. No rows maps to NotFound.
func (r baseRepo) getOne(ctx context.Context, dst any, q squirrel.SelectBuilder, entity, key string) error {
	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build %s query: %w", entity, err)
	}

	querier := r.getTxManager(ctx).GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, dst, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return apperror.NewNotFound(entity, key)
		}
		return fmt.Errorf("get %s: %w", entity, err)
	}
	return nil
}

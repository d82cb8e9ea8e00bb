package catalog_repo

import (
	"context"

	"github.com/Masterminds/squirrel"
	"github.com/shopspring/decimal"

	"mfgplan/internal/domain/batch"
	"mfgplan/internal/domain/planning"
)

// Compile-time interface checks.
var (
	_ batch.Repository    = (*ProductRepo)(nil)
	_ planning.Repository = (*ProductRepo)(nil)
)

// productRow maps cat_products. NUMERIC columns are scanned as decimals.
type productRow struct {
	Code                       string          `db:"code"`
	Name                       string          `db:"name"`
	SizeCode                   string          `db:"size_code"`
	NetWeight                  decimal.Decimal `db:"net_weight"`
	Stock                      decimal.Decimal `db:"stock"`
	MinimalManufactureQuantity int             `db:"minimal_manufacture_quantity"`
}

// bomRow is a template line joined with the finished product's name.
type bomRow struct {
	ProductCode string          `db:"product_code"`
	ProductName string          `db:"product_name"`
	Amount      decimal.Decimal `db:"amount"`
}

var productColumns = []string{
	"code",
	"name",
	"COALESCE(size_code, '') AS size_code",
	"COALESCE(net_weight, 0) AS net_weight",
	"COALESCE(stock, 0) AS stock",
	"COALESCE(minimal_manufacture_quantity, 0) AS minimal_manufacture_quantity",
}

// ProductRepo reads products, semiproducts and their bills of materials.
type ProductRepo struct {
	baseRepo
}

// NewProductRepo creates a new product repository.
func NewProductRepo() *ProductRepo {
	return &ProductRepo{baseRepo: newBaseRepo()}
}

func (r *ProductRepo) productSelect(kind string) squirrel.SelectBuilder {
	return r.builder.
		Select(productColumns...).
		From(productsTable).
		Where(squirrel.Eq{"kind": kind})
}

func (r *ProductRepo) familyQuery(family string) squirrel.SelectBuilder {
	return r.productSelect(KindProduct).
		Where(squirrel.Eq{"product_family": family}).
		OrderBy("net_weight ASC", "code ASC")
}

func (r *ProductRepo) bomQuery(semiproductCode string) squirrel.SelectBuilder {
	return r.builder.
		Select(
			"t.product_code",
			"COALESCE(p.name, '') AS product_name",
			"COALESCE(t.amount, 0) AS amount",
		).
		From(templatesTable + " t").
		LeftJoin(productsTable + " p ON p.code = t.product_code").
		Where(squirrel.Eq{"t.ingredient_code": semiproductCode}).
		OrderBy("t.id ASC")
}

// ListFamilyVariants returns the finished products of a family, smallest package first.
func (r *ProductRepo) ListFamilyVariants(ctx context.Context, family string) ([]batch.CatalogVariant, error) {
	var rows []productRow
	if err := r.selectAll(ctx, &rows, r.familyQuery(family), "family variants"); err != nil {
		return nil, err
	}

	out := make([]batch.CatalogVariant, len(rows))
	for i, row := range rows {
		out[i] = batch.CatalogVariant{
			Code:      row.Code,
			Name:      row.Name,
			SizeCode:  row.SizeCode,
			NetWeight: row.NetWeight.InexactFloat64(),
			Stock:     row.Stock.InexactFloat64(),
		}
	}
	return out, nil
}

// GetSemiproduct returns a semiproduct with its stock.
func (r *ProductRepo) GetSemiproduct(ctx context.Context, code string) (*planning.Semiproduct, error) {
	var row productRow
	q := r.productSelect(KindSemiproduct).Where(squirrel.Eq{"code": code}).Limit(1)
	if err := r.getOne(ctx, &row, q, "semiproduct", code); err != nil {
		return nil, err
	}

	return &planning.Semiproduct{
		Code:           row.Code,
		Name:           row.Name,
		AvailableStock: row.Stock.InexactFloat64(),
	}, nil
}

// ListProductsUsing returns template lines that consume the semiproduct, in template order.
func (r *ProductRepo) ListProductsUsing(ctx context.Context, semiproductCode string) ([]planning.BOMEntry, error) {
	var rows []bomRow
	if err := r.selectAll(ctx, &rows, r.bomQuery(semiproductCode), "bill of materials"); err != nil {
		return nil, err
	}

	out := make([]planning.BOMEntry, len(rows))
	for i, row := range rows {
		out[i] = planning.BOMEntry{
			ProductCode:      row.ProductCode,
			ProductName:      row.ProductName,
			IngredientAmount: row.Amount.InexactFloat64(),
		}
	}
	return out, nil
}

// GetCatalogProduct returns a finished product.
func (r *ProductRepo) GetCatalogProduct(ctx context.Context, code string) (*planning.CatalogProduct, error) {
	var row productRow
	q := r.productSelect(KindProduct).Where(squirrel.Eq{"code": code}).Limit(1)
	if err := r.getOne(ctx, &row, q, "product", code); err != nil {
		return nil, err
	}

	return &planning.CatalogProduct{
		Code:                       row.Code,
		Name:                       row.Name,
		SizeCode:                   row.SizeCode,
		Stock:                      row.Stock.InexactFloat64(),
		MinimalManufactureQuantity: row.MinimalManufactureQuantity,
	}, nil
}

package planning

import (
	"context"
	"time"
)

// BOMEntry is a finished product whose template uses the semiproduct.
type BOMEntry struct {
	ProductCode      string
	ProductName      string
	IngredientAmount float64
}

// CatalogProduct is the catalog state of a finished product.
type CatalogProduct struct {
	Code                       string
	Name                       string
	SizeCode                   string
	Stock                      float64
	MinimalManufactureQuantity int
}

// Repository reads the catalog and bills of materials.
type Repository interface {
	// GetSemiproduct returns apperror NotFound for unknown codes.
	GetSemiproduct(ctx context.Context, code string) (*Semiproduct, error)

	// ListProductsUsing returns products whose template has the semiproduct as ingredient.
	ListProductsUsing(ctx context.Context, semiproductCode string) ([]BOMEntry, error)

	// GetCatalogProduct returns apperror NotFound for unknown codes.
	GetCatalogProduct(ctx context.Context, code string) (*CatalogProduct, error)
}

// SalesRepository reads sales history.
type SalesRepository interface {
	// GetUnitsSold returns the total units of a product sold within [from, to].
	GetUnitsSold(ctx context.Context, productCode string, from, to time.Time) (float64, error)
}

package batch

import (
	"context"
	"time"
)

// CatalogVariant is a catalog row belonging to a product family.
type CatalogVariant struct {
	Code      string
	Name      string
	SizeCode  string
	NetWeight float64
	Stock     float64
}

// Repository loads product family members from the catalog.
type Repository interface {
	// ListFamilyVariants returns all finished products of a family, smallest package first.
	ListFamilyVariants(ctx context.Context, family string) ([]CatalogVariant, error)
}

// SalesRepository reads sales history.
type SalesRepository interface {
	// GetUnitsSold returns the total units of a product sold within [from, to].
	GetUnitsSold(ctx context.Context, productCode string, from, to time.Time) (float64, error)
}

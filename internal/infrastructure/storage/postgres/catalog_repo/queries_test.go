package catalog_repo

import (
	"testing"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueries_ToSql(t *testing.T) {
	products := NewProductRepo()
	sales := NewSalesRepo()
	from := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC)

	productCols := "code, name, COALESCE(size_code, '') AS size_code, COALESCE(net_weight, 0) AS net_weight, " +
		"COALESCE(stock, 0) AS stock, COALESCE(minimal_manufacture_quantity, 0) AS minimal_manufacture_quantity"

	tests := []struct {
		name     string
		query    squirrel.SelectBuilder
		wantSQL  string
		wantArgs []any
	}{
		{
			name:     "family variants",
			query:    products.familyQuery("CREAM"),
			wantSQL:  "SELECT " + productCols + " FROM cat_products WHERE kind = $1 AND product_family = $2 ORDER BY net_weight ASC, code ASC",
			wantArgs: []any{KindProduct, "CREAM"},
		},
		{
			name:     "semiproduct",
			query:    products.productSelect(KindSemiproduct).Where(squirrel.Eq{"code": "BASE"}).Limit(1),
			wantSQL:  "SELECT " + productCols + " FROM cat_products WHERE kind = $1 AND code = $2 LIMIT 1",
			wantArgs: []any{KindSemiproduct, "BASE"},
		},
		{
			name:  "bill of materials",
			query: products.bomQuery("BASE"),
			wantSQL: "SELECT t.product_code, COALESCE(p.name, '') AS product_name, COALESCE(t.amount, 0) AS amount " +
				"FROM cat_product_templates t LEFT JOIN cat_products p ON p.code = t.product_code " +
				"WHERE t.ingredient_code = $1 ORDER BY t.id ASC",
			wantArgs: []any{"BASE"},
		},
		{
			name:     "units sold",
			query:    sales.unitsSoldQuery("CREAM030", from, to),
			wantSQL:  "SELECT COALESCE(SUM(quantity), 0) FROM reg_sales WHERE product_code = $1 AND sold_at >= $2 AND sold_at <= $3",
			wantArgs: []any{"CREAM030", from, to},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, args, err := tt.query.ToSql()
			require.NoError(t, err)

			assert.Equal(t, tt.wantSQL, sql)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}

// Package main provides a CLI tool for seeding the database with demo planning data.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"

	"mfgplan/internal/config"
	"mfgplan/internal/infrastructure/storage/postgres"
	"mfgplan/pkg/logger"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS cat_products (
		code text PRIMARY KEY,
		name text NOT NULL,
		kind text NOT NULL,
		product_family text,
		size_code text,
		net_weight numeric,
		stock numeric,
		minimal_manufacture_quantity int
	)`,
	`CREATE TABLE IF NOT EXISTS cat_product_templates (
		id bigserial PRIMARY KEY,
		product_code text NOT NULL,
		ingredient_code text NOT NULL,
		amount numeric
	)`,
	`CREATE INDEX IF NOT EXISTS cat_product_templates_ingredient_idx ON cat_product_templates (ingredient_code)`,
	`CREATE TABLE IF NOT EXISTS reg_sales (
		product_code text NOT NULL,
		sold_at date NOT NULL,
		quantity numeric NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS reg_sales_product_idx ON reg_sales (product_code, sold_at)`,
}

type productSeed struct {
	code      string
	name      string
	kind      string
	family    string
	size      string
	netWeight decimal.Decimal
	stock     decimal.Decimal
	mmq       int
	// amount of the demo semiproduct per unit; zero for the semiproduct itself
	amount decimal.Decimal
	// dailySales is the average number of units sold per day
	dailySales int64
}

const demoSemiproduct = "BASE"

var demoProducts = []productSeed{
	{code: demoSemiproduct, name: "Cream base", kind: "semiproduct", stock: decimal.NewFromInt(150)},
	{code: "CREAM010", name: "Face cream 10 ml", kind: "product", family: "CREAM", size: "10",
		netWeight: decimal.RequireFromString("0.01"), stock: decimal.NewFromInt(40), mmq: 50,
		amount: decimal.RequireFromString("0.01"), dailySales: 4},
	{code: "CREAM030", name: "Face cream 30 ml", kind: "product", family: "CREAM", size: "30",
		netWeight: decimal.RequireFromString("0.03"), stock: decimal.NewFromInt(20), mmq: 50,
		amount: decimal.RequireFromString("0.03"), dailySales: 2},
	{code: "CREAM050", name: "Face cream 50 ml", kind: "product", family: "CREAM", size: "50",
		netWeight: decimal.RequireFromString("0.05"), stock: decimal.NewFromInt(5), mmq: 30,
		amount: decimal.RequireFromString("0.05"), dailySales: 1},
	{code: "CREAM100", name: "Body cream 100 ml", kind: "product", family: "CREAM", size: "100",
		netWeight: decimal.RequireFromString("0.1"), stock: decimal.NewFromInt(12), mmq: 20,
		amount: decimal.RequireFromString("0.1")},
}

const salesDays = 30

func main() {
	log, err := logger.New(logger.Config{
		Level:       "info",
		Development: true,
	})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalw("failed to load configuration", "error", err)
	}

	ctx := context.Background()

	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(cfg.DatabaseURL))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	log.Info("connected to database")

	txManager := postgres.NewTxManager(pool)
	inserter := postgres.NewBatchInserter(txManager)

	err = txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := createSchema(ctx, inserter); err != nil {
			return err
		}
		if err := seedCatalog(ctx, inserter); err != nil {
			return err
		}
		rows, err := seedSales(ctx, inserter, time.Now().UTC())
		if err != nil {
			return err
		}
		log.Infow("sales seeded", "rows", rows, "days", salesDays)
		return nil
	})
	if err != nil {
		log.Fatalw("failed to seed demo data", "error", err)
	}

	log.Infow("seeding completed successfully", "semiproduct", demoSemiproduct, "products", len(demoProducts)-1)
}

func createSchema(ctx context.Context, inserter *postgres.BatchInserter) error {
	queries := make([]postgres.BatchQuery, len(schema))
	for i, stmt := range schema {
		queries[i] = postgres.BatchQuery{SQL: stmt}
	}
	if err := inserter.ExecuteBatch(ctx, queries); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

func seedCatalog(ctx context.Context, inserter *postgres.BatchInserter) error {
	queries := []postgres.BatchQuery{
		{SQL: `DELETE FROM cat_product_templates WHERE ingredient_code = $1`, Args: []any{demoSemiproduct}},
	}

	for _, p := range demoProducts {
		queries = append(queries, postgres.BatchQuery{
			SQL: `
				INSERT INTO cat_products (code, name, kind, product_family, size_code, net_weight, stock, minimal_manufacture_quantity)
				VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''), $6, $7, $8)
				ON CONFLICT (code) DO UPDATE SET
					name = EXCLUDED.name,
					kind = EXCLUDED.kind,
					product_family = EXCLUDED.product_family,
					size_code = EXCLUDED.size_code,
					net_weight = EXCLUDED.net_weight,
					stock = EXCLUDED.stock,
					minimal_manufacture_quantity = EXCLUDED.minimal_manufacture_quantity`,
			Args: []any{p.code, p.name, p.kind, p.family, p.size, p.netWeight, p.stock, p.mmq},
		})
	}

	for _, p := range demoProducts {
		if p.kind != "product" {
			continue
		}
		queries = append(queries, postgres.BatchQuery{
			SQL:  `INSERT INTO cat_product_templates (product_code, ingredient_code, amount) VALUES ($1, $2, $3)`,
			Args: []any{p.code, demoSemiproduct, p.amount},
		})
	}

	if err := inserter.ExecuteBatch(ctx, queries); err != nil {
		return fmt.Errorf("seed catalog: %w", err)
	}
	return nil
}

// seedSales replaces the demo products' sales for the last salesDays days.
// Daily quantities alternate around the average so the totals stay exact.
func seedSales(ctx context.Context, inserter *postgres.BatchInserter, now time.Time) (int64, error) {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	first := today.AddDate(0, 0, -salesDays)

	codes := make([]string, 0, len(demoProducts))
	var rows [][]any
	for _, p := range demoProducts {
		if p.kind != "product" {
			continue
		}
		codes = append(codes, p.code)
		if p.dailySales == 0 {
			continue
		}
		for day := 0; day < salesDays; day++ {
			qty := p.dailySales
			if day%2 == 0 {
				qty++
			} else {
				qty--
			}
			rows = append(rows, []any{p.code, first.AddDate(0, 0, day), decimal.NewFromInt(qty)})
		}
	}

	err := inserter.ExecuteBatch(ctx, []postgres.BatchQuery{
		{SQL: `DELETE FROM reg_sales WHERE product_code = ANY($1)`, Args: []any{codes}},
	})
	if err != nil {
		return 0, fmt.Errorf("clear sales: %w", err)
	}

	n, err := inserter.CopyFromSlice(ctx, "reg_sales", []string{"product_code", "sold_at", "quantity"}, rows)
	if err != nil {
		return 0, fmt.Errorf("copy sales: %w", err)
	}
	return n, nil
}

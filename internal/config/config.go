// Package config loads service settings from the environment and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"mfgplan/internal/domain/batch"
	"mfgplan/internal/domain/planning"
)

// Config stores parsed environment configuration.
type Config struct {
	Port     string
	Env      string
	LogLevel string

	DatabaseURL string
	DBMaxConns  int32

	RedisAddr     string
	RedisPassword string
	SalesCacheTTL time.Duration

	CORSAllowedOrigins []string

	Planning PlanningConfig
}

// PlanningConfig holds the numeric thresholds of both calculations.
type PlanningConfig struct {
	MaxCoverageDays      float64
	SearchTolerance      float64
	InfiniteCoverageDays float64
	MinDailySales        float64
	SalesWindowDays      int
	CoverageFloorDays    float64
}

// IsDevelopment reports whether the service runs in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// CacheEnabled reports whether a Redis address is configured.
func (c *Config) CacheEnabled() bool {
	return c.RedisAddr != ""
}

// Batch returns the batch service configuration.
func (p PlanningConfig) Batch() batch.Config {
	return batch.Config{
		Optimizer: batch.OptimizerConfig{
			MaxCoverageDays: p.MaxCoverageDays,
			Tolerance:       p.SearchTolerance,
		},
		MinDailySalesRate: p.MinDailySales,
		SalesWindowDays:   p.SalesWindowDays,
	}
}

// Planning returns the planning service configuration.
func (p PlanningConfig) Planning() planning.Config {
	return planning.Config{
		MinDailySalesRate: p.MinDailySales,
		SalesWindowDays:   p.SalesWindowDays,
		CoverageFloorDays: p.CoverageFloorDays,
	}
}

// Load reads .env (when present) and parses the environment.
// Variables already set in the process take precedence over .env.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv(os.Getenv)
}

// FromEnv parses configuration using getenv for lookups.
func FromEnv(getenv func(string) string) (*Config, error) {
	p := parser{getenv: getenv}

	cfg := &Config{
		Port:          p.str("APP_PORT", "8080"),
		Env:           p.str("APP_ENV", "development"),
		LogLevel:      p.str("LOG_LEVEL", "info"),
		DatabaseURL:   p.str("DATABASE_URL", ""),
		DBMaxConns:    int32(p.integer("DB_MAX_CONNS", 25)),
		RedisAddr:     p.str("REDIS_ADDR", ""),
		RedisPassword: p.str("REDIS_PASSWORD", ""),
		SalesCacheTTL: p.duration("SALES_CACHE_TTL", 10*time.Minute),

		CORSAllowedOrigins: p.list("CORS_ALLOWED_ORIGINS", []string{"*"}),

		Planning: PlanningConfig{
			MaxCoverageDays:      p.float("PLANNING_MAX_COVERAGE_DAYS", 1000),
			SearchTolerance:      p.float("PLANNING_SEARCH_TOLERANCE", 0.1),
			InfiniteCoverageDays: p.float("PLANNING_INFINITE_COVERAGE_DAYS", 999999),
			MinDailySales:        p.float("PLANNING_MIN_DAILY_SALES", 1e-6),
			SalesWindowDays:      p.integer("PLANNING_SALES_WINDOW_DAYS", 30),
			CoverageFloorDays:    p.float("PLANNING_COVERAGE_FLOOR_DAYS", 0.1),
		},
	}

	if cfg.DatabaseURL == "" {
		p.fail("DATABASE_URL", "is required")
	}
	if cfg.DBMaxConns <= 0 {
		p.fail("DB_MAX_CONNS", "must be positive")
	}
	if cfg.Planning.MaxCoverageDays <= 0 {
		p.fail("PLANNING_MAX_COVERAGE_DAYS", "must be positive")
	}
	if cfg.Planning.SearchTolerance <= 0 {
		p.fail("PLANNING_SEARCH_TOLERANCE", "must be positive")
	}
	if cfg.Planning.InfiniteCoverageDays <= 0 {
		p.fail("PLANNING_INFINITE_COVERAGE_DAYS", "must be positive")
	}
	if cfg.Planning.SalesWindowDays <= 0 {
		p.fail("PLANNING_SALES_WINDOW_DAYS", "must be positive")
	}

	if err := errors.Join(p.errs...); err != nil {
		return nil, err
	}
	return cfg, nil
}

// parser collects every invalid variable instead of stopping at the first one.
type parser struct {
	getenv func(string) string
	errs   []error
}

func (p *parser) fail(key, msg string) {
	p.errs = append(p.errs, fmt.Errorf("%s %s", key, msg))
}

func (p *parser) str(key, fallback string) string {
	if v := strings.TrimSpace(p.getenv(key)); v != "" {
		return v
	}
	return fallback
}

func (p *parser) integer(key string, fallback int) int {
	raw := strings.TrimSpace(p.getenv(key))
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		p.fail(key, fmt.Sprintf("is not an integer: %q", raw))
		return fallback
	}
	return v
}

func (p *parser) float(key string, fallback float64) float64 {
	raw := strings.TrimSpace(p.getenv(key))
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		p.fail(key, fmt.Sprintf("is not a number: %q", raw))
		return fallback
	}
	return v
}

func (p *parser) duration(key string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(p.getenv(key))
	if raw == "" {
		return fallback
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		p.fail(key, fmt.Sprintf("is not a duration: %q", raw))
		return fallback
	}
	return v
}

func (p *parser) list(key string, fallback []string) []string {
	raw := strings.TrimSpace(p.getenv(key))
	if raw == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

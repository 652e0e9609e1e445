package infra

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/congo-pay/bankcore/internal/vendor"
)

// NewPostgresPool configures and returns a PostgreSQL connection pool.
// An empty url yields a nil pool so development runs without a database.
func NewPostgresPool(ctx context.Context, url string) (*pgxpool.Pool, error) {
	if url == "" {
		return nil, nil
	}

	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("parse postgres config: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return pool, nil
}

// PrepareVendors creates the vendors table and upserts the configured
// vendor list so the directory matches VENDORS on boot.
func PrepareVendors(ctx context.Context, pool *pgxpool.Pool, list string, logger *slog.Logger) error {
	vendors, err := vendor.ParseList(list)
	if err != nil {
		return fmt.Errorf("parse VENDORS: %w", err)
	}
	if err := vendor.EnsureSchema(ctx, pool); err != nil {
		return err
	}
	if err := vendor.Upsert(ctx, pool, vendors...); err != nil {
		return err
	}
	logger.Info("vendor directory prepared", slog.Int("seeded", len(vendors)))
	return nil
}

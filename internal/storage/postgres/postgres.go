// Package postgres provides a storage.Store backed by a PostgreSQL kv table
// using pgx v5.
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/companion/internal/config"
)

// applicationName tags companion connections in pg_stat_activity.
const applicationName = "companion"

// Connect opens a connection pool for cfg and checks that the database answers.
//
// Precondition: cfg must contain valid database connection parameters.
// Postcondition: Returns a connected pool or a non-nil error; the caller owns the pool.
func Connect(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parsing database config: %w", err)
	}
	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MinConns = cfg.MinConns
	poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	poolCfg.ConnConfig.RuntimeParams["application_name"] = applicationName

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return pool, nil
}

// Open brings the kv schema up to date and returns a Store that owns its
// connection pool.
//
// Postcondition: on success the kv table exists at the returned schema version;
// the caller must Close the Store.
func Open(ctx context.Context, cfg config.DatabaseConfig) (*Store, MigrationResult, error) {
	res, err := Migrate(cfg.DSN(), Up, 0)
	if err != nil {
		return nil, MigrationResult{}, err
	}
	pool, err := Connect(ctx, cfg)
	if err != nil {
		return nil, res, err
	}
	return NewStore(pool), res, nil
}

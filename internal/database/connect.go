package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/timcrose/sessionstore/internal/config"
)

// Connect creates a connection pool for the configured database.
func Connect(ctx context.Context, cfg config.DBConfig) (*pgxpool.Pool, error) {
	connStr := BuildConnString(cfg)

	poolCfg, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return nil, fmt.Errorf("parse connection string: %w", err)
	}

	poolCfg.MinConns = int32(cfg.MinConns)
	poolCfg.MaxConns = int32(cfg.MaxConns)

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return pool, nil
}

// EnsureDatabase creates the configured database if it does not exist.
// It reports whether the database was created.
func EnsureDatabase(ctx context.Context, cfg config.DBConfig) (bool, error) {
	conn, err := pgx.Connect(ctx, BuildMaintenanceConnString(cfg))
	if err != nil {
		return false, fmt.Errorf("connect maintenance database: %w", err)
	}
	defer conn.Close(ctx)

	var exists bool
	err = conn.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM pg_database WHERE datname = $1)`, cfg.Name,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check database exists: %w", err)
	}
	if exists {
		return false, nil
	}

	// CREATE DATABASE does not accept bind parameters.
	if _, err := conn.Exec(ctx, "CREATE DATABASE "+pgx.Identifier{cfg.Name}.Sanitize()); err != nil {
		return false, fmt.Errorf("create database %s: %w", cfg.Name, err)
	}
	return true, nil
}

// Open ensures the database exists and connects to it.
func Open(ctx context.Context, cfg config.DBConfig) (*pgxpool.Pool, error) {
	if _, err := EnsureDatabase(ctx, cfg); err != nil {
		return nil, err
	}
	return Connect(ctx, cfg)
}

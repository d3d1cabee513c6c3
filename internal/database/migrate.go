package database

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
)

//go:embed migrations/001_initial.up.sql
var initialMigrationSQL string

var requiredTables = []string{
	"user_roles",
	"users",
}

var seedRoleNames = []string{
	"Admin",
	"Pharmacist",
	"Cashier",
	"Customer",
	"Supplier",
}

// EnsureSchema applies the initial migration when the required tables are
// missing and seeds the fixed role set when user_roles is empty.
func (db *DB) EnsureSchema(ctx context.Context) error {
	if db == nil || db.Pool == nil {
		return fmt.Errorf("database pool is not initialized")
	}

	exists, err := db.hasAllRequiredTables(ctx)
	if err != nil {
		return fmt.Errorf("check existing tables: %w", err)
	}

	if !exists {
		slog.Info("database schema missing tables; applying initial migration")
		if _, err := db.Pool.Exec(ctx, initialMigrationSQL); err != nil {
			return fmt.Errorf("apply initial migration: %w", err)
		}

		exists, err = db.hasAllRequiredTables(ctx)
		if err != nil {
			return fmt.Errorf("re-check tables after migration: %w", err)
		}

		if !exists {
			return fmt.Errorf("schema initialization incomplete: required tables are still missing")
		}
	}

	if err := db.seedRoles(ctx); err != nil {
		return fmt.Errorf("seed roles: %w", err)
	}

	slog.Info("database schema ensured")
	return nil
}

// seedRoles inserts the role enumeration once. ON CONFLICT keeps re-runs
// idempotent if startup races with another instance.
func (db *DB) seedRoles(ctx context.Context) error {
	var count int
	if err := db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM user_roles`).Scan(&count); err != nil {
		return fmt.Errorf("count roles: %w", err)
	}

	if count > 0 {
		return nil
	}

	for _, name := range seedRoleNames {
		_, err := db.Pool.Exec(ctx,
			`INSERT INTO user_roles (id, role_name) VALUES ($1, $2)
			 ON CONFLICT (role_name) DO NOTHING`,
			uuid.NewString(), name)
		if err != nil {
			return fmt.Errorf("insert role %s: %w", name, err)
		}
	}

	slog.Info("user roles seeded", "count", len(seedRoleNames))
	return nil
}

func (db *DB) hasAllRequiredTables(ctx context.Context) (bool, error) {
	var count int
	err := db.Pool.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM information_schema.tables
		WHERE table_schema = 'public'
		  AND table_name = ANY($1)
	`, requiredTables).Scan(&count)
	if err != nil {
		return false, err
	}

	return count == len(requiredTables), nil
}

package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

type SeedDevOptions struct {
	// AdminPIN, when set, enrolls a dev "admin" identity with this PIN so
	// the PIN path works before anyone runs a real enrollment.
	AdminPIN string
}

func SeedDev(ctx context.Context, db *sql.DB, opt SeedDevOptions) error {
	if opt.AdminPIN == "" {
		return nil
	}

	now := time.Now().UTC().UnixMilli()

	if _, err := db.ExecContext(ctx, `
INSERT INTO users(name, age, pin, is_active, created_at_ms, updated_at_ms)
VALUES ('admin', 0, ?, 1, ?, ?)
ON CONFLICT(name) DO UPDATE SET
  pin = excluded.pin,
  is_active = 1,
  updated_at_ms = excluded.updated_at_ms;
`, opt.AdminPIN, now, now); err != nil {
		return fmt.Errorf("seed admin user: %w", err)
	}

	return nil
}

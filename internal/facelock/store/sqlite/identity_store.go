package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	dbpkg "github.com/alejandrodlv/facelock/internal/db"
	"github.com/alejandrodlv/facelock/internal/facelock/store"
)

type IdentityStore struct {
	db     *sql.DB
	writer *dbpkg.Worker
}

func NewIdentityStore(db *sql.DB, writer *dbpkg.Worker) *IdentityStore {
	return &IdentityStore{db: db, writer: writer}
}

func (s *IdentityStore) Upsert(ctx context.Context, name string, age int, pin string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("identity name is required")
	}
	now := time.Now().UTC().UnixMilli()

	var pinVal any
	if pin != "" {
		pinVal = pin
	}

	return s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		// Re-enrollment replaces age and PIN and reactivates, but keeps the
		// original row id and creation time.
		if _, err := tx.ExecContext(ctx, `
INSERT INTO users(name, age, pin, is_active, created_at_ms, updated_at_ms)
VALUES (?, ?, ?, 1, ?, ?)
ON CONFLICT(name) DO UPDATE SET
  age = excluded.age,
  pin = excluded.pin,
  is_active = 1,
  updated_at_ms = excluded.updated_at_ms;
`, name, age, pinVal, now, now); err != nil {
			return fmt.Errorf("Upsert %s: %w", name, err)
		}
		return nil
	})
}

func (s *IdentityStore) Delete(ctx context.Context, name string) error {
	var affected int64
	err := s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM users WHERE name = ?;`, name)
		if err != nil {
			return fmt.Errorf("Delete %s: %w", name, err)
		}
		affected, _ = res.RowsAffected()
		return nil
	})
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *IdentityStore) SetActive(ctx context.Context, name string, active bool) error {
	activeVal := 0
	if active {
		activeVal = 1
	}
	now := time.Now().UTC().UnixMilli()

	var affected int64
	err := s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
UPDATE users SET is_active = ?, updated_at_ms = ? WHERE name = ?;
`, activeVal, now, name)
		if err != nil {
			return fmt.Errorf("SetActive %s: %w", name, err)
		}
		affected, _ = res.RowsAffected()
		return nil
	})
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *IdentityStore) LookupByPIN(ctx context.Context, pin string) (string, bool, error) {
	if strings.TrimSpace(pin) == "" {
		return "", false, nil
	}

	var name string
	err := s.db.QueryRowContext(ctx, `
SELECT name FROM users WHERE pin = ? AND is_active = 1;
`, pin).Scan(&name)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("LookupByPIN: %w", err)
	}
	return name, true, nil
}

func (s *IdentityStore) Get(ctx context.Context, name string) (store.IdentityRecord, bool, error) {
	var (
		rec       store.IdentityRecord
		active    int
		createdMs int64
	)
	err := s.db.QueryRowContext(ctx, `
SELECT id, name, age, COALESCE(pin, ''), is_active, created_at_ms
FROM users WHERE name = ?;
`, name).Scan(&rec.ID, &rec.Name, &rec.Age, &rec.PIN, &active, &createdMs)
	if err == sql.ErrNoRows {
		return store.IdentityRecord{}, false, nil
	}
	if err != nil {
		return store.IdentityRecord{}, false, fmt.Errorf("Get %s: %w", name, err)
	}
	rec.Active = active == 1
	rec.CreatedAt = time.UnixMilli(createdMs).UTC()
	return rec, true, nil
}

func (s *IdentityStore) List(ctx context.Context) ([]store.IdentityRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT id, name, age, COALESCE(pin, ''), is_active, created_at_ms
FROM users
ORDER BY id;
`)
	if err != nil {
		return nil, fmt.Errorf("List: %w", err)
	}
	defer rows.Close()

	var out []store.IdentityRecord
	for rows.Next() {
		var (
			rec       store.IdentityRecord
			active    int
			createdMs int64
		)
		if err := rows.Scan(&rec.ID, &rec.Name, &rec.Age, &rec.PIN, &active, &createdMs); err != nil {
			return nil, fmt.Errorf("List scan: %w", err)
		}
		rec.Active = active == 1
		rec.CreatedAt = time.UnixMilli(createdMs).UTC()
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *IdentityStore) CountActive(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users WHERE is_active = 1;`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("CountActive: %w", err)
	}
	return n, nil
}

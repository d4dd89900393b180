package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	dbpkg "github.com/alejandrodlv/facelock/internal/db"
	"github.com/alejandrodlv/facelock/internal/facelock/store"
)

type AuditLog struct {
	db     *sql.DB
	writer *dbpkg.Worker
}

func NewAuditLog(db *sql.DB, writer *dbpkg.Worker) *AuditLog {
	return &AuditLog{db: db, writer: writer}
}

func (s *AuditLog) Append(ctx context.Context, rec store.AccessAttempt) error {
	if rec.OccurredAt.IsZero() {
		rec.OccurredAt = time.Now().UTC()
	}

	var success int
	if rec.Success {
		success = 1
	}

	return s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO access_logs(user_name, access_method, success, confidence, timestamp_ms)
VALUES (?, ?, ?, ?, ?);
`, rec.UserName, rec.Method, success, rec.Confidence, rec.OccurredAt.UTC().UnixMilli()); err != nil {
			return fmt.Errorf("Append: %w", err)
		}
		return nil
	})
}

func (s *AuditLog) Recent(ctx context.Context, limit int) ([]store.AccessAttempt, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.QueryContext(ctx, `
SELECT user_name, access_method, success, confidence, timestamp_ms
FROM access_logs
ORDER BY timestamp_ms DESC, id DESC
LIMIT ?;
`, limit)
	if err != nil {
		return nil, fmt.Errorf("Recent: %w", err)
	}
	defer rows.Close()

	var out []store.AccessAttempt
	for rows.Next() {
		var (
			rec     store.AccessAttempt
			success int
			ms      int64
		)
		if err := rows.Scan(&rec.UserName, &rec.Method, &success, &rec.Confidence, &ms); err != nil {
			return nil, fmt.Errorf("Recent scan: %w", err)
		}
		rec.Success = success == 1
		rec.OccurredAt = time.UnixMilli(ms).UTC()
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *AuditLog) PurgeAll(ctx context.Context) (int64, error) {
	var removed int64
	err := s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM access_logs;`)
		if err != nil {
			return fmt.Errorf("PurgeAll: %w", err)
		}
		removed, _ = res.RowsAffected()
		return nil
	})
	return removed, err
}

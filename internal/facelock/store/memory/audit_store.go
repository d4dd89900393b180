package memory

import (
	"context"
	"sync"
	"time"

	"github.com/alejandrodlv/facelock/internal/facelock/store"
)

// AuditLog is an in-memory append-only log of access attempts.  It is
// intended for use in tests and dev environments.
type AuditLog struct {
	mu       sync.Mutex
	attempts []store.AccessAttempt

	// FailNext, when set, makes the next Append return this error.
	// Test-only hook for exercising audit-failure surfacing.
	FailNext error
}

func NewAuditLog() *AuditLog {
	return &AuditLog{}
}

func (s *AuditLog) Append(_ context.Context, rec store.AccessAttempt) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailNext != nil {
		err := s.FailNext
		s.FailNext = nil
		return err
	}

	if rec.OccurredAt.IsZero() {
		rec.OccurredAt = time.Now().UTC()
	}
	s.attempts = append(s.attempts, rec)
	return nil
}

func (s *AuditLog) Recent(_ context.Context, limit int) ([]store.AccessAttempt, error) {
	if limit <= 0 {
		limit = 10
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []store.AccessAttempt
	for i := len(s.attempts) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, s.attempts[i])
	}
	return out, nil
}

func (s *AuditLog) PurgeAll(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := int64(len(s.attempts))
	s.attempts = nil
	return n, nil
}

// Attempts returns a copy of all recorded attempts.  Test-only helper.
func (s *AuditLog) Attempts() []store.AccessAttempt {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]store.AccessAttempt, len(s.attempts))
	copy(out, s.attempts)
	return out
}

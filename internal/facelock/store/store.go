package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by mutations that target an absent identity.
var ErrNotFound = errors.New("identity not found")

// IdentityRecord is one enrolled identity as persisted in the roster table.
// The PIN never leaves the store boundary except through LookupByPIN's
// opaque name result.
type IdentityRecord struct {
	ID        int64
	Name      string
	Age       int
	PIN       string
	Active    bool
	CreatedAt time.Time
}

// AccessAttempt is one access decision for the audit log.  Records are
// immutable once written; the only delete is the administrative PurgeAll.
type AccessAttempt struct {
	UserName   string
	Method     string
	Success    bool
	Confidence float64
	OccurredAt time.Time
}

// IdentityStore is the durable roster of enrolled identities.
type IdentityStore interface {
	// Upsert inserts the identity or replaces an existing record with the
	// same name (re-enrollment overwrites age and PIN and reactivates).
	Upsert(ctx context.Context, name string, age int, pin string) error

	// Delete hard-removes the identity.  Returns ErrNotFound when absent.
	Delete(ctx context.Context, name string) error

	// SetActive toggles the logical-delete flag.  Returns ErrNotFound when
	// absent.
	SetActive(ctx context.Context, name string, active bool) error

	// LookupByPIN returns the name of the active identity holding pin, or
	// ok=false when no active identity matches.
	LookupByPIN(ctx context.Context, pin string) (name string, ok bool, err error)

	// Get returns the identity by name; ok=false when absent.
	Get(ctx context.Context, name string) (rec IdentityRecord, ok bool, err error)

	// List returns all identities, active or not, in enrollment order.
	List(ctx context.Context) ([]IdentityRecord, error)

	// CountActive returns the number of active identities.
	CountActive(ctx context.Context) (int, error)
}

// AuditLog persists access attempts append-only.
type AuditLog interface {
	Append(ctx context.Context, rec AccessAttempt) error

	// Recent returns up to limit attempts, most recent first.
	Recent(ctx context.Context, limit int) ([]AccessAttempt, error)

	// PurgeAll deletes every attempt and returns the count removed.
	PurgeAll(ctx context.Context) (int64, error)
}

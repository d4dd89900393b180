package sqlite_test

import (
	"context"
	"errors"
	"testing"

	"github.com/alejandrodlv/facelock/internal/facelock/store"
	sqlitestore "github.com/alejandrodlv/facelock/internal/facelock/store/sqlite"
)

// ═══════════════════════════════════════════════════════════════════════════
// Upsert — insert and re-enroll
// ═══════════════════════════════════════════════════════════════════════════

func TestIdentityStore_Upsert_InsertsRow(t *testing.T) {
	conn := openTestDB(t)
	w := newTestWriter(t, conn)
	is := sqlitestore.NewIdentityStore(conn, w)
	ctx := context.Background()

	if err := is.Upsert(ctx, "alejandro", 31, "1234"); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	rec, ok, err := is.Get(ctx, "alejandro")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !ok {
		t.Fatal("expected identity to exist")
	}
	if rec.Name != "alejandro" || rec.Age != 31 || rec.PIN != "1234" {
		t.Errorf("unexpected record: %+v", rec)
	}
	if !rec.Active {
		t.Error("new identity should be active")
	}
	if rec.CreatedAt.IsZero() {
		t.Error("CreatedAt not set")
	}
}

func TestIdentityStore_Upsert_ReEnrollKeepsRowID(t *testing.T) {
	conn := openTestDB(t)
	w := newTestWriter(t, conn)
	is := sqlitestore.NewIdentityStore(conn, w)
	ctx := context.Background()

	if err := is.Upsert(ctx, "alejandro", 31, "1234"); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	first, _, err := is.Get(ctx, "alejandro")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}

	// Deactivate, then re-enroll with new details.
	if err := is.SetActive(ctx, "alejandro", false); err != nil {
		t.Fatalf("SetActive: %v", err)
	}
	if err := is.Upsert(ctx, "alejandro", 32, "5678"); err != nil {
		t.Fatalf("re-Upsert: %v", err)
	}

	rec, _, err := is.Get(ctx, "alejandro")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if rec.ID != first.ID {
		t.Errorf("re-enroll changed row id: %d -> %d", first.ID, rec.ID)
	}
	if rec.Age != 32 || rec.PIN != "5678" {
		t.Errorf("re-enroll did not replace details: %+v", rec)
	}
	if !rec.Active {
		t.Error("re-enroll should reactivate the identity")
	}
}

func TestIdentityStore_Upsert_EmptyNameRejected(t *testing.T) {
	conn := openTestDB(t)
	w := newTestWriter(t, conn)
	is := sqlitestore.NewIdentityStore(conn, w)

	if err := is.Upsert(context.Background(), "  ", 31, "1234"); err == nil {
		t.Fatal("expected error for blank name")
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Delete / SetActive — missing rows
// ═══════════════════════════════════════════════════════════════════════════

func TestIdentityStore_Delete_RemovesRow(t *testing.T) {
	conn := openTestDB(t)
	w := newTestWriter(t, conn)
	is := sqlitestore.NewIdentityStore(conn, w)
	ctx := context.Background()

	if err := is.Upsert(ctx, "alejandro", 31, "1234"); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if err := is.Delete(ctx, "alejandro"); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	_, ok, err := is.Get(ctx, "alejandro")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if ok {
		t.Error("identity still present after Delete")
	}
}

func TestIdentityStore_Delete_MissingReturnsNotFound(t *testing.T) {
	conn := openTestDB(t)
	w := newTestWriter(t, conn)
	is := sqlitestore.NewIdentityStore(conn, w)

	err := is.Delete(context.Background(), "ghost")
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestIdentityStore_SetActive_MissingReturnsNotFound(t *testing.T) {
	conn := openTestDB(t)
	w := newTestWriter(t, conn)
	is := sqlitestore.NewIdentityStore(conn, w)

	err := is.SetActive(context.Background(), "ghost", true)
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// LookupByPIN — active filter
// ═══════════════════════════════════════════════════════════════════════════

func TestIdentityStore_LookupByPIN(t *testing.T) {
	conn := openTestDB(t)
	w := newTestWriter(t, conn)
	is := sqlitestore.NewIdentityStore(conn, w)
	ctx := context.Background()

	if err := is.Upsert(ctx, "alejandro", 31, "1234"); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	name, ok, err := is.LookupByPIN(ctx, "1234")
	if err != nil {
		t.Fatalf("LookupByPIN: %v", err)
	}
	if !ok || name != "alejandro" {
		t.Fatalf("expected alejandro, got %q ok=%v", name, ok)
	}

	if _, ok, _ = is.LookupByPIN(ctx, "9999"); ok {
		t.Error("wrong PIN matched")
	}
	if _, ok, _ = is.LookupByPIN(ctx, ""); ok {
		t.Error("empty PIN matched")
	}
}

func TestIdentityStore_LookupByPIN_InactiveExcluded(t *testing.T) {
	conn := openTestDB(t)
	w := newTestWriter(t, conn)
	is := sqlitestore.NewIdentityStore(conn, w)
	ctx := context.Background()

	if err := is.Upsert(ctx, "alejandro", 31, "1234"); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if err := is.SetActive(ctx, "alejandro", false); err != nil {
		t.Fatalf("SetActive: %v", err)
	}

	if _, ok, _ := is.LookupByPIN(ctx, "1234"); ok {
		t.Error("inactive identity matched by PIN")
	}
}

func TestIdentityStore_Upsert_NoPINStoredAsNull(t *testing.T) {
	conn := openTestDB(t)
	w := newTestWriter(t, conn)
	is := sqlitestore.NewIdentityStore(conn, w)
	ctx := context.Background()

	if err := is.Upsert(ctx, "maria", 28, ""); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	var nulls int
	err := conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM users WHERE name = ? AND pin IS NULL`, "maria",
	).Scan(&nulls)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if nulls != 1 {
		t.Error("expected NULL pin for PIN-less identity")
	}

	// A NULL pin must never match a lookup.
	if _, ok, _ := is.LookupByPIN(ctx, ""); ok {
		t.Error("empty PIN matched a PIN-less identity")
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// List / CountActive
// ═══════════════════════════════════════════════════════════════════════════

func TestIdentityStore_ListAndCountActive(t *testing.T) {
	conn := openTestDB(t)
	w := newTestWriter(t, conn)
	is := sqlitestore.NewIdentityStore(conn, w)
	ctx := context.Background()

	for _, name := range []string{"alejandro", "maria", "pedro"} {
		if err := is.Upsert(ctx, name, 30, ""); err != nil {
			t.Fatalf("Upsert %s: %v", name, err)
		}
	}
	if err := is.SetActive(ctx, "pedro", false); err != nil {
		t.Fatalf("SetActive: %v", err)
	}

	recs, err := is.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(recs) != 3 {
		t.Fatalf("expected 3 identities, got %d", len(recs))
	}
	// Insertion order (by row id).
	if recs[0].Name != "alejandro" || recs[1].Name != "maria" || recs[2].Name != "pedro" {
		t.Errorf("unexpected order: %v %v %v", recs[0].Name, recs[1].Name, recs[2].Name)
	}
	if recs[2].Active {
		t.Error("pedro should be inactive")
	}

	n, err := is.CountActive(ctx)
	if err != nil {
		t.Fatalf("CountActive: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 active, got %d", n)
	}
}

package registrants

import (
	"context"
	"testing"
	"time"

	"github.com/walle-league/regpay/internal/testutil"
)

func pgRegistrant(id, email string) *Registrant {
	now := time.Now().UTC()
	return &Registrant{
		ID:        id,
		Name:      "Test " + id,
		Email:     email,
		Status:    StatusPendingPayment,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestPostgresStore_CreateAndGet(t *testing.T) {
	db, cleanup := testutil.PGTest(t)
	defer cleanup()
	store := NewPostgresStore(db)
	ctx := context.Background()

	if err := store.Create(ctx, pgRegistrant("reg_pg_1", "one@example.com")); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	got, err := store.Get(ctx, "reg_pg_1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.Email != "one@example.com" || got.Status != StatusPendingPayment {
		t.Errorf("unexpected registrant: %+v", got)
	}

	byEmail, err := store.GetByEmail(ctx, "ONE@example.com")
	if err != nil {
		t.Fatalf("get by email failed: %v", err)
	}
	if byEmail.ID != "reg_pg_1" {
		t.Errorf("expected reg_pg_1, got %s", byEmail.ID)
	}

	if err := store.Create(ctx, pgRegistrant("reg_pg_2", "one@example.com")); err != ErrEmailExists {
		t.Errorf("expected ErrEmailExists, got %v", err)
	}
}

func TestPostgresStore_UpdateStatus(t *testing.T) {
	db, cleanup := testutil.PGTest(t)
	defer cleanup()
	store := NewPostgresStore(db)
	ctx := context.Background()

	_ = store.Create(ctx, pgRegistrant("reg_pg_3", "three@example.com"))

	if err := store.UpdateStatus(ctx, "reg_pg_3", StatusPaid); err != nil {
		t.Fatalf("update status failed: %v", err)
	}
	got, _ := store.Get(ctx, "reg_pg_3")
	if got.Status != StatusPaid {
		t.Errorf("expected PAID, got %s", got.Status)
	}

	if err := store.UpdateStatus(ctx, "reg_pg_missing", StatusPaid); err != ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

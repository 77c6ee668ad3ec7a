package payments

import (
	"context"
	"testing"

	"github.com/walle-league/regpay/internal/testutil"
)

func TestPostgresStore_InsertAndGet(t *testing.T) {
	db, cleanup := testutil.PGTest(t)
	defer cleanup()
	store := NewPostgresStore(db)
	ctx := context.Background()

	order := newTestOrder("order_pg_1", "reg_1", StatusCreated)
	if err := store.Insert(ctx, order); err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	got, err := store.GetByOrderID(ctx, "order_pg_1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.SubjectID != "reg_1" || got.Status != StatusCreated {
		t.Errorf("unexpected order: %+v", got)
	}
	if got.Amount != 1500000 || got.Currency != "INR" {
		t.Errorf("unexpected amount %d %s", got.Amount, got.Currency)
	}

	if err := store.Insert(ctx, newTestOrder("order_pg_1", "reg_2", StatusCreated)); err != ErrDuplicateOrder {
		t.Errorf("expected ErrDuplicateOrder, got %v", err)
	}

	if _, err := store.GetByOrderID(ctx, "order_pg_missing"); err != ErrOrderNotFound {
		t.Errorf("expected ErrOrderNotFound, got %v", err)
	}
}

func TestPostgresStore_CompareAndTransition(t *testing.T) {
	db, cleanup := testutil.PGTest(t)
	defer cleanup()
	store := NewPostgresStore(db)
	ctx := context.Background()

	_ = store.Insert(ctx, newTestOrder("order_pg_2", "reg_1", StatusCreated))

	result, err := store.CompareAndTransition(ctx, "order_pg_2", StatusCreated, StatusCaptured, "pay_1", "sig_1")
	if err != nil {
		t.Fatalf("transition failed: %v", err)
	}
	if result != TransitionApplied {
		t.Fatalf("expected TransitionApplied, got %v", result)
	}

	// Redelivery lands on the terminal row and changes nothing.
	result, err = store.CompareAndTransition(ctx, "order_pg_2", StatusCreated, StatusFailed, "pay_2", "sig_2")
	if err != nil {
		t.Fatalf("noop transition should not error: %v", err)
	}
	if result != TransitionNoop {
		t.Fatalf("expected TransitionNoop, got %v", result)
	}

	got, _ := store.GetByOrderID(ctx, "order_pg_2")
	if got.Status != StatusCaptured || got.GatewayPaymentID != "pay_1" {
		t.Errorf("terminal row mutated by redelivery: %+v", got)
	}

	result, err = store.CompareAndTransition(ctx, "order_pg_missing", StatusCreated, StatusCaptured, "pay_1", "")
	if err != ErrOrderNotFound {
		t.Errorf("expected ErrOrderNotFound, got %v", err)
	}
	if result != TransitionNoop {
		t.Errorf("expected TransitionNoop, got %v", result)
	}
}

func TestPostgresStore_Queries(t *testing.T) {
	db, cleanup := testutil.PGTest(t)
	defer cleanup()
	store := NewPostgresStore(db)
	ctx := context.Background()

	_ = store.Insert(ctx, newTestOrder("order_pg_a", "reg_1", StatusFailed))
	_ = store.Insert(ctx, newTestOrder("order_pg_b", "reg_1", StatusCaptured))
	_ = store.Insert(ctx, newTestOrder("order_pg_c", "reg_2", StatusCreated))

	captured, err := store.FindCapturedBySubject(ctx, "reg_1")
	if err != nil {
		t.Fatalf("expected captured order: %v", err)
	}
	if captured.OrderID != "order_pg_b" {
		t.Errorf("expected order_pg_b, got %s", captured.OrderID)
	}
	if _, err := store.FindCapturedBySubject(ctx, "reg_2"); err != ErrOrderNotFound {
		t.Errorf("expected ErrOrderNotFound, got %v", err)
	}

	mine, err := store.ListBySubject(ctx, "reg_1")
	if err != nil {
		t.Fatalf("list by subject failed: %v", err)
	}
	if len(mine) != 2 {
		t.Errorf("expected 2 orders for reg_1, got %d", len(mine))
	}

	all, err := store.List(ctx, 10)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("expected 3 orders, got %d", len(all))
	}
}

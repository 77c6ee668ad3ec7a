package payments

import (
	"context"
	"testing"
	"time"
)

func newTestOrder(orderID, subjectID string, status Status) *Order {
	now := time.Now().UTC()
	return &Order{
		OrderID:   orderID,
		SubjectID: subjectID,
		Amount:    1500000,
		Currency:  "INR",
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestMemoryStore_InsertDuplicate(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	if err := store.Insert(ctx, newTestOrder("order_1", "reg_1", StatusCreated)); err != nil {
		t.Fatalf("first insert failed: %v", err)
	}
	if err := store.Insert(ctx, newTestOrder("order_1", "reg_2", StatusCreated)); err != ErrDuplicateOrder {
		t.Errorf("expected ErrDuplicateOrder, got %v", err)
	}
}

func TestMemoryStore_GetReturnsCopy(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	_ = store.Insert(ctx, newTestOrder("order_1", "reg_1", StatusCreated))

	got, err := store.GetByOrderID(ctx, "order_1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	got.Status = StatusFailed

	again, _ := store.GetByOrderID(ctx, "order_1")
	if again.Status != StatusCreated {
		t.Error("mutating a returned order should not affect stored state")
	}
}

func TestMemoryStore_CompareAndTransition(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	_ = store.Insert(ctx, newTestOrder("order_1", "reg_1", StatusCreated))

	result, err := store.CompareAndTransition(ctx, "order_1", StatusCreated, StatusCaptured, "pay_1", "sig_1")
	if err != nil {
		t.Fatalf("transition failed: %v", err)
	}
	if result != TransitionApplied {
		t.Fatalf("expected TransitionApplied, got %v", result)
	}

	order, _ := store.GetByOrderID(ctx, "order_1")
	if order.Status != StatusCaptured {
		t.Errorf("expected CAPTURED, got %s", order.Status)
	}
	if order.GatewayPaymentID != "pay_1" {
		t.Errorf("expected payment id recorded, got %q", order.GatewayPaymentID)
	}
}

func TestMemoryStore_CompareAndTransition_AlreadyTerminal(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	_ = store.Insert(ctx, newTestOrder("order_1", "reg_1", StatusCreated))
	_, _ = store.CompareAndTransition(ctx, "order_1", StatusCreated, StatusCaptured, "pay_1", "sig_1")

	result, err := store.CompareAndTransition(ctx, "order_1", StatusCreated, StatusFailed, "pay_2", "sig_2")
	if err != nil {
		t.Fatalf("noop transition should not error: %v", err)
	}
	if result != TransitionNoop {
		t.Fatalf("expected TransitionNoop, got %v", result)
	}

	order, _ := store.GetByOrderID(ctx, "order_1")
	if order.Status != StatusCaptured {
		t.Errorf("terminal status must not change, got %s", order.Status)
	}
	if order.GatewayPaymentID != "pay_1" {
		t.Errorf("noop must not overwrite payment id, got %q", order.GatewayPaymentID)
	}
}

func TestMemoryStore_CompareAndTransition_UnknownOrder(t *testing.T) {
	store := NewMemoryStore()

	result, err := store.CompareAndTransition(context.Background(), "order_missing", StatusCreated, StatusCaptured, "pay_1", "")
	if err != ErrOrderNotFound {
		t.Errorf("expected ErrOrderNotFound, got %v", err)
	}
	if result != TransitionNoop {
		t.Errorf("expected TransitionNoop, got %v", result)
	}
}

func TestMemoryStore_FindCapturedBySubject(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	_ = store.Insert(ctx, newTestOrder("order_1", "reg_1", StatusFailed))
	_ = store.Insert(ctx, newTestOrder("order_2", "reg_1", StatusCaptured))
	_ = store.Insert(ctx, newTestOrder("order_3", "reg_2", StatusCreated))

	got, err := store.FindCapturedBySubject(ctx, "reg_1")
	if err != nil {
		t.Fatalf("expected captured order, got %v", err)
	}
	if got.OrderID != "order_2" {
		t.Errorf("expected order_2, got %s", got.OrderID)
	}

	if _, err := store.FindCapturedBySubject(ctx, "reg_2"); err != ErrOrderNotFound {
		t.Errorf("expected ErrOrderNotFound for uncaptured subject, got %v", err)
	}
}

func TestMemoryStore_ListNewestFirst(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	old := newTestOrder("order_old", "reg_1", StatusCreated)
	old.CreatedAt = time.Now().UTC().Add(-time.Hour)
	_ = store.Insert(ctx, old)
	_ = store.Insert(ctx, newTestOrder("order_new", "reg_1", StatusCreated))

	orders, err := store.ListBySubject(ctx, "reg_1")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(orders) != 2 {
		t.Fatalf("expected 2 orders, got %d", len(orders))
	}
	if orders[0].OrderID != "order_new" {
		t.Errorf("expected newest first, got %s", orders[0].OrderID)
	}

	limited, _ := store.List(ctx, 1)
	if len(limited) != 1 || limited[0].OrderID != "order_new" {
		t.Errorf("expected limit to keep newest order, got %+v", limited)
	}
}

package registrants

import (
	"context"
	"testing"
)

func register(t *testing.T, svc *Service, name, email string) *Registrant {
	t.Helper()
	r, err := svc.Register(context.Background(), RegisterRequest{Name: name, Email: email})
	if err != nil {
		t.Fatalf("register %s failed: %v", email, err)
	}
	return r
}

func TestRegister_Defaults(t *testing.T) {
	svc := NewService(NewMemoryStore())

	r := register(t, svc, "Asha", "Asha@Example.com")
	if r.Status != StatusPendingPayment {
		t.Errorf("expected PENDING_PAYMENT, got %s", r.Status)
	}
	if r.Email != "asha@example.com" {
		t.Errorf("email should be lowercased, got %q", r.Email)
	}
	if r.ID == "" {
		t.Error("expected generated id")
	}

	got, err := svc.GetByEmail(context.Background(), "ASHA@example.com")
	if err != nil {
		t.Fatalf("lookup by email failed: %v", err)
	}
	if got.ID != r.ID {
		t.Errorf("email lookup returned wrong registrant: %s", got.ID)
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc := NewService(NewMemoryStore())
	register(t, svc, "Asha", "asha@example.com")

	if _, err := svc.Register(context.Background(), RegisterRequest{Name: "Other", Email: "ASHA@example.com"}); err != ErrEmailExists {
		t.Errorf("expected ErrEmailExists, got %v", err)
	}
}

func TestMarkPaid_ForwardOnly(t *testing.T) {
	svc := NewService(NewMemoryStore())
	r := register(t, svc, "Asha", "asha@example.com")

	if err := svc.MarkPaid(context.Background(), r.ID); err != nil {
		t.Fatalf("mark paid failed: %v", err)
	}
	got, _ := svc.Get(context.Background(), r.ID)
	if got.Status != StatusPaid {
		t.Fatalf("expected PAID, got %s", got.Status)
	}

	// Replays are harmless.
	if err := svc.MarkPaid(context.Background(), r.ID); err != nil {
		t.Fatalf("replay mark paid failed: %v", err)
	}

	// A capture redelivery after approval must not regress the decision.
	if _, err := svc.Approve(context.Background(), r.ID); err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	if err := svc.MarkPaid(context.Background(), r.ID); err != nil {
		t.Fatalf("mark paid after approval failed: %v", err)
	}
	got, _ = svc.Get(context.Background(), r.ID)
	if got.Status != StatusApproved {
		t.Errorf("approval must survive capture replay, got %s", got.Status)
	}
}

func TestMarkPaid_UnknownRegistrant(t *testing.T) {
	svc := NewService(NewMemoryStore())

	if err := svc.MarkPaid(context.Background(), "reg_ghost"); err != ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestDecide_RequiresPayment(t *testing.T) {
	svc := NewService(NewMemoryStore())
	r := register(t, svc, "Asha", "asha@example.com")

	if _, err := svc.Approve(context.Background(), r.ID); err == nil {
		t.Error("unpaid registrant must not be approvable")
	}
	if _, err := svc.Waitlist(context.Background(), r.ID); err == nil {
		t.Error("unpaid registrant must not be waitlistable")
	}

	_ = svc.MarkPaid(context.Background(), r.ID)
	got, err := svc.Waitlist(context.Background(), r.ID)
	if err != nil {
		t.Fatalf("waitlist after payment failed: %v", err)
	}
	if got.Status != StatusWaitlisted {
		t.Errorf("expected WAITLISTED, got %s", got.Status)
	}
}

func TestStatusPaid(t *testing.T) {
	if StatusPendingPayment.Paid() {
		t.Error("PENDING_PAYMENT is not paid")
	}
	for _, s := range []Status{StatusPaid, StatusApproved, StatusWaitlisted} {
		if !s.Paid() {
			t.Errorf("%s should count as paid", s)
		}
	}
}

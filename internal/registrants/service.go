package registrants

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/walle-league/regpay/internal/idgen"
	"github.com/walle-league/regpay/internal/logging"
	"github.com/walle-league/regpay/internal/validation"
)

// Service provides registration business logic.
type Service struct {
	store Store
}

// NewService creates a new registrant service.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// Register creates a new registration in PENDING_PAYMENT.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*Registrant, error) {
	now := time.Now().UTC()
	r := &Registrant{
		ID:        idgen.WithPrefix("reg_"),
		Name:      validation.SanitizeString(req.Name, 128),
		Email:     strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:     validation.SanitizeString(req.Phone, 32),
		TeamName:  validation.SanitizeString(req.TeamName, 128),
		Status:    StatusPendingPayment,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.Create(ctx, r); err != nil {
		return nil, err
	}

	registrationsTotal.Inc()
	logging.L(ctx).Info("registrant created", "registrant_id", r.ID)
	return r, nil
}

// Get returns a registrant by ID.
func (s *Service) Get(ctx context.Context, id string) (*Registrant, error) {
	return s.store.Get(ctx, id)
}

// GetByEmail returns a registrant by email.
func (s *Service) GetByEmail(ctx context.Context, email string) (*Registrant, error) {
	return s.store.GetByEmail(ctx, email)
}

// MarkPaid records a confirmed fee capture. It is idempotent and forward
// only: a registrant already past PENDING_PAYMENT is left untouched so
// duplicate capture confirmations cannot regress an approval decision.
func (s *Service) MarkPaid(ctx context.Context, id string) error {
	r, err := s.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if r.Status != StatusPendingPayment {
		return nil
	}
	if err := s.store.UpdateStatus(ctx, id, StatusPaid); err != nil {
		return fmt.Errorf("mark registrant paid: %w", err)
	}
	logging.L(ctx).Info("registrant marked paid", "registrant_id", id)
	return nil
}

// Approve moves a paid registrant to APPROVED.
func (s *Service) Approve(ctx context.Context, id string) (*Registrant, error) {
	return s.decide(ctx, id, StatusApproved)
}

// Waitlist moves a paid registrant to WAITLISTED.
func (s *Service) Waitlist(ctx context.Context, id string) (*Registrant, error) {
	return s.decide(ctx, id, StatusWaitlisted)
}

func (s *Service) decide(ctx context.Context, id string, status Status) (*Registrant, error) {
	r, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !r.Status.Paid() {
		return nil, fmt.Errorf("registrant %s has not paid, cannot move to %s", id, status)
	}
	if err := s.store.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}
	return s.store.Get(ctx, id)
}

// List returns recent registrants, newest first.
func (s *Service) List(ctx context.Context, limit int) ([]*Registrant, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.store.List(ctx, limit)
}

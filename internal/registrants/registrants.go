// Package registrants manages tournament registration records.
//
// A registrant starts in PENDING_PAYMENT and is moved to PAID by the
// payment subsystem once a capture is confirmed. Organizers then approve
// or waitlist paid registrants. Payment status only ever moves forward;
// nothing un-pays a registrant.
package registrants

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound    = errors.New("registrant not found")
	ErrEmailExists = errors.New("email already registered")
)

// Status is the registration lifecycle state.
type Status string

const (
	StatusPendingPayment Status = "PENDING_PAYMENT"
	StatusPaid           Status = "PAID"
	StatusApproved       Status = "APPROVED"
	StatusWaitlisted     Status = "WAITLISTED"
)

// Paid reports whether the registrant's fee has been captured.
// APPROVED and WAITLISTED are post-payment states.
func (s Status) Paid() bool {
	return s == StatusPaid || s == StatusApproved || s == StatusWaitlisted
}

// Registrant is a tournament registration record.
type Registrant struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	TeamName  string    `json:"teamName,omitempty"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Store persists registrants. Create must enforce email uniqueness at the
// storage layer.
type Store interface {
	Create(ctx context.Context, r *Registrant) error
	Get(ctx context.Context, id string) (*Registrant, error)
	GetByEmail(ctx context.Context, email string) (*Registrant, error)
	UpdateStatus(ctx context.Context, id string, status Status) error
	List(ctx context.Context, limit int) ([]*Registrant, error)
}

// RegisterRequest is the body for POST /registrants.
type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Phone    string `json:"phone"`
	TeamName string `json:"team_name"`
}

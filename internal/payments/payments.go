// Package payments implements the payment lifecycle for registrations.
//
// An order is minted on the payment gateway, recorded as CREATED, and later
// confirmed captured through two independent channels: a client-side verify
// call relayed by the paying browser, and a server-to-server webhook. The
// two channels race by design and may both deliver, more than once each.
// Correctness rests on a single atomic compare-and-transition primitive at
// the storage layer: an order reaches exactly one terminal state no matter
// how many confirmations arrive, in what order, or from which channel.
package payments

import (
	"context"
	"errors"
	"time"
)

var (
	ErrOrderNotFound        = errors.New("payment order not found")
	ErrDuplicateOrder       = errors.New("payment order already exists")
	ErrSubjectNotFound      = errors.New("registrant not found")
	ErrAlreadyPaid          = errors.New("registrant has already paid")
	ErrAlreadyCaptured      = errors.New("registrant already has a captured payment")
	ErrInvalidSignature     = errors.New("invalid signature")
	ErrMissingSignature     = errors.New("missing signature header")
	ErrWebhookSecretMissing = errors.New("webhook secret not configured")
)

// Status is the lifecycle state of a payment order.
// CAPTURED and FAILED are terminal; no transition leaves them.
type Status string

const (
	StatusCreated  Status = "CREATED"
	StatusCaptured Status = "CAPTURED"
	StatusFailed   Status = "FAILED"
)

// Terminal reports whether no further transition is allowed out of s.
func (s Status) Terminal() bool {
	return s == StatusCaptured || s == StatusFailed
}

// Order is the durable payment record, keyed by the gateway-issued order id.
// The lifecycle service is its only writer; all status changes go through
// Store.CompareAndTransition.
type Order struct {
	OrderID   string `json:"orderId"`
	SubjectID string `json:"subjectId"`
	Amount    int64  `json:"amount"` // minor units
	Currency  string `json:"currency"`
	Status    Status `json:"status"`

	// Recorded once a verification attempt (successful or failed) has been
	// seen. Used for forensic replay analysis, not business logic.
	GatewayPaymentID string `json:"gatewayPaymentId,omitempty"`
	GatewaySignature string `json:"-"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TransitionResult reports the outcome of a compare-and-transition.
type TransitionResult int

const (
	// TransitionApplied means the row moved from the expected status to the
	// new one in this call.
	TransitionApplied TransitionResult = iota
	// TransitionNoop means the row was already in a terminal state and was
	// left untouched. Duplicate deliveries land here.
	TransitionNoop
)

// Store persists payment orders.
//
// Insert must enforce order-id uniqueness at the storage layer, not via a
// pre-check, so concurrent creation retries fail loudly instead of
// silently duplicating. CompareAndTransition is the only mutation used for
// status changes and must be atomic: either the stored status equals
// expected and the row is updated, or nothing is mutated.
type Store interface {
	Insert(ctx context.Context, order *Order) error
	GetByOrderID(ctx context.Context, orderID string) (*Order, error)
	FindCapturedBySubject(ctx context.Context, subjectID string) (*Order, error)
	CompareAndTransition(ctx context.Context, orderID string, expected, next Status, paymentID, signature string) (TransitionResult, error)
	ListBySubject(ctx context.Context, subjectID string) ([]*Order, error)
	List(ctx context.Context, limit int) ([]*Order, error)
}

// Subject is the lifecycle service's view of a registrant.
type Subject struct {
	ID    string
	Email string
	Name  string
	Paid  bool
}

// SubjectDirectory is the collaborator interface into the registration
// subsystem. MarkSubjectPaid must be idempotent and forward-only: replays
// of the same outcome are harmless and nothing ever un-pays a subject.
type SubjectDirectory interface {
	GetSubject(ctx context.Context, id string) (*Subject, error)
	MarkSubjectPaid(ctx context.Context, id string) error
}

// Notifier announces a confirmed capture. Implementations are
// fire-and-forget: they must never block or fail the payment transition.
type Notifier interface {
	PaymentCaptured(ctx context.Context, subject *Subject, order *Order)
}

// CreateOrderRequest is the body for POST /payments/create-order.
type CreateOrderRequest struct {
	SubjectID string `json:"subject_id" binding:"required"`
}

// VerifyRequest is the body for POST /payments/verify.
type VerifyRequest struct {
	SubjectID string `json:"subject_id" binding:"required"`
	OrderID   string `json:"order_id" binding:"required"`
	PaymentID string `json:"payment_id" binding:"required"`
	Signature string `json:"signature" binding:"required"`
}

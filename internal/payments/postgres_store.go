package payments

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
)

// Compile-time check that PostgresStore implements Store.
var _ Store = (*PostgresStore)(nil)

// PostgresStore implements Store backed by PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a new PostgreSQL-backed order store.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Migrate creates the payment_orders table if it doesn't exist.
func (p *PostgresStore) Migrate(ctx context.Context) error {
	_, err := p.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS payment_orders (
			order_id           VARCHAR(128) PRIMARY KEY,
			subject_id         VARCHAR(64) NOT NULL,
			amount             BIGINT NOT NULL,
			currency           VARCHAR(8) NOT NULL,
			status             VARCHAR(16) NOT NULL DEFAULT 'CREATED',
			gateway_payment_id VARCHAR(128),
			gateway_signature  VARCHAR(128),
			created_at         TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at         TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_payment_orders_subject ON payment_orders(subject_id);
		CREATE INDEX IF NOT EXISTS idx_payment_orders_status ON payment_orders(status);
	`)
	return err
}

// Insert stores a new order. The primary key constraint, not a pre-check,
// rejects duplicate order ids so concurrent retries fail loudly.
func (p *PostgresStore) Insert(ctx context.Context, order *Order) error {
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO payment_orders (
			order_id, subject_id, amount, currency, status,
			gateway_payment_id, gateway_signature, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`,
		order.OrderID, order.SubjectID, order.Amount, order.Currency, string(order.Status),
		nullString(order.GatewayPaymentID), nullString(order.GatewaySignature),
		order.CreatedAt, order.UpdatedAt,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return ErrDuplicateOrder
		}
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

// GetByOrderID retrieves an order by its gateway-issued id.
func (p *PostgresStore) GetByOrderID(ctx context.Context, orderID string) (*Order, error) {
	row := p.db.QueryRowContext(ctx, selectOrder+` WHERE order_id = $1`, orderID)
	order, err := scanOrder(row)
	if err == sql.ErrNoRows {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	return order, nil
}

// FindCapturedBySubject returns the subject's captured order, if any.
func (p *PostgresStore) FindCapturedBySubject(ctx context.Context, subjectID string) (*Order, error) {
	row := p.db.QueryRowContext(ctx, selectOrder+`
		WHERE subject_id = $1 AND status = $2
		ORDER BY created_at DESC LIMIT 1
	`, subjectID, string(StatusCaptured))
	order, err := scanOrder(row)
	if err == sql.ErrNoRows {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find captured order: %w", err)
	}
	return order, nil
}

// CompareAndTransition applies the status change in a single guarded
// UPDATE. The WHERE clause is the atomicity: a concurrent transition on
// the same row makes this statement match zero rows, and the follow-up
// read distinguishes a lost race from an unknown order.
func (p *PostgresStore) CompareAndTransition(ctx context.Context, orderID string, expected, next Status, paymentID, signature string) (TransitionResult, error) {
	res, err := p.db.ExecContext(ctx, `
		UPDATE payment_orders
		SET status = $1, gateway_payment_id = $2, gateway_signature = $3, updated_at = NOW()
		WHERE order_id = $4 AND status = $5
	`, string(next), nullString(paymentID), nullString(signature), orderID, string(expected))
	if err != nil {
		return TransitionNoop, fmt.Errorf("transition order: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return TransitionNoop, fmt.Errorf("transition rows affected: %w", err)
	}
	if affected == 1 {
		return TransitionApplied, nil
	}

	// Zero rows: either the order doesn't exist or it is already terminal.
	if _, err := p.GetByOrderID(ctx, orderID); err != nil {
		return TransitionNoop, err
	}
	return TransitionNoop, nil
}

// ListBySubject returns all orders for a subject, newest first.
func (p *PostgresStore) ListBySubject(ctx context.Context, subjectID string) ([]*Order, error) {
	rows, err := p.db.QueryContext(ctx, selectOrder+`
		WHERE subject_id = $1 ORDER BY created_at DESC
	`, subjectID)
	if err != nil {
		return nil, fmt.Errorf("list orders by subject: %w", err)
	}
	defer rows.Close()
	return collectOrders(rows)
}

// List returns recent orders, newest first.
func (p *PostgresStore) List(ctx context.Context, limit int) ([]*Order, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := p.db.QueryContext(ctx, selectOrder+`
		ORDER BY created_at DESC LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()
	return collectOrders(rows)
}

const selectOrder = `
	SELECT order_id, subject_id, amount, currency, status,
		gateway_payment_id, gateway_signature, created_at, updated_at
	FROM payment_orders`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanOrder(row rowScanner) (*Order, error) {
	var (
		order     Order
		status    string
		paymentID sql.NullString
		signature sql.NullString
	)
	err := row.Scan(
		&order.OrderID, &order.SubjectID, &order.Amount, &order.Currency, &status,
		&paymentID, &signature, &order.CreatedAt, &order.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	order.Status = Status(status)
	order.GatewayPaymentID = paymentID.String
	order.GatewaySignature = signature.String
	return &order, nil
}

func collectOrders(rows *sql.Rows) ([]*Order, error) {
	var orders []*Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, order)
	}
	return orders, rows.Err()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

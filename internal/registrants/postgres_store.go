package registrants

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/lib/pq"
)

// Compile-time check that PostgresStore implements Store.
var _ Store = (*PostgresStore)(nil)

// PostgresStore implements Store backed by PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a new PostgreSQL-backed registrant store.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Migrate creates the registrants table if it doesn't exist.
func (p *PostgresStore) Migrate(ctx context.Context) error {
	_, err := p.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS registrants (
			id         VARCHAR(64) PRIMARY KEY,
			name       VARCHAR(128) NOT NULL,
			email      VARCHAR(255) NOT NULL UNIQUE,
			phone      VARCHAR(32),
			team_name  VARCHAR(128),
			status     VARCHAR(20) NOT NULL DEFAULT 'PENDING_PAYMENT',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_registrants_status ON registrants(status);
	`)
	return err
}

func (p *PostgresStore) Create(ctx context.Context, r *Registrant) error {
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO registrants (id, name, email, phone, team_name, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, r.ID, r.Name, strings.ToLower(r.Email), r.Phone, r.TeamName, string(r.Status), r.CreatedAt, r.UpdatedAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return ErrEmailExists
		}
		return fmt.Errorf("insert registrant: %w", err)
	}
	return nil
}

func (p *PostgresStore) Get(ctx context.Context, id string) (*Registrant, error) {
	row := p.db.QueryRowContext(ctx, selectRegistrant+` WHERE id = $1`, id)
	r, err := scanRegistrant(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get registrant: %w", err)
	}
	return r, nil
}

func (p *PostgresStore) GetByEmail(ctx context.Context, email string) (*Registrant, error) {
	row := p.db.QueryRowContext(ctx, selectRegistrant+` WHERE email = $1`, strings.ToLower(email))
	r, err := scanRegistrant(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get registrant by email: %w", err)
	}
	return r, nil
}

func (p *PostgresStore) UpdateStatus(ctx context.Context, id string, status Status) error {
	res, err := p.db.ExecContext(ctx, `
		UPDATE registrants SET status = $1, updated_at = NOW() WHERE id = $2
	`, string(status), id)
	if err != nil {
		return fmt.Errorf("update registrant status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update registrant rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *PostgresStore) List(ctx context.Context, limit int) ([]*Registrant, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := p.db.QueryContext(ctx, selectRegistrant+` ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list registrants: %w", err)
	}
	defer rows.Close()

	var result []*Registrant
	for rows.Next() {
		r, err := scanRegistrant(rows)
		if err != nil {
			return nil, fmt.Errorf("scan registrant: %w", err)
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

const selectRegistrant = `
	SELECT id, name, email, phone, team_name, status, created_at, updated_at
	FROM registrants`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRegistrant(row rowScanner) (*Registrant, error) {
	var (
		r        Registrant
		status   string
		phone    sql.NullString
		teamName sql.NullString
	)
	err := row.Scan(&r.ID, &r.Name, &r.Email, &phone, &teamName, &status, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, err
	}
	r.Status = Status(status)
	r.Phone = phone.String
	r.TeamName = teamName.String
	return &r, nil
}

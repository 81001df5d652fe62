package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Organizations reads and writes tenant accounts.
type Organizations struct {
	db *sqlx.DB
}

// NewOrganizations creates the store over an open database handle.
func NewOrganizations(db *sqlx.DB) *Organizations {
	return &Organizations{db: db}
}

// ByUUID looks up an organization by its UUID. Returns ErrNotFound when no
// such organization exists.
func (s *Organizations) ByUUID(ctx context.Context, uuid string) (*Organization, error) {
	var o Organization
	err := s.db.GetContext(ctx, &o,
		`SELECT id, organization_uuid, name, email, status, created_at
		   FROM organizations WHERE organization_uuid = $1`, uuid)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("organization by uuid: %w", err)
	}
	return &o, nil
}

// ExistsByEmail reports whether an organization is already registered under
// the email.
func (s *Organizations) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := s.db.GetContext(ctx, &exists,
		`SELECT EXISTS (SELECT 1 FROM organizations WHERE email = $1)`, email)
	if err != nil {
		return false, fmt.Errorf("organization exists by email: %w", err)
	}
	return exists, nil
}

// Insert stores a new organization and fills in its generated id.
func (s *Organizations) Insert(ctx context.Context, o *Organization) error {
	err := s.db.QueryRowxContext(ctx,
		`INSERT INTO organizations (organization_uuid, name, email, status)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at`,
		o.UUID, o.Name, o.Email, o.Status,
	).Scan(&o.ID, &o.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert organization: %w", err)
	}
	return nil
}

// UpdateStatus transitions the organization to the given status.
func (s *Organizations) UpdateStatus(ctx context.Context, uuid, status string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE organizations SET status = $2 WHERE organization_uuid = $1`, uuid, status)
	if err != nil {
		return fmt.Errorf("update organization status: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

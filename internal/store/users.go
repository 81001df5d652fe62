package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// SystemUsers reads and writes platform administrator accounts.
type SystemUsers struct {
	db *sqlx.DB
}

// NewSystemUsers creates the store over an open database handle.
func NewSystemUsers(db *sqlx.DB) *SystemUsers {
	return &SystemUsers{db: db}
}

// ByEmail looks up a system user by email. Returns ErrNotFound when no such
// account exists.
func (s *SystemUsers) ByEmail(ctx context.Context, email string) (*SystemUser, error) {
	var u SystemUser
	err := s.db.GetContext(ctx, &u,
		`SELECT id, email, full_name, password_hash, role, is_active, last_login
		   FROM system_users WHERE email = $1`, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("system user by email: %w", err)
	}
	return &u, nil
}

// StampLastLogin records the time of a successful login.
func (s *SystemUsers) StampLastLogin(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE system_users SET last_login = now() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("stamp system user last login: %w", err)
	}
	return nil
}

// AppUsers reads and writes tenant user accounts.
type AppUsers struct {
	db *sqlx.DB
}

// NewAppUsers creates the store over an open database handle.
func NewAppUsers(db *sqlx.DB) *AppUsers {
	return &AppUsers{db: db}
}

// ByEmail looks up a tenant user by email. The lookup is global, not
// tenant-scoped: a login request carries no tenant context yet.
func (s *AppUsers) ByEmail(ctx context.Context, email string) (*AppUser, error) {
	var u AppUser
	err := s.db.GetContext(ctx, &u,
		`SELECT id, organization_uuid, email, username, full_name,
		        password_hash, roles, is_active, must_change_password, last_login
		   FROM app_users WHERE email = $1`, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("app user by email: %w", err)
	}
	return &u, nil
}

// Insert stores a new tenant user and fills in its generated id.
func (s *AppUsers) Insert(ctx context.Context, u *AppUser) error {
	err := s.db.QueryRowxContext(ctx,
		`INSERT INTO app_users
		        (organization_uuid, email, username, full_name, password_hash,
		         roles, is_active, must_change_password)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id`,
		u.OrganizationUUID, u.Email, u.Username, u.FullName, u.PasswordHash,
		u.Roles, u.IsActive, u.MustChangePassword,
	).Scan(&u.ID)
	if err != nil {
		return fmt.Errorf("insert app user: %w", err)
	}
	return nil
}

// StampLastLogin records the time of a successful login.
func (s *AppUsers) StampLastLogin(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE app_users SET last_login = now() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("stamp app user last login: %w", err)
	}
	return nil
}

// ActivateByOrganization enables every user of an organization, used when a
// platform administrator approves the organization.
func (s *AppUsers) ActivateByOrganization(ctx context.Context, orgUUID string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE app_users SET is_active = true WHERE organization_uuid = $1`, orgUUID)
	if err != nil {
		return fmt.Errorf("activate users for organization: %w", err)
	}
	return nil
}

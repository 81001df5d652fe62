package store

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Employees reads and writes tenant-owned employee rows. Every query is
// filtered by the organization UUID the caller resolved from the request
// scope; there is deliberately no unscoped listing.
type Employees struct {
	db *sqlx.DB
}

// NewEmployees creates the store over an open database handle.
func NewEmployees(db *sqlx.DB) *Employees {
	return &Employees{db: db}
}

// ListByOrganization returns the organization's employees.
func (s *Employees) ListByOrganization(ctx context.Context, orgUUID string) ([]Employee, error) {
	employees := []Employee{}
	err := s.db.SelectContext(ctx, &employees,
		`SELECT id, organization_uuid, first_name, last_name, email, designation
		   FROM employees WHERE organization_uuid = $1
		  ORDER BY id`, orgUUID)
	if err != nil {
		return nil, fmt.Errorf("list employees: %w", err)
	}
	return employees, nil
}

// Insert stores a new employee under the given organization.
func (s *Employees) Insert(ctx context.Context, e *Employee) error {
	err := s.db.QueryRowxContext(ctx,
		`INSERT INTO employees (organization_uuid, first_name, last_name, email, designation)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id`,
		e.OrganizationUUID, e.FirstName, e.LastName, e.Email, e.Designation,
	).Scan(&e.ID)
	if err != nil {
		return fmt.Errorf("insert employee: %w", err)
	}
	return nil
}

// Package store provides the Postgres-backed credential and entity stores.
// Tenant-owned rows are always read and written through an organization UUID
// supplied by the caller from the request scope.
package store

import (
	"database/sql"
	"time"
)

// Organization statuses. A freshly signed-up organization is pending until a
// platform administrator approves it; only ACTIVE organizations can log in.
const (
	OrgStatusPendingApproval = "PENDING_APPROVAL"
	OrgStatusActive          = "ACTIVE"
	OrgStatusSuspended       = "SUSPENDED"
	OrgStatusRejected        = "REJECTED"
)

// SystemUser is a platform administrator. System users are not tenant-scoped.
type SystemUser struct {
	ID           int64        `db:"id"`
	Email        string       `db:"email"`
	FullName     string       `db:"full_name"`
	PasswordHash string       `db:"password_hash"`
	Role         string       `db:"role"`
	IsActive     bool         `db:"is_active"`
	LastLogin    sql.NullTime `db:"last_login"`
}

// AppUser is a tenant user belonging to exactly one organization. Roles is a
// comma-joined role list, e.g. "ROLE_ORG_ADMIN,ROLE_HR_STAFF".
type AppUser struct {
	ID                 int64        `db:"id"`
	OrganizationUUID   string       `db:"organization_uuid"`
	Email              string       `db:"email"`
	Username           string       `db:"username"`
	FullName           string       `db:"full_name"`
	PasswordHash       string       `db:"password_hash"`
	Roles              string       `db:"roles"`
	IsActive           bool         `db:"is_active"`
	MustChangePassword bool         `db:"must_change_password"`
	LastLogin          sql.NullTime `db:"last_login"`
}

// Organization is a tenant account. All tenant-owned data is partitioned by
// its UUID.
type Organization struct {
	ID     int64  `db:"id"`
	UUID   string `db:"organization_uuid"`
	Name   string `db:"name"`
	Email  string `db:"email"`
	Status string `db:"status"`

	CreatedAt time.Time `db:"created_at"`
}

// Employee is a tenant-owned entity, included here as the demonstrative
// downstream consumer of the request scope's tenant id.
type Employee struct {
	ID               int64  `db:"id"`
	OrganizationUUID string `db:"organization_uuid"`
	FirstName        string `db:"first_name"`
	LastName         string `db:"last_name"`
	Email            string `db:"email"`
	Designation      string `db:"designation"`
}

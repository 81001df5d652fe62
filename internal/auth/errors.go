package auth

import "errors"

var (
	// ErrInvalidCredentials covers both an unknown email and a password
	// mismatch. The two are deliberately indistinguishable to resist account
	// enumeration.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrAccountInactive is returned when the account exists but is disabled.
	ErrAccountInactive = errors.New("account is inactive")
	// ErrTenantNotApproved is returned when the user's organization has not
	// been approved yet or is otherwise not active.
	ErrTenantNotApproved = errors.New("organization is not approved")
	// ErrEmailTaken is returned by signup when the email already identifies an
	// organization.
	ErrEmailTaken = errors.New("email already registered")
)

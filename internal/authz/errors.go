package authz

import "errors"

var (
	// ErrUnauthenticated is returned when a protected route is reached with no
	// established request identity.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrInsufficientRole is returned when an authenticated identity lacks
	// every role a route requires.
	ErrInsufficientRole = errors.New("insufficient role")
)

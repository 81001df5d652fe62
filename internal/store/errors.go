package store

import "errors"

var (
	// ErrNotFound is returned when a lookup matches no row.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateEmail is returned when an insert would reuse an email that
	// already identifies an organization or user.
	ErrDuplicateEmail = errors.New("email already registered")
)

package token

import "errors"

var (
	// ErrMalformedToken is returned when a token is not a three-segment compact JWS.
	ErrMalformedToken = errors.New("malformed token")
	// ErrInvalidSignature is returned when the HMAC signature does not verify.
	ErrInvalidSignature = errors.New("invalid token signature")
	// ErrExpired is returned when the token's expiry has passed.
	ErrExpired = errors.New("token expired")
)

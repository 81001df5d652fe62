// Package token implements the signed identity tokens that carry a caller's
// tenant and role claims between requests. Tokens are compact HS256 JWS
// strings; the claim set is the sole source of truth for request scoping, so
// a decoded token is never re-checked against the credential stores.
package token

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// User type claim values. An organization user always carries the owning
// organization's UUID in the org claim; a system administrator never does.
const (
	UserTypeOrgUser     = "ORG_USER"
	UserTypeSystemAdmin = "SYSTEM_ADMIN"
)

// Claims is the wire claim set embedded in every issued token.
//
// UserID is declared as int64 so numeric identity survives a decode exactly;
// decoding through an untyped map would round it through float64.
type Claims struct {
	UserID   int64   `json:"userId"`
	Email    string  `json:"email"`
	Org      *string `json:"org"`
	Roles    string  `json:"roles"`
	UserType string  `json:"userType"`
	jwt.RegisteredClaims
}

// IsSystemAdmin reports whether the claims identify a platform administrator.
func (c *Claims) IsSystemAdmin() bool {
	return c.UserType == UserTypeSystemAdmin
}

// RoleList splits the comma-joined roles claim into trimmed role names.
// Empty entries are dropped.
func (c *Claims) RoleList() []string {
	parts := strings.Split(c.Roles, ",")
	roles := make([]string, 0, len(parts))
	for _, p := range parts {
		if r := strings.TrimSpace(p); r != "" {
			roles = append(roles, r)
		}
	}
	return roles
}

// Codec signs and verifies identity tokens with a single shared HMAC secret.
// The secret is immutable after construction and safe for concurrent use.
type Codec struct {
	secret []byte
	now    func() time.Time
}

// NewCodec creates a Codec over the shared signing secret.
func NewCodec(secret []byte) (*Codec, error) {
	if len(secret) == 0 {
		return nil, errors.New("token: signing secret must not be empty")
	}
	return &Codec{secret: secret, now: time.Now}, nil
}

// WithClock overrides the codec's clock. Test hook.
func (c *Codec) WithClock(now func() time.Time) *Codec {
	c.now = now
	return c
}

// Issue serializes and signs the claim set into a compact
// header.payload.signature string. Pure over secret, claims, and clock.
func (c *Codec) Issue(claims *Claims) (string, error) {
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tok.SignedString(c.secret)
}

// Decode verifies and parses a token. It fails with ErrMalformedToken when
// the string is not exactly three dot-separated segments, ErrInvalidSignature
// when the HMAC does not verify, and ErrExpired once now >= exp. On success
// the claims are returned unmodified.
func (c *Codec) Decode(tokenStr string) (*Claims, error) {
	if strings.Count(tokenStr, ".") != 2 {
		return nil, ErrMalformedToken
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(c.now),
	)
	claims := &Claims{}
	_, err := parser.ParseWithClaims(tokenStr, claims, func(*jwt.Token) (interface{}, error) {
		return c.secret, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, ErrInvalidSignature
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrExpired
		default:
			return nil, ErrMalformedToken
		}
	}

	// The upstream parser treats now == exp as still valid; the expiry
	// contract here is exclusive of the boundary.
	if claims.ExpiresAt == nil || !c.now().Before(claims.ExpiresAt.Time) {
		return nil, ErrExpired
	}

	return claims, nil
}

// Validate reports whether the token decodes cleanly and is unexpired.
// It never returns an error; any decode failure yields false.
func (c *Codec) Validate(tokenStr string) bool {
	_, err := c.Decode(tokenStr)
	return err == nil
}

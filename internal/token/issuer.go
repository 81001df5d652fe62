package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Issuer builds signed tokens for authenticated principals. Expiry is always
// issue time plus the configured TTL; both the TTL and the signing secret are
// supplied by configuration, never hardcoded.
type Issuer struct {
	codec *Codec
	ttl   time.Duration
	now   func() time.Time
}

// NewIssuer creates an Issuer over the codec with a fixed token lifetime.
func NewIssuer(codec *Codec, ttl time.Duration) (*Issuer, error) {
	if codec == nil {
		return nil, errors.New("token: issuer requires a codec")
	}
	if ttl <= 0 {
		return nil, errors.New("token: TTL must be positive")
	}
	return &Issuer{codec: codec, ttl: ttl, now: time.Now}, nil
}

// WithClock overrides the issuer's clock. Test hook.
func (i *Issuer) WithClock(now func() time.Time) *Issuer {
	i.now = now
	return i
}

// IssueUserToken signs a token for an organization user. The org claim is the
// owning organization's UUID and userType is ORG_USER.
func (i *Issuer) IssueUserToken(userID int64, email, orgUUID, roles string) (string, error) {
	org := orgUUID
	return i.codec.Issue(i.baseClaims(userID, email, roles, UserTypeOrgUser, &org))
}

// IssueAdminToken signs a token for a platform administrator. The org claim
// is null and userType is SYSTEM_ADMIN.
func (i *Issuer) IssueAdminToken(adminID int64, email, role string) (string, error) {
	return i.codec.Issue(i.baseClaims(adminID, email, role, UserTypeSystemAdmin, nil))
}

func (i *Issuer) baseClaims(userID int64, email, roles, userType string, org *string) *Claims {
	now := i.now()
	return &Claims{
		UserID:   userID,
		Email:    email,
		Org:      org,
		Roles:    roles,
		UserType: userType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	}
}

// Package tenant holds the request-scoped identity established by the
// authentication middleware. Every tenant-owned persistence query downstream
// must be filtered by the tenant id read from the current request's Scope;
// that contract is the reason this package exists.
package tenant

import (
	"sync"

	"github.com/nexthr/nexthr-backend/internal/token"
)

// Scope is the per-request holder of the resolved identity: organization
// UUID (absent for system administrators), user id, user type, and role set.
//
// A Scope is created empty when a request enters the middleware, populated at
// most once from validated token claims, and cleared unconditionally when the
// request finishes. It is never shared between requests; concurrent requests
// each carry their own Scope in their own request context.
type Scope struct {
	mu        sync.Mutex
	populated bool
	orgUUID   string
	hasOrg    bool
	userID    int64
	userType  string
	roles     []string
}

// NewScope returns an empty, unauthenticated scope.
func NewScope() *Scope {
	return &Scope{}
}

// Populate fills the scope from trusted claims. A scope populates only once
// per request; repeated calls are no-ops so a defensively double-invoked
// middleware cannot overwrite an established identity.
func (s *Scope) Populate(orgUUID *string, userID int64, userType string, roles []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.populated {
		return
	}
	if orgUUID != nil {
		s.orgUUID = *orgUUID
		s.hasOrg = true
	}
	s.userID = userID
	s.userType = userType
	s.roles = append([]string(nil), roles...)
	s.populated = true
}

// Clear resets the scope to its empty state. It must run on every request
// exit path; a scope that outlives its request leaks one tenant's identity
// into an unrelated request.
func (s *Scope) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.populated = false
	s.orgUUID = ""
	s.hasOrg = false
	s.userID = 0
	s.userType = ""
	s.roles = nil
}

// Populated reports whether an identity has been established.
func (s *Scope) Populated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.populated
}

// OrganizationUUID returns the tenant id for the request, if any. System
// administrators authenticate without one.
func (s *Scope) OrganizationUUID() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.populated || !s.hasOrg {
		return "", false
	}
	return s.orgUUID, true
}

// UserID returns the authenticated user's id, if any.
func (s *Scope) UserID() (int64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.populated {
		return 0, false
	}
	return s.userID, true
}

// UserType returns the authenticated principal kind, if any.
func (s *Scope) UserType() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.populated {
		return "", false
	}
	return s.userType, true
}

// Roles returns a copy of the authenticated role set.
func (s *Scope) Roles() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.populated {
		return nil
	}
	return append([]string(nil), s.roles...)
}

// IsSystemAdmin reports whether the request belongs to a platform
// administrator, identified by the SYSTEM_ADMIN user type or the absence of
// an organization on an established identity.
func (s *Scope) IsSystemAdmin() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.populated {
		return false
	}
	return s.userType == token.UserTypeSystemAdmin || !s.hasOrg
}

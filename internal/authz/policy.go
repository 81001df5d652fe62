// Package authz evaluates the declarative route authorization table. Rules
// map path prefixes to required roles and are checked after the
// authentication middleware has (or has not) established a request scope,
// keeping role requirements out of handler code.
package authz

import (
	"sort"
	"strings"

	"github.com/nexthr/nexthr-backend/internal/tenant"
)

// Rule binds a path prefix to an access requirement. Exactly one of Public,
// AnyAuthenticated, or a non-empty Roles set should be used per rule.
type Rule struct {
	PathPrefix       string
	Public           bool
	AnyAuthenticated bool
	Roles            []string
}

// PublicRule allows the prefix without authentication.
func PublicRule(prefix string) Rule {
	return Rule{PathPrefix: prefix, Public: true}
}

// AuthenticatedRule allows the prefix for any established identity.
func AuthenticatedRule(prefix string) Rule {
	return Rule{PathPrefix: prefix, AnyAuthenticated: true}
}

// RoleRule allows the prefix only for principals holding at least one of the
// given roles. Matching is case-sensitive exact string comparison.
func RoleRule(prefix string, roles ...string) Rule {
	return Rule{PathPrefix: prefix, Roles: roles}
}

// Policy is an ordered rule table. The first matching rule governs a
// request; rules are held most-specific-first so /api/admin wins over /api
// regardless of declaration order.
type Policy struct {
	rules []Rule
}

// New builds a policy from the given rules, ordered longest prefix first.
// The sort is stable: equally specific rules keep declaration order.
func New(rules ...Rule) *Policy {
	ordered := append([]Rule(nil), rules...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return len(ordered[i].PathPrefix) > len(ordered[j].PathPrefix)
	})
	return &Policy{rules: ordered}
}

// Authorize evaluates the first rule matching path against the request
// scope. It returns nil on allow, ErrUnauthenticated when the route needs an
// identity and none was established, and ErrInsufficientRole when the
// identity's role set is disjoint from the rule's. Paths matching no rule
// require authentication.
func (p *Policy) Authorize(path string, sc *tenant.Scope) error {
	for _, rule := range p.rules {
		if !strings.HasPrefix(path, rule.PathPrefix) {
			continue
		}
		return evaluate(rule, sc)
	}

	if sc == nil || !sc.Populated() {
		return ErrUnauthenticated
	}
	return nil
}

func evaluate(rule Rule, sc *tenant.Scope) error {
	if rule.Public {
		return nil
	}
	if sc == nil || !sc.Populated() {
		return ErrUnauthenticated
	}
	if rule.AnyAuthenticated {
		return nil
	}

	held := sc.Roles()
	for _, required := range rule.Roles {
		for _, have := range held {
			if have == required {
				return nil
			}
		}
	}
	return ErrInsufficientRole
}

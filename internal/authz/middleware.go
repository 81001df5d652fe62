package authz

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/nexthr/nexthr-backend/internal/tenant"
)

// Enforce returns middleware that evaluates the policy against each request's
// path and scope. Runs after the authentication middleware: 401 for a missing
// identity, 403 for a present identity with insufficient roles.
func Enforce(policy *Policy, log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sc, _ := tenant.FromContext(r.Context())

			err := policy.Authorize(r.URL.Path, sc)
			switch {
			case err == nil:
				next.ServeHTTP(w, r)
			case errors.Is(err, ErrUnauthenticated):
				http.Error(w, "unauthorized", http.StatusUnauthorized)
			case errors.Is(err, ErrInsufficientRole):
				log.Warn("role check failed", zap.String("path", r.URL.Path))
				http.Error(w, "forbidden", http.StatusForbidden)
			default:
				http.Error(w, "forbidden", http.StatusForbidden)
			}
		})
	}
}

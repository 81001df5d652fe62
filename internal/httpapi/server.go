// Package httpapi wires the HTTP surface: router, CORS, the authentication
// and authorization middlewares, and the JSON handlers.
package httpapi

import (
	"context"
	"net"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/nexthr/nexthr-backend/internal/auth"
	"github.com/nexthr/nexthr-backend/internal/authn"
	"github.com/nexthr/nexthr-backend/internal/authz"
	"github.com/nexthr/nexthr-backend/internal/store"
)

// EmployeeStore is the tenant-scoped employee collaborator.
type EmployeeStore interface {
	ListByOrganization(ctx context.Context, orgUUID string) ([]store.Employee, error)
	Insert(ctx context.Context, e *store.Employee) error
}

// Server holds the HTTP dependencies.
type Server struct {
	auth      *auth.Service
	employees EmployeeStore
	authn     *authn.Middleware
	policy    *authz.Policy
	cors      []string
	log       *zap.Logger
}

// NewServer creates the HTTP server wiring.
func NewServer(
	authService *auth.Service,
	employees EmployeeStore,
	authnMW *authn.Middleware,
	policy *authz.Policy,
	corsOrigins []string,
	log *zap.Logger,
) *Server {
	return &Server{
		auth:      authService,
		employees: employees,
		authn:     authnMW,
		policy:    policy,
		cors:      corsOrigins,
		log:       log,
	}
}

// DefaultPolicy is the route authorization table. Admin routes require the
// platform role; everything else under /api requires some authenticated
// identity. Public prefixes mirror the authentication allow-list.
func DefaultPolicy(publicPrefixes []string) *authz.Policy {
	rules := []authz.Rule{
		authz.RoleRule("/api/admin", auth.RoleSysAdmin),
		authz.AuthenticatedRule("/api"),
	}
	for _, p := range publicPrefixes {
		rules = append(rules, authz.PublicRule(p))
	}
	return authz.New(rules...)
}

// Handler assembles the middleware chain around the router:
// CORS -> client IP capture -> authentication -> authorization -> handlers.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/api/auth/login", s.handleLogin).Methods(http.MethodPost)
	r.HandleFunc("/api/auth/signup", s.handleSignup).Methods(http.MethodPost)
	r.HandleFunc("/api/admin/organizations/{uuid}/approve", s.handleApproveOrganization).Methods(http.MethodPost)
	r.HandleFunc("/api/employees", s.handleListEmployees).Methods(http.MethodGet)
	r.HandleFunc("/api/employees", s.handleCreateEmployee).Methods(http.MethodPost)

	var h http.Handler = r
	h = authz.Enforce(s.policy, s.log)(h)
	h = s.authn.Handler(h)
	h = clientIPMiddleware(h)

	c := cors.New(cors.Options{
		AllowedOrigins:   s.cors,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})
	return c.Handler(h)
}

// clientIPMiddleware records the caller's IP for the login limiter.
func clientIPMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		host, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			host = r.RemoteAddr
		}
		next.ServeHTTP(w, r.WithContext(auth.WithClientIP(r.Context(), host)))
	})
}

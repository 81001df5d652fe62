// Package authn implements the per-request authentication middleware: bearer
// token extraction, claim validation, and request-scope lifecycle. Decode
// failures never abort a request here; the request proceeds unauthenticated
// and the authorization policy produces the user-visible rejection.
package authn

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/nexthr/nexthr-backend/internal/tenant"
	"github.com/nexthr/nexthr-backend/internal/token"
)

// Middleware establishes and tears down the request scope around every
// non-public request.
type Middleware struct {
	codec          *token.Codec
	publicPrefixes []string
	log            *zap.Logger
}

// New creates the middleware. Requests whose path starts with any of
// publicPrefixes bypass token handling entirely.
func New(codec *token.Codec, publicPrefixes []string, log *zap.Logger) *Middleware {
	return &Middleware{
		codec:          codec,
		publicPrefixes: append([]string(nil), publicPrefixes...),
		log:            log,
	}
}

// Handler wraps next with the authentication lifecycle:
//
//  1. Public-prefixed paths skip straight to the handler, before any token
//     parsing, with no scope established.
//  2. A missing or malformed Authorization header leaves the scope empty and
//     the request proceeds; the authorization policy rejects it later if the
//     route needs an identity.
//  3. Claims that fail to decode are logged and treated as no identity.
//  4. Valid claims populate the scope from the token alone — no store
//     lookup — so a revoked account keeps access until its token expires.
//  5. The scope is cleared on every exit path, including handler panics.
func (m *Middleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.isPublic(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		sc, ok := tenant.FromContext(r.Context())
		if !ok {
			sc = tenant.NewScope()
			r = r.WithContext(tenant.WithScope(r.Context(), sc))
		}

		defer func() {
			sc.Clear()
			if rec := recover(); rec != nil {
				m.log.Error("handler panic",
					zap.Any("panic", rec),
					zap.String("path", r.URL.Path),
				)
				http.Error(w, "internal server error", http.StatusInternalServerError)
			}
		}()

		if raw, ok := bearerToken(r.Header.Get("Authorization")); ok && !sc.Populated() {
			claims, err := m.codec.Decode(raw)
			if err != nil {
				m.log.Warn("token rejected",
					zap.Error(err),
					zap.String("path", r.URL.Path),
				)
			} else {
				var org *string
				if !claims.IsSystemAdmin() {
					org = claims.Org
				}
				sc.Populate(org, claims.UserID, claims.UserType, claims.RoleList())
			}
		}

		next.ServeHTTP(w, r)
	})
}

func (m *Middleware) isPublic(path string) bool {
	for _, prefix := range m.publicPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

func bearerToken(header string) (string, bool) {
	const bearer = "Bearer "
	if !strings.HasPrefix(header, bearer) {
		return "", false
	}

	raw := header[len(bearer):]
	if raw == "" {
		return "", false
	}
	return raw, true
}

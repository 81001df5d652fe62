package tenant

import "context"

type scopeContextKey struct{}

// WithScope attaches a request scope to ctx. The middleware installs one
// scope per inbound request; nothing else should call this outside tests.
func WithScope(ctx context.Context, s *Scope) context.Context {
	return context.WithValue(ctx, scopeContextKey{}, s)
}

// FromContext returns the request scope attached to ctx, if present.
func FromContext(ctx context.Context) (*Scope, bool) {
	if ctx == nil {
		return nil, false
	}
	s, ok := ctx.Value(scopeContextKey{}).(*Scope)
	return s, ok
}

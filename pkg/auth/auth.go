// Package auth carries the caller identity resolved by the auth collaborator.
// Credential parsing happens elsewhere; this service only trusts the resolved pair.
package auth

import "context"

// Role values issued by the auth service
const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)

// Identity is an authenticated caller
type Identity struct {
	UserID string `json:"id"`
	Role   string `json:"role"`
}

// IsAdmin reports whether the caller may use administrative operations
func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}

// Resolver resolves a bearer credential into an identity
type Resolver interface {
	Resolve(ctx context.Context, token string) (*Identity, error)
}

type ctxKey struct{}

// WithIdentity stores the identity on the context
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromContext returns the identity stored by WithIdentity
func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(ctxKey{}).(Identity)
	return id, ok
}

package shared

import (
	"context"
	"strings"
)

// Principal is the authenticated caller of the current request.
type Principal struct {
	Subject  string
	Username string
	// Realm is the identity provider realm that issued the caller's token.
	Realm    string
	Roles    []string
}

// HasRole reports whether the principal carries role. Comparison ignores case and a
// Spring-style "ROLE_" prefix on either side.
func (p *Principal) HasRole(role string) bool {
	if p == nil {
		return false
	}
	want := NormalizeRole(role)
	for _, r := range p.Roles {
		if NormalizeRole(r) == want {
			return true
		}
	}
	return false
}

// NormalizeRole upper-cases a role name and strips the "ROLE_" prefix.
func NormalizeRole(role string) string {
	r := strings.ToUpper(strings.TrimSpace(role))
	return strings.TrimPrefix(r, "ROLE_")
}

// CanTarget reports whether the principal may act on realm: its own realm or one of
// allowed. A nil principal may target nothing.
func (p *Principal) CanTarget(realm string, allowed []string) bool {
	if p == nil {
		return false
	}
	if realm == p.Realm {
		return true
	}
	for _, r := range allowed {
		if r == realm {
			return true
		}
	}
	return false
}

// TokenVerifier turns a bearer token into a Principal.
type TokenVerifier interface {
	Verify(ctx context.Context, rawToken string) (*Principal, error)
}

type principalKey struct{}

// WithPrincipal returns a copy of ctx carrying p.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFromContext returns the principal stored by WithPrincipal, or nil.
func PrincipalFromContext(ctx context.Context) *Principal {
	p, _ := ctx.Value(principalKey{}).(*Principal)
	return p
}

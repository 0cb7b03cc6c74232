// File: internal/common/context_keys.go
package common

const (
	// AuthorizationHeader is the header name for authorization token
	AuthorizationHeader = "Authorization"
	// AuthorizationTypeBearer is the prefix for Bearer tokens
	AuthorizationTypeBearer = "Bearer"
	// RealmHeader selects the identity provider realm for a request
	RealmHeader = "realm"
	// RealmKey is the gin context key for the resolved realm name
	RealmKey = "realm"
	// PrincipalKey is the gin context key for the authenticated shared.Principal
	PrincipalKey = "principal"
)

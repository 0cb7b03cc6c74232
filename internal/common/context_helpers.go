// File: internal/common/context_helpers.go
package common

import (
	"strings"

	"backend_resources/internal/shared"

	"github.com/gin-gonic/gin"
)

// GetTokenFromContext retrieves the bearer token from the Authorization header.
// Returns an empty string if not found or malformed.
func GetTokenFromContext(c *gin.Context) string {
	authHeader := c.GetHeader(AuthorizationHeader)
	if authHeader == "" {
		return ""
	}
	parts := strings.Fields(authHeader)
	if len(parts) != 2 || !strings.EqualFold(parts[0], AuthorizationTypeBearer) {
		return ""
	}
	return parts[1]
}

// SetPrincipal stores p on both the gin context and the request context.
func SetPrincipal(c *gin.Context, p *shared.Principal) {
	c.Set(PrincipalKey, p)
	c.Request = c.Request.WithContext(shared.WithPrincipal(c.Request.Context(), p))
}

// GetPrincipalFromContext retrieves the authenticated principal, or nil.
func GetPrincipalFromContext(c *gin.Context) *shared.Principal {
	val, exists := c.Get(PrincipalKey)
	if !exists {
		return nil
	}
	p, ok := val.(*shared.Principal)
	if !ok {
		return nil
	}
	return p
}

// GetRealmFromContext retrieves the realm chosen by the realm resolver middleware.
func GetRealmFromContext(c *gin.Context) string {
	return c.GetString(RealmKey)
}

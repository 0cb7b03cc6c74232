// File: internal/middleware/auth.go
package middleware

import (
	"backend_resources/internal/common"
	"backend_resources/internal/shared"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AuthMiddleware creates a Gin middleware that authenticates the caller's bearer token
// with verifier and stores the resulting principal in the request.
func AuthMiddleware(verifier shared.TokenVerifier, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader(common.AuthorizationHeader) == "" {
			logger.Debug("Authorization header missing")
			common.RespondWithError(c, common.ErrUnauthorized.WithDetails("Authorization header is required."))
			return
		}

		token := common.GetTokenFromContext(c)
		if token == "" {
			logger.Debug("Authorization header format invalid")
			common.RespondWithError(c, common.ErrUnauthorized.WithDetails("Authorization header format must be 'Bearer <token>'."))
			return
		}

		principal, err := verifier.Verify(c.Request.Context(), token)
		if err != nil {
			logger.Warn("Token validation failed", zap.Error(err))
			common.RespondWithError(c, common.ErrUnauthorized.WithDetails("The access token is invalid or expired."))
			return
		}

		common.SetPrincipal(c, principal)

		logger.Debug("User authenticated successfully",
			zap.String("subject", principal.Subject),
			zap.String("username", principal.Username),
			zap.Strings("roles", principal.Roles),
		)

		c.Next()
	}
}

// RequireRole only lets through callers holding role. It must run after AuthMiddleware.
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal := common.GetPrincipalFromContext(c)
		if principal == nil {
			common.RespondWithError(c, common.ErrUnauthorized.WithDetails("Authentication is required."))
			return
		}
		if !principal.HasRole(role) {
			common.RespondWithError(c, common.ErrForbidden.WithDetails("You do not have sufficient permissions for this resource."))
			return
		}
		c.Next()
	}
}

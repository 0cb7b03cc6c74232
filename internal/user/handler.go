// File: internal/user/handler.go
package user

import (
	"errors"
	"net/http"

	"backend_resources/internal/common"
	"backend_resources/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Handler struct holds dependencies for user handlers.
type Handler struct {
	service       Service
	moderatorRole string
	logger        *zap.Logger
}

// NewHandler creates a new user handler. moderatorRole guards provisioning and lookup.
func NewHandler(service Service, moderatorRole string, logger *zap.Logger) *Handler {
	return &Handler{
		service:       service,
		moderatorRole: moderatorRole,
		logger:        logger,
	}
}

// RegisterRoutes sets up the routes for user operations. authMW must authenticate the
// caller; realmMW resolves the target realm for the moderated routes.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup, authMW, realmMW gin.HandlerFunc) {
	userGroup := router.Group("/users")
	userGroup.Use(authMW)
	{
		userGroup.GET("/hello", h.hello)

		moderated := userGroup.Group("")
		moderated.Use(middleware.RequireRole(h.moderatorRole), realmMW)
		{
			moderated.POST("", h.createUser)
			moderated.GET("/:id", h.getUserByID)
		}
	}
}

func (h *Handler) createUser(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("User creation: Invalid request body", zap.Error(err))
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			common.RespondWithError(c, common.NewValidationAPIError(common.FormatValidationErrors(ve)))
			return
		}
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Request body must be a JSON object."))
		return
	}

	id, err := h.service.CreateUser(c.Request.Context(), common.GetRealmFromContext(c), req)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, CreateUserResponse{ID: id})
}

func (h *Handler) getUserByID(c *gin.Context) {
	paramID := c.Param("id")
	if _, err := uuid.Parse(paramID); err != nil {
		h.logger.Warn("Invalid user ID format in URL parameter", zap.String("paramID", paramID), zap.Error(err))
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid user ID format."))
		return
	}

	profile, err := h.service.GetUserProfile(c.Request.Context(), common.GetRealmFromContext(c), paramID)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

func (h *Handler) hello(c *gin.Context) {
	c.String(http.StatusOK, h.service.WhoAmI(common.GetPrincipalFromContext(c)))
}

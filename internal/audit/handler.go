// File: internal/audit/handler.go
package audit

import (
	"strconv"

	"backend_resources/internal/common"
	"backend_resources/internal/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler exposes the provisioning audit trail to moderators.
type Handler struct {
	repo          Repository
	moderatorRole string
	logger        *zap.Logger
}

// NewHandler creates a new audit handler.
func NewHandler(repo Repository, moderatorRole string, logger *zap.Logger) *Handler {
	return &Handler{repo: repo, moderatorRole: moderatorRole, logger: logger}
}

const (
	defaultRecentLimit = 10
	maxRecentLimit     = 100
)

// RegisterRoutes mounts GET /audit/events and GET /audit/events/recent behind authMW
// and the moderator role.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup, authMW gin.HandlerFunc) {
	group := router.Group("/audit")
	group.Use(authMW, middleware.RequireRole(h.moderatorRole))
	{
		group.GET("/events", h.listEvents)
		group.GET("/events/recent", h.listRecent)
	}
}

func (h *Handler) listEvents(c *gin.Context) {
	page, pageSize := common.GetPaginationParams(c)
	events, pagination, err := h.repo.List(c.Request.Context(), page, pageSize)
	if err != nil {
		h.logger.Error("Failed to list audit events", zap.Error(err))
		common.RespondWithError(c, err)
		return
	}
	if events == nil {
		events = []Event{}
	}
	common.RespondPaginated(c, "Audit events retrieved successfully.", events, pagination)
}

// listRecent returns the newest events without pagination metadata. limit defaults to
// 10 and is capped at 100.
func (h *Handler) listRecent(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultRecentLimit)))
	if err != nil || limit <= 0 {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("limit must be a positive integer."))
		return
	}
	if limit > maxRecentLimit {
		limit = maxRecentLimit
	}

	events, err := h.repo.ListRecent(c.Request.Context(), limit)
	if err != nil {
		h.logger.Error("Failed to list recent audit events", zap.Error(err))
		common.RespondWithError(c, err)
		return
	}
	if events == nil {
		events = []Event{}
	}
	common.RespondOK(c, "Recent audit events retrieved successfully.", events)
}

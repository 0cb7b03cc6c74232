package app

import (
	"context"
	"net/http"
	"time"

	"backend_resources/internal/common"
	"backend_resources/internal/config"
	"backend_resources/internal/platform/database"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const readinessTimeout = 3 * time.Second

// IdentityHealthChecker reports whether the identity provider serves a realm.
type IdentityHealthChecker interface {
	Healthy(ctx context.Context, realm string) error
}

// HealthHandler serves liveness and readiness probes.
type HealthHandler struct {
	db     *gorm.DB
	idp    IdentityHealthChecker
	realm  string
	logger *zap.Logger
}

// NewHealthHandler creates a new health handler checking db and the configured realm.
func NewHealthHandler(db *gorm.DB, idp IdentityHealthChecker, cfg *config.Config, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		db:     db,
		idp:    idp,
		realm:  cfg.KeycloakRealm,
		logger: logger.Named("health"),
	}
}

// RegisterRoutes mounts /health and /ready.
func (h *HealthHandler) RegisterRoutes(router gin.IRoutes) {
	router.GET("/health", h.live)
	router.GET("/ready", h.ready)
}

func (h *HealthHandler) live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "UP"})
}

func (h *HealthHandler) ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), readinessTimeout)
	defer cancel()

	checks := map[string]string{}
	ready := true

	if err := database.Ping(ctx, h.db); err != nil {
		h.logger.Warn("Database not ready", zap.Error(err))
		checks["database"] = "DOWN"
		ready = false
	} else {
		checks["database"] = "UP"
	}

	if err := h.idp.Healthy(ctx, h.realm); err != nil {
		h.logger.Warn("Identity provider not ready", zap.String("realm", h.realm), zap.Error(err))
		checks["identityProvider"] = "DOWN"
		ready = false
	} else {
		checks["identityProvider"] = "UP"
	}

	if !ready {
		common.RespondWithError(c, common.ErrServiceUnavailable.WithDetails(checks))
		return
	}
	common.RespondOK(c, "Ready.", checks)
}

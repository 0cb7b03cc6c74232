// File: internal/app/server.go
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"backend_resources/internal/audit"
	"backend_resources/internal/common"
	"backend_resources/internal/config"
	"backend_resources/internal/jobs"
	"backend_resources/internal/middleware"
	"backend_resources/internal/platform/metrics"
	"backend_resources/internal/shared"
	"backend_resources/internal/user"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Server struct holds the dependencies for the HTTP server.
type Server struct {
	httpServer *http.Server
	router     *gin.Engine
	cfg        *config.Config
	logger     *zap.Logger

	auditRetentionJob *jobs.AuditRetentionJob
}

// NewServer creates a new instance of our application server.
func NewServer(
	cfg *config.Config,
	logger *zap.Logger,
	m *metrics.Metrics,
	verifier shared.TokenVerifier,
	userHandler *user.Handler,
	auditHandler *audit.Handler,
	healthHandler *HealthHandler,
	auditRetentionJob *jobs.AuditRetentionJob,
) (*Server, error) {
	gin.SetMode(cfg.GinMode)
	router := gin.New()

	// --- Global Middleware ---
	router.Use(middleware.ZapLogger(logger, cfg))
	router.Use(middleware.Metrics(m))
	router.Use(middleware.ErrorHandler(logger))
	router.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", common.AuthorizationHeader, common.RealmHeader, middleware.RequestIDHeader}
	corsConfig.ExposeHeaders = []string{"Content-Length", middleware.RequestIDHeader}
	router.Use(cors.New(corsConfig))

	authMW := middleware.AuthMiddleware(verifier, logger.Named("AuthMiddleware"))
	realmMW := middleware.RealmResolver(cfg.KeycloakRealm, cfg.KeycloakAllowedRealms)

	// --- Setup Routes ---
	healthHandler.RegisterRoutes(router)
	router.GET("/metrics", gin.WrapH(m.Handler()))

	api := router.Group("/api")
	userHandler.RegisterRoutes(api, authMW, realmMW)
	auditHandler.RegisterRoutes(api, authMW)

	addr := fmt.Sprintf("%s:%s", cfg.ServerHost, cfg.ServerPort)
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return &Server{
		httpServer:        httpServer,
		router:            router,
		cfg:               cfg,
		logger:            logger,
		auditRetentionJob: auditRetentionJob,
	}, nil
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts background jobs and blocks serving HTTP until the server is shut down.
func (s *Server) Start() error {
	if s.auditRetentionJob != nil {
		if err := s.auditRetentionJob.SetupAndStart(); err != nil {
			s.logger.Error("Failed to setup and start audit retention job", zap.Error(err))
		}
	} else {
		s.logger.Info("Audit retention job is not configured, skipping start.")
	}

	s.logger.Info("HTTP Server starting",
		zap.String("address", s.httpServer.Addr),
		zap.String("gin_mode", s.cfg.GinMode),
	)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		s.logger.Error("Failed to start HTTP server", zap.Error(err))
		return err
	}
	s.logger.Info("HTTP Server stopped")
	return nil
}

// Shutdown stops the jobs and drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Attempting graceful server shutdown...")
	if s.auditRetentionJob != nil {
		s.auditRetentionJob.Stop()
	}
	return s.httpServer.Shutdown(ctx)
}

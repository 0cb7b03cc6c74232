// File: cmd/server/wire.go
//go:build wireinject
// +build wireinject

package main

import (
	"backend_resources/internal/app"
	"backend_resources/internal/audit"
	"backend_resources/internal/config"
	"backend_resources/internal/jobs"
	"backend_resources/internal/keycloak"
	"backend_resources/internal/platform/logger"
	"backend_resources/internal/platform/metrics"
	"backend_resources/internal/shared"
	"backend_resources/internal/user"

	"github.com/google/wire"
)

// initializeServer is the main Wire injector.
func initializeServer(cfg *config.Config) (*app.Server, func(), error) {
	wire.Build(
		// Platform Layer
		logger.New,
		provideDatabase,
		metrics.New,

		// Identity provider
		keycloak.NewClientFromConfig,
		keycloak.NewTokenVerifierFromConfig,
		wire.Bind(new(shared.TokenVerifier), new(*keycloak.TokenVerifier)),
		wire.Bind(new(user.IdentityProvider), new(*keycloak.Client)),
		wire.Bind(new(app.IdentityHealthChecker), new(*keycloak.Client)),

		// Audit trail
		audit.NewGORMRepository,
		wire.Bind(new(user.AuditRecorder), new(audit.Repository)),
		wire.Bind(new(jobs.AuditPruner), new(audit.Repository)),
		provideAuditHandler,
		jobs.NewAuditRetentionJob,

		// Users
		user.NewService,
		wire.Bind(new(user.Service), new(*user.ServiceImplementation)),
		provideUserHandler,

		// Application Layer
		app.NewHealthHandler,
		app.NewServer,
	)
	return nil, nil, nil
}

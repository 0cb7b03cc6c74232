package main

import (
	"log"

	"backend_resources/internal/audit"
	"backend_resources/internal/config"
	"backend_resources/internal/platform/database"
	"backend_resources/internal/user"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// provideDatabase opens the audit store. The cleanup closes it and flushes the logger.
func provideDatabase(cfg *config.Config, logger *zap.Logger) (*gorm.DB, func(), error) {
	db, err := database.NewGORM(cfg)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		logger.Info("Executing cleanup tasks...")
		database.CloseGORMDB(db)
		if err := logger.Sync(); err != nil {
			log.Printf("ERROR: Failed to sync logger during cleanup: %v", err)
		}
		log.Println("Cleanup finished.")
	}
	return db, cleanup, nil
}

func provideUserHandler(svc user.Service, cfg *config.Config, logger *zap.Logger) *user.Handler {
	return user.NewHandler(svc, cfg.ModeratorRole, logger.Named("UserHandler"))
}

func provideAuditHandler(repo audit.Repository, cfg *config.Config, logger *zap.Logger) *audit.Handler {
	return audit.NewHandler(repo, cfg.ModeratorRole, logger.Named("AuditHandler"))
}

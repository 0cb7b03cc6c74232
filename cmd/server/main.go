// File: cmd/server/main.go
package main

import (
	"context"
	"flag"
	"log" // Standard log for critical startup/shutdown messages before/after zap is active
	"os"
	"os/signal"
	"syscall"

	"backend_resources/internal/audit"
	"backend_resources/internal/config"
	"backend_resources/internal/platform/database"
	"backend_resources/internal/platform/logger"

	"go.uber.org/zap"
)

func main() {
	migrateCmd := flag.NewFlagSet("migrate", flag.ExitOnError)

	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		if err := migrateCmd.Parse(os.Args[2:]); err != nil {
			log.Fatalf("FATAL: Failed to parse migrate flags: %v", err)
		}
		runMigrate()
		return
	}

	startServer()
}

func runMigrate() {
	cfg, err := config.Load()
	if err != nil {
		logger.NewDefaultLogger().Fatal("FATAL: Failed to load configuration for migrate", zap.Error(err))
	}
	appLogger, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize logger for migrate: %v", err)
	}
	defer func() { _ = appLogger.Sync() }()

	db, err := database.NewGORM(cfg)
	if err != nil {
		appLogger.Fatal("FATAL: Failed to initialize database for migrate", zap.Error(err))
	}
	defer database.CloseGORMDB(db)

	if err := audit.AutoMigrate(db); err != nil {
		appLogger.Fatal("FATAL: Audit table migration failed", zap.Error(err))
	}
	appLogger.Info("Database migration completed successfully.")
}

func startServer() {
	cfg, err := config.Load()
	if err != nil {
		logger.NewDefaultLogger().Fatal("FATAL: Failed to load configuration", zap.Error(err))
	}

	server, cleanup, err := initializeServer(cfg)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize server: %v", err)
	}
	defer cleanup()

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-quit:
		log.Printf("INFO: Received signal '%s'. Shutting down server...", sig)
	case err := <-serverErr:
		if err != nil {
			log.Printf("ERROR: Server failed: %v", err)
		}
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.ServerTimeout)
	defer cancelShutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("ERROR: Server forced to shutdown due to error: %v", err)
	} else {
		log.Println("INFO: Server shutdown complete.")
	}
	log.Println("INFO: Application exiting.")
}

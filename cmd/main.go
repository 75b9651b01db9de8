package main

import (
	"fmt"
	"os"

	"github.com/visionforge/visionforge-backend/internal/augment"
	"github.com/visionforge/visionforge-backend/internal/config"
	"github.com/visionforge/visionforge-backend/internal/db"
	"github.com/visionforge/visionforge-backend/internal/export"
	"github.com/visionforge/visionforge-backend/internal/handlers"
	"github.com/visionforge/visionforge-backend/internal/platform/logger"
	"github.com/visionforge/visionforge-backend/internal/platform/paths"
	"github.com/visionforge/visionforge-backend/internal/repos"
	"github.com/visionforge/visionforge-backend/internal/server"
	"github.com/visionforge/visionforge-backend/internal/services"
)

func main() {
	// Logger
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Config
	cfgPath := os.Getenv("CONFIG_FILE")
	if cfgPath == "" {
		cfgPath = "visionforge.yaml"
	}
	cfg, err := config.Load(cfgPath, log)
	if err != nil {
		log.Fatal("Failed to load config", "error", err)
	}

	// Database
	dbService, err := db.New(cfg, log)
	if err != nil {
		log.Fatal("Database init failed", "error", err)
	}
	if cfg.AutoMigrate {
		if err := dbService.AutoMigrateAll(); err != nil {
			log.Fatal("Auto migration failed", "error", err)
		}
	}
	gormDB := dbService.DB()

	// Repos
	log.Info("Setting up repos...")
	projectRepo := repos.NewProjectRepo(gormDB, log)
	datasetRepo := repos.NewDatasetRepo(gormDB, log)
	imageRepo := repos.NewImageRepo(gormDB, log)
	transformationRepo := repos.NewTransformationRepo(gormDB, log)
	releaseRepo := repos.NewReleaseRepo(gormDB, log)

	// Services
	log.Info("Setting up services...")
	progressStore := services.NewProgressStore()
	applier := augment.NewApplier(log)
	formatter := export.NewFormatter(log)
	resolver := paths.NewResolver(cfg.StorageRoot)
	releaseService := services.NewReleaseService(
		gormDB,
		log,
		projectRepo,
		datasetRepo,
		imageRepo,
		transformationRepo,
		releaseRepo,
		progressStore,
		applier,
		formatter,
		resolver,
	)

	// HTTP
	releaseHandler := handlers.NewReleaseHandler(releaseService, log)
	router := server.NewRouter(server.RouterConfig{
		ReleaseHandler: releaseHandler,
	})

	addr := fmt.Sprintf(":%d", cfg.HTTPPort)
	log.Info("Starting server", "addr", addr)
	if err := router.Run(addr); err != nil {
		log.Fatal("Server exited", "error", err)
	}
}

package db

import (
	"fmt"
	"os"
	"path/filepath"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/visionforge/visionforge-backend/internal/config"
	"github.com/visionforge/visionforge-backend/internal/platform/logger"
	"github.com/visionforge/visionforge-backend/internal/types"
)

type Service struct {
	db  *gorm.DB
	log *logger.Logger
}

// New opens the configured database: Postgres in the default mode, a sqlite
// file under the storage root in "local" mode.
func New(cfg config.Config, log *logger.Logger) (*Service, error) {
	serviceLog := log.With("service", "DBService")

	var (
		conn *gorm.DB
		err  error
	)
	switch cfg.StorageMode {
	case "local":
		if mkErr := os.MkdirAll(cfg.StorageRoot, 0o755); mkErr != nil {
			return nil, fmt.Errorf("create storage root: %w", mkErr)
		}
		path := filepath.Join(cfg.StorageRoot, "visionforge.db")
		serviceLog.Info("Opening sqlite database", "path", path)
		conn, err = gorm.Open(sqlite.Open(path), &gorm.Config{})
	default:
		serviceLog.Info("Connecting to Postgres", "host", cfg.Postgres.Host, "db", cfg.Postgres.Name)
		conn, err = gorm.Open(postgres.Open(cfg.Postgres.DSN()), &gorm.Config{
			DisableForeignKeyConstraintWhenMigrating: true,
		})
	}
	if err != nil {
		serviceLog.Error("Failed to open database", "error", err)
		return nil, fmt.Errorf("open database: %w", err)
	}

	return &Service{db: conn, log: serviceLog}, nil
}

func (s *Service) AutoMigrateAll() error {
	s.log.Info("Auto migrating tables...")
	err := s.db.AutoMigrate(
		&types.Project{},
		&types.Dataset{},
		&types.DatasetImage{},
		&types.Transformation{},
		&types.Release{},
	)
	if err != nil {
		s.log.Error("Auto migration failed", "error", err)
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

func (s *Service) DB() *gorm.DB { return s.db }

package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/visionforge/visionforge-backend/internal/platform/envutil"
	"github.com/visionforge/visionforge-backend/internal/platform/logger"
)

// Config is the process configuration. Values come from an optional YAML
// file, with environment variables taking precedence over the file.
type Config struct {
	LogMode     string `yaml:"log_mode"`
	HTTPPort    int    `yaml:"http_port"`
	StorageRoot string `yaml:"storage_root"`

	// StorageMode selects the database backend: "postgres" or "local"
	// (sqlite file under StorageRoot).
	StorageMode string `yaml:"storage_mode"`

	// AutoMigrate runs gorm auto migration at startup. Turned off for
	// deployments where the schema is managed externally.
	AutoMigrate bool `yaml:"auto_migrate"`

	Postgres PostgresConfig `yaml:"postgres"`
}

type PostgresConfig struct {
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
}

func defaults() Config {
	return Config{
		LogMode:     "development",
		HTTPPort:    8080,
		StorageRoot: "data",
		StorageMode: "postgres",
		AutoMigrate: true,
		Postgres: PostgresConfig{
			Host: "localhost",
			Port: "5432",
			User: "postgres",
			Name: "visionforge",
		},
	}
}

// Load reads the YAML file at path when it exists, then applies env
// overrides. A missing file is not an error; a malformed one is.
func Load(path string, log *logger.Logger) (Config, error) {
	cfg := defaults()

	if path != "" {
		raw, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(raw, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config file %s: %w", path, err)
			}
			if log != nil {
				log.Info("Loaded config file", "path", path)
			}
		case os.IsNotExist(err):
			if log != nil {
				log.Debug("Config file not found, using defaults", "path", path)
			}
		default:
			return cfg, fmt.Errorf("read config file %s: %w", path, err)
		}
	}

	cfg.LogMode = envutil.GetEnv("LOG_MODE", cfg.LogMode, log)
	cfg.HTTPPort = envutil.GetEnvAsInt("HTTP_PORT", cfg.HTTPPort, log)
	cfg.StorageRoot = envutil.GetEnv("STORAGE_ROOT", cfg.StorageRoot, log)
	cfg.StorageMode = envutil.GetEnv("STORAGE_MODE", cfg.StorageMode, log)
	cfg.AutoMigrate = envutil.GetEnvAsBool("AUTO_MIGRATE", cfg.AutoMigrate, log)
	cfg.Postgres.Host = envutil.GetEnv("POSTGRES_HOST", cfg.Postgres.Host, log)
	cfg.Postgres.Port = envutil.GetEnv("POSTGRES_PORT", cfg.Postgres.Port, log)
	cfg.Postgres.User = envutil.GetEnv("POSTGRES_USER", cfg.Postgres.User, log)
	cfg.Postgres.Password = envutil.GetEnv("POSTGRES_PASSWORD", cfg.Postgres.Password, log)
	cfg.Postgres.Name = envutil.GetEnv("POSTGRES_NAME", cfg.Postgres.Name, log)
	return cfg, nil
}

func (p PostgresConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", p.User, p.Password, p.Host, p.Port, p.Name)
}

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/visionforge/visionforge-backend/internal/platform/logger"
)

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"), logger.NewNop())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTPPort != 8080 || cfg.StorageMode != "postgres" {
		t.Fatalf("defaults = %+v", cfg)
	}
	if !cfg.AutoMigrate {
		t.Fatalf("auto migrate should default on")
	}
}

func TestLoadReadsFileAndEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "visionforge.yaml")
	raw := "http_port: 9000\nstorage_mode: local\nstorage_root: /tmp/vf\n"
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("HTTP_PORT", "9100")
	t.Setenv("AUTO_MIGRATE", "false")

	cfg, err := Load(path, logger.NewNop())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.StorageMode != "local" || cfg.StorageRoot != "/tmp/vf" {
		t.Fatalf("file values lost: %+v", cfg)
	}
	// Env wins over the file.
	if cfg.HTTPPort != 9100 {
		t.Fatalf("http port = %d", cfg.HTTPPort)
	}
	if cfg.AutoMigrate {
		t.Fatalf("auto migrate not overridden off")
	}
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.yaml")
	if err := os.WriteFile(path, []byte("{not yaml:::"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path, logger.NewNop()); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestPostgresDSN(t *testing.T) {
	p := PostgresConfig{Host: "db", Port: "5433", User: "vf", Password: "secret", Name: "visionforge"}
	want := "postgres://vf:secret@db:5433/visionforge?sslmode=disable"
	if got := p.DSN(); got != want {
		t.Fatalf("dsn = %s", got)
	}
}

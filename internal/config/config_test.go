package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "secret")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != "8080" {
		t.Errorf("Expected port 8080, got %s", cfg.Server.Port)
	}
	if cfg.Storage.Driver != DriverFile {
		t.Errorf("Expected file driver, got %s", cfg.Storage.Driver)
	}
	if cfg.Lifecycle.SweepSchedule != "@every 1m" {
		t.Errorf("Expected default sweep schedule, got %s", cfg.Lifecycle.SweepSchedule)
	}
	if !cfg.Lifecycle.SeedPublished {
		t.Error("Expected seeding to be enabled by default")
	}
	if cfg.Backup.ReminderDays != 7 {
		t.Errorf("Expected 7 reminder days, got %d", cfg.Backup.ReminderDays)
	}
	if cfg.Auth.TokenTTL != 12*time.Hour {
		t.Errorf("Expected 12h token ttl, got %v", cfg.Auth.TokenTTL)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "secret")
	t.Setenv("PORT", "9090")
	t.Setenv("STORAGE_DRIVER", "memory")
	t.Setenv("BACKUP_REMINDER_DAYS", "3")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != "9090" {
		t.Errorf("Expected port 9090, got %s", cfg.Server.Port)
	}
	if cfg.Storage.Driver != DriverMemory {
		t.Errorf("Expected memory driver, got %s", cfg.Storage.Driver)
	}
	if cfg.Backup.ReminderDays != 3 {
		t.Errorf("Expected 3 reminder days, got %d", cfg.Backup.ReminderDays)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	doc := "auth:\n  jwt_secret: from-file\nlifecycle:\n  sweep_schedule: \"*/5 * * * *\"\n  seed_published: false\n"
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Auth.JWTSecret != "from-file" {
		t.Errorf("Expected secret from file, got %q", cfg.Auth.JWTSecret)
	}
	if cfg.Lifecycle.SweepSchedule != "*/5 * * * *" {
		t.Errorf("Expected schedule from file, got %q", cfg.Lifecycle.SweepSchedule)
	}
	if cfg.Lifecycle.SeedPublished {
		t.Error("Expected seeding disabled by file")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("Expected error for missing config file")
	}
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Storage: StorageConfig{Driver: DriverFile, FilePath: "store.json"},
			Auth:    AuthConfig{JWTSecret: "s"},
			Backup:  BackupConfig{ReminderDays: 7},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(*Config) {}, false},
		{"no storage", func(c *Config) { c.Storage.Driver = DriverNone }, false},
		{"unknown driver", func(c *Config) { c.Storage.Driver = "mongo" }, true},
		{"file without path", func(c *Config) { c.Storage.FilePath = "" }, true},
		{"postgres without host", func(c *Config) { c.Storage.Driver = DriverPostgres }, true},
		{"missing secret", func(c *Config) { c.Auth.JWTSecret = "" }, true},
		{"zero reminder days", func(c *Config) { c.Backup.ReminderDays = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Storage drivers accepted by StorageConfig.Driver.
const (
	DriverNone     = "none"
	DriverMemory   = "memory"
	DriverFile     = "file"
	DriverRedis    = "redis"
	DriverPostgres = "postgres"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Lifecycle LifecycleConfig `mapstructure:"lifecycle"`
	Backup    BackupConfig    `mapstructure:"backup"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Import    ImportConfig    `mapstructure:"import"`
	Log       LogConfig       `mapstructure:"log"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port            string        `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// StorageConfig selects the key-value backend behind the persistence adapter.
type StorageConfig struct {
	Driver   string `mapstructure:"driver"`
	FilePath string `mapstructure:"file_path"`
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host           string        `mapstructure:"host"`
	Port           string        `mapstructure:"port"`
	User           string        `mapstructure:"user"`
	Password       string        `mapstructure:"password"`
	Name           string        `mapstructure:"name"`
	SSLMode        string        `mapstructure:"sslmode"`
	MaxOpenConns   int           `mapstructure:"max_open_conns"`
	MaxIdleConns   int           `mapstructure:"max_idle_conns"`
	MaxLifetime    time.Duration `mapstructure:"max_lifetime"`
	MigrationsPath string        `mapstructure:"migrations_path"`
}

// RedisConfig holds redis connection settings
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// LifecycleConfig tunes the article lifecycle store and its sweeper.
type LifecycleConfig struct {
	SweepSchedule string `mapstructure:"sweep_schedule"`
	SeedPublished bool   `mapstructure:"seed_published"`
}

// BackupConfig holds backup reminder settings
type BackupConfig struct {
	ReminderDays int `mapstructure:"reminder_days"`
}

// AuthConfig holds admin authentication settings
type AuthConfig struct {
	JWTSecret         string        `mapstructure:"jwt_secret"`
	AdminUser         string        `mapstructure:"admin_user"`
	AdminPasswordHash string        `mapstructure:"admin_password_hash"`
	TokenTTL          time.Duration `mapstructure:"token_ttl"`
}

// ImportConfig holds import settings
type ImportConfig struct {
	MaxUploadSize int64 `mapstructure:"max_upload_size"` // in bytes
}

// LogConfig holds logging settings
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // "json" or "pretty"
}

// Load reads configuration from defaults, an optional YAML file and the
// environment, in increasing order of precedence. Environment keys are the
// upper-cased config paths with "." replaced by "_" (SERVER_PORT, STORAGE_DRIVER).
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Short aliases kept for existing deployments
	_ = v.BindEnv("server.port", "SERVER_PORT", "PORT")
	_ = v.BindEnv("log.level", "LOG_LEVEL")
	_ = v.BindEnv("log.format", "LOG_FORMAT")

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration: %w", err)
	}

	// Validate required configuration
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 60*time.Second)
	v.SetDefault("server.shutdown_timeout", 30*time.Second)

	v.SetDefault("storage.driver", DriverFile)
	v.SetDefault("storage.file_path", "./data/store.json")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.name", "editorial")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.max_lifetime", 5*time.Minute)
	v.SetDefault("database.migrations_path", "./migrations")

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("lifecycle.sweep_schedule", "@every 1m")
	v.SetDefault("lifecycle.seed_published", true)

	v.SetDefault("backup.reminder_days", 7)

	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.admin_user", "admin")
	v.SetDefault("auth.admin_password_hash", "")
	v.SetDefault("auth.token_ttl", 12*time.Hour)

	v.SetDefault("import.max_upload_size", int64(20*1024*1024)) // 20MB

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case DriverNone, DriverMemory, DriverRedis:
	case DriverFile:
		if c.Storage.FilePath == "" {
			return fmt.Errorf("storage.file_path is required for the file driver")
		}
	case DriverPostgres:
		if c.Database.Host == "" {
			return fmt.Errorf("database.host is required for the postgres driver")
		}
		if c.Database.Name == "" {
			return fmt.Errorf("database.name is required for the postgres driver")
		}
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret is required")
	}
	if c.Backup.ReminderDays <= 0 {
		return fmt.Errorf("backup.reminder_days must be positive")
	}
	return nil
}

// GetDSN returns the PostgreSQL connection string
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

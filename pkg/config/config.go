package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/FACorreiaa/cadastro-militares/pkg/db"
)

// Config holds all application configuration
type Config struct {
	Database      DatabaseConfig
	Storage       StorageConfig
	Backup        BackupConfig
	Observability ObservabilityConfig
	LogLevel      slog.Level
}

type DatabaseConfig struct {
	Driver     string
	SQLitePath string
	Host       string
	Port       int
	User       string
	Password   string
	Database   string
	SSLMode    string
	MaxConns   int
	MinConns   int
}

type StorageConfig struct {
	PhotosDir     string
	TemplatesFile string
}

type BackupConfig struct {
	Dir      string
	Schedule string
}

type ObservabilityConfig struct {
	MetricsTextfile string
}

// Load reads configuration from environment variables, after a .env file
// in the working directory when one exists.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Database: DatabaseConfig{
			Driver:     strings.ToLower(getEnv("DB_DRIVER", db.DriverSQLite)),
			SQLitePath: getEnv("SQLITE_PATH", "militares.db"),
			Host:       getEnv("POSTGRES_HOST", "localhost"),
			Port:       getEnvAsInt("POSTGRES_PORT", 5432),
			User:       getEnv("POSTGRES_USER", "postgres"),
			Password:   getEnv("POSTGRES_PASSWORD", "postgres"),
			Database:   getEnv("POSTGRES_DB", "cadastro"),
			SSLMode:    getEnv("POSTGRES_SSLMODE", "disable"),
			MaxConns:   getEnvAsInt("POSTGRES_MAX_CONNS", 4),
			MinConns:   getEnvAsInt("POSTGRES_MIN_CONNS", 0),
		},
		Storage: StorageConfig{
			PhotosDir:     getEnv("PHOTOS_DIR", "./fotos"),
			TemplatesFile: getEnv("TEMPLATES_FILE", "boletins.json"),
		},
		Backup: BackupConfig{
			Dir:      getEnv("BACKUP_DIR", "./backups"),
			Schedule: getEnv("BACKUP_SCHEDULE", "0 2 * * *"),
		},
		Observability: ObservabilityConfig{
			MetricsTextfile: getEnv("METRICS_TEXTFILE", ""),
		},
	}

	if err := cfg.LogLevel.UnmarshalText([]byte(getEnv("LOG_LEVEL", "info"))); err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}

	switch cfg.Database.Driver {
	case db.DriverSQLite, db.DriverPostgres:
	default:
		return nil, fmt.Errorf("unknown DB_DRIVER %q (want %s or %s)", cfg.Database.Driver, db.DriverSQLite, db.DriverPostgres)
	}

	return cfg, nil
}

// DSN returns the database connection string of the configured driver.
func (c *DatabaseConfig) DSN() string {
	if c.Driver == db.DriverPostgres {
		return fmt.Sprintf(
			"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
		)
	}
	return c.SQLitePath
}

// DB returns the settings db.New expects.
func (c *DatabaseConfig) DB() db.Config {
	return db.Config{
		Driver:          c.Driver,
		DSN:             c.DSN(),
		MaxConns:        int32(c.MaxConns),
		MinConns:        int32(c.MinConns),
		MaxConnLifetime: time.Hour,
		MaxConnIdleTime: 30 * time.Minute,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

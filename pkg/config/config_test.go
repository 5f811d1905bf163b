package config

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"DB_DRIVER", "SQLITE_PATH", "PHOTOS_DIR", "BACKUP_SCHEDULE", "LOG_LEVEL", "METRICS_TEXTFILE"} {
		t.Setenv(k, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "militares.db", cfg.Database.DSN())
	assert.Equal(t, "./fotos", cfg.Storage.PhotosDir)
	assert.Equal(t, "boletins.json", cfg.Storage.TemplatesFile)
	assert.Equal(t, "0 2 * * *", cfg.Backup.Schedule)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Empty(t, cfg.Observability.MetricsTextfile)
}

func TestLoad_Postgres(t *testing.T) {
	t.Setenv("DB_DRIVER", "POSTGRES")
	t.Setenv("POSTGRES_HOST", "db")
	t.Setenv("POSTGRES_PORT", "6543")
	t.Setenv("POSTGRES_DB", "registry")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Contains(t, cfg.Database.DSN(), "host=db port=6543")
	assert.Contains(t, cfg.Database.DSN(), "dbname=registry")
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, "postgres", cfg.Database.DB().Driver)
}

func TestLoad_Invalid(t *testing.T) {
	t.Setenv("DB_DRIVER", "mysql")
	_, err := Load()
	assert.ErrorContains(t, err, "DB_DRIVER")

	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("LOG_LEVEL", "loud")
	_, err = Load()
	assert.ErrorContains(t, err, "LOG_LEVEL")
}

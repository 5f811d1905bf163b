// Package db opens the registry database and applies its migrations.
// SQLite is the default store; PostgreSQL is available for shared
// deployments.
package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

//go:embed migrations/sqlite/*.sql migrations/postgres/*.sql
var migrations embed.FS

// Config holds connection settings. Pool sizes apply to PostgreSQL only.
type Config struct {
	Driver          string
	DSN             string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// DB is an open database. Exactly one of SQL and Pool is set, depending
// on the driver.
type DB struct {
	Driver string
	SQL    *sql.DB
	Pool   *pgxpool.Pool
	logger *slog.Logger
}

// New connects to the configured database and checks it is reachable.
func New(cfg Config, logger *slog.Logger) (*DB, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	switch cfg.Driver {
	case DriverSQLite, "":
		sqlDB, err := OpenSQLite(cfg.DSN)
		if err != nil {
			return nil, err
		}
		if err := sqlDB.PingContext(ctx); err != nil {
			sqlDB.Close()
			return nil, fmt.Errorf("failed to ping sqlite database: %w", err)
		}
		logger.Info("connected to sqlite", slog.String("path", cfg.DSN))
		return &DB{Driver: DriverSQLite, SQL: sqlDB, logger: logger}, nil

	case DriverPostgres:
		poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("failed to parse postgres dsn: %w", err)
		}
		if cfg.MaxConns > 0 {
			poolCfg.MaxConns = cfg.MaxConns
		}
		if cfg.MinConns > 0 {
			poolCfg.MinConns = cfg.MinConns
		}
		if cfg.MaxConnLifetime > 0 {
			poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
		}
		if cfg.MaxConnIdleTime > 0 {
			poolCfg.MaxConnIdleTime = cfg.MaxConnIdleTime
		}

		pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
		if err != nil {
			return nil, fmt.Errorf("failed to create postgres pool: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("failed to ping postgres: %w", err)
		}
		logger.Info("connected to postgres",
			slog.Int("max_conns", int(poolCfg.MaxConns)),
			slog.Int("min_conns", int(poolCfg.MinConns)),
		)
		return &DB{Driver: DriverPostgres, Pool: pool, logger: logger}, nil

	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}

// OpenSQLite opens path with foreign keys and WAL journaling enabled. The
// handle is limited to one connection so ":memory:" databases are shared
// by every query and writers never contend for the file lock.
func OpenSQLite(path string) (*sql.DB, error) {
	dsn := fmt.Sprintf("file:%s?_foreign_keys=on&_journal_mode=WAL&_busy_timeout=5000", path)
	if path == ":memory:" {
		dsn = "file::memory:?_foreign_keys=on"
	}

	sqlDB, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)
	return sqlDB, nil
}

// RunMigrations brings the schema up to date.
func (d *DB) RunMigrations() error {
	switch d.Driver {
	case DriverPostgres:
		sqlDB := stdlib.OpenDBFromPool(d.Pool)
		defer sqlDB.Close()
		return Migrate(sqlDB, DriverPostgres)
	default:
		return Migrate(d.SQL, DriverSQLite)
	}
}

// Migrate applies the embedded migrations of driver to sqlDB.
func Migrate(sqlDB *sql.DB, driver string) error {
	dialect, dir := goose.DialectSQLite3, "migrations/sqlite"
	if driver == DriverPostgres {
		dialect, dir = goose.DialectPostgres, "migrations/postgres"
	}

	fsys, err := fs.Sub(migrations, dir)
	if err != nil {
		return fmt.Errorf("failed to open migrations: %w", err)
	}
	provider, err := goose.NewProvider(dialect, sqlDB, fsys)
	if err != nil {
		return fmt.Errorf("failed to create migration provider: %w", err)
	}
	if _, err := provider.Up(context.Background()); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}

// Close releases the underlying connections.
func (d *DB) Close() {
	if d.Pool != nil {
		d.Pool.Close()
	}
	if d.SQL != nil {
		if err := d.SQL.Close(); err != nil && d.logger != nil {
			d.logger.Warn("failed to close sqlite database", slog.Any("error", err))
		}
	}
}

package main

import (
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/FACorreiaa/cadastro-militares/internal/domain/allowance"
	"github.com/FACorreiaa/cadastro-militares/internal/domain/bulletin"
	importservice "github.com/FACorreiaa/cadastro-militares/internal/domain/import/service"
	"github.com/FACorreiaa/cadastro-militares/internal/domain/personnel/repository"
	personnelservice "github.com/FACorreiaa/cadastro-militares/internal/domain/personnel/service"
	"github.com/FACorreiaa/cadastro-militares/pkg/config"
	"github.com/FACorreiaa/cadastro-militares/pkg/cron"
	"github.com/FACorreiaa/cadastro-militares/pkg/db"
	"github.com/FACorreiaa/cadastro-militares/pkg/storage"
)

// Dependencies holds all application dependencies
type Dependencies struct {
	Config  *config.Config
	DB      *db.DB
	Logger  *slog.Logger
	Metrics *prometheus.Registry

	// Repositories
	Repo repository.Repository

	// Services
	ImportService    *importservice.ImportService
	PersonnelService *personnelservice.Service
	AllowanceService *allowance.Service
	Templates        *bulletin.Templates
	Photos           *storage.LocalStorage
	Scheduler        *cron.Scheduler
}

// InitDependencies initializes all application dependencies
func InitDependencies(cfg *config.Config, logger *slog.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config:  cfg,
		Logger:  logger,
		Metrics: prometheus.NewRegistry(),
	}

	if err := deps.initDatabase(); err != nil {
		return nil, fmt.Errorf("failed to init database: %w", err)
	}

	deps.initRepositories()

	if err := deps.initServices(); err != nil {
		deps.Cleanup()
		return nil, fmt.Errorf("failed to init services: %w", err)
	}

	logger.Debug("all dependencies initialized successfully")

	return deps, nil
}

// initDatabase initializes the database connection and runs migrations
func (d *Dependencies) initDatabase() error {
	database, err := db.New(d.Config.Database.DB(), d.Logger)
	if err != nil {
		return err
	}

	d.DB = database

	if err := d.DB.RunMigrations(); err != nil {
		d.DB.Close()
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	d.Logger.Debug("database connected and migrations completed successfully")
	return nil
}

// initRepositories initializes all repository layer dependencies
func (d *Dependencies) initRepositories() {
	switch d.DB.Driver {
	case db.DriverPostgres:
		d.Repo = repository.NewPostgresRepository(d.DB.Pool)
	default:
		d.Repo = repository.NewSQLiteRepository(d.DB.SQL)
	}
}

// initServices initializes all service layer dependencies
func (d *Dependencies) initServices() error {
	d.ImportService = importservice.NewImportService(d.Repo, d.Logger).
		WithMetrics(importservice.NewMetrics(d.Metrics))

	d.PersonnelService = personnelservice.NewService(d.Repo, d.Logger)
	d.AllowanceService = allowance.NewService(d.Repo, d.Logger)

	templates, err := bulletin.LoadTemplates(d.Config.Storage.TemplatesFile)
	if err != nil {
		return err
	}
	d.Templates = templates

	photos, err := storage.NewLocalStorage(d.Config.Storage.PhotosDir)
	if err != nil {
		return fmt.Errorf("failed to init photo storage: %w", err)
	}
	d.Photos = photos

	d.Scheduler = cron.NewScheduler(d.Repo, d.Config.Backup.Dir, d.Config.Backup.Schedule, d.Logger)

	return nil
}

// WriteMetrics writes the collected metrics to the configured textfile,
// when one is configured.
func (d *Dependencies) WriteMetrics() {
	path := d.Config.Observability.MetricsTextfile
	if path == "" {
		return
	}
	if err := prometheus.WriteToTextfile(path, d.Metrics); err != nil {
		d.Logger.Warn("failed to write metrics", slog.String("path", path), slog.Any("error", err))
	}
}

// Cleanup closes all resources
func (d *Dependencies) Cleanup() {
	if d.PersonnelService != nil {
		if err := d.PersonnelService.Close(); err != nil {
			d.Logger.Warn("failed to close search index", slog.Any("error", err))
		}
	}
	if d.DB != nil {
		d.DB.Close()
	}
	d.Logger.Debug("cleanup completed")
}

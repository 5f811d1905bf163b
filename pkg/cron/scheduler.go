// Package cron provides scheduled background jobs using robfig/cron.
package cron

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/FACorreiaa/cadastro-militares/internal/domain/export"
	"github.com/FACorreiaa/cadastro-militares/internal/domain/personnel/repository"
)

// RecordSource is where backups read the registry from.
type RecordSource interface {
	FetchAll(ctx context.Context) ([]repository.Record, error)
}

// Scheduler manages background scheduled jobs using robfig/cron.
type Scheduler struct {
	cron     *cron.Cron
	source   RecordSource
	dir      string
	schedule string
	logger   *slog.Logger
	now      func() time.Time
}

// NewScheduler creates a scheduler writing workbook backups of source to
// dir on the standard 5-field cron schedule.
func NewScheduler(source RecordSource, dir, schedule string, logger *slog.Logger) *Scheduler {
	c := cron.New(cron.WithLogger(cron.VerbosePrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelDebug))))

	return &Scheduler{
		cron:     c,
		source:   source,
		dir:      dir,
		schedule: schedule,
		logger:   logger,
		now:      time.Now,
	}
}

// Start begins scheduled jobs.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.schedule, s.backupJob); err != nil {
		return fmt.Errorf("invalid backup schedule %q: %w", s.schedule, err)
	}

	s.cron.Start()
	s.logger.Info("cron scheduler started",
		slog.Int("jobs", len(s.cron.Entries())),
		slog.String("schedule", s.schedule),
	)
	return nil
}

// Stop stops the scheduler. The returned context is done once running jobs
// have finished.
func (s *Scheduler) Stop() context.Context {
	s.logger.Info("cron scheduler stopping")
	return s.cron.Stop()
}

// RunNow writes a backup immediately and returns its path.
func (s *Scheduler) RunNow(ctx context.Context) (string, error) {
	return s.backup(ctx)
}

func (s *Scheduler) backupJob() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	if _, err := s.backup(ctx); err != nil {
		s.logger.Error("scheduled backup failed", slog.Any("error", err))
	}
}

func (s *Scheduler) backup(ctx context.Context) (string, error) {
	start := time.Now()

	records, err := s.source.FetchAll(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to load registry: %w", err)
	}

	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}

	name := fmt.Sprintf("militares-%s.xlsx", s.now().Format("20060102-150405"))
	path := filepath.Join(s.dir, name)

	// Written under a temporary name so a crash never leaves a truncated
	// backup behind.
	tmp, err := os.CreateTemp(s.dir, ".backup-*.xlsx")
	if err != nil {
		return "", fmt.Errorf("failed to create backup file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := export.WriteWorkbook(tmp, records); err != nil {
		tmp.Close()
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to close backup file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("failed to store backup: %w", err)
	}

	s.logger.Info("backup written",
		slog.String("path", path),
		slog.Int("records", len(records)),
		slog.Duration("duration", time.Since(start)),
	)
	return path, nil
}

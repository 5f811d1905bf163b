// Package service reconciles personnel spreadsheets with the registry.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/cadastro-militares/internal/domain/import/normalizer"
	"github.com/FACorreiaa/cadastro-militares/internal/domain/import/parser"
	"github.com/FACorreiaa/cadastro-militares/internal/domain/import/sniffer"
	"github.com/FACorreiaa/cadastro-militares/internal/domain/personnel/repository"
)

// Options tunes one import run.
type Options struct {
	// DryRun reconciles without writing anything.
	DryRun bool
}

// ImportService orchestrates header detection, normalization and the
// insert-or-update of every row.
type ImportService struct {
	gw      repository.Gateway
	logger  *slog.Logger
	metrics *Metrics
	tracer  trace.Tracer
}

// NewImportService creates a new import service
func NewImportService(gw repository.Gateway, logger *slog.Logger) *ImportService {
	return &ImportService{
		gw:     gw,
		logger: logger,
		tracer: otel.Tracer("cadastro/import"),
	}
}

// WithMetrics sets the metrics recorder (optional).
func (s *ImportService) WithMetrics(m *Metrics) *ImportService {
	s.metrics = m
	return s
}

// ImportFile reads the workbook or CSV file at path and imports it.
func (s *ImportService) ImportFile(ctx context.Context, path string, opts Options) (*Summary, error) {
	sheet, err := parser.Open(path)
	if err != nil {
		return nil, err
	}
	return s.Import(ctx, sheet, opts)
}

// Import reconciles every data row of sheet with the registry. Rows match
// stored records by PREC-CP first and CPF second, against the registry as
// it was before the run. When the gateway supports transactions the run
// is atomic; any error leaves the registry untouched.
func (s *ImportService) Import(ctx context.Context, sheet *parser.Sheet, opts Options) (*Summary, error) {
	runID := uuid.New()
	start := time.Now()

	ctx, span := s.tracer.Start(ctx, "import.run", trace.WithAttributes(
		attribute.String("import.run_id", runID.String()),
		attribute.String("import.sheet", sheet.Name),
		attribute.Bool("import.dry_run", opts.DryRun),
	))
	defer span.End()

	logger := s.logger.With(slog.String("run_id", runID.String()))

	fail := func(err error) (*Summary, error) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.metrics.ObserveRun("failed", time.Since(start), nil)
		logger.Error("import failed", slog.Any("error", err))
		return nil, err
	}

	header, err := sniffer.FindHeader(sheet.Rows)
	if err != nil {
		return fail(err)
	}
	cm := sniffer.Resolve(header.Names)
	summary := newSummary(runID, sheet.Name, header, cm)
	summary.DryRun = opts.DryRun

	logger.Info("header resolved",
		slog.Int("header_row", header.Row),
		slog.Int("mapped_fields", cm.Mapped()),
		slog.String("fingerprint", summary.Fingerprint),
	)

	run := func(ctx context.Context, gw repository.Gateway) error {
		return s.reconcile(ctx, gw, sheet, header.Row, cm, summary, logger)
	}

	switch gw := s.gw.(type) {
	case repository.Transactor:
		if opts.DryRun {
			err = run(ctx, dryRunGateway{Gateway: s.gw})
		} else {
			err = gw.WithinTx(ctx, run)
		}
	default:
		if opts.DryRun {
			err = run(ctx, dryRunGateway{Gateway: s.gw})
		} else {
			err = run(ctx, s.gw)
		}
	}
	if err != nil {
		return fail(err)
	}

	span.SetAttributes(
		attribute.Int("import.header_row", header.Row),
		attribute.Int("import.inserted", summary.Inserted),
		attribute.Int("import.updated", summary.Updated),
		attribute.Int("import.ignored", summary.Ignored),
	)

	status := "succeeded"
	if opts.DryRun {
		status = "dry_run"
	}
	s.metrics.ObserveRun(status, time.Since(start), summary)

	logger.Info("import finished",
		slog.Int("inserted", summary.Inserted),
		slog.Int("updated", summary.Updated),
		slog.Int("unchanged", summary.Unchanged),
		slog.Int("ignored", summary.Ignored),
		slog.Bool("dry_run", opts.DryRun),
		slog.Duration("elapsed", time.Since(start)),
	)
	return summary, nil
}

func (s *ImportService) reconcile(
	ctx context.Context,
	gw repository.Gateway,
	sheet *parser.Sheet,
	headerRow int,
	cm sniffer.ColumnMap,
	summary *Summary,
	logger *slog.Logger,
) error {
	existing, err := gw.FetchAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}

	// Snapshot taken once: rows of this file never match each other.
	byPrecedence := make(map[string]repository.Record, len(existing))
	byNationalID := make(map[string]repository.Record, len(existing))
	for _, rec := range existing {
		byPrecedence[rec.PrecedenceCode] = rec
		byNationalID[rec.NationalID] = rec
	}

	for i := headerRow; i < len(sheet.Rows); i++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		cells := sheet.Rows[i]
		if normalizer.BlankRow(cells) {
			continue
		}

		row := normalizeRow(extractRow(cm, cells), sheet.Epoch)
		if row.FullName == "" {
			summary.Ignored++
			continue
		}

		if row.Rank != "" {
			if _, err := gw.EnsureRank(ctx, row.Rank); err != nil {
				logger.Warn("failed to register rank",
					slog.String("rank", row.Rank),
					slog.Int("row", i+1),
					slog.Any("error", err),
				)
			}
		}

		old, found := lookup(row, byPrecedence, byNationalID)
		if !found {
			if _, err := gw.Insert(ctx, newRecord(row)); err != nil {
				return fmt.Errorf("row %d: %w", i+1, err)
			}
			summary.Inserted++
			continue
		}

		merged := merge(old, row)
		if merged == old {
			summary.Unchanged++
			continue
		}
		if err := gw.Update(ctx, old.ID, merged); err != nil {
			return fmt.Errorf("row %d: %w", i+1, err)
		}
		summary.Updated++
	}
	return nil
}

func lookup(row repository.Record, byPrecedence, byNationalID map[string]repository.Record) (repository.Record, bool) {
	if row.PrecedenceCode != "" {
		if rec, ok := byPrecedence[row.PrecedenceCode]; ok {
			return rec, true
		}
	}
	if row.NationalID != "" {
		if rec, ok := byNationalID[row.NationalID]; ok {
			return rec, true
		}
	}
	return repository.Record{}, false
}

// dryRunGateway reads from the wrapped gateway and discards writes.
type dryRunGateway struct {
	repository.Gateway
}

func (dryRunGateway) Insert(context.Context, repository.Record) (int64, error) { return 0, nil }

func (dryRunGateway) Update(context.Context, int64, repository.Record) error { return nil }

func (dryRunGateway) EnsureRank(context.Context, string) (bool, error) { return false, nil }

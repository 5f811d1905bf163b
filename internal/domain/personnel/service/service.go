// Package service provides business logic for the personnel registry.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/shopspring/decimal"

	"github.com/FACorreiaa/cadastro-militares/internal/domain/import/normalizer"
	"github.com/FACorreiaa/cadastro-militares/internal/domain/personnel/rank"
	"github.com/FACorreiaa/cadastro-militares/internal/domain/personnel/repository"
)

// ErrInvalidRecord is returned when a record fails validation.
var ErrInvalidRecord = errors.New("invalid record")

var moneyPattern = regexp.MustCompile(`^(0|\d+\.\d{2})$`)

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("money", func(fl validator.FieldLevel) bool {
		return moneyPattern.MatchString(fl.Field().String())
	})
	return v
}

// Service provides personnel management business logic
type Service struct {
	repo     repository.Repository
	logger   *slog.Logger
	validate *validator.Validate

	mu    sync.Mutex
	index *SearchIndex
	stale bool
}

// NewService creates a new personnel service
func NewService(repo repository.Repository, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		logger:   logger,
		validate: newValidator(),
		stale:    true,
	}
}

// Normalize applies the import normalizers to a record typed by hand so
// manual entries and imported rows are stored alike.
func Normalize(r repository.Record) repository.Record {
	text := normalizer.Text

	out := repository.Record{
		ID:             r.ID,
		Rank:           normalizer.ExpandRank(r.Rank),
		FullName:       strings.ToUpper(strings.TrimSpace(r.FullName)),
		WarName:        strings.TrimSpace(r.WarName),
		NationalID:     normalizer.DigitsOnly(text(r.NationalID)),
		PrecedenceCode: normalizer.DigitsOnly(text(r.PrecedenceCode)),
		MilitaryID:     normalizer.DigitsOnly(text(r.MilitaryID)),
		Bank:           strings.TrimSpace(r.Bank),
		Agency:         strings.TrimSpace(r.Agency),
		Account:        strings.TrimSpace(r.Account),
		Photo:          strings.TrimSpace(r.Photo),
		FormationYear:  normalizer.Year(text(r.FormationYear)),
		BirthDate:      normalizer.Date(text(r.BirthDate), normalizer.Epoch1900),
		EnlistmentDate: normalizer.Date(text(r.EnlistmentDate), normalizer.Epoch1900),
		Address:        strings.TrimSpace(r.Address),
		PostalCode:     normalizer.DigitsOnly(text(r.PostalCode)),
		PreschoolValue: normalizer.Money(text(r.PreschoolValue)),
		TransportValue: normalizer.Money(text(r.TransportValue)),
		HousingFlag:    flagOr(r.HousingFlag, normalizer.No),
	}
	if out.WarName == "" {
		out.WarName = normalizer.FirstGivenName(out.FullName)
	}

	out.PreschoolFlag = flagOr(r.PreschoolFlag, yesIfPositive(out.PreschoolValue))
	if out.PreschoolFlag == normalizer.No {
		out.PreschoolValue = "0"
	}
	out.TransportFlag = flagOr(r.TransportFlag, yesIfPositive(out.TransportValue))
	if out.TransportFlag == normalizer.No {
		out.TransportValue = "0"
	}
	return out
}

func flagOr(raw, fallback string) string {
	if f := normalizer.YesNo(normalizer.Text(raw)); f != "" {
		return f
	}
	return fallback
}

func yesIfPositive(value string) string {
	if normalizer.IsZeroMoney(value) {
		return normalizer.No
	}
	return normalizer.Yes
}

// Validate checks a normalized record.
func (s *Service) Validate(r repository.Record) error {
	err := s.validate.Struct(r)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("failed to validate record: %w", err)
	}

	problems := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		problems = append(problems, fmt.Sprintf("%s (%s)", fe.Field(), fe.Tag()))
	}
	return fmt.Errorf("%w: %s", ErrInvalidRecord, strings.Join(problems, ", "))
}

// prepare normalizes r and validates the result. Dates typed but not
// understood are rejected instead of being dropped.
func (s *Service) prepare(r repository.Record) (repository.Record, error) {
	rec := Normalize(r)

	var unreadable []string
	if strings.TrimSpace(r.BirthDate) != "" && rec.BirthDate == "" {
		unreadable = append(unreadable, "BirthDate (date)")
	}
	if strings.TrimSpace(r.EnlistmentDate) != "" && rec.EnlistmentDate == "" {
		unreadable = append(unreadable, "EnlistmentDate (date)")
	}
	if len(unreadable) > 0 {
		return rec, fmt.Errorf("%w: %s", ErrInvalidRecord, strings.Join(unreadable, ", "))
	}

	return rec, s.Validate(rec)
}

// Create normalizes, validates and stores a new record.
func (s *Service) Create(ctx context.Context, r repository.Record) (*repository.Record, error) {
	rec, err := s.prepare(r)
	if err != nil {
		return nil, err
	}
	rec.ID = 0

	if _, err := s.repo.EnsureRank(ctx, rec.Rank); err != nil {
		s.logger.Warn("failed to register rank", slog.String("rank", rec.Rank), slog.Any("error", err))
	}

	id, err := s.repo.Insert(ctx, rec)
	if err != nil {
		return nil, err
	}
	rec.ID = id
	s.markStale()

	s.logger.Info("personnel created", slog.Int64("id", id), slog.String("name", rec.FullName))
	return &rec, nil
}

// Update normalizes, validates and replaces the record with id.
func (s *Service) Update(ctx context.Context, id int64, r repository.Record) (*repository.Record, error) {
	rec, err := s.prepare(r)
	if err != nil {
		return nil, err
	}
	rec.ID = id

	if _, err := s.repo.EnsureRank(ctx, rec.Rank); err != nil {
		s.logger.Warn("failed to register rank", slog.String("rank", rec.Rank), slog.Any("error", err))
	}

	if err := s.repo.Update(ctx, id, rec); err != nil {
		return nil, err
	}
	s.markStale()
	return &rec, nil
}

// Get retrieves a record by id
func (s *Service) Get(ctx context.Context, id int64) (*repository.Record, error) {
	return s.repo.GetByID(ctx, id)
}

// Delete removes a record
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.markStale()
	s.logger.Info("personnel deleted", slog.Int64("id", id))
	return nil
}

// List returns every record ordered by seniority, then name.
func (s *Service) List(ctx context.Context) ([]repository.Record, error) {
	records, err := s.repo.FetchAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list personnel: %w", err)
	}
	rank.Sort(records)
	return records, nil
}

// FilterByName keeps the records whose full or war name contains the
// letters of term in order, ignoring case and accents.
func (s *Service) FilterByName(ctx context.Context, term string) ([]repository.Record, error) {
	records, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	term = strings.TrimSpace(term)
	if term == "" {
		return records, nil
	}

	out := make([]repository.Record, 0, len(records))
	for _, r := range records {
		if len(fuzzy.FindNormalizedFold(term, []string{r.FullName, r.WarName})) > 0 {
			out = append(out, r)
		}
	}
	return out, nil
}

// SuggestRank returns catalog ranks close to raw, best first. A raw value
// that expands to a catalog rank is returned alone.
func (s *Service) SuggestRank(ctx context.Context, raw string, limit int) ([]string, error) {
	catalog, err := s.repo.ListRanks(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list ranks: %w", err)
	}

	expanded := normalizer.ExpandRank(raw)
	for _, r := range catalog {
		if r == expanded {
			return []string{r}, nil
		}
	}

	matches := fuzzy.RankFindNormalizedFold(strings.TrimSpace(raw), catalog)
	sort.Sort(matches)

	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, m.Target)
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Ranks lists the rank catalog in insertion order.
func (s *Service) Ranks(ctx context.Context) ([]string, error) {
	return s.repo.ListRanks(ctx)
}

// Banks lists the bank catalog in insertion order.
func (s *Service) Banks(ctx context.Context) ([]string, error) {
	return s.repo.ListBanks(ctx)
}

// AddRank adds a rank to the catalog. It reports whether it was new.
func (s *Service) AddRank(ctx context.Context, name string) (bool, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return false, fmt.Errorf("%w: empty rank", ErrInvalidRecord)
	}
	return s.repo.EnsureRank(ctx, name)
}

// AddBank adds a bank to the catalog. It reports whether it was new.
func (s *Service) AddBank(ctx context.Context, name string) (bool, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return false, fmt.Errorf("%w: empty bank", ErrInvalidRecord)
	}
	return s.repo.EnsureBank(ctx, name)
}

// SetStipend stores the base pay of a rank.
func (s *Service) SetStipend(ctx context.Context, rankName string, amount decimal.Decimal) error {
	if amount.IsNegative() {
		return fmt.Errorf("%w: negative stipend", ErrInvalidRecord)
	}
	if err := s.repo.UpsertStipend(ctx, strings.TrimSpace(rankName), amount); err != nil {
		return fmt.Errorf("failed to save stipend: %w", err)
	}
	return nil
}

// Stipends lists the base pay of every rank.
func (s *Service) Stipends(ctx context.Context) ([]repository.Stipend, error) {
	return s.repo.ListStipends(ctx)
}

func (s *Service) markStale() {
	s.mu.Lock()
	s.stale = true
	s.mu.Unlock()
}

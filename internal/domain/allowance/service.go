package allowance

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/FACorreiaa/cadastro-militares/internal/domain/personnel/rank"
	"github.com/FACorreiaa/cadastro-militares/internal/domain/personnel/repository"
)

// Store is what the allowance service needs from the registry.
type Store interface {
	FetchAll(ctx context.Context) ([]repository.Record, error)
	GetByID(ctx context.Context, id int64) (*repository.Record, error)
	GetStipend(ctx context.Context, rank string) (decimal.Decimal, error)
	UpdateTransportAllowance(ctx context.Context, id int64, value decimal.Decimal, flag string) (bool, error)
}

// Service computes and stores allowances for registered people.
type Service struct {
	store  Store
	logger *slog.Logger
}

// NewService creates a new allowance service
func NewService(store Store, logger *slog.Logger) *Service {
	return &Service{store: store, logger: logger}
}

// Quote computes the transport allowance of a person from fares without
// storing it.
func (s *Service) Quote(ctx context.Context, id int64, fares []decimal.Decimal) (*repository.Record, Transport, error) {
	rec, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, Transport{}, err
	}
	stipend, err := s.store.GetStipend(ctx, rec.Rank)
	if err != nil {
		return nil, Transport{}, fmt.Errorf("failed to get stipend: %w", err)
	}
	return rec, ByFares(fares, stipend), nil
}

// SaveTransport computes the allowance from fares with the person's rank
// stipend and stores the net value. A zero net clears the flag.
func (s *Service) SaveTransport(ctx context.Context, id int64, fares []decimal.Decimal) (Transport, error) {
	rec, t, err := s.Quote(ctx, id, fares)
	if err != nil {
		return Transport{}, err
	}

	flag := repository.Yes
	if !t.Net.Round(2).IsPositive() {
		flag = repository.No
	}

	ok, err := s.store.UpdateTransportAllowance(ctx, id, t.Net, flag)
	if err != nil {
		return Transport{}, fmt.Errorf("failed to save transport allowance: %w", err)
	}
	if !ok {
		return Transport{}, repository.ErrNotFound
	}

	s.logger.Info("transport allowance saved",
		slog.Int64("id", id),
		slog.String("rank", rec.Rank),
		slog.String("net", t.Net.StringFixed(2)),
	)
	return t, nil
}

// DayCount holds the unworked (black) and extra (red) days of a person.
type DayCount struct {
	Black int
	Red   int
}

// Cancellation is one person receiving transport with the effect of their
// day counts.
type Cancellation struct {
	Record     repository.Record
	Net        decimal.Decimal
	Days       DayCount
	Adjustment Adjustment
}

// Cancellations lists everyone receiving transport, by seniority then
// name, adjusting their stored net allowance by the given day counts.
// People missing from days have no adjustment.
func (s *Service) Cancellations(ctx context.Context, days map[int64]DayCount) ([]Cancellation, error) {
	records, err := s.store.FetchAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load registry: %w", err)
	}
	rank.Sort(records)

	out := make([]Cancellation, 0, len(records))
	for _, r := range records {
		if !r.ReceivesTransport() {
			continue
		}
		net, err := decimal.NewFromString(r.TransportValue)
		if err != nil {
			s.logger.Warn("unreadable transport value", slog.Int64("id", r.ID), slog.String("value", r.TransportValue))
			net = decimal.Zero
		}
		dc := days[r.ID]
		out = append(out, Cancellation{
			Record:     r,
			Net:        net,
			Days:       dc,
			Adjustment: Adjust(net, dc.Black, dc.Red),
		})
	}
	return out, nil
}

// BonusLine is the representation bonus of one person.
type BonusLine struct {
	Record  repository.Record
	Stipend decimal.Decimal
	Bonus   BonusResult
}

// Bonuses computes the representation bonus of each person for the
// period, in the order given.
func (s *Service) Bonuses(ctx context.Context, ids []int64, period Period) ([]BonusLine, error) {
	days := period.Days()
	out := make([]BonusLine, 0, len(ids))
	for _, id := range ids {
		rec, err := s.store.GetByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("person %d: %w", id, err)
		}
		stipend, err := s.store.GetStipend(ctx, rec.Rank)
		if err != nil {
			return nil, fmt.Errorf("failed to get stipend: %w", err)
		}
		out = append(out, BonusLine{Record: *rec, Stipend: stipend, Bonus: Bonus(stipend, days)})
	}
	return out, nil
}

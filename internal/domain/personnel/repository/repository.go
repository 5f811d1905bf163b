package repository

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

var (
	// ErrNotFound is returned when no record has the requested id.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a CPF, PREC-CP or IDT already belongs to
	// another record.
	ErrDuplicate = errors.New("duplicate identifier")
)

// Stipend is the base monthly pay of a rank.
type Stipend struct {
	Rank   string
	Amount decimal.Decimal
}

// Gateway is what the spreadsheet import needs from storage.
type Gateway interface {
	FetchAll(ctx context.Context) ([]Record, error)
	Insert(ctx context.Context, r Record) (int64, error)
	Update(ctx context.Context, id int64, r Record) error
	// EnsureRank adds name to the rank catalog and reports whether it was
	// missing.
	EnsureRank(ctx context.Context, name string) (bool, error)
}

// Transactor runs fn against a Gateway bound to one transaction. The
// transaction commits when fn returns nil and rolls back otherwise.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, gw Gateway) error) error
}

// Repository is the full registry store.
type Repository interface {
	Gateway
	Transactor

	GetByID(ctx context.Context, id int64) (*Record, error)
	Delete(ctx context.Context, id int64) error
	// UpdateTransportAllowance stores value with two decimals and sets the
	// transport flag. It reports whether the record exists.
	UpdateTransportAllowance(ctx context.Context, id int64, value decimal.Decimal, flag string) (bool, error)

	ListRanks(ctx context.Context) ([]string, error)
	ListBanks(ctx context.Context) ([]string, error)
	EnsureBank(ctx context.Context, name string) (bool, error)

	GetStipend(ctx context.Context, rank string) (decimal.Decimal, error)
	UpsertStipend(ctx context.Context, rank string, amount decimal.Decimal) error
	ListStipends(ctx context.Context) ([]Stipend, error)

	Close() error
}

const selectColumns = `id, rank, full_name, war_name, national_id, precedence_code,
	military_id, bank, agency, account, photo,
	formation_year, birth_date, enlistment_date, address, postal_code,
	preschool_flag, preschool_value, transport_flag, transport_value, housing_flag`

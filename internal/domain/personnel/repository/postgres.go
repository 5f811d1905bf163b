package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
)

// pgQuerier is satisfied by both the pool and a pgx.Tx.
type pgQuerier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PgxPool is the subset of *pgxpool.Pool the repository uses. pgxmock
// pools satisfy it as well.
type PgxPool interface {
	pgQuerier
	Begin(ctx context.Context) (pgx.Tx, error)
	Close()
}

// PostgresRepository implements Repository using PostgreSQL. Inside
// WithinTx, tx is the open transaction and q points at it.
type PostgresRepository struct {
	pool PgxPool
	q    pgQuerier
	tx   pgx.Tx
}

// NewPostgresRepository creates a new PostgreSQL personnel repository.
func NewPostgresRepository(pool PgxPool) *PostgresRepository {
	return &PostgresRepository{pool: pool, q: pool}
}

var _ Repository = (*PostgresRepository)(nil)

const uniqueViolation = "23505"

func mapPgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%w: %s", ErrDuplicate, pgErr.ConstraintName)
	}
	return err
}

func pgPlaceholders(n int) string {
	ph := make([]string, n)
	for i := range ph {
		ph[i] = "$" + strconv.Itoa(i+1)
	}
	return strings.Join(ph, ", ")
}

// WithinTx runs fn inside one PostgreSQL transaction.
func (r *PostgresRepository) WithinTx(ctx context.Context, fn func(ctx context.Context, gw Gateway) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(ctx, &PostgresRepository{pool: r.pool, q: tx, tx: tx}); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			return fmt.Errorf("%w (rollback failed: %v)", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// FetchAll returns every record in storage order.
func (r *PostgresRepository) FetchAll(ctx context.Context) ([]Record, error) {
	rows, err := r.q.Query(ctx, `SELECT `+selectColumns+` FROM personnel ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch personnel: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(rec.scanTargets()...); err != nil {
			return nil, fmt.Errorf("failed to scan personnel row: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate personnel: %w", err)
	}
	return records, nil
}

// GetByID retrieves one record.
func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*Record, error) {
	var rec Record
	err := r.q.QueryRow(ctx, `SELECT `+selectColumns+` FROM personnel WHERE id = $1`, id).Scan(rec.scanTargets()...)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get personnel %d: %w", id, err)
	}
	return &rec, nil
}

// Insert stores a new record and returns its id.
func (r *PostgresRepository) Insert(ctx context.Context, rec Record) (int64, error) {
	query := `INSERT INTO personnel (` + strings.Join(Columns, ", ") + `) VALUES (` + pgPlaceholders(len(Columns)) + `) RETURNING id`

	var id int64
	if err := r.q.QueryRow(ctx, query, rec.Values()...).Scan(&id); err != nil {
		return 0, fmt.Errorf("failed to insert personnel: %w", mapPgError(err))
	}
	return id, nil
}

// Update overwrites every stored field of record id.
func (r *PostgresRepository) Update(ctx context.Context, id int64, rec Record) error {
	sets := make([]string, len(Columns))
	for i, col := range Columns {
		sets[i] = col + " = $" + strconv.Itoa(i+1)
	}
	query := `UPDATE personnel SET ` + strings.Join(sets, ", ") +
		`, updated_at = NOW() WHERE id = $` + strconv.Itoa(len(Columns)+1)

	tag, err := r.q.Exec(ctx, query, append(rec.Values(), id)...)
	if err != nil {
		return fmt.Errorf("failed to update personnel %d: %w", id, mapPgError(err))
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes record id.
func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM personnel WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete personnel %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateTransportAllowance stores the monthly transport value of record id.
func (r *PostgresRepository) UpdateTransportAllowance(ctx context.Context, id int64, value decimal.Decimal, flag string) (bool, error) {
	if flag == "" {
		flag = Yes
	}
	tag, err := r.q.Exec(ctx,
		`UPDATE personnel SET transport_value = $1, transport_flag = $2, updated_at = NOW() WHERE id = $3`,
		value.StringFixed(2), flag, id,
	)
	if err != nil {
		return false, fmt.Errorf("failed to update transport allowance of %d: %w", id, err)
	}
	return tag.RowsAffected() > 0, nil
}

// EnsureRank adds name to the rank catalog with a zero stipend. Inside a
// transaction it runs under a savepoint, so a failure leaves the
// transaction usable and the caller may carry on.
func (r *PostgresRepository) EnsureRank(ctx context.Context, name string) (bool, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return false, nil
	}
	if r.tx == nil {
		return ensureRank(ctx, r.q, name)
	}

	sp, err := r.tx.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to create savepoint: %w", err)
	}
	inserted, err := ensureRank(ctx, sp, name)
	if err != nil {
		if rbErr := sp.Rollback(ctx); rbErr != nil {
			return false, fmt.Errorf("%w (rollback to savepoint failed: %v)", err, rbErr)
		}
		return false, err
	}
	if err := sp.Commit(ctx); err != nil {
		return false, fmt.Errorf("failed to release savepoint: %w", err)
	}
	return inserted, nil
}

func ensureRank(ctx context.Context, q pgQuerier, name string) (bool, error) {
	tag, err := q.Exec(ctx, `INSERT INTO ranks (name) VALUES ($1) ON CONFLICT (name) DO NOTHING`, name)
	if err != nil {
		return false, fmt.Errorf("failed to insert rank %q: %w", name, err)
	}
	if tag.RowsAffected() == 0 {
		return false, nil
	}

	if _, err := q.Exec(ctx, `INSERT INTO rank_stipends (rank, amount) VALUES ($1, 0) ON CONFLICT (rank) DO NOTHING`, name); err != nil {
		return true, fmt.Errorf("failed to create stipend for rank %q: %w", name, err)
	}
	return true, nil
}

// EnsureBank adds name to the bank catalog.
func (r *PostgresRepository) EnsureBank(ctx context.Context, name string) (bool, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return false, nil
	}

	tag, err := r.q.Exec(ctx, `INSERT INTO banks (name) VALUES ($1) ON CONFLICT (name) DO NOTHING`, name)
	if err != nil {
		return false, fmt.Errorf("failed to insert bank %q: %w", name, err)
	}
	return tag.RowsAffected() > 0, nil
}

// ListRanks returns rank names in insertion order.
func (r *PostgresRepository) ListRanks(ctx context.Context) ([]string, error) {
	return r.listNames(ctx, "ranks")
}

// ListBanks returns bank names in insertion order.
func (r *PostgresRepository) ListBanks(ctx context.Context) ([]string, error) {
	return r.listNames(ctx, "banks")
}

func (r *PostgresRepository) listNames(ctx context.Context, table string) ([]string, error) {
	rows, err := r.q.Query(ctx, `SELECT name FROM `+table+` ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", table, err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", table, err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// GetStipend returns the stipend of rank, zero when none is registered.
func (r *PostgresRepository) GetStipend(ctx context.Context, rank string) (decimal.Decimal, error) {
	var amount string
	err := r.q.QueryRow(ctx, `SELECT amount::text FROM rank_stipends WHERE rank = $1`, rank).Scan(&amount)
	if errors.Is(err, pgx.ErrNoRows) {
		return decimal.Zero, nil
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to get stipend of %q: %w", rank, err)
	}
	return parseStoredAmount(amount), nil
}

// UpsertStipend sets the stipend of rank.
func (r *PostgresRepository) UpsertStipend(ctx context.Context, rank string, amount decimal.Decimal) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO rank_stipends (rank, amount) VALUES ($1, $2::numeric)
		ON CONFLICT (rank) DO UPDATE SET amount = EXCLUDED.amount, updated_at = NOW()`,
		rank, amount.StringFixed(2),
	)
	if err != nil {
		return fmt.Errorf("failed to set stipend of %q: %w", rank, err)
	}
	return nil
}

// ListStipends returns every registered stipend ordered by rank name.
func (r *PostgresRepository) ListStipends(ctx context.Context) ([]Stipend, error) {
	rows, err := r.q.Query(ctx, `SELECT rank, amount::text FROM rank_stipends ORDER BY rank`)
	if err != nil {
		return nil, fmt.Errorf("failed to list stipends: %w", err)
	}
	defer rows.Close()

	var stipends []Stipend
	for rows.Next() {
		var s Stipend
		var amount string
		if err := rows.Scan(&s.Rank, &amount); err != nil {
			return nil, fmt.Errorf("failed to scan stipend: %w", err)
		}
		s.Amount = parseStoredAmount(amount)
		stipends = append(stipends, s)
	}
	return stipends, rows.Err()
}

// Close closes the pool.
func (r *PostgresRepository) Close() error {
	r.pool.Close()
	return nil
}

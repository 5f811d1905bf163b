package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
)

// sqlQuerier is satisfied by both *sql.DB and *sql.Tx.
type sqlQuerier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// SQLiteRepository implements Repository on a local SQLite file.
type SQLiteRepository struct {
	db *sql.DB
	q  sqlQuerier
}

// NewSQLiteRepository creates a repository over an open, migrated database.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db, q: db}
}

var _ Repository = (*SQLiteRepository)(nil)

func sqlitePlaceholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func mapSQLiteError(err error) error {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	}
	return err
}

// WithinTx runs fn inside one SQLite transaction.
func (r *SQLiteRepository) WithinTx(ctx context.Context, fn func(ctx context.Context, gw Gateway) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(ctx, &SQLiteRepository{db: r.db, q: tx}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("%w (rollback failed: %v)", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// FetchAll returns every record in storage order.
func (r *SQLiteRepository) FetchAll(ctx context.Context) ([]Record, error) {
	rows, err := r.q.QueryContext(ctx, `SELECT `+selectColumns+` FROM personnel ORDER BY id`)
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
func (r *SQLiteRepository) GetByID(ctx context.Context, id int64) (*Record, error) {
	var rec Record
	err := r.q.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM personnel WHERE id = ?`, id).Scan(rec.scanTargets()...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get personnel %d: %w", id, err)
	}
	return &rec, nil
}

// Insert stores a new record and returns its id.
func (r *SQLiteRepository) Insert(ctx context.Context, rec Record) (int64, error) {
	query := `INSERT INTO personnel (` + strings.Join(Columns, ", ") + `) VALUES (` + sqlitePlaceholders(len(Columns)) + `)`

	res, err := r.q.ExecContext(ctx, query, rec.Values()...)
	if err != nil {
		return 0, fmt.Errorf("failed to insert personnel: %w", mapSQLiteError(err))
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read inserted id: %w", err)
	}
	return id, nil
}

// Update overwrites every stored field of record id.
func (r *SQLiteRepository) Update(ctx context.Context, id int64, rec Record) error {
	query := `UPDATE personnel SET ` + strings.Join(Columns, " = ?, ") + ` = ? WHERE id = ?`

	res, err := r.q.ExecContext(ctx, query, append(rec.Values(), id)...)
	if err != nil {
		return fmt.Errorf("failed to update personnel %d: %w", id, mapSQLiteError(err))
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes record id.
func (r *SQLiteRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM personnel WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete personnel %d: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateTransportAllowance stores the monthly transport value of record id.
func (r *SQLiteRepository) UpdateTransportAllowance(ctx context.Context, id int64, value decimal.Decimal, flag string) (bool, error) {
	if flag == "" {
		flag = Yes
	}
	res, err := r.q.ExecContext(ctx,
		`UPDATE personnel SET transport_value = ?, transport_flag = ? WHERE id = ?`,
		value.StringFixed(2), flag, id,
	)
	if err != nil {
		return false, fmt.Errorf("failed to update transport allowance of %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return n > 0, nil
}

// EnsureRank adds name to the rank catalog with a zero stipend.
func (r *SQLiteRepository) EnsureRank(ctx context.Context, name string) (bool, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return false, nil
	}

	res, err := r.q.ExecContext(ctx, `INSERT OR IGNORE INTO ranks (name) VALUES (?)`, name)
	if err != nil {
		return false, fmt.Errorf("failed to insert rank %q: %w", name, err)
	}
	n, err := res.RowsAffected()
	if err != nil || n == 0 {
		return false, err
	}

	if _, err := r.q.ExecContext(ctx, `INSERT OR IGNORE INTO rank_stipends (rank, amount) VALUES (?, '0.00')`, name); err != nil {
		return true, fmt.Errorf("failed to create stipend for rank %q: %w", name, err)
	}
	return true, nil
}

// EnsureBank adds name to the bank catalog.
func (r *SQLiteRepository) EnsureBank(ctx context.Context, name string) (bool, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return false, nil
	}

	res, err := r.q.ExecContext(ctx, `INSERT OR IGNORE INTO banks (name) VALUES (?)`, name)
	if err != nil {
		return false, fmt.Errorf("failed to insert bank %q: %w", name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return n > 0, nil
}

// ListRanks returns rank names in insertion order.
func (r *SQLiteRepository) ListRanks(ctx context.Context) ([]string, error) {
	return r.listNames(ctx, "ranks")
}

// ListBanks returns bank names in insertion order.
func (r *SQLiteRepository) ListBanks(ctx context.Context) ([]string, error) {
	return r.listNames(ctx, "banks")
}

func (r *SQLiteRepository) listNames(ctx context.Context, table string) ([]string, error) {
	rows, err := r.q.QueryContext(ctx, `SELECT name FROM `+table+` ORDER BY id`)
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
func (r *SQLiteRepository) GetStipend(ctx context.Context, rank string) (decimal.Decimal, error) {
	var amount string
	err := r.q.QueryRowContext(ctx, `SELECT amount FROM rank_stipends WHERE rank = ?`, rank).Scan(&amount)
	if errors.Is(err, sql.ErrNoRows) {
		return decimal.Zero, nil
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to get stipend of %q: %w", rank, err)
	}
	return parseStoredAmount(amount), nil
}

// UpsertStipend sets the stipend of rank.
func (r *SQLiteRepository) UpsertStipend(ctx context.Context, rank string, amount decimal.Decimal) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO rank_stipends (rank, amount) VALUES (?, ?)
		ON CONFLICT(rank) DO UPDATE SET amount = excluded.amount`,
		rank, amount.StringFixed(2),
	)
	if err != nil {
		return fmt.Errorf("failed to set stipend of %q: %w", rank, err)
	}
	return nil
}

// ListStipends returns every registered stipend ordered by rank name.
func (r *SQLiteRepository) ListStipends(ctx context.Context) ([]Stipend, error) {
	rows, err := r.q.QueryContext(ctx, `SELECT rank, amount FROM rank_stipends ORDER BY rank`)
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

// Close closes the database.
func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

func parseStoredAmount(s string) decimal.Decimal {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero
	}
	return d
}

// Package storage is the SQLite-backed query provider. Monetary amounts
// are stored as integer cents and surfaced as 2-dp decimals.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"

	"gastos/internal/core"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

const expenseColumns = `id, purchased_on, purchased_at, user_id, category, subcategory,
	product, quantity, unit_price_cents, total_cents, note`

// Append stores a validated expense and returns its ID.
func (r *SQLiteRepository) Append(ctx context.Context, e core.Expense) (int64, error) {
	if err := e.Validate(); err != nil {
		return 0, err
	}
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO expenses (purchased_on, purchased_at, user_id, category, subcategory,
			product, quantity, unit_price_cents, total_cents, note)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.Date.String(), e.TimeOfDay, e.UserID, e.Category, e.Subcategory,
		e.Product, e.Quantity, core.AmountToCents(e.UnitPrice), core.AmountToCents(e.Total), e.Note)
	if err != nil {
		return 0, fmt.Errorf("create expense: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}

	slog.InfoContext(ctx, "Expense saved",
		"id", id,
		"product", e.Product,
		"total", core.FormatAmount(e.Total),
		"date", e.Date.String())
	return id, nil
}

// Delete removes an expense by ID.
func (r *SQLiteRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM expenses WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ListByPeriod implements report.ExpenseSource. Bounds are inclusive.
func (r *SQLiteRepository) ListByPeriod(ctx context.Context, p core.Period) ([]core.Expense, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+expenseColumns+`
		FROM expenses
		WHERE purchased_on BETWEEN ? AND ?
		ORDER BY purchased_on, purchased_at, id`,
		p.Start.String(), p.End.String())
	if err != nil {
		return nil, fmt.Errorf("list expenses by period: %w", err)
	}
	defer rows.Close()
	return scanExpenses(rows)
}

// ListByUserAndPeriod filters the period's expenses to one user.
func (r *SQLiteRepository) ListByUserAndPeriod(ctx context.Context, userID int64, p core.Period) ([]core.Expense, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+expenseColumns+`
		FROM expenses
		WHERE user_id = ? AND purchased_on BETWEEN ? AND ?
		ORDER BY purchased_on, purchased_at, id`,
		userID, p.Start.String(), p.End.String())
	if err != nil {
		return nil, fmt.Errorf("list expenses by user and period: %w", err)
	}
	defer rows.Close()
	return scanExpenses(rows)
}

// SumByPeriod totals the period's expenses in one query.
func (r *SQLiteRepository) SumByPeriod(ctx context.Context, p core.Period) (decimal.Decimal, error) {
	var cents int64
	err := r.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(total_cents), 0)
		FROM expenses
		WHERE purchased_on BETWEEN ? AND ?`,
		p.Start.String(), p.End.String()).Scan(&cents)
	if err != nil {
		return decimal.Zero, fmt.Errorf("sum expenses by period: %w", err)
	}
	return core.CentsToAmount(cents), nil
}

// AppendBilletero stores a validated ledger entry and returns its ID.
func (r *SQLiteRepository) AppendBilletero(ctx context.Context, b core.Billetero) (int64, error) {
	if err := b.Validate(); err != nil {
		return 0, err
	}
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO billetero (entry_date, cash_cents, prize_cents)
		VALUES (?, ?, ?)`,
		b.Date.String(), core.AmountToCents(b.Cash), core.AmountToCents(b.Prize))
	if err != nil {
		return 0, fmt.Errorf("create billetero entry: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	return id, nil
}

// ListBilleteroByPeriod implements report.BilleteroSource.
func (r *SQLiteRepository) ListBilleteroByPeriod(ctx context.Context, p core.Period) ([]core.Billetero, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, entry_date, cash_cents, prize_cents
		FROM billetero
		WHERE entry_date BETWEEN ? AND ?
		ORDER BY entry_date, id`,
		p.Start.String(), p.End.String())
	if err != nil {
		return nil, fmt.Errorf("list billetero by period: %w", err)
	}
	defer rows.Close()

	var out []core.Billetero
	for rows.Next() {
		var (
			b          core.Billetero
			date       string
			cashCents  int64
			prizeCents int64
		)
		if err := rows.Scan(&b.ID, &date, &cashCents, &prizeCents); err != nil {
			return nil, fmt.Errorf("scan billetero entry: %w", err)
		}
		b.Date, err = parseDate(date)
		if err != nil {
			return nil, err
		}
		b.Cash = core.CentsToAmount(cashCents)
		b.Prize = core.CentsToAmount(prizeCents)
		out = append(out, b)
	}
	return out, rows.Err()
}

// Categories returns all category names sorted.
func (r *SQLiteRepository) Categories(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT name FROM categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()
	return scanStrings(rows)
}

// SubcategoriesByCategory returns a category's subcategory names sorted.
func (r *SQLiteRepository) SubcategoriesByCategory(ctx context.Context, category string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT s.name
		FROM subcategories s
		JOIN categories c ON c.id = s.category_id
		WHERE c.name = ?
		ORDER BY s.name`, category)
	if err != nil {
		return nil, fmt.Errorf("list subcategories for %s: %w", category, err)
	}
	defer rows.Close()
	return scanStrings(rows)
}

func scanExpenses(rows *sql.Rows) ([]core.Expense, error) {
	var out []core.Expense
	for rows.Next() {
		var (
			e              core.Expense
			date           string
			unitPriceCents int64
			totalCents     int64
		)
		if err := rows.Scan(&e.ID, &date, &e.TimeOfDay, &e.UserID, &e.Category, &e.Subcategory,
			&e.Product, &e.Quantity, &unitPriceCents, &totalCents, &e.Note); err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		var err error
		e.Date, err = parseDate(date)
		if err != nil {
			return nil, err
		}
		e.UnitPrice = core.CentsToAmount(unitPriceCents)
		e.Total = core.CentsToAmount(totalCents)
		out = append(out, e)
	}
	return out, rows.Err()
}

func scanStrings(rows *sql.Rows) ([]string, error) {
	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("scan name: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func parseDate(s string) (core.Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return core.Date{}, fmt.Errorf("parse stored date %q: %w", s, err)
	}
	return core.Date{Time: t}, nil
}

// Package sqlite implements the Store contracts on an embedded SQLite
// database.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"budgetbook/internal/core"
	"budgetbook/internal/store"

	_ "modernc.org/sqlite"
)

type Store struct {
	db *sql.DB
}

// New opens (creating if needed) the database at dbPath and runs
// migrations.
func New(dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Budgets() store.BudgetRepository           { return &budgetRepo{db: s.db} }
func (s *Store) Categories() store.CategoryRepository      { return &categoryRepo{db: s.db} }
func (s *Store) Transactions() store.TransactionRepository { return &transactionRepo{db: s.db} }
func (s *Store) Recurring() store.RecurringRepository      { return &recurringRepo{db: s.db} }

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

type budgetRepo struct{ db *sql.DB }

func (r *budgetRepo) Create(ctx context.Context, b core.Budget) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO budgets (id, name, total_cents, created_at) VALUES (?, ?, ?, ?)`,
		b.ID, b.Name, b.TotalAmount.Cents, b.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("insert budget: %w", err)
	}
	return nil
}

func (r *budgetRepo) Get(ctx context.Context, id string) (core.Budget, error) {
	var b core.Budget
	var createdAt time.Time
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, total_cents, created_at FROM budgets WHERE id = ?`, id).
		Scan(&b.ID, &b.Name, &b.TotalAmount.Cents, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Budget{}, store.ErrNotFound
	}
	if err != nil {
		return core.Budget{}, fmt.Errorf("select budget: %w", err)
	}
	b.CreatedAt = createdAt
	return b, nil
}

func (r *budgetRepo) List(ctx context.Context) ([]core.Budget, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, total_cents, created_at FROM budgets ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("select budgets: %w", err)
	}
	defer rows.Close()

	var out []core.Budget
	for rows.Next() {
		var b core.Budget
		if err := rows.Scan(&b.ID, &b.Name, &b.TotalAmount.Cents, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *budgetRepo) Update(ctx context.Context, b core.Budget) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE budgets SET name = ?, total_cents = ? WHERE id = ?`,
		b.Name, b.TotalAmount.Cents, b.ID)
	if err != nil {
		return fmt.Errorf("update budget: %w", err)
	}
	return checkAffected(res)
}

func (r *budgetRepo) Delete(ctx context.Context, id string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete budget: %w", err)
	}
	defer tx.Rollback()

	for _, q := range []string{
		`DELETE FROM recurring_rules WHERE budget_id = ?`,
		`DELETE FROM transactions WHERE budget_id = ?`,
		`DELETE FROM categories WHERE budget_id = ?`,
	} {
		if _, err := tx.ExecContext(ctx, q, id); err != nil {
			return fmt.Errorf("cascade delete: %w", err)
		}
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM budgets WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete budget: %w", err)
	}
	if err := checkAffected(res); err != nil {
		return err
	}
	return tx.Commit()
}

type categoryRepo struct{ db *sql.DB }

func (r *categoryRepo) Create(ctx context.Context, c core.Category) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO categories (id, budget_id, name, limit_cents) VALUES (?, ?, ?, ?)`,
		c.ID, c.BudgetID, c.Name, c.Limit.Cents)
	if err != nil {
		return fmt.Errorf("insert category: %w", err)
	}
	return nil
}

func (r *categoryRepo) Get(ctx context.Context, id string) (core.Category, error) {
	var c core.Category
	err := r.db.QueryRowContext(ctx,
		`SELECT id, budget_id, name, limit_cents FROM categories WHERE id = ?`, id).
		Scan(&c.ID, &c.BudgetID, &c.Name, &c.Limit.Cents)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Category{}, store.ErrNotFound
	}
	if err != nil {
		return core.Category{}, fmt.Errorf("select category: %w", err)
	}
	return c, nil
}

func (r *categoryRepo) ListByBudget(ctx context.Context, budgetID string) ([]core.Category, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, budget_id, name, limit_cents FROM categories WHERE budget_id = ? ORDER BY name`,
		budgetID)
	if err != nil {
		return nil, fmt.Errorf("select categories: %w", err)
	}
	defer rows.Close()

	var out []core.Category
	for rows.Next() {
		var c core.Category
		if err := rows.Scan(&c.ID, &c.BudgetID, &c.Name, &c.Limit.Cents); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *categoryRepo) Update(ctx context.Context, c core.Category) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE categories SET name = ?, limit_cents = ? WHERE id = ?`,
		c.Name, c.Limit.Cents, c.ID)
	if err != nil {
		return fmt.Errorf("update category: %w", err)
	}
	return checkAffected(res)
}

func (r *categoryRepo) Delete(ctx context.Context, id string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete category: %w", err)
	}
	defer tx.Rollback()

	var n int
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM transactions WHERE category_id = ?`, id).Scan(&n)
	if err != nil {
		return fmt.Errorf("count category transactions: %w", err)
	}
	if n > 0 {
		return store.ErrCategoryInUse
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	if err := checkAffected(res); err != nil {
		return err
	}
	return tx.Commit()
}

type transactionRepo struct{ db *sql.DB }

const txColumns = `id, budget_id, category_id, type, amount_cents, name, occurred_at,
	author_id, author_first_name, author_last_name, author_username`

func (r *transactionRepo) Create(ctx context.Context, t core.Transaction) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO transactions (`+txColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.BudgetID, t.CategoryID, string(t.Type), t.Amount.Cents, t.Name,
		t.OccurredAt.UTC(), t.Author.ID, t.Author.FirstName, t.Author.LastName, t.Author.Username)
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

func scanTransaction(row interface{ Scan(...any) error }) (core.Transaction, error) {
	var t core.Transaction
	var typ string
	err := row.Scan(&t.ID, &t.BudgetID, &t.CategoryID, &typ, &t.Amount.Cents, &t.Name,
		&t.OccurredAt, &t.Author.ID, &t.Author.FirstName, &t.Author.LastName, &t.Author.Username)
	if err != nil {
		return core.Transaction{}, err
	}
	t.Type = core.TxType(typ)
	return t, nil
}

func (r *transactionRepo) Get(ctx context.Context, id string) (core.Transaction, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+txColumns+` FROM transactions WHERE id = ?`, id)
	t, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, store.ErrNotFound
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("select transaction: %w", err)
	}
	return t, nil
}

func (r *transactionRepo) ListByBudget(ctx context.Context, budgetID string) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+txColumns+` FROM transactions WHERE budget_id = ? ORDER BY occurred_at DESC, id DESC`,
		budgetID)
	if err != nil {
		return nil, fmt.Errorf("select transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *transactionRepo) Update(ctx context.Context, t core.Transaction) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE transactions SET category_id = ?, type = ?, amount_cents = ?, name = ?, occurred_at = ?
		 WHERE id = ?`,
		t.CategoryID, string(t.Type), t.Amount.Cents, t.Name, t.OccurredAt.UTC(), t.ID)
	if err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	return checkAffected(res)
}

func (r *transactionRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	return checkAffected(res)
}

type recurringRepo struct{ db *sql.DB }

const ruleColumns = `id, budget_id, category_id, type, amount_cents, name, every,
	start_date, end_date, last_run`

func (r *recurringRepo) Create(ctx context.Context, rule core.RecurringRule) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO recurring_rules (`+ruleColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rule.ID, rule.BudgetID, rule.CategoryID, string(rule.Type), rule.Amount.Cents,
		rule.Name, string(rule.Every), rule.StartDate.UTC(),
		nullTime(rule.EndDate), nullTime(rule.LastRun))
	if err != nil {
		return fmt.Errorf("insert rule: %w", err)
	}
	return nil
}

func scanRule(row interface{ Scan(...any) error }) (core.RecurringRule, error) {
	var rule core.RecurringRule
	var typ, every string
	var endDate, lastRun sql.NullTime
	err := row.Scan(&rule.ID, &rule.BudgetID, &rule.CategoryID, &typ, &rule.Amount.Cents,
		&rule.Name, &every, &rule.StartDate, &endDate, &lastRun)
	if err != nil {
		return core.RecurringRule{}, err
	}
	rule.Type = core.TxType(typ)
	rule.Every = core.Frequency(every)
	if endDate.Valid {
		rule.EndDate = endDate.Time
	}
	if lastRun.Valid {
		rule.LastRun = lastRun.Time
	}
	return rule, nil
}

func (r *recurringRepo) Get(ctx context.Context, id string) (core.RecurringRule, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+ruleColumns+` FROM recurring_rules WHERE id = ?`, id)
	rule, err := scanRule(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.RecurringRule{}, store.ErrNotFound
	}
	if err != nil {
		return core.RecurringRule{}, fmt.Errorf("select rule: %w", err)
	}
	return rule, nil
}

func (r *recurringRepo) ListByBudget(ctx context.Context, budgetID string) ([]core.RecurringRule, error) {
	return r.list(ctx, `SELECT `+ruleColumns+` FROM recurring_rules WHERE budget_id = ?`, budgetID)
}

func (r *recurringRepo) ListAll(ctx context.Context) ([]core.RecurringRule, error) {
	return r.list(ctx, `SELECT `+ruleColumns+` FROM recurring_rules`)
}

func (r *recurringRepo) list(ctx context.Context, query string, args ...any) ([]core.RecurringRule, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select rules: %w", err)
	}
	defer rows.Close()

	var out []core.RecurringRule
	for rows.Next() {
		rule, err := scanRule(rows)
		if err != nil {
			return nil, fmt.Errorf("scan rule: %w", err)
		}
		out = append(out, rule)
	}
	return out, rows.Err()
}

func (r *recurringRepo) Update(ctx context.Context, rule core.RecurringRule) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE recurring_rules SET category_id = ?, type = ?, amount_cents = ?, name = ?,
		 every = ?, start_date = ?, end_date = ?, last_run = ? WHERE id = ?`,
		rule.CategoryID, string(rule.Type), rule.Amount.Cents, rule.Name,
		string(rule.Every), rule.StartDate.UTC(), nullTime(rule.EndDate),
		nullTime(rule.LastRun), rule.ID)
	if err != nil {
		return fmt.Errorf("update rule: %w", err)
	}
	return checkAffected(res)
}

func (r *recurringRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM recurring_rules WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete rule: %w", err)
	}
	return checkAffected(res)
}

func checkAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t.UTC(), Valid: !t.IsZero()}
}

var _ store.Store = (*Store)(nil)

// Package postgres implements the Store contracts on PostgreSQL using
// a pgx connection pool.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"budgetbook/internal/core"
	"budgetbook/internal/store"
)

type Store struct {
	pool *pgxpool.Pool
}

// New connects to url and ensures the schema exists.
func New(ctx context.Context, url string) (*Store, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	s := &Store{pool: pool}
	if err := s.ensureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) ensureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, schema)
	if err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

const schema = `
CREATE TABLE IF NOT EXISTS budgets (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	total_cents BIGINT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);
CREATE TABLE IF NOT EXISTS categories (
	id TEXT PRIMARY KEY,
	budget_id TEXT NOT NULL REFERENCES budgets(id) ON DELETE CASCADE,
	name TEXT NOT NULL,
	limit_cents BIGINT NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS transactions (
	id TEXT PRIMARY KEY,
	budget_id TEXT NOT NULL REFERENCES budgets(id) ON DELETE CASCADE,
	category_id TEXT NOT NULL REFERENCES categories(id),
	type TEXT NOT NULL,
	amount_cents BIGINT NOT NULL,
	name TEXT NOT NULL DEFAULT '',
	occurred_at TIMESTAMPTZ NOT NULL,
	author_id BIGINT NOT NULL,
	author_first_name TEXT NOT NULL DEFAULT '',
	author_last_name TEXT NOT NULL DEFAULT '',
	author_username TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_transactions_budget ON transactions(budget_id);
CREATE INDEX IF NOT EXISTS idx_transactions_category ON transactions(category_id);
CREATE TABLE IF NOT EXISTS recurring_rules (
	id TEXT PRIMARY KEY,
	budget_id TEXT NOT NULL REFERENCES budgets(id) ON DELETE CASCADE,
	category_id TEXT NOT NULL REFERENCES categories(id),
	type TEXT NOT NULL,
	amount_cents BIGINT NOT NULL,
	name TEXT NOT NULL,
	every TEXT NOT NULL,
	start_date TIMESTAMPTZ NOT NULL,
	end_date TIMESTAMPTZ,
	last_run TIMESTAMPTZ
);
`

func (s *Store) Budgets() store.BudgetRepository           { return &budgetRepo{pool: s.pool} }
func (s *Store) Categories() store.CategoryRepository      { return &categoryRepo{pool: s.pool} }
func (s *Store) Transactions() store.TransactionRepository { return &transactionRepo{pool: s.pool} }
func (s *Store) Recurring() store.RecurringRepository      { return &recurringRepo{pool: s.pool} }

func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

type budgetRepo struct{ pool *pgxpool.Pool }

func (r *budgetRepo) Create(ctx context.Context, b core.Budget) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO budgets (id, name, total_cents, created_at) VALUES ($1, $2, $3, $4)`,
		b.ID, b.Name, b.TotalAmount.Cents, b.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("insert budget: %w", err)
	}
	return nil
}

func (r *budgetRepo) Get(ctx context.Context, id string) (core.Budget, error) {
	var b core.Budget
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, total_cents, created_at FROM budgets WHERE id = $1`, id).
		Scan(&b.ID, &b.Name, &b.TotalAmount.Cents, &b.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return core.Budget{}, store.ErrNotFound
	}
	if err != nil {
		return core.Budget{}, fmt.Errorf("select budget: %w", err)
	}
	return b, nil
}

func (r *budgetRepo) List(ctx context.Context) ([]core.Budget, error) {
	rows, err := r.pool.Query(ctx,
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
	tag, err := r.pool.Exec(ctx,
		`UPDATE budgets SET name = $1, total_cents = $2 WHERE id = $3`,
		b.Name, b.TotalAmount.Cents, b.ID)
	if err != nil {
		return fmt.Errorf("update budget: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *budgetRepo) Delete(ctx context.Context, id string) error {
	// Children go with the budget via ON DELETE CASCADE.
	tag, err := r.pool.Exec(ctx, `DELETE FROM budgets WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete budget: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

type categoryRepo struct{ pool *pgxpool.Pool }

func (r *categoryRepo) Create(ctx context.Context, c core.Category) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO categories (id, budget_id, name, limit_cents) VALUES ($1, $2, $3, $4)`,
		c.ID, c.BudgetID, c.Name, c.Limit.Cents)
	if err != nil {
		return fmt.Errorf("insert category: %w", err)
	}
	return nil
}

func (r *categoryRepo) Get(ctx context.Context, id string) (core.Category, error) {
	var c core.Category
	err := r.pool.QueryRow(ctx,
		`SELECT id, budget_id, name, limit_cents FROM categories WHERE id = $1`, id).
		Scan(&c.ID, &c.BudgetID, &c.Name, &c.Limit.Cents)
	if errors.Is(err, pgx.ErrNoRows) {
		return core.Category{}, store.ErrNotFound
	}
	if err != nil {
		return core.Category{}, fmt.Errorf("select category: %w", err)
	}
	return c, nil
}

func (r *categoryRepo) ListByBudget(ctx context.Context, budgetID string) ([]core.Category, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, budget_id, name, limit_cents FROM categories WHERE budget_id = $1 ORDER BY name`,
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
	tag, err := r.pool.Exec(ctx,
		`UPDATE categories SET name = $1, limit_cents = $2 WHERE id = $3`,
		c.Name, c.Limit.Cents, c.ID)
	if err != nil {
		return fmt.Errorf("update category: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *categoryRepo) Delete(ctx context.Context, id string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin delete category: %w", err)
	}
	defer tx.Rollback(ctx)

	var n int
	err = tx.QueryRow(ctx,
		`SELECT COUNT(*) FROM transactions WHERE category_id = $1`, id).Scan(&n)
	if err != nil {
		return fmt.Errorf("count category transactions: %w", err)
	}
	if n > 0 {
		return store.ErrCategoryInUse
	}

	tag, err := tx.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return tx.Commit(ctx)
}

type transactionRepo struct{ pool *pgxpool.Pool }

const txColumns = `id, budget_id, category_id, type, amount_cents, name, occurred_at,
	author_id, author_first_name, author_last_name, author_username`

func (r *transactionRepo) Create(ctx context.Context, t core.Transaction) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO transactions (`+txColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		t.ID, t.BudgetID, t.CategoryID, string(t.Type), t.Amount.Cents, t.Name,
		t.OccurredAt.UTC(), t.Author.ID, t.Author.FirstName, t.Author.LastName, t.Author.Username)
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

func scanTransaction(row pgx.Row) (core.Transaction, error) {
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
	row := r.pool.QueryRow(ctx, `SELECT `+txColumns+` FROM transactions WHERE id = $1`, id)
	t, err := scanTransaction(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return core.Transaction{}, store.ErrNotFound
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("select transaction: %w", err)
	}
	return t, nil
}

func (r *transactionRepo) ListByBudget(ctx context.Context, budgetID string) ([]core.Transaction, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+txColumns+` FROM transactions WHERE budget_id = $1 ORDER BY occurred_at DESC, id DESC`,
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
	tag, err := r.pool.Exec(ctx,
		`UPDATE transactions SET category_id = $1, type = $2, amount_cents = $3, name = $4, occurred_at = $5
		 WHERE id = $6`,
		t.CategoryID, string(t.Type), t.Amount.Cents, t.Name, t.OccurredAt.UTC(), t.ID)
	if err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *transactionRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM transactions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

type recurringRepo struct{ pool *pgxpool.Pool }

const ruleColumns = `id, budget_id, category_id, type, amount_cents, name, every,
	start_date, end_date, last_run`

func (r *recurringRepo) Create(ctx context.Context, rule core.RecurringRule) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO recurring_rules (`+ruleColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		rule.ID, rule.BudgetID, rule.CategoryID, string(rule.Type), rule.Amount.Cents,
		rule.Name, string(rule.Every), rule.StartDate.UTC(),
		nullTime(rule.EndDate), nullTime(rule.LastRun))
	if err != nil {
		return fmt.Errorf("insert rule: %w", err)
	}
	return nil
}

func scanRule(row pgx.Row) (core.RecurringRule, error) {
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
	row := r.pool.QueryRow(ctx, `SELECT `+ruleColumns+` FROM recurring_rules WHERE id = $1`, id)
	rule, err := scanRule(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return core.RecurringRule{}, store.ErrNotFound
	}
	if err != nil {
		return core.RecurringRule{}, fmt.Errorf("select rule: %w", err)
	}
	return rule, nil
}

func (r *recurringRepo) ListByBudget(ctx context.Context, budgetID string) ([]core.RecurringRule, error) {
	return r.list(ctx, `SELECT `+ruleColumns+` FROM recurring_rules WHERE budget_id = $1`, budgetID)
}

func (r *recurringRepo) ListAll(ctx context.Context) ([]core.RecurringRule, error) {
	return r.list(ctx, `SELECT `+ruleColumns+` FROM recurring_rules`)
}

func (r *recurringRepo) list(ctx context.Context, query string, args ...any) ([]core.RecurringRule, error) {
	rows, err := r.pool.Query(ctx, query, args...)
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
	tag, err := r.pool.Exec(ctx,
		`UPDATE recurring_rules SET category_id = $1, type = $2, amount_cents = $3, name = $4,
		 every = $5, start_date = $6, end_date = $7, last_run = $8 WHERE id = $9`,
		rule.CategoryID, string(rule.Type), rule.Amount.Cents, rule.Name,
		string(rule.Every), rule.StartDate.UTC(), nullTime(rule.EndDate),
		nullTime(rule.LastRun), rule.ID)
	if err != nil {
		return fmt.Errorf("update rule: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *recurringRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM recurring_rules WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete rule: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t.UTC(), Valid: !t.IsZero()}
}

var _ store.Store = (*Store)(nil)

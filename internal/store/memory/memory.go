// Package memory provides an in-memory Store implementation used for
// development, demos and tests.
package memory

import (
	"context"
	"sync"
	"time"

	"budgetbook/internal/core"
	"budgetbook/internal/store"
)

// Store keeps everything in maps guarded by a single mutex. Reads hand
// out copies so callers can never mutate shared state.
type Store struct {
	mu sync.RWMutex

	budgets      map[string]core.Budget
	categories   map[string]core.Category
	transactions map[string]core.Transaction
	recurring    map[string]core.RecurringRule

	// latency, when non-zero, delays every operation to make the
	// backend feel like a remote store in demos.
	latency time.Duration
}

// Option configures a Store.
type Option func(*Store)

// WithLatency makes every operation sleep for d before completing.
func WithLatency(d time.Duration) Option {
	return func(s *Store) { s.latency = d }
}

// New returns an empty in-memory store.
func New(opts ...Option) *Store {
	s := &Store{
		budgets:      make(map[string]core.Budget),
		categories:   make(map[string]core.Category),
		transactions: make(map[string]core.Transaction),
		recurring:    make(map[string]core.RecurringRule),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) Budgets() store.BudgetRepository           { return (*budgetRepo)(s) }
func (s *Store) Categories() store.CategoryRepository      { return (*categoryRepo)(s) }
func (s *Store) Transactions() store.TransactionRepository { return (*transactionRepo)(s) }
func (s *Store) Recurring() store.RecurringRepository      { return (*recurringRepo)(s) }

// Close is a no-op for the in-memory backend.
func (s *Store) Close() error { return nil }

// wait simulates backend latency while honoring cancellation.
func (s *Store) wait(ctx context.Context) error {
	if s.latency <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(s.latency)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

type budgetRepo Store

func (r *budgetRepo) Create(ctx context.Context, b core.Budget) error {
	if err := (*Store)(r).wait(ctx); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.budgets[b.ID] = b
	return nil
}

func (r *budgetRepo) Get(ctx context.Context, id string) (core.Budget, error) {
	if err := (*Store)(r).wait(ctx); err != nil {
		return core.Budget{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.budgets[id]
	if !ok {
		return core.Budget{}, store.ErrNotFound
	}
	return b, nil
}

func (r *budgetRepo) List(ctx context.Context) ([]core.Budget, error) {
	if err := (*Store)(r).wait(ctx); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]core.Budget, 0, len(r.budgets))
	for _, b := range r.budgets {
		out = append(out, b)
	}
	return out, nil
}

func (r *budgetRepo) Update(ctx context.Context, b core.Budget) error {
	if err := (*Store)(r).wait(ctx); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.budgets[b.ID]; !ok {
		return store.ErrNotFound
	}
	r.budgets[b.ID] = b
	return nil
}

func (r *budgetRepo) Delete(ctx context.Context, id string) error {
	if err := (*Store)(r).wait(ctx); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.budgets[id]; !ok {
		return store.ErrNotFound
	}
	delete(r.budgets, id)
	for cid, c := range r.categories {
		if c.BudgetID == id {
			delete(r.categories, cid)
		}
	}
	for tid, t := range r.transactions {
		if t.BudgetID == id {
			delete(r.transactions, tid)
		}
	}
	for rid, rule := range r.recurring {
		if rule.BudgetID == id {
			delete(r.recurring, rid)
		}
	}
	return nil
}

type categoryRepo Store

func (r *categoryRepo) Create(ctx context.Context, c core.Category) error {
	if err := (*Store)(r).wait(ctx); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.budgets[c.BudgetID]; !ok {
		return store.ErrNotFound
	}
	r.categories[c.ID] = c
	return nil
}

func (r *categoryRepo) Get(ctx context.Context, id string) (core.Category, error) {
	if err := (*Store)(r).wait(ctx); err != nil {
		return core.Category{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.categories[id]
	if !ok {
		return core.Category{}, store.ErrNotFound
	}
	return c, nil
}

func (r *categoryRepo) ListByBudget(ctx context.Context, budgetID string) ([]core.Category, error) {
	if err := (*Store)(r).wait(ctx); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []core.Category
	for _, c := range r.categories {
		if c.BudgetID == budgetID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *categoryRepo) Update(ctx context.Context, c core.Category) error {
	if err := (*Store)(r).wait(ctx); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.categories[c.ID]; !ok {
		return store.ErrNotFound
	}
	r.categories[c.ID] = c
	return nil
}

func (r *categoryRepo) Delete(ctx context.Context, id string) error {
	if err := (*Store)(r).wait(ctx); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.categories[id]; !ok {
		return store.ErrNotFound
	}
	for _, t := range r.transactions {
		if t.CategoryID == id {
			return store.ErrCategoryInUse
		}
	}
	delete(r.categories, id)
	return nil
}

type transactionRepo Store

func (r *transactionRepo) Create(ctx context.Context, t core.Transaction) error {
	if err := (*Store)(r).wait(ctx); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.budgets[t.BudgetID]; !ok {
		return store.ErrNotFound
	}
	if _, ok := r.categories[t.CategoryID]; !ok {
		return store.ErrNotFound
	}
	r.transactions[t.ID] = t
	return nil
}

func (r *transactionRepo) Get(ctx context.Context, id string) (core.Transaction, error) {
	if err := (*Store)(r).wait(ctx); err != nil {
		return core.Transaction{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.transactions[id]
	if !ok {
		return core.Transaction{}, store.ErrNotFound
	}
	return t, nil
}

func (r *transactionRepo) ListByBudget(ctx context.Context, budgetID string) ([]core.Transaction, error) {
	if err := (*Store)(r).wait(ctx); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []core.Transaction
	for _, t := range r.transactions {
		if t.BudgetID == budgetID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *transactionRepo) Update(ctx context.Context, t core.Transaction) error {
	if err := (*Store)(r).wait(ctx); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.transactions[t.ID]; !ok {
		return store.ErrNotFound
	}
	r.transactions[t.ID] = t
	return nil
}

func (r *transactionRepo) Delete(ctx context.Context, id string) error {
	if err := (*Store)(r).wait(ctx); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.transactions[id]; !ok {
		return store.ErrNotFound
	}
	delete(r.transactions, id)
	return nil
}

type recurringRepo Store

func (r *recurringRepo) Create(ctx context.Context, rule core.RecurringRule) error {
	if err := (*Store)(r).wait(ctx); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.budgets[rule.BudgetID]; !ok {
		return store.ErrNotFound
	}
	r.recurring[rule.ID] = rule
	return nil
}

func (r *recurringRepo) Get(ctx context.Context, id string) (core.RecurringRule, error) {
	if err := (*Store)(r).wait(ctx); err != nil {
		return core.RecurringRule{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	rule, ok := r.recurring[id]
	if !ok {
		return core.RecurringRule{}, store.ErrNotFound
	}
	return rule, nil
}

func (r *recurringRepo) ListByBudget(ctx context.Context, budgetID string) ([]core.RecurringRule, error) {
	if err := (*Store)(r).wait(ctx); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []core.RecurringRule
	for _, rule := range r.recurring {
		if rule.BudgetID == budgetID {
			out = append(out, rule)
		}
	}
	return out, nil
}

func (r *recurringRepo) ListAll(ctx context.Context) ([]core.RecurringRule, error) {
	if err := (*Store)(r).wait(ctx); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]core.RecurringRule, 0, len(r.recurring))
	for _, rule := range r.recurring {
		out = append(out, rule)
	}
	return out, nil
}

func (r *recurringRepo) Update(ctx context.Context, rule core.RecurringRule) error {
	if err := (*Store)(r).wait(ctx); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.recurring[rule.ID]; !ok {
		return store.ErrNotFound
	}
	r.recurring[rule.ID] = rule
	return nil
}

func (r *recurringRepo) Delete(ctx context.Context, id string) error {
	if err := (*Store)(r).wait(ctx); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.recurring[id]; !ok {
		return store.ErrNotFound
	}
	delete(r.recurring, id)
	return nil
}

var (
	_ store.Store = (*Store)(nil)
)

package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"budgetbook/internal/amqp"
	"budgetbook/internal/core"
	"budgetbook/internal/query"
	"budgetbook/internal/store"
)

// TransactionInput carries the fields callers control when recording a
// transaction.
type TransactionInput struct {
	BudgetID   string
	CategoryID string
	Type       core.TxType
	Amount     core.Money
	Name       string
	OccurredAt time.Time
	Author     core.Author
}

// QueryResult is a filtered, paginated page of transactions with its
// day grouping.
type QueryResult struct {
	Transactions []core.Transaction
	Groups       []query.DayGroup
	Page         int
	PageSize     int
}

// TransactionService orchestrates transaction operations.
type TransactionService struct {
	store     store.Store
	publisher ChangePublisher
	now       func() time.Time
}

func NewTransactionService(s store.Store, pub ChangePublisher) *TransactionService {
	return &TransactionService{store: s, publisher: pub, now: time.Now}
}

// Create validates and records a transaction.
func (s *TransactionService) Create(ctx context.Context, in TransactionInput) (core.Transaction, error) {
	t := core.Transaction{
		ID:         uuid.NewString(),
		BudgetID:   in.BudgetID,
		CategoryID: in.CategoryID,
		Type:       in.Type,
		Amount:     in.Amount,
		Name:       in.Name,
		OccurredAt: in.OccurredAt,
		Author:     in.Author,
	}
	if t.OccurredAt.IsZero() {
		t.OccurredAt = s.now().UTC()
	}
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}
	if err := s.checkCategory(ctx, t.BudgetID, t.CategoryID); err != nil {
		return core.Transaction{}, err
	}
	if err := s.store.Transactions().Create(ctx, t); err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}

	publishChange(ctx, s.publisher, amqp.EntityTransaction, amqp.OpCreated, t.ID, t.BudgetID)
	return t, nil
}

// Get returns a single transaction.
func (s *TransactionService) Get(ctx context.Context, id string) (core.Transaction, error) {
	return s.store.Transactions().Get(ctx, id)
}

// Update replaces a transaction's mutable fields. Last writer wins.
func (s *TransactionService) Update(ctx context.Context, id string, in TransactionInput) (core.Transaction, error) {
	current, err := s.store.Transactions().Get(ctx, id)
	if err != nil {
		return core.Transaction{}, err
	}

	t := current
	t.CategoryID = in.CategoryID
	t.Type = in.Type
	t.Amount = in.Amount
	t.Name = in.Name
	if !in.OccurredAt.IsZero() {
		t.OccurredAt = in.OccurredAt
	}
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}
	if err := s.checkCategory(ctx, t.BudgetID, t.CategoryID); err != nil {
		return core.Transaction{}, err
	}
	if err := s.store.Transactions().Update(ctx, t); err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction: %w", err)
	}

	publishChange(ctx, s.publisher, amqp.EntityTransaction, amqp.OpUpdated, t.ID, t.BudgetID)
	return t, nil
}

// Delete removes a transaction.
func (s *TransactionService) Delete(ctx context.Context, id string) error {
	current, err := s.store.Transactions().Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.Transactions().Delete(ctx, id); err != nil {
		return err
	}
	publishChange(ctx, s.publisher, amqp.EntityTransaction, amqp.OpDeleted, id, current.BudgetID)
	return nil
}

// Query returns a filtered page of a budget's transactions, newest
// first, grouped by day.
func (s *TransactionService) Query(ctx context.Context, budgetID string, f query.Filter, page, pageSize int) (QueryResult, error) {
	if _, err := s.store.Budgets().Get(ctx, budgetID); err != nil {
		return QueryResult{}, err
	}
	txs, err := s.store.Transactions().ListByBudget(ctx, budgetID)
	if err != nil {
		return QueryResult{}, fmt.Errorf("list transactions: %w", err)
	}

	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = query.DefaultPageSize
	}
	if pageSize > query.MaxPageSize {
		pageSize = query.MaxPageSize
	}

	now := s.now()
	pageTxs := query.Apply(txs, f, page, pageSize, now)
	return QueryResult{
		Transactions: pageTxs,
		Groups:       query.GroupByDay(pageTxs, now),
		Page:         page,
		PageSize:     pageSize,
	}, nil
}

// List returns every transaction of a budget, newest first.
func (s *TransactionService) List(ctx context.Context, budgetID string) ([]core.Transaction, error) {
	if _, err := s.store.Budgets().Get(ctx, budgetID); err != nil {
		return nil, err
	}
	txs, err := s.store.Transactions().ListByBudget(ctx, budgetID)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	query.SortNewestFirst(txs)
	return txs, nil
}

// Authors returns the distinct authors seen in a budget's transactions.
func (s *TransactionService) Authors(ctx context.Context, budgetID string) ([]core.Author, error) {
	if _, err := s.store.Budgets().Get(ctx, budgetID); err != nil {
		return nil, err
	}
	txs, err := s.store.Transactions().ListByBudget(ctx, budgetID)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return query.Authors(txs), nil
}

// checkCategory verifies the category exists and belongs to the budget.
func (s *TransactionService) checkCategory(ctx context.Context, budgetID, categoryID string) error {
	c, err := s.store.Categories().Get(ctx, categoryID)
	if err != nil {
		return err
	}
	if c.BudgetID != budgetID {
		return store.ErrNotFound
	}
	return nil
}

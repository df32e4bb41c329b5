// Package store defines the persistence contracts shared by all backends.
package store

import (
	"context"
	"errors"

	"budgetbook/internal/core"
)

var (
	// ErrNotFound is returned when the requested entity does not exist.
	ErrNotFound = errors.New("store: not found")
	// ErrCategoryInUse is returned when deleting a category that still
	// has transactions referencing it.
	ErrCategoryInUse = errors.New("store: category has transactions")
)

// BudgetRepository persists budgets.
type BudgetRepository interface {
	Create(ctx context.Context, b core.Budget) error
	Get(ctx context.Context, id string) (core.Budget, error)
	List(ctx context.Context) ([]core.Budget, error)
	Update(ctx context.Context, b core.Budget) error
	// Delete removes the budget together with its categories,
	// transactions and recurring rules.
	Delete(ctx context.Context, id string) error
}

// CategoryRepository persists categories.
type CategoryRepository interface {
	Create(ctx context.Context, c core.Category) error
	Get(ctx context.Context, id string) (core.Category, error)
	ListByBudget(ctx context.Context, budgetID string) ([]core.Category, error)
	Update(ctx context.Context, c core.Category) error
	// Delete fails with ErrCategoryInUse while transactions still
	// reference the category.
	Delete(ctx context.Context, id string) error
}

// TransactionRepository persists transactions.
type TransactionRepository interface {
	Create(ctx context.Context, t core.Transaction) error
	Get(ctx context.Context, id string) (core.Transaction, error)
	ListByBudget(ctx context.Context, budgetID string) ([]core.Transaction, error)
	Update(ctx context.Context, t core.Transaction) error
	Delete(ctx context.Context, id string) error
}

// RecurringRepository persists recurring transaction rules.
type RecurringRepository interface {
	Create(ctx context.Context, r core.RecurringRule) error
	Get(ctx context.Context, id string) (core.RecurringRule, error)
	ListByBudget(ctx context.Context, budgetID string) ([]core.RecurringRule, error)
	// ListAll returns every rule across budgets, used by the
	// recurring worker.
	ListAll(ctx context.Context) ([]core.RecurringRule, error)
	Update(ctx context.Context, r core.RecurringRule) error
	Delete(ctx context.Context, id string) error
}

// Store bundles the repositories a backend provides.
type Store interface {
	Budgets() BudgetRepository
	Categories() CategoryRepository
	Transactions() TransactionRepository
	Recurring() RecurringRepository
	Close() error
}

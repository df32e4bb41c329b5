package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"budgetbook/internal/amqp"
	"budgetbook/internal/core"
	"budgetbook/internal/store"
)

// BudgetOverview is a budget with everything derived from it.
type BudgetOverview struct {
	Budget        core.Budget
	Summary       core.BudgetSummary
	Categories    []CategoryOverview
	OverAllocated bool
}

// CategoryOverview is a category with its derived summary.
type CategoryOverview struct {
	Category core.Category
	Summary  core.CategorySummary
}

// BudgetService orchestrates budget operations.
type BudgetService struct {
	store     store.Store
	publisher ChangePublisher
}

func NewBudgetService(s store.Store, pub ChangePublisher) *BudgetService {
	return &BudgetService{store: s, publisher: pub}
}

// Create validates and stores a new budget.
func (s *BudgetService) Create(ctx context.Context, name string, total core.Money) (core.Budget, error) {
	b := core.Budget{
		ID:          uuid.NewString(),
		Name:        name,
		TotalAmount: total,
		CreatedAt:   time.Now().UTC(),
	}
	if err := b.Validate(); err != nil {
		return core.Budget{}, err
	}
	if err := s.store.Budgets().Create(ctx, b); err != nil {
		return core.Budget{}, fmt.Errorf("create budget: %w", err)
	}

	publishChange(ctx, s.publisher, amqp.EntityBudget, amqp.OpCreated, b.ID, b.ID)
	return b, nil
}

// Get returns a single budget without derived data.
func (s *BudgetService) Get(ctx context.Context, id string) (core.Budget, error) {
	return s.store.Budgets().Get(ctx, id)
}

// List returns all budgets.
func (s *BudgetService) List(ctx context.Context) ([]core.Budget, error) {
	return s.store.Budgets().List(ctx)
}

// Overview returns a budget with its summary and per-category
// summaries, all recomputed from current transactions.
func (s *BudgetService) Overview(ctx context.Context, id string) (BudgetOverview, error) {
	b, err := s.store.Budgets().Get(ctx, id)
	if err != nil {
		return BudgetOverview{}, err
	}
	categories, err := s.store.Categories().ListByBudget(ctx, id)
	if err != nil {
		return BudgetOverview{}, fmt.Errorf("list categories: %w", err)
	}
	txs, err := s.store.Transactions().ListByBudget(ctx, id)
	if err != nil {
		return BudgetOverview{}, fmt.Errorf("list transactions: %w", err)
	}

	overview := BudgetOverview{
		Budget:        b,
		Summary:       core.SummarizeBudget(b, txs),
		OverAllocated: core.OverAllocated(b, categories),
	}
	for _, c := range categories {
		overview.Categories = append(overview.Categories, CategoryOverview{
			Category: c,
			Summary:  core.SummarizeCategory(c, txs),
		})
	}
	return overview, nil
}

// Update renames a budget or changes its total. Last writer wins.
func (s *BudgetService) Update(ctx context.Context, b core.Budget) (core.Budget, error) {
	if err := b.Validate(); err != nil {
		return core.Budget{}, err
	}
	current, err := s.store.Budgets().Get(ctx, b.ID)
	if err != nil {
		return core.Budget{}, err
	}
	b.CreatedAt = current.CreatedAt
	if err := s.store.Budgets().Update(ctx, b); err != nil {
		return core.Budget{}, fmt.Errorf("update budget: %w", err)
	}

	s.warnIfOverAllocated(ctx, b)
	publishChange(ctx, s.publisher, amqp.EntityBudget, amqp.OpUpdated, b.ID, b.ID)
	return b, nil
}

// Delete removes a budget and everything under it.
func (s *BudgetService) Delete(ctx context.Context, id string) error {
	if err := s.store.Budgets().Delete(ctx, id); err != nil {
		return err
	}
	publishChange(ctx, s.publisher, amqp.EntityBudget, amqp.OpDeleted, id, id)
	return nil
}

func (s *BudgetService) warnIfOverAllocated(ctx context.Context, b core.Budget) {
	categories, err := s.store.Categories().ListByBudget(ctx, b.ID)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to check allocation", "budget_id", b.ID, "error", err)
		return
	}
	if core.OverAllocated(b, categories) {
		slog.WarnContext(ctx, "Category limits exceed budget total",
			"budget_id", b.ID,
			"total_cents", b.TotalAmount.Cents,
			"allocated_cents", core.AllocatedLimit(categories).Cents)
	}
}

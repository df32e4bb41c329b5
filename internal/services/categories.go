package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"budgetbook/internal/amqp"
	"budgetbook/internal/core"
	"budgetbook/internal/store"
)

// CategoryService orchestrates category operations.
type CategoryService struct {
	store     store.Store
	publisher ChangePublisher
}

func NewCategoryService(s store.Store, pub ChangePublisher) *CategoryService {
	return &CategoryService{store: s, publisher: pub}
}

// Create adds a category to a budget. Over-allocating the budget total
// is allowed but logged.
func (s *CategoryService) Create(ctx context.Context, budgetID, name string, limit core.Money) (core.Category, error) {
	c := core.Category{
		ID:       uuid.NewString(),
		BudgetID: budgetID,
		Name:     name,
		Limit:    limit,
	}
	if err := c.Validate(); err != nil {
		return core.Category{}, err
	}
	if _, err := s.store.Budgets().Get(ctx, budgetID); err != nil {
		return core.Category{}, err
	}
	if err := s.store.Categories().Create(ctx, c); err != nil {
		return core.Category{}, fmt.Errorf("create category: %w", err)
	}

	s.warnIfOverAllocated(ctx, budgetID)
	publishChange(ctx, s.publisher, amqp.EntityCategory, amqp.OpCreated, c.ID, budgetID)
	return c, nil
}

// Get returns a single category.
func (s *CategoryService) Get(ctx context.Context, id string) (core.Category, error) {
	return s.store.Categories().Get(ctx, id)
}

// List returns a budget's categories with recomputed summaries.
func (s *CategoryService) List(ctx context.Context, budgetID string) ([]CategoryOverview, error) {
	if _, err := s.store.Budgets().Get(ctx, budgetID); err != nil {
		return nil, err
	}
	categories, err := s.store.Categories().ListByBudget(ctx, budgetID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	txs, err := s.store.Transactions().ListByBudget(ctx, budgetID)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}

	out := make([]CategoryOverview, 0, len(categories))
	for _, c := range categories {
		out = append(out, CategoryOverview{
			Category: c,
			Summary:  core.SummarizeCategory(c, txs),
		})
	}
	return out, nil
}

// Update changes a category's name or limit. Last writer wins.
func (s *CategoryService) Update(ctx context.Context, c core.Category) (core.Category, error) {
	current, err := s.store.Categories().Get(ctx, c.ID)
	if err != nil {
		return core.Category{}, err
	}
	c.BudgetID = current.BudgetID
	if err := c.Validate(); err != nil {
		return core.Category{}, err
	}
	if err := s.store.Categories().Update(ctx, c); err != nil {
		return core.Category{}, fmt.Errorf("update category: %w", err)
	}

	s.warnIfOverAllocated(ctx, c.BudgetID)
	publishChange(ctx, s.publisher, amqp.EntityCategory, amqp.OpUpdated, c.ID, c.BudgetID)
	return c, nil
}

// Delete removes a category. It fails with store.ErrCategoryInUse
// while transactions still reference it.
func (s *CategoryService) Delete(ctx context.Context, id string) error {
	current, err := s.store.Categories().Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.Categories().Delete(ctx, id); err != nil {
		return err
	}
	publishChange(ctx, s.publisher, amqp.EntityCategory, amqp.OpDeleted, id, current.BudgetID)
	return nil
}

func (s *CategoryService) warnIfOverAllocated(ctx context.Context, budgetID string) {
	b, err := s.store.Budgets().Get(ctx, budgetID)
	if err != nil {
		return
	}
	categories, err := s.store.Categories().ListByBudget(ctx, budgetID)
	if err != nil {
		return
	}
	if core.OverAllocated(b, categories) {
		slog.WarnContext(ctx, "Category limits exceed budget total",
			"budget_id", budgetID,
			"total_cents", b.TotalAmount.Cents,
			"allocated_cents", core.AllocatedLimit(categories).Cents)
	}
}

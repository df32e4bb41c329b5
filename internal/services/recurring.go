package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"budgetbook/internal/core"
	"budgetbook/internal/store"
)

// RecurringService manages recurring transaction rules.
type RecurringService struct {
	store store.Store
}

func NewRecurringService(s store.Store) *RecurringService {
	return &RecurringService{store: s}
}

// Create validates and stores a recurring rule.
func (s *RecurringService) Create(ctx context.Context, r core.RecurringRule) (core.RecurringRule, error) {
	r.ID = uuid.NewString()
	r.LastRun = time.Time{}
	if err := r.Validate(); err != nil {
		return core.RecurringRule{}, err
	}
	c, err := s.store.Categories().Get(ctx, r.CategoryID)
	if err != nil {
		return core.RecurringRule{}, err
	}
	if c.BudgetID != r.BudgetID {
		return core.RecurringRule{}, store.ErrNotFound
	}
	if err := s.store.Recurring().Create(ctx, r); err != nil {
		return core.RecurringRule{}, fmt.Errorf("create rule: %w", err)
	}
	return r, nil
}

// List returns a budget's recurring rules.
func (s *RecurringService) List(ctx context.Context, budgetID string) ([]core.RecurringRule, error) {
	if _, err := s.store.Budgets().Get(ctx, budgetID); err != nil {
		return nil, err
	}
	return s.store.Recurring().ListByBudget(ctx, budgetID)
}

// Delete removes a recurring rule.
func (s *RecurringService) Delete(ctx context.Context, id string) error {
	return s.store.Recurring().Delete(ctx, id)
}

// RecurringProcessor materializes due recurring rules into real
// transactions.
type RecurringProcessor struct {
	store        store.Store
	transactions *TransactionService
}

// NewRecurringProcessor creates a processor writing through the
// transaction service so change events still fire.
func NewRecurringProcessor(s store.Store, transactions *TransactionService) *RecurringProcessor {
	return &RecurringProcessor{store: s, transactions: transactions}
}

// ProcessDue checks every rule and creates transactions for the due
// ones. Returns how many were materialized.
func (p *RecurringProcessor) ProcessDue(ctx context.Context, now time.Time) (int, error) {
	if p.store == nil || p.transactions == nil {
		return 0, fmt.Errorf("processor not properly initialized")
	}

	rules, err := p.store.Recurring().ListAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("list rules: %w", err)
	}

	slog.InfoContext(ctx, "Processing recurring rules",
		"total", len(rules),
		"processing_date", now.Format("2006-01-02"))

	processed := 0
	for _, rule := range rules {
		if now.Before(rule.StartDate) {
			continue
		}
		if !rule.EndDate.IsZero() && now.After(rule.EndDate) {
			continue
		}

		checker, err := GetDuenessChecker(rule.Every)
		if err != nil {
			slog.ErrorContext(ctx, "Skipping rule with unknown frequency",
				"rule_id", rule.ID, "frequency", rule.Every)
			continue
		}
		if !checker.IsDue(rule.LastRun, now, rule.StartDate) {
			continue
		}

		_, err = p.transactions.Create(ctx, TransactionInput{
			BudgetID:   rule.BudgetID,
			CategoryID: rule.CategoryID,
			Type:       rule.Type,
			Amount:     rule.Amount,
			Name:       rule.Name,
			OccurredAt: now,
			Author:     core.SystemAuthor,
		})
		if err != nil {
			slog.ErrorContext(ctx, "Failed to materialize recurring rule",
				"rule_id", rule.ID,
				"name", rule.Name,
				"error", err)
			continue
		}

		rule.LastRun = now
		if err := p.store.Recurring().Update(ctx, rule); err != nil {
			// The transaction exists; the rule may fire again next run.
			slog.ErrorContext(ctx, "Failed to update rule last run",
				"rule_id", rule.ID, "error", err)
		}

		processed++
		slog.InfoContext(ctx, "Materialized recurring rule",
			"rule_id", rule.ID,
			"name", rule.Name,
			"amount_cents", rule.Amount.Cents,
			"frequency", rule.Every)
	}

	slog.InfoContext(ctx, "Recurring rule processing complete",
		"processed", processed,
		"total_checked", len(rules))

	return processed, nil
}

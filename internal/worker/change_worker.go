// Package worker consumes change events and runs follow-up work that
// must not block API writes.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"budgetbook/internal/amqp"
	"budgetbook/internal/core"
	"budgetbook/internal/services"
	"budgetbook/internal/store"
)

// Exporter mirrors transactions to an external sheet.
type Exporter interface {
	Export(ctx context.Context, budget core.Budget, txs []core.Transaction) (int, error)
}

// ChangeWorker reacts to change events: it recomputes the affected
// budget's overview, surfaces over-allocation, and mirrors new
// transactions to the exporter when one is configured.
type ChangeWorker struct {
	budgets      *services.BudgetService
	transactions *services.TransactionService
	exporter     Exporter
}

func NewChangeWorker(budgets *services.BudgetService, transactions *services.TransactionService, exporter Exporter) *ChangeWorker {
	return &ChangeWorker{
		budgets:      budgets,
		transactions: transactions,
		exporter:     exporter,
	}
}

// HandleChange processes one change event. Returned errors cause the
// message to be requeued.
func (w *ChangeWorker) HandleChange(ctx context.Context, msg *amqp.ChangeMessage) error {
	slog.InfoContext(ctx, "Processing change event",
		"entity", msg.Entity,
		"op", msg.Op,
		"id", msg.ID,
		"budget_id", msg.BudgetID)

	if msg.Entity == amqp.EntityBudget && msg.Op == amqp.OpDeleted {
		return nil
	}

	overview, err := w.budgets.Overview(ctx, msg.BudgetID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// The budget disappeared between the event and now.
			slog.WarnContext(ctx, "Budget gone, dropping change event",
				"budget_id", msg.BudgetID)
			return nil
		}
		return fmt.Errorf("recompute overview: %w", err)
	}

	if overview.OverAllocated {
		slog.WarnContext(ctx, "Category limits exceed budget total",
			"budget_id", msg.BudgetID,
			"budget_total", overview.Budget.TotalAmount.String(),
			"allocated", allocatedLimit(overview).String())
	}
	if overview.Summary.Balance.Cents < 0 {
		slog.WarnContext(ctx, "Budget balance is negative",
			"budget_id", msg.BudgetID,
			"balance", overview.Summary.Balance.String())
	}

	if w.exporter != nil && msg.Entity == amqp.EntityTransaction && msg.Op == amqp.OpCreated {
		if err := w.exportTransaction(ctx, overview.Budget, msg.ID); err != nil {
			return fmt.Errorf("export transaction: %w", err)
		}
	}
	return nil
}

func (w *ChangeWorker) exportTransaction(ctx context.Context, budget core.Budget, txID string) error {
	tx, err := w.transactions.Get(ctx, txID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			slog.WarnContext(ctx, "Transaction gone, skipping export", "id", txID)
			return nil
		}
		return err
	}
	_, err = w.exporter.Export(ctx, budget, []core.Transaction{tx})
	return err
}

func allocatedLimit(o services.BudgetOverview) core.Money {
	categories := make([]core.Category, 0, len(o.Categories))
	for _, c := range o.Categories {
		categories = append(categories, c.Category)
	}
	return core.AllocatedLimit(categories)
}

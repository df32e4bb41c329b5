package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"budgetbook/internal/core"
	"budgetbook/internal/store"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestBudgetRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	b := core.Budget{
		ID:          "b1",
		Name:        "June",
		TotalAmount: core.Money{Cents: 100_000},
		CreatedAt:   time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
	}
	if err := s.Budgets().Create(ctx, b); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := s.Budgets().Get(ctx, "b1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Name != b.Name || got.TotalAmount != b.TotalAmount {
		t.Fatalf("round trip mismatch: %+v", got)
	}

	got.Name = "July"
	if err := s.Budgets().Update(ctx, got); err != nil {
		t.Fatalf("update: %v", err)
	}
	again, err := s.Budgets().Get(ctx, "b1")
	if err != nil {
		t.Fatalf("get after update: %v", err)
	}
	if again.Name != "July" {
		t.Fatalf("update lost: %q", again.Name)
	}
}

func TestUpdateMissing(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	err := s.Budgets().Update(ctx, core.Budget{ID: "ghost", Name: "x"})
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCascadeDelete(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	b := core.Budget{ID: "b1", Name: "June", TotalAmount: core.Money{Cents: 100_000}, CreatedAt: time.Now().UTC()}
	if err := s.Budgets().Create(ctx, b); err != nil {
		t.Fatalf("create budget: %v", err)
	}
	c := core.Category{ID: "c1", BudgetID: "b1", Name: "Groceries", Limit: core.Money{Cents: 20_000}}
	if err := s.Categories().Create(ctx, c); err != nil {
		t.Fatalf("create category: %v", err)
	}
	tx := core.Transaction{
		ID: "t1", BudgetID: "b1", CategoryID: "c1", Type: core.Expense,
		Amount: core.Money{Cents: 500}, OccurredAt: time.Now().UTC(),
		Author: core.Author{ID: 1, FirstName: "Ann"},
	}
	if err := s.Transactions().Create(ctx, tx); err != nil {
		t.Fatalf("create transaction: %v", err)
	}

	if err := s.Budgets().Delete(ctx, "b1"); err != nil {
		t.Fatalf("delete budget: %v", err)
	}
	if _, err := s.Categories().Get(ctx, "c1"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("category survived cascade: %v", err)
	}
	if _, err := s.Transactions().Get(ctx, "t1"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("transaction survived cascade: %v", err)
	}
}

func TestCategoryDeleteGuard(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	b := core.Budget{ID: "b1", Name: "June", TotalAmount: core.Money{Cents: 100_000}, CreatedAt: time.Now().UTC()}
	if err := s.Budgets().Create(ctx, b); err != nil {
		t.Fatalf("create budget: %v", err)
	}
	c := core.Category{ID: "c1", BudgetID: "b1", Name: "Groceries", Limit: core.Money{Cents: 20_000}}
	if err := s.Categories().Create(ctx, c); err != nil {
		t.Fatalf("create category: %v", err)
	}
	tx := core.Transaction{
		ID: "t1", BudgetID: "b1", CategoryID: "c1", Type: core.Expense,
		Amount: core.Money{Cents: 500}, OccurredAt: time.Now().UTC(),
		Author: core.Author{ID: 1, FirstName: "Ann"},
	}
	if err := s.Transactions().Create(ctx, tx); err != nil {
		t.Fatalf("create transaction: %v", err)
	}

	if err := s.Categories().Delete(ctx, "c1"); !errors.Is(err, store.ErrCategoryInUse) {
		t.Fatalf("expected ErrCategoryInUse, got %v", err)
	}
	if err := s.Transactions().Delete(ctx, "t1"); err != nil {
		t.Fatalf("delete transaction: %v", err)
	}
	if err := s.Categories().Delete(ctx, "c1"); err != nil {
		t.Fatalf("delete category: %v", err)
	}
}

func TestRecurringNullableDates(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	b := core.Budget{ID: "b1", Name: "June", TotalAmount: core.Money{Cents: 100_000}, CreatedAt: time.Now().UTC()}
	if err := s.Budgets().Create(ctx, b); err != nil {
		t.Fatalf("create budget: %v", err)
	}
	c := core.Category{ID: "c1", BudgetID: "b1", Name: "Rent", Limit: core.Money{Cents: 90_000}}
	if err := s.Categories().Create(ctx, c); err != nil {
		t.Fatalf("create category: %v", err)
	}
	rule := core.RecurringRule{
		ID: "r1", BudgetID: "b1", CategoryID: "c1", Type: core.Expense,
		Amount: core.Money{Cents: 85_000}, Name: "Rent", Every: core.Monthly,
		StartDate: time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC),
	}
	if err := s.Recurring().Create(ctx, rule); err != nil {
		t.Fatalf("create rule: %v", err)
	}

	got, err := s.Recurring().Get(ctx, "r1")
	if err != nil {
		t.Fatalf("get rule: %v", err)
	}
	if !got.EndDate.IsZero() || !got.LastRun.IsZero() {
		t.Fatalf("expected zero end date and last run, got %v %v", got.EndDate, got.LastRun)
	}

	got.LastRun = time.Date(2025, 2, 28, 0, 0, 0, 0, time.UTC)
	if err := s.Recurring().Update(ctx, got); err != nil {
		t.Fatalf("update rule: %v", err)
	}
	again, err := s.Recurring().Get(ctx, "r1")
	if err != nil {
		t.Fatalf("get rule: %v", err)
	}
	if again.LastRun.IsZero() {
		t.Fatal("last run not persisted")
	}
}

package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"budgetbook/internal/core"
	"budgetbook/internal/store"
)

func newTestStore(t *testing.T) (*Store, core.Budget, core.Category) {
	t.Helper()
	s := New()
	ctx := context.Background()
	b := core.Budget{ID: "b1", Name: "June", TotalAmount: core.Money{Cents: 100_000}, CreatedAt: time.Now()}
	if err := s.Budgets().Create(ctx, b); err != nil {
		t.Fatalf("create budget: %v", err)
	}
	c := core.Category{ID: "c1", BudgetID: "b1", Name: "Groceries", Limit: core.Money{Cents: 20_000}}
	if err := s.Categories().Create(ctx, c); err != nil {
		t.Fatalf("create category: %v", err)
	}
	return s, b, c
}

func TestGetMissing(t *testing.T) {
	s := New()
	ctx := context.Background()
	if _, err := s.Budgets().Get(ctx, "nope"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := s.Transactions().Get(ctx, "nope"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCascadeDelete(t *testing.T) {
	s, b, c := newTestStore(t)
	ctx := context.Background()
	tx := core.Transaction{
		ID: "t1", BudgetID: b.ID, CategoryID: c.ID, Type: core.Expense,
		Amount: core.Money{Cents: 500}, OccurredAt: time.Now(),
		Author: core.Author{ID: 1, FirstName: "Ann"},
	}
	if err := s.Transactions().Create(ctx, tx); err != nil {
		t.Fatalf("create transaction: %v", err)
	}
	rule := core.RecurringRule{
		ID: "r1", BudgetID: b.ID, CategoryID: c.ID, Type: core.Expense,
		Amount: core.Money{Cents: 999}, Name: "Rent", Every: core.Monthly,
		StartDate: time.Now(),
	}
	if err := s.Recurring().Create(ctx, rule); err != nil {
		t.Fatalf("create rule: %v", err)
	}

	if err := s.Budgets().Delete(ctx, b.ID); err != nil {
		t.Fatalf("delete budget: %v", err)
	}
	if _, err := s.Categories().Get(ctx, c.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("category survived cascade: %v", err)
	}
	if _, err := s.Transactions().Get(ctx, tx.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("transaction survived cascade: %v", err)
	}
	if _, err := s.Recurring().Get(ctx, rule.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("rule survived cascade: %v", err)
	}
}

func TestCategoryDeleteGuard(t *testing.T) {
	s, b, c := newTestStore(t)
	ctx := context.Background()
	tx := core.Transaction{
		ID: "t1", BudgetID: b.ID, CategoryID: c.ID, Type: core.Expense,
		Amount: core.Money{Cents: 500}, OccurredAt: time.Now(),
		Author: core.Author{ID: 1, FirstName: "Ann"},
	}
	if err := s.Transactions().Create(ctx, tx); err != nil {
		t.Fatalf("create transaction: %v", err)
	}

	if err := s.Categories().Delete(ctx, c.ID); !errors.Is(err, store.ErrCategoryInUse) {
		t.Fatalf("expected ErrCategoryInUse, got %v", err)
	}
	if err := s.Transactions().Delete(ctx, tx.ID); err != nil {
		t.Fatalf("delete transaction: %v", err)
	}
	if err := s.Categories().Delete(ctx, c.ID); err != nil {
		t.Fatalf("delete category after freeing it: %v", err)
	}
}

func TestOrphanTransactionRejected(t *testing.T) {
	s, b, _ := newTestStore(t)
	ctx := context.Background()
	tx := core.Transaction{
		ID: "t1", BudgetID: b.ID, CategoryID: "ghost", Type: core.Expense,
		Amount: core.Money{Cents: 500}, OccurredAt: time.Now(),
		Author: core.Author{ID: 1, FirstName: "Ann"},
	}
	if err := s.Transactions().Create(ctx, tx); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing category, got %v", err)
	}
}

func TestReadsAreCopies(t *testing.T) {
	s, b, _ := newTestStore(t)
	ctx := context.Background()

	got, err := s.Budgets().Get(ctx, b.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	got.Name = "mutated"

	again, err := s.Budgets().Get(ctx, b.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if again.Name != "June" {
		t.Fatalf("store state leaked through a read: %q", again.Name)
	}
}

func TestContextCancellation(t *testing.T) {
	s := New(WithLatency(time.Second))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := s.Budgets().Create(ctx, core.Budget{ID: "b1"}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestSeed(t *testing.T) {
	s := New()
	if err := Seed(context.Background(), s, time.Now()); err != nil {
		t.Fatalf("seed: %v", err)
	}
	budgets, err := s.Budgets().List(context.Background())
	if err != nil {
		t.Fatalf("list budgets: %v", err)
	}
	if len(budgets) != 1 {
		t.Fatalf("expected 1 seeded budget, got %d", len(budgets))
	}
	txs, err := s.Transactions().ListByBudget(context.Background(), budgets[0].ID)
	if err != nil {
		t.Fatalf("list transactions: %v", err)
	}
	if len(txs) == 0 {
		t.Fatal("expected seeded transactions")
	}
}

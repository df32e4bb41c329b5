package core

import (
	"testing"
	"time"
)

func tx(budgetID, categoryID string, typ TxType, cents int64, when time.Time) Transaction {
	return Transaction{
		ID:         budgetID + categoryID + when.String(),
		BudgetID:   budgetID,
		CategoryID: categoryID,
		Type:       typ,
		Amount:     Money{Cents: cents},
		OccurredAt: when,
		Author:     Author{ID: 1, FirstName: "Test"},
	}
}

func TestSummarizeBudget(t *testing.T) {
	now := time.Now()
	b := Budget{ID: "b1", Name: "Test", TotalAmount: Money{Cents: 100000}}
	txs := []Transaction{
		tx("b1", "c1", Expense, 30000, now),
		tx("b1", "c1", Income, 5000, now),
		tx("b1", "c2", Expense, 2000, now),
		tx("other", "c9", Expense, 99999, now), // different budget, ignored
	}

	got := SummarizeBudget(b, txs)
	if got.TotalExpense.Cents != 32000 {
		t.Fatalf("TotalExpense = %d, want 32000", got.TotalExpense.Cents)
	}
	if got.TotalIncome.Cents != 5000 {
		t.Fatalf("TotalIncome = %d, want 5000", got.TotalIncome.Cents)
	}
	if got.Balance.Cents != 100000-32000+5000 {
		t.Fatalf("Balance = %d, want %d", got.Balance.Cents, 100000-32000+5000)
	}
}

func TestSummarizeBudgetScenario(t *testing.T) {
	// Budget of 1000 with a single 300 expense leaves a 700 balance.
	b := Budget{ID: "b1", Name: "Test", TotalAmount: Money{Cents: 100000}}
	txs := []Transaction{tx("b1", "c1", Expense, 30000, time.Now())}

	got := SummarizeBudget(b, txs)
	want := BudgetSummary{
		TotalExpense: Money{Cents: 30000},
		TotalIncome:  Money{Cents: 0},
		Balance:      Money{Cents: 70000},
	}
	if got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestSummarizeBudgetEmpty(t *testing.T) {
	b := Budget{ID: "b1", TotalAmount: Money{Cents: 5000}}
	got := SummarizeBudget(b, nil)
	if got.TotalExpense.Cents != 0 || got.TotalIncome.Cents != 0 {
		t.Fatalf("empty set should yield zero aggregates, got %+v", got)
	}
	if got.Balance.Cents != 5000 {
		t.Fatalf("Balance = %d, want 5000", got.Balance.Cents)
	}
}

func TestSummarizeCategory(t *testing.T) {
	now := time.Now()
	c := Category{ID: "c1", BudgetID: "b1", Name: "Food", Limit: Money{Cents: 10000}}
	txs := []Transaction{
		tx("b1", "c1", Expense, 4000, now),
		tx("b1", "c1", Income, 1000, now),
		tx("b1", "c2", Expense, 7777, now), // other category, ignored
	}

	got := SummarizeCategory(c, txs)
	if got.Spent.Cents != 4000 || got.Income.Cents != 1000 {
		t.Fatalf("got %+v", got)
	}
	if got.Balance.Cents != 10000-4000+1000 {
		t.Fatalf("Balance = %d", got.Balance.Cents)
	}
	if got.Progress != 40 {
		t.Fatalf("Progress = %v, want 40", got.Progress)
	}
}

func TestSummarizeCategoryOverspent(t *testing.T) {
	// Spending 150 against a limit of 100 clamps progress at 100 and goes
	// negative on balance.
	now := time.Now()
	c := Category{ID: "c1", BudgetID: "b1", Name: "Fun", Limit: Money{Cents: 10000}}
	txs := []Transaction{
		tx("b1", "c1", Expense, 9000, now),
		tx("b1", "c1", Expense, 6000, now),
	}

	got := SummarizeCategory(c, txs)
	if got.Spent.Cents != 15000 {
		t.Fatalf("Spent = %d, want 15000", got.Spent.Cents)
	}
	if got.Balance.Cents != -5000 {
		t.Fatalf("Balance = %d, want -5000", got.Balance.Cents)
	}
	if got.Progress != 100 {
		t.Fatalf("Progress = %v, want 100 (clamped)", got.Progress)
	}
}

func TestProgressBounds(t *testing.T) {
	cases := []struct {
		spent, limit int64
		want         float64
	}{
		{0, 10000, 0},
		{5000, 10000, 50},
		{10000, 10000, 100},
		{20000, 10000, 100}, // clamped
		{5000, 0, 0},        // zero limit
		{5000, -100, 0},     // negative limit
	}
	for i, tc := range cases {
		got := limitProgress(tc.spent, tc.limit)
		if got != tc.want {
			t.Fatalf("case %d: progress(%d,%d) = %v, want %v", i, tc.spent, tc.limit, got, tc.want)
		}
		if got < 0 || got > 100 {
			t.Fatalf("case %d: progress out of [0,100]: %v", i, got)
		}
	}
}

func TestSummarizeIdempotent(t *testing.T) {
	now := time.Now()
	b := Budget{ID: "b1", TotalAmount: Money{Cents: 50000}}
	c := Category{ID: "c1", BudgetID: "b1", Limit: Money{Cents: 20000}}
	txs := []Transaction{
		tx("b1", "c1", Expense, 1200, now),
		tx("b1", "c1", Income, 300, now),
	}

	if a, b2 := SummarizeBudget(b, txs), SummarizeBudget(b, txs); a != b2 {
		t.Fatalf("budget summary not idempotent: %+v vs %+v", a, b2)
	}
	if a, b2 := SummarizeCategory(c, txs), SummarizeCategory(c, txs); a != b2 {
		t.Fatalf("category summary not idempotent: %+v vs %+v", a, b2)
	}
}

func TestOverAllocated(t *testing.T) {
	b := Budget{ID: "b1", TotalAmount: Money{Cents: 10000}}
	under := []Category{
		{ID: "c1", Limit: Money{Cents: 4000}},
		{ID: "c2", Limit: Money{Cents: 6000}},
	}
	if OverAllocated(b, under) {
		t.Fatalf("limits equal to total should not be over-allocated")
	}
	over := append(under, Category{ID: "c3", Limit: Money{Cents: 1}})
	if !OverAllocated(b, over) {
		t.Fatalf("expected over-allocation")
	}
	if got := AllocatedLimit(over).Cents; got != 10001 {
		t.Fatalf("AllocatedLimit = %d, want 10001", got)
	}
}

package services

import (
	"context"
	"testing"
	"time"

	"budgetbook/internal/core"
	"budgetbook/internal/query"
)

func TestDuenessCheckers(t *testing.T) {
	start := time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC)
	cases := []struct {
		name    string
		freq    core.Frequency
		lastRun time.Time
		now     time.Time
		want    bool
	}{
		{"daily never run", core.Daily, time.Time{}, time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC), true},
		{"daily ran today", core.Daily, time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC), time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC), false},
		{"daily ran yesterday", core.Daily, time.Date(2025, 5, 31, 8, 0, 0, 0, time.UTC), time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC), true},
		{"weekly 6 days", core.Weekly, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), time.Date(2025, 6, 7, 0, 0, 0, 0, time.UTC), false},
		{"weekly 7 days", core.Weekly, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), time.Date(2025, 6, 8, 0, 0, 0, 0, time.UTC), true},
		{"monthly same month", core.Monthly, time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC), time.Date(2025, 6, 30, 12, 0, 0, 0, time.UTC), false},
		// Start day 31 does not exist in June; clamps to the 30th.
		{"monthly clamped day", core.Monthly, time.Date(2025, 5, 31, 0, 0, 0, 0, time.UTC), time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC), true},
		{"monthly before target day", core.Monthly, time.Date(2025, 5, 31, 0, 0, 0, 0, time.UTC), time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC), false},
		{"yearly same year", core.Yearly, time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC), time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC), false},
		{"yearly past target", core.Yearly, time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC), time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC), true},
		{"yearly before target month", core.Yearly, time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC), time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC), false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			checker, err := GetDuenessChecker(tc.freq)
			if err != nil {
				t.Fatalf("get checker: %v", err)
			}
			if got := checker.IsDue(tc.lastRun, tc.now, start); got != tc.want {
				t.Fatalf("IsDue = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestGetDuenessCheckerUnknown(t *testing.T) {
	if _, err := GetDuenessChecker(core.Frequency("biweekly")); err == nil {
		t.Fatal("expected error for unknown frequency")
	}
}

func TestProcessDue(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b, c := f.seedBudget(t)

	rule, err := f.recurring.Create(ctx, core.RecurringRule{
		BudgetID:   b.ID,
		CategoryID: c.ID,
		Type:       core.Expense,
		Amount:     core.Money{Cents: 85_000},
		Name:       "Rent",
		Every:      core.Monthly,
		StartDate:  time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("create rule: %v", err)
	}

	processor := NewRecurringProcessor(f.store, f.transactions)
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

	n, err := processor.ProcessDue(ctx, now)
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if n != 1 {
		t.Fatalf("processed = %d, want 1", n)
	}

	// A second run in the same month must be a no-op.
	n, err = processor.ProcessDue(ctx, now.Add(time.Hour))
	if err != nil {
		t.Fatalf("process again: %v", err)
	}
	if n != 0 {
		t.Fatalf("second run processed = %d, want 0", n)
	}

	res, err := f.transactions.Query(ctx, b.ID, query.Filter{}, 1, 10)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(res.Transactions) != 1 {
		t.Fatalf("materialized transactions = %d", len(res.Transactions))
	}
	tx := res.Transactions[0]
	if tx.Name != "Rent" || tx.Amount.Cents != 85_000 {
		t.Fatalf("unexpected transaction: %+v", tx)
	}
	if tx.Author != core.SystemAuthor {
		t.Fatalf("unexpected author: %+v", tx.Author)
	}

	got, err := f.store.Recurring().Get(ctx, rule.ID)
	if err != nil {
		t.Fatalf("get rule: %v", err)
	}
	if got.LastRun.IsZero() {
		t.Fatal("last run not recorded")
	}
}

func TestProcessDueRespectsWindow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b, c := f.seedBudget(t)

	_, err := f.recurring.Create(ctx, core.RecurringRule{
		BudgetID:   b.ID,
		CategoryID: c.ID,
		Type:       core.Expense,
		Amount:     core.Money{Cents: 1_000},
		Name:       "Future gym",
		Every:      core.Daily,
		StartDate:  time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("create rule: %v", err)
	}
	_, err = f.recurring.Create(ctx, core.RecurringRule{
		BudgetID:   b.ID,
		CategoryID: c.ID,
		Type:       core.Expense,
		Amount:     core.Money{Cents: 2_000},
		Name:       "Expired sub",
		Every:      core.Daily,
		StartDate:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:    time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("create rule: %v", err)
	}

	processor := NewRecurringProcessor(f.store, f.transactions)
	n, err := processor.ProcessDue(ctx, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if n != 0 {
		t.Fatalf("processed = %d, want 0", n)
	}
}

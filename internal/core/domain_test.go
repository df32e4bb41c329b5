package core

import (
	"testing"
	"time"
)

func TestMoneyValidate(t *testing.T) {
	if err := (Money{Cents: 1}).Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (Money{Cents: 0}).Validate(); err == nil {
		t.Fatalf("expected error for zero")
	}
	if err := (Money{Cents: -50}).Validate(); err == nil {
		t.Fatalf("expected error for negative")
	}
}

func TestBudgetValidate(t *testing.T) {
	good := Budget{ID: "b1", Name: "Household", TotalAmount: Money{Cents: 100000}}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []Budget{
		{Name: "", TotalAmount: Money{Cents: 100}},
		{Name: "   ", TotalAmount: Money{Cents: 100}},
		{Name: "x", TotalAmount: Money{Cents: 0}},
		{Name: "x", TotalAmount: Money{Cents: -1}},
	}
	for i, b := range bads {
		if err := b.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestCategoryValidate(t *testing.T) {
	good := Category{ID: "c1", BudgetID: "b1", Name: "Groceries", Limit: Money{Cents: 30000}}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []Category{
		{BudgetID: "", Name: "x", Limit: Money{Cents: 1}},
		{BudgetID: "b1", Name: "", Limit: Money{Cents: 1}},
		{BudgetID: "b1", Name: "x", Limit: Money{Cents: 0}},
	}
	for i, c := range bads {
		if err := c.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestTransactionValidate(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	good := Transaction{
		ID:         "t1",
		BudgetID:   "b1",
		CategoryID: "c1",
		Type:       Expense,
		Amount:     Money{Cents: 1234},
		Name:       "coffee",
		OccurredAt: now,
		Author:     Author{ID: 42, FirstName: "Ada"},
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	// Name is optional.
	noName := good
	noName.Name = ""
	if err := noName.Validate(); err != nil {
		t.Fatalf("expected ok without name, got %v", err)
	}

	cases := []struct {
		mutate func(*Transaction)
		want   error
	}{
		{func(tx *Transaction) { tx.BudgetID = "" }, ErrMissingBudget},
		{func(tx *Transaction) { tx.CategoryID = "" }, ErrMissingCategory},
		{func(tx *Transaction) { tx.Type = "transfer" }, ErrInvalidType},
		{func(tx *Transaction) { tx.Amount = Money{} }, ErrInvalidAmount},
		{func(tx *Transaction) { tx.OccurredAt = time.Time{} }, ErrZeroTimestamp},
		{func(tx *Transaction) { tx.Author = Author{} }, ErrMissingAuthor},
	}
	for i, tc := range cases {
		tx := good
		tc.mutate(&tx)
		if err := tx.Validate(); err != tc.want {
			t.Fatalf("case %d: got %v, want %v", i, err, tc.want)
		}
	}
}

func TestRecurringRuleValidate(t *testing.T) {
	start := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
	good := RecurringRule{
		BudgetID:   "b1",
		CategoryID: "c1",
		Type:       Expense,
		Amount:     Money{Cents: 999},
		Name:       "rent",
		Every:      Monthly,
		StartDate:  start,
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bad := good
	bad.Every = "fortnightly"
	if err := bad.Validate(); err != ErrInvalidFreq {
		t.Fatalf("got %v, want ErrInvalidFreq", err)
	}

	bad = good
	bad.EndDate = start.AddDate(0, 0, -1)
	if err := bad.Validate(); err == nil {
		t.Fatalf("expected error for end date before start date")
	}
}

func TestAuthorDisplayName(t *testing.T) {
	cases := []struct {
		a    Author
		want string
	}{
		{Author{FirstName: "Ada", LastName: "Lovelace"}, "Ada Lovelace"},
		{Author{FirstName: "Ada"}, "Ada"},
		{Author{Username: "ada42"}, "ada42"},
		{Author{}, ""},
	}
	for i, tc := range cases {
		if got := tc.a.DisplayName(); got != tc.want {
			t.Fatalf("case %d: got %q, want %q", i, got, tc.want)
		}
	}
}

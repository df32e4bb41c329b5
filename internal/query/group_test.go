package query

import (
	"testing"
	"time"

	"budgetbook/internal/core"
)

func TestGroupByDay(t *testing.T) {
	now := time.Date(2025, 6, 18, 15, 0, 0, 0, time.UTC)
	txs := []core.Transaction{
		mkTx("t1", core.Expense, "c1", 1, now.Add(-time.Hour)),
		mkTx("t2", core.Expense, "c1", 1, now.Add(-2*time.Hour)),
		mkTx("t3", core.Expense, "c1", 1, now.Add(-24*time.Hour)),
		mkTx("t4", core.Expense, "c1", 1, time.Date(2025, 3, 2, 9, 0, 0, 0, time.UTC)),
		mkTx("t5", core.Expense, "c1", 1, time.Date(2024, 12, 25, 9, 0, 0, 0, time.UTC)),
	}
	sorted := Apply(txs, Filter{}, 1, DefaultPageSize, now)

	groups := GroupByDay(sorted, now)
	if len(groups) != 4 {
		t.Fatalf("expected 4 groups, got %d", len(groups))
	}

	wantLabels := []string{"Today", "Yesterday", "2 March", "25 December 2024"}
	for i, want := range wantLabels {
		if groups[i].Label != want {
			t.Fatalf("group %d label = %q, want %q", i, groups[i].Label, want)
		}
	}
	if len(groups[0].Transactions) != 2 {
		t.Fatalf("today should hold 2 transactions, got %d", len(groups[0].Transactions))
	}
	if groups[0].Transactions[0].ID != "t1" || groups[0].Transactions[1].ID != "t2" {
		t.Fatalf("within-group order lost: %s, %s", groups[0].Transactions[0].ID, groups[0].Transactions[1].ID)
	}
}

func TestGroupByDayEmpty(t *testing.T) {
	if got := GroupByDay(nil, time.Now()); len(got) != 0 {
		t.Fatalf("expected no groups, got %d", len(got))
	}
}

func TestDayLabel(t *testing.T) {
	now := time.Date(2025, 6, 18, 15, 0, 0, 0, time.UTC)
	cases := []struct {
		name string
		day  time.Time
		want string
	}{
		{"today", time.Date(2025, 6, 18, 0, 0, 0, 0, time.UTC), "Today"},
		{"yesterday", time.Date(2025, 6, 17, 0, 0, 0, 0, time.UTC), "Yesterday"},
		{"same year", time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC), "2 January"},
		{"other year", time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), "2 January 2024"},
		{"tomorrow same year", time.Date(2025, 6, 19, 0, 0, 0, 0, time.UTC), "19 June"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := DayLabel(tc.day, now); got != tc.want {
				t.Fatalf("DayLabel = %q, want %q", got, tc.want)
			}
		})
	}
}

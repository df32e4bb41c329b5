package query

import (
	"strconv"
	"testing"
	"time"

	"budgetbook/internal/core"
)

var testNow = time.Date(2025, 6, 18, 15, 30, 0, 0, time.UTC) // a Wednesday

func mkTx(id string, typ core.TxType, categoryID string, authorID int64, when time.Time) core.Transaction {
	return core.Transaction{
		ID:         id,
		BudgetID:   "b1",
		CategoryID: categoryID,
		Type:       typ,
		Amount:     core.Money{Cents: 100},
		OccurredAt: when,
		Author:     core.Author{ID: authorID, FirstName: "u" + strconv.FormatInt(authorID, 10)},
	}
}

func TestFilterType(t *testing.T) {
	// 3 expenses + 2 incomes; the income filter must yield exactly the 2
	// incomes, newest first.
	txs := []core.Transaction{
		mkTx("t1", core.Expense, "c1", 1, testNow.Add(-5*time.Hour)),
		mkTx("t2", core.Income, "c1", 1, testNow.Add(-4*time.Hour)),
		mkTx("t3", core.Expense, "c1", 1, testNow.Add(-3*time.Hour)),
		mkTx("t4", core.Income, "c2", 2, testNow.Add(-2*time.Hour)),
		mkTx("t5", core.Expense, "c2", 2, testNow.Add(-1*time.Hour)),
	}

	got := Apply(txs, Filter{Type: core.Income}, 1, DefaultPageSize, testNow)
	if len(got) != 2 {
		t.Fatalf("expected 2 income transactions, got %d", len(got))
	}
	if got[0].ID != "t4" || got[1].ID != "t2" {
		t.Fatalf("wrong order: %s, %s", got[0].ID, got[1].ID)
	}
}

func TestFilterCategoryAndAuthorAND(t *testing.T) {
	txs := []core.Transaction{
		mkTx("t1", core.Expense, "c1", 1, testNow),
		mkTx("t2", core.Expense, "c1", 2, testNow),
		mkTx("t3", core.Expense, "c2", 1, testNow),
	}

	got := Apply(txs, Filter{CategoryID: "c1", AuthorID: 1}, 1, DefaultPageSize, testNow)
	if len(got) != 1 || got[0].ID != "t1" {
		t.Fatalf("AND combination failed: %+v", got)
	}
}

func TestFilterDateRanges(t *testing.T) {
	// testNow is Wednesday 2025-06-18; this week runs Mon 16 .. Sun 22.
	thisWeek := mkTx("w1", core.Expense, "c1", 1, time.Date(2025, 6, 16, 1, 0, 0, 0, time.UTC))
	lastWeek := mkTx("w2", core.Expense, "c1", 1, time.Date(2025, 6, 13, 23, 0, 0, 0, time.UTC))
	lastMonth := mkTx("m1", core.Expense, "c1", 1, time.Date(2025, 5, 31, 12, 0, 0, 0, time.UTC))
	older := mkTx("o1", core.Expense, "c1", 1, time.Date(2024, 12, 25, 12, 0, 0, 0, time.UTC))
	txs := []core.Transaction{thisWeek, lastWeek, lastMonth, older}

	cases := []struct {
		r    DateRange
		want []string
	}{
		{RangeAll, []string{"w1", "w2", "m1", "o1"}},
		{RangeThisWeek, []string{"w1"}},
		{RangeLastWeek, []string{"w2"}},
		{RangeThisMonth, []string{"w1", "w2"}},
		{RangeLastMonth, []string{"m1"}},
	}
	for _, tc := range cases {
		got := Apply(txs, Filter{Range: tc.r}, 1, DefaultPageSize, testNow)
		if len(got) != len(tc.want) {
			t.Fatalf("%s: got %d results, want %d", tc.r, len(got), len(tc.want))
		}
		for i, id := range tc.want {
			if got[i].ID != id {
				t.Fatalf("%s: result %d = %s, want %s", tc.r, i, got[i].ID, id)
			}
		}
	}
}

func TestFilterCustomRangeInclusive(t *testing.T) {
	// Custom ranges are inclusive day intervals; time of day is ignored.
	start := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 6, 12, 0, 0, 0, 0, time.UTC)
	txs := []core.Transaction{
		mkTx("before", core.Expense, "c1", 1, time.Date(2025, 6, 9, 23, 59, 0, 0, time.UTC)),
		mkTx("first", core.Expense, "c1", 1, time.Date(2025, 6, 10, 0, 1, 0, 0, time.UTC)),
		mkTx("last", core.Expense, "c1", 1, time.Date(2025, 6, 12, 23, 59, 0, 0, time.UTC)),
		mkTx("after", core.Expense, "c1", 1, time.Date(2025, 6, 13, 0, 0, 1, 0, time.UTC)),
	}

	got := Apply(txs, Filter{Range: RangeCustom, Start: start, End: end}, 1, DefaultPageSize, testNow)
	if len(got) != 2 {
		t.Fatalf("expected 2 results, got %d", len(got))
	}
	if got[0].ID != "last" || got[1].ID != "first" {
		t.Fatalf("wrong results: %s, %s", got[0].ID, got[1].ID)
	}
}

func TestOrderingInvariant(t *testing.T) {
	// Whatever the filter, results must be non-increasing by timestamp.
	txs := []core.Transaction{
		mkTx("a", core.Expense, "c1", 1, testNow.Add(-1*time.Hour)),
		mkTx("b", core.Income, "c2", 2, testNow.Add(-30*time.Minute)),
		mkTx("c", core.Expense, "c1", 2, testNow.Add(-2*time.Hour)),
		mkTx("d", core.Income, "c1", 1, testNow.Add(-10*time.Minute)),
		mkTx("e", core.Expense, "c2", 1, testNow.Add(-90*time.Minute)),
	}
	filters := []Filter{
		{},
		{Type: core.Expense},
		{CategoryID: "c1"},
		{AuthorID: 2},
		{Type: core.Income, CategoryID: "c2"},
	}
	for fi, f := range filters {
		got := Apply(txs, f, 1, DefaultPageSize, testNow)
		for i := 1; i < len(got); i++ {
			if got[i].OccurredAt.After(got[i-1].OccurredAt) {
				t.Fatalf("filter %d: ordering violated at %d", fi, i)
			}
		}
	}
}

func TestPagination(t *testing.T) {
	var txs []core.Transaction
	for i := 0; i < 25; i++ {
		txs = append(txs, mkTx("t"+strconv.Itoa(i), core.Expense, "c1", 1, testNow.Add(-time.Duration(i)*time.Minute)))
	}

	p1 := Apply(txs, Filter{}, 1, 10, testNow)
	p2 := Apply(txs, Filter{}, 2, 10, testNow)
	p3 := Apply(txs, Filter{}, 3, 10, testNow)
	p4 := Apply(txs, Filter{}, 4, 10, testNow)
	if len(p1) != 10 || len(p2) != 10 || len(p3) != 5 || len(p4) != 0 {
		t.Fatalf("page sizes: %d %d %d %d", len(p1), len(p2), len(p3), len(p4))
	}
	if p1[0].ID != "t0" || p2[0].ID != "t10" || p3[0].ID != "t20" {
		t.Fatalf("page heads: %s %s %s", p1[0].ID, p2[0].ID, p3[0].ID)
	}
}

func TestPaginationExactPageBoundary(t *testing.T) {
	// Exactly pageSize matches: page 1 is full (indistinguishable from
	// "more exist"), so the caller must fetch page 2 and see it empty.
	var txs []core.Transaction
	for i := 0; i < 10; i++ {
		txs = append(txs, mkTx("t"+strconv.Itoa(i), core.Expense, "c1", 1, testNow.Add(-time.Duration(i)*time.Minute)))
	}

	p1 := Apply(txs, Filter{}, 1, 10, testNow)
	if len(p1) != 10 {
		t.Fatalf("page 1 size = %d, want 10", len(p1))
	}
	p2 := Apply(txs, Filter{}, 2, 10, testNow)
	if len(p2) != 0 {
		t.Fatalf("page 2 size = %d, want 0", len(p2))
	}
}

func TestStableTieBreak(t *testing.T) {
	same := testNow.Add(-time.Hour)
	txs := []core.Transaction{
		mkTx("aaa", core.Expense, "c1", 1, same),
		mkTx("zzz", core.Expense, "c1", 1, same),
		mkTx("mmm", core.Expense, "c1", 1, same),
	}
	first := Apply(txs, Filter{}, 1, 10, testNow)
	second := Apply(txs, Filter{}, 1, 10, testNow)
	for i := range first {
		if first[i].ID != second[i].ID {
			t.Fatalf("tie-break unstable at %d: %s vs %s", i, first[i].ID, second[i].ID)
		}
	}
}

func TestAuthors(t *testing.T) {
	txs := []core.Transaction{
		mkTx("t1", core.Expense, "c1", 7, testNow),
		mkTx("t2", core.Expense, "c1", 3, testNow),
		mkTx("t3", core.Expense, "c1", 7, testNow),
	}
	got := Authors(txs)
	if len(got) != 2 {
		t.Fatalf("expected 2 unique authors, got %d", len(got))
	}
	if got[0].ID != 7 || got[1].ID != 3 {
		t.Fatalf("first-seen order violated: %d, %d", got[0].ID, got[1].ID)
	}
}

func TestWeekStartsMonday(t *testing.T) {
	sunday := time.Date(2025, 6, 22, 10, 0, 0, 0, time.UTC)
	monday := time.Date(2025, 6, 16, 0, 0, 0, 0, time.UTC)
	if got := weekStart(DayFloor(sunday)); !got.Equal(monday) {
		t.Fatalf("weekStart(sunday) = %v, want %v", got, monday)
	}
	if got := weekStart(monday); !got.Equal(monday) {
		t.Fatalf("weekStart(monday) = %v, want %v", got, monday)
	}
}

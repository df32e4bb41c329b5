// Package query implements filtering, ordering, pagination and display
// grouping over in-memory transaction collections.
package query

import (
	"sort"
	"time"

	"budgetbook/internal/core"
)

const (
	RangeAll       DateRange = "all"
	RangeThisWeek  DateRange = "thisWeek"
	RangeLastWeek  DateRange = "lastWeek"
	RangeThisMonth DateRange = "thisMonth"
	RangeLastMonth DateRange = "lastMonth"
	RangeCustom    DateRange = "custom"
)

const (
	// DefaultPageSize matches the page size the mini-app requests.
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// DateRange names a calendar window for the date filter.
type DateRange string

func (r DateRange) Valid() bool {
	switch r {
	case RangeAll, RangeThisWeek, RangeLastWeek, RangeThisMonth, RangeLastMonth, RangeCustom:
		return true
	default:
		return false
	}
}

// Filter is a conjunction of optional predicates. Zero-valued fields are
// no-ops, so the zero Filter matches everything.
type Filter struct {
	Range DateRange
	// Start and End bound RangeCustom, inclusive on both ends.
	Start time.Time
	End   time.Time

	Type       core.TxType // empty = all
	CategoryID string      // empty = all
	AuthorID   int64       // 0 = all
}

// Matches reports whether the transaction passes every configured
// predicate. The relative ranges (thisWeek, lastMonth, ...) are resolved
// against now.
func (f Filter) Matches(t core.Transaction, now time.Time) bool {
	if f.Type != "" && t.Type != f.Type {
		return false
	}
	if f.CategoryID != "" && t.CategoryID != f.CategoryID {
		return false
	}
	if f.AuthorID != 0 && t.Author.ID != f.AuthorID {
		return false
	}

	if f.Range == "" || f.Range == RangeAll {
		return true
	}
	lo, hi, ok := f.bounds(now)
	if !ok {
		return true
	}
	// Time of day is ignored for the date filter: compare whole days.
	day := DayFloor(t.OccurredAt)
	return !day.Before(lo) && !day.After(hi)
}

// bounds resolves the configured range to an inclusive [lo, hi] day
// interval. Both ends are midnight-normalized. ok is false when the range
// imposes no constraint.
func (f Filter) bounds(now time.Time) (lo, hi time.Time, ok bool) {
	today := DayFloor(now)
	switch f.Range {
	case RangeThisWeek:
		lo = weekStart(today)
		return lo, lo.AddDate(0, 0, 6), true
	case RangeLastWeek:
		lo = weekStart(today).AddDate(0, 0, -7)
		return lo, lo.AddDate(0, 0, 6), true
	case RangeThisMonth:
		lo = time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, today.Location())
		return lo, lo.AddDate(0, 1, -1), true
	case RangeLastMonth:
		first := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, today.Location())
		lo = first.AddDate(0, -1, 0)
		return lo, first.AddDate(0, 0, -1), true
	case RangeCustom:
		if f.Start.IsZero() || f.End.IsZero() {
			return lo, hi, false
		}
		return DayFloor(f.Start), DayFloor(f.End), true
	default:
		return lo, hi, false
	}
}

// Apply filters the collection, sorts it strictly newest-first and returns
// the requested 1-indexed page. Ordering is a hard invariant: pagination
// and "load more" semantics depend on it being stable across calls.
func Apply(txs []core.Transaction, f Filter, page, pageSize int, now time.Time) []core.Transaction {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	if page < 1 {
		page = 1
	}

	matched := make([]core.Transaction, 0, len(txs))
	for _, t := range txs {
		if f.Matches(t, now) {
			matched = append(matched, t)
		}
	}
	SortNewestFirst(matched)

	start := (page - 1) * pageSize
	if start >= len(matched) {
		return []core.Transaction{}
	}
	end := start + pageSize
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end]
}

// SortNewestFirst orders transactions by descending timestamp, breaking
// ties by ID so repeated queries page identically.
func SortNewestFirst(txs []core.Transaction) {
	sort.SliceStable(txs, func(i, j int) bool {
		if !txs[i].OccurredAt.Equal(txs[j].OccurredAt) {
			return txs[i].OccurredAt.After(txs[j].OccurredAt)
		}
		return txs[i].ID > txs[j].ID
	})
}

// Authors returns the unique transaction authors in first-seen order.
func Authors(txs []core.Transaction) []core.Author {
	seen := make(map[int64]struct{}, len(txs))
	out := make([]core.Author, 0, len(txs))
	for _, t := range txs {
		if _, ok := seen[t.Author.ID]; ok {
			continue
		}
		seen[t.Author.ID] = struct{}{}
		out = append(out, t.Author)
	}
	return out
}

// DayFloor truncates a timestamp to local midnight.
func DayFloor(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// weekStart returns the Monday of the week containing the given day.
func weekStart(day time.Time) time.Time {
	wd := int(day.Weekday())
	if wd == 0 {
		wd = 7 // Sunday belongs to the week that started the previous Monday
	}
	return day.AddDate(0, 0, -(wd - 1))
}

package query

import (
	"time"

	"budgetbook/internal/core"
)

// DayGroup is a display-only bucket of transactions sharing a calendar day.
// Groups come out newest-first, matching the underlying sort.
type DayGroup struct {
	Date         time.Time
	Label        string
	Transactions []core.Transaction
}

// GroupByDay buckets an already-filtered, already-sorted collection by
// local calendar day. Input order is preserved inside each group.
func GroupByDay(txs []core.Transaction, now time.Time) []DayGroup {
	var groups []DayGroup
	index := make(map[time.Time]int, len(txs))
	for _, t := range txs {
		day := DayFloor(t.OccurredAt)
		i, ok := index[day]
		if !ok {
			i = len(groups)
			index[day] = i
			groups = append(groups, DayGroup{
				Date:  day,
				Label: DayLabel(day, now),
			})
		}
		groups[i].Transactions = append(groups[i].Transactions, t)
	}
	return groups
}

// DayLabel renders a calendar day for the history view: "Today",
// "Yesterday", "2 January" within the current year, and "2 January 2006"
// otherwise.
func DayLabel(day, now time.Time) string {
	day = DayFloor(day)
	today := DayFloor(now)
	switch {
	case day.Equal(today):
		return "Today"
	case day.Equal(today.AddDate(0, 0, -1)):
		return "Yesterday"
	case day.Year() == today.Year():
		return day.Format("2 January")
	default:
		return day.Format("2 January 2006")
	}
}

package core

// BudgetSummary holds the derived totals for a budget. Summaries are never
// stored; they are recomputed from the transaction set on demand so stale
// derived state cannot exist.
type BudgetSummary struct {
	TotalExpense Money
	TotalIncome  Money
	Balance      Money
}

// CategorySummary holds the derived totals for a single category.
// Progress is the percentage of the limit consumed by expenses, clamped
// to [0,100]; it is 0 whenever the limit is not positive.
type CategorySummary struct {
	Spent    Money
	Income   Money
	Balance  Money
	Progress float64
}

// SummarizeBudget folds the transaction set into the budget's derived
// totals. Transactions belonging to other budgets are ignored, so callers
// may pass an unfiltered collection.
func SummarizeBudget(b Budget, txs []Transaction) BudgetSummary {
	var expense, income int64
	for _, t := range txs {
		if t.BudgetID != b.ID {
			continue
		}
		switch t.Type {
		case Expense:
			expense += t.Amount.Cents
		case Income:
			income += t.Amount.Cents
		}
	}
	return BudgetSummary{
		TotalExpense: Money{Cents: expense},
		TotalIncome:  Money{Cents: income},
		Balance:      Money{Cents: b.TotalAmount.Cents - expense + income},
	}
}

// SummarizeCategory folds the transaction set into one category's derived
// totals, including limit progress.
func SummarizeCategory(c Category, txs []Transaction) CategorySummary {
	var spent, income int64
	for _, t := range txs {
		if t.CategoryID != c.ID {
			continue
		}
		switch t.Type {
		case Expense:
			spent += t.Amount.Cents
		case Income:
			income += t.Amount.Cents
		}
	}
	return CategorySummary{
		Spent:    Money{Cents: spent},
		Income:   Money{Cents: income},
		Balance:  Money{Cents: c.Limit.Cents - spent + income},
		Progress: limitProgress(spent, c.Limit.Cents),
	}
}

func limitProgress(spentCents, limitCents int64) float64 {
	if limitCents <= 0 {
		return 0
	}
	p := float64(spentCents) / float64(limitCents) * 100
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

// AllocatedLimit sums the limits of the given categories.
func AllocatedLimit(categories []Category) Money {
	var total int64
	for _, c := range categories {
		total += c.Limit.Cents
	}
	return Money{Cents: total}
}

// OverAllocated reports whether the categories' limits together exceed the
// budget's total. This is a soft check: it is surfaced as a warning and
// never blocks writes.
func OverAllocated(b Budget, categories []Category) bool {
	return AllocatedLimit(categories).Cents > b.TotalAmount.Cents
}

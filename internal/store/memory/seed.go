package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"

	"budgetbook/internal/core"
)

// Seed fills the store with a demo budget, a handful of categories and
// a month of fake transactions. Used when the server starts with
// SEED_DEMO_DATA enabled.
func Seed(ctx context.Context, s *Store, now time.Time) error {
	faker := gofakeit.New(0)

	budget := core.Budget{
		ID:          uuid.NewString(),
		Name:        fmt.Sprintf("%s budget", faker.MonthString()),
		TotalAmount: core.Money{Cents: 250_000},
		CreatedAt:   now.AddDate(0, -1, 0),
	}
	if err := s.Budgets().Create(ctx, budget); err != nil {
		return fmt.Errorf("seed budget: %w", err)
	}

	names := []string{"Groceries", "Transport", "Dining", "Utilities", "Fun"}
	categories := make([]core.Category, 0, len(names))
	for _, name := range names {
		c := core.Category{
			ID:       uuid.NewString(),
			BudgetID: budget.ID,
			Name:     name,
			Limit:    core.Money{Cents: int64(faker.Number(100, 500)) * 100},
		}
		if err := s.Categories().Create(ctx, c); err != nil {
			return fmt.Errorf("seed category %s: %w", name, err)
		}
		categories = append(categories, c)
	}

	authors := []core.Author{
		{ID: 1, FirstName: faker.FirstName(), LastName: faker.LastName(), Username: faker.Username()},
		{ID: 2, FirstName: faker.FirstName(), LastName: faker.LastName(), Username: faker.Username()},
	}

	for i := 0; i < 40; i++ {
		c := categories[faker.Number(0, len(categories)-1)]
		typ := core.Expense
		if faker.Number(0, 9) == 0 {
			typ = core.Income
		}
		t := core.Transaction{
			ID:         uuid.NewString(),
			BudgetID:   budget.ID,
			CategoryID: c.ID,
			Type:       typ,
			Amount:     core.Money{Cents: int64(faker.Number(99, 9_999))},
			Name:       faker.ProductName(),
			OccurredAt: now.Add(-time.Duration(faker.Number(0, 30*24)) * time.Hour),
			Author:     authors[i%len(authors)],
		}
		if err := s.Transactions().Create(ctx, t); err != nil {
			return fmt.Errorf("seed transaction: %w", err)
		}
	}
	return nil
}

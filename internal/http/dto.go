package http

import (
	"time"

	"budgetbook/internal/core"
	"budgetbook/internal/query"
	"budgetbook/internal/services"
)

// Wire representations. Amounts travel as decimal strings ("12.34"),
// timestamps as RFC 3339.

type budgetDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	TotalAmount string `json:"totalAmount"`
	CreatedAt   string `json:"createdAt"`
}

type budgetOverviewDTO struct {
	budgetDTO
	TotalExpense  string        `json:"totalExpense"`
	TotalIncome   string        `json:"totalIncome"`
	Balance       string        `json:"balance"`
	OverAllocated bool          `json:"overAllocated"`
	Categories    []categoryDTO `json:"categories"`
}

type categoryDTO struct {
	ID       string  `json:"id"`
	BudgetID string  `json:"budgetId"`
	Name     string  `json:"name"`
	Limit    string  `json:"limit"`
	Spent    string  `json:"spent"`
	Income   string  `json:"income"`
	Balance  string  `json:"balance"`
	Progress float64 `json:"progress"`
}

type authorDTO struct {
	ID          int64  `json:"id"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName,omitempty"`
	Username    string `json:"username,omitempty"`
	DisplayName string `json:"displayName"`
}

type transactionDTO struct {
	ID         string    `json:"id"`
	BudgetID   string    `json:"budgetId"`
	CategoryID string    `json:"categoryId"`
	Type       string    `json:"type"`
	Amount     string    `json:"amount"`
	Name       string    `json:"name,omitempty"`
	OccurredAt string    `json:"occurredAt"`
	Author     authorDTO `json:"author"`
}

type dayGroupDTO struct {
	Date         string           `json:"date"`
	Label        string           `json:"label"`
	Transactions []transactionDTO `json:"transactions"`
}

type transactionPageDTO struct {
	Transactions []transactionDTO `json:"transactions"`
	Groups       []dayGroupDTO    `json:"groups"`
	Page         int              `json:"page"`
	PageSize     int              `json:"pageSize"`
}

type recurringRuleDTO struct {
	ID         string `json:"id"`
	BudgetID   string `json:"budgetId"`
	CategoryID string `json:"categoryId"`
	Type       string `json:"type"`
	Amount     string `json:"amount"`
	Name       string `json:"name"`
	Every      string `json:"every"`
	StartDate  string `json:"startDate"`
	EndDate    string `json:"endDate,omitempty"`
	LastRun    string `json:"lastRun,omitempty"`
}

func toBudgetDTO(b core.Budget) budgetDTO {
	return budgetDTO{
		ID:          b.ID,
		Name:        b.Name,
		TotalAmount: b.TotalAmount.String(),
		CreatedAt:   b.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func toBudgetOverviewDTO(o services.BudgetOverview) budgetOverviewDTO {
	dto := budgetOverviewDTO{
		budgetDTO:     toBudgetDTO(o.Budget),
		TotalExpense:  o.Summary.TotalExpense.String(),
		TotalIncome:   o.Summary.TotalIncome.String(),
		Balance:       o.Summary.Balance.String(),
		OverAllocated: o.OverAllocated,
		Categories:    []categoryDTO{},
	}
	for _, c := range o.Categories {
		dto.Categories = append(dto.Categories, toCategoryDTO(c))
	}
	return dto
}

func toCategoryDTO(o services.CategoryOverview) categoryDTO {
	return categoryDTO{
		ID:       o.Category.ID,
		BudgetID: o.Category.BudgetID,
		Name:     o.Category.Name,
		Limit:    o.Category.Limit.String(),
		Spent:    o.Summary.Spent.String(),
		Income:   o.Summary.Income.String(),
		Balance:  o.Summary.Balance.String(),
		Progress: o.Summary.Progress,
	}
}

// categoryOnly wraps a bare category with an empty summary, for write
// responses where no recompute has happened yet.
func categoryOnly(c core.Category) services.CategoryOverview {
	return services.CategoryOverview{
		Category: c,
		Summary:  core.SummarizeCategory(c, nil),
	}
}

func toAuthorDTO(a core.Author) authorDTO {
	return authorDTO{
		ID:          a.ID,
		FirstName:   a.FirstName,
		LastName:    a.LastName,
		Username:    a.Username,
		DisplayName: a.DisplayName(),
	}
}

func toTransactionDTO(t core.Transaction) transactionDTO {
	return transactionDTO{
		ID:         t.ID,
		BudgetID:   t.BudgetID,
		CategoryID: t.CategoryID,
		Type:       string(t.Type),
		Amount:     t.Amount.String(),
		Name:       t.Name,
		OccurredAt: t.OccurredAt.UTC().Format(time.RFC3339),
		Author:     toAuthorDTO(t.Author),
	}
}

func toTransactionPageDTO(res services.QueryResult) transactionPageDTO {
	page := transactionPageDTO{
		Transactions: []transactionDTO{},
		Groups:       []dayGroupDTO{},
		Page:         res.Page,
		PageSize:     res.PageSize,
	}
	for _, t := range res.Transactions {
		page.Transactions = append(page.Transactions, toTransactionDTO(t))
	}
	for _, g := range res.Groups {
		page.Groups = append(page.Groups, toDayGroupDTO(g))
	}
	return page
}

func toDayGroupDTO(g query.DayGroup) dayGroupDTO {
	dto := dayGroupDTO{
		Date:         g.Date.Format("2006-01-02"),
		Label:        g.Label,
		Transactions: []transactionDTO{},
	}
	for _, t := range g.Transactions {
		dto.Transactions = append(dto.Transactions, toTransactionDTO(t))
	}
	return dto
}

func toRecurringRuleDTO(r core.RecurringRule) recurringRuleDTO {
	dto := recurringRuleDTO{
		ID:         r.ID,
		BudgetID:   r.BudgetID,
		CategoryID: r.CategoryID,
		Type:       string(r.Type),
		Amount:     r.Amount.String(),
		Name:       r.Name,
		Every:      string(r.Every),
		StartDate:  r.StartDate.UTC().Format(time.RFC3339),
	}
	if !r.EndDate.IsZero() {
		dto.EndDate = r.EndDate.UTC().Format(time.RFC3339)
	}
	if !r.LastRun.IsZero() {
		dto.LastRun = r.LastRun.UTC().Format(time.RFC3339)
	}
	return dto
}

package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	Expense TxType = "expense"
	Income  TxType = "income"
)

const (
	Daily   Frequency = "daily"
	Weekly  Frequency = "weekly"
	Monthly Frequency = "monthly"
	Yearly  Frequency = "yearly"
)

type (
	// TxType is the closed two-variant transaction kind.
	TxType string

	// Frequency is how often a recurring rule materializes.
	Frequency string

	Money struct {
		Cents int64
	}

	// Author is the subset of the host-app user identity recorded on a
	// transaction. The host is trusted; nothing here is authenticated.
	Author struct {
		ID        int64
		FirstName string
		LastName  string
		Username  string
	}

	Budget struct {
		ID          string
		Name        string
		TotalAmount Money
		CreatedAt   time.Time
	}

	Category struct {
		ID       string
		BudgetID string
		Name     string
		Limit    Money
	}

	Transaction struct {
		ID         string
		BudgetID   string
		CategoryID string
		Type       TxType
		Amount     Money
		Name       string // optional free-text comment
		OccurredAt time.Time
		Author     Author
	}

	// RecurringRule is a template that the recurring worker materializes
	// into ordinary transactions.
	RecurringRule struct {
		ID         string
		BudgetID   string
		CategoryID string
		Type       TxType
		Amount     Money
		Name       string
		Every      Frequency
		StartDate  time.Time
		EndDate    time.Time // zero = open-ended
		LastRun    time.Time // zero = never materialized
	}
)

var (
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrEmptyName       = errors.New("empty name")
	ErrNameTooLong     = errors.New("name too long (max 200 characters)")
	ErrInvalidType     = errors.New("invalid transaction type")
	ErrInvalidFreq     = errors.New("invalid frequency")
	ErrMissingBudget   = errors.New("missing budget id")
	ErrMissingCategory = errors.New("missing category id")
	ErrZeroTimestamp   = errors.New("timestamp cannot be zero")
	ErrMissingAuthor   = errors.New("missing author id")
	ErrInvalidDates    = errors.New("invalid date range")
)

// SystemAuthor is recorded on transactions the recurring worker
// creates on its own.
var SystemAuthor = Author{ID: -1, FirstName: "Recurring", Username: "recurring"}

func (t TxType) Valid() bool {
	return t == Expense || t == Income
}

func (f Frequency) Valid() bool {
	switch f {
	case Daily, Weekly, Monthly, Yearly:
		return true
	default:
		return false
	}
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (b Budget) Validate() error {
	if len(strings.TrimSpace(b.Name)) == 0 {
		return ErrEmptyName
	}
	if len(b.Name) > 200 {
		return ErrNameTooLong
	}
	return b.TotalAmount.Validate()
}

func (c Category) Validate() error {
	if c.BudgetID == "" {
		return ErrMissingBudget
	}
	if len(strings.TrimSpace(c.Name)) == 0 {
		return ErrEmptyName
	}
	if len(c.Name) > 200 {
		return ErrNameTooLong
	}
	return c.Limit.Validate()
}

func (t Transaction) Validate() error {
	if t.BudgetID == "" {
		return ErrMissingBudget
	}
	if t.CategoryID == "" {
		return ErrMissingCategory
	}
	if !t.Type.Valid() {
		return ErrInvalidType
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	// Name is optional but bounded.
	if len(t.Name) > 200 {
		return ErrNameTooLong
	}
	if t.OccurredAt.IsZero() {
		return ErrZeroTimestamp
	}
	if t.Author.ID == 0 {
		return ErrMissingAuthor
	}
	return nil
}

func (r RecurringRule) Validate() error {
	if r.BudgetID == "" {
		return ErrMissingBudget
	}
	if r.CategoryID == "" {
		return ErrMissingCategory
	}
	if !r.Type.Valid() {
		return ErrInvalidType
	}
	if err := r.Amount.Validate(); err != nil {
		return err
	}
	if len(strings.TrimSpace(r.Name)) == 0 {
		return ErrEmptyName
	}
	if len(r.Name) > 200 {
		return ErrNameTooLong
	}
	if !r.Every.Valid() {
		return ErrInvalidFreq
	}
	if r.StartDate.IsZero() {
		return fmt.Errorf("%w: start date cannot be zero", ErrInvalidDates)
	}
	if !r.EndDate.IsZero() && r.EndDate.Before(r.StartDate) {
		return fmt.Errorf("%w: end date before start date", ErrInvalidDates)
	}
	return nil
}

// DisplayName renders an author for listings: first and last name, falling
// back to the username when both are empty.
func (a Author) DisplayName() string {
	name := strings.TrimSpace(a.FirstName + " " + a.LastName)
	if name == "" {
		return a.Username
	}
	return name
}

// Package export pushes transaction history to Google Sheets.
package export

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"budgetbook/internal/core"
)

// Config holds Sheets exporter settings.
type Config struct {
	SpreadsheetID   string
	SheetName       string
	CredentialsFile string
	CredentialsJSON string
}

// SheetsExporter appends transaction rows to a spreadsheet using a
// service account.
type SheetsExporter struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
}

// NewSheetsExporter builds an exporter from service account
// credentials, either inline JSON or a file path.
func NewSheetsExporter(ctx context.Context, cfg Config) (*SheetsExporter, error) {
	if cfg.SpreadsheetID == "" {
		return nil, errors.New("missing spreadsheet ID")
	}
	if cfg.SheetName == "" {
		cfg.SheetName = "Transactions"
	}

	var credentialsJSON []byte
	switch {
	case cfg.CredentialsJSON != "":
		credentialsJSON = []byte(cfg.CredentialsJSON)
	case cfg.CredentialsFile != "":
		data, err := os.ReadFile(cfg.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read credentials file: %w", err)
		}
		credentialsJSON = data
	default:
		return nil, errors.New("missing service account credentials")
	}

	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	return &SheetsExporter{
		svc:           svc,
		spreadsheetID: cfg.SpreadsheetID,
		sheetName:     cfg.SheetName,
	}, nil
}

// Export appends one row per transaction and returns the number of
// rows written. Existing sheet content is preserved.
func (e *SheetsExporter) Export(ctx context.Context, budget core.Budget, txs []core.Transaction) (int, error) {
	if e.svc == nil {
		return 0, errors.New("sheets service not initialized")
	}
	if len(txs) == 0 {
		return 0, nil
	}

	rows := make([][]any, 0, len(txs))
	for _, t := range txs {
		rows = append(rows, transactionRow(budget, t))
	}

	rng := fmt.Sprintf("%s!A:G", e.sheetName)
	vr := &gsheet.ValueRange{Values: rows}

	_, err := e.svc.Spreadsheets.Values.Append(e.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("append to sheet %s: %w", e.sheetName, err)
	}

	slog.InfoContext(ctx, "Exported transactions to sheet",
		"budget_id", budget.ID,
		"sheet", e.sheetName,
		"rows", len(rows))
	return len(rows), nil
}

// transactionRow maps one transaction onto the sheet columns:
// date, budget, type, amount (signed), comment, author, category ID.
func transactionRow(budget core.Budget, t core.Transaction) []any {
	amount := t.Amount.Units()
	if t.Type == core.Expense {
		amount = -amount
	}
	return []any{
		t.OccurredAt.UTC().Format(time.DateOnly),
		budget.Name,
		string(t.Type),
		amount,
		t.Name,
		t.Author.DisplayName(),
		t.CategoryID,
	}
}

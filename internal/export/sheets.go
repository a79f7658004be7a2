// Package export turns a user's expense history into shareable formats:
// a plain text report and rows appended to a Google Sheet.
package export

import (
	"context"
	"fmt"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"spendwise/internal/core"
)

type SheetsExporter struct {
	service       *sheets.Service
	spreadsheetID string
	sheetName     string
}

// NewSheetsExporter builds an exporter backed by a service account
// credentials file.
func NewSheetsExporter(ctx context.Context, credentialsFile, spreadsheetID, sheetName string) (*SheetsExporter, error) {
	service, err := sheets.NewService(ctx,
		option.WithCredentialsFile(credentialsFile),
		option.WithScopes(sheets.SpreadsheetsScope),
	)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	return &SheetsExporter{
		service:       service,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
	}, nil
}

// Append writes the expenses as rows at the bottom of the sheet, one
// row per expense: date, category, description, amount.
func (s *SheetsExporter) Append(ctx context.Context, expenses []core.ExpenseRecord) error {
	if len(expenses) == 0 {
		return nil
	}

	values := make([][]interface{}, 0, len(expenses))
	for _, e := range expenses {
		values = append(values, []interface{}{
			e.Date.Format("2006-01-02"),
			e.Category,
			e.Description,
			e.Amount,
		})
	}

	rangeSpec := fmt.Sprintf("%s!A:D", s.sheetName)
	_, err := s.service.Spreadsheets.Values.Append(s.spreadsheetID, rangeSpec, &sheets.ValueRange{
		Values: values,
	}).ValueInputOption("USER_ENTERED").InsertDataOption("INSERT_ROWS").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("append rows to sheet: %w", err)
	}

	return nil
}

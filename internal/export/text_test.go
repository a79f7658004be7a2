package export

import (
	"strings"
	"testing"
	"time"

	"spendwise/internal/core"
)

func TestFormatText(t *testing.T) {
	now := time.Date(2025, time.August, 20, 0, 0, 0, 0, time.UTC)
	expenses := []core.ExpenseRecord{
		{Amount: 50, Category: "Food & Dining", Description: "groceries", Date: time.Date(2025, time.August, 3, 0, 0, 0, 0, time.UTC)},
		{Amount: 120, Category: "Shopping", Description: "shoes", Date: time.Date(2025, time.August, 10, 0, 0, 0, 0, time.UTC)},
		{Amount: 30, Category: "Transportation", Description: "bus pass", Date: time.Date(2025, time.July, 5, 0, 0, 0, 0, time.UTC)},
	}

	report := FormatText(expenses, now)

	for _, want := range []string{
		"Generated 2025-08-20",
		"Total expenses: 3",
		"== 2025-08 (total $170.00) ==",
		"== 2025-07 (total $30.00) ==",
		"groceries",
		"bus pass",
		"$120.00",
	} {
		if !strings.Contains(report, want) {
			t.Errorf("report missing %q:\n%s", want, report)
		}
	}

	// Newest month must come first.
	if strings.Index(report, "2025-08") > strings.Index(report, "2025-07") {
		t.Error("months should be ordered newest first")
	}
}

func TestFormatTextEmpty(t *testing.T) {
	report := FormatText(nil, time.Date(2025, time.August, 20, 0, 0, 0, 0, time.UTC))
	if !strings.Contains(report, "No expenses recorded yet.") {
		t.Errorf("empty report should carry placeholder text:\n%s", report)
	}
}

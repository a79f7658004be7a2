package email

import (
	"strings"
	"testing"
)

func TestAlertSubject(t *testing.T) {
	tests := []struct {
		name     string
		alert    BudgetAlert
		contains string
	}{
		{
			name:     "warning mentions percentage",
			alert:    BudgetAlert{Level: LevelWarning, PercentUsed: 82},
			contains: "82% of your monthly budget",
		},
		{
			name:     "exceeded mentions both amounts",
			alert:    BudgetAlert{Level: LevelExceeded, Spent: 1250.50, Budget: 1000, Month: "August 2025"},
			contains: "$1250.50 of $1000.00",
		},
		{
			name:     "unusual mentions the month",
			alert:    BudgetAlert{Level: LevelUnusual, Month: "August 2025"},
			contains: "Unusual spending detected in August 2025",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := alertSubject(tt.alert)
			if !strings.Contains(got, tt.contains) {
				t.Errorf("alertSubject() = %q, want it to contain %q", got, tt.contains)
			}
		})
	}
}

func TestRenderAlert(t *testing.T) {
	alert := BudgetAlert{
		Level:       LevelExceeded,
		Month:       "August 2025",
		Spent:       1250.5,
		Budget:      1000,
		PercentUsed: 125,
		UnusualExpenses: []string{
			"2025-08-14 - Shopping: $500.00",
		},
		Recommendations: []string{
			"Pause non-essential purchases until next month",
		},
	}

	body, err := renderAlert(alert)
	if err != nil {
		t.Fatalf("renderAlert() error = %v", err)
	}

	for _, want := range []string{
		"You went over budget",
		"August 2025",
		"$1250.50",
		"$1000.00",
		"125%",
		"2025-08-14 - Shopping: $500.00",
		"Pause non-essential purchases",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("rendered alert missing %q", want)
		}
	}
}

func TestRenderAlertOmitsEmptySections(t *testing.T) {
	body, err := renderAlert(BudgetAlert{Level: LevelWarning, Month: "August 2025", Spent: 800, Budget: 1000, PercentUsed: 80})
	if err != nil {
		t.Fatalf("renderAlert() error = %v", err)
	}
	if strings.Contains(body, "Expenses that stood out") {
		t.Error("rendered alert should omit the unusual expenses section when empty")
	}
	if strings.Contains(body, "Suggestions") {
		t.Error("rendered alert should omit the suggestions section when empty")
	}
}

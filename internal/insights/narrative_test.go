package insights

import (
	"strings"
	"testing"
	"time"

	"spendwise/internal/core"
)

func TestParseRecommendations(t *testing.T) {
	t.Run("keeps only bullet lines", func(t *testing.T) {
		text := "Here are your recommendations:\n" +
			"• Cut your dining budget by a significant amount\n" +
			"some commentary in between\n" +
			"  • Invest the difference in an index fund\n" +
			"• Review your loan payment schedule\n"

		recs := ParseRecommendations(text)
		if len(recs) != 3 {
			t.Fatalf("expected 3 recommendations, got %d", len(recs))
		}
		if recs[0].Text != "Cut your dining budget by a significant amount" {
			t.Fatalf("bullet not stripped: %q", recs[0].Text)
		}
	})

	t.Run("caps at five", func(t *testing.T) {
		var b strings.Builder
		for i := 0; i < 8; i++ {
			b.WriteString("• do the thing\n")
		}
		if got := ParseRecommendations(b.String()); len(got) != 5 {
			t.Fatalf("expected cap at 5, got %d", len(got))
		}
	})

	t.Run("no bullets is a valid empty result", func(t *testing.T) {
		if got := ParseRecommendations("nothing actionable today"); len(got) != 0 {
			t.Fatalf("expected empty result, got %v", got)
		}
	})

	t.Run("ids are unique within a generation", func(t *testing.T) {
		recs := ParseRecommendations("• one\n• two\n• three\n")
		seen := make(map[string]bool)
		for _, r := range recs {
			if seen[r.ID] {
				t.Fatalf("duplicate id %s", r.ID)
			}
			seen[r.ID] = true
		}
	})
}

func TestCategorizeRecommendation(t *testing.T) {
	cases := []struct {
		text string
		want string
	}{
		{"Reduce your grocery spending", "Savings"},
		{"Find a side income stream", "Income"},
		{"Invest in a diversified portfolio", "Investment"},
		{"Pay down your credit card debt", "Debt"},
		{"Build a daily tracking habit", "Lifestyle"},
		{"Nothing matches here", "General"},
	}

	for _, tc := range cases {
		if got := categorizeRecommendation(tc.text); got != tc.want {
			t.Fatalf("%q: expected %s, got %s", tc.text, tc.want, got)
		}
	}
}

func TestEstimateImpact(t *testing.T) {
	cases := []struct {
		text string
		want int
	}{
		{"This brings significant savings", 3},
		{"A moderate improvement", 2},
		{"A slight tweak", 1},
		{"No qualifier at all", 1},
	}

	for _, tc := range cases {
		if got := estimateImpact(tc.text); got != tc.want {
			t.Fatalf("%q: expected %d, got %d", tc.text, tc.want, got)
		}
	}
}

func TestBuildContextBlock(t *testing.T) {
	now := day(2025, time.August, 10)
	data := ExpenseData{
		MonthlyBudget: 1500,
		Expenses: []core.ExpenseRecord{
			expense(200, "Food & Dining", "groceries", day(2025, time.August, 2)),
			expense(100, "Shopping", "shoes", day(2025, time.August, 5)),
		},
		TopCategories: []core.CategoryTotal{
			{Category: "Food & Dining", Total: 200},
			{Category: "Shopping", Total: 100},
		},
	}

	block := buildContextBlock(data, now)

	for _, want := range []string{
		"Current Monthly Budget: $1500.00",
		"Total Spent This Month: $300.00",
		"Daily Average: $30.00",
		"Food & Dining: $200.00",
		"2025-08-05 - Shopping: $100.00",
	} {
		if !strings.Contains(block, want) {
			t.Fatalf("context block missing %q:\n%s", want, block)
		}
	}
}

func TestBuildInsightsPromptAsksForBullets(t *testing.T) {
	prompt := buildInsightsPrompt(ExpenseData{MonthlyBudget: 1000}, 250, 300)
	if !strings.Contains(prompt, "bullet point (•)") {
		t.Fatalf("prompt must request bullet formatting:\n%s", prompt)
	}
	if !strings.Contains(prompt, "Current Month Spending: $250.00") {
		t.Fatalf("prompt missing month spending:\n%s", prompt)
	}
}

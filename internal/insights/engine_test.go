package insights

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"spendwise/internal/core"
)

type fakeGenerator struct {
	response string
	err      error
	calls    int
	prompts  []string
}

func (f *fakeGenerator) GenerateText(ctx context.Context, prompt string) (string, error) {
	f.calls++
	f.prompts = append(f.prompts, prompt)
	return f.response, f.err
}

func newTestEngine(gen *fakeGenerator, now time.Time) *Engine {
	e := NewEngine(gen)
	e.Now = func() time.Time { return now }
	return e
}

func TestGenerateInsightsColdStart(t *testing.T) {
	gen := &fakeGenerator{response: "• should never be used"}
	engine := newTestEngine(gen, day(2025, time.August, 29))

	got, err := engine.GenerateInsights(context.Background(), ExpenseData{MonthlyBudget: 1200})
	if err != nil {
		t.Fatalf("cold start must not fail: %v", err)
	}
	if gen.calls != 0 {
		t.Fatalf("cold start must not call the AI collaborator, got %d calls", gen.calls)
	}
	if got.TotalSaved != 0 || got.PotentialSavings != 0 {
		t.Fatalf("expected zeroed savings, got %+v", got)
	}
	if len(got.Recommendations) != 1 || got.Recommendations[0].Category != "Getting Started" {
		t.Fatalf("expected single onboarding recommendation, got %+v", got.Recommendations)
	}
	if len(got.BudgetPlans) != 1 || got.BudgetPlans[0].Category != "Getting Started" {
		t.Fatalf("expected single starter plan, got %+v", got.BudgetPlans)
	}
	if got.RecommendationStats.Total != 1 || got.RecommendationStats.Pending != 1 {
		t.Fatalf("unexpected stats: %+v", got.RecommendationStats)
	}
}

func TestGenerateInsightsFullReport(t *testing.T) {
	now := day(2025, time.August, 29)
	gen := &fakeGenerator{response: "Summary first.\n\n" +
		"• Reduce dining out for substantial savings\n" +
		"• Review your Netflix subscription\n"}
	engine := newTestEngine(gen, now)

	expenses := []core.ExpenseRecord{
		expense(300, "Food & Dining", "groceries", day(2025, time.June, 3)),
		expense(300, "Food & Dining", "groceries", day(2025, time.July, 3)),
		expense(300, "Food & Dining", "groceries", day(2025, time.August, 3)),
		expense(60, "Entertainment", "Netflix subscription", day(2025, time.August, 4)),
	}
	data := ExpenseData{
		Expenses:      expenses,
		MonthlyBudget: 1000,
		Categories:    []string{"Food & Dining", "Entertainment"},
		TopCategories: TopCategories(expenses, 5),
	}

	got, err := engine.GenerateInsights(context.Background(), data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gen.calls != 1 {
		t.Fatalf("expected exactly one AI call, got %d", gen.calls)
	}
	if got.TopExpenseCategory != "Food & Dining" {
		t.Fatalf("expected top category Food & Dining, got %s", got.TopExpenseCategory)
	}
	if len(got.Recommendations) != 2 {
		t.Fatalf("expected 2 parsed recommendations, got %d", len(got.Recommendations))
	}
	if got.RecommendationStats.Total != 2 || got.RecommendationStats.Pending != 2 || got.RecommendationStats.Completed != 0 {
		t.Fatalf("unexpected stats: %+v", got.RecommendationStats)
	}
	// Months: 300, 300, 360 -> average 320; current month 360; nothing saved.
	if got.TotalSaved != 0 {
		t.Fatalf("expected totalSaved 0, got %v", got.TotalSaved)
	}
	if !almostEqual(got.MonthOverMonthGrowth, 20) {
		t.Fatalf("expected 20%% growth, got %v", got.MonthOverMonthGrowth)
	}
	if !almostEqual(got.PredictedExpenses, 320) {
		t.Fatalf("expected prediction 320, got %v", got.PredictedExpenses)
	}
	if len(got.BudgetPlans) != 2 {
		t.Fatalf("expected 2 budget plans, got %d", len(got.BudgetPlans))
	}
	// The Netflix description triggers the subscriptions opportunity.
	foundSubscriptions := false
	for _, opp := range got.SavingOpportunities {
		if opp.Category == "Subscriptions" {
			foundSubscriptions = true
		}
	}
	if !foundSubscriptions {
		t.Fatalf("expected a Subscriptions opportunity in %+v", got.SavingOpportunities)
	}
}

func TestGenerateInsightsEmptyAIResponse(t *testing.T) {
	gen := &fakeGenerator{response: ""}
	engine := newTestEngine(gen, day(2025, time.August, 29))
	data := ExpenseData{
		Expenses: []core.ExpenseRecord{
			expense(100, "Food & Dining", "groceries", day(2025, time.August, 3)),
		},
	}

	_, err := engine.GenerateInsights(context.Background(), data)
	if !errors.Is(err, ErrEmptyResponse) {
		t.Fatalf("expected ErrEmptyResponse, got %v", err)
	}
}

func TestGenerateInsightsPropagatesAIError(t *testing.T) {
	wantErr := errors.New("model unavailable")
	gen := &fakeGenerator{err: wantErr}
	engine := newTestEngine(gen, day(2025, time.August, 29))
	data := ExpenseData{
		Expenses: []core.ExpenseRecord{
			expense(100, "Food & Dining", "groceries", day(2025, time.August, 3)),
		},
	}

	_, err := engine.GenerateInsights(context.Background(), data)
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected wrapped model error, got %v", err)
	}
}

func TestAnalyzeExpenses(t *testing.T) {
	now := day(2025, time.August, 29)

	t.Run("cold start short-circuits", func(t *testing.T) {
		gen := &fakeGenerator{response: "ignored"}
		engine := newTestEngine(gen, now)
		answer, err := engine.AnalyzeExpenses(context.Background(), "where does my money go?", ExpenseData{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if gen.calls != 0 {
			t.Fatal("no-expense analysis must not call the AI collaborator")
		}
		if answer == "" {
			t.Fatal("expected onboarding answer")
		}
	})

	t.Run("question reaches the prompt", func(t *testing.T) {
		gen := &fakeGenerator{response: "You spend most on dining."}
		engine := newTestEngine(gen, now)
		data := ExpenseData{
			Expenses: []core.ExpenseRecord{
				expense(100, "Food & Dining", "groceries", day(2025, time.August, 3)),
			},
		}
		answer, err := engine.AnalyzeExpenses(context.Background(), "what is my top category?", data)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if answer != "You spend most on dining." {
			t.Fatalf("unexpected answer %q", answer)
		}
		if len(gen.prompts) != 1 || !strings.Contains(gen.prompts[0], "what is my top category?") {
			t.Fatalf("question missing from prompt: %v", gen.prompts)
		}
	})
}

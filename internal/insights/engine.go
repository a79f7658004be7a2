package insights

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"
)

// TextGenerator is the outbound generative-AI collaborator: one prompt
// in, one text completion out. Model identity, token limits and retries
// are the implementation's business.
type TextGenerator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// ErrEmptyResponse is returned when the AI collaborator answers with an
// empty completion; insight generation fails rather than degrading.
var ErrEmptyResponse = errors.New("empty response from AI model")

// Engine runs the analytics pipeline. It holds no per-user state; every
// call recomputes everything from the supplied snapshot.
type Engine struct {
	generator TextGenerator

	// Now supplies the wall clock; tests pin it for determinism.
	Now func() time.Time
}

func NewEngine(generator TextGenerator) *Engine {
	return &Engine{
		generator: generator,
		Now:       time.Now,
	}
}

// GenerateInsights produces the full analytics report for one user's
// expense snapshot. With zero expenses it returns the onboarding report
// without calling the AI collaborator.
func (e *Engine) GenerateInsights(ctx context.Context, data ExpenseData) (Insights, error) {
	now := e.Now()

	if len(data.Expenses) == 0 {
		return coldStartInsights(data), nil
	}

	monthlyTotals := MonthlyTotals(data.Expenses)
	averageMonthlySpend := AverageMonthlySpend(monthlyTotals)
	currentMonthTotal := CurrentMonthTotal(data.Expenses, now)
	totalSaved := math.Max(0, averageMonthlySpend-currentMonthTotal)
	potential := IdentifyPotentialSavings(data, now)

	topCategory := "No expenses yet"
	if len(data.TopCategories) > 0 {
		topCategory = data.TopCategories[0].Category
	}

	prompt := buildInsightsPrompt(data, currentMonthTotal, averageMonthlySpend)
	text, err := e.generator.GenerateText(ctx, prompt)
	if err != nil {
		return Insights{}, fmt.Errorf("generate insights: %w", err)
	}
	if text == "" {
		return Insights{}, ErrEmptyResponse
	}

	recommendations := ParseRecommendations(text)

	return Insights{
		TotalSaved:         totalSaved,
		PotentialSavings:   potential.Total,
		TopExpenseCategory: topCategory,
		UnusualExpenses:    UnusualExpenses(data.Expenses, now),
		Recommendations:    recommendations,
		RecommendationStats: RecommendationStats{
			Total:   len(recommendations),
			Pending: len(recommendations),
		},
		MonthOverMonthGrowth: MonthOverMonthGrowth(monthlyTotals),
		PredictedExpenses:    PredictNextMonthExpenses(monthlyTotals),
		SavingOpportunities:  potential.Opportunities,
		Insights:             splitInsightParagraphs(text),
		BudgetPlans:          GenerateBudgetPlans(data, now),
	}, nil
}

// AnalyzeExpenses answers an ad-hoc question about the expense data.
// With zero expenses it short-circuits with the onboarding answer.
func (e *Engine) AnalyzeExpenses(ctx context.Context, question string, data ExpenseData) (string, error) {
	if len(data.Expenses) == 0 {
		return "I don't see any expenses recorded yet. Start by adding some expenses, and I'll help you analyze your spending patterns!", nil
	}

	prompt := buildAnalysisPrompt(question, data, e.Now())
	text, err := e.generator.GenerateText(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("analyze expenses: %w", err)
	}
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

// coldStartInsights is the fixed zero-expense report: one onboarding
// recommendation, one starter budget plan, everything else zeroed.
func coldStartInsights(data ExpenseData) Insights {
	rec := Recommendation{
		ID:       "rec_getting_started",
		Text:     "Start by adding your first expense to get personalized recommendations",
		Category: "Getting Started",
		Impact:   1,
	}
	return Insights{
		TopExpenseCategory: "No expenses yet",
		Recommendations:    []Recommendation{rec},
		RecommendationStats: RecommendationStats{
			Total:   1,
			Pending: 1,
		},
		SavingOpportunities: []SavingOpportunity{},
		Insights:            []string{"Start tracking your expenses to get AI-powered insights"},
		BudgetPlans:         []BudgetPlan{starterPlan(data.MonthlyBudget)},
	}
}

package insights

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// systemContext primes the model on the application's purpose before any
// expense data or question is appended.
const systemContext = `You are an AI Financial Assistant for an expense tracking application.
You help users understand their spending patterns, provide financial advice, and suggest ways to save money.
You have access to their expense data and can analyze patterns and trends.
Always be specific, practical, and data-driven in your responses.
Format currency values appropriately and be precise with numbers.
Consider monthly budgets, expense categories, and spending trends in your analysis.`

const recentExpenseLimit = 5

// maxRecommendations caps how many bullet lines are turned into
// recommendations per generation.
const maxRecommendations = 5

var recommendationCategories = []struct {
	Name     string
	Keywords []string
}{
	{"Savings", []string{"save", "reduce", "cut", "lower", "budget"}},
	{"Income", []string{"earn", "income", "revenue", "salary"}},
	{"Investment", []string{"invest", "portfolio", "stock", "fund"}},
	{"Debt", []string{"debt", "loan", "credit", "payment"}},
	{"Lifestyle", []string{"habit", "routine", "daily", "lifestyle"}},
}

var impactKeywords = []struct {
	Score int
	Words []string
}{
	{3, []string{"significant", "substantial", "major", "considerable"}},
	{2, []string{"moderate", "reasonable", "decent"}},
	{1, []string{"small", "minor", "slight"}},
}

// buildContextBlock summarizes the expense data as plain text for the
// model: budget, month-to-date spend, daily average, top categories and
// the most recent expenses.
func buildContextBlock(data ExpenseData, now time.Time) string {
	totalSpent := CurrentMonthTotal(data.Expenses, now)
	averageDaily := 0.0
	if day := now.Day(); day > 0 {
		averageDaily = totalSpent / float64(day)
	}

	var top []string
	for _, c := range data.TopCategories {
		top = append(top, fmt.Sprintf("%s: %s", c.Category, formatCurrency(c.Total)))
	}

	recent := data.RecentExpenses
	if len(recent) == 0 {
		recent = data.Expenses
	}
	if len(recent) > recentExpenseLimit {
		recent = recent[:recentExpenseLimit]
	}
	var recentLines []string
	for _, e := range recent {
		recentLines = append(recentLines, fmt.Sprintf("%s - %s: %s",
			e.Date.Format("2006-01-02"), e.Category, formatCurrency(e.Amount)))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Current Monthly Budget: %s\n", formatCurrency(data.MonthlyBudget))
	fmt.Fprintf(&b, "Total Spent This Month: %s\n", formatCurrency(totalSpent))
	fmt.Fprintf(&b, "Daily Average: %s\n", formatCurrency(averageDaily))
	fmt.Fprintf(&b, "Top Spending Categories: %s\n", strings.Join(top, ", "))
	fmt.Fprintf(&b, "Recent Expenses: %s\n", strings.Join(recentLines, ", "))
	return b.String()
}

// buildAnalysisPrompt composes the Q&A prompt: system context, data
// context, then the user's free-text question.
func buildAnalysisPrompt(question string, data ExpenseData, now time.Time) string {
	return systemContext + "\n\nContext:\n" + buildContextBlock(data, now) +
		"\nUser Question: " + question +
		"\n\nProvide a detailed, specific answer based on the data provided:"
}

// buildInsightsPrompt composes the recommendation prompt, asking for 3-5
// bullet-pointed recommendations over the aggregated figures.
func buildInsightsPrompt(data ExpenseData, currentMonthTotal, averageMonthlySpend float64) string {
	var top []string
	for _, c := range data.TopCategories {
		top = append(top, fmt.Sprintf("%s: %s", c.Category, formatCurrency(c.Total)))
	}

	var b strings.Builder
	b.WriteString(systemContext)
	b.WriteString("\nAnalyze this financial data and provide 3-5 specific, actionable recommendations:\n")
	fmt.Fprintf(&b, "Monthly Budget: %s\n", formatCurrency(data.MonthlyBudget))
	fmt.Fprintf(&b, "Current Month Spending: %s\n", formatCurrency(currentMonthTotal))
	fmt.Fprintf(&b, "Average Monthly Spending: %s\n", formatCurrency(averageMonthlySpend))
	fmt.Fprintf(&b, "Top Categories: %s\n", strings.Join(top, ", "))
	b.WriteString(`
Format each recommendation as a bullet point (•) and make them specific and actionable.
Focus on:
1. Immediate saving opportunities
2. Spending habit improvements
3. Budget optimization
4. Category-specific advice`)
	return b.String()
}

// ParseRecommendations extracts bullet lines ("•") from the model's
// free-text response and assigns each an id, heuristic category and
// impact score. No bullet lines is a valid empty result, not an error.
func ParseRecommendations(text string) []Recommendation {
	var recs []Recommendation
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, "•") {
			continue
		}
		body := strings.TrimSpace(strings.TrimPrefix(trimmed, "•"))
		recs = append(recs, Recommendation{
			ID:       "rec_" + uuid.NewString(),
			Text:     body,
			Category: categorizeRecommendation(body),
			Impact:   estimateImpact(body),
		})
		if len(recs) == maxRecommendations {
			break
		}
	}
	return recs
}

func categorizeRecommendation(text string) string {
	lower := strings.ToLower(text)
	for _, c := range recommendationCategories {
		for _, kw := range c.Keywords {
			if strings.Contains(lower, kw) {
				return c.Name
			}
		}
	}
	return "General"
}

func estimateImpact(text string) int {
	lower := strings.ToLower(text)
	for _, tier := range impactKeywords {
		for _, w := range tier.Words {
			if strings.Contains(lower, w) {
				return tier.Score
			}
		}
	}
	return 1
}

// splitInsightParagraphs turns the raw response into display paragraphs.
func splitInsightParagraphs(text string) []string {
	return strings.Split(text, "\n\n")
}

func formatCurrency(amount float64) string {
	return fmt.Sprintf("$%.2f", amount)
}

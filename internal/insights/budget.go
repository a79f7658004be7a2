package insights

import (
	"fmt"
	"math"
	"sort"
	"time"

	"spendwise/internal/core"
)

// budgetReductionTarget is the uniform cut applied to every category's
// monthly average when recommending a budget.
const budgetReductionTarget = 0.9

var categoryTips = map[string][]string{
	"Food & Dining": {
		"Plan your meals for the week",
		"Cook in bulk and freeze portions",
		"Use grocery store loyalty programs",
		"Compare prices across different stores",
		"Limit dining out to special occasions",
	},
	"Transportation": {
		"Consider carpooling options",
		"Use public transportation when possible",
		"Combine errands to save on fuel",
		"Keep up with vehicle maintenance",
		"Walk or bike for short distances",
	},
	"Shopping": {
		"Make a list and stick to it",
		"Wait 24 hours before large purchases",
		"Look for sales and discounts",
		"Compare prices online",
		"Unsubscribe from promotional emails",
	},
	"Entertainment": {
		"Look for free local events",
		"Use streaming services instead of cable",
		"Take advantage of happy hours",
		"Check for student/senior discounts",
		"Host gatherings at home",
	},
	"Utilities": {
		"Install energy-efficient bulbs",
		"Use a programmable thermostat",
		"Fix leaky faucets promptly",
		"Unplug devices when not in use",
		"Consider energy audit",
	},
}

var defaultTips = []string{
	"Track expenses daily",
	"Set up spending alerts",
	"Review monthly statements",
	"Look for cheaper alternatives",
	"Create a specific budget",
}

// GenerateBudgetPlans builds one plan per observed category, ranked by
// saving potential. With no expenses it returns the onboarding plan;
// with malformed records it returns the synthetic error plan instead of
// propagating.
func GenerateBudgetPlans(data ExpenseData, now time.Time) []BudgetPlan {
	if len(data.Expenses) == 0 {
		return []BudgetPlan{starterPlan(data.MonthlyBudget)}
	}

	byCategory := make(map[string][]core.ExpenseRecord)
	for _, e := range data.Expenses {
		if err := e.Validate(); err != nil {
			return []BudgetPlan{errorPlan()}
		}
		byCategory[e.Category] = append(byCategory[e.Category], e)
	}

	plans := make([]BudgetPlan, 0, len(byCategory))
	for category, expenses := range byCategory {
		var total float64
		for _, e := range expenses {
			total += e.Amount
		}
		monthlyAverage := total / observationMonths
		recommended := math.Round(monthlyAverage * budgetReductionTarget)

		plans = append(plans, BudgetPlan{
			Category:          category,
			CurrentSpend:      monthlyAverage,
			RecommendedBudget: recommended,
			AdjustmentReason:  budgetReason(monthlyAverage, recommended),
			SavingPotential:   math.Max(0, monthlyAverage-recommended),
			MonthlyTarget:     recommended,
			WeeklyAllowance:   math.Round(recommended / 4),
			Confidence:        budgetConfidence(expenses, now),
			Tips:              tipsFor(category),
		})
	}

	sort.SliceStable(plans, func(i, j int) bool {
		return plans[i].SavingPotential > plans[j].SavingPotential
	})
	return plans
}

// budgetReason maps the relative reduction to a qualitative message.
// With the fixed 10% target the moderate tier is the one that fires;
// the other tiers are kept for compatibility with the reference tables.
func budgetReason(current, recommended float64) string {
	if current <= 0 {
		return "Current spending is within optimal range"
	}
	percentChange := (current - recommended) / current * 100
	rounded := math.Round(percentChange)
	switch {
	case percentChange > 20:
		return fmt.Sprintf("High potential for savings - consider reducing spending by %.0f%%", rounded)
	case percentChange > 10:
		return fmt.Sprintf("Moderate savings possible - aim to reduce spending by %.0f%%", rounded)
	case percentChange > 0:
		return fmt.Sprintf("Minor adjustments recommended - fine-tune spending by %.0f%%", rounded)
	default:
		return "Current spending is within optimal range"
	}
}

// budgetConfidence scores a plan 0-95 from data volume, spending
// consistency and recency of the category's expenses.
func budgetConfidence(expenses []core.ExpenseRecord, now time.Time) int {
	dataPoints := math.Min(float64(len(expenses))*5, 40)

	amounts := make([]float64, len(expenses))
	for i, e := range expenses {
		amounts[i] = e.Amount
	}
	avg := meanOf(amounts)
	consistency := 0.0
	if avg > 0 {
		variance := populationVariance(amounts, avg)
		consistency = math.Max(0, 40-(variance/avg)*10)
	}

	mostRecent := expenses[0].Date
	for _, e := range expenses[1:] {
		if e.Date.After(mostRecent) {
			mostRecent = e.Date
		}
	}
	daysSinceLatest := now.Sub(mostRecent).Hours() / 24
	recency := math.Max(0, 20-daysSinceLatest)

	return int(math.Min(95, math.Round(dataPoints+consistency+recency)))
}

func tipsFor(category string) []string {
	tips, ok := categoryTips[category]
	if !ok {
		tips = defaultTips
	}
	return tips[:3]
}

// starterPlan is the cold-start plan when no expenses exist yet. The
// caller's budget (or 1000 when unset) becomes both current target and
// recommendation.
func starterPlan(monthlyBudget float64) BudgetPlan {
	budget := monthlyBudget
	if budget == 0 {
		budget = 1000
	}
	return BudgetPlan{
		Category:          "Getting Started",
		CurrentSpend:      0,
		RecommendedBudget: budget,
		AdjustmentReason:  "Start tracking your expenses to get personalized budgets",
		SavingPotential:   0,
		MonthlyTarget:     budget,
		WeeklyAllowance:   math.Round(budget / 4),
		Confidence:        0,
		Tips: []string{
			"Start adding your daily expenses",
			"Categorize each expense properly",
			"Set realistic budget goals",
		},
	}
}

func errorPlan() BudgetPlan {
	return BudgetPlan{
		Category:         "Error",
		AdjustmentReason: "Error generating budget plans",
		Tips: []string{
			"Try refreshing the page",
			"Contact support if the error persists",
		},
	}
}

package insights

import (
	"math"
	"sort"
	"time"

	"spendwise/internal/core"
)

// savingHeuristic is one entry of the data-driven category table: how
// much of the average spend is realistically cuttable and how.
type savingHeuristic struct {
	Percentage float64
	Suggestion string
	Details    []string
	Difficulty int
}

var savingsByCategory = map[string]savingHeuristic{
	"Food & Dining": {
		Percentage: 0.30,
		Suggestion: "Optimize your food spending with meal planning and smart shopping",
		Details: []string{
			"Plan meals weekly to reduce food waste",
			"Buy groceries in bulk when on sale",
			"Cook meals at home instead of eating out",
		},
		Difficulty: 2,
	},
	"Shopping": {
		Percentage: 0.25,
		Suggestion: "Implement strategic shopping habits to reduce unnecessary expenses",
		Details: []string{
			"Use price comparison tools",
			"Wait for sales on non-essential items",
			"Implement a 24-hour rule for purchases",
		},
		Difficulty: 1,
	},
	"Entertainment": {
		Percentage: 0.35,
		Suggestion: "Find more cost-effective entertainment options",
		Details: []string{
			"Look for free local events",
			"Use entertainment passes and memberships",
			"Share subscription services with family",
		},
		Difficulty: 1,
	},
	"Transportation": {
		Percentage: 0.20,
		Suggestion: "Optimize your transportation costs",
		Details: []string{
			"Use public transportation when possible",
			"Combine errands to save fuel",
			"Consider carpooling options",
		},
		Difficulty: 2,
	},
}

var defaultSavingHeuristic = savingHeuristic{
	Percentage: 0.15,
	Suggestion: "Review and optimize spending in this category",
	Details: []string{
		"Track expenses more closely",
		"Look for more affordable alternatives",
		"Set a specific budget",
	},
	Difficulty: 2,
}

// minOpportunityAmount suppresses noise: savings below this absolute
// amount are not worth surfacing, regardless of budget size.
const minOpportunityAmount = 50

// PotentialSavings holds the ranked opportunities and their rounded sum.
type PotentialSavings struct {
	Total         float64
	Opportunities []SavingOpportunity
}

// IdentifyPotentialSavings evaluates each top category against the
// heuristic table, adds the cross-cutting subscription and utility
// opportunities, and ranks everything by amount descending.
func IdentifyPotentialSavings(data ExpenseData, now time.Time) PotentialSavings {
	var opportunities []SavingOpportunity
	var total float64

	for _, category := range data.TopCategories {
		avgSpend := category.Total / observationMonths
		heuristic, ok := savingsByCategory[category.Category]
		if !ok {
			heuristic = defaultSavingHeuristic
		}
		amount := avgSpend * heuristic.Percentage
		if amount < minOpportunityAmount {
			continue
		}
		opportunities = append(opportunities, SavingOpportunity{
			Category:   category.Category,
			Amount:     math.Round(amount),
			Suggestion: heuristic.Suggestion,
			Details:    heuristic.Details,
			Difficulty: heuristic.Difficulty,
			Impact:     savingImpact(amount, avgSpend),
		})
		total += amount
	}

	general := generalOpportunities(data.Expenses, now)
	opportunities = append(opportunities, general...)
	for _, opp := range general {
		total += opp.Amount
	}

	sort.SliceStable(opportunities, func(i, j int) bool {
		return opportunities[i].Amount > opportunities[j].Amount
	})

	return PotentialSavings{
		Total:         math.Round(total),
		Opportunities: opportunities,
	}
}

// generalOpportunities adds the keyword-driven opportunities that cut
// across categories: subscriptions (5% of the current month) and
// utilities (3%). These bypass the minimum-amount floor.
func generalOpportunities(expenses []core.ExpenseRecord, now time.Time) []SavingOpportunity {
	var opportunities []SavingOpportunity
	monthlyTotal := CurrentMonthTotal(expenses, now)

	if HasSubscriptionExpenses(expenses) {
		opportunities = append(opportunities, SavingOpportunity{
			Category:   "Subscriptions",
			Amount:     monthlyTotal * 0.05,
			Suggestion: "Review and optimize your subscription services",
			Details: []string{
				"Audit all active subscriptions",
				"Cancel unused services",
				"Look for bundle deals",
			},
			Difficulty: 1,
			Impact:     65,
		})
	}

	if HasUtilityExpenses(expenses) {
		opportunities = append(opportunities, SavingOpportunity{
			Category:   "Utilities",
			Amount:     monthlyTotal * 0.03,
			Suggestion: "Reduce utility costs with simple changes",
			Details: []string{
				"Use energy-efficient appliances",
				"Optimize thermostat settings",
				"Fix any leaks or inefficiencies",
			},
			Difficulty: 2,
			Impact:     75,
		})
	}

	return opportunities
}

// savingImpact scores an opportunity by the share of the category's
// spend it would recover. The tiers intentionally mirror the table's
// reduction percentages.
func savingImpact(savingAmount, totalSpend float64) int {
	if totalSpend == 0 {
		return 45
	}
	percentage := savingAmount / totalSpend * 100
	switch {
	case percentage >= 25:
		return 90
	case percentage >= 15:
		return 75
	case percentage >= 10:
		return 60
	default:
		return 45
	}
}

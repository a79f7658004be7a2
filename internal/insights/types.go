// Package insights implements the expense analytics and recommendation
// engine: monthly/category aggregation, statistical pattern detection,
// heuristic saving estimates, budget planning and AI-assisted narrative
// recommendations. The engine is stateless; every call recomputes all
// derived values from the supplied expense snapshot.
package insights

import (
	"spendwise/internal/core"
)

// ExpenseData is the engine input assembled by the caller: the user's
// expense history plus precomputed context for the AI prompt.
type ExpenseData struct {
	Expenses       []core.ExpenseRecord
	MonthlyBudget  float64
	Categories     []string
	TopCategories  []core.CategoryTotal
	RecentExpenses []core.ExpenseRecord
}

// SavingOpportunity is one ranked suggestion to cut spending in a category.
type SavingOpportunity struct {
	Category   string   `json:"category"`
	Amount     float64  `json:"amount"`
	Suggestion string   `json:"suggestion"`
	Details    []string `json:"details"`
	Difficulty int      `json:"difficulty"` // 1-3
	Impact     int      `json:"impact"`     // 0-100
}

// BudgetPlan is a recommended monthly budget for one category.
type BudgetPlan struct {
	Category          string   `json:"category"`
	CurrentSpend      float64  `json:"currentSpend"`
	RecommendedBudget float64  `json:"recommendedBudget"`
	AdjustmentReason  string   `json:"adjustmentReason"`
	SavingPotential   float64  `json:"savingPotential"`
	MonthlyTarget     float64  `json:"monthlyTarget"`
	WeeklyAllowance   float64  `json:"weeklyAllowance"`
	Confidence        int      `json:"confidence"` // 0-95
	Tips              []string `json:"tips"`
}

// Recommendation is one AI-authored, user-completable suggestion. It is
// a core type because the HTTP and storage layers persist it between
// generations.
type Recommendation = core.Recommendation

// RecommendationStats summarizes the recommendation set.
type RecommendationStats struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
	Pending   int `json:"pending"`
}

// Insights is the full analytics report returned to the caller.
type Insights struct {
	TotalSaved           float64              `json:"totalSaved"`
	PotentialSavings     float64              `json:"potentialSavings"`
	TopExpenseCategory   string               `json:"topExpenseCategory"`
	UnusualExpenses      []core.ExpenseRecord `json:"unusualExpenses"`
	Recommendations      []Recommendation     `json:"recommendations"`
	RecommendationStats  RecommendationStats  `json:"recommendationStats"`
	MonthOverMonthGrowth float64              `json:"monthOverMonthGrowth"`
	PredictedExpenses    float64              `json:"predictedExpenses"`
	SavingOpportunities  []SavingOpportunity  `json:"savingOpportunities"`
	Insights             []string             `json:"insights"`
	BudgetPlans          []BudgetPlan         `json:"budgetPlans"`
}

// observationMonths is the fixed lookback window assumed when turning
// category totals into monthly averages. It is not derived from the
// actual date range of the data.
const observationMonths = 3

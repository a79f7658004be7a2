package insights

import (
	"math"
	"strings"
	"time"

	"spendwise/internal/core"
)

var (
	subscriptionKeywords = []string{"subscription", "netflix", "spotify", "membership", "monthly"}
	utilityKeywords      = []string{"utility", "electric", "water", "gas", "internet", "phone"}
)

// UnusualExpenses returns the current month's expenses whose amount
// exceeds the month's mean by more than two population standard
// deviations. With fewer than two expenses in the month no meaningful
// deviation exists and the result is empty.
func UnusualExpenses(expenses []core.ExpenseRecord, now time.Time) []core.ExpenseRecord {
	thisMonth := CurrentMonthExpenses(expenses, now)
	if len(thisMonth) < 2 {
		return nil
	}

	amounts := make([]float64, len(thisMonth))
	for i, e := range thisMonth {
		amounts[i] = e.Amount
	}
	mean := meanOf(amounts)
	stdDev := math.Sqrt(populationVariance(amounts, mean))

	threshold := mean + 2*stdDev
	var unusual []core.ExpenseRecord
	for _, e := range thisMonth {
		if e.Amount > threshold {
			unusual = append(unusual, e)
		}
	}
	return unusual
}

// HasSubscriptionExpenses reports whether any expense description
// mentions a subscription-style keyword (case-insensitive substring).
func HasSubscriptionExpenses(expenses []core.ExpenseRecord) bool {
	return anyDescriptionContains(expenses, subscriptionKeywords)
}

// HasUtilityExpenses reports whether any expense description mentions a
// utility-style keyword.
func HasUtilityExpenses(expenses []core.ExpenseRecord) bool {
	return anyDescriptionContains(expenses, utilityKeywords)
}

func anyDescriptionContains(expenses []core.ExpenseRecord, keywords []string) bool {
	for _, e := range expenses {
		desc := strings.ToLower(e.Description)
		for _, kw := range keywords {
			if strings.Contains(desc, kw) {
				return true
			}
		}
	}
	return false
}

// MonthOverMonthGrowth compares the two most recent monthly totals as a
// percentage. Zero when fewer than two months exist or the previous
// month's total is zero.
func MonthOverMonthGrowth(monthlyTotals map[string]float64) float64 {
	keys := sortedMonthKeys(monthlyTotals)
	if len(keys) < 2 {
		return 0
	}
	current := monthlyTotals[keys[len(keys)-1]]
	previous := monthlyTotals[keys[len(keys)-2]]
	if previous == 0 {
		return 0
	}
	return (current - previous) / previous * 100
}

// PredictNextMonthExpenses is a moving average over the last three
// monthly totals. With a single month it returns that month's total.
func PredictNextMonthExpenses(monthlyTotals map[string]float64) float64 {
	keys := sortedMonthKeys(monthlyTotals)
	if len(keys) == 0 {
		return 0
	}
	if len(keys) < 2 {
		return monthlyTotals[keys[0]]
	}
	if len(keys) > 3 {
		keys = keys[len(keys)-3:]
	}
	var sum float64
	for _, k := range keys {
		sum += monthlyTotals[k]
	}
	return sum / float64(len(keys))
}

func meanOf(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// populationVariance divides by N, not N-1; the outlier threshold is
// defined against the population deviation.
func populationVariance(values []float64, mean float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		d := v - mean
		sum += d * d
	}
	return sum / float64(len(values))
}

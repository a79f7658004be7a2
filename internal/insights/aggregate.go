package insights

import (
	"fmt"
	"sort"
	"time"

	"spendwise/internal/core"
)

// monthKey formats a date as "YYYY-MM" so lexicographic order on keys is
// chronological order.
func monthKey(t time.Time) string {
	return fmt.Sprintf("%04d-%02d", t.Year(), int(t.Month()))
}

// MonthlyTotals sums expense amounts per calendar month, keyed "YYYY-MM".
func MonthlyTotals(expenses []core.ExpenseRecord) map[string]float64 {
	totals := make(map[string]float64)
	for _, e := range expenses {
		totals[monthKey(e.Date)] += e.Amount
	}
	return totals
}

// CategoryTotals sums expense amounts per category across the whole input.
func CategoryTotals(expenses []core.ExpenseRecord) map[string]float64 {
	totals := make(map[string]float64)
	for _, e := range expenses {
		totals[e.Category] += e.Amount
	}
	return totals
}

// TopCategories ranks categories by total amount, descending, keeping at
// most limit entries. Ties keep a stable category-name order so repeated
// calls agree.
func TopCategories(expenses []core.ExpenseRecord, limit int) []core.CategoryTotal {
	totals := CategoryTotals(expenses)
	ranked := make([]core.CategoryTotal, 0, len(totals))
	for category, total := range totals {
		ranked = append(ranked, core.CategoryTotal{Category: category, Total: total})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Total != ranked[j].Total {
			return ranked[i].Total > ranked[j].Total
		}
		return ranked[i].Category < ranked[j].Category
	})
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

// CurrentMonthTotal sums the amounts of expenses falling in now's
// calendar month.
func CurrentMonthTotal(expenses []core.ExpenseRecord, now time.Time) float64 {
	var total float64
	for _, e := range expenses {
		if e.SameMonth(now) {
			total += e.Amount
		}
	}
	return total
}

// CurrentMonthExpenses filters the input down to now's calendar month.
func CurrentMonthExpenses(expenses []core.ExpenseRecord, now time.Time) []core.ExpenseRecord {
	var out []core.ExpenseRecord
	for _, e := range expenses {
		if e.SameMonth(now) {
			out = append(out, e)
		}
	}
	return out
}

// AverageMonthlySpend is the arithmetic mean of the monthly totals,
// unweighted by month length. Zero when there is no data.
func AverageMonthlySpend(monthlyTotals map[string]float64) float64 {
	if len(monthlyTotals) == 0 {
		return 0
	}
	var sum float64
	for _, v := range monthlyTotals {
		sum += v
	}
	return sum / float64(len(monthlyTotals))
}

// sortedMonthKeys returns the month keys in chronological order.
func sortedMonthKeys(monthlyTotals map[string]float64) []string {
	keys := make([]string, 0, len(monthlyTotals))
	for k := range monthlyTotals {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

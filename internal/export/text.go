package export

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"spendwise/internal/core"
	"spendwise/internal/insights"
)

// FormatText renders a plain text spending report: a monthly breakdown
// with per-category subtotals, newest month first.
func FormatText(expenses []core.ExpenseRecord, now time.Time) string {
	var b strings.Builder
	b.WriteString("Expense Report\n")
	b.WriteString(fmt.Sprintf("Generated %s\n", now.Format("2006-01-02")))
	b.WriteString(fmt.Sprintf("Total expenses: %d\n\n", len(expenses)))

	if len(expenses) == 0 {
		b.WriteString("No expenses recorded yet.\n")
		return b.String()
	}

	byMonth := make(map[string][]core.ExpenseRecord)
	for _, e := range expenses {
		key := fmt.Sprintf("%04d-%02d", e.Date.Year(), int(e.Date.Month()))
		byMonth[key] = append(byMonth[key], e)
	}

	months := make([]string, 0, len(byMonth))
	for key := range byMonth {
		months = append(months, key)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(months)))

	for _, month := range months {
		monthExpenses := byMonth[month]
		var total float64
		for _, e := range monthExpenses {
			total += e.Amount
		}
		b.WriteString(fmt.Sprintf("== %s (total $%.2f) ==\n", month, total))

		for _, ct := range insights.TopCategories(monthExpenses, len(monthExpenses)) {
			b.WriteString(fmt.Sprintf("  %-20s $%.2f\n", ct.Category, ct.Total))
		}

		sort.SliceStable(monthExpenses, func(i, j int) bool {
			return monthExpenses[i].Date.After(monthExpenses[j].Date)
		})
		for _, e := range monthExpenses {
			b.WriteString(fmt.Sprintf("  %s  %-16s %-30s $%.2f\n",
				e.Date.Format("2006-01-02"), e.Category, e.Description, e.Amount))
		}
		b.WriteString("\n")
	}

	return b.String()
}

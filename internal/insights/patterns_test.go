package insights

import (
	"testing"
	"time"

	"spendwise/internal/core"
)

func TestUnusualExpenses(t *testing.T) {
	now := day(2025, time.August, 29)

	t.Run("clear outlier is flagged", func(t *testing.T) {
		// mean ~93.33, population stddev ~182.6, threshold ~458.6
		expenses := []core.ExpenseRecord{
			expense(10, "Food & Dining", "coffee", day(2025, time.August, 1)),
			expense(10, "Food & Dining", "coffee", day(2025, time.August, 5)),
			expense(10, "Food & Dining", "coffee", day(2025, time.August, 10)),
			expense(10, "Food & Dining", "coffee", day(2025, time.August, 15)),
			expense(10, "Food & Dining", "coffee", day(2025, time.August, 20)),
			expense(500, "Shopping", "television", day(2025, time.August, 21)),
		}

		unusual := UnusualExpenses(expenses, now)
		if len(unusual) != 1 {
			t.Fatalf("expected 1 unusual expense, got %d", len(unusual))
		}
		if unusual[0].Amount != 500 {
			t.Fatalf("expected the 500 expense, got %v", unusual[0].Amount)
		}
	})

	t.Run("uniform spending has no outliers", func(t *testing.T) {
		expenses := []core.ExpenseRecord{
			expense(40, "Food & Dining", "a", day(2025, time.August, 1)),
			expense(42, "Food & Dining", "b", day(2025, time.August, 2)),
			expense(41, "Food & Dining", "c", day(2025, time.August, 3)),
		}
		if got := UnusualExpenses(expenses, now); len(got) != 0 {
			t.Fatalf("expected no outliers, got %v", got)
		}
	})

	t.Run("single expense yields empty set", func(t *testing.T) {
		expenses := []core.ExpenseRecord{
			expense(5000, "Shopping", "sofa", day(2025, time.August, 1)),
		}
		if got := UnusualExpenses(expenses, now); len(got) != 0 {
			t.Fatalf("expected empty set for a single data point, got %v", got)
		}
	})

	t.Run("other months are ignored", func(t *testing.T) {
		expenses := []core.ExpenseRecord{
			expense(10, "Food & Dining", "a", day(2025, time.July, 1)),
			expense(10, "Food & Dining", "b", day(2025, time.July, 2)),
			expense(900, "Shopping", "c", day(2025, time.July, 3)),
		}
		if got := UnusualExpenses(expenses, now); len(got) != 0 {
			t.Fatalf("expected empty set when current month has no data, got %v", got)
		}
	})
}

func TestKeywordFlags(t *testing.T) {
	cases := []struct {
		name             string
		description      string
		wantSubscription bool
		wantUtility      bool
	}{
		{"netflix", "Netflix family plan", true, false},
		{"mixed case subscription", "Annual SUBSCRIPTION renewal", true, false},
		{"electric bill", "Electric bill for July", false, true},
		{"phone", "phone top-up", false, true},
		{"plain groceries", "weekly groceries", false, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			expenses := []core.ExpenseRecord{
				expense(10, "Other", tc.description, day(2025, time.August, 1)),
			}
			if got := HasSubscriptionExpenses(expenses); got != tc.wantSubscription {
				t.Fatalf("subscription flag: got %v, want %v", got, tc.wantSubscription)
			}
			if got := HasUtilityExpenses(expenses); got != tc.wantUtility {
				t.Fatalf("utility flag: got %v, want %v", got, tc.wantUtility)
			}
		})
	}
}

func TestMonthOverMonthGrowth(t *testing.T) {
	cases := []struct {
		name   string
		totals map[string]float64
		want   float64
	}{
		{"growth", map[string]float64{"2025-06": 100, "2025-07": 150}, 50},
		{"decline", map[string]float64{"2025-06": 200, "2025-07": 150}, -25},
		{"single month", map[string]float64{"2025-07": 150}, 0},
		{"empty", map[string]float64{}, 0},
		{"zero previous month", map[string]float64{"2025-06": 0, "2025-07": 150}, 0},
		{"uses last two after sorting", map[string]float64{"2025-09": 100, "2025-10": 110, "2025-08": 999}, 10},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := MonthOverMonthGrowth(tc.totals); !almostEqual(got, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestPredictNextMonthExpenses(t *testing.T) {
	cases := []struct {
		name   string
		totals map[string]float64
		want   float64
	}{
		{"empty", map[string]float64{}, 0},
		{"single month", map[string]float64{"2025-07": 120}, 120},
		{"two months", map[string]float64{"2025-06": 100, "2025-07": 200}, 150},
		{"last three of four", map[string]float64{"2025-05": 999, "2025-06": 100, "2025-07": 200, "2025-08": 300}, 200},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := PredictNextMonthExpenses(tc.totals); !almostEqual(got, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
		})
	}
}

package core

import (
	"errors"
	"strings"
	"time"
)

type (
	// ExpenseRecord is a single logged expense. Amounts are plain floats;
	// the analytics layer depends on float arithmetic for its results.
	ExpenseRecord struct {
		ID          string    `json:"id"`
		UserID      string    `json:"-"`
		Amount      float64   `json:"amount"`
		Category    string    `json:"category"`
		Description string    `json:"description"`
		Date        time.Time `json:"date"`
	}

	// Settings holds per-user notification preferences.
	Settings struct {
		BudgetAlerts bool
	}

	// User is an account as seen by the service. Pro gating and the
	// monthly budget live here; authentication happens at the HTTP boundary.
	User struct {
		ID            string
		Email         string
		APIToken      string
		MonthlyBudget float64
		IsPro         bool
		Settings      Settings
	}

	// Recommendation is one AI-authored, user-completable suggestion.
	Recommendation struct {
		ID        string `json:"id"`
		Text      string `json:"text"`
		Category  string `json:"category"`
		Completed bool   `json:"completed"`
		Impact    int    `json:"impact"` // 1-3
	}

	// CategoryTotal is a category name with its summed amount, used for
	// ranked top-category lists.
	CategoryTotal struct {
		Category string  `json:"category"`
		Total    float64 `json:"total"`
	}
)

var (
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidDate      = errors.New("invalid date")
	ErrEmptyCategory    = errors.New("empty category")
	ErrEmptyDescription = errors.New("empty description")
)

func (e ExpenseRecord) Validate() error {
	if e.Amount <= 0 {
		return ErrInvalidAmount
	}
	if e.Date.IsZero() {
		return ErrInvalidDate
	}
	if strings.TrimSpace(e.Category) == "" {
		return ErrEmptyCategory
	}
	if len(strings.TrimSpace(e.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(e.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	return nil
}

// SameMonth reports whether the expense falls in the same calendar month
// and year as t.
func (e ExpenseRecord) SameMonth(t time.Time) bool {
	return e.Date.Year() == t.Year() && e.Date.Month() == t.Month()
}

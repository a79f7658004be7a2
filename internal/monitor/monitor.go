// Package monitor watches user spending against monthly budgets and
// sends alert emails when thresholds are crossed. It runs out of band,
// driven by queue messages after expense writes and by a periodic sweep.
package monitor

import (
	"context"
	"fmt"
	"time"

	"spendwise/internal/core"
	"spendwise/internal/email"
	"spendwise/internal/insights"
	"spendwise/internal/log"
)

// warningThreshold is the budget usage fraction that triggers the first
// alert level.
const warningThreshold = 0.8

// maxAlertSuggestions caps the recommendation list in an alert email.
const maxAlertSuggestions = 3

// Repository is the storage surface the monitor needs.
type Repository interface {
	GetUserByID(ctx context.Context, id string) (*core.User, error)
	ListAlertUsers(ctx context.Context) ([]core.User, error)
	ListExpenses(ctx context.Context, userID string) ([]core.ExpenseRecord, error)
}

// AlertSender delivers one rendered alert to a recipient.
type AlertSender interface {
	SendBudgetAlert(ctx context.Context, to string, alert email.BudgetAlert) error
}

// InsightsEngine produces the AI-backed report whose recommendations
// enrich alert emails. May be nil; alerts then carry the estimator's
// suggestions instead.
type InsightsEngine interface {
	GenerateInsights(ctx context.Context, data insights.ExpenseData) (insights.Insights, error)
}

type Monitor struct {
	repo   Repository
	sender AlertSender
	engine InsightsEngine
	logger *log.Logger

	// Now is injected for tests; defaults to time.Now.
	Now func() time.Time
}

func New(repo Repository, sender AlertSender, engine InsightsEngine, logger *log.Logger) *Monitor {
	return &Monitor{
		repo:   repo,
		sender: sender,
		engine: engine,
		logger: logger.WithComponent(log.ComponentMonitor),
		Now:    time.Now,
	}
}

// CheckUser evaluates one user's current-month spending and sends at
// most one alert email. Users who disabled alerts are skipped.
func (m *Monitor) CheckUser(ctx context.Context, userID string) error {
	user, err := m.repo.GetUserByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("load user: %w", err)
	}
	if !user.Settings.BudgetAlerts {
		m.logger.DebugContext(ctx, "Budget alerts disabled, skipping", log.FieldUserID, userID)
		return nil
	}

	expenses, err := m.repo.ListExpenses(ctx, userID)
	if err != nil {
		return fmt.Errorf("load expenses: %w", err)
	}

	alert, ok := m.evaluate(user, expenses)
	if !ok {
		return nil
	}
	alert.Recommendations = m.recommendationsFor(ctx, user, expenses)

	if err := m.sender.SendBudgetAlert(ctx, user.Email, alert); err != nil {
		return fmt.Errorf("send alert: %w", err)
	}
	m.logger.InfoContext(ctx, "Budget alert sent",
		log.FieldUserID, userID,
		log.FieldAlertLevel, string(alert.Level),
		log.FieldRecipient, user.Email)
	return nil
}

// Sweep checks every user who opted into alerts. Individual failures
// are logged and do not stop the sweep.
func (m *Monitor) Sweep(ctx context.Context) error {
	users, err := m.repo.ListAlertUsers(ctx)
	if err != nil {
		return fmt.Errorf("list alert users: %w", err)
	}

	m.logger.InfoContext(ctx, "Starting budget sweep", "users", len(users))
	for _, user := range users {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := m.CheckUser(ctx, user.ID); err != nil {
			m.logger.ErrorContext(ctx, "Budget check failed",
				log.FieldUserID, user.ID,
				log.FieldError, err)
		}
	}
	return nil
}

// evaluate decides whether the user's spending warrants an alert. Budget
// overruns take priority over the 80% warning, which takes priority over
// unusual-spending detection.
func (m *Monitor) evaluate(user *core.User, expenses []core.ExpenseRecord) (email.BudgetAlert, bool) {
	now := m.Now()
	spent := insights.CurrentMonthTotal(expenses, now)

	alert := email.BudgetAlert{
		Month:  now.Format("January 2006"),
		Spent:  spent,
		Budget: user.MonthlyBudget,
	}
	if user.MonthlyBudget > 0 {
		alert.PercentUsed = spent / user.MonthlyBudget * 100
	}

	unusual := insights.UnusualExpenses(expenses, now)
	for _, e := range unusual {
		alert.UnusualExpenses = append(alert.UnusualExpenses,
			fmt.Sprintf("%s - %s: $%.2f", e.Date.Format("2006-01-02"), e.Category, e.Amount))
	}

	switch {
	case user.MonthlyBudget > 0 && spent > user.MonthlyBudget:
		alert.Level = email.LevelExceeded
	case user.MonthlyBudget > 0 && spent >= user.MonthlyBudget*warningThreshold:
		alert.Level = email.LevelWarning
	case len(unusual) > 0:
		alert.Level = email.LevelUnusual
	default:
		return email.BudgetAlert{}, false
	}

	return alert, true
}

// recommendationsFor asks the insights engine for AI recommendations to
// include in the alert. When the engine is absent or fails, the alert
// degrades to the savings estimator's suggestions.
func (m *Monitor) recommendationsFor(ctx context.Context, user *core.User, expenses []core.ExpenseRecord) []string {
	data := insights.ExpenseData{
		Expenses:      expenses,
		MonthlyBudget: user.MonthlyBudget,
		TopCategories: insights.TopCategories(expenses, maxAlertSuggestions),
	}

	if m.engine != nil {
		report, err := m.engine.GenerateInsights(ctx, data)
		if err != nil {
			m.logger.WarnContext(ctx, "Insights generation failed, falling back to estimator suggestions",
				log.FieldUserID, user.ID,
				log.FieldError, err)
		} else if len(report.Recommendations) > 0 {
			var out []string
			for _, rec := range report.Recommendations {
				if len(out) == maxAlertSuggestions {
					break
				}
				out = append(out, rec.Text)
			}
			return out
		}
	}

	savings := insights.IdentifyPotentialSavings(data, m.Now())
	var out []string
	for _, opp := range savings.Opportunities {
		if len(out) == maxAlertSuggestions {
			break
		}
		out = append(out, opp.Suggestion)
	}
	return out
}

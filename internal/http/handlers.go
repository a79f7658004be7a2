package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"spendwise/internal/core"
	"spendwise/internal/email"
	"spendwise/internal/export"
	"spendwise/internal/insights"
	"spendwise/internal/log"
	"spendwise/internal/storage"
)

const (
	topCategoryLimit   = 5
	recentExpenseLimit = 10
)

type createExpenseRequest struct {
	Amount      float64 `json:"amount"`
	Category    string  `json:"category"`
	Description string  `json:"description"`
	Date        string  `json:"date"`
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())

	var req createExpenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	date, err := parseDate(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date, use RFC 3339 or YYYY-MM-DD")
		return
	}

	expense := core.ExpenseRecord{
		ID:          uuid.NewString(),
		UserID:      user.ID,
		Amount:      req.Amount,
		Category:    req.Category,
		Description: req.Description,
		Date:        date,
	}
	if err := expense.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.repo.CreateExpense(r.Context(), expense); err != nil {
		s.logger.ErrorContext(r.Context(), "Create expense failed", log.FieldError, err, log.FieldUserID, user.ID)
		writeError(w, http.StatusInternalServerError, "could not save expense")
		return
	}

	s.cache.Delete(user.ID)
	if s.pub != nil {
		if err := s.pub.PublishBudgetCheck(r.Context(), user.ID); err != nil {
			// The expense is saved; a missed check is picked up by the
			// periodic sweep.
			s.logger.WarnContext(r.Context(), "Budget check publish failed", log.FieldError, err, log.FieldUserID, user.ID)
		}
	}

	writeJSON(w, http.StatusCreated, expense)
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())
	expenses, err := s.repo.ListExpenses(r.Context(), user.ID)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "List expenses failed", log.FieldError, err, log.FieldUserID, user.ID)
		writeError(w, http.StatusInternalServerError, "could not load expenses")
		return
	}
	if expenses == nil {
		expenses = []core.ExpenseRecord{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"expenses": expenses})
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())
	id := r.PathValue("id")

	err := s.repo.DeleteExpense(r.Context(), user.ID, id)
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, "expense not found")
		return
	}
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Delete expense failed", log.FieldError, err, log.FieldUserID, user.ID)
		writeError(w, http.StatusInternalServerError, "could not delete expense")
		return
	}

	s.cache.Delete(user.ID)
	w.WriteHeader(http.StatusNoContent)
}

// insightsResponse is the analytics report plus an optional error note
// when the report is a fallback.
type insightsResponse struct {
	insights.Insights
	Error string `json:"error,omitempty"`
}

func (s *Server) handleInsights(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())

	if cached, ok := s.cache.Get(user.ID); ok {
		writeJSON(w, http.StatusOK, insightsResponse{Insights: cached})
		return
	}

	data, err := s.buildExpenseData(r, user)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not load expenses")
		return
	}

	report, err := s.engine.GenerateInsights(r.Context(), data)
	if err != nil {
		// Insights degrade instead of failing: the dashboard renders a
		// zeroed report with an explanatory note.
		s.logger.ErrorContext(r.Context(), "Insights generation failed", log.FieldError, err, log.FieldUserID, user.ID)
		writeJSON(w, http.StatusOK, insightsResponse{
			Insights: emptyInsights(),
			Error:    "insights are temporarily unavailable",
		})
		return
	}

	if err := s.repo.ReplaceRecommendations(r.Context(), user.ID, report.Recommendations); err != nil {
		s.logger.ErrorContext(r.Context(), "Persist recommendations failed", log.FieldError, err, log.FieldUserID, user.ID)
	}

	s.cache.Set(user.ID, report)
	writeJSON(w, http.StatusOK, insightsResponse{Insights: report})
}

type analyzeRequest struct {
	Question string `json:"question"`
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())

	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Question == "" {
		writeError(w, http.StatusBadRequest, "question is required")
		return
	}

	data, err := s.buildExpenseData(r, user)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not load expenses")
		return
	}

	answer, err := s.engine.AnalyzeExpenses(r.Context(), req.Question, data)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Expense analysis failed", log.FieldError, err, log.FieldUserID, user.ID)
		writeError(w, http.StatusBadGateway, "analysis is temporarily unavailable")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"analysis": answer})
}

func (s *Server) handleListRecommendations(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())
	recs, err := s.repo.ListRecommendations(r.Context(), user.ID)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "List recommendations failed", log.FieldError, err, log.FieldUserID, user.ID)
		writeError(w, http.StatusInternalServerError, "could not load recommendations")
		return
	}
	if recs == nil {
		recs = []core.Recommendation{}
	}

	stats := insights.RecommendationStats{Total: len(recs)}
	for _, rec := range recs {
		if rec.Completed {
			stats.Completed++
		}
	}
	stats.Pending = stats.Total - stats.Completed

	writeJSON(w, http.StatusOK, map[string]any{
		"recommendations": recs,
		"stats":           stats,
	})
}

type updateRecommendationRequest struct {
	Completed bool `json:"completed"`
}

func (s *Server) handleUpdateRecommendation(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())
	id := r.PathValue("id")

	var req updateRecommendationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	err := s.repo.SetRecommendationCompleted(r.Context(), user.ID, id, req.Completed)
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, "recommendation not found")
		return
	}
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Update recommendation failed", log.FieldError, err, log.FieldUserID, user.ID)
		writeError(w, http.StatusInternalServerError, "could not update recommendation")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"id": id, "completed": req.Completed})
}

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{
		"email":         user.Email,
		"monthlyBudget": user.MonthlyBudget,
		"budgetAlerts":  user.Settings.BudgetAlerts,
		"isPro":         user.IsPro,
	})
}

type updateSettingsRequest struct {
	MonthlyBudget float64 `json:"monthlyBudget"`
	BudgetAlerts  bool    `json:"budgetAlerts"`
}

func (s *Server) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())

	var req updateSettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.MonthlyBudget < 0 {
		writeError(w, http.StatusBadRequest, "monthly budget must not be negative")
		return
	}

	settings := core.Settings{BudgetAlerts: req.BudgetAlerts}
	if err := s.repo.UpdateSettings(r.Context(), user.ID, req.MonthlyBudget, settings); err != nil {
		s.logger.ErrorContext(r.Context(), "Update settings failed", log.FieldError, err, log.FieldUserID, user.ID)
		writeError(w, http.StatusInternalServerError, "could not update settings")
		return
	}

	// The budget feeds the insights report, so drop any cached copy.
	s.cache.Delete(user.ID)
	writeJSON(w, http.StatusOK, map[string]any{
		"monthlyBudget": req.MonthlyBudget,
		"budgetAlerts":  req.BudgetAlerts,
	})
}

func (s *Server) handleExportText(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())
	expenses, err := s.repo.ListExpenses(r.Context(), user.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not load expenses")
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="expenses.txt"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(export.FormatText(expenses, time.Now())))
}

func (s *Server) handleExportSheets(w http.ResponseWriter, r *http.Request) {
	if s.exporter == nil {
		writeError(w, http.StatusServiceUnavailable, "sheets export is not configured")
		return
	}

	user := userFrom(r.Context())
	expenses, err := s.repo.ListExpenses(r.Context(), user.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not load expenses")
		return
	}

	if err := s.exporter.Append(r.Context(), expenses); err != nil {
		s.logger.ErrorContext(r.Context(), "Sheets export failed", log.FieldError, err, log.FieldUserID, user.ID)
		writeError(w, http.StatusBadGateway, "export failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"exported": len(expenses)})
}

// handleTestNotification sends a sample budget alert to the caller so
// the SMTP setup can be verified without waiting for a real overspend.
func (s *Server) handleTestNotification(w http.ResponseWriter, r *http.Request) {
	if s.notifier == nil {
		writeError(w, http.StatusServiceUnavailable, "email notifications are not configured")
		return
	}

	user := userFrom(r.Context())
	alert := email.BudgetAlert{
		Level:       email.LevelWarning,
		Month:       time.Now().Format("January 2006"),
		Spent:       850,
		Budget:      1000,
		PercentUsed: 85,
		Recommendations: []string{
			"This is a test alert. Your notification setup is working.",
		},
	}

	if err := s.notifier.SendBudgetAlert(r.Context(), user.Email, alert); err != nil {
		s.logger.ErrorContext(r.Context(), "Test notification failed", log.FieldError, err, log.FieldUserID, user.ID)
		writeError(w, http.StatusBadGateway, "could not send test email")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"sent": true, "recipient": user.Email})
}

// buildExpenseData assembles the engine input from storage.
func (s *Server) buildExpenseData(r *http.Request, user *core.User) (insights.ExpenseData, error) {
	expenses, err := s.repo.ListExpenses(r.Context(), user.ID)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "List expenses failed", log.FieldError, err, log.FieldUserID, user.ID)
		return insights.ExpenseData{}, err
	}

	seen := make(map[string]bool)
	var categories []string
	for _, e := range expenses {
		if !seen[e.Category] {
			seen[e.Category] = true
			categories = append(categories, e.Category)
		}
	}

	recent := expenses
	if len(recent) > recentExpenseLimit {
		recent = recent[:recentExpenseLimit]
	}

	return insights.ExpenseData{
		Expenses:       expenses,
		MonthlyBudget:  user.MonthlyBudget,
		Categories:     categories,
		TopCategories:  insights.TopCategories(expenses, topCategoryLimit),
		RecentExpenses: recent,
	}, nil
}

// emptyInsights is the all-zero fallback report with non-nil slices so
// the JSON carries empty arrays instead of nulls.
func emptyInsights() insights.Insights {
	return insights.Insights{
		TopExpenseCategory:  "No expenses yet",
		UnusualExpenses:     []core.ExpenseRecord{},
		Recommendations:     []core.Recommendation{},
		SavingOpportunities: []insights.SavingOpportunity{},
		Insights:            []string{},
		BudgetPlans:         []insights.BudgetPlan{},
	}
}

func parseDate(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", value)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

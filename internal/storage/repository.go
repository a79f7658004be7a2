package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"spendwise/internal/core"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a row does not exist or belongs to
// another user.
var ErrNotFound = errors.New("not found")

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// CreateUser inserts a new user row.
func (r *SQLiteRepository) CreateUser(ctx context.Context, u core.User) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (id, email, api_token, monthly_budget, is_pro, budget_alerts)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		u.ID, u.Email, u.APIToken, u.MonthlyBudget, u.IsPro, u.Settings.BudgetAlerts)
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// GetUserByToken resolves an API token to its user.
func (r *SQLiteRepository) GetUserByToken(ctx context.Context, token string) (*core.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, email, api_token, monthly_budget, is_pro, budget_alerts
		 FROM users WHERE api_token = ?`, token)
	return scanUser(row)
}

// GetUserByID returns the user with the given ID.
func (r *SQLiteRepository) GetUserByID(ctx context.Context, id string) (*core.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, email, api_token, monthly_budget, is_pro, budget_alerts
		 FROM users WHERE id = ?`, id)
	return scanUser(row)
}

// ListAlertUsers returns all users who opted into budget alert emails.
func (r *SQLiteRepository) ListAlertUsers(ctx context.Context) ([]core.User, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, email, api_token, monthly_budget, is_pro, budget_alerts
		 FROM users WHERE budget_alerts = 1`)
	if err != nil {
		return nil, fmt.Errorf("list alert users: %w", err)
	}
	defer rows.Close()

	var users []core.User
	for rows.Next() {
		var u core.User
		if err := rows.Scan(&u.ID, &u.Email, &u.APIToken, &u.MonthlyBudget, &u.IsPro, &u.Settings.BudgetAlerts); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// UpdateSettings persists a user's budget and notification preferences.
func (r *SQLiteRepository) UpdateSettings(ctx context.Context, userID string, monthlyBudget float64, settings core.Settings) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET monthly_budget = ?, budget_alerts = ? WHERE id = ?`,
		monthlyBudget, settings.BudgetAlerts, userID)
	if err != nil {
		return fmt.Errorf("update settings: %w", err)
	}
	return requireRow(res)
}

// CreateExpense inserts a validated expense record.
func (r *SQLiteRepository) CreateExpense(ctx context.Context, e core.ExpenseRecord) error {
	if err := e.Validate(); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO expenses (id, user_id, amount, category, description, spent_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		e.ID, e.UserID, e.Amount, e.Category, e.Description, e.Date.UTC())
	if err != nil {
		return fmt.Errorf("create expense: %w", err)
	}
	return nil
}

// ListExpenses returns all of a user's expenses, newest first.
func (r *SQLiteRepository) ListExpenses(ctx context.Context, userID string) ([]core.ExpenseRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, amount, category, description, spent_at
		 FROM expenses WHERE user_id = ? ORDER BY spent_at DESC, id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []core.ExpenseRecord
	for rows.Next() {
		var e core.ExpenseRecord
		var spentAt time.Time
		if err := rows.Scan(&e.ID, &e.UserID, &e.Amount, &e.Category, &e.Description, &spentAt); err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		e.Date = spentAt
		expenses = append(expenses, e)
	}
	return expenses, rows.Err()
}

// DeleteExpense removes one of the user's expenses.
func (r *SQLiteRepository) DeleteExpense(ctx context.Context, userID, expenseID string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM expenses WHERE id = ? AND user_id = ?`, expenseID, userID)
	if err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	return requireRow(res)
}

// ReplaceRecommendations swaps a user's stored recommendations for a
// freshly generated set in a single transaction. Completion state of the
// old set is intentionally discarded, each generation starts pending.
func (r *SQLiteRepository) ReplaceRecommendations(ctx context.Context, userID string, recs []core.Recommendation) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM recommendations WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("clear recommendations: %w", err)
	}
	for _, rec := range recs {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO recommendations (id, user_id, text, category, impact, completed)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			rec.ID, userID, rec.Text, rec.Category, rec.Impact, rec.Completed)
		if err != nil {
			return fmt.Errorf("insert recommendation: %w", err)
		}
	}
	return tx.Commit()
}

// ListRecommendations returns a user's stored recommendations.
func (r *SQLiteRepository) ListRecommendations(ctx context.Context, userID string) ([]core.Recommendation, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, text, category, impact, completed
		 FROM recommendations WHERE user_id = ? ORDER BY impact DESC, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("list recommendations: %w", err)
	}
	defer rows.Close()

	var recs []core.Recommendation
	for rows.Next() {
		var rec core.Recommendation
		if err := rows.Scan(&rec.ID, &rec.Text, &rec.Category, &rec.Impact, &rec.Completed); err != nil {
			return nil, fmt.Errorf("scan recommendation: %w", err)
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

// SetRecommendationCompleted toggles a recommendation's completion flag.
func (r *SQLiteRepository) SetRecommendationCompleted(ctx context.Context, userID, recID string, completed bool) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE recommendations SET completed = ? WHERE id = ? AND user_id = ?`,
		completed, recID, userID)
	if err != nil {
		return fmt.Errorf("update recommendation: %w", err)
	}
	return requireRow(res)
}

func scanUser(row *sql.Row) (*core.User, error) {
	var u core.User
	err := row.Scan(&u.ID, &u.Email, &u.APIToken, &u.MonthlyBudget, &u.IsPro, &u.Settings.BudgetAlerts)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return &u, nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

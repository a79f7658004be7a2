// Package http exposes the REST API: expense CRUD, AI insights and
// analysis, recommendations, settings, exports and health probes.
package http

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"spendwise/internal/cache"
	"spendwise/internal/core"
	"spendwise/internal/email"
	"spendwise/internal/insights"
	"spendwise/internal/log"
	"spendwise/internal/middleware/ratelimit"
)

// Repository is the storage surface the API needs.
type Repository interface {
	GetUserByToken(ctx context.Context, token string) (*core.User, error)
	CreateExpense(ctx context.Context, e core.ExpenseRecord) error
	ListExpenses(ctx context.Context, userID string) ([]core.ExpenseRecord, error)
	DeleteExpense(ctx context.Context, userID, expenseID string) error
	UpdateSettings(ctx context.Context, userID string, monthlyBudget float64, settings core.Settings) error
	ReplaceRecommendations(ctx context.Context, userID string, recs []core.Recommendation) error
	ListRecommendations(ctx context.Context, userID string) ([]core.Recommendation, error)
	SetRecommendationCompleted(ctx context.Context, userID, recID string, completed bool) error
}

// Engine produces analytics reports and free-form analysis.
type Engine interface {
	GenerateInsights(ctx context.Context, data insights.ExpenseData) (insights.Insights, error)
	AnalyzeExpenses(ctx context.Context, question string, data insights.ExpenseData) (string, error)
}

// Publisher enqueues asynchronous budget checks. May be nil when AMQP
// is not configured.
type Publisher interface {
	PublishBudgetCheck(ctx context.Context, userID string) error
}

// Exporter appends expenses to an external spreadsheet. May be nil.
type Exporter interface {
	Append(ctx context.Context, expenses []core.ExpenseRecord) error
}

// Notifier sends alert emails. May be nil when SMTP is not configured.
type Notifier interface {
	SendBudgetAlert(ctx context.Context, to string, alert email.BudgetAlert) error
}

type Config struct {
	Addr              string
	RequestsPerMinute int
	InsightsCacheTTL  time.Duration
}

// cacheCleanupInterval is how often expired insights reports are swept
// out of the cache.
const cacheCleanupInterval = time.Minute

type Server struct {
	http     *http.Server
	repo     Repository
	engine   Engine
	pub      Publisher
	exporter Exporter
	notifier Notifier
	cache    *cache.LRUCache[insights.Insights]
	cleanup  *cache.Manager
	limiter  *ratelimit.Limiter
	logger   *log.Logger
}

func NewServer(cfg Config, repo Repository, engine Engine, pub Publisher, exporter Exporter, notifier Notifier, logger *log.Logger) *Server {
	s := &Server{
		repo:     repo,
		engine:   engine,
		pub:      pub,
		exporter: exporter,
		notifier: notifier,
		cache:    cache.NewLRUCache[insights.Insights](1024, cfg.InsightsCacheTTL),
		cleanup:  cache.NewManager(),
		limiter:  ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: cfg.RequestsPerMinute}),
		logger:   logger.WithComponent(log.ComponentHTTP),
	}
	s.cleanup.Register(s.cache)
	s.cleanup.StartCleanup(cacheCleanupInterval)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.HandleFunc("GET /readyz", s.handleReadyz)

	mux.Handle("POST /api/expenses", s.authenticated(s.handleCreateExpense))
	mux.Handle("GET /api/expenses", s.authenticated(s.handleListExpenses))
	mux.Handle("DELETE /api/expenses/{id}", s.authenticated(s.handleDeleteExpense))

	mux.Handle("GET /api/ai/insights", s.authenticated(s.proOnly(s.handleInsights)))
	mux.Handle("POST /api/ai/analyze", s.authenticated(s.proOnly(s.handleAnalyze)))

	mux.Handle("GET /api/recommendations", s.authenticated(s.handleListRecommendations))
	mux.Handle("PATCH /api/recommendations/{id}", s.authenticated(s.handleUpdateRecommendation))

	mux.Handle("GET /api/settings", s.authenticated(s.handleGetSettings))
	mux.Handle("PUT /api/settings", s.authenticated(s.handleUpdateSettings))

	mux.Handle("GET /api/export/text", s.authenticated(s.handleExportText))
	mux.Handle("POST /api/export/sheets", s.authenticated(s.handleExportSheets))

	mux.Handle("POST /api/notifications/test", s.authenticated(s.handleTestNotification))

	handler := s.securityHeaders(
		s.requestID(
			s.limiter.Middleware(clientIP, nil)(
				s.logRequests(mux))))

	s.http = &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	return s
}

// Start blocks serving HTTP until the listener fails or Shutdown is
// called.
func (s *Server) Start() error {
	s.logger.Info("HTTP server listening", "addr", s.http.Addr)
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests and stops background goroutines.
func (s *Server) Shutdown(ctx context.Context) error {
	s.cleanup.Stop()
	s.limiter.Stop()
	return s.http.Shutdown(ctx)
}

// Handler exposes the full middleware-wrapped handler for tests.
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	// The repository is wired at construction time; a failing database
	// surfaces on the first real query.
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		return forwarded
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

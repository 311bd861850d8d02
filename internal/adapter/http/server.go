package adapthttp

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"expensemanager/internal/app"
)

// Options configures the HTTP adapter.
type Options struct {
	// Legacy enables the deprecated numeric Authorization header when non-nil.
	Legacy *app.LegacyAuthenticator
	// SSO enables manager single sign-on when non-nil.
	SSO           *SSO
	CookieSecure  bool
	TokenLifetime time.Duration
	Logger        *zap.Logger
}

// Server is the driving HTTP adapter that routes requests to application
// services.
type Server struct {
	expenses *app.ExpenseService
	auth     *app.AuthService
	legacy   *app.LegacyAuthenticator
	sso      *SSO
	validate *validator.Validate
	log      *zap.Logger

	cookieSecure  bool
	tokenLifetime time.Duration
}

// New creates a Server wired to the given application services.
func New(expenses *app.ExpenseService, auth *app.AuthService, opts Options) *Server {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	lifetime := opts.TokenLifetime
	if lifetime <= 0 {
		lifetime = 24 * time.Hour
	}
	return &Server{
		expenses:      expenses,
		auth:          auth,
		legacy:        opts.Legacy,
		sso:           opts.SSO,
		validate:      validator.New(),
		log:           log,
		cookieSecure:  opts.CookieSecure,
		tokenLifetime: lifetime,
	}
}

// Handler returns the root http.Handler for the application.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.metricsMiddleware)
	r.Use(s.loggingMiddleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(withNoCache)

		r.Get("/config", s.handleConfig)
		r.Post("/auth/login", s.handleLogin)
		r.Post("/auth/logout", s.handleLogout)
		r.Get("/auth/sso/login", s.handleSSOLogin)
		r.Get("/auth/sso/callback", s.handleSSOCallback)

		r.Group(func(r chi.Router) {
			r.Use(s.requireManager)

			r.Get("/auth/me", s.handleMe)

			r.Get("/expenses", s.handleAllExpenses)
			r.Get("/expenses/pending", s.handlePendingExpenses)
			r.Get("/expenses/employee/{employeeId}", s.handleEmployeeExpenses)
			r.Get("/expenses/category", s.handleCategoryExpenses)
			r.Get("/expenses/daterange", s.handleDateRangeExpenses)
			r.Get("/expenses/{expenseId}", s.handleExpense)
			r.Post("/expenses/{expenseId}/approve", s.handleApprove)
			r.Post("/expenses/{expenseId}/deny", s.handleDeny)

			r.Get("/reports/expenses/csv", s.handleAllReport)
			r.Get("/reports/expenses/pending/csv", s.handlePendingReport)
			r.Get("/reports/expenses/employee/{employeeId}/csv", s.handleEmployeeReport)
			r.Get("/reports/expenses/category/{category}/csv", s.handleCategoryReport)
			r.Get("/reports/expenses/daterange/csv", s.handleDateRangeReport)
		})
	})

	return r
}

package adapthttp

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"expensemanager/internal/app"
	"expensemanager/internal/domain"
	"expensemanager/internal/metrics"
)

type contextKey string

const userContextKey contextKey = "user"

const sessionCookie = "jwt"

// requireManager resolves the caller and rejects anyone who is not a manager.
func (s *Server) requireManager(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := s.authenticate(r)
		switch {
		case errors.Is(err, app.ErrNotManager):
			writeError(w, http.StatusForbidden, "manager role required")
			return
		case err != nil:
			s.log.Error("authenticate request", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		case user == nil:
			writeError(w, http.StatusUnauthorized, "authentication required")
			return
		case !s.auth.IsManager(user):
			writeError(w, http.StatusForbidden, "manager role required")
			return
		}

		ctx := context.WithValue(r.Context(), userContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// authenticate returns the caller, or nil when the request carries no usable
// credential. A session token is tried first; the legacy header is only
// consulted when enabled and the token did not resolve.
func (s *Server) authenticate(r *http.Request) (*domain.User, error) {
	if token := sessionToken(r); token != "" {
		user, err := s.auth.Authenticate(r.Context(), token)
		switch {
		case err == nil:
			return user, nil
		case errors.Is(err, app.ErrInvalidToken),
			errors.Is(err, app.ErrExpiredToken),
			errors.Is(err, app.ErrUserNotFound):
			// unusable token; try the legacy header below
		default:
			return nil, err
		}
	}

	if s.legacy == nil {
		return nil, nil
	}
	return s.legacy.ValidateManagerAuthenticationLegacy(r.Context(), r.Header.Get("Authorization"))
}

func sessionToken(r *http.Request) string {
	if c, err := r.Cookie(sessionCookie); err == nil && c.Value != "" {
		return c.Value
	}
	if token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ""
}

func currentUser(ctx context.Context) *domain.User {
	user, _ := ctx.Value(userContextKey).(*domain.User)
	return user
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.log.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

func (s *Server) metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		metrics.ObserveRequest(route, r.Method, rec.status, time.Since(start))
	})
}

func withNoCache(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store")
		next.ServeHTTP(w, r)
	})
}

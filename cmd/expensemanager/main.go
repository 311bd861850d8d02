package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	adapthttp "expensemanager/internal/adapter/http"
	"expensemanager/internal/adapter/memory"
	"expensemanager/internal/adapter/postgres"
	"expensemanager/internal/app"
	"expensemanager/internal/config"
	"expensemanager/internal/domain"
	"expensemanager/internal/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Server.LogLevel, cfg.Server.LogFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}

type store struct {
	users     domain.UserRepository
	expenses  domain.ExpenseRepository
	approvals domain.ApprovalRepository
	close     func() error
}

func openStore(ctx context.Context, cfg config.DatabaseConfig, log *zap.Logger) (*store, error) {
	if cfg.Driver == "memory" {
		log.Warn("using in-memory store; data is lost on restart")
		db := memory.New()
		return &store{users: db, expenses: db.Expenses(), approvals: db, close: func() error { return nil }}, nil
	}

	db, err := postgres.Open(ctx, cfg, log)
	if err != nil {
		return nil, fmt.Errorf("db open: %w", err)
	}
	return &store{users: db, expenses: db.Expenses(), approvals: db, close: db.Close}, nil
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStore(ctx, cfg.Database, log)
	if err != nil {
		return err
	}
	defer func() { _ = st.close() }()

	issuer, err := app.NewJWTIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenLifetime)
	if err != nil {
		return err
	}
	authSvc := app.NewAuthService(st.users, issuer, log.Named("auth"))
	expenseSvc := app.NewExpenseService(st.expenses, st.approvals, log.Named("expenses"))

	if b := cfg.Auth.BootstrapManager; b.Username != "" {
		err := authSvc.CreateInitialManager(ctx, b.Username, b.Password)
		if err != nil && !errors.Is(err, app.ErrUsersExist) {
			return fmt.Errorf("bootstrap manager: %w", err)
		}
	}

	opts := adapthttp.Options{
		CookieSecure:  cfg.Auth.CookieSecure,
		TokenLifetime: cfg.Auth.TokenLifetime,
		Logger:        log.Named("http"),
	}
	if cfg.Auth.LegacyHeader {
		log.Warn("legacy numeric Authorization header enabled")
		opts.Legacy = app.NewLegacyAuthenticator(st.users, authSvc.IsManager)
	}
	if cfg.OIDC.Enabled {
		sso, err := adapthttp.NewSSO(ctx, cfg.OIDC.IssuerURL, cfg.OIDC.ClientID, cfg.OIDC.ClientSecret, cfg.OIDC.RedirectURL)
		if err != nil {
			return fmt.Errorf("oidc: %w", err)
		}
		opts.SSO = sso
	}

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           adapthttp.New(expenseSvc, authSvc, opts).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("addr", cfg.Server.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

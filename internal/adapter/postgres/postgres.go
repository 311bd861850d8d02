// Package postgres implements the domain repositories using PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/pressly/goose/v3"
	"go.uber.org/zap"

	"expensemanager/internal/config"
)

//go:embed migrations/*.sql
var migrations embed.FS

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// DB wraps a *sql.DB and implements domain repository interfaces.
type DB struct {
	sql *sql.DB
	now func() time.Time
}

// Open connects to PostgreSQL, pings, and runs migrations.
func Open(ctx context.Context, cfg config.DatabaseConfig, log *zap.Logger) (*DB, error) {
	s, err := sql.Open("postgres", cfg.URL)
	if err != nil {
		return nil, errors.Wrap(err, "open database")
	}
	s.SetMaxOpenConns(cfg.MaxOpenConns)
	s.SetMaxIdleConns(cfg.MaxIdleConns)
	s.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := s.PingContext(pingCtx); err != nil {
		_ = s.Close()
		return nil, errors.Wrap(err, "ping database")
	}

	if err := migrate(ctx, s, log); err != nil {
		_ = s.Close()
		return nil, err
	}
	return &DB{sql: s, now: time.Now}, nil
}

// Close closes the underlying database connection.
func (d *DB) Close() error {
	return d.sql.Close()
}

// Ping reports whether the database is reachable.
func (d *DB) Ping(ctx context.Context) error {
	return d.sql.PingContext(ctx)
}

func migrate(ctx context.Context, s *sql.DB, log *zap.Logger) error {
	goose.SetBaseFS(migrations)
	goose.SetLogger(gooseLogger{log: log.Named("migrations")})
	if err := goose.SetDialect("postgres"); err != nil {
		return errors.Wrap(err, "migrate")
	}
	if err := goose.UpContext(ctx, s, "migrations"); err != nil {
		return errors.Wrap(err, "migrate")
	}
	return nil
}

// gooseLogger forwards goose output to zap. Fatalf does not exit so that
// Open can return the failure to its caller.
type gooseLogger struct {
	log *zap.Logger
}

func (l gooseLogger) Printf(format string, v ...any) {
	l.log.Info(fmt.Sprintf(format, v...))
}

func (l gooseLogger) Fatalf(format string, v ...any) {
	l.log.Error(fmt.Sprintf(format, v...))
}

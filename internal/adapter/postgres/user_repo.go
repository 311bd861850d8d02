package postgres

import (
	"context"
	"database/sql"

	sq "github.com/Masterminds/squirrel"
	"github.com/pkg/errors"

	"expensemanager/internal/domain"
)

var _ domain.UserRepository = (*DB)(nil)

// FindByID retrieves a user by ID.
func (d *DB) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	return d.findUser(ctx, sq.Eq{"id": id})
}

// FindByUsername retrieves a user by username.
func (d *DB) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	return d.findUser(ctx, sq.Eq{"username": username})
}

func (d *DB) findUser(ctx context.Context, where sq.Eq) (*domain.User, error) {
	query := psql.Select("id", "username", "password", "role").
		From("users").
		Where(where)

	var u domain.User
	err := query.RunWith(d.sql).QueryRowContext(ctx).Scan(&u.ID, &u.Username, &u.Password, &u.Role)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "find user")
	}
	return &u, nil
}

// Create creates a new user.
func (d *DB) Create(ctx context.Context, username, password, role string) (*domain.User, error) {
	query := psql.Insert("users").
		Columns("username", "password", "role").
		Values(username, password, role).
		Suffix("RETURNING id")

	u := domain.User{Username: username, Password: password, Role: role}
	if err := query.RunWith(d.sql).QueryRowContext(ctx).Scan(&u.ID); err != nil {
		return nil, errors.Wrap(err, "create user")
	}
	return &u, nil
}

// Count returns the total number of users.
func (d *DB) Count(ctx context.Context) (int, error) {
	var count int
	err := psql.Select("COUNT(*)").From("users").RunWith(d.sql).QueryRowContext(ctx).Scan(&count)
	return count, errors.Wrap(err, "count users")
}

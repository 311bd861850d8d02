package postgres

import (
	"context"
	"database/sql"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/pkg/errors"

	"expensemanager/internal/domain"
)

// ExpenseRepo is the expense port backed by DB. It is a separate type
// because DB.FindByID already serves the user port.
type ExpenseRepo struct {
	db *DB
}

var _ domain.ExpenseRepository = (*ExpenseRepo)(nil)

// Expenses returns the expense repository over d.
func (d *DB) Expenses() *ExpenseRepo {
	return &ExpenseRepo{db: d}
}

// FindByID returns the expense with id, or nil when absent.
func (r *ExpenseRepo) FindByID(ctx context.Context, id int64) (*domain.Expense, error) {
	query := psql.Select("id", "user_id", "amount", "description", "date").
		From("expenses").
		Where(sq.Eq{"id": id})

	var e domain.Expense
	err := query.RunWith(r.db.sql).QueryRowContext(ctx).Scan(&e.ID, &e.UserID, &e.Amount, &e.Description, &e.Date)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "find expense")
	}
	return &e, nil
}

// FindAllExpensesWithUsers returns every expense.
func (r *ExpenseRepo) FindAllExpensesWithUsers(ctx context.Context) ([]domain.ExpenseWithUser, error) {
	return r.list(ctx, "find all expenses", joinedExpenses())
}

// FindPendingExpensesWithUsers returns expenses awaiting a decision.
func (r *ExpenseRepo) FindPendingExpensesWithUsers(ctx context.Context) ([]domain.ExpenseWithUser, error) {
	return r.list(ctx, "find pending expenses", joinedExpenses().Where(sq.Eq{"a.status": domain.StatusPending}))
}

// FindExpensesByUser returns the expenses submitted by userID.
func (r *ExpenseRepo) FindExpensesByUser(ctx context.Context, userID int64) ([]domain.ExpenseWithUser, error) {
	return r.list(ctx, "find expenses by user", joinedExpenses().Where(sq.Eq{"e.user_id": userID}))
}

// FindExpensesByCategory matches category as a case-insensitive substring of
// the description. LIKE wildcards in category are matched literally.
func (r *ExpenseRepo) FindExpensesByCategory(ctx context.Context, category string) ([]domain.ExpenseWithUser, error) {
	return r.list(ctx, "find expenses by category", byCategory(category))
}

// FindExpensesByDateRange returns expenses dated within [start, end].
func (r *ExpenseRepo) FindExpensesByDateRange(ctx context.Context, start, end string) ([]domain.ExpenseWithUser, error) {
	query := joinedExpenses().Where(sq.And{
		sq.GtOrEq{"e.date": start},
		sq.LtOrEq{"e.date": end},
	})
	return r.list(ctx, "find expenses by date range", query)
}

func joinedExpenses() sq.SelectBuilder {
	return psql.Select(
		"e.id", "e.user_id", "e.amount", "e.description", "e.date",
		"u.id", "u.username", "u.role",
		"a.id", "a.expense_id", "a.status", "a.reviewer", "a.comment", "a.review_date",
	).
		From("expenses e").
		Join("users u ON u.id = e.user_id").
		Join("approvals a ON a.expense_id = e.id").
		OrderBy("e.date DESC", "e.id DESC")
}

func byCategory(category string) sq.SelectBuilder {
	return joinedExpenses().Where(`e.description ILIKE ? ESCAPE '\'`, "%"+escapeLike(category)+"%")
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func (r *ExpenseRepo) list(ctx context.Context, op string, query sq.SelectBuilder) ([]domain.ExpenseWithUser, error) {
	rows, err := query.RunWith(r.db.sql).QueryContext(ctx)
	if err != nil {
		return nil, errors.Wrap(err, op)
	}
	defer rows.Close()

	result := make([]domain.ExpenseWithUser, 0)
	for rows.Next() {
		var (
			row        domain.ExpenseWithUser
			reviewer   sql.NullInt64
			comment    sql.NullString
			reviewDate sql.NullString
		)
		err := rows.Scan(
			&row.Expense.ID, &row.Expense.UserID, &row.Expense.Amount, &row.Expense.Description, &row.Expense.Date,
			&row.User.ID, &row.User.Username, &row.User.Role,
			&row.Approval.ID, &row.Approval.ExpenseID, &row.Approval.Status, &reviewer, &comment, &reviewDate,
		)
		if err != nil {
			return nil, errors.Wrap(err, op)
		}
		row.Approval.Reviewer = int64OrNil(reviewer)
		row.Approval.Comment = stringOrNil(comment)
		row.Approval.ReviewDate = stringOrNil(reviewDate)
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, op)
	}
	return result, nil
}

func int64OrNil(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	return &v.Int64
}

func stringOrNil(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	return &v.String
}

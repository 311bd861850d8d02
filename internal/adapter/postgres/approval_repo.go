package postgres

import (
	"context"
	"database/sql"

	sq "github.com/Masterminds/squirrel"
	"github.com/pkg/errors"

	"expensemanager/internal/domain"
)

// reviewDateLayout matches the textual timestamps stored in review_date.
const reviewDateLayout = "2006-01-02 15:04:05"

var _ domain.ApprovalRepository = (*DB)(nil)

// CreateApproval attaches an approval record to an expense.
func (d *DB) CreateApproval(ctx context.Context, expenseID int64, status string) (int64, error) {
	query := psql.Insert("approvals").
		Columns("expense_id", "status").
		Values(expenseID, status).
		Suffix("RETURNING id")

	var id int64
	if err := query.RunWith(d.sql).QueryRowContext(ctx).Scan(&id); err != nil {
		return 0, errors.Wrap(err, "create approval")
	}
	return id, nil
}

// FindByExpenseID returns the approval for expenseID, or nil when absent.
func (d *DB) FindByExpenseID(ctx context.Context, expenseID int64) (*domain.Approval, error) {
	query := psql.Select("id", "expense_id", "status", "reviewer", "comment", "review_date").
		From("approvals").
		Where(sq.Eq{"expense_id": expenseID})

	var (
		a          domain.Approval
		reviewer   sql.NullInt64
		comment    sql.NullString
		reviewDate sql.NullString
	)
	err := query.RunWith(d.sql).QueryRowContext(ctx).Scan(&a.ID, &a.ExpenseID, &a.Status, &reviewer, &comment, &reviewDate)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "find approval")
	}
	a.Reviewer = int64OrNil(reviewer)
	a.Comment = stringOrNil(comment)
	a.ReviewDate = stringOrNil(reviewDate)
	return &a, nil
}

// UpdateApprovalStatus records a decision on a pending approval. Only one of
// several concurrent decisions can match the pending row; the others affect
// nothing and report false, as do unknown expenses and unknown reviewers.
func (d *DB) UpdateApprovalStatus(ctx context.Context, expenseID int64, status string, reviewerID int64, comment *string) (bool, error) {
	query := decisionQuery(expenseID, status, reviewerID, comment, d.now().UTC().Format(reviewDateLayout))

	res, err := query.RunWith(d.sql).ExecContext(ctx)
	if err != nil {
		return false, errors.Wrap(err, "update approval")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, errors.Wrap(err, "update approval")
	}
	return n > 0, nil
}

func decisionQuery(expenseID int64, status string, reviewerID int64, comment *string, reviewDate string) sq.UpdateBuilder {
	return psql.Update("approvals").
		Set("status", status).
		Set("reviewer", reviewerID).
		Set("comment", comment).
		Set("review_date", reviewDate).
		Where(sq.Eq{"expense_id": expenseID}).
		Where(sq.Eq{"status": domain.StatusPending}).
		Where("EXISTS (SELECT 1 FROM users WHERE id = ?)", reviewerID)
}

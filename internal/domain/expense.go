package domain

import "context"

// Approval statuses.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusDenied   = "denied"
)

// Expense is a single expense submitted by an employee.
type Expense struct {
	ID          int64   `json:"id"`
	UserID      int64   `json:"userId"`
	Amount      float64 `json:"amount"`
	Description string  `json:"description"`
	// Date is an ISO yyyy-MM-dd string.
	Date string `json:"date"`
}

// Approval is the review record attached 1:1 to an expense.
type Approval struct {
	ID         int64   `json:"id"`
	ExpenseID  int64   `json:"expenseId"`
	Status     string  `json:"status"`
	Reviewer   *int64  `json:"reviewer"`
	Comment    *string `json:"comment"`
	ReviewDate *string `json:"reviewDate"`
}

// ExpenseWithUser is the read model joining an expense with its owner and its
// approval. It is built per query and never persisted.
type ExpenseWithUser struct {
	Expense  Expense  `json:"expense"`
	User     User     `json:"user"`
	Approval Approval `json:"approval"`
}

// ExpenseRepository is the port for expense queries. List methods return an
// empty, non-nil slice when nothing matches; results are ordered by expense
// date, most recent first.
type ExpenseRepository interface {
	FindByID(ctx context.Context, id int64) (*Expense, error)
	FindAllExpensesWithUsers(ctx context.Context) ([]ExpenseWithUser, error)
	FindPendingExpensesWithUsers(ctx context.Context) ([]ExpenseWithUser, error)
	FindExpensesByUser(ctx context.Context, userID int64) ([]ExpenseWithUser, error)
	// FindExpensesByCategory does a case-insensitive substring match over the
	// description.
	FindExpensesByCategory(ctx context.Context, category string) ([]ExpenseWithUser, error)
	// FindExpensesByDateRange matches expense dates within [start, end].
	FindExpensesByDateRange(ctx context.Context, start, end string) ([]ExpenseWithUser, error)
}

// ApprovalRepository is the port for approval persistence.
type ApprovalRepository interface {
	CreateApproval(ctx context.Context, expenseID int64, status string) (int64, error)
	FindByExpenseID(ctx context.Context, expenseID int64) (*Approval, error)
	// UpdateApprovalStatus moves a pending approval to status, stamping the
	// reviewer, comment and review date. It reports whether a row changed.
	UpdateApprovalStatus(ctx context.Context, expenseID int64, status string, reviewerID int64, comment *string) (bool, error)
}

package app

import (
	"context"

	"expensemanager/internal/domain"
	"expensemanager/internal/metrics"

	"go.uber.org/zap"
)

// ExpenseService encapsulates expense review and reporting use cases. It holds
// no state of its own; every call goes straight to the repositories.
type ExpenseService struct {
	expenses  domain.ExpenseRepository
	approvals domain.ApprovalRepository
	log       *zap.Logger
}

// NewExpenseService creates an ExpenseService backed by the given repositories.
func NewExpenseService(expenses domain.ExpenseRepository, approvals domain.ApprovalRepository, log *zap.Logger) *ExpenseService {
	if log == nil {
		log = zap.NewNop()
	}
	return &ExpenseService{expenses: expenses, approvals: approvals, log: log}
}

// PendingExpenses returns every expense still awaiting review, most recent
// first.
func (s *ExpenseService) PendingExpenses(ctx context.Context) ([]domain.ExpenseWithUser, error) {
	return orEmpty(s.expenses.FindPendingExpensesWithUsers(ctx))
}

// AllExpenses returns every expense regardless of status, most recent first.
func (s *ExpenseService) AllExpenses(ctx context.Context) ([]domain.ExpenseWithUser, error) {
	return orEmpty(s.expenses.FindAllExpensesWithUsers(ctx))
}

// ExpensesByEmployee returns the expenses owned by employeeID. An unknown id
// yields an empty slice.
func (s *ExpenseService) ExpensesByEmployee(ctx context.Context, employeeID int64) ([]domain.ExpenseWithUser, error) {
	return orEmpty(s.expenses.FindExpensesByUser(ctx, employeeID))
}

// ExpensesByCategory returns the expenses whose description contains category,
// ignoring case. The category is passed to the repository as given.
func (s *ExpenseService) ExpensesByCategory(ctx context.Context, category string) ([]domain.ExpenseWithUser, error) {
	return orEmpty(s.expenses.FindExpensesByCategory(ctx, category))
}

// ExpensesByDateRange returns the expenses dated within [start, end]. The
// bounds are not validated here; an inverted range simply matches nothing.
func (s *ExpenseService) ExpensesByDateRange(ctx context.Context, start, end string) ([]domain.ExpenseWithUser, error) {
	return orEmpty(s.expenses.FindExpensesByDateRange(ctx, start, end))
}

// Expense returns a single expense and its approval record, or nil when the
// expense does not exist.
func (s *ExpenseService) Expense(ctx context.Context, id int64) (*domain.Expense, *domain.Approval, error) {
	e, err := s.expenses.FindByID(ctx, id)
	if err != nil || e == nil {
		return nil, nil, err
	}
	a, err := s.approvals.FindByExpenseID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return e, a, nil
}

// ApproveExpense marks a pending expense approved by managerID. It returns
// false, without an error, when no approval row could be updated.
func (s *ExpenseService) ApproveExpense(ctx context.Context, expenseID, managerID int64, comment *string) (bool, error) {
	return s.decide(ctx, expenseID, managerID, domain.StatusApproved, comment)
}

// DenyExpense marks a pending expense denied by managerID. It returns false,
// without an error, when no approval row could be updated.
func (s *ExpenseService) DenyExpense(ctx context.Context, expenseID, managerID int64, comment *string) (bool, error) {
	return s.decide(ctx, expenseID, managerID, domain.StatusDenied, comment)
}

func (s *ExpenseService) decide(ctx context.Context, expenseID, managerID int64, status string, comment *string) (bool, error) {
	updated, err := s.approvals.UpdateApprovalStatus(ctx, expenseID, status, managerID, comment)
	if err != nil {
		return false, err
	}
	metrics.ObserveDecision(status, updated)
	s.log.Info("expense decision",
		zap.Int64("expense_id", expenseID),
		zap.Int64("manager_id", managerID),
		zap.String("status", status),
		zap.Bool("updated", updated),
	)
	return updated, nil
}

func orEmpty(items []domain.ExpenseWithUser, err error) ([]domain.ExpenseWithUser, error) {
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []domain.ExpenseWithUser{}
	}
	return items, nil
}

package app

import (
	"context"
	"errors"

	"expensemanager/internal/domain"
)

type mockUserRepo struct {
	findByIDFn       func(ctx context.Context, id int64) (*domain.User, error)
	findByUsernameFn func(ctx context.Context, username string) (*domain.User, error)
	createFn         func(ctx context.Context, username, password, role string) (*domain.User, error)
	countFn          func(ctx context.Context) (int, error)
}

func (m *mockUserRepo) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockUserRepo) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	if m.findByUsernameFn != nil {
		return m.findByUsernameFn(ctx, username)
	}
	return nil, nil
}

func (m *mockUserRepo) Create(ctx context.Context, username, password, role string) (*domain.User, error) {
	if m.createFn != nil {
		return m.createFn(ctx, username, password, role)
	}
	return &domain.User{ID: 1, Username: username, Password: password, Role: role}, nil
}

func (m *mockUserRepo) Count(ctx context.Context) (int, error) {
	if m.countFn != nil {
		return m.countFn(ctx)
	}
	return 0, nil
}

type mockExpenseRepo struct {
	findByIDFn    func(ctx context.Context, id int64) (*domain.Expense, error)
	findAllFn     func(ctx context.Context) ([]domain.ExpenseWithUser, error)
	findPendingFn func(ctx context.Context) ([]domain.ExpenseWithUser, error)
	byUserFn      func(ctx context.Context, userID int64) ([]domain.ExpenseWithUser, error)
	byCategoryFn  func(ctx context.Context, category string) ([]domain.ExpenseWithUser, error)
	byDateRangeFn func(ctx context.Context, start, end string) ([]domain.ExpenseWithUser, error)
}

func (m *mockExpenseRepo) FindByID(ctx context.Context, id int64) (*domain.Expense, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockExpenseRepo) FindAllExpensesWithUsers(ctx context.Context) ([]domain.ExpenseWithUser, error) {
	if m.findAllFn != nil {
		return m.findAllFn(ctx)
	}
	return nil, nil
}

func (m *mockExpenseRepo) FindPendingExpensesWithUsers(ctx context.Context) ([]domain.ExpenseWithUser, error) {
	if m.findPendingFn != nil {
		return m.findPendingFn(ctx)
	}
	return nil, nil
}

func (m *mockExpenseRepo) FindExpensesByUser(ctx context.Context, userID int64) ([]domain.ExpenseWithUser, error) {
	if m.byUserFn != nil {
		return m.byUserFn(ctx, userID)
	}
	return nil, nil
}

func (m *mockExpenseRepo) FindExpensesByCategory(ctx context.Context, category string) ([]domain.ExpenseWithUser, error) {
	if m.byCategoryFn != nil {
		return m.byCategoryFn(ctx, category)
	}
	return nil, nil
}

func (m *mockExpenseRepo) FindExpensesByDateRange(ctx context.Context, start, end string) ([]domain.ExpenseWithUser, error) {
	if m.byDateRangeFn != nil {
		return m.byDateRangeFn(ctx, start, end)
	}
	return nil, nil
}

type mockApprovalRepo struct {
	createFn    func(ctx context.Context, expenseID int64, status string) (int64, error)
	findFn      func(ctx context.Context, expenseID int64) (*domain.Approval, error)
	updateFn    func(ctx context.Context, expenseID int64, status string, reviewerID int64, comment *string) (bool, error)
	updateCalls int
}

func (m *mockApprovalRepo) CreateApproval(ctx context.Context, expenseID int64, status string) (int64, error) {
	if m.createFn != nil {
		return m.createFn(ctx, expenseID, status)
	}
	return 1, nil
}

func (m *mockApprovalRepo) FindByExpenseID(ctx context.Context, expenseID int64) (*domain.Approval, error) {
	if m.findFn != nil {
		return m.findFn(ctx, expenseID)
	}
	return nil, nil
}

func (m *mockApprovalRepo) UpdateApprovalStatus(ctx context.Context, expenseID int64, status string, reviewerID int64, comment *string) (bool, error) {
	m.updateCalls++
	if m.updateFn != nil {
		return m.updateFn(ctx, expenseID, status, reviewerID, comment)
	}
	return false, nil
}

type mockTokenIssuer struct {
	issueFn    func(user *domain.User) (string, error)
	validateFn func(token string) (*Claims, error)
	issued     int
}

func (m *mockTokenIssuer) Issue(user *domain.User) (string, error) {
	m.issued++
	if m.issueFn != nil {
		return m.issueFn(user)
	}
	return "token-for-" + user.Username, nil
}

func (m *mockTokenIssuer) Validate(token string) (*Claims, error) {
	if m.validateFn != nil {
		return m.validateFn(token)
	}
	return nil, ErrInvalidToken
}

var errStore = errors.New("connection refused")

func strPtr(s string) *string { return &s }

func int64Ptr(v int64) *int64 { return &v }

package app

import (
	"context"
	"testing"

	"expensemanager/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func sampleExpense(id int64, date, status string) domain.ExpenseWithUser {
	return domain.ExpenseWithUser{
		Expense:  domain.Expense{ID: id, UserID: 101, Amount: 10, Description: "Lunch", Date: date},
		User:     domain.User{ID: 101, Username: "employee1", Role: domain.RoleEmployee},
		Approval: domain.Approval{ID: id, ExpenseID: id, Status: status},
	}
}

func TestExpenseService_ListsReturnEmptyNotNil(t *testing.T) {
	svc := NewExpenseService(&mockExpenseRepo{}, &mockApprovalRepo{}, nil)
	ctx := context.Background()

	calls := map[string]func() ([]domain.ExpenseWithUser, error){
		"pending":   func() ([]domain.ExpenseWithUser, error) { return svc.PendingExpenses(ctx) },
		"all":       func() ([]domain.ExpenseWithUser, error) { return svc.AllExpenses(ctx) },
		"employee":  func() ([]domain.ExpenseWithUser, error) { return svc.ExpensesByEmployee(ctx, 999) },
		"category":  func() ([]domain.ExpenseWithUser, error) { return svc.ExpensesByCategory(ctx, "") },
		"dateRange": func() ([]domain.ExpenseWithUser, error) { return svc.ExpensesByDateRange(ctx, "2024-12-31", "2024-01-01") },
	}
	for name, call := range calls {
		t.Run(name, func(t *testing.T) {
			got, err := call()
			require.NoError(t, err)
			require.NotNil(t, got)
			assert.Empty(t, got)
		})
	}
}

func TestExpenseService_AllExpensesPreservesRepositoryOrder(t *testing.T) {
	repo := &mockExpenseRepo{
		findAllFn: func(context.Context) ([]domain.ExpenseWithUser, error) {
			return []domain.ExpenseWithUser{
				sampleExpense(2, "2024-01-20", domain.StatusPending),
				sampleExpense(1, "2024-01-10", domain.StatusApproved),
			}, nil
		},
	}
	svc := NewExpenseService(repo, &mockApprovalRepo{}, nil)

	got, err := svc.AllExpenses(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "2024-01-20", got[0].Expense.Date)
	assert.Equal(t, "2024-01-10", got[1].Expense.Date)
}

func TestExpenseService_DelegatesFilters(t *testing.T) {
	var gotUser int64
	var gotCategory, gotStart, gotEnd string
	repo := &mockExpenseRepo{
		findPendingFn: func(context.Context) ([]domain.ExpenseWithUser, error) {
			return []domain.ExpenseWithUser{sampleExpense(3, "2024-02-01", domain.StatusPending)}, nil
		},
		byUserFn: func(_ context.Context, userID int64) ([]domain.ExpenseWithUser, error) {
			gotUser = userID
			return []domain.ExpenseWithUser{sampleExpense(1, "2024-01-10", domain.StatusPending)}, nil
		},
		byCategoryFn: func(_ context.Context, category string) ([]domain.ExpenseWithUser, error) {
			gotCategory = category
			return nil, nil
		},
		byDateRangeFn: func(_ context.Context, start, end string) ([]domain.ExpenseWithUser, error) {
			gotStart, gotEnd = start, end
			return nil, nil
		},
	}
	svc := NewExpenseService(repo, &mockApprovalRepo{}, nil)
	ctx := context.Background()

	pending, err := svc.PendingExpenses(ctx)
	require.NoError(t, err)
	assert.Len(t, pending, 1)

	byUser, err := svc.ExpensesByEmployee(ctx, 101)
	require.NoError(t, err)
	assert.Len(t, byUser, 1)
	assert.Equal(t, int64(101), gotUser)

	_, err = svc.ExpensesByCategory(ctx, "Office%_")
	require.NoError(t, err)
	assert.Equal(t, "Office%_", gotCategory)

	_, err = svc.ExpensesByDateRange(ctx, "2024-01-01", "2024-01-31")
	require.NoError(t, err)
	assert.Equal(t, "2024-01-01", gotStart)
	assert.Equal(t, "2024-01-31", gotEnd)
}

func TestExpenseService_StoreFailurePropagates(t *testing.T) {
	repo := &mockExpenseRepo{
		findAllFn: func(context.Context) ([]domain.ExpenseWithUser, error) { return nil, errStore },
	}
	svc := NewExpenseService(repo, &mockApprovalRepo{}, nil)

	got, err := svc.AllExpenses(context.Background())
	assert.ErrorIs(t, err, errStore)
	assert.Nil(t, got)
}

func TestExpenseService_Decisions(t *testing.T) {
	tests := []struct {
		name       string
		deny       bool
		expenseID  int64
		managerID  int64
		comment    *string
		rowUpdated bool
		wantStatus string
	}{
		{"approve existing", false, 1, 201, strPtr("Looks good"), true, domain.StatusApproved},
		{"approve unknown expense", false, -999, 201, strPtr("x"), false, domain.StatusApproved},
		{"approve unknown manager", false, 1, 9999, nil, false, domain.StatusApproved},
		{"approve nil comment", false, 1, 201, nil, true, domain.StatusApproved},
		{"deny existing", true, 2, 201, strPtr("Missing receipt"), true, domain.StatusDenied},
		{"deny unknown expense", true, -999, 201, nil, false, domain.StatusDenied},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			approvals := &mockApprovalRepo{
				updateFn: func(_ context.Context, expenseID int64, status string, reviewerID int64, comment *string) (bool, error) {
					assert.Equal(t, tc.expenseID, expenseID)
					assert.Equal(t, tc.wantStatus, status)
					assert.Equal(t, tc.managerID, reviewerID)
					assert.Equal(t, tc.comment, comment)
					return tc.rowUpdated, nil
				},
			}
			svc := NewExpenseService(&mockExpenseRepo{}, approvals, nil)

			var ok bool
			var err error
			if tc.deny {
				ok, err = svc.DenyExpense(context.Background(), tc.expenseID, tc.managerID, tc.comment)
			} else {
				ok, err = svc.ApproveExpense(context.Background(), tc.expenseID, tc.managerID, tc.comment)
			}
			require.NoError(t, err)
			assert.Equal(t, tc.rowUpdated, ok)
			assert.Equal(t, 1, approvals.updateCalls)
		})
	}
}

func TestExpenseService_DecisionStoreFailure(t *testing.T) {
	approvals := &mockApprovalRepo{
		updateFn: func(context.Context, int64, string, int64, *string) (bool, error) { return false, errStore },
	}
	svc := NewExpenseService(&mockExpenseRepo{}, approvals, nil)

	ok, err := svc.ApproveExpense(context.Background(), 1, 201, nil)
	assert.False(t, ok)
	assert.ErrorIs(t, err, errStore)
}

func TestExpenseService_DecisionIsLogged(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	approvals := &mockApprovalRepo{
		updateFn: func(context.Context, int64, string, int64, *string) (bool, error) { return true, nil },
	}
	svc := NewExpenseService(&mockExpenseRepo{}, approvals, zap.New(core))

	_, err := svc.DenyExpense(context.Background(), 7, 201, strPtr("no"))
	require.NoError(t, err)

	entries := logs.FilterMessage("expense decision").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, int64(7), fields["expense_id"])
	assert.Equal(t, domain.StatusDenied, fields["status"])
	assert.Equal(t, true, fields["updated"])
}

func TestExpenseService_Expense(t *testing.T) {
	expenses := &mockExpenseRepo{
		findByIDFn: func(_ context.Context, id int64) (*domain.Expense, error) {
			if id != 5 {
				return nil, nil
			}
			return &domain.Expense{ID: 5, UserID: 101, Amount: 42, Description: "Taxi", Date: "2024-03-01"}, nil
		},
	}
	approvals := &mockApprovalRepo{
		findFn: func(_ context.Context, expenseID int64) (*domain.Approval, error) {
			return &domain.Approval{ID: 9, ExpenseID: expenseID, Status: domain.StatusPending}, nil
		},
	}
	svc := NewExpenseService(expenses, approvals, nil)

	e, a, err := svc.Expense(context.Background(), 5)
	require.NoError(t, err)
	require.NotNil(t, e)
	require.NotNil(t, a)
	assert.Equal(t, "Taxi", e.Description)
	assert.Equal(t, domain.StatusPending, a.Status)

	e, a, err = svc.Expense(context.Background(), 6)
	require.NoError(t, err)
	assert.Nil(t, e)
	assert.Nil(t, a)
}

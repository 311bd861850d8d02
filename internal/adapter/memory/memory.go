// Package memory implements an in-memory repository for development and testing.
package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"expensemanager/internal/domain"
)

// ErrUserExists is returned when a username is already taken.
var ErrUserExists = errors.New("user already exists")

// DB implements an in-memory database storage. It applies the same ordering,
// filtering and conditional update rules as the PostgreSQL adapter.
type DB struct {
	mu        sync.Mutex
	users     []*domain.User
	expenses  []domain.Expense
	approvals []domain.Approval

	userIDCounter     int64
	expenseIDCounter  int64
	approvalIDCounter int64

	now func() time.Time
}

// New creates a new in-memory database.
func New() *DB {
	return &DB{now: time.Now}
}

// Ensure interfaces are met.
var (
	_ domain.UserRepository     = (*DB)(nil)
	_ domain.ApprovalRepository = (*DB)(nil)
	_ domain.ExpenseRepository  = (*ExpenseRepo)(nil)
)

// AddUser seeds a user. password may be a bcrypt hash or a plain credential.
func (db *DB) AddUser(username, password, role string) (*domain.User, error) {
	return db.Create(context.Background(), username, password, role)
}

// AddExpense seeds an expense together with its pending approval.
func (db *DB) AddExpense(userID int64, amount float64, description, date string) (int64, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if db.userByID(userID) == nil {
		return 0, errors.New("unknown user")
	}

	db.expenseIDCounter++
	id := db.expenseIDCounter
	db.expenses = append(db.expenses, domain.Expense{
		ID:          id,
		UserID:      userID,
		Amount:      amount,
		Description: description,
		Date:        date,
	})
	db.insertApproval(id, domain.StatusPending)
	return id, nil
}

// --- UserRepository ---

// FindByID retrieves a user by ID.
func (db *DB) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if u := db.userByID(id); u != nil {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

// FindByUsername retrieves a user by username.
func (db *DB) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, u := range db.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

// Create creates a new user.
func (db *DB) Create(ctx context.Context, username, password, role string) (*domain.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, u := range db.users {
		if u.Username == username {
			return nil, ErrUserExists
		}
	}

	db.userIDCounter++
	u := &domain.User{
		ID:       db.userIDCounter,
		Username: username,
		Password: password,
		Role:     role,
	}
	db.users = append(db.users, u)
	cp := *u
	return &cp, nil
}

// Count returns the total number of users.
func (db *DB) Count(ctx context.Context) (int, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	return len(db.users), nil
}

// --- ExpenseRepository ---

// Expenses returns the expense port over db. It lives on its own type because
// DB.FindByID already serves the user port.
func (db *DB) Expenses() *ExpenseRepo {
	return &ExpenseRepo{db: db}
}

// ExpenseRepo is the expense port backed by DB.
type ExpenseRepo struct {
	db *DB
}

// FindByID returns the expense with id, or nil when absent.
func (r *ExpenseRepo) FindByID(ctx context.Context, id int64) (*domain.Expense, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	for _, e := range r.db.expenses {
		if e.ID == id {
			cp := e
			return &cp, nil
		}
	}
	return nil, nil
}

// FindAllExpensesWithUsers returns every expense.
func (r *ExpenseRepo) FindAllExpensesWithUsers(ctx context.Context) ([]domain.ExpenseWithUser, error) {
	return r.db.selectJoined(func(domain.Expense, domain.Approval) bool { return true }), nil
}

// FindPendingExpensesWithUsers returns expenses awaiting a decision.
func (r *ExpenseRepo) FindPendingExpensesWithUsers(ctx context.Context) ([]domain.ExpenseWithUser, error) {
	return r.db.selectJoined(func(_ domain.Expense, a domain.Approval) bool {
		return a.Status == domain.StatusPending
	}), nil
}

// FindExpensesByUser returns the expenses submitted by userID.
func (r *ExpenseRepo) FindExpensesByUser(ctx context.Context, userID int64) ([]domain.ExpenseWithUser, error) {
	return r.db.selectJoined(func(e domain.Expense, _ domain.Approval) bool {
		return e.UserID == userID
	}), nil
}

// FindExpensesByCategory matches category as a case-insensitive substring of
// the description.
func (r *ExpenseRepo) FindExpensesByCategory(ctx context.Context, category string) ([]domain.ExpenseWithUser, error) {
	needle := strings.ToLower(category)
	return r.db.selectJoined(func(e domain.Expense, _ domain.Approval) bool {
		return strings.Contains(strings.ToLower(e.Description), needle)
	}), nil
}

// FindExpensesByDateRange returns expenses dated within [start, end].
// ISO dates compare correctly as strings.
func (r *ExpenseRepo) FindExpensesByDateRange(ctx context.Context, start, end string) ([]domain.ExpenseWithUser, error) {
	return r.db.selectJoined(func(e domain.Expense, _ domain.Approval) bool {
		return e.Date >= start && e.Date <= end
	}), nil
}

// selectJoined joins expenses with their owner and approval, keeps those
// accepted by match and orders them by date then id, newest first. Rows
// without an owner or approval are skipped, mirroring the inner joins of the
// SQL adapter.
func (db *DB) selectJoined(match func(domain.Expense, domain.Approval) bool) []domain.ExpenseWithUser {
	db.mu.Lock()
	defer db.mu.Unlock()

	result := make([]domain.ExpenseWithUser, 0, len(db.expenses))
	for _, e := range db.expenses {
		u := db.userByID(e.UserID)
		a := db.approvalFor(e.ID)
		if u == nil || a == nil || !match(e, *a) {
			continue
		}
		result = append(result, domain.ExpenseWithUser{
			Expense:  e,
			User:     *u,
			Approval: copyApproval(*a),
		})
	}

	sort.SliceStable(result, func(i, j int) bool {
		if result[i].Expense.Date != result[j].Expense.Date {
			return result[i].Expense.Date > result[j].Expense.Date
		}
		return result[i].Expense.ID > result[j].Expense.ID
	})
	return result
}

// --- ApprovalRepository ---

// CreateApproval attaches an approval record to an expense.
func (db *DB) CreateApproval(ctx context.Context, expenseID int64, status string) (int64, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if db.approvalFor(expenseID) != nil {
		return 0, errors.New("approval already exists")
	}
	return db.insertApproval(expenseID, status), nil
}

// FindByExpenseID returns the approval for expenseID, or nil when absent.
func (db *DB) FindByExpenseID(ctx context.Context, expenseID int64) (*domain.Approval, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if a := db.approvalFor(expenseID); a != nil {
		cp := copyApproval(*a)
		return &cp, nil
	}
	return nil, nil
}

// UpdateApprovalStatus records a decision on a pending approval. It reports
// false when the approval is missing, already decided, or the reviewer does
// not exist.
func (db *DB) UpdateApprovalStatus(ctx context.Context, expenseID int64, status string, reviewerID int64, comment *string) (bool, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	a := db.approvalFor(expenseID)
	if a == nil || a.Status != domain.StatusPending || db.userByID(reviewerID) == nil {
		return false, nil
	}

	reviewer := reviewerID
	reviewDate := db.now().UTC().Format("2006-01-02 15:04:05")
	a.Status = status
	a.Reviewer = &reviewer
	a.Comment = nil
	if comment != nil {
		c := *comment
		a.Comment = &c
	}
	a.ReviewDate = &reviewDate
	return true, nil
}

// callers must hold db.mu.
func (db *DB) insertApproval(expenseID int64, status string) int64 {
	db.approvalIDCounter++
	db.approvals = append(db.approvals, domain.Approval{
		ID:        db.approvalIDCounter,
		ExpenseID: expenseID,
		Status:    status,
	})
	return db.approvalIDCounter
}

func (db *DB) userByID(id int64) *domain.User {
	for _, u := range db.users {
		if u.ID == id {
			return u
		}
	}
	return nil
}

func (db *DB) approvalFor(expenseID int64) *domain.Approval {
	for i := range db.approvals {
		if db.approvals[i].ExpenseID == expenseID {
			return &db.approvals[i]
		}
	}
	return nil
}

// copyApproval detaches the pointer fields so callers cannot mutate the store.
func copyApproval(a domain.Approval) domain.Approval {
	if a.Reviewer != nil {
		v := *a.Reviewer
		a.Reviewer = &v
	}
	if a.Comment != nil {
		v := *a.Comment
		a.Comment = &v
	}
	if a.ReviewDate != nil {
		v := *a.ReviewDate
		a.ReviewDate = &v
	}
	return a
}

// Package domain contains the core business entities and repository ports.
package domain

import "context"

// Roles recognised by the system.
const (
	RoleEmployee = "employee"
	RoleManager  = "manager"
)

// User is an employee or manager account. Users are created by seeding or an
// administrator; the services only read them.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	// Password holds either a bcrypt hash or a legacy plain credential.
	Password string `json:"-"`
	Role     string `json:"role"`
}

// IsManager reports whether the user holds the manager role. The comparison is
// exact and case-sensitive.
func (u *User) IsManager() bool {
	return u != nil && u.Role == RoleManager
}

// UserRepository defines the port for user persistence operations.
// Lookups return (nil, nil) when no user matches.
type UserRepository interface {
	FindByID(ctx context.Context, id int64) (*User, error)
	FindByUsername(ctx context.Context, username string) (*User, error)
	Create(ctx context.Context, username, password, role string) (*User, error)
	Count(ctx context.Context) (int, error)
}

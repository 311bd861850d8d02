package app

import (
	"context"
	"strconv"
	"strings"

	"expensemanager/internal/domain"
)

const legacyHeaderPrefix = "Bearer "

// LegacyAuthenticator resolves the old "Bearer <user id>" Authorization header.
//
// Deprecated: the header carries no signature. It is kept for older clients
// and is only consulted when auth.legacy_header is enabled. Use
// AuthService.Authenticate with a session token instead.
type LegacyAuthenticator struct {
	users     domain.UserRepository
	isManager func(*domain.User) bool
}

// NewLegacyAuthenticator wires the legacy path to a user store and the
// manager check it should apply.
func NewLegacyAuthenticator(users domain.UserRepository, isManager func(*domain.User) bool) *LegacyAuthenticator {
	return &LegacyAuthenticator{users: users, isManager: isManager}
}

// ValidateAuthentication returns the user named by header, or nil when the
// header does not hold a numeric id after the prefix. A malformed header never
// reaches the store.
//
// Deprecated: see LegacyAuthenticator.
func (a *LegacyAuthenticator) ValidateAuthentication(ctx context.Context, header string) (*domain.User, error) {
	id, ok := parseLegacyHeader(header)
	if !ok {
		return nil, nil
	}
	return a.users.FindByID(ctx, id)
}

// ValidateManagerAuthenticationLegacy resolves header and requires the
// manager role. The role check is skipped entirely when no user was resolved.
//
// Deprecated: see LegacyAuthenticator.
func (a *LegacyAuthenticator) ValidateManagerAuthenticationLegacy(ctx context.Context, header string) (*domain.User, error) {
	user, err := a.ValidateAuthentication(ctx, header)
	if err != nil || user == nil {
		return nil, err
	}
	if !a.isManager(user) {
		return nil, ErrNotManager
	}
	return user, nil
}

func parseLegacyHeader(header string) (int64, bool) {
	raw, ok := strings.CutPrefix(header, legacyHeaderPrefix)
	if !ok {
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

// Package app holds the application services and business logic.
package app

import (
	"context"
	"crypto/subtle"
	"errors"
	"strings"

	"expensemanager/internal/domain"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrInvalidCredentials indicates that the provided username or password was incorrect.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrNotManager indicates that the user authenticated but lacks the manager role.
	ErrNotManager = errors.New("manager role required")
	// ErrUserNotFound indicates that the user referenced by a token no longer exists.
	ErrUserNotFound = errors.New("user not found")
	// ErrUsersExist is returned by CreateInitialManager when seeding is no longer allowed.
	ErrUsersExist = errors.New("users already exist")
)

// TokenIssuer creates and checks session tokens.
type TokenIssuer interface {
	Issue(user *domain.User) (string, error)
	Validate(token string) (*Claims, error)
}

// AuthService verifies manager credentials and issues session tokens.
type AuthService struct {
	users  domain.UserRepository
	tokens TokenIssuer
	log    *zap.Logger
}

// NewAuthService creates a new authentication service.
func NewAuthService(users domain.UserRepository, tokens TokenIssuer, log *zap.Logger) *AuthService {
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthService{
		users:  users,
		tokens: tokens,
		log:    log,
	}
}

// AuthenticateUser returns the user whose stored credential matches password.
// A missing user or a mismatch yields ErrInvalidCredentials; store failures
// are returned as is.
func (s *AuthService) AuthenticateUser(ctx context.Context, username, password string) (*domain.User, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil || !passwordMatches(user.Password, password) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// AuthenticateManager verifies the credentials, checks the manager role and
// only then issues a token.
func (s *AuthService) AuthenticateManager(ctx context.Context, username, password string) (string, *domain.User, error) {
	user, err := s.AuthenticateUser(ctx, username, password)
	if err != nil {
		return "", nil, err
	}
	return s.issueForManager(user)
}

// AuthenticateManagerByUsername issues a token for a user already verified by
// an external identity provider. The user must exist and be a manager; SSO
// never provisions accounts.
func (s *AuthService) AuthenticateManagerByUsername(ctx context.Context, username string) (string, *domain.User, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return "", nil, err
	}
	if user == nil {
		return "", nil, ErrInvalidCredentials
	}
	return s.issueForManager(user)
}

func (s *AuthService) issueForManager(user *domain.User) (string, *domain.User, error) {
	if !s.IsManager(user) {
		s.log.Info("login rejected: not a manager", zap.Int64("user_id", user.ID))
		return "", nil, ErrNotManager
	}
	token, err := s.CreateJWTToken(user)
	if err != nil {
		return "", nil, err
	}
	s.log.Info("manager logged in", zap.Int64("user_id", user.ID), zap.String("username", user.Username))
	return token, user, nil
}

// IsManager reports whether user holds the manager role.
func (s *AuthService) IsManager(user *domain.User) bool {
	return user.IsManager()
}

// CreateJWTToken issues a signed session token carrying the user's id,
// username and role.
func (s *AuthService) CreateJWTToken(user *domain.User) (string, error) {
	return s.tokens.Issue(user)
}

// Authenticate resolves a session token to the current user record, so role
// changes take effect without waiting for the token to expire.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	claims, err := s.tokens.Validate(token)
	if err != nil {
		return nil, err
	}
	user, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// CreateInitialManager creates a manager account if no users exist yet.
func (s *AuthService) CreateInitialManager(ctx context.Context, username, password string) error {
	count, err := s.users.Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrUsersExist
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	user, err := s.users.Create(ctx, username, string(hash), domain.RoleManager)
	if err != nil {
		return err
	}
	s.log.Info("bootstrap manager created", zap.Int64("user_id", user.ID), zap.String("username", user.Username))
	return nil
}

// passwordMatches checks supplied against a bcrypt hash, or verbatim against
// a legacy plain credential.
func passwordMatches(stored, supplied string) bool {
	if stored == "" {
		return false
	}
	if isBcryptHash(stored) {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(supplied)) == nil
	}
	return ConstantTimeCompare(stored, supplied)
}

func isBcryptHash(s string) bool {
	return len(s) == 60 && (strings.HasPrefix(s, "$2a$") || strings.HasPrefix(s, "$2b$") || strings.HasPrefix(s, "$2y$"))
}

// ConstantTimeCompare performs a constant-time comparison of two strings.
func ConstantTimeCompare(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

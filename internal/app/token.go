package app

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"expensemanager/internal/domain"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	// ErrInvalidToken indicates a malformed, tampered or otherwise unusable token.
	ErrInvalidToken = errors.New("invalid token")
	// ErrExpiredToken indicates the token's lifetime has passed.
	ErrExpiredToken = errors.New("token expired")
)

// MinSecretLength is the shortest HMAC secret NewJWTIssuer accepts.
const MinSecretLength = 32

// Claims are the session token claims.
type Claims struct {
	UserID   int64  `json:"uid"`
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// JWTIssuer signs and validates HS256 session tokens.
type JWTIssuer struct {
	key       []byte
	lifetime  time.Duration
	clockSkew time.Duration
	now       func() time.Time
}

var _ TokenIssuer = (*JWTIssuer)(nil)

// NewJWTIssuer creates a token issuer. secret must be at least
// MinSecretLength bytes.
func NewJWTIssuer(secret string, lifetime time.Duration) (*JWTIssuer, error) {
	if len(secret) < MinSecretLength {
		return nil, fmt.Errorf("jwt secret must be at least %d characters", MinSecretLength)
	}
	if lifetime <= 0 {
		return nil, errors.New("token lifetime must be positive")
	}
	return &JWTIssuer{
		key:       []byte(secret),
		lifetime:  lifetime,
		clockSkew: time.Minute,
		now:       time.Now,
	}, nil
}

// Issue signs a token for user.
func (j *JWTIssuer) Issue(user *domain.User) (string, error) {
	now := j.now()
	claims := Claims{
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(user.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.lifetime)),
			ID:        uuid.NewString(),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(j.key)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Validate parses token and returns its claims.
func (j *JWTIssuer) Validate(token string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(token, &Claims{},
		func(t *jwt.Token) (any, error) {
			return j.key, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithLeeway(j.clockSkew),
		jwt.WithTimeFunc(j.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

package app

import (
	"testing"
	"time"

	"expensemanager/internal/domain"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestNewJWTIssuer_Validation(t *testing.T) {
	_, err := NewJWTIssuer("short", time.Hour)
	assert.Error(t, err)

	_, err = NewJWTIssuer(testSecret, 0)
	assert.Error(t, err)
}

func TestJWTIssuer_RoundTrip(t *testing.T) {
	issuer, err := NewJWTIssuer(testSecret, time.Hour)
	require.NoError(t, err)
	user := &domain.User{ID: 42, Username: "manager1", Role: domain.RoleManager}

	token, err := issuer.Issue(user)
	require.NoError(t, err)

	claims, err := issuer.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, "manager1", claims.Username)
	assert.Equal(t, domain.RoleManager, claims.Role)
	assert.Equal(t, "42", claims.Subject)
	assert.NotEmpty(t, claims.ID)
}

func TestJWTIssuer_Expired(t *testing.T) {
	issuer, err := NewJWTIssuer(testSecret, time.Hour)
	require.NoError(t, err)
	issuer.now = func() time.Time { return time.Now().Add(-3 * time.Hour) }

	token, err := issuer.Issue(&domain.User{ID: 1, Username: "m", Role: domain.RoleManager})
	require.NoError(t, err)

	issuer.now = time.Now
	_, err = issuer.Validate(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestJWTIssuer_RejectsForeignTokens(t *testing.T) {
	issuer, err := NewJWTIssuer(testSecret, time.Hour)
	require.NoError(t, err)
	other, err := NewJWTIssuer("ffffffffffffffffffffffffffffffff", time.Hour)
	require.NoError(t, err)

	foreign, err := other.Issue(&domain.User{ID: 1, Username: "m", Role: domain.RoleManager})
	require.NoError(t, err)
	_, err = issuer.Validate(foreign)
	assert.ErrorIs(t, err, ErrInvalidToken)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"uid": 1}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = issuer.Validate(unsigned)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = issuer.Validate("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

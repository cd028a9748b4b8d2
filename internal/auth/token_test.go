package auth_test

import (
	"testing"
	"time"

	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskboard/backend/internal/auth"
)

func newIssuer() *auth.TokenIssuer {
	return auth.NewTokenIssuer("test-secret", "taskboard-backend", 2*time.Hour, 24*time.Hour)
}

func TestIssueAndVerifyAccessToken(t *testing.T) {
	issuer := newIssuer()
	userID := uuid.Must(uuid.NewV4())

	token, err := issuer.IssueAccessToken(userID, "ADMIN")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := issuer.Verify(token, auth.TokenTypeAccess)
	require.NoError(t, err)
	assert.Equal(t, userID.String(), claims.UserID)
	assert.Equal(t, "ADMIN", claims.Role)
	assert.Equal(t, auth.TokenTypeAccess, claims.TokenType)
}

func TestRefreshTokenRejectedAsAccessToken(t *testing.T) {
	issuer := newIssuer()
	userID := uuid.Must(uuid.NewV4())

	refresh, err := issuer.IssueRefreshToken(userID, "USER")
	require.NoError(t, err)

	_, err = issuer.Verify(refresh, auth.TokenTypeAccess)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestAccessTokenRejectedAsRefreshToken(t *testing.T) {
	issuer := newIssuer()
	userID := uuid.Must(uuid.NewV4())

	access, err := issuer.IssueAccessToken(userID, "USER")
	require.NoError(t, err)

	_, err = issuer.Verify(access, auth.TokenTypeRefresh)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestExpiredTokenRejected(t *testing.T) {
	issuer := auth.NewTokenIssuer("test-secret", "taskboard-backend", -time.Minute, -time.Minute)
	userID := uuid.Must(uuid.NewV4())

	token, err := issuer.IssueAccessToken(userID, "USER")
	require.NoError(t, err)

	_, err = issuer.Verify(token, auth.TokenTypeAccess)
	assert.ErrorIs(t, err, auth.ErrExpiredToken)
}

func TestTamperedTokenRejected(t *testing.T) {
	issuer := newIssuer()
	userID := uuid.Must(uuid.NewV4())

	token, err := issuer.IssueAccessToken(userID, "USER")
	require.NoError(t, err)

	tampered := token[:len(token)-3] + "xyz"
	_, err = issuer.Verify(tampered, auth.TokenTypeAccess)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestTokenSignedWithDifferentSecretRejected(t *testing.T) {
	other := auth.NewTokenIssuer("other-secret", "taskboard-backend", 2*time.Hour, 24*time.Hour)
	userID := uuid.Must(uuid.NewV4())

	token, err := other.IssueAccessToken(userID, "USER")
	require.NoError(t, err)

	_, err = newIssuer().Verify(token, auth.TokenTypeAccess)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestTokenWithWrongIssuerRejected(t *testing.T) {
	other := auth.NewTokenIssuer("test-secret", "someone-else", 2*time.Hour, 24*time.Hour)
	userID := uuid.Must(uuid.NewV4())

	token, err := other.IssueAccessToken(userID, "USER")
	require.NoError(t, err)

	_, err = newIssuer().Verify(token, auth.TokenTypeAccess)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

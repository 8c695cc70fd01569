package service

import (
	"context"
	"testing"
	"time"

	"github.com/aussiebroadwan/bookly/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

func TestLoginIssuesTokenPair(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.signup(t)

	user, pair, err := e.auth.Login(ctx, "alice@example.com", "sw0rdfish")
	require.NoError(t, err)
	require.Equal(t, "alice@example.com", user.Email)
	require.Equal(t, "Bearer", pair.TokenType)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)
	require.NotEqual(t, pair.AccessToken, pair.RefreshToken)
	require.Equal(t, int64(jwtx.DefaultAccessTokenTTL.Seconds()), pair.ExpiresIn)

	access, err := e.codec.DecodeSession(pair.AccessToken)
	require.NoError(t, err)
	require.NoError(t, access.ValidateKind(jwtx.KindAccess))
	require.Equal(t, user.ID, access.UserID)

	refresh, err := e.codec.DecodeSession(pair.RefreshToken)
	require.NoError(t, err)
	require.NoError(t, refresh.ValidateKind(jwtx.KindRefresh))
	require.NotEqual(t, access.ID, refresh.ID)
}

func TestLoginUppercaseEmailIsNormalized(t *testing.T) {
	e := newEnv(t)
	e.signup(t)

	_, _, err := e.auth.Login(context.Background(), "  ALICE@Example.COM ", "sw0rdfish")
	require.NoError(t, err)
}

func TestLoginDoesNotRevealWhichCheckFailed(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.signup(t)

	_, _, unknownErr := e.auth.Login(ctx, "nobody@example.com", "sw0rdfish")
	_, _, wrongErr := e.auth.Login(ctx, "alice@example.com", "wrong-pass1")

	require.ErrorIs(t, unknownErr, ErrInvalidCredentials)
	require.ErrorIs(t, wrongErr, ErrInvalidCredentials)
	require.Equal(t, unknownErr, wrongErr)
}

func TestRefreshIssuesNewAccessToken(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.signup(t)

	_, pair, err := e.auth.Login(ctx, "alice@example.com", "sw0rdfish")
	require.NoError(t, err)

	e.advance(time.Second)

	next, err := e.auth.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)
	require.NotEqual(t, pair.AccessToken, next.AccessToken)
	require.Equal(t, pair.RefreshToken, next.RefreshToken)

	// Fresh jti, same principal snapshot.
	old, err := e.codec.DecodeSession(pair.AccessToken)
	require.NoError(t, err)
	claims, err := e.codec.DecodeSession(next.AccessToken)
	require.NoError(t, err)
	require.NoError(t, claims.ValidateKind(jwtx.KindAccess))
	require.NotEqual(t, old.ID, claims.ID)
	require.Equal(t, old.UserID, claims.UserID)
	require.Equal(t, old.Email, claims.Email)
	require.Equal(t, old.Role, claims.Role)
}

func TestRefreshRejectsAccessToken(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.signup(t)

	_, pair, err := e.auth.Login(ctx, "alice@example.com", "sw0rdfish")
	require.NoError(t, err)

	_, err = e.auth.Refresh(ctx, pair.AccessToken)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestRefreshRejectsExpiredToken(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.signup(t)

	_, pair, err := e.auth.Login(ctx, "alice@example.com", "sw0rdfish")
	require.NoError(t, err)

	e.advance(jwtx.DefaultRefreshTokenTTL + time.Minute)

	_, err = e.auth.Refresh(ctx, pair.RefreshToken)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestRefreshRejectsGarbage(t *testing.T) {
	e := newEnv(t)

	_, err := e.auth.Refresh(context.Background(), "not-a-token")
	require.ErrorIs(t, err, ErrInvalidToken)
}

// logout decodes the token the way the HTTP middleware would and revokes it.
func (e *env) logout(t *testing.T, raw string) {
	t.Helper()
	claims, err := e.codec.DecodeSession(raw)
	require.NoError(t, err)
	require.NoError(t, e.auth.Logout(context.Background(), claims))
}

func TestLogoutRevokesAccessToken(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.signup(t)

	_, pair, err := e.auth.Login(ctx, "alice@example.com", "sw0rdfish")
	require.NoError(t, err)

	// Token is accepted before logout.
	_, _, err = e.guard.Authenticate(ctx, pair.AccessToken, jwtx.KindAccess)
	require.NoError(t, err)

	e.logout(t, pair.AccessToken)

	_, _, err = e.guard.Authenticate(ctx, pair.AccessToken, jwtx.KindAccess)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestLogoutLeavesRefreshTokenAlive(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.signup(t)

	_, pair, err := e.auth.Login(ctx, "alice@example.com", "sw0rdfish")
	require.NoError(t, err)
	e.logout(t, pair.AccessToken)

	// Each token carries its own jti, so revoking the access token does not
	// touch the refresh token.
	_, err = e.auth.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)
}

func TestLogoutTwiceIsANoOp(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.signup(t)

	_, pair, err := e.auth.Login(ctx, "alice@example.com", "sw0rdfish")
	require.NoError(t, err)

	// Revoking the same session twice succeeds quietly and the token stays
	// dead.
	e.logout(t, pair.AccessToken)
	e.logout(t, pair.AccessToken)

	_, _, err = e.guard.Authenticate(ctx, pair.AccessToken, jwtx.KindAccess)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestRevokedTokenStaysRevokedUntilExpiry(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.signup(t)

	_, pair, err := e.auth.Login(ctx, "alice@example.com", "sw0rdfish")
	require.NoError(t, err)
	e.logout(t, pair.AccessToken)

	e.advance(30 * time.Minute)
	_, _, err = e.guard.Authenticate(ctx, pair.AccessToken, jwtx.KindAccess)
	require.ErrorIs(t, err, ErrInvalidToken)

	// Past natural expiry the entry can lapse; the token is rejected as
	// expired regardless.
	e.advance(jwtx.DefaultAccessTokenTTL)
	_, _, err = e.guard.Authenticate(ctx, pair.AccessToken, jwtx.KindAccess)
	require.ErrorIs(t, err, ErrInvalidToken)
}

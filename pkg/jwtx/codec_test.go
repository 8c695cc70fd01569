package jwtx

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

const testIssuer = "bookly-auth-test"

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func newTestCodec(t *testing.T, now time.Time) *Codec {
	t.Helper()

	c, err := NewCodec(testSecret, testIssuer)
	require.NoError(t, err)
	c.Now = func() time.Time { return now }
	return c
}

func TestNewCodecRequiresSecret(t *testing.T) {
	t.Parallel()

	_, err := NewCodec(nil, testIssuer)
	require.Error(t, err)
}

func TestSessionRoundTrip(t *testing.T) {
	t.Parallel()

	now := time.Unix(1700000000, 0).UTC()
	c := newTestCodec(t, now)

	token, err := c.IssueSession("user-1", "a@x.com", "user", time.Hour, false)
	require.NoError(t, err)

	claims, err := c.DecodeSession(token)
	require.NoError(t, err)
	require.Equal(t, "user-1", claims.UserID)
	require.Equal(t, "a@x.com", claims.Email)
	require.Equal(t, "user", claims.Role)
	require.False(t, claims.Refresh)
	require.Equal(t, KindAccess, claims.Kind())
	require.NotEmpty(t, claims.ID)
	require.Equal(t, now.Add(time.Hour).Unix(), claims.ExpiresAt.Unix())
}

func TestSessionExpiryBoundary(t *testing.T) {
	t.Parallel()

	issued := time.Unix(1700000000, 0).UTC()
	c := newTestCodec(t, issued)

	token, err := c.IssueSession("user-1", "a@x.com", "user", time.Hour, false)
	require.NoError(t, err)

	t.Run("valid one second before expiry", func(t *testing.T) {
		c.Now = func() time.Time { return issued.Add(time.Hour - time.Second) }
		_, err := c.DecodeSession(token)
		require.NoError(t, err)
	})

	t.Run("expired once clock passes exp", func(t *testing.T) {
		c.Now = func() time.Time { return issued.Add(time.Hour + time.Second) }
		_, err := c.DecodeSession(token)
		require.ErrorIs(t, err, ErrExpired)
	})
}

func TestDecodeSessionRejectsMalformed(t *testing.T) {
	t.Parallel()

	now := time.Unix(1700000000, 0).UTC()
	c := newTestCodec(t, now)

	t.Run("garbage input", func(t *testing.T) {
		_, err := c.DecodeSession("not-a-jwt")
		require.ErrorIs(t, err, ErrMalformed)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other, err := NewCodec([]byte("another-secret-another-secret-xx"), testIssuer)
		require.NoError(t, err)
		other.Now = c.Now

		token, err := other.IssueSession("user-1", "a@x.com", "user", time.Hour, false)
		require.NoError(t, err)

		_, err = c.DecodeSession(token)
		require.ErrorIs(t, err, ErrMalformed)
	})

	t.Run("tampered payload", func(t *testing.T) {
		token, err := c.IssueSession("user-1", "a@x.com", "user", time.Hour, false)
		require.NoError(t, err)

		_, err = c.DecodeSession(token + "x")
		require.ErrorIs(t, err, ErrMalformed)
	})

	t.Run("non-ulid jti", func(t *testing.T) {
		claims := NewSessionClaims("user-1", "a@x.com", "user", time.Hour, false, testIssuer, now)
		claims.ID = "not-a-ulid"

		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testSecret)
		require.NoError(t, err)

		_, err = c.DecodeSession(token)
		require.ErrorIs(t, err, ErrMalformed)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		other, err := NewCodec(testSecret, "someone-else")
		require.NoError(t, err)
		other.Now = c.Now

		token, err := other.IssueSession("user-1", "a@x.com", "user", time.Hour, false)
		require.NoError(t, err)

		_, err = c.DecodeSession(token)
		require.ErrorIs(t, err, ErrMalformed)
	})
}

func TestRefreshFlagAndKindValidation(t *testing.T) {
	t.Parallel()

	now := time.Unix(1700000000, 0).UTC()
	c := newTestCodec(t, now)

	access, err := c.IssueSession("user-1", "a@x.com", "user", time.Hour, false)
	require.NoError(t, err)
	refresh, err := c.IssueSession("user-1", "a@x.com", "user", 48*time.Hour, true)
	require.NoError(t, err)

	ac, err := c.DecodeSession(access)
	require.NoError(t, err)
	rc, err := c.DecodeSession(refresh)
	require.NoError(t, err)

	require.NoError(t, ac.ValidateKind(KindAccess))
	require.ErrorIs(t, ac.ValidateKind(KindRefresh), ErrWrongKind)

	require.NoError(t, rc.ValidateKind(KindRefresh))
	require.ErrorIs(t, rc.ValidateKind(KindAccess), ErrWrongKind)
}

func TestEachIssuanceMintsFreshJTI(t *testing.T) {
	t.Parallel()

	now := time.Unix(1700000000, 0).UTC()
	c := newTestCodec(t, now)

	seen := map[string]struct{}{}
	for range 50 {
		token, err := c.IssueSession("user-1", "a@x.com", "user", time.Hour, false)
		require.NoError(t, err)

		claims, err := c.DecodeSession(token)
		require.NoError(t, err)

		_, dup := seen[claims.ID]
		require.False(t, dup, "jti %q issued twice", claims.ID)
		seen[claims.ID] = struct{}{}
	}
}

func TestTTLRemaining(t *testing.T) {
	t.Parallel()

	issued := time.Unix(1700000000, 0).UTC()
	c := newTestCodec(t, issued)

	token, err := c.IssueSession("user-1", "a@x.com", "user", time.Hour, false)
	require.NoError(t, err)
	claims, err := c.DecodeSession(token)
	require.NoError(t, err)

	require.Equal(t, 30*time.Minute, claims.TTLRemaining(issued.Add(30*time.Minute)))
	require.Equal(t, time.Duration(0), claims.TTLRemaining(issued.Add(2*time.Hour)))
}

package jwtx

import (
	"time"

	"github.com/aussiebroadwan/bookly/pkg/idx"
	"github.com/golang-jwt/jwt/v5"
)

// Default token TTL constants for the session token flows.
// These provide sensible security defaults but can be overridden per-service.
const (
	// DefaultAccessTokenTTL is the default lifetime for access tokens.
	DefaultAccessTokenTTL = 1 * time.Hour

	// DefaultRefreshTokenTTL is the default lifetime for refresh tokens.
	DefaultRefreshTokenTTL = 48 * time.Hour
)

// TokenKind tags the two bearer variants a session token can be.
type TokenKind string

const (
	KindAccess  TokenKind = "access"
	KindRefresh TokenKind = "refresh"
)

// SessionClaims is the payload of a signed session token: a snapshot of the
// principal (never the password hash), a unique jti for revocation tracking,
// and the refresh flag distinguishing the two token kinds.
type SessionClaims struct {
	jwt.RegisteredClaims

	// UserID is the principal's stable identifier.
	UserID string `json:"uid"`

	// Email is used by the access guard to resolve the current principal.
	Email string `json:"email"`

	// Role is the flat role label ("user", "admin").
	Role string `json:"role"`

	// Refresh is true for refresh tokens, false for access tokens.
	Refresh bool `json:"refresh"`
}

// NewSessionClaims builds minimally-correct session claims with a fresh jti.
func NewSessionClaims(
	userID, email, role string,
	ttl time.Duration,
	refresh bool,
	issuer string,
	now time.Time,
) SessionClaims {
	return SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        NewJTI(),
		},
		UserID:  userID,
		Email:   email,
		Role:    role,
		Refresh: refresh,
	}
}

// NewJTI returns a fresh 128-bit unique identifier for the "jti" claim.
// ULIDs give us collision-free-by-construction ids that also sort by time.
func NewJTI() string {
	return idx.New().String()
}

// Kind reports which bearer variant the claims describe.
func (c *SessionClaims) Kind() TokenKind {
	if c.Refresh {
		return KindRefresh
	}
	return KindAccess
}

// ValidateKind checks the refresh flag against the expected variant.
// Access-only call sites pass KindAccess, the refresh endpoint KindRefresh.
func (c *SessionClaims) ValidateKind(want TokenKind) error {
	if c.Kind() != want {
		return ErrWrongKind
	}
	return nil
}

// TTLRemaining returns how long the token stays naturally valid from now.
// Returns zero for claims without expiry or already past it.
func (c *SessionClaims) TTLRemaining(now time.Time) time.Duration {
	if c.ExpiresAt == nil {
		return 0
	}
	remaining := c.ExpiresAt.Time.Sub(now)
	if remaining < 0 {
		return 0
	}
	return remaining
}

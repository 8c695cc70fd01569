package jwtx

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/hkdf"
)

// Action token purposes. Each purpose signs with its own derived key, so a
// leaked action token can never be replayed as a session token and a verify
// token can never confirm a password reset.
const (
	PurposeEmailVerify   = "email-verify"
	PurposePasswordReset = "password-reset"
)

// Recommended action token TTLs.
const (
	DefaultVerifyTokenTTL = 24 * time.Hour
	DefaultResetTokenTTL  = 30 * time.Minute
)

// ActionClaims is the payload of a single-use action token (email
// verification, password reset). It identifies the principal by email only.
type ActionClaims struct {
	jwt.RegisteredClaims

	Email   string `json:"email"`
	Purpose string `json:"purpose"`
}

// actionKey derives the purpose-scoped signing key from the server secret.
// HKDF keeps the derivation one-way: holding an action key never reveals the
// session secret.
func (c *Codec) actionKey(purpose string) []byte {
	r := hkdf.New(sha256.New, c.secret, nil, []byte("bookly/action/"+purpose))
	key := make([]byte, 32)
	if _, err := io.ReadFull(r, key); err != nil {
		// Only reachable if SHA-256 itself breaks.
		panic(fmt.Sprintf("jwtx: hkdf expand failed: %v", err))
	}
	return key
}

// IssueAction signs a single-purpose token binding email and purpose.
func (c *Codec) IssueAction(email, purpose string, ttl time.Duration) (string, error) {
	now := c.now()
	claims := ActionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    c.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        NewJTI(),
		},
		Email:   email,
		Purpose: purpose,
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString(c.actionKey(purpose))
	if err != nil {
		return "", fmt.Errorf("jwtx: sign action token: %w", err)
	}
	return signed, nil
}

// DecodeAction verifies an action token against the expected purpose. A token
// minted for another purpose (or as a session token) fails signature
// verification outright; the purpose claim is re-checked for good measure.
func (c *Codec) DecodeAction(token, purpose string) (*ActionClaims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(c.now),
		jwt.WithIssuer(c.issuer),
	)

	parsed, err := parser.ParseWithClaims(token, &ActionClaims{}, func(t *jwt.Token) (any, error) {
		return c.actionKey(purpose), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpired
		}
		return nil, ErrMalformed
	}

	claims, ok := parsed.Claims.(*ActionClaims)
	if !ok || !parsed.Valid || claims.Purpose != purpose {
		return nil, ErrMalformed
	}

	return claims, nil
}

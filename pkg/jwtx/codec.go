package jwtx

import (
	"errors"
	"fmt"
	"time"

	"github.com/aussiebroadwan/bookly/pkg/idx"
	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrMalformed covers structural and signature failures. Deliberately
	// coarse so callers can't leak which check failed.
	ErrMalformed = errors.New("jwtx: malformed token")

	// ErrExpired reports a token whose exp has passed.
	ErrExpired = errors.New("jwtx: token expired")

	// ErrWrongKind reports an access token where a refresh token is
	// expected, or vice versa.
	ErrWrongKind = errors.New("jwtx: wrong token kind")
)

// Codec issues and decodes HMAC-signed session tokens with a single server
// secret. Issuing and decoding are pure functions of (inputs, clock, secret);
// revocation and kind policy are the caller's business.
type Codec struct {
	secret []byte
	issuer string

	// Now is the clock used for issuance and expiry validation.
	// Defaults to time.Now; override in tests.
	Now func() time.Time
}

// NewCodec builds a Codec. The secret is the process-lifetime signing key;
// refusing to run without one is deliberate.
func NewCodec(secret []byte, issuer string) (*Codec, error) {
	if len(secret) == 0 {
		return nil, errors.New("jwtx: signing secret must not be empty")
	}
	return &Codec{secret: secret, issuer: issuer}, nil
}

func (c *Codec) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

// IssueSession signs a session token carrying the principal snapshot.
// Each call mints a fresh jti.
func (c *Codec) IssueSession(
	userID, email, role string,
	ttl time.Duration,
	refresh bool,
) (string, error) {
	claims := NewSessionClaims(userID, email, role, ttl, refresh, c.issuer, c.now())

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("jwtx: sign session token: %w", err)
	}
	return signed, nil
}

// DecodeSession verifies signature, structure and expiry of a session token.
// It fails with ErrExpired or ErrMalformed only; kind and revocation checks
// belong to the caller.
func (c *Codec) DecodeSession(token string) (*SessionClaims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(c.now),
		jwt.WithIssuer(c.issuer),
	)

	parsed, err := parser.ParseWithClaims(token, &SessionClaims{}, func(t *jwt.Token) (any, error) {
		return c.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpired
		}
		return nil, ErrMalformed
	}

	claims, ok := parsed.Claims.(*SessionClaims)
	if !ok || !parsed.Valid {
		return nil, ErrMalformed
	}

	// Every token minted here carries a ULID jti. The revocation registry
	// keys on it, so a token without one is unusable.
	if _, err := idx.Parse(claims.ID); err != nil {
		return nil, ErrMalformed
	}

	return claims, nil
}

package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/aussiebroadwan/bookly/internal/auth/blocklist"
	"github.com/aussiebroadwan/bookly/internal/auth/domain"
	"github.com/aussiebroadwan/bookly/internal/auth/store"
	"github.com/aussiebroadwan/bookly/pkg/cryptox"
	"github.com/aussiebroadwan/bookly/pkg/jwtx"
	"github.com/aussiebroadwan/bookly/pkg/slogx"
)

var (
	// ErrInvalidCredentials covers both unknown email and wrong password so
	// responses never reveal which accounts exist.
	ErrInvalidCredentials = errors.New("invalid_credentials")

	// ErrInvalidToken covers expired, malformed, revoked, and wrong-kind
	// tokens presented to any authenticated operation.
	ErrInvalidToken = errors.New("invalid_token")

	ErrUserExists   = errors.New("user_exists")
	ErrUserNotFound = errors.New("user_not_found")
	ErrInvalidRole  = errors.New("invalid_role")
)

// Authenticator issues and redeems session tokens: login, refresh, logout.
type Authenticator struct {
	Codec     *jwtx.Codec
	Store     store.Store
	Blocklist blocklist.Blocklist

	AccessTTL  time.Duration
	RefreshTTL time.Duration

	// Now is the clock used for expiry math, overridable in tests.
	Now func() time.Time
}

func (s *Authenticator) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Authenticator) accessTTL() time.Duration {
	if s.AccessTTL > 0 {
		return s.AccessTTL
	}
	return jwtx.DefaultAccessTokenTTL
}

func (s *Authenticator) refreshTTL() time.Duration {
	if s.RefreshTTL > 0 {
		return s.RefreshTTL
	}
	return jwtx.DefaultRefreshTokenTTL
}

// Login verifies the email and password and issues a fresh access/refresh
// token pair. Unknown email and wrong password both return
// ErrInvalidCredentials.
func (s *Authenticator) Login(ctx context.Context, email, password string) (domain.User, *domain.TokenPair, error) {
	l := slogx.FromContext(ctx)
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			l.Info("login failed: unknown email")
			return domain.User{}, nil, ErrInvalidCredentials
		}
		return domain.User{}, nil, err
	}

	if err := cryptox.VerifyPassword(password, user.PasswordHash); err != nil {
		if errors.Is(err, cryptox.ErrPasswordMismatch) {
			l.Info("login failed: wrong password", slog.String("user_id", user.ID))
			return domain.User{}, nil, ErrInvalidCredentials
		}
		return domain.User{}, nil, err
	}

	pair, err := s.issuePair(user)
	if err != nil {
		return domain.User{}, nil, err
	}

	l.Info("user logged in", slog.String("user_id", user.ID))
	return user, pair, nil
}

// Refresh redeems a refresh token for a new access token. The presented
// refresh token stays valid and is returned unchanged.
//
// TODO: rotate the refresh token here and revoke the presented one, so a
// leaked refresh token stops working after its first use.
func (s *Authenticator) Refresh(ctx context.Context, rawRefresh string) (*domain.TokenPair, error) {
	claims, err := s.decodeLive(ctx, rawRefresh, jwtx.KindRefresh)
	if err != nil {
		return nil, err
	}

	user, err := s.Store.Users().GetUserByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}

	access, err := s.Codec.IssueSession(user.ID, user.Email, user.Role, s.accessTTL(), false)
	if err != nil {
		return nil, err
	}

	slogx.FromContext(ctx).Info("session refreshed", slog.String("user_id", user.ID))
	return &domain.TokenPair{
		AccessToken:  access,
		RefreshToken: rawRefresh,
		TokenType:    "Bearer",
		ExpiresIn:    int64(s.accessTTL().Seconds()),
	}, nil
}

// Logout revokes the session behind the given claims for the remainder of
// its lifetime. Callers must have authenticated the token already; revoking
// the same session twice is a no-op.
func (s *Authenticator) Logout(ctx context.Context, claims *jwtx.SessionClaims) error {
	if err := s.Blocklist.Revoke(ctx, claims.ID, claims.TTLRemaining(s.now())); err != nil {
		return err
	}

	slogx.FromContext(ctx).Info("user logged out", slog.String("user_id", claims.UserID))
	return nil
}

// decodeLive decodes a session token, checks it is of the wanted kind, and
// rejects it if the jti has been revoked. Any blocklist failure counts as
// revoked.
func (s *Authenticator) decodeLive(ctx context.Context, raw string, kind jwtx.TokenKind) (*jwtx.SessionClaims, error) {
	claims, err := s.Codec.DecodeSession(raw)
	if err != nil {
		return nil, ErrInvalidToken
	}
	if err := claims.ValidateKind(kind); err != nil {
		return nil, ErrInvalidToken
	}

	revoked, err := s.Blocklist.IsRevoked(ctx, claims.ID)
	if err != nil {
		slogx.FromContext(ctx).Error("blocklist check failed, rejecting token", "error", err)
		return nil, ErrInvalidToken
	}
	if revoked {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

func (s *Authenticator) issuePair(user domain.User) (*domain.TokenPair, error) {
	access, err := s.Codec.IssueSession(user.ID, user.Email, user.Role, s.accessTTL(), false)
	if err != nil {
		return nil, err
	}

	refresh, err := s.Codec.IssueSession(user.ID, user.Email, user.Role, s.refreshTTL(), true)
	if err != nil {
		return nil, err
	}

	return &domain.TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		ExpiresIn:    int64(s.accessTTL().Seconds()),
	}, nil
}

package service

import (
	"context"
	"errors"
	"slices"

	"github.com/aussiebroadwan/bookly/internal/auth/blocklist"
	"github.com/aussiebroadwan/bookly/internal/auth/domain"
	"github.com/aussiebroadwan/bookly/internal/auth/store"
	"github.com/aussiebroadwan/bookly/pkg/jwtx"
	"github.com/aussiebroadwan/bookly/pkg/slogx"
)

// Guard authenticates bearer tokens on incoming requests and enforces role
// membership. Every check consults the blocklist, so a revoked token is
// rejected even before its natural expiry.
type Guard struct {
	Codec     *jwtx.Codec
	Blocklist blocklist.Blocklist
	Store     store.Store
}

// Authenticate decodes raw, checks it is a live token of the wanted kind,
// and loads the account it belongs to. A blocklist failure counts as
// revoked.
func (g *Guard) Authenticate(ctx context.Context, raw string, kind jwtx.TokenKind) (domain.User, *jwtx.SessionClaims, error) {
	claims, err := g.Codec.DecodeSession(raw)
	if err != nil {
		return domain.User{}, nil, ErrInvalidToken
	}
	if err := claims.ValidateKind(kind); err != nil {
		return domain.User{}, nil, ErrInvalidToken
	}

	revoked, err := g.Blocklist.IsRevoked(ctx, claims.ID)
	if err != nil {
		slogx.FromContext(ctx).Error("blocklist check failed, rejecting token", "error", err)
		return domain.User{}, nil, ErrInvalidToken
	}
	if revoked {
		return domain.User{}, nil, ErrInvalidToken
	}

	user, err := g.Store.Users().GetUserByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, nil, ErrInvalidToken
		}
		return domain.User{}, nil, err
	}

	return user, claims, nil
}

// RequireRole returns ErrInvalidRole unless the user holds one of the given
// roles.
func (g *Guard) RequireRole(user domain.User, roles ...string) error {
	if slices.Contains(roles, user.Role) {
		return nil
	}
	return ErrInvalidRole
}

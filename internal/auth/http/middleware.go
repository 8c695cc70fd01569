package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/aussiebroadwan/bookly/internal/auth/domain"
	"github.com/aussiebroadwan/bookly/internal/auth/service"
	"github.com/aussiebroadwan/bookly/pkg/httpx"
	"github.com/aussiebroadwan/bookly/pkg/jwtx"
)

type ctxKey int

const (
	ctxKeyUser ctxKey = iota
	ctxKeyClaims
)

// UserFromContext returns the authenticated user placed by AuthnMiddleware.
func UserFromContext(ctx context.Context) (domain.User, bool) {
	u, ok := ctx.Value(ctxKeyUser).(domain.User)
	return u, ok
}

// ClaimsFromContext returns the session claims placed by AuthnMiddleware.
func ClaimsFromContext(ctx context.Context) (*jwtx.SessionClaims, bool) {
	c, ok := ctx.Value(ctxKeyClaims).(*jwtx.SessionClaims)
	return c, ok
}

// BearerToken extracts the token from an Authorization: Bearer header.
func BearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(prefix):])
	return token, token != ""
}

// AuthnMiddleware authenticates the bearer token against the guard and
// injects the resolved user and claims into the request context. Requests
// without a live access token get a 401.
func AuthnMiddleware(guard *service.Guard) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := BearerToken(r)
			if !ok {
				ErrUnauthenticated.WriteError(w)
				return
			}

			user, claims, err := guard.Authenticate(r.Context(), raw, jwtx.KindAccess)
			if err != nil {
				ErrUnauthenticated.WriteError(w)
				return
			}

			ctx := context.WithValue(r.Context(), ctxKeyUser, user)
			ctx = context.WithValue(ctx, ctxKeyClaims, claims)
			ctx = httpx.ContextWithUserID(ctx, user.ID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole rejects authenticated requests whose user holds none of the
// given roles. Must sit inside AuthnMiddleware in the chain.
func RequireRole(guard *service.Guard, roles ...string) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := UserFromContext(r.Context())
			if !ok {
				ErrUnauthenticated.WriteError(w)
				return
			}
			if err := guard.RequireRole(user, roles...); err != nil {
				ErrInvalidRole.WriteError(w)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

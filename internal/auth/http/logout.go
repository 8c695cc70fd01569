package http

import (
	"net/http"

	"github.com/aussiebroadwan/bookly/internal/auth/service"
	"github.com/aussiebroadwan/bookly/pkg/httpx"
	"github.com/aussiebroadwan/bookly/pkg/slogx"
)

// LogoutHandler serves POST /v1/auth/logout. It revokes the presented access
// token for the rest of its lifetime; the refresh token keeps working until
// it expires. Sits behind AuthnMiddleware, which rejects dead tokens before
// the handler runs.
type LogoutHandler struct {
	Authenticator *service.Authenticator
}

func (h *LogoutHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	claims, ok := ClaimsFromContext(ctx)
	if !ok {
		ErrUnauthenticated.WriteError(w)
		return
	}

	if err := h.Authenticator.Logout(ctx, claims); err != nil {
		log.Error("logout failed", "err", err)
		ErrServerError.WriteError(w)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, MessageResponse{Message: "logged out"})
}

package http

import (
	"net/http"

	"github.com/aussiebroadwan/bookly/pkg/httpx"
)

// MeHandler serves GET /v1/auth/me for authenticated users.
type MeHandler struct{}

func (h *MeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		ErrUnauthenticated.WriteError(w)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toUserResponse(user))
}

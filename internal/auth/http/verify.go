package http

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/bookly/internal/auth/service"
	"github.com/aussiebroadwan/bookly/pkg/httpx"
	"github.com/aussiebroadwan/bookly/pkg/slogx"
)

// VerifyHandler serves GET /v1/auth/verify/{token}, the target of the link
// in the verification mail.
type VerifyHandler struct {
	AccountService *service.AccountService
}

func (h *VerifyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	token := r.PathValue("token")
	if token == "" {
		ErrInvalidRequest.WriteError(w)
		return
	}

	if _, err := h.AccountService.ConfirmVerification(ctx, token); err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidToken):
			ErrUnauthenticated.WriteError(w)
		case errors.Is(err, service.ErrUserNotFound):
			ErrUserNotFound.WriteError(w)
		default:
			log.Error("verification failed", "err", err)
			ErrServerError.WriteError(w)
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, MessageResponse{Message: "account verified"})
}

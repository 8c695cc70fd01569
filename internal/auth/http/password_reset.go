package http

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/bookly/internal/auth/service"
	"github.com/aussiebroadwan/bookly/pkg/httpx"
	"github.com/aussiebroadwan/bookly/pkg/slogx"
)

// PasswordResetRequestHandler serves POST /v1/auth/password-reset/request.
// It always acknowledges so the endpoint cannot be used to probe which
// addresses are registered.
type PasswordResetRequestHandler struct {
	AccountService *service.AccountService
}

type passwordResetRequest struct {
	Email string `json:"email"`
}

func (h *PasswordResetRequestHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req passwordResetRequest
	if err := decodeJSON(r, &req); err != nil {
		ErrInvalidJSONBody.WriteError(w)
		return
	}
	if req.Email == "" {
		ErrInvalidRequest.WriteError(w)
		return
	}

	_ = h.AccountService.RequestPasswordReset(r.Context(), req.Email)

	httpx.WriteJSON(w, http.StatusOK, MessageResponse{
		Message: "if the account exists, a reset link has been sent",
	})
}

// PasswordResetConfirmHandler serves POST /v1/auth/password-reset/confirm/{token},
// the target of the link in the reset mail.
type PasswordResetConfirmHandler struct {
	AccountService *service.AccountService
}

type passwordResetConfirm struct {
	NewPassword     string `json:"new_password"`
	ConfirmPassword string `json:"confirm_new_password"`
}

func (h *PasswordResetConfirmHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	token := r.PathValue("token")
	if token == "" {
		ErrInvalidRequest.WriteError(w)
		return
	}

	var req passwordResetConfirm
	if err := decodeJSON(r, &req); err != nil {
		ErrInvalidJSONBody.WriteError(w)
		return
	}

	if err := service.ValidatePassword(req.NewPassword); err != nil {
		ErrValidationFailed.WithDescription("new_password: " + err.Error()).WriteError(w)
		return
	}

	err := h.AccountService.ConfirmPasswordReset(ctx, token, req.NewPassword, req.ConfirmPassword)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPasswordConfirmMismatch):
			ErrValidationFailed.WithDescription("passwords do not match").WriteError(w)
		case errors.Is(err, service.ErrInvalidToken):
			ErrUnauthenticated.WriteError(w)
		case errors.Is(err, service.ErrUserNotFound):
			ErrUserNotFound.WriteError(w)
		default:
			log.Error("password reset failed", "err", err)
			ErrServerError.WriteError(w)
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, MessageResponse{Message: "password updated"})
}

package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aussiebroadwan/bookly/internal/auth/domain"
	"github.com/aussiebroadwan/bookly/internal/auth/mailer"
	"github.com/aussiebroadwan/bookly/internal/auth/store"
	"github.com/aussiebroadwan/bookly/pkg/cryptox"
	"github.com/aussiebroadwan/bookly/pkg/idx"
	"github.com/aussiebroadwan/bookly/pkg/jwtx"
	"github.com/aussiebroadwan/bookly/pkg/slogx"
)

// ErrPasswordConfirmMismatch is returned when the two passwords supplied to
// a reset confirmation differ.
var ErrPasswordConfirmMismatch = errors.New("password_confirm_mismatch")

// MailQueue is the slice of the outbox the account service needs.
type MailQueue interface {
	Enqueue(msg mailer.Message)
}

// AccountService handles account lifecycle: signup, email verification, and
// password resets. Verification and reset links are delivered by mail
// through the outbox.
type AccountService struct {
	Store store.Store
	Codec *jwtx.Codec
	Mail  MailQueue

	// BaseURL is the externally reachable base of the service, used to build
	// links embedded in mail.
	BaseURL string

	VerifyTTL time.Duration
	ResetTTL  time.Duration
}

func (s *AccountService) verifyTTL() time.Duration {
	if s.VerifyTTL > 0 {
		return s.VerifyTTL
	}
	return jwtx.DefaultVerifyTokenTTL
}

func (s *AccountService) resetTTL() time.Duration {
	if s.ResetTTL > 0 {
		return s.ResetTTL
	}
	return jwtx.DefaultResetTokenTTL
}

// Signup creates a new unverified account with the default role and queues a
// verification mail. Duplicate emails return ErrUserExists.
func (s *AccountService) Signup(ctx context.Context, in SignupInput) (domain.User, error) {
	l := slogx.FromContext(ctx)

	if err := in.Validate(); err != nil {
		return domain.User{}, err
	}

	in.Email = strings.ToLower(strings.TrimSpace(in.Email))

	exists, err := s.Store.Users().ExistsByEmail(ctx, in.Email)
	if err != nil {
		return domain.User{}, err
	}
	if exists {
		return domain.User{}, ErrUserExists
	}

	hash, err := cryptox.HashPassword(in.Password)
	if err != nil {
		return domain.User{}, err
	}

	user := domain.User{
		ID:           idx.New().String(),
		Email:        in.Email,
		Username:     in.Username,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Role:         domain.RoleUser,
		Verified:     false,
		PasswordHash: hash,
	}

	if err := s.Store.Users().CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.User{}, ErrUserExists
		}
		return domain.User{}, err
	}

	if err := s.sendVerificationMail(user.Email); err != nil {
		// The account exists either way, so log and move on.
		l.Error("failed to queue verification mail", slog.String("user_id", user.ID), "error", err)
	}

	l.Info("user signed up", slog.String("user_id", user.ID))
	return user, nil
}

// ConfirmVerification redeems an email verification token and marks the
// account verified. Confirming an already verified account is a no-op.
func (s *AccountService) ConfirmVerification(ctx context.Context, token string) (domain.User, error) {
	claims, err := s.Codec.DecodeAction(token, jwtx.PurposeEmailVerify)
	if err != nil {
		return domain.User{}, ErrInvalidToken
	}

	user, err := s.Store.Users().GetUserByEmail(ctx, claims.Email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, err
	}

	if !user.Verified {
		if err := s.Store.Users().SetVerified(ctx, user.ID, true); err != nil {
			return domain.User{}, err
		}
		user.Verified = true

		s.Mail.Enqueue(mailer.Message{
			To:      []string{user.Email},
			Subject: "Account activated",
			Body:    fmt.Sprintf("<h1>Welcome, %s</h1><p>Your account is now active.</p>", user.FirstName),
		})
	}

	slogx.FromContext(ctx).Info("email verified", slog.String("user_id", user.ID))
	return user, nil
}

// RequestPasswordReset queues a reset mail for the given address. It always
// succeeds from the caller's point of view so the endpoint cannot be used to
// probe which addresses are registered.
func (s *AccountService) RequestPasswordReset(ctx context.Context, email string) error {
	l := slogx.FromContext(ctx)
	email = strings.ToLower(strings.TrimSpace(email))

	exists, err := s.Store.Users().ExistsByEmail(ctx, email)
	if err != nil {
		l.Error("password reset lookup failed", "error", err)
		return nil
	}
	if !exists {
		l.Info("password reset requested for unknown email")
		return nil
	}

	if err := s.sendResetMail(email); err != nil {
		l.Error("failed to queue password reset mail", "error", err)
	}
	return nil
}

// ConfirmPasswordReset redeems a reset token and replaces the account
// password.
func (s *AccountService) ConfirmPasswordReset(ctx context.Context, token, newPassword, confirmPassword string) error {
	if newPassword != confirmPassword {
		return ErrPasswordConfirmMismatch
	}
	if err := ValidatePassword(newPassword); err != nil {
		return err
	}

	claims, err := s.Codec.DecodeAction(token, jwtx.PurposePasswordReset)
	if err != nil {
		return ErrInvalidToken
	}

	user, err := s.Store.Users().GetUserByEmail(ctx, claims.Email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	hash, err := cryptox.HashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := s.Store.Users().UpdatePasswordHash(ctx, user.ID, hash); err != nil {
		return err
	}

	slogx.FromContext(ctx).Info("password reset", slog.String("user_id", user.ID))
	return nil
}

func (s *AccountService) sendVerificationMail(email string) error {
	token, err := s.Codec.IssueAction(email, jwtx.PurposeEmailVerify, s.verifyTTL())
	if err != nil {
		return err
	}

	link := fmt.Sprintf("%s/v1/auth/verify/%s", s.BaseURL, token)
	body := fmt.Sprintf(
		"<h1>Verify your email</h1><p>Click <a href=%q>here</a> to verify your address. The link expires in %s.</p>",
		link, s.verifyTTL(),
	)

	s.Mail.Enqueue(mailer.Message{
		To:      []string{email},
		Subject: "Verify your email",
		Body:    body,
	})
	return nil
}

func (s *AccountService) sendResetMail(email string) error {
	token, err := s.Codec.IssueAction(email, jwtx.PurposePasswordReset, s.resetTTL())
	if err != nil {
		return err
	}

	link := fmt.Sprintf("%s/v1/auth/password-reset/confirm/%s", s.BaseURL, token)
	body := fmt.Sprintf(
		"<h1>Reset your password</h1><p>Click <a href=%q>here</a> to choose a new password. The link expires in %s.</p>",
		link, s.resetTTL(),
	)

	s.Mail.Enqueue(mailer.Message{
		To:      []string{email},
		Subject: "Reset your password",
		Body:    body,
	})
	return nil
}

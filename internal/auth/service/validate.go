package service

import (
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

var hasDigit = regexp.MustCompile(`[0-9]`)

// passwordRules is the shared password policy for signup and password reset.
var passwordRules = []validation.Rule{
	validation.Required,
	validation.Length(8, 128),
	validation.Match(hasDigit).Error("must contain at least one digit"),
}

// SignupInput carries the fields a new account is created from.
type SignupInput struct {
	Email     string
	Username  string
	FirstName string
	LastName  string
	Password  string
}

// Validate checks the signup fields against the account policy.
func (in SignupInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Email, validation.Required, is.Email),
		validation.Field(&in.Username, validation.Required, validation.Length(3, 32)),
		validation.Field(&in.FirstName, validation.Required, validation.Length(1, 64)),
		validation.Field(&in.LastName, validation.Required, validation.Length(1, 64)),
		validation.Field(&in.Password, passwordRules...),
	)
}

// ValidatePassword checks a bare password against the account policy, used
// when confirming a password reset.
func ValidatePassword(password string) error {
	return validation.Validate(password, passwordRules...)
}

// Package validation holds the form rules shared by sign-in, sign-up and
// the profile editor. Every function is pure.
package validation

import (
	"regexp"
	"unicode/utf8"
)

// Result is a verdict plus the reason shown next to the field.
type Result struct {
	Valid   bool   `json:"valid"`
	Message string `json:"message,omitempty"`
}

var (
	emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,6}$`)
	upperPattern = regexp.MustCompile(`[A-Z]`)
	lowerPattern = regexp.MustCompile(`[a-z]`)
	digitPattern = regexp.MustCompile(`[0-9]`)
	otherPattern = regexp.MustCompile(`[^A-Za-z0-9]`)
)

const (
	MinPasswordLength = 8
	MinNameLength     = 2
	MaxNameLength     = 50
)

const (
	MsgEmailRequired     = "Email is required"
	MsgEmailInvalid      = "Email is not valid"
	MsgPasswordRequired  = "Password is required"
	MsgPasswordTooShort  = "Password must be at least 8 characters"
	MsgPasswordUppercase = "Password must contain at least one uppercase letter"
	MsgPasswordLowercase = "Password must contain at least one lowercase letter"
	MsgPasswordDigit     = "Password must contain at least one number"
	MsgPasswordSpecial   = "Password must contain at least one special character"
	MsgNameRequired      = "Name is required"
	MsgNameTooShort      = "Name must be at least 2 characters"
	MsgNameTooLong       = "Name must not exceed 50 characters"
)

var ok = Result{Valid: true}

func invalid(msg string) Result {
	return Result{Valid: false, Message: msg}
}

func ValidateEmail(email string) Result {
	if email == "" {
		return invalid(MsgEmailRequired)
	}
	if !emailPattern.MatchString(email) {
		return invalid(MsgEmailInvalid)
	}
	return ok
}

// ValidatePassword runs the strength rules in a fixed order and reports the
// first one that fails.
func ValidatePassword(password string) Result {
	if password == "" {
		return invalid(MsgPasswordRequired)
	}
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return invalid(MsgPasswordTooShort)
	}
	if !upperPattern.MatchString(password) {
		return invalid(MsgPasswordUppercase)
	}
	if !lowerPattern.MatchString(password) {
		return invalid(MsgPasswordLowercase)
	}
	if !digitPattern.MatchString(password) {
		return invalid(MsgPasswordDigit)
	}
	if !otherPattern.MatchString(password) {
		return invalid(MsgPasswordSpecial)
	}
	return ok
}

func ValidateName(name string) Result {
	if name == "" {
		return invalid(MsgNameRequired)
	}
	n := utf8.RuneCountInString(name)
	if n < MinNameLength {
		return invalid(MsgNameTooShort)
	}
	if n > MaxNameLength {
		return invalid(MsgNameTooLong)
	}
	return ok
}

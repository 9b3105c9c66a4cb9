package session

import (
	"strconv"
	"strings"

	"github.com/thesrcielos/PadelTracker/internal/apperrors"
)

const (
	msgIncorrectCredentials = "Incorrect email or password"
	msgEmailNotConfirmed    = "Email not confirmed. Check your inbox."
	msgTooManyAttempts      = "Too many attempts. Try again later."
	msgSignInFailed         = "Error signing in"
	msgAlreadyRegistered    = "This email is already registered"
	msgPasswordRejected     = "Password does not meet the requirements"
	msgSignUpFailed         = "Error signing up"
	msgSignOutFailed        = "Error signing out"
	msgProfileUpdateFailed  = "Error updating profile"
	msgServerError          = "Server error"
	msgServerUnreachable    = "There was a problem connecting to the server"
)

type rule struct {
	substring string
	kind      apperrors.Kind
	message   string
}

var signInRules = []rule{
	{"invalid login", apperrors.KindPassword, msgIncorrectCredentials},
	{"email not confirmed", apperrors.KindEmail, msgEmailNotConfirmed},
	{"rate limit", apperrors.KindServer, msgTooManyAttempts},
}

var signUpRules = []rule{
	{"already registered", apperrors.KindEmail, msgAlreadyRegistered},
	{"password", apperrors.KindPassword, msgPasswordRejected},
}

// classify maps a gateway failure onto the first matching rule, or the
// fallback. Anything that is not a gateway error is a server error.
func classify(err error, rules []rule, fallback string) *apperrors.AuthError {
	appErr, ok := apperrors.AsAppError(err)
	if !ok {
		return serverError(err)
	}

	raw := strings.ToLower(appErr.Message)
	authErr := &apperrors.AuthError{
		Kind:    apperrors.KindGeneral,
		Message: fallback,
		Details: appErr.Message,
		Code:    strconv.Itoa(appErr.Code),
	}
	for _, r := range rules {
		if strings.Contains(raw, r.substring) {
			authErr.Kind = r.kind
			authErr.Message = r.message
			break
		}
	}
	return authErr
}

func classifySignIn(err error) *apperrors.AuthError {
	return classify(err, signInRules, msgSignInFailed)
}

func classifySignUp(err error) *apperrors.AuthError {
	return classify(err, signUpRules, msgSignUpFailed)
}

func serverError(err error) *apperrors.AuthError {
	authErr := &apperrors.AuthError{Kind: apperrors.KindServer, Message: msgServerError}
	if err != nil {
		authErr.Details = err.Error()
	}
	return authErr
}

// storeError wraps a failed write to one of the user's tables.
func storeError(err error, message string) *apperrors.AuthError {
	if _, ok := apperrors.AsAppError(err); !ok {
		return serverError(err)
	}
	return &apperrors.AuthError{Kind: apperrors.KindServer, Message: message, Details: err.Error()}
}

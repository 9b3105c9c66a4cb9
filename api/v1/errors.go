package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/thesrcielos/PadelTracker/internal/apperrors"
)

const INVALID_REQUEST = "invalid request"

// ErrorResponse is the body of every failed API call.
type ErrorResponse struct {
	Type    apperrors.Kind `json:"type,omitempty"`
	Message string         `json:"message"`
	Details string         `json:"details,omitempty"`
}

// toHTTPError maps classified and gateway errors to a status and body.
// signIn makes a password failure a 401 instead of a 400.
func toHTTPError(err error, signIn bool) *echo.HTTPError {
	if authErr, ok := apperrors.AsAuthError(err); ok {
		body := ErrorResponse{Type: authErr.Kind, Message: authErr.Message, Details: authErr.Details}
		return echo.NewHTTPError(kindStatus(authErr.Kind, signIn), body)
	}
	if appErr, ok := apperrors.AsAppError(err); ok {
		return echo.NewHTTPError(appErr.Code, ErrorResponse{Message: appErr.Message})
	}
	return echo.NewHTTPError(http.StatusInternalServerError, ErrorResponse{Type: apperrors.KindServer, Message: "Server error"})
}

func kindStatus(kind apperrors.Kind, signIn bool) int {
	switch kind {
	case apperrors.KindPassword:
		if signIn {
			return http.StatusUnauthorized
		}
		return http.StatusBadRequest
	case apperrors.KindSession:
		return http.StatusUnauthorized
	case apperrors.KindServer:
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadRequest
	}
}

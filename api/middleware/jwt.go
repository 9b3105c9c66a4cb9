package middleware

import (
	"context"
	"net/http"
	"strings"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/thesrcielos/PadelTracker/internal/user"
)

const claimsKey = "user"

// Verifier checks an access token, including revocation.
type Verifier interface {
	Verify(ctx context.Context, accessToken string) (*user.JwtCustomClaims, error)
}

func SetupJWTMiddleware(verifier Verifier) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		ContextKey: claimsKey,
		ParseTokenFunc: func(c echo.Context, auth string) (interface{}, error) {
			return verifier.Verify(c.Request().Context(), auth)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid or expired token")
		},
	})
}

// Claims returns the verified claims stored by the JWT middleware.
func Claims(c echo.Context) *user.JwtCustomClaims {
	claims, _ := c.Get(claimsKey).(*user.JwtCustomClaims)
	return claims
}

// UserID is the id of the authenticated user, or "".
func UserID(c echo.Context) string {
	if claims := Claims(c); claims != nil {
		return claims.UserID()
	}
	return ""
}

// BearerToken returns the raw access token of the request.
func BearerToken(c echo.Context) string {
	h := c.Request().Header.Get(echo.HeaderAuthorization)
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return h[7:]
	}
	return ""
}

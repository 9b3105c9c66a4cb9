package v1

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/labstack/echo/v4"
	api_middleware "github.com/thesrcielos/PadelTracker/api/middleware"
	"github.com/thesrcielos/PadelTracker/internal/auth"
	"github.com/thesrcielos/PadelTracker/internal/notify"
	"github.com/thesrcielos/PadelTracker/internal/profile"
	"github.com/thesrcielos/PadelTracker/internal/session"
	"github.com/thesrcielos/PadelTracker/internal/user"
	"github.com/thesrcielos/PadelTracker/pkg/logger"
)

// AuthService is the identity provider behind the auth routes.
type AuthService interface {
	auth.Provider
	ConfirmEmail(ctx context.Context, token string) (*user.User, error)
	CompleteOAuth(ctx context.Context, provider, state, code string) (*user.Session, string, error)
}

type AuthHandler struct {
	service  AuthService
	profiles profile.Repository
	siteURL  string
	log      *logger.Logger
}

func NewAuthHandler(service AuthService, profiles profile.Repository, siteURL string, log *logger.Logger) *AuthHandler {
	return &AuthHandler{service: service, profiles: profiles, siteURL: siteURL, log: log}
}

func (h *AuthHandler) RegisterRoutes(g *echo.Group) {
	g.POST("/signup", h.SignupHandler)
	g.POST("/login", h.LoginHandler)
	g.POST("/refresh", h.RefreshHandler)
	g.POST("/logout", h.LogoutHandler)
	g.GET("/confirm", h.ConfirmHandler)
	g.GET("/:provider/authorize", h.AuthorizeHandler)
	g.GET("/:provider/callback", h.CallbackHandler)
}

type signupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// manager builds a request-scoped session manager, so the REST routes go
// through the same validation and classification as the dashboard.
func (h *AuthHandler) manager() (*session.Manager, func()) {
	client := auth.NewClient(h.service, h.log)
	return session.NewManager(client, h.profiles, notify.Discard, h.log), client.Close
}

func (h *AuthHandler) SignupHandler(c echo.Context) error {
	var req signupRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, INVALID_REQUEST)
	}
	m, done := h.manager()
	defer done()

	res, err := m.SignUp(c.Request().Context(), req.Email, req.Password, req.Name)
	if err != nil {
		return toHTTPError(err, false)
	}
	return c.JSON(http.StatusCreated, res)
}

func (h *AuthHandler) LoginHandler(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, INVALID_REQUEST)
	}
	m, done := h.manager()
	defer done()

	s, err := m.SignIn(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return toHTTPError(err, true)
	}
	p, err := h.profiles.Get(c.Request().Context(), s.User.ID)
	if err != nil {
		h.log.Error("error fetching profile", err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"session": s,
		"profile": p,
	})
}

func (h *AuthHandler) RefreshHandler(c echo.Context) error {
	var req refreshRequest
	if err := c.Bind(&req); err != nil || req.RefreshToken == "" {
		return echo.NewHTTPError(http.StatusBadRequest, INVALID_REQUEST)
	}
	s, err := h.service.Refresh(c.Request().Context(), req.RefreshToken)
	if err != nil {
		return toHTTPError(err, false)
	}
	return c.JSON(http.StatusOK, s)
}

func (h *AuthHandler) LogoutHandler(c echo.Context) error {
	var req refreshRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, INVALID_REQUEST)
	}
	accessToken := api_middleware.BearerToken(c)
	if accessToken == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, ErrorResponse{Message: "Auth session missing!"})
	}
	if err := h.service.SignOut(c.Request().Context(), accessToken, req.RefreshToken); err != nil {
		return toHTTPError(err, false)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *AuthHandler) ConfirmHandler(c echo.Context) error {
	token := c.QueryParam("token")
	if token == "" {
		return echo.NewHTTPError(http.StatusBadRequest, INVALID_REQUEST)
	}
	u, err := h.service.ConfirmEmail(c.Request().Context(), token)
	if err != nil {
		return toHTTPError(err, false)
	}
	return c.JSON(http.StatusOK, u)
}

func (h *AuthHandler) AuthorizeHandler(c echo.Context) error {
	target, err := h.service.AuthorizeURL(c.Request().Context(), c.Param("provider"), c.QueryParam("redirect_to"))
	if err != nil {
		return toHTTPError(err, false)
	}
	return c.Redirect(http.StatusFound, target)
}

// CallbackHandler finishes the provider sign-in and sends the browser back
// with the session in the URL fragment.
func (h *AuthHandler) CallbackHandler(c echo.Context) error {
	if errParam := c.QueryParam("error"); errParam != "" {
		return echo.NewHTTPError(http.StatusBadRequest, ErrorResponse{Message: errParam, Details: c.QueryParam("error_description")})
	}
	s, redirectTo, err := h.service.CompleteOAuth(c.Request().Context(), c.Param("provider"), c.QueryParam("state"), c.QueryParam("code"))
	if err != nil {
		return toHTTPError(err, false)
	}
	if redirectTo == "" {
		redirectTo = h.siteURL
	}

	fragment := url.Values{}
	fragment.Set("access_token", s.AccessToken)
	fragment.Set("refresh_token", s.RefreshToken)
	fragment.Set("token_type", s.TokenType)
	fragment.Set("expires_at", strconv.FormatInt(s.ExpiresAt.Unix(), 10))
	return c.Redirect(http.StatusFound, redirectTo+"#"+fragment.Encode())
}

package user

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/thesrcielos/PadelTracker/internal/apperrors"
	"github.com/thesrcielos/PadelTracker/internal/profile"
	"github.com/thesrcielos/PadelTracker/pkg/config"
	"github.com/thesrcielos/PadelTracker/pkg/logger"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Gateway messages. Clients classify failures by matching on these.
const (
	msgInvalidCredentials = "Invalid login credentials"
	msgEmailNotConfirmed  = "Email not confirmed"
	msgRateLimited        = "Email rate limit exceeded"
	msgAlreadyRegistered  = "User already registered"
	msgWeakPassword       = "Password should be at least 8 characters"
	msgInvalidRefresh     = "Invalid Refresh Token: Refresh Token Not Found"
	msgInvalidJWT         = "Invalid JWT"
	msgSessionRevoked     = "Session has been revoked"
	msgInvalidConfirm     = "Email link is invalid or has expired"
)

const (
	minPasswordLength = 8
	confirmationTTL   = 24 * time.Hour
	oauthStateTTL     = 10 * time.Minute
)

type Options struct {
	JWTSecret                string
	AccessTokenTTL           time.Duration
	RefreshTokenTTL          time.Duration
	BcryptCost               int
	RequireEmailConfirmation bool
	SignInAttempts           int
	SignInWindow             time.Duration
	SiteURL                  string
}

func OptionsFromConfig(cfg config.AuthConfig) Options {
	return Options{
		JWTSecret:                cfg.JWTSecret,
		AccessTokenTTL:           cfg.AccessTokenTTL,
		RefreshTokenTTL:          cfg.RefreshTokenTTL,
		BcryptCost:               cfg.BcryptCost,
		RequireEmailConfirmation: cfg.RequireEmailConfirmation,
		SignInAttempts:           cfg.SignInAttempts,
		SignInWindow:             cfg.SignInWindow,
		SiteURL:                  cfg.SiteURL,
	}
}

// AuthService is the identity provider: it owns users, issues and revokes
// sessions and publishes auth events.
type AuthService struct {
	repo      UserRepository
	store     TokenStore
	profiles  profile.Repository
	providers map[string]*OAuthProvider
	opts      Options
	log       *logger.Logger
	now       func() time.Time
}

func NewAuthService(repo UserRepository, store TokenStore, profiles profile.Repository, opts Options, log *logger.Logger) *AuthService {
	return &AuthService{
		repo:      repo,
		store:     store,
		profiles:  profiles,
		providers: map[string]*OAuthProvider{},
		opts:      opts,
		log:       log,
		now:       time.Now,
	}
}

func (s *AuthService) SignUp(ctx context.Context, req SignUpRequest) (*SignUpResult, error) {
	email := normalizeEmail(req.Email)
	if len([]rune(req.Password)) < minPasswordLength {
		return nil, apperrors.NewAppError(422, msgWeakPassword, nil)
	}

	existing, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperrors.NewAppError(422, msgAlreadyRegistered, nil)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.opts.BcryptCost)
	if err != nil {
		return nil, apperrors.NewAppError(500, "Error hashing password", err)
	}

	u := &User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: string(hashed),
		Name:         req.Name,
		Provider:     "email",
	}
	if !s.opts.RequireEmailConfirmation {
		now := s.now()
		u.EmailConfirmedAt = &now
	}
	if err := s.repo.CreateUser(ctx, u); err != nil {
		return nil, err
	}

	if s.opts.RequireEmailConfirmation {
		token := uuid.New().String()
		if err := s.store.SaveConfirmation(ctx, token, u.ID, confirmationTTL); err != nil {
			return nil, err
		}
		s.log.Info("confirmation link issued",
			zap.String("user_id", u.ID),
			zap.String("link", s.confirmationLink(token)))
		return &SignUpResult{User: u}, nil
	}

	session, err := s.issueSession(ctx, u)
	if err != nil {
		return nil, err
	}
	return &SignUpResult{User: u, Session: session}, nil
}

func (s *AuthService) SignInWithPassword(ctx context.Context, creds Credentials) (*Session, error) {
	email := normalizeEmail(creds.Email)
	attempts, err := s.store.CountAttempt(ctx, email, s.opts.SignInWindow)
	if err != nil {
		return nil, err
	}
	if attempts > int64(s.opts.SignInAttempts) {
		return nil, apperrors.NewAppError(429, msgRateLimited, nil)
	}

	u, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if u == nil || u.PasswordHash == "" {
		return nil, apperrors.NewAppError(400, msgInvalidCredentials, nil)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(creds.Password)); err != nil {
		return nil, apperrors.NewAppError(400, msgInvalidCredentials, nil)
	}
	if !u.Confirmed() {
		return nil, apperrors.NewAppError(400, msgEmailNotConfirmed, nil)
	}

	if err := s.store.ResetAttempts(ctx, email); err != nil {
		s.log.Warn("could not reset sign-in attempts", zap.String("user_id", u.ID), zap.Error(err))
	}
	return s.issueSession(ctx, u)
}

// Refresh rotates the refresh token and issues a new access token.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*Session, error) {
	userID, err := s.store.TakeRefreshToken(ctx, refreshToken)
	if err != nil {
		return nil, err
	}
	if userID == "" {
		return nil, apperrors.NewAppError(401, msgInvalidRefresh, nil)
	}
	u, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, apperrors.NewAppError(401, msgInvalidRefresh, nil)
	}
	return s.issueSession(ctx, u)
}

// Verify checks an access token's signature, expiry and revocation.
func (s *AuthService) Verify(ctx context.Context, accessToken string) (*JwtCustomClaims, error) {
	claims, err := ParseJWT([]byte(s.opts.JWTSecret), accessToken)
	if err != nil {
		return nil, apperrors.NewAppError(401, msgInvalidJWT, err)
	}
	revoked, err := s.store.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, apperrors.NewAppError(401, msgSessionRevoked, nil)
	}
	return claims, nil
}

// SignOut revokes the access token until it expires, drops the refresh
// token and tells the user's other dashboards.
func (s *AuthService) SignOut(ctx context.Context, accessToken, refreshToken string) error {
	claims, err := ParseJWT([]byte(s.opts.JWTSecret), accessToken)
	if err != nil {
		return apperrors.NewAppError(401, msgInvalidJWT, err)
	}
	if err := s.store.Revoke(ctx, claims.ID, claims.ExpiresAt.Time.Sub(s.now())); err != nil {
		return err
	}
	if refreshToken != "" {
		if err := s.store.DeleteRefreshToken(ctx, refreshToken); err != nil {
			return err
		}
	}
	s.publish(ctx, Event{Type: EventSignedOut, UserID: claims.UserID(), At: s.now()})
	return nil
}

func (s *AuthService) ConfirmEmail(ctx context.Context, token string) (*User, error) {
	userID, err := s.store.TakeConfirmation(ctx, token)
	if err != nil {
		return nil, err
	}
	if userID == "" {
		return nil, apperrors.NewAppError(403, msgInvalidConfirm, nil)
	}
	now := s.now()
	if err := s.repo.MarkEmailConfirmed(ctx, userID, now); err != nil {
		return nil, err
	}
	u, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, apperrors.NewAppError(404, "User not found", nil)
	}
	s.publish(ctx, Event{Type: EventUserUpdated, UserID: u.ID, At: now})
	return u, nil
}

func (s *AuthService) GetUser(ctx context.Context, id string) (*User, error) {
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, apperrors.NewAppError(404, "User not found", nil)
	}
	return u, nil
}

// Events streams auth events for userID until ctx is done.
func (s *AuthService) Events(ctx context.Context, userID string) (<-chan Event, error) {
	return s.store.Subscribe(ctx, userID)
}

func (s *AuthService) issueSession(ctx context.Context, u *User) (*Session, error) {
	now := s.now()
	claims := NewClaims(u, now, s.opts.AccessTokenTTL)
	access, err := GenerateJWT([]byte(s.opts.JWTSecret), claims)
	if err != nil {
		return nil, apperrors.NewAppError(500, "error creating jwt token", err)
	}

	refresh := uuid.New().String()
	if err := s.store.SaveRefreshToken(ctx, refresh, u.ID, s.opts.RefreshTokenTTL); err != nil {
		return nil, err
	}

	return &Session{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "bearer",
		ExpiresAt:    claims.ExpiresAt.Time,
		User:         *u,
	}, nil
}

func (s *AuthService) publish(ctx context.Context, ev Event) {
	if err := s.store.Publish(ctx, ev); err != nil {
		s.log.Error("failed to publish auth event", err, zap.String("user_id", ev.UserID), zap.String("event", string(ev.Type)))
	}
}

func (s *AuthService) confirmationLink(token string) string {
	return fmt.Sprintf("%s/api/v1/auth/confirm?token=%s", strings.TrimRight(s.opts.SiteURL, "/"), url.QueryEscape(token))
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

package user

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/thesrcielos/PadelTracker/internal/apperrors"
	"github.com/thesrcielos/PadelTracker/internal/profile"
	"github.com/thesrcielos/PadelTracker/pkg/config"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"
)

const (
	ProviderGitHub = "github"
	ProviderGoogle = "google"
)

// OAuthProvider is one external identity provider.
type OAuthProvider struct {
	Name        string
	Config      *oauth2.Config
	UserInfoURL string
	// EmailsURL is consulted when the profile call returns no email (GitHub
	// users with a private address).
	EmailsURL string
}

type identity struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Login string `json:"login"`
}

// NewOAuthProviders builds the providers whose credentials are configured.
func NewOAuthProviders(cfg config.OAuthConfig) []*OAuthProvider {
	var providers []*OAuthProvider
	callback := strings.TrimRight(cfg.CallbackURL, "/")
	if cfg.GitHub.Enabled() {
		providers = append(providers, &OAuthProvider{
			Name: ProviderGitHub,
			Config: &oauth2.Config{
				ClientID:     cfg.GitHub.ClientID,
				ClientSecret: cfg.GitHub.ClientSecret,
				Endpoint:     endpoints.GitHub,
				RedirectURL:  callback + "/github/callback",
				Scopes:       []string{"read:user", "user:email"},
			},
			UserInfoURL: "https://api.github.com/user",
			EmailsURL:   "https://api.github.com/user/emails",
		})
	}
	if cfg.Google.Enabled() {
		providers = append(providers, &OAuthProvider{
			Name: ProviderGoogle,
			Config: &oauth2.Config{
				ClientID:     cfg.Google.ClientID,
				ClientSecret: cfg.Google.ClientSecret,
				Endpoint:     endpoints.Google,
				RedirectURL:  callback + "/google/callback",
				Scopes:       []string{"openid", "email", "profile"},
			},
			UserInfoURL: "https://openidconnect.googleapis.com/v1/userinfo",
		})
	}
	return providers
}

func (s *AuthService) RegisterProvider(p *OAuthProvider) {
	s.providers[p.Name] = p
}

func (s *AuthService) provider(name string) (*OAuthProvider, error) {
	p, ok := s.providers[name]
	if !ok {
		return nil, apperrors.NewAppError(400, "Unsupported provider: provider is not enabled", nil)
	}
	return p, nil
}

// AuthorizeURL starts the redirect flow. The state ties the callback back to
// redirectTo.
func (s *AuthService) AuthorizeURL(ctx context.Context, providerName, redirectTo string) (string, error) {
	p, err := s.provider(providerName)
	if err != nil {
		return "", err
	}
	if redirectTo == "" {
		redirectTo = s.opts.SiteURL
	}
	state := uuid.New().String()
	if err := s.store.SaveOAuthState(ctx, state, OAuthState{Provider: p.Name, RedirectTo: redirectTo}, oauthStateTTL); err != nil {
		return "", err
	}
	return p.Config.AuthCodeURL(state), nil
}

// CompleteOAuth exchanges the code, finds or creates the user and returns a
// session plus the redirect target stored with the state.
func (s *AuthService) CompleteOAuth(ctx context.Context, providerName, state, code string) (*Session, string, error) {
	p, err := s.provider(providerName)
	if err != nil {
		return nil, "", err
	}
	st, err := s.store.TakeOAuthState(ctx, state)
	if err != nil {
		return nil, "", err
	}
	if st == nil || st.Provider != p.Name {
		return nil, "", apperrors.NewAppError(400, "OAuth state is invalid or has expired", nil)
	}

	token, err := p.Config.Exchange(ctx, code)
	if err != nil {
		return nil, "", apperrors.NewAppError(400, "Error exchanging authorization code", err)
	}
	id, err := p.fetchIdentity(ctx, token)
	if err != nil {
		return nil, "", apperrors.NewAppError(502, "Error getting user profile from external provider", err)
	}
	if id.Email == "" {
		return nil, "", apperrors.NewAppError(400, "Error getting user email from external provider", nil)
	}

	u, err := s.findOrCreateOAuthUser(ctx, p.Name, id)
	if err != nil {
		return nil, "", err
	}
	session, err := s.issueSession(ctx, u)
	if err != nil {
		return nil, "", err
	}
	return session, st.RedirectTo, nil
}

func (s *AuthService) findOrCreateOAuthUser(ctx context.Context, providerName string, id identity) (*User, error) {
	email := normalizeEmail(id.Email)
	u, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	now := s.now()
	if u != nil {
		if !u.Confirmed() {
			if err := s.repo.MarkEmailConfirmed(ctx, u.ID, now); err != nil {
				return nil, err
			}
			u.EmailConfirmedAt = &now
		}
		return u, nil
	}

	name := id.Name
	if name == "" {
		name = id.Login
	}
	if name == "" {
		name = strings.SplitN(email, "@", 2)[0]
	}
	u = &User{
		ID:               uuid.New().String(),
		Email:            email,
		Name:             name,
		Provider:         providerName,
		EmailConfirmedAt: &now,
	}
	if err := s.repo.CreateUser(ctx, u); err != nil {
		return nil, err
	}
	if err := s.profiles.Insert(ctx, profile.New(u.ID, name)); err != nil {
		s.log.Error("error creating profile for oauth user", err, zap.String("user_id", u.ID))
	}
	return u, nil
}

func (p *OAuthProvider) fetchIdentity(ctx context.Context, token *oauth2.Token) (identity, error) {
	client := p.Config.Client(ctx, token)

	var id identity
	if err := getJSON(ctx, client, p.UserInfoURL, &id); err != nil {
		return identity{}, err
	}
	if id.Email != "" || p.EmailsURL == "" {
		return id, nil
	}

	var emails []struct {
		Email    string `json:"email"`
		Primary  bool   `json:"primary"`
		Verified bool   `json:"verified"`
	}
	if err := getJSON(ctx, client, p.EmailsURL, &emails); err != nil {
		return identity{}, err
	}
	for _, e := range emails {
		if e.Primary && e.Verified {
			id.Email = e.Email
			break
		}
	}
	return id, nil
}

func getJSON(ctx context.Context, client *http.Client, url string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: status %d", url, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

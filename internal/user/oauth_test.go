package user

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/thesrcielos/PadelTracker/internal/profile"
	"github.com/thesrcielos/PadelTracker/pkg/config"
	"golang.org/x/oauth2"
)

func fakeGitHub(t *testing.T) *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "code-123", r.Form.Get("code"))
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"access_token": "gh-token", "token_type": "bearer"})
	})
	mux.HandleFunc("/user", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer gh-token", r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode(map[string]interface{}{"login": "anapadel", "name": "", "email": nil})
	})
	mux.HandleFunc("/user/emails", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]map[string]interface{}{
			{"email": "old@club.es", "primary": false, "verified": true},
			{"email": "Ana@Club.es", "primary": true, "verified": true},
		})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func registerFake(f *fixture, srv *httptest.Server) {
	f.service.RegisterProvider(&OAuthProvider{
		Name: ProviderGitHub,
		Config: &oauth2.Config{
			ClientID:     "client",
			ClientSecret: "secret",
			Endpoint: oauth2.Endpoint{
				AuthURL:   srv.URL + "/authorize",
				TokenURL:  srv.URL + "/token",
				AuthStyle: oauth2.AuthStyleInParams,
			},
			RedirectURL: "http://localhost:8080/api/v1/auth/github/callback",
		},
		UserInfoURL: srv.URL + "/user",
		EmailsURL:   srv.URL + "/user/emails",
	})
}

func TestAuthService_OAuthFlow_CreatesUser(t *testing.T) {
	f := newFixture(t, true)
	registerFake(f, fakeGitHub(t))
	ctx := context.Background()

	authURL, err := f.service.AuthorizeURL(ctx, ProviderGitHub, "http://localhost:5173/dashboard")
	require.NoError(t, err)
	parsed, err := url.Parse(authURL)
	require.NoError(t, err)
	state := parsed.Query().Get("state")
	require.NotEmpty(t, state)

	f.repo.On("FindByEmail", mock.Anything, "ana@club.es").Return(nil, nil)
	f.repo.On("CreateUser", mock.Anything, mock.AnythingOfType("*user.User")).Return(nil)
	f.profiles.On("Insert", mock.Anything, mock.MatchedBy(func(p *profile.Profile) bool {
		return p.Name == "anapadel" && p.Level == profile.DefaultLevel
	})).Return(nil)

	session, redirect, err := f.service.CompleteOAuth(ctx, ProviderGitHub, state, "code-123")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:5173/dashboard", redirect)
	assert.Equal(t, "ana@club.es", session.User.Email)
	assert.Equal(t, ProviderGitHub, session.User.Provider)
	assert.True(t, session.User.Confirmed())
	f.repo.AssertExpectations(t)
	f.profiles.AssertExpectations(t)

	// state is single use
	_, _, err = f.service.CompleteOAuth(ctx, ProviderGitHub, state, "code-123")
	assert.Error(t, err)
}

func TestAuthService_OAuth_UnknownProvider(t *testing.T) {
	f := newFixture(t, false)
	_, err := f.service.AuthorizeURL(context.Background(), "myspace", "")
	assert.Contains(t, appMessage(t, err), "Unsupported provider")
}

func TestAuthService_OAuth_BadState(t *testing.T) {
	f := newFixture(t, false)
	registerFake(f, fakeGitHub(t))

	_, _, err := f.service.CompleteOAuth(context.Background(), ProviderGitHub, "forged", "code-123")
	assert.Contains(t, appMessage(t, err), "state")
}

func TestNewOAuthProviders(t *testing.T) {
	providers := NewOAuthProviders(config.OAuthConfig{
		CallbackURL: "http://localhost:8080/api/v1/auth/",
		GitHub:      config.ProviderConfig{ClientID: "id", ClientSecret: "secret"},
		Google:      config.ProviderConfig{ClientID: "id"},
	})
	require.Len(t, providers, 1)
	assert.Equal(t, ProviderGitHub, providers[0].Name)
	assert.Equal(t, "http://localhost:8080/api/v1/auth/github/callback", providers[0].Config.RedirectURL)
}

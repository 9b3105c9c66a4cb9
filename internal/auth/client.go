// Package auth is the per-dashboard auth client. It keeps the current
// session, talks to the identity provider and notifies listeners whenever
// the session changes.
package auth

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/thesrcielos/PadelTracker/internal/apperrors"
	"github.com/thesrcielos/PadelTracker/internal/user"
	"github.com/thesrcielos/PadelTracker/pkg/logger"
	"go.uber.org/zap"
)

// expiryMargin refreshes a little before the access token actually expires.
const expiryMargin = 10 * time.Second

// Provider is the identity provider the client talks to.
type Provider interface {
	SignUp(ctx context.Context, req user.SignUpRequest) (*user.SignUpResult, error)
	SignInWithPassword(ctx context.Context, creds user.Credentials) (*user.Session, error)
	AuthorizeURL(ctx context.Context, provider, redirectTo string) (string, error)
	Refresh(ctx context.Context, refreshToken string) (*user.Session, error)
	Verify(ctx context.Context, accessToken string) (*user.JwtCustomClaims, error)
	SignOut(ctx context.Context, accessToken, refreshToken string) error
	GetUser(ctx context.Context, id string) (*user.User, error)
	Events(ctx context.Context, userID string) (<-chan user.Event, error)
}

// Listener is called with the client lock held. It must not call back into
// the Client.
type Listener func(event user.EventType, session *user.Session)

var ErrSessionMissing = apperrors.NewAppError(401, "Auth session missing!", nil)

type Client struct {
	provider Provider
	log      *logger.Logger
	now      func() time.Time

	mu          sync.Mutex
	session     *user.Session
	listeners   map[int]Listener
	nextID      int
	watching    string
	stopWatcher context.CancelFunc
}

func NewClient(provider Provider, log *logger.Logger) *Client {
	return &Client{
		provider:  provider,
		log:       log,
		now:       time.Now,
		listeners: map[int]Listener{},
	}
}

// Restore adopts tokens handed over by the browser. A stale access token is
// replaced through the refresh token when one is given. No event is emitted.
func (c *Client) Restore(ctx context.Context, accessToken, refreshToken string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if accessToken != "" {
		claims, err := c.provider.Verify(ctx, accessToken)
		if err == nil {
			u, err := c.provider.GetUser(ctx, claims.UserID())
			if err != nil {
				return err
			}
			c.setSessionLocked(&user.Session{
				AccessToken:  accessToken,
				RefreshToken: refreshToken,
				TokenType:    "bearer",
				ExpiresAt:    claims.ExpiresAt.Time,
				User:         *u,
			})
			return nil
		}
		if refreshToken == "" {
			return err
		}
	}
	if refreshToken == "" {
		return nil
	}

	s, err := c.provider.Refresh(ctx, refreshToken)
	if err != nil {
		return err
	}
	c.setSessionLocked(s)
	return nil
}

// GetSession returns the current session, refreshing an expired access
// token first. It returns nil without error when signed out.
func (c *Client) GetSession(ctx context.Context) (*user.Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session == nil {
		return nil, nil
	}
	if c.now().Add(expiryMargin).Before(c.session.ExpiresAt) {
		return c.snapshotLocked(), nil
	}

	s, err := c.provider.Refresh(ctx, c.session.RefreshToken)
	if err != nil {
		if _, ok := apperrors.AsAppError(err); ok {
			c.clearLocked()
		}
		return nil, err
	}
	c.setSessionLocked(s)
	c.emitLocked(user.EventTokenRefreshed)
	return c.snapshotLocked(), nil
}

func (c *Client) SignInWithPassword(ctx context.Context, email, password string) (*user.Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, err := c.provider.SignInWithPassword(ctx, user.Credentials{Email: email, Password: password})
	if err != nil {
		return nil, err
	}
	c.setSessionLocked(s)
	c.emitLocked(user.EventSignedIn)
	return c.snapshotLocked(), nil
}

func (c *Client) SignUp(ctx context.Context, req user.SignUpRequest) (*user.SignUpResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	res, err := c.provider.SignUp(ctx, req)
	if err != nil {
		return nil, err
	}
	if res.Session != nil {
		c.setSessionLocked(res.Session)
		c.emitLocked(user.EventSignedIn)
	}
	return res, nil
}

// SignInWithOAuth returns the provider URL the browser must visit. The
// session arrives later through Restore with the callback's tokens.
func (c *Client) SignInWithOAuth(ctx context.Context, provider, redirectTo string) (string, error) {
	return c.provider.AuthorizeURL(ctx, provider, redirectTo)
}

// SignOut revokes the session remotely, then drops it and emits SIGNED_OUT.
// A session the provider no longer knows is dropped all the same.
func (c *Client) SignOut(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session == nil {
		return nil
	}
	err := c.provider.SignOut(ctx, c.session.AccessToken, c.session.RefreshToken)
	if err != nil {
		appErr, ok := apperrors.AsAppError(err)
		if !ok || appErr.Code != 401 {
			return err
		}
	}
	c.clearLocked()
	return nil
}

func (c *Client) RefreshSession(ctx context.Context) (*user.Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session == nil {
		return nil, ErrSessionMissing
	}
	s, err := c.provider.Refresh(ctx, c.session.RefreshToken)
	if err != nil {
		return nil, err
	}
	c.setSessionLocked(s)
	c.emitLocked(user.EventTokenRefreshed)
	return c.snapshotLocked(), nil
}

// OnAuthStateChange registers l and returns a function that removes it.
func (c *Client) OnAuthStateChange(l Listener) func() {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.nextID
	c.nextID++
	c.listeners[id] = l
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.listeners, id)
	}
}

// ExpiresAt is the access token expiry, zero when signed out.
func (c *Client) ExpiresAt() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return time.Time{}
	}
	return c.session.ExpiresAt
}

// Close stops watching remote events. Listeners are kept.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopWatchingLocked()
}

func (c *Client) snapshotLocked() *user.Session {
	if c.session == nil {
		return nil
	}
	s := *c.session
	return &s
}

func (c *Client) setSessionLocked(s *user.Session) {
	c.session = s
	if c.watching != s.User.ID {
		c.stopWatchingLocked()
		c.watchLocked(s.User.ID)
	}
}

func (c *Client) clearLocked() {
	c.stopWatchingLocked()
	c.session = nil
	c.emitLocked(user.EventSignedOut)
}

func (c *Client) emitLocked(event user.EventType) {
	ids := make([]int, 0, len(c.listeners))
	for id := range c.listeners {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	session := c.snapshotLocked()
	for _, id := range ids {
		c.listeners[id](event, session)
	}
}

func (c *Client) watchLocked(userID string) {
	ctx, cancel := context.WithCancel(context.Background())
	events, err := c.provider.Events(ctx, userID)
	if err != nil {
		cancel()
		c.log.Warn("auth events unavailable", zap.String("user_id", userID), zap.Error(err))
		return
	}
	c.watching = userID
	c.stopWatcher = cancel
	go c.consume(ctx, userID, events)
}

func (c *Client) stopWatchingLocked() {
	if c.stopWatcher != nil {
		c.stopWatcher()
	}
	c.stopWatcher = nil
	c.watching = ""
}

func (c *Client) consume(ctx context.Context, userID string, events <-chan user.Event) {
	for ev := range events {
		switch ev.Type {
		case user.EventSignedOut:
			c.remoteSignOut(userID)
		case user.EventUserUpdated:
			c.remoteUserUpdate(ctx, userID)
		}
	}
}

// remoteSignOut handles a sign-out done from another dashboard of the same
// user.
func (c *Client) remoteSignOut(userID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session == nil || c.session.User.ID != userID {
		return
	}
	c.log.Info("session signed out remotely", zap.String("user_id", userID))
	c.clearLocked()
}

func (c *Client) remoteUserUpdate(ctx context.Context, userID string) {
	u, err := c.provider.GetUser(ctx, userID)
	if err != nil {
		c.log.Warn("could not reload user after update", zap.String("user_id", userID), zap.Error(err))
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil || c.session.User.ID != userID {
		return
	}
	c.session.User = *u
	c.emitLocked(user.EventUserUpdated)
}

// Package dashboard wires the per-tab state of a connected dashboard: its
// auth client, session manager and aggregators, and the sink their updates
// are pushed to.
package dashboard

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/thesrcielos/PadelTracker/internal/auth"
	"github.com/thesrcielos/PadelTracker/internal/match"
	"github.com/thesrcielos/PadelTracker/internal/notify"
	"github.com/thesrcielos/PadelTracker/internal/profile"
	"github.com/thesrcielos/PadelTracker/internal/session"
	"github.com/thesrcielos/PadelTracker/internal/skill"
	"github.com/thesrcielos/PadelTracker/pkg/logger"
	"go.uber.org/zap"
)

// Outbound message types.
const (
	TypeAuthState        = "AUTH_STATE"
	TypeMatches          = "MATCHES"
	TypePerformance      = "PERFORMANCE"
	TypeSkills           = "SKILLS"
	TypeAssessments      = "ASSESSMENTS"
	TypeToast            = "TOAST"
	TypeError            = "ERROR"
	TypeProviderRedirect = "PROVIDER_REDIRECT"
)

// Sink receives everything a client pushes to its browser tab.
type Sink interface {
	Send(msgType string, payload interface{})
}

type SinkFunc func(msgType string, payload interface{})

func (f SinkFunc) Send(msgType string, payload interface{}) {
	f(msgType, payload)
}

// Services are the shared backends every client is built on.
type Services struct {
	Auth     auth.Provider
	Profiles profile.Repository
	Matches  match.Repository
	Skills   skill.Repository
}

type Client struct {
	ID          string
	Auth        *auth.Client
	Session     *session.Manager
	Matches     *match.Aggregator
	Performance *match.PerformanceAggregator
	Skills      *skill.Aggregator

	sink    Sink
	log     *logger.Logger
	unwatch func()

	mu     sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc
	loaded bool
	userID string
}

func NewClient(id string, svc Services, sink Sink, log *logger.Logger) *Client {
	log = log.With(zap.String("client_id", id))
	notifier := notify.NotifierFunc(func(n notify.Notification) {
		sink.Send(TypeToast, n)
	})

	c := &Client{ID: id, sink: sink, log: log, ctx: context.Background(), cancel: func() {}}
	c.Auth = auth.NewClient(svc.Auth, log)
	c.Session = session.NewManager(c.Auth, svc.Profiles, notifier, log)
	c.Performance = match.NewPerformanceAggregator(svc.Matches, c.Session, log)
	c.Matches = match.NewAggregator(svc.Matches, c.Session, notifier, log, match.WithPerformance(c.Performance))
	c.Skills = skill.NewAggregator(svc.Skills, c.Session, notifier, log)

	c.Matches.OnChange(func(v match.View) { sink.Send(TypeMatches, v) })
	c.Performance.OnChange(func(v match.PerformanceView) { sink.Send(TypePerformance, v) })
	c.Skills.OnChange(func(v skill.View) { sink.Send(TypeSkills, v) })
	c.unwatch = c.Session.Watch(c.onSessionChange)
	return c
}

// Start adopts the tokens the tab connected with, if any, and starts the
// session manager. It returns before the session is resolved.
func (c *Client) Start(ctx context.Context, accessToken, refreshToken string) {
	ctx, cancel := context.WithCancel(ctx)
	c.mu.Lock()
	c.ctx, c.cancel = ctx, cancel
	c.mu.Unlock()

	if accessToken != "" || refreshToken != "" {
		if err := c.Auth.Restore(ctx, accessToken, refreshToken); err != nil {
			c.log.Warn("could not restore session", zap.Error(err))
		}
	}
	c.Session.Start(ctx)
}

// Context is cancelled when the client is closed.
func (c *Client) Context() context.Context {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ctx
}

func (c *Client) Close() {
	c.unwatch()
	c.Session.Close()
	c.Auth.Close()
	c.mu.Lock()
	c.cancel()
	c.mu.Unlock()
}

// Send pushes a message to the tab.
func (c *Client) Send(msgType string, payload interface{}) {
	c.sink.Send(msgType, payload)
}

// Reload refreshes every aggregator for the current user.
func (c *Client) Reload(ctx context.Context) error {
	return errors.Join(
		c.Matches.Load(ctx),
		c.Performance.Load(ctx),
		c.Skills.Load(ctx),
	)
}

// NeedsRefresh reports whether the access token expires within window.
func (c *Client) NeedsRefresh(now time.Time, window time.Duration) bool {
	exp := c.Auth.ExpiresAt()
	return !exp.IsZero() && exp.Sub(now) < window
}

func (c *Client) onSessionChange(snap session.Snapshot) {
	c.sink.Send(TypeAuthState, snap)

	var userID string
	if snap.User != nil {
		userID = snap.User.ID
	}
	if snap.State == session.StateLoading {
		return
	}
	c.mu.Lock()
	changed := !c.loaded || userID != c.userID
	c.loaded, c.userID = true, userID
	ctx := c.ctx
	c.mu.Unlock()

	if changed {
		if err := c.Reload(ctx); err != nil {
			c.log.Warn("error reloading dashboard", zap.Error(err))
		}
	}
}

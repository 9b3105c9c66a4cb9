// Package session holds the auth state of one dashboard client: who is
// signed in, their profile row, and the operations that change either.
package session

import (
	"context"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/thesrcielos/PadelTracker/internal/apperrors"
	"github.com/thesrcielos/PadelTracker/internal/auth"
	"github.com/thesrcielos/PadelTracker/internal/notify"
	"github.com/thesrcielos/PadelTracker/internal/profile"
	"github.com/thesrcielos/PadelTracker/internal/user"
	"github.com/thesrcielos/PadelTracker/internal/validation"
	"github.com/thesrcielos/PadelTracker/pkg/logger"
	"github.com/thesrcielos/PadelTracker/pkg/metrics"
	"go.uber.org/zap"
)

type State string

const (
	StateLoading       State = "loading"
	StateAnonymous     State = "anonymous"
	StateAuthenticated State = "authenticated"
)

// AuthClient is the remote auth contract the manager consumes.
type AuthClient interface {
	GetSession(ctx context.Context) (*user.Session, error)
	SignInWithPassword(ctx context.Context, email, password string) (*user.Session, error)
	SignUp(ctx context.Context, req user.SignUpRequest) (*user.SignUpResult, error)
	SignInWithOAuth(ctx context.Context, provider, redirectTo string) (string, error)
	SignOut(ctx context.Context) error
	RefreshSession(ctx context.Context) (*user.Session, error)
	OnAuthStateChange(l auth.Listener) func()
}

// Snapshot is a consistent copy of the manager's state.
type Snapshot struct {
	State   State            `json:"state"`
	User    *user.User       `json:"user"`
	Profile *profile.Profile `json:"profile"`
}

// Manager starts in StateLoading and leaves it once the initial session
// lookup resolves. It is safe for concurrent use.
type Manager struct {
	client   AuthClient
	profiles profile.Repository
	notifier notify.Notifier
	log      *logger.Logger
	queue    *TaskQueue

	mu          sync.RWMutex
	initialized bool
	session     *user.Session
	user        *user.User
	profile     *profile.Profile
	generation  uint64

	ready       chan struct{}
	readyOnce   sync.Once
	unsubscribe func()

	watchMu  sync.Mutex
	watchers map[int]func(Snapshot)
	nextID   int
}

func NewManager(client AuthClient, profiles profile.Repository, notifier notify.Notifier, log *logger.Logger) *Manager {
	return &Manager{
		client:   client,
		profiles: profiles,
		notifier: notifier,
		log:      log,
		queue:    NewTaskQueue(log),
		ready:    make(chan struct{}),
		watchers: map[int]func(Snapshot){},
	}
}

// Start subscribes to session changes, starts the task queue and enqueues
// the initial session lookup.
func (m *Manager) Start(ctx context.Context) {
	m.unsubscribe = m.client.OnAuthStateChange(m.handleAuthChange)
	m.queue.Start(ctx)
	m.queue.Enqueue(func(ctx context.Context) {
		m.Restore(ctx)
	})
}

// Close unsubscribes from the auth client and stops the queue.
func (m *Manager) Close() {
	if m.unsubscribe != nil {
		m.unsubscribe()
	}
	m.queue.Close()
}

// Ready is closed once the initial lookup has resolved.
func (m *Manager) Ready() <-chan struct{} {
	return m.ready
}

// Flush waits for every task enqueued so far.
func (m *Manager) Flush(ctx context.Context) error {
	return m.queue.Flush(ctx)
}

// Watch registers fn to receive a snapshot after every state change and
// returns a function that removes it.
func (m *Manager) Watch(fn func(Snapshot)) func() {
	m.watchMu.Lock()
	defer m.watchMu.Unlock()
	id := m.nextID
	m.nextID++
	m.watchers[id] = fn
	return func() {
		m.watchMu.Lock()
		defer m.watchMu.Unlock()
		delete(m.watchers, id)
	}
}

func (m *Manager) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshotLocked()
}

func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.stateLocked()
}

// CurrentUserID returns the signed-in user's id, or "" when anonymous.
func (m *Manager) CurrentUserID() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.user == nil {
		return ""
	}
	return m.user.ID
}

func (m *Manager) Profile() *profile.Profile {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.profile == nil {
		return nil
	}
	p := *m.profile
	return &p
}

// Restore resolves the current session and, with one, loads the profile.
// It leaves StateLoading for good.
func (m *Manager) Restore(ctx context.Context) {
	s, err := m.client.GetSession(ctx)
	if err != nil {
		m.log.Warn("error getting session", zap.Error(err))
		s = nil
	}

	m.mu.Lock()
	m.setSessionLocked(s)
	m.initialized = true
	gen := m.generation
	m.mu.Unlock()

	if s != nil {
		m.loadProfile(ctx, gen, s.User.ID)
	}
	m.readyOnce.Do(func() { close(m.ready) })
	m.publish()
}

func (m *Manager) SignIn(ctx context.Context, email, password string) (*user.Session, error) {
	if r := validation.ValidateEmail(email); !r.Valid {
		return nil, m.fail("Sign-in error", &apperrors.AuthError{Kind: apperrors.KindEmail, Message: r.Message}, metrics.SignInAttemptsTotal)
	}

	s, err := m.client.SignInWithPassword(ctx, email, password)
	if err != nil {
		return nil, m.fail("Sign-in error", classifySignIn(err), metrics.SignInAttemptsTotal)
	}
	metrics.SignInAttemptsTotal.WithLabelValues("ok").Inc()

	m.mu.RLock()
	gen := m.generation
	m.mu.RUnlock()
	m.loadProfile(ctx, gen, s.User.ID)
	m.publish()
	return s, nil
}

func (m *Manager) SignUp(ctx context.Context, email, password, name string) (*user.SignUpResult, error) {
	if r := validation.ValidateEmail(email); !r.Valid {
		return nil, m.fail("Sign-up error", &apperrors.AuthError{Kind: apperrors.KindEmail, Message: r.Message}, metrics.SignUpsTotal)
	}
	if r := validation.ValidatePassword(password); !r.Valid {
		return nil, m.fail("Sign-up error", &apperrors.AuthError{Kind: apperrors.KindPassword, Message: r.Message}, metrics.SignUpsTotal)
	}
	if r := validation.ValidateName(name); !r.Valid {
		return nil, m.fail("Sign-up error", &apperrors.AuthError{Kind: apperrors.KindGeneral, Message: r.Message}, metrics.SignUpsTotal)
	}

	res, err := m.client.SignUp(ctx, user.SignUpRequest{Email: email, Password: password, Name: name})
	if err != nil {
		return nil, m.fail("Sign-up error", classifySignUp(err), metrics.SignUpsTotal)
	}
	metrics.SignUpsTotal.WithLabelValues("ok").Inc()

	if res.User != nil {
		p := profile.New(res.User.ID, name)
		if err := m.profiles.Insert(ctx, p); err != nil {
			m.log.Error("error creating profile", err, zap.String("user_id", res.User.ID))
		} else {
			m.adoptProfile(res.User.ID, p)
		}
	}

	description := "Your account has been created"
	if res.Session == nil {
		description = "Your account has been created. Check your email to confirm it."
	}
	m.notifier.Notify(notify.Info("Account created", description))
	return res, nil
}

// SignOut signs out remotely and drops the profile. The user and session
// are cleared by the SIGNED_OUT notification.
func (m *Manager) SignOut(ctx context.Context) error {
	if err := m.client.SignOut(ctx); err != nil {
		m.log.Error("error signing out", err)
		authErr := serverError(err)
		if _, ok := apperrors.AsAppError(err); ok {
			authErr.Message = msgSignOutFailed
		}
		return m.fail("Sign-out error", authErr, nil)
	}

	m.mu.Lock()
	m.profile = nil
	m.mu.Unlock()
	return nil
}

func (m *Manager) UpdateProfile(ctx context.Context, updates profile.Updates) (*profile.Profile, error) {
	m.mu.RLock()
	var userID string
	if m.user != nil {
		userID = m.user.ID
	}
	m.mu.RUnlock()

	if userID == "" {
		return nil, m.fail("Profile error", apperrors.ErrNoSession, nil)
	}
	if r := updates.Validate(); !r.Valid {
		return nil, m.fail("Profile error", &apperrors.AuthError{Kind: apperrors.KindGeneral, Message: r.Message}, nil)
	}

	updated, err := m.profiles.Update(ctx, userID, updates)
	if err != nil {
		return nil, m.fail(msgProfileUpdateFailed, storeError(err, msgProfileUpdateFailed), nil)
	}

	m.mu.Lock()
	if m.user != nil && m.user.ID == userID {
		if m.profile == nil {
			m.profile = updated
		} else {
			updates.Apply(m.profile)
		}
	}
	m.mu.Unlock()

	m.notifier.Notify(notify.Info("Profile updated", "Your profile has been updated successfully"))
	m.publish()
	return updated, nil
}

// RefreshSession is best effort; failures are logged only.
func (m *Manager) RefreshSession(ctx context.Context) {
	if _, err := m.client.RefreshSession(ctx); err != nil {
		m.log.Warn("error refreshing session", zap.Error(err))
	}
}

// SignInWithProvider returns the URL the browser must follow to sign in
// with an external provider.
func (m *Manager) SignInWithProvider(ctx context.Context, provider, redirectTo string) (string, error) {
	url, err := m.client.SignInWithOAuth(ctx, provider, redirectTo)
	if err != nil {
		return "", m.fail("Sign-in error", classifySignIn(err), metrics.SignInAttemptsTotal)
	}
	return url, nil
}

// handleAuthChange runs with the auth client's lock held, so it only
// touches local state and defers everything else to the queue.
func (m *Manager) handleAuthChange(event user.EventType, s *user.Session) {
	m.mu.Lock()
	m.setSessionLocked(s)
	gen := m.generation
	m.mu.Unlock()

	m.log.Debug("auth state changed", zap.String("event", string(event)))

	var userID string
	if s != nil {
		userID = s.User.ID
	}
	m.queue.Enqueue(func(ctx context.Context) {
		if userID != "" {
			m.loadProfile(ctx, gen, userID)
		}
		if m.currentGeneration() == gen {
			m.publish()
		}
	})
}

func (m *Manager) setSessionLocked(s *user.Session) {
	if s == nil {
		if m.user != nil {
			m.generation++
		}
		m.session, m.user, m.profile = nil, nil, nil
		return
	}
	if m.user == nil || m.user.ID != s.User.ID {
		m.generation++
		m.profile = nil
	}
	u := s.User
	m.session = s
	m.user = &u
}

// loadProfile fetches the profile for userID unless the user changed since
// generation gen.
func (m *Manager) loadProfile(ctx context.Context, gen uint64, userID string) {
	if m.currentGeneration() != gen {
		return
	}
	p, err := m.profiles.Get(ctx, userID)
	if err != nil {
		m.log.Error("error fetching profile", err, zap.String("user_id", userID))
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.generation != gen || m.user == nil || m.user.ID != userID {
		return
	}
	m.profile = p
}

func (m *Manager) adoptProfile(userID string, p *profile.Profile) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.user != nil && m.user.ID == userID && m.profile == nil {
		cp := *p
		m.profile = &cp
	}
}

func (m *Manager) currentGeneration() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.generation
}

func (m *Manager) stateLocked() State {
	switch {
	case !m.initialized:
		return StateLoading
	case m.user != nil:
		return StateAuthenticated
	default:
		return StateAnonymous
	}
}

func (m *Manager) snapshotLocked() Snapshot {
	snap := Snapshot{State: m.stateLocked()}
	if m.user != nil {
		u := *m.user
		snap.User = &u
	}
	if m.profile != nil {
		p := *m.profile
		snap.Profile = &p
	}
	return snap
}

func (m *Manager) publish() {
	snap := m.Snapshot()

	m.watchMu.Lock()
	fns := make([]func(Snapshot), 0, len(m.watchers))
	for _, fn := range m.watchers {
		fns = append(fns, fn)
	}
	m.watchMu.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
}

// fail records the failure, pushes a destructive notification and returns
// the classified error.
func (m *Manager) fail(title string, authErr *apperrors.AuthError, outcomes *prometheus.CounterVec) error {
	if outcomes != nil {
		outcomes.WithLabelValues(string(authErr.Kind)).Inc()
	}
	description := authErr.Message
	if authErr.Kind == apperrors.KindServer && authErr.Message == msgServerError {
		title, description = msgServerError, msgServerUnreachable
	}
	m.notifier.Notify(notify.Failure(title, description))
	return authErr
}

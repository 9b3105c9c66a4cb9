package session

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"
	"github.com/thesrcielos/PadelTracker/internal/auth"
	"github.com/thesrcielos/PadelTracker/internal/user"
)

// AuthClientMock records calls and keeps the registered listener so tests
// can emit session changes the way a real client does.
type AuthClientMock struct {
	mock.Mock

	mu       sync.Mutex
	listener auth.Listener
}

func (m *AuthClientMock) Emit(event user.EventType, s *user.Session) {
	m.mu.Lock()
	l := m.listener
	m.mu.Unlock()
	if l != nil {
		l(event, s)
	}
}

func (m *AuthClientMock) GetSession(ctx context.Context) (*user.Session, error) {
	args := m.Called(ctx)
	s, _ := args.Get(0).(*user.Session)
	return s, args.Error(1)
}

func (m *AuthClientMock) SignInWithPassword(ctx context.Context, email, password string) (*user.Session, error) {
	args := m.Called(ctx, email, password)
	s, _ := args.Get(0).(*user.Session)
	return s, args.Error(1)
}

func (m *AuthClientMock) SignUp(ctx context.Context, req user.SignUpRequest) (*user.SignUpResult, error) {
	args := m.Called(ctx, req)
	res, _ := args.Get(0).(*user.SignUpResult)
	return res, args.Error(1)
}

func (m *AuthClientMock) SignInWithOAuth(ctx context.Context, provider, redirectTo string) (string, error) {
	args := m.Called(ctx, provider, redirectTo)
	return args.String(0), args.Error(1)
}

func (m *AuthClientMock) SignOut(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *AuthClientMock) RefreshSession(ctx context.Context) (*user.Session, error) {
	args := m.Called(ctx)
	s, _ := args.Get(0).(*user.Session)
	return s, args.Error(1)
}

func (m *AuthClientMock) OnAuthStateChange(l auth.Listener) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listener = l
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		m.listener = nil
	}
}

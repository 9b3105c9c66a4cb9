package auth

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/thesrcielos/PadelTracker/internal/user"
)

type ProviderMock struct {
	mock.Mock
}

func (m *ProviderMock) SignUp(ctx context.Context, req user.SignUpRequest) (*user.SignUpResult, error) {
	args := m.Called(ctx, req)
	res, _ := args.Get(0).(*user.SignUpResult)
	return res, args.Error(1)
}

func (m *ProviderMock) SignInWithPassword(ctx context.Context, creds user.Credentials) (*user.Session, error) {
	args := m.Called(ctx, creds)
	s, _ := args.Get(0).(*user.Session)
	return s, args.Error(1)
}

func (m *ProviderMock) AuthorizeURL(ctx context.Context, provider, redirectTo string) (string, error) {
	args := m.Called(ctx, provider, redirectTo)
	return args.String(0), args.Error(1)
}

func (m *ProviderMock) Refresh(ctx context.Context, refreshToken string) (*user.Session, error) {
	args := m.Called(ctx, refreshToken)
	s, _ := args.Get(0).(*user.Session)
	return s, args.Error(1)
}

func (m *ProviderMock) Verify(ctx context.Context, accessToken string) (*user.JwtCustomClaims, error) {
	args := m.Called(ctx, accessToken)
	c, _ := args.Get(0).(*user.JwtCustomClaims)
	return c, args.Error(1)
}

func (m *ProviderMock) SignOut(ctx context.Context, accessToken, refreshToken string) error {
	args := m.Called(ctx, accessToken, refreshToken)
	return args.Error(0)
}

func (m *ProviderMock) GetUser(ctx context.Context, id string) (*user.User, error) {
	args := m.Called(ctx, id)
	u, _ := args.Get(0).(*user.User)
	return u, args.Error(1)
}

func (m *ProviderMock) Events(ctx context.Context, userID string) (<-chan user.Event, error) {
	args := m.Called(ctx, userID)
	ch, _ := args.Get(0).(chan user.Event)
	return ch, args.Error(1)
}

package service

import (
	"context"

	"safesite-backend/internal/domain"
	"safesite-backend/internal/identity"

	"github.com/stretchr/testify/mock"
)

// MockProvider
type MockProvider struct {
	mock.Mock
}

func (m *MockProvider) SignUp(ctx context.Context, email, password string, meta identity.Metadata) (*identity.SignUpResult, error) {
	args := m.Called(ctx, email, password, meta)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.SignUpResult), args.Error(1)
}

func (m *MockProvider) SignIn(ctx context.Context, email, password string) (*identity.Session, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Session), args.Error(1)
}

func (m *MockProvider) SignOut(ctx context.Context, session *identity.Session) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *MockProvider) Refresh(ctx context.Context, refreshToken string) (*identity.Session, error) {
	args := m.Called(ctx, refreshToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Session), args.Error(1)
}

// MockEmailService
type MockEmailService struct {
	mock.Mock
}

func (m *MockEmailService) SendDecisionNotification(ctx context.Context, email, name, decision, note string) error {
	args := m.Called(ctx, email, name, decision, note)
	return args.Error(0)
}

func (m *MockEmailService) SendPendingReminder(ctx context.Context, adminEmail string, requests []domain.RegistrationRequest) error {
	args := m.Called(ctx, adminEmail, requests)
	return args.Error(0)
}

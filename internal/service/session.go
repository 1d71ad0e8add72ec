package service

import (
	"context"
	"time"

	"safesite-backend/internal/domain"
	"safesite-backend/internal/identity"
	"safesite-backend/internal/roles"
)

type sessionService struct {
	provider    identity.Provider
	resolver    *roles.Resolver
	callTimeout time.Duration
}

func NewSessionService(provider identity.Provider, resolver *roles.Resolver, callTimeout time.Duration) SessionService {
	return &sessionService{
		provider:    provider,
		resolver:    resolver,
		callTimeout: callTimeout,
	}
}

func (s *sessionService) Login(ctx context.Context, email, password string) (*identity.Session, roles.Role, error) {
	email = domain.NormalizeEmail(email)

	callCtx, cancel := context.WithTimeout(ctx, s.callTimeout)
	defer cancel()
	session, err := s.provider.SignIn(callCtx, email, password)
	if err != nil {
		return nil, "", err
	}

	// Role comes from the session's email claim, falling back to the login
	// email when the provider omits it.
	roleEmail := session.Email
	if roleEmail == "" {
		roleEmail = email
	}
	return session, s.resolver.Resolve(roleEmail), nil
}

func (s *sessionService) Logout(ctx context.Context, session *identity.Session) error {
	callCtx, cancel := context.WithTimeout(ctx, s.callTimeout)
	defer cancel()
	return s.provider.SignOut(callCtx, session)
}

func (s *sessionService) Refresh(ctx context.Context, refreshToken string) (*identity.Session, error) {
	callCtx, cancel := context.WithTimeout(ctx, s.callTimeout)
	defer cancel()
	return s.provider.Refresh(callCtx, refreshToken)
}

package identity

import (
	"context"
	"sync"
	"time"

	"safesite-backend/internal/domain"
	"safesite-backend/internal/roles"
	"safesite-backend/internal/security"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// LocalProvider is an in-process identity provider for development and
// tests. Accounts live in memory; sessions are HS256 tokens from the shared
// TokenManager, so the API middleware verifies them the same way it verifies
// provider tokens.
type LocalProvider struct {
	mu       sync.Mutex
	users    map[string]*localUser
	tokens   security.TokenManager
	resolver *roles.Resolver
	hub      *Hub
}

type localUser struct {
	id           string
	email        string
	passwordHash []byte
	meta         Metadata
}

func NewLocalProvider(tokens security.TokenManager, resolver *roles.Resolver, hub *Hub) *LocalProvider {
	return &LocalProvider{
		users:    make(map[string]*localUser),
		tokens:   tokens,
		resolver: resolver,
		hub:      hub,
	}
}

var _ Provider = (*LocalProvider)(nil)

func (p *LocalProvider) SignUp(ctx context.Context, email, password string, meta Metadata) (*SignUpResult, error) {
	email = domain.NormalizeEmail(email)
	if len(password) < 6 {
		return nil, ErrWeakPassword
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if _, exists := p.users[email]; exists {
		return nil, ErrEmailInUse
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	u := &localUser{
		id:           uuid.New().String(),
		email:        email,
		passwordHash: hash,
		meta:         meta,
	}
	p.users[email] = u

	session, err := p.issueSession(u)
	if err != nil {
		return nil, err
	}
	return &SignUpResult{UserID: u.id, Session: session}, nil
}

func (p *LocalProvider) SignIn(ctx context.Context, email, password string) (*Session, error) {
	email = domain.NormalizeEmail(email)

	p.mu.Lock()
	u, exists := p.users[email]
	p.mu.Unlock()

	if !exists {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(u.passwordHash, []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	session, err := p.issueSession(u)
	if err != nil {
		return nil, err
	}
	p.hub.Publish(Event{Type: EventSignedIn, Session: session})
	return session, nil
}

func (p *LocalProvider) SignOut(ctx context.Context, session *Session) error {
	p.hub.Publish(Event{Type: EventSignedOut})
	return nil
}

func (p *LocalProvider) Refresh(ctx context.Context, refreshToken string) (*Session, error) {
	claims, err := p.tokens.ValidateToken(refreshToken)
	if err != nil {
		return nil, ErrSessionExpired
	}
	if claims.Type != security.TokenTypeRefresh {
		return nil, ErrSessionExpired
	}

	p.mu.Lock()
	u, exists := p.users[domain.NormalizeEmail(claims.Email)]
	p.mu.Unlock()
	if !exists {
		return nil, ErrSessionExpired
	}

	session, err := p.issueSession(u)
	if err != nil {
		return nil, err
	}
	p.hub.Publish(Event{Type: EventTokenRefreshed, Session: session})
	return session, nil
}

func (p *LocalProvider) issueSession(u *localUser) (*Session, error) {
	role := string(p.resolver.Resolve(u.email))
	access, err := p.tokens.GenerateAccessToken(u.id, u.email, role)
	if err != nil {
		return nil, err
	}
	refresh, err := p.tokens.GenerateRefreshToken(u.id, u.email)
	if err != nil {
		return nil, err
	}
	return &Session{
		UserID:       u.id,
		Email:        u.email,
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresAt:    time.Now().UTC().Add(1 * time.Hour),
	}, nil
}

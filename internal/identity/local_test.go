package identity

import (
	"context"
	"sync"
	"testing"
	"time"

	"safesite-backend/internal/roles"
	"safesite-backend/internal/security"

	"github.com/stretchr/testify/assert"
)

func newLocalProvider() *LocalProvider {
	tokens := security.NewTokenManager("test-secret-0123456789abcdef0123456789")
	resolver := roles.NewResolver([]string{"admin@site.com"})
	return NewLocalProvider(tokens, resolver, NewHub())
}

func TestLocalSignUp(t *testing.T) {
	p := newLocalProvider()
	ctx := context.Background()

	result, err := p.SignUp(ctx, "Worker@Site.com", "secret123", Metadata{FullName: "Jordan Reyes"})
	assert.NoError(t, err)
	assert.NotEmpty(t, result.UserID)
	assert.NotNil(t, result.Session)
	assert.Equal(t, "worker@site.com", result.Session.Email)
	assert.NotEmpty(t, result.Session.AccessToken)
	assert.NotEmpty(t, result.Session.RefreshToken)
}

func TestLocalSignUp_ShortPassword(t *testing.T) {
	p := newLocalProvider()

	result, err := p.SignUp(context.Background(), "worker@site.com", "12345", Metadata{})
	assert.ErrorIs(t, err, ErrWeakPassword)
	assert.Nil(t, result)
}

func TestLocalSignUp_DuplicateEmail(t *testing.T) {
	p := newLocalProvider()
	ctx := context.Background()

	_, err := p.SignUp(ctx, "worker@site.com", "secret123", Metadata{})
	assert.NoError(t, err)

	// Case differences do not create a second account.
	result, err := p.SignUp(ctx, "WORKER@site.com", "other-pass", Metadata{})
	assert.ErrorIs(t, err, ErrEmailInUse)
	assert.Nil(t, result)
}

func TestLocalSignIn(t *testing.T) {
	p := newLocalProvider()
	ctx := context.Background()

	_, err := p.SignUp(ctx, "worker@site.com", "secret123", Metadata{})
	assert.NoError(t, err)

	t.Run("valid credentials", func(t *testing.T) {
		session, err := p.SignIn(ctx, " Worker@Site.com ", "secret123")
		assert.NoError(t, err)
		assert.Equal(t, "worker@site.com", session.Email)
		assert.True(t, session.ExpiresAt.After(time.Now()))
	})

	t.Run("wrong password", func(t *testing.T) {
		session, err := p.SignIn(ctx, "worker@site.com", "wrong-pass")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
		assert.Nil(t, session)
	})

	t.Run("unknown email", func(t *testing.T) {
		session, err := p.SignIn(ctx, "ghost@site.com", "secret123")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
		assert.Nil(t, session)
	})
}

func TestLocalRefresh(t *testing.T) {
	p := newLocalProvider()
	ctx := context.Background()

	result, err := p.SignUp(ctx, "worker@site.com", "secret123", Metadata{})
	assert.NoError(t, err)

	t.Run("valid refresh token", func(t *testing.T) {
		session, err := p.Refresh(ctx, result.Session.RefreshToken)
		assert.NoError(t, err)
		assert.Equal(t, result.UserID, session.UserID)
	})

	t.Run("access token rejected", func(t *testing.T) {
		session, err := p.Refresh(ctx, result.Session.AccessToken)
		assert.ErrorIs(t, err, ErrSessionExpired)
		assert.Nil(t, session)
	})

	t.Run("garbage token rejected", func(t *testing.T) {
		session, err := p.Refresh(ctx, "not-a-token")
		assert.ErrorIs(t, err, ErrSessionExpired)
		assert.Nil(t, session)
	})
}

func TestLocalSignIn_PublishesEvent(t *testing.T) {
	tokens := security.NewTokenManager("test-secret-0123456789abcdef0123456789")
	resolver := roles.NewResolver(nil)
	hub := NewHub()
	p := NewLocalProvider(tokens, resolver, hub)

	var wg sync.WaitGroup
	wg.Add(1)
	var got Event
	hub.Subscribe(func(evt Event) {
		got = evt
		wg.Done()
	})

	ctx := context.Background()
	_, err := p.SignUp(ctx, "worker@site.com", "secret123", Metadata{})
	assert.NoError(t, err)
	_, err = p.SignIn(ctx, "worker@site.com", "secret123")
	assert.NoError(t, err)

	wg.Wait()
	assert.Equal(t, EventSignedIn, got.Type)
	assert.NotNil(t, got.Session)
	assert.Equal(t, "worker@site.com", got.Session.Email)
	assert.False(t, got.At.IsZero())
}

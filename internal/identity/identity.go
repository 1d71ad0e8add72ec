package identity

import (
	"context"
	"errors"
	"time"
)

// Failure taxonomy surfaced to the workflow layer. Provider implementations
// map their native error codes onto these sentinels; message-text matching is
// a fallback only. Unmapped failures pass through wrapped.
var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailNotConfirmed  = errors.New("email not confirmed")
	ErrRateLimited        = errors.New("too many attempts, try again later")
	ErrEmailInUse         = errors.New("email already registered")
	ErrWeakPassword       = errors.New("password does not meet requirements")
	ErrSessionExpired     = errors.New("session expired")
)

// Metadata is attached to the provider account at sign-up time.
type Metadata struct {
	FullName string `json:"full_name"`
	JobTitle string `json:"job_title"`
	Approved bool   `json:"is_approved"`
}

type Session struct {
	UserID       string    `json:"user_id"`
	Email        string    `json:"email"`
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// SignUpResult carries the provider-issued user id. Session is nil when the
// provider defers the first session to email confirmation.
type SignUpResult struct {
	UserID  string
	Session *Session
}

// Provider is the boundary to the external identity service. Implementations
// publish session transitions to their Hub.
type Provider interface {
	SignUp(ctx context.Context, email, password string, meta Metadata) (*SignUpResult, error)
	SignIn(ctx context.Context, email, password string) (*Session, error)
	SignOut(ctx context.Context, session *Session) error
	Refresh(ctx context.Context, refreshToken string) (*Session, error)
}

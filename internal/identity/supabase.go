package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"safesite-backend/internal/logger"
)

// SupabaseProvider talks to a Supabase/GoTrue auth endpoint over REST.
type SupabaseProvider struct {
	baseURL string
	anonKey string
	client  *http.Client
	hub     *Hub
}

func NewSupabaseProvider(baseURL, anonKey string, hub *Hub) *SupabaseProvider {
	return &SupabaseProvider{
		baseURL: strings.TrimRight(baseURL, "/"),
		anonKey: anonKey,
		client:  &http.Client{},
		hub:     hub,
	}
}

var _ Provider = (*SupabaseProvider)(nil)

type authUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// authResponse covers both shapes GoTrue returns: a full session, or a bare
// user object when email confirmation is still outstanding.
type authResponse struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresIn    int       `json:"expires_in"`
	User         *authUser `json:"user"`
	ID           string    `json:"id"`
	Email        string    `json:"email"`
}

type authError struct {
	ErrorCode        string `json:"error_code"`
	Code             string `json:"code"`
	Msg              string `json:"msg"`
	Message          string `json:"message"`
	ErrorDescription string `json:"error_description"`
}

func (e *authError) text() string {
	for _, s := range []string{e.Msg, e.Message, e.ErrorDescription} {
		if s != "" {
			return s
		}
	}
	return "authentication failed"
}

func (e *authError) code() string {
	if e.ErrorCode != "" {
		return e.ErrorCode
	}
	return e.Code
}

func (p *SupabaseProvider) SignUp(ctx context.Context, email, password string, meta Metadata) (*SignUpResult, error) {
	payload := map[string]any{
		"email":    email,
		"password": password,
		"data":     meta,
	}
	resp, err := p.post(ctx, "/auth/v1/signup", payload)
	if err != nil {
		return nil, err
	}

	result := &SignUpResult{}
	if resp.User != nil {
		result.UserID = resp.User.ID
	} else {
		result.UserID = resp.ID
	}
	if resp.AccessToken != "" {
		result.Session = p.toSession(resp)
	}
	return result, nil
}

func (p *SupabaseProvider) SignIn(ctx context.Context, email, password string) (*Session, error) {
	payload := map[string]any{
		"email":    email,
		"password": password,
	}
	resp, err := p.post(ctx, "/auth/v1/token?grant_type=password", payload)
	if err != nil {
		return nil, err
	}

	session := p.toSession(resp)
	p.hub.Publish(Event{Type: EventSignedIn, Session: session})
	return session, nil
}

func (p *SupabaseProvider) SignOut(ctx context.Context, session *Session) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/auth/v1/logout", nil)
	if err != nil {
		return err
	}
	req.Header.Set("apikey", p.anonKey)
	if session != nil {
		req.Header.Set("Authorization", "Bearer "+session.AccessToken)
	}

	httpResp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("sign-out request failed: %w", err)
	}
	defer httpResp.Body.Close()
	io.Copy(io.Discard, httpResp.Body)

	// Local session state is discarded regardless of the provider's answer.
	p.hub.Publish(Event{Type: EventSignedOut})
	return nil
}

func (p *SupabaseProvider) Refresh(ctx context.Context, refreshToken string) (*Session, error) {
	payload := map[string]any{
		"refresh_token": refreshToken,
	}
	resp, err := p.post(ctx, "/auth/v1/token?grant_type=refresh_token", payload)
	if err != nil {
		return nil, err
	}

	session := p.toSession(resp)
	p.hub.Publish(Event{Type: EventTokenRefreshed, Session: session})
	return session, nil
}

func (p *SupabaseProvider) toSession(resp *authResponse) *Session {
	s := &Session{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		ExpiresAt:    time.Now().UTC().Add(time.Duration(resp.ExpiresIn) * time.Second),
	}
	if resp.User != nil {
		s.UserID = resp.User.ID
		s.Email = resp.User.Email
	}
	return s
}

func (p *SupabaseProvider) post(ctx context.Context, path string, payload any) (*authResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", p.anonKey)

	logger.ExternalServiceCall("supabase", path)
	httpResp, err := p.client.Do(req)
	if err != nil {
		logger.ExternalServiceResult("supabase", path, err)
		return nil, fmt.Errorf("auth request failed: %w", err)
	}
	defer httpResp.Body.Close()

	data, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read auth response: %w", err)
	}

	if httpResp.StatusCode >= 400 {
		var authErr authError
		_ = json.Unmarshal(data, &authErr)
		mapped := classify(httpResp.StatusCode, authErr.code(), authErr.text())
		logger.ExternalServiceResult("supabase", path, mapped)
		return nil, mapped
	}

	var resp authResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode auth response: %w", err)
	}
	logger.ExternalServiceResult("supabase", path, nil)
	return &resp, nil
}

// classify maps a GoTrue failure to the taxonomy. Error codes are the
// primary discriminator; message text is a fallback for older deployments
// that do not send codes.
func classify(status int, code, msg string) error {
	switch code {
	case "user_already_exists", "email_exists":
		return ErrEmailInUse
	case "weak_password":
		return ErrWeakPassword
	case "invalid_credentials":
		return ErrInvalidCredentials
	case "email_not_confirmed":
		return ErrEmailNotConfirmed
	case "over_request_rate_limit", "over_email_send_rate_limit":
		return ErrRateLimited
	case "session_expired", "session_not_found", "refresh_token_not_found":
		return ErrSessionExpired
	}

	switch {
	case strings.Contains(msg, "User already registered"):
		return ErrEmailInUse
	case strings.Contains(msg, "Invalid login credentials"):
		return ErrInvalidCredentials
	case strings.Contains(msg, "Email not confirmed"):
		return ErrEmailNotConfirmed
	case strings.Contains(strings.ToLower(msg), "rate limit"):
		return ErrRateLimited
	case strings.Contains(msg, "Password"):
		return ErrWeakPassword
	}

	if status == http.StatusTooManyRequests {
		return ErrRateLimited
	}
	return fmt.Errorf("auth provider error (%d): %s", status, msg)
}

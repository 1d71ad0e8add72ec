package identity

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSupabaseSignUp(t *testing.T) {
	t.Run("full session response", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/auth/v1/signup", r.URL.Path)
			assert.Equal(t, "test-anon-key", r.Header.Get("apikey"))

			var payload map[string]any
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
			assert.Equal(t, "worker@site.com", payload["email"])
			data := payload["data"].(map[string]any)
			assert.Equal(t, "Jordan Reyes", data["full_name"])
			assert.Equal(t, true, data["is_approved"])

			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]any{
				"access_token":  "at-1",
				"refresh_token": "rt-1",
				"expires_in":    3600,
				"user":          map[string]any{"id": "u-1", "email": "worker@site.com"},
			})
		}))
		defer server.Close()

		p := NewSupabaseProvider(server.URL, "test-anon-key", NewHub())
		result, err := p.SignUp(context.Background(), "worker@site.com", "secret123",
			Metadata{FullName: "Jordan Reyes", JobTitle: "Site Supervisor", Approved: true})

		assert.NoError(t, err)
		assert.Equal(t, "u-1", result.UserID)
		assert.NotNil(t, result.Session)
		assert.Equal(t, "at-1", result.Session.AccessToken)
	})

	t.Run("bare user when confirmation outstanding", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]any{
				"id":    "u-2",
				"email": "worker@site.com",
			})
		}))
		defer server.Close()

		p := NewSupabaseProvider(server.URL, "test-anon-key", NewHub())
		result, err := p.SignUp(context.Background(), "worker@site.com", "secret123", Metadata{})

		assert.NoError(t, err)
		assert.Equal(t, "u-2", result.UserID)
		assert.Nil(t, result.Session)
	})
}

func TestSupabaseSignUp_ErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     map[string]any
		expected error
	}{
		{"email exists code", 422, map[string]any{"error_code": "user_already_exists", "msg": "User already registered"}, ErrEmailInUse},
		{"weak password code", 422, map[string]any{"error_code": "weak_password", "msg": "Password should be at least 6 characters"}, ErrWeakPassword},
		{"rate limit code", 429, map[string]any{"error_code": "over_request_rate_limit", "msg": "Request rate limit reached"}, ErrRateLimited},
		{"message fallback for email exists", 400, map[string]any{"msg": "User already registered"}, ErrEmailInUse},
		{"message fallback for password", 422, map[string]any{"msg": "Password should be at least 6 characters"}, ErrWeakPassword},
		{"status fallback for rate limit", 429, map[string]any{}, ErrRateLimited},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				json.NewEncoder(w).Encode(tt.body)
			}))
			defer server.Close()

			p := NewSupabaseProvider(server.URL, "test-anon-key", NewHub())
			result, err := p.SignUp(context.Background(), "worker@site.com", "secret123", Metadata{})

			assert.ErrorIs(t, err, tt.expected)
			assert.Nil(t, result)
		})
	}
}

func TestSupabaseSignIn(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/auth/v1/token", r.URL.Path)
			assert.Equal(t, "password", r.URL.Query().Get("grant_type"))

			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]any{
				"access_token":  "at-1",
				"refresh_token": "rt-1",
				"expires_in":    3600,
				"user":          map[string]any{"id": "u-1", "email": "worker@site.com"},
			})
		}))
		defer server.Close()

		p := NewSupabaseProvider(server.URL, "test-anon-key", NewHub())
		session, err := p.SignIn(context.Background(), "worker@site.com", "secret123")

		assert.NoError(t, err)
		assert.Equal(t, "u-1", session.UserID)
		assert.Equal(t, "worker@site.com", session.Email)
	})

	t.Run("invalid credentials", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]any{
				"error_code": "invalid_credentials",
				"msg":        "Invalid login credentials",
			})
		}))
		defer server.Close()

		p := NewSupabaseProvider(server.URL, "test-anon-key", NewHub())
		session, err := p.SignIn(context.Background(), "worker@site.com", "wrong")

		assert.ErrorIs(t, err, ErrInvalidCredentials)
		assert.Nil(t, session)
	})

	t.Run("email not confirmed", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]any{
				"error_code": "email_not_confirmed",
				"msg":        "Email not confirmed",
			})
		}))
		defer server.Close()

		p := NewSupabaseProvider(server.URL, "test-anon-key", NewHub())
		session, err := p.SignIn(context.Background(), "worker@site.com", "secret123")

		assert.ErrorIs(t, err, ErrEmailNotConfirmed)
		assert.Nil(t, session)
	})
}

func TestSupabaseRefresh(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "refresh_token", r.URL.Query().Get("grant_type"))

			var payload map[string]any
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
			assert.Equal(t, "rt-1", payload["refresh_token"])

			json.NewEncoder(w).Encode(map[string]any{
				"access_token":  "at-2",
				"refresh_token": "rt-2",
				"expires_in":    3600,
				"user":          map[string]any{"id": "u-1", "email": "worker@site.com"},
			})
		}))
		defer server.Close()

		p := NewSupabaseProvider(server.URL, "test-anon-key", NewHub())
		session, err := p.Refresh(context.Background(), "rt-1")

		assert.NoError(t, err)
		assert.Equal(t, "at-2", session.AccessToken)
		assert.Equal(t, "rt-2", session.RefreshToken)
	})

	t.Run("stale token", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]any{
				"error_code": "refresh_token_not_found",
				"msg":        "Invalid Refresh Token: Refresh Token Not Found",
			})
		}))
		defer server.Close()

		p := NewSupabaseProvider(server.URL, "test-anon-key", NewHub())
		session, err := p.Refresh(context.Background(), "stale")

		assert.ErrorIs(t, err, ErrSessionExpired)
		assert.Nil(t, session)
	})
}

func TestSupabaseSignOut_IgnoresProviderFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/v1/logout", r.URL.Path)
		assert.Equal(t, "Bearer at-1", r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	p := NewSupabaseProvider(server.URL, "test-anon-key", NewHub())
	err := p.SignOut(context.Background(), &Session{AccessToken: "at-1"})
	assert.NoError(t, err)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		code     string
		msg      string
		expected error
	}{
		{"code wins over message", 422, "weak_password", "User already registered", ErrWeakPassword},
		{"session expired code", 401, "session_expired", "", ErrSessionExpired},
		{"session not found code", 401, "session_not_found", "", ErrSessionExpired},
		{"rate limit text fallback", 400, "", "Email rate limit exceeded", ErrRateLimited},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, classify(tt.status, tt.code, tt.msg), tt.expected)
		})
	}
}

func TestClassify_UnknownFailureKeepsDetail(t *testing.T) {
	err := classify(500, "", "unexpected_failure")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "500")
	assert.Contains(t, err.Error(), "unexpected_failure")
}

package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"regexp"
	"strings"

	"safesite-backend/internal/domain"
	"safesite-backend/internal/identity"
	"safesite-backend/internal/logger"
	"safesite-backend/internal/roles"
	"safesite-backend/internal/service"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// RegistrationHandler serves the registrant-facing endpoints: submitting an
// access request, checking its status, and the session lifecycle.
type RegistrationHandler struct {
	reg      service.RegistrationService
	sessions service.SessionService
}

func NewRegistrationHandler(reg service.RegistrationService, sessions service.SessionService) *RegistrationHandler {
	return &RegistrationHandler{
		reg:      reg,
		sessions: sessions,
	}
}

type registerRequest struct {
	FullName        string `json:"full_name"`
	Email           string `json:"email"`
	JobTitle        string `json:"job_title"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

type registerResponse struct {
	Outcome service.Outcome             `json:"outcome"`
	Message string                      `json:"message"`
	Request *domain.RegistrationRequest `json:"request,omitempty"`
}

func (h *RegistrationHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "Request body must be valid JSON.")
		return
	}

	if fields := validateRegister(&req); len(fields) > 0 {
		writeFieldErrors(w, fields)
		return
	}

	result, err := h.reg.Submit(r.Context(), service.SubmitRequest{
		FullName: req.FullName,
		Email:    req.Email,
		JobTitle: req.JobTitle,
		Password: req.Password,
	})
	if err != nil {
		logger.Error("Submit failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "An unexpected error occurred. Please try again.")
		return
	}

	writeJSON(w, outcomeStatus(result.Outcome), registerResponse{
		Outcome: result.Outcome,
		Message: result.Message,
		Request: result.Request,
	})
}

// outcomeStatus maps workflow signals onto HTTP statuses. The mapping lives
// here, at the presentation boundary; the coordinator knows nothing of HTTP.
func outcomeStatus(outcome service.Outcome) int {
	switch outcome {
	case service.OutcomeAcceptedImmediate:
		return http.StatusCreated
	case service.OutcomeAcceptedPending:
		return http.StatusAccepted
	case service.OutcomeRejectedAlreadyPending, service.OutcomeRejectedAlreadyDenied, service.OutcomeRejectedEmailInUse:
		return http.StatusConflict
	case service.OutcomeRejectedWeakCredential:
		return http.StatusBadRequest
	default:
		return http.StatusBadGateway
	}
}

func validateRegister(req *registerRequest) map[string]string {
	fields := make(map[string]string)

	name := strings.TrimSpace(req.FullName)
	if name == "" {
		fields["full_name"] = "Full name is required"
	} else if len(name) < 2 {
		fields["full_name"] = "Name must be at least 2 characters"
	}

	email := strings.TrimSpace(req.Email)
	if email == "" {
		fields["email"] = "Email is required"
	} else if !emailPattern.MatchString(email) {
		fields["email"] = "Please enter a valid email"
	}

	if strings.TrimSpace(req.JobTitle) == "" {
		fields["job_title"] = "Job title is required"
	}

	if strings.TrimSpace(req.Password) == "" {
		fields["password"] = "Password is required"
	} else if len(req.Password) < 6 {
		fields["password"] = "Password must be at least 6 characters"
	}

	if strings.TrimSpace(req.ConfirmPassword) == "" {
		fields["confirm_password"] = "Please confirm your password"
	} else if req.Password != req.ConfirmPassword {
		fields["confirm_password"] = "Passwords do not match"
	}

	return fields
}

func (h *RegistrationHandler) Status(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if email == "" || !emailPattern.MatchString(strings.TrimSpace(email)) {
		writeError(w, http.StatusBadRequest, "invalid_email", "A valid email query parameter is required.")
		return
	}

	status, err := h.reg.Status(r.Context(), email)
	if err != nil {
		logger.Error("Status lookup failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "An unexpected error occurred. Please try again.")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"email":  domain.NormalizeEmail(email),
		"status": status,
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	UserID       string `json:"user_id"`
	Email        string `json:"email"`
	Role         string `json:"role"`
	RoleName     string `json:"role_name"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresAt    int64  `json:"expires_at"`
}

func (h *RegistrationHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "Request body must be valid JSON.")
		return
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "missing_credentials", "Email and password are required.")
		return
	}

	session, role, err := h.sessions.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeAuthError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{
		UserID:       session.UserID,
		Email:        session.Email,
		Role:         string(role),
		RoleName:     roles.DisplayName(role),
		AccessToken:  session.AccessToken,
		RefreshToken: session.RefreshToken,
		ExpiresAt:    session.ExpiresAt.Unix(),
	})
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

func (h *RegistrationHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RefreshToken == "" {
		writeError(w, http.StatusBadRequest, "invalid_body", "A refresh_token is required.")
		return
	}

	session, err := h.sessions.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		writeAuthError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, session)
}

func (h *RegistrationHandler) Logout(w http.ResponseWriter, r *http.Request) {
	token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	if err := h.sessions.Logout(r.Context(), &identity.Session{AccessToken: token}); err != nil {
		logger.Warn("Logout failed", "error", err)
	}
	// Sign-out always succeeds from the client's perspective.
	writeJSON(w, http.StatusOK, map[string]string{"status": "signed_out"})
}

// writeAuthError maps the identity failure taxonomy onto HTTP responses.
func writeAuthError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, identity.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "invalid_credentials", "Invalid email or password.")
	case errors.Is(err, identity.ErrEmailNotConfirmed):
		writeError(w, http.StatusForbidden, "email_not_confirmed", "Please verify your email before logging in.")
	case errors.Is(err, identity.ErrRateLimited):
		writeError(w, http.StatusTooManyRequests, "rate_limited", "Too many attempts. Please try again later.")
	case errors.Is(err, identity.ErrSessionExpired):
		writeError(w, http.StatusUnauthorized, "session_expired", "Your session has expired. Please sign in again.")
	default:
		logger.Error("Auth provider call failed", "error", err)
		writeError(w, http.StatusBadGateway, "provider_error", "An unexpected error occurred. Please try again.")
	}
}

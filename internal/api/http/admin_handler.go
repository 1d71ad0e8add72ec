package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"safesite-backend/internal/domain"
	"safesite-backend/internal/logger"
	"safesite-backend/internal/service"
)

// AdminHandler serves the administrator review endpoints.
type AdminHandler struct {
	svc service.AdminService
}

func NewAdminHandler(svc service.AdminService) *AdminHandler {
	return &AdminHandler{svc: svc}
}

func (h *AdminHandler) ListRequests(w http.ResponseWriter, r *http.Request) {
	pending, err := h.svc.ListPending(r.Context())
	if err != nil {
		logger.Error("Failed to list pending requests", "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "An unexpected error occurred. Please try again.")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"pending": pending,
		"count":   len(pending),
	})
}

func (h *AdminHandler) ListApproved(w http.ResponseWriter, r *http.Request) {
	approved, err := h.svc.ListApproved(r.Context())
	if err != nil {
		logger.Error("Failed to list approved emails", "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "An unexpected error occurred. Please try again.")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"approved": approved,
		"count":    len(approved),
	})
}

func (h *AdminHandler) ListDenied(w http.ResponseWriter, r *http.Request) {
	denied, err := h.svc.ListDenied(r.Context())
	if err != nil {
		logger.Error("Failed to list denied requests", "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "An unexpected error occurred. Please try again.")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"denied": denied,
		"count":  len(denied),
	})
}

type decisionRequest struct {
	Email string `json:"email"`
}

func (h *AdminHandler) Approve(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, h.svc.Approve, "approved")
}

func (h *AdminHandler) Deny(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, h.svc.Deny, "denied")
}

func (h *AdminHandler) decide(w http.ResponseWriter, r *http.Request, action func(ctx context.Context, email string) error, verb string) {
	var req decisionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "Request body must be valid JSON.")
		return
	}
	if strings.TrimSpace(req.Email) == "" {
		writeError(w, http.StatusBadRequest, "missing_email", "An email is required.")
		return
	}

	if err := action(r.Context(), req.Email); err != nil {
		logger.Error("Admin decision failed", "decision", verb, "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "An unexpected error occurred. Please try again.")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status": verb,
		"email":  domain.NormalizeEmail(req.Email),
	})
}

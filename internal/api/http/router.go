package http

import (
	"net/http"

	"github.com/gorilla/mux"
)

// NewRouter wires the API routes. Admin routes sit behind token
// authentication plus the administrator gate; the session endpoints are open
// except logout, which needs the session token it is revoking.
func NewRouter(reg *RegistrationHandler, admin *AdminHandler, authMW *AuthMiddleware) *mux.Router {
	r := mux.NewRouter()
	api := r.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/auth/register", reg.Register).Methods(http.MethodPost)
	api.HandleFunc("/auth/register/status", reg.Status).Methods(http.MethodGet)
	api.HandleFunc("/auth/login", reg.Login).Methods(http.MethodPost)
	api.HandleFunc("/auth/refresh", reg.Refresh).Methods(http.MethodPost)
	api.Handle("/auth/logout", authMW.Authenticate(http.HandlerFunc(reg.Logout))).Methods(http.MethodPost)

	adminRoutes := api.PathPrefix("/admin").Subrouter()
	adminRoutes.Use(authMW.Authenticate, authMW.RequireAdmin)
	adminRoutes.HandleFunc("/requests", admin.ListRequests).Methods(http.MethodGet)
	adminRoutes.HandleFunc("/requests/approve", admin.Approve).Methods(http.MethodPost)
	adminRoutes.HandleFunc("/requests/deny", admin.Deny).Methods(http.MethodPost)
	adminRoutes.HandleFunc("/approved", admin.ListApproved).Methods(http.MethodGet)
	adminRoutes.HandleFunc("/denied", admin.ListDenied).Methods(http.MethodGet)

	return r
}

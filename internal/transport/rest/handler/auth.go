package handler

import (
	"bigbrain/internal/model"
	"bigbrain/internal/service"
	"bigbrain/internal/transport/rest/middleware"
	"net/http"
)

// AuthHandler handles admin authentication endpoints
type AuthHandler struct {
	authSvc *service.AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authSvc *service.AuthService) *AuthHandler {
	return &AuthHandler{authSvc: authSvc}
}

// Register handles POST /admin/auth/register
//
//	@Summary	Register an admin
//	@Tags		admin auth
//	@Accept		json
//	@Produce	json
//	@Param		body	body		model.RegisterRequest	true	"credentials"
//	@Success	200		{object}	model.TokenResponse
//	@Failure	400		{object}	ErrorResponse
//	@Router		/admin/auth/register [post]
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req model.RegisterRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	token, err := h.authSvc.Register(r.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, model.TokenResponse{Token: token})
}

// Login handles POST /admin/auth/login
//
//	@Summary	Log an admin in
//	@Tags		admin auth
//	@Accept		json
//	@Produce	json
//	@Param		body	body		model.LoginRequest	true	"credentials"
//	@Success	200		{object}	model.TokenResponse
//	@Failure	400		{object}	ErrorResponse
//	@Router		/admin/auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	token, err := h.authSvc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, model.TokenResponse{Token: token})
}

// Logout handles POST /admin/auth/logout
//
//	@Summary	Log an admin out
//	@Tags		admin auth
//	@Security	BearerAuth
//	@Success	200	{object}	object
//	@Failure	403	{object}	ErrorResponse
//	@Router		/admin/auth/logout [post]
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.authSvc.Logout(r.Context(), middleware.GetAdminEmail(r.Context())); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, struct{}{})
}

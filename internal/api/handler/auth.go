package handler

import (
	"net/http"

	"github.com/Rrens/slidecraft/internal/api/middleware"
	"github.com/Rrens/slidecraft/internal/api/response"
	"github.com/Rrens/slidecraft/internal/domain"
	"github.com/Rrens/slidecraft/internal/service"
)

// AuthHandler serves account registration and token exchange
type AuthHandler struct {
	auth  *service.AuthService
	quota *service.QuotaService
}

func NewAuthHandler(auth *service.AuthService, quota *service.QuotaService) *AuthHandler {
	return &AuthHandler{auth: auth, quota: quota}
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// Register creates an account. Tokens are issued by a separate login.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var input domain.UserCreate
	if !bind(w, r, &input) {
		return
	}

	user, err := h.auth.Register(r.Context(), input)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Created(w, user)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var input domain.UserLogin
	if !bind(w, r, &input) {
		return
	}

	tokens, err := h.auth.Login(r.Context(), input)
	if err != nil {
		writeError(w, err)
		return
	}

	response.OK(w, tokens)
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var input refreshRequest
	if !bind(w, r, &input) {
		return
	}

	tokens, err := h.auth.Refresh(r.Context(), input.RefreshToken)
	if err != nil {
		writeError(w, err)
		return
	}

	response.OK(w, tokens)
}

// Me returns the signed-in account together with its ledger
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	user, err := h.auth.Account(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	status, err := h.quota.Status(r.Context(), domain.UserOwner(user.ID.String()))
	if err != nil {
		writeError(w, err)
		return
	}

	response.OK(w, struct {
		*domain.User
		Quota *domain.QuotaStatus `json:"quota"`
	}{user, status})
}

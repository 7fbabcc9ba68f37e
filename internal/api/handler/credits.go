package handler

import (
	"net/http"

	"github.com/Rrens/slidecraft/internal/api/response"
	"github.com/Rrens/slidecraft/internal/service"
)

// CreditsHandler exposes the quota ledger
type CreditsHandler struct {
	quotaService *service.QuotaService
}

// NewCreditsHandler creates a new credits handler
func NewCreditsHandler(quotaService *service.QuotaService) *CreditsHandler {
	return &CreditsHandler{quotaService: quotaService}
}

// Get returns the caller's quota status and the purchasable packages
func (h *CreditsHandler) Get(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerFrom(w, r)
	if !ok {
		return
	}

	status, err := h.quotaService.Status(r.Context(), owner)
	if err != nil {
		writeError(w, err)
		return
	}

	response.OK(w, map[string]any{
		"quota":    status,
		"packages": h.quotaService.Packages(),
	})
}

// Purchase credits one of the offered packages
func (h *CreditsHandler) Purchase(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerFrom(w, r)
	if !ok {
		return
	}

	var input struct {
		Credits int `json:"credits" validate:"required,gt=0"`
	}
	if !bind(w, r, &input) {
		return
	}

	status, err := h.quotaService.Purchase(r.Context(), owner, input.Credits)
	if err != nil {
		writeError(w, err)
		return
	}

	response.OK(w, status)
}

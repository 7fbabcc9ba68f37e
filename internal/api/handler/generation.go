package handler

import (
	"encoding/json"
	"net/http"

	"github.com/Rrens/slidecraft/internal/api/middleware"
	"github.com/Rrens/slidecraft/internal/api/response"
	"github.com/Rrens/slidecraft/internal/domain"
	"github.com/Rrens/slidecraft/internal/service"
)

// GenerationHandler runs the create and improve workflows
type GenerationHandler struct {
	generationService *service.GenerationService
}

// NewGenerationHandler creates a new generation handler
func NewGenerationHandler(generationService *service.GenerationService) *GenerationHandler {
	return &GenerationHandler{generationService: generationService}
}

// Generate creates a deck from a topic
func (h *GenerationHandler) Generate(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerFrom(w, r)
	if !ok {
		return
	}

	var req domain.GenerationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	result, err := h.generationService.Create(r.Context(), owner, req)
	if err != nil {
		writeError(w, err)
		return
	}

	response.OK(w, result)
}

// Improve reworks a pasted or uploaded draft
func (h *GenerationHandler) Improve(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerFrom(w, r)
	if !ok {
		return
	}

	var req domain.GenerationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	result, err := h.generationService.Improve(r.Context(), owner, req)
	if err != nil {
		writeError(w, err)
		return
	}

	response.OK(w, result)
}

// Export renders an unsaved deck as a text download
func (h *GenerationHandler) Export(w http.ResponseWriter, r *http.Request) {
	var deck domain.Deck
	if !bind(w, r, &deck) {
		return
	}

	filename, text := service.ExportDeck(&deck)
	response.Attachment(w, filename, text)
}

func ownerFrom(w http.ResponseWriter, r *http.Request) (domain.Owner, bool) {
	owner, ok := middleware.GetOwner(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
	}
	return owner, ok
}

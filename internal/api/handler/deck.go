package handler

import (
	"encoding/json"
	"net/http"

	"github.com/Rrens/slidecraft/internal/api/response"
	"github.com/Rrens/slidecraft/internal/domain"
	"github.com/Rrens/slidecraft/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// DeckHandler handles saved deck endpoints
type DeckHandler struct {
	deckService *service.DeckService
}

// NewDeckHandler creates a new deck handler
func NewDeckHandler(deckService *service.DeckService) *DeckHandler {
	return &DeckHandler{deckService: deckService}
}

// List returns the caller's decks, optionally filtered by ?q= and ?folder_id=
func (h *DeckHandler) List(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerFrom(w, r)
	if !ok {
		return
	}

	filter := domain.DeckFilter{Query: r.URL.Query().Get("q")}
	if raw := r.URL.Query().Get("folder_id"); raw != "" {
		folderID, err := uuid.Parse(raw)
		if err != nil {
			response.BadRequest(w, "invalid folder ID")
			return
		}
		filter.FolderID = &folderID
	}

	decks, err := h.deckService.List(r.Context(), owner, filter)
	if err != nil {
		writeError(w, err)
		return
	}

	response.OK(w, decks)
}

// Save stores a generated deck
func (h *DeckHandler) Save(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerFrom(w, r)
	if !ok {
		return
	}

	var deck domain.Deck
	if err := json.NewDecoder(r.Body).Decode(&deck); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	saved, err := h.deckService.Save(r.Context(), owner, &deck)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Created(w, saved)
}

// Get returns a saved deck
func (h *DeckHandler) Get(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerFrom(w, r)
	if !ok {
		return
	}

	deck, err := h.deckService.Get(r.Context(), owner, chi.URLParam(r, "deckID"))
	if err != nil {
		writeError(w, err)
		return
	}

	response.OK(w, deck)
}

// Delete removes a saved deck
func (h *DeckHandler) Delete(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerFrom(w, r)
	if !ok {
		return
	}

	if err := h.deckService.Delete(r.Context(), owner, chi.URLParam(r, "deckID")); err != nil {
		writeError(w, err)
		return
	}

	response.NoContent(w)
}

// Export downloads a saved deck as text
func (h *DeckHandler) Export(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerFrom(w, r)
	if !ok {
		return
	}

	filename, text, err := h.deckService.Export(r.Context(), owner, chi.URLParam(r, "deckID"))
	if err != nil {
		writeError(w, err)
		return
	}

	response.Attachment(w, filename, text)
}

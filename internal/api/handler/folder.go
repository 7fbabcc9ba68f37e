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

// FolderHandler handles folder endpoints
type FolderHandler struct {
	folderService *service.FolderService
}

// NewFolderHandler creates a new folder handler
func NewFolderHandler(folderService *service.FolderService) *FolderHandler {
	return &FolderHandler{folderService: folderService}
}

func (h *FolderHandler) List(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerFrom(w, r)
	if !ok {
		return
	}

	folders, err := h.folderService.List(r.Context(), owner)
	if err != nil {
		writeError(w, err)
		return
	}

	response.OK(w, folders)
}

func (h *FolderHandler) Create(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerFrom(w, r)
	if !ok {
		return
	}

	var input domain.FolderCreate
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	folder, err := h.folderService.Create(r.Context(), owner, input)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Created(w, folder)
}

func (h *FolderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerFrom(w, r)
	if !ok {
		return
	}

	folderID, err := uuid.Parse(chi.URLParam(r, "folderID"))
	if err != nil {
		response.BadRequest(w, "invalid folder ID")
		return
	}

	if err := h.folderService.Delete(r.Context(), owner, folderID); err != nil {
		writeError(w, err)
		return
	}

	response.NoContent(w)
}

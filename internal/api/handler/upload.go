package handler

import (
	"io"
	"net/http"

	"github.com/Rrens/slidecraft/internal/api/response"
	"github.com/Rrens/slidecraft/internal/service"
)

// UploadHandler handles draft upload endpoints
type UploadHandler struct {
	uploadService *service.UploadService
	maxBytes      int64
}

// NewUploadHandler creates a new upload handler
func NewUploadHandler(uploadService *service.UploadService, maxBytes int64) *UploadHandler {
	return &UploadHandler{uploadService: uploadService, maxBytes: maxBytes}
}

// Upload accepts a multipart "file" field holding a .txt or .md draft
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerFrom(w, r)
	if !ok {
		return
	}

	// Leave room for multipart framing; the service enforces the exact limit
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes+1<<20)
	if err := r.ParseMultipartForm(h.maxBytes + 1<<20); err != nil {
		response.BadRequest(w, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		response.BadRequest(w, "no file uploaded")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		response.BadRequest(w, "failed to read file")
		return
	}

	result, err := h.uploadService.Ingest(r.Context(), owner, header.Filename, data)
	if err != nil {
		writeError(w, err)
		return
	}

	response.OK(w, result)
}

package service

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/Rrens/slidecraft/internal/domain"
	"github.com/Rrens/slidecraft/internal/storage"
	"github.com/rs/zerolog/log"
)

var draftContentTypes = map[string]string{
	".txt": "text/plain; charset=utf-8",
	".md":  "text/markdown; charset=utf-8",
}

// UploadResult is a stored draft and the text extracted from it
type UploadResult struct {
	FileURL  string `json:"file_url"`
	FileName string `json:"file_name"`
	Content  string `json:"content"`
}

// UploadService stores presentation drafts and extracts their text for
// the improve workflow
type UploadService struct {
	uploader storage.Uploader
	maxBytes int64
}

// NewUploadService creates a new upload service
func NewUploadService(uploader storage.Uploader, maxBytes int64) *UploadService {
	return &UploadService{uploader: uploader, maxBytes: maxBytes}
}

// Ingest uploads a .txt or .md draft and returns its URL and text
func (s *UploadService) Ingest(ctx context.Context, owner domain.Owner, name string, data []byte) (*UploadResult, error) {
	ext := strings.ToLower(filepath.Ext(name))
	contentType, ok := draftContentTypes[ext]
	if !ok {
		return nil, fmt.Errorf("%w: unsupported file type %q, use .txt or .md", domain.ErrUploadFailure, ext)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: file is empty", domain.ErrUploadFailure)
	}
	if s.maxBytes > 0 && int64(len(data)) > s.maxBytes {
		return nil, fmt.Errorf("%w: file exceeds %d bytes", domain.ErrUploadFailure, s.maxBytes)
	}
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("%w: file is not valid UTF-8 text", domain.ErrUploadFailure)
	}

	url, err := s.uploader.Upload(ctx, name, data, contentType)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrUploadFailure, err)
	}

	log.Info().
		Str("owner", owner.ID).
		Str("file", name).
		Int("bytes", len(data)).
		Msg("Draft uploaded")

	return &UploadResult{
		FileURL:  url,
		FileName: filepath.Base(name),
		Content:  strings.TrimPrefix(string(data), "\ufeff"),
	}, nil
}

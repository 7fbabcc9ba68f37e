package service

import (
	"context"
	"errors"
	"testing"

	"github.com/Rrens/slidecraft/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestUploadService_Ingest(t *testing.T) {
	ctx := context.Background()

	t.Run("stores a markdown draft", func(t *testing.T) {
		uploader := new(MockUploader)
		svc := NewUploadService(uploader, 1024)

		data := []byte("# Q3\n- revenue up")
		uploader.On("Upload", ctx, "notes/draft.md", data, "text/markdown; charset=utf-8").
			Return("/uploads/abc.md", nil)

		res, err := svc.Ingest(ctx, testOwner, "notes/draft.md", data)
		require.NoError(t, err)
		assert.Equal(t, "/uploads/abc.md", res.FileURL)
		assert.Equal(t, "draft.md", res.FileName)
		assert.Equal(t, string(data), res.Content)
	})

	cases := []struct {
		name string
		file string
		data []byte
	}{
		{"unsupported extension", "deck.pptx", []byte("PK")},
		{"empty file", "draft.txt", nil},
		{"too large", "draft.txt", make([]byte, 2048)},
		{"binary content", "draft.txt", []byte{0xff, 0xfe, 0xfd}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			uploader := new(MockUploader)
			svc := NewUploadService(uploader, 1024)

			_, err := svc.Ingest(ctx, testOwner, tc.file, tc.data)
			assert.ErrorIs(t, err, domain.ErrUploadFailure)
			uploader.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}

	t.Run("storage error", func(t *testing.T) {
		uploader := new(MockUploader)
		svc := NewUploadService(uploader, 0)

		uploader.On("Upload", ctx, "draft.txt", mock.Anything, mock.Anything).Return("", errors.New("access denied"))

		_, err := svc.Ingest(ctx, testOwner, "draft.txt", []byte("hello"))
		assert.ErrorIs(t, err, domain.ErrUploadFailure)
	})
}

package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Folder groups saved decks of a user
type Folder struct {
	ID        uuid.UUID `json:"id"`
	OwnerID   string    `json:"owner_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// FolderCreate represents folder creation data
type FolderCreate struct {
	Name string `json:"name" validate:"required,max=255"`
}

// FolderRepository defines the interface for folder storage
type FolderRepository interface {
	Create(ctx context.Context, folder *Folder) error
	ListByOwner(ctx context.Context, ownerID string) ([]Folder, error)
	Delete(ctx context.Context, id uuid.UUID, ownerID string) error
}

package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Rrens/slidecraft/internal/domain"
	"github.com/google/uuid"
)

// FolderService manages deck folders of registered users
type FolderService struct {
	folderRepo domain.FolderRepository
}

// NewFolderService creates a new folder service
func NewFolderService(folderRepo domain.FolderRepository) *FolderService {
	return &FolderService{folderRepo: folderRepo}
}

func (s *FolderService) Create(ctx context.Context, owner domain.Owner, input domain.FolderCreate) (*domain.Folder, error) {
	if err := s.requireAccount(owner); err != nil {
		return nil, err
	}

	input.Name = strings.TrimSpace(input.Name)
	if err := validate.Struct(input); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidRequest, err)
	}

	folder := &domain.Folder{
		ID:        uuid.New(),
		OwnerID:   owner.ID,
		Name:      input.Name,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.folderRepo.Create(ctx, folder); err != nil {
		return nil, persistence(err)
	}
	return folder, nil
}

func (s *FolderService) List(ctx context.Context, owner domain.Owner) ([]domain.Folder, error) {
	if owner.Anonymous || s.folderRepo == nil {
		return []domain.Folder{}, nil
	}

	folders, err := s.folderRepo.ListByOwner(ctx, owner.ID)
	if err != nil {
		return nil, persistence(err)
	}
	return folders, nil
}

func (s *FolderService) Delete(ctx context.Context, owner domain.Owner, id uuid.UUID) error {
	if err := s.requireAccount(owner); err != nil {
		return err
	}
	if err := s.folderRepo.Delete(ctx, id, owner.ID); err != nil {
		return persistence(err)
	}
	return nil
}

func (s *FolderService) requireAccount(owner domain.Owner) error {
	if owner.Anonymous || s.folderRepo == nil {
		return fmt.Errorf("%w: folders require an account", domain.ErrInvalidRequest)
	}
	return nil
}

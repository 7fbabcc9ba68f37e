package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Rrens/slidecraft/internal/domain"
	"github.com/Rrens/slidecraft/internal/export"
	"github.com/google/uuid"
)

// DeckService persists, lists and exports decks through the store that
// belongs to the owner
type DeckService struct {
	stores     Stores
	folderRepo domain.FolderRepository
}

// NewDeckService creates a new deck service. folderRepo may be nil when
// folders are not available.
func NewDeckService(stores Stores, folderRepo domain.FolderRepository) *DeckService {
	return &DeckService{stores: stores, folderRepo: folderRepo}
}

// Save stores a copy of the deck, optionally inside a folder
func (s *DeckService) Save(ctx context.Context, owner domain.Owner, deck *domain.Deck) (*domain.Deck, error) {
	if err := validate.Struct(deck); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidRequest, err)
	}
	if deck.Mode != domain.ModeCreate && deck.Mode != domain.ModeImprove {
		return nil, fmt.Errorf("%w: unknown deck type %q", domain.ErrInvalidRequest, deck.Mode)
	}

	if deck.FolderID != nil {
		if err := s.checkFolder(ctx, owner, *deck.FolderID); err != nil {
			return nil, err
		}
	}

	saved, err := s.stores.Decks(owner).Save(ctx, deck, owner.ID)
	if err != nil {
		return nil, persistence(err)
	}
	return saved, nil
}

// List returns the owner's decks in save order, narrowed by the filter
func (s *DeckService) List(ctx context.Context, owner domain.Owner, filter domain.DeckFilter) ([]domain.DeckSummary, error) {
	decks, err := s.stores.Decks(owner).List(ctx, owner.ID)
	if err != nil {
		return nil, persistence(err)
	}

	query := strings.ToLower(strings.TrimSpace(filter.Query))
	if query == "" && filter.FolderID == nil {
		return decks, nil
	}

	out := make([]domain.DeckSummary, 0, len(decks))
	for _, d := range decks {
		if query != "" && !strings.Contains(strings.ToLower(d.Title), query) {
			continue
		}
		if filter.FolderID != nil && (d.FolderID == nil || *d.FolderID != *filter.FolderID) {
			continue
		}
		out = append(out, d)
	}
	return out, nil
}

// Get returns one saved deck
func (s *DeckService) Get(ctx context.Context, owner domain.Owner, id string) (*domain.Deck, error) {
	deck, err := s.stores.Decks(owner).Get(ctx, id, owner.ID)
	if err != nil {
		return nil, persistence(err)
	}
	return deck, nil
}

// Delete removes a saved deck; unknown ids are ignored
func (s *DeckService) Delete(ctx context.Context, owner domain.Owner, id string) error {
	if err := s.stores.Decks(owner).Delete(ctx, id, owner.ID); err != nil {
		return persistence(err)
	}
	return nil
}

// Export renders a saved deck as a text document
func (s *DeckService) Export(ctx context.Context, owner domain.Owner, id string) (filename, text string, err error) {
	deck, err := s.Get(ctx, owner, id)
	if err != nil {
		return "", "", err
	}
	filename, text = ExportDeck(deck)
	return filename, text, nil
}

// ExportDeck renders a deck that may not have been saved
func ExportDeck(deck *domain.Deck) (filename, text string) {
	return export.Filename(deck.Title), export.Format(deck)
}

func (s *DeckService) checkFolder(ctx context.Context, owner domain.Owner, folderID uuid.UUID) error {
	if owner.Anonymous || s.folderRepo == nil {
		return fmt.Errorf("%w: folders require an account", domain.ErrInvalidRequest)
	}

	folders, err := s.folderRepo.ListByOwner(ctx, owner.ID)
	if err != nil {
		return persistence(err)
	}
	for _, f := range folders {
		if f.ID == folderID {
			return nil
		}
	}
	return fmt.Errorf("folder %s: %w", folderID, domain.ErrNotFound)
}

// persistence tags backend errors, leaving not-found untouched
func persistence(err error) error {
	if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrPersistenceFailure) {
		return err
	}
	return fmt.Errorf("%w: %w", domain.ErrPersistenceFailure, err)
}

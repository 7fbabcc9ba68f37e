package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Rrens/slidecraft/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// DeckRepository implements domain.DeckStore for registered users
type DeckRepository struct {
	db *DB
}

// NewDeckRepository creates a new deck repository
func NewDeckRepository(db *DB) *DeckRepository {
	return &DeckRepository{db: db}
}

// Save stores a copy of the deck under a fresh ID
func (r *DeckRepository) Save(ctx context.Context, deck *domain.Deck, ownerID string) (*domain.Deck, error) {
	stored := deck.Stamped(ownerID, time.Now().UTC())

	slides, err := json.Marshal(stored.Slides)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal slides: %w", err)
	}

	query := `
		INSERT INTO decks (id, owner_id, type, title, topic, tone, slide_count, slides, overall_suggestions, folder_id, saved_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err = r.db.Pool.Exec(ctx, query,
		stored.ID,
		stored.OwnerID,
		stored.Mode,
		stored.Title,
		stored.Topic,
		stored.Tone,
		stored.SlideCount,
		slides,
		stored.OverallSuggestions,
		stored.FolderID,
		stored.SavedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to save deck: %w", err)
	}

	return stored, nil
}

// List returns the owner's decks in the order they were saved
func (r *DeckRepository) List(ctx context.Context, ownerID string) ([]domain.DeckSummary, error) {
	query := `
		SELECT id, type, title, tone, slide_count, folder_id, saved_at
		FROM decks
		WHERE owner_id = $1
		ORDER BY seq ASC
	`

	rows, err := r.db.Pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list decks: %w", err)
	}
	defer rows.Close()

	decks := []domain.DeckSummary{}
	for rows.Next() {
		var (
			s        domain.DeckSummary
			id       uuid.UUID
			folderID *uuid.UUID
			savedAt  time.Time
		)
		if err := rows.Scan(&id, &s.Mode, &s.Title, &s.Tone, &s.SlideCount, &folderID, &savedAt); err != nil {
			return nil, fmt.Errorf("failed to scan deck: %w", err)
		}
		s.ID = id.String()
		s.FolderID = folderID
		s.SavedAt = &savedAt
		decks = append(decks, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate decks: %w", err)
	}

	return decks, nil
}

// Get retrieves one deck of the owner
func (r *DeckRepository) Get(ctx context.Context, id, ownerID string) (*domain.Deck, error) {
	deckID, err := uuid.Parse(id)
	if err != nil {
		return nil, domain.ErrNotFound
	}

	query := `
		SELECT id, owner_id, type, title, topic, tone, slide_count, slides, overall_suggestions, folder_id, saved_at
		FROM decks
		WHERE id = $1 AND owner_id = $2
	`

	var (
		deck       domain.Deck
		storedID   uuid.UUID
		slidesJSON []byte
		savedAt    time.Time
	)
	err = r.db.Pool.QueryRow(ctx, query, deckID, ownerID).Scan(
		&storedID,
		&deck.OwnerID,
		&deck.Mode,
		&deck.Title,
		&deck.Topic,
		&deck.Tone,
		&deck.SlideCount,
		&slidesJSON,
		&deck.OverallSuggestions,
		&deck.FolderID,
		&savedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get deck: %w", err)
	}

	if err := json.Unmarshal(slidesJSON, &deck.Slides); err != nil {
		return nil, fmt.Errorf("failed to unmarshal slides: %w", err)
	}
	deck.ID = storedID.String()
	deck.SavedAt = &savedAt

	return &deck, nil
}

// Delete removes a deck; deleting a missing deck is not an error
func (r *DeckRepository) Delete(ctx context.Context, id, ownerID string) error {
	deckID, err := uuid.Parse(id)
	if err != nil {
		return nil
	}

	query := `DELETE FROM decks WHERE id = $1 AND owner_id = $2`
	if _, err := r.db.Pool.Exec(ctx, query, deckID, ownerID); err != nil {
		return fmt.Errorf("failed to delete deck: %w", err)
	}

	return nil
}

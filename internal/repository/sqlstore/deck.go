package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Rrens/slidecraft/internal/domain"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type deckRow struct {
	Seq                int64          `db:"seq"`
	ID                 string         `db:"id"`
	OwnerID            string         `db:"owner_id"`
	Type               string         `db:"type"`
	Title              string         `db:"title"`
	Topic              string         `db:"topic"`
	Tone               string         `db:"tone"`
	SlideCount         int            `db:"slide_count"`
	Slides             string         `db:"slides"`
	OverallSuggestions string         `db:"overall_suggestions"`
	FolderID           sql.NullString `db:"folder_id"`
	SavedAt            int64          `db:"saved_at"`
}

func (r deckRow) summary() domain.DeckSummary {
	savedAt := time.UnixMilli(r.SavedAt).UTC()
	s := domain.DeckSummary{
		ID:         r.ID,
		Mode:       domain.Mode(r.Type),
		Title:      r.Title,
		Tone:       domain.Tone(r.Tone),
		SlideCount: r.SlideCount,
		SavedAt:    &savedAt,
	}
	if r.FolderID.Valid {
		if id, err := uuid.Parse(r.FolderID.String); err == nil {
			s.FolderID = &id
		}
	}
	return s
}

// DeckStore implements domain.DeckStore with sqlx
type DeckStore struct {
	db *sqlx.DB
}

// NewDeckStore creates a deck store on an open database
func NewDeckStore(db *sqlx.DB) *DeckStore {
	return &DeckStore{db: db}
}

// Save stores a copy of the deck under a fresh ID
func (s *DeckStore) Save(ctx context.Context, deck *domain.Deck, ownerID string) (*domain.Deck, error) {
	stored := deck.Stamped(ownerID, time.Now().UTC().Truncate(time.Millisecond))

	slides, err := json.Marshal(stored.Slides)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal slides: %w", err)
	}

	var folderID sql.NullString
	if stored.FolderID != nil {
		folderID = sql.NullString{String: stored.FolderID.String(), Valid: true}
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO decks (id, owner_id, type, title, topic, tone, slide_count, slides, overall_suggestions, folder_id, saved_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		stored.ID,
		stored.OwnerID,
		string(stored.Mode),
		stored.Title,
		stored.Topic,
		string(stored.Tone),
		stored.SlideCount,
		string(slides),
		stored.OverallSuggestions,
		folderID,
		stored.SavedAt.UnixMilli(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to save deck: %w", err)
	}

	return stored, nil
}

// List returns summaries in insertion order
func (s *DeckStore) List(ctx context.Context, ownerID string) ([]domain.DeckSummary, error) {
	var rows []deckRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT seq, id, owner_id, type, title, topic, tone, slide_count, '' AS slides, overall_suggestions, folder_id, saved_at
		FROM decks
		WHERE owner_id = ?
		ORDER BY seq ASC`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list decks: %w", err)
	}

	out := make([]domain.DeckSummary, len(rows))
	for i, r := range rows {
		out[i] = r.summary()
	}
	return out, nil
}

// Get retrieves one deck of the owner
func (s *DeckStore) Get(ctx context.Context, id, ownerID string) (*domain.Deck, error) {
	var row deckRow
	err := s.db.GetContext(ctx, &row, `
		SELECT seq, id, owner_id, type, title, topic, tone, slide_count, slides, overall_suggestions, folder_id, saved_at
		FROM decks
		WHERE id = ? AND owner_id = ?`, id, ownerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get deck: %w", err)
	}

	summary := row.summary()
	deck := &domain.Deck{
		ID:                 row.ID,
		OwnerID:            row.OwnerID,
		Mode:               summary.Mode,
		Title:              row.Title,
		Topic:              row.Topic,
		Tone:               summary.Tone,
		SlideCount:         row.SlideCount,
		OverallSuggestions: row.OverallSuggestions,
		FolderID:           summary.FolderID,
		SavedAt:            summary.SavedAt,
	}
	if err := json.Unmarshal([]byte(row.Slides), &deck.Slides); err != nil {
		return nil, fmt.Errorf("failed to unmarshal slides: %w", err)
	}

	return deck, nil
}

// Delete removes a deck; deleting a missing deck is not an error
func (s *DeckStore) Delete(ctx context.Context, id, ownerID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM decks WHERE id = ? AND owner_id = ?`, id, ownerID); err != nil {
		return fmt.Errorf("failed to delete deck: %w", err)
	}
	return nil
}

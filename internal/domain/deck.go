package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Mode identifies which workflow produced a deck
type Mode string

const (
	ModeCreate  Mode = "create"
	ModeImprove Mode = "improve"
)

// Tone is the voice requested for a created deck
type Tone string

const (
	ToneProfessional Tone = "professional"
	ToneAcademic     Tone = "academic"
	TonePersuasive   Tone = "persuasive"
	ToneSimple       Tone = "simple"
)

// FocusArea tags what an improve run should concentrate on
type FocusArea string

const (
	FocusClarity      FocusArea = "clarity"
	FocusDesign       FocusArea = "design"
	FocusSpeakerNotes FocusArea = "speaker_notes"
	FocusStructure    FocusArea = "structure"
)

// Slide is a single slide owned by a Deck.
// For improved decks Title and BulletPoints carry the improved title and content.
type Slide struct {
	SlideNumber       int      `json:"slide_number"`
	Title             string   `json:"title"`
	BulletPoints      []string `json:"bullet_points"`
	SpeakerNotes      string   `json:"speaker_notes,omitempty"`
	OriginalTitle     string   `json:"original_title,omitempty"`
	OriginalContent   string   `json:"original_content,omitempty"`
	DesignSuggestions string   `json:"design_suggestions,omitempty"`
	VisualElements    []string `json:"visual_elements,omitempty"`
}

// Deck is a generated or improved presentation
type Deck struct {
	ID                 string     `json:"id,omitempty"`
	OwnerID            string     `json:"owner_id,omitempty"`
	Mode               Mode       `json:"type"`
	Title              string     `json:"title" validate:"required"`
	Topic              string     `json:"topic,omitempty"`
	Tone               Tone       `json:"tone,omitempty"`
	SlideCount         int        `json:"slide_count"`
	Slides             []Slide    `json:"slides" validate:"required,min=1"`
	OverallSuggestions string     `json:"overall_suggestions,omitempty"`
	FolderID           *uuid.UUID `json:"folder_id,omitempty"`
	SavedAt            *time.Time `json:"saved_at,omitempty"`
}

// Stamped returns a copy of the deck with a fresh ID, owner and save time.
// Slides are copied so the stored deck never aliases the caller's.
func (d Deck) Stamped(ownerID string, now time.Time) *Deck {
	out := d
	out.ID = uuid.NewString()
	out.OwnerID = ownerID
	out.SavedAt = &now
	out.Slides = make([]Slide, len(d.Slides))
	copy(out.Slides, d.Slides)
	return &out
}

// Summary projects a deck onto its listing fields
func (d Deck) Summary() DeckSummary {
	return DeckSummary{
		ID:         d.ID,
		Mode:       d.Mode,
		Title:      d.Title,
		Tone:       d.Tone,
		SlideCount: d.SlideCount,
		FolderID:   d.FolderID,
		SavedAt:    d.SavedAt,
	}
}

// DeckSummary is the listing projection of a stored deck
type DeckSummary struct {
	ID         string     `json:"id"`
	Mode       Mode       `json:"type"`
	Title      string     `json:"title"`
	Tone       Tone       `json:"tone,omitempty"`
	SlideCount int        `json:"slide_count"`
	FolderID   *uuid.UUID `json:"folder_id,omitempty"`
	SavedAt    *time.Time `json:"saved_at,omitempty"`
}

// DeckStore persists saved decks scoped by owner.
// List returns decks in insertion order and Delete is idempotent.
type DeckStore interface {
	Save(ctx context.Context, deck *Deck, ownerID string) (*Deck, error)
	List(ctx context.Context, ownerID string) ([]DeckSummary, error)
	Get(ctx context.Context, id, ownerID string) (*Deck, error)
	Delete(ctx context.Context, id, ownerID string) error
}

// DeckFilter narrows a deck listing
type DeckFilter struct {
	Query    string
	FolderID *uuid.UUID
}

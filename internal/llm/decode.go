package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Rrens/slidecraft/internal/domain"
	"github.com/rs/zerolog/log"
)

// Payload fields are pointers so an absent required field can be told
// apart from an empty one.

type createdSlide struct {
	SlideNumber  *float64  `json:"slide_number"`
	Title        *string   `json:"title"`
	BulletPoints *[]string `json:"bullet_points"`
	SpeakerNotes *string   `json:"speaker_notes"`
}

type createdDeck struct {
	Title  *string        `json:"title"`
	Slides []createdSlide `json:"slides"`
}

type improvedSlide struct {
	SlideNumber       *float64  `json:"slide_number"`
	OriginalTitle     string    `json:"original_title"`
	ImprovedTitle     *string   `json:"improved_title"`
	OriginalContent   string    `json:"original_content"`
	ImprovedContent   *[]string `json:"improved_content"`
	DesignSuggestions *string   `json:"design_suggestions"`
	SpeakerNotes      *string   `json:"speaker_notes"`
	VisualElements    []string  `json:"visual_elements"`
}

type improvedDeck struct {
	Title              *string         `json:"title"`
	OverallSuggestions string          `json:"overall_suggestions"`
	Slides             []improvedSlide `json:"slides"`
}

type requiredField struct {
	name    string
	present bool
}

// checkRequired fails on the first absent field
func checkRequired(where string, fields ...requiredField) error {
	for _, f := range fields {
		if !f.present {
			return fmt.Errorf("%w: %s has no %s", domain.ErrInferenceFailure, where, f.name)
		}
	}
	return nil
}

func filled(s *string) bool { return s != nil && strings.TrimSpace(*s) != "" }

// DecodeCreatedDeck turns a create-run payload into a deck. Every field the
// create schema marks required must be present, titles must be non-blank.
// Slides are renumbered 1..n in the order received.
func DecodeCreatedDeck(raw []byte, req domain.GenerationRequest) (*domain.Deck, error) {
	var payload createdDeck
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("%w: malformed deck payload: %v", domain.ErrInferenceFailure, err)
	}

	if err := checkRequired("deck payload", requiredField{"title", filled(payload.Title)}); err != nil {
		return nil, err
	}
	if len(payload.Slides) == 0 {
		return nil, fmt.Errorf("%w: deck payload has no slides", domain.ErrInferenceFailure)
	}

	slides := make([]domain.Slide, len(payload.Slides))
	for i, s := range payload.Slides {
		err := checkRequired(fmt.Sprintf("slide %d", i+1),
			requiredField{"slide_number", s.SlideNumber != nil},
			requiredField{"title", filled(s.Title)},
			requiredField{"bullet_points", s.BulletPoints != nil},
			requiredField{"speaker_notes", s.SpeakerNotes != nil},
		)
		if err != nil {
			return nil, err
		}
		slides[i] = domain.Slide{
			SlideNumber:  i + 1,
			Title:        *s.Title,
			BulletPoints: *s.BulletPoints,
			SpeakerNotes: *s.SpeakerNotes,
		}
	}

	if req.TargetSlideCount > 0 && len(slides) != req.TargetSlideCount {
		log.Warn().
			Int("requested", req.TargetSlideCount).
			Int("received", len(slides)).
			Msg("Model returned a different slide count than requested")
	}

	return &domain.Deck{
		Mode:       domain.ModeCreate,
		Title:      *payload.Title,
		Topic:      req.Topic,
		Tone:       req.Tone,
		SlideCount: len(slides),
		Slides:     slides,
	}, nil
}

// DecodeImprovedDeck turns an improve-run payload into a deck whose slides
// carry the improved title and content. Required fields follow the improve
// schema.
func DecodeImprovedDeck(raw []byte) (*domain.Deck, error) {
	var payload improvedDeck
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("%w: malformed deck payload: %v", domain.ErrInferenceFailure, err)
	}

	if err := checkRequired("deck payload", requiredField{"title", filled(payload.Title)}); err != nil {
		return nil, err
	}
	if len(payload.Slides) == 0 {
		return nil, fmt.Errorf("%w: deck payload has no slides", domain.ErrInferenceFailure)
	}

	slides := make([]domain.Slide, len(payload.Slides))
	for i, s := range payload.Slides {
		err := checkRequired(fmt.Sprintf("slide %d", i+1),
			requiredField{"slide_number", s.SlideNumber != nil},
			requiredField{"improved_title", filled(s.ImprovedTitle)},
			requiredField{"improved_content", s.ImprovedContent != nil},
			requiredField{"design_suggestions", s.DesignSuggestions != nil},
			requiredField{"speaker_notes", s.SpeakerNotes != nil},
		)
		if err != nil {
			return nil, err
		}
		slides[i] = domain.Slide{
			SlideNumber:       i + 1,
			Title:             *s.ImprovedTitle,
			BulletPoints:      *s.ImprovedContent,
			SpeakerNotes:      *s.SpeakerNotes,
			OriginalTitle:     s.OriginalTitle,
			OriginalContent:   s.OriginalContent,
			DesignSuggestions: *s.DesignSuggestions,
			VisualElements:    s.VisualElements,
		}
	}

	return &domain.Deck{
		Mode:               domain.ModeImprove,
		Title:              *payload.Title,
		SlideCount:         len(slides),
		Slides:             slides,
		OverallSuggestions: payload.OverallSuggestions,
	}, nil
}

// ParsePayload extracts and validates the JSON object in a model's text output
func ParsePayload(text string) (json.RawMessage, error) {
	body := ExtractJSON(text)
	if !json.Valid([]byte(body)) {
		return nil, fmt.Errorf("%w: model output is not valid JSON", domain.ErrInferenceFailure)
	}
	return json.RawMessage(body), nil
}

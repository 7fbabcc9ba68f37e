package llm_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/Rrens/slidecraft/internal/domain"
	"github.com/Rrens/slidecraft/internal/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildCreatePrompt(t *testing.T) {
	req := domain.GenerationRequest{
		Mode:             domain.ModeCreate,
		Topic:            "Renewable energy in cities",
		Tone:             domain.TonePersuasive,
		TargetSlideCount: 10,
	}

	prompt := llm.BuildCreatePrompt(req)

	mustContain := []string{
		"10-slide presentation",
		"Renewable energy in cities",
		"Tone: persuasive",
		"Create exactly 10 slides",
		`"bullet_points"`,
		`"speaker_notes"`,
	}

	for _, s := range mustContain {
		if !strings.Contains(prompt, s) {
			t.Errorf("prompt should contain %q", s)
		}
	}
}

func TestBuildImprovePrompt(t *testing.T) {
	req := domain.GenerationRequest{
		Mode:          domain.ModeImprove,
		SourceContent: "Slide 1: Intro\n- we are a team",
		FocusAreas:    []domain.FocusArea{domain.FocusClarity, domain.FocusSpeakerNotes},
	}

	prompt := llm.BuildImprovePrompt(req)

	assert.Contains(t, prompt, "Slide 1: Intro\n- we are a team")
	assert.Contains(t, prompt, "Focus on: clarity, speaker_notes")
	assert.Contains(t, prompt, `"improved_title"`)
	assert.Contains(t, prompt, `"design_suggestions"`)
}

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "plain object",
			input:    `{"title":"A"}`,
			expected: `{"title":"A"}`,
		},
		{
			name:     "json code block",
			input:    "Here you go:\n```json\n{\"title\":\"A\"}\n```",
			expected: `{"title":"A"}`,
		},
		{
			name:     "generic code block",
			input:    "```\n{\"title\":\"A\"}\n```",
			expected: `{"title":"A"}`,
		},
		{
			name:     "surrounding prose",
			input:    "Sure! {\"title\":\"A\"} Hope this helps.",
			expected: `{"title":"A"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, llm.ExtractJSON(tt.input))
		})
	}
}

func TestDecodeCreatedDeck(t *testing.T) {
	req := domain.GenerationRequest{Mode: domain.ModeCreate, Topic: "AI", Tone: domain.ToneSimple, TargetSlideCount: 3}
	raw := []byte(`{"title":"AI Basics","slides":[
		{"slide_number":4,"title":"Intro","bullet_points":["a","b"],"speaker_notes":"n1"},
		{"slide_number":9,"title":"End","bullet_points":["c"],"speaker_notes":"n2"}]}`)

	deck, err := llm.DecodeCreatedDeck(raw, req)
	require.NoError(t, err)

	assert.Equal(t, domain.ModeCreate, deck.Mode)
	assert.Equal(t, "AI Basics", deck.Title)
	assert.Equal(t, domain.ToneSimple, deck.Tone)
	assert.Equal(t, 2, deck.SlideCount)
	assert.Equal(t, 1, deck.Slides[0].SlideNumber)
	assert.Equal(t, 2, deck.Slides[1].SlideNumber)
	assert.Equal(t, []string{"a", "b"}, deck.Slides[0].BulletPoints)
}

func TestDecodeCreatedDeck_Invalid(t *testing.T) {
	req := domain.GenerationRequest{Mode: domain.ModeCreate, Topic: "AI"}

	for name, raw := range map[string]string{
		"not json":      `slides`,
		"no title":      `{"slides":[{"title":"x","bullet_points":[]}]}`,
		"no slides":     `{"title":"AI","slides":[]}`,
		"untitled slide": `{"title":"AI","slides":[{"title":"","bullet_points":["a"]}]}`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := llm.DecodeCreatedDeck([]byte(raw), req)
			assert.True(t, errors.Is(err, domain.ErrInferenceFailure), "got %v", err)
		})
	}
}

func TestDecodeImprovedDeck(t *testing.T) {
	raw := []byte(`{"title":"Q3","overall_suggestions":"Use charts","slides":[
		{"slide_number":1,"original_title":"Res","improved_title":"Results","original_content":"rev up",
		 "improved_content":["Revenue up 12%"],"design_suggestions":"bar chart","speaker_notes":"n",
		 "visual_elements":["chart"]}]}`)

	deck, err := llm.DecodeImprovedDeck(raw)
	require.NoError(t, err)

	assert.Equal(t, domain.ModeImprove, deck.Mode)
	assert.Equal(t, "Use charts", deck.OverallSuggestions)
	require.Len(t, deck.Slides, 1)
	assert.Equal(t, "Results", deck.Slides[0].Title)
	assert.Equal(t, "Res", deck.Slides[0].OriginalTitle)
	assert.Equal(t, []string{"Revenue up 12%"}, deck.Slides[0].BulletPoints)
	assert.Equal(t, []string{"chart"}, deck.Slides[0].VisualElements)
}

func TestDecodeImprovedDeck_MissingRequiredFields(t *testing.T) {
	slide := func(omit string) string {
		fields := map[string]string{
			"slide_number":       `1`,
			"improved_title":     `"A"`,
			"improved_content":   `["x"]`,
			"design_suggestions": `"chart"`,
			"speaker_notes":      `"n"`,
		}
		delete(fields, omit)
		var parts []string
		for k, v := range fields {
			parts = append(parts, fmt.Sprintf("%q:%s", k, v))
		}
		return "{" + strings.Join(parts, ",") + "}"
	}

	tests := map[string]string{
		"no deck title":         `{"slides":[` + slide("") + `]}`,
		"blank deck title":      `{"title":"  ","slides":[` + slide("") + `]}`,
		"no slide number":       `{"title":"Q3","slides":[` + slide("slide_number") + `]}`,
		"no improved title":     `{"title":"Q3","slides":[` + slide("improved_title") + `]}`,
		"no improved content":   `{"title":"Q3","slides":[` + slide("improved_content") + `]}`,
		"null improved content": `{"title":"Q3","slides":[{"slide_number":1,"improved_title":"A","improved_content":null,"design_suggestions":"","speaker_notes":""}]}`,
		"no design suggestions": `{"title":"Q3","slides":[` + slide("design_suggestions") + `]}`,
		"no speaker notes":      `{"title":"Q3","slides":[` + slide("speaker_notes") + `]}`,
	}

	for name, raw := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := llm.DecodeImprovedDeck([]byte(raw))
			assert.ErrorIs(t, err, domain.ErrInferenceFailure)
		})
	}

	t.Run("complete slide", func(t *testing.T) {
		deck, err := llm.DecodeImprovedDeck([]byte(`{"title":"Q3","slides":[` + slide("") + `]}`))
		require.NoError(t, err)
		assert.Equal(t, "Q3", deck.Title)
		assert.Equal(t, "chart", deck.Slides[0].DesignSuggestions)
	})
}

func TestDecodeCreatedDeck_MissingSlideFields(t *testing.T) {
	req := domain.GenerationRequest{Mode: domain.ModeCreate, Topic: "AI"}

	for name, raw := range map[string]string{
		"no bullet points": `{"title":"T","slides":[{"slide_number":1,"title":"S","speaker_notes":""}]}`,
		"no speaker notes": `{"title":"T","slides":[{"slide_number":1,"title":"S","bullet_points":["a"]}]}`,
		"no slide number":  `{"title":"T","slides":[{"title":"S","bullet_points":["a"],"speaker_notes":""}]}`,
		"bare slide":       `{"title":"T","slides":[{"title":"S"}]}`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := llm.DecodeCreatedDeck([]byte(raw), req)
			assert.ErrorIs(t, err, domain.ErrInferenceFailure)
		})
	}

	t.Run("empty values are present values", func(t *testing.T) {
		deck, err := llm.DecodeCreatedDeck([]byte(`{"title":"T","slides":[{"slide_number":1,"title":"S","bullet_points":[],"speaker_notes":""}]}`), req)
		require.NoError(t, err)
		assert.Equal(t, []string{}, deck.Slides[0].BulletPoints)
		assert.Empty(t, deck.Slides[0].SpeakerNotes)
	})
}

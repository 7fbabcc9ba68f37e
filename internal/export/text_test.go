package export_test

import (
	"strings"
	"testing"

	"github.com/Rrens/slidecraft/internal/domain"
	"github.com/Rrens/slidecraft/internal/export"
	"github.com/stretchr/testify/assert"
)

func demoDeck() *domain.Deck {
	return &domain.Deck{
		Mode:       domain.ModeCreate,
		Title:      "Demo",
		Tone:       domain.ToneProfessional,
		SlideCount: 1,
		Slides: []domain.Slide{
			{SlideNumber: 1, Title: "Intro", BulletPoints: []string{"A", "B"}, SpeakerNotes: "Note."},
		},
	}
}

func TestFormat_Demo(t *testing.T) {
	out := export.Format(demoDeck())

	assert.True(t, strings.HasPrefix(out, "Demo\n====\n"), out)
	assert.Contains(t, out, "• A\n• B\n")
	assert.Contains(t, out, "Speaker Notes:\nNote.\n")
	assert.Contains(t, out, "Tone: professional\nSlides: 1\n")
	assert.Contains(t, out, "SLIDE 1: Intro\n"+strings.Repeat("-", 50)+"\n\n")
	assert.True(t, strings.HasSuffix(out, "\n"+strings.Repeat("=", 50)+"\n\n"))
}

func TestFormat_ExactLayout(t *testing.T) {
	want := "Demo\n====\n\n" +
		"Tone: professional\n" +
		"Slides: 1\n\n" +
		strings.Repeat("=", 50) + "\n\n" +
		"SLIDE 1: Intro\n" +
		strings.Repeat("-", 50) + "\n\n" +
		"• A\n• B\n" +
		"\nSpeaker Notes:\nNote.\n" +
		"\n" + strings.Repeat("=", 50) + "\n\n"

	assert.Equal(t, want, export.Format(demoDeck()))
}

func TestFormat_Deterministic(t *testing.T) {
	deck := demoDeck()
	assert.Equal(t, export.Format(deck), export.Format(deck))
}

func TestFormat_DistinguishesContent(t *testing.T) {
	a := demoDeck()
	b := demoDeck()
	b.Slides[0].BulletPoints = []string{"A", "C"}

	assert.NotEqual(t, export.Format(a), export.Format(b))
}

func TestFormat_NoEscaping(t *testing.T) {
	deck := demoDeck()
	deck.Slides[0].BulletPoints = []string{"a == b", "--flag"}

	out := export.Format(deck)
	assert.Contains(t, out, "• a == b\n• --flag\n")
}

func TestFormat_ImprovedDeckWithoutToneOrNotes(t *testing.T) {
	deck := &domain.Deck{
		Mode:  domain.ModeImprove,
		Title: "Q3 Review",
		Slides: []domain.Slide{
			{SlideNumber: 1, Title: "Results", BulletPoints: []string{"Revenue up"}},
			{SlideNumber: 2, Title: "Next", BulletPoints: []string{"Hire"}},
		},
	}

	out := export.Format(deck)
	assert.NotContains(t, out, "Tone:")
	assert.NotContains(t, out, "Speaker Notes:")
	assert.Contains(t, out, "Slides: 2\n")
	assert.Contains(t, out, "SLIDE 2: Next\n")
}

func TestFormat_UnderlineWidth(t *testing.T) {
	tests := []struct {
		title string
		width int
	}{
		{"Demo", 4},
		{"Café", 4},
		{"Launch 🚀", 9},
		{"", 0},
	}

	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			deck := demoDeck()
			deck.Title = tt.title

			out := export.Format(deck)
			assert.True(t, strings.HasPrefix(out, tt.title+"\n"+strings.Repeat("=", tt.width)+"\n\n"), out)
		})
	}
}

func TestFilename(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{"Demo", "demo.txt"},
		{"Q3 Review: Growth!", "q3_review__growth_.txt"},
		{"", "deck.txt"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, export.Filename(tt.title))
	}
}

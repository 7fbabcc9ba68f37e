// Package export renders decks as plain-text documents for copy and download.
package export

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf16"

	"github.com/Rrens/slidecraft/internal/domain"
)

const dividerWidth = 50

var (
	heavyDivider = strings.Repeat("=", dividerWidth)
	lightDivider = strings.Repeat("-", dividerWidth)

	unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9]`)
)

// underlineWidth counts UTF-16 code units; characters outside the BMP count twice
func underlineWidth(title string) int {
	return len(utf16.Encode([]rune(title)))
}

// Format renders a deck as plain text. Output depends only on the deck, and
// content is written verbatim.
func Format(deck *domain.Deck) string {
	var b strings.Builder

	b.WriteString(deck.Title + "\n")
	b.WriteString(strings.Repeat("=", underlineWidth(deck.Title)) + "\n\n")

	if deck.Tone != "" {
		fmt.Fprintf(&b, "Tone: %s\n", deck.Tone)
	}
	fmt.Fprintf(&b, "Slides: %d\n\n", slideCount(deck))
	b.WriteString(heavyDivider + "\n\n")

	for _, slide := range deck.Slides {
		fmt.Fprintf(&b, "SLIDE %d: %s\n", slide.SlideNumber, slide.Title)
		b.WriteString(lightDivider + "\n\n")

		for _, point := range slide.BulletPoints {
			b.WriteString("• " + point + "\n")
		}

		if slide.SpeakerNotes != "" {
			fmt.Fprintf(&b, "\nSpeaker Notes:\n%s\n", slide.SpeakerNotes)
		}

		b.WriteString("\n" + heavyDivider + "\n\n")
	}

	return b.String()
}

// Filename returns the download name used for an exported deck
func Filename(title string) string {
	name := strings.ToLower(unsafeFilenameChars.ReplaceAllString(title, "_"))
	if name == "" {
		name = "deck"
	}
	return name + ".txt"
}

func slideCount(deck *domain.Deck) int {
	if deck.SlideCount > 0 {
		return deck.SlideCount
	}
	return len(deck.Slides)
}

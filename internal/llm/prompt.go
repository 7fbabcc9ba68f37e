package llm

import (
	"fmt"
	"strings"

	"github.com/Rrens/slidecraft/internal/domain"
)

// SystemPrompt is sent to providers that accept a separate system message
const SystemPrompt = "You are an expert presentation writer. Respond with ONLY a JSON object matching the requested schema, no markdown or commentary."

// BuildCreatePrompt creates a prompt for a new deck on a topic
func BuildCreatePrompt(req domain.GenerationRequest) string {
	return fmt.Sprintf(`Create a professional %d-slide presentation deck on the following topic:

Topic: %s

Requirements:
- Tone: %s
- Create exactly %d slides
- Each slide must have:
  * A clear, concise title
  * 3-5 bullet points that are presentation-ready (short, impactful)
  * Speaker notes (2-3 sentences) providing additional context for the presenter
- Structure the deck logically with:
  * Slide 1: Title/Introduction
  * Middle slides: Core content organized thematically
  * Final slide: Conclusion/Call-to-action
- Make bullet points concise and impactful
- Avoid long paragraphs
- Ensure the content flows logically from slide to slide

Generate a cohesive, professional slide deck ready for presentation.

Respond with a JSON object matching this schema:
%s`, req.TargetSlideCount, req.Topic, req.Tone, req.TargetSlideCount, CreateDeckSchema().JSON())
}

// BuildImprovePrompt creates a prompt that reworks an existing draft
func BuildImprovePrompt(req domain.GenerationRequest) string {
	areas := make([]string, len(req.FocusAreas))
	for i, a := range req.FocusAreas {
		areas[i] = string(a)
	}

	return fmt.Sprintf(`You are an expert presentation consultant. Analyze and improve the following presentation draft:

%s

Tasks:
1. Refine each slide's content for clarity, impact, and professionalism
2. Suggest specific design improvements (layouts, visual elements, color schemes)
3. Generate detailed speaker notes for each slide (3-5 sentences per slide)
4. Maintain the original slide count and structure
5. Focus on: %s

Return the improved presentation with clear, actionable improvements.

Respond with a JSON object matching this schema:
%s`, req.SourceContent, strings.Join(areas, ", "), ImproveDeckSchema().JSON())
}

// ExtractJSON extracts the JSON object from a model's text output
func ExtractJSON(content string) string {
	// Try to extract from markdown code blocks
	if body := extractFromCodeBlock(content, "```json", "```"); body != "" {
		return body
	}
	if body := extractFromCodeBlock(content, "```", "```"); body != "" {
		return body
	}

	// Fall back to the outermost braces
	content = strings.TrimSpace(content)
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start == -1 || end < start {
		return content
	}
	return content[start : end+1]
}

func extractFromCodeBlock(content, startMarker, endMarker string) string {
	startIdx := strings.Index(content, startMarker)
	if startIdx == -1 {
		return ""
	}

	contentStart := startIdx + len(startMarker)
	// Skip newline after marker
	if contentStart < len(content) && content[contentStart] == '\n' {
		contentStart++
	}

	endIdx := strings.Index(content[contentStart:], endMarker)
	if endIdx == -1 {
		return ""
	}

	return strings.TrimSpace(content[contentStart : contentStart+endIdx])
}

package llm

import "encoding/json"

// Schema is the JSON-Schema subset used to declare structured responses
type Schema struct {
	Type       string             `json:"type"`
	Properties map[string]*Schema `json:"properties,omitempty"`
	Items      *Schema            `json:"items,omitempty"`
	Required   []string           `json:"required,omitempty"`
}

// JSON renders the schema for embedding in prompts and request bodies
func (s *Schema) JSON() string {
	b, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(b)
}

func object(props map[string]*Schema, required ...string) *Schema {
	return &Schema{Type: "object", Properties: props, Required: required}
}

func arrayOf(items *Schema) *Schema {
	return &Schema{Type: "array", Items: items}
}

func str() *Schema { return &Schema{Type: "string"} }
func num() *Schema { return &Schema{Type: "number"} }

// CreateDeckSchema is the response contract of a create run
func CreateDeckSchema() *Schema {
	slide := object(map[string]*Schema{
		"slide_number":  num(),
		"title":         str(),
		"bullet_points": arrayOf(str()),
		"speaker_notes": str(),
	}, "slide_number", "title", "bullet_points", "speaker_notes")

	return object(map[string]*Schema{
		"title":  str(),
		"slides": arrayOf(slide),
	}, "title", "slides")
}

// ImproveDeckSchema is the response contract of an improve run
func ImproveDeckSchema() *Schema {
	slide := object(map[string]*Schema{
		"slide_number":       num(),
		"original_title":     str(),
		"improved_title":     str(),
		"original_content":   str(),
		"improved_content":   arrayOf(str()),
		"design_suggestions": str(),
		"speaker_notes":      str(),
		"visual_elements":    arrayOf(str()),
	}, "slide_number", "improved_title", "improved_content", "design_suggestions", "speaker_notes")

	return object(map[string]*Schema{
		"title":               str(),
		"overall_suggestions": str(),
		"slides":              arrayOf(slide),
	}, "title", "slides")
}

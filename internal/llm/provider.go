package llm

import (
	"context"
	"encoding/json"
)

// Request is one structured-output call to a language model
type Request struct {
	System string
	Prompt string
	Schema *Schema
}

// Response contains LLM generation result
type Response struct {
	// Payload is the JSON object extracted from the model output
	Payload    json.RawMessage
	Text       string
	Model      string
	TokensUsed int
	LatencyMs  int64
}

// Provider defines the interface for LLM providers
type Provider interface {
	// Name returns the provider identifier
	Name() string

	// AvailableModels returns list of supported models
	AvailableModels() []string

	// DefaultModel returns the default model
	DefaultModel() string

	// IsConfigured checks if provider has valid credentials
	IsConfigured() bool

	// Invoke sends the prompt and returns the JSON payload conforming to req.Schema
	Invoke(ctx context.Context, req Request, model string) (*Response, error)
}

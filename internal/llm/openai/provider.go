package openai

import (
	"context"
	"fmt"
	"time"

	"github.com/Rrens/slidecraft/internal/llm"
)

const defaultBaseURL = "https://api.openai.com/v1"

// Options describes an OpenAI-compatible chat completions endpoint
type Options struct {
	Name         string
	BaseURL      string
	APIKey       string
	DefaultModel string
	Models       []string
	// StrictSchema sends the deck schema as a json_schema response format.
	// Endpoints without it fall back to plain JSON mode.
	StrictSchema bool
}

// Provider talks to any chat completions API shaped like OpenAI's
type Provider struct {
	opts Options
	http *llm.HTTPClient
}

// NewProvider creates the OpenAI provider
func NewProvider(apiKey, defaultModel string) llm.Provider {
	if defaultModel == "" {
		defaultModel = "gpt-4o-mini"
	}
	return NewCompatible(Options{
		Name:         "openai",
		BaseURL:      defaultBaseURL,
		APIKey:       apiKey,
		DefaultModel: defaultModel,
		Models:       []string{"gpt-4o", "gpt-4o-mini", "gpt-4-turbo"},
		StrictSchema: true,
	})
}

// NewCompatible creates a provider for another vendor serving the same API
func NewCompatible(opts Options) *Provider {
	return &Provider{
		opts: opts,
		http: llm.NewHTTPClient(opts.Name, 120*time.Second),
	}
}

func (p *Provider) Name() string              { return p.opts.Name }
func (p *Provider) AvailableModels() []string { return p.opts.Models }
func (p *Provider) DefaultModel() string      { return p.opts.DefaultModel }
func (p *Provider) IsConfigured() bool        { return p.opts.APIKey != "" }

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	Temperature    float64         `json:"temperature"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type       string      `json:"type"`
	JSONSchema *jsonSchema `json:"json_schema,omitempty"`
}

type jsonSchema struct {
	Name   string      `json:"name"`
	Schema *llm.Schema `json:"schema"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		TotalTokens int `json:"total_tokens"`
	} `json:"usage"`
}

// Invoke requests a completion constrained to req.Schema
func (p *Provider) Invoke(ctx context.Context, req llm.Request, model string) (*llm.Response, error) {
	if model == "" {
		model = p.opts.DefaultModel
	}

	chatReq := chatRequest{
		Model: model,
		Messages: []chatMessage{
			{Role: "system", Content: req.System},
			{Role: "user", Content: req.Prompt},
		},
		Temperature:    0.7,
		MaxTokens:      4096,
		ResponseFormat: p.responseFormat(req.Schema),
	}

	var chatResp chatResponse
	latency, err := p.http.PostJSON(ctx, p.opts.BaseURL+"/chat/completions",
		map[string]string{"Authorization": "Bearer " + p.opts.APIKey},
		chatReq, &chatResp,
	)
	if err != nil {
		return nil, err
	}

	if len(chatResp.Choices) == 0 {
		return nil, fmt.Errorf("no choices in %s response", p.opts.Name)
	}
	text := chatResp.Choices[0].Message.Content

	payload, err := llm.ParsePayload(text)
	if err != nil {
		return nil, err
	}

	return &llm.Response{
		Payload:    payload,
		Text:       text,
		Model:      model,
		TokensUsed: chatResp.Usage.TotalTokens,
		LatencyMs:  latency,
	}, nil
}

func (p *Provider) responseFormat(schema *llm.Schema) *responseFormat {
	if schema == nil {
		return nil
	}
	if !p.opts.StrictSchema {
		return &responseFormat{Type: "json_object"}
	}
	return &responseFormat{
		Type:       "json_schema",
		JSONSchema: &jsonSchema{Name: "deck", Schema: schema},
	}
}

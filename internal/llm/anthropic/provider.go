package anthropic

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Rrens/slidecraft/internal/llm"
)

const (
	defaultBaseURL = "https://api.anthropic.com/v1"
	apiVersion     = "2023-06-01"
)

// Provider implements llm.Provider for the Anthropic Messages API
type Provider struct {
	apiKey       string
	defaultModel string
	baseURL      string
	http         *llm.HTTPClient
}

func NewProvider(apiKey, defaultModel string) llm.Provider {
	return newProvider(apiKey, defaultModel, defaultBaseURL)
}

func newProvider(apiKey, defaultModel, baseURL string) *Provider {
	if defaultModel == "" {
		defaultModel = "claude-3-5-sonnet-20241022"
	}
	return &Provider{
		apiKey:       apiKey,
		defaultModel: defaultModel,
		baseURL:      baseURL,
		http:         llm.NewHTTPClient("anthropic", 120*time.Second),
	}
}

func (p *Provider) Name() string { return "anthropic" }

func (p *Provider) AvailableModels() []string {
	return []string{
		"claude-3-5-sonnet-20241022",
		"claude-3-5-haiku-20241022",
		"claude-3-opus-20240229",
	}
}

func (p *Provider) DefaultModel() string { return p.defaultModel }
func (p *Provider) IsConfigured() bool   { return p.apiKey != "" }

type messagesRequest struct {
	Model       string    `json:"model"`
	MaxTokens   int       `json:"max_tokens"`
	System      string    `json:"system,omitempty"`
	Temperature float64   `json:"temperature"`
	Messages    []message `json:"messages"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Usage struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

// Invoke sends the prompt and extracts the JSON object from the text blocks.
// The Messages API has no response schema, the prompt carries it instead.
func (p *Provider) Invoke(ctx context.Context, req llm.Request, model string) (*llm.Response, error) {
	if model == "" {
		model = p.defaultModel
	}

	var out messagesResponse
	latency, err := p.http.PostJSON(ctx, p.baseURL+"/messages",
		map[string]string{
			"x-api-key":         p.apiKey,
			"anthropic-version": apiVersion,
		},
		messagesRequest{
			Model:       model,
			MaxTokens:   4096,
			System:      req.System,
			Temperature: 0.7,
			Messages:    []message{{Role: "user", Content: req.Prompt}},
		},
		&out,
	)
	if err != nil {
		return nil, err
	}

	var text strings.Builder
	for _, block := range out.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		return nil, fmt.Errorf("no text content in anthropic response")
	}

	payload, err := llm.ParsePayload(text.String())
	if err != nil {
		return nil, err
	}

	return &llm.Response{
		Payload:    payload,
		Text:       text.String(),
		Model:      model,
		TokensUsed: out.Usage.InputTokens + out.Usage.OutputTokens,
		LatencyMs:  latency,
	}, nil
}
